package service

import (
	"context"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// ownedEvent loads an event and checks that ownerID created it.
func ownedEvent(ctx context.Context, events EventStore, eventID, ownerID uint64) (model.Event, error) {
	e, err := events.GetByID(ctx, eventID)
	if err != nil {
		return model.Event{}, err
	}
	if e.OwnerID != ownerID {
		return model.Event{}, repository.ErrForbidden
	}
	return e, nil
}
