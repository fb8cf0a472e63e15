package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/iliyamo/event-ticketing/internal/clock"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// CheckinResult is what the door scanner shows.
type CheckinResult struct {
	Success bool          `json:"success"`
	Message string        `json:"message"`
	Ticket  *model.Ticket `json:"ticket,omitempty"`
}

type CheckinService struct {
	tickets  TicketStore
	checkIns CheckInStore
	events   EventStore
	clock    clock.Clock
	log      *zap.Logger
}

func NewCheckinService(tickets TicketStore, checkIns CheckInStore, events EventStore, c clock.Clock, log *zap.Logger) *CheckinService {
	return &CheckinService{tickets: tickets, checkIns: checkIns, events: events, clock: c, log: log}
}

// ValidateTicketForCheckin reports whether the ticket may enter today.
// Scanner failures are results, not errors; only store failures and
// foreign events return an error.
func (s *CheckinService) ValidateTicketForCheckin(ctx context.Context, organizerID, ticketID uint64) (CheckinResult, error) {
	t, err := s.tickets.GetByID(ctx, ticketID)
	if errors.Is(err, repository.ErrNotFound) {
		return CheckinResult{Message: "Ticket not found"}, nil
	}
	if err != nil {
		return CheckinResult{}, err
	}
	if _, err := ownedEvent(ctx, s.events, t.EventID, organizerID); err != nil {
		return CheckinResult{}, err
	}
	switch t.DocStatus {
	case model.DocStatusDraft:
		return CheckinResult{Message: "Ticket is not confirmed", Ticket: &t}, nil
	case model.DocStatusCancelled:
		return CheckinResult{Message: "Ticket has been cancelled", Ticket: &t}, nil
	}
	done, err := s.checkIns.ExistsOn(ctx, t.ID, clock.Today(s.clock))
	if err != nil {
		return CheckinResult{}, err
	}
	if done {
		return CheckinResult{Message: "Ticket already checked in today", Ticket: &t}, nil
	}
	return CheckinResult{Success: true, Message: "Ticket is valid", Ticket: &t}, nil
}

// CheckinTicket validates the ticket and records today's check-in.
func (s *CheckinService) CheckinTicket(ctx context.Context, organizerID, ticketID uint64) (CheckinResult, error) {
	res, err := s.ValidateTicketForCheckin(ctx, organizerID, ticketID)
	if err != nil || !res.Success {
		return res, err
	}
	c := model.CheckIn{
		EventID:   res.Ticket.EventID,
		TicketID:  res.Ticket.ID,
		Date:      clock.Today(s.clock),
		DocStatus: model.DocStatusSubmitted,
	}
	if err := s.checkIns.Create(ctx, &c); err != nil {
		return CheckinResult{}, err
	}
	s.log.Info("ticket checked in", zap.Uint64("ticket_id", c.TicketID), zap.Uint64("event_id", c.EventID))
	res.Message = "Checked in " + res.Ticket.AttendeeName
	return res, nil
}
