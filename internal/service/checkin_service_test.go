package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/event-ticketing/internal/clock"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

func TestCheckin(t *testing.T) {
	db := newMemDB()
	ev := db.addEvent(model.Event{OwnerID: organizerID, Title: "GopherCon", Route: "gophercon"})
	tickets := []model.Ticket{
		{EventID: ev.ID, AttendeeName: "Ada", DocStatus: model.DocStatusSubmitted},
		{EventID: ev.ID, AttendeeName: "Bob", DocStatus: model.DocStatusDraft},
		{EventID: ev.ID, AttendeeName: "Cy", DocStatus: model.DocStatusCancelled},
	}
	require.NoError(t, memTickets{db}.CreateBatch(context.Background(), tickets))
	ada, bob, cy := tickets[0].ID, tickets[1].ID, tickets[2].ID

	svc := NewCheckinService(memTickets{db}, memCheckIns{db}, memEvents{db}, clock.NewFixed(testNow), zap.NewNop())
	ctx := context.Background()

	res, err := svc.ValidateTicketForCheckin(ctx, organizerID, ada)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Ticket is valid", res.Message)

	for id, msg := range map[uint64]string{
		bob:    "Ticket is not confirmed",
		cy:     "Ticket has been cancelled",
		999999: "Ticket not found",
	} {
		res, err := svc.CheckinTicket(ctx, organizerID, id)
		require.NoError(t, err)
		assert.False(t, res.Success)
		assert.Equal(t, msg, res.Message)
	}

	res, err = svc.CheckinTicket(ctx, organizerID, ada)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "Checked in Ada", res.Message)
	require.Len(t, db.checkIns, 1)
	assert.Equal(t, clock.Today(clock.NewFixed(testNow)), db.checkIns[0].Date)
	assert.Equal(t, model.DocStatusSubmitted, db.checkIns[0].DocStatus)

	res, err = svc.CheckinTicket(ctx, organizerID, ada)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Ticket already checked in today", res.Message)
	assert.Len(t, db.checkIns, 1)

	tomorrow := NewCheckinService(memTickets{db}, memCheckIns{db}, memEvents{db}, clock.NewFixed(testNow.AddDate(0, 0, 1)), zap.NewNop())
	res, err = tomorrow.CheckinTicket(ctx, organizerID, ada)
	require.NoError(t, err)
	assert.True(t, res.Success)

	_, err = svc.ValidateTicketForCheckin(ctx, organizerID+1, ada)
	assert.ErrorIs(t, err, repository.ErrForbidden)
}
