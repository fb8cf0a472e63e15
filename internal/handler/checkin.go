package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/service"
)

type checkinAPI interface {
	ValidateTicketForCheckin(ctx context.Context, organizerID, ticketID uint64) (service.CheckinResult, error)
	CheckinTicket(ctx context.Context, organizerID, ticketID uint64) (service.CheckinResult, error)
}

// CheckinHandler serves the door scanner.
type CheckinHandler struct {
	Checkins checkinAPI
}

func NewCheckinHandler(checkins checkinAPI) *CheckinHandler { return &CheckinHandler{Checkins: checkins} }

// Validate answers 200 with {success, message, ticket}.
func (h *CheckinHandler) Validate(c echo.Context) error {
	return h.run(c, h.Checkins.ValidateTicketForCheckin)
}

// Checkin records the check-in when the ticket is valid.
func (h *CheckinHandler) Checkin(c echo.Context) error {
	return h.run(c, h.Checkins.CheckinTicket)
}

func (h *CheckinHandler) run(c echo.Context, fn func(context.Context, uint64, uint64) (service.CheckinResult, error)) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	res, err := fn(ctx, currentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
