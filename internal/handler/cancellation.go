package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/service"
)

type cancellationAPI interface {
	Create(ctx context.Context, in service.CreateCancellationInput) (model.CancellationRequest, error)
	SetStatus(ctx context.Context, organizerID, id uint64, status string) error
	Submit(ctx context.Context, organizerID, id uint64) error
}

// CancellationHandler serves ticket cancellation requests.
type CancellationHandler struct {
	Cancellations cancellationAPI
}

func NewCancellationHandler(api cancellationAPI) *CancellationHandler {
	return &CancellationHandler{Cancellations: api}
}

type createCancellationReq struct {
	CancelFullBooking bool     `json:"cancel_full_booking"`
	Tickets           []uint64 `json:"tickets"`
}

// Create files a request against the booking in the path.
func (h *CancellationHandler) Create(c echo.Context) error {
	bookingID, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req createCancellationReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.Cancellations.Create(ctx, service.CreateCancellationInput{
		UserID:            currentUser(c),
		BookingID:         bookingID,
		CancelFullBooking: req.CancelFullBooking,
		TicketIDs:         req.Tickets,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

type cancellationStatusReq struct {
	Status string `json:"status"`
}

func (h *CancellationHandler) SetStatus(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	var req cancellationStatusReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Cancellations.SetStatus(ctx, currentUser(c), id, req.Status); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": req.Status})
}

func (h *CancellationHandler) Submit(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Cancellations.Submit(ctx, currentUser(c), id); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "docstatus": model.DocStatusSubmitted})
}
