package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/service"
)

type couponAPI interface {
	Validate(ctx context.Context, code, eventRoute string) service.CouponResult
}

type bookingAPI interface {
	GetEventBookingData(ctx context.Context, route string) (service.BookingData, error)
	ProcessBooking(ctx context.Context, in service.ProcessBookingInput) (service.ProcessBookingResult, error)
	GetBooking(ctx context.Context, userID, bookingID uint64) (service.BookingDetails, error)
	ListBookings(ctx context.Context, userID uint64) ([]model.Booking, error)
}

// BookingHandler serves the attendee booking flow.
type BookingHandler struct {
	Coupons  couponAPI
	Bookings bookingAPI
}

func NewBookingHandler(coupons couponAPI, bookings bookingAPI) *BookingHandler {
	return &BookingHandler{Coupons: coupons, Bookings: bookings}
}

type validateCouponReq struct {
	CouponCode string `json:"coupon_code" query:"coupon_code"`
	EventRoute string `json:"event_route" query:"event_route"`
}

// ValidateCoupon answers 200 with {valid, error} or the coupon details.
// Unknown coupons are not an HTTP error.
func (h *BookingHandler) ValidateCoupon(c echo.Context) error {
	var req validateCouponReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	req.CouponCode = strings.TrimSpace(req.CouponCode)
	req.EventRoute = strings.TrimSpace(req.EventRoute)
	if req.CouponCode == "" || req.EventRoute == "" {
		return badRequest(c, "coupon_code and event_route are required")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	return c.JSON(http.StatusOK, h.Coupons.Validate(ctx, req.CouponCode, req.EventRoute))
}

// GetEventBookingData returns the ticket types, add-ons and custom fields
// of a published event.
func (h *BookingHandler) GetEventBookingData(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	data, err := h.Bookings.GetEventBookingData(ctx, c.Param("route"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, data)
}

type processBookingReq struct {
	Event        uint64                  `json:"event"`
	Attendees    []service.AttendeeInput `json:"attendees"`
	CouponCode   string                  `json:"coupon_code"`
	CustomFields map[string]string       `json:"custom_fields"`
}

// ProcessBooking creates a booking for the session user.
func (h *BookingHandler) ProcessBooking(c echo.Context) error {
	var req processBookingReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if req.Event == 0 {
		return badRequest(c, "event is required")
	}
	// payment link creation talks to the gateway, so no request timeout here
	res, err := h.Bookings.ProcessBooking(c.Request().Context(), service.ProcessBookingInput{
		UserID:       currentUser(c),
		EventID:      req.Event,
		Attendees:    req.Attendees,
		CouponCode:   req.CouponCode,
		CustomFields: req.CustomFields,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

func (h *BookingHandler) ListBookings(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.Bookings.ListBookings(ctx, currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, ok := pathID(c, "id")
	if !ok {
		return badRequest(c, "invalid id")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.Bookings.GetBooking(ctx, currentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
