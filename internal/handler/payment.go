package handler

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/event-ticketing/internal/payment"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

const maxWebhookBody = 64 << 10

type paymentAPI interface {
	HandlePaymentNotification(ctx context.Context, n payment.Notification) error
}

// PaymentHandler receives gateway callbacks.
type PaymentHandler struct {
	Gateway  payment.Gateway
	Bookings paymentAPI
	Log      *zap.Logger
}

func NewPaymentHandler(g payment.Gateway, bookings paymentAPI, log *zap.Logger) *PaymentHandler {
	return &PaymentHandler{Gateway: g, Bookings: bookings, Log: log}
}

// Webhook authenticates the callback, then applies it.  Unknown
// references are acknowledged so the gateway stops retrying; other
// failures answer non-2xx so it retries.
func (h *PaymentHandler) Webhook(c echo.Context) error {
	body, err := io.ReadAll(http.MaxBytesReader(c.Response(), c.Request().Body, maxWebhookBody))
	if err != nil {
		return badRequest(c, "invalid body")
	}
	sig := c.Request().Header.Get("Stripe-Signature")
	if sig == "" {
		sig = c.Request().Header.Get("X-Webhook-Secret")
	}

	n, err := h.Gateway.ParseWebhook(body, sig)
	if err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid signature"})
		}
		return badRequest(c, "invalid payload")
	}
	if n.Status == "" {
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}

	err = h.Bookings.HandlePaymentNotification(c.Request().Context(), n)
	if errors.Is(err, repository.ErrNotFound) {
		h.Log.Warn("payment callback for unknown reference",
			zap.String("provider", h.Gateway.Name()), zap.String("reference", n.Reference))
		return c.JSON(http.StatusOK, echo.Map{"received": true})
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"received": true})
}
