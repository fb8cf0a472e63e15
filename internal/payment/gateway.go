// Package payment creates hosted payment links and turns gateway
// callbacks into payment status updates.
package payment

import (
	"context"
	"errors"
)

// ErrInvalidSignature is returned when a callback cannot be authenticated.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// CheckoutRequest describes the amount to collect for one booking.
type CheckoutRequest struct {
	BookingID     uint64
	AmountCents   int64
	Currency      string
	Description   string
	CustomerEmail string
	SuccessURL    string
	CancelURL     string
}

// Checkout is a created payment link.  Reference identifies it in later
// callbacks.
type Checkout struct {
	Reference string
	URL       string
}

// Notification is an authenticated gateway callback.  An empty Status
// means the callback carries nothing actionable.
type Notification struct {
	Reference string
	BookingID uint64
	Status    string
}

// Gateway is implemented by every payment provider.
type Gateway interface {
	Name() string
	CreateCheckout(ctx context.Context, req CheckoutRequest) (Checkout, error)
	ParseWebhook(payload []byte, signature string) (Notification, error)
}
