package model

import "time"

// Payment statuses as reported by the payment gateway.
const (
	PaymentInitiated  = "Initiated"
	PaymentAuthorized = "Authorized"
	PaymentCompleted  = "Completed"
	PaymentFailed     = "Failed"
)

// Payment tracks the external payment for a paid booking.  Reference is
// the gateway's identifier (a Stripe checkout session id).
type Payment struct {
	ID              uint64    `json:"id"`               // payments.id
	BookingID       uint64    `json:"booking_id"`       // payments.booking_id
	Provider        string    `json:"provider"`         // payments.provider
	Reference       string    `json:"reference"`        // payments.reference
	AmountCents     int64     `json:"amount_cents"`     // payments.amount_cents
	Currency        string    `json:"currency"`         // payments.currency
	Status          string    `json:"status"`           // payments.status
	PaymentReceived bool      `json:"payment_received"` // payments.payment_received
	CreatedAt       time.Time `json:"created_at"`       // payments.created_at
	UpdatedAt       time.Time `json:"updated_at"`       // payments.updated_at
}

// IsSuccessfulPaymentStatus reports whether a gateway status means the
// money has been secured.
func IsSuccessfulPaymentStatus(status string) bool {
	return status == PaymentAuthorized || status == PaymentCompleted
}
