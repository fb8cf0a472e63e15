package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// StripeGateway creates Stripe Checkout sessions and verifies Stripe
// webhooks.
type StripeGateway struct {
	webhookSecret string
}

// NewStripeGateway sets the Stripe API key globally.
func NewStripeGateway(secretKey, webhookSecret string) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, errors.New("stripe secret key is required")
	}
	if webhookSecret == "" {
		return nil, errors.New("stripe webhook secret is required")
	}
	stripe.Key = secretKey
	return &StripeGateway{webhookSecret: webhookSecret}, nil
}

func (g *StripeGateway) Name() string { return "stripe" }

// CreateCheckout opens a one-line-item Checkout session for the booking.
func (g *StripeGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (Checkout, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:        stripe.String(req.SuccessURL),
		CancelURL:         stripe.String(req.CancelURL),
		ClientReferenceID: stripe.String(strconv.FormatUint(req.BookingID, 10)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(req.Currency)),
				UnitAmount: stripe.Int64(req.AmountCents),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(req.Description),
				},
			},
			Quantity: stripe.Int64(1),
		}},
		Metadata: map[string]string{"booking_id": strconv.FormatUint(req.BookingID, 10)},
	}
	if req.CustomerEmail != "" {
		params.CustomerEmail = stripe.String(req.CustomerEmail)
	}
	params.Context = ctx
	params.SetIdempotencyKey(fmt.Sprintf("booking-%d-%s", req.BookingID, uuid.NewString()))

	s, err := session.New(params)
	if err != nil {
		return Checkout{}, fmt.Errorf("stripe checkout: %w", err)
	}
	return Checkout{Reference: s.ID, URL: s.URL}, nil
}

// ParseWebhook verifies the Stripe-Signature header and maps checkout
// session events onto payment statuses.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (Notification, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return Notification{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return checkoutNotification(string(event.Type), event.Data.Raw)
}

func checkoutNotification(eventType string, raw json.RawMessage) (Notification, error) {
	var status string
	switch eventType {
	case "checkout.session.completed":
		status = model.PaymentCompleted
	case "checkout.session.async_payment_succeeded":
		status = model.PaymentCompleted
	case "checkout.session.async_payment_failed", "checkout.session.expired":
		status = model.PaymentFailed
	default:
		return Notification{}, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(raw, &cs); err != nil {
		return Notification{}, fmt.Errorf("decode checkout session: %w", err)
	}
	// A completed session paid with a delayed method is still unpaid; the
	// async_payment_* event settles it later.
	if eventType == "checkout.session.completed" && cs.PaymentStatus == stripe.CheckoutSessionPaymentStatusUnpaid {
		return Notification{}, nil
	}
	n := Notification{Reference: cs.ID, Status: status}
	if id, err := strconv.ParseUint(cs.Metadata["booking_id"], 10, 64); err == nil {
		n.BookingID = id
	}
	return n, nil
}
