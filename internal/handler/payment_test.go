package handler

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/payment"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

type mockGateway struct{ mock.Mock }

func (m *mockGateway) Name() string { return "stripe" }

func (m *mockGateway) CreateCheckout(ctx context.Context, req payment.CheckoutRequest) (payment.Checkout, error) {
	args := m.Called(req)
	return args.Get(0).(payment.Checkout), args.Error(1)
}

func (m *mockGateway) ParseWebhook(payload []byte, signature string) (payment.Notification, error) {
	args := m.Called(string(payload), signature)
	return args.Get(0).(payment.Notification), args.Error(1)
}

type mockPayments struct{ mock.Mock }

func (m *mockPayments) HandlePaymentNotification(ctx context.Context, n payment.Notification) error {
	return m.Called(n).Error(0)
}

func TestWebhook(t *testing.T) {
	completed := payment.Notification{Reference: "cs_1", Status: model.PaymentCompleted}
	unknown := payment.Notification{Reference: "cs_gone", Status: model.PaymentCompleted}
	broken := payment.Notification{Reference: "cs_2", Status: model.PaymentCompleted}

	tests := []struct {
		name      string
		body      string
		header    string
		parsed    payment.Notification
		parseErr  error
		handleErr error
		handled   bool
		status    int
	}{
		{name: "bad signature", body: `{}`, header: "Stripe-Signature", parseErr: payment.ErrInvalidSignature, status: http.StatusUnauthorized},
		{name: "unparseable", body: `nope`, header: "Stripe-Signature", parseErr: errors.New("unexpected token"), status: http.StatusBadRequest},
		{name: "ignored event type", body: `{"type":"customer.created"}`, header: "Stripe-Signature", status: http.StatusOK},
		{name: "completed", body: `{"id":"evt_1"}`, header: "Stripe-Signature", parsed: completed, handled: true, status: http.StatusOK},
		{name: "manual callback header", body: `{"reference":"cs_1"}`, header: "X-Webhook-Secret", parsed: completed, handled: true, status: http.StatusOK},
		{name: "unknown reference acknowledged", body: `{}`, header: "Stripe-Signature", parsed: unknown, handled: true, handleErr: repository.ErrNotFound, status: http.StatusOK},
		{name: "failure asks for retry", body: `{}`, header: "Stripe-Signature", parsed: broken, handled: true, handleErr: errors.New("deadlock"), status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gw := &mockGateway{}
			payments := &mockPayments{}
			h := NewPaymentHandler(gw, payments, zap.NewNop())

			gw.On("ParseWebhook", tt.body, "sig").Return(tt.parsed, tt.parseErr)
			if tt.handled {
				payments.On("HandlePaymentNotification", tt.parsed).Return(tt.handleErr)
			}

			c, rec := request(http.MethodPost, "/v1/payments/webhook", tt.body, 0)
			c.Request().Header.Set(tt.header, "sig")
			require.NoError(t, h.Webhook(c))
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			gw.AssertExpectations(t)
			payments.AssertExpectations(t)
			if !tt.handled {
				payments.AssertNotCalled(t, "HandlePaymentNotification", mock.Anything)
			}
		})
	}
}

func TestWebhook_UnknownReferenceIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	gw := &mockGateway{}
	payments := &mockPayments{}
	h := NewPaymentHandler(gw, payments, zap.New(core))
	n := payment.Notification{Reference: "cs_gone", Status: model.PaymentCompleted}
	gw.On("ParseWebhook", `{}`, "sig").Return(n, nil)
	payments.On("HandlePaymentNotification", n).Return(repository.ErrNotFound)

	c, rec := request(http.MethodPost, "/v1/payments/webhook", `{}`, 0)
	c.Request().Header.Set("Stripe-Signature", "sig")
	require.NoError(t, h.Webhook(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "cs_gone", logs.All()[0].ContextMap()["reference"])
	assert.Equal(t, "stripe", logs.All()[0].ContextMap()["provider"])
}
