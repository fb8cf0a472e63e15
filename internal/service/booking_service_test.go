package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/event-ticketing/internal/clock"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/payment"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type bookingFixture struct {
	db        *memDB
	svc       *BookingService
	coupons   *CouponService
	gateway   *mockGateway
	publisher *mockPublisher

	user    model.User
	event   model.Event
	general model.TicketType
	vip     model.TicketType
	shirt   model.AddOn
	lunch   model.AddOn
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()
	db := newMemDB()
	f := &bookingFixture{db: db, gateway: &mockGateway{}, publisher: &mockPublisher{}}
	f.user = db.addUser(model.User{Email: "ada@example.com", FullName: "Ada", Role: model.RoleAttendee, IsActive: true})
	f.event = db.addEvent(model.Event{OwnerID: 99, Title: "GopherCon", Route: "gophercon", IsPublished: true})
	f.general = db.addTicketType(model.TicketType{EventID: f.event.ID, Title: "General", PriceCents: 5000, Currency: "USD", MaxTicketsAvailable: 3, IsPublished: true})
	f.vip = db.addTicketType(model.TicketType{EventID: f.event.ID, Title: "VIP", PriceCents: 20000, Currency: "USD", IsPublished: true})
	f.shirt = db.addAddOn(model.AddOn{EventID: f.event.ID, Title: "T-Shirt", PriceCents: 1500, Currency: "USD", UserSelectsOption: true, Options: []string{"S", "M", "L"}})
	f.lunch = db.addAddOn(model.AddOn{EventID: f.event.ID, Title: "Lunch", PriceCents: 800, Currency: "USD"})

	log := zap.NewNop()
	f.coupons = NewCouponService(memEvents{db}, memCoupons{db}, memTicketTypes{db}, memAddOns{db}, log)
	f.svc = NewBookingService(BookingDeps{
		Tx:            db,
		Events:        memEvents{db},
		TicketTypes:   memTicketTypes{db},
		AddOns:        memAddOns{db},
		Coupons:       memCoupons{db},
		Bookings:      memBookings{db},
		Tickets:       memTickets{db},
		Payments:      memPayments{db},
		CustomFields:  memCustomFields{db},
		Users:         memUsers{db},
		CouponChecker: f.coupons,
		Gateway:       f.gateway,
		Publisher:     f.publisher,
		Clock:         clock.NewFixed(testNow),
		Log:           log,
		PublicBaseURL: "https://tickets.example.com/",
	})
	return f
}

func (f *bookingFixture) input(attendees ...AttendeeInput) ProcessBookingInput {
	return ProcessBookingInput{UserID: f.user.ID, EventID: f.event.ID, Attendees: attendees}
}

func person(name string, ticketType uint64, addOns ...AddOnSelection) AttendeeInput {
	return AttendeeInput{FullName: name, Email: strings.ToLower(name) + "@example.com", TicketType: ticketType, AddOns: addOns}
}

func (f *bookingFixture) expectPublish() {
	f.publisher.On("PublishBookingConfirmed", mock.Anything, mock.AnythingOfType("queue.BookingConfirmedEvent")).Return(nil)
}

func (f *bookingFixture) issued(typeID uint64) int {
	n := 0
	for _, t := range f.db.tickets {
		if t.TicketTypeID == typeID && t.DocStatus == model.DocStatusSubmitted {
			n++
		}
	}
	return n
}

func TestProcessBooking_PaidBookingReturnsPaymentLink(t *testing.T) {
	f := newBookingFixture(t)
	f.gateway.On("CreateCheckout", mock.Anything, mock.MatchedBy(func(r payment.CheckoutRequest) bool {
		return r.AmountCents == 5000+1500+20000+800 &&
			r.Currency == "USD" &&
			r.CustomerEmail == "ada@example.com" &&
			strings.HasPrefix(r.SuccessURL, "https://tickets.example.com/dashboard/bookings/") &&
			strings.HasSuffix(r.SuccessURL, "?success=true")
	})).Return(payment.Checkout{Reference: "cs_1", URL: "https://pay.example.com/cs_1"}, nil)

	res, err := f.svc.ProcessBooking(context.Background(), f.input(
		person("Ada", f.general.ID, AddOnSelection{AddOn: f.shirt.ID, Value: "M"}),
		person("Bob", f.vip.ID, AddOnSelection{AddOn: f.lunch.ID}),
	))
	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/cs_1", res.PaymentLink)
	assert.Zero(t, res.BookingName)

	require.Len(t, f.db.bookings, 1)
	for _, b := range f.db.bookings {
		assert.Equal(t, model.DocStatusDraft, b.DocStatus)
		assert.Equal(t, int64(27300), b.TotalCents)
		assert.Equal(t, "USD", b.Currency)
		assert.Equal(t, int64(1500), b.Attendees[0].AddOnTotalCents)
	}
	require.Len(t, f.db.payments, 1)
	for _, p := range f.db.payments {
		assert.Equal(t, model.PaymentInitiated, p.Status)
		assert.Equal(t, "mock", p.Provider)
		assert.Equal(t, "cs_1", p.Reference)
		assert.False(t, p.PaymentReceived)
	}
	assert.Empty(t, f.db.tickets)
	f.gateway.AssertExpectations(t)
	f.publisher.AssertNotCalled(t, "PublishBookingConfirmed", mock.Anything, mock.Anything)
}

func TestProcessBooking_FreeBookingIssuesTickets(t *testing.T) {
	f := newBookingFixture(t)
	f.db.coupons["SPONSOR"] = model.Coupon{Code: "SPONSOR", EventID: f.event.ID, TicketTypeID: f.general.ID, GrantedTickets: 5, FreeAddOns: []uint64{f.shirt.ID}}
	f.expectPublish()

	res, err := f.svc.ProcessBooking(context.Background(), ProcessBookingInput{
		UserID:  f.user.ID,
		EventID: f.event.ID,
		Attendees: []AttendeeInput{
			person("Ada", f.general.ID, AddOnSelection{AddOn: f.shirt.ID, Value: "L"}),
			person("Bob", f.general.ID),
		},
		CouponCode: " SPONSOR ",
	})
	require.NoError(t, err)
	assert.Empty(t, res.PaymentLink)
	require.NotZero(t, res.BookingName)

	b := f.db.bookings[res.BookingName]
	assert.Equal(t, model.DocStatusSubmitted, b.DocStatus)
	assert.Equal(t, 2, f.issued(f.general.ID))
	assert.Equal(t, 2, f.db.coupons["SPONSOR"].ClaimedTickets)
	assert.Empty(t, f.db.payments)

	tickets, err := memTickets{f.db}.ListByBooking(context.Background(), res.BookingName)
	require.NoError(t, err)
	require.Len(t, tickets, 2)
	assert.Equal(t, "ada@example.com", tickets[0].AttendeeEmail)
	assert.Equal(t, []model.TicketAddOnValue{{AddOnID: f.shirt.ID, Value: "L"}}, tickets[0].AddOns)
	require.NotNil(t, tickets[0].CouponUsed)
	assert.Equal(t, "SPONSOR", *tickets[0].CouponUsed)
	assert.NotEqual(t, tickets[0].Code, tickets[1].Code)

	f.publisher.AssertCalled(t, "PublishBookingConfirmed", mock.Anything, mock.MatchedBy(func(ev queue.BookingConfirmedEvent) bool {
		return ev.BookingID == res.BookingName && ev.EventRoute == "gophercon" && len(ev.TicketIDs) == 2 && ev.ConfirmedAt == "2025-03-14T09:30:00Z"
	}))
}

func TestProcessBooking_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(f *bookingFixture)
		input   func(f *bookingFixture) ProcessBookingInput
		wantErr string
	}{
		{
			name:    "no attendees",
			input:   func(f *bookingFixture) ProcessBookingInput { return f.input() },
			wantErr: "At least one attendee is required",
		},
		{
			name: "over capacity",
			setup: func(f *bookingFixture) {
				f.db.issueTickets(f.general.ID, 2, model.DocStatusSubmitted)
			},
			input: func(f *bookingFixture) ProcessBookingInput {
				return f.input(person("Ada", f.general.ID), person("Bob", f.general.ID))
			},
			wantErr: "Only 1 tickets available for General, you are trying to book 2!",
		},
		{
			name: "unpublished ticket type",
			setup: func(f *bookingFixture) {
				tt := f.db.ticketTypes[f.vip.ID]
				tt.IsPublished = false
				f.db.ticketTypes[f.vip.ID] = tt
			},
			input:   func(f *bookingFixture) ProcessBookingInput { return f.input(person("Ada", f.vip.ID)) },
			wantErr: "VIP tickets no longer available!",
		},
		{
			name: "ticket type of another event",
			setup: func(f *bookingFixture) {
				other := f.db.addEvent(model.Event{Title: "Other", Route: "other"})
				f.db.addTicketType(model.TicketType{EventID: other.ID, Title: "Other", IsPublished: true})
			},
			input: func(f *bookingFixture) ProcessBookingInput {
				return f.input(person("Ada", f.db.seq))
			},
			wantErr: "Invalid ticket type for this event",
		},
		{
			name: "add-on option not offered",
			input: func(f *bookingFixture) ProcessBookingInput {
				return f.input(person("Ada", f.general.ID, AddOnSelection{AddOn: f.shirt.ID, Value: "XXL"}))
			},
			wantErr: `"XXL" is not a valid option for T-Shirt`,
		},
		{
			name: "bad email",
			input: func(f *bookingFixture) ProcessBookingInput {
				return f.input(AttendeeInput{FullName: "Ada", Email: "nope", TicketType: f.general.ID})
			},
			wantErr: "nope is not a valid email address",
		},
		{
			name: "unpublished event",
			setup: func(f *bookingFixture) {
				ev := f.db.events[f.event.ID]
				ev.IsPublished = false
				f.db.events[f.event.ID] = ev
			},
			input:   func(f *bookingFixture) ProcessBookingInput { return f.input(person("Ada", f.general.ID)) },
			wantErr: "GopherCon is not open for booking",
		},
		{
			name: "unknown coupon",
			input: func(f *bookingFixture) ProcessBookingInput {
				in := f.input(person("Ada", f.general.ID))
				in.CouponCode = "NOPE"
				return in
			},
			wantErr: "Invalid coupon code",
		},
		{
			name: "more coupon attendees than remaining",
			setup: func(f *bookingFixture) {
				f.db.coupons["DUO"] = model.Coupon{Code: "DUO", EventID: f.event.ID, TicketTypeID: f.vip.ID, GrantedTickets: 2, ClaimedTickets: 1}
			},
			input: func(f *bookingFixture) ProcessBookingInput {
				in := f.input(person("Ada", f.vip.ID), person("Bob", f.vip.ID))
				in.CouponCode = "DUO"
				return in
			},
			wantErr: "Only 1 tickets remaining for this coupon",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBookingFixture(t)
			if tt.setup != nil {
				tt.setup(f)
			}
			_, err := f.svc.ProcessBooking(context.Background(), tt.input(f))
			require.ErrorIs(t, err, ErrValidation)
			assert.EqualError(t, err, tt.wantErr)
			assert.Empty(t, f.db.bookings)
			f.gateway.AssertNotCalled(t, "CreateCheckout", mock.Anything, mock.Anything)
		})
	}
}

func TestSubmit_TwiceIsRejected(t *testing.T) {
	f := newBookingFixture(t)
	f.expectPublish()
	b := model.Booking{EventID: f.event.ID, UserID: f.user.ID, Attendees: []model.Attendee{{FullName: "Ada", Email: "ada@example.com", TicketTypeID: f.vip.ID}}}
	require.NoError(t, memBookings{f.db}.Create(context.Background(), &b))

	got, err := f.svc.Submit(context.Background(), b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DocStatusSubmitted, got.DocStatus)
	assert.Equal(t, int64(20000), got.TotalCents)

	_, err = f.svc.Submit(context.Background(), b.ID)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)
	assert.ErrorIs(t, err, repository.ErrConflict)
	assert.Equal(t, 1, f.issued(f.vip.ID))
}

func TestSubmit_RechecksCapacity(t *testing.T) {
	f := newBookingFixture(t)
	b := model.Booking{EventID: f.event.ID, UserID: f.user.ID, Attendees: []model.Attendee{{FullName: "Ada", Email: "ada@example.com", TicketTypeID: f.general.ID}}}
	require.NoError(t, memBookings{f.db}.Create(context.Background(), &b))
	f.db.issueTickets(f.general.ID, 3, model.DocStatusSubmitted)

	_, err := f.svc.Submit(context.Background(), b.ID)
	assert.EqualError(t, err, "Only 0 tickets available for General, you are trying to book 1!")
	assert.Equal(t, model.DocStatusDraft, f.db.bookings[b.ID].DocStatus)
}

func TestSubmit_PublishFailureIsNotFatal(t *testing.T) {
	f := newBookingFixture(t)
	f.publisher.On("PublishBookingConfirmed", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	b := model.Booking{EventID: f.event.ID, UserID: f.user.ID, Attendees: []model.Attendee{{FullName: "Ada", Email: "ada@example.com", TicketTypeID: f.vip.ID}}}
	require.NoError(t, memBookings{f.db}.Create(context.Background(), &b))

	_, err := f.svc.Submit(context.Background(), b.ID)
	assert.NoError(t, err)
	f.publisher.AssertExpectations(t)
}

// paidBooking creates a draft booking with an Initiated payment "cs_1".
func (f *bookingFixture) paidBooking(t *testing.T) (model.Booking, model.Payment) {
	t.Helper()
	b := model.Booking{EventID: f.event.ID, UserID: f.user.ID, Attendees: []model.Attendee{{FullName: "Ada", Email: "ada@example.com", TicketTypeID: f.vip.ID}}}
	require.NoError(t, memBookings{f.db}.Create(context.Background(), &b))
	p := model.Payment{BookingID: b.ID, Provider: "mock", Reference: "cs_1", AmountCents: 20000, Currency: "USD", Status: model.PaymentInitiated}
	require.NoError(t, memPayments{f.db}.Create(context.Background(), &p))
	return b, p
}

func TestHandlePaymentNotification_CompletedSubmitsBooking(t *testing.T) {
	f := newBookingFixture(t)
	f.expectPublish()
	b, p := f.paidBooking(t)

	err := f.svc.HandlePaymentNotification(context.Background(), payment.Notification{Reference: "cs_1", Status: model.PaymentCompleted})
	require.NoError(t, err)
	assert.Equal(t, model.DocStatusSubmitted, f.db.bookings[b.ID].DocStatus)
	assert.True(t, f.db.payments[p.ID].PaymentReceived)
	assert.Equal(t, model.PaymentCompleted, f.db.payments[p.ID].Status)
	assert.Equal(t, 1, f.issued(f.vip.ID))

	// gateways retry callbacks
	err = f.svc.HandlePaymentNotification(context.Background(), payment.Notification{Reference: "cs_1", Status: model.PaymentCompleted})
	require.NoError(t, err)
	assert.Equal(t, 1, f.issued(f.vip.ID))
}

func TestHandlePaymentNotification_Failed(t *testing.T) {
	f := newBookingFixture(t)
	b, p := f.paidBooking(t)

	require.NoError(t, f.svc.HandlePaymentNotification(context.Background(), payment.Notification{Reference: "cs_1", Status: model.PaymentFailed}))
	assert.Equal(t, model.PaymentFailed, f.db.payments[p.ID].Status)
	assert.Equal(t, model.DocStatusDraft, f.db.bookings[b.ID].DocStatus)
}

func TestHandlePaymentNotification_FailureAfterReceiptIgnored(t *testing.T) {
	f := newBookingFixture(t)
	_, p := f.paidBooking(t)
	p.Status, p.PaymentReceived = model.PaymentCompleted, true
	f.db.payments[p.ID] = p

	require.NoError(t, f.svc.HandlePaymentNotification(context.Background(), payment.Notification{Reference: "cs_1", Status: model.PaymentFailed}))
	assert.Equal(t, model.PaymentCompleted, f.db.payments[p.ID].Status)
}

func TestHandlePaymentNotification_UnknownReferenceAndEmptyStatus(t *testing.T) {
	f := newBookingFixture(t)
	assert.NoError(t, f.svc.HandlePaymentNotification(context.Background(), payment.Notification{Reference: "cs_x"}))

	err := f.svc.HandlePaymentNotification(context.Background(), payment.Notification{Reference: "cs_x", Status: model.PaymentCompleted})
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestOnPaymentAuthorized_SubmitFailureSurfacesGenericMessage(t *testing.T) {
	f := newBookingFixture(t)
	_, p := f.paidBooking(t)
	f.db.errs["tickets.CreateBatch"] = errors.New("disk full")

	err := f.svc.OnPaymentAuthorized(context.Background(), p, model.PaymentAuthorized)
	require.ErrorIs(t, err, ErrValidation)
	assert.EqualError(t, err, "Booking Failed! Please contact support.")

	f.db.errs["tickets.CreateBatch"] = nil
	f.db.errs["payments.UpdateStatus"] = errors.New("lock wait timeout")
	err = f.svc.OnPaymentAuthorized(context.Background(), p, model.PaymentAuthorized)
	assert.EqualError(t, err, "Booking Failed! Please contact support.")
}

func TestOnPaymentAuthorized_IgnoresOtherStatuses(t *testing.T) {
	f := newBookingFixture(t)
	b, p := f.paidBooking(t)
	require.NoError(t, f.svc.OnPaymentAuthorized(context.Background(), p, "Pending"))
	assert.Equal(t, model.DocStatusDraft, f.db.bookings[b.ID].DocStatus)
	assert.Equal(t, model.PaymentInitiated, f.db.payments[p.ID].Status)
}

func TestGetEventBookingData(t *testing.T) {
	f := newBookingFixture(t)
	f.db.addTicketType(model.TicketType{EventID: f.event.ID, Title: "Hidden", IsPublished: false})
	f.db.issueTickets(f.general.ID, 1, model.DocStatusSubmitted)
	f.db.issueTickets(f.general.ID, 4, model.DocStatusCancelled)

	data, err := f.svc.GetEventBookingData(context.Background(), "gophercon")
	require.NoError(t, err)
	require.Len(t, data.AvailableTicketTypes, 2)
	assert.Equal(t, "General", data.AvailableTicketTypes[0].Title)
	require.NotNil(t, data.AvailableTicketTypes[0].RemainingTickets)
	assert.Equal(t, 2, *data.AvailableTicketTypes[0].RemainingTickets)
	assert.Equal(t, "VIP", data.AvailableTicketTypes[1].Title)
	assert.Nil(t, data.AvailableTicketTypes[1].RemainingTickets)
	assert.Len(t, data.AvailableAddOns, 2)
	assert.NotNil(t, data.CustomFields)

	f.db.issueTickets(f.general.ID, 2, model.DocStatusSubmitted)
	data, err = f.svc.GetEventBookingData(context.Background(), "gophercon")
	require.NoError(t, err)
	require.Len(t, data.AvailableTicketTypes, 1)
	assert.Equal(t, "VIP", data.AvailableTicketTypes[0].Title)

	_, err = f.svc.GetEventBookingData(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetEventBookingData_UnpublishedEventIsHidden(t *testing.T) {
	f := newBookingFixture(t)
	ev := f.db.events[f.event.ID]
	ev.IsPublished = false
	f.db.events[f.event.ID] = ev

	_, err := f.svc.GetEventBookingData(context.Background(), "gophercon")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetBooking_OwnerOnly(t *testing.T) {
	f := newBookingFixture(t)
	b, _ := f.paidBooking(t)

	d, err := f.svc.GetBooking(context.Background(), f.user.ID, b.ID)
	require.NoError(t, err)
	require.NotNil(t, d.Payment)
	assert.Equal(t, "cs_1", d.Payment.Reference)
	assert.Empty(t, d.Tickets)

	_, err = f.svc.GetBooking(context.Background(), f.user.ID+100, b.ID)
	assert.ErrorIs(t, err, repository.ErrForbidden)

	list, err := f.svc.ListBookings(context.Background(), 12345)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestGenerateTickets(t *testing.T) {
	code := "C"
	b := model.Booking{ID: 4, EventID: 2, CouponUsed: &code, Attendees: []model.Attendee{
		{FullName: "Ada", Email: "ada@example.com", TicketTypeID: 7, AddOns: []model.AttendeeAddOn{{AddOnID: 3, Value: "M", PriceCents: 100}}, CustomFields: map[string]string{"diet": "vegan"}},
		{FullName: "Bob", Email: "bob@example.com", TicketTypeID: 8},
	}}
	n := 0
	tickets := GenerateTickets(b, func() string {
		n++
		return strings.Repeat("x", n)
	})

	require.Len(t, tickets, 2)
	assert.Equal(t, model.Ticket{
		Code:          "x",
		EventID:       2,
		BookingID:     4,
		TicketTypeID:  7,
		AttendeeName:  "Ada",
		AttendeeEmail: "ada@example.com",
		CouponUsed:    &code,
		DocStatus:     model.DocStatusSubmitted,
		AddOns:        []model.TicketAddOnValue{{AddOnID: 3, Value: "M"}},
		CustomFields:  map[string]string{"diet": "vegan"},
	}, tickets[0])
	assert.Equal(t, "xx", tickets[1].Code)
	assert.Nil(t, tickets[1].AddOns)
}
