package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/iliyamo/event-ticketing/internal/clock"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/payment"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/telemetry"
)

// ErrAlreadySubmitted is returned when submitting a booking twice.
var ErrAlreadySubmitted = &Error{kind: repository.ErrConflict, msg: "Booking is already submitted"}

// BookingDeps collects the collaborators of BookingService.
type BookingDeps struct {
	Tx            Transactor
	Events        EventStore
	TicketTypes   TicketTypeStore
	AddOns        AddOnStore
	Coupons       CouponStore
	Bookings      BookingStore
	Tickets       TicketStore
	Payments      PaymentStore
	CustomFields  CustomFieldStore
	Users         UserStore
	CouponChecker *CouponService
	Gateway       payment.Gateway
	Publisher     Publisher // optional
	Clock         clock.Clock
	Log           *zap.Logger
	PublicBaseURL string
}

// BookingService validates and prices bookings, issues tickets on
// submit and reconciles payment callbacks.
type BookingService struct {
	tx           Transactor
	events       EventStore
	ticketTypes  TicketTypeStore
	addOns       AddOnStore
	coupons      CouponStore
	bookings     BookingStore
	tickets      TicketStore
	payments     PaymentStore
	customFields CustomFieldStore
	users        UserStore
	checker      *CouponService
	gateway      payment.Gateway
	publisher    Publisher
	clock        clock.Clock
	log          *zap.Logger
	baseURL      string
}

func NewBookingService(d BookingDeps) *BookingService {
	return &BookingService{
		tx:           d.Tx,
		events:       d.Events,
		ticketTypes:  d.TicketTypes,
		addOns:       d.AddOns,
		coupons:      d.Coupons,
		bookings:     d.Bookings,
		tickets:      d.Tickets,
		payments:     d.Payments,
		customFields: d.CustomFields,
		users:        d.Users,
		checker:      d.CouponChecker,
		gateway:      d.Gateway,
		publisher:    d.Publisher,
		clock:        d.Clock,
		log:          d.Log,
		baseURL:      strings.TrimRight(d.PublicBaseURL, "/"),
	}
}

// AvailableTicketType is a bookable ticket type.  RemainingTickets is
// omitted for unlimited types.
type AvailableTicketType struct {
	model.TicketType
	RemainingTickets *int `json:"remaining_tickets,omitempty"`
}

// BookingData is everything the booking form of an event needs.
type BookingData struct {
	Event                model.Event           `json:"event"`
	AvailableTicketTypes []AvailableTicketType `json:"available_ticket_types"`
	AvailableAddOns      []model.AddOn         `json:"available_add_ons"`
	CustomFields         []model.CustomField   `json:"custom_fields"`
}

// GetEventBookingData returns the published ticket types of the event at
// route that can still sell at least one ticket, plus all of its add-ons
// and enabled custom fields.
func (s *BookingService) GetEventBookingData(ctx context.Context, route string) (BookingData, error) {
	event, err := s.events.GetByRoute(ctx, route)
	if err != nil {
		return BookingData{}, err
	}
	if !event.IsPublished {
		return BookingData{}, repository.ErrNotFound
	}

	types, err := s.ticketTypes.ListByEvent(ctx, event.ID)
	if err != nil {
		return BookingData{}, err
	}
	ids := make([]uint64, 0, len(types))
	for _, t := range types {
		if t.IsPublished {
			ids = append(ids, t.ID)
		}
	}
	issued, err := s.ticketTypes.CountIssued(ctx, ids)
	if err != nil {
		return BookingData{}, err
	}
	available := []AvailableTicketType{}
	for _, t := range types {
		if !t.IsPublished || !t.AreTicketsAvailable(1, issued[t.ID]) {
			continue
		}
		at := AvailableTicketType{TicketType: t}
		if !t.Unlimited() {
			r := t.RemainingTickets(issued[t.ID])
			at.RemainingTickets = &r
		}
		available = append(available, at)
	}

	addOns, err := s.addOns.ListByEvent(ctx, event.ID)
	if err != nil {
		return BookingData{}, err
	}
	fields, err := s.customFields.ListByEvent(ctx, event.ID, true)
	if err != nil {
		return BookingData{}, err
	}
	if addOns == nil {
		addOns = []model.AddOn{}
	}
	if fields == nil {
		fields = []model.CustomField{}
	}
	return BookingData{Event: event, AvailableTicketTypes: available, AvailableAddOns: addOns, CustomFields: fields}, nil
}

// AddOnSelection is one add-on picked for an attendee.
type AddOnSelection struct {
	AddOn uint64 `json:"add_on"`
	Value string `json:"value"`
}

// AttendeeInput is one attendee of a booking request.
type AttendeeInput struct {
	FullName     string            `json:"full_name"`
	Email        string            `json:"email"`
	TicketType   uint64            `json:"ticket_type"`
	AddOns       []AddOnSelection  `json:"add_ons"`
	CustomFields map[string]string `json:"custom_fields"`
}

// ProcessBookingInput is a booking request by the session user.
type ProcessBookingInput struct {
	UserID       uint64
	EventID      uint64
	Attendees    []AttendeeInput
	CouponCode   string
	CustomFields map[string]string
}

// ProcessBookingResult carries either the submitted booking (free
// bookings) or the link the user pays through.
type ProcessBookingResult struct {
	BookingName uint64 `json:"booking_name,omitempty"`
	PaymentLink string `json:"payment_link,omitempty"`
}

// ProcessBooking creates a draft booking.  Free bookings are submitted
// straight away; paid ones get a payment link and an Initiated payment.
func (s *BookingService) ProcessBooking(ctx context.Context, in ProcessBookingInput) (ProcessBookingResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "booking.process")
	defer span.End()
	span.SetAttributes(attribute.Int64("event.id", int64(in.EventID)), attribute.Int("attendees", len(in.Attendees)))

	event, err := s.events.GetByID(ctx, in.EventID)
	if err != nil {
		return ProcessBookingResult{}, err
	}
	if !event.IsPublished {
		return ProcessBookingResult{}, throw("%s is not open for booking", event.Title)
	}

	b := model.Booking{
		EventID:      event.ID,
		UserID:       in.UserID,
		DocStatus:    model.DocStatusDraft,
		CustomFields: in.CustomFields,
	}
	if b.Attendees, err = toAttendees(in.Attendees); err != nil {
		return ProcessBookingResult{}, err
	}

	if code := strings.TrimSpace(in.CouponCode); code != "" {
		res := s.checker.Validate(ctx, code, event.Route)
		if !res.Valid {
			return ProcessBookingResult{}, throw("%s", res.Error)
		}
		if n := CouponTicketCount(b.Attendees, res.TicketType); n > res.RemainingTickets {
			return ProcessBookingResult{}, throw("Only %d tickets remaining for this coupon", res.RemainingTickets)
		}
		name := res.CouponName
		b.CouponUsed = &name
	}

	err = s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := s.validate(ctx, &b); err != nil {
			return err
		}
		return s.bookings.Create(ctx, &b)
	})
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return ProcessBookingResult{}, err
	}
	s.log.Info("booking created",
		zap.Uint64("booking_id", b.ID), zap.Uint64("event_id", b.EventID),
		zap.Int64("total_amount_cents", b.TotalCents), zap.String("currency", b.Currency))

	if b.TotalCents == 0 {
		if _, err := s.Submit(ctx, b.ID); err != nil {
			return ProcessBookingResult{}, err
		}
		return ProcessBookingResult{BookingName: b.ID}, nil
	}

	link, err := s.createPaymentLink(ctx, b, event)
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return ProcessBookingResult{}, err
	}
	return ProcessBookingResult{PaymentLink: link}, nil
}

func toAttendees(in []AttendeeInput) ([]model.Attendee, error) {
	out := make([]model.Attendee, 0, len(in))
	for i, a := range in {
		name := strings.TrimSpace(a.FullName)
		if name == "" {
			return nil, throw("Full name is required for attendee %d", i+1)
		}
		email := strings.ToLower(strings.TrimSpace(a.Email))
		if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
			return nil, throw("%s is not a valid email address", a.Email)
		}
		if a.TicketType == 0 {
			return nil, throw("Ticket type is required for %s", name)
		}
		att := model.Attendee{
			FullName:     name,
			Email:        email,
			TicketTypeID: a.TicketType,
			CustomFields: a.CustomFields,
		}
		for _, ao := range a.AddOns {
			att.AddOns = append(att.AddOns, model.AttendeeAddOn{AddOnID: ao.AddOn, Value: strings.TrimSpace(ao.Value)})
		}
		out = append(out, att)
	}
	return out, nil
}

// validate prices the attendees from their ticket types and add-ons,
// applies the coupon, sets total and currency and checks capacity.  It
// must run inside a transaction so the ticket type rows stay locked until
// the booking (or its tickets) is written.  The coupon in use, if any, is
// returned.
func (s *BookingService) validate(ctx context.Context, b *model.Booking) (*model.Coupon, error) {
	if len(b.Attendees) == 0 {
		return nil, throw("At least one attendee is required")
	}

	typeIDs := uniqueIDs(len(b.Attendees), func(yield func(uint64)) {
		for _, a := range b.Attendees {
			yield(a.TicketTypeID)
		}
	})
	types, err := s.ticketTypes.GetByIDs(ctx, typeIDs)
	if err != nil {
		return nil, err
	}
	for i := range b.Attendees {
		a := &b.Attendees[i]
		tt, ok := types[a.TicketTypeID]
		if !ok || tt.EventID != b.EventID {
			return nil, throw("Invalid ticket type for this event")
		}
		a.AmountCents = tt.PriceCents
		a.Currency = tt.Currency
	}

	addOnIDs := uniqueIDs(0, func(yield func(uint64)) {
		for _, a := range b.Attendees {
			for _, ao := range a.AddOns {
				yield(ao.AddOnID)
			}
		}
	})
	addOns, err := s.addOns.GetByIDs(ctx, addOnIDs)
	if err != nil {
		return nil, err
	}
	for i := range b.Attendees {
		for j := range b.Attendees[i].AddOns {
			sel := &b.Attendees[i].AddOns[j]
			ao, ok := addOns[sel.AddOnID]
			if !ok || ao.EventID != b.EventID {
				return nil, throw("Invalid add-on for this event")
			}
			if ao.UserSelectsOption && !ao.HasOption(sel.Value) {
				return nil, throw("%q is not a valid option for %s", sel.Value, ao.Title)
			}
			sel.PriceCents = ao.PriceCents
		}
	}

	var coupon *model.Coupon
	if b.HasCoupon() {
		c, err := s.coupons.GetByCode(ctx, *b.CouponUsed)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, throw("Invalid coupon code")
		}
		if err != nil {
			return nil, err
		}
		if c.EventID != b.EventID {
			return nil, throw("Coupon is not valid for this event")
		}
		if n := CouponTicketCount(b.Attendees, c.TicketTypeID); n > c.Remaining() {
			return nil, throw("Only %d tickets remaining for this coupon", max(c.Remaining(), 0))
		}
		coupon = &c
	}

	fields, err := s.customFields.ListByEvent(ctx, b.EventID, true)
	if err != nil {
		return nil, err
	}
	if err := ApplyCustomFields(fields, b); err != nil {
		return nil, err
	}

	SetTotal(b, coupon)
	if err := SetCurrency(b); err != nil {
		return nil, err
	}

	issued, err := s.ticketTypes.CountIssued(ctx, typeIDs)
	if err != nil {
		return nil, err
	}
	if err := ValidateTicketAvailability(b.Attendees, types, issued); err != nil {
		return nil, err
	}
	return coupon, nil
}

func uniqueIDs(capacity int, each func(yield func(uint64))) []uint64 {
	seen := make(map[uint64]struct{}, capacity)
	out := make([]uint64, 0, capacity)
	each(func(id uint64) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		out = append(out, id)
	})
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *BookingService) createPaymentLink(ctx context.Context, b model.Booking, event model.Event) (string, error) {
	var email string
	if u, err := s.users.GetByID(ctx, b.UserID); err == nil {
		email = u.Email
	}
	co, err := s.gateway.CreateCheckout(ctx, payment.CheckoutRequest{
		BookingID:     b.ID,
		AmountCents:   b.TotalCents,
		Currency:      b.Currency,
		Description:   fmt.Sprintf("%s booking #%d", event.Title, b.ID),
		CustomerEmail: email,
		SuccessURL:    fmt.Sprintf("%s/dashboard/bookings/%d?success=true", s.baseURL, b.ID),
		CancelURL:     fmt.Sprintf("%s/dashboard/bookings/%d", s.baseURL, b.ID),
	})
	if err != nil {
		return "", err
	}
	p := model.Payment{
		BookingID:   b.ID,
		Provider:    s.gateway.Name(),
		Reference:   co.Reference,
		AmountCents: b.TotalCents,
		Currency:    b.Currency,
		Status:      model.PaymentInitiated,
	}
	if err := s.payments.Create(ctx, &p); err != nil {
		return "", err
	}
	return co.URL, nil
}

// Submit re-validates a draft booking, marks it submitted, issues one
// ticket per attendee and adds the coupon-covered attendees to the
// coupon's claimed count.  The confirmation message goes out after
// commit.
func (s *BookingService) Submit(ctx context.Context, bookingID uint64) (model.Booking, error) {
	ctx, span := telemetry.StartSpan(ctx, "booking.submit")
	defer span.End()
	span.SetAttributes(attribute.Int64("booking.id", int64(bookingID)))

	var (
		booking model.Booking
		tickets []model.Ticket
		event   model.Event
	)
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		b, err := s.bookings.GetByID(ctx, bookingID)
		if err != nil {
			return err
		}
		switch b.DocStatus {
		case model.DocStatusSubmitted:
			return ErrAlreadySubmitted
		case model.DocStatusCancelled:
			return throw("Cancelled bookings cannot be submitted")
		}

		coupon, err := s.validate(ctx, &b)
		if err != nil {
			return err
		}
		if err := s.bookings.SetDocStatus(ctx, b.ID, model.DocStatusDraft, model.DocStatusSubmitted); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return ErrAlreadySubmitted
			}
			return err
		}
		b.DocStatus = model.DocStatusSubmitted

		tickets = GenerateTickets(b, uuid.NewString)
		if err := s.tickets.CreateBatch(ctx, tickets); err != nil {
			return err
		}
		if coupon != nil {
			if n := CouponTicketCount(b.Attendees, coupon.TicketTypeID); n > 0 {
				if err := s.coupons.AddClaimed(ctx, coupon.Code, n); err != nil {
					return err
				}
			}
		}
		if event, err = s.events.GetByID(ctx, b.EventID); err != nil {
			return err
		}
		booking = b
		return nil
	})
	if err != nil {
		telemetry.SetSpanError(ctx, err)
		return model.Booking{}, err
	}

	s.log.Info("booking submitted", zap.Uint64("booking_id", booking.ID), zap.Int("tickets", len(tickets)))
	s.publishConfirmed(ctx, booking, event, tickets)
	return booking, nil
}

// GenerateTickets builds one submitted ticket per attendee.
func GenerateTickets(b model.Booking, newCode func() string) []model.Ticket {
	out := make([]model.Ticket, 0, len(b.Attendees))
	for _, a := range b.Attendees {
		t := model.Ticket{
			Code:          newCode(),
			EventID:       b.EventID,
			BookingID:     b.ID,
			TicketTypeID:  a.TicketTypeID,
			AttendeeName:  a.FullName,
			AttendeeEmail: a.Email,
			CouponUsed:    b.CouponUsed,
			DocStatus:     model.DocStatusSubmitted,
			CustomFields:  a.CustomFields,
		}
		for _, ao := range a.AddOns {
			t.AddOns = append(t.AddOns, model.TicketAddOnValue{AddOnID: ao.AddOnID, Value: ao.Value})
		}
		out = append(out, t)
	}
	return out
}

func (s *BookingService) publishConfirmed(ctx context.Context, b model.Booking, event model.Event, tickets []model.Ticket) {
	if s.publisher == nil {
		return
	}
	ev := queue.BookingConfirmedEvent{
		BookingID:        b.ID,
		UserID:           b.UserID,
		EventID:          event.ID,
		EventTitle:       event.Title,
		EventRoute:       event.Route,
		Currency:         b.Currency,
		TotalAmountCents: b.TotalCents,
		ConfirmedAt:      s.clock.Now().Format(time.RFC3339),
	}
	if b.CouponUsed != nil {
		ev.CouponUsed = *b.CouponUsed
	}
	for _, t := range tickets {
		ev.TicketIDs = append(ev.TicketIDs, t.ID)
		ev.Attendees = append(ev.Attendees, t.AttendeeName)
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.publisher.PublishBookingConfirmed(pubCtx, ev); err != nil {
		s.log.Warn("booking.confirmed not published", zap.Uint64("booking_id", b.ID), zap.Error(err))
	}
}

// HandlePaymentNotification applies an authenticated gateway callback to
// the payment it references.
func (s *BookingService) HandlePaymentNotification(ctx context.Context, n payment.Notification) error {
	if n.Status == "" {
		return nil
	}
	ctx, span := telemetry.StartSpan(ctx, "payment.notification")
	defer span.End()
	span.SetAttributes(attribute.String("payment.reference", n.Reference), attribute.String("payment.status", n.Status))

	p, err := s.payments.GetByReference(ctx, s.gateway.Name(), n.Reference)
	if err != nil {
		return err
	}
	if model.IsSuccessfulPaymentStatus(n.Status) {
		return s.OnPaymentAuthorized(ctx, p, n.Status)
	}
	if p.PaymentReceived {
		s.log.Warn("ignoring failure for received payment", zap.Uint64("payment_id", p.ID), zap.String("status", n.Status))
		return nil
	}
	return s.payments.UpdateStatus(ctx, p.ID, model.PaymentFailed, false)
}

// OnPaymentAuthorized marks the payment received and submits its
// booking when status is Authorized or Completed.  Bookings that are
// already submitted are left alone since gateways retry callbacks.
func (s *BookingService) OnPaymentAuthorized(ctx context.Context, p model.Payment, status string) error {
	if !model.IsSuccessfulPaymentStatus(status) {
		return nil
	}
	if err := s.payments.UpdateStatus(ctx, p.ID, status, true); err != nil {
		s.log.Error("booking failed", zap.Uint64("booking_id", p.BookingID), zap.Error(err))
		return throw("Booking Failed! Please contact support.")
	}
	if _, err := s.Submit(ctx, p.BookingID); err != nil {
		if errors.Is(err, ErrAlreadySubmitted) {
			return nil
		}
		s.log.Error("booking failed", zap.Uint64("booking_id", p.BookingID), zap.Error(err))
		return throw("Booking Failed! Please contact support.")
	}
	return nil
}

// BookingDetails is a booking with its tickets and latest payment.
type BookingDetails struct {
	Booking model.Booking  `json:"booking"`
	Tickets []model.Ticket `json:"tickets"`
	Payment *model.Payment `json:"payment,omitempty"`
}

// GetBooking returns one of the user's bookings.
func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID uint64) (BookingDetails, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return BookingDetails{}, err
	}
	if b.UserID != userID {
		return BookingDetails{}, repository.ErrForbidden
	}
	tickets, err := s.tickets.ListByBooking(ctx, b.ID)
	if err != nil {
		return BookingDetails{}, err
	}
	if tickets == nil {
		tickets = []model.Ticket{}
	}
	out := BookingDetails{Booking: b, Tickets: tickets}
	p, err := s.payments.LatestForBooking(ctx, b.ID)
	switch {
	case err == nil:
		out.Payment = &p
	case !errors.Is(err, repository.ErrNotFound):
		return BookingDetails{}, err
	}
	return out, nil
}

// ListBookings returns the user's bookings, newest first.
func (s *BookingService) ListBookings(ctx context.Context, userID uint64) ([]model.Booking, error) {
	out, err := s.bookings.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Booking{}
	}
	return out, nil
}
