package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/payment"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// memDB is an in-memory stand-in for the MySQL repositories.  Each store
// type below is a view on it with the repository's method set.
type memDB struct {
	seq           uint64
	users         map[uint64]model.User
	events        map[uint64]model.Event
	pages         []model.EventPage
	ticketTypes   map[uint64]model.TicketType
	addOns        map[uint64]model.AddOn
	coupons       map[string]model.Coupon
	bookings      map[uint64]model.Booking
	tickets       map[uint64]model.Ticket
	payments      map[uint64]model.Payment
	checkIns      []model.CheckIn
	cancellations map[uint64]model.CancellationRequest
	customFields  []model.CustomField
	schedule      []model.ScheduleItem
	speakers      []model.SpeakerProfile

	// errs makes the named operation fail, e.g. "tickets.CreateBatch".
	errs map[string]error
	txs  int
}

func newMemDB() *memDB {
	return &memDB{
		users:         map[uint64]model.User{},
		events:        map[uint64]model.Event{},
		ticketTypes:   map[uint64]model.TicketType{},
		addOns:        map[uint64]model.AddOn{},
		coupons:       map[string]model.Coupon{},
		bookings:      map[uint64]model.Booking{},
		tickets:       map[uint64]model.Ticket{},
		payments:      map[uint64]model.Payment{},
		cancellations: map[uint64]model.CancellationRequest{},
		errs:          map[string]error{},
	}
}

func (db *memDB) next() uint64 {
	db.seq++
	return db.seq
}

func (db *memDB) fail(op string) error { return db.errs[op] }

func (db *memDB) WithTx(ctx context.Context, fn func(ctx context.Context) error) error {
	db.txs++
	return fn(ctx)
}

// ---- fixtures ----

func (db *memDB) addUser(u model.User) model.User {
	u.ID = db.next()
	db.users[u.ID] = u
	return u
}

func (db *memDB) addEvent(e model.Event) model.Event {
	e.ID = db.next()
	db.events[e.ID] = e
	return e
}

func (db *memDB) addTicketType(t model.TicketType) model.TicketType {
	t.ID = db.next()
	db.ticketTypes[t.ID] = t
	return t
}

func (db *memDB) addAddOn(a model.AddOn) model.AddOn {
	a.ID = db.next()
	db.addOns[a.ID] = a
	return a
}

func (db *memDB) issueTickets(typeID uint64, n int, status model.DocStatus) {
	for i := 0; i < n; i++ {
		id := db.next()
		db.tickets[id] = model.Ticket{ID: id, TicketTypeID: typeID, EventID: db.ticketTypes[typeID].EventID, DocStatus: status}
	}
}

// ---- stores ----

type memEvents struct{ db *memDB }

func (s memEvents) Create(_ context.Context, e *model.Event) error {
	e.ID = s.db.next()
	s.db.events[e.ID] = *e
	return nil
}

func (s memEvents) GetByID(_ context.Context, id uint64) (model.Event, error) {
	e, ok := s.db.events[id]
	if !ok {
		return model.Event{}, repository.ErrNotFound
	}
	return e, nil
}

func (s memEvents) GetByRoute(_ context.Context, route string) (model.Event, error) {
	if err := s.db.fail("events.GetByRoute"); err != nil {
		return model.Event{}, err
	}
	for _, e := range s.db.events {
		if e.Route == route {
			return e, nil
		}
	}
	return model.Event{}, repository.ErrNotFound
}

func (s memEvents) ListByOwner(_ context.Context, ownerID uint64) ([]model.Event, error) {
	var out []model.Event
	for _, e := range s.db.events {
		if e.OwnerID == ownerID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s memEvents) ListPublished(context.Context) ([]model.Event, error) {
	var out []model.Event
	for _, e := range s.db.events {
		if e.IsPublished {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s memEvents) SetPublished(_ context.Context, id, ownerID uint64, published bool) error {
	e, ok := s.db.events[id]
	if !ok {
		return repository.ErrNotFound
	}
	if e.OwnerID != ownerID {
		return repository.ErrForbidden
	}
	e.IsPublished = published
	s.db.events[id] = e
	return nil
}

func (s memEvents) RouteExists(_ context.Context, route string) (bool, error) {
	for _, e := range s.db.events {
		if e.Route == route {
			return true, nil
		}
	}
	return false, nil
}

func (s memEvents) CreatePage(_ context.Context, p *model.EventPage) error {
	p.ID = s.db.next()
	s.db.pages = append(s.db.pages, *p)
	return nil
}

func (s memEvents) ListPages(_ context.Context, eventID uint64, publishedOnly bool) ([]model.EventPage, error) {
	var out []model.EventPage
	for _, p := range s.db.pages {
		if p.EventID == eventID && (!publishedOnly || p.IsPublished) {
			out = append(out, p)
		}
	}
	return out, nil
}

type memTicketTypes struct{ db *memDB }

func (s memTicketTypes) Create(_ context.Context, t *model.TicketType) error {
	*t = s.db.addTicketType(*t)
	return nil
}

func (s memTicketTypes) GetByID(_ context.Context, id uint64) (model.TicketType, error) {
	t, ok := s.db.ticketTypes[id]
	if !ok {
		return model.TicketType{}, repository.ErrNotFound
	}
	return t, nil
}

func (s memTicketTypes) ListByEvent(_ context.Context, eventID uint64) ([]model.TicketType, error) {
	var out []model.TicketType
	for _, t := range s.db.ticketTypes {
		if t.EventID == eventID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memTicketTypes) GetByIDs(_ context.Context, ids []uint64) (map[uint64]model.TicketType, error) {
	out := map[uint64]model.TicketType{}
	for _, id := range ids {
		if t, ok := s.db.ticketTypes[id]; ok {
			out[id] = t
		}
	}
	return out, nil
}

func (s memTicketTypes) CountIssued(_ context.Context, ids []uint64) (map[uint64]int, error) {
	out := map[uint64]int{}
	for _, id := range ids {
		for _, t := range s.db.tickets {
			if t.TicketTypeID == id && t.DocStatus == model.DocStatusSubmitted {
				out[id]++
			}
		}
	}
	return out, nil
}

type memAddOns struct{ db *memDB }

func (s memAddOns) Create(_ context.Context, a *model.AddOn) error {
	*a = s.db.addAddOn(*a)
	return nil
}

func (s memAddOns) ListByEvent(_ context.Context, eventID uint64) ([]model.AddOn, error) {
	var out []model.AddOn
	for _, a := range s.db.addOns {
		if a.EventID == eventID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memAddOns) GetByIDs(_ context.Context, ids []uint64) (map[uint64]model.AddOn, error) {
	out := map[uint64]model.AddOn{}
	for _, id := range ids {
		if a, ok := s.db.addOns[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

type memCoupons struct{ db *memDB }

func (s memCoupons) Create(_ context.Context, c model.Coupon) error {
	if _, ok := s.db.coupons[c.Code]; ok {
		return repository.ErrDuplicate
	}
	s.db.coupons[c.Code] = c
	return nil
}

func (s memCoupons) GetByCode(_ context.Context, code string) (model.Coupon, error) {
	if err := s.db.fail("coupons.GetByCode"); err != nil {
		return model.Coupon{}, err
	}
	c, ok := s.db.coupons[code]
	if !ok {
		return model.Coupon{}, repository.ErrNotFound
	}
	return c, nil
}

func (s memCoupons) AddClaimed(_ context.Context, code string, n int) error {
	c, ok := s.db.coupons[code]
	if !ok {
		return repository.ErrNotFound
	}
	c.ClaimedTickets += n
	s.db.coupons[code] = c
	return nil
}

func (s memCoupons) ListByEvent(_ context.Context, eventID uint64) ([]model.Coupon, error) {
	var out []model.Coupon
	for _, c := range s.db.coupons {
		if c.EventID == eventID {
			out = append(out, c)
		}
	}
	return out, nil
}

type memBookings struct{ db *memDB }

func (s memBookings) Create(_ context.Context, b *model.Booking) error {
	b.ID = s.db.next()
	s.db.bookings[b.ID] = cloneBooking(*b)
	return nil
}

func (s memBookings) GetByID(_ context.Context, id uint64) (model.Booking, error) {
	b, ok := s.db.bookings[id]
	if !ok {
		return model.Booking{}, repository.ErrNotFound
	}
	return cloneBooking(b), nil
}

func (s memBookings) ListByUser(_ context.Context, userID uint64) ([]model.Booking, error) {
	var out []model.Booking
	for _, b := range s.db.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s memBookings) SetDocStatus(_ context.Context, id uint64, from, to model.DocStatus) error {
	b, ok := s.db.bookings[id]
	if !ok || b.DocStatus != from {
		return repository.ErrConflict
	}
	b.DocStatus = to
	s.db.bookings[id] = b
	return nil
}

func cloneBooking(b model.Booking) model.Booking {
	atts := make([]model.Attendee, len(b.Attendees))
	for i, a := range b.Attendees {
		a.AddOns = append([]model.AttendeeAddOn(nil), a.AddOns...)
		atts[i] = a
	}
	b.Attendees = atts
	return b
}

type memTickets struct{ db *memDB }

func (s memTickets) CreateBatch(_ context.Context, tickets []model.Ticket) error {
	if err := s.db.fail("tickets.CreateBatch"); err != nil {
		return err
	}
	for i := range tickets {
		tickets[i].ID = s.db.next()
		s.db.tickets[tickets[i].ID] = tickets[i]
	}
	return nil
}

func (s memTickets) GetByID(_ context.Context, id uint64) (model.Ticket, error) {
	t, ok := s.db.tickets[id]
	if !ok {
		return model.Ticket{}, repository.ErrNotFound
	}
	return t, nil
}

func (s memTickets) ListByBooking(_ context.Context, bookingID uint64) ([]model.Ticket, error) {
	var out []model.Ticket
	for _, t := range s.db.tickets {
		if t.BookingID == bookingID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s memTickets) CancelByIDs(_ context.Context, ids []uint64) (int64, error) {
	var n int64
	for _, id := range ids {
		if t, ok := s.db.tickets[id]; ok && t.DocStatus == model.DocStatusSubmitted {
			t.DocStatus = model.DocStatusCancelled
			s.db.tickets[id] = t
			n++
		}
	}
	return n, nil
}

type memPayments struct{ db *memDB }

func (s memPayments) Create(_ context.Context, p *model.Payment) error {
	p.ID = s.db.next()
	s.db.payments[p.ID] = *p
	return nil
}

func (s memPayments) GetByReference(_ context.Context, provider, reference string) (model.Payment, error) {
	for _, p := range s.db.payments {
		if p.Provider == provider && p.Reference == reference {
			return p, nil
		}
	}
	return model.Payment{}, repository.ErrNotFound
}

func (s memPayments) LatestForBooking(_ context.Context, bookingID uint64) (model.Payment, error) {
	var (
		out   model.Payment
		found bool
	)
	for _, p := range s.db.payments {
		if p.BookingID == bookingID && p.ID > out.ID {
			out, found = p, true
		}
	}
	if !found {
		return model.Payment{}, repository.ErrNotFound
	}
	return out, nil
}

func (s memPayments) UpdateStatus(_ context.Context, id uint64, status string, received bool) error {
	if err := s.db.fail("payments.UpdateStatus"); err != nil {
		return err
	}
	p, ok := s.db.payments[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.Status, p.PaymentReceived = status, received
	s.db.payments[id] = p
	return nil
}

type memCheckIns struct{ db *memDB }

func (s memCheckIns) Create(_ context.Context, c *model.CheckIn) error {
	c.ID = s.db.next()
	s.db.checkIns = append(s.db.checkIns, *c)
	return nil
}

func (s memCheckIns) ExistsOn(_ context.Context, ticketID uint64, day time.Time) (bool, error) {
	for _, c := range s.db.checkIns {
		if c.TicketID == ticketID && c.Date.Equal(day) && c.DocStatus == model.DocStatusSubmitted {
			return true, nil
		}
	}
	return false, nil
}

type memCancellations struct{ db *memDB }

func (s memCancellations) Create(_ context.Context, c *model.CancellationRequest) error {
	c.ID = s.db.next()
	s.db.cancellations[c.ID] = *c
	return nil
}

func (s memCancellations) GetByID(_ context.Context, id uint64) (model.CancellationRequest, error) {
	c, ok := s.db.cancellations[id]
	if !ok {
		return model.CancellationRequest{}, repository.ErrNotFound
	}
	return c, nil
}

func (s memCancellations) SetStatus(_ context.Context, id uint64, status string) error {
	c, ok := s.db.cancellations[id]
	if !ok || c.DocStatus != model.DocStatusDraft {
		return repository.ErrConflict
	}
	c.Status = status
	s.db.cancellations[id] = c
	return nil
}

func (s memCancellations) MarkSubmitted(_ context.Context, id uint64) error {
	c, ok := s.db.cancellations[id]
	if !ok || c.DocStatus != model.DocStatusDraft {
		return repository.ErrConflict
	}
	c.DocStatus = model.DocStatusSubmitted
	s.db.cancellations[id] = c
	return nil
}

type memCustomFields struct{ db *memDB }

func (s memCustomFields) Create(_ context.Context, f *model.CustomField) error {
	f.ID = s.db.next()
	s.db.customFields = append(s.db.customFields, *f)
	return nil
}

func (s memCustomFields) ListByEvent(_ context.Context, eventID uint64, enabledOnly bool) ([]model.CustomField, error) {
	var out []model.CustomField
	for _, f := range s.db.customFields {
		if f.EventID == eventID && (!enabledOnly || f.Enabled) {
			out = append(out, f)
		}
	}
	return out, nil
}

type memSchedule struct{ db *memDB }

func (s memSchedule) Create(_ context.Context, it *model.ScheduleItem) error {
	it.ID = s.db.next()
	s.db.schedule = append(s.db.schedule, *it)
	return nil
}

func (s memSchedule) ListByEvent(_ context.Context, eventID uint64) ([]model.ScheduleItem, error) {
	var out []model.ScheduleItem
	for _, it := range s.db.schedule {
		if it.EventID == eventID {
			out = append(out, it)
		}
	}
	return out, nil
}

type memSpeakers struct{ db *memDB }

func (s memSpeakers) Create(_ context.Context, p *model.SpeakerProfile) error {
	p.ID = s.db.next()
	s.db.speakers = append(s.db.speakers, *p)
	return nil
}

func (s memSpeakers) ListByUser(_ context.Context, userID uint64) ([]model.SpeakerProfile, error) {
	var out []model.SpeakerProfile
	for _, p := range s.db.speakers {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s memSpeakers) SyncDisplayName(_ context.Context, userID uint64, fullName string) (int64, error) {
	var n int64
	for i := range s.db.speakers {
		if s.db.speakers[i].UserID == userID {
			s.db.speakers[i].DisplayName = fullName
			n++
		}
	}
	return n, nil
}

type memUsers struct{ db *memDB }

func (s memUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := s.db.users[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s memUsers) UpdateFullName(_ context.Context, id uint64, fullName string) error {
	u, ok := s.db.users[id]
	if !ok {
		return repository.ErrNotFound
	}
	u.FullName = strings.TrimSpace(fullName)
	s.db.users[id] = u
	return nil
}

type memReports struct {
	rows []repository.AddOnsOverviewRow
	got  repository.AddOnsOverviewFilter
}

func (s *memReports) AddOnsOverview(_ context.Context, f repository.AddOnsOverviewFilter) ([]repository.AddOnsOverviewRow, error) {
	s.got = f
	return s.rows, nil
}

// ---- mocks ----

type mockGateway struct{ mock.Mock }

func (m *mockGateway) Name() string { return "mock" }

func (m *mockGateway) CreateCheckout(ctx context.Context, req payment.CheckoutRequest) (payment.Checkout, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(payment.Checkout), args.Error(1)
}

func (m *mockGateway) ParseWebhook(payload []byte, signature string) (payment.Notification, error) {
	args := m.Called(payload, signature)
	return args.Get(0).(payment.Notification), args.Error(1)
}

type mockPublisher struct{ mock.Mock }

func (m *mockPublisher) PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error {
	return m.Called(ctx, ev).Error(0)
}
