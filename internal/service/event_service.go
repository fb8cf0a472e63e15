package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/utils"
)

// EventDeps collects the stores EventService writes to.
type EventDeps struct {
	Tx           Transactor
	Events       EventStore
	TicketTypes  TicketTypeStore
	AddOns       AddOnStore
	Coupons      CouponStore
	Schedule     ScheduleStore
	CustomFields CustomFieldStore
	Log          *zap.Logger
}

// EventService is the organizer side: events and everything that hangs
// off them.  Every write checks that the organizer owns the event.
type EventService struct {
	tx           Transactor
	events       EventStore
	ticketTypes  TicketTypeStore
	addOns       AddOnStore
	coupons      CouponStore
	schedule     ScheduleStore
	customFields CustomFieldStore
	log          *zap.Logger
}

func NewEventService(d EventDeps) *EventService {
	return &EventService{
		tx:           d.Tx,
		events:       d.Events,
		ticketTypes:  d.TicketTypes,
		addOns:       d.AddOns,
		coupons:      d.Coupons,
		schedule:     d.Schedule,
		customFields: d.CustomFields,
		log:          d.Log,
	}
}

// CreateEvent stores a new unpublished event.  The route defaults to
// the slug of the title.
func (s *EventService) CreateEvent(ctx context.Context, ownerID uint64, e *model.Event) error {
	e.Title = strings.TrimSpace(e.Title)
	if e.Title == "" {
		return throw("Title is required")
	}
	if e.StartDate.IsZero() {
		return throw("Start date is required")
	}
	if e.EndDate != nil && e.EndDate.Before(e.StartDate) {
		return throw("End date cannot be before start date")
	}
	e.Route = utils.Slugify(e.Route)
	if e.Route == "" {
		e.Route = utils.Slugify(e.Title)
	}
	if e.Route == "" {
		return throw("Could not derive a route from %q", e.Title)
	}
	if e.TimeZone == "" {
		e.TimeZone = "UTC"
	} else if _, err := time.LoadLocation(e.TimeZone); err != nil {
		return throw("Unknown time zone %s", e.TimeZone)
	}
	e.OwnerID = ownerID

	taken, err := s.events.RouteExists(ctx, e.Route)
	if err != nil {
		return err
	}
	if taken {
		return throw("Route %s is already taken", e.Route)
	}
	if err := s.events.Create(ctx, e); err != nil {
		return err
	}
	s.log.Info("event created", zap.Uint64("event_id", e.ID), zap.String("route", e.Route))
	return nil
}

func (s *EventService) ListOwnEvents(ctx context.Context, ownerID uint64) ([]model.Event, error) {
	return nonNil(s.events.ListByOwner(ctx, ownerID))
}

func (s *EventService) ListPublishedEvents(ctx context.Context) ([]model.Event, error) {
	return nonNil(s.events.ListPublished(ctx))
}

// EventDetails is the public view of an event.
type EventDetails struct {
	Event    model.Event          `json:"event"`
	Pages    []model.EventPage    `json:"pages"`
	Schedule []model.ScheduleItem `json:"schedule"`
}

// GetPublishedEvent returns a published event with its published pages
// and schedule.
func (s *EventService) GetPublishedEvent(ctx context.Context, route string) (EventDetails, error) {
	e, err := s.events.GetByRoute(ctx, route)
	if err != nil {
		return EventDetails{}, err
	}
	if !e.IsPublished {
		return EventDetails{}, repository.ErrNotFound
	}
	pages, err := nonNil(s.events.ListPages(ctx, e.ID, true))
	if err != nil {
		return EventDetails{}, err
	}
	items, err := nonNil(s.schedule.ListByEvent(ctx, e.ID))
	if err != nil {
		return EventDetails{}, err
	}
	return EventDetails{Event: e, Pages: pages, Schedule: items}, nil
}

func (s *EventService) SetPublished(ctx context.Context, ownerID, eventID uint64, published bool) error {
	return s.events.SetPublished(ctx, eventID, ownerID, published)
}

func (s *EventService) CreateTicketType(ctx context.Context, ownerID uint64, t *model.TicketType) error {
	if _, err := ownedEvent(ctx, s.events, t.EventID, ownerID); err != nil {
		return err
	}
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return throw("Title is required")
	}
	if err := checkPrice(t.PriceCents, &t.Currency); err != nil {
		return err
	}
	if t.MaxTicketsAvailable < 0 {
		return throw("Maximum tickets available cannot be negative")
	}
	return s.ticketTypes.Create(ctx, t)
}

func (s *EventService) ListTicketTypes(ctx context.Context, ownerID, eventID uint64) ([]model.TicketType, error) {
	if _, err := ownedEvent(ctx, s.events, eventID, ownerID); err != nil {
		return nil, err
	}
	return nonNil(s.ticketTypes.ListByEvent(ctx, eventID))
}

func (s *EventService) CreateAddOn(ctx context.Context, ownerID uint64, a *model.AddOn) error {
	if _, err := ownedEvent(ctx, s.events, a.EventID, ownerID); err != nil {
		return err
	}
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" {
		return throw("Title is required")
	}
	if err := checkPrice(a.PriceCents, &a.Currency); err != nil {
		return err
	}
	opts := make([]string, 0, len(a.Options))
	for _, o := range a.Options {
		if o = strings.TrimSpace(o); o != "" {
			opts = append(opts, o)
		}
	}
	a.Options = opts
	if a.UserSelectsOption && len(a.Options) == 0 {
		return throw("Options are required when the attendee selects an option")
	}
	if !a.UserSelectsOption {
		a.Options = nil
	}
	return s.addOns.Create(ctx, a)
}

func checkPrice(cents int64, currency *string) error {
	if cents < 0 {
		return throw("Price cannot be negative")
	}
	*currency = strings.ToUpper(strings.TrimSpace(*currency))
	if len(*currency) != 3 {
		return throw("Currency must be a three letter code")
	}
	return nil
}

// CreateCoupon stores a bulk ticket coupon.  Its ticket type and free
// add-ons must belong to the coupon's event.
func (s *EventService) CreateCoupon(ctx context.Context, ownerID uint64, c *model.Coupon) error {
	c.Code = strings.TrimSpace(c.Code)
	if c.Code == "" {
		return throw("Coupon code is required")
	}
	if c.GrantedTickets <= 0 {
		return throw("Number of granted tickets must be positive")
	}
	c.ClaimedTickets = 0
	return s.tx.WithTx(ctx, func(ctx context.Context) error {
		if _, err := ownedEvent(ctx, s.events, c.EventID, ownerID); err != nil {
			return err
		}
		tt, err := s.ticketTypes.GetByID(ctx, c.TicketTypeID)
		if err != nil || tt.EventID != c.EventID {
			return throw("Invalid ticket type for this event")
		}
		c.FreeAddOns = uniqueIDs(len(c.FreeAddOns), func(yield func(uint64)) {
			for _, id := range c.FreeAddOns {
				yield(id)
			}
		})
		addOns, err := s.addOns.GetByIDs(ctx, c.FreeAddOns)
		if err != nil {
			return err
		}
		for _, id := range c.FreeAddOns {
			if a, ok := addOns[id]; !ok || a.EventID != c.EventID {
				return throw("Invalid add-on for this event")
			}
		}
		if err := s.coupons.Create(ctx, *c); err != nil {
			return err
		}
		s.log.Info("coupon created", zap.String("code", c.Code), zap.Uint64("event_id", c.EventID),
			zap.Int("granted", c.GrantedTickets))
		return nil
	})
}

func (s *EventService) ListCoupons(ctx context.Context, ownerID, eventID uint64) ([]model.Coupon, error) {
	if _, err := ownedEvent(ctx, s.events, eventID, ownerID); err != nil {
		return nil, err
	}
	return nonNil(s.coupons.ListByEvent(ctx, eventID))
}

// PreparePage fills the route of a published page that has none:
// "<event route>/<slug of title>".
func PreparePage(p *model.EventPage, eventRoute string) error {
	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		return throw("Title is required")
	}
	if p.IsPublished && p.Route == "" {
		p.Route = eventRoute + "/" + utils.Slugify(p.Title)
	}
	return nil
}

func (s *EventService) CreatePage(ctx context.Context, ownerID uint64, p *model.EventPage) error {
	e, err := ownedEvent(ctx, s.events, p.EventID, ownerID)
	if err != nil {
		return err
	}
	if err := PreparePage(p, e.Route); err != nil {
		return err
	}
	return s.events.CreatePage(ctx, p)
}

// ValidateScheduleItem checks the kind of a slot and that it ends after
// it starts.
func ValidateScheduleItem(it *model.ScheduleItem) error {
	switch it.Type {
	case "":
		it.Type = model.ScheduleTalk
	case model.ScheduleTalk, model.ScheduleBreak:
	default:
		return throw("Type must be Talk or Break")
	}
	if it.Date.IsZero() {
		return throw("Date is required")
	}
	start, err := parseClock(it.StartTime)
	if err != nil {
		return throw("Invalid start time %q", it.StartTime)
	}
	end, err := parseClock(it.EndTime)
	if err != nil {
		return throw("Invalid end time %q", it.EndTime)
	}
	if !end.After(start) {
		return throw("End time must be after start time")
	}
	return nil
}

func parseClock(v string) (time.Time, error) {
	if t, err := time.Parse("15:04", v); err == nil {
		return t, nil
	}
	return time.Parse(time.TimeOnly, v)
}

func (s *EventService) CreateScheduleItem(ctx context.Context, ownerID uint64, it *model.ScheduleItem) error {
	if _, err := ownedEvent(ctx, s.events, it.EventID, ownerID); err != nil {
		return err
	}
	if err := ValidateScheduleItem(it); err != nil {
		return err
	}
	return s.schedule.Create(ctx, it)
}

func (s *EventService) CreateCustomField(ctx context.Context, ownerID uint64, f *model.CustomField) error {
	if _, err := ownedEvent(ctx, s.events, f.EventID, ownerID); err != nil {
		return err
	}
	if err := PrepareCustomField(f); err != nil {
		return err
	}
	return s.customFields.Create(ctx, f)
}

func nonNil[T any](items []T, err error) ([]T, error) {
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
