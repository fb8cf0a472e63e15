package service

import (
	"context"
	"time"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/queue"
	"github.com/iliyamo/event-ticketing/internal/repository"
)

// Transactor runs fn in a transaction that stores called with the ctx
// passed to fn join.
type Transactor interface {
	WithTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type EventStore interface {
	Create(ctx context.Context, e *model.Event) error
	GetByID(ctx context.Context, id uint64) (model.Event, error)
	GetByRoute(ctx context.Context, route string) (model.Event, error)
	ListByOwner(ctx context.Context, ownerID uint64) ([]model.Event, error)
	ListPublished(ctx context.Context) ([]model.Event, error)
	SetPublished(ctx context.Context, id, ownerID uint64, published bool) error
	RouteExists(ctx context.Context, route string) (bool, error)
	CreatePage(ctx context.Context, p *model.EventPage) error
	ListPages(ctx context.Context, eventID uint64, publishedOnly bool) ([]model.EventPage, error)
}

type TicketTypeStore interface {
	Create(ctx context.Context, t *model.TicketType) error
	GetByID(ctx context.Context, id uint64) (model.TicketType, error)
	ListByEvent(ctx context.Context, eventID uint64) ([]model.TicketType, error)
	GetByIDs(ctx context.Context, ids []uint64) (map[uint64]model.TicketType, error)
	CountIssued(ctx context.Context, ids []uint64) (map[uint64]int, error)
}

type AddOnStore interface {
	Create(ctx context.Context, a *model.AddOn) error
	ListByEvent(ctx context.Context, eventID uint64) ([]model.AddOn, error)
	GetByIDs(ctx context.Context, ids []uint64) (map[uint64]model.AddOn, error)
}

type CouponStore interface {
	Create(ctx context.Context, c model.Coupon) error
	GetByCode(ctx context.Context, code string) (model.Coupon, error)
	AddClaimed(ctx context.Context, code string, n int) error
	ListByEvent(ctx context.Context, eventID uint64) ([]model.Coupon, error)
}

type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByID(ctx context.Context, id uint64) (model.Booking, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error)
	SetDocStatus(ctx context.Context, id uint64, from, to model.DocStatus) error
}

type TicketStore interface {
	CreateBatch(ctx context.Context, tickets []model.Ticket) error
	GetByID(ctx context.Context, id uint64) (model.Ticket, error)
	ListByBooking(ctx context.Context, bookingID uint64) ([]model.Ticket, error)
	CancelByIDs(ctx context.Context, ids []uint64) (int64, error)
}

type PaymentStore interface {
	Create(ctx context.Context, p *model.Payment) error
	GetByReference(ctx context.Context, provider, reference string) (model.Payment, error)
	LatestForBooking(ctx context.Context, bookingID uint64) (model.Payment, error)
	UpdateStatus(ctx context.Context, id uint64, status string, received bool) error
}

type CheckInStore interface {
	Create(ctx context.Context, c *model.CheckIn) error
	ExistsOn(ctx context.Context, ticketID uint64, day time.Time) (bool, error)
}

type CancellationStore interface {
	Create(ctx context.Context, c *model.CancellationRequest) error
	GetByID(ctx context.Context, id uint64) (model.CancellationRequest, error)
	SetStatus(ctx context.Context, id uint64, status string) error
	MarkSubmitted(ctx context.Context, id uint64) error
}

type CustomFieldStore interface {
	Create(ctx context.Context, f *model.CustomField) error
	ListByEvent(ctx context.Context, eventID uint64, enabledOnly bool) ([]model.CustomField, error)
}

type ScheduleStore interface {
	Create(ctx context.Context, s *model.ScheduleItem) error
	ListByEvent(ctx context.Context, eventID uint64) ([]model.ScheduleItem, error)
}

type SpeakerStore interface {
	Create(ctx context.Context, s *model.SpeakerProfile) error
	ListByUser(ctx context.Context, userID uint64) ([]model.SpeakerProfile, error)
	SyncDisplayName(ctx context.Context, userID uint64, fullName string) (int64, error)
}

type UserStore interface {
	GetByID(ctx context.Context, id uint64) (model.User, error)
	UpdateFullName(ctx context.Context, id uint64, fullName string) error
}

type ReportStore interface {
	AddOnsOverview(ctx context.Context, f repository.AddOnsOverviewFilter) ([]repository.AddOnsOverviewRow, error)
}

// Publisher delivers booking confirmations to the message broker.
type Publisher interface {
	PublishBookingConfirmed(ctx context.Context, ev queue.BookingConfirmedEvent) error
}
