package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/telemetry"
)

// CouponResult is the outcome of a coupon check.  Business failures are
// reported through Valid and Error, never as a Go error.
type CouponResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
	*CouponDetails
}

// CouponDetails describes a usable coupon.
type CouponDetails struct {
	CouponName       string      `json:"coupon_name"`
	TicketType       uint64      `json:"ticket_type"`
	TicketTypeTitle  string      `json:"ticket_type_title"`
	RemainingTickets int         `json:"remaining_tickets"`
	GrantedTickets   int         `json:"granted_tickets"`
	ClaimedTickets   int         `json:"claimed_tickets"`
	FreeAddOns       []FreeAddOn `json:"free_add_ons"`
}

// FreeAddOn is an add-on included with a coupon.
type FreeAddOn struct {
	Name              uint64   `json:"name"`
	Title             string   `json:"title"`
	Price             int64    `json:"price"`
	Currency          string   `json:"currency"`
	UserSelectsOption bool     `json:"user_selects_option"`
	Options           []string `json:"options"`
}

type CouponService struct {
	events      EventStore
	coupons     CouponStore
	ticketTypes TicketTypeStore
	addOns      AddOnStore
	log         *zap.Logger
}

func NewCouponService(events EventStore, coupons CouponStore, ticketTypes TicketTypeStore, addOns AddOnStore, log *zap.Logger) *CouponService {
	return &CouponService{events: events, coupons: coupons, ticketTypes: ticketTypes, addOns: addOns, log: log}
}

func invalidCoupon(msg string) CouponResult { return CouponResult{Valid: false, Error: msg} }

// Validate checks that code exists, belongs to the event at eventRoute
// and still has tickets left.
func (s *CouponService) Validate(ctx context.Context, code, eventRoute string) CouponResult {
	ctx, span := telemetry.StartSpan(ctx, "coupon.validate")
	defer span.End()
	span.SetAttributes(attribute.String("event.route", eventRoute))

	res, err := s.validate(ctx, code, eventRoute)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return invalidCoupon("Invalid coupon code")
		}
		telemetry.SetSpanError(ctx, err)
		s.log.Error("error validating coupon", zap.String("coupon", code), zap.String("event_route", eventRoute), zap.Error(err))
		return invalidCoupon("Error validating coupon")
	}
	return res
}

func (s *CouponService) validate(ctx context.Context, code, eventRoute string) (CouponResult, error) {
	event, err := s.events.GetByRoute(ctx, eventRoute)
	if err != nil {
		return CouponResult{}, err
	}
	coupon, err := s.coupons.GetByCode(ctx, code)
	if err != nil {
		return CouponResult{}, err
	}
	if coupon.EventID != event.ID {
		return invalidCoupon("Coupon is not valid for this event"), nil
	}
	remaining := coupon.Remaining()
	if remaining <= 0 {
		return invalidCoupon("Coupon has been fully used"), nil
	}

	tt, err := s.ticketTypes.GetByID(ctx, coupon.TicketTypeID)
	if err != nil {
		return CouponResult{}, err
	}
	addOns, err := s.addOns.GetByIDs(ctx, coupon.FreeAddOns)
	if err != nil {
		return CouponResult{}, err
	}
	free := make([]FreeAddOn, 0, len(coupon.FreeAddOns))
	for _, id := range coupon.FreeAddOns {
		a, ok := addOns[id]
		if !ok {
			continue
		}
		free = append(free, FreeAddOn{
			Name:              a.ID,
			Title:             a.Title,
			Price:             a.PriceCents,
			Currency:          a.Currency,
			UserSelectsOption: a.UserSelectsOption,
			Options:           a.Options,
		})
	}

	return CouponResult{
		Valid: true,
		CouponDetails: &CouponDetails{
			CouponName:       coupon.Code,
			TicketType:       tt.ID,
			TicketTypeTitle:  tt.Title,
			RemainingTickets: remaining,
			GrantedTickets:   coupon.GrantedTickets,
			ClaimedTickets:   coupon.ClaimedTickets,
			FreeAddOns:       free,
		},
	}, nil
}
