package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iliyamo/event-ticketing/internal/model"
)

func TestCouponValidate(t *testing.T) {
	f := newBookingFixture(t)
	other := f.db.addEvent(model.Event{Title: "RustConf", Route: "rustconf", IsPublished: true})
	f.db.coupons["SPONSOR"] = model.Coupon{Code: "SPONSOR", EventID: f.event.ID, TicketTypeID: f.vip.ID, GrantedTickets: 10, ClaimedTickets: 4, FreeAddOns: []uint64{f.shirt.ID, 404}}
	f.db.coupons["USED"] = model.Coupon{Code: "USED", EventID: f.event.ID, TicketTypeID: f.vip.ID, GrantedTickets: 2, ClaimedTickets: 2}
	f.db.coupons["ELSEWHERE"] = model.Coupon{Code: "ELSEWHERE", EventID: other.ID, TicketTypeID: f.vip.ID, GrantedTickets: 2}

	tests := []struct {
		name    string
		code    string
		route   string
		wantErr string
	}{
		{name: "unknown code", code: "NOPE", route: "gophercon", wantErr: "Invalid coupon code"},
		{name: "unknown event", code: "SPONSOR", route: "nowhere", wantErr: "Invalid coupon code"},
		{name: "other event", code: "ELSEWHERE", route: "gophercon", wantErr: "Coupon is not valid for this event"},
		{name: "fully used", code: "USED", route: "gophercon", wantErr: "Coupon has been fully used"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := f.coupons.Validate(context.Background(), tt.code, tt.route)
			assert.False(t, res.Valid)
			assert.Equal(t, tt.wantErr, res.Error)
			assert.Nil(t, res.CouponDetails)
		})
	}

	res := f.coupons.Validate(context.Background(), "SPONSOR", "gophercon")
	require.True(t, res.Valid)
	assert.Empty(t, res.Error)
	assert.Equal(t, "SPONSOR", res.CouponName)
	assert.Equal(t, f.vip.ID, res.TicketType)
	assert.Equal(t, "VIP", res.TicketTypeTitle)
	assert.Equal(t, 6, res.RemainingTickets)
	assert.Equal(t, 10, res.GrantedTickets)
	assert.Equal(t, 4, res.ClaimedTickets)
	require.Len(t, res.FreeAddOns, 1)
	assert.Equal(t, FreeAddOn{
		Name:              f.shirt.ID,
		Title:             "T-Shirt",
		Price:             1500,
		Currency:          "USD",
		UserSelectsOption: true,
		Options:           []string{"S", "M", "L"},
	}, res.FreeAddOns[0])
}

func TestCouponValidate_UnexpectedErrorIsLogged(t *testing.T) {
	db := newMemDB()
	db.addEvent(model.Event{Route: "gophercon"})
	db.errs["coupons.GetByCode"] = errors.New("connection reset")
	core, logs := observer.New(zap.ErrorLevel)
	svc := NewCouponService(memEvents{db}, memCoupons{db}, memTicketTypes{db}, memAddOns{db}, zap.New(core))

	res := svc.Validate(context.Background(), "SPONSOR", "gophercon")
	assert.False(t, res.Valid)
	assert.Equal(t, "Error validating coupon", res.Error)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "SPONSOR", logs.All()[0].ContextMap()["coupon"])
}
