package service

import "github.com/iliyamo/event-ticketing/internal/model"

// SetTotal recomputes every attendee's add-on total and the booking
// total.  With a coupon, attendees holding the coupon's ticket type pay
// nothing for the ticket and the coupon's free add-ons cost nothing for
// every attendee.  Attendee amounts must already be priced.
func SetTotal(b *model.Booking, coupon *model.Coupon) {
	var free map[uint64]struct{}
	if coupon != nil {
		free = coupon.FreeAddOnSet()
	}

	var total int64
	for i := range b.Attendees {
		a := &b.Attendees[i]
		if coupon == nil || a.TicketTypeID != coupon.TicketTypeID {
			total += a.AmountCents
		}

		a.AddOnTotalCents = 0
		a.NumberOfAddOns = len(a.AddOns)
		for _, ao := range a.AddOns {
			if _, ok := free[ao.AddOnID]; !ok {
				a.AddOnTotalCents += ao.PriceCents
			}
		}
		total += a.AddOnTotalCents
	}
	b.TotalCents = total
}

// SetCurrency takes the booking currency from the first attendee.
func SetCurrency(b *model.Booking) error {
	if len(b.Attendees) == 0 {
		return throw("At least one attendee is required")
	}
	b.Currency = b.Attendees[0].Currency
	return nil
}

// CouponTicketCount counts attendees whose ticket the coupon covers.
func CouponTicketCount(attendees []model.Attendee, ticketTypeID uint64) int {
	n := 0
	for _, a := range attendees {
		if a.TicketTypeID == ticketTypeID {
			n++
		}
	}
	return n
}
