package model

// Coupon is a bulk ticket coupon: a sponsor or partner is granted a
// number of free tickets of one ticket type, optionally with some add-ons
// thrown in.  Code is the primary key attendees type in.
//
// Fields:
//  Code           – coupon code (primary key).
//  EventID        – event the coupon is valid for.
//  TicketTypeID   – ticket type made free by the coupon.
//  GrantedTickets – number of tickets the coupon covers.
//  ClaimedTickets – number already used by submitted bookings.
//  FreeAddOns     – add-on ids that are free for every attendee of a
//                   booking using the coupon.
type Coupon struct {
	Code           string   `json:"code"`                      // coupons.code
	EventID        uint64   `json:"event_id"`                  // coupons.event_id
	TicketTypeID   uint64   `json:"ticket_type_id"`            // coupons.ticket_type_id
	GrantedTickets int      `json:"number_of_granted_tickets"` // coupons.number_of_granted_tickets
	ClaimedTickets int      `json:"number_of_claimed_tickets"` // coupons.number_of_claimed_tickets
	FreeAddOns     []uint64 `json:"free_add_ons"`              // coupon_free_add_ons.add_on_id
}

// Remaining returns how many tickets the coupon still covers.
func (c Coupon) Remaining() int { return c.GrantedTickets - c.ClaimedTickets }

// FreeAddOnSet returns FreeAddOns as a set for membership checks.
func (c Coupon) FreeAddOnSet() map[uint64]struct{} {
	set := make(map[uint64]struct{}, len(c.FreeAddOns))
	for _, id := range c.FreeAddOns {
		set[id] = struct{}{}
	}
	return set
}
