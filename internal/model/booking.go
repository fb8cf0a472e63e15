package model

import "time"

// Booking groups the attendees one user registers for an event in a
// single checkout.  Amount fields are derived during validation and are
// never trusted from the client.
//
// Fields:
//  ID         – primary key identifier.
//  EventID    – event being booked.
//  UserID     – user who placed the booking.
//  CouponUsed – coupon code applied, if any.
//  Currency   – currency of the first attendee's ticket type.
//  TotalCents – total amount to pay in minor units.
//  DocStatus  – Draft until paid (or free), then Submitted.
type Booking struct {
	ID           uint64            `json:"id"`                      // bookings.id
	EventID      uint64            `json:"event_id"`                // bookings.event_id
	UserID       uint64            `json:"user_id"`                 // bookings.user_id
	CouponUsed   *string           `json:"coupon_used,omitempty"`   // bookings.coupon_used (nullable)
	Currency     string            `json:"currency"`                // bookings.currency
	TotalCents   int64             `json:"total_amount_cents"`      // bookings.total_amount_cents
	DocStatus    DocStatus         `json:"docstatus"`               // bookings.docstatus
	CustomFields map[string]string `json:"custom_fields,omitempty"` // bookings.custom_fields (JSON)
	Attendees    []Attendee        `json:"attendees"`               // booking_attendees rows
	CreatedAt    time.Time         `json:"created_at"`              // bookings.created_at
	UpdatedAt    time.Time         `json:"updated_at"`              // bookings.updated_at
}

// Attendee is one person on a booking.  Amount and currency are copied
// from the ticket type during validation.
type Attendee struct {
	ID              uint64            `json:"id"`                      // booking_attendees.id
	BookingID       uint64            `json:"booking_id"`              // booking_attendees.booking_id
	FullName        string            `json:"full_name"`               // booking_attendees.full_name
	Email           string            `json:"email"`                   // booking_attendees.email
	TicketTypeID    uint64            `json:"ticket_type_id"`          // booking_attendees.ticket_type_id
	AmountCents     int64             `json:"amount_cents"`            // booking_attendees.amount_cents
	Currency        string            `json:"currency"`                // booking_attendees.currency
	AddOns          []AttendeeAddOn   `json:"add_ons,omitempty"`       // attendee_add_ons rows
	AddOnTotalCents int64             `json:"add_on_total_cents"`      // booking_attendees.add_on_total_cents
	NumberOfAddOns  int               `json:"number_of_add_ons"`       // booking_attendees.number_of_add_ons
	CustomFields    map[string]string `json:"custom_fields,omitempty"` // booking_attendees.custom_fields (JSON)
}

// AttendeeAddOn is an add-on chosen for one attendee.  PriceCents is
// copied from the add-on at validation time.
type AttendeeAddOn struct {
	AddOnID    uint64 `json:"add_on"`      // attendee_add_ons.add_on_id
	Value      string `json:"value"`       // attendee_add_ons.value (selected option)
	PriceCents int64  `json:"price_cents"` // attendee_add_ons.price_cents
}

// HasCoupon reports whether a coupon code is set on the booking.
func (b Booking) HasCoupon() bool { return b.CouponUsed != nil && *b.CouponUsed != "" }
