package model

import "time"

// Ticket is the admission record generated for each attendee once a
// booking is submitted.  Code is the opaque value printed in the QR code
// and scanned at check-in.
type Ticket struct {
	ID            uint64             `json:"id"`                      // tickets.id
	Code          string             `json:"code"`                    // tickets.code (uuid)
	EventID       uint64             `json:"event_id"`                // tickets.event_id
	BookingID     uint64             `json:"booking_id"`              // tickets.booking_id
	TicketTypeID  uint64             `json:"ticket_type_id"`          // tickets.ticket_type_id
	AttendeeName  string             `json:"attendee_name"`           // tickets.attendee_name
	AttendeeEmail string             `json:"attendee_email"`          // tickets.attendee_email
	CouponUsed    *string            `json:"coupon_used,omitempty"`   // tickets.coupon_used (nullable)
	DocStatus     DocStatus          `json:"docstatus"`               // tickets.docstatus
	AddOns        []TicketAddOnValue `json:"add_ons,omitempty"`       // ticket_add_on_values rows
	CustomFields  map[string]string  `json:"custom_fields,omitempty"` // tickets.custom_fields (JSON)
	CreatedAt     time.Time          `json:"created_at"`              // tickets.created_at
}

// TicketAddOnValue records an add-on (and the chosen option) on an
// issued ticket.
type TicketAddOnValue struct {
	AddOnID uint64 `json:"add_on"` // ticket_add_on_values.add_on_id
	Value   string `json:"value"`  // ticket_add_on_values.value
}

// CheckIn marks that a ticket holder entered the event on a given day.
type CheckIn struct {
	ID        uint64    `json:"id"`         // check_ins.id
	EventID   uint64    `json:"event_id"`   // check_ins.event_id
	TicketID  uint64    `json:"ticket_id"`  // check_ins.ticket_id
	Date      time.Time `json:"date"`       // check_ins.date (DATE)
	DocStatus DocStatus `json:"docstatus"`  // check_ins.docstatus
	CreatedAt time.Time `json:"created_at"` // check_ins.created_at
}
