package model

// TicketType is a priced category of admission for an event (for
// example "Early Bird" or "Workshop Pass").  MaxTicketsAvailable of zero
// means the type has no capacity limit.
//
// Fields:
//  ID                  – primary key identifier.
//  EventID             – event the type belongs to.
//  Title               – label shown to attendees.
//  PriceCents          – price per ticket in minor units.
//  Currency            – ISO currency code of PriceCents.
//  MaxTicketsAvailable – capacity; 0 means unlimited.
//  IsPublished         – unpublished types can no longer be booked.
type TicketType struct {
	ID                  uint64 `json:"id"`                    // ticket_types.id
	EventID             uint64 `json:"event_id"`              // ticket_types.event_id
	Title               string `json:"title"`                 // ticket_types.title
	PriceCents          int64  `json:"price_cents"`           // ticket_types.price_cents
	Currency            string `json:"currency"`              // ticket_types.currency
	MaxTicketsAvailable int    `json:"max_tickets_available"` // ticket_types.max_tickets_available
	IsPublished         bool   `json:"is_published"`          // ticket_types.is_published
}

// Unlimited reports whether the type has no capacity limit.
func (t TicketType) Unlimited() bool { return t.MaxTicketsAvailable <= 0 }

// RemainingTickets returns how many tickets can still be issued given the
// number already issued.  It is never negative.  For unlimited types the
// result is -1.
func (t TicketType) RemainingTickets(issued int) int {
	if t.Unlimited() {
		return -1
	}
	if r := t.MaxTicketsAvailable - issued; r > 0 {
		return r
	}
	return 0
}

// AreTicketsAvailable reports whether n more tickets fit.
func (t TicketType) AreTicketsAvailable(n, issued int) bool {
	if t.Unlimited() {
		return true
	}
	return t.RemainingTickets(issued) >= n
}
