// Package queue carries booking.confirmed messages over RabbitMQ: the
// publisher used after a booking is submitted and the background consumer
// that appends them to the booking log.
package queue

// BookingQueue is the durable queue booking confirmations go to.
const BookingQueue = "booking.confirmed"

// BookingConfirmedEvent is published when a booking is submitted and its
// tickets are issued.  It contains enough information for downstream
// consumers to log, notify, or trigger analytics without querying the
// primary database.
type BookingConfirmedEvent struct {
	BookingID        uint64   `json:"booking_id"`
	UserID           uint64   `json:"user_id"`
	EventID          uint64   `json:"event_id"`
	EventTitle       string   `json:"event_title"`
	EventRoute       string   `json:"event_route"`
	CouponUsed       string   `json:"coupon_used,omitempty"`
	TicketIDs        []uint64 `json:"tickets"`
	Attendees        []string `json:"attendees"`
	Currency         string   `json:"currency"`
	TotalAmountCents int64    `json:"total_amount_cents"`
	ConfirmedAt      string   `json:"confirmed_at"`
}
