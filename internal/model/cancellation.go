package model

import "time"

// Cancellation request review states.
const (
	CancellationInReview = "In Review"
	CancellationAccepted = "Accepted"
	CancellationRejected = "Rejected"
)

// CancellationRequest asks the organizer to cancel either a whole
// booking or some of its tickets.  Submitting an accepted request
// performs the cancellation.
type CancellationRequest struct {
	ID                uint64    `json:"id"`                  // ticket_cancellation_requests.id
	BookingID         uint64    `json:"booking_id"`          // ticket_cancellation_requests.booking_id
	CancelFullBooking bool      `json:"cancel_full_booking"` // ticket_cancellation_requests.cancel_full_booking
	Status            string    `json:"status"`              // ticket_cancellation_requests.status
	TicketIDs         []uint64  `json:"tickets"`             // ticket_cancellation_items.ticket_id
	DocStatus         DocStatus `json:"docstatus"`           // ticket_cancellation_requests.docstatus
	CreatedAt         time.Time `json:"created_at"`          // ticket_cancellation_requests.created_at
}

// ValidCancellationStatus reports whether s is a known review state.
func ValidCancellationStatus(s string) bool {
	switch s {
	case CancellationInReview, CancellationAccepted, CancellationRejected:
		return true
	}
	return false
}
