package service

import (
	"sort"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// TicketsByType counts attendees per ticket type.
func TicketsByType(attendees []model.Attendee) map[uint64]int {
	out := make(map[uint64]int)
	for _, a := range attendees {
		out[a.TicketTypeID]++
	}
	return out
}

// ValidateTicketAvailability rejects the attendees when a requested
// ticket type is unpublished or short of capacity.  issued holds the
// submitted ticket count per type.  Types are checked in id order so the
// reported error is deterministic.
func ValidateTicketAvailability(attendees []model.Attendee, types map[uint64]model.TicketType, issued map[uint64]int) error {
	wanted := TicketsByType(attendees)
	ids := make([]uint64, 0, len(wanted))
	for id := range wanted {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		tt, ok := types[id]
		if !ok {
			return throw("Invalid ticket type")
		}
		n := wanted[id]
		if !tt.IsPublished {
			return throw("%s tickets no longer available!", tt.Title)
		}
		if !tt.AreTicketsAvailable(n, issued[id]) {
			return throw("Only %d tickets available for %s, you are trying to book %d!",
				tt.RemainingTickets(issued[id]), tt.Title, n)
		}
	}
	return nil
}
