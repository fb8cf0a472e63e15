package model

import "time"

// Schedule item kinds.
const (
	ScheduleTalk  = "Talk"
	ScheduleBreak = "Break"
)

// ScheduleItem is one slot of an event's agenda.  StartTime and EndTime
// are wall clock times ("15:04") on Date.
type ScheduleItem struct {
	ID          uint64    `json:"id"`             // schedule_items.id
	EventID     uint64    `json:"event_id"`       // schedule_items.event_id
	Date        time.Time `json:"date"`           // schedule_items.date
	StartTime   string    `json:"start_time"`     // schedule_items.start_time
	EndTime     string    `json:"end_time"`       // schedule_items.end_time
	Track       string    `json:"track"`          // schedule_items.track
	Type        string    `json:"type"`           // schedule_items.type
	Talk        *string   `json:"talk,omitempty"` // schedule_items.talk (nullable)
	Description string    `json:"description"`    // schedule_items.description
}
