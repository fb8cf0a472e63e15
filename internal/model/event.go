package model

import "time"

// Event is a bookable event owned by an organizer.  Route is the unique
// slug used by public URLs (/events/<route>) and by coupon validation.
//
// Fields:
//  ID          – primary key identifier.
//  OwnerID     – organizer who created the event.
//  Title       – human readable name.
//  Route       – unique URL slug.
//  StartDate   – first day of the event.
//  EndDate     – last day of the event (nil for single-day events).
//  TimeZone    – IANA zone name shown to attendees.
//  IsPublished – whether the event is visible publicly.
type Event struct {
	ID          uint64     `json:"id"`                 // events.id
	OwnerID     uint64     `json:"owner_id"`           // events.owner_id
	Title       string     `json:"title"`              // events.title
	Route       string     `json:"route"`              // events.route
	Description string     `json:"description"`        // events.description
	StartDate   time.Time  `json:"start_date"`         // events.start_date
	EndDate     *time.Time `json:"end_date,omitempty"` // events.end_date (nullable)
	TimeZone    string     `json:"time_zone"`          // events.time_zone
	IsPublished bool       `json:"is_published"`       // events.is_published
	CreatedAt   time.Time  `json:"created_at"`         // events.created_at
	UpdatedAt   time.Time  `json:"updated_at"`         // events.updated_at
}

// EventPage is an additional content page hanging off an event, such as
// a venue or FAQ page.  Its route is nested under the event route.
type EventPage struct {
	ID          uint64    `json:"id"`           // event_pages.id
	EventID     uint64    `json:"event_id"`     // event_pages.event_id
	Title       string    `json:"title"`        // event_pages.title
	Content     string    `json:"content"`      // event_pages.content
	IsPublished bool      `json:"is_published"` // event_pages.is_published
	Route       string    `json:"route"`        // event_pages.route
	CreatedAt   time.Time `json:"created_at"`   // event_pages.created_at
}
