package model

// Custom field targets and types.
const (
	AppliedToBooking = "Booking"
	AppliedToTicket  = "Ticket"

	FieldTypeData   = "Data"
	FieldTypePhone  = "Phone"
	FieldTypeEmail  = "Email"
	FieldTypeSelect = "Select"
)

// CustomField is an organizer-defined extra question asked either once
// per booking or once per attendee (ticket).
type CustomField struct {
	ID          uint64   `json:"id"`          // custom_fields.id
	EventID     uint64   `json:"event_id"`    // custom_fields.event_id
	AppliedTo   string   `json:"applied_to"`  // custom_fields.applied_to
	Label       string   `json:"label"`       // custom_fields.label
	Fieldname   string   `json:"fieldname"`   // custom_fields.fieldname
	Fieldtype   string   `json:"fieldtype"`   // custom_fields.fieldtype
	Options     []string `json:"options"`     // custom_fields.options (newline separated)
	Mandatory   bool     `json:"mandatory"`   // custom_fields.mandatory
	Enabled     bool     `json:"enabled"`     // custom_fields.enabled
	Placeholder string   `json:"placeholder"` // custom_fields.placeholder
}
