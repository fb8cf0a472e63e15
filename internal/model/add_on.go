package model

import "strings"

// AddOn is an optional extra sold with a ticket (t-shirt, lunch,
// workshop seat).  When UserSelectsOption is set the attendee must pick
// one of Options, e.g. a t-shirt size.
type AddOn struct {
	ID                uint64   `json:"id"`                  // add_ons.id
	EventID           uint64   `json:"event_id"`            // add_ons.event_id
	Title             string   `json:"title"`               // add_ons.title
	PriceCents        int64    `json:"price_cents"`         // add_ons.price_cents
	Currency          string   `json:"currency"`            // add_ons.currency
	UserSelectsOption bool     `json:"user_selects_option"` // add_ons.user_selects_option
	Options           []string `json:"options"`             // add_ons.options (newline separated)
}

// SplitOptions turns the stored newline separated option text into a
// list.  Options only mean something when the attendee selects one, so
// nil is returned otherwise.
func SplitOptions(userSelects bool, raw string) []string {
	if !userSelects || raw == "" {
		return nil
	}
	return strings.Split(raw, "\n")
}

// JoinOptions is the inverse of SplitOptions.
func JoinOptions(opts []string) string { return strings.Join(opts, "\n") }

// HasOption reports whether v is one of the add-on's options.
func (a AddOn) HasOption(v string) bool {
	for _, o := range a.Options {
		if o == v {
			return true
		}
	}
	return false
}
