package service

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/utils"
)

var phonePattern = regexp.MustCompile(`^\+?[0-9][0-9 ()\-.]{3,}[0-9]$`)

// PrepareCustomField fills defaults and checks an organizer's field
// definition before it is stored.
func PrepareCustomField(f *model.CustomField) error {
	f.Label = strings.TrimSpace(f.Label)
	if f.Label == "" {
		return throw("Label is required")
	}
	if f.Fieldname == "" {
		f.Fieldname = utils.Scrub(f.Label)
	}
	if f.Fieldname == "" {
		return throw("Could not derive a field name from %q", f.Label)
	}
	switch f.AppliedTo {
	case "":
		f.AppliedTo = model.AppliedToBooking
	case model.AppliedToBooking, model.AppliedToTicket:
	default:
		return throw("Applied To must be Booking or Ticket")
	}
	switch f.Fieldtype {
	case "":
		f.Fieldtype = model.FieldTypeData
	case model.FieldTypeData, model.FieldTypePhone, model.FieldTypeEmail:
	case model.FieldTypeSelect:
		opts := f.Options[:0]
		for _, o := range f.Options {
			if o = strings.TrimSpace(o); o != "" {
				opts = append(opts, o)
			}
		}
		f.Options = opts
		if len(f.Options) == 0 {
			return throw("Options are required for Select field %s", f.Label)
		}
	default:
		return throw("Unsupported field type %s", f.Fieldtype)
	}
	if f.Fieldtype != model.FieldTypeSelect {
		f.Options = nil
	}
	return nil
}

// ApplyCustomFields validates the booking-level and per-attendee values
// against the event's enabled fields.  Values for unknown fields are
// dropped; known values are trimmed.
func ApplyCustomFields(fields []model.CustomField, b *model.Booking) error {
	var bookingFields, ticketFields []model.CustomField
	for _, f := range fields {
		if !f.Enabled {
			continue
		}
		if f.AppliedTo == model.AppliedToTicket {
			ticketFields = append(ticketFields, f)
		} else {
			bookingFields = append(bookingFields, f)
		}
	}

	values, err := checkValues(bookingFields, b.CustomFields, "")
	if err != nil {
		return err
	}
	b.CustomFields = values
	for i := range b.Attendees {
		a := &b.Attendees[i]
		values, err := checkValues(ticketFields, a.CustomFields, a.FullName)
		if err != nil {
			return err
		}
		a.CustomFields = values
	}
	return nil
}

func checkValues(fields []model.CustomField, in map[string]string, attendee string) (map[string]string, error) {
	var out map[string]string
	for _, f := range fields {
		v := strings.TrimSpace(in[f.Fieldname])
		if v == "" {
			if f.Mandatory {
				if attendee != "" {
					return nil, throw("%s is required for %s", f.Label, attendee)
				}
				return nil, throw("%s is required", f.Label)
			}
			continue
		}
		if err := checkValue(f, v); err != nil {
			return nil, err
		}
		if out == nil {
			out = make(map[string]string, len(fields))
		}
		out[f.Fieldname] = v
	}
	return out, nil
}

func checkValue(f model.CustomField, v string) error {
	switch f.Fieldtype {
	case model.FieldTypeEmail:
		if addr, err := mail.ParseAddress(v); err != nil || addr.Address != v {
			return throw("%s is not a valid email address", v)
		}
	case model.FieldTypePhone:
		if !phonePattern.MatchString(v) {
			return throw("%s is not a valid phone number", v)
		}
	case model.FieldTypeSelect:
		for _, o := range f.Options {
			if o == v {
				return nil
			}
		}
		return throw("%s is not a valid option for %s", v, f.Label)
	}
	return nil
}
