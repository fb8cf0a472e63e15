package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// CustomFieldRepo stores organizer-defined booking and ticket fields.
type CustomFieldRepo struct{ DB *sql.DB }

func NewCustomFieldRepo(db *sql.DB) *CustomFieldRepo { return &CustomFieldRepo{DB: db} }

func (r *CustomFieldRepo) Create(ctx context.Context, f *model.CustomField) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		`INSERT INTO custom_fields (event_id, applied_to, label, fieldname, fieldtype, options, mandatory, enabled, placeholder)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.EventID, f.AppliedTo, f.Label, f.Fieldname, f.Fieldtype, model.JoinOptions(f.Options),
		f.Mandatory, f.Enabled, f.Placeholder)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)
	return nil
}

// ListByEvent returns the event's fields; enabledOnly drops disabled ones.
func (r *CustomFieldRepo) ListByEvent(ctx context.Context, eventID uint64, enabledOnly bool) ([]model.CustomField, error) {
	q := `SELECT id, event_id, applied_to, label, fieldname, fieldtype, options, mandatory, enabled, placeholder
		  FROM custom_fields WHERE event_id = ?`
	if enabledOnly {
		q += " AND enabled = 1"
	}
	rows, err := conn(ctx, r.DB).QueryContext(ctx, q+" ORDER BY id", eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.CustomField
	for rows.Next() {
		var (
			f   model.CustomField
			raw string
		)
		if err := rows.Scan(&f.ID, &f.EventID, &f.AppliedTo, &f.Label, &f.Fieldname, &f.Fieldtype, &raw,
			&f.Mandatory, &f.Enabled, &f.Placeholder); err != nil {
			return nil, err
		}
		f.Options = model.SplitOptions(f.Fieldtype == model.FieldTypeSelect, raw)
		out = append(out, f)
	}
	return out, rows.Err()
}
