package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// AddOnsOverviewFilter narrows the add-ons overview report.  EventID is
// required; the others are optional.
type AddOnsOverviewFilter struct {
	EventID    uint64
	AddOnID    uint64 // exact add-on, 0 for all
	ValueMatch string // substring of the chosen value
}

// AddOnsOverviewRow is one add-on value of a submitted ticket.
type AddOnsOverviewRow struct {
	AttendeeName  string `json:"attendee_name"`
	AttendeeEmail string `json:"attendee_email"`
	AddOnID       uint64 `json:"add_on"`
	AddOnTitle    string `json:"add_on_title"`
	Value         string `json:"value"`
	TicketID      uint64 `json:"ticket"`
}

// ReportRepo runs read-only reporting queries.
type ReportRepo struct{ DB *sql.DB }

func NewReportRepo(db *sql.DB) *ReportRepo { return &ReportRepo{DB: db} }

// AddOnsOverview lists the add-on values of submitted tickets of an event.
func (r *ReportRepo) AddOnsOverview(ctx context.Context, f AddOnsOverviewFilter) ([]AddOnsOverviewRow, error) {
	q := `SELECT t.attendee_name, t.attendee_email, v.add_on_id, a.title, v.value, t.id
		  FROM ticket_add_on_values v
		  JOIN tickets t ON t.id = v.ticket_id
		  JOIN add_ons a ON a.id = v.add_on_id
		  WHERE t.event_id = ? AND t.docstatus = ?`
	args := []any{f.EventID, model.DocStatusSubmitted}
	if f.AddOnID != 0 {
		q += " AND v.add_on_id = ?"
		args = append(args, f.AddOnID)
	}
	if f.ValueMatch != "" {
		q += " AND v.value LIKE ?"
		args = append(args, "%"+f.ValueMatch+"%")
	}
	q += " ORDER BY t.id, v.id"

	rows, err := conn(ctx, r.DB).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []AddOnsOverviewRow{}
	for rows.Next() {
		var row AddOnsOverviewRow
		if err := rows.Scan(&row.AttendeeName, &row.AttendeeEmail, &row.AddOnID, &row.AddOnTitle, &row.Value, &row.TicketID); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
