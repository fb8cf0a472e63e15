package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// TicketRepo stores issued tickets and their add-on values.
type TicketRepo struct{ DB *sql.DB }

func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{DB: db} }

const ticketColumns = "id, code, event_id, booking_id, ticket_type_id, attendee_name, attendee_email, coupon_used, docstatus, custom_fields, created_at"

// CreateBatch inserts tickets and their add-on values, writing the
// generated IDs back.
func (r *TicketRepo) CreateBatch(ctx context.Context, tickets []model.Ticket) error {
	q := conn(ctx, r.DB)
	for i := range tickets {
		t := &tickets[i]
		fields, err := jsonColumn(t.CustomFields, len(t.CustomFields) == 0)
		if err != nil {
			return err
		}
		res, err := q.ExecContext(ctx,
			`INSERT INTO tickets (code, event_id, booking_id, ticket_type_id, attendee_name, attendee_email, coupon_used, docstatus, custom_fields)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			t.Code, t.EventID, t.BookingID, t.TicketTypeID, t.AttendeeName, t.AttendeeEmail,
			nullString(t.CouponUsed), t.DocStatus, fields)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		t.ID = uint64(id)
		if len(t.AddOns) == 0 {
			continue
		}
		var sb strings.Builder
		sb.WriteString("INSERT INTO ticket_add_on_values (ticket_id, add_on_id, value) VALUES ")
		args := make([]any, 0, len(t.AddOns)*3)
		for j, v := range t.AddOns {
			if j > 0 {
				sb.WriteString(",")
			}
			sb.WriteString("(?, ?, ?)")
			args = append(args, t.ID, v.AddOnID, v.Value)
		}
		if _, err := q.ExecContext(ctx, sb.String(), args...); err != nil {
			return err
		}
	}
	return nil
}

// GetByID loads a ticket with its add-on values.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (model.Ticket, error) {
	q := conn(ctx, r.DB)
	t, err := scanTicket(q.QueryRowContext(ctx, "SELECT "+ticketColumns+" FROM tickets WHERE id = ?", id))
	if err != nil {
		return model.Ticket{}, err
	}
	rows, err := q.QueryContext(ctx,
		"SELECT add_on_id, value FROM ticket_add_on_values WHERE ticket_id = ? ORDER BY id", id)
	if err != nil {
		return model.Ticket{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var v model.TicketAddOnValue
		if err := rows.Scan(&v.AddOnID, &v.Value); err != nil {
			return model.Ticket{}, err
		}
		t.AddOns = append(t.AddOns, v)
	}
	return t, rows.Err()
}

// ListByBooking returns the booking's tickets without add-on values.
func (r *TicketRepo) ListByBooking(ctx context.Context, bookingID uint64) ([]model.Ticket, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx,
		"SELECT "+ticketColumns+" FROM tickets WHERE booking_id = ? ORDER BY id", bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// CancelByIDs marks submitted tickets cancelled and returns how many
// rows changed.
func (r *TicketRepo) CancelByIDs(ctx context.Context, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := append([]any{model.DocStatusCancelled, model.DocStatusSubmitted}, idArgs(ids)...)
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		"UPDATE tickets SET docstatus = ? WHERE docstatus = ? AND id IN ("+placeholders(len(ids))+")", args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanTicket(row rowScanner) (model.Ticket, error) {
	var (
		t      model.Ticket
		coupon sql.NullString
		raw    []byte
	)
	err := row.Scan(&t.ID, &t.Code, &t.EventID, &t.BookingID, &t.TicketTypeID, &t.AttendeeName, &t.AttendeeEmail,
		&coupon, &t.DocStatus, &raw, &t.CreatedAt)
	if err != nil {
		return model.Ticket{}, notFound(err)
	}
	t.CouponUsed = stringPtr(coupon)
	if t.CustomFields, err = decodeFields(raw); err != nil {
		return model.Ticket{}, err
	}
	return t, nil
}
