package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// BookingRepo persists bookings together with their attendee rows and
// the add-ons chosen per attendee.  All timestamp fields are stored in
// UTC.
type BookingRepo struct{ DB *sql.DB }

func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{DB: db} }

const bookingColumns = "id, event_id, user_id, coupon_used, currency, total_amount_cents, docstatus, custom_fields, created_at, updated_at"

// Create inserts the booking, its attendees and their add-ons.  The
// caller is expected to run it inside TxManager.WithTx; generated IDs are
// written back into b.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	q := conn(ctx, r.DB)
	fields, err := jsonColumn(b.CustomFields, len(b.CustomFields) == 0)
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx,
		`INSERT INTO bookings (event_id, user_id, coupon_used, currency, total_amount_cents, docstatus, custom_fields)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.EventID, b.UserID, nullString(b.CouponUsed), b.Currency, b.TotalCents, b.DocStatus, fields)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)

	for i := range b.Attendees {
		a := &b.Attendees[i]
		a.BookingID = b.ID
		af, err := jsonColumn(a.CustomFields, len(a.CustomFields) == 0)
		if err != nil {
			return err
		}
		res, err := q.ExecContext(ctx,
			`INSERT INTO booking_attendees (booking_id, idx, full_name, email, ticket_type_id, amount_cents, currency,
			   add_on_total_cents, number_of_add_ons, custom_fields)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			b.ID, i, a.FullName, a.Email, a.TicketTypeID, a.AmountCents, a.Currency,
			a.AddOnTotalCents, a.NumberOfAddOns, af)
		if err != nil {
			return err
		}
		aid, err := res.LastInsertId()
		if err != nil {
			return err
		}
		a.ID = uint64(aid)
		if err := insertAttendeeAddOns(ctx, q, a.ID, a.AddOns); err != nil {
			return err
		}
	}
	return nil
}

func insertAttendeeAddOns(ctx context.Context, q querier, attendeeID uint64, addOns []model.AttendeeAddOn) error {
	if len(addOns) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("INSERT INTO attendee_add_ons (attendee_id, add_on_id, value, price_cents) VALUES ")
	args := make([]any, 0, len(addOns)*4)
	for i, ao := range addOns {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, ?)")
		args = append(args, attendeeID, ao.AddOnID, ao.Value, ao.PriceCents)
	}
	_, err := q.ExecContext(ctx, sb.String(), args...)
	return err
}

// GetByID loads a booking with attendees and add-ons.  Inside a
// transaction the booking row is locked, which serializes concurrent
// submits of the same booking (e.g. retried payment webhooks).
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	q := conn(ctx, r.DB)
	b, err := scanBooking(q.QueryRowContext(ctx, forUpdate(ctx, "SELECT "+bookingColumns+" FROM bookings WHERE id = ?"), id))
	if err != nil {
		return model.Booking{}, err
	}
	if err := r.loadAttendees(ctx, q, &b); err != nil {
		return model.Booking{}, err
	}
	return b, nil
}

// ListByUser returns the user's bookings, newest first.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Booking, error) {
	q := conn(ctx, r.DB)
	rows, err := q.QueryContext(ctx,
		"SELECT "+bookingColumns+" FROM bookings WHERE user_id = ? ORDER BY created_at DESC, id DESC", userID)
	if err != nil {
		return nil, err
	}
	var out []model.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()
	for i := range out {
		if err := r.loadAttendees(ctx, q, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// SetDocStatus moves the booking from one status to another.  A booking
// that is not in from is ErrConflict.
func (r *BookingRepo) SetDocStatus(ctx context.Context, id uint64, from, to model.DocStatus) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		"UPDATE bookings SET docstatus = ? WHERE id = ? AND docstatus = ?", to, id, from)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}

func (r *BookingRepo) loadAttendees(ctx context.Context, q querier, b *model.Booking) error {
	rows, err := q.QueryContext(ctx,
		`SELECT id, booking_id, full_name, email, ticket_type_id, amount_cents, currency,
		        add_on_total_cents, number_of_add_ons, custom_fields
		 FROM booking_attendees WHERE booking_id = ? ORDER BY idx`, b.ID)
	if err != nil {
		return err
	}
	defer rows.Close()
	index := map[uint64]int{}
	b.Attendees = nil
	for rows.Next() {
		var (
			a   model.Attendee
			raw []byte
		)
		if err := rows.Scan(&a.ID, &a.BookingID, &a.FullName, &a.Email, &a.TicketTypeID, &a.AmountCents,
			&a.Currency, &a.AddOnTotalCents, &a.NumberOfAddOns, &raw); err != nil {
			return err
		}
		if a.CustomFields, err = decodeFields(raw); err != nil {
			return err
		}
		index[a.ID] = len(b.Attendees)
		b.Attendees = append(b.Attendees, a)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	if len(b.Attendees) == 0 {
		return nil
	}

	ids := make([]uint64, 0, len(b.Attendees))
	for _, a := range b.Attendees {
		ids = append(ids, a.ID)
	}
	aoRows, err := q.QueryContext(ctx,
		"SELECT attendee_id, add_on_id, value, price_cents FROM attendee_add_ons WHERE attendee_id IN ("+
			placeholders(len(ids))+") ORDER BY id", idArgs(ids)...)
	if err != nil {
		return err
	}
	defer aoRows.Close()
	for aoRows.Next() {
		var (
			attendeeID uint64
			ao         model.AttendeeAddOn
		)
		if err := aoRows.Scan(&attendeeID, &ao.AddOnID, &ao.Value, &ao.PriceCents); err != nil {
			return err
		}
		if i, ok := index[attendeeID]; ok {
			b.Attendees[i].AddOns = append(b.Attendees[i].AddOns, ao)
		}
	}
	return aoRows.Err()
}

func scanBooking(row rowScanner) (model.Booking, error) {
	var (
		b      model.Booking
		coupon sql.NullString
		raw    []byte
	)
	err := row.Scan(&b.ID, &b.EventID, &b.UserID, &coupon, &b.Currency, &b.TotalCents, &b.DocStatus, &raw,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return model.Booking{}, notFound(err)
	}
	b.CouponUsed = stringPtr(coupon)
	if b.CustomFields, err = decodeFields(raw); err != nil {
		return model.Booking{}, err
	}
	return b, nil
}
