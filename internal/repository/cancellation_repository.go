package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// CancellationRepo stores ticket cancellation requests and the tickets
// each one names.
type CancellationRepo struct{ DB *sql.DB }

func NewCancellationRepo(db *sql.DB) *CancellationRepo { return &CancellationRepo{DB: db} }

func (r *CancellationRepo) Create(ctx context.Context, c *model.CancellationRequest) error {
	q := conn(ctx, r.DB)
	res, err := q.ExecContext(ctx,
		"INSERT INTO ticket_cancellation_requests (booking_id, cancel_full_booking, status, docstatus) VALUES (?, ?, ?, ?)",
		c.BookingID, c.CancelFullBooking, c.Status, c.DocStatus)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	if len(c.TicketIDs) == 0 {
		return nil
	}
	var sb strings.Builder
	sb.WriteString("INSERT INTO ticket_cancellation_items (request_id, ticket_id) VALUES ")
	args := make([]any, 0, len(c.TicketIDs)*2)
	for i, tid := range c.TicketIDs {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?)")
		args = append(args, c.ID, tid)
	}
	_, err = q.ExecContext(ctx, sb.String(), args...)
	return err
}

// GetByID loads a request with its ticket ids; the request row is locked
// inside a transaction.
func (r *CancellationRepo) GetByID(ctx context.Context, id uint64) (model.CancellationRequest, error) {
	q := conn(ctx, r.DB)
	var c model.CancellationRequest
	err := q.QueryRowContext(ctx, forUpdate(ctx,
		`SELECT id, booking_id, cancel_full_booking, status, docstatus, created_at
		 FROM ticket_cancellation_requests WHERE id = ?`), id).
		Scan(&c.ID, &c.BookingID, &c.CancelFullBooking, &c.Status, &c.DocStatus, &c.CreatedAt)
	if err != nil {
		return model.CancellationRequest{}, notFound(err)
	}
	rows, err := q.QueryContext(ctx,
		"SELECT ticket_id FROM ticket_cancellation_items WHERE request_id = ? ORDER BY ticket_id", id)
	if err != nil {
		return model.CancellationRequest{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var tid uint64
		if err := rows.Scan(&tid); err != nil {
			return model.CancellationRequest{}, err
		}
		c.TicketIDs = append(c.TicketIDs, tid)
	}
	return c, rows.Err()
}

// SetStatus updates the review status of a draft request.
func (r *CancellationRepo) SetStatus(ctx context.Context, id uint64, status string) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		"UPDATE ticket_cancellation_requests SET status = ? WHERE id = ? AND docstatus = ?",
		status, id, model.DocStatusDraft)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}

// MarkSubmitted sets docstatus to Submitted on a draft request.
func (r *CancellationRepo) MarkSubmitted(ctx context.Context, id uint64) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		"UPDATE ticket_cancellation_requests SET docstatus = ? WHERE id = ? AND docstatus = ?",
		model.DocStatusSubmitted, id, model.DocStatusDraft)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}
