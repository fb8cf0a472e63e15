package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// PaymentRepo records gateway payments for bookings.
type PaymentRepo struct{ DB *sql.DB }

func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{DB: db} }

const paymentColumns = "id, booking_id, provider, reference, amount_cents, currency, status, payment_received, created_at, updated_at"

func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		`INSERT INTO payments (booking_id, provider, reference, amount_cents, currency, status, payment_received)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.BookingID, p.Provider, p.Reference, p.AmountCents, p.Currency, p.Status, p.PaymentReceived)
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
	p.ID = uint64(id)
	return nil
}

// GetByReference finds a payment by the gateway's reference.  Inside a
// transaction the row is locked.
func (r *PaymentRepo) GetByReference(ctx context.Context, provider, reference string) (model.Payment, error) {
	return scanPayment(conn(ctx, r.DB).QueryRowContext(ctx,
		forUpdate(ctx, "SELECT "+paymentColumns+" FROM payments WHERE provider = ? AND reference = ?"),
		provider, reference))
}

// LatestForBooking returns the most recent payment of a booking.
func (r *PaymentRepo) LatestForBooking(ctx context.Context, bookingID uint64) (model.Payment, error) {
	return scanPayment(conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+paymentColumns+" FROM payments WHERE booking_id = ? ORDER BY id DESC LIMIT 1", bookingID))
}

// UpdateStatus stores the gateway status and the received flag.
func (r *PaymentRepo) UpdateStatus(ctx context.Context, id uint64, status string, received bool) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		"UPDATE payments SET status = ?, payment_received = ? WHERE id = ?", status, received, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := scanPayment(conn(ctx, r.DB).QueryRowContext(ctx,
			"SELECT "+paymentColumns+" FROM payments WHERE id = ?", id)); err != nil {
			return err
		}
	}
	return nil
}

func scanPayment(row rowScanner) (model.Payment, error) {
	var p model.Payment
	err := row.Scan(&p.ID, &p.BookingID, &p.Provider, &p.Reference, &p.AmountCents, &p.Currency, &p.Status,
		&p.PaymentReceived, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return model.Payment{}, notFound(err)
	}
	return p, nil
}
