package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// CouponRepo stores bulk ticket coupons and their free add-ons.
type CouponRepo struct{ DB *sql.DB }

func NewCouponRepo(db *sql.DB) *CouponRepo { return &CouponRepo{DB: db} }

// Create inserts the coupon and its free add-on rows.  Run it inside
// TxManager.WithTx so both land together.
func (r *CouponRepo) Create(ctx context.Context, c model.Coupon) error {
	q := conn(ctx, r.DB)
	_, err := q.ExecContext(ctx,
		`INSERT INTO coupons (code, event_id, ticket_type_id, number_of_granted_tickets, number_of_claimed_tickets)
		 VALUES (?, ?, ?, ?, ?)`,
		c.Code, c.EventID, c.TicketTypeID, c.GrantedTickets, c.ClaimedTickets)
	if err != nil {
		if isDuplicate(err) {
			return ErrDuplicate
		}
		return err
	}
	if len(c.FreeAddOns) == 0 {
		return nil
	}
	var b strings.Builder
	b.WriteString("INSERT INTO coupon_free_add_ons (coupon_code, add_on_id) VALUES ")
	args := make([]any, 0, len(c.FreeAddOns)*2)
	for i, id := range c.FreeAddOns {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString("(?, ?)")
		args = append(args, c.Code, id)
	}
	_, err = q.ExecContext(ctx, b.String(), args...)
	return err
}

// GetByCode loads a coupon with its free add-on ids.  Inside a
// transaction the coupon row is locked.
func (r *CouponRepo) GetByCode(ctx context.Context, code string) (model.Coupon, error) {
	q := conn(ctx, r.DB)
	var c model.Coupon
	err := q.QueryRowContext(ctx, forUpdate(ctx,
		`SELECT code, event_id, ticket_type_id, number_of_granted_tickets, number_of_claimed_tickets
		 FROM coupons WHERE code = ?`), code).
		Scan(&c.Code, &c.EventID, &c.TicketTypeID, &c.GrantedTickets, &c.ClaimedTickets)
	if err != nil {
		return model.Coupon{}, notFound(err)
	}
	rows, err := q.QueryContext(ctx,
		"SELECT add_on_id FROM coupon_free_add_ons WHERE coupon_code = ? ORDER BY add_on_id", code)
	if err != nil {
		return model.Coupon{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return model.Coupon{}, err
		}
		c.FreeAddOns = append(c.FreeAddOns, id)
	}
	return c, rows.Err()
}

// AddClaimed adds n to the coupon's claimed ticket count.
func (r *CouponRepo) AddClaimed(ctx context.Context, code string, n int) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		"UPDATE coupons SET number_of_claimed_tickets = number_of_claimed_tickets + ? WHERE code = ?", n, code)
	if err != nil {
		return err
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByEvent returns the event's coupons without their add-ons.
func (r *CouponRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.Coupon, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx,
		`SELECT code, event_id, ticket_type_id, number_of_granted_tickets, number_of_claimed_tickets
		 FROM coupons WHERE event_id = ? ORDER BY created_at, code`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Coupon
	for rows.Next() {
		var c model.Coupon
		if err := rows.Scan(&c.Code, &c.EventID, &c.TicketTypeID, &c.GrantedTickets, &c.ClaimedTickets); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
