package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// AddOnRepo stores event add-ons.  Options live in a newline separated
// text column and are split on read.
type AddOnRepo struct{ DB *sql.DB }

func NewAddOnRepo(db *sql.DB) *AddOnRepo { return &AddOnRepo{DB: db} }

const addOnColumns = "id, event_id, title, price_cents, currency, user_selects_option, options"

func (r *AddOnRepo) Create(ctx context.Context, a *model.AddOn) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		`INSERT INTO add_ons (event_id, title, price_cents, currency, user_selects_option, options)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		a.EventID, a.Title, a.PriceCents, a.Currency, a.UserSelectsOption, model.JoinOptions(a.Options))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

// ListByEvent returns all add-ons of an event.
func (r *AddOnRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.AddOn, error) {
	return r.query(ctx, "SELECT "+addOnColumns+" FROM add_ons WHERE event_id = ? ORDER BY id", eventID)
}

// GetByIDs loads add-ons keyed by id.
func (r *AddOnRepo) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]model.AddOn, error) {
	out := make(map[uint64]model.AddOn, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	list, err := r.query(ctx, "SELECT "+addOnColumns+" FROM add_ons WHERE id IN ("+placeholders(len(ids))+")", idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	for _, a := range list {
		out[a.ID] = a
	}
	return out, nil
}

func (r *AddOnRepo) query(ctx context.Context, q string, args ...any) ([]model.AddOn, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.AddOn
	for rows.Next() {
		var (
			a   model.AddOn
			raw string
		)
		if err := rows.Scan(&a.ID, &a.EventID, &a.Title, &a.PriceCents, &a.Currency, &a.UserSelectsOption, &raw); err != nil {
			return nil, err
		}
		a.Options = model.SplitOptions(a.UserSelectsOption, raw)
		out = append(out, a)
	}
	return out, rows.Err()
}
