package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// TicketTypeRepo stores ticket types and counts issued tickets.
type TicketTypeRepo struct{ DB *sql.DB }

func NewTicketTypeRepo(db *sql.DB) *TicketTypeRepo { return &TicketTypeRepo{DB: db} }

const ticketTypeColumns = "id, event_id, title, price_cents, currency, max_tickets_available, is_published"

func (r *TicketTypeRepo) Create(ctx context.Context, t *model.TicketType) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		`INSERT INTO ticket_types (event_id, title, price_cents, currency, max_tickets_available, is_published)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		t.EventID, t.Title, t.PriceCents, t.Currency, t.MaxTicketsAvailable, t.IsPublished)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	t.ID = uint64(id)
	return nil
}

func (r *TicketTypeRepo) GetByID(ctx context.Context, id uint64) (model.TicketType, error) {
	var t model.TicketType
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+ticketTypeColumns+" FROM ticket_types WHERE id = ?", id).
		Scan(&t.ID, &t.EventID, &t.Title, &t.PriceCents, &t.Currency, &t.MaxTicketsAvailable, &t.IsPublished)
	return t, notFound(err)
}

// ListByEvent returns every ticket type of the event.
func (r *TicketTypeRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.TicketType, error) {
	return r.query(ctx, "SELECT "+ticketTypeColumns+" FROM ticket_types WHERE event_id = ? ORDER BY id", eventID)
}

// GetByIDs loads the given ticket types keyed by id.  Inside a
// transaction the rows are locked so capacity checks and ticket inserts
// for the same types serialize.
func (r *TicketTypeRepo) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]model.TicketType, error) {
	out := make(map[uint64]model.TicketType, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q := forUpdate(ctx, "SELECT "+ticketTypeColumns+" FROM ticket_types WHERE id IN ("+placeholders(len(ids))+") ORDER BY id")
	list, err := r.query(ctx, q, idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	for _, t := range list {
		out[t.ID] = t
	}
	return out, nil
}

// CountIssued returns the number of submitted tickets per ticket type.
// Types without tickets are absent from the map.
func (r *TicketTypeRepo) CountIssued(ctx context.Context, ids []uint64) (map[uint64]int, error) {
	out := make(map[uint64]int, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := append([]any{model.DocStatusSubmitted}, idArgs(ids)...)
	rows, err := conn(ctx, r.DB).QueryContext(ctx,
		`SELECT ticket_type_id, COUNT(*) FROM tickets
		 WHERE docstatus = ? AND ticket_type_id IN (`+placeholders(len(ids))+`)
		 GROUP BY ticket_type_id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			id uint64
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

func (r *TicketTypeRepo) query(ctx context.Context, q string, args ...any) ([]model.TicketType, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.TicketType
	for rows.Next() {
		var t model.TicketType
		if err := rows.Scan(&t.ID, &t.EventID, &t.Title, &t.PriceCents, &t.Currency, &t.MaxTicketsAvailable, &t.IsPublished); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
