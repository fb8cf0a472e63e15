package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// EventRepo stores events and their additional pages.
type EventRepo struct{ DB *sql.DB }

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{DB: db} }

const eventColumns = "id, owner_id, title, route, description, start_date, end_date, time_zone, is_published, created_at, updated_at"

// Create inserts e and sets its ID and timestamps.  A taken route is
// ErrDuplicate.
func (r *EventRepo) Create(ctx context.Context, e *model.Event) error {
	q := conn(ctx, r.DB)
	res, err := q.ExecContext(ctx,
		`INSERT INTO events (owner_id, title, route, description, start_date, end_date, time_zone, is_published)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.OwnerID, e.Title, e.Route, e.Description, e.StartDate, e.EndDate, e.TimeZone, e.IsPublished)
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
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*e = created
	return nil
}

func (r *EventRepo) GetByID(ctx context.Context, id uint64) (model.Event, error) {
	return scanEvent(conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE id = ?", id))
}

// GetByRoute looks an event up by its public slug.
func (r *EventRepo) GetByRoute(ctx context.Context, route string) (model.Event, error) {
	return scanEvent(conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+eventColumns+" FROM events WHERE route = ?", route))
}

// ListByOwner returns the organizer's events, newest first.
func (r *EventRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Event, error) {
	return r.list(ctx, "SELECT "+eventColumns+" FROM events WHERE owner_id = ? ORDER BY start_date DESC, id DESC", ownerID)
}

// ListPublished returns published events by start date.
func (r *EventRepo) ListPublished(ctx context.Context) ([]model.Event, error) {
	return r.list(ctx, "SELECT "+eventColumns+" FROM events WHERE is_published = 1 ORDER BY start_date, id")
}

// SetPublished toggles publication.  The event must belong to ownerID.
func (r *EventRepo) SetPublished(ctx context.Context, id, ownerID uint64, published bool) error {
	e, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e.OwnerID != ownerID {
		return ErrForbidden
	}
	_, err = conn(ctx, r.DB).ExecContext(ctx, "UPDATE events SET is_published = ? WHERE id = ?", published, id)
	return err
}

// RouteExists reports whether an event already uses route.
func (r *EventRepo) RouteExists(ctx context.Context, route string) (bool, error) {
	var exists bool
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM events WHERE route = ?)", route).Scan(&exists)
	return exists, err
}

func (r *EventRepo) list(ctx context.Context, query string, args ...any) ([]model.Event, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (model.Event, error) {
	var (
		e   model.Event
		end sql.NullTime
	)
	err := row.Scan(&e.ID, &e.OwnerID, &e.Title, &e.Route, &e.Description, &e.StartDate, &end,
		&e.TimeZone, &e.IsPublished, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return model.Event{}, notFound(err)
	}
	if end.Valid {
		t := end.Time
		e.EndDate = &t
	}
	return e, nil
}

// CreatePage inserts an additional event page.
func (r *EventRepo) CreatePage(ctx context.Context, p *model.EventPage) error {
	var route any
	if p.Route != "" {
		route = p.Route
	}
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		"INSERT INTO event_pages (event_id, title, content, is_published, route) VALUES (?, ?, ?, ?, ?)",
		p.EventID, p.Title, p.Content, p.IsPublished, route)
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

// ListPages returns an event's pages; publishedOnly hides drafts.
func (r *EventRepo) ListPages(ctx context.Context, eventID uint64, publishedOnly bool) ([]model.EventPage, error) {
	q := "SELECT id, event_id, title, content, is_published, route, created_at FROM event_pages WHERE event_id = ?"
	if publishedOnly {
		q += " AND is_published = 1"
	}
	rows, err := conn(ctx, r.DB).QueryContext(ctx, q+" ORDER BY id", eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.EventPage
	for rows.Next() {
		var (
			p     model.EventPage
			route sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.EventID, &p.Title, &p.Content, &p.IsPublished, &route, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.Route = route.String
		out = append(out, p)
	}
	return out, rows.Err()
}
