package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// CheckInRepo records event check-ins.
type CheckInRepo struct{ DB *sql.DB }

func NewCheckInRepo(db *sql.DB) *CheckInRepo { return &CheckInRepo{DB: db} }

func (r *CheckInRepo) Create(ctx context.Context, c *model.CheckIn) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		"INSERT INTO check_ins (event_id, ticket_id, date, docstatus) VALUES (?, ?, ?, ?)",
		c.EventID, c.TicketID, c.Date.Format(time.DateOnly), c.DocStatus)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// ExistsOn reports whether the ticket has a submitted check-in on day.
func (r *CheckInRepo) ExistsOn(ctx context.Context, ticketID uint64, day time.Time) (bool, error) {
	var exists bool
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM check_ins WHERE ticket_id = ? AND date = ? AND docstatus = ?)",
		ticketID, day.Format(time.DateOnly), model.DocStatusSubmitted).Scan(&exists)
	return exists, err
}
