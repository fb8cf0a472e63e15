package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// ScheduleRepo stores event schedule items.
type ScheduleRepo struct{ DB *sql.DB }

func NewScheduleRepo(db *sql.DB) *ScheduleRepo { return &ScheduleRepo{DB: db} }

func (r *ScheduleRepo) Create(ctx context.Context, s *model.ScheduleItem) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		`INSERT INTO schedule_items (event_id, date, start_time, end_time, track, type, talk, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		s.EventID, s.Date.Format(time.DateOnly), s.StartTime, s.EndTime, s.Track, s.Type, nullString(s.Talk), s.Description)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// ListByEvent returns the event's schedule ordered by day and time.
func (r *ScheduleRepo) ListByEvent(ctx context.Context, eventID uint64) ([]model.ScheduleItem, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx,
		`SELECT id, event_id, date, start_time, end_time, track, type, talk, description
		 FROM schedule_items WHERE event_id = ? ORDER BY date, start_time, id`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ScheduleItem
	for rows.Next() {
		var (
			s    model.ScheduleItem
			talk sql.NullString
		)
		if err := rows.Scan(&s.ID, &s.EventID, &s.Date, &s.StartTime, &s.EndTime, &s.Track, &s.Type, &talk, &s.Description); err != nil {
			return nil, err
		}
		s.Talk = stringPtr(talk)
		out = append(out, s)
	}
	return out, rows.Err()
}
