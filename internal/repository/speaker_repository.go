package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// SpeakerRepo stores speaker profiles.
type SpeakerRepo struct{ DB *sql.DB }

func NewSpeakerRepo(db *sql.DB) *SpeakerRepo { return &SpeakerRepo{DB: db} }

func (r *SpeakerRepo) Create(ctx context.Context, s *model.SpeakerProfile) error {
	links, err := jsonColumn(s.SocialMediaLinks, len(s.SocialMediaLinks) == 0)
	if err != nil {
		return err
	}
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		`INSERT INTO speaker_profiles (user_id, display_name, company, designation, display_image, social_media_links)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		s.UserID, s.DisplayName, s.Company, s.Designation, s.DisplayImage, links)
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

func (r *SpeakerRepo) ListByUser(ctx context.Context, userID uint64) ([]model.SpeakerProfile, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx,
		`SELECT id, user_id, display_name, company, designation, display_image, social_media_links
		 FROM speaker_profiles WHERE user_id = ? ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.SpeakerProfile
	for rows.Next() {
		var (
			s   model.SpeakerProfile
			raw []byte
		)
		if err := rows.Scan(&s.ID, &s.UserID, &s.DisplayName, &s.Company, &s.Designation, &s.DisplayImage, &raw); err != nil {
			return nil, err
		}
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &s.SocialMediaLinks); err != nil {
				return nil, err
			}
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SyncDisplayName copies a user's full name onto all of their speaker
// profiles and returns the number of profiles changed.
func (r *SpeakerRepo) SyncDisplayName(ctx context.Context, userID uint64, fullName string) (int64, error) {
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		"UPDATE speaker_profiles SET display_name = ? WHERE user_id = ?", fullName, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
