package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/iliyamo/event-ticketing/internal/model"
)

// ProfileService edits user profiles and their speaker profiles.
type ProfileService struct {
	tx       Transactor
	users    UserStore
	speakers SpeakerStore
	log      *zap.Logger
}

func NewProfileService(tx Transactor, users UserStore, speakers SpeakerStore, log *zap.Logger) *ProfileService {
	return &ProfileService{tx: tx, users: users, speakers: speakers, log: log}
}

// UpdateFullName renames the user.  When the name actually changes,
// every speaker profile of the user takes it as display name.
func (s *ProfileService) UpdateFullName(ctx context.Context, userID uint64, fullName string) (model.User, error) {
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return model.User{}, throw("Full name is required")
	}
	var user model.User
	err := s.tx.WithTx(ctx, func(ctx context.Context) error {
		u, err := s.users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if u.FullName == fullName {
			user = u
			return nil
		}
		if err := s.users.UpdateFullName(ctx, userID, fullName); err != nil {
			return err
		}
		n, err := s.speakers.SyncDisplayName(ctx, userID, fullName)
		if err != nil {
			return err
		}
		if n > 0 {
			s.log.Debug("speaker display names synced", zap.Uint64("user_id", userID), zap.Int64("profiles", n))
		}
		u.FullName = fullName
		user = u
		return nil
	})
	return user, err
}

// CreateSpeakerProfile adds a speaker profile for the user.  The display
// name starts out as the user's full name.
func (s *ProfileService) CreateSpeakerProfile(ctx context.Context, userID uint64, p *model.SpeakerProfile) error {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	p.UserID = userID
	if strings.TrimSpace(p.DisplayName) == "" {
		p.DisplayName = u.FullName
	}
	for _, l := range p.SocialMediaLinks {
		if strings.TrimSpace(l.URL) == "" {
			return throw("Link for %s is empty", l.Network)
		}
	}
	return s.speakers.Create(ctx, p)
}

func (s *ProfileService) ListSpeakerProfiles(ctx context.Context, userID uint64) ([]model.SpeakerProfile, error) {
	return nonNil(s.speakers.ListByUser(ctx, userID))
}
