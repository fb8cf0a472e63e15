package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/event-ticketing/internal/config"
	"github.com/iliyamo/event-ticketing/internal/model"
	"github.com/iliyamo/event-ticketing/internal/repository"
	"github.com/iliyamo/event-ticketing/internal/utils"
)

type fakeUsers struct {
	byID map[uint64]model.User
}

func (f *fakeUsers) Create(_ context.Context, email, fullName, password, role string, cost int) (uint64, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return 0, repository.ErrEmailExists
		}
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	id := uint64(len(f.byID) + 1)
	f.byID[id] = model.User{ID: id, Email: email, FullName: fullName, PasswordHash: hash, Role: role, IsActive: true}
	return id, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (model.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (f *fakeUsers) GetByID(_ context.Context, id uint64) (model.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

type fakeTokens struct {
	hashes  map[string]uint64
	revoked map[string]bool
}

func (f *fakeTokens) StoreRefresh(_ context.Context, userID uint64, hash string, _ time.Time) error {
	f.hashes[hash] = userID
	return nil
}

func (f *fakeTokens) ValidateRefresh(_ context.Context, hash string, _ time.Time) (uint64, error) {
	id, ok := f.hashes[hash]
	if !ok || f.revoked[hash] {
		return 0, repository.ErrNotFound
	}
	return id, nil
}

func (f *fakeTokens) RevokeByHash(_ context.Context, hash string) error {
	f.revoked[hash] = true
	return nil
}

func (f *fakeTokens) RevokeAllForUser(_ context.Context, userID uint64) error {
	for h, id := range f.hashes {
		if id == userID {
			f.revoked[h] = true
		}
	}
	return nil
}

type fakeProfiles struct{ users *fakeUsers }

func (f fakeProfiles) UpdateFullName(_ context.Context, userID uint64, fullName string) (model.User, error) {
	u := f.users.byID[userID]
	u.FullName = fullName
	f.users.byID[userID] = u
	return u, nil
}

func newAuthHandler() (*AuthHandler, *fakeUsers, *fakeTokens) {
	users := &fakeUsers{byID: map[uint64]model.User{}}
	tokens := &fakeTokens{hashes: map[string]uint64{}, revoked: map[string]bool{}}
	cfg := config.Config{JWTSecret: "test-secret", AccessTTLMin: 15, RefreshTTLDays: 7, BcryptCost: 4}
	return NewAuthHandler(cfg, users, tokens, fakeProfiles{users}), users, tokens
}

func TestRegisterAndLogin(t *testing.T) {
	h, users, _ := newAuthHandler()

	c, rec := request(http.MethodPost, "/v1/auth/register", `{"email":" Ada@Example.com ","full_name":"Ada","password":"hunter22","role":"organizer"}`, 0)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	body := decode(t, rec)
	user := body["user"].(map[string]any)
	assert.Equal(t, "ada@example.com", user["email"])
	assert.Equal(t, model.RoleOrganizer, user["role"])

	access := body["access"].(map[string]any)["token"].(string)
	claims, err := utils.ParseAccessToken("test-secret", access)
	require.NoError(t, err)
	assert.Equal(t, model.RoleOrganizer, claims.Role)

	c, rec = request(http.MethodPost, "/v1/auth/register", `{"email":"ada@example.com","full_name":"Ada","password":"x"}`, 0)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	c, rec = request(http.MethodPost, "/v1/auth/register", `{"email":"bob@example.com","full_name":"Bob","password":"x","role":"ADMIN"}`, 0)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, model.RoleAttendee, decode(t, rec)["user"].(map[string]any)["role"])

	c, rec = request(http.MethodPost, "/v1/auth/login", `{"email":"ADA@example.com","password":"hunter22"}`, 0)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = request(http.MethodPost, "/v1/auth/login", `{"email":"ada@example.com","password":"wrong"}`, 0)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	u := users.byID[1]
	u.IsActive = false
	users.byID[1] = u
	c, rec = request(http.MethodPost, "/v1/auth/login", `{"email":"ada@example.com","password":"hunter22"}`, 0)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	h, _, _ := newAuthHandler()
	c, rec := request(http.MethodPost, "/v1/auth/register", `{"email":"ada@example.com","full_name":"Ada","password":"pw"}`, 0)
	require.NoError(t, h.Register(c))
	refresh := decode(t, rec)["refresh"].(map[string]any)["token"].(string)

	c, rec = request(http.MethodPost, "/v1/auth/refresh-access", `{"refresh_token":"`+refresh+`"}`, 0)
	require.NoError(t, h.RefreshAccess(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = request(http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"`+refresh+`"}`, 0)
	require.NoError(t, h.Refresh(c))
	require.Equal(t, http.StatusOK, rec.Code)
	rotated := decode(t, rec)["refresh"].(map[string]any)["token"].(string)
	assert.NotEqual(t, refresh, rotated)

	c, rec = request(http.MethodPost, "/v1/auth/refresh", `{"refresh_token":"`+refresh+`"}`, 0)
	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = request(http.MethodPost, "/v1/auth/logout", `{"refresh_token":"`+rotated+`"}`, 0)
	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	c, rec = request(http.MethodPost, "/v1/auth/logout", "", 0)
	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogoutWithBearerRevokesAll(t *testing.T) {
	h, _, tokens := newAuthHandler()
	c, rec := request(http.MethodPost, "/v1/auth/register", `{"email":"ada@example.com","full_name":"Ada","password":"pw"}`, 0)
	require.NoError(t, h.Register(c))
	access := decode(t, rec)["access"].(map[string]any)["token"].(string)

	c, rec = request(http.MethodPost, "/v1/logout", "", 0)
	c.Request().Header.Set("Authorization", "Bearer "+access)
	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	for hash := range tokens.hashes {
		assert.True(t, tokens.revoked[hash])
	}
}

func TestMeAndUpdateMe(t *testing.T) {
	h, users, _ := newAuthHandler()
	users.byID[7] = model.User{ID: 7, Email: "ada@example.com", FullName: "Ada", PasswordHash: "secret-hash", Role: model.RoleAttendee, IsActive: true}

	c, rec := request(http.MethodGet, "/v1/me", "", 7)
	require.NoError(t, h.Me(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret-hash")

	c, rec = request(http.MethodPatch, "/v1/me", `{"full_name":"Ada Lovelace"}`, 7)
	require.NoError(t, h.UpdateMe(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ada Lovelace", decode(t, rec)["full_name"])

	c, rec = request(http.MethodGet, "/v1/me", "", 8)
	require.NoError(t, h.Me(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
