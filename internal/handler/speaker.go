package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/event-ticketing/internal/model"
)

type speakerAPI interface {
	CreateSpeakerProfile(ctx context.Context, userID uint64, p *model.SpeakerProfile) error
	ListSpeakerProfiles(ctx context.Context, userID uint64) ([]model.SpeakerProfile, error)
}

// SpeakerHandler manages the session user's speaker profiles.
type SpeakerHandler struct {
	Speakers speakerAPI
}

func NewSpeakerHandler(speakers speakerAPI) *SpeakerHandler { return &SpeakerHandler{Speakers: speakers} }

func (h *SpeakerHandler) Create(c echo.Context) error {
	var p model.SpeakerProfile
	if err := c.Bind(&p); err != nil {
		return badRequest(c, "invalid body")
	}
	ctx, cancel := requestCtx(c)
	defer cancel()
	if err := h.Speakers.CreateSpeakerProfile(ctx, currentUser(c), &p); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *SpeakerHandler) List(c echo.Context) error {
	ctx, cancel := requestCtx(c)
	defer cancel()
	out, err := h.Speakers.ListSpeakerProfiles(ctx, currentUser(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
