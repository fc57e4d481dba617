// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package eventbus

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eventide/internal/models"
	"github.com/tomtom215/eventide/internal/recommend"
	"github.com/tomtom215/eventide/internal/vector"
)

// ProfileDeriver rebuilds a user's profile from interactions.
type ProfileDeriver interface {
	Derive(ctx context.Context, userID string) (vector.Vector, error)
}

// Refresher recomputes and stores a user's recommendations.
type Refresher interface {
	Refresh(ctx context.Context, userID string) (recommend.BatchResult, error)
}

// RefreshHandler refreshes stored recommendations after strong signals.
type RefreshHandler struct {
	profiles  ProfileDeriver
	refresher Refresher
	types     map[models.InteractionType]struct{}
	logger    zerolog.Logger
}

// NewRefreshHandler creates a handler that reacts to the given interaction
// types. Unknown type names are ignored.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRefreshHandler(profiles ProfileDeriver, refresher Refresher, types []string, logger zerolog.Logger) *RefreshHandler {
	set := make(map[models.InteractionType]struct{}, len(types))
	for _, t := range types {
		it := models.InteractionType(t)
		if it.Valid() {
			set[it] = struct{}{}
		}
	}
	return &RefreshHandler{
		profiles:  profiles,
		refresher: refresher,
		types:     set,
		logger:    logger.With().Str("component", "refresh_handler").Logger(),
	}
}

// Handles reports whether t triggers a refresh.
func (h *RefreshHandler) Handles(t models.InteractionType) bool {
	_, ok := h.types[t]
	return ok
}

// Handle implements InteractionHandler.
func (h *RefreshHandler) Handle(ctx context.Context, evt *InteractionRecorded) error {
	if !h.Handles(evt.Type) {
		return nil
	}

	if _, err := h.profiles.Derive(ctx, evt.UserID); err != nil {
		switch {
		case errors.Is(err, recommend.ErrNoProfileAvailable):
			// Interactions on events without embeddings; refresh still
			// uses whatever profile is stored.
		case errors.Is(err, recommend.ErrUpstreamFetch):
			return err
		default:
			return fmt.Errorf("derive profile for %s: %w", evt.UserID, errors.Join(err, ErrUnrecoverable))
		}
	}

	res, err := h.refresher.Refresh(ctx, evt.UserID)
	if err != nil {
		var partial *recommend.PartialBatchError
		switch {
		case errors.As(err, &partial):
			h.logger.Warn().
				Str("user_id", evt.UserID).
				Int("requested", partial.Requested).
				Int("succeeded", partial.Succeeded).
				Msg("Partial recommendation refresh")
			return nil
		case errors.Is(err, recommend.ErrUpstreamFetch):
			return err
		default:
			return fmt.Errorf("refresh %s: %w", evt.UserID, errors.Join(err, ErrUnrecoverable))
		}
	}

	h.logger.Debug().
		Str("user_id", evt.UserID).
		Str("trigger", string(evt.Type)).
		Int("stored", res.Succeeded).
		Msg("Recommendations refreshed after interaction")
	return nil
}
