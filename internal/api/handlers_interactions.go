// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/eventide/internal/eventbus"
	"github.com/tomtom215/eventide/internal/logging"
	"github.com/tomtom215/eventide/internal/models"
	"github.com/tomtom215/eventide/internal/recommend"
	"github.com/tomtom215/eventide/internal/validation"
)

// RecordInteraction stores a user signal and publishes it on the event bus.
//
// @Summary Record an interaction
// @Description Upserts (user, event, type) and triggers a background refresh for strong signals
// @Tags Interactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.InteractionRequest true "Event and interaction type"
// @Success 200 {object} models.APIResponse{data=models.Interaction}
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /interactions [post]
func (h *Handler) RecordInteraction(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req models.InteractionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidation(w, r, err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondServiceError(w, r, verr)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	if _, err := h.deps.Interactions.GetEvent(ctx, req.EventID); err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			err = errors.Join(recommend.ErrUpstreamFetch, err)
		}
		respondServiceError(w, r, err)
		return
	}

	interaction := &models.Interaction{
		UserID:    userID,
		EventID:   req.EventID,
		Type:      req.Type,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.deps.Interactions.UpsertInteraction(ctx, interaction); err != nil {
		respondServiceError(w, r, errors.Join(recommend.ErrUpstreamFetch, err))
		return
	}

	if h.deps.Publisher != nil {
		evt := &eventbus.InteractionRecorded{
			UserID:     userID,
			EventID:    req.EventID,
			Type:       req.Type,
			OccurredAt: interaction.CreatedAt,
		}
		if err := h.deps.Publisher.PublishInteraction(r.Context(), evt); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to publish interaction")
		}
	}

	respondSuccess(w, r, interaction, start, false)
}
