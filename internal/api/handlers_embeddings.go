// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/eventide/internal/models"
	"github.com/tomtom215/eventide/internal/validation"
)

// EmbedEvent computes the embedding of one event.
//
// @Summary Embed one event
// @Tags Embeddings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.EmbedEventRequest true "Event ID"
// @Success 200 {object} models.APIResponse{data=models.EmbedResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Failure 502 {object} models.APIResponse
// @Router /embeddings [post]
func (h *Handler) EmbedEvent(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.EmbedEventRequest
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

	report, err := h.deps.Embedder.EmbedEvents(ctx, []string{req.EventID})
	if report.Embedded > 0 {
		h.InvalidateSimilar()
	}
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if len(report.Missing) > 0 {
		respondServiceError(w, r, fmt.Errorf("event %s: %w", req.EventID, models.ErrNotFound))
		return
	}
	respondSuccess(w, r, &models.EmbedResponse{EventID: req.EventID, Dimensions: h.cfg.Dimensions}, start, false)
}

// EmbedBatch computes embeddings for up to 100 events.
//
// @Summary Embed a batch of events
// @Description Unknown IDs are reported in missing; the request still succeeds for the rest
// @Tags Embeddings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.EmbedBatchRequest true "Event IDs (1-100)"
// @Success 200 {object} models.APIResponse{data=models.EmbedBatchResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 502 {object} models.APIResponse
// @Router /embeddings/batch [post]
func (h *Handler) EmbedBatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.EmbedBatchRequest
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

	report, err := h.deps.Embedder.EmbedEvents(ctx, req.EventIDs)
	if report.Embedded > 0 {
		h.InvalidateSimilar()
	}
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, &models.EmbedBatchResponse{
		Requested: report.Requested,
		Embedded:  report.Embedded,
		Missing:   report.Missing,
	}, start, false)
}
