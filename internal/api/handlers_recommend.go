// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/eventide/internal/cache"
	"github.com/tomtom215/eventide/internal/models"
	"github.com/tomtom215/eventide/internal/recommend"
	"github.com/tomtom215/eventide/internal/validation"
)

// Recommendation sources reported in RecommendationsResponse.Source.
const (
	sourceCached   = "cached"
	sourceLive     = "live"
	sourceTrending = "trending"
)

// GetRecommendations returns the caller's recommendations.
//
// Stored, unexpired recommendations are served when present. fresh=true,
// or an empty store, computes them live; users without a profile get
// trending events.
//
// @Summary Get personalized recommendations
// @Description Returns stored recommendations, or computes them live when fresh=true or none are stored
// @Tags Recommendations
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum results (1-50)" default(10)
// @Param fresh query bool false "Bypass stored recommendations"
// @Success 200 {object} models.APIResponse{data=models.RecommendationsResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 401 {object} models.APIResponse
// @Failure 502 {object} models.APIResponse
// @Router /recommendations [get]
func (h *Handler) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	limit, err := parseLimit(r, h.cfg.DefaultLimit, recommend.MaxPersonalizedLimit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	if !parseBool(r, "fresh") {
		stored, err := h.deps.Recommender.Cached(ctx, userID, limit)
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
		if len(stored) > 0 {
			respondSuccess(w, r, &models.RecommendationsResponse{
				Recommendations: storedToItems(stored),
				Source:          sourceCached,
			}, start, true)
			return
		}
	}

	res, err := h.deps.Recommender.Personalized(ctx, userID, limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	source := sourceLive
	if res.Fallback {
		source = sourceTrending
	}
	respondSuccess(w, r, &models.RecommendationsResponse{
		Recommendations: toItems(res.Events),
		Source:          source,
		Fallback:        res.Fallback,
		Skipped:         res.Skipped,
	}, start, false)
}

// SimilarEvents returns events similar to the given one.
//
// @Summary Get similar events
// @Description Ranks published events by embedding similarity to the seed, boosting the same category
// @Tags Recommendations
// @Produce json
// @Param id path string true "Event ID"
// @Param limit query int false "Maximum results (1-20)" default(5)
// @Success 200 {object} models.APIResponse{data=models.SimilarEventsResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Failure 409 {object} models.APIResponse "Event has no embedding yet"
// @Router /events/{id}/similar [get]
func (h *Handler) SimilarEvents(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	eventID := strings.TrimSpace(chi.URLParam(r, "id"))
	if eventID == "" || len(eventID) > 64 {
		respondValidation(w, r, "event id must be 1-64 characters")
		return
	}
	limit, err := parseLimit(r, h.cfg.DefaultSimilarLimit, recommend.MaxSimilarLimit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	key := cache.GenerateKey("similar", map[string]interface{}{"id": eventID, "limit": limit})
	if h.similarCache != nil {
		if resp, ok := h.similarCache.Get(key); ok {
			respondSuccess(w, r, resp, start, true)
			return
		}
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	res, err := h.deps.Recommender.Similar(ctx, eventID, limit)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	resp := &models.SimilarEventsResponse{EventID: eventID, Similar: toItems(res.Events)}
	if h.similarCache != nil {
		h.similarCache.Set(key, resp)
	}
	respondSuccess(w, r, resp, start, false)
}

// SmartSearch scores upcoming events against structured preferences.
//
// @Summary Smart event search
// @Description Scores upcoming events on interest, time of day, duration, price, and distance
// @Tags Search
// @Accept json
// @Produce json
// @Param request body models.SmartSearchRequest true "Preferences, optional location, and limit (1-10)"
// @Success 200 {object} models.APIResponse{data=models.SmartSearchResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 502 {object} models.APIResponse
// @Router /search/smart [post]
func (h *Handler) SmartSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req models.SmartSearchRequest
	if err := decodeJSON(r, &req); err != nil {
		respondValidation(w, r, err.Error())
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondServiceError(w, r, verr)
		return
	}
	if req.Limit == 0 {
		req.Limit = h.cfg.DefaultSearchLimit
	}

	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	res, err := h.deps.Searcher.Search(ctx, &recommend.SearchRequest{
		Preferences: req.Preferences,
		Location:    req.Location,
		Limit:       req.Limit,
	})
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	items := make([]models.SmartSearchItem, len(res.Events))
	for i, se := range res.Events {
		item := models.SmartSearchItem{Event: se.Event, Score: se.Score, Reasoning: se.Reason}
		if se.Breakdown != nil {
			item.Breakdown = *se.Breakdown
		}
		items[i] = item
	}
	respondSuccess(w, r, &models.SmartSearchResponse{Results: items, Total: len(items)}, start, false)
}
