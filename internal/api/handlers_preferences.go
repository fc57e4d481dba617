// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/eventide/internal/models"
	"github.com/tomtom215/eventide/internal/validation"
)

// GetPreferences returns the caller's explicit preferences.
//
// @Summary Get preferences
// @Description Returns stored categories and interests and whether onboarding is complete
// @Tags Preferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.PreferencesResponse}
// @Failure 401 {object} models.APIResponse
// @Router /preferences [get]
func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	profile, err := h.deps.Profiles.Profile(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, h.preferencesResponse(profile), start, false)
}

// SavePreferences captures onboarding preferences and replaces the
// profile vector with their embedding.
//
// @Summary Save preferences
// @Description Embeds the selected categories and interests and stores them as the preference profile
// @Tags Preferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.PreferencesRequest true "Categories and interests"
// @Success 200 {object} models.APIResponse{data=models.PreferencesResponse}
// @Failure 400 {object} models.APIResponse
// @Failure 502 {object} models.APIResponse
// @Router /preferences [post]
func (h *Handler) SavePreferences(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req models.PreferencesRequest
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

	profile, err := h.deps.Profiles.CaptureExplicit(ctx, userID, req.Categories, req.Interests)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, h.preferencesResponse(profile), start, false)
}

// ImplicitPreferences returns categories and tags inferred from behavior.
//
// @Summary Get implicit preferences
// @Description Top categories and tags from saved, RSVP'd, and attended events
// @Tags Preferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.ImplicitPreferences}
// @Router /preferences/implicit [get]
func (h *Handler) ImplicitPreferences(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	prefs, err := h.deps.Profiles.ImplicitKeywords(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, prefs, start, false)
}

// PreferenceStats returns the caller's interaction counts.
//
// @Summary Get interaction statistics
// @Tags Preferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=models.InteractionStats}
// @Router /preferences/stats [get]
func (h *Handler) PreferenceStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	ctx, cancel := h.withTimeout(r.Context())
	defer cancel()

	stats, err := h.deps.Profiles.InteractionStats(ctx, userID)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, stats, start, false)
}

func (h *Handler) preferencesResponse(p *models.PreferenceProfile) *models.PreferencesResponse {
	resp := &models.PreferencesResponse{
		Categories:          []string{},
		Interests:           []string{},
		AvailableCategories: h.cfg.Categories,
	}
	if p == nil {
		return resp
	}
	if p.Categories != nil {
		resp.Categories = p.Categories
	}
	if p.Interests != nil {
		resp.Interests = p.Interests
	}
	resp.HasEmbedding = p.HasEmbedding()
	resp.CompletedOnboarding = len(p.Categories) > 0
	if !p.UpdatedAt.IsZero() {
		updated := p.UpdatedAt
		resp.UpdatedAt = &updated
	}
	return resp
}
