// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package api

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/tomtom215/eventide/internal/auth"
	"github.com/tomtom215/eventide/internal/models"
	"github.com/tomtom215/eventide/internal/recommend"
	"github.com/tomtom215/eventide/internal/validation"
)

// parseLimit reads the "limit" query parameter. Absent means def.
func parseLimit(r *http.Request, def, maxLimit int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > maxLimit {
		return 0, validation.NewError("limit", "range", strconv.Itoa(maxLimit), raw,
			fmt.Sprintf("limit must be an integer between 1 and %d", maxLimit))
	}
	return n, nil
}

// parseBool reads a boolean query parameter. Absent or malformed is false.
func parseBool(r *http.Request, key string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(key))
	return err == nil && v
}

// requireUser returns the authenticated user ID or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(auth.UserID(r.Context()))
	if userID == "" {
		WriteError(w, r, http.StatusUnauthorized, "AUTHENTICATION_ERROR", "authentication required")
		return "", false
	}
	return userID, true
}

func toItems(events []recommend.ScoredEvent) []models.RecommendationItem {
	items := make([]models.RecommendationItem, len(events))
	for i, se := range events {
		items[i] = models.RecommendationItem{Event: se.Event, Score: se.Score, Reason: se.Reason}
	}
	return items
}

func storedToItems(recs []models.StoredRecommendation) []models.RecommendationItem {
	items := make([]models.RecommendationItem, len(recs))
	for i := range recs {
		items[i] = models.RecommendationItem{Event: recs[i].Event, Score: recs[i].Score, Reason: recs[i].Reason}
	}
	return items
}
