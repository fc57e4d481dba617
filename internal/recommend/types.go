// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package recommend

import "github.com/tomtom215/eventide/internal/models"

// ScoredEvent is one ranked event.
type ScoredEvent struct {
	Event     models.Event
	Score     float64
	Reason    string
	Breakdown *models.ScoreBreakdown // smart search only
}

// Result is the output of Personalized and Similar.
type Result struct {
	Events []ScoredEvent
	// Fallback is set when trending events stand in for a personalized ranking.
	Fallback bool
	// Candidates is the number of candidates considered.
	Candidates int
	// Skipped counts candidates dropped for unusable embeddings.
	Skipped int
}

// SearchResult is the output of Searcher.Search.
type SearchResult struct {
	Events     []ScoredEvent
	Candidates int
	Skipped    int
}

// BatchResult reports a recommendation persistence batch.
type BatchResult struct {
	Requested int `json:"requested"`
	Succeeded int `json:"succeeded"`
}

// RefreshReport summarizes a RefreshActiveUsers run.
type RefreshReport struct {
	Processed int      `json:"processed"`
	Total     int      `json:"total"`
	Deleted   int64    `json:"deleted"`
	Errors    []string `json:"errors,omitempty"`
}

// BackfillReport summarizes an embedding backfill run.
type BackfillReport struct {
	Requested int      `json:"requested"`
	Embedded  int      `json:"embedded"`
	Missing   []string `json:"missing,omitempty"`
}
