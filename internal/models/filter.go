// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package models

import "time"

// CandidateFilter selects published events for scoring.
//
// Fields:
//   - StartsAfter: only events starting at or after this instant (zero = no bound)
//   - RequireEmbedding: skip events without an embedding
//   - ExcludeIDs: event IDs never returned (e.g. the similar-events seed)
//   - Categories: restrict to these categories (empty = all)
//   - MaxPriceCents: free events and events priced at or below this (nil = no bound)
//   - Limit: maximum rows, ordered by start time then ID
type CandidateFilter struct {
	StartsAfter      time.Time
	RequireEmbedding bool
	ExcludeIDs       []string
	Categories       []string
	MaxPriceCents    *int64
	Limit            int
}
