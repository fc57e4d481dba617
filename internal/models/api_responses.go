// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package models

import (
	"time"
)

// APIResponse is the envelope returned by every HTTP endpoint.
//
// Status is "success", "partial" (207 batch responses), or "error".
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"recommendations": [...], "source": "cached"},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z", "query_time_ms": 12}
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {"code": "VALIDATION_ERROR", "message": "limit must be between 1 and 50"},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata carries timing and cache information for a response.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms,omitempty"`
	Cached      bool      `json:"cached,omitempty"`
	RequestID   string    `json:"request_id,omitempty"`
}

// APIError is a machine-readable error.
//
// Common codes:
//   - VALIDATION_ERROR: invalid input parameters
//   - NOT_FOUND: resource doesn't exist
//   - UPSTREAM_ERROR: the store or embedding provider failed
//   - AUTHENTICATION_ERROR / AUTHORIZATION_ERROR
//   - PARTIAL_FAILURE: a batch only partly succeeded
//   - INTERNAL_ERROR: a contract violation inside the engine
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RecommendationItem is one ranked event in an API response.
type RecommendationItem struct {
	Event  Event   `json:"event"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason,omitempty"`
}

// RecommendationsResponse is returned by GET /api/v1/recommendations.
//
// Source is "cached" (persisted rows), "live" (computed for this request),
// or "trending" (no profile yet, every score is 0.5).
type RecommendationsResponse struct {
	Recommendations []RecommendationItem `json:"recommendations"`
	Source          string               `json:"source"`
	Fallback        bool                 `json:"fallback"`
	Skipped         int                  `json:"skipped,omitempty"`
}

// SimilarEventsResponse is returned by GET /api/v1/events/{id}/similar.
type SimilarEventsResponse struct {
	EventID string               `json:"event_id"`
	Similar []RecommendationItem `json:"similar"`
}

// ScoreBreakdown exposes the weighted sub-scores behind a smart search hit.
type ScoreBreakdown struct {
	Interest float64 `json:"interest"`
	Time     float64 `json:"time"`
	Duration float64 `json:"duration"`
	Price    float64 `json:"price"`
	Distance float64 `json:"distance"`
}

// SmartSearchItem is one smart search result.
type SmartSearchItem struct {
	Event     Event          `json:"event"`
	Score     float64        `json:"score"`
	Reasoning string         `json:"reasoning"`
	Breakdown ScoreBreakdown `json:"breakdown"`
}

// SmartSearchResponse is returned by POST /api/v1/search/smart.
type SmartSearchResponse struct {
	Results []SmartSearchItem `json:"results"`
	Total   int               `json:"total"`
}

// PreferencesResponse is returned by GET /api/v1/preferences.
type PreferencesResponse struct {
	Categories          []string   `json:"categories"`
	Interests           []string   `json:"interests"`
	HasEmbedding        bool       `json:"has_embedding"`
	CompletedOnboarding bool       `json:"completed_onboarding"`
	UpdatedAt           *time.Time `json:"updated_at,omitempty"`
	AvailableCategories []string   `json:"available_categories"`
}

// EmbedResponse reports a single event embedding.
type EmbedResponse struct {
	EventID    string `json:"event_id"`
	Dimensions int    `json:"dimensions"`
}

// EmbedBatchResponse reports a batch embedding request.
type EmbedBatchResponse struct {
	Requested int      `json:"requested"`
	Embedded  int      `json:"embedded"`
	Missing   []string `json:"missing,omitempty"`
}

// HealthResponse is returned by GET /api/v1/health.
type HealthResponse struct {
	Status    string    `json:"status"`
	Version   string    `json:"version"`
	Database  bool      `json:"database"`
	Uptime    float64   `json:"uptime_seconds"`
	CheckedAt time.Time `json:"checked_at"`
	Breaker   string    `json:"embedding_breaker,omitempty"`
}
