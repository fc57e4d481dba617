// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package models

// SmartSearchRequest is the body of POST /api/v1/search/smart.
type SmartSearchRequest struct {
	Preferences ConversationPreferences `json:"preferences"`
	Location    *Location               `json:"location,omitempty" validate:"omitempty"`
	Limit       int                     `json:"limit,omitempty" validate:"omitempty,min=1,max=10"`
}

// PreferencesRequest is the body of POST /api/v1/preferences.
type PreferencesRequest struct {
	Categories []string `json:"categories" validate:"required,min=1,max=20,dive,nonblank,max=50"`
	Interests  []string `json:"interests" validate:"required,min=1,max=50,dive,nonblank,max=200"`
}

// InteractionRequest is the body of POST /api/v1/interactions.
type InteractionRequest struct {
	EventID string          `json:"event_id" validate:"required,nonblank,max=64"`
	Type    InteractionType `json:"type" validate:"required,oneof=viewed saved rsvp attended"`
}

// EmbedEventRequest is the body of POST /api/v1/embeddings.
type EmbedEventRequest struct {
	EventID string `json:"event_id" validate:"required,min=1,max=64"`
}

// EmbedBatchRequest is the body of POST /api/v1/embeddings/batch.
type EmbedBatchRequest struct {
	EventIDs []string `json:"event_ids" validate:"required,min=1,max=100,dive,required,max=64"`
}
