// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package recommend

import (
	"context"
	"time"

	"github.com/tomtom215/eventide/internal/models"
	"github.com/tomtom215/eventide/internal/vector"
)

// EventStore reads the event catalog. Lookups of unknown IDs return an
// error wrapping models.ErrNotFound.
type EventStore interface {
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	GetEvents(ctx context.Context, ids []string) ([]models.Event, error)
	CandidateEvents(ctx context.Context, filter models.CandidateFilter) ([]models.Event, error)
	TrendingEvents(ctx context.Context, now time.Time, limit int) ([]models.Event, error)
	EventsWithoutEmbedding(ctx context.Context, limit int) ([]models.Event, error)
	SaveEventEmbeddings(ctx context.Context, embeddings map[string]vector.Vector) (int, error)
}

// ProfileStore reads and writes preference profiles and the interaction
// history they are derived from.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*models.PreferenceProfile, error)
	UpsertProfile(ctx context.Context, p *models.PreferenceProfile) error
	UpdateProfileEmbedding(ctx context.Context, userID string, embedding vector.Vector) error
	RecentInteractions(ctx context.Context, userID string, limit int) ([]models.WeightedInteraction, error)
	InteractionsForKeywords(ctx context.Context, userID string, limit int) ([]models.KeywordInteraction, error)
	InteractionCounts(ctx context.Context, userID string) (models.InteractionStats, error)
}

// RecommendationStore persists precomputed recommendations.
type RecommendationStore interface {
	UpsertRecommendations(ctx context.Context, recs []models.Recommendation) (int, error)
	DeleteExpiredRecommendations(ctx context.Context, now time.Time) (int64, error)
	ListRecommendations(ctx context.Context, userID string, now time.Time, limit int) ([]models.StoredRecommendation, error)
	ActiveUsers(ctx context.Context, since time.Time, limit int) ([]string, error)
}

// Store is everything the pipeline reads and writes.
type Store interface {
	EventStore
	ProfileStore
	RecommendationStore
}
