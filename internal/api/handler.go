// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package api

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eventide/internal/cache"
	"github.com/tomtom215/eventide/internal/config"
	"github.com/tomtom215/eventide/internal/eventbus"
	"github.com/tomtom215/eventide/internal/middleware"
	"github.com/tomtom215/eventide/internal/models"
	"github.com/tomtom215/eventide/internal/recommend"
)

// Recommender serves ranked events. Implemented by *recommend.Pipeline.
type Recommender interface {
	Personalized(ctx context.Context, userID string, limit int) (*recommend.Result, error)
	Similar(ctx context.Context, eventID string, limit int) (*recommend.Result, error)
	Cached(ctx context.Context, userID string, limit int) ([]models.StoredRecommendation, error)
	RefreshActiveUsers(ctx context.Context) (*recommend.RefreshReport, error)
}

// Searcher serves smart search. Implemented by *recommend.Searcher.
type Searcher interface {
	Search(ctx context.Context, req *recommend.SearchRequest) (*recommend.SearchResult, error)
}

// Profiles reads and captures preferences. Implemented by
// *recommend.ProfileBuilder.
type Profiles interface {
	Profile(ctx context.Context, userID string) (*models.PreferenceProfile, error)
	CaptureExplicit(ctx context.Context, userID string, categories, interests []string) (*models.PreferenceProfile, error)
	InteractionStats(ctx context.Context, userID string) (models.InteractionStats, error)
	ImplicitKeywords(ctx context.Context, userID string) (models.ImplicitPreferences, error)
}

// EventEmbedder computes event embeddings. Implemented by
// *recommend.Backfiller.
type EventEmbedder interface {
	Run(ctx context.Context) (recommend.BackfillReport, error)
	EmbedEvents(ctx context.Context, ids []string) (recommend.BackfillReport, error)
}

// InteractionStore records interactions. Implemented by *database.DB.
type InteractionStore interface {
	GetEvent(ctx context.Context, id string) (*models.Event, error)
	UpsertInteraction(ctx context.Context, i *models.Interaction) error
}

// InteractionPublisher announces recorded interactions. Implemented by
// *eventbus.Bus.
type InteractionPublisher interface {
	PublishInteraction(ctx context.Context, evt *eventbus.InteractionRecorded) error
}

// HealthChecker reports database reachability. Implemented by *database.DB.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// BreakerStater reports the embedding circuit breaker state.
type BreakerStater interface {
	State() string
}

// similarCacheCapacity bounds cached similar-event responses.
const similarCacheCapacity = 2000

// HandlerConfig holds per-request tunables.
type HandlerConfig struct {
	DefaultLimit        int
	DefaultSimilarLimit int
	DefaultSearchLimit  int
	SimilarCacheTTL     time.Duration
	RequestTimeout      time.Duration
	Dimensions          int
	Categories          []string
	Version             string
}

// DefaultHandlerConfig returns the production defaults.
func DefaultHandlerConfig() HandlerConfig {
	return HandlerConfig{
		DefaultLimit:        10,
		DefaultSimilarLimit: 5,
		DefaultSearchLimit:  5,
		SimilarCacheTTL:     5 * time.Minute,
		RequestTimeout:      30 * time.Second,
		Dimensions:          1536,
		Version:             "dev",
	}
}

// HandlerConfigFromApp builds a HandlerConfig from the application config.
func HandlerConfigFromApp(cfg *config.Config, version string) HandlerConfig {
	c := DefaultHandlerConfig()
	c.DefaultLimit = cfg.Recommend.DefaultLimit
	c.DefaultSimilarLimit = cfg.Recommend.DefaultSimilarLimit
	c.SimilarCacheTTL = cfg.Recommend.SimilarCacheTTL
	c.RequestTimeout = cfg.Server.Timeout
	c.Dimensions = cfg.Embedding.Dimensions
	c.Categories = append([]string(nil), cfg.Events.Categories...)
	if version != "" {
		c.Version = version
	}
	return c
}

// Dependencies are the services behind the handlers. Publisher, Breaker,
// and Perf are optional.
type Dependencies struct {
	Recommender  Recommender
	Searcher     Searcher
	Profiles     Profiles
	Embedder     EventEmbedder
	Interactions InteractionStore
	Health       HealthChecker
	Publisher    InteractionPublisher
	Breaker      BreakerStater
	Perf         *middleware.PerformanceMonitor
}

// Handler implements the HTTP endpoints.
type Handler struct {
	deps         Dependencies
	cfg          HandlerConfig
	similarCache *cache.Cache[*models.SimilarEventsResponse]
	startTime    time.Time
	logger       zerolog.Logger
}

// NewHandler creates a Handler. Call Close to stop the similar-event cache.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(deps Dependencies, cfg HandlerConfig, logger zerolog.Logger) *Handler {
	h := &Handler{
		deps:      deps,
		cfg:       cfg,
		startTime: time.Now(),
		logger:    logger.With().Str("component", "api").Logger(),
	}
	if cfg.SimilarCacheTTL > 0 {
		h.similarCache = cache.New[*models.SimilarEventsResponse](cfg.SimilarCacheTTL, similarCacheCapacity)
	}
	return h
}

// InvalidateSimilar drops cached similar-event responses. Call it whenever
// event embeddings change.
func (h *Handler) InvalidateSimilar() {
	if h.similarCache != nil {
		h.similarCache.Clear()
	}
}

// Close releases the handler's cache.
func (h *Handler) Close() {
	if h.similarCache != nil {
		h.similarCache.Close()
	}
}

// withTimeout bounds a request's service calls.
func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.cfg.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.cfg.RequestTimeout)
}
