// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package main

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/tomtom215/eventide/internal/config"
	"github.com/tomtom215/eventide/internal/database"
	"github.com/tomtom215/eventide/internal/embedding"
	"github.com/tomtom215/eventide/internal/recommend"
)

// EmbeddingComponents is the provider client wrapped in its circuit breaker
// and, when enabled, the persistent text cache.
type EmbeddingComponents struct {
	Embedder embedding.Embedder
	Breaker  *embedding.Breaker
	Cache    *embedding.Cache
}

// Close releases the embedding cache.
func (c *EmbeddingComponents) Close() error {
	if c.Cache == nil {
		return nil
	}
	return c.Cache.Close()
}

// RecommendComponents holds the recommendation services.
type RecommendComponents struct {
	Config     *recommend.Config
	Profiles   *recommend.ProfileBuilder
	Pipeline   *recommend.Pipeline
	Searcher   *recommend.Searcher
	Backfiller *recommend.Backfiller
}

// initEmbedding builds client -> breaker -> cache. The breaker sits under
// the cache so cache hits keep working while the provider is open.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initEmbedding(cfg *config.Config, logger zerolog.Logger) (*EmbeddingComponents, error) {
	client := embedding.NewClient(cfg.Embedding, logger)
	if cfg.Embedding.APIKey == "" {
		logger.Warn().Msg("EMBEDDING_API_KEY is not set; provider calls will fail")
	}

	breaker := embedding.NewBreaker(client, client.Limits(), logger)
	comps := &EmbeddingComponents{Embedder: breaker, Breaker: breaker}

	if !cfg.Cache.Enabled {
		logger.Info().Msg("Embedding cache disabled (EMBEDDING_CACHE_ENABLED=false)")
		return comps, nil
	}

	cache, err := embedding.OpenCache(cfg.Cache, client.Model())
	if err != nil {
		return nil, fmt.Errorf("embedding cache: %w", err)
	}
	comps.Cache = cache
	comps.Embedder = embedding.NewCachedEmbedder(breaker, cache, client.Limits(), logger)

	logger.Info().
		Str("path", cfg.Cache.Path).
		Bool("in_memory", cfg.Cache.InMem).
		Dur("ttl", cfg.Cache.TTL).
		Msg("Embedding cache opened")
	return comps, nil
}

// initRecommend wires the profile builder, pipeline, searcher, and
// backfiller over the database.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(cfg *config.Config, db *database.DB, embedder embedding.Embedder, logger zerolog.Logger) (*RecommendComponents, error) {
	rcfg, err := recommend.FromAppConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("recommend config: %w", err)
	}

	profiles := recommend.NewProfileBuilder(db, embedder, rcfg, logger)
	pipeline := recommend.NewPipeline(db, profiles, rcfg, logger)
	scorer := recommend.NewScorer(recommend.DefaultScoreWeights(), rcfg.Location)
	searcher := recommend.NewSearcher(db, embedder, scorer, rcfg, logger)
	backfiller := recommend.NewBackfiller(db, embedder, recommend.BackfillConfig{
		Batch:         cfg.Jobs.EmbeddingBatch,
		Chunk:         cfg.Jobs.EmbeddingChunk,
		Concurrency:   cfg.Embedding.Concurrency,
		MaxTextLength: cfg.Embedding.MaxTextLength,
	}, logger)

	logger.Info().
		Int("dimensions", rcfg.Dimensions).
		Int("candidate_limit", rcfg.CandidateLimit).
		Dur("recommendation_ttl", rcfg.RecommendationTTL).
		Float64("category_boost", rcfg.CategoryBoost).
		Str("scoring_timezone", rcfg.Location.String()).
		Msg("Recommendation pipeline initialized")

	return &RecommendComponents{
		Config:     rcfg,
		Profiles:   profiles,
		Pipeline:   pipeline,
		Searcher:   searcher,
		Backfiller: backfiller,
	}, nil
}
