// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks that the configuration is complete and consistent.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateDatabase,
		c.validateLogging,
		c.validateEmbedding,
		c.validateRecommend,
		c.validateJobs,
		c.validateSecurity,
		c.validateEvents,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.Database.Path == "" {
		return fmt.Errorf("DUCKDB_PATH is required")
	}
	if c.Database.Threads < 0 {
		return fmt.Errorf("DUCKDB_THREADS must be >= 0, got %d", c.Database.Threads)
	}
	if c.Database.SeedDemoData && !c.IsDevelopment() {
		return fmt.Errorf("SEED_DEMO_DATA is only allowed in development")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a valid level", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}

func (c *Config) validateEmbedding() error {
	e := c.Embedding
	if e.Dimensions <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSIONS must be positive, got %d", e.Dimensions)
	}
	if e.MaxBatchSize < 1 || e.MaxBatchSize > 100 {
		return fmt.Errorf("embedding.max_batch_size must be between 1 and 100, got %d", e.MaxBatchSize)
	}
	if e.MaxTextLength <= 0 {
		return fmt.Errorf("embedding.max_text_length must be positive")
	}
	if e.RequestsPerSec < 0 {
		return fmt.Errorf("EMBEDDING_REQUESTS_PER_SEC must be >= 0")
	}
	if e.Concurrency < 1 {
		return fmt.Errorf("EMBEDDING_CONCURRENCY must be >= 1, got %d", e.Concurrency)
	}
	if !c.IsDevelopment() && e.APIKey == "" {
		return fmt.Errorf("EMBEDDING_API_KEY is required outside development")
	}
	return nil
}

func (c *Config) validateRecommend() error {
	r := c.Recommend
	if r.InteractionLimit <= 0 || r.CandidateLimit <= 0 || r.SimilarCandidates <= 0 || r.SearchCandidates <= 0 {
		return fmt.Errorf("recommend limits must be positive")
	}
	if r.RecommendationTTL <= 0 {
		return fmt.Errorf("RECOMMEND_TTL must be positive")
	}
	if r.CategoryBoost < 1 {
		return fmt.Errorf("RECOMMEND_CATEGORY_BOOST must be >= 1, got %v", r.CategoryBoost)
	}
	if _, err := time.LoadLocation(r.ScoringTimezone); err != nil {
		return fmt.Errorf("RECOMMEND_SCORING_TIMEZONE %q: %w", r.ScoringTimezone, err)
	}
	return nil
}

func (c *Config) validateJobs() error {
	j := c.Jobs
	if j.RefreshEnabled && j.RefreshInterval < time.Minute {
		return fmt.Errorf("JOBS_REFRESH_INTERVAL must be at least 1m, got %s", j.RefreshInterval)
	}
	if j.SweepEnabled && j.SweepInterval < time.Minute {
		return fmt.Errorf("JOBS_SWEEP_INTERVAL must be at least 1m, got %s", j.SweepInterval)
	}
	if j.EmbeddingEnabled {
		if j.EmbeddingInterval < time.Minute {
			return fmt.Errorf("JOBS_EMBEDDING_INTERVAL must be at least 1m, got %s", j.EmbeddingInterval)
		}
		if j.EmbeddingChunk < 1 || j.EmbeddingChunk > c.Embedding.MaxBatchSize {
			return fmt.Errorf("JOBS_EMBEDDING_CHUNK must be between 1 and %d, got %d", c.Embedding.MaxBatchSize, j.EmbeddingChunk)
		}
		if j.EmbeddingBatch < 1 || j.EmbeddingBatch > 1000 {
			return fmt.Errorf("JOBS_EMBEDDING_BATCH must be between 1 and 1000, got %d", j.EmbeddingBatch)
		}
	}
	return nil
}

func (c *Config) validateSecurity() error {
	s := c.Security
	switch s.AuthMode {
	case "jwt":
		if len(s.JWTSecret) < 32 {
			return fmt.Errorf("JWT_SECRET must be at least 32 characters when AUTH_MODE=jwt")
		}
	case "none":
		if !c.IsDevelopment() {
			return fmt.Errorf("AUTH_MODE=none is only allowed in development")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be jwt or none, got %q", s.AuthMode)
	}
	if !s.RateLimitDisabled {
		if s.RateLimitReqs <= 0 {
			return fmt.Errorf("RATE_LIMIT_REQUESTS must be positive")
		}
		if s.RateLimitWindow <= 0 {
			return fmt.Errorf("RATE_LIMIT_WINDOW must be positive")
		}
	}
	return nil
}

func (c *Config) validateEvents() error {
	if len(c.Events.Categories) == 0 {
		return fmt.Errorf("EVENT_CATEGORIES must not be empty")
	}
	return nil
}
