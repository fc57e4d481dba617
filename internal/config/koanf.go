// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/eventide/config.yaml",
	"/etc/eventide/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultCategories is the closed event category set shipped with the product.
var DefaultCategories = []string{
	"music", "sports", "arts", "food", "technology",
	"business", "community", "education", "nightlife", "outdoors",
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Database: DatabaseConfig{
			Path:                   "/data/eventide.duckdb",
			MaxMemory:              "1GB",
			Threads:                0,
			PreserveInsertionOrder: true,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Embedding: EmbeddingConfig{
			BaseURL:        "https://api.openai.com/v1",
			Model:          "text-embedding-3-small",
			Dimensions:     1536,
			Timeout:        30 * time.Second,
			MaxBatchSize:   100,
			MaxTextLength:  8000,
			RequestsPerSec: 5,
			Burst:          10,
			Concurrency:    2,
		},
		Recommend: RecommendConfig{
			InteractionLimit:    50,
			CandidateLimit:      500,
			SimilarCandidates:   200,
			SearchCandidates:    100,
			RefreshLimit:        20,
			RecommendationTTL:   7 * 24 * time.Hour,
			CategoryBoost:       1.1,
			ClampBoost:          true,
			ActiveUserWindow:    30 * 24 * time.Hour,
			MaxActiveUsers:      1000,
			ScoringTimezone:     "UTC",
			InteractionRefresh:  true,
			RefreshOnTypes:      []string{"rsvp", "attended"},
			SimilarCacheTTL:     5 * time.Minute,
			DefaultLimit:        10,
			DefaultSimilarLimit: 5,
		},
		Jobs: JobsConfig{
			RefreshEnabled:     true,
			RefreshInterval:    24 * time.Hour,
			RefreshOnStartup:   false,
			RefreshTimeout:     30 * time.Minute,
			SweepEnabled:       true,
			SweepInterval:      time.Hour,
			EmbeddingEnabled:   true,
			EmbeddingInterval:  6 * time.Hour,
			EmbeddingOnStartup: false,
			EmbeddingBatch:     200,
			EmbeddingChunk:     50,
			EmbeddingTimeout:   10 * time.Minute,
		},
		Security: SecurityConfig{
			AuthMode:        "jwt",
			JWTIssuer:       "eventide",
			AdminRole:       "admin",
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Events: EventsConfig{
			Categories: DefaultCategories,
		},
		Cache: CacheConfig{
			Enabled: true,
			Path:    "/data/embedding-cache",
			TTL:     30 * 24 * time.Hour,
		},
	}
}

// LoadWithKoanf layers configuration sources:
//  1. built-in defaults
//  2. optional YAML file (CONFIG_PATH or DefaultConfigPaths)
//  3. environment variables (see envTransformFunc)
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"events.categories",
	"recommend.refresh_on_types",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) == 0 {
			continue
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Server
	"http_port":        "server.port",
	"http_host":        "server.host",
	"http_timeout":     "server.timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	// Database
	"duckdb_path":       "database.path",
	"duckdb_max_memory": "database.max_memory",
	"duckdb_threads":    "database.threads",
	"seed_demo_data":    "database.seed_demo_data",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Embedding provider
	"embedding_base_url":         "embedding.base_url",
	"embedding_api_key":          "embedding.api_key",
	"openai_api_key":             "embedding.api_key",
	"embedding_model":            "embedding.model",
	"embedding_dimensions":       "embedding.dimensions",
	"embedding_timeout":          "embedding.timeout",
	"embedding_requests_per_sec": "embedding.requests_per_sec",
	"embedding_concurrency":      "embedding.concurrency",

	// Recommendation pipeline
	"recommend_candidate_limit":      "recommend.candidate_limit",
	"recommend_interaction_limit":    "recommend.interaction_limit",
	"recommend_ttl":                  "recommend.recommendation_ttl",
	"recommend_category_boost":       "recommend.category_boost",
	"recommend_clamp_boost":          "recommend.clamp_boost",
	"recommend_scoring_timezone":     "recommend.scoring_timezone",
	"recommend_interaction_refresh":  "recommend.interaction_refresh",
	"recommend_refresh_on_types":     "recommend.refresh_on_types",
	"recommend_active_user_window":   "recommend.active_user_window",
	"recommend_max_active_users":     "recommend.max_active_users",
	"recommend_similar_cache_ttl":    "recommend.similar_cache_ttl",
	"recommend_similar_candidates":   "recommend.similar_candidates",
	"recommend_search_candidates":    "recommend.search_candidates",
	"recommend_refresh_limit":        "recommend.refresh_limit",
	"recommend_default_limit":        "recommend.default_limit",
	"recommend_default_similar_size": "recommend.default_similar_limit",

	// Jobs
	"jobs_refresh_enabled":      "jobs.refresh_enabled",
	"jobs_refresh_interval":     "jobs.refresh_interval",
	"jobs_refresh_on_startup":   "jobs.refresh_on_startup",
	"jobs_refresh_timeout":      "jobs.refresh_timeout",
	"jobs_sweep_enabled":        "jobs.sweep_enabled",
	"jobs_sweep_interval":       "jobs.sweep_interval",
	"jobs_embedding_enabled":    "jobs.embedding_enabled",
	"jobs_embedding_interval":   "jobs.embedding_interval",
	"jobs_embedding_on_startup": "jobs.embedding_on_startup",
	"jobs_embedding_batch":      "jobs.embedding_batch",
	"jobs_embedding_chunk":      "jobs.embedding_chunk",

	// Security
	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"jwt_issuer":          "security.jwt_issuer",
	"cron_secret":         "security.cron_secret",
	"admin_role":          "security.admin_role",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
	"casbin_policy_path":  "security.policy_path",

	// Catalog
	"event_categories": "events.categories",

	// Embedding cache
	"embedding_cache_enabled": "cache.enabled",
	"embedding_cache_path":    "cache.path",
	"embedding_cache_ttl":     "cache.ttl",
}

// envTransformFunc maps DUCKDB_PATH -> database.path and so on.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
