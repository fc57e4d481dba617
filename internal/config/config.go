// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

// Package config loads Eventide configuration from defaults, an optional
// YAML file, and environment variables (in that order of precedence).
package config

import "time"

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Logging   LoggingConfig   `koanf:"logging"`
	Embedding EmbeddingConfig `koanf:"embedding"`
	Recommend RecommendConfig `koanf:"recommend"`
	Jobs      JobsConfig      `koanf:"jobs"`
	Security  SecurityConfig  `koanf:"security"`
	Events    EventsConfig    `koanf:"events"`
	Cache     CacheConfig     `koanf:"cache"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// DatabaseConfig holds DuckDB settings.
type DatabaseConfig struct {
	Path                   string `koanf:"path"`
	MaxMemory              string `koanf:"max_memory"`
	Threads                int    `koanf:"threads"` // 0 = runtime.NumCPU()
	PreserveInsertionOrder bool   `koanf:"preserve_insertion_order"`
	SeedDemoData           bool   `koanf:"seed_demo_data"` // development only
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// EmbeddingConfig configures the remote text embedding provider.
// The provider must speak the OpenAI-compatible /embeddings wire format.
type EmbeddingConfig struct {
	BaseURL        string        `koanf:"base_url"`
	APIKey         string        `koanf:"api_key"`
	Model          string        `koanf:"model"`
	Dimensions     int           `koanf:"dimensions"`
	Timeout        time.Duration `koanf:"timeout"`
	MaxBatchSize   int           `koanf:"max_batch_size"`
	MaxTextLength  int           `koanf:"max_text_length"`
	RequestsPerSec float64       `koanf:"requests_per_sec"`
	Burst          int           `koanf:"burst"`
	Concurrency    int           `koanf:"concurrency"`
}

// RecommendConfig holds recommendation pipeline tunables.
type RecommendConfig struct {
	InteractionLimit    int           `koanf:"interaction_limit"`
	CandidateLimit      int           `koanf:"candidate_limit"`
	SimilarCandidates   int           `koanf:"similar_candidates"`
	SearchCandidates    int           `koanf:"search_candidates"`
	RefreshLimit        int           `koanf:"refresh_limit"`
	RecommendationTTL   time.Duration `koanf:"recommendation_ttl"`
	CategoryBoost       float64       `koanf:"category_boost"`
	ClampBoost          bool          `koanf:"clamp_boost"`
	ActiveUserWindow    time.Duration `koanf:"active_user_window"`
	MaxActiveUsers      int           `koanf:"max_active_users"`
	ScoringTimezone     string        `koanf:"scoring_timezone"`
	InteractionRefresh  bool          `koanf:"interaction_refresh"`
	RefreshOnTypes      []string      `koanf:"refresh_on_types"`
	SimilarCacheTTL     time.Duration `koanf:"similar_cache_ttl"`
	DefaultLimit        int           `koanf:"default_limit"`
	DefaultSimilarLimit int           `koanf:"default_similar_limit"`
}

// JobsConfig holds background job schedules.
type JobsConfig struct {
	RefreshEnabled     bool          `koanf:"refresh_enabled"`
	RefreshInterval    time.Duration `koanf:"refresh_interval"`
	RefreshOnStartup   bool          `koanf:"refresh_on_startup"`
	RefreshTimeout     time.Duration `koanf:"refresh_timeout"`
	SweepEnabled       bool          `koanf:"sweep_enabled"`
	SweepInterval      time.Duration `koanf:"sweep_interval"`
	EmbeddingEnabled   bool          `koanf:"embedding_enabled"`
	EmbeddingInterval  time.Duration `koanf:"embedding_interval"`
	EmbeddingOnStartup bool          `koanf:"embedding_on_startup"`
	EmbeddingBatch     int           `koanf:"embedding_batch"`
	EmbeddingChunk     int           `koanf:"embedding_chunk"`
	EmbeddingTimeout   time.Duration `koanf:"embedding_timeout"`
}

// SecurityConfig holds authentication and HTTP hardening settings.
type SecurityConfig struct {
	AuthMode          string        `koanf:"auth_mode"` // jwt or none
	JWTSecret         string        `koanf:"jwt_secret"`
	JWTIssuer         string        `koanf:"jwt_issuer"`
	CronSecret        string        `koanf:"cron_secret"`
	AdminRole         string        `koanf:"admin_role"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	PolicyPath        string        `koanf:"policy_path"`
}

// EventsConfig describes the event catalog.
type EventsConfig struct {
	Categories []string `koanf:"categories"`
}

// CacheConfig configures the persistent embedding cache.
type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	Path    string        `koanf:"path"`
	TTL     time.Duration `koanf:"ttl"`
	InMem   bool          `koanf:"in_memory"`
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "" || c.Server.Environment == "development"
}

// Load reads configuration from defaults, the optional config file, and
// the environment. See LoadWithKoanf.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
