// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package recommend

import (
	"fmt"
	"time"

	"github.com/tomtom215/eventide/internal/config"
)

// Request limits.
const (
	MaxPersonalizedLimit = 50
	MaxSimilarLimit      = 20
	MaxSearchLimit       = 10
	MaxCachedLimit       = 100
)

// Implicit keyword derivation.
const (
	keywordInteractionLimit = 100
	topCategoryCount        = 5
	topTagCount             = 10
)

// DefaultRefreshReason is stored with every refreshed recommendation.
const DefaultRefreshReason = "Based on your interests and past events"

// Config contains the recommendation pipeline tunables.
type Config struct {
	// Dimensions is the expected embedding length. Zero disables the check.
	Dimensions int

	// InteractionLimit caps the history blended into a profile vector.
	// Default: 50.
	InteractionLimit int

	// CandidateLimit caps candidates scored by Personalized.
	// Default: 500.
	CandidateLimit int

	// SimilarCandidates caps candidates scored by Similar.
	// Default: 200.
	SimilarCandidates int

	// SearchCandidates caps candidates scored by smart search.
	// Default: 100.
	SearchCandidates int

	// RefreshLimit is the number of recommendations persisted per refresh.
	// Default: 20.
	RefreshLimit int

	// RecommendationTTL is added to the run time to get the expiry.
	// Default: 7 days.
	RecommendationTTL time.Duration

	// CategoryBoost multiplies the similarity of same-category candidates.
	// Default: 1.1.
	CategoryBoost float64

	// ClampBoost caps boosted similarity at 1.0.
	// Default: true.
	ClampBoost bool

	// ActiveUserWindow is how far back RefreshActiveUsers looks for activity.
	// Default: 30 days.
	ActiveUserWindow time.Duration

	// MaxActiveUsers caps users refreshed per RefreshActiveUsers run.
	// Default: 1000.
	MaxActiveUsers int

	// MaxReportedErrors caps per-user error strings in a RefreshReport.
	// Default: 10.
	MaxReportedErrors int

	// RefreshReason is the reason stored with refreshed recommendations.
	RefreshReason string

	// Location is the time zone for time-of-day scoring.
	// Default: UTC.
	Location *time.Location

	// Categories is the closed category set for explicit preferences.
	// Empty disables the check.
	Categories []string
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		Dimensions:        1536,
		InteractionLimit:  50,
		CandidateLimit:    500,
		SimilarCandidates: 200,
		SearchCandidates:  100,
		RefreshLimit:      20,
		RecommendationTTL: 7 * 24 * time.Hour,
		CategoryBoost:     1.1,
		ClampBoost:        true,
		ActiveUserWindow:  30 * 24 * time.Hour,
		MaxActiveUsers:    1000,
		MaxReportedErrors: 10,
		RefreshReason:     DefaultRefreshReason,
		Location:          time.UTC,
	}
}

// FromAppConfig builds a Config from the application configuration.
func FromAppConfig(cfg *config.Config) (*Config, error) {
	loc, err := time.LoadLocation(cfg.Recommend.ScoringTimezone)
	if err != nil {
		return nil, fmt.Errorf("scoring timezone: %w", err)
	}
	r := cfg.Recommend
	c := DefaultConfig()
	c.Dimensions = cfg.Embedding.Dimensions
	c.InteractionLimit = r.InteractionLimit
	c.CandidateLimit = r.CandidateLimit
	c.SimilarCandidates = r.SimilarCandidates
	c.SearchCandidates = r.SearchCandidates
	c.RefreshLimit = r.RefreshLimit
	c.RecommendationTTL = r.RecommendationTTL
	c.CategoryBoost = r.CategoryBoost
	c.ClampBoost = r.ClampBoost
	c.ActiveUserWindow = r.ActiveUserWindow
	c.MaxActiveUsers = r.MaxActiveUsers
	c.Location = loc
	c.Categories = append([]string(nil), cfg.Events.Categories...)
	return c, c.Validate()
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Dimensions < 0 {
		return fmt.Errorf("dimensions must be non-negative, got %d", c.Dimensions)
	}
	if c.InteractionLimit < 1 {
		return fmt.Errorf("interaction_limit must be positive, got %d", c.InteractionLimit)
	}
	if c.CandidateLimit < 1 || c.SimilarCandidates < 1 || c.SearchCandidates < 1 {
		return fmt.Errorf("candidate limits must be positive")
	}
	if c.RefreshLimit < 1 || c.RefreshLimit > MaxPersonalizedLimit {
		return fmt.Errorf("refresh_limit must be in [1, %d], got %d", MaxPersonalizedLimit, c.RefreshLimit)
	}
	if c.RecommendationTTL <= 0 {
		return fmt.Errorf("recommendation_ttl must be positive, got %v", c.RecommendationTTL)
	}
	if c.CategoryBoost < 1 {
		return fmt.Errorf("category_boost must be >= 1, got %f", c.CategoryBoost)
	}
	if c.ActiveUserWindow <= 0 {
		return fmt.Errorf("active_user_window must be positive, got %v", c.ActiveUserWindow)
	}
	if c.MaxActiveUsers < 1 {
		return fmt.Errorf("max_active_users must be positive, got %d", c.MaxActiveUsers)
	}
	if c.Location == nil {
		return fmt.Errorf("location is required")
	}
	return nil
}
