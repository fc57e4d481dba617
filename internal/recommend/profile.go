// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eventide/internal/embedding"
	"github.com/tomtom215/eventide/internal/metrics"
	"github.com/tomtom215/eventide/internal/models"
	"github.com/tomtom215/eventide/internal/vector"
)

// ProfileBuilder resolves per-user preference vectors.
type ProfileBuilder struct {
	store    ProfileStore
	embedder embedding.Embedder
	cfg      *Config
	allowed  map[string]struct{}
	logger   zerolog.Logger
}

// NewProfileBuilder creates a ProfileBuilder.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewProfileBuilder(store ProfileStore, embedder embedding.Embedder, cfg *Config, logger zerolog.Logger) *ProfileBuilder {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	var allowed map[string]struct{}
	if len(cfg.Categories) > 0 {
		allowed = make(map[string]struct{}, len(cfg.Categories))
		for _, c := range cfg.Categories {
			allowed[c] = struct{}{}
		}
	}
	return &ProfileBuilder{
		store:    store,
		embedder: embedder,
		cfg:      cfg,
		allowed:  allowed,
		logger:   logger.With().Str("component", "profile").Logger(),
	}
}

// Resolve returns the user's preference vector. A stored vector is returned
// as is; otherwise one is derived from interaction history and stored.
// It returns ErrNoProfileAvailable when there is nothing to derive from.
func (b *ProfileBuilder) Resolve(ctx context.Context, userID string) (vector.Vector, error) {
	profile, err := b.store.GetProfile(ctx, userID)
	switch {
	case err == nil && profile.HasEmbedding():
		return profile.Embedding, nil
	case err != nil && !errors.Is(err, models.ErrNotFound):
		return nil, upstream("get profile", err)
	}
	return b.Derive(ctx, userID)
}

// Derive blends the embeddings of the user's recent interactions into a
// profile vector, weighted by interaction type, and writes it back to the
// profile. Explicit categories and interests are kept.
func (b *ProfileBuilder) Derive(ctx context.Context, userID string) (vector.Vector, error) {
	history, err := b.store.RecentInteractions(ctx, userID, b.cfg.InteractionLimit)
	if err != nil {
		return nil, upstream("fetch interactions", err)
	}

	vectors := make([]vector.Vector, 0, len(history))
	weights := make([]float64, 0, len(history))
	for _, in := range history {
		if len(in.Embedding) == 0 {
			continue
		}
		vectors = append(vectors, in.Embedding)
		weights = append(weights, InteractionWeight(in.Type))
	}
	if len(vectors) == 0 {
		return nil, ErrNoProfileAvailable
	}

	normalized, err := vector.NormalizeWeights(weights)
	if err != nil {
		return nil, fmt.Errorf("derive profile for %s: %w", userID, err)
	}
	profile, err := vector.WeightedAverage(vectors, normalized)
	if err != nil {
		return nil, fmt.Errorf("derive profile for %s: %w", userID, err)
	}

	if err := b.store.UpdateProfileEmbedding(ctx, userID, profile); err != nil {
		return nil, upstream("store profile", err)
	}
	metrics.ProfilesDerived.WithLabelValues("implicit").Inc()
	b.logger.Debug().
		Str("user_id", userID).
		Int("interactions", len(vectors)).
		Msg("Derived profile from interaction history")
	return profile, nil
}

// CaptureExplicit embeds onboarding input and stores it as the profile,
// replacing any derived vector.
func (b *ProfileBuilder) CaptureExplicit(ctx context.Context, userID string, categories, interests []string) (*models.PreferenceProfile, error) {
	categories = cleanTerms(categories)
	interests = cleanTerms(interests)
	if len(categories) == 0 {
		return nil, fmt.Errorf("%w: at least one category must be selected", ErrInvalidInput)
	}
	if len(interests) == 0 {
		return nil, fmt.Errorf("%w: at least one interest must be provided", ErrInvalidInput)
	}
	if b.allowed != nil {
		for _, c := range categories {
			if _, ok := b.allowed[c]; !ok {
				return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, c)
			}
		}
	}

	vec, err := b.embedder.Embed(ctx, embedding.PreferenceText(categories, interests))
	if err != nil {
		return nil, upstream("embed preferences", err)
	}

	profile := &models.PreferenceProfile{
		UserID:     userID,
		Categories: categories,
		Interests:  interests,
		Embedding:  vec,
	}
	if err := b.store.UpsertProfile(ctx, profile); err != nil {
		return nil, upstream("store profile", err)
	}
	metrics.ProfilesDerived.WithLabelValues("explicit").Inc()
	return profile, nil
}

// Profile returns the stored profile, or nil when the user has none.
func (b *ProfileBuilder) Profile(ctx context.Context, userID string) (*models.PreferenceProfile, error) {
	p, err := b.store.GetProfile(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, upstream("get profile", err)
	}
	return p, nil
}

// HasCompletedOnboarding reports whether the user has captured explicit
// preferences. A profile holding only a derived vector does not count.
func (b *ProfileBuilder) HasCompletedOnboarding(ctx context.Context, userID string) (bool, error) {
	p, err := b.Profile(ctx, userID)
	if err != nil {
		return false, err
	}
	return p != nil && len(p.Categories) > 0, nil
}

// InteractionStats counts the user's interactions per type.
func (b *ProfileBuilder) InteractionStats(ctx context.Context, userID string) (models.InteractionStats, error) {
	stats, err := b.store.InteractionCounts(ctx, userID)
	if err != nil {
		return stats, upstream("count interactions", err)
	}
	return stats, nil
}

// ImplicitKeywords returns the categories and tags most present in the
// user's saved, rsvp, and attended events. Attended counts three times,
// rsvp twice. Ties are broken alphabetically.
func (b *ProfileBuilder) ImplicitKeywords(ctx context.Context, userID string) (models.ImplicitPreferences, error) {
	out := models.ImplicitPreferences{Categories: []string{}, Tags: []string{}}

	history, err := b.store.InteractionsForKeywords(ctx, userID, keywordInteractionLimit)
	if err != nil {
		return out, upstream("fetch interactions", err)
	}

	categories := make(map[string]int)
	tags := make(map[string]int)
	for _, in := range history {
		w := keywordWeight(in.Type)
		if in.Category != "" {
			categories[in.Category] += w
		}
		for _, tag := range in.Tags {
			if tag != "" {
				tags[tag] += w
			}
		}
	}

	out.Categories = topKeys(categories, topCategoryCount)
	out.Tags = topKeys(tags, topTagCount)
	return out, nil
}

func topKeys(counts map[string]int, n int) []string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// cleanTerms trims terms and drops blanks and duplicates, keeping order.
func cleanTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
