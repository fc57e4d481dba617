// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package recommend

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eventide/internal/embedding"
	"github.com/tomtom215/eventide/internal/metrics"
	"github.com/tomtom215/eventide/internal/models"
	"github.com/tomtom215/eventide/internal/vector"
)

// SearchRequest is a smart search query.
type SearchRequest struct {
	Preferences models.ConversationPreferences
	Location    *models.Location
	Limit       int
}

// Searcher ranks upcoming events against structured preferences.
type Searcher struct {
	store    EventStore
	embedder embedding.Embedder
	scorer   *Scorer
	cfg      *Config
	logger   zerolog.Logger
	now      func() time.Time
}

// NewSearcher creates a Searcher.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSearcher(store EventStore, embedder embedding.Embedder, scorer *Scorer, cfg *Config, logger zerolog.Logger) *Searcher {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Searcher{
		store:    store,
		embedder: embedder,
		scorer:   scorer,
		cfg:      cfg,
		logger:   logger.With().Str("component", "search").Logger(),
		now:      time.Now,
	}
}

// SetClock overrides the clock used for "upcoming".
func (s *Searcher) SetClock(now func() time.Time) {
	s.now = now
}

// PrepareInterests embeds the joined interest terms once per request so
// scoring stays pure. It returns nil when there are no terms.
func (s *Searcher) PrepareInterests(ctx context.Context, interests []string) (vector.Vector, error) {
	terms := cleanTerms(interests)
	if len(terms) == 0 {
		return nil, nil
	}
	vec, err := s.embedder.Embed(ctx, embedding.InterestText(terms))
	if err != nil {
		return nil, upstream("embed interests", err)
	}
	if _, err := vector.Magnitude(vec); err != nil {
		return nil, fmt.Errorf("interest embedding: %w", err)
	}
	return vec, nil
}

// Search scores up to SearchCandidates upcoming published events and
// returns the best Limit of them.
func (s *Searcher) Search(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	if err := checkLimit(req.Limit, MaxSearchLimit); err != nil {
		return nil, err
	}
	if b := req.Preferences.Budget; b != nil && (b.Min < 0 || b.Max < b.Min) {
		return nil, fmt.Errorf("%w: budget must satisfy 0 <= min <= max", ErrInvalidInput)
	}
	if req.Location != nil && !req.Location.Valid() {
		return nil, fmt.Errorf("%w: location out of range", ErrInvalidInput)
	}

	start := time.Now()
	result, err := s.search(ctx, req)
	outcome := "ok"
	candidates := 0
	if err != nil {
		outcome = "error"
	} else {
		candidates = result.Candidates
	}
	metrics.RecordPipelineRun("search", outcome, time.Since(start), candidates)
	return result, err
}

func (s *Searcher) search(ctx context.Context, req *SearchRequest) (*SearchResult, error) {
	interest, err := s.PrepareInterests(ctx, req.Preferences.Interests)
	if err != nil {
		return nil, err
	}

	filter := models.CandidateFilter{
		StartsAfter: s.now(),
		Categories:  cleanTerms(req.Preferences.Categories),
		Limit:       s.cfg.SearchCandidates,
	}
	if b := req.Preferences.Budget; b != nil {
		maxCents := int64(math.Round(b.Max * 100))
		filter.MaxPriceCents = &maxCents
	}
	events, err := s.store.CandidateEvents(ctx, filter)
	if err != nil {
		return nil, upstream("fetch candidates", err)
	}

	in := &ScoreInput{Preferences: req.Preferences, Interest: interest, Location: req.Location}
	result := &SearchResult{Candidates: len(events)}
	scored := make([]ScoredEvent, 0, len(events))
	for i := range events {
		se, err := s.scorer.Score(&events[i], in)
		if err != nil {
			if errors.Is(err, ErrScoreOutOfRange) {
				return nil, err
			}
			result.Skipped++
			recordSkip(s.logger, events[i].ID, err)
			continue
		}
		scored = append(scored, se)
	}

	rank(scored)
	if len(scored) > req.Limit {
		scored = scored[:req.Limit]
	}
	result.Events = scored
	return result, nil
}
