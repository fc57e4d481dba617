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
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eventide/internal/metrics"
	"github.com/tomtom215/eventide/internal/models"
	"github.com/tomtom215/eventide/internal/vector"
)

// trendingScore is the flat score given to fallback events.
const trendingScore = 0.5

const trendingReason = "Popular upcoming event"

// Pipeline ranks events for users and seed events, and maintains the
// persisted recommendation rows.
type Pipeline struct {
	store    Store
	profiles *ProfileBuilder
	cfg      *Config
	logger   zerolog.Logger
	now      func() time.Time
}

// NewPipeline creates a Pipeline.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewPipeline(store Store, profiles *ProfileBuilder, cfg *Config, logger zerolog.Logger) *Pipeline {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Pipeline{
		store:    store,
		profiles: profiles,
		cfg:      cfg,
		logger:   logger.With().Str("component", "pipeline").Logger(),
		now:      time.Now,
	}
}

// SetClock overrides the clock used for "upcoming" and expiry times.
func (p *Pipeline) SetClock(now func() time.Time) {
	p.now = now
}

// Profiles returns the profile builder used by the pipeline.
func (p *Pipeline) Profiles() *ProfileBuilder {
	return p.profiles
}

// Personalized ranks upcoming embedded events by cosine similarity to the
// user's profile vector. Users without a profile, and runs where no
// candidate could be scored, get trending events instead.
func (p *Pipeline) Personalized(ctx context.Context, userID string, limit int) (*Result, error) {
	if err := checkLimit(limit, MaxPersonalizedLimit); err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := p.personalized(ctx, userID, limit)
	p.record("personalized", start, res, err)
	return res, err
}

func (p *Pipeline) personalized(ctx context.Context, userID string, limit int) (*Result, error) {
	now := p.now()

	profile, err := p.profiles.Resolve(ctx, userID)
	if errors.Is(err, ErrNoProfileAvailable) {
		p.logger.Debug().Str("user_id", userID).Msg("No profile, using trending events")
		return p.trending(ctx, now, limit)
	}
	if err != nil {
		return nil, err
	}
	if err := p.checkReference(profile); err != nil {
		return nil, fmt.Errorf("profile for %s: %w", userID, err)
	}

	candidates, err := p.store.CandidateEvents(ctx, models.CandidateFilter{
		StartsAfter:      now,
		RequireEmbedding: true,
		Limit:            p.cfg.CandidateLimit,
	})
	if err != nil {
		return nil, upstream("fetch candidates", err)
	}

	scored, skipped := p.scoreAll(profile, candidates, nil)
	if len(scored) == 0 {
		p.logger.Debug().
			Str("user_id", userID).
			Int("candidates", len(candidates)).
			Int("skipped", skipped).
			Msg("No scorable candidates, using trending events")
		res, err := p.trending(ctx, now, limit)
		if res != nil {
			res.Skipped = skipped
		}
		return res, err
	}

	rank(scored)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return &Result{Events: scored, Candidates: len(candidates), Skipped: skipped}, nil
}

// Similar ranks published embedded events by similarity to a seed event.
// Candidates sharing the seed's category get the configured boost.
func (p *Pipeline) Similar(ctx context.Context, eventID string, limit int) (*Result, error) {
	if err := checkLimit(limit, MaxSimilarLimit); err != nil {
		return nil, err
	}
	start := time.Now()
	res, err := p.similar(ctx, eventID, limit)
	p.record("similar", start, res, err)
	return res, err
}

func (p *Pipeline) similar(ctx context.Context, eventID string, limit int) (*Result, error) {
	seed, err := p.store.GetEvent(ctx, eventID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, upstream("fetch seed event", err)
	}
	if !seed.HasEmbedding() {
		return nil, fmt.Errorf("event %s: %w", eventID, ErrSeedNotEmbedded)
	}
	if err := p.checkReference(seed.Embedding); err != nil {
		return nil, fmt.Errorf("seed event %s: %w", eventID, err)
	}

	candidates, err := p.store.CandidateEvents(ctx, models.CandidateFilter{
		RequireEmbedding: true,
		ExcludeIDs:       []string{seed.ID},
		Limit:            p.cfg.SimilarCandidates,
	})
	if err != nil {
		return nil, upstream("fetch candidates", err)
	}

	boost := func(e *models.Event, sim float64) float64 {
		if e.Category == seed.Category {
			sim *= p.cfg.CategoryBoost
		}
		if p.cfg.ClampBoost && sim > 1 {
			sim = 1
		}
		return sim
	}
	scored, skipped := p.scoreAll(seed.Embedding, candidates, boost)

	rank(scored)
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return &Result{Events: scored, Candidates: len(candidates), Skipped: skipped}, nil
}

// Refresh recomputes and persists the user's top recommendations with a
// shared expiry. Rows are written independently; when some fail the
// returned error is a *PartialBatchError.
func (p *Pipeline) Refresh(ctx context.Context, userID string) (BatchResult, error) {
	res, err := p.Personalized(ctx, userID, p.cfg.RefreshLimit)
	if err != nil {
		return BatchResult{}, err
	}
	if len(res.Events) == 0 {
		return BatchResult{}, fmt.Errorf("user %s: %w", userID, ErrNoRecommendations)
	}

	now := p.now()
	expiresAt := now.Add(p.cfg.RecommendationTTL)
	recs := make([]models.Recommendation, len(res.Events))
	for i, se := range res.Events {
		recs[i] = models.Recommendation{
			UserID:    userID,
			EventID:   se.Event.ID,
			Score:     clamp01(se.Score),
			Reason:    p.cfg.RefreshReason,
			ExpiresAt: expiresAt,
			CreatedAt: now,
		}
	}

	succeeded, err := p.store.UpsertRecommendations(ctx, recs)
	metrics.RecordPersisted(succeeded, len(recs)-succeeded)
	result := BatchResult{Requested: len(recs), Succeeded: succeeded}
	switch {
	case succeeded == 0 && err != nil:
		return result, upstream("persist recommendations", err)
	case succeeded < len(recs):
		return result, &PartialBatchError{Requested: len(recs), Succeeded: succeeded, Err: err}
	}

	p.logger.Debug().
		Str("user_id", userID).
		Int("persisted", succeeded).
		Bool("fallback", res.Fallback).
		Msg("Recommendations refreshed")
	return result, nil
}

// RefreshActiveUsers sweeps expired rows, then refreshes every user with
// recent interactions. Per-user failures are collected, not fatal.
func (p *Pipeline) RefreshActiveUsers(ctx context.Context) (*RefreshReport, error) {
	deleted, err := p.SweepExpired(ctx)
	if err != nil {
		return nil, err
	}

	since := p.now().Add(-p.cfg.ActiveUserWindow)
	users, err := p.store.ActiveUsers(ctx, since, p.cfg.MaxActiveUsers)
	if err != nil {
		return nil, upstream("fetch active users", err)
	}

	report := &RefreshReport{Total: len(users), Deleted: deleted}
	for _, userID := range users {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if _, err := p.Refresh(ctx, userID); err != nil {
			p.logger.Warn().Err(err).Str("user_id", userID).Msg("Failed to refresh recommendations")
			if len(report.Errors) < p.cfg.MaxReportedErrors {
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", userID, err))
			}
			continue
		}
		report.Processed++
	}

	p.logger.Info().
		Int("processed", report.Processed).
		Int("total", report.Total).
		Int64("deleted", report.Deleted).
		Msg("Active user refresh complete")
	return report, nil
}

// SweepExpired deletes recommendations whose expiry has passed.
func (p *Pipeline) SweepExpired(ctx context.Context) (int64, error) {
	n, err := p.store.DeleteExpiredRecommendations(ctx, p.now())
	if err != nil {
		return 0, upstream("delete expired recommendations", err)
	}
	metrics.RecommendationsExpired.Add(float64(n))
	return n, nil
}

// Cached returns the user's unexpired persisted recommendations, best first.
func (p *Pipeline) Cached(ctx context.Context, userID string, limit int) ([]models.StoredRecommendation, error) {
	if err := checkLimit(limit, MaxCachedLimit); err != nil {
		return nil, err
	}
	recs, err := p.store.ListRecommendations(ctx, userID, p.now(), limit)
	if err != nil {
		return nil, upstream("list recommendations", err)
	}
	return recs, nil
}

func (p *Pipeline) trending(ctx context.Context, now time.Time, limit int) (*Result, error) {
	events, err := p.store.TrendingEvents(ctx, now, limit)
	if err != nil {
		return nil, upstream("fetch trending events", err)
	}
	out := make([]ScoredEvent, len(events))
	for i := range events {
		out[i] = ScoredEvent{Event: events[i], Score: trendingScore, Reason: trendingReason}
	}
	return &Result{Events: out, Fallback: true, Candidates: len(events)}, nil
}

// checkReference validates the vector every candidate is compared with.
// Its failures are data corruption and must not degrade to a fallback.
func (p *Pipeline) checkReference(v vector.Vector) error {
	if p.cfg.Dimensions > 0 && len(v) != p.cfg.Dimensions {
		return fmt.Errorf("length %d, want %d: %w", len(v), p.cfg.Dimensions, vector.ErrDimensionMismatch)
	}
	_, err := vector.Magnitude(v)
	return err
}

// scoreAll computes the similarity of each candidate to ref, skipping
// candidates whose embedding cannot be compared. adjust, when set, is
// applied to the raw similarity before the score is floored at 0.
func (p *Pipeline) scoreAll(ref vector.Vector, candidates []models.Event, adjust func(*models.Event, float64) float64) ([]ScoredEvent, int) {
	scored := make([]ScoredEvent, 0, len(candidates))
	skipped := 0
	for i := range candidates {
		e := &candidates[i]
		if !e.HasEmbedding() {
			skipped++
			recordSkip(p.logger, e.ID, errMissingEmbedding)
			continue
		}
		sim, err := vector.Cosine(ref, e.Embedding)
		if err != nil {
			skipped++
			recordSkip(p.logger, e.ID, err)
			continue
		}
		if adjust != nil {
			sim = adjust(e, sim)
		}
		scored = append(scored, ScoredEvent{Event: *e, Score: math.Max(0, sim)})
	}
	return scored, skipped
}

func (p *Pipeline) record(mode string, start time.Time, res *Result, err error) {
	outcome := "ok"
	candidates := 0
	switch {
	case err != nil:
		outcome = "error"
	case res.Fallback:
		outcome = "fallback"
		candidates = res.Candidates
	default:
		candidates = res.Candidates
	}
	metrics.RecordPipelineRun(mode, outcome, time.Since(start), candidates)
}

var errMissingEmbedding = errors.New("missing embedding")

// recordSkip counts and logs a candidate dropped for an unusable embedding.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func recordSkip(logger zerolog.Logger, eventID string, err error) {
	reason := "malformed"
	switch {
	case errors.Is(err, vector.ErrDimensionMismatch):
		reason = "dimension_mismatch"
	case errors.Is(err, vector.ErrZeroVector):
		reason = "zero_vector"
	case errors.Is(err, errMissingEmbedding):
		reason = "missing_embedding"
	}
	metrics.CandidatesSkipped.WithLabelValues(reason).Inc()
	logger.Debug().Str("event_id", eventID).Str("reason", reason).Err(err).Msg("Skipping candidate")
}

// rank sorts by score descending; ties go to the smaller event ID.
func rank(events []ScoredEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].Score != events[j].Score {
			return events[i].Score > events[j].Score
		}
		return events[i].Event.ID < events[j].Event.ID
	})
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
