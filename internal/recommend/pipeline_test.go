// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package recommend

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/eventide/internal/metrics"
	"github.com/tomtom215/eventide/internal/models"
	"github.com/tomtom215/eventide/internal/vector"
)

func newTestPipeline(store *fakeStore, mutate ...func(*Config)) *Pipeline {
	cfg := testConfig()
	for _, m := range mutate {
		m(cfg)
	}
	builder := NewProfileBuilder(store, &fakeEmbedder{}, cfg, zerolog.Nop())
	p := NewPipeline(store, builder, cfg, zerolog.Nop())
	p.SetClock(func() time.Time { return testNow })
	return p
}

func withProfile(store *fakeStore, user string, v []float64) {
	store.profiles[user] = &models.PreferenceProfile{UserID: user, Embedding: v}
}

func TestPersonalized_TrendingFallbackWithoutProfile(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.addEvent(models.Event{ID: "old", CreatedAt: testNow.Add(-48 * time.Hour)})
	store.addEvent(models.Event{ID: "new", CreatedAt: testNow.Add(-time.Hour)})
	store.addEvent(models.Event{ID: "past", StartTime: testNow.Add(-time.Hour), CreatedAt: testNow})

	res, err := newTestPipeline(store).Personalized(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("Personalized: %v", err)
	}
	if !res.Fallback {
		t.Fatal("Fallback = false, want true")
	}
	if got := ids(res.Events); got != "new,old" {
		t.Errorf("events = %s, want new,old", got)
	}
	for _, e := range res.Events {
		if e.Score != 0.5 || e.Reason != "Popular upcoming event" {
			t.Errorf("trending entry = %v %q", e.Score, e.Reason)
		}
	}
}

func TestPersonalized_RanksByCosine(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	withProfile(store, "u1", []float64{1, 0, 0})
	store.addEvent(models.Event{ID: "b", Embedding: []float64{1, 0, 0}})
	store.addEvent(models.Event{ID: "a", Embedding: []float64{2, 0, 0}})
	store.addEvent(models.Event{ID: "mid", Embedding: []float64{1, 1, 0}})
	store.addEvent(models.Event{ID: "opposite", Embedding: []float64{-1, 0, 0}})
	store.addEvent(models.Event{ID: "unembedded"})
	store.addEvent(models.Event{ID: "past", StartTime: testNow.Add(-time.Hour), Embedding: []float64{1, 0, 0}})

	res, err := newTestPipeline(store).Personalized(context.Background(), "u1", 3)
	if err != nil {
		t.Fatalf("Personalized: %v", err)
	}
	if res.Fallback {
		t.Fatal("unexpected fallback")
	}
	// a and b tie at 1.0 and are ordered by ID.
	if got := ids(res.Events); got != "a,b,mid" {
		t.Errorf("events = %s, want a,b,mid", got)
	}
	if !approx(res.Events[0].Score, 1) {
		t.Errorf("top score = %v, want 1", res.Events[0].Score)
	}
	if res.Candidates != 4 {
		t.Errorf("Candidates = %d, want 4", res.Candidates)
	}

	all, err := newTestPipeline(store).Personalized(context.Background(), "u1", 50)
	if err != nil {
		t.Fatal(err)
	}
	last := all.Events[len(all.Events)-1]
	if last.Event.ID != "opposite" || last.Score != 0 {
		t.Errorf("last = %s %v, want opposite floored at 0", last.Event.ID, last.Score)
	}
}

func TestPersonalized_SkipsUnusableCandidates(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	withProfile(store, "u1", []float64{1, 0, 0})
	store.addEvent(models.Event{ID: "good", Embedding: []float64{1, 0, 0}})
	store.addEvent(models.Event{ID: "short", Embedding: []float64{1, 0}})
	store.addEvent(models.Event{ID: "zero", Embedding: []float64{0, 0, 0}})

	mismatch := testutil.ToFloat64(metrics.CandidatesSkipped.WithLabelValues("dimension_mismatch"))

	res, err := newTestPipeline(store).Personalized(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("Personalized: %v", err)
	}
	if got := ids(res.Events); got != "good" {
		t.Errorf("events = %s, want good", got)
	}
	if res.Skipped != 2 {
		t.Errorf("Skipped = %d, want 2", res.Skipped)
	}
	if d := testutil.ToFloat64(metrics.CandidatesSkipped.WithLabelValues("dimension_mismatch")) - mismatch; d < 1 {
		t.Errorf("dimension_mismatch skips delta = %v, want >= 1", d)
	}
}

func TestPersonalized_AllSkippedFallsBack(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	withProfile(store, "u1", []float64{1, 0, 0})
	store.addEvent(models.Event{ID: "short", Embedding: []float64{1, 0}})

	res, err := newTestPipeline(store).Personalized(context.Background(), "u1", 10)
	if err != nil {
		t.Fatalf("Personalized: %v", err)
	}
	if !res.Fallback || res.Skipped != 1 {
		t.Errorf("Fallback = %v, Skipped = %d; want true, 1", res.Fallback, res.Skipped)
	}
	if got := ids(res.Events); got != "short" {
		t.Errorf("events = %s, want the trending event", got)
	}
}

func TestPersonalized_CorruptProfilePropagates(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		profile []float64
		want    error
	}{
		{"wrong dimensions", []float64{1, 0}, vector.ErrDimensionMismatch},
		{"zero vector", []float64{0, 0, 0}, vector.ErrZeroVector},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := newFakeStore()
			withProfile(store, "u1", tt.profile)
			store.addEvent(models.Event{ID: "e1", Embedding: []float64{1, 0, 0}})

			_, err := newTestPipeline(store).Personalized(context.Background(), "u1", 10)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestPersonalized_UpstreamFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	withProfile(store, "u1", []float64{1, 0, 0})
	store.candidatesErr = errStoreDown

	_, err := newTestPipeline(store).Personalized(context.Background(), "u1", 10)
	if !errors.Is(err, ErrUpstreamFetch) || !errors.Is(err, errStoreDown) {
		t.Fatalf("err = %v, want upstream errStoreDown", err)
	}
}

func TestLimits(t *testing.T) {
	t.Parallel()

	p := newTestPipeline(newFakeStore())
	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
	}{
		{"personalized zero", func() error { _, err := p.Personalized(ctx, "u", 0); return err }},
		{"personalized over", func() error { _, err := p.Personalized(ctx, "u", 51); return err }},
		{"similar over", func() error { _, err := p.Similar(ctx, "e", 21); return err }},
		{"cached over", func() error { _, err := p.Cached(ctx, "u", 101); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call(); !errors.Is(err, ErrInvalidLimit) {
				t.Errorf("err = %v, want ErrInvalidLimit", err)
			}
		})
	}
}

func TestSimilar(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.addEvent(models.Event{ID: "seed", Category: "music", Embedding: []float64{1, 0, 0}})
	store.addEvent(models.Event{ID: "same-cat", Category: "music", Embedding: []float64{1, 1, 0}})
	store.addEvent(models.Event{ID: "other-cat", Category: "food", Embedding: []float64{1, 0.9, 0}})
	store.addEvent(models.Event{ID: "twin", Category: "music", Embedding: []float64{3, 0, 0}})
	store.addEvent(models.Event{ID: "raw", Category: "art"})

	res, err := newTestPipeline(store).Similar(context.Background(), "seed", 10)
	if err != nil {
		t.Fatalf("Similar: %v", err)
	}
	if got := ids(res.Events); got != "twin,same-cat,other-cat" {
		t.Errorf("events = %s", got)
	}
	if res.Events[0].Score != 1 {
		t.Errorf("boosted twin = %v, want clamped to 1", res.Events[0].Score)
	}
	// cos(45°) * 1.1
	if want := 0.7071067811865475 * 1.1; !approx(res.Events[1].Score, want) {
		t.Errorf("same-cat = %v, want %v", res.Events[1].Score, want)
	}
	if store.lastFilter.ExcludeIDs[0] != "seed" {
		t.Errorf("seed not excluded from candidates: %+v", store.lastFilter)
	}
}

func TestSimilar_Unclamped(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.addEvent(models.Event{ID: "seed", Category: "music", Embedding: []float64{1, 0, 0}})
	store.addEvent(models.Event{ID: "twin", Category: "music", Embedding: []float64{1, 0, 0}})

	res, err := newTestPipeline(store, func(c *Config) { c.ClampBoost = false }).Similar(context.Background(), "seed", 5)
	if err != nil {
		t.Fatal(err)
	}
	if !approx(res.Events[0].Score, 1.1) {
		t.Errorf("score = %v, want 1.1", res.Events[0].Score)
	}
}

func TestSimilar_SeedErrors(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.addEvent(models.Event{ID: "raw"})
	p := newTestPipeline(store)

	if _, err := p.Similar(context.Background(), "missing", 5); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("missing seed err = %v, want ErrNotFound", err)
	}
	if _, err := p.Similar(context.Background(), "raw", 5); !errors.Is(err, ErrSeedNotEmbedded) {
		t.Errorf("unembedded seed err = %v, want ErrSeedNotEmbedded", err)
	}
}

func TestRefresh_PersistsWithSharedExpiry(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	withProfile(store, "u1", []float64{1, 0, 0})
	store.addEvent(models.Event{ID: "e1", Embedding: []float64{1, 0, 0}})
	store.addEvent(models.Event{ID: "e2", Embedding: []float64{1, 1, 0}})
	p := newTestPipeline(store)

	for run := 0; run < 2; run++ {
		got, err := p.Refresh(context.Background(), "u1")
		if err != nil {
			t.Fatalf("Refresh run %d: %v", run, err)
		}
		if got.Requested != 2 || got.Succeeded != 2 {
			t.Errorf("run %d: result = %+v", run, got)
		}
	}
	if len(store.recs) != 2 {
		t.Fatalf("rows = %d, want 2 after repeated refresh", len(store.recs))
	}
	for _, r := range store.recs {
		if !r.ExpiresAt.Equal(testNow.Add(7 * 24 * time.Hour)) {
			t.Errorf("ExpiresAt = %v", r.ExpiresAt)
		}
		if r.Reason != DefaultRefreshReason {
			t.Errorf("Reason = %q", r.Reason)
		}
		if r.Score < 0 || r.Score > 1 {
			t.Errorf("Score = %v out of range", r.Score)
		}
	}
}

func TestRefresh_PersistsFallback(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.addEvent(models.Event{ID: "e1"})

	got, err := newTestPipeline(store).Refresh(context.Background(), "new-user")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got.Succeeded != 1 || store.recs["new-user/e1"].Score != 0.5 {
		t.Errorf("result = %+v, rows = %+v", got, store.recs)
	}
}

func TestRefresh_Failures(t *testing.T) {
	t.Parallel()

	t.Run("nothing to recommend", func(t *testing.T) {
		t.Parallel()
		_, err := newTestPipeline(newFakeStore()).Refresh(context.Background(), "u1")
		if !errors.Is(err, ErrNoRecommendations) {
			t.Fatalf("err = %v, want ErrNoRecommendations", err)
		}
	})

	t.Run("partial batch", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore()
		store.addEvent(models.Event{ID: "e1"})
		store.addEvent(models.Event{ID: "e2"})
		store.upsertFailIDs["e2"] = true

		got, err := newTestPipeline(store).Refresh(context.Background(), "u1")
		var pbe *PartialBatchError
		if !errors.As(err, &pbe) || !errors.Is(err, ErrPartialBatch) {
			t.Fatalf("err = %v, want *PartialBatchError", err)
		}
		if pbe.Requested != 2 || pbe.Succeeded != 1 || got.Succeeded != 1 {
			t.Errorf("partial = %+v, result = %+v", pbe, got)
		}
	})

	t.Run("every row fails", func(t *testing.T) {
		t.Parallel()
		store := newFakeStore()
		store.addEvent(models.Event{ID: "e1"})
		store.upsertFailIDs["e1"] = true

		_, err := newTestPipeline(store).Refresh(context.Background(), "u1")
		if !errors.Is(err, ErrUpstreamFetch) || errors.Is(err, ErrPartialBatch) {
			t.Fatalf("err = %v, want upstream failure", err)
		}
	})
}

func TestSweepExpired(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.recs["u1/e1"] = models.Recommendation{UserID: "u1", EventID: "e1", ExpiresAt: testNow.Add(-time.Minute)}
	store.recs["u1/e2"] = models.Recommendation{UserID: "u1", EventID: "e2", ExpiresAt: testNow.Add(time.Minute)}

	n, err := newTestPipeline(store).SweepExpired(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || len(store.recs) != 1 {
		t.Errorf("deleted = %d, remaining = %d; want 1, 1", n, len(store.recs))
	}
}

func TestRefreshActiveUsers(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.addEvent(models.Event{ID: "e1", Embedding: []float64{1, 0, 0}})
	store.addInteraction("u1", "e1", models.InteractionRSVP, testNow.Add(-24*time.Hour))
	store.addInteraction("u2", "e1", models.InteractionViewed, testNow.Add(-2*24*time.Hour))
	store.addInteraction("stale", "e1", models.InteractionSaved, testNow.Add(-60*24*time.Hour))
	store.recs["old/e1"] = models.Recommendation{UserID: "old", EventID: "e1", ExpiresAt: testNow.Add(-time.Hour)}

	report, err := newTestPipeline(store).RefreshActiveUsers(context.Background())
	if err != nil {
		t.Fatalf("RefreshActiveUsers: %v", err)
	}
	if report.Total != 2 || report.Processed != 2 || report.Deleted != 1 {
		t.Errorf("report = %+v", report)
	}
	if _, ok := store.recs["stale/e1"]; ok {
		t.Error("user outside the activity window was refreshed")
	}
	if _, ok := store.recs["u1/e1"]; !ok {
		t.Error("active user u1 has no recommendations")
	}
}

func TestRefreshActiveUsers_CapsReportedErrors(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.addEvent(models.Event{ID: "e1"})
	store.upsertFailIDs["e1"] = true
	for _, u := range []string{"a", "b", "c"} {
		store.addInteraction(u, "e1", models.InteractionViewed, testNow)
	}

	report, err := newTestPipeline(store, func(c *Config) { c.MaxReportedErrors = 2 }).RefreshActiveUsers(context.Background())
	if err != nil {
		t.Fatalf("RefreshActiveUsers: %v", err)
	}
	if report.Total != 3 || report.Processed != 0 || len(report.Errors) != 2 {
		t.Errorf("report = %+v", report)
	}
}

func TestCached(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.addEvent(models.Event{ID: "e1"})
	store.addEvent(models.Event{ID: "e2"})
	store.recs["u1/e1"] = models.Recommendation{UserID: "u1", EventID: "e1", Score: 0.4, ExpiresAt: testNow.Add(time.Hour)}
	store.recs["u1/e2"] = models.Recommendation{UserID: "u1", EventID: "e2", Score: 0.9, ExpiresAt: testNow.Add(time.Hour)}
	store.recs["u1/gone"] = models.Recommendation{UserID: "u1", EventID: "gone", Score: 1, ExpiresAt: testNow.Add(-time.Hour)}

	got, err := newTestPipeline(store).Cached(context.Background(), "u1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].EventID != "e2" {
		t.Errorf("Cached = %+v", got)
	}
}
