// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package recommend

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eventide/internal/models"
	"github.com/tomtom215/eventide/internal/vector"
)

func newTestSearcher(store *fakeStore, emb *fakeEmbedder) *Searcher {
	s := NewSearcher(store, emb, NewScorer(DefaultScoreWeights(), time.UTC), testConfig(), zerolog.Nop())
	s.SetClock(func() time.Time { return testNow })
	return s
}

func TestSearch_RanksWithBreakdown(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.addEvent(models.Event{ID: "jazz", Category: "music", Embedding: []float64{1, 0, 0}, Price: cents(2000)})
	store.addEvent(models.Event{ID: "rock", Category: "music", Embedding: []float64{0, 1, 0}, Price: cents(2000)})
	store.addEvent(models.Event{ID: "pricey", Category: "music", Embedding: []float64{1, 0, 0}, Price: cents(9000)})
	store.addEvent(models.Event{ID: "tacos", Category: "food", Embedding: []float64{1, 0, 0}})
	emb := &fakeEmbedder{vectors: map[string]vector.Vector{"jazz saxophone": {1, 0, 0}}}

	res, err := newTestSearcher(store, emb).Search(context.Background(), &SearchRequest{
		Preferences: models.ConversationPreferences{
			Interests:  []string{"jazz", " saxophone "},
			Categories: []string{"music"},
			Budget:     &models.BudgetRange{Min: 0, Max: 50},
		},
		Limit: 5,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got := ids(res.Events); got != "jazz,rock" {
		t.Errorf("events = %s, want jazz,rock", got)
	}
	if res.Events[0].Breakdown == nil || res.Events[0].Breakdown.Interest != 1 {
		t.Errorf("top breakdown = %+v", res.Events[0].Breakdown)
	}
	if res.Events[1].Breakdown.Interest != 0 {
		t.Errorf("orthogonal interest = %v, want 0", res.Events[1].Breakdown.Interest)
	}
	if f := store.lastFilter; f.MaxPriceCents == nil || *f.MaxPriceCents != 5000 || strings.Join(f.Categories, ",") != "music" {
		t.Errorf("filter = %+v", f)
	}
	if !store.lastFilter.StartsAfter.Equal(testNow) {
		t.Errorf("StartsAfter = %v, want now", store.lastFilter.StartsAfter)
	}
}

func TestSearch_NoInterestsSkipsEmbedding(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.addEvent(models.Event{ID: "e1"})
	emb := &fakeEmbedder{}

	res, err := newTestSearcher(store, emb).Search(context.Background(), &SearchRequest{Limit: 3})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if emb.callCount() != 0 {
		t.Errorf("embedder called %d times", emb.callCount())
	}
	if len(res.Events) != 1 || res.Events[0].Breakdown.Interest != 0.5 {
		t.Errorf("result = %+v", res.Events)
	}
}

func TestSearch_SkipsMismatchedEmbeddings(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.addEvent(models.Event{ID: "ok", Embedding: []float64{1, 0, 0}})
	store.addEvent(models.Event{ID: "short", Embedding: []float64{1, 0}})
	emb := &fakeEmbedder{vectors: map[string]vector.Vector{"jazz": {1, 0, 0}}}

	res, err := newTestSearcher(store, emb).Search(context.Background(), &SearchRequest{
		Preferences: models.ConversationPreferences{Interests: []string{"jazz"}},
		Limit:       10,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if ids(res.Events) != "ok" || res.Skipped != 1 {
		t.Errorf("events = %s, skipped = %d", ids(res.Events), res.Skipped)
	}
}

func TestSearch_InvalidRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		req  SearchRequest
		want error
	}{
		{"zero limit", SearchRequest{}, ErrInvalidLimit},
		{"limit over ten", SearchRequest{Limit: 11}, ErrInvalidLimit},
		{"inverted budget", SearchRequest{Limit: 5, Preferences: models.ConversationPreferences{Budget: &models.BudgetRange{Min: 50, Max: 10}}}, ErrInvalidInput},
		{"bad latitude", SearchRequest{Limit: 5, Location: &models.Location{Latitude: 91}}, ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := newTestSearcher(newFakeStore(), &fakeEmbedder{}).Search(context.Background(), &tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSearch_EmbeddingFailureAborts(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.addEvent(models.Event{ID: "e1"})
	emb := &fakeEmbedder{err: errors.New("provider down")}

	_, err := newTestSearcher(store, emb).Search(context.Background(), &SearchRequest{
		Preferences: models.ConversationPreferences{Interests: []string{"jazz"}},
		Limit:       5,
	})
	if !errors.Is(err, ErrUpstreamFetch) {
		t.Fatalf("err = %v, want ErrUpstreamFetch", err)
	}
}
