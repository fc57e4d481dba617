// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package api

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eventide/internal/eventbus"
	"github.com/tomtom215/eventide/internal/models"
	"github.com/tomtom215/eventide/internal/recommend"
)

var errBackend = fmt.Errorf("query failed: %w", recommend.ErrUpstreamFetch)

func testEvent(id string) models.Event {
	return models.Event{
		ID:        id,
		Title:     "Event " + id,
		Category:  "music",
		StartTime: time.Date(2026, 7, 1, 19, 0, 0, 0, time.UTC),
		Status:    models.EventStatusPublished,
	}
}

type fakeRecommender struct {
	mu           sync.Mutex
	cached       []models.StoredRecommendation
	personalized *recommend.Result
	similar      *recommend.Result
	report       *recommend.RefreshReport
	err          error
	similarErr   error

	lastUser     string
	lastLimit    int
	similarCalls int
	liveCalls    int
}

func (f *fakeRecommender) Personalized(_ context.Context, userID string, limit int) (*recommend.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.liveCalls++
	f.lastUser, f.lastLimit = userID, limit
	if f.err != nil {
		return nil, f.err
	}
	return f.personalized, nil
}

func (f *fakeRecommender) Similar(_ context.Context, _ string, limit int) (*recommend.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.similarCalls++
	f.lastLimit = limit
	if f.similarErr != nil {
		return nil, f.similarErr
	}
	return f.similar, nil
}

func (f *fakeRecommender) Cached(_ context.Context, userID string, limit int) ([]models.StoredRecommendation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUser, f.lastLimit = userID, limit
	return f.cached, nil
}

func (f *fakeRecommender) RefreshActiveUsers(_ context.Context) (*recommend.RefreshReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

type fakeSearcher struct {
	result  *recommend.SearchResult
	err     error
	lastReq *recommend.SearchRequest
}

func (f *fakeSearcher) Search(_ context.Context, req *recommend.SearchRequest) (*recommend.SearchResult, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeProfiles struct {
	profile    *models.PreferenceProfile
	captureErr error
	stats      models.InteractionStats
	implicit   models.ImplicitPreferences
}

func (f *fakeProfiles) Profile(_ context.Context, _ string) (*models.PreferenceProfile, error) {
	return f.profile, nil
}

func (f *fakeProfiles) CaptureExplicit(_ context.Context, userID string, categories, interests []string) (*models.PreferenceProfile, error) {
	if f.captureErr != nil {
		return nil, f.captureErr
	}
	f.profile = &models.PreferenceProfile{
		UserID:     userID,
		Categories: categories,
		Interests:  interests,
		Embedding:  []float64{1, 0, 0},
		UpdatedAt:  time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	return f.profile, nil
}

func (f *fakeProfiles) InteractionStats(_ context.Context, _ string) (models.InteractionStats, error) {
	return f.stats, nil
}

func (f *fakeProfiles) ImplicitKeywords(_ context.Context, _ string) (models.ImplicitPreferences, error) {
	return f.implicit, nil
}

type fakeEmbedder struct {
	report recommend.BackfillReport
	err    error
	ids    []string
	runs   int
}

func (f *fakeEmbedder) Run(_ context.Context) (recommend.BackfillReport, error) {
	f.runs++
	return f.report, f.err
}

func (f *fakeEmbedder) EmbedEvents(_ context.Context, ids []string) (recommend.BackfillReport, error) {
	f.ids = ids
	return f.report, f.err
}

type fakeInteractions struct {
	events  map[string]bool
	saved   []models.Interaction
	saveErr error
}

func (f *fakeInteractions) GetEvent(_ context.Context, id string) (*models.Event, error) {
	if !f.events[id] {
		return nil, fmt.Errorf("event %s: %w", id, models.ErrNotFound)
	}
	e := testEvent(id)
	return &e, nil
}

func (f *fakeInteractions) UpsertInteraction(_ context.Context, i *models.Interaction) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.saved = append(f.saved, *i)
	return nil
}

type fakePublisher struct {
	events []*eventbus.InteractionRecorded
	err    error
}

func (f *fakePublisher) PublishInteraction(_ context.Context, evt *eventbus.InteractionRecorded) error {
	f.events = append(f.events, evt)
	return f.err
}

type fakeHealth struct{ err error }

func (f fakeHealth) Ping(context.Context) error { return f.err }

type fakeBreaker string

func (f fakeBreaker) State() string { return string(f) }

type testDeps struct {
	rec          *fakeRecommender
	search       *fakeSearcher
	profiles     *fakeProfiles
	embedder     *fakeEmbedder
	interactions *fakeInteractions
	publisher    *fakePublisher
}

func newTestDeps() *testDeps {
	return &testDeps{
		rec:          &fakeRecommender{},
		search:       &fakeSearcher{result: &recommend.SearchResult{}},
		profiles:     &fakeProfiles{},
		embedder:     &fakeEmbedder{},
		interactions: &fakeInteractions{events: map[string]bool{"e1": true}},
		publisher:    &fakePublisher{},
	}
}

func (d *testDeps) dependencies() Dependencies {
	return Dependencies{
		Recommender:  d.rec,
		Searcher:     d.search,
		Profiles:     d.profiles,
		Embedder:     d.embedder,
		Interactions: d.interactions,
		Publisher:    d.publisher,
		Health:       fakeHealth{},
		Breaker:      fakeBreaker("closed"),
	}
}

func newTestHandler(t *testing.T, d *testDeps) *Handler {
	t.Helper()
	cfg := DefaultHandlerConfig()
	cfg.Dimensions = 3
	cfg.Categories = []string{"music", "food"}
	h := NewHandler(d.dependencies(), cfg, zerolog.Nop())
	t.Cleanup(h.Close)
	return h
}
