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
	"sync"
	"time"

	"github.com/tomtom215/eventide/internal/models"
	"github.com/tomtom215/eventide/internal/vector"
)

var errStoreDown = errors.New("store down")

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

// fakeStore is an in-memory Store. Set the *Err fields to inject failures.
type fakeStore struct {
	mu           sync.Mutex
	events       map[string]models.Event
	profiles     map[string]*models.PreferenceProfile
	interactions []models.Interaction
	recs         map[string]models.Recommendation // user/event

	candidatesErr error
	profileErr    error
	upsertFailIDs map[string]bool
	lastFilter    models.CandidateFilter
	embedUpdates  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		events:        make(map[string]models.Event),
		profiles:      make(map[string]*models.PreferenceProfile),
		recs:          make(map[string]models.Recommendation),
		upsertFailIDs: make(map[string]bool),
	}
}

func (s *fakeStore) addEvent(e models.Event) {
	if e.Status == "" {
		e.Status = models.EventStatusPublished
	}
	if e.StartTime.IsZero() {
		e.StartTime = testNow.Add(24 * time.Hour)
	}
	s.events[e.ID] = e
}

func (s *fakeStore) addInteraction(user, event string, typ models.InteractionType, at time.Time) {
	s.interactions = append(s.interactions, models.Interaction{UserID: user, EventID: event, Type: typ, CreatedAt: at})
}

func (s *fakeStore) GetEvent(_ context.Context, id string) (*models.Event, error) {
	e, ok := s.events[id]
	if !ok {
		return nil, fmt.Errorf("event %s: %w", id, models.ErrNotFound)
	}
	return &e, nil
}

func (s *fakeStore) GetEvents(_ context.Context, ids []string) ([]models.Event, error) {
	var out []models.Event
	for _, id := range ids {
		if e, ok := s.events[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *fakeStore) sortedEvents() []models.Event {
	out := make([]models.Event, 0, len(s.events))
	for _, e := range s.events {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (s *fakeStore) CandidateEvents(_ context.Context, f models.CandidateFilter) ([]models.Event, error) {
	s.lastFilter = f
	if s.candidatesErr != nil {
		return nil, s.candidatesErr
	}
	var out []models.Event
	for _, e := range s.sortedEvents() {
		switch {
		case e.Status != models.EventStatusPublished:
		case !f.StartsAfter.IsZero() && e.StartTime.Before(f.StartsAfter):
		case f.RequireEmbedding && e.Embedding == nil:
		case contains(f.ExcludeIDs, e.ID):
		case len(f.Categories) > 0 && !contains(f.Categories, e.Category):
		case f.MaxPriceCents != nil && e.Price != nil && *e.Price > *f.MaxPriceCents:
		default:
			out = append(out, e)
		}
		if len(out) == f.Limit {
			break
		}
	}
	return out, nil
}

func (s *fakeStore) TrendingEvents(_ context.Context, now time.Time, limit int) ([]models.Event, error) {
	var out []models.Event
	for _, e := range s.sortedEvents() {
		if e.Status == models.EventStatusPublished && !e.StartTime.Before(now) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) EventsWithoutEmbedding(_ context.Context, limit int) ([]models.Event, error) {
	var out []models.Event
	for _, e := range s.sortedEvents() {
		if e.Status == models.EventStatusPublished && e.Embedding == nil {
			out = append(out, e)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) SaveEventEmbeddings(_ context.Context, embeddings map[string]vector.Vector) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, v := range embeddings {
		e, ok := s.events[id]
		if !ok {
			continue
		}
		e.Embedding = v
		s.events[id] = e
		n++
	}
	return n, nil
}

func (s *fakeStore) GetProfile(_ context.Context, userID string) (*models.PreferenceProfile, error) {
	if s.profileErr != nil {
		return nil, s.profileErr
	}
	p, ok := s.profiles[userID]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", userID, models.ErrNotFound)
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) UpsertProfile(_ context.Context, p *models.PreferenceProfile) error {
	cp := *p
	s.profiles[p.UserID] = &cp
	return nil
}

func (s *fakeStore) UpdateProfileEmbedding(_ context.Context, userID string, v vector.Vector) error {
	s.embedUpdates++
	p, ok := s.profiles[userID]
	if !ok {
		p = &models.PreferenceProfile{UserID: userID, Categories: []string{}, Interests: []string{}}
		s.profiles[userID] = p
	}
	p.Embedding = v
	return nil
}

func (s *fakeStore) userInteractions(userID string) []models.Interaction {
	var out []models.Interaction
	for _, in := range s.interactions {
		if in.UserID == userID {
			out = append(out, in)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (s *fakeStore) RecentInteractions(_ context.Context, userID string, limit int) ([]models.WeightedInteraction, error) {
	recent := s.userInteractions(userID)
	if len(recent) > limit {
		recent = recent[:limit]
	}
	var out []models.WeightedInteraction
	for _, in := range recent {
		e, ok := s.events[in.EventID]
		if !ok || e.Embedding == nil {
			continue
		}
		out = append(out, models.WeightedInteraction{EventID: in.EventID, Type: in.Type, CreatedAt: in.CreatedAt, Embedding: e.Embedding})
	}
	return out, nil
}

func (s *fakeStore) InteractionsForKeywords(_ context.Context, userID string, limit int) ([]models.KeywordInteraction, error) {
	var out []models.KeywordInteraction
	for _, in := range s.userInteractions(userID) {
		if in.Type == models.InteractionViewed {
			continue
		}
		e := s.events[in.EventID]
		out = append(out, models.KeywordInteraction{Type: in.Type, Category: e.Category, Tags: e.Tags})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (s *fakeStore) InteractionCounts(_ context.Context, userID string) (models.InteractionStats, error) {
	var st models.InteractionStats
	for _, in := range s.userInteractions(userID) {
		st.Total++
		switch in.Type {
		case models.InteractionViewed:
			st.Viewed++
		case models.InteractionSaved:
			st.Saved++
		case models.InteractionRSVP:
			st.RSVP++
		case models.InteractionAttended:
			st.Attended++
		}
	}
	return st, nil
}

func (s *fakeStore) UpsertRecommendations(_ context.Context, recs []models.Recommendation) (int, error) {
	n := 0
	var errs []error
	for _, r := range recs {
		if s.upsertFailIDs[r.EventID] {
			errs = append(errs, fmt.Errorf("row %s failed", r.EventID))
			continue
		}
		s.recs[r.UserID+"/"+r.EventID] = r
		n++
	}
	return n, errors.Join(errs...)
}

func (s *fakeStore) DeleteExpiredRecommendations(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for k, r := range s.recs {
		if r.ExpiresAt.Before(now) {
			delete(s.recs, k)
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) ListRecommendations(_ context.Context, userID string, now time.Time, limit int) ([]models.StoredRecommendation, error) {
	var out []models.StoredRecommendation
	for _, r := range s.recs {
		if r.UserID == userID && r.ExpiresAt.After(now) {
			out = append(out, models.StoredRecommendation{Recommendation: r, Event: s.events[r.EventID]})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeStore) ActiveUsers(_ context.Context, since time.Time, limit int) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	for _, in := range s.interactions {
		if !in.CreatedAt.Before(since) && !seen[in.UserID] {
			seen[in.UserID] = true
			out = append(out, in.UserID)
		}
	}
	sort.Strings(out)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeEmbedder maps known texts to fixed vectors; unknown texts get a
// vector derived from their length.
type fakeEmbedder struct {
	mu      sync.Mutex
	vectors map[string]vector.Vector
	err     error
	calls   []string
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) (vector.Vector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return vector.Vector{float64(len(text)), 1, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]vector.Vector, error) {
	out := make([]vector.Vector, len(texts))
	for i, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (f *fakeEmbedder) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// testConfig is DefaultConfig with 3-dimensional embeddings.
func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Dimensions = 3
	return cfg
}

func ids(events []ScoredEvent) string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Event.ID
	}
	return strings.Join(out, ",")
}
