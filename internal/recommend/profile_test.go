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
)

func newTestBuilder(store *fakeStore, emb *fakeEmbedder) *ProfileBuilder {
	cfg := testConfig()
	cfg.Categories = []string{"music", "food", "art"}
	return NewProfileBuilder(store, emb, cfg, zerolog.Nop())
}

func TestResolve_StoredEmbeddingWins(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.profiles["u1"] = &models.PreferenceProfile{UserID: "u1", Embedding: []float64{0, 1, 0}}
	store.addEvent(models.Event{ID: "e1", Embedding: []float64{1, 0, 0}})
	store.addInteraction("u1", "e1", models.InteractionAttended, testNow)

	got, err := newTestBuilder(store, &fakeEmbedder{}).Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got[1] != 1 {
		t.Errorf("Resolve = %v, want stored vector", got)
	}
	if store.embedUpdates != 0 {
		t.Errorf("stored profile should not be rewritten, updates = %d", store.embedUpdates)
	}
}

func TestResolve_DerivesAndWritesThrough(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.addEvent(models.Event{ID: "e1", Embedding: []float64{1, 0, 0}})
	store.addEvent(models.Event{ID: "e2", Embedding: []float64{0, 1, 0}})
	store.addInteraction("u1", "e1", models.InteractionAttended, testNow.Add(-time.Hour))
	store.addInteraction("u1", "e2", models.InteractionViewed, testNow)

	b := newTestBuilder(store, &fakeEmbedder{})
	got, err := b.Resolve(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	// Weights 1.0 and 0.2 normalize to 5/6 and 1/6.
	if !approx(got[0], 5.0/6) || !approx(got[1], 1.0/6) {
		t.Errorf("derived = %v, want [0.833 0.167 0]", got)
	}
	if store.embedUpdates != 1 {
		t.Fatalf("embedUpdates = %d, want 1", store.embedUpdates)
	}
	if p := store.profiles["u1"]; !p.HasEmbedding() {
		t.Error("derived vector was not written back")
	}

	// A second resolve reads the stored vector.
	if _, err := b.Resolve(context.Background(), "u1"); err != nil {
		t.Fatal(err)
	}
	if store.embedUpdates != 1 {
		t.Errorf("second resolve re-derived, updates = %d", store.embedUpdates)
	}
}

func TestResolve_NoProfileAvailable(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	// Interaction with an unembedded event does not count.
	store.addEvent(models.Event{ID: "e1"})
	store.addInteraction("u1", "e1", models.InteractionAttended, testNow)

	_, err := newTestBuilder(store, &fakeEmbedder{}).Resolve(context.Background(), "u1")
	if !errors.Is(err, ErrNoProfileAvailable) {
		t.Fatalf("err = %v, want ErrNoProfileAvailable", err)
	}
}

func TestResolve_WindowExcludesOlderEmbeddedHistory(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.addEvent(models.Event{ID: "old", Embedding: []float64{1, 0, 0}})
	store.addEvent(models.Event{ID: "new1"})
	store.addEvent(models.Event{ID: "new2"})
	store.addInteraction("u1", "old", models.InteractionAttended, testNow.Add(-100*time.Hour))
	store.addInteraction("u1", "new1", models.InteractionViewed, testNow.Add(-time.Hour))
	store.addInteraction("u1", "new2", models.InteractionViewed, testNow)

	cfg := testConfig()
	cfg.InteractionLimit = 2
	b := NewProfileBuilder(store, &fakeEmbedder{}, cfg, zerolog.Nop())

	_, err := b.Resolve(context.Background(), "u1")
	if !errors.Is(err, ErrNoProfileAvailable) {
		t.Fatalf("err = %v, want ErrNoProfileAvailable", err)
	}
	if store.embedUpdates != 0 {
		t.Errorf("embedUpdates = %d, want 0", store.embedUpdates)
	}
}

func TestResolve_StoreFailureIsUpstream(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.profileErr = errStoreDown

	_, err := newTestBuilder(store, &fakeEmbedder{}).Resolve(context.Background(), "u1")
	if !errors.Is(err, ErrUpstreamFetch) || !errors.Is(err, errStoreDown) {
		t.Fatalf("err = %v, want upstream wrapping errStoreDown", err)
	}
}

func TestCaptureExplicit(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	emb := &fakeEmbedder{}
	b := newTestBuilder(store, emb)

	p, err := b.CaptureExplicit(context.Background(), "u1", []string{"music", " food ", "music"}, []string{"jazz", "", "tacos"})
	if err != nil {
		t.Fatalf("CaptureExplicit: %v", err)
	}
	if strings.Join(p.Categories, ",") != "music,food" || strings.Join(p.Interests, ",") != "jazz,tacos" {
		t.Errorf("profile = %+v", p)
	}
	if len(emb.calls) != 1 || emb.calls[0] != "Categories: music, food\nInterests: jazz. tacos" {
		t.Errorf("embedded text = %q", emb.calls)
	}
	if !store.profiles["u1"].HasEmbedding() {
		t.Error("profile embedding not stored")
	}

	done, err := b.HasCompletedOnboarding(context.Background(), "u1")
	if err != nil || !done {
		t.Errorf("HasCompletedOnboarding = %v, %v; want true", done, err)
	}
}

func TestCaptureExplicit_Validation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		categories []string
		interests  []string
		want       string
	}{
		{"no categories", []string{" "}, []string{"jazz"}, "category"},
		{"no interests", []string{"music"}, nil, "interest"},
		{"unknown category", []string{"music", "sports"}, []string{"jazz"}, "sports"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			emb := &fakeEmbedder{}
			_, err := newTestBuilder(newFakeStore(), emb).CaptureExplicit(context.Background(), "u1", tt.categories, tt.interests)
			if !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err %q does not mention %q", err, tt.want)
			}
			if emb.callCount() != 0 {
				t.Error("embedder called for invalid input")
			}
		})
	}
}

func TestCaptureExplicit_EmbedFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	emb := &fakeEmbedder{err: errors.New("provider 503")}
	_, err := newTestBuilder(store, emb).CaptureExplicit(context.Background(), "u1", []string{"art"}, []string{"painting"})
	if !errors.Is(err, ErrUpstreamFetch) {
		t.Fatalf("err = %v, want ErrUpstreamFetch", err)
	}
	if _, ok := store.profiles["u1"]; ok {
		t.Error("profile stored despite embedding failure")
	}
}

func TestHasCompletedOnboarding_DerivedOnly(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.profiles["u1"] = &models.PreferenceProfile{UserID: "u1", Embedding: []float64{1, 0, 0}}
	b := newTestBuilder(store, &fakeEmbedder{})

	for _, user := range []string{"u1", "nobody"} {
		done, err := b.HasCompletedOnboarding(context.Background(), user)
		if err != nil {
			t.Fatal(err)
		}
		if done {
			t.Errorf("HasCompletedOnboarding(%s) = true, want false", user)
		}
	}
}

func TestImplicitKeywords(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.addEvent(models.Event{ID: "e1", Category: "music", Tags: []string{"jazz", "live"}})
	store.addEvent(models.Event{ID: "e2", Category: "food", Tags: []string{"tacos", "live"}})
	store.addEvent(models.Event{ID: "e3", Category: "art", Tags: []string{"gallery"}})
	store.addEvent(models.Event{ID: "e4", Category: "comedy", Tags: []string{"standup"}})
	store.addInteraction("u1", "e1", models.InteractionAttended, testNow) // 3
	store.addInteraction("u1", "e2", models.InteractionRSVP, testNow)     // 2
	store.addInteraction("u1", "e3", models.InteractionSaved, testNow)    // 1
	store.addInteraction("u1", "e4", models.InteractionViewed, testNow)   // ignored

	got, err := newTestBuilder(store, &fakeEmbedder{}).ImplicitKeywords(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ImplicitKeywords: %v", err)
	}
	if c := strings.Join(got.Categories, ","); c != "music,food,art" {
		t.Errorf("Categories = %q", c)
	}
	// live = 5, jazz = 3, tacos = 2, gallery = 1
	if tg := strings.Join(got.Tags, ","); tg != "live,jazz,tacos,gallery" {
		t.Errorf("Tags = %q", tg)
	}
}

func TestImplicitKeywords_EmptyHistory(t *testing.T) {
	t.Parallel()

	got, err := newTestBuilder(newFakeStore(), &fakeEmbedder{}).ImplicitKeywords(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Categories == nil || got.Tags == nil || len(got.Categories)+len(got.Tags) != 0 {
		t.Errorf("want empty non-nil slices, got %+v", got)
	}
}

func TestTopKeys_TiesAlphabetical(t *testing.T) {
	t.Parallel()

	got := topKeys(map[string]int{"b": 2, "a": 2, "c": 3, "d": 1}, 3)
	if strings.Join(got, ",") != "c,a,b" {
		t.Errorf("topKeys = %v, want [c a b]", got)
	}
}

func TestInteractionStats(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.addInteraction("u1", "e1", models.InteractionViewed, testNow)
	store.addInteraction("u1", "e1", models.InteractionSaved, testNow)
	store.addInteraction("u1", "e2", models.InteractionViewed, testNow)
	store.addInteraction("u2", "e1", models.InteractionRSVP, testNow)

	got, err := newTestBuilder(store, &fakeEmbedder{}).InteractionStats(context.Background(), "u1")
	if err != nil {
		t.Fatal(err)
	}
	want := models.InteractionStats{Total: 3, Viewed: 2, Saved: 1}
	if got != want {
		t.Errorf("InteractionStats = %+v, want %+v", got, want)
	}
}
