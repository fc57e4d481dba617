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

	"github.com/rs/zerolog"

	"github.com/tomtom215/eventide/internal/models"
)

func TestBackfill_Run(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.addEvent(models.Event{ID: "e1", Title: "Jazz Night"})
	store.addEvent(models.Event{ID: "e2", Title: "Taco Fest"})
	store.addEvent(models.Event{ID: "e3", Title: "Draft", Status: models.EventStatusDraft})
	store.addEvent(models.Event{ID: "done", Embedding: []float64{1, 0, 0}})
	emb := &fakeEmbedder{}

	cfg := DefaultBackfillConfig()
	cfg.Chunk = 1
	report, err := NewBackfiller(store, emb, cfg, zerolog.Nop()).Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if report.Requested != 2 || report.Embedded != 2 {
		t.Errorf("report = %+v", report)
	}
	if emb.callCount() != 2 {
		t.Errorf("embedder calls = %d, want 2 (one per chunk)", emb.callCount())
	}
	if !store.events["e1"].HasEmbedding() || store.events["e3"].HasEmbedding() {
		t.Error("wrong events embedded")
	}

	// Nothing left to do on the next run.
	report, err = NewBackfiller(store, emb, cfg, zerolog.Nop()).Run(context.Background())
	if err != nil || report.Requested != 0 {
		t.Errorf("second run = %+v, %v", report, err)
	}
}

func TestBackfill_RunEmbedFailure(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.addEvent(models.Event{ID: "e1", Title: "Jazz Night"})
	emb := &fakeEmbedder{err: errors.New("quota exceeded")}

	_, err := NewBackfiller(store, emb, DefaultBackfillConfig(), zerolog.Nop()).Run(context.Background())
	if !errors.Is(err, ErrUpstreamFetch) {
		t.Fatalf("err = %v, want ErrUpstreamFetch", err)
	}
	if store.events["e1"].HasEmbedding() {
		t.Error("embedding saved despite failure")
	}
}

func TestBackfill_EmbedEvents(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.addEvent(models.Event{ID: "e1", Title: "Jazz Night", Embedding: []float64{9, 9, 9}})
	emb := &fakeEmbedder{}

	report, err := NewBackfiller(store, emb, DefaultBackfillConfig(), zerolog.Nop()).
		EmbedEvents(context.Background(), []string{"e1", "ghost"})
	if err != nil {
		t.Fatalf("EmbedEvents: %v", err)
	}
	if report.Embedded != 1 || strings.Join(report.Missing, ",") != "ghost" {
		t.Errorf("report = %+v", report)
	}
	if store.events["e1"].Embedding[0] == 9 {
		t.Error("existing embedding was not recomputed")
	}
}

func TestBackfill_EmbedEventsBounds(t *testing.T) {
	t.Parallel()

	b := NewBackfiller(newFakeStore(), &fakeEmbedder{}, DefaultBackfillConfig(), zerolog.Nop())
	tooMany := make([]string, 101)
	for i := range tooMany {
		tooMany[i] = "e"
	}
	for _, in := range [][]string{nil, tooMany} {
		if _, err := b.EmbedEvents(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("EmbedEvents(%d ids) err = %v, want ErrInvalidInput", len(in), err)
		}
	}
}
