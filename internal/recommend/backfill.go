// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package recommend

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eventide/internal/embedding"
	"github.com/tomtom215/eventide/internal/vector"
)

// BackfillConfig sizes embedding backfill runs.
type BackfillConfig struct {
	// Batch is the number of events fetched per run (1..1000).
	Batch int
	// Chunk is the number of texts per provider call (1..100).
	Chunk int
	// Concurrency bounds provider calls in flight.
	Concurrency int
	// MaxTextLength truncates event text before embedding.
	MaxTextLength int
}

// DefaultBackfillConfig returns the production backfill sizes.
func DefaultBackfillConfig() BackfillConfig {
	return BackfillConfig{
		Batch:         200,
		Chunk:         50,
		Concurrency:   2,
		MaxTextLength: embedding.MaxTextLength,
	}
}

// Backfiller computes embeddings for events that lack one.
type Backfiller struct {
	store    EventStore
	embedder embedding.Embedder
	cfg      BackfillConfig
	logger   zerolog.Logger
}

// NewBackfiller creates a Backfiller.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBackfiller(store EventStore, embedder embedding.Embedder, cfg BackfillConfig, logger zerolog.Logger) *Backfiller {
	return &Backfiller{
		store:    store,
		embedder: embedder,
		cfg:      cfg,
		logger:   logger.With().Str("component", "backfill").Logger(),
	}
}

// Run embeds up to Batch published events without an embedding, newest
// first.
func (b *Backfiller) Run(ctx context.Context) (BackfillReport, error) {
	events, err := b.store.EventsWithoutEmbedding(ctx, b.cfg.Batch)
	if err != nil {
		return BackfillReport{}, upstream("fetch events without embedding", err)
	}
	report := BackfillReport{Requested: len(events)}
	if len(events) == 0 {
		return report, nil
	}

	ids := make([]string, len(events))
	texts := make([]string, len(events))
	for i := range events {
		ids[i] = events[i].ID
		texts[i] = embedding.EventText(&events[i], b.cfg.MaxTextLength)
	}

	report.Embedded, err = b.embedAndSave(ctx, ids, texts)
	if err != nil {
		return report, err
	}
	b.logger.Info().
		Int("requested", report.Requested).
		Int("embedded", report.Embedded).
		Msg("Embedding backfill complete")
	return report, nil
}

// EmbedEvents embeds the given events regardless of whether they already
// have an embedding. Unknown IDs are reported in Missing.
func (b *Backfiller) EmbedEvents(ctx context.Context, ids []string) (BackfillReport, error) {
	report := BackfillReport{Requested: len(ids)}
	if len(ids) == 0 {
		return report, fmt.Errorf("%w: no event IDs", ErrInvalidInput)
	}
	if len(ids) > embedding.MaxBatchSize {
		return report, fmt.Errorf("%w: at most %d event IDs", ErrInvalidInput, embedding.MaxBatchSize)
	}

	events, err := b.store.GetEvents(ctx, ids)
	if err != nil {
		return report, upstream("fetch events", err)
	}

	found := make(map[string]struct{}, len(events))
	foundIDs := make([]string, len(events))
	texts := make([]string, len(events))
	for i := range events {
		found[events[i].ID] = struct{}{}
		foundIDs[i] = events[i].ID
		texts[i] = embedding.EventText(&events[i], b.cfg.MaxTextLength)
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			report.Missing = append(report.Missing, id)
		}
	}
	if len(events) == 0 {
		return report, nil
	}

	report.Embedded, err = b.embedAndSave(ctx, foundIDs, texts)
	return report, err
}

func (b *Backfiller) embedAndSave(ctx context.Context, ids, texts []string) (int, error) {
	vecs, err := embedding.EmbedAll(ctx, b.embedder, texts, b.cfg.Chunk, b.cfg.Concurrency)
	if err != nil {
		return 0, upstream("embed events", err)
	}
	byID := make(map[string]vector.Vector, len(ids))
	for i, id := range ids {
		byID[id] = vecs[i]
	}
	n, err := b.store.SaveEventEmbeddings(ctx, byID)
	if err != nil {
		return 0, upstream("save embeddings", err)
	}
	return n, nil
}
