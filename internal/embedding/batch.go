// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package embedding

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/eventide/internal/vector"
)

// EmbedAll embeds any number of texts by splitting them into chunks of at
// most chunkSize and running up to concurrency chunks at once. Results are
// returned in input order. The first chunk error cancels the rest.
func EmbedAll(ctx context.Context, e Embedder, texts []string, chunkSize, concurrency int) ([]vector.Vector, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyBatch
	}
	if chunkSize > MaxBatchSize {
		chunkSize = MaxBatchSize
	}
	chunks, err := vector.Chunk(texts, chunkSize)
	if err != nil {
		return nil, err
	}
	if concurrency < 1 {
		concurrency = 1
	}

	out := make([]vector.Vector, len(texts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	offset := 0
	for n, chunk := range chunks {
		base := offset
		offset += len(chunk)
		g.Go(func() error {
			vecs, err := e.EmbedBatch(gctx, chunk)
			if err != nil {
				return fmt.Errorf("chunk %d: %w", n, err)
			}
			if len(vecs) != len(chunk) {
				return fmt.Errorf("chunk %d: %w: got %d embeddings for %d inputs", n, ErrBadResponse, len(vecs), len(chunk))
			}
			// Chunks own disjoint ranges of out.
			copy(out[base:base+len(chunk)], vecs)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
