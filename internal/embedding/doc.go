// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

/*
Package embedding turns text into semantic vectors through a remote,
OpenAI-compatible /embeddings endpoint.

The layers compose as decorators over the Embedder interface:

	client  := embedding.NewClient(cfg.Embedding, logger)   // HTTP + rate limit
	breaker := embedding.NewBreaker(client, logger)         // gobreaker
	cached  := embedding.NewCachedEmbedder(breaker, cache)  // badger

Limits enforced for every Embedder:
  - text must be non-empty and at most MaxTextLength (8000) characters
  - a batch holds 1..MaxBatchSize (100) texts
  - output order and length match input, each vector has the configured
    dimensions

EmbedAll splits larger workloads into chunks and embeds them concurrently
with a bounded errgroup.
*/
package embedding
