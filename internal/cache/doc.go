// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

/*
Package cache provides a thread-safe in-memory response cache with TTL
expiration and a bounded, least-recently-used eviction policy.

The API uses it for similar-event responses: the ranking for a seed event
depends only on the catalog embeddings, so it is cached per (event, limit)
and the whole cache is cleared whenever event embeddings change.

# Usage

	c := cache.New[models.SimilarEventsResponse](10*time.Minute, 1000)
	defer c.Close()

	key := cache.GenerateKey("similar", map[string]any{"id": id, "limit": limit})
	if resp, ok := c.Get(key); ok {
	    return resp
	}
	c.Set(key, resp)

# Expiration

Entries expire lazily on Get and in bulk by a background cleanup loop that
runs every cleanupInterval until Close is called. When the cache is full,
Set evicts the least recently used entry.

# Thread Safety

All methods are safe for concurrent use.
*/
package cache
