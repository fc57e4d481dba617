// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/rs/zerolog"

	"github.com/tomtom215/eventide/internal/config"
	"github.com/tomtom215/eventide/internal/metrics"
	"github.com/tomtom215/eventide/internal/vector"
)

const cacheKeyPrefix = "emb:"

// Cache is a persistent text -> vector store backed by BadgerDB.
// Keys are the SHA-256 of model and text, so changing the model never
// returns a stale vector.
type Cache struct {
	db    *badger.DB
	model string
	ttl   time.Duration
}

// OpenCache opens (or creates) the cache described by cfg.
func OpenCache(cfg config.CacheConfig, model string) (*Cache, error) {
	var opts badger.Options
	if cfg.InMem {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open embedding cache: %w", err)
	}
	return &Cache{db: db, model: model, ttl: cfg.TTL}, nil
}

// Close releases the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// RunGC reclaims value log space. Badger returns ErrNoRewrite when there is
// nothing to collect; that is not an error here.
func (c *Cache) RunGC() error {
	if err := c.db.RunValueLogGC(0.5); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
		return err
	}
	return nil
}

func (c *Cache) key(text string) []byte {
	sum := sha256.Sum256([]byte(c.model + "\x00" + text))
	return []byte(cacheKeyPrefix + hex.EncodeToString(sum[:]))
}

// Get returns the cached vector for text, or false on a miss.
func (c *Cache) Get(text string) (vector.Vector, bool, error) {
	var out vector.Vector
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(c.key(text))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			v, err := vector.Unmarshal(val)
			if err != nil {
				return err
			}
			out = v
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	return out, true, nil
}

// Put stores vectors for texts in one transaction.
func (c *Cache) Put(texts []string, vecs []vector.Vector) error {
	if len(texts) != len(vecs) {
		return fmt.Errorf("cache put: %d texts, %d vectors", len(texts), len(vecs))
	}
	wb := c.db.NewWriteBatch()
	defer wb.Cancel()
	for i, text := range texts {
		e := badger.NewEntry(c.key(text), vector.Marshal(vecs[i]))
		if c.ttl > 0 {
			e = e.WithTTL(c.ttl)
		}
		if err := wb.SetEntry(e); err != nil {
			return fmt.Errorf("cache put: %w", err)
		}
	}
	return wb.Flush()
}

// CachedEmbedder consults the Cache before delegating to the next Embedder.
// Cache failures degrade to a provider call and are only logged.
type CachedEmbedder struct {
	next   Embedder
	cache  *Cache
	limits Limits
	logger zerolog.Logger
}

// NewCachedEmbedder wraps next with cache.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCachedEmbedder(next Embedder, cache *Cache, limits Limits, logger zerolog.Logger) *CachedEmbedder {
	return &CachedEmbedder{
		next:   next,
		cache:  cache,
		limits: limits,
		logger: logger.With().Str("component", "embedding-cache").Logger(),
	}
}

func (c *CachedEmbedder) lookup(text string) (vector.Vector, bool) {
	v, ok, err := c.cache.Get(text)
	switch {
	case err != nil:
		metrics.EmbeddingCacheLookups.WithLabelValues("error").Inc()
		c.logger.Warn().Err(err).Msg("embedding cache lookup failed")
		return nil, false
	case ok && c.limits.CheckVector(v) == nil:
		metrics.EmbeddingCacheLookups.WithLabelValues("hit").Inc()
		return v, true
	default:
		metrics.EmbeddingCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}
}

func (c *CachedEmbedder) store(texts []string, vecs []vector.Vector) {
	if err := c.cache.Put(texts, vecs); err != nil {
		c.logger.Warn().Err(err).Int("count", len(texts)).Msg("embedding cache write failed")
	}
}

// Embed returns a cached vector or embeds and caches text.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) (vector.Vector, error) {
	clean, err := c.limits.CheckText(text)
	if err != nil {
		return nil, err
	}
	if v, ok := c.lookup(clean); ok {
		return v, nil
	}
	v, err := c.next.Embed(ctx, clean)
	if err != nil {
		return nil, err
	}
	c.store([]string{clean}, []vector.Vector{v})
	return v, nil
}

// EmbedBatch serves hits from the cache and sends only misses upstream,
// preserving input order.
func (c *CachedEmbedder) EmbedBatch(ctx context.Context, texts []string) ([]vector.Vector, error) {
	clean, err := c.limits.CheckBatch(texts)
	if err != nil {
		return nil, err
	}

	out := make([]vector.Vector, len(clean))
	var missIdx []int
	var missText []string
	for i, t := range clean {
		if v, ok := c.lookup(t); ok {
			out[i] = v
			continue
		}
		missIdx = append(missIdx, i)
		missText = append(missText, t)
	}
	if len(missText) == 0 {
		return out, nil
	}

	fresh, err := c.next.EmbedBatch(ctx, missText)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missText) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", ErrBadResponse, len(fresh), len(missText))
	}
	for j, i := range missIdx {
		out[i] = fresh[j]
	}
	c.store(missText, fresh)
	return out, nil
}
