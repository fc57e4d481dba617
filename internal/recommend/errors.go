// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package recommend

import (
	"errors"
	"fmt"
)

var (
	// ErrNoProfileAvailable means the user has neither a stored profile
	// vector nor interactions with embedded events. Callers fall back to
	// trending events.
	ErrNoProfileAvailable = errors.New("no preference profile available")

	// ErrUpstreamFetch wraps record store and embedding provider failures.
	ErrUpstreamFetch = errors.New("upstream fetch failed")

	// ErrSeedNotEmbedded is returned by Similar for a seed event without an
	// embedding.
	ErrSeedNotEmbedded = errors.New("seed event has no embedding")

	// ErrNoRecommendations is returned by Refresh when nothing was ranked.
	ErrNoRecommendations = errors.New("no recommendations generated")

	// ErrPartialBatch marks a batch where some rows failed to persist.
	ErrPartialBatch = errors.New("partial batch failure")

	// ErrScoreOutOfRange indicates a scoring defect: a combined score left [0, 1].
	ErrScoreOutOfRange = errors.New("score out of range")

	// ErrInvalidLimit is returned for a result limit outside the allowed range.
	ErrInvalidLimit = errors.New("invalid limit")

	// ErrInvalidInput is returned for malformed caller input.
	ErrInvalidInput = errors.New("invalid input")
)

// PartialBatchError reports how many rows of a batch were persisted.
type PartialBatchError struct {
	Requested int
	Succeeded int
	Err       error
}

func (e *PartialBatchError) Error() string {
	msg := fmt.Sprintf("persisted %d of %d recommendations", e.Succeeded, e.Requested)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes ErrPartialBatch and the underlying row errors.
func (e *PartialBatchError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPartialBatch}
	}
	return []error{ErrPartialBatch, e.Err}
}

func upstream(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrUpstreamFetch, err)
}

func checkLimit(limit, max int) error {
	if limit < 1 || limit > max {
		return fmt.Errorf("%w: must be between 1 and %d, got %d", ErrInvalidLimit, max, limit)
	}
	return nil
}
