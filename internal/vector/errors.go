// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package vector

import "errors"

var (
	// ErrDimensionMismatch is returned when two vectors (or a vector set and
	// its weights) do not share a length.
	ErrDimensionMismatch = errors.New("vector: dimension mismatch")

	// ErrZeroVector is returned when a magnitude is required but every
	// component is zero.
	ErrZeroVector = errors.New("vector: zero vector")

	// ErrInvalidWeights is returned when weights do not sum to 1 within
	// WeightTolerance, or cannot be normalized.
	ErrInvalidWeights = errors.New("vector: invalid weights")

	// ErrEmptyInput is returned for zero-length vectors or empty vector sets.
	ErrEmptyInput = errors.New("vector: empty input")

	// ErrInvalidChunkSize is returned by Chunk for a size <= 0.
	ErrInvalidChunkSize = errors.New("vector: chunk size must be positive")
)
