// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

// Package vector provides the embedding arithmetic used by the recommendation
// pipeline: dot products, magnitudes, cosine similarity, and weighted blends.
//
// Every function is pure. Unlike the lenient helpers commonly found in
// recommender code (returning 0 for mismatched input), these return sentinel
// errors so a malformed embedding is never mistaken for "no similarity".
package vector

import (
	"fmt"
	"math"

	"github.com/tomtom215/eventide/internal/metrics"
)

// Vector is a dense embedding. All vectors in a deployment share one length.
type Vector = []float64

// WeightTolerance is the allowed deviation of a weight sum from 1.0.
const WeightTolerance = 1e-4

// Dot returns the dot product of a and b.
func Dot(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("dot: %d vs %d: %w", len(a), len(b), ErrDimensionMismatch)
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum, nil
}

// Magnitude returns the Euclidean norm of v.
func Magnitude(v Vector) (float64, error) {
	if len(v) == 0 {
		return 0, fmt.Errorf("magnitude: %w", ErrEmptyInput)
	}
	var sumSq float64
	for _, x := range v {
		sumSq += x * x
	}
	if sumSq == 0 {
		return 0, fmt.Errorf("magnitude: %w", ErrZeroVector)
	}
	return math.Sqrt(sumSq), nil
}

// Normalize returns v scaled to unit length.
func Normalize(v Vector) (Vector, error) {
	mag, err := Magnitude(v)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	out := make(Vector, len(v))
	for i, x := range v {
		out[i] = x / mag
	}
	return out, nil
}

// Cosine returns the cosine similarity of a and b in [-1, 1].
// Floating point drift past either bound is clamped.
func Cosine(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine: %d vs %d: %w", len(a), len(b), ErrDimensionMismatch)
	}
	dot, err := Dot(a, b)
	if err != nil {
		return 0, err
	}
	magA, err := Magnitude(a)
	if err != nil {
		return 0, fmt.Errorf("cosine: %w", err)
	}
	magB, err := Magnitude(b)
	if err != nil {
		return 0, fmt.Errorf("cosine: %w", err)
	}

	sim := dot / (magA * magB)
	switch {
	case sim > 1:
		metrics.CosineClamped.Inc()
		sim = 1
	case sim < -1:
		metrics.CosineClamped.Inc()
		sim = -1
	}
	return sim, nil
}

// Euclidean returns the straight-line distance between a and b.
func Euclidean(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("euclidean: %d vs %d: %w", len(a), len(b), ErrDimensionMismatch)
	}
	var sumSq float64
	for i := range a {
		d := a[i] - b[i]
		sumSq += d * d
	}
	return math.Sqrt(sumSq), nil
}

// Chunk splits items into contiguous slices of at most size elements.
// The returned chunks share the backing array of items.
func Chunk[T any](items []T, size int) ([][]T, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size %d: %w", size, ErrInvalidChunkSize)
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := min(start+size, len(items))
		chunks = append(chunks, items[start:end:end])
	}
	return chunks, nil
}

// Average returns the element-wise mean of vectors.
func Average(vectors []Vector) (Vector, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("average: %w", ErrEmptyInput)
	}
	dim := len(vectors[0])
	out := make(Vector, dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("average: vector %d has %d dimensions, want %d: %w", i, len(v), dim, ErrDimensionMismatch)
		}
		for j, x := range v {
			out[j] += x
		}
	}
	n := float64(len(vectors))
	for j := range out {
		out[j] /= n
	}
	return out, nil
}

// WeightedAverage returns sum(weights[i] * vectors[i]). Weights must sum to
// 1 within WeightTolerance; they are not renormalized here, use
// NormalizeWeights first.
func WeightedAverage(vectors []Vector, weights []float64) (Vector, error) {
	if len(vectors) == 0 {
		return nil, fmt.Errorf("weighted average: %w", ErrEmptyInput)
	}
	if len(vectors) != len(weights) {
		return nil, fmt.Errorf("weighted average: %d vectors, %d weights: %w", len(vectors), len(weights), ErrInvalidWeights)
	}

	var total float64
	for _, w := range weights {
		total += w
	}
	if math.Abs(total-1) > WeightTolerance {
		return nil, fmt.Errorf("weighted average: weights sum to %g: %w", total, ErrInvalidWeights)
	}

	dim := len(vectors[0])
	out := make(Vector, dim)
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("weighted average: vector %d has %d dimensions, want %d: %w", i, len(v), dim, ErrDimensionMismatch)
		}
		for j, x := range v {
			out[j] += x * weights[i]
		}
	}
	return out, nil
}

// NormalizeWeights divides each weight by their total.
func NormalizeWeights(weights []float64) ([]float64, error) {
	var total float64
	for _, w := range weights {
		total += w
	}
	if total <= 0 {
		return nil, fmt.Errorf("normalize weights: total %g: %w", total, ErrInvalidWeights)
	}
	out := make([]float64, len(weights))
	for i, w := range weights {
		out[i] = w / total
	}
	return out, nil
}
