// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tomtom215/eventide/internal/vector"
)

const (
	// MaxTextLength is the longest text, in characters, accepted for embedding.
	MaxTextLength = 8000

	// MaxBatchSize is the largest number of texts sent in one provider call.
	MaxBatchSize = 100
)

var (
	ErrEmptyText       = errors.New("embedding: text is empty")
	ErrTextTooLong     = errors.New("embedding: text exceeds maximum length")
	ErrEmptyBatch      = errors.New("embedding: batch is empty")
	ErrBatchTooLarge   = errors.New("embedding: batch exceeds maximum size")
	ErrBadResponse     = errors.New("embedding: malformed provider response")
	ErrProviderFailure = errors.New("embedding: provider request failed")
)

// Embedder produces embeddings for text.
type Embedder interface {
	// Embed returns the embedding of a single text.
	Embed(ctx context.Context, text string) (vector.Vector, error)

	// EmbedBatch returns one embedding per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([]vector.Vector, error)
}

// Limits bounds what an Embedder accepts.
type Limits struct {
	MaxTextLength int
	MaxBatchSize  int
	Dimensions    int
}

// DefaultLimits match the text-embedding-3-small deployment.
func DefaultLimits() Limits {
	return Limits{MaxTextLength: MaxTextLength, MaxBatchSize: MaxBatchSize, Dimensions: 1536}
}

// CheckText validates a single input and returns it trimmed.
func (l Limits) CheckText(text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}
	if n := utf8.RuneCountInString(text); n > l.MaxTextLength {
		return "", fmt.Errorf("%d characters, max %d: %w", n, l.MaxTextLength, ErrTextTooLong)
	}
	return text, nil
}

// CheckBatch validates a batch and returns the trimmed texts.
func (l Limits) CheckBatch(texts []string) ([]string, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyBatch
	}
	if len(texts) > l.MaxBatchSize {
		return nil, fmt.Errorf("%d texts, max %d: %w", len(texts), l.MaxBatchSize, ErrBatchTooLarge)
	}
	clean := make([]string, len(texts))
	for i, t := range texts {
		c, err := l.CheckText(t)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		clean[i] = c
	}
	return clean, nil
}

// CheckVector verifies a provider vector has the configured dimensions.
func (l Limits) CheckVector(v vector.Vector) error {
	if l.Dimensions > 0 && len(v) != l.Dimensions {
		return fmt.Errorf("got %d dimensions, want %d: %w", len(v), l.Dimensions, vector.ErrDimensionMismatch)
	}
	return nil
}
