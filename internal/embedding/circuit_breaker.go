// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package embedding

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/eventide/internal/metrics"
	"github.com/tomtom215/eventide/internal/vector"
)

// BreakerName labels the embedding provider breaker in metrics.
const BreakerName = "embedding-api"

// ErrCircuitOpen is returned while the breaker rejects calls.
var ErrCircuitOpen = errors.New("embedding: circuit breaker open")

// BreakerSettings tunes the circuit breaker.
type BreakerSettings struct {
	MaxRequests  uint32        // concurrent probes allowed while half-open
	Interval     time.Duration // closed-state count reset period
	Timeout      time.Duration // open duration before probing
	MinRequests  uint32        // requests needed before the failure ratio is considered
	FailureRatio float64
}

// DefaultBreakerSettings opens after 60% failures over at least 10 requests
// and probes again after 2 minutes.
func DefaultBreakerSettings() BreakerSettings {
	return BreakerSettings{
		MaxRequests:  3,
		Interval:     time.Minute,
		Timeout:      2 * time.Minute,
		MinRequests:  10,
		FailureRatio: 0.6,
	}
}

// Breaker wraps an Embedder with a circuit breaker so a failing provider
// is not hammered by the backfill job and request traffic.
//
// Input validation errors (empty text, oversized batch) are returned before
// the breaker and never count as provider failures.
type Breaker struct {
	next   Embedder
	limits Limits
	cb     *gobreaker.CircuitBreaker[[]vector.Vector]
	logger zerolog.Logger
}

// NewBreaker wraps next with DefaultBreakerSettings.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBreaker(next Embedder, limits Limits, logger zerolog.Logger) *Breaker {
	return NewBreakerWithSettings(next, limits, DefaultBreakerSettings(), logger)
}

// NewBreakerWithSettings wraps next with explicit settings.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBreakerWithSettings(next Embedder, limits Limits, s BreakerSettings, logger zerolog.Logger) *Breaker {
	log := logger.With().Str("component", "embedding-breaker").Logger()
	metrics.CircuitBreakerState.WithLabelValues(BreakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]vector.Vector](gobreaker.Settings{
		Name:        BreakerName,
		MaxRequests: s.MaxRequests,
		Interval:    s.Interval,
		Timeout:     s.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < s.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= s.FailureRatio {
				log.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).
					Msg("opening circuit")
				return true
			}
			return false
		},
		IsSuccessful: func(err error) bool {
			// Caller cancellation says nothing about provider health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			log.Info().Str("from", fromStr).Str("to", toStr).Msg("circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &Breaker{next: next, limits: limits, cb: cb, logger: log}
}

// State returns the breaker state as "closed", "half-open", or "open".
func (b *Breaker) State() string {
	return stateToString(b.cb.State())
}

// Embed calls the wrapped Embedder through the breaker.
func (b *Breaker) Embed(ctx context.Context, text string) (vector.Vector, error) {
	if _, err := b.limits.CheckText(text); err != nil {
		return nil, err
	}
	out, err := b.execute(func() ([]vector.Vector, error) {
		v, err := b.next.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		return []vector.Vector{v}, nil
	})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EmbedBatch calls the wrapped Embedder through the breaker.
func (b *Breaker) EmbedBatch(ctx context.Context, texts []string) ([]vector.Vector, error) {
	if _, err := b.limits.CheckBatch(texts); err != nil {
		return nil, err
	}
	return b.execute(func() ([]vector.Vector, error) {
		return b.next.EmbedBatch(ctx, texts)
	})
}

func (b *Breaker) execute(fn func() ([]vector.Vector, error)) ([]vector.Vector, error) {
	result, err := b.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(BreakerName, "rejected").Inc()
			b.logger.Warn().Err(err).Msg("request rejected")
			return nil, errors.Join(ErrCircuitOpen, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(BreakerName, "failure").Inc()
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(BreakerName, "success").Inc()
	return result, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
