// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package recommend

import "github.com/tomtom215/eventide/internal/models"

// ScoreWeights are the factor weights of the five-factor event score.
type ScoreWeights struct {
	Interest float64
	Time     float64
	Duration float64
	Price    float64
	Distance float64
}

// DefaultScoreWeights returns the production factor weights. They sum to 1.
func DefaultScoreWeights() ScoreWeights {
	return ScoreWeights{
		Interest: 0.35,
		Time:     0.20,
		Duration: 0.15,
		Price:    0.15,
		Distance: 0.15,
	}
}

// Sum returns the total weight.
func (w ScoreWeights) Sum() float64 {
	return w.Interest + w.Time + w.Duration + w.Price + w.Distance
}

// Combine returns the weighted sum of a breakdown.
func (w ScoreWeights) Combine(b models.ScoreBreakdown) float64 {
	return b.Interest*w.Interest +
		b.Time*w.Time +
		b.Duration*w.Duration +
		b.Price*w.Price +
		b.Distance*w.Distance
}

// InteractionWeight returns the profile blending weight of an interaction.
// Stronger commitment means more weight.
func InteractionWeight(t models.InteractionType) float64 {
	switch t {
	case models.InteractionAttended:
		return 1.0
	case models.InteractionRSVP:
		return 0.8
	case models.InteractionSaved:
		return 0.6
	case models.InteractionViewed:
		return 0.2
	default:
		return 0.1
	}
}

// keywordWeight returns the implicit keyword vote of an interaction.
func keywordWeight(t models.InteractionType) int {
	switch t {
	case models.InteractionAttended:
		return 3
	case models.InteractionRSVP:
		return 2
	default:
		return 1
	}
}
