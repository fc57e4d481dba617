// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package recommend

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tomtom215/eventide/internal/models"
	"github.com/tomtom215/eventide/internal/vector"
)

// neutralScore is used for any factor whose preference is absent.
const neutralScore = 0.5

const reasonSeparator = " • "

// scoreTolerance absorbs float drift in the weighted sum.
const scoreTolerance = 1e-9

// Scorer computes the five-factor match quality of an event against a
// structured preference object. It performs no I/O.
type Scorer struct {
	weights ScoreWeights
	loc     *time.Location
}

// NewScorer creates a Scorer. A nil location means UTC.
func NewScorer(weights ScoreWeights, loc *time.Location) *Scorer {
	if loc == nil {
		loc = time.UTC
	}
	return &Scorer{weights: weights, loc: loc}
}

// ScoreInput is what an event is scored against.
type ScoreInput struct {
	Preferences models.ConversationPreferences
	// Interest is the embedding of the joined interest terms, or nil.
	Interest vector.Vector
	// Location is the user's position, or nil.
	Location *models.Location
}

// Score returns the weighted score, breakdown, and reasoning for one event.
// An error from comparing embeddings means the event cannot be scored;
// ErrScoreOutOfRange means the weights are broken.
func (s *Scorer) Score(e *models.Event, in *ScoreInput) (ScoredEvent, error) {
	interest, err := s.InterestScore(e, in.Preferences.Interests, in.Interest)
	if err != nil {
		return ScoredEvent{}, err
	}

	b := models.ScoreBreakdown{
		Interest: interest,
		Time:     s.TimeScore(e.StartTime, in.Preferences.TimePreference),
		Duration: DurationScore(e, in.Preferences.Duration),
		Price:    PriceScore(e, in.Preferences.Budget),
		Distance: DistanceScore(in.Location, e.Location()),
	}
	total := s.weights.Combine(b)
	if math.IsNaN(total) || total < -scoreTolerance || total > 1+scoreTolerance {
		return ScoredEvent{}, fmt.Errorf("event %s: total %v: %w", e.ID, total, ErrScoreOutOfRange)
	}
	total = clamp01(total)

	return ScoredEvent{
		Event:     *e,
		Score:     total,
		Reason:    Reasoning(b),
		Breakdown: &b,
	}, nil
}

// InterestScore compares the interest embedding with the event embedding
// when both exist, flooring negative similarity at 0. Otherwise it returns
// the share of interest terms found in the event's title, description, and
// category.
func (s *Scorer) InterestScore(e *models.Event, interests []string, interest vector.Vector) (float64, error) {
	terms := cleanTerms(interests)
	if len(terms) == 0 {
		return neutralScore, nil
	}

	if len(interest) > 0 && e.HasEmbedding() {
		sim, err := vector.Cosine(interest, e.Embedding)
		if err != nil {
			return 0, fmt.Errorf("event %s: %w", e.ID, err)
		}
		return math.Max(0, sim), nil
	}

	text := strings.ToLower(e.Title + " " + e.Description + " " + e.Category)
	matched := 0
	for _, t := range terms {
		if strings.Contains(text, strings.ToLower(t)) {
			matched++
		}
	}
	return math.Min(float64(matched)/float64(len(terms)), 1.0), nil
}

// TimeScore is 1.0 when the event starts inside the preferred time-of-day
// bucket and 0.3 otherwise. Night wraps midnight.
func (s *Scorer) TimeScore(start time.Time, pref models.TimePreference) float64 {
	if pref == "" {
		return neutralScore
	}
	hour := start.In(s.loc).Hour()

	var inside bool
	switch pref {
	case models.TimeMorning:
		inside = hour >= 6 && hour < 12
	case models.TimeAfternoon:
		inside = hour >= 12 && hour < 17
	case models.TimeEvening:
		inside = hour >= 17 && hour < 21
	case models.TimeNight:
		inside = hour >= 21 || hour < 6
	default:
		return neutralScore
	}
	if inside {
		return 1.0
	}
	return 0.3
}

// targetDurationHours maps a duration preference to its ideal length.
var targetDurationHours = map[models.DurationPreference]float64{
	models.DurationQuick:  1.5,
	models.DurationMedium: 3,
	models.DurationLong:   5,
}

// DurationScore decays linearly from 1.0 at the target length to 0 at four
// hours away. Events without an end time score neutral.
func DurationScore(e *models.Event, pref models.DurationPreference) float64 {
	target, ok := targetDurationHours[pref]
	if !ok {
		return neutralScore
	}
	hours, ok := e.DurationHours()
	if !ok {
		return neutralScore
	}
	return math.Max(0, 1-math.Abs(hours-target)/4)
}

// PriceScore rates the event price against an optional budget in whole
// currency units.
func PriceScore(e *models.Event, budget *models.BudgetRange) float64 {
	if e.IsFree() {
		return 1.0
	}
	if budget == nil {
		return 0.7
	}

	price := e.PriceDollars()
	switch {
	case price >= budget.Min && price <= budget.Max:
		return 1.0
	case price < budget.Min:
		return 0.8
	case budget.Max <= 0:
		return 0
	default:
		overage := price - budget.Max
		return math.Max(0, 1-overage/budget.Max)
	}
}

// DistanceScore bands the great-circle distance between user and venue.
func DistanceScore(user, venue *models.Location) float64 {
	if user == nil || venue == nil {
		return neutralScore
	}
	miles := HaversineMiles(user.Latitude, user.Longitude, venue.Latitude, venue.Longitude)
	switch {
	case miles <= 5:
		return 1.0
	case miles <= 10:
		return 0.8
	case miles <= 20:
		return 0.6
	case miles <= 30:
		return 0.4
	default:
		return 0.2
	}
}

// Reasoning turns a breakdown into a short explanation.
func Reasoning(b models.ScoreBreakdown) string {
	reasons := make([]string, 0, 4)
	if b.Interest > 0.7 {
		reasons = append(reasons, "Perfect match for your interests")
	}
	if b.Time > 0.8 {
		reasons = append(reasons, "Great timing for you")
	}
	if b.Price > 0.8 {
		reasons = append(reasons, "Within your budget")
	}
	if b.Distance > 0.7 {
		reasons = append(reasons, "Conveniently located")
	}
	if len(reasons) == 0 {
		return "Good overall match"
	}
	return strings.Join(reasons, reasonSeparator)
}
