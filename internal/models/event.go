// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package models

import (
	"math"
	"time"
)

// EventStatus is the publication state of an event.
type EventStatus string

const (
	EventStatusDraft     EventStatus = "draft"
	EventStatusPublished EventStatus = "published"
	EventStatusCancelled EventStatus = "cancelled"
)

// Venue is where an event takes place.
type Venue struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Event is a catalog entry.
//
// Price is in cents; nil means free. EndTime is optional, and Embedding is
// nil until the backfill job or an admin request computes it.
type Event struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Tags        []string    `json:"tags"`
	StartTime   time.Time   `json:"start_time"`
	EndTime     *time.Time  `json:"end_time,omitempty"`
	Price       *int64      `json:"price,omitempty"`
	Venue       *Venue      `json:"venue,omitempty"`
	Status      EventStatus `json:"status"`
	Embedding   []float64   `json:"-"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// IsFree reports whether the event has no price.
func (e *Event) IsFree() bool {
	return e.Price == nil || *e.Price == 0
}

// PriceDollars returns the price in whole currency units (0 when free).
func (e *Event) PriceDollars() float64 {
	if e.Price == nil {
		return 0
	}
	return float64(*e.Price) / 100
}

// DurationHours returns the event length in hours when EndTime is set.
func (e *Event) DurationHours() (float64, bool) {
	if e.EndTime == nil {
		return 0, false
	}
	return e.EndTime.Sub(e.StartTime).Hours(), true
}

// Location returns the venue coordinates, or nil when the venue is unknown.
func (e *Event) Location() *Location {
	if e.Venue == nil {
		return nil
	}
	return &Location{Latitude: e.Venue.Latitude, Longitude: e.Venue.Longitude}
}

// HasEmbedding reports whether an embedding has been computed.
func (e *Event) HasEmbedding() bool {
	return len(e.Embedding) > 0
}

// Location is a WGS84 coordinate pair.
type Location struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
}

// Valid reports whether both coordinates are finite and in range.
func (l *Location) Valid() bool {
	if l == nil {
		return false
	}
	if math.IsNaN(l.Latitude) || math.IsNaN(l.Longitude) {
		return false
	}
	return l.Latitude >= -90 && l.Latitude <= 90 && l.Longitude >= -180 && l.Longitude <= 180
}

// InteractionType is the kind of signal a user gave on an event.
type InteractionType string

const (
	InteractionViewed   InteractionType = "viewed"
	InteractionSaved    InteractionType = "saved"
	InteractionRSVP     InteractionType = "rsvp"
	InteractionAttended InteractionType = "attended"
)

// InteractionTypes lists the accepted interaction types, weakest first.
var InteractionTypes = []InteractionType{
	InteractionViewed,
	InteractionSaved,
	InteractionRSVP,
	InteractionAttended,
}

// Valid reports whether t is a known interaction type.
func (t InteractionType) Valid() bool {
	switch t {
	case InteractionViewed, InteractionSaved, InteractionRSVP, InteractionAttended:
		return true
	}
	return false
}

// Interaction records one user signal. Upserted on (UserID, EventID, Type).
type Interaction struct {
	UserID    string          `json:"user_id"`
	EventID   string          `json:"event_id"`
	Type      InteractionType `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
}

// WeightedInteraction is an interaction joined to its event's embedding.
type WeightedInteraction struct {
	EventID   string          `json:"event_id"`
	Type      InteractionType `json:"type"`
	CreatedAt time.Time       `json:"created_at"`
	Embedding []float64       `json:"-"`
}

// KeywordInteraction is an interaction joined to its event's category and
// tags, used to derive implicit keyword preferences.
type KeywordInteraction struct {
	Type     InteractionType `json:"type"`
	Category string          `json:"category"`
	Tags     []string        `json:"tags"`
}

// PreferenceProfile is a user's stored preferences. Embedding is either the
// explicit-preference embedding or the blend derived from interactions,
// whichever was written last.
type PreferenceProfile struct {
	UserID     string    `json:"user_id"`
	Categories []string  `json:"categories"`
	Interests  []string  `json:"interests"`
	Embedding  []float64 `json:"-"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// HasEmbedding reports whether a profile vector is stored.
func (p *PreferenceProfile) HasEmbedding() bool {
	return p != nil && len(p.Embedding) > 0
}

// Recommendation is a persisted score for (UserID, EventID).
type Recommendation struct {
	UserID    string    `json:"user_id"`
	EventID   string    `json:"event_id"`
	Score     float64   `json:"score"`
	Reason    string    `json:"reason"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// StoredRecommendation is a persisted recommendation joined to its event.
type StoredRecommendation struct {
	Recommendation
	Event Event `json:"event"`
}

// BudgetRange is a spending range in whole currency units.
type BudgetRange struct {
	Min float64 `json:"min" validate:"gte=0"`
	Max float64 `json:"max" validate:"gte=0,gtefield=Min"`
}

// TimePreference is a preferred time-of-day bucket.
type TimePreference string

const (
	TimeMorning   TimePreference = "morning"
	TimeAfternoon TimePreference = "afternoon"
	TimeEvening   TimePreference = "evening"
	TimeNight     TimePreference = "night"
)

// DurationPreference is a preferred event length.
type DurationPreference string

const (
	DurationQuick  DurationPreference = "quick"
	DurationMedium DurationPreference = "medium"
	DurationLong   DurationPreference = "long"
)

// ConversationPreferences is the structured preference object a chat front
// end extracts from the user. Empty fields mean "no preference".
type ConversationPreferences struct {
	Interests      []string           `json:"interests,omitempty" validate:"omitempty,max=20,dive,min=1,max=100"`
	Budget         *BudgetRange       `json:"budget,omitempty" validate:"omitempty"`
	TimePreference TimePreference     `json:"time_preference,omitempty" validate:"omitempty,oneof=morning afternoon evening night"`
	Duration       DurationPreference `json:"duration,omitempty" validate:"omitempty,oneof=quick medium long"`
	Categories     []string           `json:"categories,omitempty" validate:"omitempty,max=20,dive,min=1,max=50"`
}

// InteractionStats counts a user's interactions by type.
type InteractionStats struct {
	Total    int `json:"total"`
	Viewed   int `json:"viewed"`
	Saved    int `json:"saved"`
	RSVP     int `json:"rsvp"`
	Attended int `json:"attended"`
}

// ImplicitPreferences are keyword preferences derived from behavior.
type ImplicitPreferences struct {
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
}
