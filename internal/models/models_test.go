// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package models

import (
	"math"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func int64Ptr(v int64) *int64 { return &v }

func TestEvent_Price(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		price   *int64
		free    bool
		dollars float64
	}{
		{"nil price", nil, true, 0},
		{"zero price", int64Ptr(0), true, 0},
		{"priced", int64Ptr(2550), false, 25.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := Event{Price: tt.price}
			if got := e.IsFree(); got != tt.free {
				t.Errorf("IsFree = %v, want %v", got, tt.free)
			}
			if got := e.PriceDollars(); got != tt.dollars {
				t.Errorf("PriceDollars = %v, want %v", got, tt.dollars)
			}
		})
	}
}

func TestEvent_DurationHours(t *testing.T) {
	t.Parallel()

	start := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	e := Event{StartTime: start}
	if _, ok := e.DurationHours(); ok {
		t.Error("DurationHours should report false without EndTime")
	}

	end := start.Add(150 * time.Minute)
	e.EndTime = &end
	h, ok := e.DurationHours()
	if !ok || h != 2.5 {
		t.Errorf("DurationHours = %v, %v; want 2.5, true", h, ok)
	}
}

func TestEvent_Location(t *testing.T) {
	t.Parallel()

	e := Event{}
	if e.Location() != nil {
		t.Error("Location should be nil without a venue")
	}
	e.Venue = &Venue{ID: "v1", Latitude: 40.7, Longitude: -74}
	loc := e.Location()
	if loc == nil || loc.Latitude != 40.7 || loc.Longitude != -74 {
		t.Errorf("Location = %+v", loc)
	}
}

func TestLocation_Valid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		loc  *Location
		want bool
	}{
		{"nil", nil, false},
		{"origin", &Location{}, true},
		{"nyc", &Location{Latitude: 40.71, Longitude: -74.0}, true},
		{"lat out of range", &Location{Latitude: 91}, false},
		{"lon out of range", &Location{Longitude: -181}, false},
		{"nan", &Location{Latitude: math.NaN()}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.loc.Valid(); got != tt.want {
				t.Errorf("Valid = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInteractionType_Valid(t *testing.T) {
	t.Parallel()

	for _, it := range InteractionTypes {
		if !it.Valid() {
			t.Errorf("%q should be valid", it)
		}
	}
	for _, it := range []InteractionType{"", "liked", "RSVP"} {
		if it.Valid() {
			t.Errorf("%q should be invalid", it)
		}
	}
}

func TestEvent_EmbeddingNotSerialized(t *testing.T) {
	t.Parallel()

	e := Event{ID: "e1", Title: "Jazz Night", Embedding: []float64{0.1, 0.2}}
	data, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if _, ok := m["embedding"]; ok {
		t.Error("embedding must not appear in JSON output")
	}
	if m["title"] != "Jazz Night" {
		t.Errorf("title = %v", m["title"])
	}
}

func TestPreferenceProfile_HasEmbedding(t *testing.T) {
	t.Parallel()

	var nilProfile *PreferenceProfile
	if nilProfile.HasEmbedding() {
		t.Error("nil profile has no embedding")
	}
	p := &PreferenceProfile{UserID: "u1"}
	if p.HasEmbedding() {
		t.Error("empty profile has no embedding")
	}
	p.Embedding = []float64{1}
	if !p.HasEmbedding() {
		t.Error("profile with vector should report HasEmbedding")
	}
}
