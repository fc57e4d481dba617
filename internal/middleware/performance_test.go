// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

func TestPerformanceMonitor_Window(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(3, 0, zerolog.Nop())
	for i := int64(1); i <= 5; i++ {
		pm.RecordRequest(&RequestMetrics{Route: "/r", Method: http.MethodGet, DurationMS: i * 10})
	}

	recent := pm.GetRecentMetrics(10)
	if len(recent) != 3 {
		t.Fatalf("window = %d, want 3", len(recent))
	}
	if recent[0].DurationMS != 30 || recent[2].DurationMS != 50 {
		t.Errorf("window = %+v, want durations 30..50", recent)
	}
	if got := pm.GetRecentMetrics(-1); len(got) != 0 {
		t.Errorf("GetRecentMetrics(-1) = %d entries", len(got))
	}
}

func TestPerformanceMonitor_Stats(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(100, 0, zerolog.Nop())
	for _, d := range []int64{10, 20, 30, 40} {
		pm.RecordRequest(&RequestMetrics{Route: "/a", Method: http.MethodGet, DurationMS: d, StatusCode: 200})
	}
	pm.RecordRequest(&RequestMetrics{Route: "/b", Method: http.MethodPost, DurationMS: 5, StatusCode: 502})

	stats := pm.GetStats()
	if len(stats) != 2 {
		t.Fatalf("stats = %d endpoints, want 2", len(stats))
	}
	a := stats[0]
	if a.Endpoint != "GET /a" || a.RequestCount != 4 {
		t.Fatalf("busiest = %+v", a)
	}
	if a.AvgDuration != 25 || a.P50Duration != 20 || a.MaxDuration != 40 {
		t.Errorf("stats = %+v", a)
	}
	if stats[1].ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1", stats[1].ErrorCount)
	}
}

func TestPerformanceMonitor_Middleware(t *testing.T) {
	t.Parallel()

	pm := NewPerformanceMonitor(10, time.Millisecond, zerolog.Nop())
	clock := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	pm.now = func() time.Time {
		clock = clock.Add(5 * time.Millisecond)
		return clock
	}

	r := chi.NewRouter()
	r.Use(pm.Middleware)
	r.Get("/events/{id}/similar", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/events/x/similar", http.NoBody))

	recent := pm.GetRecentMetrics(1)
	if len(recent) != 1 {
		t.Fatal("request not recorded")
	}
	got := recent[0]
	if got.Route != "/events/{id}/similar" || got.StatusCode != http.StatusNotFound || got.DurationMS != 5 {
		t.Errorf("recorded %+v", got)
	}
}

func TestPercentile(t *testing.T) {
	t.Parallel()

	if got := percentile(nil, 0.5); got != 0 {
		t.Errorf("percentile(nil) = %d", got)
	}
	if got := percentile([]int64{1, 2, 3, 4, 5}, 0.99); got != 4 {
		t.Errorf("p99 of 5 = %d, want 4", got)
	}
}
