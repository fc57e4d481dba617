// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

// Package metrics exposes the Prometheus instrumentation for Eventide:
// DuckDB query latency, HTTP traffic, pipeline runs, scoring, the embedding
// provider and its circuit breaker, and background jobs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Database

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventide_duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventide_duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation", "table"},
	)

	// HTTP API

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventide_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventide_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventide_api_active_requests",
			Help: "Current number of in-flight API requests",
		},
	)

	// Recommendation pipeline

	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventide_pipeline_runs_total",
			Help: "Recommendation pipeline runs by mode and outcome",
		},
		[]string{"mode", "outcome"}, // mode: personalized, similar, search, refresh; outcome: ok, fallback, error
	)

	PipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventide_pipeline_duration_seconds",
			Help:    "Recommendation pipeline latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"mode"},
	)

	CandidatesScored = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventide_pipeline_candidates",
			Help:    "Number of candidate events scored per run",
			Buckets: []float64{0, 10, 25, 50, 100, 200, 500},
		},
		[]string{"mode"},
	)

	CandidatesSkipped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventide_pipeline_candidates_skipped_total",
			Help: "Candidates dropped because their embedding could not be scored",
		},
		[]string{"reason"},
	)

	CosineClamped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventide_cosine_clamped_total",
			Help: "Cosine similarities clamped back into [-1, 1] after float drift",
		},
	)

	ProfilesDerived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventide_profiles_derived_total",
			Help: "Preference profile vectors written, by source",
		},
		[]string{"source"}, // implicit, explicit
	)

	RecommendationsPersisted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventide_recommendations_persisted_total",
			Help: "Recommendation rows upserted, by result",
		},
		[]string{"result"}, // success, failure
	)

	RecommendationsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "eventide_recommendations_expired_total",
			Help: "Recommendation rows removed by the expiry sweep",
		},
	)

	// Embedding provider

	EmbeddingRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventide_embedding_requests_total",
			Help: "Embedding provider calls by kind and outcome",
		},
		[]string{"kind", "outcome"}, // kind: single, batch
	)

	EmbeddingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventide_embedding_duration_seconds",
			Help:    "Embedding provider call latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"kind"},
	)

	EmbeddingCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventide_embedding_cache_lookups_total",
			Help: "Embedding cache lookups by result",
		},
		[]string{"result"}, // hit, miss, error
	)

	// Circuit breaker

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eventide_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventide_circuit_breaker_requests_total",
			Help: "Requests passing through a circuit breaker by result",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventide_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	// Background jobs

	JobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventide_job_runs_total",
			Help: "Background job runs by job and outcome",
		},
		[]string{"job", "outcome"},
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventide_job_duration_seconds",
			Help:    "Background job run duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 60, 300, 900, 1800},
		},
		[]string{"job"},
	)

	JobLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "eventide_job_last_success_timestamp",
			Help: "Unix time of the last successful run per job",
		},
		[]string{"job"},
	)

	// Auth

	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventide_auth_attempts_total",
			Help: "Authentication attempts by result and role or failure reason",
		},
		[]string{"result", "detail"},
	)

	AuthzDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventide_authz_decisions_total",
			Help: "Authorization decisions by role and outcome",
		},
		[]string{"role", "decision"}, // allow, deny, error
	)

	// Event bus

	BusMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventide_bus_messages_total",
			Help: "Event bus messages by topic and direction",
		},
		[]string{"topic", "direction"}, // published, handled, failed
	)
)

// RecordDBQuery records a database query metric.
func RecordDBQuery(operation, table string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation, table).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordPipelineRun records a pipeline run outcome, latency, and candidate count.
func RecordPipelineRun(mode, outcome string, duration time.Duration, candidates int) {
	PipelineRuns.WithLabelValues(mode, outcome).Inc()
	PipelineDuration.WithLabelValues(mode).Observe(duration.Seconds())
	CandidatesScored.WithLabelValues(mode).Observe(float64(candidates))
}

// RecordPersisted records an upsert batch split into successes and failures.
func RecordPersisted(succeeded, failed int) {
	if succeeded > 0 {
		RecommendationsPersisted.WithLabelValues("success").Add(float64(succeeded))
	}
	if failed > 0 {
		RecommendationsPersisted.WithLabelValues("failure").Add(float64(failed))
	}
}

// RecordEmbeddingCall records a call to the embedding provider.
func RecordEmbeddingCall(kind string, duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	EmbeddingRequests.WithLabelValues(kind, outcome).Inc()
	EmbeddingDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordAuthAttempt records an authentication outcome. detail is the role
// on success and the failure reason otherwise.
func RecordAuthAttempt(result, detail string) {
	AuthAttempts.WithLabelValues(result, detail).Inc()
}

// RecordJobRun records a background job outcome.
func RecordJobRun(job string, duration time.Duration, err error) {
	JobDuration.WithLabelValues(job).Observe(duration.Seconds())
	if err != nil {
		JobRuns.WithLabelValues(job, "error").Inc()
		return
	}
	JobRuns.WithLabelValues(job, "success").Inc()
	JobLastSuccess.WithLabelValues(job).Set(float64(time.Now().Unix()))
}
