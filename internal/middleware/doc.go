// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

/*
Package middleware provides HTTP middleware shared by the API router.

Key Components:

  - RequestID: reuses or generates an X-Request-ID and stores it in the
    request context for logging.Ctx
  - PrometheusMetrics: request counts, latency, and in-flight gauge labelled
    by chi route pattern rather than raw path
  - PerformanceMonitor: sliding window of request latencies with per-route
    percentiles, served on the admin performance endpoint

Middleware Stack:

The API router installs them in this order:

	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(perfMon.Middleware)

Authentication and authorization middleware live in internal/auth and
internal/authz and are applied per route group.
*/
package middleware
