// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/tomtom215/eventide/internal/auth"
	"github.com/tomtom215/eventide/internal/authz"
	"github.com/tomtom215/eventide/internal/middleware"
)

// Router wires handlers and middleware into a Chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	auth          *auth.Middleware
	authz         *authz.Middleware
	perf          *middleware.PerformanceMonitor
}

// NewRouter creates a Router. perf may be nil.
func NewRouter(handler *Handler, chiMw *ChiMiddleware, authMw *auth.Middleware, authzMw *authz.Middleware, perf *middleware.PerformanceMonitor) *Router {
	return &Router{
		handler:       handler,
		chiMiddleware: chiMw,
		auth:          authMw,
		authz:         authzMw,
		perf:          perf,
	}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())
	r.Use(middleware.PrometheusMetrics)
	if router.perf != nil {
		r.Use(router.perf.Middleware)
	}
	r.Use(chimiddleware.Compress(5, "application/json"))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		WriteError(w, req, http.StatusNotFound, ErrCodeNotFoundRoute, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		WriteError(w, req, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())

		r.Get("/health", router.handler.Health)

		// Public endpoints; credentials are optional but must be valid when sent.
		r.Group(func(r chi.Router) {
			r.Use(router.auth.Optional)
			r.Get("/events/{id}/similar", router.handler.SimilarEvents)
			r.Post("/search/smart", router.handler.SmartSearch)
		})

		// User data.
		r.Group(func(r chi.Router) {
			r.Use(router.auth.Authenticate)
			r.Use(router.authz.AuthorizeRequest)

			r.Get("/recommendations", router.handler.GetRecommendations)
			r.Get("/preferences", router.handler.GetPreferences)
			r.Post("/preferences", router.handler.SavePreferences)
			r.Get("/preferences/implicit", router.handler.ImplicitPreferences)
			r.Get("/preferences/stats", router.handler.PreferenceStats)
			r.Post("/interactions", router.handler.RecordInteraction)
			r.Get("/admin/performance", router.handler.PerformanceStats)
		})

		// Provider-bound work: embeddings and scheduled jobs.
		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimitStrict())
			r.Use(router.auth.Authenticate)
			r.Use(router.authz.AuthorizeRequest)

			r.Post("/embeddings", router.handler.EmbedEvent)
			r.Post("/embeddings/batch", router.handler.EmbedBatch)
			r.Post("/jobs/refresh-recommendations", router.handler.RefreshRecommendationsJob)
			r.Post("/jobs/update-embeddings", router.handler.UpdateEmbeddingsJob)
		})
	})

	return r
}
