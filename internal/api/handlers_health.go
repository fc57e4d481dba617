// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/eventide/internal/middleware"
	"github.com/tomtom215/eventide/internal/models"
)

const healthPingTimeout = 2 * time.Second

// Health reports service health. A failed database ping answers 503.
//
// @Summary Get service health
// @Description Database reachability, embedding circuit breaker state, and uptime
// @Tags Core
// @Produce json
// @Success 200 {object} models.APIResponse{data=models.HealthResponse}
// @Failure 503 {object} models.APIResponse{data=models.HealthResponse}
// @Router /health [get]
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	resp := &models.HealthResponse{
		Status:    "healthy",
		Version:   h.cfg.Version,
		Database:  true,
		Uptime:    time.Since(h.startTime).Seconds(),
		CheckedAt: time.Now().UTC(),
	}
	if h.deps.Breaker != nil {
		resp.Breaker = h.deps.Breaker.State()
		if resp.Breaker == "open" {
			resp.Status = "degraded"
		}
	}

	if h.deps.Health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()
		if err := h.deps.Health.Ping(ctx); err != nil {
			h.logger.Warn().Err(err).Msg("Health check: database unreachable")
			resp.Database = false
			resp.Status = "unhealthy"
			respondJSON(w, http.StatusServiceUnavailable, &models.APIResponse{
				Status: statusError,
				Data:   resp,
				Metadata: models.Metadata{
					Timestamp: resp.CheckedAt,
				},
				Error: &models.APIError{Code: "SERVICE_UNAVAILABLE", Message: "database unreachable"},
			})
			return
		}
	}
	respondSuccess(w, r, resp, start, false)
}

// PerformanceStats returns per-route latency statistics.
//
// @Summary Get request performance statistics
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=[]middleware.EndpointStats}
// @Router /admin/performance [get]
func (h *Handler) PerformanceStats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	stats := []middleware.EndpointStats{}
	if h.deps.Perf != nil {
		stats = h.deps.Perf.GetStats()
	}
	respondSuccess(w, r, stats, start, false)
}
