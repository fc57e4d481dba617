// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/tomtom215/eventide/internal/metrics"
	"github.com/tomtom215/eventide/internal/recommend"
)

// Job names used in metrics and logs.
const (
	JobRefreshRecommendations = "refresh_recommendations"
	JobUpdateEmbeddings       = "update_embeddings"
)

// RefreshRecommendationsJob sweeps expired recommendations and refreshes
// every recently active user.
//
// @Summary Refresh recommendations for active users
// @Description Intended for an external scheduler; authenticate with an admin token or the cron secret
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=recommend.RefreshReport}
// @Failure 401 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Failure 502 {object} models.APIResponse
// @Router /jobs/refresh-recommendations [post]
func (h *Handler) RefreshRecommendationsJob(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	// Jobs outlive the request timeout but still stop when the client goes away.
	report, err := h.deps.Recommender.RefreshActiveUsers(r.Context())
	metrics.RecordJobRun(JobRefreshRecommendations, time.Since(start), err)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, report, start, false)
}

// UpdateEmbeddingsJob embeds published events that lack an embedding.
//
// @Summary Backfill event embeddings
// @Tags Jobs
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse{data=recommend.BackfillReport}
// @Failure 401 {object} models.APIResponse
// @Failure 403 {object} models.APIResponse
// @Failure 502 {object} models.APIResponse
// @Router /jobs/update-embeddings [post]
func (h *Handler) UpdateEmbeddingsJob(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	report, err := h.RunEmbeddingBackfill(r.Context())
	metrics.RecordJobRun(JobUpdateEmbeddings, time.Since(start), err)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondSuccess(w, r, report, start, false)
}

// RunEmbeddingBackfill runs one backfill and drops cached similar-event
// responses when anything was embedded. The scheduled job calls it too.
func (h *Handler) RunEmbeddingBackfill(ctx context.Context) (recommend.BackfillReport, error) {
	report, err := h.deps.Embedder.Run(ctx)
	if report.Embedded > 0 {
		h.InvalidateSimilar()
	}
	return report, err
}
