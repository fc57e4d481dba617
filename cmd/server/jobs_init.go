// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package main

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/tomtom215/eventide/internal/api"
	"github.com/tomtom215/eventide/internal/config"
	"github.com/tomtom215/eventide/internal/eventbus"
	"github.com/tomtom215/eventide/internal/supervisor"
	"github.com/tomtom215/eventide/internal/supervisor/services"
)

// cacheGCInterval is how often the embedding cache value log is compacted.
const cacheGCInterval = 30 * time.Minute

// initEventBus creates the interaction bus and registers the refresh
// handler. Returns nil when interaction-triggered refresh is disabled.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initEventBus(cfg *config.Config, rec *RecommendComponents, logger zerolog.Logger) (*eventbus.Bus, error) {
	if !cfg.Recommend.InteractionRefresh {
		logger.Info().Msg("Interaction-triggered refresh disabled (RECOMMEND_INTERACTION_REFRESH=false)")
		return nil, nil
	}

	bus, err := eventbus.New(eventbus.DefaultConfig(), logger)
	if err != nil {
		return nil, err
	}
	refresh := eventbus.NewRefreshHandler(rec.Profiles, rec.Pipeline, cfg.Recommend.RefreshOnTypes, logger)
	bus.AddInteractionHandler("refresh_recommendations", refresh.Handle)

	logger.Info().
		Strs("types", cfg.Recommend.RefreshOnTypes).
		Msg("Interaction event bus initialized")
	return bus, nil
}

// addJobServices registers the scheduled jobs with the jobs layer.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func addJobServices(tree *supervisor.SupervisorTree, cfg *config.Config, rec *RecommendComponents, emb *EmbeddingComponents, handler *api.Handler, logger zerolog.Logger) {
	jobs := cfg.Jobs

	if jobs.RefreshEnabled {
		tree.AddJobService(services.NewJobService(func(ctx context.Context) error {
			report, err := rec.Pipeline.RefreshActiveUsers(ctx)
			if err != nil {
				return err
			}
			logger.Info().
				Int("processed", report.Processed).
				Int("total", report.Total).
				Int64("deleted", report.Deleted).
				Int("errors", len(report.Errors)).
				Msg("Scheduled recommendation refresh finished")
			return nil
		}, services.JobConfig{
			Name:         "refresh_recommendations",
			Interval:     jobs.RefreshInterval,
			RunOnStartup: jobs.RefreshOnStartup,
			Timeout:      jobs.RefreshTimeout,
		}, logger))
	}

	if jobs.SweepEnabled {
		tree.AddJobService(services.NewJobService(func(ctx context.Context) error {
			deleted, err := rec.Pipeline.SweepExpired(ctx)
			if err != nil {
				return err
			}
			if deleted > 0 {
				logger.Info().Int64("deleted", deleted).Msg("Expired recommendations swept")
			}
			return nil
		}, services.JobConfig{
			Name:     "sweep_expired",
			Interval: jobs.SweepInterval,
		}, logger))
	}

	if jobs.EmbeddingEnabled {
		tree.AddJobService(services.NewJobService(func(ctx context.Context) error {
			report, err := handler.RunEmbeddingBackfill(ctx)
			if err != nil {
				return err
			}
			if report.Requested > 0 {
				logger.Info().
					Int("requested", report.Requested).
					Int("embedded", report.Embedded).
					Msg("Scheduled embedding backfill finished")
			}
			return nil
		}, services.JobConfig{
			Name:         "update_embeddings",
			Interval:     jobs.EmbeddingInterval,
			RunOnStartup: jobs.EmbeddingOnStartup,
			Timeout:      jobs.EmbeddingTimeout,
		}, logger))
	}

	if emb.Cache != nil && !cfg.Cache.InMem {
		tree.AddJobService(services.NewJobService(func(context.Context) error {
			return emb.Cache.RunGC()
		}, services.JobConfig{
			Name:     "cache_gc",
			Interval: cacheGCInterval,
		}, logger))
	}
}
