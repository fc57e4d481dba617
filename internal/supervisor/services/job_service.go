// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/eventide/internal/metrics"
)

// JobFunc performs one run of a scheduled job.
type JobFunc func(ctx context.Context) error

// JobConfig schedules a JobService.
type JobConfig struct {
	// Name labels logs and the eventide_job_runs_total metric.
	Name string

	// Interval between runs. Default: 1h
	Interval time.Duration

	// RunOnStartup runs the job once before the first tick.
	RunOnStartup bool

	// Timeout bounds a single run. Zero means no bound beyond the
	// service context.
	Timeout time.Duration
}

// JobService runs a JobFunc on a fixed interval under suture. A failed run
// is logged and retried on the next tick; it never crashes the service.
// Runs never overlap.
type JobService struct {
	run    JobFunc
	config JobConfig
	logger zerolog.Logger
}

// NewJobService creates a scheduled job.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewJobService(run JobFunc, cfg JobConfig, logger zerolog.Logger) *JobService {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Hour
	}
	if cfg.Name == "" {
		cfg.Name = "job"
	}
	return &JobService{
		run:    run,
		config: cfg,
		logger: logger.With().Str("service", cfg.Name).Logger(),
	}
}

// Serve implements suture.Service.
func (s *JobService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("run_on_startup", s.config.RunOnStartup).
		Dur("interval", s.config.Interval).
		Msg("Job scheduler starting")

	if s.config.RunOnStartup {
		_ = s.RunOnce(ctx)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Job scheduler stopping")
			return ctx.Err()
		case <-ticker.C:
			_ = s.RunOnce(ctx)
		}
	}
}

// RunOnce performs one run, records it, and returns its error.
func (s *JobService) RunOnce(ctx context.Context) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	runCtx := ctx
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	err := s.run(runCtx)
	elapsed := time.Since(start)
	metrics.RecordJobRun(s.config.Name, elapsed, err)

	if err != nil {
		s.logger.Warn().Err(err).Dur("duration", elapsed).Msg("Scheduled job failed")
		return err
	}
	s.logger.Info().Dur("duration", elapsed).Msg("Scheduled job complete")
	return nil
}

// String identifies the service in suture logs.
func (s *JobService) String() string {
	return s.config.Name
}
