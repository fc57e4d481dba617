// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/tomtom215/eventide/docs" // Import generated swagger docs
	"github.com/tomtom215/eventide/internal/api"
	"github.com/tomtom215/eventide/internal/auth"
	"github.com/tomtom215/eventide/internal/authz"
	"github.com/tomtom215/eventide/internal/config"
	"github.com/tomtom215/eventide/internal/database"
	"github.com/tomtom215/eventide/internal/logging"
	"github.com/tomtom215/eventide/internal/middleware"
	"github.com/tomtom215/eventide/internal/supervisor"
	"github.com/tomtom215/eventide/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Str("db_path", cfg.Database.Path).
		Str("auth_mode", cfg.Security.AuthMode).
		Str("embedding_model", cfg.Embedding.Model).
		Int("dimensions", cfg.Embedding.Dimensions).
		Msg("Starting Eventide with supervisor tree")

	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()
	logging.Info().Msg("Database initialized successfully")

	if cfg.Database.SeedDemoData {
		logging.Info().Msg("Demo data seeding enabled (SEED_DEMO_DATA=true)")
		if err := db.SeedDemoData(context.Background()); err != nil {
			if closeErr := db.Close(); closeErr != nil {
				logging.Error().Err(closeErr).Msg("Error closing database")
			}
			logging.Fatal().Err(err).Msg("Failed to seed demo data")
		}
	}

	emb, err := initEmbedding(cfg, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize embedding provider")
	}
	defer func() {
		if err := emb.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing embedding cache")
		}
	}()

	rec, err := initRecommend(cfg, db, emb.Embedder, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize recommendation pipeline")
	}

	bus, err := initEventBus(cfg, rec, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize event bus")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Bridges zerolog to slog for sutureslog
	slogLogger := logging.NewSlogLogger()

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	tree, err := supervisor.NewSupervisorTree(slogLogger, treeCfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	var jwtManager *auth.JWTManager
	switch cfg.Security.AuthMode {
	case "jwt":
		jwtManager, err = auth.NewJWTManager(&cfg.Security)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
		}
		logging.Info().Str("issuer", cfg.Security.JWTIssuer).Msg("JWT authentication enabled")
	case "none":
		logging.Warn().Msg("============================================================")
		logging.Warn().Msg("  SECURITY WARNING: Authentication is DISABLED (AUTH_MODE=none)")
		logging.Warn().Msg("  ")
		logging.Warn().Msg("  Requests act as the X-User-ID user with the admin role.")
		logging.Warn().Msg("  Use this mode for local development only.")
		logging.Warn().Msg("============================================================")
	}
	if cfg.Security.CronSecret == "" {
		logging.Warn().Msg("CRON_SECRET is not set; job endpoints require an admin token")
	}
	if cfg.Security.RateLimitDisabled {
		logging.Warn().Msg("Rate limiting is DISABLED (DISABLE_RATE_LIMIT=true)")
	}

	enforcer, err := authz.NewEnforcer(&authz.EnforcerConfig{
		PolicyPath: cfg.Security.PolicyPath,
		CacheTTL:   5 * time.Minute,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize authorization enforcer")
	}
	defer enforcer.Close()

	authMw := auth.NewMiddleware(jwtManager, &cfg.Security, api.WriteError, logger)
	authzMw := authz.NewMiddleware(enforcer, api.WriteError, logger)
	chiMw := api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security))
	perf := middleware.NewPerformanceMonitor(1000, middleware.DefaultSlowThreshold, logger)

	deps := api.Dependencies{
		Recommender:  rec.Pipeline,
		Searcher:     rec.Searcher,
		Profiles:     rec.Profiles,
		Embedder:     rec.Backfiller,
		Interactions: db,
		Health:       db,
		Breaker:      emb.Breaker,
		Perf:         perf,
	}
	if bus != nil {
		deps.Publisher = bus
	}
	handler := api.NewHandler(deps, api.HandlerConfigFromApp(cfg, version), logger)
	defer handler.Close()

	router := api.NewRouter(handler, chiMw, authMw, authzMw, perf)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.SetupChi(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	addJobServices(tree, cfg, rec, emb, handler, logger)

	if bus != nil {
		tree.AddMessagingService(services.NewEventBusService(bus))
		logging.Info().Msg("Event bus added to supervisor tree")
	}

	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout, logger))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	for layer, names := range tree.Services() {
		logging.Info().Str("layer", string(layer)).Strs("services", names).Msg("Supervisor layer configured")
	}

	// === START SUPERVISOR TREE ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// errCh receives exactly one value when the root supervisor returns.
	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
