// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

/*
Package supervisor runs Eventide's long-lived services under a suture v4
tree.

	RootSupervisor ("eventide")
	├── JobsSupervisor ("jobs-layer")
	│   ├── refresh_recommendations (JOBS_REFRESH_ENABLED)
	│   ├── sweep_expired (JOBS_SWEEP_ENABLED)
	│   └── update_embeddings (JOBS_EMBEDDING_ENABLED)
	├── MessagingSupervisor ("messaging-layer")
	│   └── event-bus (RECOMMEND_INTERACTION_REFRESH)
	└── APISupervisor ("api-layer")
	    └── http-server

Crashed services restart with backoff inside their own layer. Supervisor
events are logged through sutureslog, which writes to zerolog via the
logging package's slog bridge.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))
	tree.AddJobService(services.NewJobService(run, services.JobConfig{Name: "sweep_expired", Interval: time.Hour}, logger))
	return tree.Serve(ctx)
*/
package supervisor
