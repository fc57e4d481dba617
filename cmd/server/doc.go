// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

/*
Package main is the entry point for the Eventide server.

Eventide ranks upcoming events for each user by comparing a preference
embedding against event embeddings, then adjusting for category, price,
distance, and time of day. It stores ranked lists in DuckDB and serves
them over a REST API.

# Application Architecture

The server runs under a Suture v4 supervisor tree:

	RootSupervisor ("eventide")
	├── JobsSupervisor ("jobs-layer")
	│   ├── refresh_recommendations
	│   ├── sweep_expired
	│   ├── update_embeddings
	│   └── cache_gc (persistent embedding cache only)
	├── MessagingSupervisor ("messaging-layer")
	│   └── event-bus (RECOMMEND_INTERACTION_REFRESH=true)
	└── APISupervisor ("api-layer")
	    └── http-server

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Database: DuckDB, optionally seeded with demo data
 4. Embedding: provider client, circuit breaker, BadgerDB text cache
 5. Recommendation: profile builder, pipeline, searcher, backfiller
 6. Event bus: Watermill in-process bus for interaction-triggered refresh
 7. Authentication: JWT or no-auth mode, cron secret, Casbin policy
 8. Supervisor Tree and HTTP Server

# Configuration

Priority: Environment variables > Config file (CONFIG_PATH) > Defaults

Core environment variables:

	# Server
	HTTP_PORT=8080
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# Storage
	DUCKDB_PATH=/data/eventide.duckdb
	SEED_DEMO_DATA=false         # development only

	# Embedding provider (OpenAI-compatible)
	EMBEDDING_API_KEY=<key>      # or OPENAI_API_KEY
	EMBEDDING_MODEL=text-embedding-3-small
	EMBEDDING_DIMENSIONS=1536
	EMBEDDING_CACHE_ENABLED=true

	# Authentication
	AUTH_MODE=jwt                # jwt or none
	JWT_SECRET=<32+ chars>
	CRON_SECRET=<secret>         # bearer token for /api/v1/jobs/*

	# Catalog
	EVENT_CATEGORIES=music,food,art,sports,tech

# Signal Handling

On SIGINT or SIGTERM the root supervisor is canceled. The HTTP server
drains in-flight requests within the shutdown timeout, running jobs see
their context canceled, and the event bus router closes. Services that
fail to stop in time are reported before exit.

# Usage Examples

Development (no auth, demo catalog):

	export AUTH_MODE=none SEED_DEMO_DATA=true
	export EMBEDDING_API_KEY=sk-...
	go run ./cmd/server
	curl -H 'X-User-ID: demo-user-1' localhost:8080/api/v1/recommendations

Production:

	export ENVIRONMENT=production
	export JWT_SECRET=$(openssl rand -base64 32)
	export CRON_SECRET=$(openssl rand -hex 24)
	export EMBEDDING_API_KEY=sk-...
	./eventide

# API Documentation

Swagger documentation is served at /swagger/index.html and Prometheus
metrics at /metrics.
*/
package main
