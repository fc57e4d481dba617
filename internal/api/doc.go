// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

/*
Package api provides the HTTP interface of Eventide.

Routing uses Chi with go-chi/cors and go-chi/httprate. Every response uses
the models.APIResponse envelope:

	{"status": "success", "data": {...}, "metadata": {"timestamp": "..."}}

Route groups:

	Public (optional auth):
	  GET  /api/v1/health
	  GET  /api/v1/events/{id}/similar
	  POST /api/v1/search/smart

	Authenticated users:
	  GET  /api/v1/recommendations
	  GET  /api/v1/preferences
	  POST /api/v1/preferences
	  GET  /api/v1/preferences/implicit
	  GET  /api/v1/preferences/stats
	  POST /api/v1/interactions

	Admin:
	  POST /api/v1/embeddings
	  POST /api/v1/embeddings/batch
	  GET  /api/v1/admin/performance

	Admin or cron secret:
	  POST /api/v1/jobs/refresh-recommendations
	  POST /api/v1/jobs/update-embeddings

	Infrastructure:
	  GET  /metrics
	  GET  /swagger/*

Authentication is handled by internal/auth and route access by the Casbin
policy in internal/authz.

Error mapping:

	validation and limit errors    400 VALIDATION_ERROR
	unknown event                  404 NOT_FOUND
	seed event without embedding   409 EVENT_NOT_EMBEDDED
	store or embedding failure     502 UPSTREAM_ERROR
	deadline exceeded              504 TIMEOUT
	partial batch                  207 PARTIAL_FAILURE (status "partial")
	anything else                  500 INTERNAL_ERROR

Similar-event responses are cached in memory for
recommend.similar_cache_ttl and cleared whenever embeddings change.
*/
package api
