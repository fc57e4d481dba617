// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

// Package authz enforces role-based access to API routes using Casbin.
//
// The subject is the role from the authenticated claims (see internal/auth),
// the object is the request path, and the action is derived from the HTTP
// method:
//
//	GET, HEAD, OPTIONS -> read
//	POST, PUT, PATCH   -> write
//	DELETE             -> delete
//
// The default model and policy are embedded (model.conf, policy.csv):
// admins may call every route, the "service" role used by cron triggers may
// only write to /api/v1/jobs/*, and users may reach their recommendations,
// preferences, and interactions. SECURITY_POLICY_PATH replaces the embedded
// policy with a CSV file on disk.
//
// Decisions are cached per (role, path, action) for CacheTTL.
package authz
