// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

// Package database is the DuckDB record store behind the recommendation
// pipeline.
//
// # Overview
//
// DB implements recommend.Store: events and venues, user interactions,
// preference profiles, and persisted recommendations. All access goes through
// database/sql with the CGO driver github.com/duckdb/duckdb-go/v2.
//
// # Files
//
//   - database.go: connection lifecycle, pool configuration, health
//   - database_schema.go: table creation
//   - events.go: catalog reads/writes, candidate and trending queries, embeddings
//   - interactions.go: interaction upserts, weighted history, counts, active users
//   - profiles.go: preference profile reads and upserts
//   - recommendations.go: row-level recommendation upserts, expiry, cached reads
//   - codec.go: BLOB and JSON column encodings
//   - seed.go: demo catalog for development
//
// # Storage formats
//
// Embeddings are stored as BLOBs of little-endian float64 values (see
// vector.Marshal). String sets (tags, categories, interests) are JSON arrays
// in VARCHAR columns. Timestamps are stored as UTC TIMESTAMP values.
//
// # Upserts
//
// Interactions, profiles, and recommendations are written with
// INSERT ... ON CONFLICT DO UPDATE on their natural keys, so the last write
// wins. Recommendation batches are written row by row: a failing row is
// counted and reported without aborting the rest.
//
// # Thread Safety
//
// DB is safe for concurrent use; database/sql pools connections.
package database
