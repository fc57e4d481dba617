// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

/*
database_schema.go - Database Schema Management

Tables:
  - venues: event locations (WGS84 latitude/longitude)
  - events: catalog entries with an optional embedding BLOB
  - interactions: (user, event, type) signals, last write wins
  - preference_profiles: explicit categories/interests and the profile embedding
  - recommendations: (user, event) scores with a shared per-run expiry

Index Strategy:
Only primary keys are declared. DuckDB rejects ON CONFLICT DO UPDATE on
columns covered by a secondary ART index, and every hot table here is
upserted; zone maps cover the range predicates on start_time and
expires_at.
*/

//nolint:staticcheck // File documentation, not package doc
package database

import (
	"context"
	"fmt"
	"time"
)

// schemaContext returns a context with timeout for schema operations.
func schemaContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 60*time.Second)
}

func tableCreationQueries() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS venues (
			id VARCHAR PRIMARY KEY,
			name VARCHAR NOT NULL,
			latitude DOUBLE NOT NULL,
			longitude DOUBLE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			id VARCHAR PRIMARY KEY,
			title VARCHAR NOT NULL,
			description VARCHAR NOT NULL DEFAULT '',
			category VARCHAR NOT NULL,
			tags VARCHAR NOT NULL DEFAULT '[]',
			start_time TIMESTAMP NOT NULL,
			end_time TIMESTAMP,
			price BIGINT,
			venue_id VARCHAR,
			status VARCHAR NOT NULL DEFAULT 'draft',
			embedding BLOB,
			created_at TIMESTAMP NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS interactions (
			user_id VARCHAR NOT NULL,
			event_id VARCHAR NOT NULL,
			interaction_type VARCHAR NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, event_id, interaction_type)
		)`,
		`CREATE TABLE IF NOT EXISTS preference_profiles (
			user_id VARCHAR PRIMARY KEY,
			categories VARCHAR NOT NULL DEFAULT '[]',
			interests VARCHAR NOT NULL DEFAULT '[]',
			embedding BLOB,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS recommendations (
			user_id VARCHAR NOT NULL,
			event_id VARCHAR NOT NULL,
			score DOUBLE NOT NULL,
			reason VARCHAR NOT NULL DEFAULT '',
			expires_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL,
			PRIMARY KEY (user_id, event_id)
		)`,
	}
}

// createTables creates the core database tables.
func (db *DB) createTables() error {
	ctx, cancel := schemaContext()
	defer cancel()

	for _, query := range tableCreationQueries() {
		if _, err := db.conn.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}
