// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/eventide/internal/models"
	"github.com/tomtom215/eventide/internal/vector"
)

const eventSelect = `SELECT e.id, e.title, e.description, e.category, e.tags,
	e.start_time, e.end_time, e.price, e.status, e.embedding, e.created_at, e.updated_at,
	v.id, v.name, v.latitude, v.longitude
FROM events e
LEFT JOIN venues v ON v.id = e.venue_id`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (db *DB) scanEvent(row rowScanner) (models.Event, error) {
	var (
		e         models.Event
		tags      string
		endTime   sql.NullTime
		price     sql.NullInt64
		status    string
		embedding []byte
		venueID   sql.NullString
		venueName sql.NullString
		venueLat  sql.NullFloat64
		venueLon  sql.NullFloat64
	)
	if err := row.Scan(&e.ID, &e.Title, &e.Description, &e.Category, &tags,
		&e.StartTime, &endTime, &price, &status, &embedding, &e.CreatedAt, &e.UpdatedAt,
		&venueID, &venueName, &venueLat, &venueLon); err != nil {
		return e, err
	}

	var err error
	if e.Tags, err = decodeStrings(tags); err != nil {
		return e, fmt.Errorf("event %s: %w", e.ID, err)
	}
	e.StartTime = e.StartTime.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	e.EndTime = timePtr(endTime)
	e.Price = int64Ptr(price)
	e.Status = models.EventStatus(status)

	if len(embedding) > 0 {
		v, derr := vector.Unmarshal(embedding)
		if derr != nil {
			// Keep the row; an empty non-nil embedding fails every
			// dimension check downstream and is skipped there.
			db.logger.Warn().Str("event_id", e.ID).Err(derr).Msg("Corrupt event embedding")
			v = vector.Vector{}
		}
		e.Embedding = v
	}

	if venueID.Valid {
		e.Venue = &models.Venue{
			ID:        venueID.String,
			Name:      venueName.String,
			Latitude:  venueLat.Float64,
			Longitude: venueLon.Float64,
		}
	}
	return e, nil
}

func (db *DB) scanEventRows(rows *sql.Rows) (models.Event, error) {
	return db.scanEvent(rows)
}

// GetEvent returns one event by ID, or models.ErrNotFound.
func (db *DB) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	start := time.Now()
	e, err := db.scanEvent(db.conn.QueryRowContext(ctx, eventSelect+" WHERE e.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		observe("SELECT", "events", start, nil)
		return nil, fmt.Errorf("event %s: %w", id, models.ErrNotFound)
	}
	observe("SELECT", "events", start, err)
	if err != nil {
		return nil, fmt.Errorf("get event %s: %w", id, err)
	}
	return &e, nil
}

// GetEvents returns the events with the given IDs. Missing IDs are omitted.
func (db *DB) GetEvents(ctx context.Context, ids []string) ([]models.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	start := time.Now()
	query, args := newQueryBuilder(eventSelect+" WHERE 1=1").
		addInFilter("e.id", ids, false).
		build("ORDER BY e.id")
	events, err := queryAndScan(ctx, db.conn, query, args, db.scanEventRows)
	observe("SELECT", "events", start, err)
	if err != nil {
		return nil, fmt.Errorf("get events: %w", err)
	}
	return events, nil
}

// CandidateEvents returns published events matching filter.
func (db *DB) CandidateEvents(ctx context.Context, filter models.CandidateFilter) ([]models.Event, error) {
	start := time.Now()
	qb := newQueryBuilder(eventSelect + " WHERE e.status = 'published'")
	if !filter.StartsAfter.IsZero() {
		qb.addFilter("e.start_time >= ?", filter.StartsAfter.UTC())
	}
	if filter.RequireEmbedding {
		qb.addFilter("e.embedding IS NOT NULL")
	}
	qb.addInFilter("e.id", filter.ExcludeIDs, true)
	qb.addInFilter("e.category", filter.Categories, false)
	if filter.MaxPriceCents != nil {
		qb.addFilter("(e.price IS NULL OR e.price <= ?)", *filter.MaxPriceCents)
	}
	qb.addLimit(filter.Limit)
	query, args := qb.build("ORDER BY e.start_time, e.id LIMIT ?")

	events, err := queryAndScan(ctx, db.conn, query, args, db.scanEventRows)
	observe("SELECT", "events", start, err)
	if err != nil {
		return nil, fmt.Errorf("candidate events: %w", err)
	}
	return events, nil
}

// TrendingEvents returns the most recently created published events that
// start at or after now.
func (db *DB) TrendingEvents(ctx context.Context, now time.Time, limit int) ([]models.Event, error) {
	start := time.Now()
	query, args := newQueryBuilder(eventSelect+" WHERE e.status = 'published'").
		addFilter("e.start_time >= ?", now.UTC()).
		addLimit(limit).
		build("ORDER BY e.created_at DESC, e.id LIMIT ?")
	events, err := queryAndScan(ctx, db.conn, query, args, db.scanEventRows)
	observe("SELECT", "events", start, err)
	if err != nil {
		return nil, fmt.Errorf("trending events: %w", err)
	}
	return events, nil
}

// EventsWithoutEmbedding returns published events still missing an
// embedding, newest first.
func (db *DB) EventsWithoutEmbedding(ctx context.Context, limit int) ([]models.Event, error) {
	if limit <= 0 || limit > 1000 {
		return nil, fmt.Errorf("limit must be between 1 and 1000, got %d", limit)
	}
	start := time.Now()
	query, args := newQueryBuilder(eventSelect + " WHERE e.status = 'published'").
		addFilter("e.embedding IS NULL").
		addLimit(limit).
		build("ORDER BY e.created_at DESC, e.id LIMIT ?")
	events, err := queryAndScan(ctx, db.conn, query, args, db.scanEventRows)
	observe("SELECT", "events", start, err)
	if err != nil {
		return nil, fmt.Errorf("events without embedding: %w", err)
	}
	return events, nil
}

// SaveEventEmbeddings stores embeddings by event ID in one transaction and
// returns how many events were updated. Unknown IDs are not counted.
func (db *DB) SaveEventEmbeddings(ctx context.Context, embeddings map[string]vector.Vector) (int, error) {
	if len(embeddings) == 0 {
		return 0, nil
	}
	start := time.Now()
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := db.now().UTC()
	updated := 0
	for id, vec := range embeddings {
		if len(vec) == 0 {
			return 0, fmt.Errorf("empty embedding for event %s", id)
		}
		res, err := tx.ExecContext(ctx,
			"UPDATE events SET embedding = ?, updated_at = ? WHERE id = ?",
			vector.Marshal(vec), now, id)
		if err != nil {
			observe("UPDATE", "events", start, err)
			return 0, fmt.Errorf("save embedding for %s: %w", id, err)
		}
		if n, err := res.RowsAffected(); err == nil && n > 0 {
			updated++
		}
	}
	if err := tx.Commit(); err != nil {
		observe("UPDATE", "events", start, err)
		return 0, fmt.Errorf("commit embeddings: %w", err)
	}
	observe("UPDATE", "events", start, nil)
	return updated, nil
}

// UpsertVenue inserts or updates a venue.
func (db *DB) UpsertVenue(ctx context.Context, v *models.Venue) error {
	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO venues (id, name, latitude, longitude) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude`,
		v.ID, v.Name, v.Latitude, v.Longitude)
	observe("UPSERT", "venues", start, err)
	if err != nil {
		return fmt.Errorf("upsert venue %s: %w", v.ID, err)
	}
	return nil
}

// UpsertEvent inserts or updates an event (and its venue, when set).
// CreatedAt is kept from the first insert. Upserting without an embedding
// clears the stored one so the backfill job embeds the new text.
func (db *DB) UpsertEvent(ctx context.Context, e *models.Event) error {
	if e.Venue != nil {
		if err := db.UpsertVenue(ctx, e.Venue); err != nil {
			return err
		}
	}

	tags, err := encodeStrings(e.Tags)
	if err != nil {
		return err
	}
	now := db.now().UTC()
	createdAt := e.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}
	var venueID interface{}
	if e.Venue != nil {
		venueID = e.Venue.ID
	}
	status := e.Status
	if status == "" {
		status = models.EventStatusDraft
	}

	start := time.Now()
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO events (id, title, description, category, tags, start_time, end_time,
			price, venue_id, status, embedding, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			category = EXCLUDED.category,
			tags = EXCLUDED.tags,
			start_time = EXCLUDED.start_time,
			end_time = EXCLUDED.end_time,
			price = EXCLUDED.price,
			venue_id = EXCLUDED.venue_id,
			status = EXCLUDED.status,
			embedding = EXCLUDED.embedding,
			updated_at = EXCLUDED.updated_at`,
		e.ID, e.Title, e.Description, e.Category, tags, e.StartTime.UTC(), nullTime(e.EndTime),
		nullInt64(e.Price), venueID, string(status), encodeEmbedding(e.Embedding), createdAt.UTC(), now)
	observe("UPSERT", "events", start, err)
	if err != nil {
		return fmt.Errorf("upsert event %s: %w", e.ID, err)
	}
	return nil
}
