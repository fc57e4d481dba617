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
)

const upsertRecommendationSQL = `
	INSERT INTO recommendations (user_id, event_id, score, reason, expires_at, created_at)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT (user_id, event_id) DO UPDATE SET
		score = EXCLUDED.score,
		reason = EXCLUDED.reason,
		expires_at = EXCLUDED.expires_at,
		created_at = EXCLUDED.created_at`

// UpsertRecommendations writes each record independently and returns how
// many succeeded. Row failures are joined into the returned error; earlier
// successes are not rolled back.
func (db *DB) UpsertRecommendations(ctx context.Context, recs []models.Recommendation) (int, error) {
	start := time.Now()
	now := db.now().UTC()
	succeeded := 0
	var errs []error

	for i := range recs {
		r := &recs[i]
		if r.Score < 0 || r.Score > 1 {
			errs = append(errs, fmt.Errorf("recommendation %s/%s: score %v outside [0,1]", r.UserID, r.EventID, r.Score))
			continue
		}
		createdAt := r.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}
		if _, err := db.conn.ExecContext(ctx, upsertRecommendationSQL,
			r.UserID, r.EventID, r.Score, r.Reason, r.ExpiresAt.UTC(), createdAt.UTC()); err != nil {
			errs = append(errs, fmt.Errorf("recommendation %s/%s: %w", r.UserID, r.EventID, err))
			continue
		}
		succeeded++
	}

	err := errors.Join(errs...)
	observe("UPSERT", "recommendations", start, err)
	return succeeded, err
}

// DeleteExpiredRecommendations removes rows with expires_at before now.
func (db *DB) DeleteExpiredRecommendations(ctx context.Context, now time.Time) (int64, error) {
	start := time.Now()
	res, err := db.conn.ExecContext(ctx, "DELETE FROM recommendations WHERE expires_at < ?", now.UTC())
	observe("DELETE", "recommendations", start, err)
	if err != nil {
		return 0, fmt.Errorf("delete expired recommendations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired recommendations: %w", err)
	}
	return n, nil
}

// ListRecommendations returns the user's unexpired recommendations with
// their events, best score first.
func (db *DB) ListRecommendations(ctx context.Context, userID string, now time.Time, limit int) ([]models.StoredRecommendation, error) {
	if limit <= 0 || limit > 100 {
		return nil, fmt.Errorf("limit must be between 1 and 100, got %d", limit)
	}
	start := time.Now()
	query := `SELECT r.user_id, r.event_id, r.score, r.reason, r.expires_at, r.created_at,
	e.id, e.title, e.description, e.category, e.tags,
	e.start_time, e.end_time, e.price, e.status, e.embedding, e.created_at, e.updated_at,
	v.id, v.name, v.latitude, v.longitude
FROM recommendations r
JOIN events e ON e.id = r.event_id
LEFT JOIN venues v ON v.id = e.venue_id
WHERE r.user_id = ? AND r.expires_at > ?
ORDER BY r.score DESC, r.event_id
LIMIT ?`

	recs, err := queryAndScan(ctx, db.conn, query, []interface{}{userID, now.UTC(), limit},
		func(rows *sql.Rows) (models.StoredRecommendation, error) {
			var sr models.StoredRecommendation
			prefix := &recommendationPrefix{rows: rows, rec: &sr.Recommendation}
			ev, err := db.scanEvent(prefix)
			if err != nil {
				return sr, err
			}
			sr.Event = ev
			sr.ExpiresAt = sr.ExpiresAt.UTC()
			sr.CreatedAt = sr.CreatedAt.UTC()
			return sr, nil
		})
	observe("SELECT", "recommendations", start, err)
	if err != nil {
		return nil, fmt.Errorf("list recommendations for %s: %w", userID, err)
	}
	return recs, nil
}

// recommendationPrefix lets scanEvent read a row that starts with the
// recommendation columns.
type recommendationPrefix struct {
	rows *sql.Rows
	rec  *models.Recommendation
}

func (p *recommendationPrefix) Scan(dest ...interface{}) error {
	all := append([]interface{}{
		&p.rec.UserID, &p.rec.EventID, &p.rec.Score, &p.rec.Reason, &p.rec.ExpiresAt, &p.rec.CreatedAt,
	}, dest...)
	return p.rows.Scan(all...)
}
