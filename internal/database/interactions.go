// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/tomtom215/eventide/internal/models"
	"github.com/tomtom215/eventide/internal/vector"
)

// UpsertInteraction records an interaction. Repeating the same
// (user, event, type) only moves its timestamp forward.
func (db *DB) UpsertInteraction(ctx context.Context, i *models.Interaction) error {
	if !i.Type.Valid() {
		return fmt.Errorf("invalid interaction type %q", i.Type)
	}
	createdAt := i.CreatedAt
	if createdAt.IsZero() {
		createdAt = db.now()
	}

	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO interactions (user_id, event_id, interaction_type, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, event_id, interaction_type) DO UPDATE SET
			created_at = EXCLUDED.created_at`,
		i.UserID, i.EventID, string(i.Type), createdAt.UTC())
	observe("UPSERT", "interactions", start, err)
	if err != nil {
		return fmt.Errorf("upsert interaction: %w", err)
	}
	return nil
}

// RecentInteractions takes the user's newest limit interactions and returns
// those whose event has an embedding, each carrying that embedding. The
// window is applied before filtering, so un-embedded or undecodable rows
// shrink the result rather than pulling in older activity.
func (db *DB) RecentInteractions(ctx context.Context, userID string, limit int) ([]models.WeightedInteraction, error) {
	start := time.Now()
	query := `
		SELECT i.event_id, i.interaction_type, i.created_at, e.embedding
		FROM interactions i
		LEFT JOIN events e ON e.id = i.event_id
		WHERE i.user_id = ?
		ORDER BY i.created_at DESC, i.event_id
		LIMIT ?`

	rows, err := queryAndScan(ctx, db.conn, query, []interface{}{userID, limit},
		func(rows *sql.Rows) (models.WeightedInteraction, error) {
			var (
				wi   models.WeightedInteraction
				typ  string
				blob []byte
			)
			if err := rows.Scan(&wi.EventID, &typ, &wi.CreatedAt, &blob); err != nil {
				return wi, err
			}
			wi.Type = models.InteractionType(typ)
			wi.CreatedAt = wi.CreatedAt.UTC()
			if blob == nil {
				return wi, nil
			}
			v, err := vector.Unmarshal(blob)
			if err != nil {
				db.logger.Warn().Str("event_id", wi.EventID).Err(err).Msg("Corrupt event embedding")
				return wi, nil
			}
			wi.Embedding = v
			return wi, nil
		})
	observe("SELECT", "interactions", start, err)
	if err != nil {
		return nil, fmt.Errorf("recent interactions for %s: %w", userID, err)
	}

	out := rows[:0]
	for _, r := range rows {
		if len(r.Embedding) > 0 {
			out = append(out, r)
		}
	}
	return out, nil
}

// InteractionsForKeywords returns the user's newest saved, rsvp, and
// attended interactions with the category and tags of their events.
func (db *DB) InteractionsForKeywords(ctx context.Context, userID string, limit int) ([]models.KeywordInteraction, error) {
	start := time.Now()
	query := `
		SELECT i.interaction_type, e.category, e.tags
		FROM interactions i
		JOIN events e ON e.id = i.event_id
		WHERE i.user_id = ? AND i.interaction_type IN ('saved', 'rsvp', 'attended')
		ORDER BY i.created_at DESC, i.event_id
		LIMIT ?`

	rows, err := queryAndScan(ctx, db.conn, query, []interface{}{userID, limit},
		func(rows *sql.Rows) (models.KeywordInteraction, error) {
			var (
				ki   models.KeywordInteraction
				typ  string
				tags string
			)
			if err := rows.Scan(&typ, &ki.Category, &tags); err != nil {
				return ki, err
			}
			ki.Type = models.InteractionType(typ)
			decoded, err := decodeStrings(tags)
			if err != nil {
				return ki, err
			}
			ki.Tags = decoded
			return ki, nil
		})
	observe("SELECT", "interactions", start, err)
	if err != nil {
		return nil, fmt.Errorf("keyword interactions for %s: %w", userID, err)
	}
	return rows, nil
}

// InteractionCounts counts the user's interactions per type.
func (db *DB) InteractionCounts(ctx context.Context, userID string) (models.InteractionStats, error) {
	var stats models.InteractionStats
	start := time.Now()
	query := `
		SELECT interaction_type, COUNT(*)
		FROM interactions
		WHERE user_id = ?
		GROUP BY interaction_type`

	type typeCount struct {
		typ   string
		count int
	}
	rows, err := queryAndScan(ctx, db.conn, query, []interface{}{userID},
		func(rows *sql.Rows) (typeCount, error) {
			var tc typeCount
			err := rows.Scan(&tc.typ, &tc.count)
			return tc, err
		})
	observe("SELECT", "interactions", start, err)
	if err != nil {
		return stats, fmt.Errorf("interaction counts for %s: %w", userID, err)
	}

	for _, r := range rows {
		stats.Total += r.count
		switch models.InteractionType(r.typ) {
		case models.InteractionViewed:
			stats.Viewed = r.count
		case models.InteractionSaved:
			stats.Saved = r.count
		case models.InteractionRSVP:
			stats.RSVP = r.count
		case models.InteractionAttended:
			stats.Attended = r.count
		}
	}
	return stats, nil
}

// ActiveUsers returns distinct users with an interaction at or after since.
func (db *DB) ActiveUsers(ctx context.Context, since time.Time, limit int) ([]string, error) {
	start := time.Now()
	query := `
		SELECT user_id
		FROM interactions
		WHERE created_at >= ?
		GROUP BY user_id
		ORDER BY MAX(created_at) DESC, user_id
		LIMIT ?`

	users, err := queryAndScan(ctx, db.conn, query, []interface{}{since.UTC(), limit},
		func(rows *sql.Rows) (string, error) {
			var id string
			err := rows.Scan(&id)
			return id, err
		})
	observe("SELECT", "interactions", start, err)
	if err != nil {
		return nil, fmt.Errorf("active users: %w", err)
	}
	return users, nil
}
