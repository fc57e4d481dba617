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

// GetProfile returns the stored preference profile, or models.ErrNotFound.
func (db *DB) GetProfile(ctx context.Context, userID string) (*models.PreferenceProfile, error) {
	var (
		p          models.PreferenceProfile
		categories string
		interests  string
		blob       []byte
	)
	start := time.Now()
	err := db.conn.QueryRowContext(ctx, `
		SELECT user_id, categories, interests, embedding, updated_at
		FROM preference_profiles
		WHERE user_id = ?`, userID).
		Scan(&p.UserID, &categories, &interests, &blob, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		observe("SELECT", "preference_profiles", start, nil)
		return nil, fmt.Errorf("profile %s: %w", userID, models.ErrNotFound)
	}
	observe("SELECT", "preference_profiles", start, err)
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", userID, err)
	}

	if p.Categories, err = decodeStrings(categories); err != nil {
		return nil, err
	}
	if p.Interests, err = decodeStrings(interests); err != nil {
		return nil, err
	}
	if p.Embedding, err = vector.Unmarshal(blob); err != nil {
		// A corrupt profile vector is rebuilt from history on next resolve.
		db.logger.Warn().Str("user_id", userID).Err(err).Msg("Corrupt profile embedding")
		p.Embedding = nil
	}
	p.UpdatedAt = p.UpdatedAt.UTC()
	return &p, nil
}

// UpsertProfile writes all profile fields.
func (db *DB) UpsertProfile(ctx context.Context, p *models.PreferenceProfile) error {
	categories, err := encodeStrings(p.Categories)
	if err != nil {
		return err
	}
	interests, err := encodeStrings(p.Interests)
	if err != nil {
		return err
	}
	updatedAt := p.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = db.now()
	}

	start := time.Now()
	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO preference_profiles (user_id, categories, interests, embedding, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			categories = EXCLUDED.categories,
			interests = EXCLUDED.interests,
			embedding = EXCLUDED.embedding,
			updated_at = EXCLUDED.updated_at`,
		p.UserID, categories, interests, encodeEmbedding(p.Embedding), updatedAt.UTC())
	observe("UPSERT", "preference_profiles", start, err)
	if err != nil {
		return fmt.Errorf("upsert profile %s: %w", p.UserID, err)
	}
	return nil
}

// UpdateProfileEmbedding stores a derived profile vector, keeping any
// explicit categories and interests. The row is created when missing.
func (db *DB) UpdateProfileEmbedding(ctx context.Context, userID string, embedding vector.Vector) error {
	if len(embedding) == 0 {
		return fmt.Errorf("update profile %s: %w", userID, vector.ErrEmptyInput)
	}
	start := time.Now()
	_, err := db.conn.ExecContext(ctx, `
		INSERT INTO preference_profiles (user_id, categories, interests, embedding, updated_at)
		VALUES (?, '[]', '[]', ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			embedding = EXCLUDED.embedding,
			updated_at = EXCLUDED.updated_at`,
		userID, vector.Marshal(embedding), db.now().UTC())
	observe("UPSERT", "preference_profiles", start, err)
	if err != nil {
		return fmt.Errorf("update profile embedding %s: %w", userID, err)
	}
	return nil
}
