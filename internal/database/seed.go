// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package database

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/eventide/internal/logging"
	"github.com/tomtom215/eventide/internal/models"
)

// seedNamespace keeps demo IDs stable across restarts.
var seedNamespace = uuid.MustParse("6f1c1f2e-6a43-4d53-9a55-3c7f1b2f0e10")

func seedID(kind string, n int) string {
	return uuid.NewSHA1(seedNamespace, []byte(fmt.Sprintf("%s-%d", kind, n))).String()
}

// SeedDemoData fills an empty catalog with published demo events and a few
// users with interaction history. It does nothing when events already exist.
// Embeddings are left empty for the backfill job.
func (db *DB) SeedDemoData(ctx context.Context) error {
	var count int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&count); err != nil {
		return fmt.Errorf("count events: %w", err)
	}
	if count > 0 {
		logging.Info().Int("events", count).Msg("Catalog not empty, skipping demo seed")
		return nil
	}

	logging.Info().Msg("Seeding database with demo events...")

	const (
		numEvents    = 60
		numUsers     = 8
		daysAhead    = 45
		interactions = 12
	)

	// Fixed seed so every demo database is identical.
	rng := rand.New(rand.NewSource(42)) //nolint:gosec // demo data

	venues := []models.Venue{
		{Name: "Riverside Hall", Latitude: 40.7128, Longitude: -74.0060},
		{Name: "Brooklyn Warehouse", Latitude: 40.6782, Longitude: -73.9442},
		{Name: "Central Park Lawn", Latitude: 40.7829, Longitude: -73.9654},
		{Name: "Hoboken Pier", Latitude: 40.7440, Longitude: -74.0324},
		{Name: "Queens Tech Hub", Latitude: 40.7282, Longitude: -73.7949},
		{Name: "Newark Arena", Latitude: 40.7357, Longitude: -74.1724},
	}
	for i := range venues {
		venues[i].ID = seedID("venue", i)
	}

	templates := []struct {
		title    string
		desc     string
		category string
		tags     []string
		hour     int
		hours    float64
		price    int64 // cents, 0 = free
	}{
		{"Jazz Night", "Live jazz quartet with late-night jam session", "music", []string{"jazz", "live", "bar"}, 20, 3, 2500},
		{"Indie Rock Showcase", "Four local indie bands on one stage", "music", []string{"rock", "indie", "live"}, 19, 4, 1800},
		{"Morning Trail Run", "Easy-paced group run along the river", "sports", []string{"running", "fitness", "outdoors"}, 7, 1.5, 0},
		{"Pickup Basketball", "Open court games for all levels", "sports", []string{"basketball", "community"}, 17, 2, 0},
		{"Watercolor Workshop", "Beginner watercolor techniques, materials included", "arts", []string{"painting", "workshop", "beginner"}, 10, 3, 4500},
		{"Gallery Opening", "New contemporary photography exhibition", "arts", []string{"photography", "gallery", "wine"}, 18, 3, 0},
		{"Street Food Festival", "Thirty vendors from around the world", "food", []string{"street food", "festival", "family"}, 12, 5, 1000},
		{"Wine Tasting", "Natural wines from small producers", "food", []string{"wine", "tasting"}, 19, 2, 6500},
		{"Go Meetup", "Talks on concurrency and tooling, pizza after", "technology", []string{"golang", "programming", "meetup"}, 18, 2.5, 0},
		{"AI Demo Day", "Startups demo applied machine learning products", "technology", []string{"ai", "startups", "demo"}, 14, 4, 2000},
		{"Founder Breakfast", "Networking breakfast for early-stage founders", "business", []string{"networking", "startups"}, 8, 1.5, 1500},
		{"Neighborhood Cleanup", "Volunteer cleanup followed by lunch", "community", []string{"volunteer", "outdoors"}, 9, 3, 0},
		{"Intro to Pottery", "Hands-on wheel throwing class", "education", []string{"pottery", "class", "beginner"}, 13, 2, 5500},
		{"Techno Warehouse Party", "All-night techno with international DJs", "nightlife", []string{"techno", "dance", "dj"}, 23, 6, 3000},
		{"Sunset Kayaking", "Guided kayak tour at golden hour", "outdoors", []string{"kayak", "water", "nature"}, 18, 2, 4000},
	}

	now := db.now().UTC().Truncate(time.Hour)
	for i := 0; i < numEvents; i++ {
		t := templates[i%len(templates)]
		venue := venues[rng.Intn(len(venues))]
		day := 1 + rng.Intn(daysAhead)
		start := time.Date(now.Year(), now.Month(), now.Day()+day, t.hour, 0, 0, 0, time.UTC)
		end := start.Add(time.Duration(t.hours * float64(time.Hour)))

		e := &models.Event{
			ID:          seedID("event", i),
			Title:       fmt.Sprintf("%s #%d", t.title, i/len(templates)+1),
			Description: t.desc,
			Category:    t.category,
			Tags:        t.tags,
			StartTime:   start,
			EndTime:     &end,
			Venue:       &venue,
			Status:      models.EventStatusPublished,
			CreatedAt:   now.Add(-time.Duration(rng.Intn(14*24)) * time.Hour),
		}
		if t.price > 0 {
			price := t.price
			e.Price = &price
		}
		if err := db.UpsertEvent(ctx, e); err != nil {
			return fmt.Errorf("seed event %d: %w", i, err)
		}
	}

	for u := 0; u < numUsers; u++ {
		userID := fmt.Sprintf("demo-user-%d", u+1)
		for j := 0; j < interactions; j++ {
			in := &models.Interaction{
				UserID:    userID,
				EventID:   seedID("event", rng.Intn(numEvents)),
				Type:      models.InteractionTypes[rng.Intn(len(models.InteractionTypes))],
				CreatedAt: now.Add(-time.Duration(rng.Intn(20*24)) * time.Hour),
			}
			if err := db.UpsertInteraction(ctx, in); err != nil {
				return fmt.Errorf("seed interaction: %w", err)
			}
		}
	}

	logging.Info().
		Int("events", numEvents).
		Int("venues", len(venues)).
		Int("users", numUsers).
		Msg("Demo data seeded")
	return nil
}
