// Eventide - Personalized Event Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventide

package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/tomtom215/eventide/internal/config"
	"github.com/tomtom215/eventide/internal/models"
	"github.com/tomtom215/eventide/internal/vector"
)

// testDBSemaphore holds one DuckDB connection open at a time across the
// package's tests. Concurrent CGO connections hang under CI pressure.
var testDBSemaphore = make(chan struct{}, 1)

var testNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

// setupTestDB creates an in-memory database with a fixed clock. The
// semaphore is held until the test completes.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	testDBSemaphore <- struct{}{}
	t.Cleanup(func() {
		<-testDBSemaphore
	})

	type result struct {
		db  *DB
		err error
	}
	resultCh := make(chan result, 1)
	go func() {
		db, err := New(&config.DatabaseConfig{Path: ":memory:", MaxMemory: "512MB"})
		resultCh <- result{db: db, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			t.Fatalf("Failed to create test database: %v", res.err)
		}
		res.db.SetClockForTesting(func() time.Time { return testNow })
		t.Cleanup(func() { _ = res.db.Close() })
		return res.db
	case <-time.After(120 * time.Second):
		t.Fatalf("Timeout: database creation took longer than 120s")
		return nil
	}
}

func price(cents int64) *int64 { return &cents }

func insertEvent(t *testing.T, db *DB, e models.Event) {
	t.Helper()
	if e.Status == "" {
		e.Status = models.EventStatusPublished
	}
	if e.Category == "" {
		e.Category = "music"
	}
	if err := db.UpsertEvent(context.Background(), &e); err != nil {
		t.Fatalf("UpsertEvent(%s): %v", e.ID, err)
	}
}

func eventIDs(events []models.Event) []string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids
}

func equalIDs(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestEventRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	end := testNow.Add(26 * time.Hour)
	in := models.Event{
		ID:          "ev-1",
		Title:       "Jazz Night",
		Description: "Live quartet",
		Category:    "music",
		Tags:        []string{"jazz", "live"},
		StartTime:   testNow.Add(24 * time.Hour),
		EndTime:     &end,
		Price:       price(2500),
		Venue:       &models.Venue{ID: "v-1", Name: "Hall", Latitude: 40.7, Longitude: -74},
		Status:      models.EventStatusPublished,
		Embedding:   []float64{0.1, 0.2, 0.3},
	}
	insertEvent(t, db, in)

	got, err := db.GetEvent(ctx, "ev-1")
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if got.Title != in.Title || got.Category != in.Category || len(got.Tags) != 2 {
		t.Errorf("event = %+v", got)
	}
	if !got.StartTime.Equal(in.StartTime) || got.EndTime == nil || !got.EndTime.Equal(end) {
		t.Errorf("times = %v / %v", got.StartTime, got.EndTime)
	}
	if got.Price == nil || *got.Price != 2500 {
		t.Errorf("price = %v", got.Price)
	}
	if got.Venue == nil || got.Venue.Name != "Hall" {
		t.Errorf("venue = %+v", got.Venue)
	}
	if len(got.Embedding) != 3 || got.Embedding[2] != 0.3 {
		t.Errorf("embedding = %v", got.Embedding)
	}
	if !got.CreatedAt.Equal(testNow) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, testNow)
	}
}

func TestGetEvent_NotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.GetEvent(context.Background(), "missing")
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCandidateEvents_Filters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	emb := []float64{1, 0}

	insertEvent(t, db, models.Event{ID: "a", Title: "A", StartTime: testNow.Add(time.Hour), Embedding: emb})
	insertEvent(t, db, models.Event{ID: "b", Title: "B", StartTime: testNow.Add(2 * time.Hour), Embedding: emb, Category: "food", Price: price(5000)})
	insertEvent(t, db, models.Event{ID: "c", Title: "C", StartTime: testNow.Add(3 * time.Hour)})
	insertEvent(t, db, models.Event{ID: "past", Title: "Past", StartTime: testNow.Add(-time.Hour), Embedding: emb})
	insertEvent(t, db, models.Event{ID: "draft", Title: "Draft", StartTime: testNow.Add(time.Hour), Embedding: emb, Status: models.EventStatusDraft})
	insertEvent(t, db, models.Event{ID: "pricey", Title: "Pricey", StartTime: testNow.Add(4 * time.Hour), Category: "food", Price: price(20000)})

	tests := []struct {
		name   string
		filter models.CandidateFilter
		want   []string
	}{
		{
			name:   "future embedded",
			filter: models.CandidateFilter{StartsAfter: testNow, RequireEmbedding: true, Limit: 10},
			want:   []string{"a", "b"},
		},
		{
			name:   "no time bound includes past",
			filter: models.CandidateFilter{RequireEmbedding: true, Limit: 10},
			want:   []string{"past", "a", "b"},
		},
		{
			name:   "exclude seed",
			filter: models.CandidateFilter{RequireEmbedding: true, ExcludeIDs: []string{"a"}, Limit: 10},
			want:   []string{"past", "b"},
		},
		{
			name:   "category and max price",
			filter: models.CandidateFilter{StartsAfter: testNow, Categories: []string{"food"}, MaxPriceCents: price(10000), Limit: 10},
			want:   []string{"b"},
		},
		{
			name:   "free events pass price filter",
			filter: models.CandidateFilter{StartsAfter: testNow, MaxPriceCents: price(0), Limit: 10},
			want:   []string{"a", "c"},
		},
		{
			name:   "limit",
			filter: models.CandidateFilter{StartsAfter: testNow, Limit: 2},
			want:   []string{"a", "b"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.CandidateEvents(ctx, tt.filter)
			if err != nil {
				t.Fatalf("CandidateEvents: %v", err)
			}
			if ids := eventIDs(got); !equalIDs(ids, tt.want) {
				t.Errorf("ids = %v, want %v", ids, tt.want)
			}
		})
	}
}

func TestTrendingEvents_NewestFirst(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	insertEvent(t, db, models.Event{ID: "old", Title: "Old", StartTime: testNow.Add(time.Hour), CreatedAt: testNow.Add(-48 * time.Hour)})
	insertEvent(t, db, models.Event{ID: "new", Title: "New", StartTime: testNow.Add(time.Hour), CreatedAt: testNow.Add(-time.Hour)})
	insertEvent(t, db, models.Event{ID: "gone", Title: "Gone", StartTime: testNow.Add(-time.Hour), CreatedAt: testNow})

	got, err := db.TrendingEvents(ctx, testNow, 10)
	if err != nil {
		t.Fatalf("TrendingEvents: %v", err)
	}
	if ids := eventIDs(got); !equalIDs(ids, []string{"new", "old"}) {
		t.Errorf("ids = %v", ids)
	}
}

func TestEmbeddingBackfillQueries(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	insertEvent(t, db, models.Event{ID: "x", Title: "X", StartTime: testNow, CreatedAt: testNow.Add(-2 * time.Hour)})
	insertEvent(t, db, models.Event{ID: "y", Title: "Y", StartTime: testNow, CreatedAt: testNow.Add(-time.Hour)})
	insertEvent(t, db, models.Event{ID: "z", Title: "Z", StartTime: testNow, Embedding: []float64{1}})

	pending, err := db.EventsWithoutEmbedding(ctx, 200)
	if err != nil {
		t.Fatalf("EventsWithoutEmbedding: %v", err)
	}
	if ids := eventIDs(pending); !equalIDs(ids, []string{"y", "x"}) {
		t.Fatalf("pending = %v", ids)
	}

	n, err := db.SaveEventEmbeddings(ctx, map[string]vector.Vector{
		"x":       {0.5, 0.5},
		"missing": {1, 1},
	})
	if err != nil {
		t.Fatalf("SaveEventEmbeddings: %v", err)
	}
	if n != 1 {
		t.Errorf("updated = %d, want 1", n)
	}

	pending, err = db.EventsWithoutEmbedding(ctx, 200)
	if err != nil {
		t.Fatal(err)
	}
	if ids := eventIDs(pending); !equalIDs(ids, []string{"y"}) {
		t.Errorf("pending after save = %v", ids)
	}

	if _, err := db.EventsWithoutEmbedding(ctx, 0); err == nil {
		t.Error("limit 0 should be rejected")
	}
}

func TestCorruptEmbeddingIsEmptyNotNil(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	insertEvent(t, db, models.Event{ID: "bad", Title: "Bad", StartTime: testNow.Add(time.Hour)})
	if _, err := db.conn.ExecContext(ctx, "UPDATE events SET embedding = ? WHERE id = 'bad'", []byte{1, 2, 3}); err != nil {
		t.Fatal(err)
	}

	got, err := db.GetEvent(ctx, "bad")
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if got.Embedding == nil || len(got.Embedding) != 0 {
		t.Errorf("embedding = %#v, want empty non-nil", got.Embedding)
	}
}

func TestInteractions(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	insertEvent(t, db, models.Event{ID: "e1", Title: "E1", StartTime: testNow, Category: "music", Tags: []string{"jazz"}, Embedding: []float64{1, 0}})
	insertEvent(t, db, models.Event{ID: "e2", Title: "E2", StartTime: testNow, Category: "food", Tags: []string{"wine"}})

	record := func(user, event string, typ models.InteractionType, at time.Time) {
		t.Helper()
		if err := db.UpsertInteraction(ctx, &models.Interaction{UserID: user, EventID: event, Type: typ, CreatedAt: at}); err != nil {
			t.Fatalf("UpsertInteraction: %v", err)
		}
	}
	record("u1", "e1", models.InteractionViewed, testNow.Add(-3*time.Hour))
	record("u1", "e1", models.InteractionViewed, testNow.Add(-time.Hour)) // last write wins
	record("u1", "e1", models.InteractionRSVP, testNow.Add(-2*time.Hour))
	record("u1", "e2", models.InteractionSaved, testNow.Add(-30*time.Minute))
	record("u2", "e2", models.InteractionViewed, testNow.Add(-40*24*time.Hour))

	if err := db.UpsertInteraction(ctx, &models.Interaction{UserID: "u1", EventID: "e1", Type: "liked"}); err == nil {
		t.Error("unknown interaction type should be rejected")
	}

	t.Run("recent skips events without embedding", func(t *testing.T) {
		got, err := db.RecentInteractions(ctx, "u1", 50)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2: %+v", len(got), got)
		}
		if got[0].Type != models.InteractionViewed || got[1].Type != models.InteractionRSVP {
			t.Errorf("order = %s, %s", got[0].Type, got[1].Type)
		}
		if len(got[0].Embedding) != 2 {
			t.Errorf("embedding = %v", got[0].Embedding)
		}
	})

	t.Run("keywords exclude views", func(t *testing.T) {
		got, err := db.InteractionsForKeywords(ctx, "u1", 100)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		if got[0].Category != "food" || got[0].Tags[0] != "wine" {
			t.Errorf("first = %+v", got[0])
		}
	})

	t.Run("counts", func(t *testing.T) {
		stats, err := db.InteractionCounts(ctx, "u1")
		if err != nil {
			t.Fatal(err)
		}
		want := models.InteractionStats{Total: 3, Viewed: 1, Saved: 1, RSVP: 1}
		if stats != want {
			t.Errorf("stats = %+v, want %+v", stats, want)
		}
	})

	t.Run("active users window", func(t *testing.T) {
		users, err := db.ActiveUsers(ctx, testNow.Add(-30*24*time.Hour), 1000)
		if err != nil {
			t.Fatal(err)
		}
		if !equalIDs(users, []string{"u1"}) {
			t.Errorf("users = %v", users)
		}
	})
}

func TestRecentInteractions_WindowBeforeEmbeddingFilter(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	insertEvent(t, db, models.Event{ID: "old", Title: "Old", StartTime: testNow, Embedding: []float64{1, 0}})
	if err := db.UpsertInteraction(ctx, &models.Interaction{
		UserID: "u", EventID: "old", Type: models.InteractionAttended, CreatedAt: testNow.Add(-100 * time.Hour),
	}); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 50; i++ {
		id := fmt.Sprintf("plain-%02d", i)
		insertEvent(t, db, models.Event{ID: id, Title: id, StartTime: testNow})
		if err := db.UpsertInteraction(ctx, &models.Interaction{
			UserID: "u", EventID: id, Type: models.InteractionViewed, CreatedAt: testNow.Add(-time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.RecentInteractions(ctx, "u", 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0 (older embedded row is outside the window): %+v", len(got), got)
	}

	got, err = db.RecentInteractions(ctx, "u", 51)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].EventID != "old" {
		t.Errorf("widened window = %+v, want only old", got)
	}
}

func TestProfiles(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if _, err := db.GetProfile(ctx, "u1"); !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}

	// Implicit derivation creates the row with empty sets.
	if err := db.UpdateProfileEmbedding(ctx, "u1", vector.Vector{0.6, 0.8}); err != nil {
		t.Fatalf("UpdateProfileEmbedding: %v", err)
	}
	p, err := db.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Categories) != 0 || len(p.Embedding) != 2 {
		t.Errorf("profile = %+v", p)
	}

	if err := db.UpsertProfile(ctx, &models.PreferenceProfile{
		UserID:     "u1",
		Categories: []string{"music"},
		Interests:  []string{"jazz"},
		Embedding:  []float64{1, 0},
	}); err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}

	// A later derivation keeps the explicit sets.
	if err := db.UpdateProfileEmbedding(ctx, "u1", vector.Vector{0, 1}); err != nil {
		t.Fatal(err)
	}
	p, err = db.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if len(p.Categories) != 1 || p.Categories[0] != "music" || p.Interests[0] != "jazz" {
		t.Errorf("sets lost: %+v", p)
	}
	if p.Embedding[1] != 1 {
		t.Errorf("embedding = %v", p.Embedding)
	}

	if err := db.UpdateProfileEmbedding(ctx, "u1", nil); !errors.Is(err, vector.ErrEmptyInput) {
		t.Errorf("err = %v, want ErrEmptyInput", err)
	}
}

func TestRecommendations(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	insertEvent(t, db, models.Event{ID: "e1", Title: "E1", StartTime: testNow.Add(time.Hour)})
	insertEvent(t, db, models.Event{ID: "e2", Title: "E2", StartTime: testNow.Add(time.Hour)})
	insertEvent(t, db, models.Event{ID: "e3", Title: "E3", StartTime: testNow.Add(time.Hour)})

	expiry := testNow.Add(7 * 24 * time.Hour)
	recs := []models.Recommendation{
		{UserID: "u1", EventID: "e1", Score: 0.4, Reason: "r", ExpiresAt: expiry},
		{UserID: "u1", EventID: "e2", Score: 0.9, Reason: "r", ExpiresAt: expiry},
		{UserID: "u1", EventID: "e3", Score: 1.5, Reason: "r", ExpiresAt: expiry},
		{UserID: "u1", EventID: "old", Score: 0.5, Reason: "r", ExpiresAt: testNow.Add(-time.Minute)},
	}
	n, err := db.UpsertRecommendations(ctx, recs)
	if n != 3 {
		t.Errorf("succeeded = %d, want 3", n)
	}
	if err == nil {
		t.Error("out-of-range score should be reported")
	}

	// Upsert overwrites on (user, event).
	if _, err := db.UpsertRecommendations(ctx, []models.Recommendation{
		{UserID: "u1", EventID: "e1", Score: 0.95, Reason: "updated", ExpiresAt: expiry},
	}); err != nil {
		t.Fatal(err)
	}

	list, err := db.ListRecommendations(ctx, "u1", testNow, 10)
	if err != nil {
		t.Fatalf("ListRecommendations: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len = %d, want 2", len(list))
	}
	if list[0].EventID != "e1" || list[0].Reason != "updated" || list[0].Event.Title != "E1" {
		t.Errorf("first = %+v", list[0])
	}
	if list[1].EventID != "e2" {
		t.Errorf("second = %s", list[1].EventID)
	}

	deleted, err := db.DeleteExpiredRecommendations(ctx, testNow)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	if _, err := db.ListRecommendations(ctx, "u1", testNow, 0); err == nil {
		t.Error("limit 0 should be rejected")
	}
}

func TestSeedDemoData_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.SeedDemoData(ctx); err != nil {
		t.Fatalf("SeedDemoData: %v", err)
	}
	var first int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&first); err != nil {
		t.Fatal(err)
	}
	if first == 0 {
		t.Fatal("no events seeded")
	}
	if err := db.SeedDemoData(ctx); err != nil {
		t.Fatal(err)
	}
	var second int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM events").Scan(&second); err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("second seed changed count %d -> %d", first, second)
	}

	pending, err := db.EventsWithoutEmbedding(ctx, 1000)
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != first {
		t.Errorf("pending = %d, want all %d seeded events", len(pending), first)
	}
}
