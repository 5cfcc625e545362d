// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

//go:build integration

package database

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/tomtom215/feedrank/internal/config"
	"github.com/tomtom215/feedrank/internal/models"
	"github.com/tomtom215/feedrank/internal/profile"
	"github.com/tomtom215/feedrank/internal/testinfra"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	testinfra.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	mongoC, err := testinfra.StartMongo(ctx)
	if err != nil {
		t.Fatalf("start mongo: %v", err)
	}
	t.Cleanup(func() { _ = mongoC.Terminate(context.Background()) })

	cfg := &config.MongoConfig{
		URI:                mongoC.URI,
		Database:           fmt.Sprintf("feedrank_test_%d", time.Now().UnixNano()),
		PostsCollection:    "posts",
		LikesCollection:    "likes",
		ProfilesCollection: "user_profiles",
		ConnectTimeout:     10 * time.Second,
		EnsureIndexes:      true,
	}

	db, err := New(ctx, cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func insertPosts(t *testing.T, db *DB, docs ...bson.D) {
	t.Helper()
	coll := db.Database().Collection(db.cfg.PostsCollection)
	for _, d := range docs {
		if _, err := coll.InsertOne(context.Background(), d); err != nil {
			t.Fatalf("insert post: %v", err)
		}
	}
}

func TestContentStoreIntegration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	insertPosts(t, db,
		bson.D{{Key: "_id", Value: "p1"}, {Key: "author_id", Value: "a"}, {Key: "tags", Value: bson.A{"go"}}, {Key: "created_at", Value: now.Add(-time.Hour)}},
		bson.D{{Key: "_id", Value: "p2"}, {Key: "author_id", Value: "b"}, {Key: "tags", Value: bson.A{"rust"}}, {Key: "created_at", Value: now.Add(-2 * time.Hour)}},
		bson.D{{Key: "_id", Value: "p3"}, {Key: "author_id", Value: "a"}, {Key: "tags", Value: bson.A{"go", "db"}}, {Key: "created_at", Value: now.Add(-3 * time.Hour)},
			{Key: "engagement", Value: bson.D{{Key: "likes", Value: 50}}}},
		bson.D{{Key: "_id", Value: "bad"}, {Key: "author_id", Value: "c"}, {Key: "created_at", Value: "not a date"}},
	)

	store := db.Content()

	t.Run("newest first, undecodable skipped", func(t *testing.T) {
		got, err := store.FindCandidates(ctx, models.CandidateFilter{}, nil, 10)
		if err != nil {
			t.Fatal(err)
		}
		var ids []string
		for _, c := range got {
			ids = append(ids, c.ID)
		}
		if fmt.Sprint(ids) != "[p1 p2 p3]" {
			t.Errorf("ids = %v, want [p1 p2 p3]", ids)
		}
	})

	t.Run("filters", func(t *testing.T) {
		got, err := store.FindCandidates(ctx, models.CandidateFilter{
			Tags:            []string{"go"},
			ExcludeAuthorID: "b",
			Before:          now.Add(-90 * time.Minute),
		}, []string{"p1"}, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 || got[0].ID != "p3" {
			t.Errorf("got %+v, want only p3", got)
		}
	})

	t.Run("find by id", func(t *testing.T) {
		c, err := store.FindByID(ctx, "p2")
		if err != nil || c == nil || c.AuthorID != "b" {
			t.Fatalf("FindByID(p2) = %+v, %v", c, err)
		}
		c, err = store.FindByID(ctx, "missing")
		if err != nil || c != nil {
			t.Errorf("FindByID(missing) = %+v, %v, want nil, nil", c, err)
		}
	})
}

func TestLikeLogIntegration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	likes := db.Likes()
	now := time.Now().UTC()

	for _, l := range []struct {
		post string
		tags []string
		at   time.Time
	}{
		{"p1", []string{"go", "db"}, now.Add(-time.Hour)},
		{"p2", []string{"Go"}, now.Add(-24 * time.Hour)},
		{"p3", []string{"rust"}, now.Add(-40 * 24 * time.Hour)},
	} {
		if err := likes.Record(ctx, "u1", l.post, l.tags, l.at); err != nil {
			t.Fatal(err)
		}
	}
	// Repeated likes keep one entry.
	if err := likes.Record(ctx, "u1", "p1", []string{"go", "db"}, now); err != nil {
		t.Fatal(err)
	}

	counts, err := likes.CountRecentTagEngagements(ctx, "u1", 30)
	if err != nil {
		t.Fatal(err)
	}
	if counts["go"] != 2 || counts["db"] != 1 || counts["rust"] != 0 {
		t.Errorf("counts = %v, want go:2 db:1", counts)
	}

	liked, err := likes.IsLikedByUser(ctx, "u1", []string{"p1", "p3", "p9"})
	if err != nil {
		t.Fatal(err)
	}
	if !liked["p1"] || !liked["p3"] || liked["p9"] {
		t.Errorf("liked = %v", liked)
	}
}

func TestProfileStoreIntegration(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	store := db.Profiles()

	p, err := store.LoadProfile(ctx, "nobody")
	if err != nil || !p.IsEmpty() {
		t.Fatalf("LoadProfile(nobody) = %+v, %v, want empty", p, err)
	}

	if err := store.UpsertTagWeights(ctx, "u1", []string{"Go", "rust"}, 1); err != nil {
		t.Fatal(err)
	}
	if err := store.UpsertTagWeights(ctx, "u1", []string{"go"}, 2); err != nil {
		t.Fatal(err)
	}

	p, err = store.LoadProfile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if p.Weight("go") != 3 || p.Weight("rust") != 1 {
		t.Errorf("weights go=%v rust=%v, want 3 and 1", p.Weight("go"), p.Weight("rust"))
	}
}

func TestProfileStoreConcurrentIncrements(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	store := db.Profiles()

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := store.UpsertTagWeights(ctx, "u1", []string{"go"}, 1); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	p, err := store.LoadProfile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if p.Weight("go") != workers {
		t.Errorf("go weight = %v, want %d", p.Weight("go"), workers)
	}
}

func TestProfileStoreEviction(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	store := db.Profiles()

	// One heavy tag, then enough light tags to overflow.
	if err := store.UpsertTagWeights(ctx, "u1", []string{"keep"}, 5); err != nil {
		t.Fatal(err)
	}
	for i := 0; i < profile.MaxEntries+5; i++ {
		if err := store.UpsertTagWeights(ctx, "u1", []string{fmt.Sprintf("t%03d", i)}, 1); err != nil {
			t.Fatal(err)
		}
	}

	p, err := store.LoadProfile(ctx, "u1")
	if err != nil {
		t.Fatal(err)
	}
	if p.Len() > profile.MaxEntries {
		t.Errorf("profile has %d tags, want at most %d", p.Len(), profile.MaxEntries)
	}
	if p.Weight("keep") != 5 {
		t.Errorf("heavy tag evicted: weight %v", p.Weight("keep"))
	}
}
