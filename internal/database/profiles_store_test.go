// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package database

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tomtom215/feedrank/internal/metrics"
	"github.com/tomtom215/feedrank/internal/profile"
)

// fakeProfiles answers the weight upsert with a stored profile of size tags
// and fails evictions with evictErr.
type fakeProfiles struct {
	size      int
	upsertNil bool
	evictErr  error

	upserts int
	evicts  int
}

func (f *fakeProfiles) Name() string { return "user_profiles" }

func (f *fakeProfiles) FindOne(context.Context, any, ...*options.FindOneOptions) *mongo.SingleResult {
	return mongo.NewSingleResultFromDocument(nil, nil, bson.DefaultRegistry)
}

func (f *fakeProfiles) FindOneAndUpdate(context.Context, any, any, ...*options.FindOneAndUpdateOptions) *mongo.SingleResult {
	f.upserts++
	if f.upsertNil {
		// A nil document makes Decode fail.
		return mongo.NewSingleResultFromDocument(nil, nil, bson.DefaultRegistry)
	}

	prefs := make(map[string]profile.Entry, f.size)
	updated := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < f.size; i++ {
		prefs[fmt.Sprintf("tag%03d", i)] = profile.Entry{Weight: float64(i + 1), LastUpdatedAt: updated}
	}
	doc := profileDocument{UserID: "u1", TagPreferences: prefs}
	return mongo.NewSingleResultFromDocument(doc, nil, bson.DefaultRegistry)
}

func (f *fakeProfiles) UpdateOne(context.Context, any, any, ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	f.evicts++
	if f.evictErr != nil {
		return nil, f.evictErr
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func newFakeProfileStore(coll *fakeProfiles) *ProfileStore {
	return &ProfileStore{coll: coll, logger: zerolog.Nop(), now: time.Now}
}

func TestUpsertTagWeights_EvictionFailureKeepsIncrement(t *testing.T) {
	coll := &fakeProfiles{size: profile.MaxEntries + 2, evictErr: errors.New("connection reset")}
	store := newFakeProfileStore(coll)
	failures := testutil.ToFloat64(metrics.ProfileEvictionFailures)

	if err := store.UpsertTagWeights(context.Background(), "u1", []string{"go"}, 1); err != nil {
		t.Fatalf("UpsertTagWeights() error = %v, want nil once the increment committed", err)
	}
	if coll.upserts != 1 || coll.evicts != 1 {
		t.Errorf("upserts = %d evicts = %d, want 1 and 1", coll.upserts, coll.evicts)
	}
	if got := testutil.ToFloat64(metrics.ProfileEvictionFailures) - failures; got != 1 {
		t.Errorf("eviction failures recorded = %v, want 1", got)
	}
}

func TestUpsertTagWeights_Eviction(t *testing.T) {
	tests := []struct {
		name       string
		coll       *fakeProfiles
		wantErr    bool
		wantEvicts int
	}{
		{"under cap", &fakeProfiles{size: profile.MaxEntries}, false, 0},
		{"over cap", &fakeProfiles{size: profile.MaxEntries + 3}, false, 1},
		{"increment fails", &fakeProfiles{upsertNil: true}, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeProfileStore(tt.coll)
			err := store.UpsertTagWeights(context.Background(), "u1", []string{"go"}, 1)
			if (err != nil) != tt.wantErr {
				t.Fatalf("UpsertTagWeights() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.coll.evicts != tt.wantEvicts {
				t.Errorf("evicts = %d, want %d", tt.coll.evicts, tt.wantEvicts)
			}
		})
	}
}
