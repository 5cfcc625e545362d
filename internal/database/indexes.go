// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// indexSpecs returns the indexes per collection, keyed by the configured
// collection names.
func (db *DB) indexSpecs() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		db.cfg.PostsCollection: {
			// Recency scan and cursor pagination.
			{Keys: bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: 1}}},
			// Tag-filtered feeds.
			{Keys: bson.D{{Key: "tags", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "engagement.likes", Value: -1}, {Key: "created_at", Value: -1}}},
		},
		db.cfg.LikesCollection: {
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "user_id", Value: 1}, {Key: "post_id", Value: 1}}},
		},
		db.cfg.ProfilesCollection: {
			{
				Keys:    bson.D{{Key: "user_id", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
	}
}

// EnsureIndexes creates the indexes feed queries rely on. Existing indexes
// with the same keys are left alone.
func (db *DB) EnsureIndexes(ctx context.Context) error {
	for coll, models := range db.indexSpecs() {
		names, err := db.db.Collection(coll).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
		db.logger.Debug().
			Str("collection", coll).
			Strs("indexes", names).
			Msg("Indexes ensured")
	}
	return nil
}
