// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package database

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tomtom215/feedrank/internal/config"
)

const disconnectTimeout = 10 * time.Second

// DB wraps the MongoDB client and hands out the feed stores.
type DB struct {
	client *mongo.Client
	db     *mongo.Database
	cfg    *config.MongoConfig
	logger zerolog.Logger

	content  *ContentStore
	likes    *LikeLog
	profiles *ProfileStore
}

// New connects to MongoDB, verifies the connection and optionally creates
// the indexes the feed queries rely on.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(ctx context.Context, cfg *config.MongoConfig, logger zerolog.Logger) (*DB, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.ConnectTimeout > 0 {
		opts.SetConnectTimeout(cfg.ConnectTimeout)
		opts.SetServerSelectionTimeout(cfg.ConnectTimeout)
	}
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	db := newDB(client, cfg, logger)

	if err := db.Ping(ctx); err != nil {
		disconnectQuietly(client)
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	if cfg.EnsureIndexes {
		if err := db.EnsureIndexes(ctx); err != nil {
			disconnectQuietly(client)
			return nil, fmt.Errorf("failed to create indexes: %w", err)
		}
	}

	db.logger.Info().
		Str("database", cfg.Database).
		Msg("Connected to MongoDB")

	return db, nil
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func newDB(client *mongo.Client, cfg *config.MongoConfig, logger zerolog.Logger) *DB {
	logger = logger.With().Str("component", "database").Logger()
	mdb := client.Database(cfg.Database)

	return &DB{
		client:   client,
		db:       mdb,
		cfg:      cfg,
		logger:   logger,
		content:  NewContentStore(mdb.Collection(cfg.PostsCollection), logger),
		likes:    NewLikeLog(mdb.Collection(cfg.LikesCollection)),
		profiles: NewProfileStore(mdb.Collection(cfg.ProfilesCollection), logger),
	}
}

// Content returns the post store.
func (db *DB) Content() *ContentStore { return db.content }

// Likes returns the like log.
func (db *DB) Likes() *LikeLog { return db.likes }

// Profiles returns the tag profile store.
func (db *DB) Profiles() *ProfileStore { return db.profiles }

// Database returns the underlying database handle.
func (db *DB) Database() *mongo.Database { return db.db }

// Ping checks that the primary is reachable.
func (db *DB) Ping(ctx context.Context) error {
	if db.client == nil {
		return fmt.Errorf("database client is nil")
	}
	return db.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (db *DB) Close() error {
	if db.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	return db.client.Disconnect(ctx)
}

// disconnectQuietly disconnects in error paths where the error is not actionable.
func disconnectQuietly(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), disconnectTimeout)
	defer cancel()
	_ = client.Disconnect(ctx) //nolint:errcheck // best-effort cleanup
}
