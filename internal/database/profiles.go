// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tomtom215/feedrank/internal/metrics"
	"github.com/tomtom215/feedrank/internal/profile"
)

const tagPreferencesField = "tag_preferences"

// profileDocument is a user's tag profile as stored.
type profileDocument struct {
	UserID         string                   `bson:"user_id"`
	TagPreferences map[string]profile.Entry `bson:"tag_preferences"`
	CreatedAt      time.Time                `bson:"created_at,omitempty"`
	UpdatedAt      time.Time                `bson:"updated_at,omitempty"`
}

// profileCollection is the part of *mongo.Collection a ProfileStore uses.
type profileCollection interface {
	Name() string
	FindOne(ctx context.Context, filter any, opts ...*options.FindOneOptions) *mongo.SingleResult
	FindOneAndUpdate(ctx context.Context, filter, update any, opts ...*options.FindOneAndUpdateOptions) *mongo.SingleResult
	UpdateOne(ctx context.Context, filter, update any, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

// ProfileStore persists tag preference profiles. Weight updates are single
// atomic $inc upserts, so concurrent likes for the same user never lose
// increments.
type ProfileStore struct {
	coll   profileCollection
	logger zerolog.Logger
	now    func() time.Time
}

// NewProfileStore creates a ProfileStore over the profiles collection.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewProfileStore(coll *mongo.Collection, logger zerolog.Logger) *ProfileStore {
	return &ProfileStore{coll: coll, logger: logger, now: time.Now}
}

// tagUpdate builds the upsert that adds boost to each tag and stamps it.
func tagUpdate(tags []string, boost float64, now time.Time) bson.D {
	inc := make(bson.D, 0, len(tags))
	set := make(bson.D, 0, len(tags)+1)
	for _, tag := range tags {
		path := tagPreferencesField + "." + tag
		inc = append(inc, bson.E{Key: path + ".weight", Value: boost})
		set = append(set, bson.E{Key: path + ".last_updated_at", Value: now})
	}
	set = append(set, bson.E{Key: "updated_at", Value: now})

	return bson.D{
		{Key: "$inc", Value: inc},
		{Key: "$set", Value: set},
		{Key: "$setOnInsert", Value: bson.D{{Key: "created_at", Value: now}}},
	}
}

// evictionUpdate unsets the given tags.
func evictionUpdate(tags []string) bson.D {
	unset := make(bson.D, 0, len(tags))
	for _, tag := range tags {
		unset = append(unset, bson.E{Key: tagPreferencesField + "." + tag, Value: ""})
	}
	return bson.D{{Key: "$unset", Value: unset}}
}

// UpsertTagWeights atomically adds boost to each tag's weight, inserting
// missing tags and creating the profile on first use. When the profile
// grows past profile.MaxEntries the lowest weighted tags are evicted.
//
// An error means no weight was added. Once the increment commits, a failed
// eviction is logged and left for the next update to retry, so a redelivered
// like never adds its boost twice.
func (s *ProfileStore) UpsertTagWeights(ctx context.Context, userID string, tags []string, boost float64) (err error) {
	tags = profile.NormalizeTags(tags)
	if userID == "" || len(tags) == 0 {
		return nil
	}
	if boost <= 0 {
		boost = 1
	}

	evicted := 0
	start := time.Now()
	defer func() {
		metrics.RecordDBQuery("upsert_tags", s.coll.Name(), time.Since(start), err)
		metrics.RecordProfileUpdate(err, evicted)
	}()

	filter := bson.D{{Key: "user_id", Value: userID}}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.D{{Key: tagPreferencesField, Value: 1}})

	var doc profileDocument
	if err = s.coll.FindOneAndUpdate(ctx, filter, tagUpdate(tags, boost, s.now()), opts).Decode(&doc); err != nil {
		return fmt.Errorf("upsert tag weights for %s: %w", userID, err)
	}

	if len(doc.TagPreferences) <= profile.MaxEntries {
		return nil
	}

	drop := profile.FromEntries(userID, doc.TagPreferences).Evictions(profile.MaxEntries)
	if len(drop) == 0 {
		return nil
	}
	if _, evictErr := s.coll.UpdateOne(ctx, filter, evictionUpdate(drop)); evictErr != nil {
		metrics.RecordProfileEvictionFailure()
		s.logger.Warn().
			Err(evictErr).
			Str("user_id", userID).
			Int("over_cap", len(drop)).
			Msg("Tag eviction failed, profile stays over cap until the next update")
		return nil
	}
	evicted = len(drop)

	s.logger.Debug().
		Str("user_id", userID).
		Int("evicted", evicted).
		Msg("Evicted low-weight tags")

	return nil
}

// LoadProfile returns the user's profile. A user without one gets an empty
// profile.
func (s *ProfileStore) LoadProfile(ctx context.Context, userID string) (p *profile.Profile, err error) {
	if userID == "" {
		return profile.New(userID), nil
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("load_profile", s.coll.Name(), time.Since(start), err) }()

	var doc profileDocument
	err = s.coll.FindOne(ctx, bson.D{{Key: "user_id", Value: userID}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return profile.New(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("load profile %s: %w", userID, err)
	}

	return profile.FromEntries(userID, doc.TagPreferences), nil
}
