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
	"github.com/tomtom215/feedrank/internal/models"
)

// postDocument is a post as stored in the posts collection.
type postDocument struct {
	ID               any `bson:"_id"`
	models.Candidate `bson:",inline"`
}

func (d *postDocument) candidate() models.Candidate {
	c := d.Candidate
	c.ID = idString(d.ID)
	return c
}

// ContentStore reads feed candidates from the posts collection.
type ContentStore struct {
	coll   *mongo.Collection
	logger zerolog.Logger
}

// NewContentStore creates a ContentStore over the posts collection.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewContentStore(coll *mongo.Collection, logger zerolog.Logger) *ContentStore {
	return &ContentStore{coll: coll, logger: logger}
}

// FindCandidates returns up to limit posts matching filter, skipping excludeIDs.
// Documents that fail to decode are skipped.
func (s *ContentStore) FindCandidates(ctx context.Context, filter models.CandidateFilter, excludeIDs []string, limit int) (candidates []models.Candidate, err error) {
	if limit <= 0 {
		return nil, nil
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("find_candidates", s.coll.Name(), time.Since(start), err) }()

	opts := options.Find().
		SetSort(candidateSort()).
		SetLimit(int64(limit))

	cursor, err := s.coll.Find(ctx, candidateQuery(filter, excludeIDs), opts)
	if err != nil {
		return nil, fmt.Errorf("find candidates: %w", err)
	}
	defer cursor.Close(ctx) //nolint:errcheck // read-only cursor

	candidates = make([]models.Candidate, 0, limit)
	for cursor.Next(ctx) {
		var doc postDocument
		if err := cursor.Decode(&doc); err != nil {
			metrics.RecordMalformedCandidate([]string{"document"})
			s.logger.Debug().
				Err(err).
				Str("id", cursor.Current.Lookup("_id").String()).
				Msg("Skipping undecodable post")
			continue
		}
		candidates = append(candidates, doc.candidate())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}

	return candidates, nil
}

// FindByID returns the post with the given id, or nil, nil when it does not exist.
func (s *ContentStore) FindByID(ctx context.Context, id string) (c *models.Candidate, err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("find_by_id", s.coll.Name(), time.Since(start), err) }()

	var doc postDocument
	err = s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: idValue(id)}}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find post %s: %w", id, err)
	}

	candidate := doc.candidate()
	return &candidate, nil
}
