// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package database

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/feedrank/internal/models"
)

// candidateQuery builds the posts filter for a candidate fetch.
func candidateQuery(filter models.CandidateFilter, excludeIDs []string) bson.D {
	query := bson.D{}

	if len(excludeIDs) > 0 {
		ids := make(bson.A, 0, len(excludeIDs))
		for _, id := range excludeIDs {
			ids = append(ids, idValue(id))
		}
		query = append(query, bson.E{Key: "_id", Value: bson.D{{Key: "$nin", Value: ids}}})
	}

	if filter.ExcludeAuthorID != "" {
		query = append(query, bson.E{Key: "author_id", Value: bson.D{{Key: "$ne", Value: filter.ExcludeAuthorID}}})
	}

	if len(filter.Tags) > 0 {
		query = append(query, bson.E{Key: "tags", Value: bson.D{{Key: "$in", Value: filter.Tags}}})
	}

	if !filter.Before.IsZero() {
		query = append(query, bson.E{Key: "created_at", Value: bson.D{{Key: "$lt", Value: filter.Before}}})
	}

	return query
}

// candidateSort reads the newest posts first. Pages are cut from the head of
// this order, so every sort mode shares it.
func candidateSort() bson.D {
	return bson.D{
		{Key: "created_at", Value: -1},
		{Key: "_id", Value: 1},
	}
}

// idValue converts a post id to its stored form. Hex ObjectIDs are stored
// as ObjectIDs; anything else is a plain string id.
func idValue(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

// idString renders a stored _id as a post id.
func idString(v any) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}
