// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tomtom215/feedrank/internal/metrics"
	"github.com/tomtom215/feedrank/internal/profile"
)

// likeDocument is one like in the likes collection. Tags are the liked
// post's tags at the time of the like.
type likeDocument struct {
	UserID    string    `bson:"user_id"`
	PostID    string    `bson:"post_id"`
	Tags      []string  `bson:"tags,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
}

// tagCount is one row of the recent tag aggregation.
type tagCount struct {
	Tag   string `bson:"_id"`
	Count int    `bson:"count"`
}

// LikeLog reads a user's like history.
type LikeLog struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewLikeLog creates a LikeLog over the likes collection.
func NewLikeLog(coll *mongo.Collection) *LikeLog {
	return &LikeLog{coll: coll, now: time.Now}
}

// recentTagPipeline counts the user's likes per tag since the given time.
func recentTagPipeline(userID string, since time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "user_id", Value: userID},
			{Key: "created_at", Value: bson.D{{Key: "$gte", Value: since}}},
		}}},
		{{Key: "$unwind", Value: "$tags"}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$tags"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
}

// CountRecentTagEngagements counts the user's likes per tag over the last
// windowDays days. Tags are normalized, so differently spelled tags that
// normalize alike are summed.
func (l *LikeLog) CountRecentTagEngagements(ctx context.Context, userID string, windowDays int) (counts map[string]int, err error) {
	counts = make(map[string]int)
	if userID == "" || windowDays <= 0 {
		return counts, nil
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("recent_tags", l.coll.Name(), time.Since(start), err) }()

	since := l.now().Add(-time.Duration(windowDays) * 24 * time.Hour)
	cursor, err := l.coll.Aggregate(ctx, recentTagPipeline(userID, since))
	if err != nil {
		return nil, fmt.Errorf("aggregate recent tags: %w", err)
	}

	var rows []tagCount
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("decode recent tags: %w", err)
	}

	return mergeTagCounts(rows), nil
}

func mergeTagCounts(rows []tagCount) map[string]int {
	counts := make(map[string]int, len(rows))
	for _, row := range rows {
		tag := profile.NormalizeTag(row.Tag)
		if tag == "" || row.Count <= 0 {
			continue
		}
		counts[tag] += row.Count
	}
	return counts
}

// IsLikedByUser reports, for each post id, whether the user liked it.
// Only liked ids appear in the result.
func (l *LikeLog) IsLikedByUser(ctx context.Context, userID string, postIDs []string) (liked map[string]bool, err error) {
	liked = make(map[string]bool, len(postIDs))
	if userID == "" || len(postIDs) == 0 {
		return liked, nil
	}

	start := time.Now()
	defer func() { metrics.RecordDBQuery("is_liked", l.coll.Name(), time.Since(start), err) }()

	filter := bson.D{
		{Key: "user_id", Value: userID},
		{Key: "post_id", Value: bson.D{{Key: "$in", Value: postIDs}}},
	}
	opts := options.Find().SetProjection(bson.D{{Key: "post_id", Value: 1}, {Key: "_id", Value: 0}})

	cursor, err := l.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find likes: %w", err)
	}

	var docs []likeDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode likes: %w", err)
	}
	for _, d := range docs {
		liked[d.PostID] = true
	}
	return liked, nil
}

// Record appends a like to the log. Repeated likes of the same post by the
// same user keep a single entry.
func (l *LikeLog) Record(ctx context.Context, userID, postID string, tags []string, at time.Time) (err error) {
	start := time.Now()
	defer func() { metrics.RecordDBQuery("record_like", l.coll.Name(), time.Since(start), err) }()

	filter := bson.D{{Key: "user_id", Value: userID}, {Key: "post_id", Value: postID}}
	update := bson.D{{Key: "$setOnInsert", Value: likeDocument{
		UserID:    userID,
		PostID:    postID,
		Tags:      profile.NormalizeTags(tags),
		CreatedAt: at,
	}}}

	if _, err = l.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("record like: %w", err)
	}
	return nil
}
