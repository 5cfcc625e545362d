// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package database

import (
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tomtom215/feedrank/internal/models"
	"github.com/tomtom215/feedrank/internal/recommend"
)

var (
	_ recommend.ContentStore = (*ContentStore)(nil)
	_ recommend.LikeLog      = (*LikeLog)(nil)
	_ recommend.ProfileStore = (*ProfileStore)(nil)
)

func keys(d bson.D) []string {
	out := make([]string, len(d))
	for i, e := range d {
		out[i] = e.Key
	}
	return out
}

func TestCandidateQuery(t *testing.T) {
	before := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		filter   models.CandidateFilter
		exclude  []string
		wantKeys []string
	}{
		{"empty", models.CandidateFilter{}, nil, []string{}},
		{"exclusions", models.CandidateFilter{}, []string{"p1"}, []string{"_id"}},
		{"author", models.CandidateFilter{ExcludeAuthorID: "u1"}, nil, []string{"author_id"}},
		{"tags", models.CandidateFilter{Tags: []string{"go"}}, nil, []string{"tags"}},
		{"cursor", models.CandidateFilter{Before: before}, nil, []string{"created_at"}},
		{
			"all",
			models.CandidateFilter{Tags: []string{"go"}, ExcludeAuthorID: "u1", Before: before},
			[]string{"p1", "p2"},
			[]string{"_id", "author_id", "tags", "created_at"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := keys(candidateQuery(tt.filter, tt.exclude))
			if !reflect.DeepEqual(got, tt.wantKeys) {
				t.Errorf("keys = %v, want %v", got, tt.wantKeys)
			}
		})
	}
}

func TestCandidateQueryValues(t *testing.T) {
	before := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	oid := primitive.NewObjectID()

	q := candidateQuery(models.CandidateFilter{Before: before}, []string{oid.Hex(), "slug-post"})

	nin := q[0].Value.(bson.D)[0]
	if nin.Key != "$nin" {
		t.Fatalf("exclusion operator = %s, want $nin", nin.Key)
	}
	ids := nin.Value.(bson.A)
	if ids[0] != oid {
		t.Errorf("ids[0] = %v, want ObjectID %v", ids[0], oid)
	}
	if ids[1] != "slug-post" {
		t.Errorf("ids[1] = %v, want slug-post", ids[1])
	}

	lt := q[1].Value.(bson.D)[0]
	if lt.Key != "$lt" || lt.Value != before {
		t.Errorf("cursor bound = %v, want $lt %v", lt, before)
	}
}

func TestCandidateSort(t *testing.T) {
	if got, want := keys(candidateSort()), []string{"created_at", "_id"}; !reflect.DeepEqual(got, want) {
		t.Errorf("candidateSort() = %v, want %v", got, want)
	}
}

func TestIDRoundTrip(t *testing.T) {
	oid := primitive.NewObjectID()

	if got := idString(idValue(oid.Hex())); got != oid.Hex() {
		t.Errorf("ObjectID round trip = %q, want %q", got, oid.Hex())
	}
	if got := idString(idValue("post-42")); got != "post-42" {
		t.Errorf("string round trip = %q, want post-42", got)
	}
	if got := idString(int32(7)); got != "7" {
		t.Errorf("idString(int32) = %q, want 7", got)
	}
	if got := idString(nil); got != "" {
		t.Errorf("idString(nil) = %q, want empty", got)
	}
}

func TestPostDocumentDecode(t *testing.T) {
	oid := primitive.NewObjectID()
	created := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	raw, err := bson.Marshal(bson.D{
		{Key: "_id", Value: oid},
		{Key: "author_id", Value: "u1"},
		{Key: "tags", Value: bson.A{"go", "db"}},
		{Key: "created_at", Value: created},
		{Key: "engagement", Value: bson.D{{Key: "likes", Value: int32(5)}}},
	})
	if err != nil {
		t.Fatal(err)
	}

	var doc postDocument
	if err := bson.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	c := doc.candidate()

	if c.ID != oid.Hex() || c.AuthorID != "u1" {
		t.Errorf("candidate = %+v", c)
	}
	if !c.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", c.CreatedAt, created)
	}
	if c.Engagement.Likes == nil || *c.Engagement.Likes != 5 {
		t.Errorf("Likes = %v, want 5", c.Engagement.Likes)
	}
	if c.Engagement.Views != nil {
		t.Errorf("Views = %v, want nil for a missing counter", *c.Engagement.Views)
	}
}
