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
)

func TestTagUpdate(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)
	u := tagUpdate([]string{"go", "rust"}, 2, now)

	if got := keys(u); !reflect.DeepEqual(got, []string{"$inc", "$set", "$setOnInsert"}) {
		t.Fatalf("operators = %v", got)
	}

	inc := u[0].Value.(bson.D)
	wantInc := bson.D{
		{Key: "tag_preferences.go.weight", Value: 2.0},
		{Key: "tag_preferences.rust.weight", Value: 2.0},
	}
	if !reflect.DeepEqual(inc, wantInc) {
		t.Errorf("$inc = %v, want %v", inc, wantInc)
	}

	set := u[1].Value.(bson.D)
	if got := keys(set); !reflect.DeepEqual(got, []string{
		"tag_preferences.go.last_updated_at",
		"tag_preferences.rust.last_updated_at",
		"updated_at",
	}) {
		t.Errorf("$set keys = %v", got)
	}
	for _, e := range set {
		if e.Value != now {
			t.Errorf("%s = %v, want %v", e.Key, e.Value, now)
		}
	}
}

func TestEvictionUpdate(t *testing.T) {
	u := evictionUpdate([]string{"old", "stale"})
	if u[0].Key != "$unset" {
		t.Fatalf("operator = %s, want $unset", u[0].Key)
	}
	if got := keys(u[0].Value.(bson.D)); !reflect.DeepEqual(got, []string{"tag_preferences.old", "tag_preferences.stale"}) {
		t.Errorf("$unset keys = %v", got)
	}
}

func TestRecentTagPipeline(t *testing.T) {
	since := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	p := recentTagPipeline("u1", since)

	var stages []string
	for _, stage := range p {
		stages = append(stages, stage[0].Key)
	}
	if !reflect.DeepEqual(stages, []string{"$match", "$unwind", "$group"}) {
		t.Errorf("stages = %v", stages)
	}

	match := p[0][0].Value.(bson.D)
	if match[0].Value != "u1" {
		t.Errorf("match user = %v, want u1", match[0].Value)
	}
	gte := match[1].Value.(bson.D)[0]
	if gte.Key != "$gte" || gte.Value != since {
		t.Errorf("window bound = %v, want $gte %v", gte, since)
	}
}

func TestMergeTagCounts(t *testing.T) {
	got := mergeTagCounts([]tagCount{
		{Tag: "Go", Count: 2},
		{Tag: "#go", Count: 1},
		{Tag: "rust", Count: 3},
		{Tag: "  ", Count: 4},
		{Tag: "zero", Count: 0},
	})
	want := map[string]int{"go": 3, "rust": 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("mergeTagCounts = %v, want %v", got, want)
	}
}
