// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package models holds the data shapes shared between the ranking core,
// the storage adapters and the cache.
package models

import "time"

// Engagement carries the raw engagement counters of a post.
// A nil counter means the field was absent in the source record; nil and
// negative counters both contribute zero to scoring.
type Engagement struct {
	Likes    *int64 `json:"likes,omitempty" bson:"likes,omitempty"`
	Comments *int64 `json:"comments,omitempty" bson:"comments,omitempty"`
	Shares   *int64 `json:"shares,omitempty" bson:"shares,omitempty"`
	Views    *int64 `json:"views,omitempty" bson:"views,omitempty"`
}

// Counts returns the counters with absent or negative values replaced by zero.
func (e Engagement) Counts() (likes, comments, shares, views int64) {
	return count(e.Likes), count(e.Comments), count(e.Shares), count(e.Views)
}

// Missing lists the engagement fields that are absent or negative.
func (e Engagement) Missing() []string {
	var missing []string
	if !valid(e.Likes) {
		missing = append(missing, "likes")
	}
	if !valid(e.Comments) {
		missing = append(missing, "comments")
	}
	if !valid(e.Shares) {
		missing = append(missing, "shares")
	}
	if !valid(e.Views) {
		missing = append(missing, "views")
	}
	return missing
}

func count(v *int64) int64 {
	if !valid(v) {
		return 0
	}
	return *v
}

func valid(v *int64) bool {
	return v != nil && *v >= 0
}

// Int64 returns a pointer to v. Convenience for building Engagement literals.
func Int64(v int64) *int64 {
	return &v
}

// Candidate is a post considered for a feed page. It is built fresh for every
// ranking request and discarded once the page is assembled.
type Candidate struct {
	ID         string     `json:"id" bson:"-"`
	AuthorID   string     `json:"author_id" bson:"author_id"`
	Tags       []string   `json:"tags" bson:"tags"`
	CreatedAt  time.Time  `json:"created_at" bson:"created_at"`
	Engagement Engagement `json:"engagement" bson:"engagement"`

	// RankingScore is the denormalized score persisted on the post document.
	// It is advisory only and never used for live ranking.
	RankingScore *float64 `json:"ranking_score,omitempty" bson:"ranking_score,omitempty"`
}

// HasTimestamp reports whether the candidate carries a creation time.
func (c *Candidate) HasTimestamp() bool {
	return !c.CreatedAt.IsZero()
}

// SortMode selects how a feed page is ordered.
type SortMode string

const (
	// SortRanked orders by composite score with diversity reranking.
	SortRanked SortMode = "ranked"
	// SortRecent orders newest first.
	SortRecent SortMode = "recent"
	// SortPopular orders by popularity score.
	SortPopular SortMode = "popular"
)

// ParseSortMode maps a user-supplied value to a SortMode, defaulting to SortRanked.
func ParseSortMode(s string) SortMode {
	switch SortMode(s) {
	case SortRecent:
		return SortRecent
	case SortPopular:
		return SortPopular
	default:
		return SortRanked
	}
}

// CandidateFilter narrows candidate retrieval in the content store.
type CandidateFilter struct {
	// Tags restricts candidates to posts carrying at least one of the tags.
	Tags []string `json:"tags,omitempty"`

	// ExcludeAuthorID drops posts by this author (typically the requester).
	ExcludeAuthorID string `json:"exclude_author_id,omitempty"`

	// Before restricts candidates to posts created strictly before this time.
	// Zero means no bound. Set from the cursor post on subsequent pages.
	Before time.Time `json:"before,omitempty"`
}

// Scores is the per-candidate score breakdown. All sub-scores lie in [0, 1].
type Scores struct {
	Personalization float64 `json:"personalization"`
	Recency         float64 `json:"recency"`
	Popularity      float64 `json:"popularity"`
	Composite       float64 `json:"composite"`
}

// ScoredCandidate pairs a candidate with its computed scores.
type ScoredCandidate struct {
	Candidate Candidate `json:"candidate"`
	Scores    Scores    `json:"scores"`
}
