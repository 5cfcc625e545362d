// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package models

import "time"

// FeedItem is one post on an assembled feed page.
type FeedItem struct {
	Post    Candidate `json:"post"`
	Scores  Scores    `json:"scores"`
	IsLiked bool      `json:"is_liked"`

	// Age is a human-readable relative creation time ("3 hours ago").
	// It is recomputed whenever a page is served, including from cache.
	Age string `json:"age"`
}

// FeedPage is the result of one feed request and the value stored in the feed cache.
type FeedPage struct {
	// PostIDs is the ranked order of the page, kept alongside Items so a
	// cached page can be inspected without decoding every item.
	PostIDs []string   `json:"post_ids"`
	Items   []FeedItem `json:"items"`

	// NextCursor is the id of the oldest item, used to request the next page.
	// It is the last item in recent order.
	NextCursor string `json:"next_cursor,omitempty"`

	// HasMore is true when the page is full.
	HasMore bool `json:"has_more"`

	Sort        SortMode  `json:"sort"`
	GeneratedAt time.Time `json:"generated_at"`

	// Cached is set when the page was served from the feed cache. Never persisted.
	Cached bool `json:"-"`

	TotalCandidates int `json:"total_candidates"`
}
