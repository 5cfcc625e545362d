// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package recommend

import (
	"context"

	"github.com/tomtom215/feedrank/internal/models"
	"github.com/tomtom215/feedrank/internal/profile"
)

// ContentStore retrieves candidate posts.
type ContentStore interface {
	// FindCandidates returns up to limit posts matching filter, skipping excludeIDs.
	FindCandidates(ctx context.Context, filter models.CandidateFilter, excludeIDs []string, limit int) ([]models.Candidate, error)

	// FindByID returns the post with the given id, or nil, nil when it does not exist.
	FindByID(ctx context.Context, id string) (*models.Candidate, error)
}

// LikeLog answers questions about past likes.
type LikeLog interface {
	// CountRecentTagEngagements counts the user's likes per tag over the last windowDays days.
	CountRecentTagEngagements(ctx context.Context, userID string, windowDays int) (map[string]int, error)

	// IsLikedByUser reports, for each post id, whether the user liked it.
	// Ids missing from the result are treated as not liked.
	IsLikedByUser(ctx context.Context, userID string, postIDs []string) (map[string]bool, error)
}

// ProfileStore persists tag preference profiles.
type ProfileStore interface {
	// UpsertTagWeights atomically adds boost to each tag's weight, inserting
	// missing tags and creating the profile on first use.
	UpsertTagWeights(ctx context.Context, userID string, tags []string, boost float64) error

	// LoadProfile returns the user's profile. A user without one gets an
	// empty profile, not an error.
	LoadProfile(ctx context.Context, userID string) (*profile.Profile, error)
}

// Request is one feed page request.
type Request struct {
	// UserID is the requester. Empty means anonymous: no personalization
	// and no like status.
	UserID string

	// Limit is the page size. Zero means the configured default; values
	// above the configured maximum are capped.
	Limit int

	// Cursor is the NextCursor of the previous page: its oldest post.
	Cursor string

	// Tags restricts the feed to posts carrying at least one of these tags.
	Tags []string

	// Sort selects the ordering. Empty means ranked.
	Sort models.SortMode

	// ExcludeAuthorID drops posts by this author.
	ExcludeAuthorID string

	// ExcludeIDs drops these posts.
	ExcludeIDs []string

	// ForceRefresh bypasses and invalidates the requester's cached pages.
	ForceRefresh bool
}
