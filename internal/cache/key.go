// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package cache

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
)

const (
	// keyVersion is bumped whenever the cached page layout changes.
	keyVersion = "v1"

	keyNamespace = "feed"

	// AnonymousUser is the user segment used for requests without a user.
	AnonymousUser = "anon"
)

// Shape is the part of a feed request that determines its result.
type Shape struct {
	Limit           int      `json:"limit"`
	Cursor          string   `json:"cursor,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	Sort            string   `json:"sort"`
	ExcludeAuthorID string   `json:"exclude_author_id,omitempty"`
	ExcludeIDs      []string `json:"exclude_ids,omitempty"`
}

// canonical returns a copy with order-insensitive fields sorted.
func (s Shape) canonical() Shape {
	out := s
	if len(s.Tags) > 0 {
		out.Tags = append([]string(nil), s.Tags...)
		sort.Strings(out.Tags)
	}
	if len(s.ExcludeIDs) > 0 {
		out.ExcludeIDs = append([]string(nil), s.ExcludeIDs...)
		sort.Strings(out.ExcludeIDs)
	}
	return out
}

// Hash returns a compact, order-insensitive digest of the shape.
func (s Shape) Hash() string {
	data, err := json.Marshal(s.canonical())
	if err != nil {
		// Fallback to simple string form
		data = []byte(fmt.Sprintf("%+v", s.canonical()))
	}
	sum := sha256.Sum256(data)
	return fmt.Sprintf("%x", sum[:16])
}

// UserPrefix returns the key prefix shared by every cached page of the user.
func UserPrefix(userID string) string {
	return keyNamespace + ":" + keyVersion + ":" + userSegment(userID) + ":"
}

// Key builds the cache key of a feed page: feed:v1:<user>:<shape hash>.
func Key(userID string, shape Shape) string {
	return UserPrefix(userID) + shape.Hash()
}

// userSegment escapes separators so one user's prefix never covers another's.
func userSegment(userID string) string {
	if userID == "" {
		return AnonymousUser
	}
	r := strings.NewReplacer("%", "%25", ":", "%3A", "*", "%2A")
	return r.Replace(userID)
}
