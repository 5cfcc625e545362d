// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package profile

import (
	"sort"
	"time"
)

// MaxEntries bounds the number of tags kept per user.
const MaxEntries = 100

// Recency boost steps applied by TopTags when recency bias is enabled.
const (
	boostWeek    = 5.0
	boostMonth   = 2.0
	boostQuarter = 1.0

	day = 24 * time.Hour
)

// Entry is a single tag affinity.
type Entry struct {
	Weight        float64   `json:"weight" bson:"weight"`
	LastUpdatedAt time.Time `json:"last_updated_at" bson:"last_updated_at"`
}

// TagScore is a tag with its effective ranking score.
type TagScore struct {
	Tag   string  `json:"tag"`
	Score float64 `json:"score"`
}

// Profile is a bounded per-user tag preference profile.
//
// A Profile value is not safe for concurrent mutation. Persistent profiles
// are mutated at the storage layer with atomic increments; the in-memory
// form is used for reads and for computing evictions.
type Profile struct {
	UserID  string
	Entries map[string]Entry

	// order records first insertion so TopTags ties stay stable.
	order []string
}

// New returns an empty profile for the user.
func New(userID string) *Profile {
	return &Profile{
		UserID:  userID,
		Entries: make(map[string]Entry),
	}
}

// FromEntries builds a profile from stored entries. Insertion order is
// reconstructed from LastUpdatedAt (oldest first, then tag name) because
// document maps carry no ordering.
func FromEntries(userID string, entries map[string]Entry) *Profile {
	p := New(userID)
	for tag, e := range entries {
		if tag == "" || e.Weight < 0 {
			continue
		}
		p.Entries[tag] = e
		p.order = append(p.order, tag)
	}
	sort.SliceStable(p.order, func(i, j int) bool {
		a, b := p.Entries[p.order[i]], p.Entries[p.order[j]]
		if !a.LastUpdatedAt.Equal(b.LastUpdatedAt) {
			return a.LastUpdatedAt.Before(b.LastUpdatedAt)
		}
		return p.order[i] < p.order[j]
	})
	return p
}

// Len returns the number of tracked tags.
func (p *Profile) Len() int {
	return len(p.Entries)
}

// IsEmpty reports whether the profile carries no preference data.
func (p *Profile) IsEmpty() bool {
	return p == nil || len(p.Entries) == 0
}

// Weight returns the raw weight of a tag, 0 if absent.
func (p *Profile) Weight(tag string) float64 {
	return p.Entries[NormalizeTag(tag)].Weight
}

// RecordEngagement adds boost to the weight of every tag and stamps it with now.
// Unknown tags are inserted with weight boost. A non-positive boost counts as 1
// so that weights never decrease. Empty input is a no-op.
func (p *Profile) RecordEngagement(tags []string, boost float64, now time.Time) {
	tags = NormalizeTags(tags)
	if len(tags) == 0 {
		return
	}
	if boost <= 0 {
		boost = 1
	}
	if p.Entries == nil {
		p.Entries = make(map[string]Entry)
	}

	for _, tag := range tags {
		e, ok := p.Entries[tag]
		if !ok {
			p.order = append(p.order, tag)
		}
		e.Weight += boost
		e.LastUpdatedAt = now
		p.Entries[tag] = e
	}

	for _, tag := range p.Evictions(MaxEntries) {
		delete(p.Entries, tag)
	}
	p.compactOrder()
}

// Evictions returns the tags that would be dropped to bring the profile down to
// maxEntries: the lowest weights first, and among equal weights the least
// recently updated.
func (p *Profile) Evictions(maxEntries int) []string {
	if maxEntries < 0 {
		maxEntries = 0
	}
	if len(p.Entries) <= maxEntries {
		return nil
	}

	ranked := make([]string, 0, len(p.Entries))
	for tag := range p.Entries {
		ranked = append(ranked, tag)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := p.Entries[ranked[i]], p.Entries[ranked[j]]
		if a.Weight != b.Weight {
			return a.Weight > b.Weight
		}
		if !a.LastUpdatedAt.Equal(b.LastUpdatedAt) {
			return a.LastUpdatedAt.After(b.LastUpdatedAt)
		}
		return ranked[i] < ranked[j]
	})
	return ranked[maxEntries:]
}

// TopTags returns at most limit tags ordered by effective score descending.
// The effective score is the weight plus, when recencyBias is set, a step boost
// based on how recently the tag was last engaged with. Ties keep insertion order.
func (p *Profile) TopTags(limit int, recencyBias bool, now time.Time) []TagScore {
	if p.IsEmpty() || limit <= 0 {
		return nil
	}

	scores := make([]TagScore, 0, len(p.Entries))
	for _, tag := range p.orderedTags() {
		e := p.Entries[tag]
		score := e.Weight
		if recencyBias {
			score += RecencyBoost(e.LastUpdatedAt, now)
		}
		scores = append(scores, TagScore{Tag: tag, Score: score})
	}

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].Score > scores[j].Score
	})

	if len(scores) > limit {
		scores = scores[:limit]
	}
	return scores
}

// RecencyBoost is the step boost for a tag last updated at t:
// +5 within 7 days, +2 within 30 days, +1 within 90 days, 0 otherwise.
func RecencyBoost(t, now time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	age := now.Sub(t)
	switch {
	case age <= 7*day:
		return boostWeek
	case age <= 30*day:
		return boostMonth
	case age <= 90*day:
		return boostQuarter
	default:
		return 0
	}
}

// MergeRecentActivity blends tag counts from a recent window into an already
// ranked tag list. Each count adds count*multiplier to the tag's score; tags
// seen only in the window are appended. The result is re-sorted by score and
// the profile is not modified.
func MergeRecentActivity(ranked []TagScore, recent map[string]int, multiplier float64) []TagScore {
	if len(recent) == 0 || multiplier == 0 {
		return ranked
	}

	merged := make([]TagScore, len(ranked), len(ranked)+len(recent))
	copy(merged, ranked)

	index := make(map[string]int, len(merged))
	for i, ts := range merged {
		index[ts.Tag] = i
	}

	// Iterate recent tags in a fixed order so appended tags are deterministic.
	extra := make([]string, 0, len(recent))
	for tag := range recent {
		extra = append(extra, tag)
	}
	sort.Strings(extra)

	for _, raw := range extra {
		count := recent[raw]
		tag := NormalizeTag(raw)
		if tag == "" || count <= 0 {
			continue
		}
		bonus := float64(count) * multiplier
		if i, ok := index[tag]; ok {
			merged[i].Score += bonus
			continue
		}
		index[tag] = len(merged)
		merged = append(merged, TagScore{Tag: tag, Score: bonus})
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})
	return merged
}

func (p *Profile) orderedTags() []string {
	if len(p.order) == len(p.Entries) {
		return p.order
	}
	p.compactOrder()
	return p.order
}

// compactOrder drops evicted tags from the order slice and appends any tag
// present in Entries but missing from it (entries set directly by callers).
func (p *Profile) compactOrder() {
	seen := make(map[string]struct{}, len(p.Entries))
	kept := p.order[:0]
	for _, tag := range p.order {
		if _, ok := p.Entries[tag]; !ok {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		kept = append(kept, tag)
	}

	var missing []string
	for tag := range p.Entries {
		if _, ok := seen[tag]; !ok {
			missing = append(missing, tag)
		}
	}
	sort.Strings(missing)
	p.order = append(kept, missing...)
}
