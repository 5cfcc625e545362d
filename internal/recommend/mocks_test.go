// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package recommend

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/feedrank/internal/models"
	"github.com/tomtom215/feedrank/internal/profile"
)

var testNow = time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

// post builds a candidate created age before testNow.
func post(id, author string, age time.Duration, likes int64, tags ...string) models.Candidate {
	return models.Candidate{
		ID:        id,
		AuthorID:  author,
		Tags:      tags,
		CreatedAt: testNow.Add(-age),
		Engagement: models.Engagement{
			Likes:    models.Int64(likes),
			Comments: models.Int64(0),
			Shares:   models.Int64(0),
			Views:    models.Int64(0),
		},
	}
}

// mockContentStore serves candidates newest first, the way the Mongo store does.
type mockContentStore struct {
	mu         sync.Mutex
	posts      []models.Candidate
	err        error
	block      bool
	calls      int
	lastLimit  int
	lastFilter models.CandidateFilter
}

func (m *mockContentStore) FindCandidates(ctx context.Context, filter models.CandidateFilter, excludeIDs []string, limit int) ([]models.Candidate, error) {
	m.mu.Lock()
	m.calls++
	m.lastLimit = limit
	m.lastFilter = filter
	err, block := m.err, m.block
	posts := append([]models.Candidate(nil), m.posts...)
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}

	sort.SliceStable(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })

	var out []models.Candidate
	for _, p := range posts {
		if excluded[p.ID] || (filter.ExcludeAuthorID != "" && p.AuthorID == filter.ExcludeAuthorID) {
			continue
		}
		if !filter.Before.IsZero() && !p.CreatedAt.Before(filter.Before) {
			continue
		}
		if len(filter.Tags) > 0 && !hasAnyTag(p.Tags, filter.Tags) {
			continue
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockContentStore) FindByID(_ context.Context, id string) (*models.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.posts {
		if m.posts[i].ID == id {
			p := m.posts[i]
			return &p, nil
		}
	}
	return nil, nil
}

func (m *mockContentStore) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func hasAnyTag(tags, want []string) bool {
	for _, t := range tags {
		for _, w := range want {
			if t == w {
				return true
			}
		}
	}
	return false
}

// mockLikeLog returns canned answers.
type mockLikeLog struct {
	mu          sync.Mutex
	recent      map[string]int
	recentErr   error
	liked       map[string]bool
	likedErr    error
	likedCalls  int
	recentCalls int
}

func (m *mockLikeLog) CountRecentTagEngagements(context.Context, string, int) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recentCalls++
	return m.recent, m.recentErr
}

func (m *mockLikeLog) IsLikedByUser(_ context.Context, _ string, postIDs []string) (map[string]bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.likedCalls++
	if m.likedErr != nil {
		return nil, m.likedErr
	}
	out := make(map[string]bool, len(postIDs))
	for _, id := range postIDs {
		if m.liked[id] {
			out[id] = true
		}
	}
	return out, nil
}

// mockProfileStore keeps profiles in memory and applies upserts with RecordEngagement.
type mockProfileStore struct {
	mu        sync.Mutex
	profiles  map[string]*profile.Profile
	loadErr   error
	upsertErr error
	loads     int
	upserts   []upsertCall
}

type upsertCall struct {
	userID string
	tags   []string
	boost  float64
}

func newMockProfileStore() *mockProfileStore {
	return &mockProfileStore{profiles: make(map[string]*profile.Profile)}
}

func (m *mockProfileStore) UpsertTagWeights(_ context.Context, userID string, tags []string, boost float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts = append(m.upserts, upsertCall{userID: userID, tags: tags, boost: boost})
	if m.upsertErr != nil {
		return m.upsertErr
	}
	p, ok := m.profiles[userID]
	if !ok {
		p = profile.New(userID)
		m.profiles[userID] = p
	}
	p.RecordEngagement(tags, boost, testNow)
	return nil
}

func (m *mockProfileStore) LoadProfile(_ context.Context, userID string) (*profile.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loads++
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	p, ok := m.profiles[userID]
	if !ok {
		return profile.New(userID), nil
	}
	return profile.FromEntries(userID, p.Entries), nil
}

func (m *mockProfileStore) Loads() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loads
}
