// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/tomtom215/feedrank/internal/cache"
	"github.com/tomtom215/feedrank/internal/logging"
	"github.com/tomtom215/feedrank/internal/metrics"
	"github.com/tomtom215/feedrank/internal/models"
	"github.com/tomtom215/feedrank/internal/profile"
	"github.com/tomtom215/feedrank/internal/recommend/reranking"
	"github.com/tomtom215/feedrank/internal/recommend/scoring"
)

// Collaborator names used in logs and metrics.
const (
	collaboratorContent  = "content"
	collaboratorProfiles = "profiles"
	collaboratorLikes    = "likes"
)

// Deps are the collaborators of an Assembler. Cache may be nil to disable caching.
type Deps struct {
	Content  ContentStore
	Likes    LikeLog
	Profiles ProfileStore
	Cache    *cache.FeedCache
}

// Assembler builds feed pages: it fetches candidates, scores them against the
// requester's tag profile, orders and diversifies them, enriches the page with
// like status and caches the result. It is safe for concurrent use.
type Assembler struct {
	cfg    *Config
	logger zerolog.Logger

	content  ContentStore
	likes    LikeLog
	profiles ProfileStore
	cache    *cache.FeedCache

	scorer      *scoring.Engine
	diversifier *reranking.Diversifier

	now func() time.Time
}

// NewAssembler creates an Assembler.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAssembler(cfg *Config, deps Deps, logger zerolog.Logger) (*Assembler, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if deps.Content == nil || deps.Likes == nil || deps.Profiles == nil {
		return nil, errors.New("content store, like log and profile store are required")
	}

	return &Assembler{
		cfg:         cfg.Clone(),
		logger:      logger.With().Str("component", "assembler").Logger(),
		content:     deps.Content,
		likes:       deps.Likes,
		profiles:    deps.Profiles,
		cache:       deps.Cache,
		scorer:      scoring.NewEngine(cfg.Weights, logger),
		diversifier: reranking.NewDiversifier(reranking.NewSource(cfg.Seed)),
		now:         time.Now,
	}, nil
}

// Config returns a copy of the assembler configuration.
func (a *Assembler) Config() *Config {
	return a.cfg.Clone()
}

// Feed returns one page of the requester's feed.
//
// Failures of the content or profile store are fatal and wrap
// ErrUpstreamUnavailable. Cache, recent-activity and like-status failures only
// degrade the page.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (a *Assembler) Feed(ctx context.Context, req Request) (*models.FeedPage, error) {
	start := time.Now()
	now := a.now()

	req, err := a.prepareRequest(req)
	if err != nil {
		metrics.RecordFeedRequest(metrics.SourceError, string(req.Sort), time.Since(start))
		return nil, err
	}

	ctx, logger := a.requestContext(ctx, req)
	logger.Debug().Msg("processing feed request")

	var key string
	if a.cache != nil {
		key = a.cache.Key(req.UserID, shapeOf(req))
		if req.ForceRefresh {
			if req.UserID != "" {
				a.cache.InvalidateUser(ctx, req.UserID)
			}
		} else if page, ok := a.cache.Get(ctx, key); ok {
			refreshAges(page, now)
			metrics.RecordFeedRequest(metrics.SourceCache, string(req.Sort), time.Since(start))
			logger.Debug().Int("returned", len(page.Items)).Msg("feed served from cache")
			return page, nil
		}
	}

	page, err := a.assemble(ctx, req, now, &logger)
	if err != nil {
		metrics.RecordFeedRequest(metrics.SourceError, string(req.Sort), time.Since(start))
		logger.Warn().Err(err).Msg("feed request failed")
		return nil, err
	}

	if a.cache != nil {
		a.cache.Set(ctx, key, page, 0)
	}

	metrics.RecordFeedRequest(metrics.SourceComputed, string(req.Sort), time.Since(start))
	logger.Debug().
		Int("candidates", page.TotalCandidates).
		Int("returned", len(page.Items)).
		Dur("latency", time.Since(start)).
		Msg("feed assembled")

	return page, nil
}

// prepareRequest validates the request and applies defaults.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (a *Assembler) prepareRequest(req Request) (Request, error) {
	if req.Sort == "" {
		req.Sort = models.SortRanked
	}
	switch req.Sort {
	case models.SortRanked, models.SortRecent, models.SortPopular:
	default:
		return req, fmt.Errorf("%w: unknown sort mode %q", ErrInvalidRequest, req.Sort)
	}

	if req.Limit < 0 {
		return req, fmt.Errorf("%w: negative limit %d", ErrInvalidRequest, req.Limit)
	}
	if req.Limit == 0 {
		req.Limit = a.cfg.DefaultLimit
	}
	if req.Limit > a.cfg.MaxLimit {
		req.Limit = a.cfg.MaxLimit
	}

	req.Tags = profile.NormalizeTags(req.Tags)
	return req, nil
}

// requestContext ensures the context carries a request id and returns a
// logger bound to it.
//
//nolint:gocritic // hugeParam: req passed by value for immutability
func (a *Assembler) requestContext(ctx context.Context, req Request) (context.Context, zerolog.Logger) {
	id := logging.RequestIDFromContext(ctx)
	if id == "" {
		id = logging.GenerateRequestID()
		ctx = logging.ContextWithRequestID(ctx, id)
	}

	user := req.UserID
	if user == "" {
		user = cache.AnonymousUser
	}
	logger := a.logger.With().
		Str("request_id", id).
		Str("user_id", user).
		Str("sort", string(req.Sort)).
		Int("limit", req.Limit).
		Logger()
	return ctx, logger
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func (a *Assembler) assemble(ctx context.Context, req Request, now time.Time, logger *zerolog.Logger) (*models.FeedPage, error) {
	tags, err := a.profileTags(ctx, req.UserID, now, logger)
	if err != nil {
		return nil, err
	}

	filter := models.CandidateFilter{
		Tags:            req.Tags,
		ExcludeAuthorID: req.ExcludeAuthorID,
	}
	if req.Cursor != "" {
		before, err := a.resolveCursor(ctx, req.Cursor)
		if err != nil {
			return nil, err
		}
		filter.Before = before
	}

	candidates, err := a.fetchCandidates(ctx, filter, req.ExcludeIDs, a.cfg.fetchLimit(req.Limit))
	if err != nil {
		return nil, err
	}

	scored := a.scorer.BatchScore(ctx, candidates, tags, now)

	// A page is the newest limit candidates, so the cursor's creation time
	// splits the pool exactly: nothing shown is older than the cursor post and
	// nothing newer is left unshown. Other modes reorder within the page.
	sortScored(scored, models.SortRecent)
	if len(scored) > req.Limit {
		scored = scored[:req.Limit]
	}
	var nextCursor string
	if len(scored) > 0 {
		nextCursor = scored[len(scored)-1].Candidate.ID
	}
	if req.Sort != models.SortRecent {
		sortScored(scored, req.Sort)
	}
	if req.Sort == models.SortRanked {
		scored = a.diversifier.Diversify(scored, a.cfg.DiversityFactor)
	}

	page := &models.FeedPage{
		PostIDs:         make([]string, len(scored)),
		Items:           make([]models.FeedItem, len(scored)),
		HasMore:         len(scored) == req.Limit,
		Sort:            req.Sort,
		GeneratedAt:     now,
		TotalCandidates: len(candidates),
	}
	for i := range scored {
		page.PostIDs[i] = scored[i].Candidate.ID
		page.Items[i] = models.FeedItem{
			Post:   scored[i].Candidate,
			Scores: scored[i].Scores,
			Age:    relativeAge(scored[i].Candidate.CreatedAt, now),
		}
	}
	page.NextCursor = nextCursor

	a.enrichLikes(ctx, req.UserID, page, logger)
	return page, nil
}

// profileTags loads the requester's ranked profile tags merged with their
// recent like activity. Anonymous requesters get none.
func (a *Assembler) profileTags(ctx context.Context, userID string, now time.Time, logger *zerolog.Logger) ([]profile.TagScore, error) {
	if userID == "" {
		return nil, nil
	}

	loadCtx, cancel := context.WithTimeout(ctx, a.cfg.FetchTimeout)
	p, err := a.profiles.LoadProfile(loadCtx, userID)
	cancel()
	if err != nil {
		metrics.RecordUpstreamError(collaboratorProfiles, true)
		return nil, fmt.Errorf("load profile: %w: %w", ErrUpstreamUnavailable, err)
	}

	tags := p.TopTags(a.cfg.TopTagLimit, true, now)

	if a.cfg.RecentWindowDays > 0 {
		recentCtx, cancel := context.WithTimeout(ctx, a.cfg.EnrichTimeout)
		recent, err := a.likes.CountRecentTagEngagements(recentCtx, userID, a.cfg.RecentWindowDays)
		cancel()
		if err != nil {
			metrics.RecordUpstreamError(collaboratorLikes, false)
			logger.Warn().Err(err).Msg("recent activity unavailable, using stored profile only")
		} else if len(recent) > 0 {
			tags = profile.MergeRecentActivity(tags, recent, a.cfg.RecentActivityMultiplier)
			if len(tags) > a.cfg.TopTagLimit {
				tags = tags[:a.cfg.TopTagLimit]
			}
		}
	}

	return tags, nil
}

// resolveCursor returns the creation time of the cursor post.
func (a *Assembler) resolveCursor(ctx context.Context, cursor string) (time.Time, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, a.cfg.FetchTimeout)
	defer cancel()

	post, err := a.content.FindByID(fetchCtx, cursor)
	if err != nil {
		metrics.RecordUpstreamError(collaboratorContent, true)
		return time.Time{}, fmt.Errorf("resolve cursor: %w: %w", ErrUpstreamUnavailable, err)
	}
	if post == nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrCursorNotFound, cursor)
	}
	if !post.HasTimestamp() {
		return time.Time{}, fmt.Errorf("%w: cursor post %s has no creation time", ErrInvalidRequest, cursor)
	}
	return post.CreatedAt, nil
}

func (a *Assembler) fetchCandidates(ctx context.Context, filter models.CandidateFilter, excludeIDs []string, limit int) ([]models.Candidate, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, a.cfg.FetchTimeout)
	defer cancel()

	candidates, err := a.content.FindCandidates(fetchCtx, filter, excludeIDs, limit)
	if err == nil {
		// A store that ignores its context must not slip a late result through.
		err = fetchCtx.Err()
	}
	if err != nil {
		metrics.RecordUpstreamError(collaboratorContent, true)
		return nil, fmt.Errorf("fetch candidates: %w: %w", ErrUpstreamUnavailable, err)
	}

	metrics.RecordCandidatesFetched(len(candidates))
	return candidates, nil
}

// enrichLikes sets IsLiked on every item. Failures leave every item unliked.
func (a *Assembler) enrichLikes(ctx context.Context, userID string, page *models.FeedPage, logger *zerolog.Logger) {
	if userID == "" || len(page.PostIDs) == 0 {
		return
	}

	enrichCtx, cancel := context.WithTimeout(ctx, a.cfg.EnrichTimeout)
	defer cancel()

	liked, err := a.likes.IsLikedByUser(enrichCtx, userID, page.PostIDs)
	if err != nil {
		metrics.RecordUpstreamError(collaboratorLikes, false)
		logger.Warn().Err(err).Int("posts", len(page.PostIDs)).Msg("like status unavailable, marking posts as not liked")
		return
	}
	for i := range page.Items {
		page.Items[i].IsLiked = liked[page.Items[i].Post.ID]
	}
}

// sortScored orders candidates for the sort mode. Every mode ends in a total
// order so equal scores never depend on store order.
func sortScored(scored []models.ScoredCandidate, mode models.SortMode) {
	byRecency := func(a, b *models.ScoredCandidate) bool {
		if !a.Candidate.CreatedAt.Equal(b.Candidate.CreatedAt) {
			return a.Candidate.CreatedAt.After(b.Candidate.CreatedAt)
		}
		return a.Candidate.ID < b.Candidate.ID
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := &scored[i], &scored[j]
		switch mode {
		case models.SortRecent:
		case models.SortPopular:
			if a.Scores.Popularity != b.Scores.Popularity {
				return a.Scores.Popularity > b.Scores.Popularity
			}
		default:
			if a.Scores.Composite != b.Scores.Composite {
				return a.Scores.Composite > b.Scores.Composite
			}
		}
		return byRecency(a, b)
	})
}

//nolint:gocritic // hugeParam: req passed by value for immutability
func shapeOf(req Request) cache.Shape {
	return cache.Shape{
		Limit:           req.Limit,
		Cursor:          req.Cursor,
		Tags:            req.Tags,
		Sort:            string(req.Sort),
		ExcludeAuthorID: req.ExcludeAuthorID,
		ExcludeIDs:      req.ExcludeIDs,
	}
}

func relativeAge(created, now time.Time) string {
	if created.IsZero() {
		return ""
	}
	return humanize.RelTime(created, now, "ago", "from now")
}

// refreshAges recomputes relative ages of a cached page against now.
func refreshAges(page *models.FeedPage, now time.Time) {
	for i := range page.Items {
		page.Items[i].Age = relativeAge(page.Items[i].Post.CreatedAt, now)
	}
}
