// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/feedrank/internal/logging"
	"github.com/tomtom215/feedrank/internal/models"
	"github.com/tomtom215/feedrank/internal/recommend"
)

// FeedProvider is implemented by *recommend.Assembler.
type FeedProvider interface {
	Feed(ctx context.Context, req recommend.Request) (*models.FeedPage, error)
}

// FeedPreview is the /debug/feed body.
type FeedPreview struct {
	*models.FeedPage
	Cached bool `json:"cached"`
}

// DebugFeed assembles a feed page for the user in the path. "anonymous"
// requests the anonymous feed.
//
// Query parameters: limit, cursor, sort (ranked|recent|popular), tags
// (comma separated), exclude_author, refresh (bool).
func (h *Handler) DebugFeed(w http.ResponseWriter, r *http.Request) {
	req, err := feedRequest(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	page, err := h.feed.Feed(r.Context(), req)
	if err != nil {
		status, code := feedErrorStatus(err)
		if status >= http.StatusInternalServerError {
			logging.Ctx(r.Context()).Error().Err(err).Str("user_id", req.UserID).Msg("Feed preview failed")
		}
		respondError(w, r, status, code, err.Error())
		return
	}
	respondJSON(w, r, http.StatusOK, FeedPreview{FeedPage: page, Cached: page.Cached})
}

func feedRequest(r *http.Request) (recommend.Request, error) {
	q := r.URL.Query()
	req := recommend.Request{
		UserID:          chi.URLParam(r, "userID"),
		Cursor:          q.Get("cursor"),
		Sort:            models.SortMode(q.Get("sort")),
		ExcludeAuthorID: q.Get("exclude_author"),
	}
	if req.UserID == "anonymous" {
		req.UserID = ""
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return req, errors.New("limit must be a non-negative integer")
		}
		req.Limit = n
	}
	if v := q.Get("tags"); v != "" {
		for _, tag := range strings.Split(v, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				req.Tags = append(req.Tags, tag)
			}
		}
	}
	if v := q.Get("refresh"); v != "" {
		refresh, err := strconv.ParseBool(v)
		if err != nil {
			return req, errors.New("refresh must be a boolean")
		}
		req.ForceRefresh = refresh
	}
	return req, nil
}

func feedErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, recommend.ErrInvalidRequest):
		return http.StatusBadRequest, "INVALID_REQUEST"
	case errors.Is(err, recommend.ErrCursorNotFound):
		return http.StatusNotFound, "CURSOR_NOT_FOUND"
	case errors.Is(err, recommend.ErrUpstreamUnavailable), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}
