// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/tomtom215/feedrank/internal/models"
	"github.com/tomtom215/feedrank/internal/recommend"
)

var _ FeedProvider = (*recommend.Assembler)(nil)

type fakeFeed struct {
	got  recommend.Request
	page *models.FeedPage
	err  error
}

func (f *fakeFeed) Feed(_ context.Context, req recommend.Request) (*models.FeedPage, error) {
	f.got = req
	return f.page, f.err
}

func TestDebugFeedNotMountedByDefault(t *testing.T) {
	if rec := serve(NewRouter(Options{}), http.MethodGet, "/debug/feed/u1"); rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDebugFeedRequestMapping(t *testing.T) {
	feed := &fakeFeed{page: &models.FeedPage{PostIDs: []string{"p1"}, Sort: models.SortRecent, Cached: true}}
	h := NewRouter(Options{Feed: feed})

	rec := serve(h, http.MethodGet, "/debug/feed/u1?limit=5&cursor=p9&sort=recent&tags=go,%20db,&exclude_author=a1&refresh=true")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	want := recommend.Request{
		UserID:          "u1",
		Limit:           5,
		Cursor:          "p9",
		Sort:            models.SortRecent,
		Tags:            []string{"go", "db"},
		ExcludeAuthorID: "a1",
		ForceRefresh:    true,
	}
	if fmt.Sprint(feed.got) != fmt.Sprint(want) {
		t.Errorf("request = %+v, want %+v", feed.got, want)
	}

	_, body := decode[FeedPreview](t, rec)
	if !body.Cached || body.FeedPage == nil || len(body.PostIDs) != 1 {
		t.Errorf("body = %+v", body)
	}

	serve(h, http.MethodGet, "/debug/feed/anonymous")
	if feed.got.UserID != "" {
		t.Errorf("anonymous UserID = %q", feed.got.UserID)
	}
}

func TestDebugFeedErrors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		err      error
		wantCode int
	}{
		{"bad limit", "/debug/feed/u1?limit=x", nil, http.StatusBadRequest},
		{"bad refresh", "/debug/feed/u1?refresh=maybe", nil, http.StatusBadRequest},
		{"invalid request", "/debug/feed/u1", fmt.Errorf("sort: %w", recommend.ErrInvalidRequest), http.StatusBadRequest},
		{"unknown cursor", "/debug/feed/u1?cursor=gone", recommend.ErrCursorNotFound, http.StatusNotFound},
		{"store down", "/debug/feed/u1", fmt.Errorf("fetch: %w", recommend.ErrUpstreamUnavailable), http.StatusServiceUnavailable},
		{"unexpected", "/debug/feed/u1", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewRouter(Options{Feed: &fakeFeed{err: tt.err, page: &models.FeedPage{}}})
			rec := serve(h, http.MethodGet, tt.path)
			if rec.Code != tt.wantCode {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			resp, _ := decode[any](t, rec)
			if resp.Success || resp.Error == nil {
				t.Errorf("body = %+v", resp)
			}
		})
	}
}
