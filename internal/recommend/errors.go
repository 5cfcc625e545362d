// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package recommend

import "errors"

var (
	// ErrUpstreamUnavailable is returned when a mandatory collaborator (the
	// content store or the profile store) fails or times out.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrCursorNotFound is returned when the pagination cursor names a post
	// that does not exist.
	ErrCursorNotFound = errors.New("cursor not found")

	// ErrInvalidRequest is returned for requests that cannot be served as asked.
	ErrInvalidRequest = errors.New("invalid request")
)
