// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared process-wide; it caches struct
// metadata and is safe for concurrent use. Failures are returned as *Error,
// which lists every failing field with a human-readable message.
//
// Besides the built-in tags, the validator registers:
//
//   - feedtag: the string is a tag that survives normalization (not empty
//     once trimmed, lowercased and stripped of leading '#' and '$')
//
// Example:
//
//	type likeEvent struct {
//	    UserID string   `validate:"required"`
//	    Tags   []string `validate:"dive,feedtag"`
//	    Boost  float64  `validate:"gte=0"`
//	}
//
//	if err := validation.ValidateStruct(&ev); err != nil {
//	    return fmt.Errorf("invalid like event: %w", err)
//	}
package validation
