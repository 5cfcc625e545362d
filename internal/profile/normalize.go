// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

package profile

import "strings"

// NormalizeTag lowercases and trims a tag and strips a leading '#'.
// Dots become underscores and leading '$' is dropped so the result can be
// used as a document field name. Returns "" for tags that normalize to nothing.
func NormalizeTag(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	tag = strings.TrimLeft(tag, "#$")
	tag = strings.ReplaceAll(tag, ".", "_")
	return strings.TrimSpace(tag)
}

// NormalizeTags normalizes and deduplicates tags, preserving first occurrence order.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, raw := range tags {
		tag := NormalizeTag(raw)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
