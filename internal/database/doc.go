// Feedrank - Social Feed Ranking and Personalization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/feedrank

/*
Package database provides the MongoDB stores behind feed assembly.

# Collections

posts holds the candidate posts:

	{_id, author_id, tags: [..], created_at, engagement: {likes, comments, shares, views}}

Post ids are hex ObjectIDs or plain strings. Engagement counters may be
missing; the scorer treats them as zero.

likes holds one document per (user, post):

	{user_id, post_id, tags: [..], created_at}

user_profiles holds one tag profile per user:

	{user_id, tag_preferences: {<tag>: {weight, last_updated_at}}, created_at, updated_at}

# Stores

  - ContentStore: candidate retrieval with tag, author, cursor and exclusion filters
  - LikeLog: recent per-tag like counts ($match, $unwind, $group) and like status lookup
  - ProfileStore: atomic $inc upserts of tag weights with eviction past profile.MaxEntries

# Usage

	db, err := database.New(ctx, &cfg.Mongo, logger)
	if err != nil {
	    return err
	}
	defer db.Close()

	assembler, err := recommend.NewAssembler(&cfg.Feed, recommend.Deps{
	    Content:  db.Content(),
	    Likes:    db.Likes(),
	    Profiles: db.Profiles(),
	    Cache:    feedCache,
	}, logger)
*/
package database
