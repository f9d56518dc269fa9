// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

/*
Package cache provides a thread-safe in-memory response cache with TTL
expiration and an optional entry limit.

The API layer caches rendered query results (charts, collaborative and
content recommendations) keyed by endpoint and parameters. Every published
fit changes the answers, so the server clears the cache from the fit
service's publish hook.

# Usage

	c := cache.NewWithCapacity(5*time.Minute, 10000)
	defer c.Close()

	key := cache.GenerateKey("content", map[string]any{"song": id, "n": n})
	if cached, ok := c.Get(key); ok {
	    return cached.([]recommend.SimilarSong)
	}
	songs, err := eng.Similar(id, n)
	if err == nil {
	    c.Set(key, songs)
	}

# Eviction

Entries expire after their TTL. Expiry is checked on Get and by a
background sweep every DefaultCleanupInterval. When a capacity is set and
the cache is full, Set evicts the least recently used entry.

# Metrics

Hits, misses and the current entry count are exported through
internal/metrics as songrec_cache_hits_total, songrec_cache_misses_total
and songrec_cache_entries.

When caching is disabled in configuration, the API uses Nop.
*/
package cache
