// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package cache

import "time"

// Cacher is the cache surface used by the API layer.
type Cacher interface {
	// Get retrieves a value from the cache.
	// Returns the value and true if found and not expired.
	Get(key string) (interface{}, bool)

	// Set stores a value in the cache with the default TTL.
	Set(key string, value interface{})

	// SetWithTTL stores a value with a custom TTL.
	SetWithTTL(key string, value interface{}, ttl time.Duration)

	// Delete removes a value from the cache.
	Delete(key string)

	// Clear removes all entries from the cache.
	Clear()

	// GetStats returns cache statistics.
	GetStats() Stats
}

// Nop is a Cacher that stores nothing. It is used when caching is disabled.
type Nop struct{}

func (Nop) Get(string) (interface{}, bool) { return nil, false }
func (Nop) Set(string, interface{}) {}
func (Nop) SetWithTTL(string, interface{}, time.Duration) {}
func (Nop) Delete(string) {}
func (Nop) Clear() {}
func (Nop) GetStats() Stats { return Stats{} }

var (
	_ Cacher = (*Cache)(nil)
	_ Cacher = Nop{}
)
