// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package cache

import (
	"container/list"
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/songrec/internal/metrics"
)

// DefaultCleanupInterval is how often expired entries are swept.
const DefaultCleanupInterval = time.Minute

type entry struct {
	key       string
	data      interface{}
	expiresAt time.Time
}

// Cache is a thread-safe in-memory cache with a per-entry TTL and an
// optional capacity. When full, the least recently used entry is evicted.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]*list.Element
	order    *list.List // front = most recently used
	ttl      time.Duration
	capacity int

	stats Stats

	stopOnce sync.Once
	stop     chan struct{}
}

// Stats tracks cache performance counters.
type Stats struct {
	Hits        int64     `json:"hits"`
	Misses      int64     `json:"misses"`
	Evictions   int64     `json:"evictions"`
	TotalKeys   int64     `json:"total_keys"`
	LastCleanup time.Time `json:"last_cleanup"`
}

// New creates a cache with the given default TTL and no capacity limit.
//
// A background goroutine sweeps expired entries every DefaultCleanupInterval
// until Close is called.
//
// Example:
//
//	c := cache.New(5 * time.Minute)
//	defer c.Close()
//	c.Set("popular:", songs)
//	if data, ok := c.Get("popular:"); ok {
//	    // Use cached data
//	}
func New(ttl time.Duration) *Cache {
	return NewWithCapacity(ttl, 0)
}

// NewWithCapacity creates a cache holding at most capacity entries.
// A capacity of zero or less means unbounded.
func NewWithCapacity(ttl time.Duration, capacity int) *Cache {
	c := &Cache{
		entries:  make(map[string]*list.Element),
		order:    list.New(),
		ttl:      ttl,
		capacity: capacity,
		stats:    Stats{LastCleanup: time.Now()},
		stop:     make(chan struct{}),
	}
	go c.cleanupLoop(DefaultCleanupInterval)
	return c
}

// Get retrieves a value. Expired entries are removed and reported as misses.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.stats.Misses++
		metrics.CacheMisses.Inc()
		return nil, false
	}

	e := elem.Value.(*entry)
	if time.Now().After(e.expiresAt) {
		c.removeElement(elem)
		c.stats.Misses++
		c.stats.Evictions++
		metrics.CacheMisses.Inc()
		return nil, false
	}

	c.order.MoveToFront(elem)
	c.stats.Hits++
	metrics.CacheHits.Inc()
	return e.data, true
}

// Set stores a value with the default TTL.
func (c *Cache) Set(key string, value interface{}) {
	c.SetWithTTL(key, value, c.ttl)
}

// SetWithTTL stores a value with a custom TTL, overwriting any existing entry.
func (c *Cache) SetWithTTL(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(ttl)
	if elem, ok := c.entries[key]; ok {
		e := elem.Value.(*entry)
		e.data = value
		e.expiresAt = expiresAt
		c.order.MoveToFront(elem)
		return
	}

	if c.capacity > 0 && c.order.Len() >= c.capacity {
		if oldest := c.order.Back(); oldest != nil {
			c.removeElement(oldest)
			c.stats.Evictions++
		}
	}

	c.entries[key] = c.order.PushFront(&entry{key: key, data: value, expiresAt: expiresAt})
	c.syncSize()
}

// Delete removes a specific entry. Deleting a missing key is a no-op.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.removeElement(elem)
		c.stats.Evictions++
	}
}

// Clear removes all entries, typically after the engine published a new fit.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Evictions += int64(c.order.Len())
	c.entries = make(map[string]*list.Element)
	c.order.Init()
	c.syncSize()
}

// Len returns the number of stored entries, including expired ones not yet swept.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// GetStats returns a copy of the current statistics.
func (c *Cache) GetStats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// HitRate returns the cache hit rate as a percentage
func (c *Cache) HitRate() float64 {
	stats := c.GetStats()
	total := stats.Hits + stats.Misses
	if total == 0 {
		return 0.0
	}
	return float64(stats.Hits) / float64(total) * 100.0
}

// Close stops the background cleanup goroutine. It is safe to call more than once.
func (c *Cache) Close() {
	c.stopOnce.Do(func() { close(c.stop) })
}

func (c *Cache) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stop:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

// cleanup removes all expired entries
func (c *Cache) cleanup() {
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()

	for elem := c.order.Back(); elem != nil; {
		prev := elem.Prev()
		if now.After(elem.Value.(*entry).expiresAt) {
			c.removeElement(elem)
			c.stats.Evictions++
		}
		elem = prev
	}
	c.stats.LastCleanup = now
	c.syncSize()
}

// removeElement must be called with mu held.
func (c *Cache) removeElement(elem *list.Element) {
	delete(c.entries, elem.Value.(*entry).key)
	c.order.Remove(elem)
	c.syncSize()
}

func (c *Cache) syncSize() {
	c.stats.TotalKeys = int64(c.order.Len())
	metrics.CacheEntries.Set(float64(c.stats.TotalKeys))
}

// GenerateKey creates a cache key from the method name and parameters
func GenerateKey(method string, params interface{}) string {
	data, err := json.Marshal(params)
	if err != nil {
		return fmt.Sprintf("%s:%v", method, params)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%x", method, hash[:16])
}
