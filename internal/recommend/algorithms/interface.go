// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package algorithms

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// BaseAlgorithm provides fit state tracking for stateful scorers.
type BaseAlgorithm struct {
	name      string
	fitted    bool
	version   int
	lastFitAt time.Time
	mu        sync.RWMutex
}

// NewBaseAlgorithm creates a new base algorithm with the given name.
func NewBaseAlgorithm(name string) BaseAlgorithm {
	return BaseAlgorithm{
		name: name,
	}
}

// Name returns the scorer identifier.
func (b *BaseAlgorithm) Name() string {
	return b.name
}

// IsFitted returns whether the scorer has been fit.
func (b *BaseAlgorithm) IsFitted() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.fitted
}

// Version returns the number of successful fits.
func (b *BaseAlgorithm) Version() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// LastFitAt returns when the scorer was last fit.
func (b *BaseAlgorithm) LastFitAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastFitAt
}

// markFitted updates the fit state.
// Must be called while holding the fit lock.
func (b *BaseAlgorithm) markFitted() {
	b.fitted = true
	b.version++
	b.lastFitAt = time.Now()
}

// acquireFitLock acquires the exclusive fit lock.
func (b *BaseAlgorithm) acquireFitLock() {
	b.mu.Lock()
}

// releaseFitLock releases the exclusive fit lock.
func (b *BaseAlgorithm) releaseFitLock() {
	b.mu.Unlock()
}

// acquireQueryLock acquires the shared query lock.
func (b *BaseAlgorithm) acquireQueryLock() {
	b.mu.RLock()
}

// releaseQueryLock releases the shared query lock.
func (b *BaseAlgorithm) releaseQueryLock() {
	b.mu.RUnlock()
}

// sparseEntry is one non-zero dimension of a sparseVector.
type sparseEntry struct {
	idx int
	val float64
}

// sparseVector holds non-zero entries sorted by dimension index.
type sparseVector []sparseEntry

// squaredNorm returns the sum of squared values.
func (v sparseVector) squaredNorm() float64 {
	var sum float64
	for _, e := range v {
		sum += e.val * e.val
	}
	return sum
}

// cosineSimilarity computes cosine similarity between two sparse vectors
// given their squared norms.
func cosineSimilarity(a, b sparseVector, sqA, sqB float64) float64 {
	if len(a) == 0 || len(b) == 0 || sqA == 0 || sqB == 0 {
		return 0
	}

	var dot float64
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].idx == b[j].idx:
			dot += a[i].val * b[j].val
			i++
			j++
		case a[i].idx < b[j].idx:
			i++
		default:
			j++
		}
	}
	return cosineFromDot(dot, sqA, sqB)
}

// cosineFromDot normalizes a dot product. Taking the root of the product of
// squared norms keeps identical integer vectors at exactly 1.
func cosineFromDot(dot, sqA, sqB float64) float64 {
	if dot == 0 {
		return 0
	}
	sim := dot / math.Sqrt(sqA*sqB)
	if sim > 1 {
		return 1
	}
	return sim
}

// sortByScoreThenID orders n entries by score descending, then id ascending.
func sortByScoreThenID(n int, score func(i int) float64, id func(i int) string, swap func(i, j int)) {
	sort.Sort(rankSorter{n: n, score: score, id: id, swap: swap})
}

type rankSorter struct {
	n     int
	score func(i int) float64
	id    func(i int) string
	swap  func(i, j int)
}

func (r rankSorter) Len() int      { return r.n }
func (r rankSorter) Swap(i, j int) { r.swap(i, j) }
func (r rankSorter) Less(i, j int) bool {
	si, sj := r.score(i), r.score(j)
	if si != sj {
		return si > sj
	}
	return r.id(i) < r.id(j)
}

// resolveTopN returns topN, or fallback when topN is not positive.
func resolveTopN(topN, fallback int) int {
	if topN <= 0 {
		return fallback
	}
	return topN
}

// parallelChunks splits [0, n) into at most workers contiguous chunks and runs
// fn on each concurrently. fn must only write state owned by its chunk.
func parallelChunks(ctx context.Context, n, workers int, fn func(ctx context.Context, start, end int) error) error {
	if n == 0 {
		return ctx.Err()
	}
	if workers < 1 {
		workers = 1
	}
	chunkSize := (n + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < n; start += chunkSize {
		end := start + chunkSize
		if end > n {
			end = n
		}
		g.Go(func() error {
			return fn(gctx, start, end)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// Compile-time checks for the scorer state interface.
var (
	_ fitState = (*Popularity)(nil)
	_ fitState = (*ContentSimilarity)(nil)
)

// fitState is the fit tracking surface shared by stateful scorers.
type fitState interface {
	Name() string
	IsFitted() bool
	Version() int
	LastFitAt() time.Time
}
