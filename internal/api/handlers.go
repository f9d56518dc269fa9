// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package api

import (
	"context"
	"time"

	"github.com/tomtom215/songrec/internal/cache"
	"github.com/tomtom215/songrec/internal/logging"
	"github.com/tomtom215/songrec/internal/recommend"
	"github.com/tomtom215/songrec/internal/recommend/engine"
	"github.com/tomtom215/songrec/internal/supervisor/services"
)

// Recommender is the query surface of the recommendation engine.
// *engine.Engine satisfies it.
type Recommender interface {
	Ready() bool
	Status() engine.Status
	Table() *recommend.InteractionTable
	Popular(userID string) ([]recommend.PopularSong, error)
	Collaborative(ctx context.Context, userID string, topN int) ([]recommend.ScoredSong, error)
	Predict(userID, songID string) (recommend.Prediction, error)
	Similar(songID string, topN int) ([]recommend.SimilarSong, error)
	SongSimilarity(songA, songB string) (float64, error)
	PopularBy(ctx context.Context, userID string, userCol, itemCol recommend.Column) ([]recommend.PopularSong, error)
	Neighbors(userID string, topN int) ([]recommend.SimilarUser, error)
	Evaluation() (recommend.Evaluation, error)
	LastReport() *engine.FitReport
	Version() int64
}

// Refitter accepts refit requests. *services.FitService satisfies it.
type Refitter interface {
	Refit(ctx context.Context, req services.RefitRequest) (*engine.FitReport, error)
}

// HandlerOptions holds the tunables of Handler.
type HandlerOptions struct {
	// Version is reported by the health endpoints.
	Version string

	// MaxTopN bounds the n query parameter.
	MaxTopN int

	// DefaultTopN is used when n is omitted or zero.
	DefaultTopN int

	// QueryTimeout bounds a single recommendation query.
	QueryTimeout time.Duration

	// RefitTimeout bounds a refit call made with wait=true.
	RefitTimeout time.Duration

	// DatasetState reports the dataset circuit breaker state, if any.
	DatasetState func() string
}

// DefaultHandlerOptions returns the defaults matching recommend.DefaultConfig.
func DefaultHandlerOptions() HandlerOptions {
	cfg := recommend.DefaultConfig()
	return HandlerOptions{
		Version:      "dev",
		MaxTopN:      cfg.Limits.MaxTopN,
		DefaultTopN:  cfg.Collaborative.DefaultTopN,
		QueryTimeout: 30 * time.Second,
		RefitTimeout: cfg.Limits.FitTimeout,
	}
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across multiple files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_helpers.go: response and parameter helpers
//   - handlers_health.go: liveness and readiness checks
//   - handlers_charts.go: charts and dataset statistics
//   - handlers_recommend.go: recommendation, evaluation, status and refit endpoints
type Handler struct {
	engine    Recommender
	refitter  Refitter
	cache     cache.Cacher
	opts      HandlerOptions
	startTime time.Time
}

// NewHandler creates a new API handler.
//
// refitter may be nil, in which case the refit endpoint answers 503.
// A nil cache disables response caching.
//
//	handler := api.NewHandler(eng, fitService, cache.NewWithCapacity(5*time.Minute, 10000), opts)
//	router := api.NewRouter(handler, api.NewChiMiddleware(mwConfig))
//	srv.Handler = router.SetupChi()
func NewHandler(eng Recommender, refitter Refitter, c cache.Cacher, opts HandlerOptions) *Handler {
	if c == nil {
		c = cache.Nop{}
	}
	defaults := DefaultHandlerOptions()
	if opts.MaxTopN <= 0 {
		opts.MaxTopN = defaults.MaxTopN
	}
	if opts.DefaultTopN <= 0 {
		opts.DefaultTopN = defaults.DefaultTopN
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = defaults.QueryTimeout
	}
	if opts.RefitTimeout <= 0 {
		opts.RefitTimeout = defaults.RefitTimeout
	}
	if opts.Version == "" {
		opts.Version = defaults.Version
	}

	return &Handler{
		engine:    eng,
		refitter:  refitter,
		cache:     c,
		opts:      opts,
		startTime: time.Now(),
	}
}

// ClearCache invalidates all cached responses. The server calls it after
// every published fit.
func (h *Handler) ClearCache() {
	h.cache.Clear()
	logging.Debug().Msg("Response cache cleared")
}
