// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

// Package engine composes the three scorers into one fitted unit.
//
// An Engine owns an immutable snapshot of the interaction table and the
// scorers fitted on it. Fit builds a fresh snapshot and publishes it
// atomically, so queries never observe a half-fitted engine.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tomtom215/songrec/internal/recommend"
	"github.com/tomtom215/songrec/internal/recommend/algorithms"
)

// Scorer names used in reports and metric labels.
const (
	ScorerPopularity    = "popularity"
	ScorerCollaborative = "collaborative"
	ScorerContent       = "content"
)

// ErrFitInProgress is returned by Fit while another fit is running.
var ErrFitInProgress = errors.New("fit already in progress")

// Engine coordinates the popularity, collaborative and content scorers.
// It is safe for concurrent use.
type Engine struct {
	// Configuration
	config *recommend.Config

	// Fit state
	fitMu    sync.Mutex
	fitting  atomic.Bool
	snapshot atomic.Pointer[snapshot]
	version  atomic.Int64
	report   atomic.Pointer[FitReport]
}

// snapshot is the published post-fit state. It is never mutated.
type snapshot struct {
	table      *recommend.InteractionTable
	popularity *algorithms.Popularity
	knn        *algorithms.KNNModel
	content    *algorithms.ContentSimilarity

	// failures holds the fit error of each scorer that did not fit.
	failures map[string]error

	version  int64
	fittedAt time.Time
}

// New creates an engine. A nil config uses recommend.DefaultConfig.
func New(cfg *recommend.Config) (*Engine, error) {
	if cfg == nil {
		cfg = recommend.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Engine{config: cfg.Clone()}, nil
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() *recommend.Config {
	return e.config.Clone()
}

// Fit fits every scorer on table and publishes the result.
//
// Scorers fit independently: when one fails the others still become
// queryable and the failing scorer reports KindNotFitted wrapping its
// cause. The returned error joins all scorer failures. When every scorer
// fails, or ctx is cancelled, the previous snapshot stays in place.
func (e *Engine) Fit(ctx context.Context, table *recommend.InteractionTable) (*FitReport, error) {
	if !e.fitMu.TryLock() {
		return nil, ErrFitInProgress
	}
	defer e.fitMu.Unlock()

	e.fitting.Store(true)
	defer e.fitting.Store(false)

	ctx, cancel := context.WithTimeout(ctx, e.config.Limits.FitTimeout)
	defer cancel()

	start := time.Now()
	version := e.version.Load() + 1
	report := &FitReport{
		Version:   version,
		Rows:      table.Len(),
		Users:     len(table.UserIDs()),
		Songs:     len(table.SongIDs()),
		StartedAt: start,
		Scorers:   make([]ScorerReport, 3),
	}

	next := &snapshot{
		table:    table,
		failures: make(map[string]error),
		version:  version,
	}

	var wg sync.WaitGroup
	fits := []struct {
		name string
		run  func(context.Context) error
	}{
		{ScorerPopularity, func(ctx context.Context) error {
			next.popularity = algorithms.NewPopularity(algorithms.PopularityConfig{MaxItems: e.config.Popularity.TopN})
			return next.popularity.Fit(ctx, table)
		}},
		{ScorerCollaborative, func(ctx context.Context) error {
			model, err := e.trainCollaborative(ctx, table)
			next.knn = model
			return err
		}},
		{ScorerContent, func(ctx context.Context) error {
			next.content = algorithms.NewContentSimilarity(ContentConfig(e.config))
			return next.content.Fit(ctx, table)
		}},
	}

	for i, f := range fits {
		wg.Add(1)
		go func(idx int, name string, run func(context.Context) error) {
			defer wg.Done()
			scorerStart := time.Now()
			err := run(ctx)
			report.Scorers[idx] = ScorerReport{
				Name:     name,
				Duration: time.Since(scorerStart),
				Err:      err,
			}
		}(i, f.name, f.run)
	}
	wg.Wait()

	report.Duration = time.Since(start)

	if err := ctx.Err(); err != nil {
		report.Published = false
		e.report.Store(report)
		return report, fmt.Errorf("engine fit: %w", err)
	}

	var errs []error
	for _, s := range report.Scorers {
		if s.Err != nil {
			next.failures[s.Name] = s.Err
			errs = append(errs, fmt.Errorf("%s: %w", s.Name, s.Err))
		}
	}

	if len(errs) < len(report.Scorers) {
		next.fittedAt = time.Now()
		e.version.Store(version)
		e.snapshot.Store(next)
		report.Published = true
	}
	e.report.Store(report)

	return report, errors.Join(errs...)
}

// trainCollaborative prepares and trains the user k-NN model.
func (e *Engine) trainCollaborative(ctx context.Context, table *recommend.InteractionTable) (*algorithms.KNNModel, error) {
	knn := algorithms.NewUserKNN(KNNConfig(e.config))

	ts, err := knn.Prepare(table)
	if err != nil {
		return nil, err
	}
	return knn.Train(ctx, ts)
}

// KNNConfig maps cfg onto the k-NN estimator configuration.
func KNNConfig(cfg *recommend.Config) algorithms.KNNConfig {
	c := cfg.Collaborative
	return algorithms.KNNConfig{
		K:               c.K,
		MinK:            c.MinK,
		MinSupport:      c.MinSupport,
		TestFraction:    c.TestFraction,
		MaxCandidates:   c.MaxCandidates,
		DefaultTopN:     c.DefaultTopN,
		NumWorkers:      c.NumWorkers,
		Seed:            cfg.Seed,
		KeepPredictions: c.KeepPredictions,
	}
}

// ContentConfig maps cfg onto the content scorer configuration.
func ContentConfig(cfg *recommend.Config) algorithms.ContentConfig {
	c := cfg.Content
	return algorithms.ContentConfig{
		Stopwords:      c.Stopwords,
		MinTokenLength: c.MinTokenLength,
		MatrixLimit:    c.MatrixLimit,
		DefaultTopN:    c.DefaultTopN,
		NumWorkers:     c.NumWorkers,
	}
}

// clampTopN bounds a requested list length to the configured maximum.
func (e *Engine) clampTopN(topN int) int {
	if topN > e.config.Limits.MaxTopN {
		return e.config.Limits.MaxTopN
	}
	return topN
}

// current returns the published snapshot or a NotFitted error for op.
func (e *Engine) current(op, scorer, id string) (*snapshot, error) {
	s := e.snapshot.Load()
	if s == nil {
		return nil, recommend.NewError(recommend.KindNotFitted, op, id, nil)
	}
	if cause, failed := s.failures[scorer]; failed {
		return nil, recommend.NewError(recommend.KindNotFitted, op, id, cause)
	}
	return s, nil
}

// Table returns the table of the published snapshot, or nil before the
// first successful fit.
func (e *Engine) Table() *recommend.InteractionTable {
	if s := e.snapshot.Load(); s != nil {
		return s.table
	}
	return nil
}

// Popular returns the popularity chart labelled with userID.
func (e *Engine) Popular(userID string) ([]recommend.PopularSong, error) {
	s, err := e.current("engine.popular", ScorerPopularity, userID)
	if err != nil {
		return nil, err
	}
	return s.popularity.Recommend(userID)
}

// PopularBy builds a chart on the published table grouped by itemCol,
// scoring each group by the number of interactions with a userCol value.
func (e *Engine) PopularBy(ctx context.Context, userID string, userCol, itemCol recommend.Column) ([]recommend.PopularSong, error) {
	s, err := e.current("engine.popular_by", ScorerPopularity, userID)
	if err != nil {
		return nil, err
	}
	chart := algorithms.NewPopularity(algorithms.PopularityConfig{MaxItems: e.config.Popularity.TopN})
	if err := chart.Create(ctx, s.table, userCol, itemCol); err != nil {
		return nil, err
	}
	return chart.Recommend(userID)
}

// Collaborative returns up to topN unplayed songs for userID ranked by
// estimated score.
func (e *Engine) Collaborative(ctx context.Context, userID string, topN int) ([]recommend.ScoredSong, error) {
	s, err := e.current("engine.collaborative", ScorerCollaborative, userID)
	if err != nil {
		return nil, err
	}
	return s.knn.Recommend(ctx, userID, s.table, e.clampTopN(topN))
}

// Predict returns the collaborative estimate for one (user, song) pair.
// For unknown users or songs it returns the global-mean prediction together
// with a KindPrediction error.
func (e *Engine) Predict(userID, songID string) (recommend.Prediction, error) {
	s, err := e.current("engine.predict", ScorerCollaborative, userID)
	if err != nil {
		return recommend.Prediction{UserID: userID, SongID: songID}, err
	}
	return s.knn.Predict(userID, songID)
}

// Neighbors returns up to topN users most similar to userID.
func (e *Engine) Neighbors(userID string, topN int) ([]recommend.SimilarUser, error) {
	s, err := e.current("engine.neighbors", ScorerCollaborative, userID)
	if err != nil {
		return nil, err
	}
	return s.knn.Neighbors(userID, e.clampTopN(topN))
}

// Similar returns up to topN songs most similar to songID by metadata text.
func (e *Engine) Similar(songID string, topN int) ([]recommend.SimilarSong, error) {
	s, err := e.current("engine.similar", ScorerContent, songID)
	if err != nil {
		return nil, err
	}
	return s.content.Recommend(songID, e.clampTopN(topN))
}

// SongSimilarity returns the content similarity of two songs.
func (e *Engine) SongSimilarity(songA, songB string) (float64, error) {
	s, err := e.current("engine.song_similarity", ScorerContent, songA)
	if err != nil {
		return 0, err
	}
	return s.content.Similarity(songA, songB)
}

// Evaluation returns the held-out accuracy of the collaborative model.
func (e *Engine) Evaluation() (recommend.Evaluation, error) {
	s, err := e.current("engine.evaluation", ScorerCollaborative, "")
	if err != nil {
		return recommend.Evaluation{}, err
	}
	return s.knn.Evaluation(), nil
}

// Ready reports whether at least one scorer is queryable.
func (e *Engine) Ready() bool {
	return e.snapshot.Load() != nil
}

// Version returns the version of the published snapshot, or 0 before the
// first successful fit.
func (e *Engine) Version() int64 {
	if s := e.snapshot.Load(); s != nil {
		return s.version
	}
	return 0
}

// LastReport returns the report of the most recent fit attempt, or nil.
func (e *Engine) LastReport() *FitReport {
	return e.report.Load()
}
