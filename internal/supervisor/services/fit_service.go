// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/songrec/internal/metrics"
	"github.com/tomtom215/songrec/internal/recommend"
	"github.com/tomtom215/songrec/internal/recommend/engine"
)

// Refit errors.
var (
	// ErrRefitThrottled is returned when the refit token bucket is empty.
	ErrRefitThrottled = errors.New("refit request throttled")

	// ErrRefitBusy is returned when a load or fit is already running.
	ErrRefitBusy = errors.New("refit already in progress")

	// ErrServiceNotRunning is returned when Refit is called before Serve.
	ErrServiceNotRunning = errors.New("fit service not running")
)

// Engine is the part of the recommendation engine the fit service drives.
type Engine interface {
	Fit(ctx context.Context, table *recommend.InteractionTable) (*engine.FitReport, error)
}

// FitServiceConfig holds configuration for the fit service.
type FitServiceConfig struct {
	// FitOnStartup loads and fits when the service starts.
	FitOnStartup bool

	// RefitInterval triggers a periodic reload and refit. Zero disables it.
	RefitInterval time.Duration

	// LoadTimeout bounds one dataset load.
	LoadTimeout time.Duration

	// RefitMinInterval is the token refill period for Refit calls.
	RefitMinInterval time.Duration

	// RefitBurst is the number of Refit calls allowed back to back.
	RefitBurst int
}

// RefitRequest asks the service for a new fit.
type RefitRequest struct {
	// Reload reads the dataset again instead of refitting the last table.
	Reload bool

	// Wait blocks Refit until the fit finished and returns its report.
	Wait bool
}

type refitResult struct {
	report *engine.FitReport
	err    error
}

type refitCall struct {
	req  RefitRequest
	done chan refitResult
}

// FitService loads the dataset and fits the engine under supervision. All
// loads and fits run on the Serve goroutine, one at a time.
type FitService struct {
	engine Engine
	load   TableLoader
	config FitServiceConfig
	logger zerolog.Logger
	name   string

	limiter  *rate.Limiter
	requests chan refitCall
	running  atomic.Bool
	busy     atomic.Bool

	table atomic.Pointer[recommend.InteractionTable]

	hooksMu sync.RWMutex
	hooks   []func(*engine.FitReport)
}

// NewFitService creates a new fit service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewFitService(eng Engine, load TableLoader, cfg FitServiceConfig, logger zerolog.Logger) *FitService {
	if cfg.LoadTimeout <= 0 {
		cfg.LoadTimeout = 10 * time.Minute
	}
	if cfg.RefitMinInterval <= 0 {
		cfg.RefitMinInterval = time.Minute
	}
	if cfg.RefitBurst < 1 {
		cfg.RefitBurst = 1
	}

	return &FitService{
		engine:   eng,
		load:     load,
		config:   cfg,
		logger:   logger.With().Str("service", "fit").Logger(),
		name:     "fit-service",
		limiter:  rate.NewLimiter(rate.Every(cfg.RefitMinInterval), cfg.RefitBurst),
		requests: make(chan refitCall),
	}
}

// OnPublish registers fn to run after every fit that published a snapshot.
func (s *FitService) OnPublish(fn func(*engine.FitReport)) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Table returns the most recently loaded table, or nil.
func (s *FitService) Table() *recommend.InteractionTable {
	return s.table.Load()
}

// Running reports whether Serve is active.
func (s *FitService) Running() bool {
	return s.running.Load()
}

// Busy reports whether a load or fit is running.
func (s *FitService) Busy() bool {
	return s.busy.Load()
}

// Serve implements the suture.Service interface.
func (s *FitService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("fit_on_startup", s.config.FitOnStartup).
		Dur("refit_interval", s.config.RefitInterval).
		Msg("fit service starting")

	startup := s.config.FitOnStartup && s.table.Load() == nil
	if startup {
		// Refit sees the startup fit as busy from the moment Running is true
		s.busy.Store(true)
	}
	s.running.Store(true)
	defer s.running.Store(false)

	if startup {
		if _, err := s.cycle(ctx, true); err != nil && ctx.Err() == nil {
			s.logger.Warn().Err(err).Msg("initial fit failed")
		}
	}

	var tick <-chan time.Time
	if s.config.RefitInterval > 0 {
		ticker := time.NewTicker(s.config.RefitInterval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("fit service shutting down")
			return ctx.Err()

		case <-tick:
			s.logger.Debug().Msg("scheduled refit triggered")
			if _, err := s.cycle(ctx, true); err != nil && ctx.Err() == nil {
				s.logger.Warn().Err(err).Msg("scheduled refit failed")
			}

		case call := <-s.requests:
			report, err := s.cycle(ctx, call.req.Reload)
			if err != nil && ctx.Err() == nil {
				s.logger.Warn().Err(err).Bool("reload", call.req.Reload).Msg("requested refit failed")
			}
			if call.done != nil {
				call.done <- refitResult{report: report, err: err}
			}
		}
	}
}

// Refit hands a fit request to the running service. Requests are throttled
// by a token bucket and a request that arrives while a fit runs is rejected
// with ErrRefitBusy. Without Wait the returned report is nil.
func (s *FitService) Refit(ctx context.Context, req RefitRequest) (*engine.FitReport, error) {
	if !s.running.Load() {
		return nil, ErrServiceNotRunning
	}
	if s.busy.Load() {
		metrics.RefitRequests.WithLabelValues("busy").Inc()
		return nil, ErrRefitBusy
	}
	if !s.limiter.Allow() {
		metrics.RefitRequests.WithLabelValues("throttled").Inc()
		return nil, ErrRefitThrottled
	}

	call := refitCall{req: req}
	if req.Wait {
		call.done = make(chan refitResult, 1)
	}

	select {
	case s.requests <- call:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	metrics.RefitRequests.WithLabelValues("accepted").Inc()

	if call.done == nil {
		return nil, nil
	}
	select {
	case res := <-call.done:
		return res.report, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// cycle optionally reloads the table and fits the engine on it.
func (s *FitService) cycle(ctx context.Context, reload bool) (*engine.FitReport, error) {
	s.busy.Store(true)
	defer s.busy.Store(false)

	table := s.table.Load()
	if reload || table == nil {
		loaded, err := s.loadTable(ctx)
		if err != nil {
			return nil, err
		}
		table = loaded
	}

	s.logger.Info().Int("rows", table.Len()).Msg("starting engine fit")

	report, err := s.engine.Fit(ctx, table)
	if report == nil {
		return nil, err
	}
	s.record(report)

	event := s.logger.Info()
	if err != nil {
		event = s.logger.Warn().Err(err).Strs("failed_scorers", report.Failed())
	}
	event.
		Int64("version", report.Version).
		Bool("published", report.Published).
		Dur("duration", report.Duration).
		Msg("engine fit complete")

	if report.Published {
		s.hooksMu.RLock()
		hooks := s.hooks
		s.hooksMu.RUnlock()
		for _, fn := range hooks {
			fn(report)
		}
	}
	return report, err
}

func (s *FitService) loadTable(ctx context.Context) (*recommend.InteractionTable, error) {
	loadCtx, cancel := context.WithTimeout(ctx, s.config.LoadTimeout)
	defer cancel()

	start := time.Now()
	table, err := s.load(loadCtx)
	if err != nil {
		return nil, err
	}
	s.table.Store(table)

	s.logger.Info().
		Int("rows", table.Len()).
		Int("users", len(table.UserIDs())).
		Int("songs", len(table.SongIDs())).
		Dur("duration", time.Since(start)).
		Msg("dataset loaded")
	return table, nil
}

func (s *FitService) record(report *engine.FitReport) {
	for _, sc := range report.Scorers {
		metrics.RecordFit(sc.Name, sc.Duration, sc.Err)
	}
	metrics.FitDuration.WithLabelValues("engine").Observe(report.Duration.Seconds())
	if report.Published {
		metrics.RecordPublishedFit(report.Version, report.Rows, report.Users, report.Songs)
	}
}

// String returns the service name for logging.
func (s *FitService) String() string {
	return s.name
}
