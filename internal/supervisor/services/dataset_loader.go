// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/songrec/internal/metrics"
	"github.com/tomtom215/songrec/internal/recommend"
)

// ErrDatasetUnavailable is returned while the dataset breaker is open.
var ErrDatasetUnavailable = errors.New("dataset unavailable: circuit breaker open")

// TableLoader produces a joined interaction table.
type TableLoader func(ctx context.Context) (*recommend.InteractionTable, error)

// BreakerConfig configures the circuit breaker around dataset loads.
type BreakerConfig struct {
	// Name labels the breaker in metrics and logs.
	Name string

	// MaxFailures is the number of consecutive failed loads that opens the breaker.
	MaxFailures uint32

	// OpenTimeout is how long the breaker stays open before a trial load.
	OpenTimeout time.Duration
}

// BreakerLoader wraps a TableLoader with a circuit breaker. A broken source
// (missing files, malformed rows) then fails fast instead of re-reading the
// whole dataset on every refit request.
type BreakerLoader struct {
	load TableLoader
	cb   *gobreaker.CircuitBreaker[*recommend.InteractionTable]
	name string
}

// NewBreakerLoader creates a loader guarded by a circuit breaker.
func NewBreakerLoader(load TableLoader, cfg BreakerConfig) *BreakerLoader {
	if cfg.Name == "" {
		cfg.Name = "dataset"
	}
	if cfg.MaxFailures == 0 {
		cfg.MaxFailures = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = time.Minute
	}

	cb := gobreaker.NewCircuitBreaker[*recommend.InteractionTable](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1, // A single trial load in half-open state
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		// Cancelled or timed out loads say nothing about the source
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})
	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(stateToFloat(gobreaker.StateClosed))

	return &BreakerLoader{load: load, cb: cb, name: cfg.Name}
}

// Load runs the wrapped loader through the breaker.
func (b *BreakerLoader) Load(ctx context.Context) (*recommend.InteractionTable, error) {
	start := time.Now()
	table, err := b.cb.Execute(func() (*recommend.InteractionTable, error) {
		return b.load(ctx)
	})

	switch {
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "rejected").Inc()
		return nil, fmt.Errorf("%w: %w", ErrDatasetUnavailable, err)
	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(b.name, "failure").Inc()
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(b.name, "success").Inc()
	metrics.DatasetLoadDuration.Observe(time.Since(start).Seconds())
	return table, nil
}

// State returns the breaker state as "closed", "half-open" or "open".
func (b *BreakerLoader) State() string {
	return stateToString(b.cb.State())
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
