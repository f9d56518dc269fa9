// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package metrics

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/tomtom215/songrec/internal/recommend"
)

var (
	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songrec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "songrec_api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "songrec_api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songrec_api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Fit Metrics
	FitDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "songrec_fit_duration_seconds",
			Help:    "Duration of scorer fits in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
		},
		[]string{"scorer"}, // popularity, collaborative, content, engine
	)

	FitErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songrec_fit_errors_total",
			Help: "Total number of failed scorer fits by error kind",
		},
		[]string{"scorer", "kind"},
	)

	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "songrec_model_version",
			Help: "Version of the published engine snapshot",
		},
	)

	LastFitSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "songrec_last_fit_success_timestamp",
			Help: "Unix timestamp of the last published fit",
		},
	)

	HeldOutRMSE = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "songrec_collaborative_heldout_rmse",
			Help: "RMSE of the collaborative model on the held-out partition",
		},
	)

	// Dataset Metrics
	DatasetRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "songrec_dataset_rows",
			Help: "Number of rows, users and songs in the loaded table",
		},
		[]string{"kind"}, // rows, users, songs
	)

	DatasetLoadDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "songrec_dataset_load_duration_seconds",
			Help:    "Duration of dataset loads in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 5, 10, 30, 60, 120},
		},
	)

	// Recommendation Metrics
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songrec_recommendations_served_total",
			Help: "Total number of recommendation lists served",
		},
		[]string{"strategy"}, // popular, collaborative, content
	)

	PredictionFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songrec_prediction_fallbacks_total",
			Help: "Total number of collaborative scores that fell back to a baseline",
		},
		[]string{"reason"}, // impossible, min_k
	)

	// Cache Metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "songrec_cache_hits_total",
			Help: "Total number of response cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "songrec_cache_misses_total",
			Help: "Total number of response cache misses",
		},
	)

	CacheEntries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "songrec_cache_entries",
			Help: "Current number of cached responses",
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "songrec_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songrec_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songrec_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Refit Metrics
	RefitRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "songrec_refit_requests_total",
			Help: "Total number of refit requests by outcome",
		},
		[]string{"result"}, // accepted, throttled, busy
	)

	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "songrec_build_info",
			Help: "Build information; the value is always 1",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordFit records the outcome of one scorer fit. The error label is the
// recommend.ErrorKind of err, or "canceled" and "timeout" for context errors.
func RecordFit(scorer string, duration time.Duration, err error) {
	FitDuration.WithLabelValues(scorer).Observe(duration.Seconds())
	if err != nil {
		FitErrors.WithLabelValues(scorer, errorKindLabel(err)).Inc()
	}
}

// RecordPublishedFit updates the snapshot gauges after a published fit.
func RecordPublishedFit(version int64, rows, users, songs int) {
	ModelVersion.Set(float64(version))
	LastFitSuccess.Set(float64(time.Now().Unix()))
	DatasetRows.WithLabelValues("rows").Set(float64(rows))
	DatasetRows.WithLabelValues("users").Set(float64(users))
	DatasetRows.WithLabelValues("songs").Set(float64(songs))
}

// RecordRecommendations counts one served list and its fallback entries.
func RecordRecommendations(strategy string, songs []recommend.ScoredSong) {
	RecommendationsServed.WithLabelValues(strategy).Inc()
	for _, s := range songs {
		if s.Fallback {
			PredictionFallbacks.WithLabelValues("min_k").Inc()
		}
	}
}

// RecordPrediction counts an impossible prediction.
func RecordPrediction(p recommend.Prediction) {
	if p.WasImpossible {
		PredictionFallbacks.WithLabelValues("impossible").Inc()
	}
}

// SetBuildInfo publishes the build labels.
func SetBuildInfo(version, commit, goVersion string) {
	BuildInfo.WithLabelValues(version, commit, goVersion).Set(1)
}

// StatusClass returns the status code as a label string.
func StatusClass(code int) string {
	return strconv.Itoa(code)
}

func errorKindLabel(err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	}
	return recommend.KindOf(err).String()
}
