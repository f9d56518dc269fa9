// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

/*
Package metrics provides Prometheus metrics for the recommendation service.

All collectors are registered on the default registry through promauto and
exposed by the API at /metrics in Prometheus text format:

	curl http://localhost:3857/metrics

# Available Metrics

API Metrics:
  - songrec_api_requests_total: Total API requests (counter)
    Labels: method, endpoint, status_code
  - songrec_api_request_duration_seconds: Request latency (histogram)
  - songrec_api_active_requests: In-flight requests (gauge)
  - songrec_api_rate_limit_hits_total: Rate limit rejections (counter)

Fit Metrics:
  - songrec_fit_duration_seconds: Duration per scorer (histogram)
    Labels: scorer (popularity, collaborative, content, engine)
  - songrec_fit_errors_total: Failed fits (counter)
    Labels: scorer, kind
  - songrec_model_version: Version of the published snapshot (gauge)
  - songrec_last_fit_success_timestamp: Unix time of the last publish (gauge)
  - songrec_collaborative_heldout_rmse: Held-out RMSE (gauge)

Dataset Metrics:
  - songrec_dataset_rows: Rows, users and songs in the table (gauge)
  - songrec_dataset_load_duration_seconds: Load latency (histogram)

Recommendation Metrics:
  - songrec_recommendations_served_total: Lists served (counter)
    Labels: strategy
  - songrec_prediction_fallbacks_total: Baseline estimates (counter)
    Labels: reason (impossible, min_k)

Cache, circuit breaker and refit metrics follow the same naming scheme.

# Usage

	start := time.Now()
	err := scorer.Fit(ctx, table)
	metrics.RecordFit("content", time.Since(start), err)

# Thread Safety

All collectors and helpers are safe for concurrent use.
*/
package metrics
