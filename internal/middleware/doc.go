// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

/*
Package middleware provides HTTP middleware shared by the Songrec API.

Key Components:

  - RequestID: X-Request-ID propagation with logging context integration
  - AccessLog: one zerolog line per request, escalated for slow requests and 5xx
  - PrometheusMetrics: request count, latency and in-flight instrumentation

All middleware uses the func(http.Handler) http.Handler shape so it can be
passed to chi's r.Use:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(2 * time.Second))
	r.Use(middleware.PrometheusMetrics)

PrometheusMetrics and AccessLog label requests with the chi route pattern
rather than the raw path, keeping metric cardinality independent of the
number of users and songs.
*/
package middleware
