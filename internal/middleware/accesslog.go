// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/songrec/internal/logging"
)

// DefaultSlowRequestThreshold is the latency above which requests are logged at warn level.
const DefaultSlowRequestThreshold = 2 * time.Second

// AccessLog logs one line per request. Requests slower than slow are logged
// at warn level, server errors at error level and everything else at debug.
// Must run after RequestID so the line carries the request id.
func AccessLog(slow time.Duration) func(http.Handler) http.Handler {
	if slow <= 0 {
		slow = DefaultSlowRequestThreshold
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := &metricsResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapper, r)

			duration := time.Since(start)
			var event *zerolog.Event
			switch {
			case wrapper.statusCode >= http.StatusInternalServerError:
				event = logging.Ctx(r.Context()).Error()
			case duration > slow:
				event = logging.Ctx(r.Context()).Warn().Bool("slow", true)
			default:
				event = logging.Ctx(r.Context()).Debug()
			}
			event.
				Str("method", r.Method).
				Str("route", RoutePattern(r)).
				Int("status", wrapper.statusCode).
				Dur("duration", duration).
				Msg("http request")
		})
	}
}
