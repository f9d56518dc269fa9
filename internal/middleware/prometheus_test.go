// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/songrec/internal/metrics"
)

func TestPrometheusMetrics(t *testing.T) {
	tests := []struct {
		name   string
		method string
		status int
	}{
		{"successful GET", http.MethodGet, http.StatusOK},
		{"not found", http.MethodGet, http.StatusNotFound},
		{"server error on POST", http.MethodPost, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Use(PrometheusMetrics)
			r.MethodFunc(tt.method, "/api/v1/songs/{songID}", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			counter := metrics.APIRequestsTotal.WithLabelValues(
				tt.method, "/api/v1/songs/{songID}", metrics.StatusClass(tt.status))
			before := testutil.ToFloat64(counter)

			req := httptest.NewRequest(tt.method, "/api/v1/songs/SOABC", nil)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("request counter delta = %v, want 1", got)
			}
		})
	}
}

func TestRoutePattern(t *testing.T) {
	var pattern string
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req)
			pattern = RoutePattern(req)
		})
	})
	r.Get("/users/{userID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/users/u1", nil))
	if pattern != "/users/{userID}" {
		t.Errorf("RoutePattern() = %q, want /users/{userID}", pattern)
	}

	bare := httptest.NewRequest(http.MethodGet, "/x", nil)
	if got := RoutePattern(bare); got != "unmatched" {
		t.Errorf("RoutePattern() without router = %q, want unmatched", got)
	}
}

func TestMetricsResponseWriter(t *testing.T) {
	t.Run("captures first status code", func(t *testing.T) {
		rec := httptest.NewRecorder()
		rw := &metricsResponseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

		rw.WriteHeader(http.StatusTeapot)
		rw.WriteHeader(http.StatusInternalServerError)

		if rw.statusCode != http.StatusTeapot {
			t.Errorf("statusCode = %d, want %d", rw.statusCode, http.StatusTeapot)
		}
	})

	t.Run("defaults to 200 on write", func(t *testing.T) {
		rec := httptest.NewRecorder()
		rw := &metricsResponseWriter{ResponseWriter: rec, statusCode: http.StatusOK}

		if _, err := rw.Write([]byte("ok")); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		rw.WriteHeader(http.StatusBadRequest)

		if rw.statusCode != http.StatusOK {
			t.Errorf("statusCode = %d, want 200", rw.statusCode)
		}
	})

	t.Run("unwrap returns inner writer", func(t *testing.T) {
		rec := httptest.NewRecorder()
		rw := &metricsResponseWriter{ResponseWriter: rec}
		if rw.Unwrap() != rec {
			t.Error("Unwrap() did not return the wrapped writer")
		}
	})
}

func BenchmarkPrometheusMetrics(b *testing.B) {
	handler := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}
}
