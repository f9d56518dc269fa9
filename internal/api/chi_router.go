// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/songrec/internal/middleware"
)

// compressionLevel is the gzip level used for JSON responses.
const compressionLevel = 5

// Router wires the handlers into a chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware

	// SlowRequestThreshold escalates access log lines; zero uses the default.
	SlowRequestThreshold time.Duration
}

// NewRouter creates a router. A nil mw uses DefaultChiMiddlewareConfig.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	if mw == nil {
		mw = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: mw}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)                              // X-Request-ID header and logging context
	r.Use(router.chiMiddleware.RealIP())                     // Extract real IP from trusted proxies
	r.Use(middleware.AccessLog(router.SlowRequestThreshold)) // One log line per request
	r.Use(chimiddleware.Recoverer)                           // Recover from panics
	r.Use(router.chiMiddleware.CORS())                       // CORS must be global to handle OPTIONS preflight
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, CodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	// ========================
	// Health Endpoints
	// ========================
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// ========================
	// Dataset Analytics
	// ========================
	r.Group(func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chimiddleware.Compress(compressionLevel, "application/json"))

		r.Get("/api/v1/charts", router.handler.Charts)
		r.Get("/api/v1/stats", router.handler.Stats)
	})

	// ========================
	// Recommendation Endpoints
	// ========================
	r.Route("/api/v1/recommendations", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(APISecurityHeaders())
		r.Use(chimiddleware.Compress(compressionLevel, "application/json"))

		r.Get("/popular", router.handler.Popular)
		r.Get("/collaborative/{userID}", router.handler.Collaborative)
		r.Get("/predict/{userID}/{songID}", router.handler.Predict)
		r.Get("/content/{songID}", router.handler.Content)
		r.Get("/content/{songID}/similarity/{otherID}", router.handler.ContentPair)
		r.Get("/neighbors/{userID}", router.handler.Neighbors)
		r.Get("/evaluation", router.handler.Evaluation)
		r.Get("/status", router.handler.Status)

		// Refit is expensive; it has its own limiter in front of the fit service's token bucket.
		r.With(router.chiMiddleware.RateLimitRefit()).Post("/refit", router.handler.Refit)
	})

	// ========================
	// Observability
	// ========================
	r.Handle("/metrics", promhttp.Handler())

	return r
}
