// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/songrec/internal/models"
)

// HealthLive handles liveness check requests (Kubernetes-style)
// Returns 200 OK if the process is alive, regardless of the model state.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, models.HealthResponse{
		Status:    "alive",
		Ready:     h.engine.Ready(),
		Version:   h.opts.Version,
		Uptime:    time.Since(h.startTime).Seconds(),
		Timestamp: time.Now(),
	}, time.Now(), false)
}

// HealthReady handles readiness check requests (Kubernetes-style)
// Returns 200 OK once a fit has been published, 503 before.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.engine.Ready() {
		respondError(w, http.StatusServiceUnavailable, CodeNotReady, "Engine has not been fitted yet", nil)
		return
	}

	respondSuccess(w, models.HealthResponse{
		Status:    "ready",
		Ready:     true,
		Version:   h.opts.Version,
		Uptime:    time.Since(h.startTime).Seconds(),
		Timestamp: time.Now(),
	}, time.Now(), false)
}
