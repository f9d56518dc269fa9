// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/songrec/internal/recommend"
	"github.com/tomtom215/songrec/internal/recommend/engine"
	"github.com/tomtom215/songrec/internal/supervisor/services"
	"github.com/tomtom215/songrec/internal/validation"
)

// API error codes.
const (
	CodeValidation         = validation.ErrorCode
	CodeNotFound           = "NOT_FOUND"
	CodeNotFitted          = "NOT_FITTED"
	CodeDatasetUnavailable = "DATASET_UNAVAILABLE"
	CodeRefitThrottled     = "REFIT_THROTTLED"
	CodeRefitBusy          = "REFIT_BUSY"
	CodeRateLimited        = "RATE_LIMIT_EXCEEDED"
	CodeTimeout            = "TIMEOUT"
	CodeInternal           = "INTERNAL_ERROR"
	CodeNotReady           = "NOT_READY"
)

// ErrRefitUnavailable is returned when the server runs without a fit service.
var ErrRefitUnavailable = errors.New("refit is not available")

// classifyError maps an engine or service error to an HTTP status and API error code.
func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, recommend.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, recommend.ErrNotFitted):
		return http.StatusServiceUnavailable, CodeNotFitted
	case errors.Is(err, services.ErrDatasetUnavailable), errors.Is(err, recommend.ErrLoad):
		return http.StatusServiceUnavailable, CodeDatasetUnavailable
	case errors.Is(err, services.ErrRefitThrottled):
		return http.StatusTooManyRequests, CodeRefitThrottled
	case errors.Is(err, services.ErrRefitBusy), errors.Is(err, engine.ErrFitInProgress):
		return http.StatusConflict, CodeRefitBusy
	case errors.Is(err, services.ErrServiceNotRunning), errors.Is(err, ErrRefitUnavailable):
		return http.StatusServiceUnavailable, CodeNotReady
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, CodeTimeout
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// respondEngineError writes the error envelope for err. Server side
// failures are logged with their cause; client errors and a missing model
// are not.
func respondEngineError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classifyError(err)

	var logErr error
	if status >= http.StatusInternalServerError && code != CodeNotFitted && code != CodeNotReady {
		logErr = err
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "Internal server error"
	}
	respondErrorCtx(r.Context(), w, status, code, message, logErr)
}
