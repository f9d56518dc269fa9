// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package models

import (
	"time"
)

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// APIResponse represents a standardized API response wrapper used by all HTTP endpoints.
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"song_id": "SOAKIMP12A8C130995", "count": 5, "items": [...]},
//	  "metadata": {
//	    "timestamp": "2026-03-28T12:00:00Z",
//	    "query_time_ms": 3,
//	    "cached": false
//	  }
//	}
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "data": null,
//	  "metadata": {"timestamp": "2026-03-28T12:00:00Z", "query_time_ms": 0, "cached": false},
//	  "error": {"code": "NOT_FOUND", "message": "song \"SOX\" not found"}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata contains response metadata.
// QueryTimeMS is the time spent computing the answer; it is 0 for cache hits.
type Metadata struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms"`
	Cached      bool      `json:"cached"`
}

// APIError represents an error response with structured error details.
//
// Error codes:
//   - VALIDATION_ERROR: invalid path or query parameter (400)
//   - NOT_FOUND: unknown user or song id (404)
//   - NOT_FITTED: the engine or the requested scorer has no model yet (503)
//   - DATASET_UNAVAILABLE: the dataset circuit breaker is open (503)
//   - REFIT_THROTTLED: refit rate limit exceeded (429)
//   - REFIT_BUSY: a fit is already running (409)
//   - RATE_LIMIT_EXCEEDED: per-client request limit exceeded (429)
//   - INTERNAL_ERROR: anything else (500)
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// RecommendationList is the payload of the list-valued recommendation endpoints.
// Exactly one of UserID and SongID is set, naming the query subject.
type RecommendationList struct {
	Strategy string      `json:"strategy"`
	UserID   string      `json:"user_id,omitempty"`
	SongID   string      `json:"song_id,omitempty"`
	Count    int         `json:"count"`
	Items    interface{} `json:"items"`
}

// HealthResponse is returned by the health endpoints.
type HealthResponse struct {
	Status    string    `json:"status"`
	Ready     bool      `json:"ready"`
	Version   string    `json:"version,omitempty"`
	Uptime    float64   `json:"uptime_seconds"`
	Timestamp time.Time `json:"timestamp"`
}

// RefitResponse is returned by POST /recommendations/refit.
// Report is set only when the caller waited for the fit to finish.
type RefitResponse struct {
	Accepted bool        `json:"accepted"`
	Reload   bool        `json:"reload"`
	Waited   bool        `json:"waited"`
	Report   interface{} `json:"report,omitempty"`
}
