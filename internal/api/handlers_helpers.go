// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/songrec/internal/cache"
	"github.com/tomtom215/songrec/internal/logging"
	"github.com/tomtom215/songrec/internal/models"
	"github.com/tomtom215/songrec/internal/recommend"
	"github.com/tomtom215/songrec/internal/validation"
)

// sanitizeLogValue removes control characters from strings to prevent log injection attacks.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON response with proper headers
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Vary", "Accept-Encoding")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	if status == http.StatusOK {
		w.Header().Set("ETag", generateETag(data))
	}

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondSuccess wraps data in the success envelope. start is when the
// handler began computing the answer.
func respondSuccess(w http.ResponseWriter, data interface{}, start time.Time, cached bool) {
	queryTime := time.Since(start).Milliseconds()
	if cached {
		queryTime = 0
	}
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: models.StatusSuccess,
		Data:   data,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: queryTime,
			Cached:      cached,
		},
	})
}

// generateETag creates a simple ETag from data using FNV-1a hash
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return strconv.FormatUint(uint64(hash), 16)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	respondErrorCtx(context.Background(), w, status, code, message, err)
}

// respondErrorCtx sends an error response, logging err with the request id of ctx.
func respondErrorCtx(ctx context.Context, w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Ctx(ctx).Error().
			Str("code", sanitizeLogValue(code)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API Error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: models.StatusError,
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondValidationError sends a 400 with the validator's message and details.
func respondValidationError(w http.ResponseWriter, apiErr *models.APIError) {
	respondJSON(w, http.StatusBadRequest, &models.APIResponse{
		Status:   models.StatusError,
		Metadata: models.Metadata{Timestamp: time.Now()},
		Error:    apiErr,
	})
}

// validateRequest validates a struct using go-playground/validator.
// Returns nil if validation passes, or a models.APIError if validation fails.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// paramError reports a query parameter that could not be parsed.
func paramError(key, value, want string) *models.APIError {
	return &models.APIError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("%s must be %s", key, want),
		Details: map[string]interface{}{
			"field": key,
			"value": value,
		},
	}
}

// getIntParam extracts an integer query parameter with a default value.
// A present but malformed value is an error.
func getIntParam(r *http.Request, key string, defaultValue int) (int, *models.APIError) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return 0, paramError(key, value, "an integer")
	}
	return intValue, nil
}

// getColumnParam extracts an interaction column name such as artist_name.
// ok is false when the parameter is absent.
func getColumnParam(r *http.Request, key string) (col recommend.Column, ok bool, apiErr *models.APIError) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return 0, false, nil
	}

	col, ok = recommend.ParseColumn(value)
	if !ok {
		return 0, false, paramError(key, value, "one of user_id, song_id, artist_name, release")
	}
	return col, true, nil
}

// versionedParams scopes a cache key to one published fit.
type versionedParams struct {
	Version int64       `json:"version"`
	Params  interface{} `json:"params"`
}

// cacheKey builds the cache key for endpoint and params under the current
// fit version. An entry stored by a query that raced a refit is keyed by
// the old version and is never read again.
func (h *Handler) cacheKey(endpoint string, params interface{}) string {
	return cache.GenerateKey(endpoint, versionedParams{Version: h.engine.Version(), Params: params})
}

// getBoolParam extracts a boolean query parameter with a default value.
// A present but malformed value is an error.
func getBoolParam(r *http.Request, key string, defaultValue bool) (bool, *models.APIError) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue, nil
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, paramError(key, value, "true or false")
	}
	return b, nil
}
