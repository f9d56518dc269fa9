// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/songrec/internal/analytics"
	"github.com/tomtom215/songrec/internal/models"
	"github.com/tomtom215/songrec/internal/recommend"
)

type chartsRequest struct {
	Artists   int  `query:"artists" validate:"min=0,max=1000"`
	Bins      int  `query:"bins" validate:"min=0,max=200"`
	OmitPlays bool `query:"omit_plays"`
}

// Charts handles GET /api/v1/charts: the top artists by play count and the
// per-row play count distribution of the published table.
func (h *Handler) Charts(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req chartsRequest
	var apiErr *models.APIError
	if req.Artists, apiErr = getIntParam(r, "artists", 0); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	if req.Bins, apiErr = getIntParam(r, "bins", 0); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	if req.OmitPlays, apiErr = getBoolParam(r, "omit_plays", false); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	if apiErr = validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	table, ok := h.publishedTable(w, r)
	if !ok {
		return
	}

	key := h.cacheKey("charts", req)
	if cached, hit := h.cache.Get(key); hit {
		respondSuccess(w, cached, start, true)
		return
	}

	charts := analytics.BuildCharts(table, analytics.ChartOptions{
		TopArtists: req.Artists,
		Bins:       req.Bins,
		OmitPlays:  req.OmitPlays,
	})
	h.cache.Set(key, charts)
	respondSuccess(w, charts, start, false)
}

// Stats handles GET /api/v1/stats: summary counts of the published table.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	table, ok := h.publishedTable(w, r)
	if !ok {
		return
	}

	key := h.cacheKey("stats", nil)
	if cached, hit := h.cache.Get(key); hit {
		respondSuccess(w, cached, start, true)
		return
	}

	stats := analytics.ComputeStats(table)
	h.cache.Set(key, stats)
	respondSuccess(w, stats, start, false)
}

// publishedTable returns the table of the published fit or writes a 503.
func (h *Handler) publishedTable(w http.ResponseWriter, r *http.Request) (*recommend.InteractionTable, bool) {
	table := h.engine.Table()
	if table == nil {
		respondEngineError(w, r, recommend.NewError(recommend.KindNotFitted, "api.table", "", nil))
		return nil, false
	}
	return table, true
}
