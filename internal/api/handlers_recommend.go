// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/songrec/internal/cache"
	"github.com/tomtom215/songrec/internal/logging"
	"github.com/tomtom215/songrec/internal/metrics"
	"github.com/tomtom215/songrec/internal/models"
	"github.com/tomtom215/songrec/internal/recommend"
	"github.com/tomtom215/songrec/internal/recommend/engine"
	"github.com/tomtom215/songrec/internal/supervisor/services"
)

// Recommendation strategies, used as payload and metric labels.
const (
	StrategyPopular       = "popular"
	StrategyCollaborative = "collaborative"
	StrategyContent       = "content"
	StrategyNeighbors     = "neighbors"
)

const (
	defaultEvaluationLimit = 20
	maxEvaluationLimit     = 1000
)

type popularRequest struct {
	UserID  string `query:"user_id" validate:"omitempty,identifier"`
	UserCol string `query:"user_col"`
	ItemCol string `query:"item_col"`
}

type userTopNRequest struct {
	UserID string `query:"user_id" validate:"identifier"`
	N      int    `query:"n" validate:"min=0"`
}

type songTopNRequest struct {
	SongID string `query:"song_id" validate:"identifier"`
	N      int    `query:"n" validate:"min=0"`
}

type songPairRequest struct {
	SongID  string `query:"song_id" validate:"identifier"`
	OtherID string `query:"other_id" validate:"identifier"`
}

type predictRequest struct {
	UserID string `query:"user_id" validate:"identifier"`
	SongID string `query:"song_id" validate:"identifier"`
}

type evaluationRequest struct {
	Limit int `query:"limit" validate:"min=0,max=1000"`
}

// validateTopN checks the shared n bound, which depends on configuration.
func (h *Handler) validateTopN(n int) *models.APIError {
	if n > h.opts.MaxTopN {
		return &models.APIError{
			Code:    CodeValidation,
			Message: "n must be at most " + strconv.Itoa(h.opts.MaxTopN),
			Details: map[string]interface{}{"field": "n", "tag": "max", "value": n},
		}
	}
	return nil
}

func (h *Handler) resolveTopN(n int) int {
	if n <= 0 {
		return h.opts.DefaultTopN
	}
	return n
}

// Popular handles GET /api/v1/recommendations/popular?user_id=&user_col=&item_col=
// Returns the popularity chart, labelled with user_id when given. With
// user_col or item_col the chart is grouped by item_col (default song_id)
// and scored by the number of interactions with a user_col value (default
// user_id) instead of summed plays.
func (h *Handler) Popular(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := popularRequest{UserID: r.URL.Query().Get("user_id")}
	userCol, byUser, apiErr := getColumnParam(r, "user_col")
	if apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	itemCol, byItem, apiErr := getColumnParam(r, "item_col")
	if apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	grouped := byUser || byItem
	if grouped {
		if !byUser {
			userCol = recommend.ColumnUserID
		}
		if !byItem {
			itemCol = recommend.ColumnSongID
		}
		req.UserCol, req.ItemCol = userCol.String(), itemCol.String()
	}

	key := h.cacheKey(StrategyPopular, req)
	if cached, hit := h.cache.Get(key); hit {
		metrics.RecordRecommendations(StrategyPopular, nil)
		respondSuccess(w, cached, start, true)
		return
	}

	var songs []recommend.PopularSong
	var err error
	if grouped {
		ctx, cancel := context.WithTimeout(r.Context(), h.opts.QueryTimeout)
		defer cancel()
		songs, err = h.engine.PopularBy(ctx, req.UserID, userCol, itemCol)
		if errors.Is(err, recommend.ErrEmptyInput) {
			// No row carries item_col: an empty chart.
			songs, err = []recommend.PopularSong{}, nil
		}
	} else {
		songs, err = h.engine.Popular(req.UserID)
	}
	if err != nil {
		respondEngineError(w, r, err)
		return
	}

	list := models.RecommendationList{
		Strategy: StrategyPopular,
		UserID:   req.UserID,
		Count:    len(songs),
		Items:    songs,
	}
	h.cache.Set(key, list)
	metrics.RecordRecommendations(StrategyPopular, nil)
	respondSuccess(w, list, start, false)
}

// Collaborative handles GET /api/v1/recommendations/collaborative/{userID}?n=
// Returns up to n songs the user has not played, ranked by k-NN estimate.
// Unknown users receive baseline estimates flagged as fallback.
func (h *Handler) Collaborative(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := userTopNRequest{UserID: chi.URLParam(r, "userID")}
	var apiErr *models.APIError
	if req.N, apiErr = getIntParam(r, "n", 0); apiErr == nil {
		if apiErr = validateRequest(&req); apiErr == nil {
			apiErr = h.validateTopN(req.N)
		}
	}
	if apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	req.N = h.resolveTopN(req.N)

	key := h.cacheKey(StrategyCollaborative, req)
	if cached, hit := h.cache.Get(key); hit {
		if list, ok := cached.(models.RecommendationList); ok {
			songs, _ := list.Items.([]recommend.ScoredSong)
			metrics.RecordRecommendations(StrategyCollaborative, songs)
		}
		respondSuccess(w, cached, start, true)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.opts.QueryTimeout)
	defer cancel()

	songs, err := h.engine.Collaborative(ctx, req.UserID, req.N)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	if songs == nil {
		songs = []recommend.ScoredSong{}
	}

	list := models.RecommendationList{
		Strategy: StrategyCollaborative,
		UserID:   req.UserID,
		Count:    len(songs),
		Items:    songs,
	}
	h.cache.Set(key, list)
	metrics.RecordRecommendations(StrategyCollaborative, songs)
	respondSuccess(w, list, start, false)
}

// Predict handles GET /api/v1/recommendations/predict/{userID}/{songID}
// An unknown user or song is not an error: the global-mean estimate is
// returned with was_impossible set and the reason.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := predictRequest{
		UserID: chi.URLParam(r, "userID"),
		SongID: chi.URLParam(r, "songID"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	pred, err := h.engine.Predict(req.UserID, req.SongID)
	if err != nil && !errors.Is(err, recommend.ErrPrediction) {
		respondEngineError(w, r, err)
		return
	}

	metrics.RecordPrediction(pred)
	respondSuccess(w, pred, start, false)
}

// Content handles GET /api/v1/recommendations/content/{songID}?n=
// Returns up to n songs with the most similar artist and release text.
func (h *Handler) Content(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := songTopNRequest{SongID: chi.URLParam(r, "songID")}
	var apiErr *models.APIError
	if req.N, apiErr = getIntParam(r, "n", 0); apiErr == nil {
		if apiErr = validateRequest(&req); apiErr == nil {
			apiErr = h.validateTopN(req.N)
		}
	}
	if apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	req.N = h.resolveTopN(req.N)

	key := h.cacheKey(StrategyContent, req)
	if cached, hit := h.cache.Get(key); hit {
		metrics.RecordRecommendations(StrategyContent, nil)
		respondSuccess(w, cached, start, true)
		return
	}

	songs, err := h.engine.Similar(req.SongID, req.N)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	if songs == nil {
		songs = []recommend.SimilarSong{}
	}

	list := models.RecommendationList{
		Strategy: StrategyContent,
		SongID:   req.SongID,
		Count:    len(songs),
		Items:    songs,
	}
	h.cache.Set(key, list)
	metrics.RecordRecommendations(StrategyContent, nil)
	respondSuccess(w, list, start, false)
}

// songPairResponse is the payload of the content pair endpoint.
type songPairResponse struct {
	SongID     string  `json:"song_id"`
	OtherID    string  `json:"other_id"`
	Similarity float64 `json:"similarity"`
}

// ContentPair handles GET /api/v1/recommendations/content/{songID}/similarity/{otherID}
// Returns the metadata text similarity of two songs.
func (h *Handler) ContentPair(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := songPairRequest{
		SongID:  chi.URLParam(r, "songID"),
		OtherID: chi.URLParam(r, "otherID"),
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	sim, err := h.engine.SongSimilarity(req.SongID, req.OtherID)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	respondSuccess(w, songPairResponse{SongID: req.SongID, OtherID: req.OtherID, Similarity: sim}, start, false)
}

// Neighbors handles GET /api/v1/recommendations/neighbors/{userID}?n=
// Returns up to n users most similar to userID, best first.
func (h *Handler) Neighbors(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	req := userTopNRequest{UserID: chi.URLParam(r, "userID")}
	var apiErr *models.APIError
	if req.N, apiErr = getIntParam(r, "n", 0); apiErr == nil {
		if apiErr = validateRequest(&req); apiErr == nil {
			apiErr = h.validateTopN(req.N)
		}
	}
	if apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	req.N = h.resolveTopN(req.N)

	key := h.cacheKey(StrategyNeighbors, req)
	if cached, hit := h.cache.Get(key); hit {
		respondSuccess(w, cached, start, true)
		return
	}

	users, err := h.engine.Neighbors(req.UserID, req.N)
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	if users == nil {
		users = []recommend.SimilarUser{}
	}

	list := models.RecommendationList{
		Strategy: StrategyNeighbors,
		UserID:   req.UserID,
		Count:    len(users),
		Items:    users,
	}
	h.cache.Set(key, list)
	respondSuccess(w, list, start, false)
}

// Evaluation handles GET /api/v1/recommendations/evaluation?limit=
// Returns held-out RMSE and MAE with up to limit individual predictions.
func (h *Handler) Evaluation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req evaluationRequest
	var apiErr *models.APIError
	if req.Limit, apiErr = getIntParam(r, "limit", defaultEvaluationLimit); apiErr == nil {
		apiErr = validateRequest(&req)
	}
	if apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	eval, err := h.engine.Evaluation()
	if err != nil {
		respondEngineError(w, r, err)
		return
	}
	if len(eval.Predictions) > req.Limit {
		eval.Predictions = eval.Predictions[:req.Limit]
	}
	respondSuccess(w, eval, start, false)
}

// statusResponse is the payload of GET /recommendations/status.
type statusResponse struct {
	Engine     engine.Status     `json:"engine"`
	LastFit    *fitReportPayload `json:"last_fit,omitempty"`
	Dataset    string            `json:"dataset_breaker,omitempty"`
	CacheStats cache.Stats       `json:"cache"`
}

// fitReportPayload renders a FitReport with string errors.
type fitReportPayload struct {
	Version    int64                 `json:"version"`
	Rows       int                   `json:"rows"`
	Users      int                   `json:"users"`
	Songs      int                   `json:"songs"`
	StartedAt  time.Time             `json:"started_at"`
	DurationMS int64                 `json:"duration_ms"`
	Published  bool                  `json:"published"`
	Scorers    []scorerReportPayload `json:"scorers"`
}

type scorerReportPayload struct {
	Name       string `json:"name"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

func newFitReportPayload(rep *engine.FitReport) *fitReportPayload {
	if rep == nil {
		return nil
	}
	p := &fitReportPayload{
		Version:    rep.Version,
		Rows:       rep.Rows,
		Users:      rep.Users,
		Songs:      rep.Songs,
		StartedAt:  rep.StartedAt,
		DurationMS: rep.Duration.Milliseconds(),
		Published:  rep.Published,
		Scorers:    make([]scorerReportPayload, len(rep.Scorers)),
	}
	for i, s := range rep.Scorers {
		p.Scorers[i] = scorerReportPayload{Name: s.Name, DurationMS: s.Duration.Milliseconds()}
		if s.Err != nil {
			p.Scorers[i].Error = s.Err.Error()
		}
	}
	return p
}

// Status handles GET /api/v1/recommendations/status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	resp := statusResponse{
		Engine:     h.engine.Status(),
		LastFit:    newFitReportPayload(h.engine.LastReport()),
		CacheStats: h.cache.GetStats(),
	}
	if h.opts.DatasetState != nil {
		resp.Dataset = h.opts.DatasetState()
	}
	respondSuccess(w, resp, start, false)
}

// Refit handles POST /api/v1/recommendations/refit?reload=&wait=
//
// reload=true reads the dataset again before fitting. wait=true blocks until
// the fit finishes and returns its report; otherwise the request is
// acknowledged with 202 once the fit service has accepted it.
func (h *Handler) Refit(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	reload, apiErr := getBoolParam(r, "reload", false)
	if apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}
	wait, apiErr := getBoolParam(r, "wait", false)
	if apiErr != nil {
		respondValidationError(w, apiErr)
		return
	}

	if h.refitter == nil {
		respondEngineError(w, r, ErrRefitUnavailable)
		return
	}

	ctx := r.Context()
	if wait {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opts.RefitTimeout)
		defer cancel()
	}

	report, err := h.refitter.Refit(ctx, services.RefitRequest{Reload: reload, Wait: wait})
	if err != nil && report == nil {
		respondEngineError(w, r, err)
		return
	}

	logging.Ctx(r.Context()).Info().
		Bool("reload", reload).
		Bool("wait", wait).
		Msg("Refit requested")

	resp := models.RefitResponse{Accepted: true, Reload: reload, Waited: wait}
	status := http.StatusAccepted
	if wait {
		resp.Report = newFitReportPayload(report)
		status = http.StatusOK
	}

	respondJSON(w, status, &models.APIResponse{
		Status: models.StatusSuccess,
		Data:   resp,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(start).Milliseconds(),
		},
	})
}
