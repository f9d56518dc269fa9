// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package recommend

import (
	"math"
	"math/bits"
)

// PlayRecord is one raw (user, song, play count) triplet of implicit feedback.
type PlayRecord struct {
	UserID    string `json:"user_id"`
	SongID    string `json:"song_id"`
	PlayCount uint64 `json:"play_count"`
}

// AddPlays returns total + n, saturating at math.MaxUint64 instead of
// wrapping.
func AddPlays(total, n uint64) uint64 {
	sum, carry := bits.Add64(total, n, 0)
	if carry != 0 {
		return math.MaxUint64
	}
	return sum
}

// TrackMetadata describes a song. SongID is the join key.
type TrackMetadata struct {
	SongID     string `json:"song_id"`
	ArtistName string `json:"artist_name"`
	Release    string `json:"release"`
}

// InteractionRow is one row of the joined table.
// HasMetadata is false when the play had no metadata match; ArtistName and
// Release are empty in that case and must be treated as null.
type InteractionRow struct {
	UserID      string `json:"user_id"`
	SongID      string `json:"song_id"`
	PlayCount   uint64 `json:"play_count"`
	ArtistName  string `json:"artist_name,omitempty"`
	Release     string `json:"release,omitempty"`
	HasMetadata bool   `json:"has_metadata"`
}

// Fingerprint returns the text used for content similarity.
// The second return value is false for rows without metadata.
func (r InteractionRow) Fingerprint() (string, bool) {
	if !r.HasMetadata {
		return "", false
	}
	return r.ArtistName + " " + r.Release, true
}

// Column names a field of InteractionRow for grouping operations.
type Column int

const (
	ColumnUserID Column = iota
	ColumnSongID
	ColumnArtistName
	ColumnRelease
)

// String returns the column name as it appears in the raw sources.
func (c Column) String() string {
	switch c {
	case ColumnUserID:
		return "user_id"
	case ColumnSongID:
		return "song_id"
	case ColumnArtistName:
		return "artist_name"
	case ColumnRelease:
		return "release"
	default:
		return "unknown"
	}
}

// Value extracts the column value from a row. Metadata columns report
// false when the row carries no metadata.
func (c Column) Value(r InteractionRow) (string, bool) {
	switch c {
	case ColumnUserID:
		return r.UserID, r.UserID != ""
	case ColumnSongID:
		return r.SongID, r.SongID != ""
	case ColumnArtistName:
		return r.ArtistName, r.HasMetadata
	case ColumnRelease:
		return r.Release, r.HasMetadata
	default:
		return "", false
	}
}

// ParseColumn maps a raw column name to a Column.
func ParseColumn(name string) (Column, bool) {
	switch name {
	case "user_id":
		return ColumnUserID, true
	case "song_id":
		return ColumnSongID, true
	case "artist_name":
		return ColumnArtistName, true
	case "release":
		return ColumnRelease, true
	default:
		return 0, false
	}
}

// PopularSong is one entry of a popularity chart.
// SongID carries the grouping key, which is the song id for the default chart.
type PopularSong struct {
	SongID     string `json:"song_id"`
	Score      uint64 `json:"score"`
	Rank       int    `json:"rank"`
	ArtistName string `json:"artist_name,omitempty"`
	Release    string `json:"release,omitempty"`
	UserID     string `json:"user_id,omitempty"`
}

// ScoredSong is a collaborative filtering recommendation.
type ScoredSong struct {
	SongID         string  `json:"song_id"`
	EstimatedScore float64 `json:"estimated_score"`

	// Fallback is set when the score came from a baseline instead of neighbors.
	Fallback bool `json:"fallback,omitempty"`
}

// SimilarSong is a content similarity recommendation.
type SimilarSong struct {
	SongID     string  `json:"song_id"`
	ArtistName string  `json:"artist_name"`
	Release    string  `json:"release"`
	Similarity float64 `json:"similarity"`
}

// SimilarUser is a nearest neighbor of a user in the collaborative model.
type SimilarUser struct {
	UserID     string  `json:"user_id"`
	Similarity float64 `json:"similarity"`

	// MeanRating is the neighbor's mean train rating.
	MeanRating float64 `json:"mean_rating"`
}

// Prediction is a collaborative point estimate for a (user, song) pair.
type Prediction struct {
	UserID   string  `json:"user_id"`
	SongID   string  `json:"song_id"`
	Estimate float64 `json:"estimate"`

	// ActualK is the number of neighbors that contributed to the estimate.
	ActualK int `json:"actual_k"`

	// WasImpossible reports that the user or song was unknown to the model
	// and Estimate is the global mean.
	WasImpossible bool   `json:"was_impossible"`
	Reason        string `json:"reason,omitempty"`
}

// HeldOutPrediction is a prediction on the test partition with its actual rating.
type HeldOutPrediction struct {
	Prediction
	Actual float64 `json:"actual"`
}

// Evaluation summarizes held-out accuracy of a trained collaborative model.
type Evaluation struct {
	Count       int                 `json:"count"`
	RMSE        float64             `json:"rmse"`
	MAE         float64             `json:"mae"`
	Impossible  int                 `json:"impossible"`
	Predictions []HeldOutPrediction `json:"predictions,omitempty"`
}
