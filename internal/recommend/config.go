// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package recommend

import (
	"fmt"
	"time"
)

// Stopword set names accepted by ContentConfig.Stopwords.
const (
	StopwordsMusic   = "music"
	StopwordsEnglish = "english"
	StopwordsNone    = "none"
)

// Config contains all configuration for the recommendation engine.
type Config struct {
	// Popularity contains parameters for the popularity chart.
	Popularity PopularityConfig `json:"popularity"`

	// Collaborative contains parameters for user-based k-NN.
	Collaborative CollaborativeConfig `json:"collaborative"`

	// Content contains parameters for content similarity.
	Content ContentConfig `json:"content"`

	// Limits contains operational limits.
	Limits LimitsConfig `json:"limits"`

	// Seed is the random seed for the train/test split.
	// Default: 42.
	Seed int64 `json:"seed"`
}

// PopularityConfig contains parameters for the popularity scorer.
type PopularityConfig struct {
	// TopN is the chart length.
	// Default: 10.
	TopN int `json:"top_n"`
}

// CollaborativeConfig contains parameters for user-based k-NN with means.
type CollaborativeConfig struct {
	// K is the maximum number of neighbors used per prediction.
	// Default: 50.
	K int `json:"k"`

	// MinK is the minimum number of neighbors for a neighborhood estimate.
	// Below it the user mean is returned.
	// Default: 1.
	MinK int `json:"min_k"`

	// MinSupport is the minimum number of co-played songs for a non-zero similarity.
	// Default: 1.
	MinSupport int `json:"min_support"`

	// TestFraction is the share of triplets held out for evaluation, in [0, 1).
	// Default: 0.25.
	TestFraction float64 `json:"test_fraction"`

	// MaxCandidates caps how many unplayed songs are scored per recommendation,
	// taken in table order. Zero scores every unplayed song.
	// Default: 100.
	MaxCandidates int `json:"max_candidates"`

	// DefaultTopN is used when a caller passes a non-positive topN.
	// Default: 5.
	DefaultTopN int `json:"default_top_n"`

	// NumWorkers is the number of goroutines computing similarities.
	// Default: 4.
	NumWorkers int `json:"num_workers"`

	// KeepPredictions retains held-out predictions on the model for inspection.
	// Default: true.
	KeepPredictions bool `json:"keep_predictions"`
}

// ContentConfig contains parameters for content similarity.
type ContentConfig struct {
	// DefaultTopN is used when a caller passes a non-positive topN.
	// Default: 5.
	DefaultTopN int `json:"default_top_n"`

	// Stopwords selects the stopword set: "music", "english" or "none".
	// Default: "music".
	Stopwords string `json:"stopwords"`

	// MinTokenLength drops shorter tokens.
	// Default: 1.
	MinTokenLength int `json:"min_token_length"`

	// MatrixLimit is the largest catalog for which the full similarity matrix
	// is materialized at fit time. Larger catalogs compute rows on demand.
	// Default: 2000.
	MatrixLimit int `json:"matrix_limit"`

	// NumWorkers is the number of goroutines computing matrix rows.
	// Default: 4.
	NumWorkers int `json:"num_workers"`
}

// LimitsConfig contains operational limits.
type LimitsConfig struct {
	// MaxTopN is the largest topN a caller may request.
	// Default: 100.
	MaxTopN int `json:"max_top_n"`

	// FitTimeout bounds a full engine fit.
	// Default: 30m.
	FitTimeout time.Duration `json:"fit_timeout"`
}

// DefaultConfig returns a Config with the reference defaults.
func DefaultConfig() *Config {
	return &Config{
		Popularity: PopularityConfig{
			TopN: 10,
		},
		Collaborative: CollaborativeConfig{
			K:               50,
			MinK:            1,
			MinSupport:      1,
			TestFraction:    0.25,
			MaxCandidates:   100,
			DefaultTopN:     5,
			NumWorkers:      4,
			KeepPredictions: true,
		},
		Content: ContentConfig{
			DefaultTopN:    5,
			Stopwords:      StopwordsMusic,
			MinTokenLength: 1,
			MatrixLimit:    2000,
			NumWorkers:     4,
		},
		Limits: LimitsConfig{
			MaxTopN:    100,
			FitTimeout: 30 * time.Minute,
		},
		Seed: 42,
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Popularity.TopN < 1 {
		return fmt.Errorf("popularity.top_n must be positive, got %d", c.Popularity.TopN)
	}

	if c.Collaborative.K < 1 {
		return fmt.Errorf("collaborative.k must be positive, got %d", c.Collaborative.K)
	}
	if c.Collaborative.MinK < 1 || c.Collaborative.MinK > c.Collaborative.K {
		return fmt.Errorf("collaborative.min_k must be in [1, k], got %d", c.Collaborative.MinK)
	}
	if c.Collaborative.MinSupport < 1 {
		return fmt.Errorf("collaborative.min_support must be positive, got %d", c.Collaborative.MinSupport)
	}
	if c.Collaborative.TestFraction < 0 || c.Collaborative.TestFraction >= 1 {
		return fmt.Errorf("collaborative.test_fraction must be in [0, 1), got %f", c.Collaborative.TestFraction)
	}
	if c.Collaborative.MaxCandidates < 0 {
		return fmt.Errorf("collaborative.max_candidates must be non-negative, got %d", c.Collaborative.MaxCandidates)
	}
	if c.Collaborative.DefaultTopN < 1 {
		return fmt.Errorf("collaborative.default_top_n must be positive, got %d", c.Collaborative.DefaultTopN)
	}
	if c.Collaborative.NumWorkers < 1 {
		return fmt.Errorf("collaborative.num_workers must be positive, got %d", c.Collaborative.NumWorkers)
	}

	if c.Content.DefaultTopN < 1 {
		return fmt.Errorf("content.default_top_n must be positive, got %d", c.Content.DefaultTopN)
	}
	switch c.Content.Stopwords {
	case StopwordsMusic, StopwordsEnglish, StopwordsNone:
	default:
		return fmt.Errorf("content.stopwords must be one of music, english, none, got %q", c.Content.Stopwords)
	}
	if c.Content.MinTokenLength < 1 {
		return fmt.Errorf("content.min_token_length must be positive, got %d", c.Content.MinTokenLength)
	}
	if c.Content.MatrixLimit < 0 {
		return fmt.Errorf("content.matrix_limit must be non-negative, got %d", c.Content.MatrixLimit)
	}
	if c.Content.NumWorkers < 1 {
		return fmt.Errorf("content.num_workers must be positive, got %d", c.Content.NumWorkers)
	}

	if c.Limits.MaxTopN < c.Collaborative.DefaultTopN || c.Limits.MaxTopN < c.Content.DefaultTopN {
		return fmt.Errorf("limits.max_top_n must be >= the default top_n values, got %d", c.Limits.MaxTopN)
	}
	if c.Limits.FitTimeout <= 0 {
		return fmt.Errorf("limits.fit_timeout must be positive, got %v", c.Limits.FitTimeout)
	}

	return nil
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
