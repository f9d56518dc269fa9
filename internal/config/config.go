// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package config

import (
	"time"

	"github.com/tomtom215/songrec/internal/recommend"
)

// Config holds all application configuration loaded from defaults, an optional
// YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in defaults for every setting
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any mapped setting
//
// Configuration Categories:
//
//  1. Data: Dataset file paths, load timeout and circuit breaker
//  2. Engine: Recommendation parameters and refit policy
//  3. Serving: HTTP server, response cache, rate limiting and CORS
//  4. Operations: Logging and supervisor restart policy
//
// Thread Safety:
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Dataset    DatasetConfig    `koanf:"dataset"`
	Recommend  RecommendConfig  `koanf:"recommend"`
	Cache      CacheConfig      `koanf:"cache"`
	Security   SecurityConfig   `koanf:"security"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	Timeout         time.Duration `koanf:"timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"` // "development", "staging", "production"
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// DatasetConfig locates the two source files and bounds how they are loaded.
//
// Environment Variables:
//   - PLAYS_PATH: Tab-separated user/song/play count triplets
//   - METADATA_PATH: "<SEP>"-separated track metadata
//   - DATASET_LOAD_TIMEOUT: Maximum duration of one load (default: 10m)
//   - DATASET_BREAKER_FAILURES: Consecutive failures that open the breaker (default: 3)
//   - DATASET_BREAKER_TIMEOUT: How long the breaker stays open (default: 1m)
type DatasetConfig struct {
	PlaysPath          string        `koanf:"plays_path"`
	MetadataPath       string        `koanf:"metadata_path"`
	LoadTimeout        time.Duration `koanf:"load_timeout"`
	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// RecommendConfig holds the engine parameters plus the refit policy of the
// fit service. EngineConfig converts it to the engine's own configuration.
type RecommendConfig struct {
	// FitOnStartup loads and fits as soon as the service starts.
	FitOnStartup bool `koanf:"fit_on_startup"`

	// RefitInterval triggers a periodic reload and refit. Zero disables it.
	RefitInterval time.Duration `koanf:"refit_interval"`

	// RefitMinInterval is the token refill period for admin refit requests.
	RefitMinInterval time.Duration `koanf:"refit_min_interval"`

	// RefitBurst is the number of refit requests allowed back to back.
	RefitBurst int `koanf:"refit_burst"`

	PopularTopN     int     `koanf:"popular_top_n"`
	K               int     `koanf:"k"`
	MinK            int     `koanf:"min_k"`
	MinSupport      int     `koanf:"min_support"`
	TestFraction    float64 `koanf:"test_fraction"`
	MaxCandidates   int     `koanf:"max_candidates"`
	DefaultTopN     int     `koanf:"default_top_n"`
	NumWorkers      int     `koanf:"num_workers"`
	KeepPredictions bool    `koanf:"keep_predictions"`
	Seed            int64   `koanf:"seed"`

	Stopwords      string `koanf:"stopwords"`
	MinTokenLength int    `koanf:"min_token_length"`
	MatrixLimit    int    `koanf:"matrix_limit"`

	MaxTopN    int           `koanf:"max_top_n"`
	FitTimeout time.Duration `koanf:"fit_timeout"`
}

// EngineConfig returns the engine configuration described by c.
func (c RecommendConfig) EngineConfig() *recommend.Config {
	return &recommend.Config{
		Popularity: recommend.PopularityConfig{
			TopN: c.PopularTopN,
		},
		Collaborative: recommend.CollaborativeConfig{
			K:               c.K,
			MinK:            c.MinK,
			MinSupport:      c.MinSupport,
			TestFraction:    c.TestFraction,
			MaxCandidates:   c.MaxCandidates,
			DefaultTopN:     c.DefaultTopN,
			NumWorkers:      c.NumWorkers,
			KeepPredictions: c.KeepPredictions,
		},
		Content: recommend.ContentConfig{
			DefaultTopN:    c.DefaultTopN,
			Stopwords:      c.Stopwords,
			MinTokenLength: c.MinTokenLength,
			MatrixLimit:    c.MatrixLimit,
			NumWorkers:     c.NumWorkers,
		},
		Limits: recommend.LimitsConfig{
			MaxTopN:    c.MaxTopN,
			FitTimeout: c.FitTimeout,
		},
		Seed: c.Seed,
	}
}

// CacheConfig holds response cache settings
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	TTL        time.Duration `koanf:"ttl"`
	MaxEntries int           `koanf:"max_entries"`
}

// SecurityConfig holds rate limiting and CORS settings
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
	TrustedProxies    []string      `koanf:"trusted_proxies"`
}

// SupervisorConfig holds the restart policy of the service tree
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// Load reads configuration using the layered Koanf loader.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
