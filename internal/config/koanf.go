// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/songrec/internal/recommend"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/songrec/config.yaml",
	"/etc/songrec/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	engine := recommend.DefaultConfig()

	return &Config{
		Server: ServerConfig{
			Port:            3857,
			Host:            "0.0.0.0",
			Timeout:         30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Dataset: DatasetConfig{
			PlaysPath:          "data/10000.txt",
			MetadataPath:       "data/song_data.csv",
			LoadTimeout:        10 * time.Minute,
			BreakerMaxFailures: 3,
			BreakerTimeout:     time.Minute,
		},
		Recommend: RecommendConfig{
			FitOnStartup:     true,
			RefitInterval:    0, // Datasets are static files; refit on request only
			RefitMinInterval: time.Minute,
			RefitBurst:       1,
			PopularTopN:      engine.Popularity.TopN,
			K:                engine.Collaborative.K,
			MinK:             engine.Collaborative.MinK,
			MinSupport:       engine.Collaborative.MinSupport,
			TestFraction:     engine.Collaborative.TestFraction,
			MaxCandidates:    engine.Collaborative.MaxCandidates,
			DefaultTopN:      engine.Collaborative.DefaultTopN,
			NumWorkers:       engine.Collaborative.NumWorkers,
			KeepPredictions:  engine.Collaborative.KeepPredictions,
			Seed:             engine.Seed,
			Stopwords:        engine.Content.Stopwords,
			MinTokenLength:   engine.Content.MinTokenLength,
			MatrixLimit:      engine.Content.MatrixLimit,
			MaxTopN:          engine.Limits.MaxTopN,
			FitTimeout:       engine.Limits.FitTimeout,
		},
		Cache: CacheConfig{
			Enabled:    true,
			TTL:        5 * time.Minute,
			MaxEntries: 10000,
		},
		Security: SecurityConfig{
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
			CORSOrigins:       []string{"*"},
			TrustedProxies:    []string{},
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5,
			FailureDecay:     30,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
func LoadWithKoanf() (*Config, error) {
	return LoadFile(FindConfigFile())
}

// LoadFile loads configuration like LoadWithKoanf but reads the YAML layer
// from path. An empty path skips the file layer; a missing file is an error.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// HTTP_PORT -> server.port, RECOMMEND_K -> recommend.k
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// FindConfigFile returns the config file LoadWithKoanf reads: CONFIG_PATH if it
// exists, else the first of DefaultConfigPaths that exists, else "".
func FindConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
	"security.trusted_proxies",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		strVal, ok := val.(string)
		if !ok {
			continue // already a slice from YAML or defaults
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if err := k.Set(path, trimmed); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Unmapped variables are ignored.
var envMappings = map[string]string{
	// Server mappings
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_timeout":          "server.timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"environment":           "server.environment",

	// Logging mappings
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Dataset mappings
	"plays_path":               "dataset.plays_path",
	"metadata_path":            "dataset.metadata_path",
	"dataset_load_timeout":     "dataset.load_timeout",
	"dataset_breaker_failures": "dataset.breaker_max_failures",
	"dataset_breaker_timeout":  "dataset.breaker_timeout",

	// Recommendation engine mappings
	"recommend_fit_on_startup":     "recommend.fit_on_startup",
	"recommend_refit_interval":     "recommend.refit_interval",
	"recommend_refit_min_interval": "recommend.refit_min_interval",
	"recommend_refit_burst":        "recommend.refit_burst",
	"recommend_popular_top_n":      "recommend.popular_top_n",
	"recommend_k":                  "recommend.k",
	"recommend_min_k":              "recommend.min_k",
	"recommend_min_support":        "recommend.min_support",
	"recommend_test_fraction":      "recommend.test_fraction",
	"recommend_max_candidates":     "recommend.max_candidates",
	"recommend_default_top_n":      "recommend.default_top_n",
	"recommend_workers":            "recommend.num_workers",
	"recommend_keep_predictions":   "recommend.keep_predictions",
	"recommend_seed":               "recommend.seed",
	"recommend_stopwords":          "recommend.stopwords",
	"recommend_min_token_length":   "recommend.min_token_length",
	"recommend_matrix_limit":       "recommend.matrix_limit",
	"recommend_max_top_n":          "recommend.max_top_n",
	"recommend_fit_timeout":        "recommend.fit_timeout",

	// Cache mappings
	"cache_enabled":     "cache.enabled",
	"cache_ttl":         "cache.ttl",
	"cache_max_entries": "cache.max_entries",

	// Security mappings
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"cors_origins":        "security.cors_origins",
	"trusted_proxies":     "security.trusted_proxies",

	// Supervisor mappings
	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - PLAYS_PATH -> dataset.plays_path
//   - RECOMMEND_K -> recommend.k
//   - DISABLE_RATE_LIMIT -> security.rate_limit_disabled
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	return ""
}

// EnvVarFor returns the environment variable that sets the koanf path, or
// the path itself when no variable is mapped. Validation messages use it.
func EnvVarFor(path string) string {
	for envKey, p := range envMappings {
		if p == path {
			return strings.ToUpper(envKey)
		}
	}
	return path
}

// WatchConfigFile sets up a file watcher for hot-reload capability.
// The caller is responsible for mutex protection when accessing
// configuration during reloads.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)

	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
