// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateDataset(); err != nil {
		return err
	}

	if err := c.validateRecommend(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateSecurity(); err != nil {
		return err
	}

	if err := c.validateSupervisor(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates HTTP server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("HTTP_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// validateDataset validates the dataset sources
func (c *Config) validateDataset() error {
	if strings.TrimSpace(c.Dataset.PlaysPath) == "" {
		return fmt.Errorf("PLAYS_PATH is required")
	}
	if strings.TrimSpace(c.Dataset.MetadataPath) == "" {
		return fmt.Errorf("METADATA_PATH is required")
	}
	if c.Dataset.LoadTimeout <= 0 {
		return fmt.Errorf("DATASET_LOAD_TIMEOUT must be positive")
	}
	if c.Dataset.BreakerMaxFailures < 1 {
		return fmt.Errorf("DATASET_BREAKER_FAILURES must be at least 1")
	}
	if c.Dataset.BreakerTimeout <= 0 {
		return fmt.Errorf("DATASET_BREAKER_TIMEOUT must be positive")
	}
	return nil
}

// validateRecommend validates the refit policy and the engine parameters.
// Engine errors name the koanf path; they are rewritten to the matching
// environment variable.
func (c *Config) validateRecommend() error {
	if c.Recommend.RefitInterval < 0 {
		return fmt.Errorf("RECOMMEND_REFIT_INTERVAL must not be negative")
	}
	if c.Recommend.RefitMinInterval <= 0 {
		return fmt.Errorf("RECOMMEND_REFIT_MIN_INTERVAL must be positive")
	}
	if c.Recommend.RefitBurst < 1 {
		return fmt.Errorf("RECOMMEND_REFIT_BURST must be at least 1")
	}

	if err := c.Recommend.EngineConfig().Validate(); err != nil {
		return errors.New(engineErrorToEnv(err.Error()))
	}
	return nil
}

// engineFieldPaths maps engine config fields to the recommend section keys.
var engineFieldPaths = []struct {
	engine string
	path   string
}{
	{"popularity.top_n", "recommend.popular_top_n"},
	{"collaborative.min_support", "recommend.min_support"},
	{"collaborative.min_k", "recommend.min_k"},
	{"collaborative.k", "recommend.k"},
	{"collaborative.test_fraction", "recommend.test_fraction"},
	{"collaborative.max_candidates", "recommend.max_candidates"},
	{"collaborative.default_top_n", "recommend.default_top_n"},
	{"collaborative.num_workers", "recommend.num_workers"},
	{"content.default_top_n", "recommend.default_top_n"},
	{"content.stopwords", "recommend.stopwords"},
	{"content.min_token_length", "recommend.min_token_length"},
	{"content.matrix_limit", "recommend.matrix_limit"},
	{"content.num_workers", "recommend.num_workers"},
	{"limits.max_top_n", "recommend.max_top_n"},
	{"limits.fit_timeout", "recommend.fit_timeout"},
}

func engineErrorToEnv(msg string) string {
	for _, f := range engineFieldPaths {
		if strings.HasPrefix(msg, f.engine+" ") {
			return EnvVarFor(f.path) + strings.TrimPrefix(msg, f.engine)
		}
	}
	return msg
}

// validateCache validates the response cache
func (c *Config) validateCache() error {
	if !c.Cache.Enabled {
		return nil
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive when CACHE_ENABLED=true")
	}
	if c.Cache.MaxEntries < 1 {
		return fmt.Errorf("CACHE_MAX_ENTRIES must be at least 1 when CACHE_ENABLED=true")
	}
	return nil
}

// validateSecurity validates security configuration
func (c *Config) validateSecurity() error {
	if err := c.validateRateLimits(); err != nil {
		return err
	}
	return c.validateCORS()
}

// validateCORS rejects empty origins.
func (c *Config) validateCORS() error {
	for _, origin := range c.Security.CORSOrigins {
		if strings.TrimSpace(origin) == "" {
			return fmt.Errorf("CORS_ORIGINS must not contain empty origins")
		}
	}
	return nil
}

// HasWildcardCORS checks if CORS is configured with wildcard origins
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS returns true if CORS configuration should be logged
// as a concern at startup
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.IsProduction() && c.HasWildcardCORS()
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}

	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// validateSupervisor validates the restart policy
func (c *Config) validateSupervisor() error {
	if c.Supervisor.FailureThreshold <= 0 {
		return fmt.Errorf("SUPERVISOR_FAILURE_THRESHOLD must be positive")
	}
	if c.Supervisor.FailureDecay <= 0 {
		return fmt.Errorf("SUPERVISOR_FAILURE_DECAY must be positive")
	}
	if c.Supervisor.FailureBackoff <= 0 {
		return fmt.Errorf("SUPERVISOR_FAILURE_BACKOFF must be positive")
	}
	if c.Supervisor.ShutdownTimeout <= 0 {
		return fmt.Errorf("SUPERVISOR_SHUTDOWN_TIMEOUT must be positive")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// IsDevelopment returns true if the application is running in development mode.
func (c *Config) IsDevelopment() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "" || env == "development" || env == "dev"
}

var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
