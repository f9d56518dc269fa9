// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package recommend

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig().Validate() error = %v", err)
	}

	t.Run("reference parameters", func(t *testing.T) {
		if cfg.Popularity.TopN != 10 {
			t.Errorf("Popularity.TopN = %d, want 10", cfg.Popularity.TopN)
		}
		if cfg.Collaborative.K != 50 {
			t.Errorf("Collaborative.K = %d, want 50", cfg.Collaborative.K)
		}
		if cfg.Collaborative.TestFraction != 0.25 {
			t.Errorf("Collaborative.TestFraction = %f, want 0.25", cfg.Collaborative.TestFraction)
		}
		if cfg.Collaborative.MaxCandidates != 100 {
			t.Errorf("Collaborative.MaxCandidates = %d, want 100", cfg.Collaborative.MaxCandidates)
		}
		if cfg.Collaborative.DefaultTopN != 5 || cfg.Content.DefaultTopN != 5 {
			t.Errorf("DefaultTopN = %d/%d, want 5/5", cfg.Collaborative.DefaultTopN, cfg.Content.DefaultTopN)
		}
	})

	t.Run("seed is fixed", func(t *testing.T) {
		if cfg.Seed != 42 {
			t.Errorf("Seed = %d, want 42", cfg.Seed)
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"default is valid", func(c *Config) {}, false},
		{"zero top_n", func(c *Config) { c.Popularity.TopN = 0 }, true},
		{"zero k", func(c *Config) { c.Collaborative.K = 0 }, true},
		{"min_k above k", func(c *Config) { c.Collaborative.MinK = 51 }, true},
		{"zero min_support", func(c *Config) { c.Collaborative.MinSupport = 0 }, true},
		{"negative test fraction", func(c *Config) { c.Collaborative.TestFraction = -0.1 }, true},
		{"test fraction of one", func(c *Config) { c.Collaborative.TestFraction = 1 }, true},
		{"test fraction of zero", func(c *Config) { c.Collaborative.TestFraction = 0 }, false},
		{"unbounded candidates", func(c *Config) { c.Collaborative.MaxCandidates = 0 }, false},
		{"negative candidates", func(c *Config) { c.Collaborative.MaxCandidates = -1 }, true},
		{"zero workers", func(c *Config) { c.Collaborative.NumWorkers = 0 }, true},
		{"unknown stopwords", func(c *Config) { c.Content.Stopwords = "klingon" }, true},
		{"no stopwords", func(c *Config) { c.Content.Stopwords = StopwordsNone }, false},
		{"zero token length", func(c *Config) { c.Content.MinTokenLength = 0 }, true},
		{"negative matrix limit", func(c *Config) { c.Content.MatrixLimit = -1 }, true},
		{"max_top_n below default", func(c *Config) { c.Limits.MaxTopN = 2 }, true},
		{"zero fit timeout", func(c *Config) { c.Limits.FitTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Clone(t *testing.T) {
	cfg := DefaultConfig()
	clone := cfg.Clone()

	clone.Collaborative.K = 7
	clone.Limits.FitTimeout = time.Second

	if cfg.Collaborative.K != 50 {
		t.Errorf("original K = %d after modifying clone, want 50", cfg.Collaborative.K)
	}
	if cfg.Limits.FitTimeout != 30*time.Minute {
		t.Errorf("original FitTimeout = %v after modifying clone, want 30m", cfg.Limits.FitTimeout)
	}
}
