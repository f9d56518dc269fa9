// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

/*
Package config provides centralized configuration management for Songrec.

Configuration is loaded with Koanf v2 in three layers: built-in defaults,
an optional YAML file, and environment variables. Later layers win.

# Configuration File

The file is taken from CONFIG_PATH when set, otherwise from the first of
config.yaml, config.yml, /etc/songrec/config.yaml and /etc/songrec/config.yml
that exists:

	server:
	  port: 3857
	dataset:
	  plays_path: /data/10000.txt
	  metadata_path: /data/song_data.csv
	recommend:
	  k: 50
	  test_fraction: 0.25
	  stopwords: music

# Environment Variables

Server:
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_PORT: Listen port (default: 3857)
  - HTTP_TIMEOUT: Read and write timeout (default: 30s)
  - ENVIRONMENT: development, staging or production

Dataset:
  - PLAYS_PATH: Play triplets file (default: data/10000.txt)
  - METADATA_PATH: Track metadata file (default: data/song_data.csv)

Recommendation engine:
  - RECOMMEND_K: Neighbors per prediction (default: 50)
  - RECOMMEND_MIN_K: Minimum neighbors for a neighborhood estimate (default: 1)
  - RECOMMEND_TEST_FRACTION: Held-out share (default: 0.25)
  - RECOMMEND_MAX_CANDIDATES: Unplayed songs scored per request (default: 100)
  - RECOMMEND_STOPWORDS: music, english or none (default: music)
  - RECOMMEND_FIT_ON_STARTUP: Fit when the service starts (default: true)

Security:
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - CORS_ORIGINS, TRUSTED_PROXIES: Comma-separated lists

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)

The full mapping lives in envMappings. Variables that are not mapped are
ignored.

# Validation

Load returns an error naming the offending environment variable, for example
"RECOMMEND_K must be positive, got 0".

# Thread Safety

Config is immutable after Load() and safe for concurrent read access.
*/
package config
