// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

/*
Package main is the entry point for the Songrec server application.

Songrec serves music recommendations computed from a play-count dataset: a
popularity chart, user-based collaborative filtering and content similarity
over artist and release names.

# Application Architecture

The server runs its long-lived components under Suture v4 process supervision:

	RootSupervisor ("songrec")
	├── DataSupervisor ("data-layer")
	│   └── Fit Service (dataset load, engine fit, refits)
	└── APISupervisor ("api-layer")
	    └── HTTP Server (chi router)

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Engine: popularity, collaborative and content scorers
 4. Dataset Loader: file source behind a circuit breaker
 5. Fit Service: fits on startup and on refit requests
 6. Response Cache: LRU with TTL, cleared on every published fit
 7. HTTP Server: Chi router with middleware stack
 8. Supervisor Tree: Suture v4 process supervision

The HTTP server starts before the first fit completes. Until then the
readiness check and the recommendation endpoints answer 503.

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	# Server
	HTTP_PORT=3857
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console

	# Dataset
	PLAYS_PATH=data/10000.txt
	METADATA_PATH=data/song_data.csv

	# Engine
	RECOMMEND_K=50
	RECOMMEND_TEST_FRACTION=0.25
	RECOMMEND_FIT_ON_STARTUP=true

Changes to LOG_LEVEL in the config file are applied without a restart.

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:
  - Stops accepting new connections
  - Waits for in-flight requests to complete (HTTP_SHUTDOWN_TIMEOUT)
  - Cancels a running fit

# Example Usage

	export PLAYS_PATH=/data/10000.txt
	export METADATA_PATH=/data/song_data.csv
	./songrec-server

	curl localhost:3857/api/v1/recommendations/collaborative/<user_id>?n=5
*/
package main
