// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

// Package logging provides the process-wide zerolog logger for Songrec.
//
// The recommendation core never logs. Services, HTTP handlers and the
// command line tool log through this package so every line shares the
// same field names and format.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Int("rows", table.Len()).Msg("dataset loaded")
//	logging.Err(err).Str("scorer", "content").Msg("fit failed")
//
//	// Request-scoped fields
//	logging.Ctx(ctx).Debug().Str("song_id", id).Msg("similar songs")
//
// # Configuration
//
// Environment variables, read by internal/config:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: include caller file and line (default: false)
//
// # Supervisor Events
//
// suture reports service restarts through log/slog. NewSlogLogger returns
// an *slog.Logger that writes into zerolog for use with sutureslog.
package logging
