// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

// Package models defines the JSON envelope and payload types of the HTTP API.
//
// Domain records (ScoredSong, SimilarSong, Prediction ...) live in
// internal/recommend; this package only wraps them for transport.
package models
