// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

// Package analytics computes descriptive charts and statistics over an
// interaction table.
//
// Charts returns the top artists by summed play count and the play count
// distribution. Stats returns dataset totals. Neither depends on a fitted
// engine; both only read the table.
package analytics
