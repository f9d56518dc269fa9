// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

// Package dataset loads the plays and track metadata sources and joins them
// into a recommend.InteractionTable.
//
// Plays are tab-separated triplets without a header:
//
//	b80344d063b5ccb3212f76538f3d9e43d87dca9e	SOAKIMP12A8C130995	1
//
// Metadata records use the literal delimiter <SEP> and carry four fields
// (track_id, song_id, artist_name, release):
//
//	TRMMMYQ128F932D901<SEP>SOQMMHC12AB0180CB8<SEP>Faster Pussy cat<SEP>Silent Night
//
// Loading is all-or-nothing: on any failure no table is returned.
package dataset
