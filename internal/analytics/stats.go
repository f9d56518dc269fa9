// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package analytics

import (
	"github.com/tomtom215/songrec/internal/recommend"
)

// Stats holds dataset totals.
type Stats struct {
	Rows              int     `json:"rows"`
	UniqueUsers       int     `json:"unique_users"`
	UniqueSongs       int     `json:"unique_songs"`
	UniqueArtists     int     `json:"unique_artists"`
	TotalPlays        uint64  `json:"total_plays"`
	MaxPlayCount      uint64  `json:"max_play_count"`
	AvgPlayCount      float64 `json:"avg_play_count"`
	RowsWithoutMeta   int     `json:"rows_without_metadata"`
	SongsWithMetadata int     `json:"songs_with_metadata"`
}

// ComputeStats scans the table once and returns its totals.
func ComputeStats(table *recommend.InteractionTable) Stats {
	st := Stats{
		Rows:        table.Len(),
		UniqueUsers: len(table.UserIDs()),
	}

	songs := table.SongIDs()
	st.UniqueSongs = len(songs)
	for _, id := range songs {
		if _, ok := table.Metadata(id); ok {
			st.SongsWithMetadata++
		}
	}

	var plays float64
	artists := make(map[string]struct{})
	table.Each(func(_ int, r recommend.InteractionRow) bool {
		st.TotalPlays = recommend.AddPlays(st.TotalPlays, r.PlayCount)
		plays += float64(r.PlayCount)
		if r.PlayCount > st.MaxPlayCount {
			st.MaxPlayCount = r.PlayCount
		}
		if r.HasMetadata {
			artists[r.ArtistName] = struct{}{}
		} else {
			st.RowsWithoutMeta++
		}
		return true
	})
	st.UniqueArtists = len(artists)

	if st.Rows > 0 {
		st.AvgPlayCount = plays / float64(st.Rows)
	}
	return st
}
