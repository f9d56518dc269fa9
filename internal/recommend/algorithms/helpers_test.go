// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package algorithms

import (
	"fmt"
	"testing"

	"github.com/tomtom215/songrec/internal/recommend"
)

type play struct {
	user, song string
	count      uint64
}

type track struct {
	song, artist, release string
}

// buildTable joins plays with tracks the same way the loader does.
func buildTable(t *testing.T, plays []play, tracks []track) *recommend.InteractionTable {
	t.Helper()

	meta := make(map[string]track, len(tracks))
	for _, tr := range tracks {
		if _, dup := meta[tr.song]; !dup {
			meta[tr.song] = tr
		}
	}

	rows := make([]recommend.InteractionRow, 0, len(plays))
	for _, p := range plays {
		row := recommend.InteractionRow{UserID: p.user, SongID: p.song, PlayCount: p.count}
		if tr, ok := meta[p.song]; ok {
			row.ArtistName = tr.artist
			row.Release = tr.release
			row.HasMetadata = true
		}
		rows = append(rows, row)
	}
	return recommend.NewInteractionTable(rows)
}

// fixtureTable is the four-play, three-song reference scenario.
func fixtureTable(t *testing.T) *recommend.InteractionTable {
	t.Helper()
	return buildTable(t,
		[]play{{"u1", "s1", 5}, {"u1", "s2", 1}, {"u2", "s1", 3}, {"u2", "s3", 2}},
		[]track{{"s1", "A", "X"}, {"s2", "A", "Y"}, {"s3", "B", "Z"}},
	)
}

// syntheticTable builds a deterministic table with users listening to
// overlapping windows of songs.
func syntheticTable(t *testing.T, users, songs int) *recommend.InteractionTable {
	t.Helper()

	var plays []play
	var tracks []track
	for s := 0; s < songs; s++ {
		tracks = append(tracks, track{
			song:    fmt.Sprintf("s%03d", s),
			artist:  fmt.Sprintf("Artist %d", s%7),
			release: fmt.Sprintf("Release %d", s%5),
		})
	}
	for u := 0; u < users; u++ {
		for j := 0; j < 6; j++ {
			s := (u*3 + j) % songs
			plays = append(plays, play{
				user:  fmt.Sprintf("u%03d", u),
				song:  fmt.Sprintf("s%03d", s),
				count: uint64(1 + (u+j)%9),
			})
		}
	}
	return buildTable(t, plays, tracks)
}
