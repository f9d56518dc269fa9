// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package recommend

// InteractionTable is the joined play/metadata table shared by all scorers.
// It is immutable after construction and safe for concurrent reads.
type InteractionTable struct {
	rows []InteractionRow

	songOrder []string
	userOrder []string
	played    map[string]map[string]struct{}
	metadata  map[string]TrackMetadata
}

// NewInteractionTable builds a table from already joined rows. The slice is
// copied; later changes to rows do not affect the table.
func NewInteractionTable(rows []InteractionRow) *InteractionTable {
	t := &InteractionTable{
		rows:     make([]InteractionRow, len(rows)),
		played:   make(map[string]map[string]struct{}),
		metadata: make(map[string]TrackMetadata),
	}
	copy(t.rows, rows)

	seenSong := make(map[string]struct{})
	for _, r := range t.rows {
		if _, ok := seenSong[r.SongID]; !ok {
			seenSong[r.SongID] = struct{}{}
			t.songOrder = append(t.songOrder, r.SongID)
		}

		songs, ok := t.played[r.UserID]
		if !ok {
			songs = make(map[string]struct{})
			t.played[r.UserID] = songs
			t.userOrder = append(t.userOrder, r.UserID)
		}
		songs[r.SongID] = struct{}{}

		if _, ok := t.metadata[r.SongID]; !ok && r.HasMetadata {
			t.metadata[r.SongID] = TrackMetadata{SongID: r.SongID, ArtistName: r.ArtistName, Release: r.Release}
		}
	}
	return t
}

// Len returns the number of rows.
func (t *InteractionTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// Row returns the i-th row.
func (t *InteractionTable) Row(i int) InteractionRow {
	return t.rows[i]
}

// Rows returns a copy of all rows in load order.
func (t *InteractionTable) Rows() []InteractionRow {
	if t == nil {
		return nil
	}
	out := make([]InteractionRow, len(t.rows))
	copy(out, t.rows)
	return out
}

// Each calls fn for every row in load order until fn returns false.
func (t *InteractionTable) Each(fn func(i int, r InteractionRow) bool) {
	if t == nil {
		return
	}
	for i := range t.rows {
		if !fn(i, t.rows[i]) {
			return
		}
	}
}

// SongIDs returns the distinct song ids in order of first appearance.
func (t *InteractionTable) SongIDs() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.songOrder))
	copy(out, t.songOrder)
	return out
}

// UserIDs returns the distinct user ids in order of first appearance.
func (t *InteractionTable) UserIDs() []string {
	if t == nil {
		return nil
	}
	out := make([]string, len(t.userOrder))
	copy(out, t.userOrder)
	return out
}

// HasPlayed reports whether userID has at least one row for songID.
func (t *InteractionTable) HasPlayed(userID, songID string) bool {
	if t == nil {
		return false
	}
	_, ok := t.played[userID][songID]
	return ok
}

// PlayedBy returns the number of distinct songs userID played.
func (t *InteractionTable) PlayedBy(userID string) int {
	if t == nil {
		return 0
	}
	return len(t.played[userID])
}

// Metadata returns the first-seen metadata for songID.
func (t *InteractionTable) Metadata(songID string) (TrackMetadata, bool) {
	if t == nil {
		return TrackMetadata{}, false
	}
	m, ok := t.metadata[songID]
	return m, ok
}
