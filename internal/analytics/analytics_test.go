// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package analytics

import (
	"math"
	"reflect"
	"testing"

	"github.com/tomtom215/songrec/internal/recommend"
)

func testTable() *recommend.InteractionTable {
	return recommend.NewInteractionTable([]recommend.InteractionRow{
		{UserID: "u1", SongID: "s1", PlayCount: 5, ArtistName: "A", Release: "X", HasMetadata: true},
		{UserID: "u1", SongID: "s2", PlayCount: 1, ArtistName: "A", Release: "Y", HasMetadata: true},
		{UserID: "u2", SongID: "s1", PlayCount: 3, ArtistName: "A", Release: "X", HasMetadata: true},
		{UserID: "u2", SongID: "s3", PlayCount: 2, ArtistName: "B", Release: "Z", HasMetadata: true},
		{UserID: "u3", SongID: "s4", PlayCount: 9},
		{UserID: "u3", SongID: "s5", PlayCount: 2, ArtistName: "C", Release: "W", HasMetadata: true},
	})
}

func TestTopArtists(t *testing.T) {
	tests := []struct {
		name string
		n    int
		want []ArtistCount
	}{
		{"all", 10, []ArtistCount{{"A", 9}, {"B", 2}, {"C", 2}}},
		{"truncated", 2, []ArtistCount{{"A", 9}, {"B", 2}}},
		{"unbounded", 0, []ArtistCount{{"A", 9}, {"B", 2}, {"C", 2}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopArtists(testTable(), tt.n)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("TopArtists(%d) = %+v, want %+v", tt.n, got, tt.want)
			}
		})
	}
}

func TestPlayCounts(t *testing.T) {
	got := PlayCounts(testTable())
	want := []uint64{5, 1, 3, 2, 9, 2}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("PlayCounts() = %v, want %v", got, want)
	}

	if got := PlayCounts(nil); len(got) != 0 {
		t.Errorf("PlayCounts(nil) = %v, want empty", got)
	}
}

func TestHistogram(t *testing.T) {
	t.Run("equal width", func(t *testing.T) {
		buckets := Histogram([]uint64{1, 2, 3, 4, 5}, 2)
		if len(buckets) != 2 {
			t.Fatalf("len(Histogram()) = %d, want 2", len(buckets))
		}
		if buckets[0].Count != 2 || buckets[1].Count != 3 {
			t.Errorf("counts = %d/%d, want 2/3", buckets[0].Count, buckets[1].Count)
		}
		if buckets[0].Min != 1 || buckets[1].Max != 5 {
			t.Errorf("range = [%v, %v], want [1, 5]", buckets[0].Min, buckets[1].Max)
		}
	})

	t.Run("max lands in last bucket", func(t *testing.T) {
		buckets := Histogram([]uint64{0, 10}, 5)
		if buckets[4].Count != 1 || buckets[0].Count != 1 {
			t.Errorf("buckets = %+v", buckets)
		}
	})

	t.Run("constant values", func(t *testing.T) {
		buckets := Histogram([]uint64{7, 7, 7}, 50)
		if len(buckets) != 1 || buckets[0].Count != 3 || buckets[0].Bucket != "7-7" {
			t.Errorf("Histogram() = %+v, want one bucket of 3", buckets)
		}
	})

	t.Run("empty", func(t *testing.T) {
		if got := Histogram(nil, 10); got != nil {
			t.Errorf("Histogram(nil) = %+v, want nil", got)
		}
	})

	t.Run("counts sum to input length", func(t *testing.T) {
		values := []uint64{1, 1, 2, 3, 5, 8, 13, 21, 34, 55, 89, 144}
		total := 0
		for _, b := range Histogram(values, 7) {
			total += b.Count
		}
		if total != len(values) {
			t.Errorf("sum of counts = %d, want %d", total, len(values))
		}
	})
}

func TestBuildCharts(t *testing.T) {
	charts := BuildCharts(testTable(), ChartOptions{})

	if len(charts.Artists) != 3 || charts.Artists[0].Name != "A" {
		t.Errorf("Artists = %+v", charts.Artists)
	}
	if len(charts.Patterns.Plays) != 6 {
		t.Errorf("len(Plays) = %d, want 6", len(charts.Patterns.Plays))
	}
	if len(charts.Patterns.Histogram) != DefaultBins {
		t.Errorf("len(Histogram) = %d, want %d", len(charts.Patterns.Histogram), DefaultBins)
	}

	charts = BuildCharts(testTable(), ChartOptions{TopArtists: 1, Bins: 3, OmitPlays: true})
	if len(charts.Artists) != 1 || charts.Patterns.Plays != nil || len(charts.Patterns.Histogram) != 3 {
		t.Errorf("BuildCharts(options) = %+v", charts)
	}
}

func TestComputeStats(t *testing.T) {
	got := ComputeStats(testTable())
	want := Stats{
		Rows:              6,
		UniqueUsers:       3,
		UniqueSongs:       5,
		UniqueArtists:     3,
		TotalPlays:        22,
		MaxPlayCount:      9,
		AvgPlayCount:      22.0 / 6.0,
		RowsWithoutMeta:   1,
		SongsWithMetadata: 4,
	}
	if got != want {
		t.Errorf("ComputeStats() = %+v, want %+v", got, want)
	}

	if got := ComputeStats(nil); got != (Stats{}) {
		t.Errorf("ComputeStats(nil) = %+v, want zero", got)
	}
}

func TestTotalsSaturate(t *testing.T) {
	table := recommend.NewInteractionTable([]recommend.InteractionRow{
		{UserID: "u1", SongID: "s1", PlayCount: 1 << 63, ArtistName: "Big", Release: "X", HasMetadata: true},
		{UserID: "u2", SongID: "s1", PlayCount: 1 << 63, ArtistName: "Big", Release: "X", HasMetadata: true},
		{UserID: "u3", SongID: "s2", PlayCount: 5, ArtistName: "Small", Release: "Y", HasMetadata: true},
	})

	artists := TopArtists(table, 2)
	want := []ArtistCount{{"Big", math.MaxUint64}, {"Small", 5}}
	if !reflect.DeepEqual(artists, want) {
		t.Errorf("TopArtists() = %+v, want %+v", artists, want)
	}

	st := ComputeStats(table)
	if st.TotalPlays != math.MaxUint64 {
		t.Errorf("TotalPlays = %d, want MaxUint64", st.TotalPlays)
	}
	if st.AvgPlayCount <= 0 {
		t.Errorf("AvgPlayCount = %v, want positive", st.AvgPlayCount)
	}
}
