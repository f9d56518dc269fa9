// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package analytics

import (
	"fmt"
	"math"
	"sort"

	"github.com/tomtom215/songrec/internal/recommend"
)

// Defaults for chart generation.
const (
	DefaultTopArtists = 10
	DefaultBins       = 50
)

// ArtistCount is one entry of the top artists chart.
type ArtistCount struct {
	Name  string `json:"name"`
	Count uint64 `json:"count"`
}

// HistogramBucket is one equal-width bucket of the play count distribution.
// Min is inclusive; Max is exclusive except for the last bucket.
type HistogramBucket struct {
	Bucket string  `json:"bucket"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Count  int     `json:"count"`
}

// Patterns describes listening patterns.
type Patterns struct {
	// Plays holds every play_count value in table order.
	Plays     []uint64          `json:"plays"`
	Histogram []HistogramBucket `json:"histogram,omitempty"`
}

// Charts is the chart payload.
type Charts struct {
	Artists  []ArtistCount `json:"artists"`
	Patterns Patterns      `json:"patterns"`
}

// ChartOptions controls chart generation. Zero values use the defaults.
type ChartOptions struct {
	TopArtists int
	Bins       int

	// OmitPlays drops the raw play count list and keeps only the histogram.
	OmitPlays bool
}

// BuildCharts computes the top artists and the play count distribution.
func BuildCharts(table *recommend.InteractionTable, opts ChartOptions) Charts {
	if opts.TopArtists <= 0 {
		opts.TopArtists = DefaultTopArtists
	}
	if opts.Bins <= 0 {
		opts.Bins = DefaultBins
	}

	plays := PlayCounts(table)
	charts := Charts{
		Artists: TopArtists(table, opts.TopArtists),
		Patterns: Patterns{
			Plays:     plays,
			Histogram: Histogram(plays, opts.Bins),
		},
	}
	if opts.OmitPlays {
		charts.Patterns.Plays = nil
	}
	return charts
}

// TopArtists returns the n artists with the highest summed play count,
// ties broken by name ascending. Rows without metadata are skipped.
// Totals saturate at math.MaxUint64.
func TopArtists(table *recommend.InteractionTable, n int) []ArtistCount {
	totals := make(map[string]uint64)
	table.Each(func(_ int, r recommend.InteractionRow) bool {
		if r.HasMetadata {
			totals[r.ArtistName] = recommend.AddPlays(totals[r.ArtistName], r.PlayCount)
		}
		return true
	})

	artists := make([]ArtistCount, 0, len(totals))
	for name, count := range totals {
		artists = append(artists, ArtistCount{Name: name, Count: count})
	}
	sort.Slice(artists, func(i, j int) bool {
		if artists[i].Count != artists[j].Count {
			return artists[i].Count > artists[j].Count
		}
		return artists[i].Name < artists[j].Name
	})

	if n > 0 && len(artists) > n {
		artists = artists[:n]
	}
	return artists
}

// PlayCounts returns every play_count value in table order.
func PlayCounts(table *recommend.InteractionTable) []uint64 {
	plays := make([]uint64, 0, table.Len())
	table.Each(func(_ int, r recommend.InteractionRow) bool {
		plays = append(plays, r.PlayCount)
		return true
	})
	return plays
}

// Histogram buckets values into bins equal-width buckets spanning
// [min, max]. A constant input produces a single bucket.
func Histogram(values []uint64, bins int) []HistogramBucket {
	if len(values) == 0 || bins <= 0 {
		return nil
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	if lo == hi {
		return []HistogramBucket{{
			Bucket: bucketLabel(float64(lo), float64(hi)),
			Min:    float64(lo),
			Max:    float64(hi),
			Count:  len(values),
		}}
	}

	width := float64(hi-lo) / float64(bins)
	buckets := make([]HistogramBucket, bins)
	for i := range buckets {
		minV := float64(lo) + float64(i)*width
		maxV := float64(lo) + float64(i+1)*width
		if i == bins-1 {
			maxV = float64(hi)
		}
		buckets[i] = HistogramBucket{Bucket: bucketLabel(minV, maxV), Min: minV, Max: maxV}
	}

	for _, v := range values {
		i := int(math.Floor(float64(v-lo) / width))
		if i >= bins {
			i = bins - 1
		}
		buckets[i].Count++
	}
	return buckets
}

func bucketLabel(lo, hi float64) string {
	return fmt.Sprintf("%g-%g", round2(lo), round2(hi))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
