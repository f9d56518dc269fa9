// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package algorithms

import (
	"context"
	"sort"

	"github.com/tomtom215/songrec/internal/recommend"
)

// Popularity ranks songs by how much they are played. It is a
// non-personalized baseline: every user receives the same chart.
//
// The default chart (Fit) is computed as:
//
//	score(song) = sum(play_count) over all rows of song
//
// Sums saturate at math.MaxUint64.
//
// The general form (Create) groups by an arbitrary item column and counts
// interactions that have a value in the user column.
type Popularity struct {
	BaseAlgorithm

	// Configuration
	maxItems int

	// Fitted chart, best first
	chart []recommend.PopularSong
}

// PopularityConfig contains configuration for the popularity scorer.
type PopularityConfig struct {
	// MaxItems is the chart length.
	MaxItems int
}

// NewPopularity creates a new popularity scorer.
func NewPopularity(cfg PopularityConfig) *Popularity {
	if cfg.MaxItems <= 0 {
		cfg.MaxItems = 10
	}

	return &Popularity{
		BaseAlgorithm: NewBaseAlgorithm("popularity"),
		maxItems:      cfg.MaxItems,
	}
}

// popularityGroup accumulates one chart entry.
type popularityGroup struct {
	key        string
	score      uint64
	artistName string
	release    string
	hasMeta    bool
}

// Fit computes the global chart: play counts summed per song_id.
func (p *Popularity) Fit(ctx context.Context, table *recommend.InteractionTable) error {
	return p.fit(ctx, "popularity.fit", table, recommend.ColumnSongID, func(r recommend.InteractionRow) (uint64, bool) {
		return r.PlayCount, true
	})
}

// Create computes the chart grouped by itemCol, scoring each group by the
// number of interactions carrying a userCol value. Rows without an itemCol
// value are skipped.
func (p *Popularity) Create(ctx context.Context, table *recommend.InteractionTable, userCol, itemCol recommend.Column) error {
	return p.fit(ctx, "popularity.create", table, itemCol, func(r recommend.InteractionRow) (uint64, bool) {
		_, ok := userCol.Value(r)
		return 1, ok
	})
}

func (p *Popularity) fit(ctx context.Context, op string, table *recommend.InteractionTable, itemCol recommend.Column, score func(recommend.InteractionRow) (uint64, bool)) error {
	p.acquireFitLock()
	defer p.releaseFitLock()

	if table.Len() == 0 {
		return recommend.Errorf(recommend.KindEmptyInput, op, "", "table has no rows")
	}

	groups := make(map[string]*popularityGroup)
	order := make([]*popularityGroup, 0)

	var err error
	table.Each(func(i int, r recommend.InteractionRow) bool {
		if i%4096 == 0 && ContextCancelled(ctx) {
			err = ctx.Err()
			return false
		}

		key, ok := itemCol.Value(r)
		if !ok {
			return true
		}
		g, exists := groups[key]
		if !exists {
			g = &popularityGroup{key: key}
			groups[key] = g
			order = append(order, g)
		}
		if s, counted := score(r); counted {
			g.score = recommend.AddPlays(g.score, s)
		}
		// First non-null metadata wins for display.
		if !g.hasMeta && r.HasMetadata {
			g.artistName = r.ArtistName
			g.release = r.Release
			g.hasMeta = true
		}
		return true
	})
	if err != nil {
		return recommend.NewError(recommend.KindTrain, op, "", err)
	}
	if len(order) == 0 {
		return recommend.Errorf(recommend.KindEmptyInput, op, itemCol.String(), "no rows have a value for the item column")
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].score != order[j].score {
			return order[i].score > order[j].score
		}
		return order[i].key < order[j].key
	})

	if len(order) > p.maxItems {
		order = order[:p.maxItems]
	}

	chart := make([]recommend.PopularSong, len(order))
	for i, g := range order {
		chart[i] = recommend.PopularSong{
			SongID:     g.key,
			Score:      g.score,
			Rank:       i + 1,
			ArtistName: g.artistName,
			Release:    g.release,
		}
	}

	p.chart = chart
	p.markFitted()
	return nil
}

// Recommend returns the fitted chart. A non-empty userID is attached to
// every entry as a label only.
func (p *Popularity) Recommend(userID string) ([]recommend.PopularSong, error) {
	p.acquireQueryLock()
	defer p.releaseQueryLock()

	if !p.fitted {
		return nil, recommend.NewError(recommend.KindNotFitted, "popularity.recommend", userID, nil)
	}

	result := make([]recommend.PopularSong, len(p.chart))
	copy(result, p.chart)
	for i := range result {
		result[i].UserID = userID
	}
	return result, nil
}
