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

// ContentSimilarity recommends songs whose artist and title text is close
// to a query song.
//
// Each unique song is fingerprinted as "artist_name release", encoded as a
// bag-of-words count vector and compared with cosine similarity:
//
//	sim(a, b) = (a · b) / sqrt(|a|² |b|²)
//
// Catalogs up to MatrixLimit songs get the full pairwise matrix at fit time.
// Larger catalogs compute a row on demand through the token inverted index;
// both paths produce the same values.
type ContentSimilarity struct {
	BaseAlgorithm

	// Configuration
	config ContentConfig

	// Fitted model
	songs      []recommend.TrackMetadata
	index      map[string]int
	vocabulary map[string]int
	corpus     *contentCorpus
	matrix     [][]float64
}

// contentCorpus holds the count vectors and the token inverted index.
type contentCorpus struct {
	vectors  []sparseVector
	sqNorms  []float64
	postings [][]int
}

// ContentConfig contains configuration for content similarity.
type ContentConfig struct {
	// Stopwords names the stopword set ("music", "english", "none").
	Stopwords string

	// MinTokenLength drops shorter tokens.
	MinTokenLength int

	// MatrixLimit is the largest catalog with a precomputed matrix.
	// Zero always computes rows on demand.
	MatrixLimit int

	// DefaultTopN is used when Recommend is called with topN <= 0.
	DefaultTopN int

	// NumWorkers is the number of parallel matrix workers.
	NumWorkers int
}

// DefaultContentConfig returns default content similarity configuration.
func DefaultContentConfig() ContentConfig {
	return ContentConfig{
		Stopwords:      recommend.StopwordsMusic,
		MinTokenLength: 1,
		MatrixLimit:    2000,
		DefaultTopN:    5,
		NumWorkers:     4,
	}
}

// NewContentSimilarity creates a new content similarity engine.
func NewContentSimilarity(cfg ContentConfig) *ContentSimilarity {
	if cfg.Stopwords == "" {
		cfg.Stopwords = recommend.StopwordsMusic
	}
	if cfg.MinTokenLength <= 0 {
		cfg.MinTokenLength = 1
	}
	if cfg.DefaultTopN <= 0 {
		cfg.DefaultTopN = 5
	}
	if cfg.NumWorkers <= 0 {
		cfg.NumWorkers = 4
	}

	return &ContentSimilarity{
		BaseAlgorithm: NewBaseAlgorithm("content"),
		config:        cfg,
	}
}

// Fit builds fingerprints, vectors and similarities for every unique song
// with metadata. Songs without metadata are not part of the corpus.
func (c *ContentSimilarity) Fit(ctx context.Context, table *recommend.InteractionTable) error {
	const op = "content.fit"

	c.acquireFitLock()
	defer c.releaseFitLock()

	stopwords, err := StopwordSet(c.config.Stopwords)
	if err != nil {
		return recommend.NewError(recommend.KindTrain, op, "", err)
	}

	var songs []recommend.TrackMetadata
	for _, songID := range table.SongIDs() {
		if meta, ok := table.Metadata(songID); ok {
			songs = append(songs, meta)
		}
	}
	if len(songs) == 0 {
		return recommend.Errorf(recommend.KindEmptyCorpus, op, "", "no songs with artist or release metadata in %d rows", table.Len())
	}

	tokenizer := NewTokenizer(stopwords, c.config.MinTokenLength)
	vocabulary := make(map[string]int)
	vectors := make([]sparseVector, len(songs))
	sqNorms := make([]float64, len(songs))
	index := make(map[string]int, len(songs))

	for i, s := range songs {
		if i%1024 == 0 && ContextCancelled(ctx) {
			return recommend.NewError(recommend.KindTrain, op, "", ctx.Err())
		}
		index[s.SongID] = i

		counts := make(map[int]float64)
		for _, tok := range tokenizer.Tokenize(s.ArtistName + " " + s.Release) {
			idx, ok := vocabulary[tok]
			if !ok {
				idx = len(vocabulary)
				vocabulary[tok] = idx
			}
			counts[idx]++
		}

		vec := make(sparseVector, 0, len(counts))
		for idx, n := range counts {
			vec = append(vec, sparseEntry{idx: idx, val: n})
		}
		sort.Slice(vec, func(a, b int) bool { return vec[a].idx < vec[b].idx })
		vectors[i] = vec
		sqNorms[i] = vec.squaredNorm()
	}

	postings := make([][]int, len(vocabulary))
	for i, vec := range vectors {
		for _, e := range vec {
			postings[e.idx] = append(postings[e.idx], i)
		}
	}

	corpus := &contentCorpus{
		vectors:  vectors,
		sqNorms:  sqNorms,
		postings: postings,
	}

	var matrix [][]float64
	if len(songs) <= c.config.MatrixLimit {
		matrix = make([][]float64, len(songs))
		err := parallelChunks(ctx, len(songs), c.config.NumWorkers, func(ctx context.Context, start, end int) error {
			for q := start; q < end; q++ {
				if ContextCancelled(ctx) {
					return ctx.Err()
				}
				matrix[q] = corpus.similarityRow(q)
			}
			return nil
		})
		if err != nil {
			return recommend.NewError(recommend.KindTrain, op, "", err)
		}
	}

	c.songs = songs
	c.index = index
	c.vocabulary = vocabulary
	c.corpus = corpus
	c.matrix = matrix
	c.markFitted()
	return nil
}

// similarityRow computes the cosine similarity of song q to every song.
// Dot products accumulate in token index order, the same order as
// cosineSimilarity, so both paths agree exactly.
func (c *contentCorpus) similarityRow(q int) []float64 {
	row := make([]float64, len(c.vectors))
	for _, e := range c.vectors[q] {
		for _, s := range c.postings[e.idx] {
			row[s] += e.val * c.vectorValue(s, e.idx)
		}
	}
	for s := range row {
		row[s] = cosineFromDot(row[s], c.sqNorms[q], c.sqNorms[s])
	}
	return row
}

// vectorValue returns the count of token idx in song s.
func (c *contentCorpus) vectorValue(s, idx int) float64 {
	vec := c.vectors[s]
	j := sort.Search(len(vec), func(k int) bool { return vec[k].idx >= idx })
	if j < len(vec) && vec[j].idx == idx {
		return vec[j].val
	}
	return 0
}

// Recommend returns up to topN songs most similar to songID, best first.
// The query song itself is never included.
func (c *ContentSimilarity) Recommend(songID string, topN int) ([]recommend.SimilarSong, error) {
	const op = "content.recommend"

	c.acquireQueryLock()
	defer c.releaseQueryLock()

	if !c.fitted {
		return nil, recommend.NewError(recommend.KindNotFitted, op, songID, nil)
	}
	q, ok := c.index[songID]
	if !ok {
		return nil, recommend.Errorf(recommend.KindNotFound, op, songID, "song is not in the content corpus")
	}
	topN = resolveTopN(topN, c.config.DefaultTopN)

	row := c.row(q)
	others := make([]int, 0, len(c.songs)-1)
	for i := range c.songs {
		if i != q {
			others = append(others, i)
		}
	}

	sortByScoreThenID(len(others),
		func(i int) float64 { return row[others[i]] },
		func(i int) string { return c.songs[others[i]].SongID },
		func(i, j int) { others[i], others[j] = others[j], others[i] },
	)

	if len(others) > topN {
		others = others[:topN]
	}

	result := make([]recommend.SimilarSong, len(others))
	for i, s := range others {
		result[i] = recommend.SimilarSong{
			SongID:     c.songs[s].SongID,
			ArtistName: c.songs[s].ArtistName,
			Release:    c.songs[s].Release,
			Similarity: row[s],
		}
	}
	return result, nil
}

// row returns the similarity row of q from the matrix or computes it.
// Must be called while holding the query lock.
func (c *ContentSimilarity) row(q int) []float64 {
	if c.matrix != nil {
		return c.matrix[q]
	}
	return c.corpus.similarityRow(q)
}

// Similarity returns the cosine similarity of two fitted songs.
func (c *ContentSimilarity) Similarity(songA, songB string) (float64, error) {
	const op = "content.similarity"

	c.acquireQueryLock()
	defer c.releaseQueryLock()

	if !c.fitted {
		return 0, recommend.NewError(recommend.KindNotFitted, op, songA, nil)
	}
	a, ok := c.index[songA]
	if !ok {
		return 0, recommend.NewError(recommend.KindNotFound, op, songA, nil)
	}
	b, ok := c.index[songB]
	if !ok {
		return 0, recommend.NewError(recommend.KindNotFound, op, songB, nil)
	}
	if c.matrix != nil {
		return c.matrix[a][b], nil
	}
	v := c.corpus
	return cosineSimilarity(v.vectors[a], v.vectors[b], v.sqNorms[a], v.sqNorms[b]), nil
}

// Songs returns the number of songs in the corpus.
func (c *ContentSimilarity) Songs() int {
	c.acquireQueryLock()
	defer c.releaseQueryLock()
	return len(c.songs)
}

// VocabularySize returns the number of distinct tokens.
func (c *ContentSimilarity) VocabularySize() int {
	c.acquireQueryLock()
	defer c.releaseQueryLock()
	return len(c.vocabulary)
}

// HasMatrix reports whether the full similarity matrix was materialized.
func (c *ContentSimilarity) HasMatrix() bool {
	c.acquireQueryLock()
	defer c.releaseQueryLock()
	return c.matrix != nil
}
