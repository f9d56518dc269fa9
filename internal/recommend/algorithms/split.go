// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package algorithms

import (
	"math"
	"math/rand"
	"sort"
)

// Rating is one (user, song, rating) triplet consumed by the k-NN estimator.
// Play counts stand in for ratings on an unbounded positive scale.
type Rating struct {
	UserID string  `json:"user_id"`
	SongID string  `json:"song_id"`
	Value  float64 `json:"value"`
}

// TrainingSet is the prepared rating triplets of an interaction table.
type TrainingSet struct {
	ratings []Rating
	users   int
	songs   int
}

// Len returns the number of triplets.
func (ts *TrainingSet) Len() int {
	if ts == nil {
		return 0
	}
	return len(ts.ratings)
}

// Users returns the number of distinct users.
func (ts *TrainingSet) Users() int {
	return ts.users
}

// Songs returns the number of distinct songs.
func (ts *TrainingSet) Songs() int {
	return ts.songs
}

// Ratings returns a copy of the triplets in first-appearance order.
func (ts *TrainingSet) Ratings() []Rating {
	out := make([]Rating, len(ts.ratings))
	copy(out, ts.ratings)
	return out
}

// trainTestSplit shuffles ratings with a seeded source and holds out
// ceil(fraction*n) of them. The train partition keeps input order.
func trainTestSplit(ratings []Rating, fraction float64, seed int64) (train, test []Rating) {
	n := len(ratings)
	nTest := int(math.Ceil(fraction * float64(n)))
	if nTest > n {
		nTest = n
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n) //nolint:gosec // deterministic split, not security sensitive

	test = make([]Rating, 0, nTest)
	for _, idx := range perm[:nTest] {
		test = append(test, ratings[idx])
	}

	trainIdx := append([]int(nil), perm[nTest:]...)
	sort.Ints(trainIdx)
	train = make([]Rating, 0, len(trainIdx))
	for _, idx := range trainIdx {
		train = append(train, ratings[idx])
	}
	return train, test
}
