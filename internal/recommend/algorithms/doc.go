// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

// Package algorithms implements the song scorers behind the engine.
//
// Every scorer is fit on a *recommend.InteractionTable and then queried.
// Queries made before a successful fit return a recommend.KindNotFitted
// error. Fitting again replaces the fitted state atomically; a failed fit
// leaves the previous state in place.
//
// # Scorers
//
// Popularity ranks songs by summed play count. It needs no user history
// and serves as the cold-start fallback:
//
//	pop := algorithms.NewPopularity(algorithms.PopularityConfig{MaxItems: 10})
//	if err := pop.Fit(ctx, table); err != nil {
//	    return err
//	}
//	chart, err := pop.Recommend("user-1")
//
// UserKNN is user-based k-nearest-neighbors with mean centering. Play counts
// are treated as ratings. Prepare projects the table into triplets, Train
// splits them into train and test partitions with a seeded shuffle, computes
// cosine similarities between users and evaluates the held-out partition:
//
//	knn := algorithms.NewUserKNN(algorithms.DefaultKNNConfig())
//	ts, err := knn.Prepare(table)
//	if err != nil {
//	    return err
//	}
//	model, err := knn.Train(ctx, ts)
//	if err != nil {
//	    return err
//	}
//	recs, err := model.Recommend(ctx, "user-1", table, 5)
//
// The estimate for user u and song i is
//
//	r̂(u, i) = μ(u) + Σ sim(u, v) (r(v, i) - μ(v)) / Σ sim(u, v)
//
// over the k most similar users v that rated i with positive similarity.
// Users or songs unknown to the model get the global mean and the
// prediction is flagged WasImpossible.
//
// ContentSimilarity fingerprints each unique song as "artist_name release",
// builds bag-of-words count vectors and ranks other songs by cosine
// similarity:
//
//	content := algorithms.NewContentSimilarity(algorithms.DefaultContentConfig())
//	if err := content.Fit(ctx, table); err != nil {
//	    return err
//	}
//	similar, err := content.Recommend("SOAAAGQ12A8C1420C8", 5)
//
// # Ordering
//
// Every ranked output breaks score ties by song id ascending, so results
// are deterministic for a given table and configuration.
//
// # Thread Safety
//
// Fit holds an exclusive lock; queries hold a shared lock. A fitted
// KNNModel is immutable and safe for concurrent use.
package algorithms
