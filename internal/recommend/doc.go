// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

// Package recommend defines the data model, configuration and error taxonomy
// of the song recommendation engine.
//
// # Architecture
//
// The engine turns implicit listening counts into ranked song lists using
// three independent strategies, all fit against the same joined table:
//
//   - Popularity: global play-count chart (algorithms.Popularity)
//   - Collaborative Filtering: user-based k-NN with means (algorithms.UserKNN)
//   - Content Similarity: bag-of-words cosine over artist and title (algorithms.ContentSimilarity)
//
// The InteractionTable is produced by the dataset package from a plays file
// and a metadata file and is never mutated after construction.
//
// # Errors
//
// Every operation fails with a *Error carrying a closed ErrorKind. Callers
// match with errors.Is against the sentinels (ErrNotFound, ErrLoad, ...) or
// switch on KindOf(err). Packages under recommend never log.
//
// # Usage
//
//	table, err := dataset.Load(ctx, "triplets.txt", "unique_tracks.txt")
//	if err != nil {
//	    return err
//	}
//	eng, err := engine.New(recommend.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	if _, err := eng.Fit(ctx, table); err != nil {
//	    return err
//	}
//	songs, err := eng.Similar("SOAKIMP12A8C130995", 5)
package recommend
