// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/songrec/internal/analytics"
	"github.com/tomtom215/songrec/internal/logging"
	"github.com/tomtom215/songrec/internal/recommend"
	"github.com/tomtom215/songrec/internal/recommend/algorithms"
	"github.com/tomtom215/songrec/internal/recommend/engine"
)

func newChartsCmd(opts *options) *cobra.Command {
	var chartOpts analytics.ChartOptions

	cmd := &cobra.Command{
		Use:   "charts",
		Short: "Top artists and the play count distribution",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			return opts.printJSON(analytics.BuildCharts(s.table, chartOpts))
		},
	}
	cmd.Flags().IntVar(&chartOpts.TopArtists, "artists", analytics.DefaultTopArtists, "Number of top artists")
	cmd.Flags().IntVar(&chartOpts.Bins, "bins", analytics.DefaultBins, "Histogram buckets for the play count distribution")
	cmd.Flags().BoolVar(&chartOpts.OmitPlays, "omit-plays", false, "Drop the raw play count list")
	return cmd
}

func newStatsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Dataset totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := opts.open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			return opts.printJSON(analytics.ComputeStats(s.table))
		},
	}
}

func newPopularCmd(opts *options) *cobra.Command {
	var userID, userCol, itemCol string

	cmd := &cobra.Command{
		Use:   "popular",
		Short: "Most played songs, labelled with a user",
		Long: `popular prints the songs with the highest summed play count. The chart is
the same for every user; --user only labels the entries and defaults to
the first user in the plays file.

With --user-col or --item-col the chart is grouped by --item-col (default
song_id) and each group is scored by the number of interactions that have
a --user-col value (default user_id). Columns are user_id, song_id,
artist_name and release.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			grouped := userCol != "" || itemCol != ""
			users, items := recommend.ColumnUserID, recommend.ColumnSongID
			if userCol != "" {
				col, ok := recommend.ParseColumn(userCol)
				if !ok {
					return fmt.Errorf("unknown user column %q", userCol)
				}
				users = col
			}
			if itemCol != "" {
				col, ok := recommend.ParseColumn(itemCol)
				if !ok {
					return fmt.Errorf("unknown item column %q", itemCol)
				}
				items = col
			}

			ctx := cmd.Context()
			s, err := opts.open(ctx, cmd)
			if err != nil {
				return err
			}

			if userID == "" {
				if ids := s.table.UserIDs(); len(ids) > 0 {
					userID = ids[0]
				}
			}

			pop := algorithms.NewPopularity(algorithms.PopularityConfig{MaxItems: s.engine.Popularity.TopN})
			if grouped {
				err = pop.Create(ctx, s.table, users, items)
			} else {
				err = pop.Fit(ctx, s.table)
			}
			if err != nil {
				return err
			}
			chart, err := pop.Recommend(userID)
			if err != nil {
				return err
			}
			return opts.printJSON(chart)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User id to label the chart with")
	cmd.Flags().StringVar(&userCol, "user-col", "", "Column whose presence counts an interaction")
	cmd.Flags().StringVar(&itemCol, "item-col", "", "Column to group the chart by")
	return cmd
}

func newCollaborativeCmd(opts *options) *cobra.Command {
	var (
		userID string
		topN   int
	)

	cmd := &cobra.Command{
		Use:   "collaborative",
		Short: "Unplayed songs ranked by user k-NN estimate",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("user id is required for collaborative filtering")
			}
			if topN < 0 {
				return fmt.Errorf("n must not be negative, got %d", topN)
			}

			ctx := cmd.Context()
			s, err := opts.open(ctx, cmd)
			if err != nil {
				return err
			}
			model, err := trainKNN(cmd, s)
			if err != nil {
				return err
			}
			songs, err := model.Recommend(ctx, userID, s.table, s.clampTopN(topN))
			if err != nil {
				return err
			}
			return opts.printJSON(songs)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User id to recommend for (required)")
	cmd.Flags().IntVar(&topN, "n", 0, "Number of recommendations (default: RECOMMEND_DEFAULT_TOP_N)")
	return cmd
}

func newNeighborsCmd(opts *options) *cobra.Command {
	var (
		userID string
		topN   int
	)

	cmd := &cobra.Command{
		Use:   "neighbors",
		Short: "Users with the most similar listening history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID == "" {
				return errors.New("user id is required to find neighbors")
			}
			if topN < 0 {
				return fmt.Errorf("n must not be negative, got %d", topN)
			}

			s, err := opts.open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			model, err := trainKNN(cmd, s)
			if err != nil {
				return err
			}
			users, err := model.Neighbors(userID, s.clampTopN(topN))
			if err != nil {
				return err
			}
			return opts.printJSON(users)
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "User id to find neighbors for (required)")
	cmd.Flags().IntVar(&topN, "n", 0, "Number of neighbors (default: RECOMMEND_DEFAULT_TOP_N)")
	return cmd
}

func newContentCmd(opts *options) *cobra.Command {
	var (
		songID, otherID string
		topN            int
	)

	cmd := &cobra.Command{
		Use:   "content",
		Short: "Songs with the most similar artist and release text",
		Long: `content prints the songs whose artist and release text is most similar to
--song. With --with it prints the similarity of the two songs instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if songID == "" {
				return errors.New("song id is required for content-based filtering")
			}
			if topN < 0 {
				return fmt.Errorf("n must not be negative, got %d", topN)
			}

			ctx := cmd.Context()
			s, err := opts.open(ctx, cmd)
			if err != nil {
				return err
			}
			content := algorithms.NewContentSimilarity(engine.ContentConfig(s.engine))
			if err := content.Fit(ctx, s.table); err != nil {
				return err
			}
			logging.Debug().
				Int("songs", content.Songs()).
				Int("vocabulary", content.VocabularySize()).
				Bool("matrix", content.HasMatrix()).
				Msg("content corpus built")

			if otherID != "" {
				sim, err := content.Similarity(songID, otherID)
				if err != nil {
					return err
				}
				return opts.printJSON(map[string]any{"song_id": songID, "other_id": otherID, "similarity": sim})
			}

			similar, err := content.Recommend(songID, s.clampTopN(topN))
			if err != nil {
				return err
			}
			return opts.printJSON(similar)
		},
	}
	cmd.Flags().StringVar(&songID, "song", "", "Song id to find similar songs for (required)")
	cmd.Flags().StringVar(&otherID, "with", "", "Second song id; prints the pair similarity")
	cmd.Flags().IntVar(&topN, "n", 0, "Number of recommendations (default: RECOMMEND_DEFAULT_TOP_N)")
	return cmd
}

func newEvaluateCmd(opts *options) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Held-out RMSE and MAE of the collaborative model",
		Long: `evaluate trains the collaborative model on the training partition and
prints its accuracy on the held-out plays together with up to --limit
individual predictions.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("limit must not be negative, got %d", limit)
			}

			s, err := opts.open(cmd.Context(), cmd)
			if err != nil {
				return err
			}
			model, err := trainKNN(cmd, s)
			if err != nil {
				return err
			}

			eval := model.Evaluation()
			if len(eval.Predictions) > limit {
				eval.Predictions = eval.Predictions[:limit]
			}
			return opts.printJSON(eval)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of held-out predictions to print")
	return cmd
}

// trainKNN prepares and trains the collaborative model on the session table.
func trainKNN(cmd *cobra.Command, s *session) (*algorithms.KNNModel, error) {
	ctx := cmd.Context()
	knn := algorithms.NewUserKNN(engine.KNNConfig(s.engine))

	ts, err := knn.Prepare(s.table)
	if err != nil {
		return nil, err
	}
	model, err := knn.Train(ctx, ts)
	if err != nil {
		return nil, err
	}
	logging.Debug().
		Int("users", model.Users()).
		Int("songs", model.Songs()).
		Int("train", model.TrainSize()).
		Int("test", model.TestSize()).
		Msg("collaborative model trained")
	return model, nil
}
