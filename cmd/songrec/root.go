// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/songrec/internal/config"
	"github.com/tomtom215/songrec/internal/logging"
	"github.com/tomtom215/songrec/internal/recommend"
	"github.com/tomtom215/songrec/internal/recommend/dataset"
)

// options holds the persistent flags shared by every command.
type options struct {
	plays        string
	metadata     string
	configPath   string
	k            int
	testFraction float64
	verbose      bool

	stdout io.Writer
	stderr io.Writer
}

// session is the loaded state a command works on.
type session struct {
	cfg    *config.Config
	engine *recommend.Config
	table  *recommend.InteractionTable
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "songrec",
		Short: "Songrec - music recommendations from play counts",
		Long: `songrec loads a play-count dataset with track metadata and prints
popularity charts, collaborative filtering recommendations, content
similarity recommendations and held-out accuracy as JSON.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := "warn"
			if opts.verbose {
				level = "debug"
			}
			logging.Init(logging.Config{
				Level:  level,
				Format: "console",
				Output: opts.stderr,
			})
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&opts.plays, "plays", "", "Path to the tab-separated plays file (default: PLAYS_PATH)")
	flags.StringVar(&opts.metadata, "metadata", "", "Path to the <SEP>-separated metadata file (default: METADATA_PATH)")
	flags.StringVar(&opts.configPath, "config", "", "Path to config file (default: CONFIG_PATH or ./config.yaml)")
	flags.IntVar(&opts.k, "k", 0, "Maximum neighbors per collaborative estimate (default: RECOMMEND_K)")
	flags.Float64Var(&opts.testFraction, "test-fraction", 0, "Share of plays held out for evaluation (default: RECOMMEND_TEST_FRACTION)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log progress to stderr")

	root.AddCommand(
		newChartsCmd(opts),
		newStatsCmd(opts),
		newPopularCmd(opts),
		newCollaborativeCmd(opts),
		newNeighborsCmd(opts),
		newContentCmd(opts),
		newEvaluateCmd(opts),
	)
	return root
}

// loadConfig reads the layered configuration and applies flag overrides.
func (o *options) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("plays") {
		cfg.Dataset.PlaysPath = o.plays
	}
	if flags.Changed("metadata") {
		cfg.Dataset.MetadataPath = o.metadata
	}
	if flags.Changed("k") {
		cfg.Recommend.K = o.k
	}
	if flags.Changed("test-fraction") {
		cfg.Recommend.TestFraction = o.testFraction
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid flags: %w", err)
	}
	return cfg, nil
}

// open loads the configuration and the dataset.
func (o *options) open(ctx context.Context, cmd *cobra.Command) (*session, error) {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	loadCtx, cancel := context.WithTimeout(ctx, cfg.Dataset.LoadTimeout)
	defer cancel()

	start := time.Now()
	table, err := dataset.Load(loadCtx, cfg.Dataset.PlaysPath, cfg.Dataset.MetadataPath)
	if err != nil {
		return nil, err
	}
	logging.Debug().
		Str("plays_path", cfg.Dataset.PlaysPath).
		Str("metadata_path", cfg.Dataset.MetadataPath).
		Int("rows", table.Len()).
		Dur("duration", time.Since(start)).
		Msg("dataset loaded")

	return &session{
		cfg:    cfg,
		engine: cfg.Recommend.EngineConfig(),
		table:  table,
	}, nil
}

// clampTopN bounds a requested list length to the configured maximum.
func (s *session) clampTopN(n int) int {
	if n > s.engine.Limits.MaxTopN {
		return s.engine.Limits.MaxTopN
	}
	return n
}

// printJSON writes v as one line of JSON.
func (o *options) printJSON(v any) error {
	return json.NewEncoder(o.stdout).Encode(v)
}
