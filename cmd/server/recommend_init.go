// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package main

import (
	"github.com/rs/zerolog"

	"github.com/tomtom215/songrec/internal/config"
	"github.com/tomtom215/songrec/internal/metrics"
	"github.com/tomtom215/songrec/internal/recommend/dataset"
	"github.com/tomtom215/songrec/internal/recommend/engine"
	"github.com/tomtom215/songrec/internal/supervisor"
	"github.com/tomtom215/songrec/internal/supervisor/services"
)

// RecommendComponents holds all recommendation-related components.
type RecommendComponents struct {
	Engine  *engine.Engine
	Loader  *services.BreakerLoader
	Service *services.FitService
}

// initRecommend creates the engine, the breaker-guarded dataset loader and
// the fit service, and adds the fit service to the data layer of tree.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initRecommend(cfg *config.Config, logger zerolog.Logger, tree *supervisor.SupervisorTree) (*RecommendComponents, error) {
	logger.Info().
		Str("plays_path", cfg.Dataset.PlaysPath).
		Str("metadata_path", cfg.Dataset.MetadataPath).
		Int("k", cfg.Recommend.K).
		Float64("test_fraction", cfg.Recommend.TestFraction).
		Bool("fit_on_startup", cfg.Recommend.FitOnStartup).
		Dur("refit_interval", cfg.Recommend.RefitInterval).
		Msg("initializing recommendation engine")

	eng, err := engine.New(cfg.Recommend.EngineConfig())
	if err != nil {
		return nil, err
	}

	source := dataset.Source{
		PlaysPath:    cfg.Dataset.PlaysPath,
		MetadataPath: cfg.Dataset.MetadataPath,
	}
	loader := services.NewBreakerLoader(source.Load, services.BreakerConfig{
		Name:        "dataset",
		MaxFailures: cfg.Dataset.BreakerMaxFailures,
		OpenTimeout: cfg.Dataset.BreakerTimeout,
	})

	service := services.NewFitService(eng, loader.Load, services.FitServiceConfig{
		FitOnStartup:     cfg.Recommend.FitOnStartup,
		RefitInterval:    cfg.Recommend.RefitInterval,
		LoadTimeout:      cfg.Dataset.LoadTimeout,
		RefitMinInterval: cfg.Recommend.RefitMinInterval,
		RefitBurst:       cfg.Recommend.RefitBurst,
	}, logger)

	// Held-out accuracy is only known after a publish.
	service.OnPublish(func(*engine.FitReport) {
		if eval, err := eng.Evaluation(); err == nil && eval.Count > 0 {
			metrics.HeldOutRMSE.Set(eval.RMSE)
		}
	})

	tree.AddDataService(service)
	logger.Info().Str("service", service.String()).Msg("fit service added to supervisor tree")

	return &RecommendComponents{
		Engine:  eng,
		Loader:  loader,
		Service: service,
	}, nil
}
