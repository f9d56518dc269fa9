// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

/*
Package services provides suture.Service wrappers for Songrec components.

# Available Services

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts the ListenAndServe pattern to Serve

Fit Service (FitService):
  - Loads the dataset through a BreakerLoader and fits the engine
  - Fits on startup, on an optional interval, and on Refit requests
  - Refit requests are throttled by a golang.org/x/time/rate token bucket
  - Runs publish hooks (for example clearing the response cache)

Dataset Loader (BreakerLoader):
  - Wraps a TableLoader in a sony/gobreaker circuit breaker
  - Reports state and outcomes through the metrics package

# Usage

	loader := services.NewBreakerLoader(func(ctx context.Context) (*recommend.InteractionTable, error) {
	    return dataset.Load(ctx, cfg.Dataset.PlaysPath, cfg.Dataset.MetadataPath)
	}, services.BreakerConfig{MaxFailures: 3, OpenTimeout: time.Minute})

	fit := services.NewFitService(eng, loader.Load, services.FitServiceConfig{
	    FitOnStartup: true,
	}, logging.Logger())
	fit.OnPublish(func(*engine.FitReport) { responseCache.Clear() })

	tree.AddDataService(fit)

# Return Behavior

Serve returns ctx.Err() on shutdown. Load and fit failures are logged and
reported to Refit callers; they do not stop the fit service.
*/
package services
