// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

/*
Package supervisor provides process supervision for Songrec using suture v4.

# Overview

The supervisor tree organizes services into two layers:

	RootSupervisor ("songrec")
	├── DataSupervisor ("data-layer")
	│   └── FitService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A crash while loading or fitting restarts the fit service only. The HTTP
server keeps answering from the last published engine snapshot.

# Usage Example

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"),
	    supervisor.TreeConfigFrom(cfg.Supervisor))
	if err != nil {
	    return err
	}

	tree.AddDataService(fitService)
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	errChan := tree.ServeBackground(ctx)

# Failure Handling

Suture keeps a failure counter that decays over FailureDecay seconds. When the
counter exceeds FailureThreshold the supervisor waits FailureBackoff before
the next restart.

# Service Interface

All services implement suture.Service:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Return behavior:
  - Return nil: Service stopped cleanly, will not be restarted
  - Return error: Service crashed, will be restarted
  - Context canceled: Shutdown requested, return promptly

Supervisor events are logged through the sutureslog hook, which receives a
log/slog logger backed by zerolog (see logging.NewSlogLogger).
*/
package supervisor
