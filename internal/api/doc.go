// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

/*
Package api provides the HTTP API of the Songrec server.

Routes are served by a chi router (SetupChi) with this middleware stack:
request id, real IP, access log, panic recovery, CORS and Prometheus
instrumentation. Data routes are additionally rate limited per client IP
with go-chi/httprate and gzip compressed.

# Endpoints

	GET  /api/v1/health/live
	GET  /api/v1/health/ready                              503 until the first fit is published
	GET  /api/v1/charts?artists=&bins=&omit_plays=
	GET  /api/v1/stats
	GET  /api/v1/recommendations/popular?user_id=&user_col=&item_col=
	GET  /api/v1/recommendations/collaborative/{userID}?n=
	GET  /api/v1/recommendations/predict/{userID}/{songID}
	GET  /api/v1/recommendations/content/{songID}?n=
	GET  /api/v1/recommendations/content/{songID}/similarity/{otherID}
	GET  /api/v1/recommendations/neighbors/{userID}?n=
	GET  /api/v1/recommendations/evaluation?limit=
	GET  /api/v1/recommendations/status
	POST /api/v1/recommendations/refit?reload=&wait=
	GET  /metrics

Every JSON response uses the models.APIResponse envelope.

# Errors

Engine and service errors map to HTTP statuses in classifyError:

	recommend.ErrNotFound            404 NOT_FOUND
	recommend.ErrNotFitted           503 NOT_FITTED
	invalid parameter                400 VALIDATION_ERROR
	services.ErrRefitThrottled       429 REFIT_THROTTLED
	services.ErrRefitBusy            409 REFIT_BUSY
	services.ErrDatasetUnavailable   503 DATASET_UNAVAILABLE
	anything else                    500 INTERNAL_ERROR

# Caching

List endpoints and charts are cached in a cache.Cacher keyed by endpoint,
normalized parameters and the published fit version. The server also
clears the cache whenever a fit is published; the version in the key
covers a query that stores its answer after that clear.
*/
package api
