// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

// Package validation provides request validation using go-playground/validator v10.
//
// The API binds path and query parameters into small request structs and
// validates them here before any engine call:
//
//	type collaborativeRequest struct {
//	    UserID string `query:"user_id" validate:"identifier"`
//	    N      int    `query:"n" validate:"min=0,max=100"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError() // Code "VALIDATION_ERROR"
//	}
//
// Besides the built-in tags, the validator registers "identifier", which
// accepts non-empty printable ids up to MaxIdentifierLength bytes. Spaces
// are allowed since dataset ids are opaque; tabs and control characters
// are not. Messages use the `query` (or `json`) tag name
// of the field.
package validation
