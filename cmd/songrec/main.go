// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

// Package main is the songrec command line tool.
//
// Each command loads the dataset, fits the scorer it needs and prints one
// JSON document on stdout:
//
//	songrec charts
//	songrec stats
//	songrec popular [--user USER] [--user-col COLUMN] [--item-col COLUMN]
//	songrec collaborative --user USER [--n 5]
//	songrec neighbors --user USER [--n 5]
//	songrec content --song SONG [--n 5] [--with SONG]
//	songrec evaluate [--limit 20]
//
// Dataset paths and engine parameters come from the same configuration as
// the server (config file, then environment) and can be overridden with
// --plays, --metadata, --k and --test-fraction.
//
// Failures are printed to stderr as {"error": "...", "status": 500} and
// the process exits with status 1.
package main

import (
	"io"
	"os"

	"github.com/goccy/go-json"
)

// cliError is the stderr payload of a failed command.
type cliError struct {
	Error  string `json:"error"`
	Status int    `json:"status"`
}

func main() {
	os.Exit(execute(os.Args[1:], os.Stdout, os.Stderr))
}

// execute runs the command line and returns the process exit code.
func execute(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		writeError(stderr, err)
		return 1
	}
	return 0
}

func writeError(w io.Writer, err error) {
	payload, marshalErr := json.Marshal(cliError{Error: err.Error(), Status: 500})
	if marshalErr != nil {
		payload = []byte(`{"error":"internal error","status":500}`)
	}
	_, _ = w.Write(append(payload, '\n'))
}
