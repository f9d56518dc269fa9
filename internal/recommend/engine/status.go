// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package engine

import (
	"time"
)

// FitReport describes one fit attempt.
type FitReport struct {
	Version   int64          `json:"version"`
	Rows      int            `json:"rows"`
	Users     int            `json:"users"`
	Songs     int            `json:"songs"`
	StartedAt time.Time      `json:"started_at"`
	Duration  time.Duration  `json:"duration_ns"`
	Scorers   []ScorerReport `json:"scorers"`

	// Published is false when the previous snapshot was kept.
	Published bool `json:"published"`
}

// ScorerReport is the outcome of fitting one scorer.
type ScorerReport struct {
	Name     string        `json:"name"`
	Duration time.Duration `json:"duration_ns"`
	Err      error         `json:"-"`
}

// Failed returns the names of the scorers that did not fit.
func (r *FitReport) Failed() []string {
	var names []string
	for _, s := range r.Scorers {
		if s.Err != nil {
			names = append(names, s.Name)
		}
	}
	return names
}

// Status is a point-in-time view of the engine.
type Status struct {
	Fitted   bool           `json:"fitted"`
	Fitting  bool           `json:"fitting"`
	Version  int64          `json:"version"`
	FittedAt time.Time      `json:"fitted_at,omitempty"`
	Rows     int            `json:"rows"`
	Users    int            `json:"users"`
	Songs    int            `json:"songs"`
	Scorers  []ScorerStatus `json:"scorers"`
}

// ScorerStatus is the state of one scorer in the published snapshot.
type ScorerStatus struct {
	Name   string `json:"name"`
	Fitted bool   `json:"fitted"`
	Error  string `json:"error,omitempty"`

	// Detail carries scorer specific figures such as vocabulary size.
	Detail map[string]any `json:"detail,omitempty"`
}

// Status returns the current engine status.
func (e *Engine) Status() Status {
	st := Status{Fitting: e.fitting.Load()}

	s := e.snapshot.Load()
	if s == nil {
		for _, name := range []string{ScorerPopularity, ScorerCollaborative, ScorerContent} {
			st.Scorers = append(st.Scorers, ScorerStatus{Name: name})
		}
		if r := e.report.Load(); r != nil {
			for i := range st.Scorers {
				for _, sr := range r.Scorers {
					if sr.Name == st.Scorers[i].Name && sr.Err != nil {
						st.Scorers[i].Error = sr.Err.Error()
					}
				}
			}
		}
		return st
	}

	st.Fitted = true
	st.Version = s.version
	st.FittedAt = s.fittedAt
	st.Rows = s.table.Len()
	st.Users = len(s.table.UserIDs())
	st.Songs = len(s.table.SongIDs())

	st.Scorers = []ScorerStatus{
		scorerStatus(s, ScorerPopularity, func() map[string]any {
			return map[string]any{"version": s.popularity.Version()}
		}),
		scorerStatus(s, ScorerCollaborative, func() map[string]any {
			return map[string]any{
				"users":       s.knn.Users(),
				"songs":       s.knn.Songs(),
				"train_size":  s.knn.TrainSize(),
				"test_size":   s.knn.TestSize(),
				"global_mean": s.knn.GlobalMean(),
			}
		}),
		scorerStatus(s, ScorerContent, func() map[string]any {
			return map[string]any{
				"songs":      s.content.Songs(),
				"vocabulary": s.content.VocabularySize(),
				"matrix":     s.content.HasMatrix(),
			}
		}),
	}
	return st
}

func scorerStatus(s *snapshot, name string, detail func() map[string]any) ScorerStatus {
	if err, failed := s.failures[name]; failed {
		return ScorerStatus{Name: name, Error: err.Error()}
	}
	return ScorerStatus{Name: name, Fitted: true, Detail: detail()}
}
