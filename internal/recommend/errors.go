// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package recommend

import (
	"errors"
	"fmt"
)

// ErrorKind is the closed set of failure categories reported by the engine.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindPlaysUnreadable: the plays source could not be opened or parsed.
	KindPlaysUnreadable
	// KindMetadataUnreadable: the metadata source could not be opened or parsed.
	KindMetadataUnreadable
	// KindJoinFailed: plays and metadata could not be joined.
	KindJoinFailed
	// KindEmptyInput: a scorer was fit on a table with no rows.
	KindEmptyInput
	// KindEmptyCorpus: no song had metadata to build a fingerprint from.
	KindEmptyCorpus
	// KindNotFitted: a query was made before fit.
	KindNotFitted
	// KindNotFound: an unknown song or user id was queried.
	KindNotFound
	// KindPrepare: the table cannot be projected into training triplets.
	KindPrepare
	// KindTrain: a scorer could not be trained or fitted, including a
	// cancelled fit.
	KindTrain
	// KindPrediction: no personalized estimate exists for the pair.
	KindPrediction
)

// String returns the kind name used in error codes and metric labels.
func (k ErrorKind) String() string {
	switch k {
	case KindPlaysUnreadable:
		return "plays_unreadable"
	case KindMetadataUnreadable:
		return "metadata_unreadable"
	case KindJoinFailed:
		return "join_failed"
	case KindEmptyInput:
		return "empty_input"
	case KindEmptyCorpus:
		return "empty_corpus"
	case KindNotFitted:
		return "not_fitted"
	case KindNotFound:
		return "not_found"
	case KindPrepare:
		return "prepare"
	case KindTrain:
		return "train"
	case KindPrediction:
		return "prediction"
	default:
		return "unknown"
	}
}

// IsLoad reports whether the kind is one of the loader failures.
func (k ErrorKind) IsLoad() bool {
	return k == KindPlaysUnreadable || k == KindMetadataUnreadable || k == KindJoinFailed
}

// kindSentinel lets errors.Is match an *Error against a kind.
type kindSentinel struct {
	kind ErrorKind
	load bool
}

func (s *kindSentinel) Error() string {
	if s.load {
		return "load error"
	}
	return s.kind.String()
}

// Sentinels for errors.Is. ErrLoad matches all three loader kinds.
var (
	ErrLoad        error = &kindSentinel{load: true}
	ErrEmptyInput  error = &kindSentinel{kind: KindEmptyInput}
	ErrEmptyCorpus error = &kindSentinel{kind: KindEmptyCorpus}
	ErrNotFitted   error = &kindSentinel{kind: KindNotFitted}
	ErrNotFound    error = &kindSentinel{kind: KindNotFound}
	ErrPrepare     error = &kindSentinel{kind: KindPrepare}
	ErrTrain       error = &kindSentinel{kind: KindTrain}
	ErrPrediction  error = &kindSentinel{kind: KindPrediction}
)

// Error is the typed error returned by every engine operation. Op names the
// failing operation (e.g. "popularity.fit") and ID the offending identifier
// such as a song id, user id or file path.
type Error struct {
	Kind ErrorKind
	Op   string
	ID   string
	Err  error
}

// NewError creates an engine error.
func NewError(kind ErrorKind, op, id string, err error) *Error {
	return &Error{Kind: kind, Op: op, ID: id, Err: err}
}

// Errorf creates an engine error with a formatted cause.
func Errorf(kind ErrorKind, op, id, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, ID: id, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	msg := e.Op + ": " + e.Kind.String()
	if e.ID != "" {
		msg += " " + fmt.Sprintf("%q", e.ID)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the kind sentinels.
func (e *Error) Is(target error) bool {
	s, ok := target.(*kindSentinel)
	if !ok {
		return false
	}
	if s.load {
		return e.Kind.IsLoad()
	}
	return e.Kind == s.kind
}

// KindOf returns the kind of the first *Error in err's chain.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
