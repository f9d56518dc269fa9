// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package recommend

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
)

func TestError_Is(t *testing.T) {
	tests := []struct {
		name   string
		kind   ErrorKind
		target error
		want   bool
	}{
		{"plays unreadable is a load error", KindPlaysUnreadable, ErrLoad, true},
		{"metadata unreadable is a load error", KindMetadataUnreadable, ErrLoad, true},
		{"join failed is a load error", KindJoinFailed, ErrLoad, true},
		{"empty input is not a load error", KindEmptyInput, ErrLoad, false},
		{"not found matches", KindNotFound, ErrNotFound, true},
		{"not found is not not fitted", KindNotFound, ErrNotFitted, false},
		{"empty corpus matches", KindEmptyCorpus, ErrEmptyCorpus, true},
		{"prediction matches", KindPrediction, ErrPrediction, true},
		{"train is not prepare", KindTrain, ErrPrepare, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewError(tt.kind, "op", "", nil)
			if got := errors.Is(err, tt.target); got != tt.want {
				t.Errorf("errors.Is(%v, %v) = %v, want %v", err, tt.target, got, tt.want)
			}
		})
	}
}

func TestError_WrapsCause(t *testing.T) {
	err := NewError(KindPlaysUnreadable, "dataset.load", "plays.txt", io.ErrUnexpectedEOF)
	wrapped := fmt.Errorf("startup: %w", err)

	if !errors.Is(wrapped, io.ErrUnexpectedEOF) {
		t.Error("wrapped error does not match its cause")
	}
	if !errors.Is(wrapped, ErrLoad) {
		t.Error("wrapped error does not match ErrLoad")
	}
	if got := KindOf(wrapped); got != KindPlaysUnreadable {
		t.Errorf("KindOf() = %v, want %v", got, KindPlaysUnreadable)
	}

	msg := err.Error()
	for _, part := range []string{"dataset.load", "plays_unreadable", `"plays.txt"`, "unexpected EOF"} {
		if !strings.Contains(msg, part) {
			t.Errorf("Error() = %q, want it to contain %q", msg, part)
		}
	}
}

func TestKindOf_PlainError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != KindUnknown {
		t.Errorf("KindOf(plain) = %v, want %v", got, KindUnknown)
	}
	if got := KindOf(nil); got != KindUnknown {
		t.Errorf("KindOf(nil) = %v, want %v", got, KindUnknown)
	}
}

func TestErrorKind_String(t *testing.T) {
	kinds := []ErrorKind{
		KindPlaysUnreadable, KindMetadataUnreadable, KindJoinFailed, KindEmptyInput,
		KindEmptyCorpus, KindNotFitted, KindNotFound, KindPrepare, KindTrain, KindPrediction,
	}
	seen := make(map[string]bool)
	for _, k := range kinds {
		s := k.String()
		if s == "unknown" {
			t.Errorf("ErrorKind(%d).String() = unknown", k)
		}
		if seen[s] {
			t.Errorf("ErrorKind(%d).String() = %q is not unique", k, s)
		}
		seen[s] = true
	}
	if got := ErrorKind(99).String(); got != "unknown" {
		t.Errorf("ErrorKind(99).String() = %q, want unknown", got)
	}
}
