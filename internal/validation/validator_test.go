// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package validation

import (
	"strings"
	"testing"
)

type topNRequest struct {
	SongID string `query:"song_id" validate:"identifier"`
	N      int    `query:"n" validate:"min=0,max=100"`
}

type evaluationRequest struct {
	Limit  int    `json:"limit" validate:"gte=0,lte=1000"`
	Format string `json:"format" validate:"omitempty,oneof=json csv"`
}

func TestGetValidator_Singleton(t *testing.T) {
	v1 := GetValidator()
	v2 := GetValidator()

	if v1 == nil {
		t.Fatal("GetValidator() returned nil")
	}
	if v1 != v2 {
		t.Error("GetValidator() should return the same singleton instance")
	}
}

func TestValidateStruct_Valid(t *testing.T) {
	tests := []struct {
		name  string
		input interface{}
	}{
		{"song id and n", &topNRequest{SongID: "SOAKIMP12A8C130995", N: 5}},
		{"zero n means default", &topNRequest{SongID: "SOX", N: 0}},
		{"max n", &topNRequest{SongID: "SOX", N: 100}},
		{"id with space", &topNRequest{SongID: "SO A", N: 5}},
		{"unicode id", &topNRequest{SongID: "björk-001"}},
		{"evaluation without format", &evaluationRequest{Limit: 10}},
		{"evaluation csv", &evaluationRequest{Limit: 0, Format: "csv"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := ValidateStruct(tt.input); err != nil {
				t.Errorf("ValidateStruct() error = %v", err)
			}
		})
	}
}

func TestValidateStruct_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantTag   string
		wantMsg   string
	}{
		{"empty id", &topNRequest{N: 5}, "song_id", "identifier", "song_id must be a non-empty printable identifier"},
		{"id with tab", &topNRequest{SongID: "SO\tA", N: 5}, "song_id", "identifier", "printable"},
		{"id with control char", &topNRequest{SongID: "SO\x00A"}, "song_id", "identifier", "identifier"},
		{"id too long", &topNRequest{SongID: strings.Repeat("a", MaxIdentifierLength+1)}, "song_id", "identifier", "identifier"},
		{"negative n", &topNRequest{SongID: "S", N: -1}, "n", "min", "n must be at least 0"},
		{"n too large", &topNRequest{SongID: "S", N: 101}, "n", "max", "n must be at most 100"},
		{"limit too large", &evaluationRequest{Limit: 1001}, "limit", "lte", "limit must be less than or equal to 1000"},
		{"bad format", &evaluationRequest{Format: "xml"}, "format", "oneof", "format must be one of: json csv"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if err == nil {
				t.Fatal("ValidateStruct() error = nil, want error")
			}
			errs := err.Errors()
			if len(errs) != 1 {
				t.Fatalf("len(Errors()) = %d, want 1", len(errs))
			}
			if errs[0].Field() != tt.wantField {
				t.Errorf("Field() = %q, want %q", errs[0].Field(), tt.wantField)
			}
			if errs[0].Tag() != tt.wantTag {
				t.Errorf("Tag() = %q, want %q", errs[0].Tag(), tt.wantTag)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Error() = %q, want to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	err := ValidateStruct(&topNRequest{SongID: "S", N: 500})
	if err == nil {
		t.Fatal("ValidateStruct() error = nil, want error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != ErrorCode {
		t.Errorf("Code = %q, want %q", apiErr.Code, ErrorCode)
	}
	if apiErr.Message != "n must be at most 100" {
		t.Errorf("Message = %q, want %q", apiErr.Message, "n must be at most 100")
	}
	if apiErr.Details["field"] != "n" {
		t.Errorf("Details[field] = %v, want n", apiErr.Details["field"])
	}
	if apiErr.Details["value"] != 500 {
		t.Errorf("Details[value] = %v, want 500", apiErr.Details["value"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	err := ValidateStruct(&topNRequest{SongID: "", N: -3})
	if err == nil {
		t.Fatal("ValidateStruct() error = nil, want error")
	}

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("Details[fields] type = %T, want []map[string]interface{}", apiErr.Details["fields"])
	}
	if len(fields) != 2 {
		t.Errorf("len(fields) = %d, want 2", len(fields))
	}
	if !strings.Contains(apiErr.Message, "; ") {
		t.Errorf("Message = %q, want joined messages", apiErr.Message)
	}
}

func TestToAPIError_Empty(t *testing.T) {
	apiErr := (&RequestValidationError{}).ToAPIError()
	if apiErr.Code != ErrorCode || apiErr.Message != "Validation failed" {
		t.Errorf("ToAPIError() = %+v, want generic validation failure", apiErr)
	}
	if got := (&RequestValidationError{}).Error(); got != "validation failed" {
		t.Errorf("Error() = %q, want %q", got, "validation failed")
	}
}

func TestFieldNameFallsBackToGoName(t *testing.T) {
	type untagged struct {
		Count int `validate:"min=1"`
	}
	err := ValidateStruct(&untagged{})
	if err == nil {
		t.Fatal("ValidateStruct() error = nil, want error")
	}
	if got := err.Errors()[0].Field(); got != "Count" {
		t.Errorf("Field() = %q, want Count", got)
	}
}
