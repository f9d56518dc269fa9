// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package dataset

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tomtom215/songrec/internal/recommend"
)

const (
	fixturePlays = "u1\ts1\t5\n" +
		"u1\ts2\t1\n" +
		"u2\ts1\t3\n" +
		"u2\ts3\t2\n"

	fixtureMetadata = "t1<SEP>s1<SEP>A<SEP>X\n" +
		"t2<SEP>s2<SEP>A<SEP>Y\n" +
		"t3<SEP>s3<SEP>B<SEP>Z\n"
)

func writeFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", name, err)
	}
	return path
}

func TestLoad_Fixture(t *testing.T) {
	dir := t.TempDir()
	plays := writeFixture(t, dir, "triplets.txt", fixturePlays)
	metadata := writeFixture(t, dir, "unique_tracks.txt", fixtureMetadata)

	table, err := Load(context.Background(), plays, metadata)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if table.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", table.Len())
	}

	want := map[string][2]string{"s1": {"A", "X"}, "s2": {"A", "Y"}, "s3": {"B", "Z"}}
	table.Each(func(i int, r recommend.InteractionRow) bool {
		meta := want[r.SongID]
		if !r.HasMetadata || r.ArtistName != meta[0] || r.Release != meta[1] {
			t.Errorf("row %d = %+v, want artist %q release %q", i, r, meta[0], meta[1])
		}
		return true
	})

	first := table.Row(0)
	if first.UserID != "u1" || first.SongID != "s1" || first.PlayCount != 5 {
		t.Errorf("Row(0) = %+v, want u1/s1/5", first)
	}
}

func TestLoadFrom_MissingMetadataKeepsPlays(t *testing.T) {
	plays := fixturePlays + "u3\ts9\t4\n"

	table, err := LoadFrom(context.Background(), strings.NewReader(plays), strings.NewReader(fixtureMetadata))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if table.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", table.Len())
	}

	last := table.Row(4)
	if last.SongID != "s9" || last.HasMetadata || last.ArtistName != "" || last.Release != "" {
		t.Errorf("Row(4) = %+v, want s9 without metadata", last)
	}
}

func TestLoadFrom_DuplicateMetadataKeepsFirst(t *testing.T) {
	metadata := fixtureMetadata + "t4<SEP>s1<SEP>Other Artist<SEP>Other Title\n"
	metadata = "t0<SEP>s3<SEP>First B<SEP>First Z\n" + metadata

	table, err := LoadFrom(context.Background(), strings.NewReader(fixturePlays), strings.NewReader(metadata))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	table.Each(func(_ int, r recommend.InteractionRow) bool {
		switch r.SongID {
		case "s1":
			if r.ArtistName != "A" || r.Release != "X" {
				t.Errorf("s1 row = %q/%q, want A/X", r.ArtistName, r.Release)
			}
		case "s3":
			if r.ArtistName != "First B" || r.Release != "First Z" {
				t.Errorf("s3 row = %q/%q, want First B/First Z", r.ArtistName, r.Release)
			}
		}
		return true
	})
}

func TestLoadFrom_DuplicatePlaysKeptAsRows(t *testing.T) {
	plays := fixturePlays + "u1\ts1\t2\n"

	table, err := LoadFrom(context.Background(), strings.NewReader(plays), strings.NewReader(fixtureMetadata))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if table.Len() != 5 {
		t.Errorf("Len() = %d, want 5", table.Len())
	}
}

func TestLoadFrom_Tolerance(t *testing.T) {
	plays := "u1\ts1\t5\r\n\n   \nu2\ts2\t3\n"

	table, err := LoadFrom(context.Background(), strings.NewReader(plays), strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if table.Len() != 2 {
		t.Errorf("Len() = %d, want 2", table.Len())
	}
	if got := table.Row(0).PlayCount; got != 5 {
		t.Errorf("Row(0).PlayCount = %d, want 5", got)
	}
}

func TestLoadFrom_OpaqueIDs(t *testing.T) {
	plays := "User\tSOng\t1\nuser\tsong\t1\n"

	table, err := LoadFrom(context.Background(), strings.NewReader(plays), strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}
	if got := len(table.SongIDs()); got != 2 {
		t.Errorf("distinct songs = %d, want 2 (ids are case-sensitive)", got)
	}
}

func TestLoadFrom_Errors(t *testing.T) {
	tests := []struct {
		name     string
		plays    string
		metadata string
		wantKind recommend.ErrorKind
	}{
		{"too few plays fields", "u1\ts1\n", fixtureMetadata, recommend.KindPlaysUnreadable},
		{"too many plays fields", "u1\ts1\t1\textra\n", fixtureMetadata, recommend.KindPlaysUnreadable},
		{"non numeric play count", "u1\ts1\tmany\n", fixtureMetadata, recommend.KindPlaysUnreadable},
		{"negative play count", "u1\ts1\t-3\n", fixtureMetadata, recommend.KindPlaysUnreadable},
		{"zero play count", "u1\ts1\t0\n", fixtureMetadata, recommend.KindPlaysUnreadable},
		{"empty song id", "u1\t\t4\n", fixtureMetadata, recommend.KindPlaysUnreadable},
		{"metadata with three fields", fixturePlays, "t1<SEP>s1<SEP>A\n", recommend.KindMetadataUnreadable},
		{"metadata with empty song id", fixturePlays, "t1<SEP><SEP>A<SEP>X\n", recommend.KindMetadataUnreadable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := LoadFrom(context.Background(), strings.NewReader(tt.plays), strings.NewReader(tt.metadata))
			if err == nil {
				t.Fatal("LoadFrom() error = nil, want error")
			}
			if table != nil {
				t.Error("LoadFrom() returned a table on failure")
			}
			if !errors.Is(err, recommend.ErrLoad) {
				t.Errorf("errors.Is(err, ErrLoad) = false for %v", err)
			}
			if got := recommend.KindOf(err); got != tt.wantKind {
				t.Errorf("KindOf() = %v, want %v", got, tt.wantKind)
			}
		})
	}
}

func TestLoad_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	plays := writeFixture(t, dir, "triplets.txt", fixturePlays)
	metadata := writeFixture(t, dir, "unique_tracks.txt", fixtureMetadata)
	missing := filepath.Join(dir, "missing.txt")

	t.Run("plays", func(t *testing.T) {
		_, err := Load(context.Background(), missing, metadata)
		if got := recommend.KindOf(err); got != recommend.KindPlaysUnreadable {
			t.Errorf("KindOf() = %v, want %v", got, recommend.KindPlaysUnreadable)
		}
		if !errors.Is(err, os.ErrNotExist) {
			t.Errorf("error %v does not wrap os.ErrNotExist", err)
		}
	})

	t.Run("metadata", func(t *testing.T) {
		_, err := Load(context.Background(), plays, missing)
		if got := recommend.KindOf(err); got != recommend.KindMetadataUnreadable {
			t.Errorf("KindOf() = %v, want %v", got, recommend.KindMetadataUnreadable)
		}
	})
}

func TestJoin_Errors(t *testing.T) {
	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Join(ctx, []recommend.PlayRecord{{UserID: "u1", SongID: "s1", PlayCount: 1}}, nil)
		if got := recommend.KindOf(err); got != recommend.KindJoinFailed {
			t.Errorf("KindOf() = %v, want %v", got, recommend.KindJoinFailed)
		}
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error %v does not wrap context.Canceled", err)
		}
	})

	t.Run("empty song id", func(t *testing.T) {
		_, err := Join(context.Background(), []recommend.PlayRecord{{UserID: "u1", PlayCount: 1}}, nil)
		if got := recommend.KindOf(err); got != recommend.KindJoinFailed {
			t.Errorf("KindOf() = %v, want %v", got, recommend.KindJoinFailed)
		}
	})
}

func TestSource_Load(t *testing.T) {
	dir := t.TempDir()
	src := Source{
		PlaysPath:    writeFixture(t, dir, "triplets.txt", fixturePlays),
		MetadataPath: writeFixture(t, dir, "unique_tracks.txt", fixtureMetadata),
	}

	table, err := src.Load(context.Background())
	if err != nil {
		t.Fatalf("Source.Load() error = %v", err)
	}
	if table.Len() != 4 {
		t.Errorf("Len() = %d, want 4", table.Len())
	}
	if !strings.Contains(src.String(), "triplets.txt") {
		t.Errorf("String() = %q, want plays path", src.String())
	}
}
