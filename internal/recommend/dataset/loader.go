// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package dataset

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tomtom215/songrec/internal/recommend"
)

const (
	// PlaysDelimiter separates plays fields.
	PlaysDelimiter = "\t"
	// MetadataDelimiter separates metadata fields.
	MetadataDelimiter = "<SEP>"

	// maxLineBytes bounds a single source line.
	maxLineBytes = 1 << 20

	// ctxCheckInterval is how many lines are parsed between cancellation checks.
	ctxCheckInterval = 4096
)

// Source names the two files a table is loaded from.
type Source struct {
	PlaysPath    string `json:"plays_path"`
	MetadataPath string `json:"metadata_path"`
}

// Load loads and joins the source files.
func (s Source) Load(ctx context.Context) (*recommend.InteractionTable, error) {
	return Load(ctx, s.PlaysPath, s.MetadataPath)
}

// String returns a short description for logs.
func (s Source) String() string {
	return s.PlaysPath + " + " + s.MetadataPath
}

// Load reads the plays and metadata files and returns the joined table.
func Load(ctx context.Context, playsPath, metadataPath string) (*recommend.InteractionTable, error) {
	plays, err := os.Open(playsPath) //nolint:gosec // operator-supplied dataset path
	if err != nil {
		return nil, recommend.NewError(recommend.KindPlaysUnreadable, "dataset.load", playsPath, err)
	}
	defer plays.Close()

	metadata, err := os.Open(metadataPath) //nolint:gosec // operator-supplied dataset path
	if err != nil {
		return nil, recommend.NewError(recommend.KindMetadataUnreadable, "dataset.load", metadataPath, err)
	}
	defer metadata.Close()

	return load(ctx, plays, playsPath, metadata, metadataPath)
}

// LoadFrom reads both sources from readers and returns the joined table.
func LoadFrom(ctx context.Context, plays, metadata io.Reader) (*recommend.InteractionTable, error) {
	return load(ctx, plays, "plays", metadata, "metadata")
}

func load(ctx context.Context, plays io.Reader, playsName string, metadata io.Reader, metadataName string) (*recommend.InteractionTable, error) {
	records, err := ParsePlays(ctx, plays)
	if err != nil {
		return nil, recommend.NewError(recommend.KindPlaysUnreadable, "dataset.load", playsName, err)
	}

	tracks, err := ParseMetadata(ctx, metadata)
	if err != nil {
		return nil, recommend.NewError(recommend.KindMetadataUnreadable, "dataset.load", metadataName, err)
	}

	return Join(ctx, records, tracks)
}

// ParsePlays parses tab-separated (user_id, song_id, play_count) lines.
// Blank lines are skipped; any other malformed line is an error.
func ParsePlays(ctx context.Context, r io.Reader) ([]recommend.PlayRecord, error) {
	var records []recommend.PlayRecord

	err := scanLines(ctx, r, func(lineNo int, line string) error {
		fields := strings.Split(line, PlaysDelimiter)
		if len(fields) != 3 {
			return fmt.Errorf("line %d: expected 3 tab-separated fields, got %d", lineNo, len(fields))
		}
		if fields[0] == "" || fields[1] == "" {
			return fmt.Errorf("line %d: empty user_id or song_id", lineNo)
		}
		count, err := strconv.ParseUint(strings.TrimSpace(fields[2]), 10, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid play_count %q: %w", lineNo, fields[2], err)
		}
		if count == 0 {
			return fmt.Errorf("line %d: play_count must be at least 1", lineNo)
		}
		records = append(records, recommend.PlayRecord{
			UserID:    fields[0],
			SongID:    fields[1],
			PlayCount: count,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ParseMetadata parses <SEP>-delimited (track_id, song_id, artist_name, release)
// lines, drops track_id and keeps the first record per song_id.
func ParseMetadata(ctx context.Context, r io.Reader) ([]recommend.TrackMetadata, error) {
	var tracks []recommend.TrackMetadata
	seen := make(map[string]struct{})

	err := scanLines(ctx, r, func(lineNo int, line string) error {
		fields := strings.SplitN(line, MetadataDelimiter, 4)
		if len(fields) != 4 {
			return fmt.Errorf("line %d: expected 4 %s-separated fields, got %d", lineNo, MetadataDelimiter, len(fields))
		}
		songID := fields[1]
		if songID == "" {
			return fmt.Errorf("line %d: empty song_id", lineNo)
		}
		if _, dup := seen[songID]; dup {
			return nil
		}
		seen[songID] = struct{}{}
		tracks = append(tracks, recommend.TrackMetadata{
			SongID:     songID,
			ArtistName: fields[2],
			Release:    fields[3],
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tracks, nil
}

// Join left-joins plays onto metadata by song_id. Every play yields exactly
// one row; plays without metadata keep HasMetadata=false.
func Join(ctx context.Context, plays []recommend.PlayRecord, tracks []recommend.TrackMetadata) (*recommend.InteractionTable, error) {
	bySong := make(map[string]recommend.TrackMetadata, len(tracks))
	for _, t := range tracks {
		if _, dup := bySong[t.SongID]; dup {
			continue
		}
		bySong[t.SongID] = t
	}

	rows := make([]recommend.InteractionRow, 0, len(plays))
	for i, p := range plays {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, recommend.NewError(recommend.KindJoinFailed, "dataset.join", "", err)
			}
		}
		if p.SongID == "" {
			return nil, recommend.Errorf(recommend.KindJoinFailed, "dataset.join", p.UserID, "play %d has an empty song_id", i)
		}
		row := recommend.InteractionRow{
			UserID:    p.UserID,
			SongID:    p.SongID,
			PlayCount: p.PlayCount,
		}
		if t, ok := bySong[p.SongID]; ok {
			row.ArtistName = t.ArtistName
			row.Release = t.Release
			row.HasMetadata = true
		}
		rows = append(rows, row)
	}

	if len(rows) != len(plays) {
		return nil, recommend.Errorf(recommend.KindJoinFailed, "dataset.join", "", "joined %d rows from %d plays", len(rows), len(plays))
	}
	return recommend.NewInteractionTable(rows), nil
}

// scanLines calls fn for each non-blank line with its 1-based number.
// A trailing carriage return is removed.
func scanLines(ctx context.Context, r io.Reader, fn func(lineNo int, line string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		line := strings.TrimSuffix(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if err := fn(lineNo, line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("line %d: %w", lineNo+1, err)
	}
	return ctx.Err()
}
