// Songrec - Music Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/songrec

package algorithms

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"

	"github.com/tomtom215/songrec/internal/recommend"
)

// musicStopwords are filler words common in song titles and file metadata.
var musicStopwords = []string{
	"you", "me", "my", "it", "to", "on", "in", "that", "and",
	"be", "no", "don", "up", "we", "oh", "yeah", "na", "la", "your", "is", "are",
	"was", "were", "its", "this", "these", "those", "there", "here", "studio",
	"album", "track", "song", "music", "audio", "file", "mp3", "wav", "flac",
}

// englishStopwords is a general English list. Unlike the music list it
// removes single-letter articles such as "a".
var englishStopwords = []string{
	"a", "about", "above", "after", "again", "against", "all", "am", "an", "and",
	"any", "are", "as", "at", "be", "because", "been", "before", "being", "below",
	"between", "both", "but", "by", "can", "did", "do", "does", "doing", "down",
	"during", "each", "few", "for", "from", "further", "had", "has", "have", "having",
	"he", "her", "here", "hers", "herself", "him", "himself", "his", "how", "i",
	"if", "in", "into", "is", "it", "its", "itself", "just", "me", "more",
	"most", "my", "myself", "no", "nor", "not", "now", "of", "off", "on",
	"once", "only", "or", "other", "our", "ours", "ourselves", "out", "over", "own",
	"same", "she", "should", "so", "some", "such", "than", "that", "the", "their",
	"theirs", "them", "themselves", "then", "there", "these", "they", "this", "those", "through",
	"to", "too", "under", "until", "up", "very", "was", "we", "were", "what",
	"when", "where", "which", "while", "who", "whom", "why", "will", "with", "you",
	"your", "yours", "yourself", "yourselves",
}

// StopwordSet returns the named stopword set.
func StopwordSet(name string) (map[string]struct{}, error) {
	var words []string
	switch name {
	case recommend.StopwordsMusic, "":
		words = musicStopwords
	case recommend.StopwordsEnglish:
		words = englishStopwords
	case recommend.StopwordsNone:
		return map[string]struct{}{}, nil
	default:
		return nil, fmt.Errorf("unknown stopword set %q", name)
	}

	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set, nil
}

// Tokenizer splits fingerprints into lowercase word tokens.
// A Tokenizer is not safe for concurrent use.
type Tokenizer struct {
	stopwords map[string]struct{}
	minLength int
	folder    cases.Caser
}

// NewTokenizer creates a tokenizer that drops stopwords and tokens shorter
// than minLength runes.
func NewTokenizer(stopwords map[string]struct{}, minLength int) *Tokenizer {
	if minLength < 1 {
		minLength = 1
	}
	return &Tokenizer{
		stopwords: stopwords,
		minLength: minLength,
		folder:    cases.Fold(),
	}
}

// Tokenize returns the tokens of text in order. Tokens are maximal runs of
// letters and digits after case folding. When every token is a stopword
// the unfiltered tokens are returned, so a title such as "You Me" still
// has a fingerprint.
func (t *Tokenizer) Tokenize(text string) []string {
	folded := t.folder.String(text)
	fields := strings.FieldsFunc(folded, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	words := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= t.minLength {
			words = append(words, f)
		}
	}

	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if _, stop := t.stopwords[w]; !stop {
			tokens = append(tokens, w)
		}
	}
	if len(tokens) == 0 {
		return words
	}
	return tokens
}
