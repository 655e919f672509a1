// Package similarity holds the lexical string-similarity primitives used to
// reconcile free-text skills with taxonomy names. Everything here is pure.
package similarity

import (
	"strings"
	"unicode/utf8"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

const (
	DefaultMinSimilarity  = 0.7
	DefaultGroupThreshold = 0.8
)

// LevenshteinDistance is the classic edit distance with unit costs, counted
// in runes.
func LevenshteinDistance(a, b string) int {
	return fuzzy.LevenshteinDistance(a, b)
}

// Similarity compares a and b case-insensitively after trimming. It returns 1
// for equal strings and 1 - distance/maxLen otherwise.
func Similarity(a, b string) float64 {
	a = fold(a)
	b = fold(b)
	if a == b {
		return 1
	}

	maxLen := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > maxLen {
		maxLen = n
	}
	if maxLen == 0 {
		return 1
	}

	score := 1 - float64(LevenshteinDistance(a, b))/float64(maxLen)
	if score < 0 {
		return 0
	}
	return score
}

type Match struct {
	Value      string
	Index      int
	Similarity float64
}

// FindBestMatch returns the candidate closest to input. An exact match
// (case-insensitive, trimmed) wins immediately; otherwise the best scoring
// candidate is returned when it reaches minSimilarity. Ties keep the earliest
// candidate.
func FindBestMatch(input string, candidates []string, minSimilarity float64) (Match, bool) {
	if len(candidates) == 0 {
		return Match{}, false
	}

	key := fold(input)
	for i, c := range candidates {
		if fold(c) == key {
			return Match{Value: c, Index: i, Similarity: 1}, true
		}
	}

	best := Match{Index: -1, Similarity: -1}
	for i, c := range candidates {
		s := Similarity(input, c)
		if s > best.Similarity {
			best = Match{Value: c, Index: i, Similarity: s}
		}
	}
	if best.Index < 0 || best.Similarity < minSimilarity {
		return Match{}, false
	}
	return best, true
}

// GroupSimilarStrings clusters strings greedily in input order: each
// unprocessed string seeds a group and absorbs every later unprocessed string
// whose similarity to the seed is strictly above threshold.
func GroupSimilarStrings(values []string, threshold float64) [][]string {
	out := make([][]string, 0)
	processed := make([]bool, len(values))

	for i, seed := range values {
		if processed[i] {
			continue
		}
		processed[i] = true
		group := []string{seed}

		for j := i + 1; j < len(values); j++ {
			if processed[j] {
				continue
			}
			if Similarity(seed, values[j]) > threshold {
				processed[j] = true
				group = append(group, values[j])
			}
		}
		out = append(out, group)
	}
	return out
}

func fold(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
