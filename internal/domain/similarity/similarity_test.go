package similarity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevenshteinDistance(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"kitten", "sitting", 3},
		{"Python", "Pythom", 1},
		{"flaw", "lawn", 2},
		{"golang", "golang", 0},
		{"zürich", "zurich", 1},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, LevenshteinDistance(tc.a, tc.b), "%q vs %q", tc.a, tc.b)
	}
}

func TestSimilarity_ExactAndCaseInsensitive(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("Python", "Python"))
	assert.Equal(t, 1.0, Similarity("  python ", "PYTHON"))
	assert.Equal(t, 1.0, Similarity("", ""))
	assert.Equal(t, 1.0, Similarity("   ", ""))
}

func TestSimilarity_Typo(t *testing.T) {
	got := Similarity("Pythom", "Python")
	assert.InDelta(t, 5.0/6.0, got, 1e-9)
}

func TestSimilarity_EmptyAgainstNonEmpty(t *testing.T) {
	assert.Equal(t, 0.0, Similarity("", "Go"))
}

func TestSimilarity_SymmetryAndBounds(t *testing.T) {
	words := []string{"", "a", "Go", "golang", "Golang ", "JavaScript", "Java", "TypeScript", "Postgres", "PostgreSQL", "kubernetes", "k8s", "Kübernetes"}
	for _, a := range words {
		require.Equal(t, 1.0, Similarity(a, a), "identity for %q", a)
		for _, b := range words {
			ab := Similarity(a, b)
			ba := Similarity(b, a)
			require.Equal(t, ab, ba, "symmetry %q/%q", a, b)
			require.False(t, math.IsNaN(ab))
			require.GreaterOrEqual(t, ab, 0.0)
			require.LessOrEqual(t, ab, 1.0)
		}
	}
}

func TestFindBestMatch_ExactWins(t *testing.T) {
	m, ok := FindBestMatch(" react ", []string{"Reactor", "React", "react"}, DefaultMinSimilarity)
	require.True(t, ok)
	assert.Equal(t, "React", m.Value)
	assert.Equal(t, 1, m.Index)
	assert.Equal(t, 1.0, m.Similarity)
}

func TestFindBestMatch_BestAboveThreshold(t *testing.T) {
	m, ok := FindBestMatch("Pythom", []string{"Java", "Python", "Pascal"}, DefaultMinSimilarity)
	require.True(t, ok)
	assert.Equal(t, "Python", m.Value)
	assert.InDelta(t, 5.0/6.0, m.Similarity, 1e-9)
}

func TestFindBestMatch_BelowThreshold(t *testing.T) {
	_, ok := FindBestMatch("Pythom", []string{"Python"}, 0.9)
	assert.False(t, ok)

	_, ok = FindBestMatch("anything", nil, 0)
	assert.False(t, ok)
}

func TestFindBestMatch_TieKeepsFirst(t *testing.T) {
	m, ok := FindBestMatch("cat", []string{"bat", "hat"}, 0.5)
	require.True(t, ok)
	assert.Equal(t, "bat", m.Value)
	assert.Equal(t, 0, m.Index)
}

func TestGroupSimilarStrings(t *testing.T) {
	in := []string{"JavaScript", "Javascript", "Python", "Java Script", "python3", "Go"}
	got := GroupSimilarStrings(in, DefaultGroupThreshold)

	assert.Equal(t, [][]string{
		{"JavaScript", "Javascript", "Java Script"},
		{"Python", "python3"},
		{"Go"},
	}, got)
}

func TestGroupSimilarStrings_ThresholdIsStrict(t *testing.T) {
	// "ab" vs "ax" scores exactly 0.5
	got := GroupSimilarStrings([]string{"ab", "ax"}, 0.5)
	assert.Len(t, got, 2)
}

func TestGroupSimilarStrings_Empty(t *testing.T) {
	assert.Empty(t, GroupSimilarStrings(nil, DefaultGroupThreshold))
}
