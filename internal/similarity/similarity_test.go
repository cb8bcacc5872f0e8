package similarity

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"hello world", "hello world", 0},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Distance(tc.a, tc.b), "%q vs %q", tc.a, tc.b)
	}
}

func TestLevenshteinScore(t *testing.T) {
	var s Levenshtein

	assert.Equal(t, 1.0, s.Score("hello world", "hello world"))
	assert.Equal(t, 1.0, s.Score("", ""))
	assert.Equal(t, 0.0, s.Score("", "abc"))
	assert.InDelta(t, 1-3.0/7.0, s.Score("kitten", "sitting"), 1e-9)
}

func TestScoreIsSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"kitten", "sitting"},
		{"<html>origin</html>", "<html>0rigin!</html>"},
		{"", "abc"},
	}
	var s Levenshtein
	for _, p := range pairs {
		assert.Equal(t, Distance(p[0], p[1]), Distance(p[1], p[0]))
		assert.InDelta(t, s.Score(p[0], p[1]), s.Score(p[1], p[0]), 1e-12)
	}
}

func TestIdentityScoresOne(t *testing.T) {
	for _, s := range []Scorer{Levenshtein{}, JaroWinkler{}} {
		for _, text := range []string{"a", "hello world", strings.Repeat("<p>x</p>", 50)} {
			assert.Equal(t, 1.0, s.Score(text, text))
		}
	}
}

func TestIsMatchThresholdMonotonic(t *testing.T) {
	a := strings.Repeat("hello world ", 20)
	b := strings.Replace(a, "world", "w0rld", 3)
	score := Levenshtein{}.Score(a, b)
	require.Greater(t, score, 0.9)

	thresholds := []float64{0.1, 0.5, 0.9, score, 0.999, 1}
	matched := true
	for _, th := range thresholds {
		got := IsMatch(Levenshtein{}, a, b, th)
		if !matched {
			assert.False(t, got, "matched at %v after failing a lower threshold", th)
		}
		matched = got
	}
	assert.True(t, IsMatch(Levenshtein{}, a, b, score))
	assert.False(t, IsMatch(Levenshtein{}, a, b, 1))
}

func TestNew(t *testing.T) {
	s, err := New("")
	require.NoError(t, err)
	assert.IsType(t, Levenshtein{}, s)

	s, err = New(MetricJaroWinkler)
	require.NoError(t, err)
	assert.IsType(t, JaroWinkler{}, s)

	_, err = New("cosine")
	assert.Error(t, err)
}

func TestValidateThreshold(t *testing.T) {
	assert.NoError(t, ValidateThreshold(0.9))
	assert.NoError(t, ValidateThreshold(1))
	assert.ErrorIs(t, ValidateThreshold(0), ErrInvalidThreshold)
	assert.ErrorIs(t, ValidateThreshold(1.5), ErrInvalidThreshold)
	assert.ErrorIs(t, ValidateThreshold(-0.1), ErrInvalidThreshold)
}
