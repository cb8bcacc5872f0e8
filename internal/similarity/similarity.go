// Package similarity scores how alike two page bodies are.
package similarity

import (
	"errors"
	"fmt"

	"github.com/xrash/smetrics"
)

const DefaultThreshold = 0.9

// Metric names accepted by New.
const (
	MetricLevenshtein = "levenshtein"
	MetricJaroWinkler = "jaro-winkler"
)

var ErrInvalidThreshold = errors.New("threshold must be in (0, 1]")

// Scorer computes a similarity ratio in [0, 1], 1 meaning identical.
type Scorer interface {
	Score(a, b string) float64
}

// Levenshtein scores by normalized edit distance:
//
//	ratio = 1 - distance(a, b) / max(len(a), len(b))
//
// Lengths and distance are counted in bytes. Two empty texts are identical
// and score 1.
type Levenshtein struct{}

func (Levenshtein) Score(a, b string) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	if a == b {
		return 1
	}
	return 1 - float64(Distance(a, b))/float64(maxLen)
}

// Distance is the unit-cost Levenshtein distance between a and b.
func Distance(a, b string) int {
	return smetrics.WagnerFischer(a, b, 1, 1, 1)
}

// JaroWinkler scores with the Jaro-Winkler similarity, which is far cheaper
// than edit distance on large bodies.
type JaroWinkler struct{}

func (JaroWinkler) Score(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	return smetrics.JaroWinkler(a, b, 0.7, 4)
}

// New returns the Scorer registered under name.
func New(name string) (Scorer, error) {
	switch name {
	case "", MetricLevenshtein:
		return Levenshtein{}, nil
	case MetricJaroWinkler:
		return JaroWinkler{}, nil
	default:
		return nil, fmt.Errorf("unknown similarity metric %q", name)
	}
}

// ValidateThreshold rejects thresholds outside (0, 1].
func ValidateThreshold(threshold float64) error {
	if threshold <= 0 || threshold > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidThreshold, threshold)
	}
	return nil
}

// IsMatch reports whether score reaches threshold.
func IsMatch(s Scorer, a, b string, threshold float64) bool {
	return s.Score(a, b) >= threshold
}
