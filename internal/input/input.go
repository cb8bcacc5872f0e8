// Package input turns the two input lists into comparison pairs.
package input

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/user/sitesimilarity/internal/domain"
)

// ErrReadFile is returned when an input list cannot be read.
var ErrReadFile = errors.New("error reading file")

// ReadLines reads a newline-delimited list. Blank lines are kept so callers
// see the file as written; pairing skips them.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w '%s': %w", ErrReadFile, path, err)
	}
	return SplitLines(string(data)), nil
}

// SplitLines splits text on "\n", "\r\n" and lone "\r" boundaries, dropping
// the trailing empty element produced by a final line break.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = lineBreaks.Replace(text)
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

var lineBreaks = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// NonBlank returns the lines that carry something other than whitespace.
func NonBlank(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		out = append(out, l)
	}
	return out
}

// DeriveURL builds the fetch target for a raw line under the given scheme.
// Only the path component of the parsed line is kept, escapes as written, so
// bare hosts and IPs ("1.2.3.4", "example.com") become "<scheme>://1.2.3.4".
// Lines that do not parse are used verbatim.
func DeriveURL(raw string, scheme domain.Scheme) string {
	raw = strings.TrimSpace(raw)
	path := raw
	if u, err := url.Parse(raw); err == nil {
		path = u.EscapedPath()
	}
	return string(scheme) + "://" + path
}

// ForEachPair walks the scheme-permuted cartesian product of both lists.
// Blank lines are dropped before pairing. For every (a, b) combination the
// http pair is produced before the https pair.
func ForEachPair(list1, list2 []string, fn func(domain.Pair)) {
	list1, list2 = NonBlank(list1), NonBlank(list2)
	for _, a := range list1 {
		for _, b := range list2 {
			for _, scheme := range domain.Schemes {
				fn(domain.Pair{
					URLA:   DeriveURL(a, scheme),
					URLB:   DeriveURL(b, scheme),
					Scheme: scheme,
				})
			}
		}
	}
}

// BuildPairs collects every pair ForEachPair would produce.
func BuildPairs(list1, list2 []string) []domain.Pair {
	pairs := make([]domain.Pair, 0, CountPairs(list1, list2))
	ForEachPair(list1, list2, func(p domain.Pair) {
		pairs = append(pairs, p)
	})
	return pairs
}

// CountPairs returns 2 × |non-blank list1| × |non-blank list2|.
func CountPairs(list1, list2 []string) int {
	return len(domain.Schemes) * len(NonBlank(list1)) * len(NonBlank(list2))
}
