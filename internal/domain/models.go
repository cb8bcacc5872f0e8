// Package domain holds the value types shared across the comparison pipeline.
package domain

import "time"

// Scheme is the URL scheme a derived URL was built with.
type Scheme string

const (
	SchemeHTTP  Scheme = "http"
	SchemeHTTPS Scheme = "https"
)

// Schemes lists every scheme a raw input line is expanded into, in pairing order.
var Schemes = []Scheme{SchemeHTTP, SchemeHTTPS}

// Pair is a single unit of comparison work. URLA is derived from the first
// input list and URLB from the second; both always share the same scheme.
type Pair struct {
	URLA   string
	URLB   string
	Scheme Scheme
}

// Match is emitted when the two bodies of a Pair are similar enough.
type Match struct {
	URLA    string    `json:"url_a"`
	URLB    string    `json:"url_b"`
	Score   float64   `json:"score"`
	FoundAt time.Time `json:"found_at"`
}

// Page is the outcome of resolving a URL through the fetch cache.
// Failed pages carry no body and are excluded from comparison.
type Page struct {
	URL    string
	Body   string
	Failed bool
}

// RunSummary describes a finished comparison run.
type RunSummary struct {
	Pairs    int           `json:"pairs"`
	Compared int           `json:"compared"`
	Skipped  int           `json:"skipped"`
	Matches  int           `json:"matches"`
	Panics   int           `json:"panics"`
	Duration time.Duration `json:"duration"`
}
