// Package fetcher retrieves page bodies for the comparison engine. Fetchers
// report any failure as an error; deciding what a failure means is left to
// the caller.
package fetcher

import (
	"context"
	"errors"
)

// ErrUnexpectedStatus is returned when the final response is not 2xx.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// Fetcher issues a single GET for url and returns the page body.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Func adapts a plain function to the Fetcher interface.
type Func func(ctx context.Context, url string) (string, error)

func (f Func) Fetch(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}
