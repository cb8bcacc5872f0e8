// Package sink holds the in-process destinations for match events.
package sink

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/user/sitesimilarity/internal/domain"
	"github.com/user/sitesimilarity/internal/engine"
)

// Console prints one line per match as soon as it is reported.
type Console struct {
	mu  sync.Mutex
	out io.Writer
}

func NewConsole(out io.Writer) *Console {
	return &Console{out: out}
}

func (c *Console) Report(_ context.Context, m domain.Match) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, err := fmt.Fprintf(c.out, "Match: '%s' and '%s'\n", m.URLA, m.URLB)
	return err
}

// Recorder keeps every reported match in memory.
type Recorder struct {
	mu      sync.RWMutex
	matches []domain.Match
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Report(_ context.Context, m domain.Match) error {
	r.mu.Lock()
	r.matches = append(r.matches, m)
	r.mu.Unlock()
	return nil
}

// Matches returns a copy of everything recorded so far, in arrival order.
func (r *Recorder) Matches() []domain.Match {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Match, len(r.matches))
	copy(out, r.matches)
	return out
}

// Multi reports to every sink, even if an earlier one fails.
type Multi []engine.Sink

func (m Multi) Report(ctx context.Context, match domain.Match) error {
	var errs []error
	for _, s := range m {
		if err := s.Report(ctx, match); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
