// Package engine runs the comparison of two URL lists on a bounded worker pool.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/user/sitesimilarity/internal/cache"
	"github.com/user/sitesimilarity/internal/domain"
	"github.com/user/sitesimilarity/internal/input"
	"github.com/user/sitesimilarity/internal/monitoring"
	"github.com/user/sitesimilarity/internal/similarity"
)

// DefaultWorkers is the worker pool size when none is configured.
const DefaultWorkers = 32

var ErrInvalidWorkers = errors.New("worker count must be at least 1")

// Sink receives match events. Implementations must be safe for concurrent use.
type Sink interface {
	Report(ctx context.Context, m domain.Match) error
}

// Options tunes a run.
type Options struct {
	Threshold float64
	Workers   int
}

// Engine expands two URL lists into comparison pairs and works through them
// with a fixed pool of workers, resolving pages through a shared cache.
type Engine struct {
	cache     *cache.Cache
	scorer    similarity.Scorer
	sink      Sink
	threshold float64
	workers   int
	metrics   *monitoring.Metrics
	logger    *zap.Logger

	running  atomic.Bool
	pairs    atomic.Int64
	compared atomic.Int64
	skipped  atomic.Int64
	matches  atomic.Int64
	panics   atomic.Int64
}

func New(c *cache.Cache, s similarity.Scorer, sink Sink, opts Options, m *monitoring.Metrics, l *zap.Logger) (*Engine, error) {
	if err := similarity.ValidateThreshold(opts.Threshold); err != nil {
		return nil, err
	}
	if opts.Workers < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidWorkers, opts.Workers)
	}
	if l == nil {
		l = zap.NewNop()
	}
	return &Engine{
		cache:     c,
		scorer:    s,
		sink:      sink,
		threshold: opts.Threshold,
		workers:   opts.Workers,
		metrics:   m,
		logger:    l,
	}, nil
}

// Run compares every pair derived from list1 × list2 and returns once all of
// them have been processed. There is no early exit: ctx is handed to the
// fetchers and sinks but a run always drains its whole pair set.
func (e *Engine) Run(ctx context.Context, list1, list2 []string) domain.RunSummary {
	start := time.Now()
	e.reset(int64(input.CountPairs(list1, list2)))
	e.running.Store(true)
	defer e.running.Store(false)

	taskQueue := make(chan domain.Pair, e.workers*2)
	var wg sync.WaitGroup
	for i := 0; i < e.workers; i++ {
		wg.Add(1)
		go e.worker(ctx, taskQueue, &wg)
	}

	input.ForEachPair(list1, list2, func(p domain.Pair) {
		e.gaugeQueued(1)
		taskQueue <- p
	})
	close(taskQueue)
	wg.Wait()

	summary := e.Progress()
	summary.Duration = time.Since(start)
	e.logger.Info("run complete",
		zap.Int("pairs", summary.Pairs),
		zap.Int("compared", summary.Compared),
		zap.Int("skipped", summary.Skipped),
		zap.Int("matches", summary.Matches),
		zap.Int64("fetches", e.cache.Fetches()),
		zap.Duration("took", summary.Duration),
	)
	return summary
}

// Progress reports counters for the current or most recent run.
func (e *Engine) Progress() domain.RunSummary {
	return domain.RunSummary{
		Pairs:    int(e.pairs.Load()),
		Compared: int(e.compared.Load()),
		Skipped:  int(e.skipped.Load()),
		Matches:  int(e.matches.Load()),
		Panics:   int(e.panics.Load()),
	}
}

// Running reports whether a run is in progress.
func (e *Engine) Running() bool {
	return e.running.Load()
}

func (e *Engine) worker(ctx context.Context, tasks <-chan domain.Pair, wg *sync.WaitGroup) {
	defer wg.Done()
	for pair := range tasks {
		e.gaugeQueued(-1)
		e.process(ctx, pair)
	}
}

// process handles one pair. A panic is contained to the pair that raised it.
func (e *Engine) process(ctx context.Context, pair domain.Pair) {
	defer func() {
		if r := recover(); r != nil {
			e.panics.Add(1)
			e.logger.Error("comparison panicked",
				zap.String("url_a", pair.URLA),
				zap.String("url_b", pair.URLB),
				zap.Any("panic", r),
			)
			if e.metrics != nil {
				e.metrics.IncErrorsTotal("worker_panic")
			}
		}
	}()

	pageA := e.cache.Resolve(ctx, pair.URLA)
	pageB := e.cache.Resolve(ctx, pair.URLB)
	if pageA.Failed || pageB.Failed {
		e.skipped.Add(1)
		e.countComparison("skipped")
		return
	}

	score := e.scorer.Score(pageA.Body, pageB.Body)
	e.compared.Add(1)
	if score < e.threshold {
		e.countComparison("no_match")
		return
	}

	e.matches.Add(1)
	e.countComparison("match")
	match := domain.Match{URLA: pair.URLA, URLB: pair.URLB, Score: score, FoundAt: time.Now()}
	if err := e.sink.Report(ctx, match); err != nil {
		e.logger.Error("failed to report match",
			zap.String("url_a", pair.URLA),
			zap.String("url_b", pair.URLB),
			zap.Error(err),
		)
		if e.metrics != nil {
			e.metrics.IncErrorsTotal("sink_failed")
		}
	}
}

func (e *Engine) reset(pairs int64) {
	e.pairs.Store(pairs)
	e.compared.Store(0)
	e.skipped.Store(0)
	e.matches.Store(0)
	e.panics.Store(0)
}

func (e *Engine) countComparison(outcome string) {
	if e.metrics != nil {
		e.metrics.IncComparison(outcome)
	}
}

func (e *Engine) gaugeQueued(delta float64) {
	if e.metrics != nil {
		e.metrics.PairsQueued.Add(delta)
	}
}
