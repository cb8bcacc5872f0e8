// Package cache de-duplicates page fetches across a run.
//
// Every URL is fetched at most once per Cache. Concurrent callers asking for
// a URL that is being fetched wait for that fetch and share its outcome;
// callers for different URLs never wait on each other. Once an outcome is
// stored, lookups are served from a sync.Map without taking a lock.
// Failures are cached exactly like successes and there is no eviction.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/user/sitesimilarity/internal/domain"
	"github.com/user/sitesimilarity/internal/fetcher"
	"github.com/user/sitesimilarity/internal/monitoring"
)

type Cache struct {
	fetcher fetcher.Fetcher
	logger  *zap.Logger
	metrics *monitoring.Metrics

	entries  sync.Map // string -> domain.Page
	inflight singleflight.Group
	fetches  atomic.Int64
}

// New creates an empty cache backed by f. metrics may be nil.
func New(f fetcher.Fetcher, logger *zap.Logger, metrics *monitoring.Metrics) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{fetcher: f, logger: logger, metrics: metrics}
}

// Lookup returns the stored outcome for url without fetching.
func (c *Cache) Lookup(url string) (domain.Page, bool) {
	v, ok := c.entries.Load(url)
	if !ok {
		return domain.Page{}, false
	}
	return v.(domain.Page), true
}

// Resolve returns the outcome for url, fetching it if no caller has yet.
func (c *Cache) Resolve(ctx context.Context, url string) domain.Page {
	if page, ok := c.Lookup(url); ok {
		c.logger.Debug("cache hit", zap.String("url", url))
		c.observeLookup(true)
		return page
	}
	c.logger.Debug("cache miss", zap.String("url", url))
	c.observeLookup(false)

	v, _, _ := c.inflight.Do(url, func() (interface{}, error) {
		// Another caller may have stored the page between our Lookup and
		// this call; singleflight forgets keys once their call returns.
		if page, ok := c.Lookup(url); ok {
			return page, nil
		}
		page := c.fetch(ctx, url)
		c.entries.Store(url, page)
		return page, nil
	})
	return v.(domain.Page)
}

// Fetches is the number of fetches issued so far.
func (c *Cache) Fetches() int64 {
	return c.fetches.Load()
}

// Len is the number of resolved URLs.
func (c *Cache) Len() int {
	n := 0
	c.entries.Range(func(_, _ interface{}) bool {
		n++
		return true
	})
	return n
}

func (c *Cache) fetch(ctx context.Context, url string) domain.Page {
	c.logger.Debug("fetching page", zap.String("url", url))
	c.fetches.Add(1)

	start := time.Now()
	body, err := c.fetcher.Fetch(ctx, url)
	took := time.Since(start)
	if c.metrics != nil {
		c.metrics.ObserveFetch(err == nil, took)
	}

	if err != nil {
		c.logger.Debug("fetch failed", zap.String("url", url), zap.Duration("took", took), zap.Error(err))
		return domain.Page{URL: url, Failed: true}
	}
	c.logger.Debug("fetched page", zap.String("url", url), zap.Int("bytes", len(body)), zap.Duration("took", took))
	return domain.Page{URL: url, Body: body}
}

func (c *Cache) observeLookup(hit bool) {
	if c.metrics != nil {
		c.metrics.IncCacheLookup(hit)
	}
}
