package fetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/user/sitesimilarity/internal/proxy"
)

const (
	DefaultTimeout      = 3 * time.Second
	DefaultMaxBodyBytes = 10 << 20
)

// HTTPOptions configures an HTTPFetcher.
type HTTPOptions struct {
	Timeout         time.Duration
	IgnoreTLSErrors bool
	MaxBodyBytes    int64
	// Proxies supplies the User-Agent and optional upstream proxy. May be nil.
	Proxies *proxy.Manager
}

// HTTPFetcher fetches pages with net/http. Redirects are followed; the
// final response must be 2xx.
type HTTPFetcher struct {
	client       *http.Client
	proxies      *proxy.Manager
	maxBodyBytes int64
}

func NewHTTPFetcher(opts HTTPOptions) *HTTPFetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}

	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   opts.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSClientConfig:     &tls.Config{InsecureSkipVerify: opts.IgnoreTLSErrors}, //nolint:gosec // origins are often raw IPs
		TLSHandshakeTimeout: opts.Timeout,
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     30 * time.Second,
	}
	if opts.Proxies != nil {
		transport.Proxy = opts.Proxies.Proxy
	}

	return &HTTPFetcher{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		},
		proxies:      opts.Proxies,
		maxBodyBytes: opts.MaxBodyBytes,
	}
}

// Fetch performs one GET with no retries.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}
	if f.proxies != nil {
		req.Header.Set("User-Agent", f.proxies.GetUserAgent())
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return "", fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("reading body: %w", err)
	}
	return string(body), nil
}
