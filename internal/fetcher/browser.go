package fetcher

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders pages in a shared headless Chrome instance and
// returns the outer HTML of the document. Each fetch runs in its own tab.
type BrowserFetcher struct {
	browserCtx    context.Context
	cancelAlloc   context.CancelFunc
	cancelBrowser context.CancelFunc
	timeout       time.Duration
}

// BrowserOptions configures a BrowserFetcher.
type BrowserOptions struct {
	Timeout         time.Duration
	IgnoreTLSErrors bool
	UserAgent       string
}

// NewBrowserFetcher starts the browser. Close must be called to release it.
func NewBrowserFetcher(opts BrowserOptions) (*BrowserFetcher, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if opts.IgnoreTLSErrors {
		allocOpts = append(allocOpts, chromedp.Flag("ignore-certificate-errors", true))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	// Launch the browser up front so the first fetch doesn't pay for it.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("starting headless browser: %w", err)
	}

	return &BrowserFetcher{
		browserCtx:    browserCtx,
		cancelAlloc:   cancelAlloc,
		cancelBrowser: cancelBrowser,
		timeout:       opts.Timeout,
	}, nil
}

// Fetch navigates a fresh tab to url. The caller's context bounds the wait
// in addition to the configured timeout.
func (f *BrowserFetcher) Fetch(ctx context.Context, url string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(f.browserCtx)
	defer cancelTab()

	tabCtx, cancel := context.WithTimeout(tabCtx, f.timeout)
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	resp, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(url))
	if err != nil {
		return "", err
	}
	if resp != nil && (resp.Status < 200 || resp.Status > 299) {
		return "", fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.Status)
	}

	var html string
	if err := chromedp.Run(tabCtx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (f *BrowserFetcher) Close() {
	f.cancelBrowser()
	f.cancelAlloc()
}
