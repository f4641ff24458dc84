package scrape

import (
	"context"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// BrowserOptions configures the headless browser.
type BrowserOptions struct {
	UserAgent string
	// ExecPath overrides Chrome discovery.
	ExecPath string
	Timeout  time.Duration
	// Settle is how long to wait after navigation for client-side
	// rendering.
	Settle time.Duration
	// MaxScrolls bounds the scroll-to-bottom loop used to trigger lazy
	// loading. 0 disables scrolling.
	MaxScrolls int
}

func (o BrowserOptions) withDefaults() BrowserOptions {
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = 60 * time.Second
	}
	if o.Settle <= 0 {
		o.Settle = 5 * time.Second
	}
	return o
}

// BrowserFetcher renders pages in headless Chrome. Both listing platforms
// build their search results client-side.
type BrowserFetcher struct {
	opts        BrowserOptions
	cancelAlloc context.CancelFunc
	browserCtx  context.Context
	cancelTab   context.CancelFunc
}

// NewBrowserFetcher starts a headless browser. Close releases it.
func NewBrowserFetcher(opts BrowserOptions) (*BrowserFetcher, error) {
	opts = opts.withDefaults()

	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(opts.UserAgent),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, cancelTab := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...any) {}))

	// Run with no actions starts the browser so launch errors surface here.
	if err := chromedp.Run(browserCtx); err != nil {
		cancelTab()
		cancelAlloc()
		return nil, eris.Wrap(err, "scrape: start browser")
	}

	return &BrowserFetcher{
		opts:        opts,
		cancelAlloc: cancelAlloc,
		browserCtx:  browserCtx,
		cancelTab:   cancelTab,
	}, nil
}

// Name implements Fetcher.
func (b *BrowserFetcher) Name() string { return "browser" }

// Fetch navigates a fresh tab to url, waits for rendering and returns the
// resulting document.
func (b *BrowserFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	tabCtx, cancel := chromedp.NewContext(b.browserCtx)
	defer cancel()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, b.opts.Timeout)
	defer cancelTimeout()

	// Propagate caller cancellation into the tab.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.Sleep(b.opts.Settle),
		b.scroll(),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, eris.Wrapf(err, "scrape: render %s", url)
	}

	body := []byte(html)
	if block := DetectBlock(200, nil, body); block != BlockNone {
		return nil, &BlockedError{URL: url, Block: block}
	}

	zap.L().Debug("scrape: rendered page", zap.String("url", url), zap.Int("bytes", len(body)))
	return &Page{URL: url, StatusCode: 200, HTML: body}, nil
}

// scroll repeatedly scrolls to the bottom until the document height stops
// growing or MaxScrolls is reached.
func (b *BrowserFetcher) scroll() chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var last float64
		for i := 0; i < b.opts.MaxScrolls; i++ {
			var height float64
			if err := chromedp.Evaluate(`document.body.scrollHeight`, &height).Do(ctx); err != nil {
				return err
			}
			if i > 0 && height == last {
				return nil
			}
			last = height
			if err := chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil).Do(ctx); err != nil {
				return err
			}
			if err := chromedp.Sleep(1500 * time.Millisecond).Do(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close shuts the browser down.
func (b *BrowserFetcher) Close() {
	b.cancelTab()
	b.cancelAlloc()
}
