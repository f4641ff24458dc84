// Package scrape collects retreat listings from the supported listing
// platforms and turns them into ledger occurrences.
package scrape

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/retreat-leads/internal/resilience"
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxBody caps how much of a page is read.
const maxBody = 4 << 20

// Page is a fetched HTML document.
type Page struct {
	URL        string
	StatusCode int
	HTML       []byte
}

// Fetcher retrieves a single page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
	Name() string
}

// BlockedError reports a page that answered with an anti-bot response.
type BlockedError struct {
	URL   string
	Block BlockType
}

func (e *BlockedError) Error() string {
	return "scrape: blocked (" + string(e.Block) + "): " + e.URL
}

// HTTPFetcher fetches pages with net/http. It does not run JavaScript, so
// it only sees server-rendered markup.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates an HTTPFetcher. A zero timeout selects 30s.
func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
		userAgent: userAgent,
	}
}

// Name implements Fetcher.
func (f *HTTPFetcher) Name() string { return "http" }

// Fetch GETs url. Anti-bot pages return a *BlockedError and non-2xx
// statuses a *resilience.StatusError, so callers can retry transient
// failures.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: create request")
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: fetch %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, eris.Wrapf(err, "scrape: read body %s", url)
	}

	if block := DetectBlock(resp.StatusCode, resp.Header, body); block != BlockNone {
		return nil, &BlockedError{URL: url, Block: block}
	}
	if err := resilience.CheckStatus("scrape", resp.StatusCode, body); err != nil {
		return nil, err
	}

	return &Page{URL: resp.Request.URL.String(), StatusCode: resp.StatusCode, HTML: body}, nil
}

// Chain tries fetchers in order and returns the first page fetched.
type Chain struct {
	fetchers []Fetcher
}

// NewChain creates a Chain over fetchers.
func NewChain(fetchers ...Fetcher) *Chain {
	return &Chain{fetchers: fetchers}
}

// Name implements Fetcher.
func (c *Chain) Name() string { return "chain" }

// Fetch implements Fetcher.
func (c *Chain) Fetch(ctx context.Context, url string) (*Page, error) {
	var lastErr error
	for _, f := range c.fetchers {
		page, err := f.Fetch(ctx, url)
		if err == nil {
			return page, nil
		}
		if ctx.Err() != nil {
			return nil, err
		}
		zap.L().Debug("scrape: fetcher failed, trying next",
			zap.String("fetcher", f.Name()),
			zap.String("url", url),
			zap.Error(err),
		)
		lastErr = err
	}
	if lastErr == nil {
		return nil, eris.New("scrape: no fetchers configured")
	}
	return nil, eris.Wrap(lastErr, "scrape: all fetchers failed")
}
