package main

import (
	"context"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/retreat-leads/internal/enrich"
	"github.com/sells-group/retreat-leads/internal/resilience"
	"github.com/sells-group/retreat-leads/internal/scrape"
	"github.com/sells-group/retreat-leads/internal/store"
	anthropicpkg "github.com/sells-group/retreat-leads/pkg/anthropic"
	"github.com/sells-group/retreat-leads/pkg/google"
)

// initStore opens and migrates the classification cache and run history.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.NewSQLite(cfg.Cache.Path)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		st.Close() //nolint:errcheck
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// listingFetcher returns the fetcher used for platform pages: plain HTTP,
// falling back to headless Chrome when scrape.browser is set. The returned
// func releases the browser.
func listingFetcher() (scrape.Fetcher, func(), error) {
	timeout := time.Duration(cfg.Scrape.TimeoutSecs) * time.Second
	httpFetcher := scrape.NewHTTPFetcher(timeout, cfg.Scrape.UserAgent)
	if !cfg.Scrape.Browser {
		return httpFetcher, func() {}, nil
	}

	browser, err := scrape.NewBrowserFetcher(scrape.BrowserOptions{
		UserAgent:  cfg.Scrape.UserAgent,
		ExecPath:   cfg.Scrape.BrowserPath,
		Timeout:    timeout,
		Settle:     time.Duration(cfg.Scrape.SettleSecs) * time.Second,
		MaxScrolls: cfg.Scrape.MaxScrolls,
	})
	if err != nil {
		return nil, nil, eris.Wrap(err, "start browser")
	}
	return scrape.NewChain(httpFetcher, browser), browser.Close, nil
}

// siteFetcher returns the fetcher used for organizer websites.
func siteFetcher() scrape.Fetcher {
	return scrape.NewHTTPFetcher(time.Duration(cfg.Website.TimeoutSecs)*time.Second, cfg.Scrape.UserAgent)
}

// placesClient returns nil when no Places key is configured.
func placesClient() google.Client {
	if cfg.Google.Key == "" {
		zap.L().Warn("google.key not set, Places enrichment will be skipped")
		return nil
	}
	return google.NewClient(cfg.Google.Key,
		google.WithBaseURL(cfg.Google.BaseURL),
		google.WithHTTPClient(&http.Client{Timeout: time.Duration(cfg.Google.TimeoutSecs) * time.Second}),
	)
}

func anthropicClient() anthropicpkg.Client {
	opts := []anthropicpkg.Option{anthropicpkg.WithSDKRetries(0)}
	if cfg.Anthropic.BaseURL != "" {
		opts = append(opts, anthropicpkg.WithBaseURL(cfg.Anthropic.BaseURL))
	}
	return anthropicpkg.NewClient(cfg.Anthropic.Key, opts...)
}

func referencePoint() enrich.LatLng {
	return enrich.LatLng{Lat: cfg.Google.ReferenceLat, Lng: cfg.Google.ReferenceLng}
}

func backoff() resilience.Backoff {
	return resilience.FromConfig(cfg.Retry)
}
