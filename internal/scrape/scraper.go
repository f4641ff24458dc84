package scrape

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/retreat-leads/internal/model"
	"github.com/sells-group/retreat-leads/internal/resilience"
)

// Seen reports whether a listing URL is already in the ledger.
type Seen interface {
	Contains(url string) bool
}

// Options configures a Scraper.
type Options struct {
	// PageDelay spaces out page fetches after the search page.
	PageDelay time.Duration
	// MaxListings caps new listings per scrape; 0 means no cap.
	MaxListings int
	// FetchCenters enables retreat.guru center page lookups.
	FetchCenters bool
	Backoff      resilience.Backoff
}

// Stats counts what a scrape did.
type Stats struct {
	Found         int
	SkippedSeen   int
	PagesFetched  int
	CentersLoaded int
	Errors        int
}

// Result is one scrape batch ready to append to the ledger.
type Result struct {
	Batch       Batch
	Occurrences []model.Occurrence
	Stats       Stats
}

// Scraper turns a platform search URL into ledger occurrences.
type Scraper struct {
	fetcher Fetcher
	opts    Options
	limiter *rate.Limiter
	now     func() time.Time
	newID   func() string
}

// New creates a Scraper over fetcher.
func New(fetcher Fetcher, opts Options) *Scraper {
	limit := rate.Inf
	if opts.PageDelay > 0 {
		limit = rate.Every(opts.PageDelay)
	}
	return &Scraper{
		fetcher: fetcher,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

// Scrape fetches searchURL, collects every listing not already in seen and
// stamps them with a fresh batch. A failure to load the search page is an
// error; failures on individual listing or center pages are logged and
// counted.
func (s *Scraper) Scrape(ctx context.Context, searchURL, label string, seen Seen) (*Result, error) {
	platform, err := DetectPlatform(searchURL)
	if err != nil {
		return nil, err
	}
	if label == "" {
		if label, err = Label(searchURL); err != nil {
			return nil, err
		}
	}
	base, err := url.Parse(searchURL)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: parse search url")
	}

	res := &Result{Batch: Batch{
		ID:        s.newID(),
		Platform:  platform,
		Label:     label,
		SourceURL: searchURL,
		ScrapedAt: model.FormatTimestamp(s.now()),
	}}

	log := zap.L().With(
		zap.String("platform", string(platform)),
		zap.String("label", label),
		zap.String("batch_id", res.Batch.ID),
	)
	log.Info("scrape: loading search page", zap.String("url", searchURL))

	search, err := s.fetch(ctx, searchURL)
	if err != nil {
		return nil, eris.Wrap(err, "scrape: load search page")
	}
	res.Stats.PagesFetched++

	var listings []Listing
	switch platform {
	case model.PlatformRetreatGuru:
		listings, err = s.retreatGuru(ctx, search, base, seen, &res.Stats)
	case model.PlatformBookRetreats:
		listings, err = s.bookRetreats(ctx, search, base, seen, &res.Stats)
	}
	if err != nil {
		return nil, err
	}

	res.Occurrences = make([]model.Occurrence, 0, len(listings))
	for _, l := range listings {
		res.Occurrences = append(res.Occurrences, l.Occurrence(res.Batch))
	}

	log.Info("scrape: batch ready",
		zap.Int("found", res.Stats.Found),
		zap.Int("new", len(res.Occurrences)),
		zap.Int("skipped_seen", res.Stats.SkippedSeen),
		zap.Int("errors", res.Stats.Errors),
	)
	return res, nil
}

func (s *Scraper) retreatGuru(ctx context.Context, search *Page, base *url.URL, seen Seen, st *Stats) ([]Listing, error) {
	all, err := ParseRetreatGuruSearch(search.HTML, base)
	if err != nil {
		return nil, err
	}
	st.Found = len(all)

	var listings []Listing
	for _, l := range all {
		if seen != nil && seen.Contains(l.EventURL) {
			st.SkippedSeen++
			continue
		}
		if s.capped(len(listings)) {
			break
		}
		listings = append(listings, l)
	}

	if !s.opts.FetchCenters {
		return listings, nil
	}

	centers := make(map[string]CenterDetail)
	for i := range listings {
		cu := listings[i].CenterURL
		if cu == "" {
			continue
		}
		detail, ok := centers[cu]
		if !ok {
			detail = s.center(ctx, cu, st)
			if ctx.Err() != nil {
				return nil, eris.Wrap(ctx.Err(), "scrape: center pages")
			}
			centers[cu] = detail
		}
		listings[i].DetailedAddress = detail.Address
		listings[i].Description = detail.Description
	}
	return listings, nil
}

func (s *Scraper) center(ctx context.Context, centerURL string, st *Stats) CenterDetail {
	page, err := s.fetch(ctx, centerURL)
	if err != nil {
		st.Errors++
		zap.L().Warn("scrape: center page failed", zap.String("url", centerURL), zap.Error(err))
		return CenterDetail{}
	}
	st.PagesFetched++
	detail, err := ParseRetreatGuruCenter(page.HTML)
	if err != nil {
		st.Errors++
		zap.L().Warn("scrape: center page unparseable", zap.String("url", centerURL), zap.Error(err))
		return CenterDetail{}
	}
	st.CentersLoaded++
	return detail
}

func (s *Scraper) bookRetreats(ctx context.Context, search *Page, base *url.URL, seen Seen, st *Stats) ([]Listing, error) {
	urls, err := BookRetreatsListingURLs(search.HTML, base)
	if err != nil {
		return nil, err
	}
	st.Found = len(urls)

	var listings []Listing
	for _, u := range urls {
		if seen != nil && seen.Contains(u) {
			st.SkippedSeen++
			continue
		}
		if s.capped(len(listings)) {
			break
		}

		page, err := s.fetch(ctx, u)
		if err != nil {
			if ctx.Err() != nil {
				return nil, eris.Wrap(ctx.Err(), "scrape: listing pages")
			}
			st.Errors++
			zap.L().Warn("scrape: listing page failed", zap.String("url", u), zap.Error(err))
			continue
		}
		st.PagesFetched++

		l, err := ParseBookRetreatsListing(page.HTML, u, base)
		if err != nil || l.Title == "" {
			st.Errors++
			zap.L().Warn("scrape: listing page has no title", zap.String("url", u), zap.Error(err))
			continue
		}
		listings = append(listings, l)
	}
	return listings, nil
}

func (s *Scraper) capped(n int) bool {
	return s.opts.MaxListings > 0 && n >= s.opts.MaxListings
}

// fetch waits for the page limiter and fetches url with retries. Blocked
// responses are retried like transient failures.
func (s *Scraper) fetch(ctx context.Context, u string) (*Page, error) {
	b := s.opts.Backoff
	b.Retryable = func(err error) bool {
		var blocked *BlockedError
		return errors.As(err, &blocked) || resilience.IsTransient(err)
	}
	return resilience.RetryVal(ctx, b, "scrape.fetch", func(ctx context.Context) (*Page, error) {
		if err := s.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return s.fetcher.Fetch(ctx, u)
	})
}
