// Package enrich augments ledger occurrences with data from outside the
// listing platforms: Google Places business details, organizer website
// contacts, and language-model classification. Every collaborator failure
// is absorbed here and degrades to "not found".
package enrich

import (
	"context"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/retreat-leads/internal/model"
	"github.com/sells-group/retreat-leads/internal/resilience"
	"github.com/sells-group/retreat-leads/pkg/google"
)

// PlaceResult is the top Places match for a query. Found is false for no
// match and for any failure.
type PlaceResult struct {
	Found        bool
	PlaceID      string
	BusinessName string
	Address      string
	Phone        string
	Website      string
	MapsURL      string
	Rating       float64
	Reviews      int
	Types        string
	Location     LatLng
}

// PlacesOptions configures a Places enricher.
type PlacesOptions struct {
	// LocationBias is appended to queries that do not already mention it.
	LocationBias string
	// Reference is the point distances are measured to.
	Reference      LatLng
	RequestsPerSec float64
	Concurrency    int
	Backoff        resilience.Backoff
}

// Places looks organizers up in Google Places.
type Places struct {
	client  google.Client
	opts    PlacesOptions
	limiter *rate.Limiter
	breaker *resilience.Breaker
}

// NewPlaces creates a Places enricher over client.
func NewPlaces(client google.Client, opts PlacesOptions) *Places {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Places{
		client:  client,
		opts:    opts,
		limiter: newLimiter(opts.RequestsPerSec),
		breaker: resilience.NewBreaker("google_places", 5, time.Minute),
	}
}

func newLimiter(perSec float64) *rate.Limiter {
	if perSec <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(perSec), 1)
}

// Query returns the text sent to Places for a search_query value.
func (p *Places) Query(q string) string {
	q = strings.TrimSpace(q)
	bias := strings.TrimSpace(p.opts.LocationBias)
	if q == "" || bias == "" || strings.Contains(strings.ToLower(q), strings.ToLower(bias)) {
		return q
	}
	return q + " " + bias
}

// Search returns the best match for query. It never returns an error:
// transport failures, non-200 responses, timeouts and empty results all
// yield a result with Found == false.
func (p *Places) Search(ctx context.Context, query string) PlaceResult {
	q := p.Query(query)
	if q == "" {
		return PlaceResult{}
	}

	var resp *google.TextSearchResponse
	err := p.breaker.Do(ctx, func(ctx context.Context) error {
		var err error
		resp, err = resilience.RetryVal(ctx, p.opts.Backoff, "google.text_search", func(ctx context.Context) (*google.TextSearchResponse, error) {
			if err := p.limiter.Wait(ctx); err != nil {
				return nil, err
			}
			return p.client.TextSearch(ctx, google.TextSearchRequest{TextQuery: q, MaxResultCount: 1})
		})
		return err
	})
	if err != nil {
		zap.L().Warn("enrich: places lookup failed", zap.String("query", q), zap.Error(err))
		return PlaceResult{}
	}
	if resp == nil || len(resp.Places) == 0 {
		zap.L().Debug("enrich: no places match", zap.String("query", q))
		return PlaceResult{}
	}

	pl := resp.Places[0]
	types := pl.Types
	if len(types) > 3 {
		types = types[:3]
	}
	r := PlaceResult{
		Found:        true,
		PlaceID:      pl.ID,
		BusinessName: pl.DisplayName.Text,
		Address:      pl.FormattedAddress,
		Phone:        pl.Phone(),
		Website:      pl.WebsiteURI,
		MapsURL:      pl.GoogleMapsURI,
		Rating:       pl.Rating,
		Reviews:      pl.UserRatingCount,
		Types:        strings.Join(types, ", "),
	}
	if pl.Location != nil {
		r.Location = LatLng{Lat: pl.Location.Latitude, Lng: pl.Location.Longitude}
	}
	return r
}

// PlacesStats counts what a Places pass did.
type PlacesStats struct {
	Queries  int
	Found    int
	NotFound int
}

// Enrich looks up every distinct search_query among rows once and writes
// the Places columns onto every row. Rows without a match get empty
// values, so the columns are always present.
func (p *Places) Enrich(ctx context.Context, rows []model.Occurrence) PlacesStats {
	var queries []string
	seen := make(map[string]struct{})
	for i := range rows {
		q := strings.TrimSpace(rows[i].Get(model.ColSearchQuery))
		if q == "" {
			continue
		}
		if _, ok := seen[q]; ok {
			continue
		}
		seen[q] = struct{}{}
		queries = append(queries, q)
	}

	results := make([]PlaceResult, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Concurrency)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			results[i] = p.Search(gctx, q)
			return nil
		})
	}
	_ = g.Wait()

	byQuery := make(map[string]PlaceResult, len(queries))
	stats := PlacesStats{Queries: len(queries)}
	for i, q := range queries {
		byQuery[q] = results[i]
		if results[i].Found {
			stats.Found++
		} else {
			stats.NotFound++
		}
	}

	for i := range rows {
		r := byQuery[strings.TrimSpace(rows[i].Get(model.ColSearchQuery))]
		applyPlace(&rows[i], r, p.opts.Reference)
	}

	zap.L().Info("enrich: places pass complete",
		zap.Int("queries", stats.Queries),
		zap.Int("found", stats.Found),
		zap.Int("not_found", stats.NotFound),
	)
	return stats
}

// BlankPlaces writes empty Places columns onto rows, for runs without a
// Places key. Listing coordinates still produce a distance.
func BlankPlaces(rows []model.Occurrence, ref LatLng) {
	for i := range rows {
		applyPlace(&rows[i], PlaceResult{}, ref)
	}
}

// applyPlace writes r onto o. Coordinates already on the row (from listing
// structured data) are kept when Places has none, and the distance is
// computed from whichever coordinates the row ends up with.
func applyPlace(o *model.Occurrence, r PlaceResult, ref LatLng) {
	o.Set(model.ColGoogleBusinessName, r.BusinessName)
	o.Set(model.ColGoogleAddress, r.Address)
	o.Set(model.ColPhone, r.Phone)
	o.Set(model.ColWebsite, r.Website)
	o.Set(model.ColGoogleMapsURL, r.MapsURL)
	o.Set(model.ColGoogleRating, formatNonZero(r.Rating))
	o.Set(model.ColGoogleReviews, formatCount(r.Reviews))

	loc := r.Location
	if !loc.Valid() {
		loc = rowLocation(o)
	}
	if loc.Valid() {
		o.Set(model.ColLatitude, strconv.FormatFloat(loc.Lat, 'f', -1, 64))
		o.Set(model.ColLongitude, strconv.FormatFloat(loc.Lng, 'f', -1, 64))
	} else {
		o.Set(model.ColLatitude, "")
		o.Set(model.ColLongitude, "")
	}

	dist := ""
	if d, ok := DistanceMiles(loc, ref); ok {
		dist = strconv.FormatFloat(d, 'f', 1, 64)
	}
	o.Set(model.ColDistanceMiles, dist)
}

func rowLocation(o *model.Occurrence) LatLng {
	lat, err1 := strconv.ParseFloat(strings.TrimSpace(o.Get(model.ColLatitude)), 64)
	lng, err2 := strconv.ParseFloat(strings.TrimSpace(o.Get(model.ColLongitude)), 64)
	if err1 != nil || err2 != nil {
		return LatLng{}
	}
	return LatLng{Lat: lat, Lng: lng}
}

func formatNonZero(f float64) string {
	if f == 0 {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatCount(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}
