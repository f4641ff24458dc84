package enrich

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/retreat-leads/internal/model"
	"github.com/sells-group/retreat-leads/internal/scrape"
)

// maxContextTitles bounds how many event titles describe an organizer.
const maxContextTitles = 3

// OrganizerContext is everything the classifier is told about one
// organizer.
type OrganizerContext struct {
	Key           string
	Name          string
	Titles        []string
	Locations     []string
	Platforms     []string
	Count         int
	Website       string
	BusinessName  string
	GoogleRating  string
	GoogleReviews string
	Site          SiteContent
}

// UniqueLocations is the number of distinct locations.
func (oc OrganizerContext) UniqueLocations() int { return len(oc.Locations) }

// BuildContexts groups rows by organizer key in first-encounter order. The
// website and Google fields come from the first row that has them.
func BuildContexts(rows []model.Occurrence) []OrganizerContext {
	var out []OrganizerContext
	index := make(map[string]int)

	for i := range rows {
		r := &rows[i]
		pos, ok := index[r.OrganizerKey]
		if !ok {
			pos = len(out)
			index[r.OrganizerKey] = pos
			out = append(out, OrganizerContext{Key: r.OrganizerKey, Name: r.OrganizerName})
		}
		oc := &out[pos]
		oc.Count++

		if t := strings.TrimSpace(r.EventTitle); t != "" && len(oc.Titles) < maxContextTitles {
			oc.Titles = append(oc.Titles, t)
		}
		oc.Locations = appendDistinct(oc.Locations, model.NormalizeCity(r.LocationCity))
		oc.Platforms = appendDistinct(oc.Platforms, string(r.SourcePlatform))

		fill(&oc.Website, r.Get(model.ColWebsite))
		fill(&oc.BusinessName, r.Get(model.ColGoogleBusinessName))
		fill(&oc.GoogleRating, r.Get(model.ColGoogleRating))
		fill(&oc.GoogleReviews, r.Get(model.ColGoogleReviews))
	}
	return out
}

func appendDistinct(list []string, v string) []string {
	v = strings.TrimSpace(v)
	if v == "" {
		return list
	}
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}

func fill(dst *string, v string) {
	if *dst == "" {
		*dst = strings.TrimSpace(v)
	}
}

// SitePaths are the organizer website pages read for classification.
var SitePaths = []string{
	"/",
	"/about",
	"/about-us",
	"/our-story",
	"/team",
	"/founder",
	"/facilitators",
	"/services",
	"/retreats",
	"/offerings",
	"/venue",
	"/accommodations",
	"/rooms",
	"/contact",
}

// SiteContent is the text gathered from an organizer website.
type SiteContent struct {
	PagesFound            []string
	HasVenuePage          bool
	HasAccommodationsPage bool
	// Text holds every page found, each under a "--- /path ---" heading.
	Text string
}

// ReadSite fetches each of SitePaths under site and collects their visible
// text, truncating every page to maxChars runes. Missing pages are skipped.
func ReadSite(ctx context.Context, f scrape.Fetcher, site string, maxChars int, wait func(context.Context) error) SiteContent {
	var sc SiteContent
	base := strings.TrimRight(Normalize(site), "/")
	if base == "" {
		return sc
	}

	var b strings.Builder
	for _, path := range SitePaths {
		if ctx.Err() != nil {
			break
		}
		if wait != nil {
			if err := wait(ctx); err != nil {
				break
			}
		}
		u := base
		if path != "/" {
			u = base + path
		}
		page, err := f.Fetch(ctx, u)
		if err != nil {
			zap.L().Debug("enrich: site page skipped", zap.String("url", u), zap.Error(err))
			continue
		}
		doc, err := scrape.Document(page.HTML)
		if err != nil {
			continue
		}
		_, text := scrape.PageText(doc)
		text = scrape.Truncate(text, maxChars)

		sc.PagesFound = append(sc.PagesFound, path)
		switch path {
		case "/venue":
			sc.HasVenuePage = true
		case "/accommodations", "/rooms":
			sc.HasVenuePage = true
			sc.HasAccommodationsPage = true
		}
		b.WriteString("\n--- " + path + " ---\n")
		b.WriteString(text)
		b.WriteString("\n")
	}
	sc.Text = b.String()
	return sc
}
