package enrich

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/sells-group/retreat-leads/internal/model"
	"github.com/sells-group/retreat-leads/internal/scrape"
)

// Contacts is what an organizer website yields.
type Contacts struct {
	Emails    []string
	Instagram string
	Facebook  string
	LinkedIn  string
	Twitter   string
	YouTube   string
	TikTok    string
}

// done reports whether the crawl can stop early.
func (c *Contacts) done() bool {
	return len(c.Emails) > 0 && c.Instagram != ""
}

// Apply writes the contact columns onto o.
func (c Contacts) Apply(o *model.Occurrence) {
	o.Set(model.ColEmail, strings.Join(c.Emails, "; "))
	o.Set(model.ColInstagram, c.Instagram)
	o.Set(model.ColFacebook, c.Facebook)
	o.Set(model.ColLinkedIn, c.LinkedIn)
	o.Set(model.ColTwitter, c.Twitter)
	o.Set(model.ColYouTube, c.YouTube)
	o.Set(model.ColTikTok, c.TikTok)
}

// WebsiteOptions configures contact scraping.
type WebsiteOptions struct {
	// ContactPaths are tried after the homepage, relative to the site root.
	ContactPaths   []string
	MaxEmails      int
	Concurrency    int
	RequestsPerSec float64
}

// Websites scrapes organizer websites for contact details.
type Websites struct {
	fetcher scrape.Fetcher
	opts    WebsiteOptions
	limiter *rate.Limiter
}

// NewWebsites creates a contact scraper over fetcher.
func NewWebsites(fetcher scrape.Fetcher, opts WebsiteOptions) *Websites {
	if opts.MaxEmails <= 0 {
		opts.MaxEmails = 3
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Websites{fetcher: fetcher, opts: opts, limiter: newLimiter(opts.RequestsPerSec)}
}

var emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

// emailNoise marks addresses that are placeholders, tracking IDs or image
// file names rather than real contacts.
var emailNoise = []string{
	"example.com", "domain.com", "email.com", "your",
	"noreply", "no-reply", "donotreply",
	".png", ".jpg", ".gif", ".svg", ".webp",
	"sentry.io", "cloudfront", "wixpress",
}

func isNoiseEmail(e string) bool {
	for _, n := range emailNoise {
		if strings.Contains(e, n) {
			return true
		}
	}
	return false
}

// Normalize returns site as an absolute URL, adding https:// when no
// scheme is given. Empty input stays empty.
func Normalize(site string) string {
	site = strings.TrimSpace(site)
	if site == "" {
		return ""
	}
	if !strings.HasPrefix(site, "http://") && !strings.HasPrefix(site, "https://") {
		site = "https://" + site
	}
	return site
}

// Scrape visits the homepage and then each contact path until both an email
// and an Instagram profile have been found. Page failures are skipped.
func (w *Websites) Scrape(ctx context.Context, site string) Contacts {
	var c Contacts
	site = Normalize(site)
	u, err := url.Parse(site)
	if err != nil || u.Host == "" {
		return c
	}
	root := u.Scheme + "://" + u.Host

	pages := make([]string, 0, 1+len(w.opts.ContactPaths))
	pages = append(pages, site)
	for _, p := range w.opts.ContactPaths {
		pages = append(pages, root+"/"+strings.TrimPrefix(p, "/"))
	}

	seenEmail := make(map[string]struct{})
	for _, page := range pages {
		if ctx.Err() != nil || c.done() {
			break
		}
		if err := w.limiter.Wait(ctx); err != nil {
			break
		}
		res, err := w.fetcher.Fetch(ctx, page)
		if err != nil {
			zap.L().Debug("enrich: website page failed", zap.String("url", page), zap.Error(err))
			continue
		}
		w.extract(res.HTML, &c, seenEmail)
	}
	return c
}

func (w *Websites) extract(html []byte, c *Contacts, seen map[string]struct{}) {
	addEmail := func(e string) {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || isNoiseEmail(e) || len(c.Emails) >= w.opts.MaxEmails {
			return
		}
		if _, ok := seen[e]; ok {
			return
		}
		seen[e] = struct{}{}
		c.Emails = append(c.Emails, e)
	}

	for _, e := range emailPattern.FindAllString(string(html), -1) {
		addEmail(e)
	}

	doc, err := scrape.Document(html)
	if err != nil {
		return
	}
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if rest, ok := strings.CutPrefix(strings.ToLower(href), "mailto:"); ok {
			addr, _, _ := strings.Cut(rest, "?")
			if emailPattern.MatchString(addr) {
				addEmail(addr)
			}
			return
		}
		socialLink(href, c)
	})
}

// socialLink records href on c when it is a profile link on a known
// network and that network has not been seen yet.
func socialLink(href string, c *Contacts) {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil || u.Host == "" {
		return
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")
	path := strings.ToLower(u.Path)
	if strings.Contains(path, "/share") || strings.Contains(path, "/intent") || strings.Contains(path, "sharer") {
		return
	}
	if strings.Trim(path, "/") == "" {
		return
	}

	set := func(dst *string) {
		if *dst == "" {
			*dst = href
		}
	}
	switch {
	case host == "instagram.com" || host == "instagr.am":
		set(&c.Instagram)
	case host == "facebook.com" || host == "fb.com" || strings.HasSuffix(host, ".facebook.com"):
		set(&c.Facebook)
	case host == "linkedin.com" || strings.HasSuffix(host, ".linkedin.com"):
		if strings.HasPrefix(path, "/company/") || strings.HasPrefix(path, "/in/") {
			set(&c.LinkedIn)
		}
	case host == "twitter.com" || host == "x.com":
		set(&c.Twitter)
	case host == "youtube.com" || host == "m.youtube.com":
		set(&c.YouTube)
	case host == "tiktok.com":
		set(&c.TikTok)
	}
}

// WebsiteStats counts what a contact pass did.
type WebsiteStats struct {
	Sites      int
	WithEmail  int
	WithSocial int
}

// Enrich scrapes every distinct website among rows once and writes the
// contact columns onto every row. Rows without a website get empty values.
func (w *Websites) Enrich(ctx context.Context, rows []model.Occurrence) WebsiteStats {
	var sites []string
	seen := make(map[string]struct{})
	for i := range rows {
		s := Normalize(rows[i].Get(model.ColWebsite))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		sites = append(sites, s)
	}

	results := make([]Contacts, len(sites))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.opts.Concurrency)
	for i, s := range sites {
		i, s := i, s
		g.Go(func() error {
			results[i] = w.Scrape(gctx, s)
			return nil
		})
	}
	_ = g.Wait()

	bySite := make(map[string]Contacts, len(sites))
	stats := WebsiteStats{Sites: len(sites)}
	for i, s := range sites {
		c := results[i]
		bySite[s] = c
		if len(c.Emails) > 0 {
			stats.WithEmail++
		}
		if c.Instagram != "" || c.Facebook != "" || c.LinkedIn != "" || c.Twitter != "" || c.YouTube != "" || c.TikTok != "" {
			stats.WithSocial++
		}
	}

	for i := range rows {
		bySite[Normalize(rows[i].Get(model.ColWebsite))].Apply(&rows[i])
	}

	zap.L().Info("enrich: website pass complete",
		zap.Int("sites", stats.Sites),
		zap.Int("with_email", stats.WithEmail),
		zap.Int("with_social", stats.WithSocial),
	)
	return stats
}
