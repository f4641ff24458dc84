package scrape

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// listingPaths selects bookretreats.com retreat pages and skips their
// search-result pages.
var listingPaths = NewPathMatcher([]string{"/r/*"}, []string{"/r/s/*"})

// BookRetreatsListingURLs returns the distinct retreat page URLs linked
// from a search page, in document order.
func BookRetreatsListingURLs(html []byte, base *url.URL) ([]string, error) {
	doc, err := Document(html)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var out []string
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		abs := resolve(base, href)
		u, err := url.Parse(abs)
		if err != nil || (base != nil && !strings.EqualFold(u.Host, base.Host)) {
			return
		}
		if strings.Trim(u.Path, "/") == "r" || !listingPaths.Match(abs) {
			return
		}
		u.RawQuery = ""
		abs = u.String()
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		out = append(out, abs)
	})
	return out, nil
}

// structuredTypes are the JSON-LD types that describe a retreat.
var structuredTypes = map[string]bool{
	"Product":         true,
	"Event":           true,
	"TouristTrip":     true,
	"LodgingBusiness": true,
}

// ParseBookRetreatsListing extracts a listing from a retreat page. JSON-LD
// is the primary source; the <h1> fills in a missing title.
func ParseBookRetreatsListing(html []byte, pageURL string, base *url.URL) (Listing, error) {
	doc, err := Document(html)
	if err != nil {
		return Listing{}, err
	}

	l := Listing{EventURL: pageURL}
	if obj := findStructuredData(doc); obj != nil {
		applyStructuredData(obj, &l)
	}
	if l.Title == "" {
		l.Title = Text(doc.Find("h1").First())
	}
	if href, ok := doc.Find("a[href*='/organizers/']").First().Attr("href"); ok {
		l.CenterURL = resolve(base, href)
	}
	return l, nil
}

// findStructuredData returns the JSON-LD node describing the retreat: the
// first node of a known retreat type across every script block, otherwise
// the first typed node (or first @graph node) seen.
func findStructuredData(doc *goquery.Document) map[string]any {
	var candidates []map[string]any
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var data any
		if err := json.Unmarshal([]byte(s.Text()), &data); err != nil {
			return
		}
		switch v := data.(type) {
		case map[string]any:
			if graph, ok := v["@graph"].([]any); ok {
				for _, item := range graph {
					if node, ok := item.(map[string]any); ok {
						candidates = append(candidates, node)
					}
				}
				return
			}
			if _, ok := v["@type"]; ok {
				candidates = append(candidates, v)
			}
		case []any:
			for _, item := range v {
				if node, ok := item.(map[string]any); ok {
					if _, ok := node["@type"]; ok {
						candidates = append(candidates, node)
					}
				}
			}
		}
	})

	for _, c := range candidates {
		if hasStructuredType(c) {
			return c
		}
	}
	if len(candidates) > 0 {
		return candidates[0]
	}
	return nil
}

func hasStructuredType(node map[string]any) bool {
	switch t := node["@type"].(type) {
	case string:
		return structuredTypes[t]
	case []any:
		for _, x := range t {
			if s, ok := x.(string); ok && structuredTypes[s] {
				return true
			}
		}
	}
	return false
}

func applyStructuredData(data map[string]any, l *Listing) {
	l.Title = firstString(data, "name", "headline")

	switch org := firstPresent(data, "organizer", "provider", "brand").(type) {
	case map[string]any:
		l.Organizer = str(org["name"])
		l.HostEmail = str(org["email"])
	case string:
		l.Organizer = strings.TrimSpace(org)
	}
	if l.Organizer == "" {
		if offers, ok := data["offers"].(map[string]any); ok {
			if seller, ok := offers["seller"].(map[string]any); ok {
				l.Organizer = str(seller["name"])
			}
		}
	}

	if loc, ok := firstPresent(data, "location", "contentLocation").(map[string]any); ok {
		switch addr := loc["address"].(type) {
		case map[string]any:
			var parts []string
			for _, k := range []string{"addressLocality", "addressRegion", "addressCountry"} {
				if v := addressPart(addr[k]); v != "" {
					parts = append(parts, v)
				}
			}
			l.City = strings.Join(parts, ", ")
			l.DetailedAddress = str(addr["streetAddress"])
			if l.DetailedAddress == "" {
				l.DetailedAddress = l.City
			}
		case string:
			l.City = strings.TrimSpace(addr)
			l.DetailedAddress = l.City
		}
		if geo, ok := loc["geo"].(map[string]any); ok {
			l.Latitude = str(geo["latitude"])
			l.Longitude = str(geo["longitude"])
		}
	}

	var offer map[string]any
	switch o := data["offers"].(type) {
	case map[string]any:
		offer = o
	case []any:
		if len(o) > 0 {
			offer, _ = o[0].(map[string]any)
		}
	}
	if offer != nil {
		if price := str(offer["price"]); price != "" {
			currency := str(offer["priceCurrency"])
			if currency == "" {
				currency = "USD"
			}
			l.Price = currency + " " + price
		}
	}

	if rating, ok := data["aggregateRating"].(map[string]any); ok {
		if v := str(rating["ratingValue"]); v != "" {
			l.Rating = v
			if n := str(rating["reviewCount"]); n != "" {
				l.Rating += " (" + n + " reviews)"
			}
		}
	}

	start, end := str(data["startDate"]), str(data["endDate"])
	switch {
	case start != "" && end != "":
		l.Dates = start + " - " + end
	case start != "":
		l.Dates = start
	}

	l.Description = Truncate(str(data["description"]), descriptionMax)
}

// addressPart reads an address component that may be a plain string or a
// nested {"name": ...} object such as a schema.org Country.
func addressPart(v any) string {
	if m, ok := v.(map[string]any); ok {
		return str(m["name"])
	}
	return str(v)
}

func firstPresent(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil && v != "" {
			return v
		}
	}
	return nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := str(m[k]); s != "" {
			return s
		}
	}
	return ""
}

// str renders a scalar JSON value as text. Objects and arrays yield "".
func str(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}
