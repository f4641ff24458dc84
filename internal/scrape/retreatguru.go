package scrape

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CenterDetail is what a retreat.guru center page adds to its listings.
type CenterDetail struct {
	Address     string
	Description string
}

// ParseRetreatGuruSearch extracts listings from a rendered retreat.guru
// search page. Tiles without a title or event link are dropped.
func ParseRetreatGuruSearch(html []byte, base *url.URL) ([]Listing, error) {
	doc, err := Document(html)
	if err != nil {
		return nil, err
	}

	var out []Listing
	doc.Find("article.search-event-tile").Each(func(_ int, tile *goquery.Selection) {
		l := Listing{Title: Text(tile.Find("h2").First())}

		if href, ok := tile.Find("a.search-event-tile__content").First().Attr("href"); ok {
			l.EventURL = resolve(base, href)
		}

		loc := tile.Find(".search-event-tile__location").First()
		if center := loc.Find("a[href*='/centers/']").First(); center.Length() > 0 {
			l.Organizer = Text(center)
			href, _ := center.Attr("href")
			l.CenterURL = resolve(base, href)
		}
		l.City = tileCity(loc, l.Organizer)

		l.Dates = Text(tile.Find(".search-event-tile__dates a").First())
		l.Price = strings.TrimSpace(strings.Replace(Text(tile.Find(".search-event-tile__price").First()), "From", "", 1))
		l.Rating = Text(tile.Find(".search-event-tile__reviews").First())

		if l.Title != "" && l.EventURL != "" {
			out = append(out, l)
		}
	})
	return out, nil
}

// tileCity picks the "City, Country" span from a tile's location block,
// falling back to the last leaf span that is not the center name.
func tileCity(loc *goquery.Selection, organizer string) string {
	var city, fallback string
	loc.Find("span").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		t := Text(s)
		if t == "" || t == organizer || strings.HasPrefix(t, "http") ||
			s.Find("a").Length() > 0 || s.ParentsFiltered("a").Length() > 0 {
			return true
		}
		if strings.Contains(t, ",") {
			city = t
			return false
		}
		if s.Children().Length() == 0 {
			fallback = t
		}
		return true
	})
	if city != "" {
		return city
	}
	return fallback
}

var centerDescriptionSelectors = []string{".center-description", "[class*='about']", "article p"}

// ParseRetreatGuruCenter extracts the street address and description from
// a center page. The description is the first candidate block with more
// than 50 characters of text.
func ParseRetreatGuruCenter(html []byte) (CenterDetail, error) {
	doc, err := Document(html)
	if err != nil {
		return CenterDetail{}, err
	}

	d := CenterDetail{Address: Text(doc.Find("[data-cy='center-location']").First())}
	for _, sel := range centerDescriptionSelectors {
		if t := Text(doc.Find(sel).First()); len(t) > 50 {
			d.Description = Truncate(t, descriptionMax)
			break
		}
	}
	return d, nil
}

// resolve makes href absolute against base, dropping fragments.
func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	ref.Fragment = ""
	if base == nil {
		return ref.String()
	}
	return base.ResolveReference(ref).String()
}
