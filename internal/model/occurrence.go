package model

import (
	"strings"
	"time"
)

// Platform identifies the listing site an occurrence was scraped from.
// Values outside the known set are preserved as-is.
type Platform string

const (
	PlatformRetreatGuru  Platform = "retreat.guru"
	PlatformBookRetreats Platform = "bookretreats.com"
)

// TimestampLayout is the layout used for scrape_timestamp values.
const TimestampLayout = "2006-01-02 15:04:05"

// FormatTimestamp renders t in TimestampLayout (UTC).
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Occurrence is one scraped listing: a retreat/event at one location, from
// one source, at one point in time. Core fields are typed; everything added
// by later enrichment passes lives in Attrs.
type Occurrence struct {
	OrganizerKey   string
	SourcePlatform Platform
	SourceLabel    string
	ScrapedAt      string
	OrganizerName  string
	EventTitle     string
	LocationCity   string
	EventURL       string
	SourceURL      string

	Attrs Attributes
}

// Get returns the value of a column, core or enrichment. Missing columns
// read as "".
func (o *Occurrence) Get(col string) string {
	switch col {
	case ColOrganizerKey:
		return o.OrganizerKey
	case ColSourcePlatform:
		return string(o.SourcePlatform)
	case ColSourceLabel:
		return o.SourceLabel
	case ColScrapeTimestamp:
		return o.ScrapedAt
	case ColOrganizerName:
		return o.OrganizerName
	case ColEventTitle:
		return o.EventTitle
	case ColLocationCity:
		return o.LocationCity
	case ColEventURL:
		return o.EventURL
	case ColSourceURL:
		return o.SourceURL
	default:
		return o.Attrs.Get(col)
	}
}

// Set writes a column value, routing core columns to their typed field.
func (o *Occurrence) Set(col, value string) {
	switch col {
	case ColOrganizerKey:
		o.OrganizerKey = value
	case ColSourcePlatform:
		o.SourcePlatform = Platform(value)
	case ColSourceLabel:
		o.SourceLabel = value
	case ColScrapeTimestamp:
		o.ScrapedAt = value
	case ColOrganizerName:
		o.OrganizerName = value
	case ColEventTitle:
		o.EventTitle = value
	case ColLocationCity:
		o.LocationCity = value
	case ColEventURL:
		o.EventURL = value
	case ColSourceURL:
		o.SourceURL = value
	default:
		o.Attrs.Set(col, value)
	}
}

// Columns returns the core columns followed by the enrichment columns this
// row carries, in insertion order.
func (o *Occurrence) Columns() []string {
	cols := make([]string, 0, len(CoreColumns)+o.Attrs.Len())
	cols = append(cols, CoreColumns...)
	return append(cols, o.Attrs.Keys()...)
}

// Clone returns a deep copy that shares no state with o.
func (o Occurrence) Clone() Occurrence {
	o.Attrs = o.Attrs.Clone()
	return o
}

// Attributes is an ordered string key/value table. Setting a key to "" still
// records the key, so a pass that found nothing leaves an explicit empty
// column rather than no column.
type Attributes struct {
	keys []string
	vals map[string]string
}

// Get returns the value for key, or "" when absent.
func (a *Attributes) Get(key string) string {
	return a.vals[key]
}

// Has reports whether key has been set, even to "".
func (a *Attributes) Has(key string) bool {
	_, ok := a.vals[key]
	return ok
}

// Set records key=value, appending key to the order on first use.
func (a *Attributes) Set(key, value string) {
	if a.vals == nil {
		a.vals = make(map[string]string)
	}
	if _, ok := a.vals[key]; !ok {
		a.keys = append(a.keys, key)
	}
	a.vals[key] = value
}

// Keys returns keys in insertion order.
func (a *Attributes) Keys() []string {
	out := make([]string, len(a.keys))
	copy(out, a.keys)
	return out
}

// Len returns the number of keys.
func (a *Attributes) Len() int { return len(a.keys) }

// Clone returns an independent copy.
func (a Attributes) Clone() Attributes {
	if a.vals == nil {
		return Attributes{}
	}
	c := Attributes{
		keys: make([]string, len(a.keys)),
		vals: make(map[string]string, len(a.vals)),
	}
	copy(c.keys, a.keys)
	for k, v := range a.vals {
		c.vals[k] = v
	}
	return c
}

// IsCoreColumn reports whether col maps to a typed Occurrence field.
func IsCoreColumn(col string) bool {
	for _, c := range CoreColumns {
		if c == col {
			return true
		}
	}
	return false
}

// NormalizeCity trims a location value; an all-whitespace city counts as
// absent.
func NormalizeCity(city string) string {
	return strings.TrimSpace(city)
}
