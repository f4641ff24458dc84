package scrape

import (
	"github.com/sells-group/retreat-leads/internal/model"
)

// descriptionMax bounds center_description values.
const descriptionMax = 500

// Listing is one retreat parsed from a platform page, before it is stamped
// with batch metadata.
type Listing struct {
	Title           string
	Organizer       string
	City            string
	Dates           string
	Price           string
	Rating          string
	EventURL        string
	CenterURL       string
	DetailedAddress string
	Description     string
	HostEmail       string
	Latitude        string
	Longitude       string
}

// SearchQuery is the Places lookup text: the organizer plus the most
// specific location known. It is empty unless both are present.
func (l Listing) SearchQuery() string {
	if l.Organizer == "" {
		return ""
	}
	switch {
	case l.DetailedAddress != "":
		return l.Organizer + " " + l.DetailedAddress
	case l.City != "":
		return l.Organizer + " " + l.City
	default:
		return ""
	}
}

// Batch is the metadata shared by every occurrence of one scrape.
type Batch struct {
	ID        string
	Platform  model.Platform
	Label     string
	SourceURL string
	ScrapedAt string
}

// Occurrence converts l into a ledger row. The organizer key is left for
// the ledger to stamp.
func (l Listing) Occurrence(b Batch) model.Occurrence {
	o := model.Occurrence{
		SourcePlatform: b.Platform,
		SourceLabel:    b.Label,
		ScrapedAt:      b.ScrapedAt,
		OrganizerName:  l.Organizer,
		EventTitle:     l.Title,
		LocationCity:   model.NormalizeCity(l.City),
		EventURL:       l.EventURL,
		SourceURL:      b.SourceURL,
	}
	o.Set(model.ColBatchID, b.ID)
	o.Set(model.ColDates, l.Dates)
	o.Set(model.ColPrice, l.Price)
	o.Set(model.ColRating, l.Rating)
	o.Set(model.ColCenterURL, l.CenterURL)
	o.Set(model.ColDetailedAddress, l.DetailedAddress)
	o.Set(model.ColCenterDescription, Truncate(l.Description, descriptionMax))
	o.Set(model.ColSearchQuery, l.SearchQuery())
	if b.Platform == model.PlatformBookRetreats {
		o.Set(model.ColHostEmailScraped, l.HostEmail)
		o.Set(model.ColLatitude, l.Latitude)
		o.Set(model.ColLongitude, l.Longitude)
	}
	return o
}
