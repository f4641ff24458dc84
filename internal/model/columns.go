package model

// Core ledger columns.
const (
	ColOrganizerKey    = "organizer_key"
	ColSourcePlatform  = "source_platform"
	ColSourceLabel     = "source_label"
	ColScrapeTimestamp = "scrape_timestamp"
	ColOrganizerName   = "organizer_name"
	ColEventTitle      = "event_title"
	ColLocationCity    = "location_city"
	ColEventURL        = "event_url"
	ColSourceURL       = "source_url"
)

// CoreColumns is the header order used for a fresh ledger.
var CoreColumns = []string{
	ColOrganizerKey,
	ColSourcePlatform,
	ColSourceLabel,
	ColScrapeTimestamp,
	ColOrganizerName,
	ColEventTitle,
	ColLocationCity,
	ColEventURL,
	ColSourceURL,
}

// LegacyColumnAliases maps header names written by earlier pipeline versions
// to their current names.
var LegacyColumnAliases = map[string]string{
	"unique_id":   ColOrganizerKey,
	"organizer":   ColOrganizerName,
	"title":       ColEventTitle,
	"scrape_date": ColScrapeTimestamp,
}

// Listing detail columns written by the scrape pass.
const (
	ColBatchID           = "batch_id"
	ColDates             = "dates"
	ColPrice             = "price"
	ColRating            = "rating"
	ColCenterURL         = "center_url"
	ColDetailedAddress   = "detailed_address"
	ColCenterDescription = "center_description"
	ColSearchQuery       = "search_query"
	ColHostEmailScraped  = "host_email_scraped"
)

// Places enrichment columns.
const (
	ColGoogleBusinessName = "google_business_name"
	ColGoogleAddress      = "google_address"
	ColPhone              = "phone"
	ColWebsite            = "website"
	ColGoogleMapsURL      = "google_maps_url"
	ColGoogleRating       = "google_rating"
	ColGoogleReviews      = "google_reviews"
	ColLatitude           = "latitude"
	ColLongitude          = "longitude"
	ColDistanceMiles      = "distance_to_reference_miles"
)

// PlacesColumns lists every column the Places pass writes.
var PlacesColumns = []string{
	ColGoogleBusinessName,
	ColGoogleAddress,
	ColPhone,
	ColWebsite,
	ColGoogleMapsURL,
	ColGoogleRating,
	ColGoogleReviews,
	ColLatitude,
	ColLongitude,
	ColDistanceMiles,
}

// Website contact columns.
const (
	ColEmail     = "email"
	ColInstagram = "instagram"
	ColFacebook  = "facebook"
	ColLinkedIn  = "linkedin"
	ColTwitter   = "twitter"
	ColYouTube   = "youtube"
	ColTikTok    = "tiktok"
)

// ContactColumns lists every column the website pass writes.
var ContactColumns = []string{
	ColEmail,
	ColInstagram,
	ColFacebook,
	ColLinkedIn,
	ColTwitter,
	ColYouTube,
	ColTikTok,
}

// AI classification columns.
const (
	ColAIClassification      = "ai_classification"
	ColAIConfidence          = "ai_confidence"
	ColProfileSummary        = "profile_summary"
	ColWebsiteAnalysis       = "website_analysis"
	ColOutreachTalkingPoints = "outreach_talking_points"
	ColFitReasoning          = "fit_reasoning"
	ColAIRedFlags            = "ai_red_flags"
	ColAIGreenFlags          = "ai_green_flags"
)

// AIColumns lists every column the classification pass writes.
var AIColumns = []string{
	ColAIClassification,
	ColAIConfidence,
	ColProfileSummary,
	ColWebsiteAnalysis,
	ColOutreachTalkingPoints,
	ColFitReasoning,
	ColAIRedFlags,
	ColAIGreenFlags,
}

// Analysis columns broadcast from an OrganizerSummary onto its rows.
const (
	ColOccurrenceCount        = "occurrence_count"
	ColUniqueLocations        = "unique_locations"
	ColIsTravelingFacilitator = "is_traveling_facilitator"
	ColIsMultiPlatform        = "is_multi_platform"
	ColNameClassification     = "name_based_classification"
	ColPriorityScore          = "priority_score"
	ColLeadType               = "lead_type"
)

// AnalysisColumns is the order analysis columns are appended in.
var AnalysisColumns = []string{
	ColOccurrenceCount,
	ColUniqueLocations,
	ColIsTravelingFacilitator,
	ColIsMultiPlatform,
	ColNameClassification,
	ColPriorityScore,
	ColLeadType,
}
