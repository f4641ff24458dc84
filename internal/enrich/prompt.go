package enrich

import (
	"fmt"
	"strings"

	"github.com/sells-group/retreat-leads/internal/scrape"
)

// maxPromptSiteChars bounds the website text included in a prompt.
const maxPromptSiteChars = 6000

const systemPrompt = `You qualify leads for a retreat venue that rents its space to people who host retreats.

For each retreat organizer, decide:
1. Is this a FACILITATOR (leads retreats and rents venues) or a VENUE_OWNER (owns a retreat property and is a competitor)?
2. Are they a good fit to rent our venue?
3. What specific things should we mention when reaching out?

Signals of a FACILITATOR (good prospect):
- Hosts retreats at several different locations or venues
- Personal brand built around teaching (yoga teacher, wellness coach, meditation guide)
- Website is about their teaching, philosophy and programs, not accommodation
- No mention of owning a property or a specific venue
- Language like "we partner with beautiful venues" or "held at various locations"

Signals of a VENUE_OWNER (competitor):
- Owns a specific property or retreat center
- Website has room bookings, accommodation details or room types
- Has a /venue, /accommodations or /rooms page with booking information
- Name includes place words like "casa", "villa", "resort", "center", "hacienda"
- Every retreat is at the same fixed location
- Language like "our center", "our property", "stay with us"

Be specific. Reference actual details from the data and website.
Respond with a single JSON object and nothing else.`

// BuildPrompt renders the user message describing oc.
func BuildPrompt(oc OrganizerContext) string {
	var b strings.Builder

	b.WriteString("Analyze this retreat organizer. We want FACILITATORS who rent venues, not VENUE_OWNERS.\n\n")

	b.WriteString("ORGANIZER DATA:\n")
	fmt.Fprintf(&b, "- Name: %s\n", orNA(oc.Name))
	fmt.Fprintf(&b, "- Platforms: %s\n", orNA(strings.Join(oc.Platforms, ", ")))
	fmt.Fprintf(&b, "- Retreats listed: %d\n", oc.Count)
	fmt.Fprintf(&b, "- Unique locations: %d\n", oc.UniqueLocations())
	fmt.Fprintf(&b, "- Retreat titles: %s\n", orNA(strings.Join(oc.Titles, " | ")))
	fmt.Fprintf(&b, "- Locations: %s\n", orNA(strings.Join(oc.Locations, " | ")))
	fmt.Fprintf(&b, "- Google business name: %s\n", orNA(oc.BusinessName))
	fmt.Fprintf(&b, "- Google rating: %s (%s reviews)\n", orNA(oc.GoogleRating), orNA(oc.GoogleReviews))
	fmt.Fprintf(&b, "- Website: %s\n", orNA(oc.Website))

	b.WriteString("\nWEBSITE SIGNALS:\n")
	if oc.Site.HasVenuePage {
		b.WriteString("- Has a /venue page (venue owner signal)\n")
	}
	if oc.Site.HasAccommodationsPage {
		b.WriteString("- Has an /accommodations or /rooms page (strong venue owner signal)\n")
	}
	if len(oc.Site.PagesFound) > 0 {
		fmt.Fprintf(&b, "- Pages found: %s\n", strings.Join(oc.Site.PagesFound, ", "))
	}

	b.WriteString("\nWEBSITE CONTENT:\n")
	if text := strings.TrimSpace(oc.Site.Text); text != "" {
		b.WriteString(scrape.Truncate(text, maxPromptSiteChars))
	} else {
		b.WriteString("No website content available")
	}

	b.WriteString(`

---

Respond with a JSON object:
{
  "classification": "FACILITATOR" or "VENUE_OWNER" or "UNCLEAR",
  "confidence": 0-100,
  "profile_summary": "2-3 sentences on who they are and what they do",
  "website_analysis": "what on their website informed the classification",
  "outreach_talking_points": ["specific conversation starters referencing their work"],
  "fit_reasoning": "why they are or are not a good fit to rent our venue",
  "red_flags": ["reasons to deprioritize"],
  "green_flags": ["strong positive signals"]
}`)
	return b.String()
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}
