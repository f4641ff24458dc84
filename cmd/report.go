package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sells-group/retreat-leads/internal/model"
)

func printReport(w io.Writer, r report) {
	fmt.Fprintf(w, "\nAnalyzed %d leads from %d unique organizers\n\n", r.Rows, r.Organizers)

	overview := newTable(w, "Overview")
	overview.AppendHeader(table.Row{"", "Organizers"})
	for _, c := range []model.AIClass{model.AIFacilitator, model.AIVenueOwner, model.AIUnclear} {
		overview.AppendRow(table.Row{"AI " + string(c), r.AIClasses[c]})
	}
	overview.AppendRow(table.Row{"Not classified", r.Unclassified})
	overview.AppendSeparator()
	for _, lt := range []model.LeadType{model.LeadTravelingFacilitator, model.LeadFacilitator, model.LeadVenueOwner, model.LeadUnknown} {
		overview.AppendRow(table.Row{string(lt), r.LeadTypes[lt]})
	}
	overview.AppendSeparator()
	overview.AppendRows([]table.Row{
		{"Multi-platform", r.MultiPlatform},
		{fmt.Sprintf("HIGH priority (%d+)", highPriority), r.High},
		{fmt.Sprintf("MEDIUM priority (%d-%d)", mediumPriority, highPriority-1), r.Medium},
		{fmt.Sprintf("LOW priority (<%d)", mediumPriority), r.Low},
	})
	overview.Render()

	if len(r.Traveling) > 0 {
		fmt.Fprintln(w)
		t := newTable(w, "Traveling facilitators")
		t.AppendHeader(table.Row{"Organizer", "Locations", "Where"})
		for _, s := range r.Traveling {
			t.AppendRow(table.Row{s.Name, s.UniqueLocationCount, truncateList(s.Locations, 3)})
		}
		t.Render()
	}

	if len(r.Top) > 0 {
		fmt.Fprintln(w)
		t := newTable(w, "Top leads")
		t.AppendHeader(table.Row{"#", "Score", "Organizer", "Lead type", "Events", "Locations", "Platforms"})
		for i, s := range r.Top {
			t.AppendRow(table.Row{
				i + 1, s.PriorityScore, s.Name, string(s.LeadType),
				s.OccurrenceCount, s.UniqueLocationCount, strings.Join(s.Platforms, ", "),
			})
		}
		t.Render()
	}
}

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle(title)
	return t
}

func truncateList(items []string, n int) string {
	if len(items) <= n {
		return strings.Join(items, ", ")
	}
	return strings.Join(items[:n], ", ") + fmt.Sprintf(" +%d more", len(items)-n)
}
