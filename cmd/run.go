package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/retreat-leads/internal/store"
)

var (
	runURL   string
	runLabel string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Scrape a search page, enrich new listings and append them to the ledger",
	Example: `  retreat-leads run --url "https://retreat.guru/search?topic=yoga&country=mexico" --label rg-yoga-mexico
  retreat-leads run --url "https://bookretreats.com/s/yoga-retreats/mexico"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("run"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		listings, closeBrowser, err := listingFetcher()
		if err != nil {
			return err
		}
		defer closeBrowser()

		p := &pipeline{
			listings: listings,
			sites:    siteFetcher(),
			places:   placesClient(),
		}

		rec := store.Run{Command: "run", Source: runURL, StartedAt: time.Now().UTC()}
		sum, err := p.run(ctx, runURL, runLabel)
		if sum != nil {
			rec.ID = sum.Batch.ID
			rec.Scraped = sum.Scrape.Found
			rec.Appended = sum.Append.Appended
		}
		recordRun(ctx, st, rec, err)
		if err != nil {
			return eris.Wrap(err, "run")
		}

		printRunSummary(os.Stdout, sum)
		return nil
	},
}

func printRunSummary(w io.Writer, sum *runSummary) {
	fmt.Fprintf(w, "\nSource:  %s (%s)\nLabel:   %s\nBatch:   %s\n\n",
		sum.Batch.SourceURL, sum.Batch.Platform, sum.Batch.Label, sum.Batch.ID)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRows([]table.Row{
		{"Listings found", sum.Scrape.Found},
		{"Already in ledger", sum.Scrape.SkippedSeen},
		{"Page errors", sum.Scrape.Errors},
		{"Places matches", fmt.Sprintf("%d / %d", sum.Places.Found, sum.Places.Queries)},
		{"Websites with email", fmt.Sprintf("%d / %d", sum.Websites.WithEmail, sum.Websites.Sites)},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Leads added this run", sum.Append.Appended},
		{"Total leads in ledger", sum.Ledger.Rows},
		{"Unique organizers", sum.Ledger.Organizers},
		{"Duplicate entries", sum.Ledger.DuplicateRows},
	})
	for _, pc := range sum.Ledger.ByPlatform {
		t.AppendRow(table.Row{"  " + pc.Platform, pc.Rows})
	}
	t.Render()
}

func init() {
	runCmd.Flags().StringVarP(&runURL, "url", "u", "", "retreat.guru or bookretreats.com search URL (required)")
	runCmd.Flags().StringVarP(&runLabel, "label", "l", "", "short label for this search; generated from the URL when omitted")
	_ = runCmd.MarkFlagRequired("url")
	rootCmd.AddCommand(runCmd)
}
