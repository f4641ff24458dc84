package main

import (
	"context"
	"io"
	"os"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/retreat-leads/internal/enrich"
	"github.com/sells-group/retreat-leads/internal/ledger"
	"github.com/sells-group/retreat-leads/internal/model"
	"github.com/sells-group/retreat-leads/internal/scrape"
	"github.com/sells-group/retreat-leads/internal/store"
	anthropicpkg "github.com/sells-group/retreat-leads/pkg/anthropic"
)

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify every organizer in the ledger as facilitator or venue owner",
	Long:  "Reads each organizer's website, asks the model whether they rent venues or own one, and writes the AI columns back onto every ledger row. Results are cached per organizer.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if err := cfg.Validate("classify"); err != nil {
			return err
		}

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if prune, _ := cmd.Flags().GetBool("prune-cache"); prune {
			n, err := st.DeleteExpiredClassifications(ctx)
			if err != nil {
				return eris.Wrap(err, "prune cache")
			}
			zap.L().Info("pruned expired classifications", zap.Int("deleted", n))
		}

		var cache enrich.ClassificationCache = st
		if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
			cache = nil
		}

		rec := store.Run{Command: "classify", Source: cfg.Ledger.MasterPath, StartedAt: time.Now().UTC()}
		stats, err := classifyLedger(ctx, anthropicClient(), siteFetcher(), cache)
		recordRun(ctx, st, rec, err)
		if err != nil {
			return err
		}

		printClassifyStats(os.Stdout, stats)
		return nil
	},
}

// classifyLedger runs the classifier over the master ledger and saves it.
// cache may be nil.
func classifyLedger(ctx context.Context, client anthropicpkg.Client, pages scrape.Fetcher, cache enrich.ClassificationCache) (enrich.ClassifyStats, error) {
	l, err := ledger.Load(cfg.Ledger.MasterPath)
	if err != nil {
		return enrich.ClassifyStats{}, err
	}
	if l.Len() == 0 {
		zap.L().Warn("ledger is empty, nothing to classify", zap.String("path", cfg.Ledger.MasterPath))
		return enrich.ClassifyStats{}, nil
	}

	c := enrich.NewClassifier(client, pages, cache, enrich.ClassifierOptions{
		Model:              cfg.Anthropic.Model,
		MaxTokens:          cfg.Anthropic.MaxTokens,
		MaxPageChars:       cfg.Anthropic.MaxPageChars,
		Concurrency:        cfg.Anthropic.Concurrency,
		RequestsPerSec:     cfg.Anthropic.RequestsPerSec,
		SiteRequestsPerSec: cfg.Website.RequestsPerSec,
		CacheTTL:           time.Duration(cfg.Cache.TTLDays) * 24 * time.Hour,
		Backoff:            backoff(),
	})
	stats := c.Enrich(ctx, l.Rows())

	if err := ctx.Err(); err != nil {
		return stats, eris.Wrap(err, "classify interrupted, ledger not saved")
	}
	if err := l.Save(cfg.Ledger.MasterPath); err != nil {
		return stats, err
	}
	return stats, nil
}

func printClassifyStats(w io.Writer, s enrich.ClassifyStats) {
	t := newTable(w, "AI classification")
	t.AppendHeader(table.Row{"Metric", "Organizers"})
	t.AppendRows([]table.Row{
		{"Analyzed (new)", s.Analyzed},
		{"From cache", s.Cached},
		{"No website", s.NoWebsite},
		{"Errors", s.Failed},
	})

	classes := make([]model.AIClass, 0, len(s.ByClass))
	for c := range s.ByClass {
		classes = append(classes, c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })
	if len(classes) > 0 {
		t.AppendSeparator()
		for _, c := range classes {
			t.AppendRow(table.Row{string(c), s.ByClass[c]})
		}
	}
	t.Render()
}

func init() {
	classifyCmd.Flags().Bool("no-cache", false, "ignore and do not write the classification cache")
	classifyCmd.Flags().Bool("prune-cache", false, "delete expired cache entries before classifying")
	rootCmd.AddCommand(classifyCmd)
}
