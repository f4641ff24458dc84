package main

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/retreat-leads/internal/aggregate"
	"github.com/sells-group/retreat-leads/internal/config"
	"github.com/sells-group/retreat-leads/internal/ledger"
	"github.com/sells-group/retreat-leads/internal/model"
	"github.com/sells-group/retreat-leads/internal/scorer"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Aggregate organizers, score them and write the prioritized lead list",
	Long:  "Folds the master ledger into one summary per organizer, scores each as a venue-rental lead and writes every row, annotated and sorted by priority, to the analyzed output. The master ledger is not modified.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if f, _ := cmd.Flags().GetString("format"); f != "" {
			cfg.Ledger.Format = f
		}
		if out, _ := cmd.Flags().GetString("out"); out != "" {
			cfg.Ledger.AnalyzedPath = out
		}
		if err := cfg.Validate("analyze"); err != nil {
			return err
		}
		if err := scorer.ValidateConfig(cfg.Scoring); err != nil {
			return err
		}

		l, err := ledger.Load(cfg.Ledger.MasterPath)
		if err != nil {
			return err
		}
		if l.Len() == 0 {
			return eris.Errorf("ledger %s is empty, run a scrape first", cfg.Ledger.MasterPath)
		}

		sums := analyzeLedger(l, cfg.Scoring)

		out := analyzedPath(cfg.Ledger.AnalyzedPath, cfg.Ledger.Format)
		if err := l.Save(out); err != nil {
			return err
		}
		zap.L().Info("analyzed ledger written", zap.String("path", out), zap.Int("rows", l.Len()))

		top, _ := cmd.Flags().GetInt("top")
		printReport(os.Stdout, buildReport(l.Len(), sums, top))
		return nil
	},
}

// analyzeLedger aggregates and scores l, then annotates and sorts its rows
// in place. The returned summaries are sorted by priority.
func analyzeLedger(l *ledger.Ledger, sc config.ScoringConfig) []model.OrganizerSummary {
	s := scorer.New(sc)
	rows := l.Rows()

	sums := aggregate.Aggregate(rows, s.Keywords())
	s.ScoreAll(sums)
	scorer.Annotate(rows, aggregate.Index(sums))
	scorer.SortByPriority(rows)
	scorer.SortSummaries(sums)
	return sums
}

// analyzedPath swaps the extension of path to match format.
func analyzedPath(path, format string) string {
	want := ".csv"
	if format == "xlsx" {
		want = ".xlsx"
	}
	ext := filepath.Ext(path)
	if strings.EqualFold(ext, want) {
		return path
	}
	return strings.TrimSuffix(path, ext) + want
}

// Priority bands used in the report.
const (
	highPriority   = 70
	mediumPriority = 50
)

// report is the organizer-level picture printed after analysis.
type report struct {
	Rows          int
	Organizers    int
	AIClasses     map[model.AIClass]int
	Unclassified  int
	LeadTypes     map[model.LeadType]int
	Traveling     []model.OrganizerSummary
	MultiPlatform int
	High          int
	Medium        int
	Low           int
	Top           []model.OrganizerSummary
}

// buildReport summarizes sums, which must already be sorted by priority.
// top bounds both ranked lists.
func buildReport(rows int, sums []model.OrganizerSummary, top int) report {
	if top <= 0 {
		top = 10
	}
	r := report{
		Rows:       rows,
		Organizers: len(sums),
		AIClasses:  make(map[model.AIClass]int),
		LeadTypes:  make(map[model.LeadType]int),
	}
	for _, s := range sums {
		if s.AI != nil {
			r.AIClasses[s.AI.Class]++
		} else {
			r.Unclassified++
		}
		r.LeadTypes[s.LeadType]++
		if s.IsTravelingFacilitator {
			r.Traveling = append(r.Traveling, s)
		}
		if s.IsMultiPlatform {
			r.MultiPlatform++
		}
		switch {
		case s.PriorityScore >= highPriority:
			r.High++
		case s.PriorityScore >= mediumPriority:
			r.Medium++
		default:
			r.Low++
		}
	}

	slices.SortStableFunc(r.Traveling, func(a, b model.OrganizerSummary) int {
		return b.UniqueLocationCount - a.UniqueLocationCount
	})
	r.Traveling = r.Traveling[:min(len(r.Traveling), top)]
	r.Top = sums[:min(len(sums), top)]
	return r
}

func init() {
	analyzeCmd.Flags().String("format", "", "output format: csv or xlsx (overrides ledger.format)")
	analyzeCmd.Flags().String("out", "", "output path (overrides ledger.analyzed_path)")
	analyzeCmd.Flags().Int("top", 10, "number of organizers listed in the report")
	rootCmd.AddCommand(analyzeCmd)
}
