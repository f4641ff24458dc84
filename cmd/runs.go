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

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect pipeline run history",
	Long:  "Commands for listing and summarizing recorded run and classify invocations.",
}

// -- runs list --

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := st.ListRuns(ctx, limit)
		if err != nil {
			return eris.Wrap(err, "runs list")
		}

		if len(runs) == 0 {
			fmt.Fprintln(os.Stderr, "No runs found.")
			return nil
		}

		formatRunsList(os.Stdout, runs)
		return nil
	},
}

// -- runs stats --

var runsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate run statistics",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		runs, err := st.ListRuns(ctx, 10000) // high limit for stats
		if err != nil {
			return eris.Wrap(err, "runs stats")
		}

		since, _ := cmd.Flags().GetDuration("since")
		formatRunStats(os.Stdout, computeRunStats(runs, since, time.Now()))
		return nil
	},
}

func init() {
	runsListCmd.Flags().Int("limit", 20, "max number of runs to display")
	runsStatsCmd.Flags().Duration("since", 7*24*time.Hour, "time window for stats (e.g. 24h, 168h); 0 means all")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsStatsCmd)
	rootCmd.AddCommand(runsCmd)
}

// runStats holds aggregate statistics computed from a set of runs.
type runStats struct {
	Total      int
	Complete   int
	Failed     int
	Scraped    int
	Appended   int
	ByCommand  map[string]int
	AvgDurSecs float64
}

// computeRunStats aggregates runs started within since of now. A zero since
// keeps every run.
func computeRunStats(runs []store.Run, since time.Duration, now time.Time) runStats {
	s := runStats{ByCommand: make(map[string]int)}

	var totalDur time.Duration
	var durCount int

	for _, r := range runs {
		if since > 0 && r.StartedAt.Before(now.Add(-since)) {
			continue
		}
		s.Total++
		s.ByCommand[r.Command]++
		s.Scraped += r.Scraped
		s.Appended += r.Appended

		switch r.Status {
		case store.RunStatusComplete:
			s.Complete++
			totalDur += r.FinishedAt.Sub(r.StartedAt)
			durCount++
		case store.RunStatusFailed:
			s.Failed++
		}
	}

	if durCount > 0 {
		s.AvgDurSecs = totalDur.Seconds() / float64(durCount)
	}
	return s
}

// formatRunsList writes a tabular list of runs to w.
func formatRunsList(w io.Writer, runs []store.Run) {
	t := newTable(w, "")
	t.AppendHeader(table.Row{"ID", "Command", "Status", "Source", "Scraped", "Added", "Started", "Duration"})
	for _, r := range runs {
		source := r.Source
		if len(source) > 40 {
			source = source[:37] + "..."
		}
		status := r.Status
		if r.Error != "" {
			status += ": " + truncateError(r.Error)
		}
		t.AppendRow(table.Row{
			truncateID(r.ID),
			r.Command,
			status,
			source,
			r.Scraped,
			r.Appended,
			r.StartedAt.Format("2006-01-02 15:04"),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String(),
		})
	}
	t.Render()
}

// formatRunStats writes aggregate stats to w.
func formatRunStats(w io.Writer, s runStats) {
	t := newTable(w, "Run history")
	t.AppendRows([]table.Row{
		{"Total runs", s.Total},
		{"Complete", s.Complete},
		{"Failed", s.Failed},
		{"Listings scraped", s.Scraped},
		{"Leads added", s.Appended},
	})
	for _, c := range []string{"run", "classify"} {
		if n := s.ByCommand[c]; n > 0 {
			t.AppendRow(table.Row{"  " + c, n})
		}
	}
	if s.AvgDurSecs > 0 {
		t.AppendRow(table.Row{"Avg duration", fmt.Sprintf("%.1fs", s.AvgDurSecs)})
	}
	t.Render()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncateError(msg string) string {
	if len(msg) > 40 {
		return msg[:37] + "..."
	}
	return msg
}
