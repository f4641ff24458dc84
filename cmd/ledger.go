package main

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/sells-group/retreat-leads/internal/ledger"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Inspect the master ledger",
}

var ledgerStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show row, organizer and platform counts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		l, err := ledger.Load(cfg.Ledger.MasterPath)
		if err != nil {
			return err
		}
		formatLedgerStats(os.Stdout, cfg.Ledger.MasterPath, l)
		return nil
	},
}

func formatLedgerStats(w io.Writer, path string, l *ledger.Ledger) {
	s := l.Stats()
	t := newTable(w, path)
	t.AppendRows([]table.Row{
		{"Total leads", s.Rows},
		{"Unique organizers", s.Organizers},
		{"Duplicate entries", s.DuplicateRows},
		{"Columns", len(l.Columns())},
		{"Event URLs seen", l.SeenEventURLs().Len()},
	})
	if len(s.ByPlatform) > 0 {
		t.AppendSeparator()
		for _, pc := range s.ByPlatform {
			name := pc.Platform
			if name == "" {
				name = "(unknown)"
			}
			t.AppendRow(table.Row{name, pc.Rows})
		}
	}
	t.Render()
}

func init() {
	ledgerCmd.AddCommand(ledgerStatsCmd)
	rootCmd.AddCommand(ledgerCmd)
}
