package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/retreat-leads/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "retreat-leads",
	Short: "Retreat organizer lead pipeline",
	Long:  "Scrapes retreat listings, enriches organizers with Google Places, website contacts and AI classification, and scores them as venue-rental prospects.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if ledgerPath != "" {
			cfg.Ledger.MasterPath = ledgerPath
		}

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

var ledgerPath string

func init() {
	rootCmd.PersistentFlags().StringVar(&ledgerPath, "ledger", "", "master ledger path (overrides ledger.master_path)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
