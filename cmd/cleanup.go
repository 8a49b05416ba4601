package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"cashflow-engine/internal/config"
	"cashflow-engine/internal/store/sqlite"
)

var cleanupDays int

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete stored run results older than a day threshold",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		st, err := sqlite.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open result store: %w", err)
		}
		defer st.Close()

		deleted, err := st.CleanupOlderThan(context.Background(), cleanupDays)
		if err != nil {
			return err
		}

		color.Green("✅ Deleted %d run results older than %d days", deleted, cleanupDays)
		return nil
	},
}

func init() {
	cleanupCmd.Flags().IntVar(&cleanupDays, "older-than-days", 90, "delete results older than this many days (1-365)")
}
