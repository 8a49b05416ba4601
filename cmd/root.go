package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cashflow-engine",
	Short: "Retirement cash-flow projection and Monte Carlo sustainability engine",
	Long: `cashflow-engine projects a client's financial scenario year by year
and estimates sustainability under randomized market returns.

Examples:

  cashflow-engine serve
  cashflow-engine project --file scenario.json
  cashflow-engine cleanup --older-than-days 90
`,
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(cleanupCmd)
}
