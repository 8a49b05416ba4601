package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"cashflow-engine/internal/config"
	"cashflow-engine/internal/engine"
	"cashflow-engine/internal/model"
	"cashflow-engine/internal/store/sqlite"
)

var (
	projectFile       string
	projectScenarioID string
	projectTrials     int
	projectSeed       uint64
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Project a scenario and print its sustainability summary",
	Long:  "Projects a scenario loaded from a JSON file (--file) or from the result store (--id).",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		var scenario model.CashFlowScenario
		switch {
		case projectFile != "":
			data, err := os.ReadFile(projectFile)
			if err != nil {
				return fmt.Errorf("read scenario file: %w", err)
			}
			if err := json.Unmarshal(data, &scenario); err != nil {
				return fmt.Errorf("parse scenario file: %w", err)
			}
		case projectScenarioID != "":
			st, err := sqlite.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open result store: %w", err)
			}
			defer st.Close()
			stored, err := st.GetScenario(context.Background(), projectScenarioID)
			if err != nil {
				return err
			}
			scenario = *stored
		default:
			return fmt.Errorf("either --file or --id is required")
		}

		eng := engine.New(nil, cfg.DefaultTrials, cfg.Workers)
		resp, err := eng.RunSimulation(context.Background(), &model.SimulationRequest{
			Scenario: scenario,
			Trials:   projectTrials,
			Seed:     projectSeed,
		})
		if err != nil {
			return err
		}

		color.Cyan("Scenario %s (%s), %d trials", scenario.ID, scenario.ScenarioType, resp.Trials)
		fmt.Printf("  Success probability: %.1f%%\n", resp.SuccessProbability*100)
		fmt.Printf("  Shortfall risk:      %.1f%%\n", resp.ShortfallRisk*100)
		fmt.Printf("  Projected fund:      %.2f\n", resp.Summary.TotalProjectedFund)

		rating := resp.Summary.SustainabilityRating
		switch rating {
		case model.RatingExcellent, model.RatingGood:
			color.Green("  Rating: %s (%d)", rating, resp.Summary.SustainabilityScore)
		case model.RatingAdequate:
			color.Yellow("  Rating: %s (%d)", rating, resp.Summary.SustainabilityScore)
		default:
			color.Red("  Rating: %s (%d)", rating, resp.Summary.SustainabilityScore)
		}

		for _, m := range resp.Messages {
			color.Yellow("  [%s] %s: %s", m.Level, m.Code, m.Message)
		}
		return nil
	},
}

func init() {
	projectCmd.Flags().StringVarP(&projectFile, "file", "f", "", "scenario JSON file")
	projectCmd.Flags().StringVar(&projectScenarioID, "id", "", "stored scenario id")
	projectCmd.Flags().IntVar(&projectTrials, "trials", 0, "Monte Carlo trial count (default: server default)")
	projectCmd.Flags().Uint64Var(&projectSeed, "seed", 0, "random seed (0 = non-deterministic)")
	projectCmd.MarkFlagsMutuallyExclusive("file", "id")
}
