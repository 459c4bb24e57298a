package cmd

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/solarsec-cli/api/schemas"
	"github.com/xkilldash9x/solarsec-cli/internal/assessment"
	"github.com/xkilldash9x/solarsec-cli/internal/economic"
)

func parseScenarios(names []string) ([]schemas.AttackScenario, error) {
	var out []schemas.AttackScenario
	for _, n := range names {
		s := schemas.AttackScenario(strings.ToUpper(strings.TrimSpace(n)))
		if s == "" {
			continue
		}
		if !slices.Contains(schemas.AttackScenarios, s) {
			return nil, fmt.Errorf("unknown attack scenario %q", n)
		}
		out = append(out, s)
	}
	return out, nil
}

func newEconomicCmd(root *rootOptions) *cobra.Command {
	var (
		scenarios []string
		csvPath   string
		seed      int64
	)
	cmd := &cobra.Command{
		Use:   "economic [system-config]",
		Short: "Estimate the economic impact of attack scenarios",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			selected, err := parseScenarios(scenarios)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("seed") {
				cfg, err := getConfigFromContext(cmd.Context())
				if err != nil {
					return err
				}
				cfg.SetAssessmentPriceSeed(seed)
			}
			res, err := runOne(cmd.Context(), args, assessment.Input{Scenarios: selected})
			if err != nil {
				return err
			}
			analysis := res.Bundle.Economic

			if csvPath != "" {
				f, err := os.Create(csvPath)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", csvPath, err)
				}
				if err := economic.WriteImpactsCSV(f, analysis.Impacts); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
			}

			t := table{
				Title:   fmt.Sprintf("Economic Impact: %s", res.System.SystemName),
				Headers: []string{"SCENARIO", "DURATION (H)", "AFFECTED MW", "TOTAL IMPACT"},
				Data:    analysis,
			}
			for _, imp := range analysis.Impacts {
				t.Rows = append(t.Rows, []string{
					economic.ScenarioTitle(imp.Scenario),
					fmt.Sprintf("%.1f", imp.DurationHours),
					fmt.Sprintf("%.4f", imp.AffectedCapacityMW),
					economic.FormatAUD(imp.Total()),
				})
			}
			return render(cmd.OutOrStdout(), root.outputFormat, t)
		},
	}
	cmd.Flags().StringSliceVar(&scenarios, "scenario", nil, "attack scenarios to evaluate (default: all)")
	cmd.Flags().StringVar(&csvPath, "csv", "", "also write the scenario impacts as CSV to this file")
	cmd.Flags().Int64Var(&seed, "seed", 0, "seed for the synthetic spot-price series")
	return cmd
}
