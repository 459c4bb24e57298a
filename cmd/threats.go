package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/solarsec-cli/internal/assessment"
	"github.com/xkilldash9x/solarsec-cli/internal/observability"
)

// runOne executes a single assessment for the optional system config
// argument.
func runOne(ctx context.Context, args []string, in assessment.Input) (*assessment.Result, error) {
	cfg, err := getConfigFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if len(args) > 0 {
		in.ConfigPath = args[0]
	}
	res, err := assessment.NewRunner(cfg, observability.ForComponent("cli")).Run(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("assessment failed: %w", err)
	}
	return res, nil
}

func writeJSONFile(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func newThreatsCmd(root *rootOptions) *cobra.Command {
	var export string
	cmd := &cobra.Command{
		Use:   "threats [system-config]",
		Short: "Generate the STRIDE threat model",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runOne(cmd.Context(), args, assessment.Input{})
			if err != nil {
				return err
			}
			analysis := res.Bundle.ThreatModel
			if export != "" {
				if err := writeJSONFile(export, analysis); err != nil {
					return err
				}
			}

			t := table{
				Title:   fmt.Sprintf("STRIDE Threats: %s", res.System.SystemName),
				Headers: []string{"ID", "CATEGORY", "COMPONENT", "RISK", "TITLE"},
				Data:    analysis,
			}
			for _, th := range analysis.AllThreats {
				t.Rows = append(t.Rows, []string{
					th.ID, string(th.StrideCategory), th.AffectedComponent, fmt.Sprint(th.RiskScore), th.Title,
				})
			}
			return render(cmd.OutOrStdout(), root.outputFormat, t)
		},
	}
	cmd.Flags().StringVar(&export, "export", "", "write the threat model as JSON to this file")
	return cmd
}
