package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xkilldash9x/solarsec-cli/internal/assessment"
	"github.com/xkilldash9x/solarsec-cli/internal/dread"
	"github.com/xkilldash9x/solarsec-cli/internal/observability"
)

func newDreadCmd(root *rootOptions) *cobra.Command {
	var threatsFile string
	cmd := &cobra.Command{
		Use:   "dread [system-config]",
		Short: "Score threats with DREAD and rank them",
		Long: `Scores the generated STRIDE threats, or the all_threats records of a
threat model exported with "threats --export", and prints the weighted
ranking.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var in assessment.Input
			if threatsFile != "" {
				records, err := dread.LoadThreatsFromStride(threatsFile)
				if err != nil {
					return err
				}
				in.ThreatRecords = records
			}
			res, err := runOne(cmd.Context(), args, in)
			if err != nil {
				return err
			}
			for _, s := range res.Bundle.Skipped {
				observability.ForComponent("cli").Warn("Threat record skipped.",
					zap.Int("index", s.Index), zap.String("reason", s.Reason))
			}

			report := res.Bundle.Dread
			t := table{
				Title:   "DREAD Prioritization",
				Headers: []string{"RANK", "THREAT", "WEIGHTED SCORE", "RISK"},
				Data:    report,
			}
			for i, p := range report.PrioritizedThreats {
				t.Rows = append(t.Rows, []string{
					fmt.Sprint(i + 1), p.ThreatID, fmt.Sprintf("%.2f", p.WeightedScore), string(p.RiskLevel),
				})
			}
			return render(cmd.OutOrStdout(), root.outputFormat, t)
		},
	}
	cmd.Flags().StringVar(&threatsFile, "threats", "", "threat model JSON to score instead of the generated threats")
	return cmd
}
