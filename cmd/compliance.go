package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xkilldash9x/solarsec-cli/internal/assessment"
)

func newComplianceCmd(root *rootOptions) *cobra.Command {
	var frameworks []string
	cmd := &cobra.Command{
		Use:   "compliance [system-config]",
		Short: "Assess AEMO VPP and AS/NZS 4777 compliance",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := runOne(cmd.Context(), args, assessment.Input{
				Frameworks: assessment.FrameworksFromConfig(frameworks),
			})
			if err != nil {
				return err
			}
			report := res.Bundle.Compliance
			t := table{
				Title: fmt.Sprintf("Compliance: %s (%s, %.1f%%)", res.System.SystemName,
					report.ComplianceSummary.OverallStatus, report.ComplianceSummary.AverageComplianceScore),
				Headers: []string{"REQUIREMENT", "STATUS", "SCORE", "GAPS"},
				Data:    report,
			}
			for _, a := range report.Assessments() {
				t.Rows = append(t.Rows, []string{
					a.RequirementID, string(a.Status), fmt.Sprintf("%.0f", a.ComplianceScore), fmt.Sprint(len(a.GapsIdentified)),
				})
			}
			return render(cmd.OutOrStdout(), root.outputFormat, t)
		},
	}
	cmd.Flags().StringSliceVar(&frameworks, "framework", nil, "frameworks to assess (default: assessment.frameworks)")
	return cmd
}
