package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/solarsec-cli/internal/economic"
)

func newArchiveCmd(root *rootOptions, provider storeProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Browse archived assessment runs",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List the most recent archived runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			s, release, err := provider.Open(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to open run archive: %w", err)
			}
			defer release()

			runs, err := s.ListRuns(ctx, limit)
			if err != nil {
				return err
			}
			t := table{
				Title:   "Archived Runs",
				Headers: []string{"RUN ID", "SYSTEM", "CREATED"},
				Data:    runs,
			}
			for _, r := range runs {
				t.Rows = append(t.Rows, []string{r.ID.String(), r.SystemName, r.CreatedAt.Format(time.RFC3339)})
			}
			return render(cmd.OutOrStdout(), root.outputFormat, t)
		},
	}
	list.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")

	show := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show the executive summary of an archived run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid run id %q: %w", args[0], err)
			}
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			s, release, err := provider.Open(ctx, cfg)
			if err != nil {
				return fmt.Errorf("failed to open run archive: %w", err)
			}
			defer release()

			run, err := s.GetRun(ctx, id)
			if err != nil {
				return err
			}
			sum := run.Bundle.Summary
			t := keyValues(fmt.Sprintf("Run %s", run.ID), run.Bundle,
				"System", run.SystemName,
				"Created", run.CreatedAt.Format(time.RFC3339),
				"Overall risk", string(sum.OverallRiskLevel),
				"Threats", fmt.Sprintf("%d (%d critical, %d high)", sum.TotalThreats, sum.CriticalThreats, sum.HighThreats),
				"Potential impact", economic.FormatAUD(sum.TotalPotentialImpactAUD),
				"Expected annual loss", economic.FormatAUD(sum.ExpectedAnnualLossAUD),
				"Compliance", fmt.Sprintf("%s (%.1f%%)", sum.ComplianceStatus, sum.AverageComplianceScore),
			)
			for _, f := range sum.KeyFindings {
				t.Rows = append(t.Rows, []string{labelStyle.Render("Finding"), f})
			}
			return render(cmd.OutOrStdout(), root.outputFormat, t)
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}
