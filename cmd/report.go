package cmd

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/xkilldash9x/solarsec-cli/internal/assessment"
	"github.com/xkilldash9x/solarsec-cli/internal/observability"
)

func newReportCmd(provider storeProvider) *cobra.Command {
	opts := &analyzeOptions{}
	var runID string
	cmd := &cobra.Command{
		Use:   "report [system-config]",
		Short: "Write JSON, CSV and HTML reports",
		Long: `Runs an assessment and writes its reports. With --run-id the reports are
rendered from an archived run instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := getConfigFromContext(ctx)
			if err != nil {
				return err
			}
			applyAssessmentFlags(cmd, cfg, opts)
			runner := assessment.NewRunner(cfg, observability.ForComponent("cli"))

			var res *assessment.Result
			if runID != "" {
				if len(args) > 0 {
					return errors.New("a system config cannot be combined with --run-id")
				}
				id, err := uuid.Parse(runID)
				if err != nil {
					return fmt.Errorf("invalid run id %q: %w", runID, err)
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
				res = &assessment.Result{RunID: run.ID.String(), Bundle: run.Bundle}
			} else {
				if res, err = runOne(ctx, args, assessment.Input{}); err != nil {
					return err
				}
			}

			paths, err := runner.WriteArtifacts(ctx, res, "", nil)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	}
	addAssessmentFlags(cmd, opts)
	cmd.Flags().StringVar(&runID, "run-id", "", "render an archived run")
	return cmd
}
