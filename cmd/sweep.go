package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// newSweepCmd creates the 'sweep' subcommand: a one-shot forced sweep
// from the command line, useful for cron-style setups and smoke tests.
func newSweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Runs one forced sweep and exits",
		RunE:  runSweepCommand,
	}
}

func runSweepCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	logger := appInstance.Logger()

	count, err := appInstance.Sweeper().Forced(cmd.Context())
	if err != nil {
		return fmt.Errorf("forced sweep: %w", err)
	}
	logger.Info("forced sweep complete", zap.Int("notified", count))
	return nil
}
