package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dharani043/result-bot/internal/api"
)

// newRunCmd creates the 'run' subcommand, which starts the engine's
// outer loop and the admin HTTP server.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Starts the result monitoring engine",
		Long: `Runs the engine loop: drains the inbound command stream every tick
and sweeps the full registry on the configured interval, pushing a
notification to each subscriber whose result newly became available.`,
		RunE: runRunCommand,
	}
}

func runRunCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd.Context())
	if err != nil {
		return err
	}
	logger := appInstance.Logger()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := appInstance.Runner()
	if err != nil {
		return fmt.Errorf("build runner: %w", err)
	}

	errCh := make(chan error, 2)
	if cfg.Server.Enabled {
		server := api.NewServer(appInstance.Registry(), logger.Named("api"))
		go func() {
			errCh <- server.Run(ctx, cfg.Server.Port)
		}()
		logger.Info("admin server listening", zap.Int("port", cfg.Server.Port))
	}

	go func() {
		errCh <- runner.Run(ctx)
	}()

	err = <-errCh
	stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("run engine: %w", err)
	}
	logger.Info("engine stopped")
	return nil
}
