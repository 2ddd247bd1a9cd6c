package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/san-kum/rungekutta/internal/logging"
)

type globals struct {
	dataDir  string
	logLevel string
	logger   *slog.Logger
}

// newRootCmd builds the rkode command tree.
func newRootCmd() *cobra.Command {
	g := &globals{}

	rootCmd := &cobra.Command{
		Use:           "rkode",
		Short:         "runge-kutta integration lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := logging.New(g.logLevel, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			g.logger = logger
			slog.SetDefault(logger)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&g.dataDir, "data", ".rkode", "data directory")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(
		newRunCmd(g),
		newLiveCmd(g),
		newCompareCmd(g),
		newConvergeCmd(),
		newLyapunovCmd(),
		newPortraitCmd(),
		newPoincareCmd(),
		newListCmd(g),
		newShowCmd(g),
		newPlotCmd(g),
		newPhaseCmd(g),
		newAnalyzeCmd(g),
		newExportCSVCmd(g),
		newExportJSONCmd(g),
		newMethodsCmd(),
		newModelsCmd(),
		newPresetsCmd(),
	)
	return rootCmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
