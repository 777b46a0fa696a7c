package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dubloom/internal/ledger"
	"dubloom/internal/logging"
	"dubloom/internal/runlog"
	"dubloom/internal/services/studio"
	"dubloom/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var offset int
	var limit int

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Render and export every eligible dubbing in the batch list",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("offset") {
				cfg.Batch.Offset = offset
			}
			if cmd.Flags().Changed("limit") {
				cfg.Batch.Limit = limit
			}

			logger, closer, err := logging.NewWithFile(logging.Options{
				Level:  cfg.Logging.Level,
				Format: cfg.Logging.Format,
				Output: os.Stderr,
			}, cfg.Paths.LogDir)
			if err != nil {
				return fmt.Errorf("initialize logging: %w", err)
			}
			defer closer.Close()

			svc, err := studio.New(cfg.Studio.APIKey, cfg.Studio.Token,
				cfg.Studio.PublicBaseURL, cfg.Studio.StudioBaseURL, cfg.RequestTimeout())
			if err != nil {
				return fmt.Errorf("build studio client: %w", err)
			}

			led, err := ledger.Open(cfg.LedgerPath(), logger)
			if err != nil {
				return err
			}

			history, err := runlog.Open(cfg.RunLogPath())
			if err != nil {
				return err
			}
			defer history.Close()

			runner, err := workflow.NewRunner(cfg, svc, led, history, logger)
			if err != nil {
				return err
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			summary, err := runner.Run(signalCtx)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Processed: %d (exported %d)\n", summary.Processed, summary.Exported)
			fmt.Fprintf(out, "Skipped:   %d\n", summary.Skipped)
			fmt.Fprintf(out, "Failed:    %d\n", summary.Failed)
			return err
		},
	}

	cmd.Flags().IntVar(&offset, "offset", 0, "Skip this many items at the start of the batch list")
	cmd.Flags().IntVar(&limit, "limit", 0, "Process at most this many items (0 means all)")
	return cmd
}
