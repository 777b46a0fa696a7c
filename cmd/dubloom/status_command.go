package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dubloom/internal/ledger"
	"dubloom/internal/runlog"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show ledger totals and recent render attempts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			led, err := ledger.Open(cfg.LedgerPath(), nil)
			if err != nil {
				return err
			}

			history, err := runlog.Open(cfg.RunLogPath())
			if err != nil {
				return err
			}
			defer history.Close()

			attempts, err := history.RecentAttempts(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd, map[string]any{
					"ledger":   led.List(),
					"attempts": attempts,
				})
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			fmt.Fprintln(out, "Ledger")
			for _, line := range ledgerTotals(led.List()) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out)

			fmt.Fprintln(out, "Recent attempts")
			if len(attempts) == 0 {
				fmt.Fprintln(out, "  none recorded")
				return nil
			}
			fmt.Fprintln(out, attemptsTable(attempts, colorize))
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Number of attempts to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit machine-readable output")
	return cmd
}
