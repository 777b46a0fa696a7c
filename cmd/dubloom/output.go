package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"dubloom/internal/ledger"
	"dubloom/internal/runlog"
)

// writeJSON backs the --json flags on status and ledger commands.
func writeJSON(cmd *cobra.Command, v any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// statusColors maps the shared ledger and run-log statuses to the color
// used for that cell in the tables below.
func statusColors(status string) text.Colors {
	switch status {
	case ledger.StatusExported:
		return text.Colors{text.FgGreen}
	case ledger.StatusRendered:
		return text.Colors{text.FgCyan}
	case ledger.StatusPending, "running":
		return text.Colors{text.FgYellow}
	case ledger.StatusFailed:
		return text.Colors{text.FgRed}
	default:
		return nil
	}
}

// statusColumnConfig colors the status column when writing to a terminal.
func statusColumnConfig(column int, colorize bool) []table.ColumnConfig {
	cfg := table.ColumnConfig{Number: column, AlignHeader: text.AlignLeft}
	if colorize {
		cfg.Transformer = func(val interface{}) string {
			status, _ := val.(string)
			return statusColors(status).Sprint(status)
		}
	}
	return []table.ColumnConfig{cfg}
}

// ledgerTable renders ledger entries newest first with the column set the
// ledger commands share.
func ledgerTable(entries []ledger.Entry, colorize bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Item", "Status", "Language", "Rendered", "Title"})
	for _, entry := range entries {
		rendered := ""
		if !entry.RenderedAt.IsZero() {
			rendered = entry.RenderedAt.Local().Format(time.DateTime)
		}
		tw.AppendRow(table.Row{entry.ItemID, entry.Status, entry.RenderLanguage, rendered, entry.Title})
	}
	tw.SetColumnConfigs(statusColumnConfig(2, colorize))
	return tw.Render()
}

// attemptsTable renders run-log attempts with the elapsed wall time of each
// finished attempt.
func attemptsTable(attempts []runlog.Attempt, colorize bool) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"Started", "Item", "Job", "Status", "Elapsed", "Detail"})
	for _, attempt := range attempts {
		elapsed := ""
		if !attempt.FinishedAt.IsZero() {
			elapsed = attempt.FinishedAt.Sub(attempt.StartedAt).Round(time.Second).String()
		}
		tw.AppendRow(table.Row{
			attempt.StartedAt.Local().Format(time.DateTime),
			attempt.ItemID,
			attempt.JobID,
			attempt.Status,
			elapsed,
			attempt.Detail,
		})
	}
	tw.SetColumnConfigs(statusColumnConfig(4, colorize))
	return tw.Render()
}

// ledgerTotals summarizes entries as one line per status, in pipeline order.
func ledgerTotals(entries []ledger.Entry) []string {
	totals := map[string]int{}
	for _, entry := range entries {
		totals[entry.Status]++
	}
	order := []string{ledger.StatusExported, ledger.StatusRendered, ledger.StatusPending, ledger.StatusFailed}
	lines := make([]string, 0, len(order))
	for _, status := range order {
		lines = append(lines, fmt.Sprintf("  %-10s %d", status, totals[status]))
	}
	return lines
}
