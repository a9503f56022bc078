package cmd

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/vgbench/runner/internal/formatter"
	apperr "github.com/vgbench/runner/pkg/errors"
	"github.com/vgbench/runner/pkg/model"
)

// reportCmd reformats a persisted summary.json back into the terminal
// grid, for inspecting a past run's results from a CI log archive without
// re-invoking valgrind.
var reportCmd = &cobra.Command{
	Use:   "report <summary.json>",
	Short: "Reformat a persisted summary.json back to the terminal grid",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return apperr.Wrap(apperr.CodeIOError, "failed to read summary file", err)
	}

	var summary model.BenchmarkSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return apperr.Wrap(apperr.CodeSpecDecodeError, "failed to decode summary file", err)
	}

	return formatter.WriteSummary(cmd.OutOrStdout(), &summary, formatter.DefaultOptions())
}
