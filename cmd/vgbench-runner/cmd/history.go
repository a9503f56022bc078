package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vgbench/runner/internal/repository"
)

var (
	historyModule   string
	historyFunction string
	historyLimit    int
	historySince    time.Duration
	historyRegressedOnly bool
)

// historyCmd queries the optional run-history repository for trend data
// across CI runs.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show run-history trend data for a benchmark function",
	Long: `history queries the run-history store (when a database is configured)
for past runs of a benchmark function, or for every run that recorded a
regression within a recent window.`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVarP(&historyModule, "module", "m", "", "Module path to query")
	historyCmd.Flags().StringVarP(&historyFunction, "function", "f", "", "Function name to query")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "l", 20, "Maximum number of runs to show")
	historyCmd.Flags().DurationVar(&historySince, "since", 7*24*time.Hour, "When --regressed is set, only show regressions recorded since this long ago")
	historyCmd.Flags().BoolVar(&historyRegressedOnly, "regressed", false, "Show every regressed run recorded since --since, ignoring --module/--function")
}

func runHistory(cmd *cobra.Command, args []string) error {
	svc := GetService()
	ctx := cmd.Context()

	if historyRegressedOnly {
		runs, err := svc.RegressedRuns(ctx, historySince)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "no regressions recorded in the last %s\n", historySince)
			return nil
		}
		printHistoryTable(cmd, runs)
		return nil
	}

	if historyModule == "" || historyFunction == "" {
		return fmt.Errorf("--module and --function are required unless --regressed is set")
	}

	runs, err := svc.RunHistory(ctx, historyModule, historyFunction, historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no recorded runs for %s::%s\n", historyModule, historyFunction)
		return nil
	}
	printHistoryTable(cmd, runs)
	return nil
}

func printHistoryTable(cmd *cobra.Command, runs []*repository.HistoryRun) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%-20s %-24s %-20s %-10s %-6s %-5s %s\n",
		"RUN ID", "MODULE::FUNCTION", "CREATED AT", "TOOL", "REGR?", "COUNT", "BENCH ID")
	for _, r := range runs {
		if r == nil {
			continue
		}
		id := ""
		if r.BenchID != nil {
			id = *r.BenchID
		}
		fmt.Fprintf(w, "%-20s %-24s %-20s %-10s %-6t %-5d %s\n",
			r.RunID, r.ModulePath+"::"+r.FunctionName, r.CreatedAt.Format(time.RFC3339),
			r.Tool, r.HasRegressions, r.RegressionCount, id)
	}
}
