package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vgbench/runner/internal/outputpath"
)

var (
	baselineDir  string
	baselineStem string
	baselineName string
)

// baselineCmd groups the baseline inspection/management subcommands:
// these only touch `*.base@NAME` files already on disk and never invoke
// valgrind.
var baselineCmd = &cobra.Command{
	Use:   "baseline",
	Short: "Inspect and manage named baselines",
}

var baselineListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the named baselines recorded for a function",
	RunE:  runBaselineList,
}

var baselinePromoteCmd = &cobra.Command{
	Use:   "promote",
	Short: "Promote the current run's artifacts to a named baseline",
	RunE:  runBaselinePromote,
}

var baselineRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove a named baseline",
	RunE:  runBaselineRemove,
}

func init() {
	rootCmd.AddCommand(baselineCmd)
	baselineCmd.AddCommand(baselineListCmd, baselinePromoteCmd, baselineRemoveCmd)

	baselineCmd.PersistentFlags().StringVarP(&baselineDir, "dir", "d", "", "Target directory containing tool artifacts (default: runner.target_dir from config)")
	baselineCmd.PersistentFlags().StringVarP(&baselineStem, "stem", "s", "", "Bench function stem (function name, optionally with its id)")
	_ = baselineCmd.MarkPersistentFlagRequired("stem")

	baselinePromoteCmd.Flags().StringVarP(&baselineName, "name", "n", "", "Baseline name")
	_ = baselinePromoteCmd.MarkFlagRequired("name")
	baselineRemoveCmd.Flags().StringVarP(&baselineName, "name", "n", "", "Baseline name")
	_ = baselineRemoveCmd.MarkFlagRequired("name")
}

func resolveBaselineDir() string {
	if baselineDir != "" {
		return baselineDir
	}
	return GetConfig().Runner.TargetDir
}

func runBaselineList(cmd *cobra.Command, args []string) error {
	names, err := outputpath.ListBaselineNames(resolveBaselineDir(), baselineStem)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "no named baselines recorded for %q\n", baselineStem)
		return nil
	}
	for _, n := range names {
		fmt.Fprintln(cmd.OutOrStdout(), n)
	}
	return nil
}

func runBaselinePromote(cmd *cobra.Command, args []string) error {
	if err := outputpath.PromoteBaseline(resolveBaselineDir(), baselineStem, baselineName); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "promoted %q to baseline %q\n", baselineStem, baselineName)
	return nil
}

func runBaselineRemove(cmd *cobra.Command, args []string) error {
	if err := outputpath.RemoveBaseline(resolveBaselineDir(), baselineStem, baselineName); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "removed baseline %q for %q\n", baselineName, baselineStem)
	return nil
}
