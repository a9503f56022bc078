package cmd

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vgbench/runner/internal/formatter"
	"github.com/vgbench/runner/internal/runner"
	apperr "github.com/vgbench/runner/pkg/errors"
	"github.com/vgbench/runner/pkg/model"
)

// runCmd is the wire-protocol entry point a compiled benchmark binary
// invokes to drive one spec tree through the runner. Its argument grammar
// is positional, not flag-based, since the caller is generated code, not
// a human: `<library_version> <--lib-bench|--bin-bench> <manifest_dir>
// <pkg_name> <source_file> <module_path> <benchmark_binary_path>
// <payload_byte_count> <cli_args...>`.
var runCmd = &cobra.Command{
	Use:                "run <library_version> <--lib-bench|--bin-bench> <manifest_dir> <pkg_name> <source_file> <module_path> <benchmark_binary_path> <payload_byte_count> [cli_args...]",
	Short:              "Run a benchmark spec tree received from a compiled benchmark binary",
	Args:               cobra.MinimumNArgs(8),
	DisableFlagParsing: true,
	RunE:               runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	log := GetLogger()
	cfg := GetConfig()

	mode := args[1]
	manifestDir := args[2]
	pkgName := args[3]
	sourceFile := args[4]
	modulePath := args[5]
	benchmarkExe := args[6]

	payloadBytes, err := strconv.Atoi(args[7])
	if err != nil {
		return apperr.Wrap(apperr.CodeSpecDecodeError, "invalid payload byte count", err)
	}

	cliArgs := args[8:]
	baseline, allowASLR := parseRunnerCLIArgs(cliArgs)

	payload, err := runner.ReadPayload(cmd.InOrStdin(), payloadBytes)
	if err != nil {
		return err
	}

	meta := runner.RunMeta{
		ProjectRoot:         manifestDir,
		PackageDir:          filepath.Dir(sourceFile),
		BenchmarkFile:       sourceFile,
		BenchmarkExe:        benchmarkExe,
		ModulePath:          modulePath,
		LibraryName:         pkgName,
		TargetDir:           filepath.Join(cfg.Runner.TargetDir, sanitizeForPath(modulePath)),
		Baseline:            baseline,
		RegressionFailFast:  cfg.Regression.FailFast,
		DefaultSoftLimitPct: cfg.Regression.DefaultSoftLimitPct,
		DefaultHardLimit:    cfg.Regression.DefaultHardLimit,
		ValgrindBin:         cfg.Runner.ValgrindPath,
		AllowASLR:           cfg.Runner.AllowASLR || allowASLR,
		CLIArgs:             cliArgs,
	}
	if err := os.MkdirAll(meta.TargetDir, 0755); err != nil {
		return apperr.Wrap(apperr.CodeIOError, "failed to create target directory", err)
	}

	driver := GetService().Driver()
	ctx := cmd.Context()

	var summaries []*model.BenchmarkSummary
	var runErr error
	switch mode {
	case "--lib-bench":
		var groups *runner.LibraryBenchmarkGroups
		groups, runErr = runner.DecodeLibraryGroups(bytes.NewReader(payload))
		if runErr == nil {
			summaries, runErr = driver.RunLibraryGroups(ctx, groups, meta)
		}
	case "--bin-bench":
		var groups *runner.BinaryBenchmarkGroups
		groups, runErr = runner.DecodeBinaryGroups(bytes.NewReader(payload))
		if runErr == nil {
			summaries, runErr = driver.RunBinaryGroups(ctx, groups, meta)
		}
	default:
		return fmt.Errorf("invalid benchmark mode %q (expected --lib-bench or --bin-bench)", mode)
	}

	opts := formatter.DefaultOptions()
	runID := fmt.Sprintf("%s-%d", modulePath, os.Getpid())
	svc := GetService()
	for _, s := range summaries {
		if s == nil {
			continue
		}
		if err := formatter.WriteSummary(cmd.OutOrStdout(), s, opts); err != nil {
			log.Warn("failed to render summary for %s: %v", s.FunctionName, err)
		}
		if err := formatter.WriteJSONSummary(s); err != nil {
			log.Warn("failed to write JSON summary for %s: %v", s.FunctionName, err)
		}
		if svc != nil {
			if err := svc.RecordRun(ctx, runID, s); err != nil {
				log.Warn("failed to record run history for %s: %v", s.FunctionName, err)
			}
		}
	}

	if runErr != nil {
		if apperr.IsRegressionError(runErr) {
			// A fail-fast regression breach already flushed every summary
			// produced so far; surface it as a non-zero exit without an
			// additional error line.
			os.Exit(1)
		}
		return runErr
	}

	verdict := runner.Summarize(summaries)
	if verdict.RegressionCount > 0 {
		log.Warn("regressions detected in: %s", strings.Join(verdict.RegressedBenches, ", "))
	}
	os.Exit(verdict.ExitCode())
	return nil
}

// parseRunnerCLIArgs extracts the baseline selection and ASLR override
// from the forwarded cli_args, ignoring anything else: the macro layer's
// exact flag grammar is an external collaborator, so only the flags the
// runner itself must act on are recognized here.
func parseRunnerCLIArgs(args []string) (runner.BaselineOption, bool) {
	var opt runner.BaselineOption
	allowASLR := false
	for _, a := range args {
		switch {
		case a == "--allow-aslr":
			allowASLR = true
		case strings.HasPrefix(a, "--baseline="):
			name := strings.TrimPrefix(a, "--baseline=")
			opt.Load = &name
		case strings.HasPrefix(a, "--save-baseline="):
			name := strings.TrimPrefix(a, "--save-baseline=")
			opt.Save = &name
		}
	}
	return opt, allowASLR
}

var nonPathChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// sanitizeForPath converts a Rust module path like "pkg::module::bench"
// into a filesystem-safe directory component.
func sanitizeForPath(modulePath string) string {
	return nonPathChars.ReplaceAllString(strings.ReplaceAll(modulePath, "::", "_"), "_")
}
