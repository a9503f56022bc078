// Package cmd implements the vgbench-runner command tree: the wire-protocol
// entry point invoked by a compiled benchmark binary, and a handful of
// maintenance commands layered on top of the same config and service.
package cmd

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vgbench/runner/internal/service"
	"github.com/vgbench/runner/pkg/config"
	"github.com/vgbench/runner/pkg/telemetry"
	"github.com/vgbench/runner/pkg/utils"
)

var (
	// Global flags
	verbose    bool
	configPath string

	logger utils.Logger
	cfg    *config.Config
	svc    *service.Service

	telemetryShutdown telemetry.ShutdownFunc
)

// rootCmd represents the base command.
var rootCmd = &cobra.Command{
	Use:   "vgbench-runner",
	Short: "Out-of-process Valgrind benchmark runner",
	Long: `vgbench-runner drives one or more Valgrind tools (Callgrind, Cachegrind,
DHAT, Memcheck, Helgrind, DRD, Massif, BBV) over a benchmark specification
received from a compiled benchmark binary, compares results against a
baseline, detects regressions, and emits human-readable and JSON reports.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		logLevel := utils.LevelInfo
		if verbose || cfg.Log.Level == "debug" {
			logLevel = utils.LevelDebug
		}
		logger = utils.NewDefaultLogger(logLevel, os.Stderr)

		ctx := context.Background()
		shutdown, err := telemetry.Init(ctx)
		if err != nil {
			logger.Warn("telemetry initialization failed, continuing without tracing: %v", err)
			shutdown = nil
		}
		telemetryShutdown = shutdown

		svc, err = service.New(cfg, logger)
		if err != nil {
			return err
		}
		return svc.Initialize(ctx)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if svc != nil {
			if err := svc.Stop(); err != nil {
				logger.Warn("failed to stop service cleanly: %v", err)
			}
		}
		if telemetryShutdown != nil {
			if err := telemetryShutdown(context.Background()); err != nil {
				logger.Warn("telemetry shutdown failed: %v", err)
			}
		}
		return nil
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: config.yaml searched in ., ./configs, /etc/vgbench-runner)")

	binName := BinName()
	rootCmd.Example = `  # Wire-protocol entry point, invoked by a compiled benchmark binary
  ` + binName + ` run 0.1 --lib-bench /path/to/crate pkg src/lib.rs pkg::module /path/to/bench-exe 4096

  # List the named baselines recorded for a function
  ` + binName + ` baseline list --dir ./target/vgbench --stem bench_fib

  # Promote the current run's artifacts to a named baseline
  ` + binName + ` baseline promote --dir ./target/vgbench --stem bench_fib --name release

  # Reformat a persisted summary.json back to the terminal grid
  ` + binName + ` report ./target/vgbench/summary.json

  # Show trend data for a function from the run-history store
  ` + binName + ` history --module pkg --function bench_fib`
}

// GetLogger returns the configured logger.
func GetLogger() utils.Logger {
	return logger
}

// GetConfig returns the loaded configuration.
func GetConfig() *config.Config {
	return cfg
}

// GetService returns the initialized application service.
func GetService() *service.Service {
	return svc
}

// BinName returns the base name of the current executable.
func BinName() string {
	return filepath.Base(os.Args[0])
}
