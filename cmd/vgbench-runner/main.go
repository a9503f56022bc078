// Command vgbench-runner is the out-of-process Valgrind benchmark runner
// invoked by a compiled benchmark binary via the `run` subcommand, plus a
// handful of maintenance commands (baseline, report, history) layered on
// the same configuration and run-history store.
package main

import (
	"github.com/vgbench/runner/cmd/vgbench-runner/cmd"
)

func main() {
	cmd.Execute()
}
