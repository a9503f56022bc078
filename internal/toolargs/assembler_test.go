package toolargs

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vgbench/runner/pkg/metric"
)

func TestAssemble_OrderAndOutputFlag(t *testing.T) {
	a := &Assembler{
		Tool:           metric.ToolCallgrind,
		Defaults:       []string{"--cache-sim=yes"},
		BenchArgs:      []string{"branch-sim=yes"},
		GlobalArgs:     []string{"--num-callers=30"},
		OutputFilePath: "/tmp/x/callgrind.bench.out",
	}
	got := a.Assemble()
	assert.Equal(t, []string{
		"--cache-sim=yes",
		"--branch-sim=yes",
		"--num-callers=30",
		"--callgrind-out-file=/tmp/x/callgrind.bench.out",
	}, got)
}

func TestAssemble_DropsEmptyArgs(t *testing.T) {
	a := &Assembler{Tool: metric.ToolMemcheck, BenchArgs: []string{"", "  ", "leak-check=full"}}
	assert.Equal(t, []string{"--leak-check=full"}, a.Assemble())
}

func TestAssemble_DropsForbiddenOverride(t *testing.T) {
	a := &Assembler{Tool: metric.ToolCallgrind, CLIOverrides: []string{"--separate-threads=yes", "num-callers=5"}}
	assert.Equal(t, []string{"--num-callers=5"}, a.Assemble())
}

func TestEntryPointFlag_DefaultUsesSentinel(t *testing.T) {
	a := &Assembler{Tool: metric.ToolCallgrind, Sentinel: "fib::bench_fib", EntryPoint: EntryPoint{Variant: EntryPointDefault}}
	assert.Equal(t, "--toggle-collect=fib::bench_fib", a.entryPointFlag())
}

func TestEntryPointFlag_CustomPattern(t *testing.T) {
	a := &Assembler{Tool: metric.ToolDHAT, EntryPoint: EntryPoint{Variant: EntryPointCustom, Pattern: "fib::*"}}
	assert.Equal(t, "--toggle-collect=fib::*", a.entryPointFlag())
}

func TestEntryPointFlag_NoneAndNonCallgrindTool(t *testing.T) {
	a := &Assembler{Tool: metric.ToolMemcheck, EntryPoint: EntryPoint{Variant: EntryPointDefault}}
	assert.Equal(t, "", a.entryPointFlag())

	a = &Assembler{Tool: metric.ToolCallgrind, Sentinel: "fib::bench_fib", EntryPoint: EntryPoint{Variant: EntryPointNone}}
	assert.Equal(t, "", a.entryPointFlag())
}

func TestSynthesizeDHATWildcards(t *testing.T) {
	got := SynthesizeDHATWildcards("fib::bench_fib")
	assert.Equal(t, []string{"*fib::bench_fib*", "*bench_fib*"}, got)
}
