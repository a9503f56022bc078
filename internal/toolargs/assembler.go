// Package toolargs assembles the ordered argument vector passed to a
// Valgrind tool invocation from defaults, benchmark-declared arguments,
// global config, and CLI overrides.
package toolargs

import (
	"fmt"
	"strings"

	"github.com/vgbench/runner/pkg/metric"
	"github.com/vgbench/runner/pkg/utils"
)

// EntryPointVariant tags which member of EntryPoint is active.
type EntryPointVariant int

const (
	// EntryPointNone disables the toggle-collect gate; counting spans the
	// entire process.
	EntryPointNone EntryPointVariant = iota
	// EntryPointDefault gates counting to the macro-provided sentinel.
	EntryPointDefault
	// EntryPointCustom gates counting to a user-supplied glob pattern.
	EntryPointCustom
)

// EntryPoint configures the Callgrind/DHAT toggle-collect gate.
type EntryPoint struct {
	Variant EntryPointVariant
	Pattern string // only meaningful when Variant == EntryPointCustom
}

// forbiddenFlags cannot be overridden by user-supplied tool arguments
// because doing so would break output parsing.
var forbiddenFlags = map[string]bool{
	"--callgrind-out-file": true,
	"--cachegrind-out-file": true,
	"--log-file":            true,
	"--separate-threads":    true,
	"--cache-sim":           true,
}

// Assembler builds the ordered argument vector for one tool invocation.
type Assembler struct {
	Tool           metric.Tool
	Defaults       []string
	BenchArgs      []string
	GlobalArgs     []string
	CLIOverrides   []string
	OutputFilePath string
	EntryPoint     EntryPoint
	Sentinel       string // macro-provided default toggle-collect pattern
	Logger         utils.Logger
}

// Assemble merges every argument source in order:
//
//	tool_defaults ++ raw_tool_args_from_benchmark ++ global_valgrind_args
//	  ++ tool-specific_cli_overrides ++ output_file_flag ++ entry_point_toggle?
func (a *Assembler) Assemble() []string {
	var out []string
	out = append(out, a.Defaults...)
	out = append(out, a.normalize(a.BenchArgs)...)
	out = append(out, a.normalize(a.GlobalArgs)...)
	out = append(out, a.normalize(a.CLIOverrides)...)

	if a.OutputFilePath != "" {
		out = append(out, a.outputFileFlag())
	}

	if toggle := a.entryPointFlag(); toggle != "" {
		out = append(out, toggle)
	}

	return out
}

func (a *Assembler) outputFileFlag() string {
	switch a.Tool {
	case metric.ToolCallgrind:
		return "--callgrind-out-file=" + a.OutputFilePath
	case metric.ToolCachegrind:
		return "--cachegrind-out-file=" + a.OutputFilePath
	default:
		return "--log-file=" + a.OutputFilePath
	}
}

func (a *Assembler) entryPointFlag() string {
	if a.Tool != metric.ToolCallgrind && a.Tool != metric.ToolDHAT {
		return ""
	}
	switch a.EntryPoint.Variant {
	case EntryPointDefault:
		return "--toggle-collect=" + a.Sentinel
	case EntryPointCustom:
		return "--toggle-collect=" + a.EntryPoint.Pattern
	default:
		return ""
	}
}

// normalize applies the `--` prefix rule, drops empty strings, and warns
// on (then drops) forbidden flags.
func (a *Assembler) normalize(args []string) []string {
	out := make([]string, 0, len(args))
	for _, raw := range args {
		s := strings.TrimSpace(raw)
		if s == "" {
			continue
		}
		if !strings.HasPrefix(s, "-") {
			s = "--" + s
		}
		flag := s
		if idx := strings.Index(flag, "="); idx >= 0 {
			flag = flag[:idx]
		}
		if forbiddenFlags[flag] {
			if a.Logger != nil {
				a.Logger.Warn("ignoring forbidden override %q for tool %s", s, a.Tool.ID())
			}
			continue
		}
		out = append(out, s)
	}
	return out
}

// SynthesizeDHATWildcards builds the wildcard toggle-collect frame
// patterns used to work around compiler inlining defeating the default
// heuristic: one pattern per suffix of the benchmark's module path, each
// wrapped in a leading/trailing glob.
func SynthesizeDHATWildcards(modulePath string) []string {
	parts := strings.Split(modulePath, "::")
	patterns := make([]string, 0, len(parts))
	for i := range parts {
		suffix := strings.Join(parts[i:], "::")
		patterns = append(patterns, fmt.Sprintf("*%s*", suffix))
	}
	return patterns
}
