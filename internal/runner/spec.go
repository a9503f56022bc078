// Package runner implements the top-level driver: decoding the benchmark
// spec tree, iterating groups and benches, and running each bench's
// per-tool state machine to completion.
package runner

import (
	"encoding/json"
	"io"

	apperr "github.com/vgbench/runner/pkg/errors"
	"github.com/vgbench/runner/pkg/metric"
)

// ValgrindTool names one of the Valgrind tools a bench can be run under.
type ValgrindTool string

const (
	ToolCallgrind  ValgrindTool = "Callgrind"
	ToolCachegrind ValgrindTool = "Cachegrind"
	ToolDHAT       ValgrindTool = "DHAT"
	ToolMemcheck   ValgrindTool = "Memcheck"
	ToolHelgrind   ValgrindTool = "Helgrind"
	ToolDRD        ValgrindTool = "DRD"
	ToolMassif     ValgrindTool = "Massif"
	ToolBBV        ValgrindTool = "BBV"
)

// AsMetricTool maps the wire tool name onto the internal tool identifier
// used throughout pkg/metric and internal/outputpath.
func (t ValgrindTool) AsMetricTool() metric.Tool {
	switch t {
	case ToolCallgrind:
		return metric.ToolCallgrind
	case ToolCachegrind:
		return metric.ToolCachegrind
	case ToolDHAT:
		return metric.ToolDHAT
	case ToolMemcheck:
		return metric.ToolMemcheck
	case ToolHelgrind:
		return metric.ToolHelgrind
	case ToolDRD:
		return metric.ToolDRD
	case ToolMassif:
		return metric.ToolMassif
	case ToolBBV:
		return metric.ToolBBV
	default:
		return metric.ToolCallgrind
	}
}

// EnvVar is one entry of a benchmark's environment configuration; a nil
// Value passes the variable through from the runner's own environment
// rather than setting it explicitly.
type EnvVar struct {
	Name  string  `json:"name"`
	Value *string `json:"value,omitempty"`
}

// EntryPointKind tags which member of EntryPoint is active.
type EntryPointKind string

const (
	EntryPointKindNone    EntryPointKind = "None"
	EntryPointKindDefault EntryPointKind = "Default"
	EntryPointKindCustom  EntryPointKind = "Custom"
)

// EntryPoint configures the Callgrind/DHAT toggle-collect gate.
type EntryPoint struct {
	Kind    EntryPointKind `json:"kind"`
	Pattern string         `json:"pattern,omitempty"`
}

// DirectionKind selects flamegraph growth direction.
type DirectionKind string

const (
	DirectionTopToBottom DirectionKind = "TopToBottom"
	DirectionBottomToTop DirectionKind = "BottomToTop"
)

// FlamegraphKind selects which flamegraph SVGs are produced.
type FlamegraphKind string

const (
	FlamegraphRegular      FlamegraphKind = "Regular"
	FlamegraphDifferential FlamegraphKind = "Differential"
	FlamegraphAll          FlamegraphKind = "All"
	FlamegraphNone         FlamegraphKind = "None"
)

// FlamegraphConfig is the wire form of a tool's flamegraph configuration.
type FlamegraphConfig struct {
	Direction             *DirectionKind      `json:"direction,omitempty"`
	EventKinds            []string            `json:"event_kinds,omitempty"`
	Kind                  *FlamegraphKind     `json:"kind,omitempty"`
	MinWidth              *float64            `json:"min_width,omitempty"`
	NegateDifferential    *bool               `json:"negate_differential,omitempty"`
	NormalizeDifferential *bool               `json:"normalize_differential,omitempty"`
	Subtitle              *string             `json:"subtitle,omitempty"`
	Title                 *string             `json:"title,omitempty"`
}

// LimitValue is a regression limit whose numeric domain (integer or
// float) is fixed by the metric it applies to.
type LimitValue struct {
	Int   *uint64  `json:"int,omitempty"`
	Float *float64 `json:"float,omitempty"`
}

// AsFloat returns the limit's value in float64, regardless of which
// member is set.
func (l LimitValue) AsFloat() float64 {
	if l.Int != nil {
		return float64(*l.Int)
	}
	if l.Float != nil {
		return *l.Float
	}
	return 0
}

// SoftLimitEntry is one (metric, pct_limit) pair. The wire form is the
// two-element JSON array produced by serializing a Rust `(Metric, f64)`
// tuple, not an object, so order survives decoding without a side channel.
type SoftLimitEntry struct {
	Metric string
	Limit  float64
}

// UnmarshalJSON decodes a `[metric, limit]` tuple.
func (e *SoftLimitEntry) UnmarshalJSON(data []byte) error {
	var tuple [2]json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return apperr.Wrap(apperr.CodeSpecDecodeError, "invalid soft_limits entry", err)
	}
	if err := json.Unmarshal(tuple[0], &e.Metric); err != nil {
		return apperr.Wrap(apperr.CodeSpecDecodeError, "invalid soft_limits metric name", err)
	}
	return json.Unmarshal(tuple[1], &e.Limit)
}

// MarshalJSON encodes the pair back into a `[metric, limit]` tuple.
func (e SoftLimitEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{e.Metric, e.Limit})
}

// HardLimitEntry is one (metric, absolute_limit) pair, wire-compatible with
// a Rust `(Metric, Limit)` tuple for the same reason as SoftLimitEntry.
type HardLimitEntry struct {
	Metric string
	Limit  LimitValue
}

// UnmarshalJSON decodes a `[metric, limit]` tuple.
func (e *HardLimitEntry) UnmarshalJSON(data []byte) error {
	var tuple [2]json.RawMessage
	if err := json.Unmarshal(data, &tuple); err != nil {
		return apperr.Wrap(apperr.CodeSpecDecodeError, "invalid hard_limits entry", err)
	}
	if err := json.Unmarshal(tuple[0], &e.Metric); err != nil {
		return apperr.Wrap(apperr.CodeSpecDecodeError, "invalid hard_limits metric name", err)
	}
	return json.Unmarshal(tuple[1], &e.Limit)
}

// MarshalJSON encodes the pair back into a `[metric, limit]` tuple.
func (e HardLimitEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]interface{}{e.Metric, e.Limit})
}

// RegressionConfig is the wire form of one tool's regression check
// configuration. HardLimits/SoftLimits are ordered slices, mirroring the
// source system's `Vec<(Metric, Limit)>`, so the configured order survives
// decoding and drives the order regressions are reported in.
type RegressionConfig struct {
	FailFast   *bool            `json:"fail_fast,omitempty"`
	HardLimits []HardLimitEntry `json:"hard_limits,omitempty"`
	SoftLimits []SoftLimitEntry `json:"soft_limits,omitempty"`
}

// ToolConfig is one `Tool` entry: a non-default valgrind tool enabled for
// a bench, with its own entry point, raw args, flamegraph and regression
// configuration.
type ToolConfig struct {
	Enable           *bool             `json:"enable,omitempty"`
	EntryPoint       *EntryPoint       `json:"entry_point,omitempty"`
	FlamegraphConfig *FlamegraphConfig `json:"flamegraph_config,omitempty"`
	Kind             ValgrindTool      `json:"kind"`
	RawArgs          []string          `json:"raw_args,omitempty"`
	RegressionConfig *RegressionConfig `json:"regression_config,omitempty"`
	ShowLog          *bool             `json:"show_log,omitempty"`
}

// ExitWithKind tags which member of ExitWith is active.
type ExitWithKind string

const (
	ExitWithSuccess ExitWithKind = "Success"
	ExitWithFailure ExitWithKind = "Failure"
	ExitWithCode    ExitWithKind = "Code"
)

// ExitWith is the wire form of the expected exit status.
type ExitWith struct {
	Kind ExitWithKind `json:"kind"`
	Code int          `json:"code,omitempty"`
}

// DelayKind tags which readiness predicate a Delay configures.
type DelayKind string

const (
	DelayDuration   DelayKind = "DurationElapse"
	DelayTCPConnect DelayKind = "TcpConnect"
	DelayUDP        DelayKind = "UdpResponse"
	DelayPathExists DelayKind = "PathExists"
)

// Delay is the wire form of a command's readiness-delay configuration.
type Delay struct {
	Kind       DelayKind `json:"kind"`
	DurationMS int64     `json:"duration_ms,omitempty"`
	Addr       string    `json:"addr,omitempty"`
	Payload    []byte    `json:"payload,omitempty"`
	Path       string    `json:"path,omitempty"`
	PollMS     int64     `json:"poll_ms,omitempty"`
	TimeoutMS  int64     `json:"timeout_ms,omitempty"`
}

// StdioKind tags which member of Stdio is active.
type StdioKind string

const (
	StdioInherit StdioKind = "Inherit"
	StdioNull    StdioKind = "Null"
	StdioFile    StdioKind = "File"
	StdioPipe    StdioKind = "Pipe"
)

// Stdio is the wire form of one stdout/stderr stream configuration.
type Stdio struct {
	Kind StdioKind `json:"kind"`
	Path string    `json:"path,omitempty"`
}

// PipeKind selects which stream of a setup child feeds a Stdin of kind
// Setup.
type PipeKind string

const (
	PipeStdout PipeKind = "Stdout"
	PipeStderr PipeKind = "Stderr"
)

// StdinKind tags which member of Stdin is active.
type StdinKind string

const (
	StdinSetup   StdinKind = "Setup"
	StdinInherit StdinKind = "Inherit"
	StdinNull    StdinKind = "Null"
	StdinFile    StdinKind = "File"
	StdinPipe    StdinKind = "Pipe"
)

// Stdin is the wire form of a command's stdin configuration.
type Stdin struct {
	Kind StdinKind `json:"kind"`
	Pipe PipeKind  `json:"pipe,omitempty"`
	Path string    `json:"path,omitempty"`
}

// Sandbox is the wire form of a bench's sandbox configuration.
type Sandbox struct {
	Enabled        *bool    `json:"enabled,omitempty"`
	Fixtures       []string `json:"fixtures,omitempty"`
	FollowSymlinks *bool    `json:"follow_symlinks,omitempty"`
}

// OutputFormat is the wire form of a bench's terminal output
// configuration.
type OutputFormat struct {
	ShowGrid            *bool    `json:"show_grid,omitempty"`
	ShowIntermediate    *bool    `json:"show_intermediate,omitempty"`
	Tolerance           *float64 `json:"tolerance,omitempty"`
	TruncateDescription **int    `json:"truncate_description,omitempty"`
}

// Config is the wire form of the configuration that applies at any
// level of the group/bench hierarchy (main, group, bench); levels are
// merged most-specific-wins by mergeConfig.
type Config struct {
	DefaultTool    *ValgrindTool `json:"default_tool,omitempty"`
	EnvClear       *bool         `json:"env_clear,omitempty"`
	Envs           []EnvVar      `json:"envs,omitempty"`
	OutputFormat   *OutputFormat `json:"output_format,omitempty"`
	Tools          []ToolConfig  `json:"tools,omitempty"`
	ToolsOverride  []ToolConfig  `json:"tools_override,omitempty"`
	ValgrindArgs   []string      `json:"valgrind_args,omitempty"`

	// Binary-bench-only fields.
	CurrentDir    *string   `json:"current_dir,omitempty"`
	ExitWith      *ExitWith `json:"exit_with,omitempty"`
	Sandbox       *Sandbox  `json:"sandbox,omitempty"`
	SetupParallel *bool     `json:"setup_parallel,omitempty"`
}

// LibraryBenchmarkBench is one `#[bench]`/`#[benches]` case of a
// `#[library_benchmark]` function.
type LibraryBenchmarkBench struct {
	Args         *string `json:"args,omitempty"`
	Config       *Config `json:"config,omitempty"`
	FunctionName string  `json:"function_name"`
	ID           *string `json:"id,omitempty"`
}

// LibraryBenchmark is the extracted benches of one annotated function.
type LibraryBenchmark struct {
	Benches []LibraryBenchmarkBench `json:"benches"`
	Config  *Config                 `json:"config,omitempty"`
}

// LibraryBenchmarkGroup is one `library_benchmark_group!` invocation.
type LibraryBenchmarkGroup struct {
	CompareByID        *bool              `json:"compare_by_id,omitempty"`
	Config             *Config            `json:"config,omitempty"`
	HasSetup           bool               `json:"has_setup"`
	HasTeardown        bool               `json:"has_teardown"`
	ID                 string             `json:"id"`
	LibraryBenchmarks  []LibraryBenchmark `json:"library_benchmarks"`
}

// LibraryBenchmarkGroups is the top-level payload for a `#[library_benchmark]`
// harness, decoded from the stdin spec payload.
type LibraryBenchmarkGroups struct {
	CommandLineArgs []string                `json:"command_line_args"`
	Config          Config                  `json:"config"`
	DefaultTool     ValgrindTool            `json:"default_tool"`
	Groups          []LibraryBenchmarkGroup `json:"groups"`
	HasSetup        bool                    `json:"has_setup"`
	HasTeardown     bool                    `json:"has_teardown"`
}

// Command is one executable invocation of a binary benchmark.
type Command struct {
	Args   []string `json:"args,omitempty"`
	Config Config   `json:"config"`
	Delay  *Delay   `json:"delay,omitempty"`
	Path   string   `json:"path"`
	Stderr *Stdio   `json:"stderr,omitempty"`
	Stdin  *Stdin   `json:"stdin,omitempty"`
	Stdout *Stdio   `json:"stdout,omitempty"`
}

// BinaryBenchmarkBench is one `#[bench]` case of a `#[binary_benchmark]`
// function.
type BinaryBenchmarkBench struct {
	Args         *string  `json:"args,omitempty"`
	Command      Command  `json:"command"`
	Config       *Config  `json:"config,omitempty"`
	FunctionName string   `json:"function_name"`
	HasSetup     bool     `json:"has_setup"`
	HasTeardown  bool     `json:"has_teardown"`
	ID           *string  `json:"id,omitempty"`
}

// BinaryBenchmark is the extracted benches of one annotated function.
type BinaryBenchmark struct {
	Benches []BinaryBenchmarkBench `json:"benches"`
	Config  *Config                `json:"config,omitempty"`
}

// BinaryBenchmarkGroup is one `binary_benchmark_group!` invocation.
type BinaryBenchmarkGroup struct {
	BinaryBenchmarks []BinaryBenchmark `json:"binary_benchmarks"`
	CompareByID      *bool             `json:"compare_by_id,omitempty"`
	Config           *Config           `json:"config,omitempty"`
	HasSetup         bool              `json:"has_setup"`
	HasTeardown      bool              `json:"has_teardown"`
	ID               string            `json:"id"`
}

// BinaryBenchmarkGroups is the top-level payload for a
// `#[binary_benchmark]` harness.
type BinaryBenchmarkGroups struct {
	CommandLineArgs []string               `json:"command_line_args"`
	Config          Config                 `json:"config"`
	Groups          []BinaryBenchmarkGroup `json:"groups"`
	HasSetup        bool                   `json:"has_setup"`
	HasTeardown     bool                   `json:"has_teardown"`
}

// DecodeLibraryGroups decodes a library-benchmark spec payload. The wire
// encoding is JSON: the macro-generated side of this protocol is an
// external collaborator (see the module's non-goals), so the exact byte
// format it uses internally isn't reproduced here; any encoder that can
// produce this JSON shape can drive the runner.
func DecodeLibraryGroups(r io.Reader) (*LibraryBenchmarkGroups, error) {
	var groups LibraryBenchmarkGroups
	if err := json.NewDecoder(r).Decode(&groups); err != nil {
		return nil, apperr.Wrap(apperr.CodeSpecDecodeError, "failed to decode library benchmark spec payload", err)
	}
	return &groups, nil
}

// DecodeBinaryGroups decodes a binary-benchmark spec payload.
func DecodeBinaryGroups(r io.Reader) (*BinaryBenchmarkGroups, error) {
	var groups BinaryBenchmarkGroups
	if err := json.NewDecoder(r).Decode(&groups); err != nil {
		return nil, apperr.Wrap(apperr.CodeSpecDecodeError, "failed to decode binary benchmark spec payload", err)
	}
	return &groups, nil
}

// ReadPayload reads exactly payloadBytes bytes from r, the framing used
// by both spec payloads on the runner's stdin.
func ReadPayload(r io.Reader, payloadBytes int) ([]byte, error) {
	buf := make([]byte, payloadBytes)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, apperr.Wrap(apperr.CodeSpecDecodeError, "failed to read spec payload from stdin", err)
	}
	return buf, nil
}
