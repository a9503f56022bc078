// Package metric implements the typed metric model shared by every Valgrind
// tool parser, the regression engine and the formatter: closed enumerations
// of per-tool metrics, an insertion-ordered metric container, and the diff
// and summary arithmetic used to compare two runs.
package metric

import "fmt"

// Tool identifies a Valgrind tool that can produce metrics.
type Tool string

const (
	ToolCallgrind  Tool = "callgrind"
	ToolCachegrind Tool = "cachegrind"
	ToolDHAT       Tool = "dhat"
	ToolMemcheck   Tool = "memcheck"
	ToolHelgrind   Tool = "helgrind"
	ToolDRD        Tool = "drd"
	ToolMassif     Tool = "massif"
	ToolBBV        Tool = "exp-bbv"
)

// ID returns the valgrind --tool= identifier for t.
func (t Tool) ID() string {
	return string(t)
}

// HasErrorSummary reports whether t emits an "ERROR SUMMARY" log line.
func (t Tool) HasErrorSummary() bool {
	switch t {
	case ToolMemcheck, ToolHelgrind, ToolDRD:
		return true
	default:
		return false
	}
}

// ValueType describes the declared numeric type of a metric.
type ValueType int

const (
	// ValueInt marks a metric whose native representation is an integer
	// counter (u64 in the source system; Go uses uint64 throughout).
	ValueInt ValueType = iota
	// ValueFloat marks a metric that is a ratio/percentage.
	ValueFloat
)

// EventKind enumerates the native and derived Callgrind metrics.
type EventKind int

const (
	// Native cache-simulation counters, in the fixed order Callgrind emits
	// them on the "events:" line.
	Ir EventKind = iota
	Dr
	Dw
	I1mr
	D1mr
	D1mw
	ILmr
	DLmr
	DLmw

	// Optional system-call counters.
	SysCount
	SysTime
	SysCpuTime

	// Optional bus-event counter.
	Ge

	// Optional branch-simulation counters.
	Bc
	Bcm
	Bi
	Bim

	// Optional write-back counters (--simulate-wb=yes): dirty misses,
	// distinct from the DLmr/DLmw cache-sim read/write miss counters.
	ILdmr
	DLdmr
	DLdmw

	// Optional cache-use counters.
	AcCost1
	AcCost2
	SpLoss1
	SpLoss2

	// Derived metrics, computed from native counters. Canonical display order
	// follows this declaration order, independent of source file order.
	L1hits
	LLhits
	RamHits
	TotalRW
	EstimatedCycles

	L1HitRate
	LLHitRate
	RamHitRate

	I1MissRate
	LLiMissRate
	D1MissRate
	LLdMissRate
	LLMissRate
)

var eventKindNames = map[EventKind]string{
	Ir: "Ir", Dr: "Dr", Dw: "Dw",
	I1mr: "I1mr", D1mr: "D1mr", D1mw: "D1mw",
	ILmr: "ILmr", DLmr: "DLmr", DLmw: "DLmw",
	SysCount: "SysCount", SysTime: "SysTime", SysCpuTime: "SysCpuTime",
	Ge:      "Ge",
	Bc:      "Bc", Bcm: "Bcm", Bi: "Bi", Bim: "Bim",
	ILdmr: "ILdmr", DLdmr: "DLdmr", DLdmw: "DLdmw",
	AcCost1: "AcCost1", AcCost2: "AcCost2", SpLoss1: "SpLoss1", SpLoss2: "SpLoss2",
	L1hits: "L1hits", LLhits: "LLhits", RamHits: "RamHits",
	TotalRW: "TotalRW", EstimatedCycles: "EstimatedCycles",
	L1HitRate: "L1HitRate", LLHitRate: "LLHitRate", RamHitRate: "RamHitRate",
	I1MissRate: "I1MissRate", LLiMissRate: "LLiMissRate",
	D1MissRate: "D1MissRate", LLdMissRate: "LLdMissRate", LLMissRate: "LLMissRate",
}

// String implements fmt.Stringer.
func (e EventKind) String() string {
	if s, ok := eventKindNames[e]; ok {
		return s
	}
	return fmt.Sprintf("EventKind(%d)", int(e))
}

// ValueType returns whether e is an integer counter or a derived ratio.
func (e EventKind) ValueType() ValueType {
	switch e {
	case L1HitRate, LLHitRate, RamHitRate,
		I1MissRate, LLiMissRate, D1MissRate, LLdMissRate, LLMissRate:
		return ValueFloat
	default:
		return ValueInt
	}
}

// IsDerived reports whether e is computed from native counters rather than
// read directly off the "events:" line.
func (e EventKind) IsDerived() bool {
	switch e {
	case L1hits, LLhits, RamHits, TotalRW, EstimatedCycles,
		L1HitRate, LLHitRate, RamHitRate,
		I1MissRate, LLiMissRate, D1MissRate, LLdMissRate, LLMissRate:
		return true
	default:
		return false
	}
}

// NativeCacheEvents is the fixed nine-counter order Callgrind and
// Cachegrind declare on their "events:" line.
var NativeCacheEvents = []EventKind{Ir, Dr, Dw, I1mr, D1mr, D1mw, ILmr, DLmr, DLmw}

// CachegrindMetric is Cachegrind's strict subset of Callgrind's native
// cache-simulation events plus its own derived metrics. Cachegrind never
// exposes system-call, bus-event, branch-simulation or cache-use counters.
type CachegrindMetric = EventKind

// DhatMetric enumerates the DHAT heap-summary integers.
type DhatMetric int

const (
	DhatTotalUnits DhatMetric = iota
	DhatTotalEvents
	DhatTotalBytes
	DhatTotalBlocks
	DhatAtTGmaxBytes
	DhatAtTGmaxBlocks
	DhatAtTEndBytes
	DhatAtTEndBlocks
	DhatReadsBytes
	DhatWritesBytes
	DhatTotalLifetimes
	DhatMaximumBytes
	DhatMaximumBlocks
)

var dhatMetricNames = map[DhatMetric]string{
	DhatTotalUnits:      "TotalUnits",
	DhatTotalEvents:      "TotalEvents",
	DhatTotalBytes:       "TotalBytes",
	DhatTotalBlocks:      "TotalBlocks",
	DhatAtTGmaxBytes:     "AtTGmaxBytes",
	DhatAtTGmaxBlocks:    "AtTGmaxBlocks",
	DhatAtTEndBytes:      "AtTEndBytes",
	DhatAtTEndBlocks:     "AtTEndBlocks",
	DhatReadsBytes:       "ReadsBytes",
	DhatWritesBytes:      "WritesBytes",
	DhatTotalLifetimes:   "TotalLifetimes",
	DhatMaximumBytes:     "MaximumBytes",
	DhatMaximumBlocks:    "MaximumBlocks",
}

// String implements fmt.Stringer.
func (d DhatMetric) String() string {
	if s, ok := dhatMetricNames[d]; ok {
		return s
	}
	return fmt.Sprintf("DhatMetric(%d)", int(d))
}

// ValueType returns ValueInt; all DHAT summary fields are integer counts.
func (DhatMetric) ValueType() ValueType { return ValueInt }

// ErrorMetric enumerates the four counters scraped from a Memcheck,
// Helgrind or DRD "ERROR SUMMARY" log line.
type ErrorMetric int

const (
	Errors ErrorMetric = iota
	Contexts
	SuppressedErrors
	SuppressedContexts
)

var errorMetricNames = map[ErrorMetric]string{
	Errors: "Errors", Contexts: "Contexts",
	SuppressedErrors: "SuppressedErrors", SuppressedContexts: "SuppressedContexts",
}

// String implements fmt.Stringer.
func (e ErrorMetric) String() string {
	if s, ok := errorMetricNames[e]; ok {
		return s
	}
	return fmt.Sprintf("ErrorMetric(%d)", int(e))
}

// ValueType returns ValueInt; error counts are always integers.
func (ErrorMetric) ValueType() ValueType { return ValueInt }

// Kind is the tagged union over every metric family a tool can produce.
// Exactly one of the typed fields is meaningful, selected by Variant.
type Kind struct {
	Variant    KindVariant
	Callgrind  EventKind
	Cachegrind CachegrindMetric
	Dhat       DhatMetric
	Error      ErrorMetric
}

// KindVariant tags which member of Kind is active.
type KindVariant int

const (
	KindNone KindVariant = iota
	KindCallgrind
	KindCachegrind
	KindDhat
	KindError
)

// NewCallgrindKind wraps a Callgrind EventKind.
func NewCallgrindKind(e EventKind) Kind { return Kind{Variant: KindCallgrind, Callgrind: e} }

// NewCachegrindKind wraps a Cachegrind metric.
func NewCachegrindKind(m CachegrindMetric) Kind { return Kind{Variant: KindCachegrind, Cachegrind: m} }

// NewDhatKind wraps a DHAT metric.
func NewDhatKind(m DhatMetric) Kind { return Kind{Variant: KindDhat, Dhat: m} }

// NewErrorKind wraps an error-tool metric.
func NewErrorKind(m ErrorMetric) Kind { return Kind{Variant: KindError, Error: m} }

// String renders the active member's name.
func (k Kind) String() string {
	switch k.Variant {
	case KindCallgrind:
		return k.Callgrind.String()
	case KindCachegrind:
		return k.Cachegrind.String()
	case KindDhat:
		return k.Dhat.String()
	case KindError:
		return k.Error.String()
	default:
		return "None"
	}
}

// ValueType dispatches to the active member's declared numeric type.
func (k Kind) ValueType() ValueType {
	switch k.Variant {
	case KindCallgrind:
		return k.Callgrind.ValueType()
	case KindCachegrind:
		return k.Cachegrind.ValueType()
	case KindDhat:
		return k.Dhat.ValueType()
	case KindError:
		return k.Error.ValueType()
	default:
		return ValueInt
	}
}
