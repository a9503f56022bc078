package model

import "github.com/vgbench/runner/pkg/metric"

// ProfileInfo is the per-invocation metadata extracted from a tool
// artifact's header.
type ProfileInfo struct {
	Command   string  `json:"command"`
	Pid       int     `json:"pid"`
	ParentPid *int    `json:"parent_pid,omitempty"`
	Thread    *int    `json:"thread,omitempty"`
	Part      *uint64 `json:"part,omitempty"`
	Details   *string `json:"details,omitempty"`
	Path      string  `json:"path"`
}

// ProfilePart is one segment of a tool run (e.g. one pid/part/thread leaf
// of the grouping hierarchy) together with its metric summary, and
// possibly only present on one side of a comparison.
type ProfilePart struct {
	Details        metric.EitherOrBoth[ProfileInfo] `json:"details"`
	MetricsSummary metric.ToolSummary                `json:"metrics_summary"`
}

// NewProfilePart builds a ProfilePart.
func NewProfilePart(details metric.EitherOrBoth[ProfileInfo], summary metric.ToolSummary) ProfilePart {
	return ProfilePart{Details: details, MetricsSummary: summary}
}

// ProfileTotal is the saturating sum over every ProfilePart's summary plus
// any regressions detected against it.
type ProfileTotal struct {
	Summary     metric.ToolSummary `json:"summary"`
	Regressions []ToolRegression   `json:"regressions"`
}

// ProfileData is the ordered sequence of ProfileParts for one tool run plus
// its total.
type ProfileData struct {
	Parts []ProfilePart `json:"parts"`
	Total ProfileTotal  `json:"total"`
}

// FlamegraphSummary records the paths produced for one EventKind's
// flamegraph. At least one of RegularPath, BasePath or DiffPath is set.
type FlamegraphSummary struct {
	EventKind   metric.EventKind `json:"event_kind"`
	RegularPath *string          `json:"regular_path,omitempty"`
	BasePath    *string          `json:"base_path,omitempty"`
	DiffPath    *string          `json:"diff_path,omitempty"`
}

// Profile is one tool's complete run for one bench: the real artifact
// paths it produced plus its parsed, summarized, and compared metric data.
type Profile struct {
	Tool        metric.Tool         `json:"tool"`
	LogPaths    []string            `json:"log_paths"`
	OutPaths    []string            `json:"out_paths"`
	Flamegraphs []FlamegraphSummary `json:"flamegraphs"`
	Summaries   ProfileData         `json:"summaries"`
}
