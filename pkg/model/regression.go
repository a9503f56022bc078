package model

import (
	"encoding/json"

	"github.com/vgbench/runner/pkg/metric"
)

// ToolRegressionVariant tags which member of ToolRegression is active.
type ToolRegressionVariant int

const (
	// RegressionSoft is a signed percentage-change breach.
	RegressionSoft ToolRegressionVariant = iota
	// RegressionHard is an absolute-value breach.
	RegressionHard
)

// ToolRegression records a single configured limit breach on a bench
// total. Soft limits compare signed percentage change; a positive
// limit_pct forbids growth beyond it, a negative one forbids shrinkage
// beyond its magnitude. Hard limits compare the new value's magnitude
// directly against a configured ceiling.
type ToolRegression struct {
	Variant ToolRegressionVariant
	Metric  metric.Kind

	// Soft fields.
	New      metric.Value
	Old      metric.Value
	DiffPct  float64
	LimitPct float64

	// Hard fields.
	HardNew metric.Value
	Diff    float64
	Limit   float64
}

// NewSoftRegression builds a Soft regression record.
func NewSoftRegression(k metric.Kind, newVal, oldVal metric.Value, diffPct, limitPct float64) ToolRegression {
	return ToolRegression{
		Variant:  RegressionSoft,
		Metric:   k,
		New:      newVal,
		Old:      oldVal,
		DiffPct:  diffPct,
		LimitPct: limitPct,
	}
}

// NewHardRegression builds a Hard regression record. diff is new-limit in
// the metric's declared numeric domain (computed by the caller so that
// integer metrics compare exactly and float metrics apply their
// tolerance).
func NewHardRegression(k metric.Kind, newVal metric.Value, diff, limit float64) ToolRegression {
	return ToolRegression{
		Variant: RegressionHard,
		Metric:  k,
		HardNew: newVal,
		Diff:    diff,
		Limit:   limit,
	}
}

// IsSoft reports whether r is a Soft regression.
func (r ToolRegression) IsSoft() bool { return r.Variant == RegressionSoft }

type toolRegressionJSON struct {
	Kind     string       `json:"kind"`
	Metric   string       `json:"metric"`
	New      *metric.Value `json:"new,omitempty"`
	Old      *metric.Value `json:"old,omitempty"`
	DiffPct  *string      `json:"diff_pct,omitempty"`
	LimitPct *string      `json:"limit_pct,omitempty"`
	Diff     *string      `json:"diff,omitempty"`
	Limit    *string      `json:"limit,omitempty"`
}

// MarshalJSON renders the variant's fields, encoding any float that may be
// infinite (diff_pct, limit_pct, diff, limit) as a string.
func (r ToolRegression) MarshalJSON() ([]byte, error) {
	out := toolRegressionJSON{Metric: r.Metric.String()}
	switch r.Variant {
	case RegressionSoft:
		out.Kind = "soft"
		out.New = &r.New
		out.Old = &r.Old
		pct := metric.FormatFloatJSON(r.DiffPct)
		limit := metric.FormatFloatJSON(r.LimitPct)
		out.DiffPct = &pct
		out.LimitPct = &limit
	case RegressionHard:
		out.Kind = "hard"
		out.New = &r.HardNew
		diff := metric.FormatFloatJSON(r.Diff)
		limit := metric.FormatFloatJSON(r.Limit)
		out.Diff = &diff
		out.Limit = &limit
	}
	return json.Marshal(out)
}
