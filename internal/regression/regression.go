// Package regression implements the Baseline Comparator & Regression
// Engine: soft (signed percentage) and hard (absolute ceiling) limit
// evaluation against a bench total, plus fail-fast propagation.
package regression

import (
	"github.com/vgbench/runner/pkg/metric"
	"github.com/vgbench/runner/pkg/model"
)

// floatTolerance is the numeric tolerance applied when comparing a float
// metric's value against a hard limit; integer metrics always compare
// exactly.
const floatTolerance = 1e-9

// Limits holds the configured soft and hard limits for one tool, plus its
// fail_fast flag. Soft and Hard are insertion-ordered so Evaluate visits
// them in the order their metrics were configured, not Go's randomized map
// iteration order, keeping the emitted regression list deterministic across
// runs.
type Limits struct {
	// Soft maps a metric to its signed pct_limit: positive forbids growth
	// beyond it, negative forbids shrinkage beyond its magnitude.
	Soft *metric.Metrics[metric.Kind]
	// Hard maps a metric to its absolute ceiling.
	Hard     *metric.Metrics[metric.Kind]
	FailFast bool
}

// NewLimits builds an empty Limits.
func NewLimits(failFast bool) Limits {
	return Limits{Soft: metric.New[metric.Kind](), Hard: metric.New[metric.Kind](), FailFast: failFast}
}

// Evaluate runs soft and hard limit checks against a bench-level total
// summary and returns every breach found, soft limits first, in the order
// their metrics were configured.
func Evaluate(total *metric.Summary[metric.Kind], limits Limits) []model.ToolRegression {
	var regressions []model.ToolRegression

	for _, k := range limits.Soft.Keys() {
		pctVal, _ := limits.Soft.Get(k)
		pctLimit := pctVal.AsFloat()

		d, ok := total.Get(k)
		if !ok || d.Diffs == nil {
			continue
		}
		diffPct := d.Diffs.DiffPct
		breached := false
		if pctLimit >= 0 {
			breached = diffPct > pctLimit
		} else {
			breached = diffPct < pctLimit
		}
		if !breached {
			continue
		}
		newVal, _ := d.New()
		oldVal, _ := d.Old()
		regressions = append(regressions, model.NewSoftRegression(k, newVal, oldVal, diffPct, pctLimit))
	}

	for _, k := range limits.Hard.Keys() {
		limitVal, _ := limits.Hard.Get(k)
		limit := limitVal.AsFloat()

		d, ok := total.Get(k)
		if !ok {
			continue
		}
		newVal, ok := d.New()
		if !ok {
			continue
		}
		if !hardBreached(k, newVal, limit) {
			continue
		}
		diff := newVal.AsFloat() - limit
		regressions = append(regressions, model.NewHardRegression(k, newVal, diff, limit))
	}

	return regressions
}

func hardBreached(k metric.Kind, newVal metric.Value, limit float64) bool {
	if k.ValueType() == metric.ValueInt {
		return newVal.Int > uint64(limit)
	}
	return newVal.Float > limit+floatTolerance
}

// FailFastTriggered reports whether limits.FailFast is set and at least
// one regression was recorded, meaning the runner may stop after this
// bench rather than continuing to the next.
func FailFastTriggered(limits Limits, regressions []model.ToolRegression) bool {
	return limits.FailFast && len(regressions) > 0
}
