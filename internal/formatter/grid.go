// Package formatter renders a BenchmarkSummary to the fixed-width
// vertical terminal grid, and writes the JSON summary form.
package formatter

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/vgbench/runner/pkg/metric"
	"github.com/vgbench/runner/pkg/model"
)

const (
	fieldWidth = 21
	metricWidth = 20
	diffWidth   = 9
)

// Tolerance is the absolute diff_pct at or below which a change is reported as
// "Tolerance" rather than rendered numerically.
const Tolerance = 0.0

// Options configures one rendering pass.
type Options struct {
	Grid bool
	// DescriptionBytes truncates a bench's Details to this many bytes,
	// rune-boundary safe, appending "...". Zero disables truncation.
	DescriptionBytes int
	// ToleranceOverride, when non-nil, replaces the package default
	// Tolerance for this render.
	ToleranceOverride *float64
}

// DefaultOptions returns grid rendering with a default 50-byte
// description truncation and no tolerance.
func DefaultOptions() Options {
	return Options{Grid: true, DescriptionBytes: 50}
}

func (o Options) tolerance() float64 {
	if o.ToleranceOverride != nil {
		return *o.ToleranceOverride
	}
	return Tolerance
}

// WriteSummary renders one BenchmarkSummary's every tool/profile to w.
func WriteSummary(w io.Writer, summary *model.BenchmarkSummary, opts Options) error {
	header := fmt.Sprintf("%s %s", summary.ModulePath, summary.FunctionName)
	if summary.ID != nil {
		header = fmt.Sprintf("%s (%s)", header, *summary.ID)
	}
	if _, err := fmt.Fprintln(w, linePrefix(opts.Grid)+header); err != nil {
		return err
	}
	if summary.Details != nil {
		desc := truncateDescription(*summary.Details, opts.DescriptionBytes)
		if _, err := fmt.Fprintln(w, linePrefix(opts.Grid)+desc); err != nil {
			return err
		}
	}

	for _, profile := range summary.Profiles {
		if err := writeProfile(w, profile, opts); err != nil {
			return err
		}
	}
	return nil
}

func writeProfile(w io.Writer, profile model.Profile, opts Options) error {
	headline := fmt.Sprintf("%s", strings.ToUpper(string(profile.Tool)))
	if opts.Grid {
		if _, err := fmt.Fprintf(w, "|=%s\n", headline); err != nil {
			return err
		}
	} else {
		if _, err := fmt.Fprintf(w, "== %s ==\n", headline); err != nil {
			return err
		}
	}

	for _, part := range profile.Summaries.Parts {
		if err := writePart(w, part, opts); err != nil {
			return err
		}
	}
	return writeTotal(w, profile.Summaries.Total, opts)
}

func writePart(w io.Writer, part model.ProfilePart, opts Options) error {
	prefix := linePrefix(opts.Grid)
	part.MetricsSummary.Summary.Each(func(k metric.Kind, d metric.MetricsDiff) {
		fmt.Fprintln(w, prefix+renderLine(k, d, opts))
	})
	return nil
}

func writeTotal(w io.Writer, total model.ProfileTotal, opts Options) error {
	if opts.Grid {
		fmt.Fprintln(w, "|-Total")
	} else {
		fmt.Fprintln(w, "-- Total --")
	}
	prefix := linePrefix(opts.Grid)
	total.Summary.Summary.Each(func(k metric.Kind, d metric.MetricsDiff) {
		fmt.Fprintln(w, prefix+renderLine(k, d, opts))
	})
	for _, reg := range total.Regressions {
		fmt.Fprintln(w, prefix+renderRegression(reg))
	}
	return nil
}

func linePrefix(grid bool) string {
	if grid {
		return "| "
	}
	return "  "
}

// renderLine formats one metric's FIELD/NEW/OLD/DIFF_PCT/FACTOR line per
// the special token rules below.
func renderLine(k metric.Kind, d metric.MetricsDiff, opts Options) string {
	field := padRight(k.String(), fieldWidth)

	newVal, hasNew := d.New()
	oldVal, hasOld := d.Old()

	if !hasNew || !hasOld {
		newStr := "N/A"
		if hasNew {
			newStr = formatValue(newVal)
		}
		return fmt.Sprintf("%s%s|%s (%s)", field, padLeft(newStr, metricWidth), padLeft("N/A", metricWidth), padLeft("*********", diffWidth))
	}

	newStr := formatValue(newVal)
	oldStr := formatValue(oldVal)

	if d.Diffs == nil {
		return fmt.Sprintf("%s%s|%s", field, padLeft(newStr, metricWidth), padLeft(oldStr, metricWidth))
	}

	diffPct := d.Diffs.DiffPct

	if math.IsInf(diffPct, 1) {
		return fmt.Sprintf("%s%s|%s (%s)", field, padLeft(newStr, metricWidth), padLeft(oldStr, metricWidth), padLeft("+++inf+++", diffWidth))
	}
	if math.IsInf(diffPct, -1) {
		return fmt.Sprintf("%s%s|%s (%s)", field, padLeft(newStr, metricWidth), padLeft(oldStr, metricWidth), padLeft("---inf---", diffWidth))
	}
	if diffPct == 0 {
		return fmt.Sprintf("%s%s|%s (%s)", field, padLeft(newStr, metricWidth), padLeft(oldStr, metricWidth), padLeft("No change", diffWidth))
	}
	if math.Abs(diffPct) <= opts.tolerance() {
		return fmt.Sprintf("%s%s|%s (%s)", field, padLeft(newStr, metricWidth), padLeft(oldStr, metricWidth), padLeft("Tolerance", diffWidth))
	}

	pctStr := fmt.Sprintf("%+.4f%%", diffPct)
	factorStr := fmt.Sprintf("[%.2fx]", d.Diffs.Factor)
	return fmt.Sprintf("%s%s|%s (%s) %s", field, padLeft(newStr, metricWidth), padLeft(oldStr, metricWidth), padLeft(pctStr, diffWidth), factorStr)
}

func renderRegression(r model.ToolRegression) string {
	if r.IsSoft() {
		return fmt.Sprintf("%s regressed: %+.4f%% exceeds limit %+.4f%%", r.Metric.String(), r.DiffPct, r.LimitPct)
	}
	return fmt.Sprintf("%s regressed: %.4f exceeds hard limit %.4f", r.Metric.String(), r.HardNew.AsFloat(), r.Limit)
}

func formatValue(v metric.Value) string {
	if v.IsInt {
		return fmt.Sprintf("%d", v.Int)
	}
	return fmt.Sprintf("%.4f", v.Float)
}

func padLeft(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return strings.Repeat(" ", width-len(s)) + s
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// truncateDescription truncates s to at most maxBytes bytes, respecting
// UTF-8 rune boundaries, appending "..." when truncated. maxBytes <= 0
// disables truncation.
func truncateDescription(s string, maxBytes int) string {
	if maxBytes <= 0 || len(s) <= maxBytes {
		return s
	}
	cut := maxBytes
	for cut > 0 && !isRuneBoundary(s, cut) {
		cut--
	}
	return s[:cut] + "..."
}

func isRuneBoundary(s string, i int) bool {
	if i == 0 || i >= len(s) {
		return true
	}
	return s[i]&0xC0 != 0x80
}
