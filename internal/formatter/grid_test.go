package formatter

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vgbench/runner/pkg/metric"
	"github.com/vgbench/runner/pkg/model"
)

func summaryOf(k metric.Kind, d metric.MetricsDiff) *metric.Summary[metric.Kind] {
	s := metric.NewSummary[metric.Kind]()
	s.Set(k, d)
	return s
}

func TestRenderLine_NoChange(t *testing.T) {
	d := metric.NewDiff(metric.IntValue(1000), metric.IntValue(1000))
	line := renderLine(metric.NewCallgrindKind(metric.Ir), d, DefaultOptions())
	assert.Contains(t, line, "No change")
}

func TestRenderLine_OneSidedShowsNA(t *testing.T) {
	d := metric.NewOneSidedDiff(metric.Left(metric.IntValue(500)))
	line := renderLine(metric.NewCallgrindKind(metric.Ir), d, DefaultOptions())
	assert.Contains(t, line, "N/A")
	assert.Contains(t, line, "*********")
}

func TestRenderLine_InfiniteDiffPositive(t *testing.T) {
	d := metric.NewDiff(metric.IntValue(100), metric.IntValue(0))
	line := renderLine(metric.NewCallgrindKind(metric.Ir), d, DefaultOptions())
	assert.Contains(t, line, "+++inf+++")
}

func TestRenderLine_InfiniteDiffNegative(t *testing.T) {
	d := metric.NewDiff(metric.IntValue(0), metric.IntValue(0))
	_ = d
	// old==0 && new<0 isn't representable for uint64, use a float metric instead.
	neg := metric.NewDiff(metric.FloatValue(-5), metric.FloatValue(0))
	line := renderLine(metric.NewCallgrindKind(metric.L1HitRate), neg, DefaultOptions())
	assert.Contains(t, line, "---inf---")
}

func TestRenderLine_WithinTolerance(t *testing.T) {
	d := metric.NewDiff(metric.IntValue(1001), metric.IntValue(1000))
	opts := DefaultOptions()
	tol := 1.0
	opts.ToleranceOverride = &tol
	line := renderLine(metric.NewCallgrindKind(metric.Ir), d, opts)
	assert.Contains(t, line, "Tolerance")
}

func TestRenderLine_OrdinaryChangeShowsPctAndFactor(t *testing.T) {
	d := metric.NewDiff(metric.IntValue(1100), metric.IntValue(1000))
	line := renderLine(metric.NewCallgrindKind(metric.Ir), d, DefaultOptions())
	assert.Contains(t, line, "+10.0000%")
	assert.Contains(t, line, "x]")
}

func TestTruncateDescription_RespectsUTF8Boundary(t *testing.T) {
	s := "héllo wörld, this is a longer description with unicode: 日本語"
	out := truncateDescription(s, 20)
	assert.True(t, strings.HasSuffix(out, "..."))
	assert.True(t, len(out) <= 23)
}

func TestTruncateDescription_NoTruncationWhenShort(t *testing.T) {
	s := "short"
	assert.Equal(t, s, truncateDescription(s, 50))
}

func TestTruncateDescription_ZeroDisables(t *testing.T) {
	s := strings.Repeat("x", 100)
	assert.Equal(t, s, truncateDescription(s, 0))
}

func TestWriteSummary_RendersHeaderAndProfiles(t *testing.T) {
	summary := model.NewBenchmarkSummary(model.BenchmarkKindLibrary, "mycrate::fib", "bench_fib")
	total := metric.NewSummary[metric.Kind]()
	total.Set(metric.NewCallgrindKind(metric.Ir), metric.NewDiff(metric.IntValue(1100), metric.IntValue(1000)))
	summary.Profiles = []model.Profile{
		{
			Tool: metric.ToolCallgrind,
			Summaries: model.ProfileData{
				Total: model.ProfileTotal{Summary: metric.NewToolSummary(metric.ToolCallgrind, total)},
			},
		},
	}

	var sb strings.Builder
	require.NoError(t, WriteSummary(&sb, summary, DefaultOptions()))
	out := sb.String()
	assert.Contains(t, out, "mycrate::fib bench_fib")
	assert.Contains(t, out, "CALLGRIND")
	assert.Contains(t, out, "Total")
}

func TestIsRuneBoundary(t *testing.T) {
	s := "日本語"
	assert.True(t, isRuneBoundary(s, 0))
	assert.True(t, isRuneBoundary(s, len(s)))
	assert.False(t, isRuneBoundary(s, 1))
}

func TestRenderLine_NaNDiffDoesNotPanic(t *testing.T) {
	d := metric.MetricsDiff{
		Values: metric.Both(metric.FloatValue(math.NaN()), metric.FloatValue(1)),
		Diffs:  &metric.Diff{DiffPct: math.NaN(), Factor: 1},
	}
	assert.NotPanics(t, func() {
		renderLine(metric.NewCallgrindKind(metric.L1HitRate), d, DefaultOptions())
	})
}
