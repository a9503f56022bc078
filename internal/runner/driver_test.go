package runner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vgbench/runner/internal/orchestrator"
	"github.com/vgbench/runner/internal/toolargs"
	"github.com/vgbench/runner/pkg/metric"
	"github.com/vgbench/runner/pkg/model"
)

func TestBenchStemWithoutID(t *testing.T) {
	assert.Equal(t, "bench_fast", benchStem("bench_fast", nil))
}

func TestBenchStemWithID(t *testing.T) {
	id := "case_a"
	assert.Equal(t, "bench_fast.case_a", benchStem("bench_fast", &id))
}

func TestFailFastBreachNilSummary(t *testing.T) {
	assert.False(t, failFastBreach(nil))
}

func TestFailFastBreachNoRegressions(t *testing.T) {
	s := model.NewBenchmarkSummary(model.BenchmarkKindLibrary, "mod", "fn")
	assert.False(t, failFastBreach(s))
}

func TestFailFastBreachWithRegression(t *testing.T) {
	s := model.NewBenchmarkSummary(model.BenchmarkKindLibrary, "mod", "fn")
	s.Profiles = append(s.Profiles, model.Profile{
		Summaries: model.ProfileData{
			Total: model.ProfileTotal{
				Regressions: []model.ToolRegression{model.NewSoftRegression(metric.Kind{}, metric.IntValue(1), metric.IntValue(1), 0, 0)},
			},
		},
	})
	assert.True(t, failFastBreach(s))
}

func TestResolveEntryPointDefault(t *testing.T) {
	ep := resolveEntryPoint(nil)
	assert.Equal(t, toolargs.EntryPointDefault, ep.Variant)
}

func TestResolveEntryPointNone(t *testing.T) {
	ep := resolveEntryPoint(&EntryPoint{Kind: EntryPointKindNone})
	assert.Equal(t, toolargs.EntryPointNone, ep.Variant)
}

func TestResolveEntryPointCustom(t *testing.T) {
	ep := resolveEntryPoint(&EntryPoint{Kind: EntryPointKindCustom, Pattern: "mylib::entry"})
	assert.Equal(t, toolargs.EntryPointCustom, ep.Variant)
	assert.Equal(t, "mylib::entry", ep.Pattern)
}

func TestEntryPointSentinel(t *testing.T) {
	assert.Equal(t, "", entryPointSentinel(toolargs.EntryPoint{Variant: toolargs.EntryPointNone}, "mylib"))
	assert.Equal(t, "mylib", entryPointSentinel(toolargs.EntryPoint{Variant: toolargs.EntryPointDefault}, "mylib"))
	assert.Equal(t, "custom::fn", entryPointSentinel(toolargs.EntryPoint{Variant: toolargs.EntryPointCustom, Pattern: "custom::fn"}, "mylib"))
}

func TestOrchestratorExitWith(t *testing.T) {
	assert.Equal(t, orchestrator.ExitSuccess, orchestratorExitWith(ExitWith{Kind: ExitWithSuccess}).Variant)
	assert.Equal(t, orchestrator.ExitFailure, orchestratorExitWith(ExitWith{Kind: ExitWithFailure}).Variant)
	withCode := orchestratorExitWith(ExitWith{Kind: ExitWithCode, Code: 7})
	assert.Equal(t, orchestrator.ExitCode, withCode.Variant)
	assert.Equal(t, 7, withCode.Code)
}

func TestNeedsFlamegraph(t *testing.T) {
	assert.False(t, needsFlamegraph(ToolConfig{}, metric.ToolCallgrind))

	cfg := &FlamegraphConfig{}
	assert.True(t, needsFlamegraph(ToolConfig{FlamegraphConfig: cfg}, metric.ToolCallgrind))
	assert.False(t, needsFlamegraph(ToolConfig{FlamegraphConfig: cfg}, metric.ToolDHAT))

	none := FlamegraphNone
	assert.False(t, needsFlamegraph(ToolConfig{FlamegraphConfig: &FlamegraphConfig{Kind: &none}}, metric.ToolCallgrind))
}

func TestReadinessFromDelayDuration(t *testing.T) {
	r := readinessFromDelay(&Delay{Kind: DelayDuration, DurationMS: 500})
	assert.Equal(t, 500*time.Millisecond, r.Duration)
}

func TestReadinessFromDelayTCP(t *testing.T) {
	r := readinessFromDelay(&Delay{Kind: DelayTCPConnect, Addr: "127.0.0.1:9000"})
	assert.Equal(t, "127.0.0.1:9000", r.TCPAddr)
}

func TestReadinessFromDelayNil(t *testing.T) {
	assert.Nil(t, readinessFromDelay(nil))
}

func TestMetricKindByNameUnknown(t *testing.T) {
	_, ok := metricKindByName("NotARealMetric")
	assert.False(t, ok)
}

func TestMetricKindByNameDerived(t *testing.T) {
	k, ok := metricKindByName(metric.EstimatedCycles.String())
	assert.True(t, ok)
	assert.Equal(t, metric.NewCallgrindKind(metric.EstimatedCycles), k)
}

func TestFlamegraphConfigDefaults(t *testing.T) {
	cfg := flamegraphConfig(nil)
	assert.NotZero(t, cfg)
}

func TestFlamegraphConfigMinWidth(t *testing.T) {
	width := 2.5
	cfg := flamegraphConfig(&FlamegraphConfig{MinWidth: &width})
	assert.Equal(t, 2.5, cfg.MinWidthPct)
}

func TestDetailsFromLogsNoMatch(t *testing.T) {
	assert.Nil(t, detailsFromLogs([]string{"/nonexistent/path.log"}))
}
