package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vgbench/runner/pkg/metric"
)

func TestProfileData_RoundTripsThroughJSON(t *testing.T) {
	native := metric.New[metric.EventKind]()
	native.Set(metric.Ir, metric.IntValue(352135))
	metric.DeriveCallgrindMetrics(native)

	summary := metric.SummaryFromMetrics(native, true)
	toolSummary := metric.NewToolSummary(metric.ToolCallgrind, metric.CallgrindKindSummary(summary))

	info := ProfileInfo{Command: "/bin/fib", Pid: 1234, Path: "callgrind.fib.out"}
	part := NewProfilePart(metric.Left(info), toolSummary)

	data := ProfileData{
		Parts: []ProfilePart{part},
		Total: ProfileTotal{Summary: toolSummary, Regressions: nil},
	}

	raw, err := json.Marshal(data)
	assert.NoError(t, err)
	assert.Contains(t, string(raw), "352135")
}

func TestBenchmarkSummary_HasRegressions(t *testing.T) {
	bs := NewBenchmarkSummary(BenchmarkKindLibrary, "fib::bench_fib", "bench_fib")
	assert.False(t, bs.HasRegressions())

	bs.Profiles = append(bs.Profiles, Profile{
		Tool: metric.ToolCallgrind,
		Summaries: ProfileData{
			Total: ProfileTotal{
				Regressions: []ToolRegression{
					NewSoftRegression(metric.NewCallgrindKind(metric.Ir), metric.IntValue(1100), metric.IntValue(1000), 10, 5),
				},
			},
		},
	})
	assert.True(t, bs.HasRegressions())
}
