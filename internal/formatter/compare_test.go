package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vgbench/runner/pkg/model"
)

func benchWithID(id, fn string) *model.BenchmarkSummary {
	s := model.NewBenchmarkSummary(model.BenchmarkKindLibrary, "mycrate", fn)
	s.ID = &id
	return s
}

func TestCompareByID_GroupsSharedIDs(t *testing.T) {
	a := benchWithID("grp1", "bench_a")
	b := benchWithID("grp1", "bench_b")
	solo := benchWithID("grp2", "bench_c")

	var sb strings.Builder
	require.NoError(t, CompareByID(&sb, []*model.BenchmarkSummary{a, b, solo}, DefaultOptions()))

	out := sb.String()
	assert.Contains(t, out, "compare_by_id: grp1")
	assert.Contains(t, out, "bench_a")
	assert.Contains(t, out, "bench_b")
	assert.NotContains(t, out, "grp2")
}

func TestCompareByID_NoIDsProducesNoOutput(t *testing.T) {
	s := model.NewBenchmarkSummary(model.BenchmarkKindLibrary, "mycrate", "bench")
	var sb strings.Builder
	require.NoError(t, CompareByID(&sb, []*model.BenchmarkSummary{s}, DefaultOptions()))
	assert.Empty(t, sb.String())
}
