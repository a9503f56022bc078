package formatter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vgbench/runner/pkg/model"
)

func TestWriteJSONSummary_NilOutputIsNoop(t *testing.T) {
	s := model.NewBenchmarkSummary(model.BenchmarkKindLibrary, "mycrate", "bench")
	assert.NoError(t, WriteJSONSummary(s))
}

func TestWriteJSONSummary_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.json")
	s := model.NewBenchmarkSummary(model.BenchmarkKindLibrary, "mycrate", "bench")
	s.SummaryOutput = &model.SummaryOutput{Format: model.SummaryFormatPrettyJSON, Path: path}

	require.NoError(t, WriteJSONSummary(s))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "\"version\"")
}
