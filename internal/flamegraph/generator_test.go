package flamegraph

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vgbench/runner/pkg/metric"
)

func TestGenerator_Generate_RegularOnly(t *testing.T) {
	newPath := writeCallGraphFixture(t, sampleCallGraph)
	outDir := filepath.Join(t.TempDir(), "flamegraphs")

	cfg := DefaultConfig()
	cfg.EventKinds = []metric.EventKind{metric.Ir}

	g := NewGenerator()
	summaries, err := g.Generate(context.Background(), newPath, "", outDir, "", cfg)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.NotNil(t, summaries[0].RegularPath)
	assert.Nil(t, summaries[0].DiffPath)

	content, err := os.ReadFile(*summaries[0].RegularPath)
	require.NoError(t, err)
	assert.Contains(t, string(content), "<svg")
}

func TestGenerator_Generate_AllProducesDifferential(t *testing.T) {
	newPath := writeCallGraphFixture(t, sampleCallGraph)
	oldPath := writeCallGraphFixture(t, sampleCallGraph)
	outDir := filepath.Join(t.TempDir(), "flamegraphs")

	cfg := DefaultConfig()
	cfg.Kind = KindAll
	cfg.EventKinds = []metric.EventKind{metric.Ir}

	g := NewGenerator()
	summaries, err := g.Generate(context.Background(), newPath, oldPath, outDir, "", cfg)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.NotNil(t, summaries[0].RegularPath)
	assert.NotNil(t, summaries[0].BasePath)
	assert.NotNil(t, summaries[0].DiffPath)
}

func TestGenerator_Generate_KindNoneReturnsNothing(t *testing.T) {
	newPath := writeCallGraphFixture(t, sampleCallGraph)
	outDir := filepath.Join(t.TempDir(), "flamegraphs")

	cfg := DefaultConfig()
	cfg.Kind = KindNone
	cfg.EventKinds = []metric.EventKind{metric.Ir}

	g := NewGenerator()
	summaries, err := g.Generate(context.Background(), newPath, "", outDir, "", cfg)
	require.NoError(t, err)
	assert.Empty(t, summaries)
}
