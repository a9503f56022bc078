package flamegraph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildSampleTree() *Node {
	b := NewNodeBuilder("program")
	b.AddStack([]string{"main", "work"}, 100)
	b.AddStack([]string{"main", "idle"}, 5)
	return b.Build()
}

func TestRenderRegular_ProducesValidSVGEnvelope(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Title = "bench <fib>"
	svg := RenderRegular(buildSampleTree(), cfg)

	assert.True(t, strings.HasPrefix(svg, "<svg"))
	assert.True(t, strings.HasSuffix(strings.TrimSpace(svg), "</svg>"))
	assert.Contains(t, svg, "bench &lt;fib&gt;")
	assert.Contains(t, svg, "main")
	assert.Contains(t, svg, "work")
}

func TestRenderRegular_DropsFramesBelowMinWidth(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinWidthPct = 10
	svg := RenderRegular(buildSampleTree(), cfg)
	assert.NotContains(t, svg, "idle")
}

func TestRenderDifferential_MarksGrowthAndShrinkage(t *testing.T) {
	newTree := NewNodeBuilder("program")
	newTree.AddStack([]string{"foo"}, 200)
	oldTree := NewNodeBuilder("program")
	oldTree.AddStack([]string{"foo"}, 100)

	svg := RenderDifferential(newTree.Build(), oldTree.Build(), DefaultConfig())
	assert.Contains(t, svg, "foo")
}

func TestMergeForDiff_OneSidedFrameHasNilDiff(t *testing.T) {
	newTree := NewNodeBuilder("program")
	newTree.AddStack([]string{"onlyNew"}, 10)
	oldTree := NewNodeBuilder("program")

	merged, diffs := mergeForDiff(newTree.Build(), oldTree.Build(), false)
	onlyNew := findChild(merged, "onlyNew")
	assert.Nil(t, diffs[onlyNew])
}
