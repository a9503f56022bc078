package flamegraph

import (
	"fmt"
	"strings"

	"github.com/vgbench/runner/pkg/metric"
)

// Direction selects which way the flame graph grows from the root.
type Direction int

const (
	// DirectionBottomToTop stacks the root at the bottom, growing upward,
	// the default.
	DirectionBottomToTop Direction = iota
	DirectionTopToBottom
)

// Kind selects which flame graph variants a Generator call produces.
type Kind int

const (
	KindRegular Kind = iota
	KindDifferential
	KindAll
	KindNone
)

// Config configures one flame graph rendering pass.
type Config struct {
	Direction             Direction
	EventKinds            []metric.EventKind // one rendering pass per entry
	Kind                  Kind
	MinWidthPct           float64 // frames narrower than this percent of total are dropped
	NegateDifferential    bool
	NormalizeDifferential bool
	Title                 string
	Subtitle              string
}

// DefaultConfig returns the package's defaults: bottom-to-top growth,
// regular rendering, a 0.1% minimum frame width.
func DefaultConfig() Config {
	return Config{Direction: DirectionBottomToTop, Kind: KindRegular, MinWidthPct: 0.1}
}

const (
	canvasWidth = 1200
	frameHeight = 16
	headerSpace = 36
)

// RenderRegular renders root as a single-color flame graph SVG.
func RenderRegular(root *Node, cfg Config) string {
	root.SortChildren()
	depth := maxDepth(root)
	var sb strings.Builder
	writeHeader(&sb, cfg, depth)
	if root.Value > 0 {
		renderNode(&sb, root, 0, float64(root.Value), 0, canvasWidth, depth, cfg, colorRegular)
	}
	sb.WriteString("</svg>\n")
	return sb.String()
}

// RenderDifferential renders a merged view of newRoot against oldRoot:
// frames present in both are colored by percentage change (red for
// growth, blue for shrinkage, unless NegateDifferential flips the
// palette), frames only in one side render in a neutral gray.
func RenderDifferential(newRoot, oldRoot *Node, cfg Config) string {
	merged, diffs := mergeForDiff(newRoot, oldRoot, cfg.NormalizeDifferential)
	merged.SortChildren()
	depth := maxDepth(merged)
	var sb strings.Builder
	writeHeader(&sb, cfg, depth)
	if merged.Value > 0 {
		color := func(n *Node) string { return colorDiff(diffs[n], cfg.NegateDifferential) }
		renderNode(&sb, merged, 0, float64(merged.Value), 0, canvasWidth, depth, cfg, color)
	}
	sb.WriteString("</svg>\n")
	return sb.String()
}

func maxDepth(n *Node) int {
	best := 0
	for _, c := range n.Children {
		if d := maxDepth(c) + 1; d > best {
			best = d
		}
	}
	return best
}

func writeHeader(sb *strings.Builder, cfg Config, depth int) {
	height := headerSpace + (depth+2)*frameHeight
	fmt.Fprintf(sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`+"\n",
		canvasWidth, height, canvasWidth, height)
	fmt.Fprintf(sb, `<rect x="0" y="0" width="%d" height="%d" fill="#ffffff"/>`+"\n", canvasWidth, height)
	if cfg.Title != "" {
		fmt.Fprintf(sb, `<text x="%d" y="18" text-anchor="middle" font-size="14" font-weight="bold">%s</text>`+"\n",
			canvasWidth/2, escapeXML(cfg.Title))
	}
	if cfg.Subtitle != "" {
		fmt.Fprintf(sb, `<text x="%d" y="32" text-anchor="middle" font-size="11" fill="#666666">%s</text>`+"\n",
			canvasWidth/2, escapeXML(cfg.Subtitle))
	}
}

// renderNode draws n and its children within [x0, x0+width), at tree
// depth d out of maxDepth total, honoring cfg.Direction for the y-axis
// and cfg.MinWidthPct for frame elision.
func renderNode(sb *strings.Builder, n *Node, d int, total float64, x0, width float64, maxD int, cfg Config, color func(*Node) string) {
	pct := 0.0
	if total > 0 {
		pct = float64(n.Value) / total * 100
	}
	if pct < cfg.MinWidthPct {
		return
	}

	y := headerSpace + d*frameHeight
	if cfg.Direction == DirectionBottomToTop {
		y = headerSpace + (maxD-d)*frameHeight
	}

	fmt.Fprintf(sb, `<g><title>%s (%.2f%%, %d)</title>`,
		escapeXML(n.Name), pct, n.Value)
	fmt.Fprintf(sb, `<rect x="%.2f" y="%d" width="%.2f" height="%d" fill="%s" stroke="#ffffff"/>`,
		x0, y, width, frameHeight, color(n))
	if width > 30 {
		fmt.Fprintf(sb, `<text x="%.2f" y="%d" font-size="10" clip-path="inset(0 0 0 0)">%s</text>`,
			x0+2, y+12, escapeXML(truncateLabel(n.Name, width)))
	}
	sb.WriteString("</g>\n")

	if n.Value <= 0 {
		return
	}
	childX := x0
	for _, c := range n.Children {
		childWidth := width * float64(c.Value) / float64(n.Value)
		renderNode(sb, c, d+1, total, childX, childWidth, maxD, cfg, color)
		childX += childWidth
	}
}

func truncateLabel(name string, width float64) string {
	maxChars := int(width / 6)
	if maxChars <= 0 || len(name) <= maxChars {
		return name
	}
	if maxChars <= 1 {
		return ""
	}
	return name[:maxChars-1] + "…"
}

func escapeXML(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")
	return r.Replace(s)
}

func colorRegular(n *Node) string {
	return hashColor(n.Name, 210, 70)
}

// colorDiff picks a hue by percentage-change sign: warm for growth, cool
// for shrinkage, gray when a node exists on only one side.
func colorDiff(pct *float64, negate bool) string {
	if pct == nil {
		return "#cccccc"
	}
	p := *pct
	if negate {
		p = -p
	}
	if p > 0 {
		return hashColor("grow", 0, 80)
	}
	if p < 0 {
		return hashColor("shrink", 220, 80)
	}
	return "#dddddd"
}

// hashColor derives a stable, muted color from name, varying lightness
// around a fixed hue so siblings with the same name always match across
// renders.
func hashColor(name string, hue, sat int) string {
	h := 0
	for _, r := range name {
		h = h*31 + int(r)
	}
	if h < 0 {
		h = -h
	}
	lightness := 55 + h%25
	return fmt.Sprintf("hsl(%d,%d%%,%d%%)", hue, sat, lightness)
}

// mergeForDiff builds a tree over the union of newRoot's and oldRoot's
// frame names and returns, per merged node, the new-vs-old percentage
// change (nil when the frame exists on only one side). When normalize is
// set, the old tree's values are scaled so its root carries the same
// total weight as the new root before merging, isolating shape change
// from volume change.
func mergeForDiff(newRoot, oldRoot *Node, normalize bool) (*Node, map[*Node]*float64) {
	scale := 1.0
	if normalize && oldRoot.Value > 0 && newRoot.Value > 0 {
		scale = float64(newRoot.Value) / float64(oldRoot.Value)
	}

	diffs := make(map[*Node]*float64)
	merged := NewNode(newRoot.Name)
	mergeNodes(merged, newRoot, oldRoot, scale, diffs)
	return merged, diffs
}

func mergeNodes(dst, newNode, oldNode *Node, scale float64, diffs map[*Node]*float64) {
	var newVal, oldVal int64
	if newNode != nil {
		newVal = newNode.Value
	}
	if oldNode != nil {
		oldVal = int64(float64(oldNode.Value) * scale)
	}
	dst.Value = newVal
	if newVal < oldVal {
		dst.Value = oldVal
	}

	switch {
	case newNode != nil && oldNode != nil && oldVal > 0:
		pct := (float64(newVal) - float64(oldVal)) / float64(oldVal) * 100
		diffs[dst] = &pct
	default:
		diffs[dst] = nil
	}

	childNames := map[string]bool{}
	var newChild, oldChild *Node
	if newNode != nil {
		for _, c := range newNode.Children {
			childNames[c.Name] = true
		}
	}
	if oldNode != nil {
		for _, c := range oldNode.Children {
			childNames[c.Name] = true
		}
	}
	for name := range childNames {
		if newNode != nil {
			newChild = findChild(newNode, name)
		} else {
			newChild = nil
		}
		if oldNode != nil {
			oldChild = findChild(oldNode, name)
		} else {
			oldChild = nil
		}
		childDst := dst.FindOrCreateChild(name)
		mergeNodes(childDst, newChild, oldChild, scale, diffs)
	}
}

func findChild(n *Node, name string) *Node {
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}
