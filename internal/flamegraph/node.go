// Package flamegraph builds and renders flame graphs from Callgrind
// call-graph data: a folded-stack tree, SVG emission in regular,
// baseline and differential modes.
package flamegraph

import "sort"

// Node is one frame in the flame graph tree: a function name, its
// inclusive value (its own cost plus every descendant's), and its direct
// children in first-seen order.
type Node struct {
	Name     string
	Value    int64
	Self     int64
	Children []*Node

	childIndex map[string]int
}

// NewNode creates a named, zero-valued node.
func NewNode(name string) *Node {
	return &Node{Name: name, childIndex: make(map[string]int)}
}

// FindOrCreateChild returns the existing child named name, creating one
// if absent.
func (n *Node) FindOrCreateChild(name string) *Node {
	if n.childIndex == nil {
		n.childIndex = make(map[string]int)
	}
	if idx, ok := n.childIndex[name]; ok {
		return n.Children[idx]
	}
	child := NewNode(name)
	n.childIndex[name] = len(n.Children)
	n.Children = append(n.Children, child)
	return child
}

// SortChildren orders children by descending value, recursively, so SVG
// emission produces a stable, widest-first layout.
func (n *Node) SortChildren() {
	sort.SliceStable(n.Children, func(i, j int) bool {
		return n.Children[i].Value > n.Children[j].Value
	})
	for _, c := range n.Children {
		c.SortChildren()
	}
}

// NodeBuilder accumulates call-stack samples into a Node tree.
type NodeBuilder struct {
	root *Node
}

// NewNodeBuilder creates a builder rooted at rootName.
func NewNodeBuilder(rootName string) *NodeBuilder {
	return &NodeBuilder{root: NewNode(rootName)}
}

// AddStack folds one call stack (root-to-leaf frame names) weighted by
// value into the tree: every frame on the path gets value added to its
// inclusive Value, and the leaf frame additionally gets it added to Self.
func (b *NodeBuilder) AddStack(stack []string, value int64) {
	if len(stack) == 0 || value <= 0 {
		return
	}

	current := b.root
	current.Value += value

	for _, frame := range stack {
		current = current.FindOrCreateChild(frame)
		current.Value += value
	}
	current.Self += value
}

// Build returns the accumulated tree.
func (b *NodeBuilder) Build() *Node {
	return b.root
}
