package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aether/internal/canvas"
)

func lineageNodes() []canvas.Node {
	root := testNode("r", 0, 0)
	root.Title = "Root"
	low := testNode("c2", 400, 220)
	low.Title = "Lower"
	low.ParentID = "r"
	high := testNode("c1", 400, -220)
	high.Title = "Upper"
	high.ParentID = "r"
	high.IsCollapsed = true
	grand := testNode("g", 800, -220)
	grand.Title = ""
	grand.ParentID = "c1"
	orphan := testNode("o", 0, 600)
	orphan.Title = "Orphan"
	orphan.ParentID = "deleted"
	return []canvas.Node{root, low, high, grand, orphan}
}

func TestMindMapStructure(t *testing.T) {
	mm := newMindMap(lineageNodes())

	require.Len(t, mm.roots, 2)
	assert.Equal(t, "r", mm.roots[0].ID)
	assert.Equal(t, "o", mm.roots[1].ID)

	children := mm.children["r"]
	require.Len(t, children, 2)
	assert.Equal(t, "c1", children[0].ID, "siblings are ordered top to bottom")
	assert.Equal(t, "c2", children[1].ID)
}

func TestMindMapParentLabel(t *testing.T) {
	nodes := lineageNodes()
	mm := newMindMap(nodes)

	assert.Empty(t, mm.parentLabel(nodes[0]))
	assert.Equal(t, "Root", mm.parentLabel(nodes[1]))
	assert.Equal(t, "Upper", mm.parentLabel(nodes[3]))
	assert.Equal(t, removedParentLabel, mm.parentLabel(nodes[4]))

	untitled := testNode("u", 0, 0)
	untitled.Title = ""
	kid := testNode("k", 0, 0)
	kid.ParentID = "u"
	assert.Equal(t, "Untitled", newMindMap([]canvas.Node{untitled, kid}).parentLabel(kid))
}

func TestMindMapWalkAndEdges(t *testing.T) {
	mm := newMindMap(lineageNodes())

	var order []string
	var depths []int
	mm.walk(func(n canvas.Node, depth int) {
		order = append(order, n.ID)
		depths = append(depths, depth)
	})
	assert.Equal(t, []string{"r", "c1", "g", "c2", "o"}, order)
	assert.Equal(t, []int{0, 1, 2, 1, 0}, depths)

	var pairs [][2]string
	for _, e := range mm.edges() {
		pairs = append(pairs, [2]string{e[0].ID, e[1].ID})
	}
	assert.Equal(t, [][2]string{{"r", "c1"}, {"r", "c2"}, {"c1", "g"}}, pairs)
}

func TestPrintTree(t *testing.T) {
	var out bytes.Buffer
	printTree(&out, lineageNodes())
	assert.Equal(t, ""+
		"r  Root\n"+
		"  c1  Upper  [collapsed]\n"+
		"    g  Untitled\n"+
		"  c2  Lower\n"+
		"o  Orphan  (parent removed)\n", out.String())
}
