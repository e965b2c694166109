package main

import (
	"sort"

	"aether/internal/canvas"
)

const removedParentLabel = "(removed)"

// mindMap indexes the parent links of a node collection. Links to nodes
// that no longer exist are kept; those nodes count as roots.
type mindMap struct {
	byID     map[string]canvas.Node
	children map[string][]canvas.Node
	roots    []canvas.Node
}

func newMindMap(nodes []canvas.Node) mindMap {
	mm := mindMap{
		byID:     make(map[string]canvas.Node, len(nodes)),
		children: make(map[string][]canvas.Node),
	}
	for _, n := range nodes {
		mm.byID[n.ID] = n
	}
	for _, n := range nodes {
		if _, ok := mm.byID[n.ParentID]; n.ParentID != "" && ok {
			mm.children[n.ParentID] = append(mm.children[n.ParentID], n)
			continue
		}
		mm.roots = append(mm.roots, n)
	}

	// Sort by Y so siblings read top to bottom, as they are laid out.
	byY := func(list []canvas.Node) {
		sort.SliceStable(list, func(i, j int) bool { return list[i].Position.Y < list[j].Position.Y })
	}
	byY(mm.roots)
	for id := range mm.children {
		byY(mm.children[id])
	}
	return mm
}

// parentLabel is the lineage line shown on a card, or "" for a node that
// was never expanded from another.
func (mm mindMap) parentLabel(n canvas.Node) string {
	if n.ParentID == "" {
		return ""
	}
	parent, ok := mm.byID[n.ParentID]
	if !ok {
		return removedParentLabel
	}
	if parent.Title == "" {
		return "Untitled"
	}
	return parent.Title
}

// walk visits every node depth first, roots in order.
func (mm mindMap) walk(fn func(n canvas.Node, depth int)) {
	var visit func(n canvas.Node, depth int)
	visit = func(n canvas.Node, depth int) {
		fn(n, depth)
		for _, child := range mm.children[n.ID] {
			visit(child, depth+1)
		}
	}
	for _, root := range mm.roots {
		visit(root, 0)
	}
}

// edges returns parent/child pairs whose parent still exists.
func (mm mindMap) edges() [][2]canvas.Node {
	var out [][2]canvas.Node
	mm.walk(func(n canvas.Node, _ int) {
		for _, child := range mm.children[n.ID] {
			out = append(out, [2]canvas.Node{n, child})
		}
	})
	return out
}
