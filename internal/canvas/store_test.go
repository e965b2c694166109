package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testNodes() []Node {
	return []Node{
		{ID: "a", Title: "A", Color: ColorBlue, Width: 320, Height: 180},
		{ID: "b", Title: "B", Color: ColorRose, Width: 320, Height: 180, ParentID: "a"},
		{ID: "c", Title: "C", Color: ColorRose, Width: 320, Height: 180, ParentID: "a"},
	}
}

func TestStoreKeepsInsertionOrder(t *testing.T) {
	s := NewStore(testNodes())
	s.Append(Node{ID: "d", Width: 1, Height: 1})

	var ids []string
	for _, n := range s.Nodes() {
		ids = append(ids, n.ID)
	}
	assert.Equal(t, []string{"a", "b", "c", "d"}, ids)
}

func TestStoreNodesIsACopy(t *testing.T) {
	s := NewStore(testNodes())
	nodes := s.Nodes()
	nodes[0].Title = "mutated"

	n, ok := s.Find("a")
	require.True(t, ok)
	assert.Equal(t, "A", n.Title)
}

func TestStoreRemoveReindexes(t *testing.T) {
	s := NewStore(testNodes())
	require.True(t, s.Remove("a"))
	assert.False(t, s.Remove("a"))

	n, ok := s.Find("c")
	require.True(t, ok)
	assert.Equal(t, "C", n.Title)
	assert.Equal(t, "a", n.ParentID, "children keep a dangling parent reference")
}

func TestStoreChangeHook(t *testing.T) {
	s := NewStore(testNodes())
	var calls [][]Node
	s.OnChange = func(nodes []Node) { calls = append(calls, nodes) }

	s.Append(Node{ID: "x"}, Node{ID: "y"})
	require.Len(t, calls, 1, "a batch append is one mutation")
	assert.Len(t, calls[0], 5)

	s.UpdateQuiet("x", func(n Node) Node { n.Title = "quiet"; return n })
	assert.Len(t, calls, 1)
	s.Commit()
	assert.Len(t, calls, 2)

	s.Update("missing", func(n Node) Node { return n })
	s.Remove("missing")
	assert.Len(t, calls, 2, "no-ops do not notify")
}

func TestStoreUpdateCannotChangeID(t *testing.T) {
	s := NewStore(testNodes())
	s.Update("a", func(n Node) Node { n.ID = "z"; return n })
	_, ok := s.Find("a")
	assert.True(t, ok)
	_, ok = s.Find("z")
	assert.False(t, ok)
}

func TestStoreChildren(t *testing.T) {
	s := NewStore(testNodes())
	children := s.Children("a")
	require.Len(t, children, 2)
	assert.Equal(t, "b", children[0].ID)
	assert.Equal(t, "c", children[1].ID)
	assert.Empty(t, s.Children("b"))
}

func TestNodeApply(t *testing.T) {
	n := testNodes()[0]
	title := "renamed"
	collapsed := true
	zero := 0.0
	pos := Position{X: 5, Y: 6}

	got := n.Apply(NodePatch{Title: &title, IsCollapsed: &collapsed, Position: &pos, Width: &zero})
	assert.Equal(t, "renamed", got.Title)
	assert.True(t, got.IsCollapsed)
	assert.Equal(t, pos, got.Position)
	assert.Equal(t, 320.0, got.Width, "non-positive sizes are ignored")
	assert.Equal(t, n.Description, got.Description)
	assert.Equal(t, n.Color, got.Color)
}

func TestBranchPosition(t *testing.T) {
	src := Position{X: 100, Y: 100}
	want := []Position{{X: 500, Y: -340}, {X: 500, Y: -120}, {X: 500, Y: 100}, {X: 500, Y: 320}}
	for i, w := range want {
		assert.Equal(t, w, BranchPosition(src, i, len(want)))
	}
	// Odd counts center the middle child on the source row.
	assert.Equal(t, Position{X: 500, Y: 100}, BranchPosition(src, 1, 3))
}
