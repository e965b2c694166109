package canvas

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpander struct {
	branches []Branch
	err      error
	calls    int
}

func (f *fakeExpander) Expand(ctx context.Context, title, description string) ([]Branch, error) {
	f.calls++
	return f.branches, f.err
}

type fakePersister struct {
	saves  [][]Node
	themes []Theme
	err    error
}

func (f *fakePersister) SaveNodes(nodes []Node) error {
	f.saves = append(f.saves, nodes)
	return f.err
}

func (f *fakePersister) SaveTheme(theme Theme) error {
	f.themes = append(f.themes, theme)
	return f.err
}

func sequentialIDs() IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("n%d", n)
	}
}

func newTestController(t *testing.T, nodes []Node, opts ...func(*Options)) (*Controller, *fakePersister) {
	t.Helper()
	p := &fakePersister{}
	o := Options{
		Nodes:     nodes,
		Viewport:  Size{Width: 1000, Height: 600},
		Persister: p,
		NewID:     sequentialIDs(),
		Rand:      rand.New(rand.NewSource(1)),
	}
	for _, fn := range opts {
		fn(&o)
	}
	return NewController(o), p
}

func withExpander(e Expander) func(*Options) {
	return func(o *Options) { o.Expander = e }
}

func TestNewControllerSeedsEmptyBoard(t *testing.T) {
	c, _ := newTestController(t, nil)
	nodes := c.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, SeedNode(), nodes[0])
	assert.Equal(t, ResetView(Size{Width: 1000, Height: 600}), c.View())
}

func TestPanIsScaleInvariant(t *testing.T) {
	for _, scale := range []float64{0.1, 1.0, 3.0} {
		t.Run(fmt.Sprint(scale), func(t *testing.T) {
			c, _ := newTestController(t, testNodes())
			c.SetView(ViewState{Offset: Position{X: 50, Y: 70}, Scale: scale})

			c.PointerDown(Position{X: 200, Y: 200}, Background())
			require.Equal(t, ModePanning, c.Mode().Kind)
			c.PointerMove(Position{X: 230, Y: 160})
			c.PointerMove(Position{X: 260, Y: 180})
			c.PointerUp()

			assert.Equal(t, Position{X: 110, Y: 50}, c.View().Offset)
			assert.Equal(t, scale, c.View().Scale)
			assert.Equal(t, ModeIdle, c.Mode().Kind)
		})
	}
}

func TestPanClearsSelection(t *testing.T) {
	c, _ := newTestController(t, testNodes())
	c.Select("a")
	c.PointerDown(Position{}, Background())
	assert.Empty(t, c.Selected())
}

func TestDragUnderZoom(t *testing.T) {
	for _, scale := range []float64{0.1, 1.0, 3.0} {
		t.Run(fmt.Sprint(scale), func(t *testing.T) {
			nodes := testNodes()
			nodes[0].Position = Position{X: 10, Y: 20}
			c, p := newTestController(t, nodes)
			c.SetView(ViewState{Offset: Position{X: 3, Y: 4}, Scale: scale})

			c.PointerDown(Position{X: 100, Y: 100}, NodeBody("a"))
			assert.Equal(t, Mode{Kind: ModeDragging, NodeID: "a"}, c.Mode())
			assert.Equal(t, "a", c.Selected())

			c.PointerMove(Position{X: 130, Y: 85})
			c.PointerMove(Position{X: 160, Y: 70})
			assert.Empty(t, p.saves, "drag frames are not persisted")
			c.PointerUp()

			n, ok := c.Node("a")
			require.True(t, ok)
			assert.InDelta(t, 10+60/scale, n.Position.X, 1e-9)
			assert.InDelta(t, 20-30/scale, n.Position.Y, 1e-9)
			require.Len(t, p.saves, 1, "one snapshot at the end of the drag")
			assert.Equal(t, n.Position, p.saves[0][0].Position)
		})
	}
}

func TestDragWithoutMovementDoesNotPersist(t *testing.T) {
	c, p := newTestController(t, testNodes())
	c.PointerDown(Position{X: 1, Y: 1}, NodeBody("a"))
	c.PointerUp()
	assert.Empty(t, p.saves)
}

func TestPointerModesAreExclusive(t *testing.T) {
	c, _ := newTestController(t, testNodes())

	c.PointerDown(Position{X: 5, Y: 5}, Background())
	c.PointerDown(Position{X: 5, Y: 5}, NodeBody("a"))
	assert.Equal(t, ModePanning, c.Mode().Kind)
	c.PointerLeave()

	c.PointerDown(Position{X: 5, Y: 5}, NodeBody("a"))
	offset := c.View().Offset
	c.PointerDown(Position{X: 5, Y: 5}, Background())
	assert.Equal(t, Mode{Kind: ModeDragging, NodeID: "a"}, c.Mode())
	c.PointerMove(Position{X: 50, Y: 50})
	assert.Equal(t, offset, c.View().Offset, "dragging never pans")
}

func TestPointerDownOnInteractiveChildIsIgnored(t *testing.T) {
	c, _ := newTestController(t, testNodes())
	c.PointerDown(Position{X: 5, Y: 5}, Interactive("a"))
	assert.Equal(t, ModeIdle, c.Mode().Kind)
	assert.Empty(t, c.Selected())
}

func TestPointerDownOnMissingNode(t *testing.T) {
	c, _ := newTestController(t, testNodes())
	c.PointerDown(Position{X: 5, Y: 5}, NodeBody("ghost"))
	assert.Equal(t, ModeIdle, c.Mode().Kind)
}

func TestDeleteWhileDraggingEndsDrag(t *testing.T) {
	c, _ := newTestController(t, testNodes())
	c.PointerDown(Position{}, NodeBody("a"))
	c.DeleteNode("a")
	assert.Equal(t, ModeIdle, c.Mode().Kind)
	c.PointerMove(Position{X: 10, Y: 10})
	_, ok := c.Node("a")
	assert.False(t, ok)
}

func TestWheelZoomsTowardPointer(t *testing.T) {
	c, _ := newTestController(t, testNodes())
	anchor := Position{X: 321, Y: 123}
	before := ToWorld(anchor, c.View())

	c.Wheel(anchor, -100)
	assert.Greater(t, c.View().Scale, 1.0)
	after := ToWorld(anchor, c.View())
	assert.InDelta(t, before.X, after.X, 1e-6)
	assert.InDelta(t, before.Y, after.Y, 1e-6)

	for i := 0; i < 200; i++ {
		c.Wheel(anchor, -500)
	}
	assert.Equal(t, MaxScale, c.View().Scale)
	for i := 0; i < 200; i++ {
		c.Wheel(anchor, 500)
	}
	assert.Equal(t, MinScale, c.View().Scale)
}

func TestToolbarZoomAndReset(t *testing.T) {
	c, _ := newTestController(t, testNodes())
	c.PanBy(Position{X: 40, Y: -20})
	offset := c.View().Offset

	c.ZoomIn()
	assert.InDelta(t, 1.2, c.View().Scale, 1e-9)
	assert.Equal(t, offset, c.View().Offset)
	c.ZoomOut()
	c.ZoomOut()
	assert.InDelta(t, 1/1.2, c.View().Scale, 1e-9)

	c.ResetView()
	assert.Equal(t, ResetView(c.Viewport()), c.View())
}

func TestAddNode(t *testing.T) {
	c, p := newTestController(t, testNodes())

	worldPos := Position{X: -40, Y: 75}
	n := c.AddNode(&worldPos)
	assert.Equal(t, "n1", n.ID)
	assert.Equal(t, DefaultTitle, n.Title)
	assert.Empty(t, n.Description)
	assert.False(t, n.IsCollapsed)
	assert.Equal(t, worldPos, n.Position)
	assert.Contains(t, Palette, n.Color)
	assert.Equal(t, float64(DefaultWidth), n.Width)
	assert.Equal(t, float64(DefaultHeight), n.Height)
	assert.Equal(t, "n1", c.Selected())
	require.Len(t, p.saves, 1)
	assert.Len(t, p.saves[0], 4)

	center := c.AddNode(nil)
	assert.Equal(t, ToWorld(c.Viewport().Center(), c.View()), center.Position)
}

func TestDoubleClickAddsNodeUnderPointer(t *testing.T) {
	c, _ := newTestController(t, testNodes())
	c.SetView(ViewState{Offset: Position{X: 100, Y: 50}, Scale: 2})

	c.DoubleClick(Position{X: 300, Y: 250}, Background())
	n, ok := c.Node("n1")
	require.True(t, ok)
	assert.Equal(t, Position{X: 100, Y: 100}, n.Position)

	c.DoubleClick(Position{X: 300, Y: 250}, NodeBody("a"))
	assert.Len(t, c.Nodes(), 4)
}

func TestUnknownIDsAreNoOps(t *testing.T) {
	c, p := newTestController(t, testNodes())
	before := c.Nodes()

	assert.NotPanics(t, func() {
		c.UpdateNode("ghost", TitlePatch("x"))
		c.DeleteNode("ghost")
		c.ToggleCollapse("ghost")
		require.NoError(t, c.Expand(context.Background(), "ghost"))
	})
	assert.Equal(t, before, c.Nodes())
	assert.Empty(t, p.saves)
	assert.False(t, c.Processing())
}

func TestUpdateAndToggle(t *testing.T) {
	c, p := newTestController(t, testNodes())
	c.UpdateNode("b", DescriptionPatch("details"))
	c.ToggleCollapse("b")

	n, _ := c.Node("b")
	assert.Equal(t, "details", n.Description)
	assert.True(t, n.IsCollapsed)
	assert.Equal(t, "B", n.Title)
	assert.Len(t, p.saves, 2)

	c.ToggleCollapse("b")
	n, _ = c.Node("b")
	assert.False(t, n.IsCollapsed)
	assert.Equal(t, "details", n.Description, "collapsing keeps data")
}

func TestDeleteNodeKeepsChildren(t *testing.T) {
	c, _ := newTestController(t, testNodes())
	c.Select("a")
	c.DeleteNode("a")

	assert.Empty(t, c.Selected())
	b, ok := c.Node("b")
	require.True(t, ok)
	assert.Equal(t, "a", b.ParentID)
	assert.Len(t, c.Children("a"), 2)
}

func TestDeleteOtherNodeKeepsSelection(t *testing.T) {
	c, _ := newTestController(t, testNodes())
	c.Select("a")
	c.DeleteNode("b")
	assert.Equal(t, "a", c.Selected())
}

func TestExpandFansOutChildren(t *testing.T) {
	nodes := testNodes()
	nodes[0].Position = Position{X: 100, Y: 100}
	exp := &fakeExpander{branches: []Branch{
		{Title: "one", Description: "1"},
		{Title: "two", Description: "2"},
		{Title: "three", Description: "3"},
		{Title: "four", Description: "4"},
	}}
	c, p := newTestController(t, nodes, withExpander(exp))
	source, _ := c.Node("a")

	require.NoError(t, c.Expand(context.Background(), "a"))
	assert.False(t, c.Processing())
	assert.Equal(t, 1, exp.calls)

	all := c.Nodes()
	require.Len(t, all, 7)
	children := all[3:]
	want := []Position{{X: 500, Y: -340}, {X: 500, Y: -120}, {X: 500, Y: 100}, {X: 500, Y: 320}}
	for i, child := range children {
		assert.Equal(t, want[i], child.Position)
		assert.Equal(t, "a", child.ParentID)
		assert.Equal(t, source.Color, child.Color)
		assert.Equal(t, exp.branches[i].Title, child.Title)
		assert.Equal(t, exp.branches[i].Description, child.Description)
	}
	after, _ := c.Node("a")
	assert.Equal(t, source, after)
	require.Len(t, p.saves, 1, "children are appended in one batch")
}

func TestExpandFailureLeavesStateUntouched(t *testing.T) {
	exp := &fakeExpander{err: errors.New("network down")}
	c, p := newTestController(t, testNodes(), withExpander(exp))
	before := c.Nodes()

	err := c.Expand(context.Background(), "a")
	require.Error(t, err)
	assert.Equal(t, before, c.Nodes())
	assert.False(t, c.Processing())
	assert.Empty(t, p.saves)

	notice, ok := c.Notice()
	require.True(t, ok)
	assert.Equal(t, NoticeError, notice.Level)
	assert.Contains(t, notice.Message, "network down")

	c.DismissNotice()
	_, ok = c.Notice()
	assert.False(t, ok)
}

func TestExpandWithoutExpander(t *testing.T) {
	c, _ := newTestController(t, testNodes())
	err := c.Expand(context.Background(), "a")
	assert.ErrorIs(t, err, ErrNoExpander)
	assert.False(t, c.Processing())
	assert.Len(t, c.Nodes(), 3)
}

func TestConcurrentExpansionsKeepProcessingUntilLast(t *testing.T) {
	c, _ := newTestController(t, testNodes())

	first, ok := c.BeginExpand("a")
	require.True(t, ok)
	second, ok := c.BeginExpand("b")
	require.True(t, ok)
	assert.True(t, c.Processing())

	c.FinishExpand(second, []Branch{{Title: "t", Description: "d"}}, nil)
	assert.True(t, c.Processing(), "first request still in flight")

	c.DeleteNode("a")
	children := c.FinishExpand(first, []Branch{{Title: "t", Description: "d"}}, nil)
	assert.False(t, c.Processing())
	require.Len(t, children, 1)
	assert.Equal(t, "a", children[0].ParentID, "a deleted source still yields children")
}

func TestExpandEmptyResult(t *testing.T) {
	c, p := newTestController(t, testNodes(), withExpander(&fakeExpander{}))
	require.NoError(t, c.Expand(context.Background(), "a"))
	assert.Len(t, c.Nodes(), 3)
	assert.Empty(t, p.saves)
}

func TestSaveFailureRaisesNotice(t *testing.T) {
	c, p := newTestController(t, testNodes())
	p.err = errors.New("disk full")
	c.ToggleCollapse("a")

	n, _ := c.Node("a")
	assert.True(t, n.IsCollapsed, "memory stays authoritative")
	notice, ok := c.Notice()
	require.True(t, ok)
	assert.Contains(t, notice.Message, "disk full")
}

func TestToggleTheme(t *testing.T) {
	c, p := newTestController(t, testNodes())
	assert.Equal(t, ThemeLight, c.Theme())
	c.ToggleTheme()
	assert.Equal(t, ThemeDark, c.Theme())
	c.ToggleTheme()
	assert.Equal(t, []Theme{ThemeDark, ThemeLight}, p.themes)
}
