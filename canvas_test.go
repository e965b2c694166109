package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aether/internal/canvas"
)

func TestRenderBoardDrawsCards(t *testing.T) {
	parent := testNode("p", 0, 0)
	parent.Title = "Root thought"
	parent.Description = "first line of notes"
	child := testNode("c", 400, 0)
	child.Title = "Branch"
	child.ParentID = "p"
	orphan := testNode("o", 0, 240)
	orphan.Title = "Orphan"
	orphan.ParentID = "gone"

	g := renderBoard(120, 40, []canvas.Node{parent, child, orphan}, canvas.DefaultView(), "p", false)
	lines := g.plain()
	require.Len(t, lines, 40)

	// Selected card uses the heavy border.
	assert.True(t, strings.HasPrefix(lines[0], "┏"))
	assert.Contains(t, lines[1], "Root thought")
	assert.Contains(t, lines[1], "✦ ▾ ✕")
	assert.Contains(t, lines[2], "first line of notes")

	// Unselected cards are rounded and carry their lineage.
	assert.Equal(t, "╭", string([]rune(lines[0])[50]))
	board := strings.Join(lines, "\n")
	assert.Contains(t, board, "↳ Root thought")
	assert.Contains(t, board, "↳ (removed)")
}

func TestRenderBoardCollapsedAndOffscreen(t *testing.T) {
	n := testNode("a", 0, 0)
	n.IsCollapsed = true
	n.Description = "hidden notes"
	far := testNode("far", 5000, 5000)

	lines := renderBoard(60, 20, []canvas.Node{n, far}, canvas.DefaultView(), "", false).plain()
	assert.Contains(t, lines[1], "▸")
	assert.True(t, strings.HasPrefix(lines[2], "╰"))
	assert.NotContains(t, strings.Join(lines, "\n"), "hidden notes")
	assert.NotContains(t, strings.Join(lines, "\n"), "Idea far")
	assert.Empty(t, lines[3])
}

func TestRenderBoardTruncatesLongTitles(t *testing.T) {
	n := testNode("a", 0, 0)
	n.Title = strings.Repeat("word ", 20)
	lines := renderBoard(60, 12, []canvas.Node{n}, canvas.DefaultView(), "", false).plain()
	assert.Contains(t, lines[1], "…")
	assert.Contains(t, lines[1], "✦ ▾ ✕")
}

func TestRenderBoardDots(t *testing.T) {
	lines := renderBoard(31, 9, nil, canvas.DefaultView(), "", true).plain()
	assert.Equal(t, '+', []rune(lines[0])[0])
	assert.Equal(t, '+', []rune(lines[8])[15])
	assert.Equal(t, '·', []rune(lines[2])[3])
	assert.Empty(t, lines[1])
}

func TestGridWideRunes(t *testing.T) {
	g := newGrid(6, 1)
	g.text(0, 0, 6, "漢字ab", styleBody, "")
	assert.Equal(t, "漢字ab", g.plain()[0])

	g = newGrid(6, 1)
	g.text(0, 0, 3, "漢字", styleBody, "")
	assert.Equal(t, "漢", g.plain()[0], "a wide rune straddling the limit is dropped")

	g.set(-1, 0, 'x', styleBody, "")
	g.set(6, 0, 'x', styleBody, "")
	assert.Equal(t, "漢", g.plain()[0])
}

func TestStyledKeepsText(t *testing.T) {
	n := testNode("a", 0, 0)
	n.Title = "Styled title"
	g := renderBoard(50, 12, []canvas.Node{n}, canvas.DefaultView(), "", true)
	for _, theme := range []canvas.Theme{canvas.ThemeLight, canvas.ThemeDark} {
		lines := g.styled(paletteFor(theme))
		require.Len(t, lines, 12)
		assert.Contains(t, lines[1], "Styled title")
	}
}

func TestWrapText(t *testing.T) {
	assert.Nil(t, wrapText("", 10))
	assert.Nil(t, wrapText("text", 0))
	assert.Equal(t, []string{"the quick", "brown fox"}, wrapText("the quick brown fox", 10))
	assert.Equal(t, []string{"abcde", "fghij"}, wrapText("abcdefghij", 5))
	assert.Equal(t, []string{"one", "", "two"}, wrapText("one\n\ntwo", 10))
}
