package main

import (
	"fmt"
	"math"

	"aether/internal/canvas"
)

type rect struct {
	X, Y, W, H int
}

func (r rect) contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// card is a node projected onto the cell grid. Bounds are in canvas cells,
// row 0 being the first row under the header.
type card struct {
	node     canvas.Node
	bounds   rect
	selected bool
}

func (c card) right() int { return c.bounds.X + c.bounds.W - 1 }

// buttonAt reports which header button, if any, sits at cell (x, y).
func (c card) buttonAt(x, y int) cardButton {
	if y != c.bounds.Y+1 {
		return buttonNone
	}
	switch c.right() - x {
	case 6:
		return buttonExpand
	case 4:
		return buttonCollapse
	case 2:
		return buttonDelete
	}
	return buttonNone
}

// onTitle reports whether (x, y) is on the card's title row but not on a button.
func (c card) onTitle(x, y int) bool {
	return y == c.bounds.Y+1 && c.buttonAt(x, y) == buttonNone
}

// cardBounds projects a node through the view. Cards never shrink below a
// readable size, so at low zoom they overlap more than the world rects do.
func cardBounds(n canvas.Node, view canvas.ViewState) rect {
	sp := canvas.ToScreen(n.Position, view)
	cols := int(math.Round(n.Width * view.Scale / cellWidth))
	rows := int(math.Round(n.Height * view.Scale / cellHeight))
	cols = max(cols, minCardCols)
	rows = max(rows, minCardRows)
	if n.IsCollapsed {
		rows = collapsedRows
	}
	return rect{
		X: int(math.Floor(sp.X / cellWidth)),
		Y: int(math.Floor(sp.Y / cellHeight)),
		W: cols,
		H: rows,
	}
}

// layoutCards returns the cards in paint order: collection order, with the
// selected node last so it sits on top.
func layoutCards(nodes []canvas.Node, view canvas.ViewState, selectedID string) []card {
	cards := make([]card, 0, len(nodes))
	var top *card
	for _, n := range nodes {
		c := card{node: n, bounds: cardBounds(n, view), selected: n.ID == selectedID}
		if c.selected {
			top = &c
			continue
		}
		cards = append(cards, c)
	}
	if top != nil {
		cards = append(cards, *top)
	}
	return cards
}

// hitTest classifies the cell under the pointer, topmost card first.
func hitTest(cards []card, x, y int) (canvas.Target, cardButton) {
	for i := len(cards) - 1; i >= 0; i-- {
		c := cards[i]
		if !c.bounds.contains(x, y) {
			continue
		}
		if b := c.buttonAt(x, y); b != buttonNone {
			return canvas.Interactive(c.node.ID), b
		}
		return canvas.NodeBody(c.node.ID), buttonNone
	}
	return canvas.Background(), buttonNone
}

func findCard(cards []card, id string) (card, bool) {
	for _, c := range cards {
		if c.node.ID == id {
			return c, true
		}
	}
	return card{}, false
}

// cellCenter maps a canvas cell to the screen point at its center.
func cellCenter(x, y int) canvas.Position {
	return canvas.Position{
		X: float64(x)*cellWidth + cellWidth/2,
		Y: float64(y)*cellHeight + cellHeight/2,
	}
}

// Toolbar

type toolbarItem struct {
	label  string
	action toolbarAction
	x0, x1 int // columns, x1 exclusive
}

func toolbarItems(view canvas.ViewState, theme canvas.Theme, width int) []toolbarItem {
	themeLabel := "[dark]"
	if theme == canvas.ThemeDark {
		themeLabel = "[light]"
	}
	items := []toolbarItem{
		{label: "[+ Idea]", action: toolAddNode},
		{label: "[-]", action: toolZoomOut},
		{label: fmt.Sprintf("[%d%%]", int(math.Round(view.Scale*100))), action: toolNone},
		{label: "[+]", action: toolZoomIn},
		{label: "[reset]", action: toolReset},
		{label: themeLabel, action: toolTheme},
	}

	total := len(items) - 1
	for _, it := range items {
		total += len([]rune(it.label))
	}
	x := max((width-total)/2, 0)
	for i := range items {
		items[i].x0 = x
		x += len([]rune(items[i].label))
		items[i].x1 = x
		x++
	}
	return items
}

func toolbarHit(items []toolbarItem, x int) toolbarAction {
	for _, it := range items {
		if x >= it.x0 && x < it.x1 {
			return it.action
		}
	}
	return toolNone
}
