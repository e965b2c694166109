package main

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"aether/internal/canvas"
)

// handlePan moves the view with the arrow keys. The world slides the
// opposite way to the key so the arrow reads as "look that way".
func (m *model) handlePan(msg tea.KeyMsg) bool {
	dx := panStepCols * cellWidth
	dy := panStepCols / 2 * cellHeight
	var delta canvas.Position
	switch {
	case key.Matches(msg, m.keys.Left):
		delta.X = dx
	case key.Matches(msg, m.keys.Right):
		delta.X = -dx
	case key.Matches(msg, m.keys.Up):
		delta.Y = dy
	case key.Matches(msg, m.keys.Down):
		delta.Y = -dy
	default:
		return false
	}
	m.ctrl.PanBy(delta)
	return true
}

// selectNext moves the selection to the next node in collection order.
func (m *model) selectNext() {
	nodes := m.ctrl.Nodes()
	if len(nodes) == 0 {
		return
	}
	next := 0
	for i, n := range nodes {
		if n.ID == m.ctrl.Selected() {
			next = (i + 1) % len(nodes)
			break
		}
	}
	m.ctrl.Select(nodes[next].ID)
}
