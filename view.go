package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"aether/internal/canvas"
)

func (m model) View() string {
	if m.quitting || m.width == 0 {
		return ""
	}
	p := paletteFor(m.ctrl.Theme())

	rows := m.canvasRows()
	board := renderBoard(m.width, rows, m.ctrl.Nodes(), m.ctrl.View(), m.ctrl.Selected(), true).styled(p)
	switch {
	case m.editing != editNone:
		board = overlayBottom(board, m.editorView(p))
	case m.help.ShowAll:
		full := lipgloss.NewStyle().Background(p.cardBg).Padding(0, 1).Width(m.width).
			Render(m.help.FullHelpView(m.keys.FullHelp()))
		board = overlayBottom(board, strings.Split(full, "\n"))
	}

	lines := make([]string, 0, m.height)
	lines = append(lines, m.headerView(p))
	lines = append(lines, board...)
	lines = append(lines, m.toolbarView(p), m.statusView(p))
	return strings.Join(lines, "\n")
}

// overlayBottom replaces the last rows of base with panel.
func overlayBottom(base, panel []string) []string {
	if len(panel) > len(base) {
		panel = panel[len(panel)-len(base):]
	}
	out := append([]string(nil), base[:len(base)-len(panel)]...)
	return append(out, panel...)
}

func (m model) headerView(p palette) string {
	bar := lipgloss.NewStyle().Background(p.bg).Width(m.width)
	brand := lipgloss.NewStyle().Background(p.bg).Foreground(p.chrome).Bold(true).Render(" A E T H E R ")
	sub := lipgloss.NewStyle().Background(p.bg).Foreground(p.muted).Render("│ INFINITE SYNTHESIS")

	right := ""
	if m.ctrl.Processing() {
		right = lipgloss.NewStyle().Background(p.cardBg).Foreground(accents[canvas.ColorBlue]).Bold(true).
			Render(" " + m.spinner.View() + " SYNTHESIZING ")
	}
	left := brand + sub
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return bar.Render(left)
	}
	return bar.Render(left + lipgloss.NewStyle().Background(p.bg).Render(strings.Repeat(" ", gap)) + right)
}

func (m model) toolbarView(p palette) string {
	items := toolbarItems(m.ctrl.View(), m.ctrl.Theme(), m.width)
	button := lipgloss.NewStyle().Background(p.cardBg).Foreground(p.title)
	primary := lipgloss.NewStyle().Background(p.chrome).Foreground(p.cardBg).Bold(true)
	pad := lipgloss.NewStyle().Background(p.bg)

	var b strings.Builder
	x := 0
	for _, it := range items {
		if it.x0 > x {
			b.WriteString(pad.Render(strings.Repeat(" ", it.x0-x)))
		}
		st := button
		if it.action == toolAddNode {
			st = primary
		}
		b.WriteString(st.Render(it.label))
		x = it.x1
	}
	return pad.Width(m.width).Render(b.String())
}

func (m model) statusView(p palette) string {
	if n, ok := m.ctrl.Notice(); ok {
		st := lipgloss.NewStyle().Background(p.errBg).Foreground(p.errFg).Bold(true).Width(m.width)
		if n.Level == canvas.NoticeInfo {
			st = lipgloss.NewStyle().Background(p.cardBg).Foreground(p.title).Width(m.width)
		}
		return st.Render(truncate(" "+n.Message+"  (esc to dismiss)", m.width))
	}

	info := fmt.Sprintf(" %d%% │ %d ideas │ %s", int(math.Round(m.ctrl.View().Scale*100)), len(m.ctrl.Nodes()), m.modeString())
	if m.status != "" {
		info += " │ " + m.status
	}
	st := lipgloss.NewStyle().Background(p.bg).Foreground(p.muted)
	line := info + "   " + m.help.ShortHelpView(m.keys.ShortHelp())
	return st.Width(m.width).Render(truncate(line, m.width))
}

func (m model) modeString() string {
	switch {
	case m.editing == editTitle:
		return "EDIT TITLE"
	case m.editing == editDescription:
		return "EDIT NOTES"
	}
	switch m.ctrl.Mode().Kind {
	case canvas.ModePanning:
		return "PAN"
	case canvas.ModeDragging:
		return "DRAG"
	}
	return "IDLE"
}

func (m model) editorView(p palette) []string {
	frame := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(p.selected).
		Background(p.cardBg).
		Width(max(m.width-2, 1))

	var body, hint string
	switch m.editing {
	case editTitle:
		body = m.titleEdit.View()
		hint = "enter save · tab notes · esc close"
	case editDescription:
		body = m.bodyEdit.View()
		hint = "esc/tab/ctrl+s save"
	}
	hintLine := lipgloss.NewStyle().Foreground(p.muted).Render(hint)
	return strings.Split(frame.Render(body+"\n"+hintLine), "\n")
}

// truncate cuts s, which may carry styling, to width cells.
func truncate(s string, width int) string {
	return ansi.Truncate(s, width, "…")
}
