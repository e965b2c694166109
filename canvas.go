package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"

	"aether/internal/canvas"
)

type cellStyle uint8

const (
	styleBlank cellStyle = iota
	styleDot
	styleCross
	styleCard
	styleBorder
	styleSelected
	styleTitle
	styleBody
	styleMuted
	styleButton
)

type cell struct {
	r     rune // 0 marks the second column of a wide rune
	style cellStyle
	color canvas.Color
}

type grid struct {
	w, h  int
	cells [][]cell
}

func newGrid(w, h int) *grid {
	w, h = max(w, 1), max(h, 1)
	g := &grid{w: w, h: h, cells: make([][]cell, h)}
	for y := range g.cells {
		g.cells[y] = make([]cell, w)
		for x := range g.cells[y] {
			g.cells[y][x] = cell{r: ' '}
		}
	}
	return g
}

func (g *grid) set(x, y int, r rune, style cellStyle, color canvas.Color) {
	if x < 0 || y < 0 || x >= g.w || y >= g.h {
		return
	}
	g.cells[y][x] = cell{r: r, style: style, color: color}
}

// text writes s from (x, y), never past column limit (exclusive). Wide runes
// take two cells and are dropped when they would straddle the limit.
func (g *grid) text(x, y, limit int, s string, style cellStyle, color canvas.Color) {
	for _, r := range s {
		rw := runewidth.RuneWidth(r)
		if rw == 0 {
			continue
		}
		if x+rw > limit {
			return
		}
		g.set(x, y, r, style, color)
		if rw == 2 {
			g.set(x+1, y, 0, style, color)
		}
		x += rw
	}
}

// plain returns the grid as unstyled lines with trailing spaces trimmed.
func (g *grid) plain() []string {
	lines := make([]string, g.h)
	var b strings.Builder
	for y, row := range g.cells {
		b.Reset()
		for _, c := range row {
			if c.r != 0 {
				b.WriteRune(c.r)
			}
		}
		lines[y] = strings.TrimRight(b.String(), " ")
	}
	return lines
}

// styled renders each row as runs of identically styled cells.
func (g *grid) styled(p palette) []string {
	cache := make(map[cell]lipgloss.Style)
	lines := make([]string, g.h)
	var line, run strings.Builder
	for y, row := range g.cells {
		line.Reset()
		run.Reset()
		var cur cell
		flush := func() {
			if run.Len() == 0 {
				return
			}
			st, ok := cache[cur]
			if !ok {
				st = p.style(cur.style, cur.color)
				cache[cur] = st
			}
			line.WriteString(st.Render(run.String()))
			run.Reset()
		}
		for x, c := range row {
			key := cell{style: c.style, color: c.color}
			if x == 0 || key != cur {
				flush()
				cur = key
			}
			if c.r != 0 {
				run.WriteRune(c.r)
			}
		}
		flush()
		lines[y] = line.String()
	}
	return lines
}

// Theme palette

type palette struct {
	bg, cardBg      lipgloss.Color
	dot, cross      lipgloss.Color
	title, body     lipgloss.Color
	muted, selected lipgloss.Color
	chrome          lipgloss.Color
	errFg, errBg    lipgloss.Color
}

var accents = map[canvas.Color]lipgloss.Color{
	canvas.ColorBlue:    "#3b82f6",
	canvas.ColorPurple:  "#a855f7",
	canvas.ColorEmerald: "#10b981",
	canvas.ColorRose:    "#f43f5e",
}

func paletteFor(theme canvas.Theme) palette {
	if theme == canvas.ThemeDark {
		return palette{
			bg: "#0a0a0a", cardBg: "#18181b",
			dot: "#262626", cross: "#404040",
			title: "#e2e8f0", body: "#94a3b8",
			muted: "#52525b", selected: "#0d99ff",
			chrome: "#ffffff",
			errFg: "#fecaca", errBg: "#7f1d1d",
		}
	}
	return palette{
		bg: "#f8fafc", cardBg: "#ffffff",
		dot: "#d1d5db", cross: "#9ca3af",
		title: "#1e293b", body: "#475569",
		muted: "#94a3b8", selected: "#0d99ff",
		chrome: "#0f172a",
		errFg: "#7f1d1d", errBg: "#fee2e2",
	}
}

func (p palette) style(s cellStyle, c canvas.Color) lipgloss.Style {
	base := lipgloss.NewStyle().Background(p.cardBg)
	switch s {
	case styleDot:
		return lipgloss.NewStyle().Background(p.bg).Foreground(p.dot)
	case styleCross:
		return lipgloss.NewStyle().Background(p.bg).Foreground(p.cross)
	case styleBorder:
		return base.Foreground(accents[c])
	case styleSelected:
		return base.Foreground(p.selected).Bold(true)
	case styleTitle:
		return base.Foreground(p.title).Bold(true)
	case styleBody:
		return base.Foreground(p.body)
	case styleMuted:
		return base.Foreground(p.muted).Italic(true)
	case styleButton:
		return base.Foreground(accents[c])
	case styleCard:
		return base
	}
	return lipgloss.NewStyle().Background(p.bg)
}

// Drawing

// drawBackground lays the dot grid: a dot every 24 screen units and a cross
// every 120, fixed to the screen rather than the world.
func drawBackground(g *grid) {
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			switch {
			case x%15 == 0 && y%8 == 0:
				g.set(x, y, '+', styleCross, "")
			case x%3 == 0 && y%2 == 0:
				g.set(x, y, '·', styleDot, "")
			}
		}
	}
}

type borderSet struct {
	tl, tr, bl, br, h, v rune
}

var (
	roundBorder = borderSet{'╭', '╮', '╰', '╯', '─', '│'}
	heavyBorder = borderSet{'┏', '┓', '┗', '┛', '━', '┃'}
)

func drawCard(g *grid, c card, lineage string) {
	b := c.bounds
	right, bottom := b.X+b.W-1, b.Y+b.H-1
	n := c.node

	border, bs := roundBorder, styleBorder
	if c.selected {
		border, bs = heavyBorder, styleSelected
	}

	for y := b.Y; y <= bottom; y++ {
		for x := b.X; x <= right; x++ {
			switch {
			case y == b.Y && x == b.X:
				g.set(x, y, border.tl, bs, n.Color)
			case y == b.Y && x == right:
				g.set(x, y, border.tr, bs, n.Color)
			case y == bottom && x == b.X:
				g.set(x, y, border.bl, bs, n.Color)
			case y == bottom && x == right:
				g.set(x, y, border.br, bs, n.Color)
			case y == b.Y || y == bottom:
				g.set(x, y, border.h, bs, n.Color)
			case x == b.X || x == right:
				g.set(x, y, border.v, bs, n.Color)
			default:
				g.set(x, y, ' ', styleCard, n.Color)
			}
		}
	}

	// Header: title, then the expand / collapse / delete buttons.
	header := b.Y + 1
	title := n.Title
	if title == "" {
		title = "Untitled"
	}
	titleLimit := right - 7
	g.text(b.X+2, header, titleLimit, runewidth.Truncate(title, titleLimit-b.X-2, "…"), styleTitle, n.Color)
	chevron := '▾'
	if n.IsCollapsed {
		chevron = '▸'
	}
	g.set(right-6, header, '✦', styleButton, n.Color)
	g.set(right-4, header, chevron, styleButton, n.Color)
	g.set(right-2, header, '✕', styleButton, n.Color)

	if n.IsCollapsed {
		return
	}

	lastBody := bottom - 1
	if lineage != "" {
		g.text(b.X+2, lastBody, right-1, runewidth.Truncate("↳ "+lineage, right-b.X-3, "…"), styleMuted, n.Color)
		lastBody--
	}
	width := right - b.X - 3
	if width <= 0 {
		return
	}
	lines := wrapText(n.Description, width)
	for i, line := range lines {
		y := header + 1 + i
		if y > lastBody {
			break
		}
		g.text(b.X+2, y, right-1, line, styleBody, n.Color)
	}
}

// wrapText word-wraps s to width columns, hard-breaking words that are
// longer than a line.
func wrapText(s string, width int) []string {
	if s == "" || width <= 0 {
		return nil
	}
	wrapped := wrap.String(wordwrap.String(s, width), width)
	return strings.Split(wrapped, "\n")
}

// renderBoard paints the background and every card onto a fresh grid.
func renderBoard(w, h int, nodes []canvas.Node, view canvas.ViewState, selectedID string, dots bool) *grid {
	g := newGrid(w, h)
	if dots {
		drawBackground(g)
	}
	mm := newMindMap(nodes)
	for _, c := range layoutCards(nodes, view, selectedID) {
		if c.bounds.X >= g.w || c.bounds.Y >= g.h || c.bounds.X+c.bounds.W <= 0 || c.bounds.Y+c.bounds.H <= 0 {
			continue
		}
		drawCard(g, c, mm.parentLabel(c.node))
	}
	return g
}
