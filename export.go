package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"

	"aether/internal/canvas"
)

var (
	errNothingToExport = errors.New("nothing to export")
	errExportFormat    = errors.New("unsupported export format (want .png or .txt)")
)

const (
	exportPadding   = 48.0
	exportMaxPixels = 8192.0
	pngHeaderHeight = 48.0
	pngCornerRadius = 16.0

	pngDotSpacing = 24.0 // output pixels
	pngMaxDots    = 200  // per axis
)

// dotStep is the world distance between grid dots for a board spanning
// span world units drawn at scale. Dots stay pngDotSpacing pixels apart in
// the image and never exceed pngMaxDots along an axis.
func dotStep(span, scale float64) float64 {
	return math.Max(pngDotSpacing/scale, span/pngMaxDots)
}

// worldBounds is the smallest rect holding every node, collapsed nodes
// counting only their header.
func worldBounds(nodes []canvas.Node) (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, n := range nodes {
		h := n.Height
		if n.IsCollapsed {
			h = pngHeaderHeight
		}
		minX = math.Min(minX, n.Position.X)
		minY = math.Min(minY, n.Position.Y)
		maxX = math.Max(maxX, n.Position.X+n.Width)
		maxY = math.Max(maxY, n.Position.Y+h)
	}
	return minX, minY, maxX, maxY
}

// fitView returns a transform that shows every node inside viewport, never
// zooming in past 100%.
func fitView(nodes []canvas.Node, viewport canvas.Size) canvas.ViewState {
	if len(nodes) == 0 || viewport.Width <= 0 || viewport.Height <= 0 {
		return canvas.ResetView(viewport)
	}
	minX, minY, maxX, maxY := worldBounds(nodes)
	w := maxX - minX + 2*exportPadding
	h := maxY - minY + 2*exportPadding
	scale := canvas.ClampScale(math.Min(1, math.Min(viewport.Width/w, viewport.Height/h)))

	// Center the bounds.
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	return canvas.ViewState{
		Offset: canvas.Position{X: viewport.Width/2 - cx*scale, Y: viewport.Height/2 - cy*scale},
		Scale:  scale,
	}
}

// exportBoard writes nodes to path, picking the format from the extension.
func exportBoard(path string, nodes []canvas.Node, theme canvas.Theme) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return exportPNG(path, nodes, theme)
	case ".txt":
		return exportText(path, nodes, exportCols, exportRows)
	}
	return fmt.Errorf("%s: %w", path, errExportFormat)
}

// exportText writes the board as it would look on a cols x rows terminal
// fitted to the whole board, without colors or the dot grid.
func exportText(path string, nodes []canvas.Node, cols, rows int) error {
	if len(nodes) == 0 {
		return errNothingToExport
	}
	viewport := canvas.Size{Width: float64(cols) * cellWidth, Height: float64(rows) * cellHeight}
	g := renderBoard(cols, rows, nodes, fitView(nodes, viewport), "", false)

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()
	for _, line := range g.plain() {
		if _, err := fmt.Fprintln(file, line); err != nil {
			return err
		}
	}
	return nil
}

// exportPNG draws the board in world units: one pixel per world unit, scaled
// down only when the board would exceed exportMaxPixels on a side.
func exportPNG(path string, nodes []canvas.Node, theme canvas.Theme) error {
	if len(nodes) == 0 {
		return errNothingToExport
	}
	minX, minY, maxX, maxY := worldBounds(nodes)
	minX -= exportPadding
	minY -= exportPadding
	maxX += exportPadding
	maxY += exportPadding

	scale := math.Min(1, exportMaxPixels/math.Max(maxX-minX, maxY-minY))
	imageWidth := int(math.Ceil((maxX - minX) * scale))
	imageHeight := int(math.Ceil((maxY - minY) * scale))

	dc := gg.NewContext(imageWidth, imageHeight)
	p := paletteFor(theme)
	dc.SetHexColor(string(p.bg))
	dc.Clear()
	dc.Scale(scale, scale)
	dc.Translate(-minX, -minY)

	dc.SetHexColor(string(p.dot))
	step := dotStep(math.Max(maxX-minX, maxY-minY), scale)
	for x := math.Floor(minX/step) * step; x < maxX; x += step {
		for y := math.Floor(minY/step) * step; y < maxY; y += step {
			dc.DrawCircle(x, y, 1/scale)
		}
	}
	dc.Fill()

	ttf, err := truetype.Parse(gomono.TTF)
	if err != nil {
		return fmt.Errorf("failed to parse font: %w", err)
	}
	titleFace := truetype.NewFace(ttf, &truetype.Options{Size: 13, DPI: 72, Hinting: font.HintingFull})
	bodyFace := truetype.NewFace(ttf, &truetype.Options{Size: 12, DPI: 72, Hinting: font.HintingFull})

	mm := newMindMap(nodes)

	// Lineage first so cards sit on top of their links.
	dc.SetLineWidth(2)
	dc.SetHexColor(string(p.cross))
	for _, e := range mm.edges() {
		parent, child := e[0], e[1]
		x1, y1 := parent.Position.X+parent.Width, parent.Position.Y+pngHeaderHeight/2
		x2, y2 := child.Position.X, child.Position.Y+pngHeaderHeight/2
		mid := (x1 + x2) / 2
		dc.MoveTo(x1, y1)
		dc.CubicTo(mid, y1, mid, y2, x2, y2)
		dc.Stroke()
	}

	for _, n := range nodes {
		drawNodePNG(dc, n, p, titleFace, bodyFace, mm.parentLabel(n))
	}
	return dc.SavePNG(path)
}

func drawNodePNG(dc *gg.Context, n canvas.Node, p palette, titleFace, bodyFace font.Face, lineage string) {
	x, y, w, h := n.Position.X, n.Position.Y, n.Width, n.Height
	if n.IsCollapsed {
		h = pngHeaderHeight
	}

	dc.SetHexColor(string(p.cardBg))
	dc.DrawRoundedRectangle(x, y, w, h, pngCornerRadius)
	dc.Fill()
	dc.SetLineWidth(1.5)
	dc.SetHexColor(string(accents[n.Color]))
	dc.DrawRoundedRectangle(x, y, w, h, pngCornerRadius)
	dc.Stroke()

	title := n.Title
	if title == "" {
		title = "Untitled"
	}
	dc.SetFontFace(titleFace)
	dc.SetHexColor(string(p.title))
	dc.DrawStringAnchored(title, x+16, y+pngHeaderHeight/2, 0, 0.35)
	if n.IsCollapsed {
		return
	}

	dc.SetFontFace(bodyFace)
	dc.SetHexColor(string(p.body))
	lineHeight := dc.FontHeight() * 1.5
	bottom := y + h - 12
	if lineage != "" {
		bottom -= lineHeight
	}
	ty := y + pngHeaderHeight + lineHeight/2
	for _, para := range strings.Split(n.Description, "\n") {
		for _, line := range dc.WordWrap(para, w-32) {
			if ty > bottom {
				break
			}
			dc.DrawString(line, x+16, ty)
			ty += lineHeight
		}
	}

	if lineage != "" {
		dc.SetHexColor(string(p.muted))
		dc.DrawString("from: "+lineage, x+16, y+h-16)
	}
}
