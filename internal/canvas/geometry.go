// Package canvas holds the headless core of the idea board: the viewport
// transform, the node collection and the interaction controller that turns
// pointer events into mutations of both.
package canvas

import "math"

const (
	MinScale = 0.1
	MaxScale = 3.0

	// ZoomStep is the factor applied by the toolbar zoom buttons.
	ZoomStep = 1.2

	// WheelBase is raised to -deltaY to turn a scroll delta into a zoom factor.
	WheelBase = 1.001
)

// Position is a point in either world or screen space. The space is carried
// by the name of the variable holding it, never by the type.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Position) Add(o Position) Position { return Position{X: p.X + o.X, Y: p.Y + o.Y} }
func (p Position) Sub(o Position) Position { return Position{X: p.X - o.X, Y: p.Y - o.Y} }

func (p Position) Scale(f float64) Position { return Position{X: p.X * f, Y: p.Y * f} }

// Size is a width/height pair in screen units.
type Size struct {
	Width  float64
	Height float64
}

// Center returns the middle of a viewport of this size, in screen space.
func (s Size) Center() Position {
	return Position{X: s.Width / 2, Y: s.Height / 2}
}

// ViewState is the world-to-screen transform: screen = world*Scale + Offset.
type ViewState struct {
	Offset Position // screen-space position of world (0,0)
	Scale  float64
}

// DefaultView is the identity transform.
func DefaultView() ViewState {
	return ViewState{Scale: 1.0}
}

// ClampScale keeps s within [MinScale, MaxScale].
func ClampScale(s float64) float64 {
	return math.Min(math.Max(s, MinScale), MaxScale)
}

// ToWorld converts a screen-space point to world space.
func ToWorld(screenPos Position, view ViewState) Position {
	return screenPos.Sub(view.Offset).Scale(1 / view.Scale)
}

// ToScreen converts a world-space point to screen space.
func ToScreen(worldPos Position, view ViewState) Position {
	return worldPos.Scale(view.Scale).Add(view.Offset)
}

// ZoomAt multiplies the scale by factor (clamped) while keeping the world
// point under screenAnchor fixed on screen.
func ZoomAt(screenAnchor Position, view ViewState, factor float64) ViewState {
	newScale := ClampScale(view.Scale * factor)
	worldAnchor := ToWorld(screenAnchor, view)
	return ViewState{
		Scale:  newScale,
		Offset: screenAnchor.Sub(worldAnchor.Scale(newScale)),
	}
}

// ZoomDirection selects StepZoom's direction.
type ZoomDirection int

const (
	ZoomOut ZoomDirection = iota
	ZoomIn
)

// StepZoom applies one toolbar zoom step. The offset is left alone.
func StepZoom(view ViewState, dir ZoomDirection) ViewState {
	if dir == ZoomIn {
		view.Scale = ClampScale(view.Scale * ZoomStep)
	} else {
		view.Scale = ClampScale(view.Scale / ZoomStep)
	}
	return view
}

// ResetView returns scale 1 with world origin placed so that a default card
// anchored there sits in the middle of the viewport.
func ResetView(viewport Size) ViewState {
	return ViewState{
		Scale: 1.0,
		Offset: Position{
			X: viewport.Width/2 - DefaultWidth/2,
			Y: viewport.Height/2 - DefaultHeight/2,
		},
	}
}

// WheelFactor maps a wheel delta to a multiplicative zoom factor. The response
// is exponential so that scroll speed translates proportionally to zoom speed.
func WheelFactor(deltaY float64) float64 {
	return math.Pow(WheelBase, -deltaY)
}
