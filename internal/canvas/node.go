package canvas

import (
	"math/rand"

	"github.com/google/uuid"
)

const (
	DefaultWidth  = 320
	DefaultHeight = 180
	DefaultTitle  = "New Idea"

	// Children produced by an expansion are placed this far to the right of
	// their source, one row per branch.
	BranchOffsetX = 400
	BranchSpacing = 220
)

// Color is a palette tag. Rendering decides what it looks like.
type Color string

const (
	ColorBlue    Color = "blue"
	ColorPurple  Color = "purple"
	ColorEmerald Color = "emerald"
	ColorRose    Color = "rose"
)

// Palette lists the colors new nodes are drawn from.
var Palette = []Color{ColorBlue, ColorPurple, ColorEmerald, ColorRose}

// Node is a card on the board. Position is in world space.
type Node struct {
	ID          string   `json:"id" validate:"required"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Position    Position `json:"position"`
	Color       Color    `json:"color" validate:"oneof=blue purple emerald rose"`
	Width       float64  `json:"width" validate:"gt=0"`
	Height      float64  `json:"height" validate:"gt=0"`
	IsCollapsed bool     `json:"isCollapsed"`
	// ParentID points at the node this one was expanded from. It is only
	// used for display and may reference a node that no longer exists.
	ParentID string `json:"parentId,omitempty"`
}

// NodePatch is a partial update of a Node. Nil fields are left untouched.
type NodePatch struct {
	Title       *string
	Description *string
	Position    *Position
	Color       *Color
	Width       *float64
	Height      *float64
	IsCollapsed *bool
}

// Apply returns n with every non-nil field of p merged in.
func (n Node) Apply(p NodePatch) Node {
	if p.Title != nil {
		n.Title = *p.Title
	}
	if p.Description != nil {
		n.Description = *p.Description
	}
	if p.Position != nil {
		n.Position = *p.Position
	}
	if p.Color != nil {
		n.Color = *p.Color
	}
	if p.Width != nil && *p.Width > 0 {
		n.Width = *p.Width
	}
	if p.Height != nil && *p.Height > 0 {
		n.Height = *p.Height
	}
	if p.IsCollapsed != nil {
		n.IsCollapsed = *p.IsCollapsed
	}
	return n
}

// Patch helpers for call sites that only change one field.

func TitlePatch(title string) NodePatch { return NodePatch{Title: &title} }
func DescriptionPatch(description string) NodePatch { return NodePatch{Description: &description} }
func PositionPatch(worldPos Position) NodePatch { return NodePatch{Position: &worldPos} }

// IDGenerator produces fresh node ids.
type IDGenerator func() string

// NewID returns a random UUID string.
func NewID() string {
	return uuid.NewString()
}

// RandomColor picks a palette color using r.
func RandomColor(r *rand.Rand) Color {
	return Palette[r.Intn(len(Palette))]
}

// SeedNode is the welcome card shown on an empty board.
func SeedNode() Node {
	return Node{
		ID:    "1",
		Title: "The Aether Canvas",
		Description: "Think without borders. Explore without limits.\n\n" +
			"• Double-click anywhere to create a new fragment\n" +
			"• Use the ✦ button to expand a seed into branches\n" +
			"• Drag the background to move the world\n" +
			"• Scroll to navigate depth",
		Position: Position{},
		Color:    ColorBlue,
		Width:    340,
		Height:   DefaultHeight,
	}
}

// Branch is one suggestion returned by an expansion.
type Branch struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// BranchPosition returns the world position of child i out of n for a source
// node at sourcePos. Children fan out vertically, centered on the source row.
func BranchPosition(sourcePos Position, i, n int) Position {
	return Position{
		X: sourcePos.X + BranchOffsetX,
		Y: sourcePos.Y + float64(i-n/2)*BranchSpacing,
	}
}
