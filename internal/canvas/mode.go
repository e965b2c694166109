package canvas

// ModeKind is the pointer interaction mode. Exactly one is active at a time.
type ModeKind int

const (
	ModeIdle ModeKind = iota
	ModePanning
	ModeDragging
)

func (k ModeKind) String() string {
	switch k {
	case ModePanning:
		return "panning"
	case ModeDragging:
		return "dragging"
	default:
		return "idle"
	}
}

// Mode is the current interaction mode. NodeID is set only while dragging.
type Mode struct {
	Kind   ModeKind
	NodeID string
}

// TargetKind classifies what a pointer event landed on.
type TargetKind int

const (
	TargetBackground TargetKind = iota
	// TargetNodeBody is a node's chrome: anything that is not a button or
	// a text field.
	TargetNodeBody
	// TargetInteractive is a button or text field inside a node. Pointer-down
	// on it never starts a drag.
	TargetInteractive
)

type Target struct {
	Kind   TargetKind
	NodeID string
}

func Background() Target { return Target{Kind: TargetBackground} }
func NodeBody(id string) Target { return Target{Kind: TargetNodeBody, NodeID: id} }
func Interactive(id string) Target { return Target{Kind: TargetInteractive, NodeID: id} }

type dragAnchor struct {
	pointerStart Position // screen
	nodeStart    Position // world
}
