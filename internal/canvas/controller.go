package canvas

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

var ErrNoExpander = errors.New("no expander configured")

// Expander turns a node's text into branch suggestions.
type Expander interface {
	Expand(ctx context.Context, title, description string) ([]Branch, error)
}

// Persister stores the board. SaveNodes always receives the full collection.
type Persister interface {
	SaveNodes(nodes []Node) error
	SaveTheme(theme Theme) error
}

type Options struct {
	// Nodes is the loaded collection. An empty slice seeds the welcome node.
	Nodes     []Node
	Viewport  Size
	Theme     Theme
	Expander  Expander
	Persister Persister
	Logger    *zap.Logger
	NewID     IDGenerator
	Rand      *rand.Rand
}

// Controller owns the board state for one session and is the only thing that
// mutates it. It is not safe for concurrent use; all calls are expected to
// come from the UI event loop.
type Controller struct {
	store    *Store
	view     ViewState
	viewport Size
	theme    Theme

	mode       Mode
	selectedID string
	drag       dragAnchor
	dragMoved  bool
	panAnchor  Position // screen

	inFlight int
	notice   *Notification

	expander  Expander
	persister Persister
	logger    *zap.Logger
	newID     IDGenerator
	rnd       *rand.Rand
}

func NewController(opts Options) *Controller {
	c := &Controller{
		viewport:  opts.Viewport,
		theme:     opts.Theme,
		expander:  opts.Expander,
		persister: opts.Persister,
		logger:    opts.Logger,
		newID:     opts.NewID,
		rnd:       opts.Rand,
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.newID == nil {
		c.newID = NewID
	}
	if c.rnd == nil {
		c.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if c.theme == "" {
		c.theme = ThemeLight
	}

	nodes := opts.Nodes
	if len(nodes) == 0 {
		nodes = []Node{SeedNode()}
	}
	c.store = NewStore(nodes)
	c.store.OnChange = c.persist
	c.view = ResetView(c.viewport)
	return c
}

func (c *Controller) persist(nodes []Node) {
	if c.persister == nil {
		return
	}
	if err := c.persister.SaveNodes(nodes); err != nil {
		c.logger.Error("saving board failed", zap.Error(err), zap.Int("nodes", len(nodes)))
		c.notify(NoticeError, fmt.Sprintf("Could not save board: %v", err))
	}
}

func (c *Controller) notify(level NoticeLevel, msg string) {
	c.notice = &Notification{Level: level, Message: msg}
}

// Accessors used by the presentation layer.

func (c *Controller) Nodes() []Node { return c.store.Nodes() }
func (c *Controller) Node(id string) (Node, bool) { return c.store.Find(id) }
func (c *Controller) Children(id string) []Node { return c.store.Children(id) }
func (c *Controller) View() ViewState { return c.view }
func (c *Controller) Viewport() Size { return c.viewport }
func (c *Controller) Mode() Mode { return c.mode }
func (c *Controller) Selected() string { return c.selectedID }
func (c *Controller) Theme() Theme { return c.theme }
func (c *Controller) Processing() bool { return c.inFlight > 0 }

// Notice returns the pending notification, if any.
func (c *Controller) Notice() (Notification, bool) {
	if c.notice == nil {
		return Notification{}, false
	}
	return *c.notice, true
}

func (c *Controller) DismissNotice() {
	c.notice = nil
}

// Select marks id as selected. An unknown id clears the selection.
func (c *Controller) Select(id string) {
	if _, ok := c.store.Find(id); !ok {
		id = ""
	}
	c.selectedID = id
}

func (c *Controller) ToggleTheme() {
	c.theme = c.theme.Toggle()
	if c.persister == nil {
		return
	}
	if err := c.persister.SaveTheme(c.theme); err != nil {
		c.logger.Warn("saving theme failed", zap.Error(err))
	}
}

// Viewport

func (c *Controller) SetViewport(size Size) {
	c.viewport = size
}

// SetView replaces the transform, clamping its scale.
func (c *Controller) SetView(view ViewState) {
	view.Scale = ClampScale(view.Scale)
	c.view = view
}

func (c *Controller) ZoomIn() { c.view = StepZoom(c.view, ZoomIn) }
func (c *Controller) ZoomOut() { c.view = StepZoom(c.view, ZoomOut) }

func (c *Controller) ResetView() {
	c.view = ResetView(c.viewport)
}

// Wheel zooms toward the pointer.
func (c *Controller) Wheel(screenPos Position, deltaY float64) {
	c.view = ZoomAt(screenPos, c.view, WheelFactor(deltaY))
}

// PanBy translates the view by a screen-space delta.
func (c *Controller) PanBy(screenDelta Position) {
	c.view.Offset = c.view.Offset.Add(screenDelta)
}

// Pointer

// PointerDown starts panning on the background or dragging on a node body.
// It is ignored while another interaction is in progress.
func (c *Controller) PointerDown(screenPos Position, target Target) {
	if c.mode.Kind != ModeIdle {
		return
	}
	switch target.Kind {
	case TargetBackground:
		c.mode = Mode{Kind: ModePanning}
		c.panAnchor = screenPos.Sub(c.view.Offset)
		c.selectedID = ""
	case TargetNodeBody:
		node, ok := c.store.Find(target.NodeID)
		if !ok {
			return
		}
		c.mode = Mode{Kind: ModeDragging, NodeID: node.ID}
		c.selectedID = node.ID
		c.drag = dragAnchor{pointerStart: screenPos, nodeStart: node.Position}
		c.dragMoved = false
	}
}

// PointerMove applies the current pan or drag for a pointer at screenPos.
func (c *Controller) PointerMove(screenPos Position) {
	switch c.mode.Kind {
	case ModePanning:
		c.view.Offset = screenPos.Sub(c.panAnchor)
	case ModeDragging:
		worldDelta := screenPos.Sub(c.drag.pointerStart).Scale(1 / c.view.Scale)
		worldPos := c.drag.nodeStart.Add(worldDelta)
		ok := c.store.UpdateQuiet(c.mode.NodeID, func(n Node) Node {
			return n.Apply(PositionPatch(worldPos))
		})
		if !ok {
			c.mode = Mode{}
			return
		}
		c.dragMoved = true
	}
}

// PointerUp ends any pan or drag. A drag that moved its node is persisted
// once here rather than on every frame.
func (c *Controller) PointerUp() {
	if c.mode.Kind == ModeDragging && c.dragMoved {
		c.store.Commit()
	}
	c.mode = Mode{}
	c.dragMoved = false
}

// PointerLeave behaves like PointerUp.
func (c *Controller) PointerLeave() {
	c.PointerUp()
}

// DoubleClick on the background creates a node under the pointer.
func (c *Controller) DoubleClick(screenPos Position, target Target) {
	if target.Kind != TargetBackground {
		return
	}
	worldPos := ToWorld(screenPos, c.view)
	c.AddNode(&worldPos)
}

// Node lifecycle

// AddNode creates a default node at worldPos, or at the viewport center when
// worldPos is nil, and selects it.
func (c *Controller) AddNode(worldPos *Position) Node {
	return c.AddNodeWithText(worldPos, DefaultTitle, "")
}

func (c *Controller) AddNodeWithText(worldPos *Position, title, description string) Node {
	pos := ToWorld(c.viewport.Center(), c.view)
	if worldPos != nil {
		pos = *worldPos
	}
	node := Node{
		ID:          c.newID(),
		Title:       title,
		Description: description,
		Position:    pos,
		Color:       RandomColor(c.rnd),
		Width:       DefaultWidth,
		Height:      DefaultHeight,
	}
	c.store.Append(node)
	c.selectedID = node.ID
	c.logger.Debug("node added", zap.String("id", node.ID))
	return node
}

// UpdateNode merges patch into the node. Unknown ids are ignored.
func (c *Controller) UpdateNode(id string, patch NodePatch) {
	c.store.Update(id, func(n Node) Node { return n.Apply(patch) })
}

// DeleteNode removes the node. Children keep their ParentID.
func (c *Controller) DeleteNode(id string) {
	if !c.store.Remove(id) {
		return
	}
	if c.selectedID == id {
		c.selectedID = ""
	}
	if c.mode.Kind == ModeDragging && c.mode.NodeID == id {
		c.mode = Mode{}
	}
	c.logger.Debug("node deleted", zap.String("id", id))
}

func (c *Controller) ToggleCollapse(id string) {
	c.store.Update(id, func(n Node) Node {
		n.IsCollapsed = !n.IsCollapsed
		return n
	})
}

// Expansion

// ExpandRequest captures the source node at the moment expansion started.
type ExpandRequest struct {
	Source Node
}

// BeginExpand marks an expansion of id as in flight. It returns false, and
// changes nothing, when the node does not exist.
func (c *Controller) BeginExpand(id string) (ExpandRequest, bool) {
	node, ok := c.store.Find(id)
	if !ok {
		return ExpandRequest{}, false
	}
	c.inFlight++
	c.logger.Info("expansion started", zap.String("id", id))
	return ExpandRequest{Source: node}, true
}

// FinishExpand applies the outcome of an expansion started with BeginExpand.
// On error the collection is left untouched and a notification is raised.
func (c *Controller) FinishExpand(req ExpandRequest, branches []Branch, err error) []Node {
	if c.inFlight > 0 {
		c.inFlight--
	}
	if err != nil {
		c.logger.Warn("expansion failed", zap.String("id", req.Source.ID), zap.Error(err))
		c.notify(NoticeError, fmt.Sprintf("Expansion failed: %v", err))
		return nil
	}

	src := req.Source
	children := make([]Node, 0, len(branches))
	for i, b := range branches {
		children = append(children, Node{
			ID:          c.newID(),
			Title:       b.Title,
			Description: b.Description,
			Position:    BranchPosition(src.Position, i, len(branches)),
			Color:       src.Color,
			Width:       DefaultWidth,
			Height:      DefaultHeight,
			ParentID:    src.ID,
		})
	}
	c.store.Append(children...)
	c.logger.Info("expansion finished", zap.String("id", src.ID), zap.Int("branches", len(children)))
	return children
}

// Expand runs a full expansion synchronously.
func (c *Controller) Expand(ctx context.Context, id string) error {
	req, ok := c.BeginExpand(id)
	if !ok {
		return nil
	}
	if c.expander == nil {
		c.FinishExpand(req, nil, ErrNoExpander)
		return ErrNoExpander
	}
	branches, err := c.expander.Expand(ctx, req.Source.Title, req.Source.Description)
	c.FinishExpand(req, branches, err)
	return err
}

// Expander returns the configured expander, which may be nil.
func (c *Controller) Expander() Expander {
	return c.expander
}
