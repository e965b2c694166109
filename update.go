package main

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"aether/internal/canvas"
)

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		first := m.width == 0 && m.height == 0
		m.width, m.height = msg.Width, msg.Height
		m.ctrl.SetViewport(m.viewportSize())
		if first {
			m.ctrl.ResetView()
		}
		m.help.Width = msg.Width
		m.titleEdit.Width = max(msg.Width-12, 10)
		m.bodyEdit.SetWidth(max(msg.Width-4, 10))
		return m, nil

	case tea.BlurMsg:
		m.ctrl.PointerLeave()
		m.commitEdit()
		return m, nil

	case expandDoneMsg:
		m.ctrl.FinishExpand(msg.req, msg.branches, msg.err)
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.Processing() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.editing != editNone {
			return m.handleEditKey(msg)
		}
		return m.handleKey(msg)
	}

	// Cursor blink and other editor housekeeping.
	return m.updateEditor(msg)
}

// canvasRows is the height of the board area between header and toolbar.
func (m model) canvasRows() int {
	return max(m.height-headerRows-footerRows, 1)
}

func (m model) viewportSize() canvas.Size {
	return canvas.Size{
		Width:  float64(m.width) * cellWidth,
		Height: float64(m.canvasRows()) * cellHeight,
	}
}

// Mouse

func (m model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	row := msg.Y - headerRows
	inCanvas := row >= 0 && row < m.canvasRows()
	pos := cellCenter(msg.X, row)

	switch msg.Action {
	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			if inCanvas {
				m.ctrl.Wheel(pos, -wheelDelta)
			}
		case tea.MouseButtonWheelDown:
			if inCanvas {
				m.ctrl.Wheel(pos, wheelDelta)
			}
		case tea.MouseButtonLeft:
			return m.handleLeftPress(msg.X, msg.Y)
		}
	case tea.MouseActionMotion:
		if m.ctrl.Mode().Kind != canvas.ModeIdle {
			m.ctrl.PointerMove(pos)
		}
	case tea.MouseActionRelease:
		m.ctrl.PointerUp()
	}
	return m, nil
}

func (m model) handleLeftPress(x, y int) (tea.Model, tea.Cmd) {
	// Clicking anywhere takes focus away from an open editor.
	m.commitEdit()

	if y == m.height-footerRows {
		items := toolbarItems(m.ctrl.View(), m.ctrl.Theme(), m.width)
		m.runToolbar(toolbarHit(items, x))
		return m, nil
	}
	row := y - headerRows
	if row < 0 || row >= m.canvasRows() {
		return m, nil
	}

	cards := layoutCards(m.ctrl.Nodes(), m.ctrl.View(), m.ctrl.Selected())
	target, button := hitTest(cards, x, row)
	pos := cellCenter(x, row)
	m.ctrl.PointerDown(pos, target)

	if target.Kind == canvas.TargetInteractive {
		m.lastClick = clickRecord{}
		cmd := m.runButton(target.NodeID, button)
		return m, cmd
	}

	if !m.isDoubleClick(x, y) {
		m.lastClick = clickRecord{x: x, y: y, at: m.now()}
		return m, nil
	}
	m.lastClick = clickRecord{}

	if target.Kind == canvas.TargetBackground {
		m.ctrl.PointerUp()
		m.ctrl.DoubleClick(pos, target)
		return m, nil
	}
	// Double-click on a card opens the field under the pointer.
	m.ctrl.PointerUp()
	c, ok := findCard(cards, target.NodeID)
	if !ok {
		return m, nil
	}
	if c.onTitle(x, row) {
		cmd := m.startEdit(target.NodeID, editTitle)
		return m, cmd
	}
	cmd := m.startEdit(target.NodeID, editDescription)
	return m, cmd
}

func (m model) isDoubleClick(x, y int) bool {
	last := m.lastClick
	if last.at.IsZero() || last.x != x || last.y != y {
		return false
	}
	return m.now().Sub(last.at) <= doubleClickWindow
}

func (m *model) runToolbar(action toolbarAction) {
	switch action {
	case toolAddNode:
		m.ctrl.AddNode(nil)
	case toolZoomOut:
		m.ctrl.ZoomOut()
	case toolZoomIn:
		m.ctrl.ZoomIn()
	case toolReset:
		m.ctrl.ResetView()
	case toolTheme:
		m.ctrl.ToggleTheme()
	}
}

func (m *model) runButton(id string, button cardButton) tea.Cmd {
	switch button {
	case buttonExpand:
		return m.startExpand(id)
	case buttonCollapse:
		m.ctrl.ToggleCollapse(id)
	case buttonDelete:
		m.ctrl.DeleteNode(id)
	}
	return nil
}

// startExpand begins an expansion and hands the AI call to a command.
func (m *model) startExpand(id string) tea.Cmd {
	req, ok := m.ctrl.BeginExpand(id)
	if !ok {
		return nil
	}
	exp := m.ctrl.Expander()
	if exp == nil {
		m.ctrl.FinishExpand(req, nil, errNoAPIKey)
		return nil
	}
	m.logger.Debug("dispatching expansion", zap.String("id", id))
	cmds := []tea.Cmd{expandCmd(exp, req, m.timeout)}
	if !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return tea.Batch(cmds...)
}

// Keyboard

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	sel := m.ctrl.Selected()

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.ctrl.PointerUp()
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Dismiss):
		m.ctrl.DismissNotice()
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.NewNode):
		m.ctrl.AddNode(nil)
	case key.Matches(msg, m.keys.Next):
		m.selectNext()
	case key.Matches(msg, m.keys.EditTitle):
		cmd := m.startEdit(sel, editTitle)
		return m, cmd
	case key.Matches(msg, m.keys.EditBody):
		cmd := m.startEdit(sel, editDescription)
		return m, cmd
	case key.Matches(msg, m.keys.Collapse):
		m.ctrl.ToggleCollapse(sel)
	case key.Matches(msg, m.keys.Expand):
		cmd := m.startExpand(sel)
		return m, cmd
	case key.Matches(msg, m.keys.Delete):
		m.ctrl.DeleteNode(sel)
	case key.Matches(msg, m.keys.ZoomIn):
		m.ctrl.ZoomIn()
	case key.Matches(msg, m.keys.ZoomOut):
		m.ctrl.ZoomOut()
	case key.Matches(msg, m.keys.Reset):
		m.ctrl.ResetView()
	case key.Matches(msg, m.keys.Fit):
		m.ctrl.SetView(fitView(m.ctrl.Nodes(), m.ctrl.Viewport()))
	case key.Matches(msg, m.keys.Theme):
		m.ctrl.ToggleTheme()
	case key.Matches(msg, m.keys.Copy):
		m.copySelected()
	case key.Matches(msg, m.keys.Paste):
		m.pasteNode()
	default:
		m.handlePan(msg)
	}
	return m, nil
}

func (m *model) copySelected() {
	n, ok := m.ctrl.Node(m.ctrl.Selected())
	if !ok {
		return
	}
	if err := m.clip.WriteAll(nodeClipboardText(n.Title, n.Description)); err != nil {
		m.logger.Warn("clipboard write failed", zap.Error(err))
		m.status = "Clipboard unavailable"
		return
	}
	m.status = "Copied"
}

func (m *model) pasteNode() {
	raw, err := m.clip.ReadAll()
	if err != nil {
		m.logger.Warn("clipboard read failed", zap.Error(err))
		m.status = "Clipboard unavailable"
		return
	}
	title, description := splitPasted(raw)
	if title == "" {
		m.status = "Clipboard is empty"
		return
	}
	m.ctrl.AddNodeWithText(nil, title, description)
}

// Editing

// startEdit opens the title or description editor on a node.
func (m *model) startEdit(id string, target editTarget) tea.Cmd {
	n, ok := m.ctrl.Node(id)
	if !ok {
		return nil
	}
	m.ctrl.Select(id)
	m.editID = id
	m.editing = target
	if target == editTitle {
		m.bodyEdit.Blur()
		m.titleEdit.SetValue(n.Title)
		m.titleEdit.CursorEnd()
		return m.titleEdit.Focus()
	}
	m.titleEdit.Blur()
	m.bodyEdit.SetValue(n.Description)
	return m.bodyEdit.Focus()
}

// commitEdit writes the open editor back to its node, if anything changed.
func (m *model) commitEdit() {
	if m.editing == editNone {
		return
	}
	if n, ok := m.ctrl.Node(m.editID); ok {
		switch m.editing {
		case editTitle:
			if v := m.titleEdit.Value(); v != n.Title {
				m.ctrl.UpdateNode(n.ID, canvas.TitlePatch(v))
			}
		case editDescription:
			if v := m.bodyEdit.Value(); v != n.Description {
				m.ctrl.UpdateNode(n.ID, canvas.DescriptionPatch(v))
			}
		}
	}
	m.titleEdit.Blur()
	m.bodyEdit.Blur()
	m.editing = editNone
	m.editID = ""
}

func (m model) handleEditKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.commitEdit()
		m.quitting = true
		return m, tea.Quit
	}

	switch m.editing {
	case editTitle:
		switch msg.String() {
		case "enter", "esc":
			m.commitEdit()
			return m, nil
		case "tab":
			id := m.editID
			m.commitEdit()
			cmd := m.startEdit(id, editDescription)
			return m, cmd
		}
	case editDescription:
		switch msg.String() {
		case "esc", "tab", "ctrl+s":
			m.commitEdit()
			return m, nil
		}
	}
	return m.updateEditor(msg)
}

func (m model) updateEditor(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.editing {
	case editTitle:
		m.titleEdit, cmd = m.titleEdit.Update(msg)
	case editDescription:
		m.bodyEdit, cmd = m.bodyEdit.Update(msg)
	}
	return m, cmd
}
