package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"aether/internal/canvas"
)

// model is the Bubble Tea front end. All board state lives in the
// controller; the model only keeps what the terminal needs on top of it.
type model struct {
	ctrl    *canvas.Controller
	logger  *zap.Logger
	timeout time.Duration

	width  int
	height int

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	// spinning is true while a tick loop is scheduled.
	spinning bool

	editing   editTarget
	editID    string
	titleEdit textinput.Model
	bodyEdit  textarea.Model

	lastClick clickRecord
	now       func() time.Time
	clip      clipboardAccess

	// status is a one-shot info message, cleared by the next key press.
	status   string
	quitting bool
}

type clickRecord struct {
	x, y int
	at   time.Time
}

// expandDoneMsg carries an expansion result back to the event loop.
type expandDoneMsg struct {
	req      canvas.ExpandRequest
	branches []canvas.Branch
	err      error
}

// errNoAPIKey is what the board reports when expansion is used without
// credentials.
var errNoAPIKey = fmt.Errorf("%w: set ai.api_key in the config or OPENAI_API_KEY", canvas.ErrNoExpander)

func newModel(ctrl *canvas.Controller, logger *zap.Logger, timeout time.Duration) model {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = time.Minute
	}

	ti := textinput.New()
	ti.Prompt = "Title ▸ "
	ti.Placeholder = "Untitled"
	ti.CharLimit = 200

	ta := textarea.New()
	ta.Placeholder = "Type your notes or thoughts..."
	ta.ShowLineNumbers = false
	ta.CharLimit = 0
	ta.SetHeight(editorRows - 2)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return model{
		ctrl:      ctrl,
		logger:    logger,
		timeout:   timeout,
		keys:      defaultKeyMap(),
		help:      help.New(),
		spinner:   sp,
		titleEdit: ti,
		bodyEdit:  ta,
		now:       time.Now,
		clip:      systemClipboard{},
	}
}

// expandCmd runs one expansion off the event loop.
func expandCmd(exp canvas.Expander, req canvas.ExpandRequest, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		branches, err := exp.Expand(ctx, req.Source.Title, req.Source.Description)
		return expandDoneMsg{req: req, branches: branches, err: err}
	}
}
