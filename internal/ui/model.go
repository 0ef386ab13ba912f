// Package ui is the terminal rendition of the floating chat widget.
//
// All conversation state lives in a widget.Controller and is only mutated from
// Update. Gateway calls run as tea.Cmds and come back as outcomeMsg values.
package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/longkey1/bookchat/internal/bookchat/conversation"
	"github.com/longkey1/bookchat/internal/bookchat/widget"
)

const (
	defaultWidth  = 80
	defaultHeight = 24
	// header, banner, thinking line, input, help, panel border
	chromeHeight = 7
)

// outcomeMsg carries a finished gateway call back to the event loop.
type outcomeMsg struct {
	outcome widget.Outcome
}

// Model is the Bubble Tea model of the widget.
type Model struct {
	ctx         context.Context
	ctrl        *widget.Controller
	input       textinput.Model
	viewport    viewport.Model
	spinner     spinner.Model
	render      renderFunc
	suggestions []string
	open        bool
	width       int
	height      int
}

// Option configures a Model.
type Option func(*Model)

// WithOpen sets whether the panel starts open.
func WithOpen(open bool) Option {
	return func(m *Model) {
		m.open = open
	}
}

// WithSuggestions sets the example questions shown on an empty transcript.
func WithSuggestions(s []string) Option {
	return func(m *Model) {
		m.suggestions = s
	}
}

// WithMarkdown renders assistant answers with the named glamour style
// ("dark", "light", "notty"). An empty style disables markdown rendering.
func WithMarkdown(style string) Option {
	return func(m *Model) {
		if style == "" {
			m.render = plainRenderer
			return
		}
		m.render = newGlamourRenderer(style)
	}
}

// New creates the widget model. ctx bounds the gateway calls it starts.
func New(ctx context.Context, ctrl *widget.Controller, opts ...Option) Model {
	ti := textinput.New()
	ti.Placeholder = "Ask a question..."
	ti.CharLimit = 2000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = thinkingStyle

	m := Model{
		ctx:      ctx,
		ctrl:     ctrl,
		input:    ti,
		viewport: viewport.New(defaultWidth, defaultHeight-chromeHeight),
		spinner:  sp,
		render:   plainRenderer,
		width:    defaultWidth,
		height:   defaultHeight,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.resize()
	m.refresh()
	return m
}

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()

	case outcomeMsg:
		// A stale outcome (conversation cleared meanwhile) is dropped by the controller.
		_ = m.ctrl.Apply(msg.outcome)

	case spinner.TickMsg:
		if m.ctrl.Status() != conversation.StatusAwaitingResponse {
			return m, nil
		}
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		var quit bool
		m, cmd, quit = m.updateKeys(msg)
		if quit {
			return m, tea.Quit
		}

	default:
		var vpCmd tea.Cmd
		m.viewport, vpCmd = m.viewport.Update(msg)
		return m, vpCmd
	}

	m.refresh()
	return m, cmd
}

func (m Model) updateKeys(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return m, nil, true

	case "ctrl+o":
		m.open = !m.open
		if m.open {
			m.input.Focus()
		} else {
			m.input.Blur()
		}
		return m, nil, false
	}

	if !m.open {
		return m, nil, false
	}

	switch msg.String() {
	case "enter":
		return m, m.submit(), false

	case "alt+enter":
		// Only a bare enter sends.
		return m, nil, false

	case "esc":
		m.ctrl.DismissError()
		return m, nil, false

	case "ctrl+l":
		// Also resets a failed first question, which leaves only the banner.
		if len(m.ctrl.State().Transcript) > 0 || m.ctrl.Status() == conversation.StatusErrored {
			m.ctrl.ClearAll()
		}
		return m, nil, false

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd, false
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.ctrl.SetDraft(m.input.Value())
	return m, cmd, false
}

// submit stages the draft and returns the command performing the gateway call,
// or nil when the submission is rejected.
func (m *Model) submit() tea.Cmd {
	m.ctrl.SetDraft(m.input.Value())
	pending, err := m.ctrl.Submit()
	if err != nil {
		return nil
	}
	m.input.Reset()

	ctx := m.ctx
	request := func() tea.Msg {
		return outcomeMsg{outcome: pending.Resolve(ctx)}
	}
	return tea.Batch(request, m.spinner.Tick)
}

func (m *Model) resize() {
	inner := m.width - 2
	if inner < 20 {
		inner = 20
	}
	m.viewport.Width = inner
	m.input.Width = inner - 4

	vh := m.height - chromeHeight
	if vh < 3 {
		vh = 3
	}
	m.viewport.Height = vh
	m.refresh()
}

func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}
