package ui

import (
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"nuiprogress/internal/eventloop"
)

// Message types for loop updates.
type (
	// callMsg carries a callback posted to the program's loop.
	callMsg struct{ fn func() }

	// ThemeMsg replaces the theme.
	ThemeMsg struct{ Theme Theme }
)

// ProgramLoop is an eventloop.Poster backed by a Bubble Tea program: posted
// callbacks run inside Update. Post must not be called from the program's
// own goroutine.
type ProgramLoop struct {
	mu      sync.Mutex
	program *tea.Program
	logger  *zap.Logger
}

var _ eventloop.Poster = (*ProgramLoop)(nil)

// NewProgramLoop creates a loop with no program attached yet.
func NewProgramLoop(logger *zap.Logger) *ProgramLoop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgramLoop{logger: logger}
}

// Attach binds the program. Call it before the program runs.
func (l *ProgramLoop) Attach(p *tea.Program) {
	l.mu.Lock()
	l.program = p
	l.mu.Unlock()
}

// Post implements eventloop.Poster. Callbacks posted before Attach are
// dropped.
func (l *ProgramLoop) Post(fn func()) {
	l.mu.Lock()
	p := l.program
	l.mu.Unlock()
	if p == nil {
		l.logger.Warn("dropping callback posted before program attached")
		return
	}
	p.Send(callMsg{fn: fn})
}

// Model is the Bubble Tea model hosting an Overlay.
type Model struct {
	overlay  *Overlay
	theme    Theme
	keys     KeyMap
	help     help.Model
	width    int
	height   int
	quitting bool
}

// Compile-time interface compliance check
var _ tea.Model = (*Model)(nil)

// NewModel creates a Model drawing overlay with theme.
func NewModel(overlay *Overlay, theme Theme) *Model {
	return &Model{
		overlay: overlay,
		theme:   theme,
		keys:    DefaultKeyMap(),
		help:    help.New(),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case callMsg:
		if !m.quitting {
			msg.fn()
		}
		return m, nil
	case ThemeMsg:
		m.theme = msg.Theme
		return m, nil
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.quitting = true
			m.overlay.Teardown()
			return m, tea.Quit
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	footer := m.theme.styles().Hint.Render(m.help.View(m.keys))

	var body string
	if m.overlay.Rendered() {
		body = fade(RenderFrame(m.overlay.Frame(), m.theme), m.overlay.Opacity(), m.overlay.Scale())
	}
	if m.width <= 0 || m.height <= 1 {
		return lipgloss.JoinVertical(lipgloss.Left, body, footer)
	}
	placed := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Bottom, body)
	return lipgloss.JoinVertical(lipgloss.Left, placed, footer)
}

// Theme returns the active theme.
func (m *Model) Theme() Theme {
	return m.theme
}
