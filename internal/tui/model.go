// Package tui is a terminal front-end over widget fields: one tab per
// provider, a text input and the suggestion menu below it.
package tui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/NikitaCOEUR/snipcomplete/internal/completion"
	"github.com/NikitaCOEUR/snipcomplete/internal/widget"
)

// Pane is one tab of the front-end
type Pane struct {
	Label string
	Field *widget.Field
}

// searchDoneMsg is sent when a field search returns. The field has already
// applied any response by then; the message only triggers a redraw.
type searchDoneMsg struct {
	pane      int
	consulted bool
}

// Model is the Bubble Tea model
type Model struct {
	ctx    context.Context
	panes  []Pane
	active int
	input  textinput.Model

	selection  int // index into the active menu; -1 when closed
	hyperlinks bool

	width  int
	height int

	result    string
	picked    []completion.Suggestion
	cancelled bool
}

// NewModel creates a model over panes; the first pane is active
func NewModel(ctx context.Context, panes ...Pane) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.CharLimit = 256
	ti.Focus()

	return Model{
		ctx:       ctx,
		panes:     panes,
		input:     ti,
		selection: -1,
	}
}

// WithHyperlinks renders entries that carry a link as OSC-8 hyperlinks
func (m Model) WithHyperlinks(on bool) Model {
	m.hyperlinks = on
	return m
}

// WithActive selects the starting pane by label
func (m Model) WithActive(label string) Model {
	for i, p := range m.panes {
		if p.Label == label {
			m.active = i
			m.input.SetValue(p.Field.Value())
		}
	}
	return m
}

// Result returns the text of the active field when the user confirmed, or ""
func (m Model) Result() string {
	return m.result
}

// Picked returns the suggestions chosen during the session, oldest first
func (m Model) Picked() []completion.Suggestion {
	return m.picked
}

// IsCancelled reports whether the user quit with esc or ctrl+c
func (m Model) IsCancelled() bool {
	return m.cancelled
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(10, msg.Width-4)
		return m, nil

	case searchDoneMsg:
		if msg.pane == m.active {
			m.clampSelection()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.panes) == 0 {
		if msg.Type == tea.KeyEsc || msg.Type == tea.KeyCtrlC {
			m.cancelled = true
			return m, tea.Quit
		}
		return m, nil
	}
	field := m.panes[m.active].Field

	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.cancelled = true
		return m, tea.Quit

	case tea.KeyEnter:
		if field.Open() && m.selection >= 0 {
			if item, ok := field.Select(m.selection); ok {
				m.picked = append(m.picked, item)
				m.input.SetValue(field.Value())
				m.input.CursorEnd()
			}
			m.selection = -1
			return m, nil
		}
		m.result = field.Value()
		return m, tea.Quit

	case tea.KeyUp:
		if field.Open() && m.selection > 0 {
			m.selection--
		}
		return m, nil

	case tea.KeyDown:
		if field.Open() && m.selection < len(field.Entries())-1 {
			m.selection++
		}
		return m, nil

	case tea.KeyTab:
		if len(m.panes) > 1 {
			m.active = (m.active + 1) % len(m.panes)
			m.input.SetValue(m.panes[m.active].Field.Value())
			m.input.CursorEnd()
			m.clampSelection()
		}
		return m, nil
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	after := m.input.Value()
	if after == before {
		return m, cmd
	}

	field.SetValue(after)
	m.selection = -1
	return m, tea.Batch(cmd, m.search(after))
}

// search returns a command running the active field's lookup for text
func (m Model) search(text string) tea.Cmd {
	pane := m.active
	field := m.panes[pane].Field
	ctx := m.ctx
	return func() tea.Msg {
		return searchDoneMsg{pane: pane, consulted: field.Search(ctx, text)}
	}
}

func (m *Model) clampSelection() {
	if len(m.panes) == 0 {
		m.selection = -1
		return
	}
	field := m.panes[m.active].Field
	n := len(field.Entries())
	if !field.Open() || n == 0 {
		m.selection = -1
		return
	}
	if m.selection < 0 {
		m.selection = 0
	}
	if m.selection >= n {
		m.selection = n - 1
	}
}

var (
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
	inactiveTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	selectedStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	normalStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// View implements tea.Model
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(m.viewTabBar())
	b.WriteRune('\n')
	b.WriteString(m.input.View())
	b.WriteRune('\n')

	if menu := m.viewMenu(); menu != "" {
		b.WriteString(menu)
		b.WriteRune('\n')
	}

	b.WriteString(dimStyle.Render("tab: switch  enter: select  esc: quit"))
	return b.String()
}

func (m Model) viewTabBar() string {
	parts := make([]string, 0, len(m.panes))
	for i, p := range m.panes {
		label := " " + p.Label + " "
		if i == m.active {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, inactiveTabStyle.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) viewMenu() string {
	if len(m.panes) == 0 {
		return ""
	}
	field := m.panes[m.active].Field
	if !field.Open() {
		return ""
	}

	entries := field.Entries()
	rows := make([]string, 0, len(entries))
	for i, e := range entries {
		text := e.Text
		if m.hyperlinks && e.Href != "" {
			text = termenv.Hyperlink(e.Href, text)
		}
		if i == m.selection {
			rows = append(rows, selectedStyle.Render("> ")+text)
		} else {
			rows = append(rows, normalStyle.Render("  ")+text)
		}
	}
	return strings.Join(rows, "\n")
}
