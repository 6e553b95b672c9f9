package tui

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Run drives m on the given terminal streams until the user quits
func Run(ctx context.Context, m Model, in io.Reader, out io.Writer) (Model, error) {
	output := termenv.NewOutput(out)
	lipgloss.SetColorProfile(output.ColorProfile())

	// OSC-8 only makes sense on a real terminal
	m = m.WithHyperlinks(output.ColorProfile() != termenv.Ascii)

	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
	)

	final, err := p.Run()
	if err != nil {
		return m, fmt.Errorf("terminal UI: %w", err)
	}

	fm, ok := final.(Model)
	if !ok {
		return m, fmt.Errorf("unexpected model type %T", final)
	}
	return fm, nil
}
