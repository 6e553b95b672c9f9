package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/NikitaCOEUR/snipcomplete/internal/tui"
	"github.com/NikitaCOEUR/snipcomplete/internal/widget"
)

// InteractiveParams contains parameters for the interactive command
type InteractiveParams struct {
	Params
	Start string // Pane shown first, KindTags or KindSearch
	In    io.Reader
	Out   io.Writer // Terminal output, defaults to stderr
	// Result receives the confirmed text, defaults to stdout
	Result io.Writer
}

// panes binds one field per provider
func (s *settings) panes() []tui.Pane {
	tags := widget.New(KindTags, s.log)
	s.tagProvider().Bind(tags)

	search := widget.New(KindSearch, s.log)
	s.snippetProvider().Bind(search)

	return []tui.Pane{
		{Label: KindTags, Field: tags},
		{Label: KindSearch, Field: search},
	}
}

// Interactive runs the terminal front-end and prints the confirmed text
func Interactive(ctx context.Context, params InteractiveParams) error {
	s, err := load(params.Params)
	if err != nil {
		return err
	}

	in := params.In
	if in == nil {
		in = os.Stdin
	}
	out := params.Out
	if out == nil {
		out = os.Stderr
	}
	result := params.Result
	if result == nil {
		result = os.Stdout
	}

	m := tui.NewModel(ctx, s.panes()...)
	if params.Start != "" {
		m = m.WithActive(params.Start)
	}

	final, err := tui.Run(ctx, m, in, out)
	if err != nil {
		return err
	}
	if final.IsCancelled() {
		s.log.Debug().Msg("Cancelled")
		return nil
	}

	for _, item := range final.Picked() {
		s.log.Debug().Str("label", item.Label).Str("url", item.URL).Msg("Picked")
	}
	if final.Result() != "" {
		_, err = fmt.Fprintln(result, final.Result())
	}
	return err
}
