package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/NikitaCOEUR/snipcomplete/internal/completion"
	"github.com/NikitaCOEUR/snipcomplete/internal/timing"
	"github.com/NikitaCOEUR/snipcomplete/internal/trace"
)

// DefaultFormat prints one suggestion per line
const DefaultFormat = "{{ .Label }}\t{{ .Value }}"

// Query kinds
const (
	KindTags   = "tags"
	KindSearch = "search"
)

// QueryParams contains parameters for the tags and search commands
type QueryParams struct {
	Params
	Kind   string    // KindTags or KindSearch
	Text   string    // Field text as typed
	Format string    // Go template applied to each suggestion
	Out    io.Writer // Defaults to stdout
}

// Query runs one provider lookup and prints the suggestions
func Query(ctx context.Context, params QueryParams) error {
	timer := timing.NewTimer()

	s, err := load(params.Params)
	if err != nil {
		return err
	}

	format := params.Format
	if format == "" {
		format = DefaultFormat
	}
	tmpl, err := template.New("suggestion").Funcs(sprig.TxtFuncMap()).Parse(format)
	if err != nil {
		return fmt.Errorf("invalid format: %w", err)
	}
	timer.Mark("init")

	var provider completion.Provider
	switch params.Kind {
	case KindTags:
		provider = s.tagProvider()
	case KindSearch:
		provider = s.snippetProvider()
	default:
		return fmt.Errorf("unknown query kind %q", params.Kind)
	}

	var items []completion.Suggestion
	trace.WithRegion(ctx, "fetch", func() {
		items, err = provider.Fetch(ctx, params.Text)
	})
	if err != nil {
		return err
	}
	timer.Mark("fetch")

	out := params.Out
	if out == nil {
		out = os.Stdout
	}
	for _, item := range items {
		if err := tmpl.Execute(out, item); err != nil {
			return fmt.Errorf("failed to render suggestion: %w", err)
		}
		if _, err := fmt.Fprintln(out); err != nil {
			return err
		}
	}
	timer.Mark("render")

	s.log.Debug().
		Str("kind", params.Kind).
		Int("suggestions", len(items)).
		Dur("total_ms", timer.Elapsed()).
		Str("timing", timer.Summary()).
		Msg("Query done")
	return nil
}
