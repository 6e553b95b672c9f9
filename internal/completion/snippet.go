package completion

import (
	"context"
)

// SnippetHint is one row of the full-text autocomplete endpoint
type SnippetHint struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Author string `json:"author,omitempty"`
}

// SnippetProvider completes a whole search phrase and links each suggestion
// to its snippet page
type SnippetProvider struct {
	opts    Options
	element Element
}

// NewSnippetProvider creates a snippet provider, defaulting to DefaultSnippetEndpoint
func NewSnippetProvider(opts Options) *SnippetProvider {
	return &SnippetProvider{opts: opts.withDefaults(DefaultSnippetEndpoint)}
}

// Options returns the effective configuration
func (p *SnippetProvider) Options() Options {
	return p.opts
}

// Fetch sends term unchanged and maps every hit to a linked suggestion
func (p *SnippetProvider) Fetch(ctx context.Context, term string) ([]Suggestion, error) {
	var hints []SnippetHint
	if err := getJSON(ctx, p.opts, term, &hints); err != nil {
		return nil, err
	}

	items := make([]Suggestion, 0, len(hints))
	for _, h := range hints {
		items = append(items, Suggestion{Label: h.Title, Value: h.Title, URL: h.URL})
	}
	return items, nil
}

// RenderItem renders item as a link to its URL
func (p *SnippetProvider) RenderItem(item Suggestion) Entry {
	return Entry{Item: item, Text: item.Label, Href: item.URL}
}

// Bind makes the provider the element's source and swaps in link rendering
func (p *SnippetProvider) Bind(el Element) {
	if isNil(el) {
		return
	}
	p.element = el
	el.Autocomplete(WidgetOptions{
		MinLength:  p.opts.MinLength,
		Source:     bindSource(p.opts.Logger, p.Fetch),
		RenderItem: p.RenderItem,
	})
}

// Element returns the bound element, or nil
func (p *SnippetProvider) Element() Element {
	return p.element
}
