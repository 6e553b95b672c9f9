package completion

import (
	"context"
	"fmt"

	"github.com/NikitaCOEUR/snipcomplete/internal/fragment"
)

// TagHint is one row of the tag-hint endpoint
type TagHint struct {
	Tag   string `json:"tag"`
	Count int    `json:"count"`
}

// TagProvider completes the last tag of a comma-separated tag list
type TagProvider struct {
	opts    Options
	element Element
}

// NewTagProvider creates a tag provider, defaulting to DefaultTagEndpoint
func NewTagProvider(opts Options) *TagProvider {
	return &TagProvider{opts: opts.withDefaults(DefaultTagEndpoint)}
}

// Options returns the effective configuration
func (p *TagProvider) Options() Options {
	return p.opts
}

// Fetch queries the backend with the in-progress tag only. Each value is the
// whole replacement field: the completed tags followed by the chosen one.
func (p *TagProvider) Fetch(ctx context.Context, term string) ([]Suggestion, error) {
	query, ok := fragment.Parse(term)
	if !ok {
		return []Suggestion{}, nil
	}

	var hints []TagHint
	if err := getJSON(ctx, p.opts, query.Term, &hints); err != nil {
		return nil, err
	}

	return TagSuggestions(query.Prefix, hints), nil
}

// TagSuggestions builds suggestions for hints, keeping prefix in every value
func TagSuggestions(prefix string, hints []TagHint) []Suggestion {
	items := make([]Suggestion, 0, len(hints))
	for _, h := range hints {
		items = append(items, Suggestion{
			Label: fmt.Sprintf("%s (%d)", h.Tag, h.Count),
			Value: prefix + h.Tag + fragment.Separator,
		})
	}
	return items
}

// Bind makes the provider the element's source. Selecting an item replaces
// the whole field with the item's value.
func (p *TagProvider) Bind(el Element) {
	if isNil(el) {
		return
	}
	p.element = el
	el.Autocomplete(WidgetOptions{
		MinLength: p.opts.MinLength,
		Source:    bindSource(p.opts.Logger, p.Fetch),
	})
}

// Element returns the bound element, or nil
func (p *TagProvider) Element() Element {
	return p.element
}
