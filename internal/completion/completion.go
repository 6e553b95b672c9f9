// Package completion provides server-backed suggestion providers for text inputs
// and the contract that binds them to an input widget.
package completion

import (
	"context"
	"fmt"
	"html"
)

const (
	// DefaultTagEndpoint serves {tag, count} hints for a tag prefix
	DefaultTagEndpoint = "/snippets/tag-hint/"
	// DefaultSnippetEndpoint serves {title, url} hints for a search phrase
	DefaultSnippetEndpoint = "/search/autocomplete/"
	// DefaultMinLength is the shortest term a widget forwards to a provider
	DefaultMinLength = 3
)

// Suggestion is a single entry of a suggestion list
type Suggestion struct {
	Label string `json:"label"`         // Display text, may embed an annotation
	Value string `json:"value"`         // Text written into the input on selection
	URL   string `json:"url,omitempty"` // Navigation target, empty when the variant has none
}

// Provider produces suggestions for partial input and knows how to attach
// itself to an input element
type Provider interface {
	// Fetch returns the suggestions for term in backend order
	Fetch(ctx context.Context, term string) ([]Suggestion, error)

	// Bind installs the provider as the element's suggestion source.
	// A nil element is ignored.
	Bind(el Element)
}

// Request is what a widget hands to its source
type Request struct {
	Term string
}

// Respond replaces the widget's suggestion list
type Respond func(items []Suggestion)

// SourceFunc resolves a request. It may never call respond, in which case
// the widget keeps its current list.
type SourceFunc func(ctx context.Context, req Request, respond Respond)

// RenderFunc turns a suggestion into a menu entry
type RenderFunc func(item Suggestion) Entry

// WidgetOptions configures an autocompleting element
type WidgetOptions struct {
	MinLength  int
	Source     SourceFunc
	RenderItem RenderFunc // nil selects the widget's plain-text rendering
}

// Element is an input that can host an autocomplete menu
type Element interface {
	Autocomplete(opts WidgetOptions)
}

// Entry is a rendered menu row. It keeps the suggestion it was built from so
// the widget can resolve a selection back to the item.
type Entry struct {
	Item Suggestion
	Text string
	Href string // Link target, empty for plain rows
}

// PlainEntry renders item as its label without a link
func PlainEntry(item Suggestion) Entry {
	return Entry{Item: item, Text: item.Label}
}

// HTML renders the entry as a list element
func (e Entry) HTML() string {
	if e.Href == "" {
		return fmt.Sprintf("<li><a>%s</a></li>", html.EscapeString(e.Text))
	}
	return fmt.Sprintf(`<li><a href="%s">%s</a></li>`, html.EscapeString(e.Href), html.EscapeString(e.Text))
}

type requestIDKey struct{}

// WithRequestID attaches a correlation id that is forwarded to the backend
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the correlation id carried by ctx
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// isNil also catches typed nil pointers stored in the interface
func isNil(el Element) bool {
	if el == nil {
		return true
	}
	if n, ok := el.(interface{ IsNil() bool }); ok {
		return n.IsNil()
	}
	return false
}
