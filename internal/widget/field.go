// Package widget implements a headless autocompleting input field. It owns the
// text value and the suggestion menu and delegates lookups to a bound source.
package widget

import (
	"context"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/NikitaCOEUR/snipcomplete/internal/completion"
	"github.com/NikitaCOEUR/snipcomplete/internal/logger"
)

// Field is a text input with an autocomplete menu. It is safe for use from
// multiple goroutines; responses are applied in the order they arrive.
type Field struct {
	name string
	log  *logger.Logger

	mu      sync.Mutex
	value   string
	opts    completion.WidgetOptions
	bound   bool
	items   []completion.Suggestion
	entries []completion.Entry
	open    bool
}

// New creates an unbound field
func New(name string, log *logger.Logger) *Field {
	return &Field{name: name, log: logger.OrDiscard(log).Named(name)}
}

// Name returns the field name
func (f *Field) Name() string {
	if f == nil {
		return ""
	}
	return f.name
}

// IsNil reports whether f is a nil pointer
func (f *Field) IsNil() bool {
	return f == nil
}

// Autocomplete installs the completion options, replacing earlier ones
func (f *Field) Autocomplete(opts completion.WidgetOptions) {
	if f == nil {
		return
	}
	if opts.MinLength < 0 {
		opts.MinLength = 0
	}
	if opts.RenderItem == nil {
		opts.RenderItem = completion.PlainEntry
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.opts = opts
	f.bound = opts.Source != nil
}

// MinLength returns the installed minimum term length
func (f *Field) MinLength() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.opts.MinLength
}

// Bound reports whether a source is installed
func (f *Field) Bound() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.bound
}

// Value returns the current text
func (f *Field) Value() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value
}

// SetValue replaces the text without searching
func (f *Field) SetValue(v string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.value = v
}

// Input sets the text and searches for it. It reports whether the source
// was consulted.
func (f *Field) Input(ctx context.Context, text string) bool {
	f.SetValue(text)
	return f.Search(ctx, text)
}

// Search asks the source for suggestions when term is long enough.
// Terms shorter than the minimum length close the menu and never reach the source.
func (f *Field) Search(ctx context.Context, term string) bool {
	f.mu.Lock()
	source := f.opts.Source
	minLength := f.opts.MinLength
	f.mu.Unlock()

	if source == nil {
		return false
	}
	if utf8.RuneCountInString(term) < minLength {
		f.Close()
		return false
	}

	id := uuid.NewString()
	f.log.Debug().Str("request_id", id).Str("term", term).Msg("Searching")

	source(completion.WithRequestID(ctx, id), completion.Request{Term: term}, func(items []completion.Suggestion) {
		f.respond(id, items)
	})
	return true
}

func (f *Field) respond(id string, items []completion.Suggestion) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.items = append([]completion.Suggestion(nil), items...)
	f.entries = make([]completion.Entry, 0, len(items))
	for _, item := range items {
		f.entries = append(f.entries, f.opts.RenderItem(item))
	}
	f.open = len(items) > 0

	f.log.Debug().Str("request_id", id).Int("count", len(items)).Msg("Suggestions updated")
}

// Items returns the current suggestion list
func (f *Field) Items() []completion.Suggestion {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]completion.Suggestion(nil), f.items...)
}

// Entries returns the rendered menu rows
func (f *Field) Entries() []completion.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]completion.Entry(nil), f.entries...)
}

// Open reports whether the menu is showing
func (f *Field) Open() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// Close hides the menu; the list is kept until the next response
func (f *Field) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.open = false
}

// Select writes the value of entry i into the field and closes the menu
func (f *Field) Select(i int) (completion.Suggestion, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if i < 0 || i >= len(f.entries) {
		return completion.Suggestion{}, false
	}
	item := f.entries[i].Item
	f.value = item.Value
	f.open = false
	return item, true
}
