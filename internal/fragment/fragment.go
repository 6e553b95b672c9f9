// Package fragment splits multi-value text fields into their completed and in-progress parts.
package fragment

import (
	"regexp"
	"strings"
)

const (
	// DefaultDelimiter separates values in a multi-value field
	DefaultDelimiter = ","
	// Separator is inserted between values when a field is reassembled
	Separator = ", "
)

var wordPattern = regexp.MustCompile(`\w`)

// Query is the part of a field sent to the suggestion backend together with
// the completed portion that must survive a selection untouched.
type Query struct {
	Term   string // In-progress piece, sent as q=
	Prefix string // Completed pieces, already joined and terminated by Separator
}

// HasWord reports whether s contains at least one word character
func HasWord(s string) bool {
	return wordPattern.MatchString(s)
}

// SplitAndClean splits text on delimiter, drops pieces without any word
// character and trims the remaining ones. Order and duplicates are kept.
// An empty delimiter means DefaultDelimiter.
func SplitAndClean(text, delimiter string) []string {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}

	cleaned := []string{}
	for _, piece := range strings.Split(text, delimiter) {
		if !HasWord(piece) {
			continue
		}
		cleaned = append(cleaned, strings.TrimSpace(piece))
	}
	return cleaned
}

// LastFragment returns the last cleaned piece of text, or false when the
// field holds nothing but delimiters and whitespace.
func LastFragment(text string) (string, bool) {
	pieces := SplitAndClean(text, DefaultDelimiter)
	if len(pieces) == 0 {
		return "", false
	}

	last := pieces[len(pieces)-1]
	if !HasWord(last) {
		return "", false
	}
	return last, true
}

// Join reassembles pieces with Separator
func Join(pieces []string) string {
	return strings.Join(pieces, Separator)
}

// Parse computes the term and completed prefix of a multi-value field.
// It returns false when there is no fragment to complete, which includes a
// field ending in a delimiter with nothing typed after it.
func Parse(text string) (Query, bool) {
	term, ok := LastFragment(text)
	if !ok {
		return Query{}, false
	}

	tail := text
	if i := strings.LastIndex(text, DefaultDelimiter); i >= 0 {
		tail = text[i+len(DefaultDelimiter):]
	}
	if !HasWord(tail) {
		return Query{}, false
	}

	pieces := SplitAndClean(text, DefaultDelimiter)
	pieces = pieces[:len(pieces)-1]

	prefix := ""
	if len(pieces) > 0 {
		prefix = Join(pieces) + Separator
	}

	return Query{Term: term, Prefix: prefix}, true
}
