// File: kind.go
// Title: Token Kinds
// Description: Declares token kinds: leaf kinds with a recognition pattern and
//              abstract category kinds without one. Category ancestry is
//              resolved once when a kind is defined so that category tests
//              are set lookups.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial kind model
// - 2026-10-16 v0.1.0: WholeWord option with Unicode-aware boundary

package token

import (
	"fmt"
	"regexp"
	"unicode"
	"unicode/utf8"
)

// NoPattern declares an abstract kind that never matches text itself
const NoPattern = ""

// Kind is an immutable token kind descriptor. Create kinds with Define.
type Kind struct {
	name       string
	source     string
	pattern    *regexp.Regexp
	patternErr error
	categories []*Kind
	ancestors  map[*Kind]struct{}
	skipped    bool
	wholeWord  bool
}

// Option configures a kind at definition time
type Option func(*Kind)

// Categories makes the kind a member of the given abstract kinds
func Categories(kinds ...*Kind) Option {
	return func(k *Kind) {
		k.categories = append(k.categories, kinds...)
	}
}

// Skipped marks the kind as filtered out of the token stream (whitespace, comments)
func Skipped() Option {
	return func(k *Kind) {
		k.skipped = true
	}
}

// WholeWord rejects a match that is directly followed by a letter, digit or
// underscore. Unlike the regexp \b assertion it treats non-ASCII letters as
// word characters.
func WholeWord() Option {
	return func(k *Kind) {
		k.wholeWord = true
	}
}

// Define creates a kind. The pattern is a regular expression anchored at the
// current input position; NoPattern makes the kind abstract. A pattern that
// fails to compile is reported when the kind is added to a Vocabulary.
func Define(name, pattern string, opts ...Option) *Kind {
	k := &Kind{
		name:      name,
		source:    pattern,
		ancestors: make(map[*Kind]struct{}),
	}
	for _, opt := range opts {
		opt(k)
	}

	if pattern != NoPattern {
		k.pattern, k.patternErr = regexp.Compile(`\A(?:` + pattern + `)`)
	}

	// Categories are defined before their members, so ancestry is final here
	// and cannot contain cycles.
	for _, cat := range k.categories {
		if cat == nil {
			continue
		}
		k.ancestors[cat] = struct{}{}
		for anc := range cat.ancestors {
			k.ancestors[anc] = struct{}{}
		}
	}
	return k
}

// Name returns the kind's unique name
func (k *Kind) Name() string { return k.name }

// Pattern returns the pattern source, or NoPattern for abstract kinds
func (k *Kind) Pattern() string { return k.source }

// IsAbstract reports whether the kind has no pattern
func (k *Kind) IsAbstract() bool { return k.source == NoPattern }

// IsSkipped reports whether matches of the kind are dropped from the stream
func (k *Kind) IsSkipped() bool { return k.skipped }

// Categories returns the kind's direct categories
func (k *Kind) Categories() []*Kind {
	out := make([]*Kind, len(k.categories))
	copy(out, k.categories)
	return out
}

// Is reports whether k equals other or has other among its transitive categories
func (k *Kind) Is(other *Kind) bool {
	if k == nil || other == nil {
		return false
	}
	if k == other {
		return true
	}
	_, ok := k.ancestors[other]
	return ok
}

// Match returns the length of the pattern's match at the start of input, or -1.
// Abstract kinds never match.
func (k *Kind) Match(input string) int {
	if k.pattern == nil {
		return -1
	}
	loc := k.pattern.FindStringIndex(input)
	if loc == nil {
		return -1
	}
	if k.wholeWord && loc[1] < len(input) {
		if r, _ := utf8.DecodeRuneInString(input[loc[1]:]); isWordRune(r) {
			return -1
		}
	}
	return loc[1]
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// String returns the kind name
func (k *Kind) String() string {
	if k == nil {
		return "<nil>"
	}
	return k.name
}

// GoString helps test failure output
func (k *Kind) GoString() string {
	if k.IsAbstract() {
		return fmt.Sprintf("token.Kind(%s, abstract)", k.name)
	}
	return fmt.Sprintf("token.Kind(%s, %q)", k.name, k.source)
}
