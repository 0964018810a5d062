// File: vocabulary.go
// Title: Token Vocabulary
// Description: The fixed, ordered collection of declared token kinds shared by
//              lexer and grammar. Declaration order is lexing priority.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial vocabulary with definition-time validation

package token

import (
	ckerror "github.com/msto63/cstkit/pkg/core/error"
)

// Vocabulary is an immutable, validated, ordered set of kinds. It is safe to
// share between goroutines.
type Vocabulary struct {
	kinds  []*Kind
	leaves []*Kind
	byName map[string]*Kind
}

// NewVocabulary validates the kinds and freezes their order. Leaf kinds are
// tried by the lexer in the order given here, first declared first tried.
func NewVocabulary(kinds ...*Kind) (*Vocabulary, error) {
	v := &Vocabulary{byName: make(map[string]*Kind, len(kinds))}
	members := make(map[*Kind]struct{}, len(kinds))

	for i, k := range kinds {
		if k == nil {
			return nil, definitionError("kind #%d is nil", i)
		}
		if k.name == "" {
			return nil, definitionError("kind #%d has no name", i)
		}
		if _, dup := v.byName[k.name]; dup {
			return nil, definitionError("kind %q declared twice", k.name)
		}
		v.byName[k.name] = k
		members[k] = struct{}{}
		v.kinds = append(v.kinds, k)
	}

	for _, k := range v.kinds {
		if err := validateKind(k, members); err != nil {
			return nil, err
		}
		if !k.IsAbstract() {
			v.leaves = append(v.leaves, k)
		}
	}
	return v, nil
}

// MustVocabulary is NewVocabulary for package-level declarations; it panics on error
func MustVocabulary(kinds ...*Kind) *Vocabulary {
	v, err := NewVocabulary(kinds...)
	if err != nil {
		panic(err)
	}
	return v
}

func validateKind(k *Kind, members map[*Kind]struct{}) error {
	if k.IsAbstract() {
		if k.skipped {
			return definitionError("abstract kind %q cannot be skipped", k.name)
		}
	} else {
		if k.patternErr != nil {
			return ckerror.Wrapf(k.patternErr, "kind %q has an invalid pattern", k.name).
				WithCode(ckerror.CodeTokenDefinition)
		}
		if k.Match("") >= 0 {
			return definitionError("kind %q matches the empty string", k.name)
		}
	}

	for _, cat := range k.categories {
		if cat == nil {
			return definitionError("kind %q has a nil category", k.name)
		}
		if _, ok := members[cat]; !ok {
			return definitionError("kind %q uses undeclared category %q", k.name, cat.name)
		}
		if !cat.IsAbstract() {
			return definitionError("kind %q uses leaf kind %q as a category", k.name, cat.name)
		}
	}
	return nil
}

func definitionError(format string, args ...interface{}) error {
	return ckerror.Newf(ckerror.CodeTokenDefinition, format, args...).WithOperation("token.NewVocabulary")
}

// Kinds returns all kinds in declaration order
func (v *Vocabulary) Kinds() []*Kind {
	out := make([]*Kind, len(v.kinds))
	copy(out, v.kinds)
	return out
}

// Leaves returns the leaf kinds in lexing priority order
func (v *Vocabulary) Leaves() []*Kind {
	out := make([]*Kind, len(v.leaves))
	copy(out, v.leaves)
	return out
}

// Lookup finds a kind by name
func (v *Vocabulary) Lookup(name string) (*Kind, bool) {
	k, ok := v.byName[name]
	return k, ok
}

// Contains reports whether the exact kind value was declared in this vocabulary
func (v *Vocabulary) Contains(k *Kind) bool {
	if k == nil {
		return false
	}
	found, ok := v.byName[k.name]
	return ok && found == k
}

// LeavesOf returns the leaf kinds that match k: k itself if it is a leaf,
// and every leaf listing k among its transitive categories.
func (v *Vocabulary) LeavesOf(k *Kind) []*Kind {
	var out []*Kind
	for _, leaf := range v.leaves {
		if leaf.Is(k) {
			out = append(out, leaf)
		}
	}
	return out
}
