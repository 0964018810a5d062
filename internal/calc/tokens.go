// File: tokens.go
// Title: Arithmetic Language Tokens
// Description: Fixed operator and delimiter kinds plus the abstract
//              categories shared by every calc vocabulary. Number words are
//              added per language from configuration.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial token set
// - 2026-10-16 v0.1.0: Number words match on a Unicode word boundary

package calc

import (
	"regexp"
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/msto63/cstkit/internal/token"
	ckerror "github.com/msto63/cstkit/pkg/core/error"
)

// Abstract categories
var (
	AdditionOperator       = token.Define("AdditionOperator", token.NoPattern)
	MultiplicationOperator = token.Define("MultiplicationOperator", token.NoPattern)
	Number                 = token.Define("Number", token.NoPattern)
	NumberWord             = token.Define("NumberWord", token.NoPattern, token.Categories(Number))
)

// Leaf kinds shared by all calc vocabularies
var (
	WhiteSpace    = token.Define("WhiteSpace", `\s+`, token.Skipped())
	LParen        = token.Define("LParen", `\(`)
	RParen        = token.Define("RParen", `\)`)
	Plus          = token.Define("Plus", `plus\b|\+`, token.Categories(AdditionOperator))
	Minus         = token.Define("Minus", `minus\b|-`, token.Categories(AdditionOperator))
	Times         = token.Define("Times", `times\b|\*`, token.Categories(MultiplicationOperator))
	Over          = token.Define("Over", `over\b|/`, token.Categories(MultiplicationOperator))
	NumberLiteral = token.Define("NumberLiteral", `[0-9]+(?:\.[0-9]+)?`, token.Categories(Number))
)

var operatorWords = map[string]bool{"plus": true, "minus": true, "times": true, "over": true}

// numberWordKinds defines one leaf kind per word, ordered by value then word
func numberWordKinds(numbers map[string]int) ([]*token.Kind, error) {
	words := make([]string, 0, len(numbers))
	for w := range numbers {
		if operatorWords[w] {
			return nil, ckerror.Newf(ckerror.CodeTokenDefinition, "number word %q collides with an operator", w).
				WithOperation("calc.NewLanguage")
		}
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if numbers[words[i]] != numbers[words[j]] {
			return numbers[words[i]] < numbers[words[j]]
		}
		return words[i] < words[j]
	})

	kinds := make([]*token.Kind, len(words))
	for i, w := range words {
		kinds[i] = token.Define(kindName(w), regexp.QuoteMeta(w), token.WholeWord(), token.Categories(NumberWord))
	}
	return kinds, nil
}

// kindName turns "seven" into "Seven" and "über" into "Über"
func kindName(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if size == 0 {
		return word
	}
	return string(unicode.ToUpper(r)) + word[size:]
}

func vocabulary(words []*token.Kind, digits bool) (*token.Vocabulary, error) {
	kinds := []*token.Kind{
		WhiteSpace,
		AdditionOperator, MultiplicationOperator, Number, NumberWord,
		LParen, RParen, Plus, Minus, Times, Over,
	}
	kinds = append(kinds, words...)
	if digits {
		kinds = append(kinds, NumberLiteral)
	}
	return token.NewVocabulary(kinds...)
}
