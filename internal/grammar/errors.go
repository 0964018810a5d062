// File: errors.go
// Title: Grammar and Parse Errors
// Description: Typed errors for definition-time grammar defects and for
//              input that does not match the grammar.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial error types

package grammar

import (
	"fmt"
	"strings"

	"github.com/msto63/cstkit/internal/token"
	ckerror "github.com/msto63/cstkit/pkg/core/error"
)

// Violation is one structural defect found by the grammar self-check
type Violation struct {
	Rule    string
	Message string
}

func (v Violation) String() string {
	if v.Rule == "" {
		return v.Message
	}
	return fmt.Sprintf("rule %q: %s", v.Rule, v.Message)
}

// GrammarError reports every violation found while building a grammar
type GrammarError struct {
	Violations []Violation

	err *ckerror.Error
}

func newGrammarError(violations []Violation) *GrammarError {
	e := &GrammarError{Violations: violations}
	e.err = ckerror.Newf(ckerror.CodeGrammar, "grammar self-check found %d violation(s)", len(violations)).
		WithOperation("grammar.Build")
	return e
}

func (e *GrammarError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "grammar error: " + strings.Join(parts, "; ")
}

// Unwrap exposes the coded error
func (e *GrammarError) Unwrap() error {
	return e.err
}

// ParseError reports what the parser expected and what it found. Got is nil
// at end of input.
type ParseError struct {
	Rule     string
	Expected string
	Got      *token.Token
	Position token.Position

	err *ckerror.Error
}

func newParseError(rule, expected string, got *token.Token, pos token.Position) *ParseError {
	e := &ParseError{Rule: rule, Expected: expected, Got: got, Position: pos}
	e.err = ckerror.Newf(ckerror.CodeParse, "expected %s, got %s", expected, e.found()).
		WithOperation("grammar.Parse").
		WithDetail("rule", rule).
		WithDetail("offset", pos.Offset)
	return e
}

// newUnknownRuleError reports a Parse call naming a rule the grammar lacks
func newUnknownRuleError(entry string, declared []string) *ParseError {
	e := &ParseError{
		Rule:     entry,
		Expected: "one of " + strings.Join(declared, ", "),
		Position: token.Position{Line: 1, Column: 1},
	}
	e.err = ckerror.Newf(ckerror.CodeUnknownRule, "unknown entry rule %q", entry).
		WithOperation("grammar.Parse").
		WithDetail("rule", entry)
	return e
}

func (e *ParseError) found() string {
	if e.Got == nil {
		return "end of input"
	}
	return fmt.Sprintf("%s %q", e.Got.Kind.Name(), e.Got.Image)
}

func (e *ParseError) Error() string {
	if e.err.Code() == ckerror.CodeUnknownRule {
		return fmt.Sprintf("parse error: unknown entry rule %q, expected %s", e.Rule, e.Expected)
	}
	return fmt.Sprintf("parse error at line %d, column %d in %s: expected %s, got %s",
		e.Position.Line, e.Position.Column, e.Rule, e.Expected, e.found())
}

// Unwrap exposes the coded error
func (e *ParseError) Unwrap() error {
	return e.err
}
