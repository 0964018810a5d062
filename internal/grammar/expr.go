// File: expr.go
// Title: Grammar Expressions
// Description: Rule bodies as data: terminal consumption, sub-rule
//              invocation, repetition, option, alternation and sequence.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial expression set

package grammar

import (
	"strings"

	"github.com/msto63/cstkit/internal/token"
)

// Expr is one element of a rule body. The set of expressions is closed;
// build them with Consume, Subrule, Many, Option, Or and Seq.
type Expr interface {
	String() string
	expr()
}

type consumeExpr struct {
	kind  *token.Kind
	label string
}

type subruleExpr struct {
	rule  string
	label string
}

type manyExpr struct {
	body *seqExpr
}

type optionExpr struct {
	body *seqExpr
}

type orExpr struct {
	alts []Expr
}

type seqExpr struct {
	items []Expr
}

func (*consumeExpr) expr() {}
func (*subruleExpr) expr() {}
func (*manyExpr) expr() {}
func (*optionExpr) expr() {}
func (*orExpr) expr() {}
func (*seqExpr) expr() {}

// Consume requires the next token to match kind, directly or through one of
// its categories, and records it under label. An empty label records the
// token under the kind's name.
func Consume(kind *token.Kind, label string) Expr {
	if label == "" && kind != nil {
		label = kind.Name()
	}
	return &consumeExpr{kind: kind, label: label}
}

// Subrule invokes the named rule and records its node under label. An empty
// label records the node under the rule name.
func Subrule(rule, label string) Expr {
	if label == "" {
		label = rule
	}
	return &subruleExpr{rule: rule, label: label}
}

// Many matches body zero or more times. An iteration is entered only when
// the next token can start body; a failure after that is a parse error.
func Many(body ...Expr) Expr {
	return &manyExpr{body: &seqExpr{items: body}}
}

// Option matches body zero or one time, with the same entry rule as Many
func Option(body ...Expr) Expr {
	return &optionExpr{body: &seqExpr{items: body}}
}

// Or picks the alternative whose FIRST set holds the next token. The
// alternatives must not overlap; Build rejects ambiguous choices.
func Or(alts ...Expr) Expr {
	return &orExpr{alts: alts}
}

// Seq groups expressions, mostly for use as an Or alternative
func Seq(items ...Expr) Expr {
	return &seqExpr{items: items}
}

func (e *consumeExpr) String() string {
	name := "<nil>"
	if e.kind != nil {
		name = e.kind.Name()
	}
	if e.label == name {
		return name
	}
	return e.label + ":" + name
}

func (e *subruleExpr) String() string {
	if e.label == e.rule {
		return e.rule
	}
	return e.label + ":" + e.rule
}

func (e *manyExpr) String() string { return "(" + e.body.String() + ")*" }
func (e *optionExpr) String() string { return "(" + e.body.String() + ")?" }

func (e *orExpr) String() string {
	parts := make([]string, len(e.alts))
	for i, alt := range e.alts {
		parts[i] = alt.String()
	}
	return strings.Join(parts, " | ")
}

func (e *seqExpr) String() string {
	parts := make([]string, len(e.items))
	for i, item := range e.items {
		if or, ok := item.(*orExpr); ok && len(e.items) > 1 {
			parts[i] = "(" + or.String() + ")"
			continue
		}
		parts[i] = item.String()
	}
	return strings.Join(parts, " ")
}
