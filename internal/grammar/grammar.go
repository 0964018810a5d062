// File: grammar.go
// Title: Grammar and Recursive-Descent Parser
// Description: An immutable, validated rule set and the parser that walks
//              it over a token sequence, building one CST node per rule
//              activation. Each Parse call uses its own cursor.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial parser

package grammar

import (
	"strings"
	"unicode/utf8"

	"github.com/msto63/cstkit/internal/cst"
	"github.com/msto63/cstkit/internal/token"
	cklog "github.com/msto63/cstkit/pkg/core/log"
)

// Grammar is a validated rule set. It holds no parse state and may serve
// concurrent Parse calls.
type Grammar struct {
	vocab  *token.Vocabulary
	rules  map[string]*rule
	order  []string
	entry  string
	logger *cklog.Logger

	nullable  map[string]bool
	first     map[string]kindSet
	exprFirst map[Expr]kindSet
}

// Vocabulary returns the vocabulary the grammar is defined over
func (g *Grammar) Vocabulary() *token.Vocabulary { return g.vocab }

// Entry returns the entry rule name
func (g *Grammar) Entry() string { return g.entry }

// HasRule reports whether name is a declared rule
func (g *Grammar) HasRule(name string) bool {
	_, ok := g.rules[name]
	return ok
}

// RuleNames returns the rule names in declaration order
func (g *Grammar) RuleNames() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Parse parses tokens starting at the entry rule; an empty entry selects
// the grammar's default. All tokens must be consumed.
func (g *Grammar) Parse(tokens []token.Token, entry string) (*cst.Node, error) {
	if entry == "" {
		entry = g.entry
	}
	r, ok := g.rules[entry]
	if !ok {
		return nil, newUnknownRuleError(entry, g.order)
	}

	p := &run{g: g, tokens: tokens}
	node, err := p.rule(r)
	if err == nil && p.pos < len(tokens) {
		err = p.fail(entry, "end of input")
	}
	if err != nil {
		g.logger.Debug("Parse failed", cklog.Fields{
			"entry":  entry,
			"tokens": len(tokens),
			"error":  err.Error(),
		})
		return nil, err
	}

	g.logger.Trace("Parse completed", cklog.Fields{
		"entry":  entry,
		"tokens": len(tokens),
	})
	return node, nil
}

// run is the per-call parse state
type run struct {
	g      *Grammar
	tokens []token.Token
	pos    int
}

func (p *run) peek() (token.Token, bool) {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos], true
	}
	return token.Token{}, false
}

// startsWith reports whether the lookahead token can begin e
func (p *run) startsWith(e Expr) bool {
	tok, ok := p.peek()
	return ok && p.g.exprFirst[e].has(tok.Kind)
}

func (p *run) rule(r *rule) (*cst.Node, error) {
	node := cst.NewNode(r.name)
	if err := p.expr(r.name, r.body, node); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *run) expr(ruleName string, e Expr, node *cst.Node) error {
	switch e := e.(type) {
	case *consumeExpr:
		tok, ok := p.peek()
		if !ok || !tok.Is(e.kind) {
			return p.fail(ruleName, e.kind.Name())
		}
		node.AddToken(e.label, tok)
		p.pos++

	case *subruleExpr:
		child, err := p.rule(p.g.rules[e.rule])
		if err != nil {
			return err
		}
		node.AddNode(e.label, child)

	case *manyExpr:
		// The self-check guarantees the body consumes at least one token.
		for p.startsWith(e.body) {
			if err := p.expr(ruleName, e.body, node); err != nil {
				return err
			}
		}

	case *optionExpr:
		if p.startsWith(e.body) {
			return p.expr(ruleName, e.body, node)
		}

	case *orExpr:
		var fallback Expr
		for _, alt := range e.alts {
			if p.startsWith(alt) {
				return p.expr(ruleName, alt, node)
			}
			if p.g.isNullable(alt) {
				fallback = alt
			}
		}
		if fallback != nil {
			return p.expr(ruleName, fallback, node)
		}
		return p.fail(ruleName, describeFirst(p.g.exprFirst[e]))

	case *seqExpr:
		for _, item := range e.items {
			if err := p.expr(ruleName, item, node); err != nil {
				return err
			}
		}
	}
	return nil
}

func (p *run) fail(ruleName, expected string) error {
	if tok, ok := p.peek(); ok {
		return newParseError(ruleName, expected, &tok, tok.Pos)
	}
	return newParseError(ruleName, expected, nil, p.endPosition())
}

// endPosition is the position just past the last token
func (p *run) endPosition() token.Position {
	if len(p.tokens) == 0 {
		return token.Position{Offset: 0, Line: 1, Column: 1}
	}
	last := p.tokens[len(p.tokens)-1]
	return token.Position{
		Offset: last.End(),
		Line:   last.Pos.Line,
		Column: last.Pos.Column + utf8.RuneCountInString(last.Image),
	}
}

func (g *Grammar) isNullable(e Expr) bool {
	switch e := e.(type) {
	case *consumeExpr:
		return false
	case *subruleExpr:
		return g.nullable[e.rule]
	case *manyExpr, *optionExpr:
		return true
	case *orExpr:
		for _, alt := range e.alts {
			if g.isNullable(alt) {
				return true
			}
		}
		return false
	case *seqExpr:
		for _, item := range e.items {
			if !g.isNullable(item) {
				return false
			}
		}
		return true
	}
	return false
}

func describeFirst(set kindSet) string {
	names := set.names()
	if len(names) == 1 {
		return names[0]
	}
	return "one of " + strings.Join(names, ", ")
}

