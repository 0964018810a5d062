// File: visitor.go
// Title: Rule-Dispatch Interpreter
// Description: Visitors as tables from rule name to handler. Table
//              completeness is checked against the grammar once, when the
//              interpreter is constructed.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial interpreter framework

package visitor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/msto63/cstkit/internal/cst"
	"github.com/msto63/cstkit/internal/grammar"
	ckerror "github.com/msto63/cstkit/pkg/core/error"
)

// Handler computes the result for one node of its rule. It recurses into
// child nodes through the interpreter.
type Handler[R any] func(in *Interpreter[R], node *cst.Node) (R, error)

// Interpreter dispatches nodes to handlers by rule name. It is immutable
// and safe for concurrent use when its handlers are.
type Interpreter[R any] struct {
	grammar  *grammar.Grammar
	handlers map[string]Handler[R]
}

// DispatchError reports a mismatch between handler table and grammar
type DispatchError struct {
	// Missing lists declared rules without a handler
	Missing []string
	// Unknown lists handlers for rules the grammar does not declare
	Unknown []string

	err *ckerror.Error
}

func newDispatchError(missing, unknown []string) *DispatchError {
	sort.Strings(missing)
	sort.Strings(unknown)
	e := &DispatchError{Missing: missing, Unknown: unknown}
	e.err = ckerror.Newf(ckerror.CodeDispatch, "handler table does not match grammar").
		WithOperation("visitor.New").
		WithDetail("missing", strings.Join(missing, ",")).
		WithDetail("unknown", strings.Join(unknown, ","))
	return e
}

func (e *DispatchError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "no handler for rule(s) "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, "handler(s) for undeclared rule(s) "+strings.Join(e.Unknown, ", "))
	}
	return "dispatch error: " + strings.Join(parts, "; ")
}

// Unwrap exposes the coded error
func (e *DispatchError) Unwrap() error {
	return e.err
}

// New checks that handlers cover exactly the grammar's rules
func New[R any](g *grammar.Grammar, handlers map[string]Handler[R]) (*Interpreter[R], error) {
	var missing, unknown []string
	table := make(map[string]Handler[R], len(handlers))

	for _, name := range g.RuleNames() {
		h, ok := handlers[name]
		if !ok || h == nil {
			missing = append(missing, name)
			continue
		}
		table[name] = h
	}
	for name := range handlers {
		if !g.HasRule(name) {
			unknown = append(unknown, name)
		}
	}
	if len(missing) > 0 || len(unknown) > 0 {
		return nil, newDispatchError(missing, unknown)
	}
	return &Interpreter[R]{grammar: g, handlers: table}, nil
}

// Grammar returns the grammar the interpreter was validated against
func (in *Interpreter[R]) Grammar() *grammar.Grammar {
	return in.grammar
}

// Visit dispatches node to the handler of its rule
func (in *Interpreter[R]) Visit(node *cst.Node) (R, error) {
	var zero R
	if node == nil {
		return zero, ckerror.Newf(ckerror.CodeInternal, "visit of nil node").WithOperation("visitor.Visit")
	}
	h, ok := in.handlers[node.Rule]
	if !ok {
		// Only reachable with a tree from a different grammar.
		return zero, newDispatchError([]string{node.Rule}, nil)
	}
	return h(in, node)
}

// VisitAll visits nodes in order, stopping at the first error
func (in *Interpreter[R]) VisitAll(nodes []*cst.Node) ([]R, error) {
	results := make([]R, 0, len(nodes))
	for _, n := range nodes {
		r, err := in.Visit(n)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, nil
}

// VisitOne visits the single node recorded under label. Anything other than
// exactly one node is an arity defect.
func (in *Interpreter[R]) VisitOne(node *cst.Node, label string) (R, error) {
	var zero R
	children := node.Nodes(label)
	if len(children) != 1 {
		return zero, arityError(node, fmt.Sprintf("expected one %q node, found %d", label, len(children)))
	}
	return in.Visit(children[0])
}

func arityError(node *cst.Node, message string) error {
	return ckerror.Newf(ckerror.CodeArityMismatch, "rule %s: %s", node.Rule, message).
		WithOperation("visitor.Visit")
}
