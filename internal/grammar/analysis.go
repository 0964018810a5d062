// File: analysis.go
// Title: Grammar Self-Check
// Description: Definition-time analysis of a rule set: reference
//              resolution, nullable and FIRST sets, left recursion,
//              non-terminating repetition and ambiguous alternation.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial self-check

package grammar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/msto63/cstkit/internal/token"
)

// kindSet holds leaf kinds; lookahead tests are membership checks
type kindSet map[*token.Kind]struct{}

func (s kindSet) add(other kindSet) bool {
	changed := false
	for k := range other {
		if _, ok := s[k]; !ok {
			s[k] = struct{}{}
			changed = true
		}
	}
	return changed
}

func (s kindSet) has(k *token.Kind) bool {
	_, ok := s[k]
	return ok
}

func (s kindSet) names() []string {
	names := make([]string, 0, len(s))
	for k := range s {
		names = append(names, k.Name())
	}
	sort.Strings(names)
	return names
}

type analysis struct {
	vocab  *token.Vocabulary
	rules  []*rule
	byName map[string]*rule
	entry  string

	nullable  map[string]bool
	first     map[string]kindSet
	exprFirst map[Expr]kindSet

	violations []Violation
}

func newAnalysis(vocab *token.Vocabulary, rules []*rule, entry string) *analysis {
	return &analysis{
		vocab:     vocab,
		rules:     rules,
		byName:    make(map[string]*rule, len(rules)),
		entry:     entry,
		nullable:  make(map[string]bool, len(rules)),
		first:     make(map[string]kindSet, len(rules)),
		exprFirst: make(map[Expr]kindSet),
	}
}

func (a *analysis) fail(rule, format string, args ...interface{}) {
	a.violations = append(a.violations, Violation{Rule: rule, Message: fmt.Sprintf(format, args...)})
}

func (a *analysis) run() []Violation {
	if a.vocab == nil {
		a.fail("", "grammar has no vocabulary")
		return a.violations
	}
	if len(a.rules) == 0 {
		a.fail("", "grammar has no rules")
		return a.violations
	}

	for _, r := range a.rules {
		if r.name == "" {
			a.fail("", "rule without a name")
			continue
		}
		if _, dup := a.byName[r.name]; dup {
			a.fail(r.name, "declared more than once")
			continue
		}
		a.byName[r.name] = r
	}
	if _, ok := a.byName[a.entry]; !ok {
		a.fail("", "entry rule %q is not declared", a.entry)
	}

	for _, r := range a.rules {
		a.resolve(r.name, r.body)
	}
	// Later passes assume every reference resolves.
	if len(a.violations) > 0 {
		return a.violations
	}

	a.computeNullable()
	a.computeFirst()
	a.checkLeftRecursion()
	for _, r := range a.rules {
		a.checkShapes(r.name, r.body)
	}
	return a.violations
}

// resolve checks that every terminal is a declared, reachable kind and every
// sub-rule reference names a declared rule.
func (a *analysis) resolve(ruleName string, e Expr) {
	switch e := e.(type) {
	case *consumeExpr:
		switch {
		case e.kind == nil:
			a.fail(ruleName, "consumes a nil kind")
		case !a.vocab.Contains(e.kind):
			a.fail(ruleName, "consumes undeclared kind %q", e.kind.Name())
		case len(a.leavesOf(e.kind)) == 0:
			a.fail(ruleName, "kind %q can never reach the parser (skipped or without leaf members)", e.kind.Name())
		}
		if e.label == "" {
			a.fail(ruleName, "terminal without a label")
		}
	case *subruleExpr:
		if _, ok := a.byName[e.rule]; !ok {
			a.fail(ruleName, "references undeclared rule %q", e.rule)
		}
		if e.label == "" {
			a.fail(ruleName, "sub-rule invocation without a label")
		}
	case *manyExpr:
		a.resolve(ruleName, e.body)
	case *optionExpr:
		a.resolve(ruleName, e.body)
	case *orExpr:
		if len(e.alts) == 0 {
			a.fail(ruleName, "alternation without alternatives")
		}
		for _, alt := range e.alts {
			a.resolve(ruleName, alt)
		}
	case *seqExpr:
		for _, item := range e.items {
			a.resolve(ruleName, item)
		}
	default:
		a.fail(ruleName, "unsupported expression %T", e)
	}
}

// leavesOf returns the non-skipped leaf kinds a terminal reference accepts
func (a *analysis) leavesOf(k *token.Kind) kindSet {
	set := make(kindSet)
	for _, leaf := range a.vocab.LeavesOf(k) {
		if !leaf.IsSkipped() {
			set[leaf] = struct{}{}
		}
	}
	return set
}

func (a *analysis) nullableOf(e Expr) bool {
	switch e := e.(type) {
	case *consumeExpr:
		return false
	case *subruleExpr:
		return a.nullable[e.rule]
	case *manyExpr, *optionExpr:
		return true
	case *orExpr:
		for _, alt := range e.alts {
			if a.nullableOf(alt) {
				return true
			}
		}
		return false
	case *seqExpr:
		for _, item := range e.items {
			if !a.nullableOf(item) {
				return false
			}
		}
		return true
	}
	return false
}

func (a *analysis) computeNullable() {
	for changed := true; changed; {
		changed = false
		for _, r := range a.rules {
			if !a.nullable[r.name] && a.nullableOf(r.body) {
				a.nullable[r.name] = true
				changed = true
			}
		}
	}
}

func (a *analysis) firstOf(e Expr) kindSet {
	set := make(kindSet)
	switch e := e.(type) {
	case *consumeExpr:
		set.add(a.leavesOf(e.kind))
	case *subruleExpr:
		set.add(a.first[e.rule])
	case *manyExpr:
		set.add(a.firstOf(e.body))
	case *optionExpr:
		set.add(a.firstOf(e.body))
	case *orExpr:
		for _, alt := range e.alts {
			set.add(a.firstOf(alt))
		}
	case *seqExpr:
		for _, item := range e.items {
			set.add(a.firstOf(item))
			if !a.nullableOf(item) {
				break
			}
		}
	}
	return set
}

func (a *analysis) computeFirst() {
	for _, r := range a.rules {
		a.first[r.name] = make(kindSet)
	}
	for changed := true; changed; {
		changed = false
		for _, r := range a.rules {
			if a.first[r.name].add(a.firstOf(r.body)) {
				changed = true
			}
		}
	}
}

// leftCalls collects the rules e can invoke before consuming any token
func (a *analysis) leftCalls(e Expr, out map[string]struct{}) {
	switch e := e.(type) {
	case *subruleExpr:
		out[e.rule] = struct{}{}
	case *manyExpr:
		a.leftCalls(e.body, out)
	case *optionExpr:
		a.leftCalls(e.body, out)
	case *orExpr:
		for _, alt := range e.alts {
			a.leftCalls(alt, out)
		}
	case *seqExpr:
		for _, item := range e.items {
			a.leftCalls(item, out)
			if !a.nullableOf(item) {
				return
			}
		}
	}
}

// checkLeftRecursion finds cycles in the graph of calls made without
// consuming a token first.
func (a *analysis) checkLeftRecursion() {
	edges := make(map[string][]string, len(a.rules))
	for _, r := range a.rules {
		calls := make(map[string]struct{})
		a.leftCalls(r.body, calls)
		for name := range calls {
			edges[r.name] = append(edges[r.name], name)
		}
		sort.Strings(edges[r.name])
	}

	const (
		unvisited = iota
		active
		done
	)
	state := make(map[string]int, len(a.rules))
	var stack []string

	var visit func(name string)
	visit = func(name string) {
		state[name] = active
		stack = append(stack, name)
		for _, next := range edges[name] {
			switch state[next] {
			case active:
				start := 0
				for i, n := range stack {
					if n == next {
						start = i
						break
					}
				}
				cycle := append(append([]string{}, stack[start:]...), next)
				a.fail(next, "left recursion: %s", strings.Join(cycle, " -> "))
			case unvisited:
				visit(next)
			}
		}
		stack = stack[:len(stack)-1]
		state[name] = done
	}

	for _, r := range a.rules {
		if state[r.name] == unvisited {
			visit(r.name)
		}
	}
}

// checkShapes rejects repetitions that could loop without progress and
// alternations that one token of lookahead cannot decide. It also records
// the FIRST set of every expression for the parser.
func (a *analysis) checkShapes(ruleName string, e Expr) {
	a.exprFirst[e] = a.firstOf(e)

	switch e := e.(type) {
	case *manyExpr:
		if a.nullableOf(e.body) {
			a.fail(ruleName, "repetition %s can match without consuming a token", e)
		}
		a.checkShapes(ruleName, e.body)
	case *optionExpr:
		if len(e.body.items) == 0 {
			a.fail(ruleName, "empty option")
		}
		a.checkShapes(ruleName, e.body)
	case *orExpr:
		nullableAlts := 0
		for i, alt := range e.alts {
			if a.nullableOf(alt) {
				nullableAlts++
			}
			for j := i + 1; j < len(e.alts); j++ {
				overlap := make(kindSet)
				fi, fj := a.firstOf(alt), a.firstOf(e.alts[j])
				for k := range fi {
					if fj.has(k) {
						overlap[k] = struct{}{}
					}
				}
				if len(overlap) > 0 {
					a.fail(ruleName, "ambiguous alternatives %s and %s both start with %s",
						alt, e.alts[j], strings.Join(overlap.names(), ", "))
				}
			}
			a.checkShapes(ruleName, alt)
		}
		if nullableAlts > 1 {
			a.fail(ruleName, "alternation %s has %d alternatives that match nothing", e, nullableAlts)
		}
	case *seqExpr:
		for _, item := range e.items {
			a.checkShapes(ruleName, item)
		}
	}
}
