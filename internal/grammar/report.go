// File: report.go
// Title: Grammar Report
// Description: A read-only summary of a built grammar for inspection
//              tooling: rule definitions, nullability, FIRST sets and
//              sub-rule references.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial report

package grammar

import (
	"sort"
)

// Report summarises a grammar
type Report struct {
	Entry string       `json:"entry"`
	Rules []RuleReport `json:"rules"`
}

// RuleReport describes one rule
type RuleReport struct {
	Name       string   `json:"name"`
	Definition string   `json:"definition"`
	Nullable   bool     `json:"nullable"`
	First      []string `json:"first"`
	Calls      []string `json:"calls,omitempty"`
}

// Report returns the grammar summary, rules in declaration order
func (g *Grammar) Report() Report {
	report := Report{Entry: g.entry, Rules: make([]RuleReport, 0, len(g.order))}
	for _, name := range g.order {
		r := g.rules[name]
		report.Rules = append(report.Rules, RuleReport{
			Name:       name,
			Definition: r.body.String(),
			Nullable:   g.nullable[name],
			First:      g.first[name].names(),
			Calls:      calls(r.body),
		})
	}
	return report
}

func calls(e Expr) []string {
	seen := make(map[string]struct{})
	var walk func(Expr)
	walk = func(e Expr) {
		switch e := e.(type) {
		case *subruleExpr:
			seen[e.rule] = struct{}{}
		case *manyExpr:
			walk(e.body)
		case *optionExpr:
			walk(e.body)
		case *orExpr:
			for _, alt := range e.alts {
				walk(alt)
			}
		case *seqExpr:
			for _, item := range e.items {
				walk(item)
			}
		}
	}
	walk(e)

	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
