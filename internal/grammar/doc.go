// File: doc.go
// Title: Grammar Package Documentation
// Description: Overview of grammar definition, self-check and parsing.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial package documentation

/*
Package grammar defines grammars as data and parses token sequences into
concrete syntax trees.

Rules are declared on a Builder and frozen by Build, which runs a self-check
before the grammar can be used:

	g, err := grammar.NewBuilder(vocab, grammar.Options{}).
		Rule("sum",
			grammar.Subrule("term", "lhs"),
			grammar.Many(
				grammar.Consume(Plus, "operator"),
				grammar.Subrule("term", "rhs"),
			),
		).
		Rule("term", grammar.Consume(Number, "value")).
		Build()

The self-check rejects references to undeclared rules or kinds, left
recursion, repetitions that could match without consuming input and
alternations that one token of lookahead cannot decide. Its failures are
reported as a *GrammarError.

Parsing is LL(1): Many, Option and Or look at the next token only to decide
whether to enter a body. Once entered, a mismatch is a *ParseError; no input
is ever given back. Precedence follows rule nesting, and the
lhs, Many(operator, rhs) shape accumulates to the left.
*/
package grammar
