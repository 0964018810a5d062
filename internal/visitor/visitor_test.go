// File: visitor_test.go
// Title: Interpreter Unit Tests
// Description: Tests for handler table completeness, dispatch and
//              operator/operand pairing.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial interpreter tests
// - 2026-10-16 v0.1.0: VisitAll over list-shaped rules

package visitor

import (
	"errors"
	"strings"
	"testing"

	"github.com/msto63/cstkit/internal/cst"
	"github.com/msto63/cstkit/internal/grammar"
	"github.com/msto63/cstkit/internal/lexer"
	"github.com/msto63/cstkit/internal/token"
	ckerror "github.com/msto63/cstkit/pkg/core/error"
	cklog "github.com/msto63/cstkit/pkg/core/log"
)

var (
	ws     = token.Define("WhiteSpace", `\s+`, token.Skipped())
	join   = token.Define("Join", `\+`)
	letter = token.Define("Letter", `[a-z]`)

	vocab = token.MustVocabulary(ws, join, letter)
)

func buildGrammar(t *testing.T) *grammar.Grammar {
	t.Helper()
	g, err := grammar.NewBuilder(vocab, grammar.Options{Logger: cklog.NewNop()}).
		Rule("concat",
			grammar.Subrule("item", "lhs"),
			grammar.Many(grammar.Consume(join, "operator"), grammar.Subrule("item", "rhs")),
		).
		Rule("item", grammar.Consume(letter, "value")).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return g
}

func concatHandlers() map[string]Handler[string] {
	return map[string]Handler[string]{
		"concat": func(in *Interpreter[string], node *cst.Node) (string, error) {
			return Fold(in, node, "lhs", "operator", "rhs",
				func(acc string, _ token.Token, operand string) (string, error) {
					return acc + operand, nil
				})
		},
		"item": func(_ *Interpreter[string], node *cst.Node) (string, error) {
			return strings.ToUpper(node.Tokens("value")[0].Image), nil
		},
	}
}

func parse(t *testing.T, g *grammar.Grammar, text string) *cst.Node {
	t.Helper()
	tokens, err := lexer.New(vocab, lexer.Options{Logger: cklog.NewNop()}).Tokenize(text)
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	node, err := g.Parse(tokens, "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return node
}

func TestInterpreter_Visit(t *testing.T) {
	g := buildGrammar(t)
	in, err := New(g, concatHandlers())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	tests := []struct {
		input string
		want  string
	}{
		{"a", "A"},
		{"a + b", "AB"},
		{"c + a + b", "CAB"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := in.Visit(parse(t, g, tt.input))
			if err != nil {
				t.Fatalf("Visit failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestNew_DispatchErrors(t *testing.T) {
	g := buildGrammar(t)

	t.Run("missing handler", func(t *testing.T) {
		handlers := concatHandlers()
		delete(handlers, "item")

		_, err := New(g, handlers)
		var dErr *DispatchError
		if !errors.As(err, &dErr) {
			t.Fatalf("Expected *DispatchError, got %v", err)
		}
		if len(dErr.Missing) != 1 || dErr.Missing[0] != "item" {
			t.Errorf("Expected missing [item], got %v", dErr.Missing)
		}
		if !ckerror.HasCode(err, ckerror.CodeDispatch) {
			t.Errorf("Expected code %s", ckerror.CodeDispatch)
		}
	})

	t.Run("nil handler counts as missing", func(t *testing.T) {
		handlers := concatHandlers()
		handlers["concat"] = nil

		_, err := New(g, handlers)
		var dErr *DispatchError
		if !errors.As(err, &dErr) || len(dErr.Missing) != 1 || dErr.Missing[0] != "concat" {
			t.Fatalf("Expected missing [concat], got %v", err)
		}
	})

	t.Run("handler for undeclared rule", func(t *testing.T) {
		handlers := concatHandlers()
		handlers["product"] = handlers["concat"]

		_, err := New(g, handlers)
		var dErr *DispatchError
		if !errors.As(err, &dErr) {
			t.Fatalf("Expected *DispatchError, got %v", err)
		}
		if len(dErr.Unknown) != 1 || dErr.Unknown[0] != "product" {
			t.Errorf("Expected unknown [product], got %v", dErr.Unknown)
		}
		if !strings.Contains(err.Error(), "undeclared rule(s) product") {
			t.Errorf("Unexpected message %q", err.Error())
		}
	})
}

func TestSteps_ArityMismatch(t *testing.T) {
	node := cst.NewNode("concat")
	node.AddToken("operator", token.Token{Kind: join, Image: "+"})

	if _, err := Steps(node, "operator", "rhs"); !ckerror.HasCode(err, ckerror.CodeArityMismatch) {
		t.Errorf("Expected %s, got %v", ckerror.CodeArityMismatch, err)
	}

	steps, err := Steps(cst.NewNode("concat"), "operator", "rhs")
	if err != nil || len(steps) != 0 {
		t.Errorf("Expected no steps for absent repetition, got %v, %v", steps, err)
	}
}

func TestInterpreter_VisitOneArity(t *testing.T) {
	g := buildGrammar(t)
	in, err := New(g, concatHandlers())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// A concat node without lhs cannot come from the parser.
	if _, err := in.Visit(cst.NewNode("concat")); !ckerror.HasCode(err, ckerror.CodeArityMismatch) {
		t.Errorf("Expected %s, got %v", ckerror.CodeArityMismatch, err)
	}
	if _, err := in.Visit(cst.NewNode("foreign")); !ckerror.HasCode(err, ckerror.CodeDispatch) {
		t.Errorf("Expected %s for foreign rule, got %v", ckerror.CodeDispatch, err)
	}
	if _, err := in.Visit(nil); !ckerror.HasCode(err, ckerror.CodeInternal) {
		t.Errorf("Expected %s for nil node, got %v", ckerror.CodeInternal, err)
	}
}

func TestInterpreter_VisitAll(t *testing.T) {
	g, err := grammar.NewBuilder(vocab, grammar.Options{Logger: cklog.NewNop()}).
		Rule("list", grammar.Subrule("item", "items"), grammar.Many(grammar.Subrule("item", "items"))).
		Rule("item", grammar.Consume(letter, "value")).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	handlers := map[string]Handler[string]{
		"list": func(in *Interpreter[string], node *cst.Node) (string, error) {
			items, err := in.VisitAll(node.Nodes("items"))
			if err != nil {
				return "", err
			}
			return strings.Join(items, ","), nil
		},
		"item": concatHandlers()["item"],
	}
	in, err := New(g, handlers)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	got, err := in.Visit(parse(t, g, "a b c"))
	if err != nil {
		t.Fatalf("Visit failed: %v", err)
	}
	if got != "A,B,C" {
		t.Errorf("Expected A,B,C, got %q", got)
	}

	empty, err := in.VisitAll(nil)
	if err != nil || len(empty) != 0 {
		t.Errorf("Expected no results for no nodes, got %v (%v)", empty, err)
	}

	items := parse(t, g, "x y").Nodes("items")
	mixed := []*cst.Node{items[0], cst.NewNode("foreign"), items[1]}
	results, err := in.VisitAll(mixed)
	if !ckerror.HasCode(err, ckerror.CodeDispatch) {
		t.Errorf("Expected %s, got %v", ckerror.CodeDispatch, err)
	}
	if results != nil {
		t.Errorf("Expected no partial results, got %v", results)
	}
}
