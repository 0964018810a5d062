// File: grammar_test.go
// Title: Grammar Unit Tests
// Description: Tests for the self-check, LL(1) parsing, labeled trees,
//              parse errors and repeatable parsing.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial grammar tests

package grammar

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/msto63/cstkit/internal/cst"
	"github.com/msto63/cstkit/internal/lexer"
	"github.com/msto63/cstkit/internal/token"
	ckerror "github.com/msto63/cstkit/pkg/core/error"
	cklog "github.com/msto63/cstkit/pkg/core/log"
)

var (
	ws       = token.Define("WhiteSpace", `\s+`, token.Skipped())
	addOp    = token.Define("AdditionOperator", token.NoPattern)
	number   = token.Define("Number", token.NoPattern)
	lparen   = token.Define("LParen", `\(`)
	rparen   = token.Define("RParen", `\)`)
	plus     = token.Define("Plus", `plus\b`, token.Categories(addOp))
	minus    = token.Define("Minus", `minus\b`, token.Categories(addOp))
	one      = token.Define("One", `one\b`, token.Categories(number))
	two      = token.Define("Two", `two\b`, token.Categories(number))
	comment  = token.Define("Comment", `#[^\n]*`, token.Skipped())
	stranger = token.Define("Stranger", `\?`)

	testVocab = token.MustVocabulary(ws, comment, addOp, number, lparen, rparen, plus, minus, one, two)
	nopLogger = cklog.NewNop()
)

func sumGrammar(t *testing.T) *Grammar {
	t.Helper()
	g, err := NewBuilder(testVocab, Options{Logger: nopLogger}).
		Rule("sum",
			Subrule("atom", "lhs"),
			Many(
				Consume(addOp, "operator"),
				Subrule("atom", "rhs"),
			),
		).
		Rule("atom", Or(
			Consume(number, "number"),
			Seq(Consume(lparen, ""), Subrule("sum", "inner"), Consume(rparen, "")),
		)).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return g
}

func lex(t *testing.T, text string) []token.Token {
	t.Helper()
	tokens, err := lexer.New(testVocab, lexer.Options{Logger: nopLogger}).Tokenize(text)
	if err != nil {
		t.Fatalf("Tokenize(%q): %v", text, err)
	}
	return tokens
}

func TestGrammar_Parse(t *testing.T) {
	g := sumGrammar(t)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "single operand",
			input: "two",
			want:  `(sum lhs=(atom number=Two"two"))`,
		},
		{
			name:  "one operator",
			input: "one plus two",
			want:  `(sum lhs=(atom number=One"one") operator=Plus"plus" rhs=(atom number=Two"two"))`,
		},
		{
			name:  "repetition keeps order",
			input: "one minus two plus one",
			want: `(sum lhs=(atom number=One"one") operator=Minus"minus" operator=Plus"plus"` +
				` rhs=(atom number=Two"two") rhs=(atom number=One"one"))`,
		},
		{
			name:  "alternation and nesting",
			input: "(one)",
			want:  `(sum lhs=(atom LParen=LParen"(" RParen=RParen")" inner=(sum lhs=(atom number=One"one"))))`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := g.Parse(lex(t, tt.input), "")
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if got := node.String(); got != tt.want {
				t.Errorf("Expected tree\n%s\ngot\n%s", tt.want, got)
			}
		})
	}
}

func TestGrammar_AbsentRepetition(t *testing.T) {
	g := sumGrammar(t)

	node, err := g.Parse(lex(t, "two"), "sum")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if node.Has("operator") || node.Has("rhs") {
		t.Errorf("Expected repeated labels to be absent, got %v", node.Labels())
	}
	if len(node.Tokens("operator")) != 0 || len(node.Nodes("rhs")) != 0 {
		t.Error("Expected empty sequences for absent labels")
	}
}

func TestGrammar_ParseErrors(t *testing.T) {
	g := sumGrammar(t)

	tests := []struct {
		name     string
		input    string
		expected string
		got      string
		code     ckerror.Code
	}{
		{"missing left operand", "plus one", "one of", "Plus", ckerror.CodeParse},
		{"missing right operand", "one plus", "one of", "", ckerror.CodeParse},
		{"trailing operand", "one two", "end of input", "Two", ckerror.CodeParse},
		{"unclosed parenthesis", "(one", "RParen", "", ckerror.CodeParse},
		{"empty input", "", "one of", "", ckerror.CodeParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node, err := g.Parse(lex(t, tt.input), "")
			if err == nil {
				t.Fatalf("Expected parse error, got tree %s", node)
			}
			if node != nil {
				t.Error("Expected no partial tree")
			}
			var pErr *ParseError
			if !errors.As(err, &pErr) {
				t.Fatalf("Expected *ParseError, got %T", err)
			}
			if !strings.HasPrefix(pErr.Expected, tt.expected) {
				t.Errorf("Expected %q to start with %q", pErr.Expected, tt.expected)
			}
			switch {
			case tt.got == "" && pErr.Got != nil:
				t.Errorf("Expected end of input, got %v", pErr.Got)
			case tt.got != "" && (pErr.Got == nil || pErr.Got.Kind.Name() != tt.got):
				t.Errorf("Expected offending %s, got %v", tt.got, pErr.Got)
			}
			if !ckerror.HasCode(err, tt.code) {
				t.Errorf("Expected code %s, got %s", tt.code, ckerror.GetCode(err))
			}
		})
	}
}

func TestGrammar_ErrorPosition(t *testing.T) {
	g := sumGrammar(t)

	_, err := g.Parse(lex(t, "one plus"), "")
	var pErr *ParseError
	if !errors.As(err, &pErr) {
		t.Fatalf("Expected *ParseError, got %v", err)
	}
	if pErr.Position.Offset != 8 || pErr.Position.Column != 9 {
		t.Errorf("Expected end-of-input position 8 (column 9), got %+v", pErr.Position)
	}
}

func TestGrammar_UnknownEntry(t *testing.T) {
	g := sumGrammar(t)

	_, err := g.Parse(lex(t, "one"), "product")
	if !ckerror.HasCode(err, ckerror.CodeUnknownRule) {
		t.Fatalf("Expected %s, got %v", ckerror.CodeUnknownRule, err)
	}
	var pErr *ParseError
	if !errors.As(err, &pErr) || pErr.Rule != "product" {
		t.Errorf("Expected ParseError naming the rule, got %v", err)
	}
}

func TestGrammar_ExplicitEntry(t *testing.T) {
	g := sumGrammar(t)

	node, err := g.Parse(lex(t, "one"), "atom")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if node.Rule != "atom" {
		t.Errorf("Expected atom root, got %s", node.Rule)
	}
	if g.Entry() != "sum" {
		t.Errorf("Expected default entry sum, got %s", g.Entry())
	}
	if names := g.RuleNames(); strings.Join(names, ",") != "sum,atom" {
		t.Errorf("Unexpected rule names %v", names)
	}
}

func TestGrammar_ReparseIsIdempotent(t *testing.T) {
	g := sumGrammar(t)
	tokens := lex(t, "(one plus two) minus one")

	first, err := g.Parse(tokens, "")
	if err != nil {
		t.Fatalf("First parse failed: %v", err)
	}
	second, err := g.Parse(tokens, "")
	if err != nil {
		t.Fatalf("Second parse failed: %v", err)
	}
	if !cst.Equal(first, second) {
		t.Errorf("Expected equal trees:\n%s\n%s", first, second)
	}
	if first == second {
		t.Error("Expected distinct tree instances")
	}
}

func TestGrammar_ConcurrentParse(t *testing.T) {
	g := sumGrammar(t)
	tokens := lex(t, "one plus (two minus one)")
	want, err := g.Parse(tokens, "")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := g.Parse(tokens, "")
			if err != nil || !cst.Equal(want, got) {
				t.Errorf("Concurrent parse diverged: %v", err)
			}
		}()
	}
	wg.Wait()
}

func TestBuild_SelfCheck(t *testing.T) {
	tests := []struct {
		name    string
		build   func(b *Builder) *Builder
		message string
	}{
		{
			name: "undeclared sub-rule",
			build: func(b *Builder) *Builder {
				return b.Rule("sum", Subrule("term", "lhs"))
			},
			message: `references undeclared rule "term"`,
		},
		{
			name: "undeclared terminal",
			build: func(b *Builder) *Builder {
				return b.Rule("odd", Consume(stranger, "x"))
			},
			message: `consumes undeclared kind "Stranger"`,
		},
		{
			name: "skipped terminal",
			build: func(b *Builder) *Builder {
				return b.Rule("notes", Consume(comment, "c"))
			},
			message: `kind "Comment" can never reach the parser`,
		},
		{
			name: "direct left recursion",
			build: func(b *Builder) *Builder {
				return b.Rule("sum", Subrule("sum", "lhs"), Consume(plus, "op"), Consume(one, "rhs"))
			},
			message: "left recursion: sum -> sum",
		},
		{
			name: "indirect left recursion through nullable prefix",
			build: func(b *Builder) *Builder {
				return b.
					Rule("a", Option(Consume(minus, "sign")), Subrule("b", "b")).
					Rule("b", Subrule("a", "a"), Consume(one, "x"))
			},
			message: "left recursion: a -> b -> a",
		},
		{
			name: "nullable repetition",
			build: func(b *Builder) *Builder {
				return b.Rule("list", Many(Option(Consume(one, "x"))))
			},
			message: "can match without consuming a token",
		},
		{
			name: "ambiguous alternation",
			build: func(b *Builder) *Builder {
				return b.Rule("atom", Or(Consume(number, "n"), Consume(one, "one")))
			},
			message: "ambiguous alternatives",
		},
		{
			name: "duplicate rule",
			build: func(b *Builder) *Builder {
				return b.Rule("atom", Consume(one, "x")).Rule("atom", Consume(two, "y"))
			},
			message: "declared more than once",
		},
		{
			name: "unknown entry",
			build: func(b *Builder) *Builder {
				return b.Rule("atom", Consume(one, "x")).Entry("start")
			},
			message: `entry rule "start" is not declared`,
		},
		{
			name: "empty grammar",
			build: func(b *Builder) *Builder {
				return b
			},
			message: "grammar has no rules",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := tt.build(NewBuilder(testVocab, Options{Logger: nopLogger})).Build()
			if err == nil {
				t.Fatalf("Expected grammar error, got grammar with rules %v", g.RuleNames())
			}
			var gErr *GrammarError
			if !errors.As(err, &gErr) {
				t.Fatalf("Expected *GrammarError, got %T", err)
			}
			if !strings.Contains(gErr.Error(), tt.message) {
				t.Errorf("Expected %q in %q", tt.message, gErr.Error())
			}
			if !ckerror.HasCode(err, ckerror.CodeGrammar) {
				t.Errorf("Expected code %s", ckerror.CodeGrammar)
			}
		})
	}
}

func TestGrammar_Report(t *testing.T) {
	report := sumGrammar(t).Report()

	if report.Entry != "sum" || len(report.Rules) != 2 {
		t.Fatalf("Unexpected report %+v", report)
	}
	sum := report.Rules[0]
	if sum.Definition != "lhs:atom (operator:AdditionOperator rhs:atom)*" {
		t.Errorf("Unexpected definition %q", sum.Definition)
	}
	if sum.Nullable {
		t.Error("sum must not be nullable")
	}
	if got := strings.Join(sum.First, ","); got != "LParen,One,Two" {
		t.Errorf("Unexpected FIRST set %s", got)
	}
	if got := strings.Join(sum.Calls, ","); got != "atom" {
		t.Errorf("Unexpected calls %s", got)
	}
}
