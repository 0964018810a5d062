// File: language.go
// Title: Arithmetic Language
// Description: Assembles vocabulary, lexer, grammar and interpreter of the
//              calc language. Operator precedence is encoded by rule nesting.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial language definition

package calc

import (
	"github.com/msto63/cstkit/internal/grammar"
	"github.com/msto63/cstkit/internal/lexer"
	"github.com/msto63/cstkit/internal/token"
	"github.com/msto63/cstkit/internal/visitor"
	ckconfig "github.com/msto63/cstkit/pkg/core/config"
	cklog "github.com/msto63/cstkit/pkg/core/log"
)

// Rule names
const (
	RuleExpression               = "expression"
	RuleAdditionExpression       = "additionExpression"
	RuleMultiplicationExpression = "multiplicationExpression"
	RuleAtomicExpression         = "atomicExpression"
	RuleParenthesisExpression    = "parenthesisExpression"
)

// Options configures a calc language
type Options struct {
	// Numbers maps number words to values; nil selects zero..twenty
	Numbers map[string]int
	// DisableDigits removes decimal literals from the vocabulary
	DisableDigits bool
	Logger        *cklog.Logger
}

// OptionsFromConfig derives language options from the language section
func OptionsFromConfig(cfg ckconfig.LanguageConfig, logger *cklog.Logger) Options {
	return Options{
		Numbers:       cfg.Numbers,
		DisableDigits: !cfg.DigitsEnabled(),
		Logger:        logger,
	}
}

// Language bundles the validated definitions of one calc dialect. All parts
// are immutable and may be shared between goroutines.
type Language struct {
	vocab       *token.Vocabulary
	lexer       *lexer.Lexer
	grammar     *grammar.Grammar
	interpreter *visitor.Interpreter[float64]
	numbers     map[string]int
}

// NewLanguage defines tokens, grammar and interpreter. Every definition-time
// check runs here, so a returned Language can parse and evaluate any input.
func NewLanguage(opts Options) (*Language, error) {
	if opts.Logger == nil {
		opts.Logger = cklog.GetDefault()
	}
	numbers := opts.Numbers
	if len(numbers) == 0 {
		numbers = ckconfig.DefaultNumbers()
	}

	words, err := numberWordKinds(numbers)
	if err != nil {
		return nil, err
	}
	vocab, err := vocabulary(words, !opts.DisableDigits)
	if err != nil {
		return nil, err
	}

	g, err := buildGrammar(vocab, opts.Logger)
	if err != nil {
		return nil, err
	}

	lang := &Language{
		vocab:   vocab,
		lexer:   lexer.New(vocab, lexer.Options{Logger: opts.Logger}),
		grammar: g,
		numbers: make(map[string]int, len(numbers)),
	}
	for w, v := range numbers {
		lang.numbers[w] = v
	}

	if lang.interpreter, err = visitor.New(g, lang.handlers()); err != nil {
		return nil, err
	}
	return lang, nil
}

// buildGrammar declares the rules; deeper rules bind tighter
func buildGrammar(vocab *token.Vocabulary, logger *cklog.Logger) (*grammar.Grammar, error) {
	return grammar.NewBuilder(vocab, grammar.Options{Logger: logger}).
		Rule(RuleExpression,
			grammar.Subrule(RuleAdditionExpression, ""),
		).
		Rule(RuleAdditionExpression,
			grammar.Subrule(RuleMultiplicationExpression, "lhs"),
			grammar.Many(
				grammar.Consume(AdditionOperator, "operator"),
				grammar.Subrule(RuleMultiplicationExpression, "rhs"),
			),
		).
		Rule(RuleMultiplicationExpression,
			grammar.Subrule(RuleAtomicExpression, "lhs"),
			grammar.Many(
				grammar.Consume(MultiplicationOperator, "operator"),
				grammar.Subrule(RuleAtomicExpression, "rhs"),
			),
		).
		Rule(RuleAtomicExpression,
			grammar.Or(
				grammar.Subrule(RuleParenthesisExpression, ""),
				grammar.Consume(Number, "number"),
			),
		).
		Rule(RuleParenthesisExpression,
			grammar.Consume(LParen, ""),
			grammar.Subrule(RuleExpression, "inner"),
			grammar.Consume(RParen, ""),
		).
		Entry(RuleExpression).
		Build()
}

// Vocabulary returns the token vocabulary
func (l *Language) Vocabulary() *token.Vocabulary { return l.vocab }

// Lexer returns the lexer
func (l *Language) Lexer() *lexer.Lexer { return l.lexer }

// Grammar returns the grammar
func (l *Language) Grammar() *grammar.Grammar { return l.grammar }

// Interpreter returns the evaluating interpreter
func (l *Language) Interpreter() *visitor.Interpreter[float64] { return l.interpreter }

// Value returns the value of a number word
func (l *Language) Value(word string) (int, bool) {
	v, ok := l.numbers[word]
	return v, ok
}

// Evaluate runs tokenize, parse and visit for text from the entry rule
func (l *Language) Evaluate(text string) (float64, error) {
	tokens, err := l.lexer.Tokenize(text)
	if err != nil {
		return 0, err
	}
	tree, err := l.grammar.Parse(tokens, RuleExpression)
	if err != nil {
		return 0, err
	}
	return l.interpreter.Visit(tree)
}
