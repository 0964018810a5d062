// File: lexer.go
// Title: Vocabulary-Driven Lexer
// Description: Converts source text into a token sequence by trying the
//              vocabulary's leaf kinds in declaration order at every position.
//              Skipped kinds are consumed but not emitted.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial lexer implementation

package lexer

import (
	"fmt"
	"unicode/utf8"

	"github.com/msto63/cstkit/internal/token"
	ckerror "github.com/msto63/cstkit/pkg/core/error"
	cklog "github.com/msto63/cstkit/pkg/core/log"
)

// Lexer tokenizes text against a fixed vocabulary. It keeps no per-call
// state and may be shared between goroutines.
type Lexer struct {
	vocab  *token.Vocabulary
	leaves []*token.Kind
	logger *cklog.Logger
}

// Options configures lexer behavior
type Options struct {
	Logger *cklog.Logger
}

// LexError reports a position at which no declared kind matches
type LexError struct {
	Position token.Position
	Char     rune

	err *ckerror.Error
}

func newLexError(pos token.Position, char rune) *LexError {
	e := &LexError{Position: pos, Char: char}
	e.err = ckerror.Newf(ckerror.CodeLex, "no token kind matches %q", char).
		WithOperation("lexer.Tokenize").
		WithDetail("offset", pos.Offset).
		WithDetail("line", pos.Line).
		WithDetail("column", pos.Column)
	return e
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at line %d, column %d: unexpected character %q",
		e.Position.Line, e.Position.Column, e.Char)
}

// Unwrap exposes the coded error so ckerror.HasCode(err, CodeLex) holds
func (e *LexError) Unwrap() error {
	return e.err
}

// New creates a lexer for the vocabulary
func New(vocab *token.Vocabulary, opts Options) *Lexer {
	if opts.Logger == nil {
		opts.Logger = cklog.GetDefault()
	}
	return &Lexer{
		vocab:  vocab,
		leaves: vocab.Leaves(),
		logger: opts.Logger.WithField("component", "lexer"),
	}
}

// Vocabulary returns the vocabulary the lexer was built from
func (l *Lexer) Vocabulary() *token.Vocabulary {
	return l.vocab
}

// Tokenize scans text left to right. At each position the first leaf kind
// in declaration order that matches wins. When nothing matches a *LexError
// is returned and no tokens.
func (l *Lexer) Tokenize(text string) ([]token.Token, error) {
	var (
		tokens  []token.Token
		skipped int
		pos     = token.Position{Offset: 0, Line: 1, Column: 1}
	)

	for pos.Offset < len(text) {
		rest := text[pos.Offset:]
		kind, n := l.match(rest)
		if kind == nil {
			char, _ := utf8.DecodeRuneInString(rest)
			lexErr := newLexError(pos, char)
			l.logger.Debug("Tokenization failed", cklog.Fields{
				"offset": pos.Offset,
				"char":   string(char),
			})
			return nil, lexErr
		}

		image := rest[:n]
		if kind.IsSkipped() {
			skipped++
		} else {
			tokens = append(tokens, token.Token{Kind: kind, Image: image, Pos: pos})
		}
		pos = advance(pos, image)
	}

	l.logger.Trace("Tokenization completed", cklog.Fields{
		"tokens":  len(tokens),
		"skipped": skipped,
	})
	return tokens, nil
}

func (l *Lexer) match(input string) (*token.Kind, int) {
	for _, kind := range l.leaves {
		if n := kind.Match(input); n > 0 {
			return kind, n
		}
	}
	return nil, 0
}

// advance moves pos past image, tracking lines and rune columns
func advance(pos token.Position, image string) token.Position {
	for _, r := range image {
		if r == '\n' {
			pos.Line++
			pos.Column = 1
		} else {
			pos.Column++
		}
	}
	pos.Offset += len(image)
	return pos
}
