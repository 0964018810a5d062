// File: token.go
// Title: Token Instances
// Description: Tokens produced by the lexer: leaf kind, matched image and
//              source position.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial token type

package token

import (
	"fmt"
)

// Position represents a position in the source text
type Position struct {
	Offset int // Byte offset (0-based)
	Line   int // Line number (1-based)
	Column int // Column number (1-based, in runes)
}

// String returns line:column
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Token is an immutable lexed token
type Token struct {
	Kind  *Kind
	Image string
	Pos   Position
}

// End returns the byte offset just past the token
func (t Token) End() int {
	return t.Pos.Offset + len(t.Image)
}

// Is reports whether the token's kind is k or has k among its categories
func (t Token) Is(k *Kind) bool {
	return t.Kind.Is(k)
}

// String returns a compact representation such as Plus("plus")@1:5
func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%s", t.Kind, t.Image, t.Pos)
}

// Matches is the category test: true iff the token's leaf kind equals kind or
// transitively lists it among its categories.
func Matches(tok Token, kind *Kind) bool {
	return tok.Is(kind)
}
