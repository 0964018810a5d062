// File: doc.go
// Title: Token Package Documentation
// Description: Token model shared by lexer and grammar.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial package documentation

/*
Package token declares token kinds and token instances.

A leaf kind has a regular expression pattern and is matched against text by the
lexer. An abstract kind (pattern NoPattern) groups leaf kinds so that grammar
rules can accept "any token of this family":

	AdditionOperator := token.Define("AdditionOperator", token.NoPattern)
	Plus := token.Define("Plus", `plus\b`, token.Categories(AdditionOperator))

	vocab, err := token.NewVocabulary(WhiteSpace, AdditionOperator, Plus)

Kinds are immutable once defined and vocabularies are validated on
construction, so both may be declared at package level and shared freely.
*/
package token
