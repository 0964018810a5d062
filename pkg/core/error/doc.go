// File: doc.go
// Title: Error Package Documentation
// Description: Structured errors with codes and severities for cstkit.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial package documentation

/*
Package error provides the structured error type used throughout cstkit.

Every failure leaving a pipeline phase carries a Code. The four pipeline error
kinds map onto codes as follows:

  • lexer.LexError        → CodeLex
  • grammar.ParseError    → CodeParse (CodeUnknownRule for a bad entry rule)
  • grammar.GrammarError  → CodeGrammar (CodeTokenDefinition for vocabularies)
  • visitor.DispatchError → CodeDispatch

Import it under an alias, since the package name shadows the builtin:

	ckerror "github.com/msto63/cstkit/pkg/core/error"

	if ckerror.HasCode(err, ckerror.CodeParse) {
		...
	}
*/
package error
