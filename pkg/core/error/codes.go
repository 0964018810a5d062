// File: codes.go
// Title: Error Code Definitions
// Description: Defines the error codes used across cstkit so that lexing,
//              parsing, grammar definition, dispatch and host failures can be
//              classified and mapped onto CLI exit paths and RPC status codes.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial code set for the cstkit pipeline

package error

import (
	"google.golang.org/grpc/codes"
)

// Code represents a structured error code for categorizing errors
type Code string

const (
	// Generic codes
	CodeUnknown      Code = "UNKNOWN"
	CodeInternal     Code = "INTERNAL"
	CodeInvalidInput Code = "INVALID_INPUT"

	// Pipeline phases
	CodeLex         Code = "LEX_ERROR"
	CodeParse       Code = "PARSE_ERROR"
	CodeUnknownRule Code = "UNKNOWN_RULE"
	CodeEvaluation  Code = "EVALUATION_ERROR"

	// Definition time
	CodeGrammar         Code = "GRAMMAR_ERROR"
	CodeTokenDefinition Code = "TOKEN_DEFINITION"
	CodeDispatch        Code = "DISPATCH_ERROR"
	CodeArityMismatch   Code = "ARITY_MISMATCH"

	// Host
	CodeConfig  Code = "CONFIG_ERROR"
	CodeStorage Code = "STORAGE_ERROR"
)

// String returns the string representation of the error code
func (c Code) String() string {
	return string(c)
}

// IsValid checks if the error code is a known valid code
func (c Code) IsValid() bool {
	switch c {
	case CodeUnknown, CodeInternal, CodeInvalidInput,
		CodeLex, CodeParse, CodeUnknownRule, CodeEvaluation,
		CodeGrammar, CodeTokenDefinition, CodeDispatch, CodeArityMismatch,
		CodeConfig, CodeStorage:
		return true
	default:
		return false
	}
}

// Category returns the high-level category of the error code
func (c Code) Category() string {
	switch c {
	case CodeLex:
		return "lexical"
	case CodeParse, CodeUnknownRule:
		return "syntax"
	case CodeGrammar, CodeTokenDefinition, CodeDispatch, CodeArityMismatch:
		return "definition"
	case CodeEvaluation:
		return "evaluation"
	case CodeConfig:
		return "configuration"
	case CodeStorage:
		return "storage"
	default:
		return "generic"
	}
}

// IsDefinitionTime reports whether the code belongs to errors raised while
// building token vocabularies, grammars or interpreters, before any input is seen.
func (c Code) IsDefinitionTime() bool {
	return c.Category() == "definition"
}

// GRPCCode returns the gRPC status code used when the error crosses the RPC boundary
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeLex, CodeParse, CodeInvalidInput:
		return codes.InvalidArgument
	case CodeUnknownRule:
		return codes.NotFound
	case CodeEvaluation:
		return codes.FailedPrecondition
	case CodeStorage:
		return codes.Unavailable
	case CodeUnknown:
		return codes.Unknown
	default:
		return codes.Internal
	}
}

// Severity represents the severity level of an error
type Severity int

const (
	// SeverityLow covers bad user input: a text that does not lex, parse or evaluate
	SeverityLow Severity = iota

	// SeverityMedium covers host problems such as storage or configuration
	SeverityMedium

	// SeverityHigh covers broken definitions that make a pipeline unusable
	SeverityHigh

	// SeverityCritical covers internal defects
	SeverityCritical
)

// String returns the string representation of the severity level
func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// SeverityFromCode determines the default severity for an error code
func SeverityFromCode(code Code) Severity {
	switch code {
	case CodeLex, CodeParse, CodeUnknownRule, CodeEvaluation, CodeInvalidInput:
		return SeverityLow
	case CodeConfig, CodeStorage:
		return SeverityMedium
	case CodeGrammar, CodeTokenDefinition, CodeDispatch:
		return SeverityHigh
	case CodeArityMismatch, CodeInternal:
		return SeverityCritical
	default:
		return SeverityMedium
	}
}
