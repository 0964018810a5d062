// File: error_test.go
// Title: Error Module Tests
// Description: Tests for error creation, wrapping, codes, severities and JSON output.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial test suite

package error

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"
	"google.golang.org/grpc/codes"
)

func TestNew(t *testing.T) {
	err := New("boom")
	if err.Error() != "boom" {
		t.Errorf("Error() = %q, want %q", err.Error(), "boom")
	}
	if err.Code() != CodeUnknown {
		t.Errorf("Code() = %v, want %v", err.Code(), CodeUnknown)
	}
	if err.Severity() != SeverityMedium {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityMedium)
	}
	if err.Timestamp().IsZero() {
		t.Error("Timestamp() should not be zero")
	}
}

func TestNewf(t *testing.T) {
	err := Newf(CodeParse, "expected %s", "NumberWord")
	if err.Error() != "expected NumberWord" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Code() != CodeParse {
		t.Errorf("Code() = %v, want %v", err.Code(), CodeParse)
	}
	if err.Severity() != SeverityLow {
		t.Errorf("Severity() = %v, want %v", err.Severity(), SeverityLow)
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		message  string
		wantNil  bool
		wantMsg  string
		wantCode Code
	}{
		{name: "wrap nil error", err: nil, message: "ctx", wantNil: true},
		{name: "wrap standard error", err: errors.New("disk full"), message: "record", wantMsg: "record: disk full", wantCode: CodeUnknown},
		{name: "wrap coded error", err: New("bad token").WithCode(CodeLex), message: "tokenize", wantMsg: "tokenize: bad token", wantCode: CodeLex},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Wrap(tt.err, tt.message)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("Wrap() = %v, want nil", got)
				}
				return
			}
			if got.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", got.Error(), tt.wantMsg)
			}
			if got.Code() != tt.wantCode {
				t.Errorf("Code() = %v, want %v", got.Code(), tt.wantCode)
			}
			if !errors.Is(got, tt.err) {
				t.Error("wrapped error should match its cause with errors.Is")
			}
		})
	}
}

func TestHasCodeThroughForeignWrapper(t *testing.T) {
	inner := New("unexpected token").WithCode(CodeParse)
	outer := fmt.Errorf("parse: %w", inner)

	if !HasCode(outer, CodeParse) {
		t.Error("HasCode() should find the code through fmt.Errorf wrapping")
	}
	if HasCode(outer, CodeLex) {
		t.Error("HasCode() should not report a different code")
	}
	if GetCode(outer) != CodeParse {
		t.Errorf("GetCode() = %v, want %v", GetCode(outer), CodeParse)
	}
	if GetCode(errors.New("plain")) != CodeUnknown {
		t.Error("GetCode() of a plain error should be CodeUnknown")
	}
	if !errors.Is(outer, New("").WithCode(CodeParse)) {
		t.Error("errors.Is() should match on code")
	}
}

func TestCodeCategories(t *testing.T) {
	tests := []struct {
		code       Code
		category   string
		definition bool
		grpc       codes.Code
	}{
		{CodeLex, "lexical", false, codes.InvalidArgument},
		{CodeParse, "syntax", false, codes.InvalidArgument},
		{CodeUnknownRule, "syntax", false, codes.NotFound},
		{CodeGrammar, "definition", true, codes.Internal},
		{CodeDispatch, "definition", true, codes.Internal},
		{CodeEvaluation, "evaluation", false, codes.FailedPrecondition},
		{CodeStorage, "storage", false, codes.Unavailable},
		{CodeInternal, "generic", false, codes.Internal},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			if !tt.code.IsValid() {
				t.Errorf("%s should be valid", tt.code)
			}
			if got := tt.code.Category(); got != tt.category {
				t.Errorf("Category() = %q, want %q", got, tt.category)
			}
			if got := tt.code.IsDefinitionTime(); got != tt.definition {
				t.Errorf("IsDefinitionTime() = %v, want %v", got, tt.definition)
			}
			if got := tt.code.GRPCCode(); got != tt.grpc {
				t.Errorf("GRPCCode() = %v, want %v", got, tt.grpc)
			}
		})
	}

	if Code("NOPE").IsValid() {
		t.Error("unknown code should not be valid")
	}
}

func TestMarshalJSON(t *testing.T) {
	err := Wrap(New("no kind matches '&'").WithCode(CodeLex).WithDetail("offset", 4), "tokenize").
		WithOperation("lexer.Tokenize")

	data, mErr := err.MarshalJSON()
	if mErr != nil {
		t.Fatalf("MarshalJSON() error = %v", mErr)
	}

	var decoded map[string]interface{}
	if uErr := json.Unmarshal(data, &decoded); uErr != nil {
		t.Fatalf("Unmarshal() error = %v", uErr)
	}
	if decoded["code"] != "LEX_ERROR" {
		t.Errorf("code = %v, want LEX_ERROR", decoded["code"])
	}
	if decoded["operation"] != "lexer.Tokenize" {
		t.Errorf("operation = %v", decoded["operation"])
	}
	details, ok := decoded["details"].(map[string]interface{})
	if !ok || details["offset"] != "4" {
		t.Errorf("details = %v", decoded["details"])
	}
}

func TestString(t *testing.T) {
	s := New("bad").WithCode(CodeConfig).WithDetail("b", 2).WithDetail("a", 1).String()
	for _, want := range []string{"Error: bad", "Code: CONFIG_ERROR", "Severity: medium", "Details: {a=1, b=2}"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q in:\n%s", want, s)
		}
	}
}
