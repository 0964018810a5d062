// File: pipeline_test.go
// Title: Pipeline Unit Tests
// Description: Tests for full and partial runs, run identity, input limits
//              and cancellation between phases.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial pipeline tests

package pipeline

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/msto63/cstkit/internal/calc"
	ckerror "github.com/msto63/cstkit/pkg/core/error"
	cklog "github.com/msto63/cstkit/pkg/core/log"
)

func newPipeline(t *testing.T, opts Options) *Pipeline {
	t.Helper()
	lang, err := calc.NewLanguage(calc.Options{Logger: cklog.NewNop()})
	if err != nil {
		t.Fatalf("NewLanguage failed: %v", err)
	}
	opts.Language = lang
	if opts.Logger == nil {
		opts.Logger = cklog.NewNop()
	}
	p, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

func TestPipeline_Run(t *testing.T) {
	p := newPipeline(t, Options{})

	tests := []struct {
		input string
		want  float64
	}{
		{"one plus two", 3},
		{"four plus three plus one", 8},
		{"two", 2},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res, err := p.Run(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("Run failed: %v", err)
			}
			if res.Value != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, res.Value)
			}
			if res.Phase != PhaseVisit || res.Tree == nil || len(res.Tokens) == 0 {
				t.Errorf("Incomplete result %+v", res)
			}
			if _, err := uuid.Parse(res.RunID); err != nil {
				t.Errorf("Run ID %q is not a UUID: %v", res.RunID, err)
			}
		})
	}
}

func TestPipeline_RunIDsAreUnique(t *testing.T) {
	p := newPipeline(t, Options{})

	a, _ := p.Run(context.Background(), "one")
	b, _ := p.Run(context.Background(), "one")
	if a.RunID == b.RunID {
		t.Error("Expected distinct run IDs")
	}
}

func TestPipeline_PartialRuns(t *testing.T) {
	p := newPipeline(t, Options{})

	res, err := p.Tokenize(context.Background(), "one plus two")
	if err != nil {
		t.Fatalf("Tokenize failed: %v", err)
	}
	if res.Phase != PhaseTokenize || len(res.Tokens) != 3 || res.Tree != nil {
		t.Errorf("Unexpected tokenize result %+v", res)
	}

	res, err = p.Parse(context.Background(), "one plus two", calc.RuleAdditionExpression)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if res.Phase != PhaseParse || res.Tree == nil || res.Tree.Rule != calc.RuleAdditionExpression {
		t.Errorf("Unexpected parse result %+v", res)
	}
}

func TestPipeline_Failures(t *testing.T) {
	p := newPipeline(t, Options{MaxInputLength: 20})

	tests := []struct {
		input string
		code  ckerror.Code
	}{
		{"one & two", ckerror.CodeLex},
		{"plus one", ckerror.CodeParse},
		{"one over zero", ckerror.CodeEvaluation},
		{strings.Repeat("one plus ", 5) + "one", ckerror.CodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			res, err := p.Run(context.Background(), tt.input)
			if !ckerror.HasCode(err, tt.code) {
				t.Fatalf("Expected %s, got %v", tt.code, err)
			}
			if res == nil || res.RunID == "" {
				t.Fatal("Expected run identity on failure")
			}
			if res.Tree != nil || res.Tokens != nil {
				t.Error("Expected no partial tokens or tree")
			}
		})
	}
}

func TestPipeline_Cancelled(t *testing.T) {
	p := newPipeline(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, "one")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestPipeline_UnknownEntry(t *testing.T) {
	lang, err := calc.NewLanguage(calc.Options{Logger: cklog.NewNop()})
	if err != nil {
		t.Fatalf("NewLanguage failed: %v", err)
	}
	if _, err := New(Options{Language: lang, EntryRule: "statement", Logger: cklog.NewNop()}); !ckerror.HasCode(err, ckerror.CodeUnknownRule) {
		t.Errorf("Expected %s, got %v", ckerror.CodeUnknownRule, err)
	}

	p := newPipeline(t, Options{})
	if _, err := p.RunFrom(context.Background(), "one", "statement"); !ckerror.HasCode(err, ckerror.CodeUnknownRule) {
		t.Errorf("Expected %s from RunFrom, got %v", ckerror.CodeUnknownRule, err)
	}
}

func TestPipeline_LogsRunID(t *testing.T) {
	var buf bytes.Buffer
	logger := cklog.NewWithConfig(cklog.Config{Level: cklog.LevelInfo, Format: cklog.FormatLogfmt, Output: &buf})
	p := newPipeline(t, Options{Logger: logger})

	res, err := p.Run(context.Background(), "one plus one")
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !strings.Contains(buf.String(), "run_id="+res.RunID) {
		t.Errorf("Expected run ID in log output, got %q", buf.String())
	}
}
