// File: logger_test.go
// Title: Logger Tests
// Description: Tests for level filtering, formatters, cloning and timers.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial test suite

package log

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/go-json-experiment/json"

	ckerror "github.com/msto63/cstkit/pkg/core/error"
)

func newBufferLogger(level Level, format Format) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return NewWithConfig(Config{Level: level, Format: format, Output: &buf, Name: "test"}), &buf
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    Level
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"WARNING", LevelWarn, false},
		{" trace ", LevelTrace, false},
		{"", LevelInfo, false},
		{"loud", LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	if f, err := ParseFormat("logfmt"); err != nil || f != FormatLogfmt {
		t.Errorf("ParseFormat(logfmt) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); err == nil {
		t.Error("ParseFormat(xml) should fail")
	}
}

func TestLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(LevelWarn, FormatText)

	logger.Debug("hidden")
	logger.Info("hidden too")
	logger.Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("output contains filtered messages: %s", out)
	}
	if !strings.Contains(out, "[WRN]") || !strings.Contains(out, "shown") {
		t.Errorf("output missing warning: %s", out)
	}
}

func TestJSONFormatter(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, FormatJSON)
	logger.WithRunID("run-1").WithField("phase", "lex").Debug("tokenized", Fields{"tokens": 3})

	var decoded map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &decoded); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	checks := map[string]interface{}{
		"level":   "debug",
		"message": "tokenized",
		"logger":  "test",
		"run_id":  "run-1",
		"phase":   "lex",
		"tokens":  float64(3),
	}
	for k, want := range checks {
		if decoded[k] != want {
			t.Errorf("%s = %v, want %v", k, decoded[k], want)
		}
	}
}

func TestLogfmtFormatter(t *testing.T) {
	logger, buf := newBufferLogger(LevelInfo, FormatLogfmt)
	logger.Info("evaluated", Fields{"value": 3.0, "input": "one plus two"})

	out := buf.String()
	for _, want := range []string{`message="evaluated"`, `input="one plus two"`, "value=3", "level=info"} {
		if !strings.Contains(out, want) {
			t.Errorf("logfmt output missing %q: %s", want, out)
		}
	}
}

func TestWithFieldDoesNotMutateParent(t *testing.T) {
	parent, buf := newBufferLogger(LevelInfo, FormatText)
	_ = parent.WithField("child", true)

	parent.Info("parent")
	if strings.Contains(buf.String(), "child") {
		t.Errorf("parent logger picked up child field: %s", buf.String())
	}
}

func TestLogErrorUsesSeverity(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"bad input is a warning", ckerror.New("no match").WithCode(ckerror.CodeLex), "[WRN]"},
		{"broken grammar is an error", ckerror.New("undefined rule").WithCode(ckerror.CodeGrammar), "[ERR]"},
		{"plain error is an error", errors.New("boom"), "[ERR]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newBufferLogger(LevelDebug, FormatText)
			logger.LogError("pipeline failed", tt.err)
			if !strings.Contains(buf.String(), tt.want) {
				t.Errorf("output %q does not contain %q", buf.String(), tt.want)
			}
		})
	}
}

func TestTimer(t *testing.T) {
	logger, buf := newBufferLogger(LevelDebug, FormatText)

	timer := logger.StartTimer("parse").WithField("rule", "expression")
	if timer.Stop() < 0 {
		t.Error("elapsed should not be negative")
	}
	if timer.Stop() != 0 {
		t.Error("second Stop() should return 0")
	}

	out := buf.String()
	if !strings.Contains(out, "parse completed") || !strings.Contains(out, "rule=expression") {
		t.Errorf("timer output unexpected: %s", out)
	}
	if strings.Count(out, "parse completed") != 1 {
		t.Errorf("timer logged more than once: %s", out)
	}

	buf.Reset()
	logger.StartTimer("lex").StopWithError(errors.New("no kind matches"))
	if !strings.Contains(buf.String(), "lex failed") {
		t.Errorf("StopWithError output unexpected: %s", buf.String())
	}
}

func TestNopLogger(t *testing.T) {
	logger := NewNop()
	if logger.IsLevelEnabled(LevelFatal) {
		t.Error("nop logger should not enable any level")
	}
	logger.Error("dropped")
}
