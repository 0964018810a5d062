package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/msto63/cstkit/internal/calc"
	"github.com/msto63/cstkit/internal/history"
	"github.com/msto63/cstkit/internal/pipeline"
	ckerror "github.com/msto63/cstkit/pkg/core/error"
	cklog "github.com/msto63/cstkit/pkg/core/log"
)

func newTestModel(t *testing.T, store history.Store) Model {
	t.Helper()
	lang, err := calc.NewLanguage(calc.Options{Logger: cklog.NewNop()})
	if err != nil {
		t.Fatalf("NewLanguage failed: %v", err)
	}
	p, err := pipeline.New(pipeline.Options{Language: lang, Logger: cklog.NewNop()})
	if err != nil {
		t.Fatalf("pipeline.New failed: %v", err)
	}
	m := NewModel(Options{Pipeline: p, Store: store, HistorySize: 3, Logger: cklog.NewNop()})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

// submit types line, presses Enter and feeds any produced messages back
func submit(t *testing.T, m Model, line string) Model {
	t.Helper()
	m.input.SetValue(line)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	for _, msg := range collect(cmd) {
		switch msg.(type) {
		case evalResultMsg, historyMsg:
			updated, _ = m.Update(msg)
			m = updated.(Model)
		}
	}
	return m
}

// collect runs cmd and flattens batches, skipping commands that block
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	switch msg := cmd().(type) {
	case tea.BatchMsg:
		var out []tea.Msg
		for _, c := range msg {
			out = append(out, collect(c)...)
		}
		return out
	default:
		return []tea.Msg{msg}
	}
}

func TestModel_Evaluate(t *testing.T) {
	m := newTestModel(t, nil)
	m = submit(t, m, "one plus two")

	if m.busy {
		t.Error("model still busy after result")
	}
	if len(m.transcript) != 1 {
		t.Fatalf("transcript has %d entries, want 1", len(m.transcript))
	}
	e := m.transcript[0]
	if e.err != nil {
		t.Fatalf("unexpected error: %v", e.err)
	}
	if e.result.Value != 3 {
		t.Errorf("Value = %v, want 3", e.result.Value)
	}
	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}
}

func TestModel_EvaluateError(t *testing.T) {
	m := newTestModel(t, nil)
	m = submit(t, m, "plus one")

	if len(m.transcript) != 1 {
		t.Fatalf("transcript has %d entries, want 1", len(m.transcript))
	}
	if !ckerror.HasCode(m.transcript[0].err, ckerror.CodeParse) {
		t.Errorf("expected parse error, got %v", m.transcript[0].err)
	}
	if !strings.Contains(m.renderTranscript(), string(ckerror.CodeParse)) {
		t.Error("transcript does not show the error code")
	}
}

func TestModel_Commands(t *testing.T) {
	m := newTestModel(t, nil)

	m = submit(t, m, ":tree")
	if !m.showTree {
		t.Error(":tree did not enable tree display")
	}
	m = submit(t, m, ":tokens")
	if !m.showTokens {
		t.Error(":tokens did not enable token display")
	}
	m = submit(t, m, ":tree")
	if m.showTree {
		t.Error("second :tree did not disable tree display")
	}

	m = submit(t, m, ":clear")
	if len(m.transcript) != 0 {
		t.Errorf("transcript has %d entries after :clear", len(m.transcript))
	}

	m = submit(t, m, ":bogus")
	if len(m.transcript) != 1 || !strings.Contains(m.transcript[0].notice, "unknown command") {
		t.Errorf("unexpected transcript after unknown command: %+v", m.transcript)
	}

	m = submit(t, m, ":history")
	if got := m.transcript[len(m.transcript)-1].notice; got != "history is disabled" {
		t.Errorf("notice = %q", got)
	}
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, nil)

	for _, key := range []tea.KeyMsg{{Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("%s: expected a command", key)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%s did not quit", key)
		}
	}

	m.input.SetValue(":quit")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error(":quit did not quit")
	}
}

func TestModel_Recall(t *testing.T) {
	m := newTestModel(t, nil)
	for _, line := range []string{"one", "two", "three", "four"} {
		m = submit(t, m, line)
	}

	// HistorySize 3 keeps the newest three lines
	if len(m.lines) != 3 || m.lines[0] != "two" {
		t.Fatalf("lines = %v", m.lines)
	}

	up := tea.KeyMsg{Type: tea.KeyUp}
	down := tea.KeyMsg{Type: tea.KeyDown}

	updated, _ := m.Update(up)
	m = updated.(Model)
	if got := m.input.Value(); got != "four" {
		t.Errorf("first recall = %q, want four", got)
	}
	for i := 0; i < 5; i++ {
		updated, _ = m.Update(up)
		m = updated.(Model)
	}
	if got := m.input.Value(); got != "two" {
		t.Errorf("oldest recall = %q, want two", got)
	}
	for i := 0; i < 3; i++ {
		updated, _ = m.Update(down)
		m = updated.(Model)
	}
	if got := m.input.Value(); got != "" {
		t.Errorf("input after moving past newest = %q, want empty", got)
	}
}

func TestModel_RecordsHistory(t *testing.T) {
	store := history.NewMemoryStore()
	m := newTestModel(t, store)

	m = submit(t, m, "two times three")
	m = submit(t, m, "one &")

	n, err := store.Count(context.Background())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 2 {
		t.Errorf("recorded %d entries, want 2", n)
	}

	m = submit(t, m, ":history")
	last := m.transcript[len(m.transcript)-1].notice
	if !strings.Contains(last, "two times three") || !strings.Contains(last, string(ckerror.CodeLex)) {
		t.Errorf("history notice missing entries: %q", last)
	}
}

func TestModel_View(t *testing.T) {
	m := NewModel(Options{Logger: cklog.NewNop()})
	if got := m.View(); got != "Loading..." {
		t.Errorf("View before sizing = %q", got)
	}

	m = newTestModel(t, nil)
	m = submit(t, m, ":tree")
	m = submit(t, m, "one plus two")
	view := m.View()
	for _, want := range []string{"cstkit", "entry: expression", "tree on"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}
