// File: model.go
// Title: Interactive Evaluation Shell
// Description: Bubble Tea model that evaluates one line per Enter through a
//              pipeline, keeps a scrollable transcript and recalls earlier
//              input. Colon commands toggle tree and token display.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial REPL

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/msto63/cstkit/internal/history"
	"github.com/msto63/cstkit/internal/pipeline"
	"github.com/msto63/cstkit/internal/render"
	cklog "github.com/msto63/cstkit/pkg/core/log"
)

const helpText = ":tree  :tokens  :history  :clear  :help  :quit"

// Options configures the shell
type Options struct {
	Pipeline *pipeline.Pipeline
	// Store is optional; every evaluation is recorded when set
	Store       history.Store
	Prompt      string
	HistorySize int
	Logger      *cklog.Logger
}

// entry is one transcript item
type entry struct {
	input  string
	result *pipeline.Result
	err    error
	notice string
}

type evalResultMsg struct {
	input  string
	result *pipeline.Result
	err    error
}

type historyMsg struct {
	entries []*history.Entry
	err     error
}

// Model is the REPL model
type Model struct {
	pipeline *pipeline.Pipeline
	store    history.Store
	logger   *cklog.Logger

	width  int
	height int
	ready  bool
	busy   bool

	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	transcript []entry
	showTree   bool
	showTokens bool

	// submitted lines, oldest first; recall indexes into it
	lines       []string
	historySize int
	recall      int
}

// NewModel creates a REPL model
func NewModel(opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = cklog.GetDefault()
	}
	if opts.Prompt == "" {
		opts.Prompt = "» "
	}
	if opts.HistorySize <= 0 {
		opts.HistorySize = 100
	}

	ti := textinput.New()
	ti.Prompt = opts.Prompt
	ti.Placeholder = "one plus two times three"
	ti.CharLimit = 4096
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	return Model{
		pipeline:    opts.Pipeline,
		store:       opts.Store,
		logger:      opts.Logger.WithField("component", "repl"),
		input:       ti,
		spinner:     sp,
		historySize: opts.HistorySize,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "enter":
			if m.busy {
				return m, nil
			}
			line := strings.TrimSpace(m.input.Value())
			if line == "" {
				return m, nil
			}
			m.input.Reset()
			m.remember(line)
			if strings.HasPrefix(line, ":") {
				return m.command(line)
			}
			m.busy = true
			return m, tea.Batch(m.evaluate(line), m.spinner.Tick)

		case "up":
			m.recallLine(-1)
			return m, nil

		case "down":
			m.recallLine(1)
			return m, nil

		case "ctrl+l":
			m.transcript = nil
			m.updateContent()
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		if !m.ready {
			m.viewport = viewport.New(msg.Width, max(1, msg.Height-6))
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = max(1, msg.Height-6)
		}
		m.input.Width = max(10, msg.Width-6)
		m.updateContent()

	case evalResultMsg:
		m.busy = false
		m.transcript = append(m.transcript, entry{input: msg.input, result: msg.result, err: msg.err})
		m.updateContent()

	case historyMsg:
		if msg.err != nil {
			m.transcript = append(m.transcript, entry{err: msg.err})
		} else {
			m.transcript = append(m.transcript, entry{notice: formatHistory(msg.entries)})
		}
		m.updateContent()

	case spinner.TickMsg:
		if m.busy {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m Model) command(line string) (tea.Model, tea.Cmd) {
	switch strings.Fields(line)[0] {
	case ":q", ":quit", ":exit":
		return m, tea.Quit
	case ":tree":
		m.showTree = !m.showTree
		m.notify(fmt.Sprintf("tree display %s", onOff(m.showTree)))
	case ":tokens":
		m.showTokens = !m.showTokens
		m.notify(fmt.Sprintf("token display %s", onOff(m.showTokens)))
	case ":clear":
		m.transcript = nil
		m.updateContent()
	case ":history":
		if m.store == nil {
			m.notify("history is disabled")
			return m, nil
		}
		return m, m.loadHistory()
	case ":help":
		m.notify(helpText)
	default:
		m.notify(fmt.Sprintf("unknown command %s (%s)", line, helpText))
	}
	return m, nil
}

func (m *Model) notify(text string) {
	m.transcript = append(m.transcript, entry{notice: text})
	m.updateContent()
}

func (m *Model) remember(line string) {
	if n := len(m.lines); n == 0 || m.lines[n-1] != line {
		m.lines = append(m.lines, line)
	}
	if len(m.lines) > m.historySize {
		m.lines = m.lines[len(m.lines)-m.historySize:]
	}
	m.recall = len(m.lines)
}

// recallLine moves through submitted lines; past the newest the input clears
func (m *Model) recallLine(delta int) {
	if len(m.lines) == 0 {
		return
	}
	m.recall = min(max(m.recall+delta, 0), len(m.lines))
	if m.recall == len(m.lines) {
		m.input.Reset()
		return
	}
	m.input.SetValue(m.lines[m.recall])
	m.input.CursorEnd()
}

func (m *Model) evaluate(line string) tea.Cmd {
	p, store, logger := m.pipeline, m.store, m.logger
	return func() tea.Msg {
		ctx := context.Background()
		res, err := p.Run(ctx, line)
		if store != nil && res != nil {
			if recErr := store.Record(ctx, history.FromResult(res, err)); recErr != nil {
				logger.WarnWithErr("Failed to record evaluation", recErr)
			}
		}
		return evalResultMsg{input: line, result: res, err: err}
	}
}

func (m *Model) loadHistory() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		entries, err := store.Recent(context.Background(), 10)
		return historyMsg{entries: entries, err: err}
	}
}

// View renders the UI
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var s strings.Builder
	s.WriteString(TitleStyle.Render("cstkit"))
	s.WriteString(" ")
	s.WriteString(SubtitleStyle.Render("entry: " + m.pipeline.EntryRule()))
	s.WriteString("\n")
	s.WriteString(m.viewport.View())
	s.WriteString("\n")
	if m.busy {
		s.WriteString(m.spinner.View())
		s.WriteString(" evaluating...\n")
	}
	s.WriteString(FocusedInputStyle.Render(m.input.View()))
	s.WriteString("\n")
	s.WriteString(m.renderFooter())
	return s.String()
}

func (m Model) renderFooter() string {
	status := fmt.Sprintf("tree %s • tokens %s", onOff(m.showTree), onOff(m.showTokens))
	help := "Enter: evaluate • ↑/↓: recall • Ctrl+L: clear • Esc: quit"
	return StatusBarStyle.Width(m.width).Render(
		lipgloss.JoinHorizontal(
			lipgloss.Top,
			help,
			strings.Repeat(" ", max(0, m.width-lipgloss.Width(help)-lipgloss.Width(status)-2)),
			status,
		),
	)
}

func (m *Model) updateContent() {
	m.viewport.SetContent(m.renderTranscript())
	m.viewport.GotoBottom()
}

func (m *Model) renderTranscript() string {
	var content strings.Builder
	for _, e := range m.transcript {
		if e.notice != "" {
			content.WriteString(NoticeStyle.Render(e.notice))
			content.WriteString("\n\n")
			continue
		}
		if e.input != "" {
			content.WriteString(InputEchoStyle.Render(m.input.Prompt + e.input))
			content.WriteString("\n")
		}
		if e.err != nil {
			content.WriteString(render.Error(e.err))
			content.WriteString("\n\n")
			continue
		}
		if m.showTokens {
			content.WriteString(render.Tokens(e.result.Tokens))
			content.WriteString("\n")
		}
		if m.showTree {
			content.WriteString(render.Tree(e.result.Tree))
			content.WriteString("\n")
		}
		content.WriteString(render.Value(e.result.Value))
		content.WriteString("\n\n")
	}
	return content.String()
}

func formatHistory(entries []*history.Entry) string {
	if len(entries) == 0 {
		return "no recorded evaluations"
	}
	var b strings.Builder
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		outcome := render.Value(e.Value)
		if e.Failed() {
			outcome = e.ErrorCode
		}
		fmt.Fprintf(&b, "%s  %-32s %s\n", e.CreatedAt.Local().Format("15:04:05"), e.Input, outcome)
	}
	return strings.TrimRight(b.String(), "\n")
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
