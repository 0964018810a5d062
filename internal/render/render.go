// File: render.go
// Title: Terminal Rendering
// Description: lipgloss renderings of token streams, concrete syntax trees,
//              grammar reports and evaluation results for the CLI and REPL.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial renderers, history table

package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/lipgloss/tree"

	"github.com/msto63/cstkit/internal/cst"
	"github.com/msto63/cstkit/internal/grammar"
	"github.com/msto63/cstkit/internal/history"
	"github.com/msto63/cstkit/internal/token"
	ckerror "github.com/msto63/cstkit/pkg/core/error"
)

// Value formats a result without trailing zeros
func Value(v float64) string {
	return ValueStyle.Render(strconv.FormatFloat(v, 'g', -1, 64))
}

// Error formats an error with its code when it carries one
func Error(err error) string {
	if err == nil {
		return ""
	}
	code := ckerror.GetCode(err)
	if code == ckerror.CodeUnknown {
		return ErrorStyle.Render(err.Error())
	}
	return ErrorStyle.Render(fmt.Sprintf("[%s] %s", code, err.Error()))
}

// Tree renders a CST with one branch per recorded element, labels in
// sorted order
func Tree(node *cst.Node) string {
	if node == nil {
		return ""
	}
	return buildTree(node).String()
}

func buildTree(node *cst.Node) *tree.Tree {
	t := tree.Root(RuleStyle.Render(node.Rule)).
		Enumerator(tree.RoundedEnumerator).
		EnumeratorStyle(EnumeratorStyle)

	for _, label := range node.Labels() {
		for _, e := range node.Elements(label) {
			prefix := LabelStyle.Render(label + ":")
			if e.IsNode() {
				child := e.Node()
				sub := buildTree(child)
				sub.Root(prefix + " " + RuleStyle.Render(child.Rule))
				t.Child(sub)
				continue
			}
			tok, _ := e.Token()
			t.Child(prefix + " " + tokenText(tok))
		}
	}
	return t
}

func tokenText(tok token.Token) string {
	return KindStyle.Render(tok.Kind.Name()) + " " + ImageStyle.Render(strconv.Quote(tok.Image))
}

// Tokens renders a token table with positions and categories
func Tokens(tokens []token.Token) string {
	t := newTable("#", "Kind", "Image", "Position", "Categories")
	for i, tok := range tokens {
		t.Row(
			strconv.Itoa(i),
			tok.Kind.Name(),
			strconv.Quote(tok.Image),
			tok.Pos.String(),
			categoryNames(tok.Kind),
		)
	}
	return t.String()
}

// categoryNames lists the transitive categories, nearest first
func categoryNames(k *token.Kind) string {
	var names []string
	seen := make(map[*token.Kind]bool)
	queue := k.Categories()
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if seen[c] {
			continue
		}
		seen[c] = true
		names = append(names, c.Name())
		queue = append(queue, c.Categories()...)
	}
	return strings.Join(names, ", ")
}

// Report renders a grammar self-check report
func Report(r grammar.Report) string {
	t := newTable("Rule", "Nullable", "FIRST", "Definition")
	for _, rule := range r.Rules {
		name := rule.Name
		if name == r.Entry {
			name += " (entry)"
		}
		t.Row(name, strconv.FormatBool(rule.Nullable), strings.Join(rule.First, " "), rule.Definition)
	}
	return t.String()
}

// History renders recorded evaluations, newest first as stored
func History(entries []*history.Entry) string {
	t := newTable("Time", "Input", "Entry", "Result", "ms")
	for _, e := range entries {
		result := strconv.FormatFloat(e.Value, 'g', -1, 64)
		if e.Failed() {
			result = ErrorStyle.Render(e.ErrorCode)
		}
		t.Row(
			e.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			e.Input,
			e.EntryRule,
			result,
			strconv.FormatFloat(e.DurationMs, 'f', 2, 64),
		)
	}
	return t.String()
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(BorderStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return HeaderStyle
			}
			return CellStyle
		})
}
