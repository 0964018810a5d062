// File: format.go
// Title: CST Text and JSON Forms
// Description: Compact s-expression rendering and JSON encoding of trees
//              for logs, the CLI and the RPC surface.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial formats

package cst

import (
	"strconv"
	"strings"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// String renders the tree as an s-expression, labels sorted:
//
//	(additionExpression lhs=(...) operator=Plus"plus" rhs=(...))
func (n *Node) String() string {
	var b strings.Builder
	n.writeSExpr(&b)
	return b.String()
}

func (n *Node) writeSExpr(b *strings.Builder) {
	b.WriteByte('(')
	b.WriteString(n.Rule)
	for _, label := range n.Labels() {
		for _, e := range n.children[label] {
			b.WriteByte(' ')
			b.WriteString(label)
			b.WriteByte('=')
			if e.IsNode() {
				e.node.writeSExpr(b)
				continue
			}
			b.WriteString(e.tok.Kind.Name())
			b.WriteString(strconv.Quote(e.tok.Image))
		}
	}
	b.WriteByte(')')
}

type jsonToken struct {
	Kind   string `json:"kind"`
	Image  string `json:"image"`
	Offset int    `json:"offset"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

type jsonElement struct {
	Token *jsonToken `json:"token,omitempty"`
	Node  *jsonNode  `json:"node,omitempty"`
}

type jsonNode struct {
	Rule     string                   `json:"rule"`
	Children map[string][]jsonElement `json:"children,omitempty"`
}

func (n *Node) toJSON() *jsonNode {
	out := &jsonNode{Rule: n.Rule}
	for _, label := range n.Labels() {
		if out.Children == nil {
			out.Children = make(map[string][]jsonElement)
		}
		for _, e := range n.children[label] {
			var je jsonElement
			if e.IsNode() {
				je.Node = e.node.toJSON()
			} else {
				je.Token = &jsonToken{
					Kind:   e.tok.Kind.Name(),
					Image:  e.tok.Image,
					Offset: e.tok.Pos.Offset,
					Line:   e.tok.Pos.Line,
					Column: e.tok.Pos.Column,
				}
			}
			out.Children[label] = append(out.Children[label], je)
		}
	}
	return out
}

// MarshalJSON encodes the tree with labels in sorted order
func (n *Node) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.toJSON(), json.Deterministic(true))
}

// MarshalIndent encodes the tree as indented JSON for terminal output
func MarshalIndent(n *Node) ([]byte, error) {
	return json.Marshal(n.toJSON(),
		json.Deterministic(true),
		jsontext.Multiline(true),
		jsontext.WithIndent("  "),
	)
}

// ToMap converts the tree into plain maps and slices, the shape expected by
// protobuf struct values.
func ToMap(n *Node) (map[string]interface{}, error) {
	raw, err := n.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
