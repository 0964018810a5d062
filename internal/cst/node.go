// File: node.go
// Title: Concrete Syntax Tree Nodes
// Description: One node per rule activation. Children are grouped under
//              semantic labels; each label holds an ordered list of tokens
//              and child nodes. An absent label is an empty list.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial CST model

package cst

import (
	"sort"
	"strings"

	"github.com/msto63/cstkit/internal/token"
)

// Element is exactly one of a token or a child node
type Element struct {
	tok  token.Token
	node *Node
}

// TokenElement wraps a token
func TokenElement(tok token.Token) Element {
	return Element{tok: tok}
}

// NodeElement wraps a child node
func NodeElement(n *Node) Element {
	return Element{node: n}
}

// IsNode reports whether the element is a child node
func (e Element) IsNode() bool { return e.node != nil }

// IsToken reports whether the element is a token
func (e Element) IsToken() bool { return e.node == nil }

// Token returns the wrapped token; ok is false for node elements
func (e Element) Token() (token.Token, bool) { return e.tok, e.node == nil }

// Node returns the wrapped node, or nil for token elements
func (e Element) Node() *Node { return e.node }

// Node is the result of one rule activation
type Node struct {
	Rule     string
	children map[string][]Element
}

// NewNode creates an empty node for the named rule
func NewNode(rule string) *Node {
	return &Node{Rule: rule, children: make(map[string][]Element)}
}

// Add appends an element under label. Only the parser builds nodes; a
// finished tree is treated as read-only.
func (n *Node) Add(label string, e Element) {
	n.children[label] = append(n.children[label], e)
}

// AddToken appends a token under label
func (n *Node) AddToken(label string, tok token.Token) {
	n.Add(label, TokenElement(tok))
}

// AddNode appends a child node under label
func (n *Node) AddNode(label string, child *Node) {
	n.Add(label, NodeElement(child))
}

// Has reports whether anything was recorded under label
func (n *Node) Has(label string) bool {
	return len(n.children[label]) > 0
}

// Elements returns the elements recorded under label in match order
func (n *Node) Elements(label string) []Element {
	src := n.children[label]
	out := make([]Element, len(src))
	copy(out, src)
	return out
}

// Tokens returns the tokens recorded under label in match order
func (n *Node) Tokens(label string) []token.Token {
	var out []token.Token
	for _, e := range n.children[label] {
		if e.IsToken() {
			out = append(out, e.tok)
		}
	}
	return out
}

// Nodes returns the child nodes recorded under label in match order
func (n *Node) Nodes(label string) []*Node {
	var out []*Node
	for _, e := range n.children[label] {
		if e.IsNode() {
			out = append(out, e.node)
		}
	}
	return out
}

// Labels returns the labels present on the node, sorted
func (n *Node) Labels() []string {
	labels := make([]string, 0, len(n.children))
	for label, elems := range n.children {
		if len(elems) > 0 {
			labels = append(labels, label)
		}
	}
	sort.Strings(labels)
	return labels
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the children of the current node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, label := range n.Labels() {
		for _, child := range n.Nodes(label) {
			child.Walk(fn)
		}
	}
}

// AllTokens returns every token in the subtree in source order
func (n *Node) AllTokens() []token.Token {
	var out []token.Token
	n.Walk(func(node *Node) bool {
		for _, elems := range node.children {
			for _, e := range elems {
				if e.IsToken() {
					out = append(out, e.tok)
				}
			}
		}
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Pos.Offset < out[j].Pos.Offset })
	return out
}

// Span returns the first and last token of the subtree. ok is false when
// the subtree holds no tokens.
func (n *Node) Span() (first, last token.Token, ok bool) {
	tokens := n.AllTokens()
	if len(tokens) == 0 {
		return token.Token{}, token.Token{}, false
	}
	return tokens[0], tokens[len(tokens)-1], true
}

// Text joins the subtree's token images with single spaces
func (n *Node) Text() string {
	tokens := n.AllTokens()
	images := make([]string, len(tokens))
	for i, tok := range tokens {
		images[i] = tok.Image
	}
	return strings.Join(images, " ")
}

// Equal reports structural equality: same rules, same labels, and the same
// tokens (kind, image, position) and subtrees in the same order.
func Equal(a, b *Node) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Rule != b.Rule {
		return false
	}
	la, lb := a.Labels(), b.Labels()
	if len(la) != len(lb) {
		return false
	}
	for i, label := range la {
		if lb[i] != label {
			return false
		}
		ea, eb := a.children[label], b.children[label]
		if len(ea) != len(eb) {
			return false
		}
		for j := range ea {
			if !equalElement(ea[j], eb[j]) {
				return false
			}
		}
	}
	return true
}

func equalElement(a, b Element) bool {
	if a.IsNode() != b.IsNode() {
		return false
	}
	if a.IsNode() {
		return Equal(a.node, b.node)
	}
	return a.tok.Kind == b.tok.Kind && a.tok.Image == b.tok.Image && a.tok.Pos == b.tok.Pos
}
