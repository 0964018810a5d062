// File: builder.go
// Title: Grammar Builder
// Description: Collects named rules over a vocabulary and freezes them into
//              a validated Grammar.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial builder

package grammar

import (
	"github.com/msto63/cstkit/internal/token"
	cklog "github.com/msto63/cstkit/pkg/core/log"
)

// Options configures grammar behavior
type Options struct {
	Logger *cklog.Logger
}

// Builder accumulates rule definitions. It is not safe for concurrent use;
// the Grammar it builds is.
type Builder struct {
	vocab *token.Vocabulary
	rules []*rule
	entry string
	opts  Options
}

type rule struct {
	name string
	body *seqExpr
}

// NewBuilder starts a grammar over vocab
func NewBuilder(vocab *token.Vocabulary, opts Options) *Builder {
	return &Builder{vocab: vocab, opts: opts}
}

// Rule declares a named rule. The first declared rule is the entry rule
// unless Entry says otherwise.
func (b *Builder) Rule(name string, body ...Expr) *Builder {
	b.rules = append(b.rules, &rule{name: name, body: &seqExpr{items: body}})
	return b
}

// Entry designates the entry rule
func (b *Builder) Entry(name string) *Builder {
	b.entry = name
	return b
}

// Build runs the self-check and returns the immutable grammar, or a
// *GrammarError listing every violation found.
func (b *Builder) Build() (*Grammar, error) {
	if b.opts.Logger == nil {
		b.opts.Logger = cklog.GetDefault()
	}
	logger := b.opts.Logger.WithField("component", "grammar")

	entry := b.entry
	if entry == "" && len(b.rules) > 0 {
		entry = b.rules[0].name
	}

	g := &Grammar{
		vocab:  b.vocab,
		rules:  make(map[string]*rule, len(b.rules)),
		order:  make([]string, 0, len(b.rules)),
		entry:  entry,
		logger: logger,
	}

	a := newAnalysis(b.vocab, b.rules, entry)
	if violations := a.run(); len(violations) > 0 {
		gErr := newGrammarError(violations)
		logger.Warn("Grammar self-check failed", cklog.Fields{
			"violations": len(violations),
			"error":      gErr.Error(),
		})
		return nil, gErr
	}

	for _, r := range b.rules {
		g.rules[r.name] = r
		g.order = append(g.order, r.name)
	}
	g.nullable = a.nullable
	g.first = a.first
	g.exprFirst = a.exprFirst

	logger.Debug("Grammar built", cklog.Fields{
		"rules": len(g.order),
		"entry": entry,
	})
	return g, nil
}
