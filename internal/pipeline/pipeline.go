// File: pipeline.go
// Title: Evaluation Pipeline
// Description: Runs text through the three synchronous phases (tokenize,
//              parse, visit) of a language, with a run ID and per-phase
//              timing for every run.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial pipeline

package pipeline

import (
	"context"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/msto63/cstkit/internal/cst"
	"github.com/msto63/cstkit/internal/grammar"
	"github.com/msto63/cstkit/internal/lexer"
	"github.com/msto63/cstkit/internal/token"
	"github.com/msto63/cstkit/internal/visitor"
	ckerror "github.com/msto63/cstkit/pkg/core/error"
	cklog "github.com/msto63/cstkit/pkg/core/log"
)

// Language supplies the validated definitions a pipeline runs
type Language interface {
	Lexer() *lexer.Lexer
	Grammar() *grammar.Grammar
	Interpreter() *visitor.Interpreter[float64]
}

// Phase identifies how far a run goes
type Phase int

const (
	PhaseTokenize Phase = iota + 1
	PhaseParse
	PhaseVisit
)

// String returns the phase name used in logs
func (p Phase) String() string {
	switch p {
	case PhaseTokenize:
		return "tokenize"
	case PhaseParse:
		return "parse"
	case PhaseVisit:
		return "visit"
	default:
		return "unknown"
	}
}

// Options configures a pipeline
type Options struct {
	Language       Language
	Logger         *cklog.Logger
	EntryRule      string
	MaxInputLength int
}

// Timings holds the duration of each completed phase
type Timings struct {
	Tokenize time.Duration
	Parse    time.Duration
	Visit    time.Duration
}

// Total returns the summed duration
func (t Timings) Total() time.Duration {
	return t.Tokenize + t.Parse + t.Visit
}

// Result describes one run. On failure only the identity fields and the
// timings of completed phases are set; no partial tokens or trees are kept.
type Result struct {
	RunID     string
	Input     string
	EntryRule string
	Phase     Phase
	Tokens    []token.Token
	Tree      *cst.Node
	Value     float64
	Timings   Timings
}

// Pipeline is stateless between runs and safe for concurrent use
type Pipeline struct {
	lang     Language
	logger   *cklog.Logger
	entry    string
	maxInput int
}

// New creates a pipeline for a language
func New(opts Options) (*Pipeline, error) {
	if opts.Language == nil {
		return nil, ckerror.New("pipeline requires a language").WithCode(ckerror.CodeInvalidInput)
	}
	if opts.Logger == nil {
		opts.Logger = cklog.GetDefault()
	}
	entry := opts.EntryRule
	if entry == "" {
		entry = opts.Language.Grammar().Entry()
	}
	if !opts.Language.Grammar().HasRule(entry) {
		return nil, ckerror.Newf(ckerror.CodeUnknownRule, "entry rule %q is not declared", entry).
			WithOperation("pipeline.New")
	}

	return &Pipeline{
		lang:     opts.Language,
		logger:   opts.Logger.WithField("component", "pipeline"),
		entry:    entry,
		maxInput: opts.MaxInputLength,
	}, nil
}

// EntryRule returns the default entry rule
func (p *Pipeline) EntryRule() string {
	return p.entry
}

// Run tokenizes, parses and evaluates text from the default entry rule
func (p *Pipeline) Run(ctx context.Context, text string) (*Result, error) {
	return p.execute(ctx, text, p.entry, PhaseVisit)
}

// RunFrom is Run with an explicit entry rule
func (p *Pipeline) RunFrom(ctx context.Context, text, entry string) (*Result, error) {
	if entry == "" {
		entry = p.entry
	}
	return p.execute(ctx, text, entry, PhaseVisit)
}

// Tokenize runs only the lexer
func (p *Pipeline) Tokenize(ctx context.Context, text string) (*Result, error) {
	return p.execute(ctx, text, p.entry, PhaseTokenize)
}

// Parse runs lexer and parser without evaluating
func (p *Pipeline) Parse(ctx context.Context, text, entry string) (*Result, error) {
	if entry == "" {
		entry = p.entry
	}
	return p.execute(ctx, text, entry, PhaseParse)
}

func (p *Pipeline) execute(ctx context.Context, text, entry string, last Phase) (*Result, error) {
	res := &Result{RunID: uuid.NewString(), Input: text, EntryRule: entry}
	logger := p.logger.WithRunID(res.RunID)

	if p.maxInput > 0 && utf8.RuneCountInString(text) > p.maxInput {
		err := ckerror.Newf(ckerror.CodeInvalidInput, "input exceeds maximum length: %d > %d",
			utf8.RuneCountInString(text), p.maxInput).WithOperation("pipeline.Run")
		logger.LogError("Input rejected", err)
		return res, err
	}

	logger.Debug("Run started", cklog.Fields{"entry": entry, "until": last.String()})

	// Phases are not interruptible; cancellation is honoured between them.
	tokens, err := phase(ctx, logger, PhaseTokenize, &res.Timings.Tokenize, func() ([]token.Token, error) {
		return p.lang.Lexer().Tokenize(text)
	})
	if err != nil {
		return res, err
	}
	if last == PhaseTokenize {
		res.Phase, res.Tokens = PhaseTokenize, tokens
		return res, nil
	}

	tree, err := phase(ctx, logger, PhaseParse, &res.Timings.Parse, func() (*cst.Node, error) {
		return p.lang.Grammar().Parse(tokens, entry)
	})
	if err != nil {
		return res, err
	}
	if last == PhaseParse {
		res.Phase, res.Tokens, res.Tree = PhaseParse, tokens, tree
		return res, nil
	}

	value, err := phase(ctx, logger, PhaseVisit, &res.Timings.Visit, func() (float64, error) {
		return p.lang.Interpreter().Visit(tree)
	})
	if err != nil {
		return res, err
	}

	res.Phase, res.Tokens, res.Tree, res.Value = PhaseVisit, tokens, tree, value
	logger.Info("Run completed", cklog.Fields{
		"value":       value,
		"duration_ms": float64(res.Timings.Total().Nanoseconds()) / 1e6,
	})
	return res, nil
}

// phase runs one step with cancellation check, timing and failure logging
func phase[T any](ctx context.Context, logger *cklog.Logger, ph Phase, took *time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, ckerror.Wrapf(err, "run cancelled before %s", ph).WithOperation("pipeline.Run")
	}

	timer := logger.StartTimer(ph.String()).WithLevel(cklog.LevelTrace)
	out, err := fn()
	if err != nil {
		*took = timer.StopWithError(err)
		return zero, err
	}
	*took = timer.Stop()
	return out, nil
}
