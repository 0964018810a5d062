// File: evaluator.go
// Title: Evaluator Service Implementation
// Description: Serves pipeline runs over gRPC, records them in the history
//              store and maps error codes onto gRPC status codes.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial evaluator service

package server

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/msto63/cstkit/internal/cst"
	"github.com/msto63/cstkit/internal/grammar"
	"github.com/msto63/cstkit/internal/history"
	"github.com/msto63/cstkit/internal/pipeline"
	"github.com/msto63/cstkit/internal/token"
	ckerror "github.com/msto63/cstkit/pkg/core/error"
	cklog "github.com/msto63/cstkit/pkg/core/log"
)

// Evaluator implements EvaluatorServer on a pipeline
type Evaluator struct {
	pipeline *pipeline.Pipeline
	grammar  *grammar.Grammar
	store    history.Store
	logger   *cklog.Logger
}

// EvaluatorOptions configures an Evaluator
type EvaluatorOptions struct {
	Pipeline *pipeline.Pipeline
	Grammar  *grammar.Grammar
	// Store is optional; runs are recorded when set
	Store  history.Store
	Logger *cklog.Logger
}

// NewEvaluator creates the service implementation
func NewEvaluator(opts EvaluatorOptions) *Evaluator {
	if opts.Logger == nil {
		opts.Logger = cklog.GetDefault()
	}
	return &Evaluator{
		pipeline: opts.Pipeline,
		grammar:  opts.Grammar,
		store:    opts.Store,
		logger:   opts.Logger.WithField("component", "evaluator"),
	}
}

// Evaluate runs the full pipeline
func (e *Evaluator) Evaluate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	text, err := requireText(req)
	if err != nil {
		return nil, err
	}
	entry := req.GetFields()["entry_rule"].GetStringValue()

	res, runErr := e.pipeline.RunFrom(ctx, text, entry)
	e.record(ctx, res, runErr)
	if runErr != nil {
		return nil, toStatus(runErr, res.RunID)
	}

	out := map[string]interface{}{
		"run_id":     res.RunID,
		"entry_rule": res.EntryRule,
		"value":      res.Value,
		"tokens":     float64(len(res.Tokens)),
		"timings_ms": map[string]interface{}{
			"tokenize": ms(res.Timings.Tokenize.Nanoseconds()),
			"parse":    ms(res.Timings.Parse.Nanoseconds()),
			"visit":    ms(res.Timings.Visit.Nanoseconds()),
		},
	}
	if req.GetFields()["include_tree"].GetBoolValue() {
		tree, err := cst.ToMap(res.Tree)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "encode tree: %v", err)
		}
		out["tree"] = tree
		out["sexpr"] = res.Tree.String()
	}
	return newStruct(out)
}

// Tokenize runs the lexer only
func (e *Evaluator) Tokenize(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	text, err := requireText(req)
	if err != nil {
		return nil, err
	}

	res, runErr := e.pipeline.Tokenize(ctx, text)
	if runErr != nil {
		return nil, toStatus(runErr, res.RunID)
	}

	return newStruct(map[string]interface{}{
		"run_id": res.RunID,
		"tokens": tokenList(res.Tokens),
	})
}

// Describe returns the grammar report
func (e *Evaluator) Describe(_ context.Context, _ *structpb.Struct) (*structpb.Struct, error) {
	if e.grammar == nil {
		return nil, status.Error(codes.Unimplemented, "grammar report not available")
	}
	report := e.grammar.Report()

	rules := make([]interface{}, 0, len(report.Rules))
	for _, r := range report.Rules {
		first := make([]interface{}, len(r.First))
		for i, k := range r.First {
			first[i] = k
		}
		rules = append(rules, map[string]interface{}{
			"name":       r.Name,
			"definition": r.Definition,
			"nullable":   r.Nullable,
			"first":      first,
		})
	}
	return newStruct(map[string]interface{}{
		"entry": report.Entry,
		"rules": rules,
	})
}

func (e *Evaluator) record(ctx context.Context, res *pipeline.Result, runErr error) {
	if e.store == nil || res == nil {
		return
	}
	if err := e.store.Record(ctx, history.FromResult(res, runErr)); err != nil {
		e.logger.WarnWithErr("Failed to record evaluation", err, cklog.Fields{"run_id": res.RunID})
	}
}

func requireText(req *structpb.Struct) (string, error) {
	v, ok := req.GetFields()["text"]
	if !ok {
		return "", status.Error(codes.InvalidArgument, "field text is required")
	}
	if _, isString := v.GetKind().(*structpb.Value_StringValue); !isString {
		return "", status.Error(codes.InvalidArgument, "field text must be a string")
	}
	return v.GetStringValue(), nil
}

func tokenList(tokens []token.Token) []interface{} {
	out := make([]interface{}, len(tokens))
	for i, tok := range tokens {
		out[i] = map[string]interface{}{
			"kind":   tok.Kind.Name(),
			"image":  tok.Image,
			"offset": float64(tok.Pos.Offset),
			"line":   float64(tok.Pos.Line),
			"column": float64(tok.Pos.Column),
		}
	}
	return out
}

func newStruct(m map[string]interface{}) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return s, nil
}

func ms(ns int64) float64 {
	return float64(ns) / 1e6
}

// toStatus maps an error onto a gRPC status. The error code and run ID
// travel as a Struct detail so clients can restore the coded error.
func toStatus(err error, runID string) error {
	if errors.Is(err, context.Canceled) {
		return status.Error(codes.Canceled, err.Error())
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, err.Error())
	}

	code := ckerror.GetCode(err)
	st := status.New(code.GRPCCode(), err.Error())
	detail, detailErr := structpb.NewStruct(map[string]interface{}{
		"code":     string(code),
		"category": code.Category(),
		"run_id":   runID,
	})
	if detailErr != nil {
		return st.Err()
	}
	if withDetail, err := st.WithDetails(detail); err == nil {
		st = withDetail
	}
	return st.Err()
}
