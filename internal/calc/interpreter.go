// File: interpreter.go
// Title: Arithmetic Interpreter
// Description: One handler per calc rule, computing float64 values.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial handlers
// - 2026-10-16 v0.1.0: Overflowing results are evaluation errors

package calc

import (
	"math"
	"strconv"

	"github.com/msto63/cstkit/internal/cst"
	"github.com/msto63/cstkit/internal/token"
	"github.com/msto63/cstkit/internal/visitor"
	ckerror "github.com/msto63/cstkit/pkg/core/error"
)

type handler = visitor.Handler[float64]
type interp = visitor.Interpreter[float64]

func (l *Language) handlers() map[string]handler {
	return map[string]handler{
		RuleExpression: func(in *interp, node *cst.Node) (float64, error) {
			return in.VisitOne(node, RuleAdditionExpression)
		},
		RuleAdditionExpression: func(in *interp, node *cst.Node) (float64, error) {
			return visitor.Fold(in, node, "lhs", "operator", "rhs", add)
		},
		RuleMultiplicationExpression: func(in *interp, node *cst.Node) (float64, error) {
			return visitor.Fold(in, node, "lhs", "operator", "rhs", multiply)
		},
		RuleAtomicExpression: func(in *interp, node *cst.Node) (float64, error) {
			if node.Has(RuleParenthesisExpression) {
				return in.VisitOne(node, RuleParenthesisExpression)
			}
			return l.number(node)
		},
		RuleParenthesisExpression: func(in *interp, node *cst.Node) (float64, error) {
			return in.VisitOne(node, "inner")
		},
	}
}

func add(acc float64, op token.Token, rhs float64) (float64, error) {
	switch {
	case op.Is(Plus):
		return finite(acc+rhs, op)
	case op.Is(Minus):
		return finite(acc-rhs, op)
	}
	return 0, unexpectedOperator(op)
}

func multiply(acc float64, op token.Token, rhs float64) (float64, error) {
	switch {
	case op.Is(Times):
		return finite(acc*rhs, op)
	case op.Is(Over):
		if rhs == 0 {
			return 0, ckerror.Newf(ckerror.CodeEvaluation, "division by zero at line %d, column %d",
				op.Pos.Line, op.Pos.Column).WithOperation("calc.Evaluate")
		}
		return finite(acc/rhs, op)
	}
	return 0, unexpectedOperator(op)
}

// finite rejects results that left the float64 range
func finite(v float64, op token.Token) (float64, error) {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, ckerror.Newf(ckerror.CodeEvaluation, "result out of range at line %d, column %d",
			op.Pos.Line, op.Pos.Column).WithOperation("calc.Evaluate")
	}
	return v, nil
}

func (l *Language) number(node *cst.Node) (float64, error) {
	numbers := node.Tokens("number")
	if len(numbers) != 1 {
		return 0, ckerror.Newf(ckerror.CodeArityMismatch, "rule %s: expected one number, found %d",
			node.Rule, len(numbers)).WithOperation("calc.Evaluate")
	}

	tok := numbers[0]
	switch {
	case tok.Is(NumberWord):
		if v, ok := l.numbers[tok.Image]; ok {
			return float64(v), nil
		}
	case tok.Is(NumberLiteral):
		v, err := strconv.ParseFloat(tok.Image, 64)
		if err != nil {
			return 0, ckerror.Wrapf(err, "invalid number literal %q", tok.Image).
				WithCode(ckerror.CodeEvaluation)
		}
		return v, nil
	}
	return 0, ckerror.Newf(ckerror.CodeInternal, "token %s is not a known number", tok).
		WithOperation("calc.Evaluate")
}

func unexpectedOperator(op token.Token) error {
	return ckerror.Newf(ckerror.CodeInternal, "operator %s has no arithmetic meaning", op).
		WithOperation("calc.Evaluate")
}
