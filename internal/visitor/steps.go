// File: steps.go
// Title: Operator and Operand Pairing
// Description: Pairs the tokens and nodes recorded by a repeated
//              operator/operand construct by position.
// Author: msto63
// Version: v0.1.0
// Created: 2026-10-16
// Modified: 2026-10-16
//
// Change History:
// - 2026-10-16 v0.1.0: Initial pairing helpers

package visitor

import (
	"fmt"

	"github.com/msto63/cstkit/internal/cst"
	"github.com/msto63/cstkit/internal/token"
)

// Step is one iteration of a repeated operator/operand construct
type Step struct {
	Operator token.Token
	Operand  *cst.Node
}

// Steps pairs operator i with operand i in recorded order. An absent
// repetition yields no steps. Differing counts mean the grammar and the
// handler disagree on the node shape and are reported as an arity defect.
func Steps(node *cst.Node, operatorLabel, operandLabel string) ([]Step, error) {
	operators := node.Tokens(operatorLabel)
	operands := node.Nodes(operandLabel)
	if len(operators) != len(operands) {
		return nil, arityError(node, fmt.Sprintf("%d %q tokens but %d %q nodes",
			len(operators), operatorLabel, len(operands), operandLabel))
	}

	steps := make([]Step, len(operators))
	for i := range operators {
		steps[i] = Step{Operator: operators[i], Operand: operands[i]}
	}
	return steps, nil
}

// Fold evaluates a left-associative chain: the single lhs node followed by
// the operator/operand steps, combining each step into the accumulated
// result. Without steps the lhs result passes through unchanged.
func Fold[R any](in *Interpreter[R], node *cst.Node, lhsLabel, operatorLabel, operandLabel string,
	combine func(acc R, op token.Token, operand R) (R, error)) (R, error) {
	acc, err := in.VisitOne(node, lhsLabel)
	if err != nil {
		return acc, err
	}

	steps, err := Steps(node, operatorLabel, operandLabel)
	if err != nil {
		var zero R
		return zero, err
	}
	for _, step := range steps {
		operand, err := in.Visit(step.Operand)
		if err != nil {
			var zero R
			return zero, err
		}
		if acc, err = combine(acc, step.Operator, operand); err != nil {
			var zero R
			return zero, err
		}
	}
	return acc, nil
}
