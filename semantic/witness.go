// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package semantic

import (
	"fmt"

	"github.com/stratlog/stratlog/analysis"
	"github.com/stratlog/stratlog/ast"
)

// checkWitnessProblem rejects clauses that use a variable in the outer
// scope when the only thing grounding it is an aggregator's inner body: the
// witness justifying the aggregate is not visible outside the aggregator.
//
// The check compares the grounding of two synthetic copies of each body:
// one verbatim, and one with every aggregator replaced by an intrinsically
// grounded fresh variable. An argument grounded in the verbatim copy but
// ungrounded in the aggregator-free copy can only have been grounded
// through an aggregator body.
func (c *Checker) checkWitnessProblem() {
	for _, clause := range c.tu.Program.Clauses {
		lits := append([]ast.Literal(nil), clause.Body...)

		// head variables start ungrounded: they may only be witnessed via
		// legal means. A negated synthetic atom mentions them without
		// grounding them.
		headVars := ast.NewAtom(ast.NewQualifiedName("*"))
		if clause.Head != nil {
			ast.WalkVariables(clause.Head, func(v *ast.Variable) {
				headVars.Args = append(headVars.Args, ast.CloneArgument(v))
			})
		}
		lits = append(lits, ast.NewNegation(headVars))

		for _, loc := range c.usesInvalidWitness(lits, nil) {
			c.err("Witness problem: argument grounded by an aggregator's inner scope is used ungrounded in outer scope", loc)
		}
	}
}

// usesInvalidWitness returns the locations of arguments witnessed only
// through aggregator bodies, recursing into nested aggregator scopes with
// the grounded set of the enclosing scope.
func (c *Checker) usesInvalidWitness(lits []ast.Literal, groundedArgs []ast.Argument) []*ast.Location {
	star := ast.NewQualifiedName("*")
	original := ast.NewClause(ast.NewAtom(star))
	aggregatorless := ast.NewClause(ast.NewAtom(star))

	// clone each literal twice; equal walk order over equal structure pairs
	// up the argument nodes of the two copies
	correspond := map[ast.NodeID]ast.Argument{}
	for _, lit := range lits {
		first := ast.CloneLiteral(lit)
		second := ast.CloneLiteral(lit)
		firstArgs := collectArguments(first)
		secondArgs := collectArguments(second)
		for i := range secondArgs {
			correspond[secondArgs[i].ID()] = firstArgs[i]
		}
		original.AddToBody(first)
		aggregatorless.AddToBody(second)
	}

	// strip the aggregators out of the second copy
	var aggregatorVars []string
	ast.RewriteArguments(aggregatorless, func(arg ast.Argument) ast.Argument {
		if _, ok := arg.(*ast.Aggregator); ok {
			name := fmt.Sprintf("+aggr_var_%d", c.aggrVarCounter)
			c.aggrVarCounter++
			aggregatorVars = append(aggregatorVars, name)
			return ast.NewVariable(name)
		}
		return arg
	})

	// synthetic atoms force the replacement variables and the enclosing
	// scope's grounded arguments to be grounded
	groundingName := ast.NewQualifiedName("+grounding_atom")
	groundingOriginal := ast.NewAtom(groundingName)
	groundingAggregatorless := ast.NewAtom(groundingName)
	for _, name := range aggregatorVars {
		groundingAggregatorless.Args = append(groundingAggregatorless.Args, ast.NewVariable(name))
	}
	for _, arg := range groundedArgs {
		groundingOriginal.Args = append(groundingOriginal.Args, ast.CloneArgument(arg))
		groundingAggregatorless.Args = append(groundingAggregatorless.Args, ast.CloneArgument(arg))
	}
	original.AddToBody(groundingOriginal)
	aggregatorless.AddToBody(groundingAggregatorless)

	groundedOriginal := analysis.GroundedTerms(original)
	groundedAggregatorless := analysis.GroundedTerms(aggregatorless)

	var result []*ast.Location
	var newlyGrounded []ast.Argument
	for _, lit := range aggregatorless.Body {
		for _, arg := range collectArguments(lit) {
			if !groundedAggregatorless[arg.ID()] {
				if orig, ok := correspond[arg.ID()]; ok && groundedOriginal[orig.ID()] {
					result = append(result, arg.Loc())
				}
			}
			// either way, the argument counts as grounded for inner scopes
			newlyGrounded = append(newlyGrounded, ast.CloneArgument(arg))
		}
	}

	// inner aggregator scopes are checked with everything of this scope
	// treated as grounded
	for _, lit := range lits {
		ast.WalkAggregators(lit, func(aggr *ast.Aggregator) bool {
			result = append(result, c.usesInvalidWitness(aggr.Body, newlyGrounded)...)
			return true
		})
	}
	return result
}

func collectArguments(x interface{}) []ast.Argument {
	var args []ast.Argument
	ast.WalkArguments(x, func(arg ast.Argument) {
		args = append(args, arg)
	})
	return args
}
