// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package semantic

import (
	"fmt"
	"sort"
	"strings"

	"github.com/stratlog/stratlog/ast"
)

// checkClauses validates clause shape: head and body atoms exist with
// matching arities, underscores stay out of heads and constraints, facts
// contain only constants, single-use variables warn, counters stay out of
// recursion, and execution plans are complete.
func (c *Checker) checkClauses() {
	for _, clause := range c.tu.Program.Clauses {
		c.checkClause(clause)
	}
}

func (c *Checker) checkClause(clause *ast.Clause) {
	if clause.Head != nil {
		c.checkAtom(clause.Head)
		if hasUnnamedVariable(clause.Head) {
			c.err("Underscore in head of rule", clause.Head.Loc())
		}
	}

	for _, lit := range clause.Body {
		c.checkLiteral(lit)
	}

	if clause.IsFact() {
		c.checkFact(clause)
	}

	// single-use named variables are usually typos
	if !clause.Generated {
		count := map[string]int{}
		pos := map[string]*ast.Variable{}
		ast.WalkVariables(clause, func(v *ast.Variable) {
			count[v.Name]++
			pos[v.Name] = v
		})
		names := make([]string, 0, len(count))
		for name := range count {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if count[name] == 1 && !strings.HasPrefix(name, "_") {
				c.warn(fmt.Sprintf("Variable %s only occurs once", name), pos[name].Loc())
			}
		}
	}

	if clause.Plan != nil {
		numAtoms := len(clause.Atoms())
		for _, order := range clause.Plan.Orders {
			if len(order.Order) != numAtoms || !order.IsComplete() {
				c.err("Invalid execution plan", order.Loc())
			}
		}
	}

	if c.tu.Recursive(clause) {
		ast.WalkArguments(clause, func(arg ast.Argument) {
			if _, ok := arg.(*ast.Counter); ok {
				c.err("Auto-increment functor in a recursive rule", arg.Loc())
			}
		})
	}
}

func (c *Checker) checkAtom(atom *ast.Atom) {
	rel := c.tu.Program.Relation(atom.Name)
	if rel == nil {
		c.err(fmt.Sprintf("Undefined relation %v", atom.Name), atom.Loc())
	} else if rel.Arity() != atom.Arity() {
		c.err(fmt.Sprintf("Mismatching arity of relation %v", atom.Name), atom.Loc())
	}
	for _, arg := range atom.Args {
		c.checkArgument(arg)
	}
}

func (c *Checker) checkLiteral(lit ast.Literal) {
	switch lit := lit.(type) {
	case *ast.Atom:
		c.checkAtom(lit)
	case *ast.Negation:
		c.checkAtom(lit.Atom)
	case *ast.BinaryConstraint:
		c.checkArgument(lit.LHS)
		c.checkArgument(lit.RHS)
		if hasUnnamedVariableArg(lit.LHS) || hasUnnamedVariableArg(lit.RHS) {
			c.err("Underscore in binary relation", lit.Loc())
		}
	case *ast.BooleanConstraint:
	}
}

// checkArgument recurses into nested aggregator bodies so their literals
// receive the same atom and constraint checks.
func (c *Checker) checkArgument(arg ast.Argument) {
	switch arg := arg.(type) {
	case *ast.Aggregator:
		for _, lit := range arg.Body {
			c.checkLiteral(lit)
		}
	case *ast.TypeCast:
		c.checkArgument(arg.Value)
	case *ast.IntrinsicFunctor:
		for _, sub := range arg.Args {
			c.checkArgument(sub)
		}
	case *ast.UserDefinedFunctor:
		for _, sub := range arg.Args {
			c.checkArgument(sub)
		}
	case *ast.RecordInit:
		for _, sub := range arg.Args {
			c.checkArgument(sub)
		}
	}
}

// checkFact ensures a fact's head carries only constant values.
func (c *Checker) checkFact(fact *ast.Clause) {
	if fact.Head == nil || c.tu.Program.Relation(fact.Head.Name) == nil {
		return
	}
	for _, arg := range fact.Head.Args {
		c.checkConstant(arg)
	}
}

func (c *Checker) checkConstant(arg ast.Argument) {
	switch arg := arg.(type) {
	case *ast.Variable:
		c.err(fmt.Sprintf("Variable %s in fact", arg.Name), arg.Loc())
	case *ast.UnnamedVariable:
		c.err("Underscore in fact", arg.Loc())
	case *ast.Counter:
		c.err("Counter in fact", arg.Loc())
	case *ast.IntrinsicFunctor:
		if !isConstantArithExpr(arg) {
			c.err("Function in fact", arg.Loc())
		}
	case *ast.UserDefinedFunctor:
		c.err("User-defined functor in fact", arg.Loc())
	case *ast.TypeCast:
		c.checkConstant(arg.Value)
	case *ast.RecordInit:
		for _, sub := range arg.Args {
			c.checkConstant(sub)
		}
	case *ast.NumberConstant, *ast.StringConstant:
	case *ast.Aggregator:
		c.err("Aggregator in fact", arg.Loc())
	}
}

// isConstantArithExpr reports whether the argument is a numeric expression
// over constants only.
func isConstantArithExpr(arg ast.Argument) bool {
	switch arg := arg.(type) {
	case *ast.NumberConstant:
		return true
	case *ast.IntrinsicFunctor:
		if !arg.Op.IsNumerical() {
			return false
		}
		for _, sub := range arg.Args {
			if !isConstantArithExpr(sub) {
				return false
			}
		}
		return true
	}
	return false
}

// hasUnnamedVariable reports whether an atom's arguments contain an
// underscore outside nested aggregators.
func hasUnnamedVariable(atom *ast.Atom) bool {
	for _, arg := range atom.Args {
		if hasUnnamedVariableArg(arg) {
			return true
		}
	}
	return false
}

func hasUnnamedVariableArg(arg ast.Argument) bool {
	switch arg := arg.(type) {
	case *ast.UnnamedVariable:
		return true
	case *ast.TypeCast:
		return hasUnnamedVariableArg(arg.Value)
	case *ast.IntrinsicFunctor:
		for _, sub := range arg.Args {
			if hasUnnamedVariableArg(sub) {
				return true
			}
		}
	case *ast.UserDefinedFunctor:
		for _, sub := range arg.Args {
			if hasUnnamedVariableArg(sub) {
				return true
			}
		}
	case *ast.RecordInit:
		for _, sub := range arg.Args {
			if hasUnnamedVariableArg(sub) {
				return true
			}
		}
	case *ast.Aggregator:
		// underscores inside an aggregator are scoped to it
		return false
	}
	return false
}

// checkGrounding reports variables (in the head or the body) and records
// that bottom-up evaluation cannot bind. One error per variable name per
// clause.
func (c *Checker) checkGrounding() {
	for _, clause := range c.tu.Program.Clauses {
		if clause.IsFact() {
			continue
		}
		grounded := c.tu.Grounded(clause)

		reported := map[string]bool{}
		ast.WalkVariables(clause, func(v *ast.Variable) {
			if !grounded[v.ID()] && !reported[v.Name] {
				reported[v.Name] = true
				c.err("Ungrounded variable "+v.Name, v.Loc())
			}
		})

		ast.WalkRecords(clause, func(r *ast.RecordInit) {
			if !grounded[r.ID()] {
				c.err("Ungrounded record", r.Loc())
			}
		})
	}
}
