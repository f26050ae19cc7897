// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package analysis

import "github.com/stratlog/stratlog/ast"

// GroundedTerms computes the grounding map of a clause: for every argument
// node, whether bottom-up evaluation can bind it to a concrete value. The
// map is the least fixpoint over these rules:
//
//   - constants, counters, and aggregator results are grounded
//   - every argument of a positive atom is grounded, including atoms inside
//     aggregator bodies
//   - a record or cast is grounded iff its contents are, in both directions
//   - a functor is grounded iff all its arguments are grounded
//   - an equality with one side grounded grounds the other side
//   - all occurrences of a variable name share their groundedness
//
// The head atom does not ground its arguments, and negated atoms ground
// nothing. The clause needs no relation declarations, so callers may hand
// in synthetic clauses over undeclared atoms.
func GroundedTerms(c *ast.Clause) map[ast.NodeID]bool {
	g := &grounding{
		grounded: map[ast.NodeID]bool{},
		varState: map[string]bool{},
	}

	// Register every argument node so the result covers ungrounded nodes
	// explicitly.
	ast.WalkArguments(c, func(arg ast.Argument) {
		g.grounded[arg.ID()] = false
	})

	for {
		g.changed = false
		for _, lit := range c.Body {
			g.literal(lit)
		}
		if c.Head != nil {
			for _, arg := range c.Head.Args {
				g.argument(arg, false)
			}
		}
		if !g.changed {
			break
		}
	}
	return g.grounded
}

type grounding struct {
	grounded map[ast.NodeID]bool
	varState map[string]bool
	changed  bool
}

func (g *grounding) ground(x ast.Argument) {
	if !g.grounded[x.ID()] {
		g.grounded[x.ID()] = true
		g.changed = true
	}
	if v, ok := x.(*ast.Variable); ok && !g.varState[v.Name] {
		g.varState[v.Name] = true
		g.changed = true
	}
}

func (g *grounding) isGrounded(x ast.Argument) bool {
	return g.grounded[x.ID()]
}

func (g *grounding) literal(lit ast.Literal) {
	switch lit := lit.(type) {
	case *ast.Atom:
		for _, arg := range lit.Args {
			g.ground(arg)
			g.argument(arg, true)
		}
	case *ast.Negation:
		// negation grounds nothing, but propagation rules still apply to
		// composite arguments grounded from elsewhere
		for _, arg := range lit.Atom.Args {
			g.argument(arg, false)
		}
	case *ast.BinaryConstraint:
		g.argument(lit.LHS, false)
		g.argument(lit.RHS, false)
		if lit.Op.IsEquality() {
			if g.isGrounded(lit.LHS) {
				g.ground(lit.RHS)
				g.argument(lit.RHS, true)
			}
			if g.isGrounded(lit.RHS) {
				g.ground(lit.LHS)
				g.argument(lit.LHS, true)
			}
		}
	case *ast.BooleanConstraint:
	}
}

// argument applies the propagation rules to an argument subtree. If forced
// is true the node itself has just been grounded and the downward rules
// fire.
func (g *grounding) argument(arg ast.Argument, forced bool) {
	switch arg := arg.(type) {
	case *ast.Variable:
		if g.varState[arg.Name] {
			g.ground(arg)
		}
	case *ast.UnnamedVariable:
		// an anonymous variable is trivially satisfiable
		g.ground(arg)
	case *ast.NumberConstant, *ast.StringConstant, *ast.Counter:
		g.ground(arg)
	case *ast.TypeCast:
		if forced || g.isGrounded(arg) {
			g.ground(arg.Value)
			g.argument(arg.Value, true)
		} else {
			g.argument(arg.Value, false)
			if g.isGrounded(arg.Value) {
				g.ground(arg)
			}
		}
	case *ast.RecordInit:
		if forced || g.isGrounded(arg) {
			for _, sub := range arg.Args {
				g.ground(sub)
				g.argument(sub, true)
			}
			return
		}
		all := true
		for _, sub := range arg.Args {
			g.argument(sub, false)
			if !g.isGrounded(sub) {
				all = false
			}
		}
		if all {
			g.ground(arg)
		}
	case *ast.IntrinsicFunctor:
		g.functorArgs(arg, arg.Args)
	case *ast.UserDefinedFunctor:
		g.functorArgs(arg, arg.Args)
	case *ast.Aggregator:
		// the aggregator's result is always available; its body grounds its
		// own variables, which are shared by name with the outer scope
		g.ground(arg)
		for _, lit := range arg.Body {
			g.literal(lit)
		}
		if arg.Target != nil {
			g.argument(arg.Target, false)
		}
	}
}

// functorArgs grounds a functor node once all of its arguments are
// grounded. Functions are not invertible, so grounding never propagates
// downwards.
func (g *grounding) functorArgs(fn ast.Argument, args []ast.Argument) {
	all := true
	for _, sub := range args {
		g.argument(sub, false)
		if !g.isGrounded(sub) {
			all = false
		}
	}
	if all {
		g.ground(fn)
	}
}
