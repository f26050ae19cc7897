// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package analysis

import (
	"testing"

	"github.com/stratlog/stratlog/ast"
)

func groundedVars(c *ast.Clause) map[string]bool {
	g := GroundedTerms(c)
	out := map[string]bool{}
	ast.WalkVariables(c, func(v *ast.Variable) {
		if g[v.ID()] {
			out[v.Name] = true
		} else if _, ok := out[v.Name]; !ok {
			out[v.Name] = false
		}
	})
	return out
}

func TestGroundedTerms(t *testing.T) {
	qn := ast.NewQualifiedName

	t.Run("head variable without a binding atom", func(t *testing.T) {
		c := ast.NewClause(
			ast.NewAtom(qn("a"), ast.NewVariable("x")),
			ast.NewAtom(qn("b"), ast.NewVariable("y")),
		)
		vars := groundedVars(c)
		if vars["x"] {
			t.Error("x must not be grounded")
		}
		if !vars["y"] {
			t.Error("y must be grounded by the positive atom")
		}
	})

	t.Run("equality grounds across", func(t *testing.T) {
		c := ast.NewClause(
			ast.NewAtom(qn("a"), ast.NewVariable("x")),
			ast.NewAtom(qn("b"), ast.NewVariable("y")),
			ast.NewBinaryConstraint(ast.ConstraintEQ, ast.NewVariable("x"), ast.NewVariable("y")),
		)
		if vars := groundedVars(c); !vars["x"] {
			t.Error("x must be grounded through the equality")
		}
	})

	t.Run("negation grounds nothing", func(t *testing.T) {
		c := ast.NewClause(
			ast.NewAtom(qn("a"), ast.NewVariable("x")),
			ast.NewNegation(ast.NewAtom(qn("b"), ast.NewVariable("x"))),
		)
		if vars := groundedVars(c); vars["x"] {
			t.Error("a negated atom must not ground its arguments")
		}
	})

	t.Run("grounded record grounds its fields", func(t *testing.T) {
		// b(r), r = [x, y] grounds x and y through the record
		c := ast.NewClause(
			ast.NewAtom(qn("a"), ast.NewVariable("x")),
			ast.NewAtom(qn("b"), ast.NewVariable("r")),
			ast.NewBinaryConstraint(ast.ConstraintEQ, ast.NewVariable("r"),
				ast.NewRecordInit(qn("Pair"), ast.NewVariable("x"), ast.NewVariable("y"))),
		)
		vars := groundedVars(c)
		if !vars["x"] || !vars["y"] {
			t.Errorf("record fields must ground through a grounded record: %v", vars)
		}
	})

	t.Run("ungrounded record field blocks the record", func(t *testing.T) {
		record := ast.NewRecordInit(qn("Pair"), ast.NewVariable("x"), ast.NewVariable("y"))
		c := ast.NewClause(
			ast.NewAtom(qn("a"), ast.NewVariable("r")),
			ast.NewAtom(qn("b"), ast.NewVariable("x")),
			ast.NewBinaryConstraint(ast.ConstraintEQ, ast.NewVariable("r"), record),
		)
		g := GroundedTerms(c)
		if g[record.ID()] {
			t.Error("a record with an ungrounded field must stay ungrounded")
		}
		if groundedVars(c)["r"] {
			t.Error("r must stay ungrounded")
		}
	})

	t.Run("functors ground upwards only", func(t *testing.T) {
		fn := ast.NewIntrinsicFunctor(ast.OpAdd, ast.NewVariable("x"), ast.NewVariable("y"))
		c := ast.NewClause(
			ast.NewAtom(qn("a"), ast.NewVariable("z")),
			ast.NewAtom(qn("b"), ast.NewVariable("x"), ast.NewVariable("y")),
			ast.NewBinaryConstraint(ast.ConstraintEQ, ast.NewVariable("z"), fn),
		)
		g := GroundedTerms(c)
		if !g[fn.ID()] {
			t.Error("a functor over grounded arguments must be grounded")
		}
		if !groundedVars(c)["z"] {
			t.Error("z must be grounded through the functor equality")
		}
	})

	t.Run("aggregator results are grounded", func(t *testing.T) {
		c := ast.NewClause(
			ast.NewAtom(qn("a"), ast.NewVariable("c")),
			ast.NewBinaryConstraint(ast.ConstraintEQ, ast.NewVariable("c"),
				ast.NewAggregator(ast.AggCount, nil, ast.NewAtom(qn("b"), ast.NewVariable("x")))),
		)
		vars := groundedVars(c)
		if !vars["c"] {
			t.Error("the aggregator result must ground its variable")
		}
		if !vars["x"] {
			t.Error("aggregator body atoms ground their variables")
		}
	})
}
