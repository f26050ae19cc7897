// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package transform

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/stratlog/stratlog/analysis"
	"github.com/stratlog/stratlog/ast"
	"github.com/stratlog/stratlog/config"
)

// transitiveClosure builds the normalised form of:
//
//	p(x) :- e(x,y), p(y).
//	p(x) :- s(x).
//	.output p
//
// with e and s as inputs.
func transitiveClosure() *ast.Program {
	p := ast.NewProgram()
	declare(p, "p", 1)
	declare(p, "e", 2).SetQualifier(ast.InputQualifier)
	declare(p, "s", 1).SetQualifier(ast.InputQualifier)
	p.AddDirective(ast.NewDirective(ast.OutputDirective, qn("p")))
	p.AddClause(ast.NewClause(
		ast.NewAtom(qn("p"), ast.NewVariable("x")),
		ast.NewAtom(qn("e"), ast.NewVariable("x"), ast.NewVariable("y")),
		ast.NewAtom(qn("p"), ast.NewVariable("y")),
	))
	p.AddClause(ast.NewClause(
		ast.NewAtom(qn("p"), ast.NewVariable("x")),
		ast.NewAtom(qn("s"), ast.NewVariable("x")),
	))
	return p
}

func magicConfig() *config.Config {
	cfg := config.New()
	cfg.Set("magic-transform", "*")
	return cfg
}

func TestAdornPropagation(t *testing.T) {
	p := transitiveClosure()
	tu := analysis.NewTranslationUnit(p, nil)
	cfg := magicConfig()

	if !NewNormaliseDatabase().Transform(tu) {
		t.Fatal("expected normalisation to change the program")
	}
	tu.InvalidateAnalyses()
	if !NewAdornDatabase(cfg, MaxBound{}).Transform(tu) {
		t.Fatal("expected adornment to change the program")
	}

	expected := []string{
		"@interm_out.p(x) :- e(x, y), @interm_out.p(y).",
		"@interm_out.p(x) :- s(x).",
		"@interm_out.p{b}(x) :- e(x, y), @interm_out.p{b}(y).",
		"@interm_out.p{b}(x) :- s(x).",
		"@interm_out.p{f}(x) :- e(x, y), @interm_out.p{b}(y).",
		"@interm_out.p{f}(x) :- s(x).",
		"p(@query_x0) :- @interm_out.p{f}(@query_x0).",
	}
	if diff := cmp.Diff(expected, clauseStrings(p)); diff != "" {
		t.Errorf("unexpected clauses (-want +got):\n%s", diff)
	}

	// adorned relations are declared with the original attributes
	for _, name := range []string{"@interm_out.p{b}", "@interm_out.p{f}"} {
		found := false
		for _, rel := range p.Relations {
			if rel.Name.String() == name {
				found = true
				if rel.Arity() != 1 {
					t.Errorf("adorned relation %s must keep the arity", name)
				}
			}
		}
		if !found {
			t.Errorf("expected relation %s to be declared", name)
		}
	}
}

// adornment consistency: every adorned body atom's marker length equals its
// relation's arity, and markers agree with the binding order.
func TestAdornmentConsistency(t *testing.T) {
	p := transitiveClosure()
	tu := analysis.NewTranslationUnit(p, nil)
	NewNormaliseDatabase().Transform(tu)
	tu.InvalidateAnalyses()
	NewAdornDatabase(magicConfig(), MaxBound{}).Transform(tu)

	for _, clause := range p.Clauses {
		ast.WalkAtoms(clause, func(atom *ast.Atom) {
			if !isAdornedName(atom.Name) {
				return
			}
			marker := adornmentOf(atom.Name)
			if len(marker) != len(atom.Args) {
				t.Errorf("marker %q does not match arity of %v", marker, atom)
			}
			for _, ch := range marker {
				if ch != 'b' && ch != 'f' {
					t.Errorf("bad marker %q on %v", marker, atom)
				}
			}
		})
	}
}

func TestAdornLeftToRight(t *testing.T) {
	p := transitiveClosure()
	tu := analysis.NewTranslationUnit(p, nil)
	NewNormaliseDatabase().Transform(tu)
	tu.InvalidateAnalyses()
	if !NewAdornDatabase(magicConfig(), LeftToRight{}).Transform(tu) {
		t.Fatal("expected adornment to change the program")
	}

	// source order and max-bound agree on this program
	for _, clause := range p.Clauses {
		if strings.Contains(clause.String(), "{fb}") || strings.Contains(clause.String(), "{bf}") {
			t.Errorf("unexpected marker in %v", clause)
		}
	}
}

// maxBoundReorder builds a program whose recursive rule lists its atoms
// against the binding order: with the head bound, max-bound places e before
// q even though q comes first in the source.
//
//	driver(x) :- s(x), p(x).      .output driver
//	p(x)      :- q(y), e(x, y).
//	q(y)      :- t(y).
//
// with s, e, and t as inputs.
func maxBoundReorder() *ast.Program {
	p := ast.NewProgram()
	declare(p, "driver", 1)
	declare(p, "p", 1)
	declare(p, "q", 1)
	declare(p, "e", 2).SetQualifier(ast.InputQualifier)
	declare(p, "s", 1).SetQualifier(ast.InputQualifier)
	declare(p, "t", 1).SetQualifier(ast.InputQualifier)
	p.AddDirective(ast.NewDirective(ast.OutputDirective, qn("driver")))
	p.AddClause(ast.NewClause(
		ast.NewAtom(qn("driver"), ast.NewVariable("x")),
		ast.NewAtom(qn("s"), ast.NewVariable("x")),
		ast.NewAtom(qn("p"), ast.NewVariable("x")),
	))
	p.AddClause(ast.NewClause(
		ast.NewAtom(qn("p"), ast.NewVariable("x")),
		ast.NewAtom(qn("q"), ast.NewVariable("y")),
		ast.NewAtom(qn("e"), ast.NewVariable("x"), ast.NewVariable("y")),
	))
	p.AddClause(ast.NewClause(
		ast.NewAtom(qn("q"), ast.NewVariable("y")),
		ast.NewAtom(qn("t"), ast.NewVariable("y")),
	))
	return p
}

func TestAdornMaxBoundReordering(t *testing.T) {
	p := maxBoundReorder()
	tu := analysis.NewTranslationUnit(p, nil)
	NewNormaliseDatabase().Transform(tu)
	tu.InvalidateAnalyses()
	if !NewAdornDatabase(magicConfig(), MaxBound{}).Transform(tu) {
		t.Fatal("expected adornment to change the program")
	}

	// with x bound, max-bound places e(x, y) before q(y), so q is entered
	// bound; the rebuilt body keeps the source order with each atom's own
	// adorned copy in its original slot
	if !hasClause(p, "p{b}(x) :- q{b}(y), e(x, y).") {
		t.Fatalf("expected the reordered binding pattern in source order, clauses:\n%s",
			strings.Join(clauseStrings(p), "\n"))
	}
	if hasClause(p, "p{b}(x) :- e(x, y), q{b}(y).") {
		t.Fatal("adorned atoms must return to their original body slots")
	}

	// each adorned atom kept its own arguments
	for _, clause := range p.Clauses {
		ast.WalkAtoms(clause, func(atom *ast.Atom) {
			if !isAdornedName(atom.Name) {
				return
			}
			switch atom.Name[0] {
			case "q":
				if len(atom.Args) != 1 || atom.Args[0].String() != "y" {
					t.Errorf("q lost its arguments: %v", atom)
				}
			case "e":
				t.Errorf("input relation e must stay unadorned: %v", atom)
			}
		})
	}
}

func TestAdornIdempotent(t *testing.T) {
	p := transitiveClosure()
	tu := analysis.NewTranslationUnit(p, nil)
	NewNormaliseDatabase().Transform(tu)
	tu.InvalidateAnalyses()
	pass := NewAdornDatabase(magicConfig(), MaxBound{})
	if !pass.Transform(tu) {
		t.Fatal("expected the first run to change the program")
	}
	tu.InvalidateAnalyses()
	before := clauseStrings(p)
	if pass.Transform(tu) {
		t.Fatal("expected the second run to be a no-op")
	}
	if diff := cmp.Diff(before, clauseStrings(p)); diff != "" {
		t.Errorf("second run changed the program (-want +got):\n%s", diff)
	}
}

func TestAdornRespectsMagicTransformList(t *testing.T) {
	p := transitiveClosure()
	tu := analysis.NewTranslationUnit(p, nil)
	NewNormaliseDatabase().Transform(tu)
	tu.InvalidateAnalyses()

	// nothing listed: every relation is ignored and nothing is adorned
	if NewAdornDatabase(config.New(), MaxBound{}).Transform(tu) {
		t.Fatal("expected no change without a magic-transform list")
	}
}
