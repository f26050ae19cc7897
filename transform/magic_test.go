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
	"github.com/stratlog/stratlog/report"
)

func runMagicPipeline(t *testing.T, p *ast.Program) *analysis.TranslationUnit {
	t.Helper()
	tu := analysis.NewTranslationUnit(p, report.NewReport())
	if !MagicSetPipeline(magicConfig(), MaxBound{}).Transform(tu) {
		t.Fatal("expected the pipeline to change the program")
	}
	return tu
}

func TestMagicSetTransitiveClosure(t *testing.T) {
	p := transitiveClosure()
	runMagicPipeline(t, p)

	for _, expected := range []string{
		// the seed driving the computation
		"@magic.@interm_out.p{f}().",
		// refined rules guard their heads with the magic atom
		"@interm_out.p{b}(x) :- @magic.@interm_out.p{b}(x), e(x, y), @interm_out.p{b}(y).",
		"@interm_out.p{b}(x) :- @magic.@interm_out.p{b}(x), s(x).",
		"@interm_out.p{f}(x) :- @magic.@interm_out.p{f}(), e(x, y), @interm_out.p{b}(y).",
		// supplementary rules propagate the demand sideways
		"@magic.@interm_out.p{b}(y) :- @magic.@interm_out.p{b}(x), e(x, y).",
		"@magic.@interm_out.p{b}(y) :- @magic.@interm_out.p{f}(), e(x, y).",
	} {
		if !hasClause(p, expected) {
			t.Errorf("missing clause %q\nclauses:\n%s", expected, strings.Join(clauseStrings(p), "\n"))
		}
	}
}

// magic-rule arity: every @magic relation has exactly one attribute per 'b'
// in its adornment.
func TestMagicRelationArity(t *testing.T) {
	p := transitiveClosure()
	runMagicPipeline(t, p)

	checked := 0
	for _, rel := range p.Relations {
		if rel.Name.First() != "@magic" {
			continue
		}
		checked++
		marker := adornmentOf(rel.Name)
		bound := strings.Count(marker, "b")
		if rel.Arity() != bound {
			t.Errorf("relation %v has arity %d but %d bound positions", rel.Name, rel.Arity(), bound)
		}
	}
	if checked == 0 {
		t.Fatal("expected at least one magic relation")
	}
}

func TestMagicSetIdempotent(t *testing.T) {
	p := transitiveClosure()
	tu := runMagicPipeline(t, p)
	tu.InvalidateAnalyses()

	before := clauseStrings(p)
	if MagicSetPipeline(magicConfig(), MaxBound{}).Transform(tu) {
		t.Fatal("expected the second pipeline run to be a no-op")
	}
	if diff := cmp.Diff(before, clauseStrings(p)); diff != "" {
		t.Errorf("second run changed the program (-want +got):\n%s", diff)
	}
}

// record equalities propagate bindings to a fixpoint before constraints are
// filtered into supplementary rules.
func TestMagicRecordEqualityFixpoint(t *testing.T) {
	head := ast.NewAtom(adornedName(qn("q"), "b"), ast.NewVariable("v"))
	clause := ast.NewClause(
		head,
		ast.NewBinaryConstraint(ast.ConstraintEQ, ast.NewVariable("v"),
			ast.NewRecordInit(qn("Pair"), ast.NewVariable("a"), ast.NewVariable("b"))),
		ast.NewBinaryConstraint(ast.ConstraintEQ, ast.NewVariable("a"),
			ast.NewRecordInit(qn("Pair"), ast.NewVariable("c"), ast.NewVariable("d"))),
		ast.NewAtom(adornedName(qn("r"), "b"), ast.NewVariable("c")),
	)

	p := ast.NewProgram()
	p.AddRelation(ast.NewRelation(adornedName(qn("q"), "b"), ast.NewAttribute("x", qn("number"))))
	p.AddRelation(ast.NewRelation(adornedName(qn("r"), "b"), ast.NewAttribute("x", qn("number"))))
	p.AddClause(clause)

	tu := analysis.NewTranslationUnit(p, report.NewReport())
	if !NewMagicSet().Transform(tu) {
		t.Fatal("expected the rewrite to change the program")
	}

	// the supplementary rule for r{b} must include both record equalities:
	// v is seen from the head's magic atom, the first equality exposes a
	// and b, and only then does the second expose c and d
	expected := "@magic.r{b}(c) :- @magic.q{b}(v), v = [a, b], a = [c, d]."
	if !hasClause(p, expected) {
		t.Errorf("missing %q\nclauses:\n%s", expected, strings.Join(clauseStrings(p), "\n"))
	}
}

func TestMagicSkipsUnadornedClauses(t *testing.T) {
	p := ast.NewProgram()
	declare(p, "plain", 1)
	declare(p, "edb", 1)
	p.AddClause(ast.NewClause(
		ast.NewAtom(qn("plain"), ast.NewVariable("x")),
		ast.NewAtom(qn("edb"), ast.NewVariable("x")),
	))

	tu := analysis.NewTranslationUnit(p, report.NewReport())
	if NewMagicSet().Transform(tu) {
		t.Fatal("expected no change on a program without adornments")
	}
}
