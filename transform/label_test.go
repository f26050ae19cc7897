// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package transform

import (
	"testing"

	"github.com/stratlog/stratlog/analysis"
	"github.com/stratlog/stratlog/ast"
	"github.com/stratlog/stratlog/report"
)

// negationProgram builds:
//
//	r(x) :- base(x).
//	s(x) :- r(x).
//	t(x) :- r(x), !s(x).
//
// with base as the only input.
func negationProgram() *ast.Program {
	p := ast.NewProgram()
	declare(p, "base", 1).SetQualifier(ast.InputQualifier)
	declare(p, "r", 1)
	declare(p, "s", 1)
	declare(p, "t", 1)
	p.AddDirective(ast.NewDirective(ast.OutputDirective, qn("t")))
	p.AddClause(ast.NewClause(
		ast.NewAtom(qn("r"), ast.NewVariable("x")),
		ast.NewAtom(qn("base"), ast.NewVariable("x")),
	))
	p.AddClause(ast.NewClause(
		ast.NewAtom(qn("s"), ast.NewVariable("x")),
		ast.NewAtom(qn("r"), ast.NewVariable("x")),
	))
	p.AddClause(ast.NewClause(
		ast.NewAtom(qn("t"), ast.NewVariable("x")),
		ast.NewAtom(qn("r"), ast.NewVariable("x")),
		ast.NewNegation(ast.NewAtom(qn("s"), ast.NewVariable("x"))),
	))
	return p
}

func hasClause(p *ast.Program, s string) bool {
	for _, c := range p.Clauses {
		if c.String() == s {
			return true
		}
	}
	return false
}

func TestNegativeLabelling(t *testing.T) {
	p := negationProgram()
	tu := analysis.NewTranslationUnit(p, report.NewReport())

	pass := NewLabelDatabase()
	if !pass.Transform(tu) {
		t.Fatal("expected labelling to change the program")
	}
	tu.InvalidateAnalyses()

	if !hasClause(p, "t(x) :- r(x), !@neglabel.s(x).") {
		t.Errorf("expected the negated use to be redirected, clauses: %v", clauseStrings(p))
	}
	if p.Relation(qn("@neglabel", "s")) == nil {
		t.Error("expected the @neglabel relation to be declared")
	}

	// the negative path got its own copy of the positive strata it needs
	if !hasClause(p, "@neglabel.s(x) :- @poscopy_1.r(x).") {
		t.Errorf("expected the labelled rule to use the positive copy, clauses: %v", clauseStrings(p))
	}
	if !hasClause(p, "@poscopy_1.r(x) :- base(x).") {
		t.Errorf("expected the positive copy of r, clauses: %v", clauseStrings(p))
	}

	// the original rules are untouched
	for _, s := range []string{"r(x) :- base(x).", "s(x) :- r(x)."} {
		if !hasClause(p, s) {
			t.Errorf("expected original clause %q to survive", s)
		}
	}
}

// stratification invariant: after labelling, no stratum mixes @neglabel and
// plain relations.
func TestLabellingStratificationInvariant(t *testing.T) {
	p := negationProgram()
	tu := analysis.NewTranslationUnit(p, report.NewReport())
	NewLabelDatabase().Transform(tu)
	tu.InvalidateAnalyses()

	for _, scc := range tu.Precedence().SCCs() {
		labelled := 0
		for _, name := range scc {
			if isNegativelyLabelled(ast.ParseQualifiedName(name)) {
				labelled++
			}
		}
		if labelled != 0 && labelled != len(scc) {
			t.Errorf("stratum %v mixes labelled and unlabelled relations", scc)
		}
	}
}

func TestLabellingIdempotent(t *testing.T) {
	p := negationProgram()
	tu := analysis.NewTranslationUnit(p, report.NewReport())
	pass := NewLabelDatabase()
	if !pass.Transform(tu) {
		t.Fatal("expected the first run to change the program")
	}
	tu.InvalidateAnalyses()
	before := clauseStrings(p)
	if pass.Transform(tu) {
		t.Fatal("expected the second run to be a no-op")
	}
	if diff := diffStrings(before, clauseStrings(p)); diff != "" {
		t.Errorf("second run changed the program:\n%s", diff)
	}
}

func TestAggregatorLabelling(t *testing.T) {
	p := ast.NewProgram()
	declare(p, "base", 1).SetQualifier(ast.InputQualifier)
	declare(p, "b", 1)
	declare(p, "a", 1)
	p.AddClause(ast.NewClause(
		ast.NewAtom(qn("b"), ast.NewVariable("x")),
		ast.NewAtom(qn("base"), ast.NewVariable("x")),
	))
	p.AddClause(ast.NewClause(
		ast.NewAtom(qn("a"), ast.NewVariable("c")),
		ast.NewBinaryConstraint(ast.ConstraintEQ, ast.NewVariable("c"),
			ast.NewAggregator(ast.AggCount, nil, ast.NewAtom(qn("b"), ast.NewVariable("x")))),
	))

	tu := analysis.NewTranslationUnit(p, report.NewReport())
	if !NewLabelDatabase().Transform(tu) {
		t.Fatal("expected labelling to change the program")
	}

	if !hasClause(p, "a(c) :- c = count : { @neglabel.b(x) }.") {
		t.Errorf("expected the aggregated use to be redirected, clauses: %v", clauseStrings(p))
	}
	if !hasClause(p, "@neglabel.b(x) :- base(x).") {
		t.Errorf("expected the @neglabel rules, clauses: %v", clauseStrings(p))
	}
}

func diffStrings(want, got []string) string {
	if len(want) != len(got) {
		return "length mismatch"
	}
	for i := range want {
		if want[i] != got[i] {
			return want[i] + " != " + got[i]
		}
	}
	return ""
}
