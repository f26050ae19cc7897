// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package semantic

import (
	"strings"
	"testing"

	"github.com/stratlog/stratlog/analysis"
	"github.com/stratlog/stratlog/ast"
	"github.com/stratlog/stratlog/config"
	"github.com/stratlog/stratlog/report"
)

var qn = ast.NewQualifiedName

func declare(p *ast.Program, name string, attrTypes ...string) *ast.Relation {
	attrs := make([]*ast.Attribute, len(attrTypes))
	letters := []string{"x", "y", "z", "w"}
	for i, tn := range attrTypes {
		attrs[i] = ast.NewAttribute(letters[i%len(letters)], ast.ParseQualifiedName(tn))
	}
	rel := ast.NewRelation(qn(name), attrs...)
	p.AddRelation(rel)
	return rel
}

func runChecker(p *ast.Program, cfg *config.Config) (*report.Report, *Checker) {
	rep := report.NewReport()
	tu := analysis.NewTranslationUnit(p, rep)
	checker := NewChecker(tu, cfg)
	checker.Check()
	CheckExecutionPlans(tu)
	return rep, checker
}

func errorTexts(rep *report.Report) []string {
	var out []string
	for _, d := range rep.Diagnostics() {
		if d.Severity == report.Error {
			out = append(out, d.Primary.Text)
		}
	}
	return out
}

func expectErrors(t *testing.T, rep *report.Report, expected ...string) {
	t.Helper()
	errs := errorTexts(rep)
	if len(errs) != len(expected) {
		t.Fatalf("expected %d error(s) %v but got %v", len(expected), expected, errs)
	}
	for i, want := range expected {
		if !strings.Contains(errs[i], want) {
			t.Errorf("expected error %d to contain %q but got %q", i, want, errs[i])
		}
	}
}

func TestUngroundedHeadVariable(t *testing.T) {
	p := ast.NewProgram()
	declare(p, "A", "number")
	declare(p, "B", "number")
	p.AddClause(ast.NewClause(
		ast.NewAtom(qn("A"), ast.NewVariable("x")),
		ast.NewAtom(qn("B"), ast.NewVariable("y")),
	))

	rep, _ := runChecker(p, nil)
	expectErrors(t, rep, "Ungrounded variable x")
}

func TestMismatchedKindsInComparison(t *testing.T) {
	p := ast.NewProgram()
	declare(p, "A", "number")
	declare(p, "B", "number")
	p.AddClause(ast.NewClause(
		ast.NewAtom(qn("A"), ast.NewVariable("x")),
		ast.NewAtom(qn("B"), ast.NewVariable("x")),
		ast.NewBinaryConstraint(ast.ConstraintEQ, ast.NewVariable("s"), ast.NewVariable("x")),
		ast.NewBinaryConstraint(ast.ConstraintNE, ast.NewVariable("s"), ast.NewStringConstant("hi")),
	))

	rep, _ := runChecker(p, nil)
	expectErrors(t, rep, "Cannot compare operands of different kinds")
}

func TestMixedKindEqualityCollapses(t *testing.T) {
	// equality itself is unconstrained; a mixed-kind equality shows up as
	// the operands losing every valid type
	p := ast.NewProgram()
	declare(p, "A", "number")
	declare(p, "B", "number")
	p.AddClause(ast.NewClause(
		ast.NewAtom(qn("A"), ast.NewVariable("x")),
		ast.NewAtom(qn("B"), ast.NewVariable("x")),
		ast.NewBinaryConstraint(ast.ConstraintEQ, ast.NewVariable("x"), ast.NewStringConstant("hi")),
	))

	rep, _ := runChecker(p, nil)
	errs := errorTexts(rep)
	if len(errs) == 0 {
		t.Fatal("expected invalid-type errors for a mixed-kind equality")
	}
	for _, err := range errs {
		if !strings.Contains(err, "Unable to deduce valid type for expression, as primitive types are disjoint") {
			t.Errorf("unexpected error %q", err)
		}
	}
}

func TestNegationCycle(t *testing.T) {
	p := ast.NewProgram()
	declare(p, "p", "number")
	declare(p, "q", "number")
	declare(p, "r", "number")
	p.AddClause(ast.NewClause(
		ast.NewAtom(qn("p"), ast.NewVariable("x")),
		ast.NewAtom(qn("q"), ast.NewVariable("x")),
	))
	neg := ast.NewNegation(ast.NewAtom(qn("p"), ast.NewVariable("x")))
	neg.SetLoc(ast.NewLocation("test.dl", 2, 10))
	p.AddClause(ast.NewClause(
		ast.NewAtom(qn("q"), ast.NewVariable("x")),
		neg,
		ast.NewAtom(qn("r"), ast.NewVariable("x")),
	))

	rep, _ := runChecker(p, nil)
	expectErrors(t, rep, "Unable to stratify relation(s) {p,q}")

	var diag *report.Diagnostic
	for _, d := range rep.Diagnostics() {
		if d.Severity == report.Error {
			diag = d
		}
	}
	if len(diag.Secondary) != 2 {
		t.Fatalf("expected two secondary messages, got %v", diag.Secondary)
	}
	if diag.Secondary[1].Text != "has cyclic negation" {
		t.Errorf("unexpected secondary message %q", diag.Secondary[1].Text)
	}
	if diag.Secondary[1].Loc == nil || diag.Secondary[1].Loc.Line != 2 {
		t.Errorf("expected the offending literal's location, got %v", diag.Secondary[1].Loc)
	}
}

func TestWitnessProblem(t *testing.T) {
	p := ast.NewProgram()
	declare(p, "head", "number")
	declare(p, "body", "number", "number")

	z := ast.NewVariable("z")
	z.SetLoc(ast.NewLocation("test.dl", 42, 7))
	aggr := ast.NewAggregator(ast.AggMax, ast.NewVariable("y"),
		ast.NewAtom(qn("body"), ast.NewVariable("y"), ast.NewVariable("z")))
	p.AddClause(ast.NewClause(
		ast.NewAtom(qn("head"), ast.NewVariable("x")),
		ast.NewBinaryConstraint(ast.ConstraintEQ, ast.NewVariable("x"), aggr),
		ast.NewBinaryConstraint(ast.ConstraintGT, z, ast.NewNumberConstant(0)),
	))

	rep, _ := runChecker(p, nil)
	expectErrors(t, rep, "Witness problem")

	for _, d := range rep.Diagnostics() {
		if d.Severity == report.Error {
			if d.Primary.Loc == nil || d.Primary.Loc.Line != 42 {
				t.Errorf("expected the witness error at the outer use, got %v", d.Primary.Loc)
			}
		}
	}
}

func TestLegalAggregatorUse(t *testing.T) {
	p := ast.NewProgram()
	declare(p, "head", "number")
	declare(p, "body", "number", "number")
	p.AddClause(ast.NewClause(
		ast.NewAtom(qn("head"), ast.NewVariable("x")),
		ast.NewBinaryConstraint(ast.ConstraintEQ, ast.NewVariable("x"),
			ast.NewAggregator(ast.AggMax, ast.NewVariable("y"),
				ast.NewAtom(qn("body"), ast.NewVariable("y"), ast.NewVariable("z")))),
	))

	rep, _ := runChecker(p, nil)
	expectErrors(t, rep)
}

func TestInlineCycle(t *testing.T) {
	p := ast.NewProgram()
	declare(p, "a", "number").SetQualifier(ast.InlineQualifier)
	declare(p, "b", "number").SetQualifier(ast.InlineQualifier)
	p.AddClause(ast.NewClause(
		ast.NewAtom(qn("a"), ast.NewVariable("x")),
		ast.NewAtom(qn("b"), ast.NewVariable("x")),
	))
	p.AddClause(ast.NewClause(
		ast.NewAtom(qn("b"), ast.NewVariable("x")),
		ast.NewAtom(qn("a"), ast.NewVariable("x")),
	))

	rep, _ := runChecker(p, nil)
	expectErrors(t, rep, "Cannot inline cyclically dependent relations {a, b}")
}

func TestFactChecks(t *testing.T) {
	p := ast.NewProgram()
	declare(p, "f", "number", "number")
	p.AddClause(ast.NewClause(ast.NewAtom(qn("f"), ast.NewVariable("y"), ast.NewUnnamedVariable())))

	rep, _ := runChecker(p, nil)
	expectErrors(t, rep, "Underscore in head of rule", "Variable y in fact", "Underscore in fact")
}

func TestClauseShapeChecks(t *testing.T) {
	t.Run("undefined relation", func(t *testing.T) {
		prog := ast.NewProgram()
		declare(prog, "A", "number")
		prog.AddClause(ast.NewClause(
			ast.NewAtom(qn("A"), ast.NewVariable("x")),
			ast.NewAtom(qn("missing"), ast.NewVariable("x")),
		))
		rep, _ := runChecker(prog, nil)
		expectErrors(t, rep, "Undefined relation missing")
	})

	t.Run("arity mismatch", func(t *testing.T) {
		prog := ast.NewProgram()
		declare(prog, "A", "number")
		declare(prog, "B", "number")
		prog.AddClause(ast.NewClause(
			ast.NewAtom(qn("A"), ast.NewVariable("x")),
			ast.NewAtom(qn("B"), ast.NewVariable("x"), ast.NewVariable("x")),
		))
		rep, _ := runChecker(prog, nil)
		expectErrors(t, rep, "Mismatching arity of relation B")
	})

	t.Run("underscore in constraint", func(t *testing.T) {
		prog := ast.NewProgram()
		declare(prog, "A", "number")
		declare(prog, "B", "number")
		prog.AddClause(ast.NewClause(
			ast.NewAtom(qn("A"), ast.NewVariable("x")),
			ast.NewAtom(qn("B"), ast.NewVariable("x")),
			ast.NewBinaryConstraint(ast.ConstraintGT, ast.NewVariable("x"), ast.NewUnnamedVariable()),
		))
		rep, _ := runChecker(prog, nil)
		expectErrors(t, rep, "Underscore in binary relation")
	})

	t.Run("counter in recursive clause", func(t *testing.T) {
		prog := ast.NewProgram()
		declare(prog, "p", "number")
		prog.AddClause(ast.NewClause(
			ast.NewAtom(qn("p"), ast.NewVariable("x")),
			ast.NewAtom(qn("p"), ast.NewVariable("x")),
			ast.NewBinaryConstraint(ast.ConstraintEQ, ast.NewVariable("x"), ast.NewCounter()),
		))
		rep, _ := runChecker(prog, nil)
		expectErrors(t, rep, "Auto-increment functor in a recursive rule")
	})

	t.Run("single use variable warns", func(t *testing.T) {
		prog := ast.NewProgram()
		declare(prog, "A", "number")
		declare(prog, "B", "number", "number")
		prog.AddClause(ast.NewClause(
			ast.NewAtom(qn("A"), ast.NewVariable("x")),
			ast.NewAtom(qn("B"), ast.NewVariable("x"), ast.NewVariable("lonely")),
		))
		rep, _ := runChecker(prog, nil)
		expectErrors(t, rep)
		found := false
		for _, d := range rep.Diagnostics() {
			if d.Severity == report.Warning && strings.Contains(d.Primary.Text, "lonely only occurs once") {
				found = true
			}
		}
		if !found {
			t.Error("expected a single-use warning for lonely")
		}
	})
}

func TestDeclarationChecks(t *testing.T) {
	t.Run("name clash", func(t *testing.T) {
		p := ast.NewProgram()
		p.AddType(ast.NewPrimitiveDecl(qn("t"), ast.Numeric))
		declare(p, "t", "number")
		p.AddClause(ast.NewClause(ast.NewAtom(qn("t"), ast.NewNumberConstant(1))))
		rep, _ := runChecker(p, nil)
		expectErrors(t, rep, "Name clash on relation t")
	})

	t.Run("mixed union", func(t *testing.T) {
		p := ast.NewProgram()
		p.AddType(ast.NewUnionDecl(qn("mixed"), qn("number"), qn("symbol")))
		rep, _ := runChecker(p, nil)
		expectErrors(t, rep,
			"Union type mixed contains a mixture of symbol and number types",
			"No type checking could occur due to other errors present")
	})

	t.Run("eqrel must be binary", func(t *testing.T) {
		p := ast.NewProgram()
		rel := declare(p, "eq", "number")
		rel.Representation = ast.RepEqrel
		p.AddClause(ast.NewClause(ast.NewAtom(qn("eq"), ast.NewNumberConstant(1))))
		rep, _ := runChecker(p, nil)
		expectErrors(t, rep, "Equivalence relation eq is not binary")
	})

	t.Run("undefined directive target", func(t *testing.T) {
		p := ast.NewProgram()
		p.AddDirective(ast.NewDirective(ast.OutputDirective, qn("out")))
		rep, _ := runChecker(p, nil)
		expectErrors(t, rep, "Undefined relation out")
	})

	t.Run("record typed input relation", func(t *testing.T) {
		p := ast.NewProgram()
		p.AddType(ast.NewRecordDecl(qn("Pair"),
			ast.NewAttribute("a", qn("number")), ast.NewAttribute("b", qn("number"))))
		rel := declare(p, "rin", "Pair")
		rel.SetQualifier(ast.InputQualifier)
		rep, checker := runChecker(p, nil)
		expectErrors(t, rep, "Input relations must not have record types")
		if !checker.DisableSubprogramCompilation {
			t.Error("expected the record type to disable subprogram compilation")
		}
	})

	t.Run("number constant range", func(t *testing.T) {
		p := ast.NewProgram()
		declare(p, "f", "number")
		p.AddClause(ast.NewClause(ast.NewAtom(qn("f"), ast.NewNumberConstant(3000000000))))
		rep, _ := runChecker(p, nil)
		expectErrors(t, rep, "Number constant not in range [-2147483648, 2147483647]")
	})
}

func TestSuppressWarnings(t *testing.T) {
	build := func() *ast.Program {
		p := ast.NewProgram()
		declare(p, "empty", "number")
		return p
	}

	rep, _ := runChecker(build(), nil)
	if rep.WarningCount() != 1 {
		t.Fatalf("expected the empty-relation warning, got %d warnings", rep.WarningCount())
	}

	cfg := config.New()
	cfg.Set("suppress-warnings", "*")
	rep, _ = runChecker(build(), cfg)
	if rep.WarningCount() != 0 {
		t.Fatalf("expected no warnings under suppress-warnings=*, got %d", rep.WarningCount())
	}
}

func TestExecutionPlanChecks(t *testing.T) {
	t.Run("incomplete order", func(t *testing.T) {
		p := ast.NewProgram()
		declare(p, "p", "number")
		declare(p, "e", "number")
		clause := ast.NewClause(
			ast.NewAtom(qn("p"), ast.NewVariable("x")),
			ast.NewAtom(qn("e"), ast.NewVariable("x")),
			ast.NewAtom(qn("p"), ast.NewVariable("x")),
		)
		clause.Plan = ast.NewExecutionPlan()
		clause.Plan.SetOrder(0, ast.NewExecutionOrder(1, 1))
		p.AddClause(clause)
		rep, _ := runChecker(p, nil)
		expectErrors(t, rep, "Invalid execution plan")
	})

	t.Run("version out of range", func(t *testing.T) {
		p := ast.NewProgram()
		declare(p, "p", "number")
		declare(p, "e", "number")
		clause := ast.NewClause(
			ast.NewAtom(qn("p"), ast.NewVariable("x")),
			ast.NewAtom(qn("e"), ast.NewVariable("x")),
			ast.NewAtom(qn("p"), ast.NewVariable("x")),
		)
		clause.Plan = ast.NewExecutionPlan()
		clause.Plan.SetOrder(0, ast.NewExecutionOrder(1, 2))
		clause.Plan.SetOrder(1, ast.NewExecutionOrder(2, 1))
		p.AddClause(clause)
		rep, _ := runChecker(p, nil)
		expectErrors(t, rep, "execution plan for version 1")
	})
}
