// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package analysis

import (
	"testing"

	"github.com/stratlog/stratlog/ast"
	"github.com/stratlog/stratlog/report"
)

// mutualProgram builds: e (EDB), p and q mutually recursive over e, and an
// r derived from p.
func mutualProgram() *ast.Program {
	qn := ast.NewQualifiedName
	p := ast.NewProgram()
	for _, name := range []string{"e", "p", "q", "r"} {
		p.AddRelation(ast.NewRelation(qn(name), ast.NewAttribute("x", qn("number"))))
	}
	p.AddClause(ast.NewClause(
		ast.NewAtom(qn("p"), ast.NewVariable("x")),
		ast.NewAtom(qn("q"), ast.NewVariable("x")),
	))
	p.AddClause(ast.NewClause(
		ast.NewAtom(qn("q"), ast.NewVariable("x")),
		ast.NewAtom(qn("p"), ast.NewVariable("x")),
		ast.NewAtom(qn("e"), ast.NewVariable("x")),
	))
	p.AddClause(ast.NewClause(
		ast.NewAtom(qn("r"), ast.NewVariable("x")),
		ast.NewAtom(qn("p"), ast.NewVariable("x")),
	))
	return p
}

func TestPrecedenceGraph(t *testing.T) {
	graph := NewPrecedenceGraph(mutualProgram())

	if !graph.Reaches("p", "p") {
		t.Error("p must reach itself through q")
	}
	if graph.Reaches("r", "r") {
		t.Error("r must not reach itself")
	}
	if graph.Reaches("r", "p") {
		t.Error("r must not reach p")
	}
	if !graph.Reaches("e", "r") {
		t.Error("e must reach r through the recursion")
	}

	clique := graph.Clique("p")
	if len(clique) != 2 || clique[0] != "p" || clique[1] != "q" {
		t.Errorf("expected clique {p,q} but got %v", clique)
	}
	if !graph.SameSCC("p", "q") || graph.SameSCC("p", "r") {
		t.Error("unexpected SCC membership")
	}

	// strata must respect dependencies: e before {p,q} before r
	order := map[string]int{}
	for idx, scc := range graph.SCCs() {
		for _, name := range scc {
			order[name] = idx
		}
	}
	if !(order["e"] < order["p"] && order["p"] == order["q"] && order["q"] < order["r"]) {
		t.Errorf("unexpected stratum order: %v", order)
	}
}

func TestRecursiveClauses(t *testing.T) {
	program := mutualProgram()
	tu := NewTranslationUnit(program, report.NewReport())

	recursive := 0
	for _, clause := range program.Clauses {
		if tu.Recursive(clause) {
			recursive++
		}
	}
	// p :- q and q :- p, e are recursive; r :- p is not
	if recursive != 2 {
		t.Errorf("expected 2 recursive clauses but got %d", recursive)
	}
}

func TestInvalidateAnalyses(t *testing.T) {
	program := mutualProgram()
	tu := NewTranslationUnit(program, report.NewReport())

	before := tu.Precedence()
	if tu.Precedence() != before {
		t.Fatal("expected the precedence graph to be cached")
	}

	qn := ast.NewQualifiedName
	program.AddRelation(ast.NewRelation(qn("extra"), ast.NewAttribute("x", qn("number"))))
	tu.InvalidateAnalyses()
	after := tu.Precedence()
	if after == before {
		t.Fatal("expected invalidation to drop the cached graph")
	}
	if after.SCCOf("extra") < 0 {
		t.Fatal("expected the rebuilt graph to include the new relation")
	}
}
