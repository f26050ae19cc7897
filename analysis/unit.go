// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package analysis computes the program-wide analyses shared by the
// semantic checker and the transformation passes: grounding, the relation
// precedence graph with its strata, I/O classification, and type inference.
// Results are cached on the translation unit and dropped wholesale whenever
// a transformation reports a change.
package analysis

import (
	"github.com/stratlog/stratlog/ast"
	"github.com/stratlog/stratlog/report"
)

// TranslationUnit couples a program with its diagnostic sink and lazily
// computed analyses. Exactly one pass owns the program at a time; the
// analyses are rebuilt on demand after InvalidateAnalyses.
type TranslationUnit struct {
	Program *ast.Program
	Report  *report.Report

	precedence *PrecedenceGraph
	io         *IOTypes
	types      *TypeAnalysis
	grounding  map[*ast.Clause]map[ast.NodeID]bool
}

// NewTranslationUnit returns a translation unit over the given program.
func NewTranslationUnit(p *ast.Program, r *report.Report) *TranslationUnit {
	return &TranslationUnit{Program: p, Report: r}
}

// Precedence returns the cached precedence graph.
func (tu *TranslationUnit) Precedence() *PrecedenceGraph {
	if tu.precedence == nil {
		tu.precedence = NewPrecedenceGraph(tu.Program)
	}
	return tu.precedence
}

// IO returns the cached I/O classification.
func (tu *TranslationUnit) IO() *IOTypes {
	if tu.io == nil {
		tu.io = NewIOTypes(tu.Program)
	}
	return tu.io
}

// Types returns the cached type analysis.
func (tu *TranslationUnit) Types() *TypeAnalysis {
	if tu.types == nil {
		tu.types = NewTypeAnalysis(tu.Program)
	}
	return tu.types
}

// Grounded returns the cached grounding map for a clause.
func (tu *TranslationUnit) Grounded(c *ast.Clause) map[ast.NodeID]bool {
	if tu.grounding == nil {
		tu.grounding = map[*ast.Clause]map[ast.NodeID]bool{}
	}
	if g, ok := tu.grounding[c]; ok {
		return g
	}
	g := GroundedTerms(c)
	tu.grounding[c] = g
	return g
}

// Recursive reports whether the clause takes part in mutual recursion: some
// body atom's relation shares a stratum with the head.
func (tu *TranslationUnit) Recursive(c *ast.Clause) bool {
	if c.Head == nil {
		return false
	}
	g := tu.Precedence()
	head := c.Head.Name.String()
	recursive := false
	ast.WalkAtoms(c.Body, func(atom *ast.Atom) {
		if g.SameSCC(atom.Name.String(), head) {
			recursive = true
		}
	})
	return recursive
}

// InvalidateAnalyses drops every cached analysis. Transformations call this
// after any change to the program.
func (tu *TranslationUnit) InvalidateAnalyses() {
	tu.precedence = nil
	tu.io = nil
	tu.types = nil
	tu.grounding = nil
}
