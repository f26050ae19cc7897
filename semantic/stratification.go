// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package semantic

import (
	"fmt"
	"strings"

	"github.com/stratlog/stratlog/ast"
	"github.com/stratlog/stratlog/report"
)

// checkStratification reports every stratum that negates or aggregates over
// one of its own members: such a program has no stratified bottom-up
// evaluation order.
func (c *Checker) checkStratification() {
	p := c.tu.Program
	graph := c.tu.Precedence()

	reported := map[int]bool{}
	for _, rel := range p.Relations {
		name := rel.Name.String()
		if !graph.Reaches(name, name) {
			continue
		}
		stratum := graph.SCCOf(name)
		if reported[stratum] {
			continue
		}
		clique := graph.Clique(name)
		inClique := map[string]bool{}
		for _, member := range clique {
			inClique[member] = true
		}

		offender, kind := c.findCyclicLiteral(clique, inClique)
		if offender == nil {
			continue
		}
		reported[stratum] = true
		c.tu.Report.AddDiagnostic(&report.Diagnostic{
			Severity: report.Error,
			Primary: report.Message{
				Text: fmt.Sprintf("Unable to stratify relation(s) {%s}", strings.Join(clique, ",")),
			},
			Secondary: []report.Message{
				{Text: "Relation " + name, Loc: rel.Loc()},
				{Text: "has cyclic " + kind, Loc: offender.Loc()},
			},
		})
	}
}

// findCyclicLiteral locates a negation of, or aggregation over, a clique
// member inside the clique's own clauses.
func (c *Checker) findCyclicLiteral(clique []string, inClique map[string]bool) (ast.Literal, string) {
	for _, member := range clique {
		for _, clause := range c.tu.Program.ClausesOf(ast.ParseQualifiedName(member)) {
			for _, neg := range clause.Negations() {
				if inClique[neg.Atom.Name.String()] {
					return neg, "negation"
				}
			}
			var found ast.Literal
			ast.WalkAggregators(clause, func(aggr *ast.Aggregator) bool {
				ast.WalkAtoms(aggr.Body, func(atom *ast.Atom) {
					if found == nil && inClique[atom.Name.String()] {
						found = atom
					}
				})
				return false
			})
			if found != nil {
				return found, "aggregation"
			}
		}
	}
	return nil, ""
}
