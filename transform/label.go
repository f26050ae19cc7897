// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package transform

import (
	"fmt"
	"strings"

	"github.com/stratlog/stratlog/analysis"
	"github.com/stratlog/stratlog/ast"
)

// LabelDatabase separates the positive and negative derivation paths of a
// stratified program. Negated uses (and aggregated uses) of a relation are
// redirected to a @neglabel copy defined by cloned rules, and each stratum
// of such copies gets private @poscopy_<k> duplicates of the positive
// strata it depends on, so that restricting the originals under the magic
// fragment cannot starve the negative path.
type LabelDatabase struct{}

// NewLabelDatabase returns the labelling pass.
func NewLabelDatabase() *LabelDatabase {
	return &LabelDatabase{}
}

// Name returns the pass name.
func (*LabelDatabase) Name() string { return "label-database" }

// Transform runs negative labelling, then positive labelling.
func (t *LabelDatabase) Transform(tu *analysis.TranslationUnit) bool {
	changed := t.negativeLabelling(tu)
	if changed {
		tu.InvalidateAnalyses()
	}
	if t.positiveLabelling(tu) {
		changed = true
	}
	return changed
}

func negativeLabel(name ast.QualifiedName) ast.QualifiedName {
	return name.Prepend("@neglabel")
}

func isNegativelyLabelled(name ast.QualifiedName) bool {
	return name.First() == "@neglabel"
}

func isPositiveCopy(name ast.QualifiedName) bool {
	return strings.HasPrefix(name.First(), "@poscopy_")
}

// negativeLabelling redirects negated atoms and aggregator-body atoms of
// non-input relations to @neglabel copies and clones the defining rules of
// every affected stratum under the @neglabel namespace.
func (t *LabelDatabase) negativeLabelling(tu *analysis.TranslationUnit) bool {
	p := tu.Program
	io := tu.IO()
	graph := tu.Precedence()

	toLabel := map[string]ast.QualifiedName{}
	mark := func(atom *ast.Atom) {
		if io.IsInput(atom.Name) || isNegativelyLabelled(atom.Name) {
			return
		}
		if _, ok := toLabel[atom.Name.String()]; !ok {
			toLabel[atom.Name.String()] = atom.Name
		}
		atom.Name = negativeLabel(atom.Name)
	}

	for _, clause := range p.Clauses {
		for _, neg := range clause.Negations() {
			mark(neg.Atom)
		}
		ast.WalkAggregators(clause, func(aggr *ast.Aggregator) bool {
			ast.WalkAtoms(aggr.Body, func(atom *ast.Atom) {
				mark(atom)
			})
			return false
		})
	}
	if len(toLabel) == 0 {
		return false
	}

	// clone the defining rules of every stratum holding a labelled
	// relation, redirecting same-stratum atoms into the @neglabel space;
	// references to earlier strata keep their names and are repaired by
	// positive labelling where needed
	labelledStrata := map[int]bool{}
	for name := range toLabel {
		if stratum := graph.SCCOf(name); stratum >= 0 {
			labelledStrata[stratum] = true
		}
	}

	cloned := map[string]bool{}
	for stratum, members := range graph.SCCs() {
		if !labelledStrata[stratum] {
			continue
		}
		inStratum := map[string]bool{}
		for _, member := range members {
			inStratum[member] = true
		}
		for _, member := range members {
			memberName := ast.ParseQualifiedName(member)
			for _, clause := range p.ClausesOf(memberName) {
				clone := clause.Clone()
				clone.Generated = true
				ast.RenameAtoms(clone, func(name ast.QualifiedName) ast.QualifiedName {
					if inStratum[name.String()] {
						cloned[name.String()] = true
						return negativeLabel(name)
					}
					return nil
				})
				p.AddClause(clone)
			}
			cloned[member] = true
		}
	}

	// declare the @neglabel relations
	declared := map[string]bool{}
	for name := range cloned {
		if declared[name] {
			continue
		}
		declared[name] = true
		rel := p.Relation(ast.ParseQualifiedName(name))
		if rel == nil {
			continue
		}
		labelled := rel.Clone()
		labelled.Name = negativeLabel(rel.Name)
		labelled.Qualifiers &^= ast.InputQualifier | ast.OutputQualifier | ast.PrintsizeQualifier
		p.AddRelation(labelled)
	}
	return true
}

// positiveLabelling duplicates, per labelled stratum, the positive strata
// it depends on under a fresh @poscopy_<k> prefix and redirects the
// labelled stratum's rules onto the duplicates.
func (t *LabelDatabase) positiveLabelling(tu *analysis.TranslationUnit) bool {
	p := tu.Program
	io := tu.IO()
	graph := tu.Precedence()
	sccs := graph.SCCs()

	// a stratum is labelled iff all of its members are; mixed strata break
	// the labelling invariant
	labelled := map[int]bool{}
	copyCount := map[int]int{}
	for stratum, members := range sccs {
		neglabelled := 0
		for _, member := range members {
			if isNegativelyLabelled(ast.ParseQualifiedName(member)) {
				neglabelled++
			}
		}
		switch neglabelled {
		case 0:
			copyCount[stratum] = 0
		case len(members):
			labelled[stratum] = true
		default:
			tu.Report.AddError(fmt.Sprintf("Stratum mixes negatively labelled and unlabelled relations {%v}", members), nil)
			copyCount[stratum] = 0
		}
	}
	if len(labelled) == 0 {
		return false
	}

	isPositive := func(name ast.QualifiedName) bool {
		if io.IsInput(name) || isNegativelyLabelled(name) || isPositiveCopy(name) {
			return false
		}
		return p.Relation(name) != nil
	}

	poscopy := func(name ast.QualifiedName) ast.QualifiedName {
		stratum := graph.SCCOf(name.String())
		return name.Prepend(fmt.Sprintf("@poscopy_%d", copyCount[stratum]+1))
	}

	changed := false
	for stratum := range sccs {
		if !labelled[stratum] {
			continue
		}
		members := sccs[stratum]

		// the unlabelled strata this labelled stratum depends on
		deps := map[int]bool{}
		for _, member := range members {
			for _, pred := range predecessorsTransitive(graph, member) {
				predStratum := graph.SCCOf(pred)
				if predStratum >= 0 && !labelled[predStratum] && isPositive(ast.ParseQualifiedName(pred)) {
					deps[predStratum] = true
				}
			}
		}
		if len(deps) == 0 {
			continue
		}

		// redirect the labelled stratum's rules onto the upcoming copies
		for _, member := range members {
			for _, clause := range p.ClausesOf(ast.ParseQualifiedName(member)) {
				ast.RenameAtoms(clause, func(name ast.QualifiedName) ast.QualifiedName {
					if isPositive(name) && deps[graph.SCCOf(name.String())] {
						return poscopy(name)
					}
					return nil
				})
			}
		}

		// clone the dependency strata, highest first so cross-references
		// between copies stay consistent with the counts used above
		for preStratum := stratum - 1; preStratum >= 0; preStratum-- {
			if !deps[preStratum] {
				continue
			}
			for _, member := range sccs[preStratum] {
				memberName := ast.ParseQualifiedName(member)
				if !isPositive(memberName) {
					continue
				}
				for _, clause := range p.ClausesOf(memberName) {
					clone := clause.Clone()
					clone.Generated = true
					ast.RenameAtoms(clone, func(name ast.QualifiedName) ast.QualifiedName {
						if isPositive(name) && deps[graph.SCCOf(name.String())] {
							return poscopy(name)
						}
						return nil
					})
					p.AddClause(clone)
				}
				rel := p.Relation(memberName)
				copied := rel.Clone()
				copied.Name = poscopy(memberName)
				copied.Qualifiers &^= ast.InputQualifier | ast.OutputQualifier | ast.PrintsizeQualifier
				p.AddRelation(copied)
				changed = true
			}
			copyCount[preStratum]++
		}
	}
	return changed
}

// predecessorsTransitive returns every relation reachable backwards from
// name in the precedence graph.
func predecessorsTransitive(graph *analysis.PrecedenceGraph, name string) []string {
	seen := map[string]bool{}
	var out []string
	var visit func(string)
	visit = func(cur string) {
		for _, pred := range graph.Predecessors(cur) {
			if !seen[pred] {
				seen[pred] = true
				out = append(out, pred)
				visit(pred)
			}
		}
	}
	visit(name)
	return out
}
