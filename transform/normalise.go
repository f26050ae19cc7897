// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package transform

import (
	"fmt"

	"github.com/stratlog/stratlog/analysis"
	"github.com/stratlog/stratlog/ast"
)

// NormaliseDatabase prepares a program for adornment with four idempotent
// sub-passes: input relations that are also outputs are split, input
// relations with rules lose their rules to an intermediate, constants move
// into equality constraints so atoms carry only variables, and output
// relations that feed other rules are querified behind an intermediate.
type NormaliseDatabase struct{}

// NewNormaliseDatabase returns the normalisation pass.
func NewNormaliseDatabase() *NormaliseDatabase {
	return &NormaliseDatabase{}
}

// Name returns the pass name.
func (*NormaliseDatabase) Name() string { return "normalise-database" }

// Transform runs the four sub-passes in order, invalidating analyses
// between them.
func (t *NormaliseDatabase) Transform(tu *analysis.TranslationUnit) bool {
	changed := false
	for _, sub := range []func(*analysis.TranslationUnit) bool{
		partitionIO, extractIDB, nameConstants, querifyOutputRelations,
	} {
		if sub(tu) {
			tu.InvalidateAnalyses()
			changed = true
		}
	}
	return changed
}

// copyRule builds head(x0...xn) :- body(x0...xn) over fresh variables.
func copyRule(head, body ast.QualifiedName, arity int, varPrefix string) *ast.Clause {
	headAtom := ast.NewAtom(head)
	bodyAtom := ast.NewAtom(body)
	for i := 0; i < arity; i++ {
		name := fmt.Sprintf("%s%d", varPrefix, i)
		headAtom.Args = append(headAtom.Args, ast.NewVariable(name))
		bodyAtom.Args = append(bodyAtom.Args, ast.NewVariable(name))
	}
	clause := ast.NewClause(headAtom, bodyAtom)
	clause.Generated = true
	return clause
}

// partitionIO splits relations that are both inputs and outputs: the input
// side moves to a fresh @split_in relation feeding the original through a
// copy rule.
func partitionIO(tu *analysis.TranslationUnit) bool {
	p := tu.Program
	io := tu.IO()

	var toSplit []*ast.Relation
	for _, rel := range p.Relations {
		if io.IsInput(rel.Name) && (io.IsOutput(rel.Name) || io.IsPrintsize(rel.Name)) {
			toSplit = append(toSplit, rel)
		}
	}

	for _, rel := range toSplit {
		newName := rel.Name.Prepend("@split_in")

		split := rel.Clone()
		split.Name = newName
		split.Qualifiers = ast.InputQualifier

		// re-route the input directives to the split relation, defaulting
		// the source to "<original>.facts"
		var reroute []*ast.Directive
		for _, d := range p.DirectivesOf(rel.Name) {
			if d.Kind == ast.InputDirective {
				reroute = append(reroute, d)
			}
		}
		for _, d := range reroute {
			p.RemoveDirective(d)
			moved := d.Clone()
			moved.Name = newName
			if _, ok := moved.Param("IO"); !ok {
				moved.SetParam("IO", "file")
			}
			if _, ok := moved.Param("filename"); !ok {
				moved.SetParam("filename", rel.Name.String()+".facts")
			}
			p.AddDirective(moved)
		}
		rel.ClearQualifier(ast.InputQualifier)

		p.AddRelation(split)
		p.AddClause(copyRule(rel.Name, newName, rel.Arity(), "@var"))
	}

	return len(toSplit) > 0
}

// extractIDB moves the rules of input relations onto a fresh @interm_in
// relation, leaving the original as a pure fact source.
func extractIDB(tu *analysis.TranslationUnit) bool {
	p := tu.Program
	io := tu.IO()

	hasRules := func(rel *ast.Relation) bool {
		for _, clause := range p.ClausesOf(rel.Name) {
			if len(clause.Atoms()) > 0 || !clause.IsFact() {
				return true
			}
		}
		return false
	}

	renamed := map[string]ast.QualifiedName{}
	var extracted []*ast.Relation
	for _, rel := range p.Relations {
		if io.IsInput(rel.Name) && hasRules(rel) {
			newName := rel.Name.Prepend("@interm_in")
			intermediate := rel.Clone()
			intermediate.Name = newName
			intermediate.Qualifiers &^= ast.InputQualifier
			p.AddRelation(intermediate)
			renamed[rel.Name.String()] = newName
			extracted = append(extracted, rel)
		}
	}
	if len(extracted) == 0 {
		return false
	}

	ast.RenameAtoms(p, func(name ast.QualifiedName) ast.QualifiedName {
		return renamed[name.String()]
	})

	for _, rel := range extracted {
		p.AddClause(copyRule(renamed[rel.Name.String()], rel.Name, rel.Arity(), "@query_x"))
	}
	return true
}

// nameConstants replaces every non-variable argument of an atom, and every
// non-variable operand of a constraint that is not already a variable
// binding, with a fresh variable bound by an appended equality constraint.
// Unnamed variables are named but left unconstrained.
func nameConstants(tu *analysis.TranslationUnit) bool {
	changed := false
	for _, clause := range tu.Program.Clauses {
		count := 0
		var constraints []ast.Literal

		normalise := func(x interface{}) {
			ast.RewriteArguments(x, func(arg ast.Argument) ast.Argument {
				switch arg.(type) {
				case *ast.Variable:
					return arg
				default:
					fresh := ast.NewVariable(fmt.Sprintf("@abdul%d", count))
					fresh.SetLoc(arg.Loc())
					count++
					if _, unnamed := arg.(*ast.UnnamedVariable); !unnamed {
						eq := ast.NewBinaryConstraint(ast.ConstraintEQ, ast.NewVariable(fresh.Name), arg)
						constraints = append(constraints, eq)
					}
					return fresh
				}
			})
		}

		normalise(clause.Head)
		for _, lit := range clause.Body {
			// an equality that already binds a variable is the normal form
			if bc, ok := lit.(*ast.BinaryConstraint); ok {
				if bc.Op.IsEquality() {
					if _, ok := bc.LHS.(*ast.Variable); ok {
						continue
					}
				}
			}
			if atom, ok := lit.(*ast.Atom); ok {
				normalise(atom)
				continue
			}
			if neg, ok := lit.(*ast.Negation); ok {
				normalise(neg.Atom)
				continue
			}
			normalise(lit)
		}
		clause.Body = append(clause.Body, constraints...)

		// literals nested in aggregator bodies normalise like any others,
		// including atoms under negation and non-binding constraints; their
		// binding constraints join the outer body, and may themselves carry
		// aggregators, so iterate until nothing new appears
		for {
			constraints = nil
			ast.WalkAggregators(clause, func(aggr *ast.Aggregator) bool {
				for _, lit := range aggr.Body {
					switch lit := lit.(type) {
					case *ast.Atom:
						normalise(lit)
					case *ast.Negation:
						normalise(lit.Atom)
					case *ast.BinaryConstraint:
						if lit.Op.IsEquality() {
							if _, ok := lit.LHS.(*ast.Variable); ok {
								continue
							}
						}
						normalise(lit)
					}
				}
				return false
			})
			if len(constraints) == 0 {
				break
			}
			clause.Body = append(clause.Body, constraints...)
		}

		if count > 0 {
			changed = true
		}
	}
	return changed
}

// querifyOutputRelations hides output relations that also feed other rules
// behind a fresh @interm_out relation; the original becomes strictly
// output.
func querifyOutputRelations(tu *analysis.TranslationUnit) bool {
	p := tu.Program
	io := tu.IO()

	// strictly output: at most one defining rule and never used in a body
	isStrictlyOutput := func(rel *ast.Relation) bool {
		bodyUses := 0
		for _, clause := range p.Clauses {
			ast.WalkAtoms(clause.Body, func(atom *ast.Atom) {
				if atom.Name.Equal(rel.Name) {
					bodyUses++
				}
			})
		}
		return bodyUses == 0 && len(p.ClausesOf(rel.Name)) <= 1
	}

	renamed := map[string]ast.QualifiedName{}
	var querified []*ast.Relation
	for _, rel := range p.Relations {
		if (io.IsOutput(rel.Name) || io.IsPrintsize(rel.Name)) && !isStrictlyOutput(rel) {
			newName := rel.Name.Prepend("@interm_out")
			intermediate := rel.Clone()
			intermediate.Name = newName
			intermediate.Qualifiers &^= ast.OutputQualifier | ast.PrintsizeQualifier
			p.AddRelation(intermediate)
			renamed[rel.Name.String()] = newName
			querified = append(querified, rel)
		}
	}
	if len(querified) == 0 {
		return false
	}

	ast.RenameAtoms(p, func(name ast.QualifiedName) ast.QualifiedName {
		return renamed[name.String()]
	})

	for _, rel := range querified {
		p.AddClause(copyRule(rel.Name, renamed[rel.Name.String()], rel.Arity(), "@query_x"))
	}
	return true
}
