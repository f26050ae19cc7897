// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package transform

import (
	"github.com/stratlog/stratlog/analysis"
	"github.com/stratlog/stratlog/ast"
)

// MagicSet rewrites the adorned program into demand-driven form. Every
// adorned clause is refined with a magic guard atom carrying the bound head
// arguments, and every adorned body atom gets a supplementary rule deriving
// its magic relation from the demand context to its left. Clauses of
// unadorned relations pass through unchanged; their adorned body atoms
// still seed the demand, which is what drives the whole computation from
// the output queries.
type MagicSet struct{}

// NewMagicSet returns the magic-set rewrite pass.
func NewMagicSet() *MagicSet {
	return &MagicSet{}
}

// Name returns the pass name.
func (*MagicSet) Name() string { return "magic-set" }

func magicName(name ast.QualifiedName) ast.QualifiedName {
	return name.Prepend("@magic")
}

func isMagicName(name ast.QualifiedName) bool {
	return name.First() == "@magic"
}

// Transform rewrites every clause of the program.
func (t *MagicSet) Transform(tu *analysis.TranslationUnit) bool {
	p := tu.Program

	// a magic relation means the rewrite already ran
	for _, rel := range p.Relations {
		if isMagicName(rel.Name) {
			return false
		}
	}

	anyAdorned := false
	for _, clause := range p.Clauses {
		if clause.Head != nil && isAdornedName(clause.Head.Name) {
			anyAdorned = true
		}
		ast.WalkAtoms(clause.Body, func(atom *ast.Atom) {
			if isAdornedName(atom.Name) {
				anyAdorned = true
			}
		})
	}
	if !anyAdorned {
		return false
	}

	declared := map[string]bool{}

	// createMagicAtom projects the bound arguments of an adorned atom onto
	// its magic relation, declaring the relation on first use with the
	// matching attribute projection.
	createMagicAtom := func(atom *ast.Atom) *ast.Atom {
		marker := adornmentOf(atom.Name)
		name := magicName(atom.Name)
		magic := ast.NewAtom(name)
		for i, arg := range atom.Args {
			if i < len(marker) && marker[i] == 'b' {
				magic.Args = append(magic.Args, ast.CloneArgument(arg))
			}
		}
		if !declared[name.String()] {
			declared[name.String()] = true
			rel := ast.NewRelation(name)
			if original := p.Relation(atom.Name); original != nil {
				for i, attr := range original.Attributes {
					if i < len(marker) && marker[i] == 'b' {
						rel.Attributes = append(rel.Attributes, attr.Clone())
					}
				}
			}
			p.AddRelation(rel)
		}
		return magic
	}

	var toAdd, toRemove []*ast.Clause
	for _, clause := range p.Clauses {
		if clause.Head == nil {
			continue
		}
		toRemove = append(toRemove, clause)
		headAdorned := isAdornedName(clause.Head.Name)

		// (1) the refined clause: guard adorned heads with their magic atom
		if headAdorned {
			refined := ast.NewClause(clause.Head.Clone())
			refined.Generated = true
			refined.AddToBody(createMagicAtom(clause.Head))
			for _, lit := range clause.Body {
				refined.AddToBody(ast.CloneLiteral(lit))
			}
			toAdd = append(toAdd, refined)
		} else {
			toAdd = append(toAdd, clause.Clone())
		}

		// (2) one supplementary rule per adorned body atom
		eqConstraints := collectEqualityConstraints(clause)
		var atomsToTheLeft []*ast.Atom
		if headAdorned {
			atomsToTheLeft = append(atomsToTheLeft, createMagicAtom(clause.Head))
		}
		for _, lit := range clause.Body {
			atom, ok := lit.(*ast.Atom)
			if !ok {
				continue
			}
			if !isAdornedName(atom.Name) {
				atomsToTheLeft = append(atomsToTheLeft, atom.Clone())
				continue
			}
			toAdd = append(toAdd, createMagicClause(atom, atomsToTheLeft, eqConstraints, createMagicAtom))
			atomsToTheLeft = append(atomsToTheLeft, atom.Clone())
		}
	}

	for _, clause := range toRemove {
		p.RemoveClause(clause)
	}
	for _, clause := range toAdd {
		p.AddClause(clause)
	}
	return true
}

// collectEqualityConstraints gathers the top-level equalities eligible for
// inclusion in supplementary rules: variable bindings and constant
// bindings, with no aggregators inside.
func collectEqualityConstraints(clause *ast.Clause) []*ast.BinaryConstraint {
	var out []*ast.BinaryConstraint
	for _, lit := range clause.Body {
		bc, ok := lit.(*ast.BinaryConstraint)
		if !ok || !bc.Op.IsEquality() {
			continue
		}
		_, varLHS := bc.LHS.(*ast.Variable)
		constRHS := false
		switch bc.RHS.(type) {
		case *ast.NumberConstant, *ast.StringConstant:
			constRHS = true
		}
		if !varLHS && !constRHS {
			continue
		}
		hasAggregator := false
		ast.WalkAggregators(bc, func(*ast.Aggregator) bool {
			hasAggregator = true
			return true
		})
		if !hasAggregator {
			out = append(out, bc)
		}
	}
	return out
}

// createMagicClause builds the supplementary rule for one adorned body
// atom: its head is the atom's magic relation, its body the demand context
// so far plus every equality whose variables that context already covers.
// Record equalities propagate coverage: a record bound through a seen
// variable exposes every variable inside the record pattern, computed to a
// fixpoint before the equalities are filtered.
func createMagicClause(atom *ast.Atom, atomsToTheLeft []*ast.Atom, eqConstraints []*ast.BinaryConstraint, createMagicAtom func(*ast.Atom) *ast.Atom) *ast.Clause {
	head := createMagicAtom(atom)
	clause := ast.NewClause(head)
	clause.Generated = true
	for _, left := range atomsToTheLeft {
		clause.AddToBody(left.Clone())
	}

	seen := map[string]bool{}
	note := func(v *ast.Variable) { seen[v.Name] = true }
	for _, left := range atomsToTheLeft {
		ast.WalkVariables(left, note)
	}
	ast.WalkVariables(head, note)

	for {
		fixpoint := true
		for _, eq := range eqConstraints {
			expand := false
			if _, ok := eq.RHS.(*ast.RecordInit); ok {
				if v, isVar := eq.LHS.(*ast.Variable); isVar && seen[v.Name] {
					expand = true
				}
			}
			if _, ok := eq.LHS.(*ast.RecordInit); ok {
				if v, isVar := eq.RHS.(*ast.Variable); isVar && seen[v.Name] {
					expand = true
				}
			}
			if !expand {
				continue
			}
			ast.WalkVariables(eq, func(v *ast.Variable) {
				if !seen[v.Name] {
					seen[v.Name] = true
					fixpoint = false
				}
			})
		}
		if fixpoint {
			break
		}
	}

	for _, eq := range eqConstraints {
		covered := true
		ast.WalkVariables(eq, func(v *ast.Variable) {
			if !seen[v.Name] {
				covered = false
			}
		})
		if covered {
			clause.AddToBody(ast.CloneLiteral(eq))
		}
	}
	return clause
}
