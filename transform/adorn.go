// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package transform

import (
	"strings"

	"github.com/stratlog/stratlog/analysis"
	"github.com/stratlog/stratlog/ast"
	"github.com/stratlog/stratlog/config"
)

// adornedName appends the "{bf...}" component encoding which argument
// positions are bound on entry. The empty marker is the unadorned name.
func adornedName(name ast.QualifiedName, marker string) ast.QualifiedName {
	if marker == "" {
		return name
	}
	return name.Append("{" + marker + "}")
}

// isAdornedName reports whether the name carries an adornment component.
func isAdornedName(name ast.QualifiedName) bool {
	last := name.Last()
	if len(last) < 2 || last[0] != '{' || last[len(last)-1] != '}' {
		return false
	}
	for _, ch := range last[1 : len(last)-1] {
		if ch != 'b' && ch != 'f' {
			return false
		}
	}
	return true
}

// adornmentOf extracts the bound/free marker of an adorned name.
func adornmentOf(name ast.QualifiedName) string {
	last := name.Last()
	return strings.Trim(last, "{}")
}

// AdornDatabase specialises every relation in the query-driven fragment by
// the bound/free pattern of its uses: a work-list seeded with the output
// relations walks each demanded (relation, adornment) pair, adorning clause
// bodies under the configured SIPS and demanding new pairs as body atoms
// are placed.
type AdornDatabase struct {
	cfg  *config.Config
	sips SIPS
}

// NewAdornDatabase returns the adornment pass. A nil strategy defaults to
// max-bound.
func NewAdornDatabase(cfg *config.Config, sips SIPS) *AdornDatabase {
	if cfg == nil {
		cfg = config.New()
	}
	if sips == nil {
		sips = MaxBound{}
	}
	return &AdornDatabase{cfg: cfg, sips: sips}
}

// Name returns the pass name.
func (*AdornDatabase) Name() string { return "adorn-database" }

// ignoredRelations collects the relations excluded from the query-driven
// fragment: everything outside the magic-transform list, inputs, pure EDB
// relations, anything already negatively labelled, relations reached
// through negation, relations inside aggregator bodies that introduce new
// variables, relations using order-dependent arithmetic, eqrel relations,
// and relations with planned clauses.
func (t *AdornDatabase) ignoredRelations(tu *analysis.TranslationUnit) map[string]bool {
	p := tu.Program
	io := tu.IO()
	ignore := map[string]bool{}

	for _, rel := range p.Relations {
		name := rel.Name.String()
		if !t.cfg.Matches("magic-transform", name) {
			ignore[name] = true
		}
		if io.IsInput(rel.Name) {
			ignore[name] = true
		}
		if rel.Representation == ast.RepEqrel {
			ignore[name] = true
		}
		hasRules := false
		for _, clause := range p.ClausesOf(rel.Name) {
			if len(clause.Atoms()) > 0 {
				hasRules = true
			}
		}
		if !hasRules {
			ignore[name] = true
		}
	}

	ast.WalkAtoms(p, func(atom *ast.Atom) {
		if atom.Name.First() == "@neglabel" {
			ignore[atom.Name.String()] = true
		}
	})

	for _, clause := range p.Clauses {
		if clause.Head == nil {
			continue
		}
		head := clause.Head.Name.String()

		if clause.Plan != nil {
			ignore[head] = true
		}

		ast.WalkArguments(clause, func(arg ast.Argument) {
			if fn, ok := arg.(*ast.IntrinsicFunctor); ok && fn.Op.OrderDependent() {
				ignore[head] = true
			}
		})

		// demand never propagates through negation
		for _, neg := range clause.Negations() {
			ignore[neg.Atom.Name.String()] = true
		}

		// an aggregator body that introduces its own variables is a scope
		// of its own; restricting its relations would change the aggregate
		outerVars := map[string]bool{}
		ast.WalkVariables(clause.Head, func(v *ast.Variable) { outerVars[v.Name] = true })
		for _, lit := range clause.Body {
			if _, ok := lit.(*ast.Atom); ok {
				ast.WalkVariables(lit, func(v *ast.Variable) { outerVars[v.Name] = true })
			}
		}
		ast.WalkAggregators(clause, func(aggr *ast.Aggregator) bool {
			introduces := false
			ast.WalkVariables(aggr.Body, func(v *ast.Variable) {
				if !outerVars[v.Name] {
					introduces = true
				}
			})
			if introduces {
				ast.WalkAtoms(aggr.Body, func(atom *ast.Atom) {
					ignore[atom.Name.String()] = true
				})
			}
			return false
		})
	}

	return ignore
}

type adornedPredicate struct {
	name   ast.QualifiedName
	marker string
}

// Transform runs the adornment work-list.
func (t *AdornDatabase) Transform(tu *analysis.TranslationUnit) bool {
	p := tu.Program
	io := tu.IO()

	// the pass runs once per pipeline; an adorned relation means the work
	// is already done
	for _, rel := range p.Relations {
		if isAdornedName(rel.Name) {
			return false
		}
	}

	ignored := t.ignoredRelations(tu)

	var worklist []adornedPredicate
	seen := map[string]bool{}
	demand := func(name ast.QualifiedName, marker string) {
		id := adornedName(name, marker).String()
		if !seen[id] {
			seen[id] = true
			worklist = append(worklist, adornedPredicate{name, marker})
		}
	}

	// outputs drive the computation; ignored relations still get their
	// bodies adorned so demand propagates through them
	for _, rel := range p.Relations {
		if io.IsOutput(rel.Name) || io.IsPrintsize(rel.Name) {
			demand(rel.Name, "")
		} else if ignored[rel.Name.String()] {
			demand(rel.Name, "")
		}
	}

	var adornedClauses []*ast.Clause
	var redundant []*ast.Clause
	adornedBodyAtoms := 0

	for len(worklist) > 0 {
		pred := worklist[0]
		worklist = worklist[1:]
		rel := p.Relation(pred.name)
		if rel == nil {
			continue
		}

		if pred.marker != "" {
			adorned := rel.Clone()
			adorned.Name = adornedName(pred.name, pred.marker)
			adorned.Qualifiers &^= ast.InputQualifier | ast.OutputQualifier | ast.PrintsizeQualifier
			p.AddRelation(adorned)
		}

		for _, clause := range p.ClausesOf(pred.name) {
			adornedClause, atomCount := t.adornClause(clause, pred, ignored, demand)
			if pred.marker == "" {
				redundant = append(redundant, clause)
			}
			adornedBodyAtoms += atomCount
			adornedClauses = append(adornedClauses, adornedClause)
		}
	}

	if adornedBodyAtoms == 0 {
		// nothing demanded a binding pattern; leave the program untouched
		return false
	}

	for _, clause := range redundant {
		p.RemoveClause(clause)
	}
	for _, clause := range adornedClauses {
		p.AddClause(clause)
	}
	return true
}

// adornClause rewrites one clause for a head adornment, returning the new
// clause and the number of body atoms that received a non-empty marker.
func (t *AdornDatabase) adornClause(clause *ast.Clause, pred adornedPredicate, ignored map[string]bool, demand func(ast.QualifiedName, string)) (*ast.Clause, int) {
	store := NewBindingStore(clause)

	head := clause.Head.Clone()
	head.Name = adornedName(pred.name, pred.marker)
	for i, ch := range pred.marker {
		if ch != 'b' || i >= len(clause.Head.Args) {
			continue
		}
		if v, ok := clause.Head.Args[i].(*ast.Variable); ok {
			store.BindHeadVariable(v.Name)
		}
	}

	// equalities against constants bind ahead of any atom placement
	ast.WalkConstraints(clause, func(bc *ast.BinaryConstraint) {
		if !bc.Op.IsEquality() {
			return
		}
		if v, ok := bc.LHS.(*ast.Variable); ok {
			switch bc.RHS.(type) {
			case *ast.NumberConstant, *ast.StringConstant:
				store.BindVariable(v.Name)
			}
		}
	})

	atoms := clause.Atoms()
	placed := make([]bool, len(atoms))
	// adorned atoms indexed by their original body position; markers follow
	// the placement order chosen by the SIPS
	adornedAtoms := make([]*ast.Atom, len(atoms))
	isEDB := func(name ast.QualifiedName) bool { return ignored[name.String()] }
	adornedCount := 0

	for range atoms {
		next := t.sips.NextAtom(atoms, placed, store, isEDB)
		if next < 0 {
			break
		}
		placed[next] = true
		atom := atoms[next]

		marker := ""
		if !ignored[atom.Name.String()] {
			var b strings.Builder
			for _, arg := range atom.Args {
				if v, ok := arg.(*ast.Variable); ok && store.IsBound(v.Name) {
					b.WriteByte('b')
				} else {
					b.WriteByte('f')
				}
			}
			marker = b.String()
		}

		adornedAtom := atom.Clone()
		adornedAtom.Name = adornedName(atom.Name, marker)
		adornedAtoms[next] = adornedAtom
		if marker != "" {
			adornedCount++
			demand(atom.Name, marker)
		}

		for _, arg := range atom.Args {
			if v, ok := arg.(*ast.Variable); ok {
				store.BindVariable(v.Name)
			}
		}
	}

	// rebuild the body in source order; every atom slot gets its own
	// adorned copy back
	var body []ast.Literal
	atomIdx := 0
	for _, lit := range clause.Body {
		if _, ok := lit.(*ast.Atom); ok {
			adornedAtom := adornedAtoms[atomIdx]
			atomIdx++
			if adornedAtom != nil {
				body = append(body, adornedAtom)
				continue
			}
		}
		body = append(body, ast.CloneLiteral(lit))
	}

	adornedClause := ast.NewClause(head, body...)
	adornedClause.Generated = true
	adornedClause.SetLoc(clause.Loc())
	if clause.Plan != nil && pred.marker == "" {
		adornedClause.Plan = clause.Plan.Clone()
	}
	return adornedClause, adornedCount
}
