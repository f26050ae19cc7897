// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package semantic

import (
	"fmt"
	"strings"

	"github.com/stratlog/stratlog/ast"
)

// checkInlining validates the relations marked inline: no I/O relation may
// be inlined, the inline fragment of the precedence graph must be acyclic,
// counters cannot pass through inlined literals, a negated inline relation
// must not introduce body variables, inline relations stay out of
// aggregators, and negated inline atoms carry no underscores outside nested
// aggregators.
func (c *Checker) checkInlining() {
	p := c.tu.Program
	io := c.tu.IO()

	var inlined []*ast.Relation
	inlinedNames := map[string]bool{}
	for _, rel := range p.Relations {
		if !rel.IsInline() {
			continue
		}
		inlined = append(inlined, rel)
		inlinedNames[rel.Name.String()] = true
		if io.IsIO(rel.Name) {
			c.err(fmt.Sprintf("IO relation %v cannot be inlined", rel.Name), rel.Loc())
		}
	}

	if cycle := c.findInlineCycle(inlined, inlinedNames); len(cycle) > 0 {
		origin := p.Relation(ast.ParseQualifiedName(cycle[0]))
		var loc *ast.Location
		if origin != nil {
			loc = origin.Loc()
		}
		c.err(fmt.Sprintf("Cannot inline cyclically dependent relations {%s}", strings.Join(cycle, ", ")), loc)
	}

	// counters cannot flow through inlining, neither in uses nor in the
	// inlined definitions
	ast.WalkAtoms(p, func(atom *ast.Atom) {
		if !inlinedNames[atom.Name.String()] {
			return
		}
		ast.WalkArguments(atom, func(arg ast.Argument) {
			if _, ok := arg.(*ast.Counter); ok {
				c.err("Cannot inline literal containing a counter argument '$'", arg.Loc())
			}
		})
	})
	for _, rel := range inlined {
		for _, clause := range p.ClausesOf(rel.Name) {
			ast.WalkArguments(clause, func(arg ast.Argument) {
				if _, ok := arg.(*ast.Counter); ok {
					c.err("Cannot inline clause containing a counter argument '$'", arg.Loc())
				}
			})
		}
	}

	// inlining a negated relation duplicates its body; new body variables
	// would turn into ungrounded variables under negation
	nonNegatable := map[string]bool{}
	for _, rel := range inlined {
		for _, clause := range p.ClausesOf(rel.Name) {
			headVars := map[string]bool{}
			ast.WalkVariables(clause.Head, func(v *ast.Variable) {
				headVars[v.Name] = true
			})
			introduces := false
			ast.WalkVariables(clause.Body, func(v *ast.Variable) {
				if !headVars[v.Name] {
					introduces = true
				}
			})
			if introduces {
				nonNegatable[rel.Name.String()] = true
				break
			}
		}
	}
	walkNegations(p, func(neg *ast.Negation) {
		if nonNegatable[neg.Atom.Name.String()] {
			c.err("Cannot inline negated relation which may introduce new variables", neg.Loc())
		}
	})

	// aggregates over an inlined relation change meaning when the relation
	// splits into several rules
	for _, clause := range p.Clauses {
		ast.WalkAggregators(clause, func(aggr *ast.Aggregator) bool {
			ast.WalkAtoms(aggr.Body, func(atom *ast.Atom) {
				if inlinedNames[atom.Name.String()] {
					c.err("Cannot inline relations that appear in aggregator", atom.Loc())
				}
			})
			return false
		})
	}

	// underscores are named during inlining, which breaks their semantics
	// under negation; nested aggregators keep their own scope
	walkNegations(p, func(neg *ast.Negation) {
		if !inlinedNames[neg.Atom.Name.String()] {
			return
		}
		if hasUnnamedVariable(neg.Atom) {
			c.err("Cannot inline negated atom containing an unnamed variable unless the variable is within an aggregator", neg.Loc())
		}
	})
}

// findInlineCycle searches the subgraph induced by the inline relations for
// a cycle, returning it in dependency order, or nil.
func (c *Checker) findInlineCycle(inlined []*ast.Relation, inlinedNames map[string]bool) []string {
	graph := c.tu.Precedence()

	const (
		unvisited = iota
		visiting
		visited
	)
	state := map[string]int{}
	origin := map[string]string{}

	var visit func(name string) []string
	visit = func(name string) []string {
		state[name] = visiting
		for _, succ := range graph.Successors(name) {
			if !inlinedNames[succ] {
				continue
			}
			switch state[succ] {
			case visited:
				continue
			case visiting:
				// walk the origins back to reconstruct the cycle
				cycle := []string{name}
				for cur := name; cur != succ; {
					cur = origin[cur]
					cycle = append([]string{cur}, cycle...)
				}
				return cycle
			default:
				origin[succ] = name
				if cycle := visit(succ); cycle != nil {
					return cycle
				}
			}
		}
		state[name] = visited
		return nil
	}

	for _, rel := range inlined {
		name := rel.Name.String()
		if state[name] == unvisited {
			if cycle := visit(name); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}

func walkNegations(x interface{}, f func(*ast.Negation)) {
	ast.Walk(ast.NewGenericVisitor(func(y interface{}) bool {
		if neg, ok := y.(*ast.Negation); ok {
			f(neg)
		}
		return false
	}), x)
}
