// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package analysis

import (
	"sort"

	"github.com/stratlog/stratlog/ast"
	"github.com/stratlog/stratlog/util"
)

// PrecedenceGraph is the dependency graph over relations: an edge R -> S
// exists iff some clause of S mentions R in its body, including negated
// atoms and atoms inside aggregator bodies. Strongly connected components
// are numbered in topological order, dependencies first, and double as the
// strata of the program.
type PrecedenceGraph struct {
	names []string
	succ  map[string]map[string]bool
	pred  map[string]map[string]bool
	sccOf map[string]int
	sccs  [][]string
}

// NewPrecedenceGraph builds the graph for a program. Atoms over undeclared
// relations contribute no vertices or edges; the checker reports them
// separately.
func NewPrecedenceGraph(p *ast.Program) *PrecedenceGraph {
	g := &PrecedenceGraph{
		succ:  map[string]map[string]bool{},
		pred:  map[string]map[string]bool{},
		sccOf: map[string]int{},
	}
	declared := map[string]bool{}
	for _, rel := range p.Relations {
		name := rel.Name.String()
		declared[name] = true
		g.names = append(g.names, name)
		g.succ[name] = map[string]bool{}
		g.pred[name] = map[string]bool{}
	}
	for _, c := range p.Clauses {
		if c.Head == nil {
			continue
		}
		head := c.Head.Name.String()
		if !declared[head] {
			continue
		}
		ast.WalkAtoms(c.Body, func(atom *ast.Atom) {
			body := atom.Name.String()
			if !declared[body] {
				return
			}
			g.succ[body][head] = true
			g.pred[head][body] = true
		})
	}
	g.computeSCCs()
	return g
}

// Successors returns the relations that directly depend on name, sorted.
func (g *PrecedenceGraph) Successors(name string) []string {
	return sortedKeys(g.succ[name])
}

// Predecessors returns the relations name directly depends on, sorted.
func (g *PrecedenceGraph) Predecessors(name string) []string {
	return sortedKeys(g.pred[name])
}

// Reaches reports whether there is a non-empty path from a to b.
func (g *PrecedenceGraph) Reaches(a, b string) bool {
	t := &precedenceTraversal{graph: g, visited: map[string]bool{}}
	return len(util.DFS(t, a, b)) > 0
}

// Clique returns the strongly connected component containing name, sorted.
func (g *PrecedenceGraph) Clique(name string) []string {
	idx, ok := g.sccOf[name]
	if !ok {
		return nil
	}
	clique := append([]string(nil), g.sccs[idx]...)
	sort.Strings(clique)
	return clique
}

// SCCOf returns the stratum index of name, or -1 if unknown.
func (g *PrecedenceGraph) SCCOf(name string) int {
	idx, ok := g.sccOf[name]
	if !ok {
		return -1
	}
	return idx
}

// SCCs returns the strata in topological order, dependencies first.
func (g *PrecedenceGraph) SCCs() [][]string {
	return g.sccs
}

// SameSCC reports whether two relations are mutually recursive.
func (g *PrecedenceGraph) SameSCC(a, b string) bool {
	ia, aok := g.sccOf[a]
	ib, bok := g.sccOf[b]
	return aok && bok && ia == ib
}

// computeSCCs runs Tarjan's algorithm. Tarjan emits components in reverse
// topological order of the condensation, so the emitted list is reversed to
// obtain the stratum order.
func (g *PrecedenceGraph) computeSCCs() {
	index := map[string]int{}
	lowlink := map[string]int{}
	onStack := map[string]bool{}
	var stack []string
	next := 0
	var emitted [][]string

	var strongconnect func(v string)
	strongconnect = func(v string) {
		index[v] = next
		lowlink[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.Successors(v) {
			if _, seen := index[w]; !seen {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] && index[w] < lowlink[v] {
				lowlink[v] = index[w]
			}
		}

		if lowlink[v] == index[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			emitted = append(emitted, scc)
		}
	}

	for _, v := range g.names {
		if _, seen := index[v]; !seen {
			strongconnect(v)
		}
	}

	g.sccs = make([][]string, len(emitted))
	for i, scc := range emitted {
		g.sccs[len(emitted)-1-i] = scc
	}
	for i, scc := range g.sccs {
		for _, v := range scc {
			g.sccOf[v] = i
		}
	}
}

type precedenceTraversal struct {
	graph   *PrecedenceGraph
	visited map[string]bool
}

func (t *precedenceTraversal) Edges(u util.T) []util.T {
	var edges []util.T
	for _, v := range t.graph.Successors(u.(string)) {
		edges = append(edges, v)
	}
	return edges
}

func (t *precedenceTraversal) Visited(u util.T) bool {
	name := u.(string)
	visited := t.visited[name]
	t.visited[name] = true
	return visited
}

func (t *precedenceTraversal) Equals(a, b util.T) bool {
	return a.(string) == b.(string)
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
