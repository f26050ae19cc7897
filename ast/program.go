// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import "strings"

// Program is the mutable container for a whole translation unit: relation
// declarations, clauses, type declarations, I/O directives, and user
// functor declarations. The parser constructs it; transformation passes
// mutate it; the semantic checker reads it.
type Program struct {
	Relations  []*Relation
	Clauses    []*Clause
	Types      []TypeDecl
	Directives []*Directive
	Functors   []*FunctorDecl
}

// NewProgram returns an empty program.
func NewProgram() *Program {
	return &Program{}
}

// Relation returns the declaration for name, or nil.
func (p *Program) Relation(name QualifiedName) *Relation {
	for _, rel := range p.Relations {
		if rel.Name.Equal(name) {
			return rel
		}
	}
	return nil
}

// Type returns the type declaration for name, or nil.
func (p *Program) Type(name QualifiedName) TypeDecl {
	for _, t := range p.Types {
		if t.DeclName().Equal(name) {
			return t
		}
	}
	return nil
}

// Functor returns the functor declaration for name, or nil.
func (p *Program) Functor(name string) *FunctorDecl {
	for _, f := range p.Functors {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// ClausesOf returns the clauses whose head relation is name, in program
// order.
func (p *Program) ClausesOf(name QualifiedName) []*Clause {
	var out []*Clause
	for _, c := range p.Clauses {
		if c.Head != nil && c.Head.Name.Equal(name) {
			out = append(out, c)
		}
	}
	return out
}

// DirectivesOf returns the directives targeting name.
func (p *Program) DirectivesOf(name QualifiedName) []*Directive {
	var out []*Directive
	for _, d := range p.Directives {
		if d.Name.Equal(name) {
			out = append(out, d)
		}
	}
	return out
}

// AddRelation appends a relation declaration.
func (p *Program) AddRelation(rel *Relation) { p.Relations = append(p.Relations, rel) }

// AddClause appends a clause.
func (p *Program) AddClause(c *Clause) { p.Clauses = append(p.Clauses, c) }

// AddType appends a type declaration.
func (p *Program) AddType(t TypeDecl) { p.Types = append(p.Types, t) }

// AddDirective appends an I/O directive.
func (p *Program) AddDirective(d *Directive) { p.Directives = append(p.Directives, d) }

// AddFunctor appends a functor declaration.
func (p *Program) AddFunctor(f *FunctorDecl) { p.Functors = append(p.Functors, f) }

// RemoveClause removes the clause with the same identity, reporting whether
// it was present.
func (p *Program) RemoveClause(c *Clause) bool {
	for i, have := range p.Clauses {
		if have == c {
			p.Clauses = append(p.Clauses[:i], p.Clauses[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveDirective removes the directive with the same identity, reporting
// whether it was present.
func (p *Program) RemoveDirective(d *Directive) bool {
	for i, have := range p.Directives {
		if have == d {
			p.Directives = append(p.Directives[:i], p.Directives[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveRelation removes the declaration for name, reporting whether it was
// present. Clauses and directives of the relation are left untouched.
func (p *Program) RemoveRelation(name QualifiedName) bool {
	for i, rel := range p.Relations {
		if rel.Name.Equal(name) {
			p.Relations = append(p.Relations[:i], p.Relations[i+1:]...)
			return true
		}
	}
	return false
}

func (p *Program) String() string {
	var b strings.Builder
	for _, t := range p.Types {
		b.WriteString(t.String())
		b.WriteByte('\n')
	}
	for _, f := range p.Functors {
		b.WriteString(f.String())
		b.WriteByte('\n')
	}
	for _, rel := range p.Relations {
		b.WriteString(rel.String())
		b.WriteByte('\n')
	}
	for _, d := range p.Directives {
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	for _, c := range p.Clauses {
		b.WriteString(c.String())
		b.WriteByte('\n')
	}
	return b.String()
}
