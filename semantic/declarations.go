// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package semantic

import (
	"fmt"

	"github.com/stratlog/stratlog/ast"
	"github.com/stratlog/stratlog/types"
)

func isPrimitiveName(name ast.QualifiedName) bool {
	s := name.String()
	return s == "number" || s == "symbol"
}

// checkTypeDeclarations validates union and record declarations: all
// referenced types exist, union elements stay primitive, a union never
// mixes the two scalar kinds, and record field names are unique.
func (c *Checker) checkTypeDeclarations() {
	p := c.tu.Program
	for _, decl := range p.Types {
		switch decl := decl.(type) {
		case *ast.UnionDecl:
			c.checkUnionDecl(decl)
		case *ast.RecordDecl:
			c.checkRecordDecl(decl)
		}
	}
}

func (c *Checker) checkUnionDecl(decl *ast.UnionDecl) {
	p := c.tu.Program
	for _, elem := range decl.Elements {
		if isPrimitiveName(elem) {
			continue
		}
		sub := p.Type(elem)
		if sub == nil {
			c.err(fmt.Sprintf("Undefined type %v in definition of union type %v", elem, decl.Name), decl.Loc())
			continue
		}
		switch sub.(type) {
		case *ast.UnionDecl, *ast.PrimitiveDecl:
		default:
			c.err(fmt.Sprintf("Union type %v contains the non-primitive type %v", decl.Name, elem), decl.Loc())
		}
	}
	if c.unionContains(decl, ast.Symbolic, map[string]bool{}) &&
		c.unionContains(decl, ast.Numeric, map[string]bool{}) {
		c.err(fmt.Sprintf("Union type %v contains a mixture of symbol and number types", decl.Name), decl.Loc())
	}
}

// unionContains reports whether the union's transitive elements reach a
// primitive of the given kind.
func (c *Checker) unionContains(decl *ast.UnionDecl, kind ast.PrimitiveKind, seen map[string]bool) bool {
	if seen[decl.Name.String()] {
		return false
	}
	seen[decl.Name.String()] = true
	for _, elem := range decl.Elements {
		if elem.String() == kind.String() {
			return true
		}
		switch sub := c.tu.Program.Type(elem).(type) {
		case *ast.PrimitiveDecl:
			if sub.Kind == kind {
				return true
			}
		case *ast.UnionDecl:
			if c.unionContains(sub, kind, seen) {
				return true
			}
		}
	}
	return false
}

func (c *Checker) checkRecordDecl(decl *ast.RecordDecl) {
	p := c.tu.Program
	for _, field := range decl.Fields {
		if !isPrimitiveName(field.Type) && p.Type(field.Type) == nil {
			c.err(fmt.Sprintf("Undefined type %v in definition of field %s", field.Type, field.Name), decl.Loc())
		}
	}
	for i, field := range decl.Fields {
		for j := 0; j < i; j++ {
			if decl.Fields[j].Name == field.Name {
				c.err(fmt.Sprintf("Doubly defined field name %s in definition of type %v", field.Name, decl.Name), decl.Loc())
			}
		}
	}
}

// checkRelationDeclarations validates attribute types and names, the eqrel
// shape constraints, record-typed I/O attributes, and warns about relations
// with no rules, facts, or input source.
func (c *Checker) checkRelationDeclarations() {
	p := c.tu.Program
	io := c.tu.IO()
	env := c.tu.Types().Env()

	for _, rel := range p.Relations {
		if rel.Representation == ast.RepEqrel {
			if rel.Arity() != 2 {
				c.err(fmt.Sprintf("Equivalence relation %v is not binary", rel.Name), rel.Loc())
			} else if !rel.Attribute(0).Type.Equal(rel.Attribute(1).Type) {
				c.err(fmt.Sprintf("Domains of equivalence relation %v are different", rel.Name), rel.Loc())
			}
		}

		for i, attr := range rel.Attributes {
			if !isPrimitiveName(attr.Type) && p.Type(attr.Type) == nil {
				c.err(fmt.Sprintf("Undefined type in attribute %s:%v", attr.Name, attr.Type), attr.Loc())
			}
			for j := 0; j < i; j++ {
				if rel.Attributes[j].Name == attr.Name {
					c.err(fmt.Sprintf("Doubly defined attribute name %s:%v", attr.Name, attr.Type), attr.Loc())
				}
			}
			if _, isRecord := env.Lookup(attr.Type.String()).(*types.RecordType); isRecord {
				// records cannot be evaluated by the subprogram engine;
				// surface the capability loss instead of mutating global
				// configuration here
				c.DisableSubprogramCompilation = true
				if io.IsInput(rel.Name) {
					c.err(fmt.Sprintf("Input relations must not have record types. Attribute %s has record type %v", attr.Name, attr.Type), attr.Loc())
				}
				if io.IsOutput(rel.Name) {
					c.warn(fmt.Sprintf("Record types in output relations are not printed verbatim: attribute %s has record type %v", attr.Name, attr.Type), attr.Loc())
				}
			}
		}

		if len(p.ClausesOf(rel.Name)) == 0 && !io.IsInput(rel.Name) && !rel.IsSuppressed() {
			c.warn(fmt.Sprintf("No rules/facts defined for relation %v", rel.Name), rel.Loc())
		}
	}
}

// checkNamespaces ensures type and relation names are disjoint and not
// declared twice.
func (c *Checker) checkNamespaces() {
	names := map[string]bool{}
	for _, decl := range c.tu.Program.Types {
		name := decl.DeclName().String()
		if names[name] {
			c.err("Name clash on type "+name, decl.Loc())
		} else {
			names[name] = true
		}
	}
	for _, rel := range c.tu.Program.Relations {
		name := rel.Name.String()
		if names[name] {
			c.err("Name clash on relation "+name, rel.Loc())
		} else {
			names[name] = true
		}
	}
}

// checkIODirectives ensures every directive targets a declared relation.
func (c *Checker) checkIODirectives() {
	for _, d := range c.tu.Program.Directives {
		if c.tu.Program.Relation(d.Name) == nil {
			c.err(fmt.Sprintf("Undefined relation %v", d.Name), d.Loc())
		}
	}
}
