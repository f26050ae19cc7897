// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package analysis

import (
	"github.com/stratlog/stratlog/ast"
	"github.com/stratlog/stratlog/types"
)

// TypeAnalysis infers a lattice type for every argument node of every
// clause. Each node starts at top and is met with the constraints imposed
// by its context (attribute types of atoms, functor signatures, casts,
// equalities, variable sharing) until a fixpoint is reached. A node whose
// type falls to a bottom has no valid type; the checker turns that into a
// diagnostic.
type TypeAnalysis struct {
	env      *types.Env
	argTypes map[ast.NodeID]types.Type
}

// NewTypeAnalysis builds the type environment for a program and runs
// inference over all clauses.
func NewTypeAnalysis(p *ast.Program) *TypeAnalysis {
	a := &TypeAnalysis{
		env:      BuildEnv(p),
		argTypes: map[ast.NodeID]types.Type{},
	}
	if !a.env.Valid() {
		return a
	}
	for _, c := range p.Clauses {
		a.inferClause(p, c)
	}
	return a
}

// BuildEnv populates a type environment from the program's declarations.
func BuildEnv(p *ast.Program) *types.Env {
	env := types.NewEnv()
	for _, decl := range p.Types {
		name := decl.DeclName().String()
		switch decl := decl.(type) {
		case *ast.PrimitiveDecl:
			kind := types.Symbol
			if decl.Kind == ast.Numeric {
				kind = types.Number
			}
			env.DeclareBase(name, kind)
		case *ast.UnionDecl:
			elements := make([]string, len(decl.Elements))
			for i, e := range decl.Elements {
				elements[i] = e.String()
			}
			env.DeclareUnion(name, elements)
		case *ast.RecordDecl:
			fields := make([]types.Field, len(decl.Fields))
			for i, f := range decl.Fields {
				fields[i] = types.Field{Name: f.Name, Type: f.Type.String()}
			}
			env.DeclareRecord(name, fields)
		}
	}
	return env
}

// Env returns the type environment.
func (a *TypeAnalysis) Env() *types.Env { return a.env }

// Valid reports whether the environment resolved; when false no inference
// results are available.
func (a *TypeAnalysis) Valid() bool { return a.env.Valid() }

// TypeOf returns the inferred type of an argument node, or top when the
// node is unknown.
func (a *TypeAnalysis) TypeOf(arg ast.Argument) types.Type {
	if t, ok := a.argTypes[arg.ID()]; ok {
		return t
	}
	return types.A
}

func (a *TypeAnalysis) inferClause(p *ast.Program, c *ast.Clause) {
	// variable occurrences share a type per name, clause-wide
	varNodes := map[string][]*ast.Variable{}
	ast.WalkArguments(c, func(arg ast.Argument) {
		a.argTypes[arg.ID()] = types.A
		if v, ok := arg.(*ast.Variable); ok {
			varNodes[v.Name] = append(varNodes[v.Name], v)
		}
	})

	for {
		changed := false

		constrain := func(arg ast.Argument, bound types.Type) {
			if bound == nil {
				return
			}
			old := a.argTypes[arg.ID()]
			met := a.env.Meet(old, bound)
			if !typesEqual(old, met) {
				a.argTypes[arg.ID()] = met
				changed = true
			}
		}

		// relation attribute types bound atom arguments, head included
		ast.WalkAtoms(c, func(atom *ast.Atom) {
			rel := p.Relation(atom.Name)
			if rel == nil || rel.Arity() != atom.Arity() {
				return
			}
			for i, arg := range atom.Args {
				constrain(arg, a.env.Lookup(rel.Attribute(i).Type.String()))
			}
		})

		ast.WalkArguments(c, func(arg ast.Argument) {
			switch arg := arg.(type) {
			case *ast.NumberConstant:
				constrain(arg, types.Constant{Kind: types.Number})
			case *ast.StringConstant:
				constrain(arg, types.Constant{Kind: types.Symbol})
			case *ast.Counter:
				constrain(arg, types.Constant{Kind: types.Number})
			case *ast.TypeCast:
				constrain(arg, a.env.Lookup(arg.Type.String()))
			case *ast.IntrinsicFunctor:
				if arg.Op.IsNumerical() {
					constrain(arg, types.N)
				} else {
					constrain(arg, types.S)
				}
			case *ast.UserDefinedFunctor:
				if decl := p.Functor(arg.Name); decl != nil {
					if decl.Result == ast.Numeric {
						constrain(arg, types.N)
					} else {
						constrain(arg, types.S)
					}
				}
			case *ast.RecordInit:
				constrain(arg, a.env.Lookup(arg.Type.String()))
			case *ast.Aggregator:
				constrain(arg, types.N)
			}
		})

		// equalities force both sides to their meet
		ast.WalkConstraints(c, func(bc *ast.BinaryConstraint) {
			if !bc.Op.IsEquality() {
				return
			}
			met := a.env.Meet(a.argTypes[bc.LHS.ID()], a.argTypes[bc.RHS.ID()])
			constrain(bc.LHS, met)
			constrain(bc.RHS, met)
		})

		// variable occurrences agree on the meet over all of them
		for _, nodes := range varNodes {
			met := types.Type(types.A)
			for _, v := range nodes {
				met = a.env.Meet(met, a.argTypes[v.ID()])
			}
			for _, v := range nodes {
				constrain(v, met)
			}
		}

		if !changed {
			return
		}
	}
}

func typesEqual(a, b types.Type) bool {
	switch a := a.(type) {
	case types.Any:
		_, ok := b.(types.Any)
		return ok
	case types.Bottom:
		_, ok := b.(types.Bottom)
		return ok
	case types.BottomPrim:
		b, ok := b.(types.BottomPrim)
		return ok && a.Kind == b.Kind
	case types.Primitive:
		b, ok := b.(types.Primitive)
		return ok && a.Kind == b.Kind
	case types.Constant:
		b, ok := b.(types.Constant)
		return ok && a.Kind == b.Kind
	case *types.Union:
		b, ok := b.(*types.Union)
		if !ok || a.Kind != b.Kind || len(a.Bases) != len(b.Bases) {
			return false
		}
		for base := range a.Bases {
			if !b.Bases[base] {
				return false
			}
		}
		return true
	case *types.RecordType:
		b, ok := b.(*types.RecordType)
		return ok && a.Name == b.Name
	}
	return false
}
