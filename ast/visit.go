// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

// Visitor defines the interface for iterating AST elements. The Visit
// function can return a Visitor w which will be used to visit the children
// of the element x. If the Visit function returns nil, the children will
// not be visited.
type Visitor interface {
	Visit(x interface{}) (w Visitor)
}

// Walk iterates the AST by calling the Visit function on the Visitor v for
// x before recursing.
func Walk(v Visitor, x interface{}) {
	w := v.Visit(x)
	if w == nil {
		return
	}
	switch x := x.(type) {
	case *Program:
		for _, rel := range x.Relations {
			Walk(w, rel)
		}
		for _, c := range x.Clauses {
			Walk(w, c)
		}
		for _, t := range x.Types {
			Walk(w, t)
		}
		for _, d := range x.Directives {
			Walk(w, d)
		}
		for _, f := range x.Functors {
			Walk(w, f)
		}
	case *Relation:
		for _, attr := range x.Attributes {
			Walk(w, attr)
		}
	case *RecordDecl:
		for _, f := range x.Fields {
			Walk(w, f)
		}
	case *Clause:
		if x.Head != nil {
			Walk(w, x.Head)
		}
		for _, lit := range x.Body {
			Walk(w, lit)
		}
	case []Literal:
		for _, lit := range x {
			Walk(w, lit)
		}
	case *Atom:
		for _, arg := range x.Args {
			Walk(w, arg)
		}
	case *Negation:
		Walk(w, x.Atom)
	case *BinaryConstraint:
		Walk(w, x.LHS)
		Walk(w, x.RHS)
	case *TypeCast:
		Walk(w, x.Value)
	case *IntrinsicFunctor:
		for _, arg := range x.Args {
			Walk(w, arg)
		}
	case *UserDefinedFunctor:
		for _, arg := range x.Args {
			Walk(w, arg)
		}
	case *RecordInit:
		for _, arg := range x.Args {
			Walk(w, arg)
		}
	case *Aggregator:
		if x.Target != nil {
			Walk(w, x.Target)
		}
		for _, lit := range x.Body {
			Walk(w, lit)
		}
	}
}

// GenericVisitor implements the Visitor interface to provide a utility to
// walk over AST nodes using a closure. If the closure returns true, the
// visitor will not walk over AST nodes under x.
type GenericVisitor struct {
	f func(x interface{}) bool
}

// NewGenericVisitor returns a visitor backed by f.
func NewGenericVisitor(f func(x interface{}) bool) *GenericVisitor {
	return &GenericVisitor{f}
}

// Visit calls the function f on the GenericVisitor.
func (vis *GenericVisitor) Visit(x interface{}) Visitor {
	if vis.f(x) {
		return nil
	}
	return vis
}

// WalkVariables calls f on all named variables under x.
func WalkVariables(x interface{}, f func(*Variable)) {
	Walk(NewGenericVisitor(func(y interface{}) bool {
		if v, ok := y.(*Variable); ok {
			f(v)
		}
		return false
	}), x)
}

// WalkAtoms calls f on all atoms under x, including atoms inside negations
// and aggregator bodies.
func WalkAtoms(x interface{}, f func(*Atom)) {
	Walk(NewGenericVisitor(func(y interface{}) bool {
		if a, ok := y.(*Atom); ok {
			f(a)
		}
		return false
	}), x)
}

// WalkArguments calls f on all arguments under x.
func WalkArguments(x interface{}, f func(Argument)) {
	Walk(NewGenericVisitor(func(y interface{}) bool {
		if a, ok := y.(Argument); ok {
			f(a)
		}
		return false
	}), x)
}

// WalkAggregators calls f on all aggregators under x. If f returns true the
// aggregator's own children are not visited.
func WalkAggregators(x interface{}, f func(*Aggregator) bool) {
	Walk(NewGenericVisitor(func(y interface{}) bool {
		if a, ok := y.(*Aggregator); ok {
			return f(a)
		}
		return false
	}), x)
}

// WalkRecords calls f on all record constructors under x.
func WalkRecords(x interface{}, f func(*RecordInit)) {
	Walk(NewGenericVisitor(func(y interface{}) bool {
		if r, ok := y.(*RecordInit); ok {
			f(r)
		}
		return false
	}), x)
}

// WalkConstraints calls f on all binary constraints under x.
func WalkConstraints(x interface{}, f func(*BinaryConstraint)) {
	Walk(NewGenericVisitor(func(y interface{}) bool {
		if c, ok := y.(*BinaryConstraint); ok {
			f(c)
		}
		return false
	}), x)
}
