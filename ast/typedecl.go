// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import (
	"fmt"
	"strings"
)

// PrimitiveKind distinguishes the two base value domains.
type PrimitiveKind int

const (
	Symbolic PrimitiveKind = iota
	Numeric
)

func (k PrimitiveKind) String() string {
	if k == Numeric {
		return "number"
	}
	return "symbol"
}

// TypeDecl is the sum of user type declarations.
type TypeDecl interface {
	Node
	fmt.Stringer
	DeclName() QualifiedName
	typeDeclMarker()
}

func (*PrimitiveDecl) typeDeclMarker() {}
func (*UnionDecl) typeDeclMarker()     {}
func (*RecordDecl) typeDeclMarker()    {}

// PrimitiveDecl declares a fresh base type beneath number or symbol.
type PrimitiveDecl struct {
	node
	Name QualifiedName
	Kind PrimitiveKind
}

// NewPrimitiveDecl returns a fresh primitive type declaration.
func NewPrimitiveDecl(name QualifiedName, kind PrimitiveKind) *PrimitiveDecl {
	return &PrimitiveDecl{node: newNode(), Name: name, Kind: kind}
}

// DeclName returns the declared type name.
func (d *PrimitiveDecl) DeclName() QualifiedName { return d.Name }

func (d *PrimitiveDecl) String() string {
	if d.Kind == Numeric {
		return fmt.Sprintf(".number_type %v", d.Name)
	}
	return fmt.Sprintf(".symbol_type %v", d.Name)
}

// UnionDecl declares a type as the union of previously declared types.
type UnionDecl struct {
	node
	Name     QualifiedName
	Elements []QualifiedName
}

// NewUnionDecl returns a fresh union type declaration.
func NewUnionDecl(name QualifiedName, elements ...QualifiedName) *UnionDecl {
	return &UnionDecl{node: newNode(), Name: name, Elements: elements}
}

// DeclName returns the declared type name.
func (d *UnionDecl) DeclName() QualifiedName { return d.Name }

func (d *UnionDecl) String() string {
	parts := make([]string, len(d.Elements))
	for i, e := range d.Elements {
		parts[i] = e.String()
	}
	return fmt.Sprintf(".type %v = %s", d.Name, strings.Join(parts, " | "))
}

// RecordDecl declares a record type with named, typed fields.
type RecordDecl struct {
	node
	Name   QualifiedName
	Fields []*Attribute
}

// NewRecordDecl returns a fresh record type declaration.
func NewRecordDecl(name QualifiedName, fields ...*Attribute) *RecordDecl {
	return &RecordDecl{node: newNode(), Name: name, Fields: fields}
}

// DeclName returns the declared type name.
func (d *RecordDecl) DeclName() QualifiedName { return d.Name }

func (d *RecordDecl) String() string {
	parts := make([]string, len(d.Fields))
	for i, f := range d.Fields {
		parts[i] = f.String()
	}
	return fmt.Sprintf(".type %v = [%s]", d.Name, strings.Join(parts, ", "))
}

// FunctorDecl declares the signature of a user-defined functor.
type FunctorDecl struct {
	node
	Name   string
	Args   []PrimitiveKind
	Result PrimitiveKind
}

// NewFunctorDecl returns a fresh functor declaration.
func NewFunctorDecl(name string, result PrimitiveKind, args ...PrimitiveKind) *FunctorDecl {
	return &FunctorDecl{node: newNode(), Name: name, Args: args, Result: result}
}

// Arity returns the declared argument count.
func (d *FunctorDecl) Arity() int { return len(d.Args) }

// AcceptsNumbers reports whether argument slot i expects a number.
func (d *FunctorDecl) AcceptsNumbers(i int) bool {
	return i < len(d.Args) && d.Args[i] == Numeric
}

// AcceptsSymbols reports whether argument slot i expects a symbol.
func (d *FunctorDecl) AcceptsSymbols(i int) bool {
	return i < len(d.Args) && d.Args[i] == Symbolic
}

func (d *FunctorDecl) String() string {
	parts := make([]string, len(d.Args))
	for i, k := range d.Args {
		parts[i] = k.String()
	}
	return fmt.Sprintf(".functor %s(%s):%v", d.Name, strings.Join(parts, ","), d.Result)
}
