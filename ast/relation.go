// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import (
	"fmt"
	"strings"
)

// Representation selects the physical data structure backing a relation.
type Representation int

const (
	RepDefault Representation = iota
	RepBTree
	RepBrie
	RepEqrel
)

func (r Representation) String() string {
	switch r {
	case RepBTree:
		return "btree"
	case RepBrie:
		return "brie"
	case RepEqrel:
		return "eqrel"
	}
	return ""
}

// Qualifier is a bit set of relation properties.
type Qualifier uint8

const (
	InputQualifier Qualifier = 1 << iota
	OutputQualifier
	PrintsizeQualifier
	InlineQualifier
	SuppressedQualifier
)

// Attribute is a named, typed column of a relation or field of a record
// type declaration.
type Attribute struct {
	node
	Name string
	Type QualifiedName
}

// NewAttribute returns a fresh attribute node.
func NewAttribute(name string, typeName QualifiedName) *Attribute {
	return &Attribute{node: newNode(), Name: name, Type: typeName}
}

func (a *Attribute) String() string {
	return fmt.Sprintf("%s:%v", a.Name, a.Type)
}

// Relation declares a predicate with a fixed attribute list.
type Relation struct {
	node
	Name           QualifiedName
	Attributes     []*Attribute
	Representation Representation
	Qualifiers     Qualifier
}

// NewRelation returns a fresh relation declaration.
func NewRelation(name QualifiedName, attributes ...*Attribute) *Relation {
	return &Relation{node: newNode(), Name: name, Attributes: attributes}
}

// Arity returns the number of attributes.
func (r *Relation) Arity() int { return len(r.Attributes) }

// Attribute returns the i-th attribute or nil if out of range.
func (r *Relation) Attribute(i int) *Attribute {
	if i < 0 || i >= len(r.Attributes) {
		return nil
	}
	return r.Attributes[i]
}

// SetQualifier adds the given qualifier bits.
func (r *Relation) SetQualifier(q Qualifier) { r.Qualifiers |= q }

// ClearQualifier removes the given qualifier bits.
func (r *Relation) ClearQualifier(q Qualifier) { r.Qualifiers &^= q }

// HasQualifier reports whether all given qualifier bits are set.
func (r *Relation) HasQualifier(q Qualifier) bool { return r.Qualifiers&q == q }

// IsInline reports whether the relation is marked for inlining.
func (r *Relation) IsInline() bool { return r.HasQualifier(InlineQualifier) }

// IsSuppressed reports whether warnings for the relation are muted.
func (r *Relation) IsSuppressed() bool { return r.HasQualifier(SuppressedQualifier) }

func (r *Relation) String() string {
	parts := make([]string, len(r.Attributes))
	for i, a := range r.Attributes {
		parts[i] = a.String()
	}
	s := fmt.Sprintf(".decl %v(%s)", r.Name, strings.Join(parts, ", "))
	if rep := r.Representation.String(); rep != "" {
		s += " " + rep
	}
	return s
}
