// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import "fmt"

// Literal is the sum of all body-position AST elements.
type Literal interface {
	Node
	fmt.Stringer
	litMarker()
}

func (*Atom) litMarker()              {}
func (*Negation) litMarker()          {}
func (*BinaryConstraint) litMarker()  {}
func (*BooleanConstraint) litMarker() {}

// Atom is a positive occurrence of a relation.
type Atom struct {
	node
	Name QualifiedName
	Args []Argument
}

// NewAtom returns a fresh atom node.
func NewAtom(name QualifiedName, args ...Argument) *Atom {
	return &Atom{node: newNode(), Name: name, Args: args}
}

// Arity returns the number of arguments.
func (a *Atom) Arity() int { return len(a.Args) }

func (a *Atom) String() string {
	return fmt.Sprintf("%v(%s)", a.Name, joinArgs(a.Args))
}

// Negation is a negated atom.
type Negation struct {
	node
	Atom *Atom
}

// NewNegation returns a fresh negation node.
func NewNegation(atom *Atom) *Negation {
	return &Negation{node: newNode(), Atom: atom}
}

func (n *Negation) String() string { return "!" + n.Atom.String() }

// ConstraintOp enumerates the binary constraint operators.
type ConstraintOp int

const (
	ConstraintEQ ConstraintOp = iota
	ConstraintNE
	ConstraintLT
	ConstraintLE
	ConstraintGT
	ConstraintGE
	ConstraintMatch
	ConstraintNotMatch
	ConstraintContains
	ConstraintNotContains
)

func (op ConstraintOp) String() string {
	switch op {
	case ConstraintEQ:
		return "="
	case ConstraintNE:
		return "!="
	case ConstraintLT:
		return "<"
	case ConstraintLE:
		return "<="
	case ConstraintGT:
		return ">"
	case ConstraintGE:
		return ">="
	case ConstraintMatch:
		return "match"
	case ConstraintNotMatch:
		return "not_match"
	case ConstraintContains:
		return "contains"
	case ConstraintNotContains:
		return "not_contains"
	}
	return "???"
}

// IsEquality reports whether op is "=".
func (op ConstraintOp) IsEquality() bool { return op == ConstraintEQ }

// IsNumerical reports whether both operands must be numbers.
func (op ConstraintOp) IsNumerical() bool {
	return op == ConstraintLT || op == ConstraintLE || op == ConstraintGT || op == ConstraintGE
}

// IsSymbolic reports whether both operands must be symbols.
func (op ConstraintOp) IsSymbolic() bool {
	return op == ConstraintMatch || op == ConstraintNotMatch ||
		op == ConstraintContains || op == ConstraintNotContains
}

// BinaryConstraint compares two arguments.
type BinaryConstraint struct {
	node
	Op  ConstraintOp
	LHS Argument
	RHS Argument
}

// NewBinaryConstraint returns a fresh binary constraint node.
func NewBinaryConstraint(op ConstraintOp, lhs, rhs Argument) *BinaryConstraint {
	return &BinaryConstraint{node: newNode(), Op: op, LHS: lhs, RHS: rhs}
}

func (c *BinaryConstraint) String() string {
	switch c.Op {
	case ConstraintMatch, ConstraintNotMatch, ConstraintContains, ConstraintNotContains:
		return fmt.Sprintf("%v(%v, %v)", c.Op, c.LHS, c.RHS)
	}
	return fmt.Sprintf("%v %v %v", c.LHS, c.Op, c.RHS)
}

// BooleanConstraint is the constant literal "true" or "false".
type BooleanConstraint struct {
	node
	Value bool
}

// NewBooleanConstraint returns a fresh boolean constraint node.
func NewBooleanConstraint(value bool) *BooleanConstraint {
	return &BooleanConstraint{node: newNode(), Value: value}
}

func (c *BooleanConstraint) String() string {
	if c.Value {
		return "true"
	}
	return "false"
}
