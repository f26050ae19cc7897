// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

// Cloning preserves structure and locations but never identity: every clone
// carries fresh node ids, so analysis results attached to the original do
// not leak onto the copy.

// CloneArgument deep-copies an argument.
func CloneArgument(arg Argument) Argument {
	switch arg := arg.(type) {
	case *Variable:
		cpy := NewVariable(arg.Name)
		cpy.SetLoc(arg.Loc())
		return cpy
	case *UnnamedVariable:
		cpy := NewUnnamedVariable()
		cpy.SetLoc(arg.Loc())
		return cpy
	case *NumberConstant:
		cpy := NewNumberConstant(arg.Value)
		cpy.SetLoc(arg.Loc())
		return cpy
	case *StringConstant:
		cpy := NewStringConstant(arg.Value)
		cpy.SetLoc(arg.Loc())
		return cpy
	case *Counter:
		cpy := NewCounter()
		cpy.SetLoc(arg.Loc())
		return cpy
	case *TypeCast:
		cpy := NewTypeCast(CloneArgument(arg.Value), arg.Type)
		cpy.SetLoc(arg.Loc())
		return cpy
	case *IntrinsicFunctor:
		cpy := NewIntrinsicFunctor(arg.Op, cloneArgs(arg.Args)...)
		cpy.SetLoc(arg.Loc())
		return cpy
	case *UserDefinedFunctor:
		cpy := NewUserDefinedFunctor(arg.Name, cloneArgs(arg.Args)...)
		cpy.SetLoc(arg.Loc())
		return cpy
	case *RecordInit:
		cpy := NewRecordInit(arg.Type, cloneArgs(arg.Args)...)
		cpy.SetLoc(arg.Loc())
		return cpy
	case *Aggregator:
		var target Argument
		if arg.Target != nil {
			target = CloneArgument(arg.Target)
		}
		cpy := NewAggregator(arg.Op, target, CloneLiterals(arg.Body)...)
		cpy.SetLoc(arg.Loc())
		return cpy
	}
	return nil
}

func cloneArgs(args []Argument) []Argument {
	out := make([]Argument, len(args))
	for i, a := range args {
		out[i] = CloneArgument(a)
	}
	return out
}

// CloneLiteral deep-copies a literal.
func CloneLiteral(lit Literal) Literal {
	switch lit := lit.(type) {
	case *Atom:
		return lit.Clone()
	case *Negation:
		cpy := NewNegation(lit.Atom.Clone())
		cpy.SetLoc(lit.Loc())
		return cpy
	case *BinaryConstraint:
		cpy := NewBinaryConstraint(lit.Op, CloneArgument(lit.LHS), CloneArgument(lit.RHS))
		cpy.SetLoc(lit.Loc())
		return cpy
	case *BooleanConstraint:
		cpy := NewBooleanConstraint(lit.Value)
		cpy.SetLoc(lit.Loc())
		return cpy
	}
	return nil
}

// CloneLiterals deep-copies a literal slice.
func CloneLiterals(lits []Literal) []Literal {
	out := make([]Literal, len(lits))
	for i, lit := range lits {
		out[i] = CloneLiteral(lit)
	}
	return out
}

// Clone deep-copies the atom.
func (a *Atom) Clone() *Atom {
	cpy := NewAtom(a.Name, cloneArgs(a.Args)...)
	cpy.SetLoc(a.Loc())
	return cpy
}

// Clone deep-copies the clause, including any execution plan.
func (c *Clause) Clone() *Clause {
	var head *Atom
	if c.Head != nil {
		head = c.Head.Clone()
	}
	cpy := NewClause(head, CloneLiterals(c.Body)...)
	cpy.Generated = c.Generated
	cpy.SetLoc(c.Loc())
	if c.Plan != nil {
		cpy.Plan = c.Plan.Clone()
	}
	return cpy
}

// Clone deep-copies the execution plan.
func (p *ExecutionPlan) Clone() *ExecutionPlan {
	cpy := NewExecutionPlan()
	cpy.SetLoc(p.Loc())
	for version, order := range p.Orders {
		o := NewExecutionOrder(append([]int(nil), order.Order...)...)
		o.SetLoc(order.Loc())
		cpy.Orders[version] = o
	}
	return cpy
}

// Clone deep-copies the attribute.
func (a *Attribute) Clone() *Attribute {
	cpy := NewAttribute(a.Name, a.Type)
	cpy.SetLoc(a.Loc())
	return cpy
}

// Clone deep-copies the relation declaration.
func (r *Relation) Clone() *Relation {
	attrs := make([]*Attribute, len(r.Attributes))
	for i, a := range r.Attributes {
		attrs[i] = a.Clone()
	}
	cpy := NewRelation(r.Name, attrs...)
	cpy.Representation = r.Representation
	cpy.Qualifiers = r.Qualifiers
	cpy.SetLoc(r.Loc())
	return cpy
}

// Clone deep-copies the directive.
func (d *Directive) Clone() *Directive {
	cpy := NewDirective(d.Kind, d.Name)
	cpy.SetLoc(d.Loc())
	for k, v := range d.Params {
		cpy.Params[k] = v
	}
	return cpy
}
