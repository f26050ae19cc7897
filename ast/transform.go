// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

// RewriteArguments applies f to every argument under x bottom-up: children
// are rewritten before their parents, so f always sees a node whose
// sub-arguments are final. x may be a *Program, *Clause, Literal, or
// Argument; containers are updated in place.
func RewriteArguments(x interface{}, f func(Argument) Argument) {
	switch x := x.(type) {
	case *Program:
		for _, c := range x.Clauses {
			RewriteArguments(c, f)
		}
	case *Clause:
		if x.Head != nil {
			RewriteArguments(x.Head, f)
		}
		for _, lit := range x.Body {
			RewriteArguments(lit, f)
		}
	case *Atom:
		for i, arg := range x.Args {
			x.Args[i] = rewriteArg(arg, f)
		}
	case *Negation:
		RewriteArguments(x.Atom, f)
	case *BinaryConstraint:
		x.LHS = rewriteArg(x.LHS, f)
		x.RHS = rewriteArg(x.RHS, f)
	case *BooleanConstraint:
	}
}

func rewriteArg(arg Argument, f func(Argument) Argument) Argument {
	switch arg := arg.(type) {
	case *TypeCast:
		arg.Value = rewriteArg(arg.Value, f)
	case *IntrinsicFunctor:
		for i, sub := range arg.Args {
			arg.Args[i] = rewriteArg(sub, f)
		}
	case *UserDefinedFunctor:
		for i, sub := range arg.Args {
			arg.Args[i] = rewriteArg(sub, f)
		}
	case *RecordInit:
		for i, sub := range arg.Args {
			arg.Args[i] = rewriteArg(sub, f)
		}
	case *Aggregator:
		if arg.Target != nil {
			arg.Target = rewriteArg(arg.Target, f)
		}
		for _, lit := range arg.Body {
			RewriteArguments(lit, f)
		}
	}
	return f(arg)
}

// RenameAtoms applies f to every atom name under x, including heads,
// negated atoms, and atoms inside aggregator bodies. A nil return from f
// leaves the atom untouched.
func RenameAtoms(x interface{}, f func(QualifiedName) QualifiedName) {
	WalkAtoms(x, func(atom *Atom) {
		if renamed := f(atom.Name); renamed != nil {
			atom.Name = renamed
		}
	})
}
