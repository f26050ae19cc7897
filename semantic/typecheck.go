// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package semantic

import (
	"fmt"

	"github.com/stratlog/stratlog/ast"
	"github.com/stratlog/stratlog/types"
)

// checkTypes runs every lattice-based check. Structural prerequisites
// (declared cast targets, declared record types, functor arities, constant
// ranges) are validated first and do not depend on the lattice; everything
// else is skipped when the type environment failed to resolve.
func (c *Checker) checkTypes() {
	p := c.tu.Program
	ta := c.tu.Types()
	env := ta.Env()

	for _, clause := range p.Clauses {
		ast.WalkArguments(clause, func(arg ast.Argument) {
			switch arg := arg.(type) {
			case *ast.TypeCast:
				if !env.IsDeclared(arg.Type.String()) {
					c.err(fmt.Sprintf("Type cast is to undeclared type %v", arg.Type), arg.Loc())
				}
			case *ast.RecordInit:
				c.checkRecordDeclared(arg)
			case *ast.NumberConstant:
				if arg.Value < MinNumberConstant || arg.Value > MaxNumberConstant {
					c.err(fmt.Sprintf("Number constant not in range [%d, %d]", MinNumberConstant, MaxNumberConstant), arg.Loc())
				}
			case *ast.UserDefinedFunctor:
				decl := p.Functor(arg.Name)
				if decl == nil {
					c.err("User-defined functor hasn't been declared", arg.Loc())
				} else if decl.Arity() != len(arg.Args) {
					c.err("Mismatching number of arguments of functor", arg.Loc())
				}
			}
		})
	}

	if !ta.Valid() {
		c.err("No type checking could occur due to other errors present", nil)
		return
	}

	for _, clause := range p.Clauses {
		c.checkClauseTypes(clause)
	}
}

func (c *Checker) checkRecordDeclared(record *ast.RecordInit) {
	env := c.tu.Types().Env()
	name := record.Type.String()
	if !env.IsDeclared(name) {
		c.err(fmt.Sprintf("Type %v has not been declared", record.Type), record.Loc())
		return
	}
	t := env.Lookup(name)
	recordType, ok := t.(*types.RecordType)
	if !ok {
		if t != nil {
			c.err(fmt.Sprintf("Type %v is not a record type", t), record.Loc())
		}
		return
	}
	if len(record.Args) != len(recordType.Fields) {
		c.err("Wrong number of arguments given to record", record.Loc())
	}
}

func (c *Checker) checkClauseTypes(clause *ast.Clause) {
	p := c.tu.Program
	ta := c.tu.Types()
	env := ta.Env()
	grounded := c.tu.Grounded(clause)

	kindPrimitive := func(t types.Type) string {
		return types.Primitive{Kind: types.KindOf(t)}.String()
	}

	// arguments whose inferred type collapsed to a bottom
	ast.WalkArguments(clause, func(arg ast.Argument) {
		if !grounded[arg.ID()] {
			// an ungrounded argument already produced a grounding error
			return
		}
		switch ta.TypeOf(arg).(type) {
		case types.BottomPrim:
			c.err("Unable to deduce valid type for expression, as base types are disjoint", arg.Loc())
		case types.Bottom:
			c.err("Unable to deduce valid type for expression, as primitive types are disjoint", arg.Loc())
		}
	})

	// functor argument kinds
	ast.WalkArguments(clause, func(arg ast.Argument) {
		switch arg := arg.(type) {
		case *ast.IntrinsicFunctor:
			for i, sub := range arg.Args {
				c.checkFunctorArg(sub, arg.Op.AcceptsSymbols(i), arg.Op.AcceptsNumbers(i))
			}
		case *ast.UserDefinedFunctor:
			decl := p.Functor(arg.Name)
			if decl == nil || decl.Arity() != len(arg.Args) {
				return
			}
			for i, sub := range arg.Args {
				c.checkFunctorArg(sub, decl.AcceptsSymbols(i), decl.AcceptsNumbers(i))
			}
		}
	})

	// record constructors: overall type deducible, fields conform
	ast.WalkRecords(clause, func(record *ast.RecordInit) {
		if !grounded[record.ID()] {
			return
		}
		recordType, ok := env.Lookup(record.Type.String()).(*types.RecordType)
		if !ok || len(record.Args) != len(recordType.Fields) {
			return
		}
		if _, isTop := ta.TypeOf(record).(types.Any); isTop {
			c.err(fmt.Sprintf("Unable to deduce type %v as record is not grounded as a record elsewhere, and at least one of its elements has the wrong type", record.Type), record.Loc())
		}
		for i, member := range record.Args {
			fieldType := env.Lookup(recordType.Fields[i].Type)
			actual := ta.TypeOf(member)
			if fieldType != nil && types.Valid(actual) && !env.Subtype(actual, fieldType) {
				c.err(fmt.Sprintf("Record constructor expects element to have type %v but instead it has type %v", fieldType, actual), member.Loc())
			}
		}
	})

	// aggregates other than count reduce numbers
	ast.WalkAggregators(clause, func(aggr *ast.Aggregator) bool {
		if aggr.Op != ast.AggCount && aggr.Target != nil {
			target := ta.TypeOf(aggr.Target)
			if types.Valid(target) && !env.Subtype(target, types.N) {
				c.err(fmt.Sprintf("Aggregation variable is not a number, instead has type %v", target), aggr.Target.Loc())
			}
		}
		return false
	})

	// casts agree with their context and lose no kind
	ast.WalkArguments(clause, func(arg ast.Argument) {
		cast, ok := arg.(*ast.TypeCast)
		if !ok {
			return
		}
		stated := env.Lookup(cast.Type.String())
		if stated == nil {
			return
		}
		actual := ta.TypeOf(cast)
		if !types.Valid(actual) {
			return
		}
		if !typeEquals(actual, stated) {
			c.err(fmt.Sprintf("Typecast is to type %v but is used where the type %v is expected", cast.Type, actual), cast.Loc())
		}
		input := ta.TypeOf(cast.Value)
		if !types.Valid(input) {
			return
		}
		statedKind := types.Primitive{Kind: types.KindOf(stated)}
		if !env.Subtype(input, statedKind) {
			c.warn(fmt.Sprintf("Casts from %s values to %s types may cause runtime errors", kindPrimitive(input), statedKind), cast.Loc())
		} else if types.KindOf(stated) == types.Record && !env.Subtype(input, stated) {
			c.warn("Casting a record to the wrong record type may cause runtime errors", cast.Loc())
		}
	})

	// atom arguments conform to the declared attribute types
	ast.WalkAtoms(clause, func(atom *ast.Atom) {
		rel := p.Relation(atom.Name)
		if rel == nil || rel.Arity() != atom.Arity() {
			return
		}
		for i, arg := range atom.Args {
			declared := env.Lookup(rel.Attribute(i).Type.String())
			actual := ta.TypeOf(arg)
			if declared != nil && types.Valid(actual) && !env.Subtype(actual, declared) {
				c.err(fmt.Sprintf("Relation expects value of type %v but got argument of type %v", rel.Attribute(i).Type, actual), arg.Loc())
			}
		}
	})

	// binary constraint operand kinds
	ast.WalkConstraints(clause, func(bc *ast.BinaryConstraint) {
		lhs, rhs := ta.TypeOf(bc.LHS), ta.TypeOf(bc.RHS)
		switch {
		case bc.Op.IsEquality():
			// equality is unconstrained
		case bc.Op == ast.ConstraintNE:
			if !types.Valid(lhs) || !types.Valid(rhs) {
				return
			}
			if types.KindOf(lhs) == types.NoKind || types.KindOf(rhs) == types.NoKind {
				return
			}
			if types.KindOf(lhs) != types.KindOf(rhs) {
				c.err(fmt.Sprintf("Cannot compare operands of different kinds, left operand is a %s and right operand is a %s", kindPrimitive(lhs), kindPrimitive(rhs)), bc.Loc())
			} else if types.KindOf(lhs) == types.Record {
				if !env.Subtype(lhs, rhs) && !env.Subtype(rhs, lhs) {
					c.err("Cannot compare records of different types", bc.Loc())
				}
			}
		case bc.Op.IsNumerical():
			c.checkComparisonOperand(lhs, types.N, "Non-numerical operand for comparison, instead left operand has type %v", bc.LHS)
			c.checkComparisonOperand(rhs, types.N, "Non-numerical operand for comparison, instead right operand has type %v", bc.RHS)
		case bc.Op.IsSymbolic():
			c.checkComparisonOperand(lhs, types.S, "Non-symbolic operand for comparison, instead left operand has type %v", bc.LHS)
			c.checkComparisonOperand(rhs, types.S, "Non-symbolic operand for comparison, instead right operand has type %v", bc.RHS)
		}
	})
}

func (c *Checker) checkFunctorArg(arg ast.Argument, wantSymbol, wantNumber bool) {
	ta := c.tu.Types()
	env := ta.Env()
	argType := ta.TypeOf(arg)
	if !types.Valid(argType) {
		return
	}
	if wantSymbol && !env.Subtype(argType, types.S) {
		c.err(fmt.Sprintf("Non-symbolic argument for functor, instead argument has type %v", argType), arg.Loc())
	}
	if wantNumber && !env.Subtype(argType, types.N) {
		c.err(fmt.Sprintf("Non-numeric argument for functor, instead argument has type %v", argType), arg.Loc())
	}
}

func (c *Checker) checkComparisonOperand(t types.Type, want types.Primitive, format string, arg ast.Argument) {
	// an underscore operand is already reported by the clause checks
	if _, unnamed := arg.(*ast.UnnamedVariable); unnamed {
		return
	}
	env := c.tu.Types().Env()
	if types.Valid(t) && !env.Subtype(t, want) {
		c.err(fmt.Sprintf(format, t), arg.Loc())
	}
}

func typeEquals(a, b types.Type) bool {
	if a == nil || b == nil {
		return false
	}
	return a.String() == b.String()
}
