// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import (
	"fmt"
	"strings"
)

// Argument is the sum of all value-position AST elements.
type Argument interface {
	Node
	fmt.Stringer
	argMarker()
}

func (*Variable) argMarker()           {}
func (*UnnamedVariable) argMarker()    {}
func (*NumberConstant) argMarker()     {}
func (*StringConstant) argMarker()     {}
func (*Counter) argMarker()            {}
func (*TypeCast) argMarker()           {}
func (*IntrinsicFunctor) argMarker()   {}
func (*UserDefinedFunctor) argMarker() {}
func (*RecordInit) argMarker()         {}
func (*Aggregator) argMarker()         {}

// Variable is a named logic variable.
type Variable struct {
	node
	Name string
}

// NewVariable returns a fresh variable node.
func NewVariable(name string) *Variable {
	return &Variable{node: newNode(), Name: name}
}

func (v *Variable) String() string { return v.Name }

// UnnamedVariable is the anonymous variable "_".
type UnnamedVariable struct {
	node
}

// NewUnnamedVariable returns a fresh unnamed variable node.
func NewUnnamedVariable() *UnnamedVariable {
	return &UnnamedVariable{node: newNode()}
}

func (*UnnamedVariable) String() string { return "_" }

// NumberConstant is a numeric literal. The value is held wider than the
// evaluation domain so that out-of-range constants survive until the range
// check reports them.
type NumberConstant struct {
	node
	Value int64
}

// NewNumberConstant returns a fresh number constant node.
func NewNumberConstant(value int64) *NumberConstant {
	return &NumberConstant{node: newNode(), Value: value}
}

func (c *NumberConstant) String() string { return fmt.Sprintf("%d", c.Value) }

// StringConstant is a symbol literal.
type StringConstant struct {
	node
	Value string
}

// NewStringConstant returns a fresh string constant node.
func NewStringConstant(value string) *StringConstant {
	return &StringConstant{node: newNode(), Value: value}
}

func (c *StringConstant) String() string { return fmt.Sprintf("%q", c.Value) }

// Counter is the auto-increment functor "$".
type Counter struct {
	node
}

// NewCounter returns a fresh counter node.
func NewCounter() *Counter {
	return &Counter{node: newNode()}
}

func (*Counter) String() string { return "$" }

// TypeCast reinterprets its value as the named type.
type TypeCast struct {
	node
	Value Argument
	Type  QualifiedName
}

// NewTypeCast returns a fresh type cast node.
func NewTypeCast(value Argument, typeName QualifiedName) *TypeCast {
	return &TypeCast{node: newNode(), Value: value, Type: typeName}
}

func (c *TypeCast) String() string {
	return fmt.Sprintf("as(%v, %v)", c.Value, c.Type)
}

// IntrinsicFunctor applies a built-in operation to its arguments.
type IntrinsicFunctor struct {
	node
	Op   IntrinsicOp
	Args []Argument
}

// NewIntrinsicFunctor returns a fresh intrinsic functor node.
func NewIntrinsicFunctor(op IntrinsicOp, args ...Argument) *IntrinsicFunctor {
	return &IntrinsicFunctor{node: newNode(), Op: op, Args: args}
}

func (f *IntrinsicFunctor) String() string {
	info := f.Op.info()
	if info.infix && len(f.Args) == 2 {
		return fmt.Sprintf("(%v %s %v)", f.Args[0], info.symbol, f.Args[1])
	}
	return fmt.Sprintf("%s(%s)", info.symbol, joinArgs(f.Args))
}

// UserDefinedFunctor applies a functor declared with a .functor directive.
type UserDefinedFunctor struct {
	node
	Name string
	Args []Argument
}

// NewUserDefinedFunctor returns a fresh user-defined functor node.
func NewUserDefinedFunctor(name string, args ...Argument) *UserDefinedFunctor {
	return &UserDefinedFunctor{node: newNode(), Name: name, Args: args}
}

func (f *UserDefinedFunctor) String() string {
	return fmt.Sprintf("@%s(%s)", f.Name, joinArgs(f.Args))
}

// RecordInit constructs a record value of the named record type.
type RecordInit struct {
	node
	Type QualifiedName
	Args []Argument
}

// NewRecordInit returns a fresh record constructor node.
func NewRecordInit(typeName QualifiedName, args ...Argument) *RecordInit {
	return &RecordInit{node: newNode(), Type: typeName, Args: args}
}

func (r *RecordInit) String() string {
	return "[" + joinArgs(r.Args) + "]"
}

// AggregateOp enumerates the aggregation operators.
type AggregateOp int

const (
	AggCount AggregateOp = iota
	AggSum
	AggMin
	AggMax
	AggMean
)

func (op AggregateOp) String() string {
	switch op {
	case AggCount:
		return "count"
	case AggSum:
		return "sum"
	case AggMin:
		return "min"
	case AggMax:
		return "max"
	case AggMean:
		return "mean"
	}
	return "???"
}

// Aggregator evaluates its body in an inner scope and reduces the target
// expression over all satisfying assignments. Target is nil for count.
type Aggregator struct {
	node
	Op     AggregateOp
	Target Argument
	Body   []Literal
}

// NewAggregator returns a fresh aggregator node.
func NewAggregator(op AggregateOp, target Argument, body ...Literal) *Aggregator {
	return &Aggregator{node: newNode(), Op: op, Target: target, Body: body}
}

func (a *Aggregator) String() string {
	var b strings.Builder
	b.WriteString(a.Op.String())
	if a.Target != nil {
		b.WriteByte(' ')
		b.WriteString(a.Target.String())
	}
	b.WriteString(" : { ")
	for i, lit := range a.Body {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(lit.String())
	}
	b.WriteString(" }")
	return b.String()
}

func joinArgs(args []Argument) string {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return strings.Join(parts, ", ")
}
