// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import (
	"encoding/json"
	"fmt"
)

// The JSON encoding is the hand-off format between the out-of-scope parser
// and this compiler: a type-tagged tree mirroring the AST shape. Node ids
// are never serialised; decoding stamps fresh ones.

var intrinsicOpNames = map[IntrinsicOp]string{
	OpNeg: "neg", OpBNot: "bnot", OpLNot: "lnot", OpOrd: "ord", OpStrlen: "strlen",
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div", OpExp: "exp", OpMod: "mod",
	OpBAnd: "band", OpBOr: "bor", OpBXor: "bxor", OpLAnd: "land", OpLOr: "lor",
	OpMax: "max", OpMin: "min", OpCat: "cat", OpSubstr: "substr",
}

var constraintOpNames = map[ConstraintOp]string{
	ConstraintEQ: "eq", ConstraintNE: "ne", ConstraintLT: "lt", ConstraintLE: "le",
	ConstraintGT: "gt", ConstraintGE: "ge", ConstraintMatch: "match",
	ConstraintNotMatch: "not_match", ConstraintContains: "contains",
	ConstraintNotContains: "not_contains",
}

var aggregateOpNames = map[AggregateOp]string{
	AggCount: "count", AggSum: "sum", AggMin: "min", AggMax: "max", AggMean: "mean",
}

func reverse[K comparable](m map[K]string) map[string]K {
	out := make(map[string]K, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

var (
	intrinsicOpsByName  = reverse(intrinsicOpNames)
	constraintOpsByName = reverse(constraintOpNames)
	aggregateOpsByName  = reverse(aggregateOpNames)
)

type jsonArg struct {
	Arg    string          `json:"arg"`
	Name   string          `json:"name,omitempty"`
	Value  json.RawMessage `json:"value,omitempty"`
	Type   QualifiedName   `json:"type,omitempty"`
	Op     string          `json:"op,omitempty"`
	Args   []jsonArg       `json:"args,omitempty"`
	Target *jsonArg        `json:"target,omitempty"`
	Body   []jsonLit       `json:"body,omitempty"`
	Loc    *Location       `json:"loc,omitempty"`
}

type jsonLit struct {
	Lit  string        `json:"lit"`
	Name QualifiedName `json:"name,omitempty"`
	Args []jsonArg     `json:"args,omitempty"`
	Atom *jsonLit      `json:"atom,omitempty"`
	Op   string        `json:"op,omitempty"`
	LHS  *jsonArg      `json:"lhs,omitempty"`
	RHS  *jsonArg      `json:"rhs,omitempty"`
	Bool bool          `json:"bool,omitempty"`
	Loc  *Location     `json:"loc,omitempty"`
}

type jsonAttr struct {
	Name string        `json:"name"`
	Type QualifiedName `json:"type"`
	Loc  *Location     `json:"loc,omitempty"`
}

type jsonRelation struct {
	Name           QualifiedName `json:"name"`
	Attributes     []jsonAttr    `json:"attributes"`
	Representation string        `json:"representation,omitempty"`
	Qualifiers     []string      `json:"qualifiers,omitempty"`
	Loc            *Location     `json:"loc,omitempty"`
}

type jsonType struct {
	Decl     string          `json:"decl"`
	Name     QualifiedName   `json:"name"`
	Kind     string          `json:"kind,omitempty"`
	Elements []QualifiedName `json:"elements,omitempty"`
	Fields   []jsonAttr      `json:"fields,omitempty"`
	Loc      *Location       `json:"loc,omitempty"`
}

type jsonDirective struct {
	Kind   string            `json:"kind"`
	Name   QualifiedName     `json:"name"`
	Params map[string]string `json:"params,omitempty"`
	Loc    *Location         `json:"loc,omitempty"`
}

type jsonFunctor struct {
	Name   string    `json:"name"`
	Args   []string  `json:"args"`
	Result string    `json:"result"`
	Loc    *Location `json:"loc,omitempty"`
}

type jsonClause struct {
	Head      *jsonLit         `json:"head"`
	Body      []jsonLit        `json:"body,omitempty"`
	Plan      map[string][]int `json:"plan,omitempty"`
	Generated bool             `json:"generated,omitempty"`
	Loc       *Location        `json:"loc,omitempty"`
}

type jsonProgram struct {
	Types      []jsonType      `json:"types,omitempty"`
	Functors   []jsonFunctor   `json:"functors,omitempty"`
	Relations  []jsonRelation  `json:"relations,omitempty"`
	Directives []jsonDirective `json:"directives,omitempty"`
	Clauses    []jsonClause    `json:"clauses,omitempty"`
}

func encodeArg(arg Argument) jsonArg {
	out := jsonArg{Loc: arg.Loc()}
	switch arg := arg.(type) {
	case *Variable:
		out.Arg = "variable"
		out.Name = arg.Name
	case *UnnamedVariable:
		out.Arg = "unnamed"
	case *NumberConstant:
		out.Arg = "number"
		out.Value, _ = json.Marshal(arg.Value)
	case *StringConstant:
		out.Arg = "string"
		out.Value, _ = json.Marshal(arg.Value)
	case *Counter:
		out.Arg = "counter"
	case *TypeCast:
		out.Arg = "cast"
		out.Type = arg.Type
		out.Args = []jsonArg{encodeArg(arg.Value)}
	case *IntrinsicFunctor:
		out.Arg = "intrinsic"
		out.Op = intrinsicOpNames[arg.Op]
		out.Args = encodeArgs(arg.Args)
	case *UserDefinedFunctor:
		out.Arg = "functor"
		out.Name = arg.Name
		out.Args = encodeArgs(arg.Args)
	case *RecordInit:
		out.Arg = "record"
		out.Type = arg.Type
		out.Args = encodeArgs(arg.Args)
	case *Aggregator:
		out.Arg = "aggregator"
		out.Op = aggregateOpNames[arg.Op]
		if arg.Target != nil {
			t := encodeArg(arg.Target)
			out.Target = &t
		}
		out.Body = encodeLits(arg.Body)
	}
	return out
}

func encodeArgs(args []Argument) []jsonArg {
	out := make([]jsonArg, len(args))
	for i, a := range args {
		out[i] = encodeArg(a)
	}
	return out
}

func encodeLit(lit Literal) jsonLit {
	out := jsonLit{Loc: lit.Loc()}
	switch lit := lit.(type) {
	case *Atom:
		out.Lit = "atom"
		out.Name = lit.Name
		out.Args = encodeArgs(lit.Args)
	case *Negation:
		out.Lit = "negation"
		atom := encodeLit(lit.Atom)
		out.Atom = &atom
	case *BinaryConstraint:
		out.Lit = "constraint"
		out.Op = constraintOpNames[lit.Op]
		lhs, rhs := encodeArg(lit.LHS), encodeArg(lit.RHS)
		out.LHS, out.RHS = &lhs, &rhs
	case *BooleanConstraint:
		out.Lit = "boolean"
		out.Bool = lit.Value
	}
	return out
}

func encodeLits(lits []Literal) []jsonLit {
	out := make([]jsonLit, len(lits))
	for i, lit := range lits {
		out[i] = encodeLit(lit)
	}
	return out
}

func decodeArg(in jsonArg) (Argument, error) {
	var arg Argument
	switch in.Arg {
	case "variable":
		arg = NewVariable(in.Name)
	case "unnamed":
		arg = NewUnnamedVariable()
	case "number":
		var v int64
		if err := json.Unmarshal(in.Value, &v); err != nil {
			return nil, fmt.Errorf("number constant: %w", err)
		}
		arg = NewNumberConstant(v)
	case "string":
		var v string
		if err := json.Unmarshal(in.Value, &v); err != nil {
			return nil, fmt.Errorf("string constant: %w", err)
		}
		arg = NewStringConstant(v)
	case "counter":
		arg = NewCounter()
	case "cast":
		if len(in.Args) != 1 {
			return nil, fmt.Errorf("cast expects one argument")
		}
		value, err := decodeArg(in.Args[0])
		if err != nil {
			return nil, err
		}
		arg = NewTypeCast(value, in.Type)
	case "intrinsic":
		op, ok := intrinsicOpsByName[in.Op]
		if !ok {
			return nil, fmt.Errorf("unknown intrinsic op %q", in.Op)
		}
		args, err := decodeArgs(in.Args)
		if err != nil {
			return nil, err
		}
		arg = NewIntrinsicFunctor(op, args...)
	case "functor":
		args, err := decodeArgs(in.Args)
		if err != nil {
			return nil, err
		}
		arg = NewUserDefinedFunctor(in.Name, args...)
	case "record":
		args, err := decodeArgs(in.Args)
		if err != nil {
			return nil, err
		}
		arg = NewRecordInit(in.Type, args...)
	case "aggregator":
		op, ok := aggregateOpsByName[in.Op]
		if !ok {
			return nil, fmt.Errorf("unknown aggregate op %q", in.Op)
		}
		var target Argument
		if in.Target != nil {
			var err error
			if target, err = decodeArg(*in.Target); err != nil {
				return nil, err
			}
		}
		body, err := decodeLits(in.Body)
		if err != nil {
			return nil, err
		}
		arg = NewAggregator(op, target, body...)
	default:
		return nil, fmt.Errorf("unknown argument tag %q", in.Arg)
	}
	arg.SetLoc(in.Loc)
	return arg, nil
}

func decodeArgs(in []jsonArg) ([]Argument, error) {
	out := make([]Argument, len(in))
	for i, a := range in {
		arg, err := decodeArg(a)
		if err != nil {
			return nil, err
		}
		out[i] = arg
	}
	return out, nil
}

func decodeLit(in jsonLit) (Literal, error) {
	var lit Literal
	switch in.Lit {
	case "atom":
		args, err := decodeArgs(in.Args)
		if err != nil {
			return nil, err
		}
		lit = NewAtom(in.Name, args...)
	case "negation":
		if in.Atom == nil {
			return nil, fmt.Errorf("negation without atom")
		}
		inner, err := decodeLit(*in.Atom)
		if err != nil {
			return nil, err
		}
		atom, ok := inner.(*Atom)
		if !ok {
			return nil, fmt.Errorf("negation of non-atom")
		}
		lit = NewNegation(atom)
	case "constraint":
		op, ok := constraintOpsByName[in.Op]
		if !ok {
			return nil, fmt.Errorf("unknown constraint op %q", in.Op)
		}
		if in.LHS == nil || in.RHS == nil {
			return nil, fmt.Errorf("constraint missing operand")
		}
		lhs, err := decodeArg(*in.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := decodeArg(*in.RHS)
		if err != nil {
			return nil, err
		}
		lit = NewBinaryConstraint(op, lhs, rhs)
	case "boolean":
		lit = NewBooleanConstraint(in.Bool)
	default:
		return nil, fmt.Errorf("unknown literal tag %q", in.Lit)
	}
	lit.SetLoc(in.Loc)
	return lit, nil
}

func decodeLits(in []jsonLit) ([]Literal, error) {
	out := make([]Literal, len(in))
	for i, lit := range in {
		decoded, err := decodeLit(lit)
		if err != nil {
			return nil, err
		}
		out[i] = decoded
	}
	return out, nil
}

var qualifierNames = []struct {
	bit  Qualifier
	name string
}{
	{InputQualifier, "input"},
	{OutputQualifier, "output"},
	{PrintsizeQualifier, "printsize"},
	{InlineQualifier, "inline"},
	{SuppressedQualifier, "suppressed"},
}

// MarshalJSON encodes the program as a type-tagged tree.
func (p *Program) MarshalJSON() ([]byte, error) {
	out := jsonProgram{}
	for _, t := range p.Types {
		jt := jsonType{Name: t.DeclName(), Loc: t.Loc()}
		switch t := t.(type) {
		case *PrimitiveDecl:
			jt.Decl = "primitive"
			jt.Kind = t.Kind.String()
		case *UnionDecl:
			jt.Decl = "union"
			jt.Elements = t.Elements
		case *RecordDecl:
			jt.Decl = "record"
			for _, f := range t.Fields {
				jt.Fields = append(jt.Fields, jsonAttr{Name: f.Name, Type: f.Type, Loc: f.Loc()})
			}
		}
		out.Types = append(out.Types, jt)
	}
	for _, f := range p.Functors {
		jf := jsonFunctor{Name: f.Name, Result: f.Result.String(), Loc: f.Loc()}
		for _, k := range f.Args {
			jf.Args = append(jf.Args, k.String())
		}
		out.Functors = append(out.Functors, jf)
	}
	for _, rel := range p.Relations {
		jr := jsonRelation{Name: rel.Name, Representation: rel.Representation.String(), Loc: rel.Loc()}
		for _, a := range rel.Attributes {
			jr.Attributes = append(jr.Attributes, jsonAttr{Name: a.Name, Type: a.Type, Loc: a.Loc()})
		}
		for _, q := range qualifierNames {
			if rel.HasQualifier(q.bit) {
				jr.Qualifiers = append(jr.Qualifiers, q.name)
			}
		}
		out.Relations = append(out.Relations, jr)
	}
	for _, d := range p.Directives {
		kind := "input"
		switch d.Kind {
		case OutputDirective:
			kind = "output"
		case PrintsizeDirective:
			kind = "printsize"
		}
		out.Directives = append(out.Directives, jsonDirective{Kind: kind, Name: d.Name, Params: d.Params, Loc: d.Loc()})
	}
	for _, c := range p.Clauses {
		head := encodeLit(c.Head)
		jc := jsonClause{Head: &head, Body: encodeLits(c.Body), Generated: c.Generated, Loc: c.Loc()}
		if c.Plan != nil {
			jc.Plan = map[string][]int{}
			for version, order := range c.Plan.Orders {
				jc.Plan[fmt.Sprint(version)] = order.Order
			}
		}
		out.Clauses = append(out.Clauses, jc)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a type-tagged program tree, stamping fresh node ids
// throughout.
func (p *Program) UnmarshalJSON(bs []byte) error {
	var in jsonProgram
	if err := json.Unmarshal(bs, &in); err != nil {
		return err
	}
	*p = Program{}
	for _, jt := range in.Types {
		switch jt.Decl {
		case "primitive":
			kind := Symbolic
			if jt.Kind == "number" {
				kind = Numeric
			}
			decl := NewPrimitiveDecl(jt.Name, kind)
			decl.SetLoc(jt.Loc)
			p.AddType(decl)
		case "union":
			decl := NewUnionDecl(jt.Name, jt.Elements...)
			decl.SetLoc(jt.Loc)
			p.AddType(decl)
		case "record":
			fields := make([]*Attribute, len(jt.Fields))
			for i, f := range jt.Fields {
				fields[i] = NewAttribute(f.Name, f.Type)
				fields[i].SetLoc(f.Loc)
			}
			decl := NewRecordDecl(jt.Name, fields...)
			decl.SetLoc(jt.Loc)
			p.AddType(decl)
		default:
			return fmt.Errorf("unknown type declaration tag %q", jt.Decl)
		}
	}
	for _, jf := range in.Functors {
		result := Symbolic
		if jf.Result == "number" {
			result = Numeric
		}
		args := make([]PrimitiveKind, len(jf.Args))
		for i, k := range jf.Args {
			if k == "number" {
				args[i] = Numeric
			}
		}
		decl := NewFunctorDecl(jf.Name, result, args...)
		decl.SetLoc(jf.Loc)
		p.AddFunctor(decl)
	}
	for _, jr := range in.Relations {
		attrs := make([]*Attribute, len(jr.Attributes))
		for i, a := range jr.Attributes {
			attrs[i] = NewAttribute(a.Name, a.Type)
			attrs[i].SetLoc(a.Loc)
		}
		rel := NewRelation(jr.Name, attrs...)
		rel.SetLoc(jr.Loc)
		switch jr.Representation {
		case "btree":
			rel.Representation = RepBTree
		case "brie":
			rel.Representation = RepBrie
		case "eqrel":
			rel.Representation = RepEqrel
		}
		for _, q := range qualifierNames {
			for _, name := range jr.Qualifiers {
				if name == q.name {
					rel.SetQualifier(q.bit)
				}
			}
		}
		p.AddRelation(rel)
	}
	for _, jd := range in.Directives {
		kind := InputDirective
		switch jd.Kind {
		case "output":
			kind = OutputDirective
		case "printsize":
			kind = PrintsizeDirective
		}
		d := NewDirective(kind, jd.Name)
		d.SetLoc(jd.Loc)
		for k, v := range jd.Params {
			d.SetParam(k, v)
		}
		p.AddDirective(d)
	}
	for _, jc := range in.Clauses {
		if jc.Head == nil {
			return fmt.Errorf("clause without head")
		}
		head, err := decodeLit(*jc.Head)
		if err != nil {
			return err
		}
		headAtom, ok := head.(*Atom)
		if !ok {
			return fmt.Errorf("clause head must be an atom")
		}
		body, err := decodeLits(jc.Body)
		if err != nil {
			return err
		}
		c := NewClause(headAtom, body...)
		c.Generated = jc.Generated
		c.SetLoc(jc.Loc)
		if len(jc.Plan) > 0 {
			c.Plan = NewExecutionPlan()
			for version, order := range jc.Plan {
				var v int
				if _, err := fmt.Sscanf(version, "%d", &v); err != nil {
					return fmt.Errorf("bad plan version %q", version)
				}
				c.Plan.SetOrder(v, NewExecutionOrder(order...))
			}
		}
		p.AddClause(c)
	}
	return nil
}
