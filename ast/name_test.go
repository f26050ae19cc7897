// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import "testing"

func TestQualifiedNameOps(t *testing.T) {
	name := NewQualifiedName("p")

	magic := name.Prepend("@magic")
	if magic.String() != "@magic.p" {
		t.Errorf("expected @magic.p but got %v", magic)
	}
	if name.String() != "p" {
		t.Errorf("prepend must not mutate the receiver, got %v", name)
	}

	adorned := name.Append("{bf}")
	if adorned.String() != "p{bf}" {
		t.Errorf("adornment component must attach without a dot, got %v", adorned)
	}

	nested := ParseQualifiedName("a.b.c")
	if len(nested) != 3 || nested.First() != "a" || nested.Last() != "c" {
		t.Errorf("unexpected parse result: %#v", nested)
	}

	if !nested.Equal(NewQualifiedName("a", "b", "c")) {
		t.Errorf("expected names to be equal")
	}
	if nested.Equal(NewQualifiedName("a", "b")) {
		t.Errorf("expected names of different length to differ")
	}

	magicAdorned := adorned.Prepend("@magic")
	if magicAdorned.String() != "@magic.p{bf}" {
		t.Errorf("expected @magic.p{bf} but got %v", magicAdorned)
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		note     string
		input    interface{ String() string }
		expected string
	}{
		{"atom", NewAtom(NewQualifiedName("e"), NewVariable("x"), NewVariable("y")), "e(x, y)"},
		{"negation", NewNegation(NewAtom(NewQualifiedName("p"), NewVariable("x"))), "!p(x)"},
		{"constraint", NewBinaryConstraint(ConstraintEQ, NewVariable("x"), NewNumberConstant(1)), "x = 1"},
		{"unnamed", NewUnnamedVariable(), "_"},
		{"counter", NewCounter(), "$"},
		{"record", NewRecordInit(NewQualifiedName("Pair"), NewVariable("a"), NewVariable("b")), "[a, b]"},
		{"functor", NewIntrinsicFunctor(OpAdd, NewVariable("x"), NewNumberConstant(1)), "(x + 1)"},
		{"aggregator", NewAggregator(AggMax, NewVariable("y"), NewAtom(NewQualifiedName("b"), NewVariable("y"))), "max y : { b(y) }"},
		{"fact", NewClause(NewAtom(NewQualifiedName("f"), NewNumberConstant(1))), "f(1)."},
		{
			"rule",
			NewClause(NewAtom(NewQualifiedName("p"), NewVariable("x")),
				NewAtom(NewQualifiedName("q"), NewVariable("x")),
				NewBinaryConstraint(ConstraintGT, NewVariable("x"), NewNumberConstant(0))),
			"p(x) :- q(x), x > 0.",
		},
	}

	for _, tc := range tests {
		if got := tc.input.String(); got != tc.expected {
			t.Errorf("%s: expected %q but got %q", tc.note, tc.expected, got)
		}
	}
}
