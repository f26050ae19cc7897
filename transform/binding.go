// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package transform

import (
	"sort"

	"github.com/stratlog/stratlog/ast"
)

// BindingStore tracks which variables of a clause are bound while the
// adornment pass places atoms in the order its SIPS chooses. Composite
// values bound through an equality with a record or functor bind
// indirectly: the composite
// variable counts as bound once every variable it depends on is bound, and
// vice versa a bound composite binds its components.
type BindingStore struct {
	bound     map[string]bool
	headBound map[string]bool
	// deps holds, per variable, the alternative sets of variables that can
	// bind it through a composite equality
	deps map[string][][]string
}

// NewBindingStore returns a store primed with the composite binding
// dependencies of the clause.
func NewBindingStore(clause *ast.Clause) *BindingStore {
	s := &BindingStore{
		bound:     map[string]bool{},
		headBound: map[string]bool{},
		deps:      map[string][][]string{},
	}
	if clause != nil {
		ast.WalkConstraints(clause, func(bc *ast.BinaryConstraint) {
			if !bc.Op.IsEquality() {
				return
			}
			s.addCompositeBinding(bc.LHS, bc.RHS)
			s.addCompositeBinding(bc.RHS, bc.LHS)
		})
	}
	return s
}

func (s *BindingStore) addCompositeBinding(varSide, compositeSide ast.Argument) {
	v, ok := varSide.(*ast.Variable)
	if !ok {
		return
	}
	switch compositeSide.(type) {
	case *ast.RecordInit, *ast.IntrinsicFunctor, *ast.UserDefinedFunctor:
		seen := map[string]bool{}
		var components []string
		ast.WalkVariables(compositeSide, func(sub *ast.Variable) {
			if !seen[sub.Name] {
				seen[sub.Name] = true
				components = append(components, sub.Name)
			}
		})
		sort.Strings(components)
		s.deps[v.Name] = append(s.deps[v.Name], components)
		// records are invertible: a bound composite variable binds its
		// components as well
		if _, isRecord := compositeSide.(*ast.RecordInit); isRecord {
			for _, component := range components {
				s.deps[component] = append(s.deps[component], []string{v.Name})
			}
		}
	}
}

// BindVariable marks a variable as bound.
func (s *BindingStore) BindVariable(name string) {
	s.bound[name] = true
}

// BindHeadVariable marks a variable bound by the head adornment.
func (s *BindingStore) BindHeadVariable(name string) {
	s.headBound[name] = true
	s.bound[name] = true
}

// IsBound reports whether a variable is bound, directly or through a
// composite dependency.
func (s *BindingStore) IsBound(name string) bool {
	return s.isBound(name, map[string]bool{})
}

func (s *BindingStore) isBound(name string, visiting map[string]bool) bool {
	if s.bound[name] {
		return true
	}
	if visiting[name] {
		return false
	}
	visiting[name] = true
	defer delete(visiting, name)
	for _, components := range s.deps[name] {
		all := len(components) > 0
		for _, component := range components {
			if !s.isBound(component, visiting) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// VariableDependencies returns the variables that can bind name through
// composite equalities, flattened and sorted.
func (s *BindingStore) VariableDependencies(name string) []string {
	seen := map[string]bool{}
	for _, components := range s.deps[name] {
		for _, component := range components {
			seen[component] = true
		}
	}
	out := make([]string, 0, len(seen))
	for component := range seen {
		out = append(out, component)
	}
	sort.Strings(out)
	return out
}
