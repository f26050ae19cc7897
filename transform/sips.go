// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package transform

import "github.com/stratlog/stratlog/ast"

// SIPS is the sideways information passing strategy: given the body atoms
// not yet placed, it picks the next atom to adorn. Placement order decides
// which argument positions count as bound, so the strategy shapes every
// adornment downstream.
type SIPS interface {
	Name() string

	// NextAtom returns the index into atoms of the next atom to place.
	// placed[i] marks atoms already consumed; at least one unplaced atom
	// remains when NextAtom is called.
	NextAtom(atoms []*ast.Atom, placed []bool, store *BindingStore, isEDB func(ast.QualifiedName) bool) int
}

// LeftToRight places atoms in source order.
type LeftToRight struct{}

// Name returns the strategy name.
func (LeftToRight) Name() string { return "left-to-right" }

// NextAtom returns the first unplaced atom.
func (LeftToRight) NextAtom(atoms []*ast.Atom, placed []bool, _ *BindingStore, _ func(ast.QualifiedName) bool) int {
	for i := range atoms {
		if !placed[i] {
			return i
		}
	}
	return -1
}

// MaxBound prefers the atom with the most already-bound arguments, breaking
// ties towards EDB relations and then source order.
type MaxBound struct{}

// Name returns the strategy name.
func (MaxBound) Name() string { return "max-bound" }

// NextAtom scans the unplaced atoms for the best candidate.
func (MaxBound) NextAtom(atoms []*ast.Atom, placed []bool, store *BindingStore, isEDB func(ast.QualifiedName) bool) int {
	best := -1
	bestBound := -1
	bestEDB := false
	for i, atom := range atoms {
		if placed[i] {
			continue
		}
		bound := 0
		for _, arg := range atom.Args {
			if v, ok := arg.(*ast.Variable); ok && store.IsBound(v.Name) {
				bound++
			}
		}
		edb := isEDB != nil && isEDB(atom.Name)
		if bound > bestBound || (bound == bestBound && edb && !bestEDB) {
			best, bestBound, bestEDB = i, bound, edb
		}
	}
	return best
}
