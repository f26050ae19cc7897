// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package util provides small generic helpers shared across the compiler.
package util

// T is a shorthand for any.
type T = interface{}

// Traversal defines a basic interface to perform traversals.
type Traversal interface {

	// Edges should return the neighbours of node "u".
	Edges(u T) []T

	// Visited should return true if node "u" has already been visited in this
	// traversal. If the same traversal is used multiple times, the state that
	// tracks visited nodes should be reset.
	Visited(u T) bool

	// Equals should return true if node "u" equals node "v".
	Equals(u T, v T) bool
}

// DFS returns a path from node a to node z found by performing a depth first
// traversal. If no path is found, an empty slice is returned.
func DFS(t Traversal, a, z T) []T {
	p := dfsRecursive(t, a, z, []T{})
	for i := len(p)/2 - 1; i >= 0; i-- {
		o := len(p) - i - 1
		p[i], p[o] = p[o], p[i]
	}
	return p
}

func dfsRecursive(t Traversal, u, z T, path []T) []T {
	if t.Visited(u) {
		return path
	}
	for _, v := range t.Edges(u) {
		if t.Equals(v, z) {
			return append(path, z, u)
		}
		if p := dfsRecursive(t, v, z, path); len(p) > 0 {
			return append(p, u)
		}
	}
	return path
}
