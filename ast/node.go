// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package ast declares the abstract syntax tree of the Datalog dialect
// compiled by this project, together with generic traversal and rewriting
// helpers. The parser is a trusted producer of this shape; the semantic
// checker reads it, and the transformation passes mutate it.
package ast

import "sync/atomic"

// NodeID identifies a single AST node. Analyses that need to attach results
// to individual argument occurrences (grounding, type inference) key their
// maps by NodeID rather than by structural equality: two structurally equal
// nodes at different positions carry distinct ids. Cloning a node always
// assigns fresh ids.
type NodeID uint64

var nodeIDCounter atomic.Uint64

func nextNodeID() NodeID {
	return NodeID(nodeIDCounter.Add(1))
}

// Node is implemented by every AST element that carries an identity and a
// source location.
type Node interface {
	ID() NodeID
	Loc() *Location
	SetLoc(*Location)
}

// node is the common base embedded by all AST elements.
type node struct {
	id  NodeID
	loc *Location
}

func newNode() node {
	return node{id: nextNodeID()}
}

// ID returns the node's identity, assigning one lazily for nodes built as
// bare composite literals.
func (n *node) ID() NodeID {
	if n.id == 0 {
		n.id = nextNodeID()
	}
	return n.id
}

func (n *node) Loc() *Location { return n.loc }

func (n *node) SetLoc(loc *Location) { n.loc = loc }
