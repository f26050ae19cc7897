// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import "strings"

// QualifiedName is the ordered sequence of components naming a relation,
// type, or directive target. Rewrite passes mint fresh namespaces by
// prepending reserved components such as "@magic" or "@neglabel", and the
// adornment pass appends a trailing "{bf...}" component; the first
// component's prefix therefore encodes which rewrite layer introduced the
// name.
type QualifiedName []string

// NewQualifiedName builds a qualified name from its components.
func NewQualifiedName(components ...string) QualifiedName {
	return QualifiedName(components)
}

// ParseQualifiedName splits a dotted name string into its components.
func ParseQualifiedName(s string) QualifiedName {
	return QualifiedName(strings.Split(s, "."))
}

// Prepend returns a copy of the name with an extra leading component.
func (n QualifiedName) Prepend(component string) QualifiedName {
	cpy := make(QualifiedName, 0, len(n)+1)
	cpy = append(cpy, component)
	cpy = append(cpy, n...)
	return cpy
}

// Append returns a copy of the name with an extra trailing component.
func (n QualifiedName) Append(component string) QualifiedName {
	cpy := make(QualifiedName, 0, len(n)+1)
	cpy = append(cpy, n...)
	cpy = append(cpy, component)
	return cpy
}

// Equal returns true if both names have the same components.
func (n QualifiedName) Equal(other QualifiedName) bool {
	if len(n) != len(other) {
		return false
	}
	for i := range n {
		if n[i] != other[i] {
			return false
		}
	}
	return true
}

// First returns the leading component, or "" for the empty name.
func (n QualifiedName) First() string {
	if len(n) == 0 {
		return ""
	}
	return n[0]
}

// Last returns the trailing component, or "" for the empty name.
func (n QualifiedName) Last() string {
	if len(n) == 0 {
		return ""
	}
	return n[len(n)-1]
}

// String renders the name with dot-separated components. A trailing
// adornment component "{...}" attaches directly to the preceding component,
// so the adorned copy of p prints as "p{bf}" rather than "p.{bf}".
func (n QualifiedName) String() string {
	var b strings.Builder
	for i, c := range n {
		if i > 0 && !strings.HasPrefix(c, "{") {
			b.WriteByte('.')
		}
		b.WriteString(c)
	}
	return b.String()
}
