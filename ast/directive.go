// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package ast

import (
	"fmt"
	"sort"
	"strings"
)

// DirectiveKind distinguishes the I/O directive variants.
type DirectiveKind int

const (
	InputDirective DirectiveKind = iota
	OutputDirective
	PrintsizeDirective
)

func (k DirectiveKind) String() string {
	switch k {
	case InputDirective:
		return ".input"
	case OutputDirective:
		return ".output"
	case PrintsizeDirective:
		return ".printsize"
	}
	return "???"
}

// Directive attaches an I/O obligation to a relation, with free-form
// key-value parameters interpreted by the I/O back-ends.
type Directive struct {
	node
	Kind   DirectiveKind
	Name   QualifiedName
	Params map[string]string
}

// NewDirective returns a fresh I/O directive.
func NewDirective(kind DirectiveKind, name QualifiedName) *Directive {
	return &Directive{node: newNode(), Kind: kind, Name: name, Params: map[string]string{}}
}

// Param returns a parameter value and whether it was present.
func (d *Directive) Param(key string) (string, bool) {
	v, ok := d.Params[key]
	return v, ok
}

// SetParam sets a parameter value.
func (d *Directive) SetParam(key, value string) {
	if d.Params == nil {
		d.Params = map[string]string{}
	}
	d.Params[key] = value
}

func (d *Directive) String() string {
	s := fmt.Sprintf("%v %v", d.Kind, d.Name)
	if len(d.Params) > 0 {
		keys := make([]string, 0, len(d.Params))
		for k := range d.Params {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = fmt.Sprintf("%s=%q", k, d.Params[k])
		}
		s += "(" + strings.Join(parts, ", ") + ")"
	}
	return s
}
