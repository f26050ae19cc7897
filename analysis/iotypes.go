// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package analysis

import "github.com/stratlog/stratlog/ast"

// IOTypes records which relations are inputs, outputs, or printsize
// targets, combining relation qualifiers with I/O directives.
type IOTypes struct {
	input     map[string]bool
	output    map[string]bool
	printsize map[string]bool
}

// NewIOTypes derives the I/O classification for a program.
func NewIOTypes(p *ast.Program) *IOTypes {
	io := &IOTypes{
		input:     map[string]bool{},
		output:    map[string]bool{},
		printsize: map[string]bool{},
	}
	for _, rel := range p.Relations {
		name := rel.Name.String()
		if rel.HasQualifier(ast.InputQualifier) {
			io.input[name] = true
		}
		if rel.HasQualifier(ast.OutputQualifier) {
			io.output[name] = true
		}
		if rel.HasQualifier(ast.PrintsizeQualifier) {
			io.printsize[name] = true
		}
	}
	for _, d := range p.Directives {
		name := d.Name.String()
		switch d.Kind {
		case ast.InputDirective:
			io.input[name] = true
		case ast.OutputDirective:
			io.output[name] = true
		case ast.PrintsizeDirective:
			io.printsize[name] = true
		}
	}
	return io
}

// IsInput reports whether the relation is read from an input source.
func (io *IOTypes) IsInput(name ast.QualifiedName) bool {
	return io.input[name.String()]
}

// IsOutput reports whether the relation is written to an output sink.
func (io *IOTypes) IsOutput(name ast.QualifiedName) bool {
	return io.output[name.String()]
}

// IsPrintsize reports whether the relation's cardinality is printed.
func (io *IOTypes) IsPrintsize(name ast.QualifiedName) bool {
	return io.printsize[name.String()]
}

// IsIO reports whether the relation takes part in any I/O.
func (io *IOTypes) IsIO(name ast.QualifiedName) bool {
	return io.IsInput(name) || io.IsOutput(name) || io.IsPrintsize(name)
}
