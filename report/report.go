// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package report implements the append-only diagnostic sink shared by the
// semantic checks and the transformation passes. Checks accumulate
// diagnostics and continue; nothing in the compiler aborts on the first
// error.
package report

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/stratlog/stratlog/ast"
)

// Severity classifies a diagnostic.
type Severity int

const (
	Error Severity = iota
	Warning
)

func (s Severity) String() string {
	if s == Warning {
		return "Warning"
	}
	return "Error"
}

// Message is a single line of a diagnostic with an optional source location.
type Message struct {
	Text string
	Loc  *ast.Location
}

func (m Message) String() string {
	if m.Loc == nil {
		return m.Text
	}
	return fmt.Sprintf("%s in %v", m.Text, m.Loc)
}

// Diagnostic is a primary message with optional secondary notes.
type Diagnostic struct {
	Severity  Severity
	Primary   Message
	Secondary []Message
}

func (d *Diagnostic) String() string {
	var b strings.Builder
	b.WriteString(d.Severity.String())
	b.WriteString(": ")
	b.WriteString(d.Primary.String())
	for _, m := range d.Secondary {
		b.WriteString("\n  ")
		b.WriteString(m.String())
	}
	return b.String()
}

// Report collects diagnostics. It is safe for concurrent appends, and
// appends never fail.
type Report struct {
	mu    sync.Mutex
	diags []*Diagnostic
}

// NewReport returns an empty report.
func NewReport() *Report {
	return &Report{}
}

// AddError appends an error diagnostic.
func (r *Report) AddError(text string, loc *ast.Location) {
	r.AddDiagnostic(&Diagnostic{Severity: Error, Primary: Message{Text: text, Loc: loc}})
}

// AddWarning appends a warning diagnostic.
func (r *Report) AddWarning(text string, loc *ast.Location) {
	r.AddDiagnostic(&Diagnostic{Severity: Warning, Primary: Message{Text: text, Loc: loc}})
}

// AddDiagnostic appends a fully formed diagnostic.
func (r *Report) AddDiagnostic(d *Diagnostic) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.diags = append(r.diags, d)
}

// Diagnostics returns a snapshot of the accumulated diagnostics.
func (r *Report) Diagnostics() []*Diagnostic {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Diagnostic(nil), r.diags...)
}

// ErrorCount returns the number of error diagnostics.
func (r *Report) ErrorCount() int {
	return r.count(Error)
}

// WarningCount returns the number of warning diagnostics.
func (r *Report) WarningCount() int {
	return r.count(Warning)
}

func (r *Report) count(s Severity) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, d := range r.diags {
		if d.Severity == s {
			n++
		}
	}
	return n
}

// String renders the diagnostics sorted by severity, then source location.
func (r *Report) String() string {
	diags := r.Diagnostics()
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Severity != diags[j].Severity {
			return diags[i].Severity < diags[j].Severity
		}
		return diags[i].Primary.Loc.Before(diags[j].Primary.Loc)
	})
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = d.String()
	}
	return strings.Join(parts, "\n")
}
