// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package semantic implements the validation pass that judges a parsed
// program well-formed. The checker walks the program once per concern,
// accumulating diagnostics on the report; it never aborts and mutates the
// AST only to set the suppressed qualifier on relations muted by
// configuration.
package semantic

import (
	"github.com/stratlog/stratlog/analysis"
	"github.com/stratlog/stratlog/ast"
	"github.com/stratlog/stratlog/config"
)

// Number constants live in a closed 32-bit signed domain.
const (
	MinNumberConstant = -2147483648
	MaxNumberConstant = 2147483647
)

// Checker drives all semantic checks over a translation unit.
type Checker struct {
	tu  *analysis.TranslationUnit
	cfg *config.Config

	// DisableSubprogramCompilation is raised when the program uses record
	// types, which the subprogram engine cannot evaluate. The driver decides
	// what to do with it (typically unsetting the "engine" configuration).
	DisableSubprogramCompilation bool

	stages []stage

	aggrVarCounter int
}

type stage struct {
	name string
	f    func()
}

// NewChecker returns a checker over the given translation unit. cfg may be
// nil.
func NewChecker(tu *analysis.TranslationUnit, cfg *config.Config) *Checker {
	if cfg == nil {
		cfg = config.New()
	}
	c := &Checker{tu: tu, cfg: cfg}
	c.stages = []stage{
		{"applyWarningSuppression", c.applyWarningSuppression},
		{"checkTypeDeclarations", c.checkTypeDeclarations},
		{"checkRelationDeclarations", c.checkRelationDeclarations},
		{"checkNamespaces", c.checkNamespaces},
		{"checkIODirectives", c.checkIODirectives},
		{"checkClauses", c.checkClauses},
		{"checkGrounding", c.checkGrounding},
		{"checkTypes", c.checkTypes},
		{"checkStratification", c.checkStratification},
		{"checkWitnessProblem", c.checkWitnessProblem},
		{"checkInlining", c.checkInlining},
	}
	return c
}

// Check runs every stage. Unlike a compiler front-end, no stage short
// circuits the rest: all diagnostics are accumulated in one run.
func (c *Checker) Check() {
	for _, s := range c.stages {
		s.f()
	}
}

// applyWarningSuppression sets the suppressed qualifier on relations named
// by the suppress-warnings option; the token "*" mutes every relation.
func (c *Checker) applyWarningSuppression() {
	if !c.cfg.Has("suppress-warnings") {
		return
	}
	for _, entry := range c.cfg.List("suppress-warnings") {
		if entry == "*" {
			for _, rel := range c.tu.Program.Relations {
				rel.SetQualifier(ast.SuppressedQualifier)
			}
			return
		}
	}
	for _, entry := range c.cfg.List("suppress-warnings") {
		if rel := c.tu.Program.Relation(ast.ParseQualifiedName(entry)); rel != nil {
			rel.SetQualifier(ast.SuppressedQualifier)
		}
	}
}

func (c *Checker) err(text string, loc *ast.Location) {
	c.tu.Report.AddError(text, loc)
}

func (c *Checker) warn(text string, loc *ast.Location) {
	c.tu.Report.AddWarning(text, loc)
}
