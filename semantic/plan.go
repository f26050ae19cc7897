// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package semantic

import (
	"fmt"
	"sort"

	"github.com/stratlog/stratlog/analysis"
	"github.com/stratlog/stratlog/report"
)

// CheckExecutionPlans is the separate pass validating plan version numbers:
// a recursive clause evaluates one version per body atom in the head's
// stratum, so a plan naming a version at or beyond that count can never
// run.
func CheckExecutionPlans(tu *analysis.TranslationUnit) {
	graph := tu.Precedence()
	for _, clause := range tu.Program.Clauses {
		if clause.Plan == nil || clause.Head == nil || !tu.Recursive(clause) {
			continue
		}
		head := clause.Head.Name.String()
		versions := 0
		for _, atom := range clause.Atoms() {
			if graph.SameSCC(atom.Name.String(), head) {
				versions++
			}
		}
		if clause.Plan.MaxVersion() < versions {
			continue
		}
		planVersions := make([]int, 0, len(clause.Plan.Orders))
		for version := range clause.Plan.Orders {
			planVersions = append(planVersions, version)
		}
		sort.Ints(planVersions)
		for _, version := range planVersions {
			if version < versions {
				continue
			}
			tu.Report.AddDiagnostic(&report.Diagnostic{
				Severity: report.Error,
				Primary: report.Message{
					Text: fmt.Sprintf("execution plan for version %d", version),
					Loc:  clause.Plan.Orders[version].Loc(),
				},
				Secondary: []report.Message{
					{Text: fmt.Sprintf("only versions 0..%d permitted", versions-1)},
				},
			})
		}
	}
}
