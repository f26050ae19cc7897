// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/stratlog/stratlog/analysis"
	"github.com/stratlog/stratlog/ast"
	"github.com/stratlog/stratlog/report"
	"github.com/stratlog/stratlog/semantic"
)

func init() {
	RootCommand.AddCommand(checkCommand)
}

var checkCommand = &cobra.Command{
	Use:   "check <program.json>",
	Short: "Run the semantic checks over a parsed program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		program, err := loadProgram(args[0])
		if err != nil {
			return err
		}
		rep := report.NewReport()
		tu := analysis.NewTranslationUnit(program, rep)
		cfg := buildConfig()

		checker := semantic.NewChecker(tu, cfg)
		checker.Check()
		semantic.CheckExecutionPlans(tu)
		if checker.DisableSubprogramCompilation {
			cfg.Unset("engine")
		}

		printDiagnostics(rep)
		if rep.ErrorCount() > 0 {
			return fmt.Errorf("%d error(s) reported", rep.ErrorCount())
		}
		return nil
	},
}

func loadProgram(path string) (*ast.Program, error) {
	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var program ast.Program
	if err := json.Unmarshal(bs, &program); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &program, nil
}

func printDiagnostics(rep *report.Report) {
	if s := rep.String(); s != "" {
		fmt.Fprintln(os.Stderr, s)
	}
	table := tablewriter.NewWriter(os.Stderr)
	table.SetHeader([]string{"Severity", "Count"})
	table.Append([]string{"errors", fmt.Sprint(rep.ErrorCount())})
	table.Append([]string{"warnings", fmt.Sprint(rep.WarningCount())})
	table.Render()
}
