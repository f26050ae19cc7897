// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/stratlog/stratlog/analysis"
	"github.com/stratlog/stratlog/report"
	"github.com/stratlog/stratlog/semantic"
	"github.com/stratlog/stratlog/transform"
)

var (
	flagOutput string
	flagSIPS   string
)

func init() {
	transformCommand.Flags().StringVarP(&flagOutput, "output", "o", "", "write the rewritten program here instead of stdout")
	transformCommand.Flags().StringVar(&flagSIPS, "sips", "max-bound", "sideways information passing strategy (max-bound or left-to-right)")
	RootCommand.AddCommand(transformCommand)
}

var transformCommand = &cobra.Command{
	Use:   "transform <program.json>",
	Short: "Rewrite a program into demand-driven form",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		program, err := loadProgram(args[0])
		if err != nil {
			return err
		}

		var sips transform.SIPS
		switch flagSIPS {
		case "max-bound":
			sips = transform.MaxBound{}
		case "left-to-right":
			sips = transform.LeftToRight{}
		default:
			return fmt.Errorf("unknown SIPS %q", flagSIPS)
		}

		rep := report.NewReport()
		tu := analysis.NewTranslationUnit(program, rep)
		cfg := buildConfig()
		if !cfg.Has("magic-transform") {
			cfg.Set("magic-transform", "*")
		}

		checker := semantic.NewChecker(tu, cfg)
		checker.Check()
		semantic.CheckExecutionPlans(tu)
		if checker.DisableSubprogramCompilation {
			cfg.Unset("engine")
		}
		if rep.ErrorCount() > 0 {
			printDiagnostics(rep)
			return fmt.Errorf("%d error(s) reported, not transforming", rep.ErrorCount())
		}

		transform.MagicSetPipeline(cfg, sips).Transform(tu)

		bs, err := json.MarshalIndent(tu.Program, "", "  ")
		if err != nil {
			return err
		}
		bs = append(bs, '\n')
		if flagOutput == "" {
			_, err = os.Stdout.Write(bs)
			return err
		}
		return os.WriteFile(flagOutput, bs, 0o644)
	},
}
