// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package cmd implements the command line front-end. The parser lives
// outside this project; commands consume the JSON program encoding it
// produces.
package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stratlog/stratlog/config"
)

var (
	flagVerbose          bool
	flagConfigFile       string
	flagSuppressWarnings string
	flagMagicTransform   string
)

// RootCommand is the base command of the tool.
var RootCommand = &cobra.Command{
	Use:           "stratlog",
	Short:         "Datalog compiler middle-end",
	Long:          "stratlog validates Datalog programs and rewrites them into demand-driven form with the magic-set transformation.",
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logrus.SetLevel(logrus.InfoLevel)
		if flagVerbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
		if flagConfigFile != "" {
			viper.SetConfigFile(flagConfigFile)
			if err := viper.ReadInConfig(); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	RootCommand.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "enable debug logging")
	RootCommand.PersistentFlags().StringVar(&flagConfigFile, "config", "", "configuration file")
	RootCommand.PersistentFlags().StringVar(&flagSuppressWarnings, "suppress-warnings", "", "comma list of relations to mute warnings for, or *")
	RootCommand.PersistentFlags().StringVar(&flagMagicTransform, "magic-transform", "", "comma list of relations to magic-set, or *")
}

// buildConfig merges the configuration file with the command line flags;
// flags win.
func buildConfig() *config.Config {
	cfg := config.New()
	for _, key := range []string{"suppress-warnings", "magic-transform", "engine"} {
		if viper.IsSet(key) {
			cfg.Set(key, viper.GetString(key))
		}
	}
	if flagSuppressWarnings != "" {
		cfg.Set("suppress-warnings", flagSuppressWarnings)
	}
	if flagMagicTransform != "" {
		cfg.Set("magic-transform", flagMagicTransform)
	}
	return cfg
}

// Execute runs the root command. The process exits non-zero when any error
// diagnostic was reported or the command itself fails (unreadable input,
// unknown flag value).
func Execute() {
	if err := RootCommand.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}
