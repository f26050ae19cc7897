// Copyright 2025 The Stratlog Authors.  All rights reserved.
// Use of this source code is governed by an Apache2
// license that can be found in the LICENSE file.

// Package transform implements the program-to-program rewrites of the
// magic-set pipeline: database normalisation, adornment, stratification
// labelling, and the magic-set rewrite itself. Every pass is idempotent and
// reports whether it changed the program; the pipeline invalidates the
// translation unit's analyses after each change.
package transform

import (
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/stratlog/stratlog/analysis"
	"github.com/stratlog/stratlog/config"
)

// Transformer rewrites a translation unit in place.
type Transformer interface {
	Name() string
	Transform(tu *analysis.TranslationUnit) bool
}

// Pipeline runs transformers in order. It is itself a Transformer, so
// pipelines compose.
type Pipeline struct {
	name   string
	passes []Transformer
	stop   atomic.Bool
}

// NewPipeline returns a pipeline over the given passes.
func NewPipeline(name string, passes ...Transformer) *Pipeline {
	return &Pipeline{name: name, passes: passes}
}

// Name returns the pipeline's name.
func (p *Pipeline) Name() string { return p.name }

// Stop requests cancellation; the pipeline checks the flag between passes.
func (p *Pipeline) Stop() { p.stop.Store(true) }

// Transform runs every pass in order, invalidating the unit's analyses
// whenever a pass reports a change.
func (p *Pipeline) Transform(tu *analysis.TranslationUnit) bool {
	changed := false
	for _, pass := range p.passes {
		if p.stop.Load() {
			logrus.WithField("pipeline", p.name).Debug("transform pipeline cancelled")
			break
		}
		passChanged := pass.Transform(tu)
		logrus.WithFields(logrus.Fields{
			"pass":    pass.Name(),
			"changed": passChanged,
		}).Debug("transform pass complete")
		if passChanged {
			tu.InvalidateAnalyses()
			changed = true
		}
	}
	return changed
}

// MagicSetPipeline assembles the demand-driven rewrite: normalise the
// database, adorn with the given strategy, label for stratified negation,
// then generate magic relations and supplementary rules.
func MagicSetPipeline(cfg *config.Config, sips SIPS) *Pipeline {
	return NewPipeline("magic-set",
		NewNormaliseDatabase(),
		NewAdornDatabase(cfg, sips),
		NewLabelDatabase(),
		NewMagicSet(),
	)
}
