// Package corrector re-examines structurally valid edit instructions for
// semantic defects and rewrites them in place. Each pass is independent and
// composable; later passes see the output of earlier ones.
package corrector

import (
	"context"

	"docs-assistant/internal/logger"
	"docs-assistant/internal/types"
)

// Pass is a single correction step. Apply may rewrite the instruction in
// place and reports whether it changed anything. A pass must leave a
// structurally valid instruction valid.
type Pass interface {
	Name() string
	Apply(ctx context.Context, edit *types.EditInstruction) (bool, error)
}

// Pipeline runs a sequence of correction passes over an instruction.
type Pipeline struct {
	passes []Pass
}

// NewPipeline creates a Pipeline running the given passes in order.
func NewPipeline(passes ...Pass) *Pipeline {
	return &Pipeline{passes: passes}
}

// Default returns the deterministic correction pipeline: pattern detection,
// formula syntax, then completeness.
func Default() *Pipeline {
	return NewPipeline(
		&PatternPass{},
		&FormulaSyntaxPass{},
		&CompletenessPass{},
	)
}

// Run applies every pass in order. Pass errors abort the run; the
// instruction may have been partially corrected at that point, so callers
// must treat an error as fatal for the whole proposal.
func (p *Pipeline) Run(ctx context.Context, edit *types.EditInstruction) error {
	for _, pass := range p.passes {
		changed, err := pass.Apply(ctx, edit)
		if err != nil {
			logger.Error("correction pass failed", err, logger.String("pass", pass.Name()))
			return err
		}
		if changed {
			logger.Info("correction pass rewrote instruction",
				logger.String("pass", pass.Name()),
				logger.String("kind", string(edit.Kind)))
		}
	}
	return nil
}
