package corrector

import (
	"context"
	"time"

	"docs-assistant/internal/logger"
	"docs-assistant/internal/types"
)

// Referee is a secondary model invocation used purely to check, and possibly
// correct, a primary model's structured output. Implementations live behind
// this interface so the pipeline never depends on a live network collaborator.
type Referee interface {
	// Review returns a verdict on the instruction. When ok is false the
	// referee disagrees and corrected (if non-nil) is its replacement.
	Review(ctx context.Context, edit *types.EditInstruction) (corrected *types.EditInstruction, ok bool, err error)
}

// DefaultRefereeTimeout bounds a single referee round-trip.
const DefaultRefereeTimeout = 20 * time.Second

// RefereePass wraps a Referee as an ordinary correction pass. It fails open:
// a referee error or timeout leaves the original instruction untouched, so a
// referee outage never blocks the user from editing.
type RefereePass struct {
	Referee Referee
	Timeout time.Duration
}

// NewRefereePass creates a RefereePass with the default timeout.
func NewRefereePass(referee Referee) *RefereePass {
	return &RefereePass{Referee: referee, Timeout: DefaultRefereeTimeout}
}

// Name implements Pass.
func (p *RefereePass) Name() string { return "referee" }

// Apply implements Pass.
func (p *RefereePass) Apply(ctx context.Context, edit *types.EditInstruction) (bool, error) {
	if p.Referee == nil {
		return false, nil
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultRefereeTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	corrected, ok, err := p.Referee.Review(ctx, edit)
	if err != nil {
		logger.Warn("referee check failed, keeping original instruction", logger.Err(err))
		return false, nil
	}
	if ok || corrected == nil {
		return false, nil
	}

	// Preserve the UI-owned lifecycle state across the replacement.
	status := edit.Status
	*edit = *corrected
	edit.Status = status
	logger.Info("referee corrected instruction", logger.String("kind", string(edit.Kind)))
	return true, nil
}
