package provider

import (
	"context"
	"encoding/json"
	"fmt"

	"docs-assistant/internal/extractor"
	"docs-assistant/internal/jsonrepair"
	"docs-assistant/internal/logger"
	"docs-assistant/internal/schema"
	"docs-assistant/internal/types"
)

const refereeSystemPrompt = `You review structured edit instructions produced by another model.
Given an edit instruction as JSON, decide whether it is well-formed and
faithful to its stated reasoning. Reply with JSON only:
{"approved": true}
or
{"approved": false, "edit": { ...corrected instruction... }}`

// refereeVerdict is the wire shape of a referee reply.
type refereeVerdict struct {
	Approved bool                   `json:"approved"`
	Edit     *types.EditInstruction `json:"edit"`
}

// ModelReferee checks an edit instruction by asking a second model for a
// verdict. A corrected instruction is only adopted when it passes the same
// shape validation as the original.
type ModelReferee struct {
	generator Generator
}

// NewModelReferee creates a referee backed by the given generator.
func NewModelReferee(g Generator) *ModelReferee {
	return &ModelReferee{generator: g}
}

// Review implements corrector.Referee.
func (r *ModelReferee) Review(ctx context.Context, edit *types.EditInstruction) (*types.EditInstruction, bool, error) {
	payload, err := json.Marshal(edit)
	if err != nil {
		return nil, false, types.NewAppError(types.ErrInternal, "failed to marshal instruction for review", err)
	}

	reply, err := r.generator.Generate(ctx, []types.ChatMessage{
		{Role: "system", Content: refereeSystemPrompt},
		{Role: "user", Content: fmt.Sprintf("Review this edit instruction:\n%s", payload)},
	})
	if err != nil {
		return nil, false, err
	}

	verdictJSON := extractor.Extract(reply)
	if !json.Valid([]byte(verdictJSON)) {
		verdictJSON = jsonrepair.Repair(verdictJSON)
	}

	var verdict refereeVerdict
	if err := json.Unmarshal([]byte(verdictJSON), &verdict); err != nil {
		return nil, false, types.NewAppError(types.ErrAPICall, "referee verdict is not valid JSON", err)
	}

	if verdict.Approved {
		return nil, true, nil
	}
	if verdict.Edit == nil {
		// Disapproval without a replacement carries no usable signal.
		logger.Debug("referee disapproved without a correction")
		return nil, true, nil
	}
	if err := schema.ValidateInstruction(verdict.Edit); err != nil {
		logger.Warn("referee correction failed validation, keeping original", logger.Err(err))
		return nil, true, nil
	}

	return verdict.Edit, false, nil
}
