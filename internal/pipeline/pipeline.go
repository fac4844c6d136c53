// Package pipeline wires the edit-proposal stages together: extraction,
// repair, schema validation, semantic correction, location and planning.
// Every stage fails closed; a failure aborts the rest of the pipeline and
// the mutation collaborator is never called with a partial plan.
package pipeline

import (
	"context"
	"encoding/json"
	"strings"

	"docs-assistant/internal/corrector"
	"docs-assistant/internal/docs"
	"docs-assistant/internal/extractor"
	"docs-assistant/internal/jsonrepair"
	"docs-assistant/internal/locator"
	"docs-assistant/internal/logger"
	"docs-assistant/internal/planner"
	"docs-assistant/internal/schema"
	"docs-assistant/internal/types"
)

// Outcome classifies what a raw model reply turned out to be.
type Outcome string

const (
	// OutcomeEdit means the reply carried a valid edit proposal.
	OutcomeEdit Outcome = "edit"
	// OutcomeChat means the reply is ordinary conversation text.
	OutcomeChat Outcome = "chat"
)

// Result is the product of processing one raw model reply.
type Result struct {
	Outcome Outcome
	// Response is the conversational text to show the user. For chat
	// outcomes this is the raw reply; for edits it is the reply's response
	// field.
	Response string
	// Edit is the normalized instruction, pending user approval. Nil for
	// chat outcomes.
	Edit *types.EditInstruction
	// Repaired reports whether the JSON payload needed repair.
	Repaired bool
	// Downgrade records why an edit-looking reply was demoted to chat
	// (NOT_AN_EDIT or MALFORMED_INSTRUCTION). Empty otherwise.
	Downgrade types.ErrorCode
}

// Pipeline processes raw model replies into pending edit proposals. It holds
// no mutable state, so one Pipeline may serve concurrent chat turns.
type Pipeline struct {
	corrector *corrector.Pipeline
}

// New creates a Pipeline with the given correction passes.
func New(c *corrector.Pipeline) *Pipeline {
	if c == nil {
		c = corrector.Default()
	}
	return &Pipeline{corrector: c}
}

// ProcessReply turns a raw model reply into either a pending edit proposal
// or plain chat text. A reply whose payload cannot be repaired into JSON, or
// that lacks the response/edit envelope, is downgraded to chat rather than
// surfaced as a crash. A reply that clearly carries an edit of an unknown or
// malformed shape is rejected with ErrSchema.
func (p *Pipeline) ProcessReply(ctx context.Context, raw string) (*Result, error) {
	payload := extractor.Extract(raw)

	// Replies with no object-like region are ordinary conversation, not a
	// malformation worth logging.
	if !strings.Contains(payload, "{") {
		return &Result{Outcome: OutcomeChat, Response: raw}, nil
	}

	repaired := false
	if !json.Valid([]byte(payload)) {
		fixed := jsonrepair.Repair(payload)
		if fixed == payload {
			logger.Warn("reply payload could not be repaired, treating as chat",
				logger.Int("payloadLength", len(payload)))
			return &Result{
				Outcome:   OutcomeChat,
				Response:  raw,
				Downgrade: types.ErrMalformed,
			}, nil
		}
		payload = fixed
		repaired = true
		logger.Info("reply payload repaired", logger.Int("payloadLength", len(payload)))
	}

	reply, err := schema.ParseReply(payload)
	if err != nil {
		if types.CodeOf(err) == types.ErrNotAnEdit {
			logger.Debug("reply is not an edit proposal")
			return &Result{
				Outcome:   OutcomeChat,
				Response:  raw,
				Repaired:  repaired,
				Downgrade: types.ErrNotAnEdit,
			}, nil
		}
		logger.Error("edit rejected by schema validation", err)
		return nil, err
	}

	if err := p.corrector.Run(ctx, reply.Edit); err != nil {
		return nil, err
	}

	reply.Edit.Status = types.StatusPending
	logger.Info("edit proposal ready",
		logger.String("kind", string(reply.Edit.Kind)),
		logger.String("confidence", string(reply.Edit.Confidence)),
		logger.Bool("repaired", repaired))

	return &Result{
		Outcome:  OutcomeEdit,
		Response: reply.Response,
		Edit:     reply.Edit,
		Repaired: repaired,
	}, nil
}

// PlanEdit locates the edit's target in the document snapshot when the kind
// requires one, then translates the instruction into primitive operations.
// doc may be nil for spreadsheet kinds. The returned match is nil when the
// kind needed none.
func (p *Pipeline) PlanEdit(edit *types.EditInstruction, doc *docs.Document) ([]docs.Request, *locator.MatchResult, error) {
	var match *locator.MatchResult

	if needsLocation(edit) {
		if doc == nil {
			return nil, nil, types.NewAppError(types.ErrInternal,
				"document edit requires a document snapshot", nil)
		}
		m, err := locator.Locate(doc.Content, edit.FindText)
		if err != nil {
			logger.Warn("edit target could not be located",
				logger.String("kind", string(edit.Kind)))
			return nil, nil, err
		}
		match = m
	}

	batch, err := planner.Plan(edit, doc, match)
	if err != nil {
		return nil, nil, err
	}
	return batch, match, nil
}

// needsLocation reports whether the edit kind resolves its target through
// the fuzzy locator.
func needsLocation(edit *types.EditInstruction) bool {
	switch edit.Kind {
	case types.EditReplace, types.EditDelete:
		return true
	}
	return false
}
