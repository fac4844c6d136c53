// Package chat drives the conversation loop: it sends user turns to the
// model together with the current file context, runs every reply through the
// edit-proposal pipeline, and carries approved proposals through to the
// mutation collaborator.
package chat

import (
	"context"
	"fmt"
	"strings"

	"docs-assistant/internal/docs"
	"docs-assistant/internal/locator"
	"docs-assistant/internal/logger"
	"docs-assistant/internal/parser"
	"docs-assistant/internal/pipeline"
	"docs-assistant/internal/preview"
	"docs-assistant/internal/proposal"
	"docs-assistant/internal/provider"
	"docs-assistant/internal/types"
)

const systemPromptTemplate = `You are an assistant that helps the user edit a %s titled %q.

When the user asks for a change, reply with a single JSON object:
{"response": "<what you did, in plain language>", "edit": {<edit instruction>}}

Document edit instructions use "type" values: replace, insert, delete, rewrite.
Spreadsheet edit instructions use: updateCell, updateRange, insertRow,
insertColumn, deleteRow, deleteColumn, updateFormula.
For replace and delete, findText must quote the target with a few words of
surrounding context. Include "confidence" (high, medium or low) and
"reasoning".

When the user is only conversing, answer in plain text with no JSON.

Current content:
%s`

// TurnResult is what one chat turn produced.
type TurnResult struct {
	// Response is the conversational text to show the user.
	Response string
	// Proposal is the pending edit record, nil for plain chat turns.
	Proposal *proposal.Record
	// Downgrade is set when an edit-looking reply was demoted to chat.
	Downgrade types.ErrorCode
}

// Assistant owns one editing conversation against one Drive file.
type Assistant struct {
	registry  *provider.Registry
	pipeline  *pipeline.Pipeline
	reader    docs.Reader
	mutator   docs.Mutator
	proposals *proposal.Manager
	modelID   string

	history []types.ChatMessage
}

// NewAssistant wires the conversation loop. modelID may be empty to use the
// registry default.
func NewAssistant(registry *provider.Registry, p *pipeline.Pipeline, reader docs.Reader,
	mutator docs.Mutator, proposals *proposal.Manager, modelID string) *Assistant {
	return &Assistant{
		registry:  registry,
		pipeline:  p,
		reader:    reader,
		mutator:   mutator,
		proposals: proposals,
		modelID:   modelID,
	}
}

// fileContext is the resolved read model for one turn.
type fileContext struct {
	ref         *parser.FileRef
	document    *docs.Document
	spreadsheet *docs.Spreadsheet
}

// Send runs one chat turn against the referenced file. The returned result
// either carries plain chat text or a pending proposal awaiting Accept or
// Reject.
func (a *Assistant) Send(ctx context.Context, fileRef, message string) (*TurnResult, error) {
	fc, err := a.resolveFile(ctx, fileRef)
	if err != nil {
		return nil, err
	}

	gen, err := a.registry.Get(a.modelID)
	if err != nil {
		return nil, err
	}

	messages := a.buildMessages(fc, message)
	raw, err := gen.Generate(ctx, messages)
	if err != nil {
		return nil, err
	}

	a.history = append(a.history,
		types.ChatMessage{Role: "user", Content: message},
		types.ChatMessage{Role: "assistant", Content: raw})

	result, err := a.pipeline.ProcessReply(ctx, raw)
	if err != nil {
		return nil, err
	}

	if result.Outcome == pipeline.OutcomeChat {
		return &TurnResult{Response: result.Response, Downgrade: result.Downgrade}, nil
	}

	pv, err := a.previewFor(fc, result.Edit)
	if err != nil {
		// Locating can legitimately fail here; the proposal is still recorded
		// so the user sees why it cannot be applied.
		logger.Warn("preview unavailable for proposal", logger.Err(err))
		pv = &preview.Preview{}
	}

	record, err := a.proposals.Create(fc.ref.ID, string(fc.ref.Kind), result.Response, pv.Diff, *result.Edit)
	if err != nil {
		return nil, err
	}

	logger.Info("edit proposal created",
		logger.String("proposalID", record.ID),
		logger.String("kind", string(result.Edit.Kind)))

	return &TurnResult{Response: result.Response, Proposal: record}, nil
}

// Accept applies a pending proposal. The target is re-fetched and re-located
// against a fresh snapshot so an edit never lands on stale offsets. A failed
// mutation reverts the proposal to pending for retry.
func (a *Assistant) Accept(ctx context.Context, proposalID string) (*proposal.Record, error) {
	record, ok := a.proposals.Get(proposalID)
	if !ok {
		return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput, "proposal not found", proposalID, nil)
	}
	if record.Status != types.StatusPending {
		return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput,
			"proposal already decided", string(record.Status), nil)
	}

	var doc *docs.Document
	if types.IsDocumentKind(record.Edit.Kind) {
		var err error
		doc, err = a.reader.FetchDocument(ctx, record.FileID)
		if err != nil {
			return nil, err
		}
	}

	batch, _, err := a.pipeline.PlanEdit(&record.Edit, doc)
	if err != nil {
		return nil, err
	}

	if err := a.mutator.ApplyBatch(ctx, record.FileID, batch); err != nil {
		logger.Error("mutation batch failed, proposal reverted to pending", err,
			logger.String("proposalID", proposalID))
		if markErr := a.proposals.MarkFailed(proposalID, err.Error()); markErr != nil {
			return nil, markErr
		}
		return nil, types.NewAppError(types.ErrMutation, "failed to apply edit", err)
	}

	if err := a.proposals.Accept(proposalID, batch); err != nil {
		return nil, err
	}

	logger.Info("proposal applied", logger.String("proposalID", proposalID))
	record, _ = a.proposals.Get(proposalID)
	return record, nil
}

// Reject discards a pending proposal.
func (a *Assistant) Reject(proposalID string) error {
	if err := a.proposals.Reject(proposalID); err != nil {
		return err
	}
	logger.Info("proposal rejected", logger.String("proposalID", proposalID))
	return nil
}

// resolveFile parses the file reference and fetches the matching read model.
// A bare ID is resolved by trying the document fetch first.
func (a *Assistant) resolveFile(ctx context.Context, fileRef string) (*fileContext, error) {
	ref, err := parser.ParseInput(fileRef)
	if err != nil {
		return nil, err
	}

	fc := &fileContext{ref: ref}
	switch ref.Kind {
	case parser.FileKindDocument:
		fc.document, err = a.reader.FetchDocument(ctx, ref.ID)
		if err != nil {
			return nil, err
		}

	case parser.FileKindSpreadsheet:
		fc.spreadsheet, err = a.reader.FetchSpreadsheet(ctx, ref.ID)
		if err != nil {
			return nil, err
		}

	default:
		fc.document, err = a.reader.FetchDocument(ctx, ref.ID)
		if err == nil {
			fc.ref.Kind = parser.FileKindDocument
			break
		}
		fc.spreadsheet, err = a.reader.FetchSpreadsheet(ctx, ref.ID)
		if err != nil {
			return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput,
				"file is neither a document nor a spreadsheet", ref.ID, err)
		}
		fc.ref.Kind = parser.FileKindSpreadsheet
	}

	return fc, nil
}

// buildMessages assembles the system prompt, prior turns and the new user
// message.
func (a *Assistant) buildMessages(fc *fileContext, message string) []types.ChatMessage {
	var kind, title, content string
	if fc.document != nil {
		kind = "document"
		title = fc.document.Title
		content = flattenDocument(fc.document)
	} else {
		kind = "spreadsheet"
		title = fc.spreadsheet.Title
		content = flattenSheet(&fc.spreadsheet.ActiveSheet)
	}

	messages := make([]types.ChatMessage, 0, len(a.history)+2)
	messages = append(messages, types.ChatMessage{
		Role:    "system",
		Content: fmt.Sprintf(systemPromptTemplate, kind, title, content),
	})
	messages = append(messages, a.history...)
	messages = append(messages, types.ChatMessage{Role: "user", Content: message})
	return messages
}

// previewFor renders the before/after view of a pending edit, locating the
// target first for kinds that need one.
func (a *Assistant) previewFor(fc *fileContext, edit *types.EditInstruction) (*preview.Preview, error) {
	if types.IsDocumentKind(edit.Kind) {
		if fc.document == nil {
			return nil, types.NewAppError(types.ErrInvalidInput,
				"document edit proposed against a spreadsheet", nil)
		}
		var match *locator.MatchResult
		if edit.Kind == types.EditReplace || edit.Kind == types.EditDelete {
			m, err := locator.Locate(fc.document.Content, edit.FindText)
			if err != nil {
				return nil, err
			}
			match = m
		}
		return preview.ForDocumentEdit(fc.document, edit, match)
	}

	if fc.spreadsheet == nil {
		return nil, types.NewAppError(types.ErrInvalidInput,
			"spreadsheet edit proposed against a document", nil)
	}
	return preview.ForSpreadsheetEdit(&fc.spreadsheet.ActiveSheet, edit)
}

func flattenDocument(doc *docs.Document) string {
	parts := make([]string, len(doc.Content))
	for i, p := range doc.Content {
		parts[i] = p.Text
	}
	return strings.Join(parts, "\n")
}

func flattenSheet(sheet *docs.ActiveSheet) string {
	rows := make([]string, len(sheet.Rows))
	for i, r := range sheet.Rows {
		rows[i] = strings.Join(r, "\t")
	}
	return strings.Join(rows, "\n")
}
