// Package planner translates a validated edit instruction, plus the locator
// result it depends on, into an ordered list of primitive range operations
// for the document-mutation collaborator. Pure translation: no network calls
// happen here.
package planner

import (
	"fmt"

	"docs-assistant/internal/docs"
	"docs-assistant/internal/locator"
	"docs-assistant/internal/schema"
	"docs-assistant/internal/types"
)

// PlanDocument builds the primitive operations for a document-text edit.
// Kinds that require a located target (replace, insert with findText, delete)
// fail the whole plan with ErrUnlocatable when match is nil; nothing is ever
// partially applied.
func PlanDocument(edit *types.EditInstruction, doc *docs.Document, match *locator.MatchResult) ([]docs.Request, error) {
	switch edit.Kind {
	case types.EditReplace:
		start, length, err := matchedRange(doc, match)
		if err != nil {
			return nil, err
		}
		return []docs.Request{
			{DeleteContentRange: &docs.DeleteContentRange{StartIndex: start, EndIndex: start + length}},
			{InsertText: &docs.InsertText{Index: start, Text: edit.ReplaceText}},
		}, nil

	case types.EditDelete:
		start, length, err := matchedRange(doc, match)
		if err != nil {
			return nil, err
		}
		return []docs.Request{
			{DeleteContentRange: &docs.DeleteContentRange{StartIndex: start, EndIndex: start + length}},
		}, nil

	case types.EditInsert:
		index := edit.Position
		if index < 1 {
			// Index 0 is the implicit document root; the first writable
			// position is 1.
			index = 1
		}
		return []docs.Request{
			{InsertText: &docs.InsertText{Index: index, Text: edit.NewContent}},
		}, nil

	case types.EditRewrite:
		return planRewrite(edit, doc), nil
	}

	return nil, types.NewAppErrorWithDetails(types.ErrInternal,
		"not a document edit kind", string(edit.Kind), nil)
}

// planRewrite replaces the entire document body. An extent of 2 or less
// means the document holds at most its implicit trailing newline, and the
// delete is skipped entirely: a zero or negative range must never be issued.
func planRewrite(edit *types.EditInstruction, doc *docs.Document) []docs.Request {
	extent := doc.EndIndex()

	var batch []docs.Request
	if extent > 2 {
		batch = append(batch, docs.Request{
			DeleteContentRange: &docs.DeleteContentRange{StartIndex: 1, EndIndex: extent - 1},
		})
	}
	batch = append(batch, docs.Request{
		InsertText: &docs.InsertText{Index: 1, Text: edit.NewContent},
	})
	return batch
}

// matchedRange converts a locator result into an absolute index range.
func matchedRange(doc *docs.Document, match *locator.MatchResult) (start, length int, err error) {
	if match == nil {
		return 0, 0, types.NewAppError(types.ErrUnlocatable,
			"edit requires a located target but none was found", nil)
	}
	if match.ParagraphIndex < 0 || match.ParagraphIndex >= len(doc.Content) {
		return 0, 0, types.NewAppErrorWithDetails(types.ErrInternal,
			"match points outside the document",
			fmt.Sprintf("paragraph %d of %d", match.ParagraphIndex, len(doc.Content)), nil)
	}

	index := 1
	for i := 0; i < match.ParagraphIndex; i++ {
		index += len(doc.Content[i].Text) + 1
	}
	return index + match.Offset, match.Length, nil
}

// PlanSpreadsheet builds the primitive operations for a spreadsheet edit.
// Row and column inserts shift existing data; supplied seed values produce a
// follow-up range write covering the newly created row or column.
func PlanSpreadsheet(edit *types.EditInstruction) ([]docs.Request, error) {
	switch edit.Kind {
	case types.EditUpdateCell:
		return []docs.Request{
			{ValuesUpdate: &docs.ValuesUpdate{Range: edit.Cell, Values: [][]string{{edit.Value}}}},
		}, nil

	case types.EditUpdateRange:
		return []docs.Request{
			{ValuesUpdate: &docs.ValuesUpdate{Range: edit.Range, Values: edit.Values}},
		}, nil

	case types.EditUpdateFormula:
		return []docs.Request{
			{ValuesUpdate: &docs.ValuesUpdate{Range: edit.Cell, Values: [][]string{{edit.Formula}}}},
		}, nil

	case types.EditInsertRow:
		batch := []docs.Request{
			{InsertDimension: &docs.InsertDimension{Dimension: docs.DimensionRows, Index: edit.Index}},
		}
		if len(edit.Values) == 1 && len(edit.Values[0]) > 0 {
			seeds := edit.Values[0]
			rangeRef := fmt.Sprintf("A%d:%s%d", edit.Index, schema.ColumnName(len(seeds)), edit.Index)
			batch = append(batch, docs.Request{
				ValuesUpdate: &docs.ValuesUpdate{Range: rangeRef, Values: [][]string{seeds}},
			})
		}
		return batch, nil

	case types.EditInsertColumn:
		batch := []docs.Request{
			{InsertDimension: &docs.InsertDimension{Dimension: docs.DimensionColumns, Index: edit.Index}},
		}
		if len(edit.Values) == 1 && len(edit.Values[0]) > 0 {
			seeds := edit.Values[0]
			col := schema.ColumnName(edit.Index)
			column := make([][]string, len(seeds))
			for i, v := range seeds {
				column[i] = []string{v}
			}
			rangeRef := fmt.Sprintf("%s1:%s%d", col, col, len(seeds))
			batch = append(batch, docs.Request{
				ValuesUpdate: &docs.ValuesUpdate{Range: rangeRef, Values: column},
			})
		}
		return batch, nil

	case types.EditDeleteRow:
		return []docs.Request{
			{DeleteDimension: &docs.DeleteDimension{Dimension: docs.DimensionRows, Index: edit.Index}},
		}, nil

	case types.EditDeleteColumn:
		return []docs.Request{
			{DeleteDimension: &docs.DeleteDimension{Dimension: docs.DimensionColumns, Index: edit.Index}},
		}, nil
	}

	return nil, types.NewAppErrorWithDetails(types.ErrInternal,
		"not a spreadsheet edit kind", string(edit.Kind), nil)
}

// Plan dispatches to the document or spreadsheet planner based on the edit
// kind. doc and match may be nil for spreadsheet kinds.
func Plan(edit *types.EditInstruction, doc *docs.Document, match *locator.MatchResult) ([]docs.Request, error) {
	if types.IsDocumentKind(edit.Kind) {
		if doc == nil {
			return nil, types.NewAppError(types.ErrInternal, "document edit requires a document snapshot", nil)
		}
		return PlanDocument(edit, doc, match)
	}
	return PlanSpreadsheet(edit)
}
