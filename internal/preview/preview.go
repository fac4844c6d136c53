// Package preview renders the before/after view of a pending edit so the
// user can judge it before approving. Deletions are marked [-like this-] and
// insertions {+like this+} in a single inline string.
package preview

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"docs-assistant/internal/docs"
	"docs-assistant/internal/locator"
	"docs-assistant/internal/schema"
	"docs-assistant/internal/types"
)

// Preview is the rendered comparison for one pending edit.
type Preview struct {
	// Before and After are the affected text region pre- and post-edit.
	Before string `json:"before"`
	After  string `json:"after"`
	// Diff is the inline marked-up comparison of Before and After.
	Diff string `json:"diff"`
}

// Render produces the inline diff between two text snapshots.
func Render(before, after string) string {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	var sb strings.Builder
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			sb.WriteString("[-")
			sb.WriteString(d.Text)
			sb.WriteString("-]")
		case diffmatchpatch.DiffInsert:
			sb.WriteString("{+")
			sb.WriteString(d.Text)
			sb.WriteString("+}")
		default:
			sb.WriteString(d.Text)
		}
	}
	return sb.String()
}

// ForDocumentEdit builds the preview for a document-text edit. match is the
// locator result for kinds that need one and nil otherwise.
func ForDocumentEdit(doc *docs.Document, edit *types.EditInstruction, match *locator.MatchResult) (*Preview, error) {
	var before, after string

	switch edit.Kind {
	case types.EditReplace:
		p, err := matchedParagraph(doc, match)
		if err != nil {
			return nil, err
		}
		before = p
		after = p[:match.Offset] + edit.ReplaceText + p[match.Offset+match.Length:]

	case types.EditDelete:
		p, err := matchedParagraph(doc, match)
		if err != nil {
			return nil, err
		}
		before = p
		after = p[:match.Offset] + p[match.Offset+match.Length:]

	case types.EditInsert:
		before = ""
		after = edit.NewContent

	case types.EditRewrite:
		before = flatten(doc)
		after = edit.NewContent

	default:
		return nil, types.NewAppErrorWithDetails(types.ErrInternal,
			"not a document edit kind", string(edit.Kind), nil)
	}

	return &Preview{Before: before, After: after, Diff: Render(before, after)}, nil
}

// ForSpreadsheetEdit builds the preview for a spreadsheet edit. The sheet
// grid provides the before values; anything outside its extent reads as empty.
func ForSpreadsheetEdit(sheet *docs.ActiveSheet, edit *types.EditInstruction) (*Preview, error) {
	var before, after string

	switch edit.Kind {
	case types.EditUpdateCell:
		before = cellValue(sheet, edit.Cell)
		after = edit.Value

	case types.EditUpdateFormula:
		before = cellValue(sheet, edit.Cell)
		after = edit.Formula

	case types.EditUpdateRange:
		before = fmt.Sprintf("range %s", edit.Range)
		after = renderGrid(edit.Values)

	case types.EditInsertRow:
		before = ""
		after = fmt.Sprintf("insert row at %d", edit.Index)
		if len(edit.Values) == 1 {
			after += ": " + strings.Join(edit.Values[0], " | ")
		}

	case types.EditInsertColumn:
		before = ""
		after = fmt.Sprintf("insert column at %d", edit.Index)
		if len(edit.Values) == 1 {
			after += ": " + strings.Join(edit.Values[0], " | ")
		}

	case types.EditDeleteRow:
		before = fmt.Sprintf("row %d", edit.Index)
		after = ""

	case types.EditDeleteColumn:
		before = fmt.Sprintf("column %d", edit.Index)
		after = ""

	default:
		return nil, types.NewAppErrorWithDetails(types.ErrInternal,
			"not a spreadsheet edit kind", string(edit.Kind), nil)
	}

	return &Preview{Before: before, After: after, Diff: Render(before, after)}, nil
}

// matchedParagraph returns the text of the paragraph a match points into.
func matchedParagraph(doc *docs.Document, match *locator.MatchResult) (string, error) {
	if match == nil {
		return "", types.NewAppError(types.ErrInternal, "preview requires a located match", nil)
	}
	if match.ParagraphIndex < 0 || match.ParagraphIndex >= len(doc.Content) {
		return "", types.NewAppError(types.ErrInternal, "match points outside the document", nil)
	}
	return doc.Content[match.ParagraphIndex].Text, nil
}

func flatten(doc *docs.Document) string {
	parts := make([]string, len(doc.Content))
	for i, p := range doc.Content {
		parts[i] = p.Text
	}
	return strings.Join(parts, "\n")
}

// cellValue reads the current value of an A1 cell from the sheet grid, or ""
// when the cell lies outside the populated extent or fails to parse.
func cellValue(sheet *docs.ActiveSheet, cell string) string {
	if sheet == nil {
		return ""
	}
	ref, err := schema.ParseCell(cell)
	if err != nil {
		return ""
	}
	row, col := ref.Row-1, ref.Column-1
	if row < 0 || row >= len(sheet.Rows) {
		return ""
	}
	if col < 0 || col >= len(sheet.Rows[row]) {
		return ""
	}
	return sheet.Rows[row][col]
}

func renderGrid(values [][]string) string {
	rows := make([]string, len(values))
	for i, r := range values {
		rows[i] = strings.Join(r, " | ")
	}
	return strings.Join(rows, "\n")
}
