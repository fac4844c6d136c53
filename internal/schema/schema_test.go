package schema

import (
	"testing"

	"docs-assistant/internal/types"
)

// ============================================================================
// Reply envelope
// ============================================================================

func TestParseReplyValidEdit(t *testing.T) {
	jsonText := `{
		"response": "I replaced the phrase.",
		"edit": {
			"type": "replace",
			"findText": "the quick brown fox",
			"replaceText": "the slow brown fox",
			"confidence": "high",
			"reasoning": "direct user request"
		}
	}`

	reply, err := ParseReply(jsonText)
	if err != nil {
		t.Fatalf("ParseReply: %v", err)
	}
	if reply.Response != "I replaced the phrase." {
		t.Errorf("Response = %q", reply.Response)
	}
	if reply.Edit.Kind != types.EditReplace {
		t.Errorf("Kind = %q", reply.Edit.Kind)
	}
}

func TestParseReplyNotAnObject(t *testing.T) {
	_, err := ParseReply(`"just a string"`)
	if types.CodeOf(err) != types.ErrNotAnEdit {
		t.Errorf("code = %v, want NOT_AN_EDIT", types.CodeOf(err))
	}
}

func TestParseReplyMissingResponse(t *testing.T) {
	_, err := ParseReply(`{"edit": {"type": "replace", "findText": "x"}}`)
	if types.CodeOf(err) != types.ErrNotAnEdit {
		t.Errorf("code = %v, want NOT_AN_EDIT", types.CodeOf(err))
	}
}

func TestParseReplyNullEdit(t *testing.T) {
	_, err := ParseReply(`{"response": "plain chat", "edit": null}`)
	if types.CodeOf(err) != types.ErrNotAnEdit {
		t.Errorf("code = %v, want NOT_AN_EDIT", types.CodeOf(err))
	}
}

func TestParseReplyUnknownKind(t *testing.T) {
	// An edit object with an unrecognized type is a schema violation, never
	// guessed into a known kind.
	_, err := ParseReply(`{"response": "done", "edit": {"type": "transmogrify"}}`)
	if types.CodeOf(err) != types.ErrSchema {
		t.Errorf("code = %v, want SCHEMA_VIOLATION", types.CodeOf(err))
	}
}

// ============================================================================
// Per-kind shape validation
// ============================================================================

func TestValidateReplaceRequiresFindText(t *testing.T) {
	err := ValidateInstruction(&types.EditInstruction{Kind: types.EditReplace})
	if types.CodeOf(err) != types.ErrSchema {
		t.Errorf("code = %v, want SCHEMA_VIOLATION", types.CodeOf(err))
	}
}

func TestValidateReplaceAllowsEmptyReplaceText(t *testing.T) {
	// Replacing with nothing is a legitimate deletion-by-replace.
	err := ValidateInstruction(&types.EditInstruction{Kind: types.EditReplace, FindText: "remove me"})
	if err != nil {
		t.Errorf("ValidateInstruction: %v", err)
	}
}

func TestValidateInsert(t *testing.T) {
	if err := ValidateInstruction(&types.EditInstruction{Kind: types.EditInsert, NewContent: "hi", Position: 5}); err != nil {
		t.Errorf("valid insert rejected: %v", err)
	}
	if err := ValidateInstruction(&types.EditInstruction{Kind: types.EditInsert, Position: 5}); err == nil {
		t.Error("insert without newContent accepted")
	}
	if err := ValidateInstruction(&types.EditInstruction{Kind: types.EditInsert, NewContent: "hi", Position: -1}); err == nil {
		t.Error("insert with negative position accepted")
	}
}

func TestValidateRewriteForbidsFindText(t *testing.T) {
	err := ValidateInstruction(&types.EditInstruction{
		Kind:       types.EditRewrite,
		NewContent: "fresh body",
		FindText:   "leftover",
	})
	if types.CodeOf(err) != types.ErrSchema {
		t.Errorf("code = %v, want SCHEMA_VIOLATION", types.CodeOf(err))
	}
}

func TestValidateUpdateCell(t *testing.T) {
	if err := ValidateInstruction(&types.EditInstruction{Kind: types.EditUpdateCell, Cell: "B2", Value: "42"}); err != nil {
		t.Errorf("valid updateCell rejected: %v", err)
	}
	if err := ValidateInstruction(&types.EditInstruction{Kind: types.EditUpdateCell, Cell: "not-a-cell"}); err == nil {
		t.Error("updateCell with bad cell accepted")
	}
}

func TestValidateUpdateFormula(t *testing.T) {
	if err := ValidateInstruction(&types.EditInstruction{Kind: types.EditUpdateFormula, Cell: "C1", Formula: "=SUM(A1:A9)"}); err != nil {
		t.Errorf("valid updateFormula rejected: %v", err)
	}
	if err := ValidateInstruction(&types.EditInstruction{Kind: types.EditUpdateFormula, Cell: "C1"}); err == nil {
		t.Error("updateFormula without formula accepted")
	}
}

func TestValidateDimensionOps(t *testing.T) {
	if err := ValidateInstruction(&types.EditInstruction{Kind: types.EditInsertRow, Index: 3}); err != nil {
		t.Errorf("valid insertRow rejected: %v", err)
	}
	if err := ValidateInstruction(&types.EditInstruction{Kind: types.EditDeleteColumn, Index: 0}); err == nil {
		t.Error("deleteColumn with index 0 accepted")
	}
	if err := ValidateInstruction(&types.EditInstruction{
		Kind:   types.EditInsertRow,
		Index:  1,
		Values: [][]string{{"a"}, {"b"}},
	}); err == nil {
		t.Error("insertRow with multi-row seed accepted")
	}
}

// ============================================================================
// Range value grids
// ============================================================================

func TestValidateUpdateRangeWidthMismatch(t *testing.T) {
	// A1:C2 spans three columns; a four-value row must be rejected, never
	// truncated or padded.
	err := ValidateInstruction(&types.EditInstruction{
		Kind:   types.EditUpdateRange,
		Range:  "A1:C2",
		Values: [][]string{{"1", "2", "3", "4"}},
	})
	if types.CodeOf(err) != types.ErrSchema {
		t.Errorf("code = %v, want SCHEMA_VIOLATION", types.CodeOf(err))
	}
}

func TestValidateUpdateRangeValid(t *testing.T) {
	err := ValidateInstruction(&types.EditInstruction{
		Kind:   types.EditUpdateRange,
		Range:  "A1:C2",
		Values: [][]string{{"1", "2", "3"}, {"4", "5", "6"}},
	})
	if err != nil {
		t.Errorf("ValidateInstruction: %v", err)
	}
}

func TestValidateUpdateRangeTooManyRows(t *testing.T) {
	err := ValidateInstruction(&types.EditInstruction{
		Kind:   types.EditUpdateRange,
		Range:  "A1:C1",
		Values: [][]string{{"1", "2", "3"}, {"4", "5", "6"}},
	})
	if types.CodeOf(err) != types.ErrSchema {
		t.Errorf("code = %v, want SCHEMA_VIOLATION", types.CodeOf(err))
	}
}

func TestValidateUpdateRangeEmptyValues(t *testing.T) {
	err := ValidateInstruction(&types.EditInstruction{Kind: types.EditUpdateRange, Range: "A1:B2"})
	if types.CodeOf(err) != types.ErrSchema {
		t.Errorf("code = %v, want SCHEMA_VIOLATION", types.CodeOf(err))
	}
}
