package schema

import (
	"encoding/json"
	"fmt"

	"docs-assistant/internal/types"
)

// rawReply mirrors the wire shape of an assistant reply before the edit
// payload has been validated.
type rawReply struct {
	Response *string         `json:"response"`
	Edit     json.RawMessage `json:"edit"`
}

// ParseReply validates that jsonText is an edit-carrying assistant reply and
// normalizes its instruction.
//
// A reply that is not an edit proposal at all (no object, no string response
// field, no edit object) fails with ErrNotAnEdit and is treated as ordinary
// chat text by callers. A reply that clearly carries an edit but does not
// match any known operation shape fails with ErrSchema and is rejected, never
// partially applied.
func ParseReply(jsonText string) (*types.AssistantReply, error) {
	var raw rawReply
	if err := json.Unmarshal([]byte(jsonText), &raw); err != nil {
		return nil, types.NewAppError(types.ErrNotAnEdit, "reply is not an edit object", err)
	}
	if raw.Response == nil {
		return nil, types.NewAppError(types.ErrNotAnEdit, "reply has no response field", nil)
	}
	if len(raw.Edit) == 0 || string(raw.Edit) == "null" {
		return nil, types.NewAppError(types.ErrNotAnEdit, "reply has no edit field", nil)
	}

	var edit types.EditInstruction
	if err := json.Unmarshal(raw.Edit, &edit); err != nil {
		return nil, types.NewAppError(types.ErrSchema, "edit field is not an object", err)
	}

	if err := ValidateInstruction(&edit); err != nil {
		return nil, err
	}

	return &types.AssistantReply{Response: *raw.Response, Edit: &edit}, nil
}

// ValidateInstruction checks an instruction against the shape constraints of
// its kind. Metadata fields (confidence, reasoning) are not required here;
// the corrector fills their defaults.
func ValidateInstruction(edit *types.EditInstruction) error {
	if !types.IsKnownEditKind(edit.Kind) {
		return violation(fmt.Sprintf("unknown edit type %q", edit.Kind))
	}

	switch edit.Kind {
	case types.EditReplace:
		if edit.FindText == "" {
			return violation("replace requires findText")
		}
	case types.EditInsert:
		if edit.NewContent == "" {
			return violation("insert requires newContent")
		}
		if edit.Position < 0 {
			return violation("insert position must not be negative")
		}
	case types.EditDelete:
		if edit.FindText == "" {
			return violation("delete requires findText")
		}
	case types.EditRewrite:
		if edit.NewContent == "" {
			return violation("rewrite requires newContent")
		}
		if edit.FindText != "" || edit.ReplaceText != "" {
			return violation("rewrite must not carry findText or replaceText")
		}
	case types.EditUpdateCell:
		if _, err := ParseCell(edit.Cell); err != nil {
			return violation(err.Error())
		}
	case types.EditUpdateRange:
		return validateUpdateRange(edit)
	case types.EditUpdateFormula:
		if _, err := ParseCell(edit.Cell); err != nil {
			return violation(err.Error())
		}
		if edit.Formula == "" {
			return violation("updateFormula requires formula")
		}
	case types.EditInsertRow, types.EditDeleteRow:
		if edit.Index < 1 {
			return violation(fmt.Sprintf("%s requires a 1-based row index", edit.Kind))
		}
		if edit.Kind == types.EditInsertRow && len(edit.Values) > 1 {
			return violation("insertRow seed values must be a single row")
		}
	case types.EditInsertColumn, types.EditDeleteColumn:
		if edit.Index < 1 {
			return violation(fmt.Sprintf("%s requires a 1-based column index", edit.Kind))
		}
		if edit.Kind == types.EditInsertColumn && len(edit.Values) > 1 {
			return violation("insertColumn seed values must be a single list")
		}
	}

	return nil
}

// validateUpdateRange checks the range grammar and that every values row
// matches the range's column span. Width mismatches are a validation failure,
// never silently truncated or padded.
func validateUpdateRange(edit *types.EditInstruction) error {
	r, err := ParseRange(edit.Range)
	if err != nil {
		return violation(err.Error())
	}
	if len(edit.Values) == 0 {
		return violation("updateRange requires a non-empty values grid")
	}
	if len(edit.Values) > r.RowSpan() {
		return violation(fmt.Sprintf(
			"updateRange has %d value rows for a %d-row range %s",
			len(edit.Values), r.RowSpan(), edit.Range))
	}
	for i, row := range edit.Values {
		if len(row) != r.ColSpan() {
			return violation(fmt.Sprintf(
				"updateRange row %d has %d cells, range %s spans %d columns",
				i, len(row), edit.Range, r.ColSpan()))
		}
	}
	return nil
}

func violation(details string) error {
	return types.NewAppErrorWithDetails(types.ErrSchema, "edit does not match any known shape", details, nil)
}
