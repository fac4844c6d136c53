package corrector

import (
	"context"
	"fmt"
	"strings"

	"docs-assistant/internal/schema"
	"docs-assistant/internal/types"
)

// descriptiveCellThreshold is the length above which cell text with no "="
// is suspected of narrating a calculation instead of expressing one.
const descriptiveCellThreshold = 15

// formulaTemplate maps a descriptive keyword to the spreadsheet function the
// model most likely meant.
type formulaTemplate struct {
	keyword  string
	function string
}

// Longer keywords first so "current value" wins over "value"-ish prefixes.
var descriptiveTemplates = []formulaTemplate{
	{"current value", "SUM"},
	{"average", "AVERAGE"},
	{"total", "SUM"},
	{"sum", "SUM"},
	{"count", "COUNT"},
	{"maximum", "MAX"},
	{"minimum", "MIN"},
}

// matchTemplate returns the template whose keyword occurs in text, or nil.
func matchTemplate(text string) *formulaTemplate {
	lower := strings.ToLower(text)
	for i := range descriptiveTemplates {
		if strings.Contains(lower, descriptiveTemplates[i].keyword) {
			return &descriptiveTemplates[i]
		}
	}
	return nil
}

// isDescriptiveCell reports whether a cell's text looks like prose standing
// in for a formula.
func isDescriptiveCell(text string) bool {
	if len(text) <= descriptiveCellThreshold {
		return false
	}
	if strings.Contains(text, "=") {
		return false
	}
	return matchTemplate(text) != nil
}

// synthesizeFormula builds a formula for the target cell from a template.
// The default range covers the column above the target; a row-1 target falls
// back to the whole column.
func synthesizeFormula(tmpl *formulaTemplate, target schema.CellRef) string {
	col := schema.ColumnName(target.Column)
	if target.Row <= 1 {
		return fmt.Sprintf("=%s(%s:%s)", tmpl.function, col, col)
	}
	return fmt.Sprintf("=%s(%s1:%s%d)", tmpl.function, col, col, target.Row-1)
}

// PatternPass downgrades updateRange instructions whose cells narrate a
// calculation ("Current Value tied up in ...") into an updateFormula
// targeting the first offending cell. Models sometimes describe the math in
// prose instead of emitting it.
type PatternPass struct{}

// Name implements Pass.
func (p *PatternPass) Name() string { return "pattern-detection" }

// Apply implements Pass.
func (p *PatternPass) Apply(_ context.Context, edit *types.EditInstruction) (bool, error) {
	if edit.Kind != types.EditUpdateRange {
		return false, nil
	}

	r, err := schema.ParseRange(edit.Range)
	if err != nil {
		// The validator runs first, so an unparseable range here is an
		// upstream bug rather than a correctable defect.
		return false, err
	}

	for i, row := range edit.Values {
		for j, cell := range row {
			if !isDescriptiveCell(cell) {
				continue
			}
			tmpl := matchTemplate(cell)
			target := schema.CellRef{
				Column: r.Start.Column + j,
				Row:    r.Start.Row + i,
			}

			reasoning := edit.Reasoning
			*edit = types.EditInstruction{
				Kind:       types.EditUpdateFormula,
				Cell:       fmt.Sprintf("%s%d", schema.ColumnName(target.Column), target.Row),
				Formula:    synthesizeFormula(tmpl, target),
				Confidence: types.ConfidenceLow,
				Reasoning:  reasoning,
				Status:     edit.Status,
			}
			if edit.Reasoning == "" {
				edit.Reasoning = fmt.Sprintf(
					"Descriptive text %q was replaced with a %s formula.", cell, tmpl.function)
			}
			return true, nil
		}
	}

	return false, nil
}

// FormulaSyntaxPass ensures updateFormula instructions carry an actual
// formula: the string must begin with "=", and text that still reads as a
// description is re-synthesized from the same keyword templates.
type FormulaSyntaxPass struct{}

// Name implements Pass.
func (p *FormulaSyntaxPass) Name() string { return "formula-syntax" }

// Apply implements Pass.
func (p *FormulaSyntaxPass) Apply(_ context.Context, edit *types.EditInstruction) (bool, error) {
	if edit.Kind != types.EditUpdateFormula {
		return false, nil
	}

	formula := strings.TrimSpace(edit.Formula)

	// Prose with no function call gets rebuilt entirely.
	if tmpl := matchTemplate(formula); tmpl != nil && !strings.Contains(formula, "(") {
		target, err := schema.ParseCell(edit.Cell)
		if err != nil {
			return false, err
		}
		edit.Formula = synthesizeFormula(tmpl, target)
		return true, nil
	}

	if !strings.HasPrefix(formula, "=") {
		edit.Formula = "=" + formula
		return true, nil
	}

	if formula != edit.Formula {
		edit.Formula = formula
		return true, nil
	}
	return false, nil
}

// defaultReasoning is used when the model omitted its justification.
const defaultReasoning = "Edit proposed by the assistant based on the conversation."

// CompletenessPass fills in confidence and reasoning defaults. Missing
// metadata never blocks delivery of an edit.
type CompletenessPass struct{}

// Name implements Pass.
func (p *CompletenessPass) Name() string { return "completeness" }

// Apply implements Pass.
func (p *CompletenessPass) Apply(_ context.Context, edit *types.EditInstruction) (bool, error) {
	changed := false
	if !types.IsValidConfidence(edit.Confidence) {
		edit.Confidence = types.ConfidenceHigh
		changed = true
	}
	if edit.Reasoning == "" {
		edit.Reasoning = defaultReasoning
		changed = true
	}
	return changed, nil
}
