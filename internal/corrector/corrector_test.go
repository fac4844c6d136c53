package corrector

import (
	"context"
	"errors"
	"strings"
	"testing"

	"docs-assistant/internal/types"
)

// ============================================================================
// Pattern detection
// ============================================================================

func TestPatternPassConvertsDescriptiveCell(t *testing.T) {
	edit := &types.EditInstruction{
		Kind:  types.EditUpdateRange,
		Range: "B5:B5",
		Values: [][]string{
			{"Current value tied up in inventory"},
		},
		Confidence: types.ConfidenceHigh,
	}

	changed, err := (&PatternPass{}).Apply(context.Background(), edit)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !changed {
		t.Fatal("descriptive cell was not converted")
	}

	if edit.Kind != types.EditUpdateFormula {
		t.Errorf("Kind = %q, want updateFormula", edit.Kind)
	}
	if edit.Cell != "B5" {
		t.Errorf("Cell = %q, want B5", edit.Cell)
	}
	if !strings.HasPrefix(edit.Formula, "=") {
		t.Errorf("Formula = %q, want leading '='", edit.Formula)
	}
	if edit.Formula != "=SUM(B1:B4)" {
		t.Errorf("Formula = %q, want =SUM(B1:B4)", edit.Formula)
	}
	if edit.Confidence != types.ConfidenceLow {
		t.Errorf("Confidence = %q, want low after a synthesized rewrite", edit.Confidence)
	}
}

func TestPatternPassLeavesShortCellsAlone(t *testing.T) {
	edit := &types.EditInstruction{
		Kind:   types.EditUpdateRange,
		Range:  "A1:B1",
		Values: [][]string{{"total", "120"}},
	}
	changed, err := (&PatternPass{}).Apply(context.Background(), edit)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if changed {
		t.Error("short keyword cell was converted, threshold ignored")
	}
}

func TestPatternPassLeavesFormulasAlone(t *testing.T) {
	edit := &types.EditInstruction{
		Kind:   types.EditUpdateRange,
		Range:  "C1:C1",
		Values: [][]string{{"=SUM(A1:A10) is the total amount"}},
	}
	changed, _ := (&PatternPass{}).Apply(context.Background(), edit)
	if changed {
		t.Error("cell containing '=' was converted")
	}
}

func TestPatternPassIgnoresOtherKinds(t *testing.T) {
	edit := &types.EditInstruction{Kind: types.EditReplace, FindText: "the average total maximum value"}
	changed, _ := (&PatternPass{}).Apply(context.Background(), edit)
	if changed {
		t.Error("pattern pass touched a document edit")
	}
}

// ============================================================================
// Formula syntax
// ============================================================================

func TestFormulaSyntaxPassPrependsEquals(t *testing.T) {
	edit := &types.EditInstruction{Kind: types.EditUpdateFormula, Cell: "D2", Formula: "CONCAT(A2,B2)"}
	changed, err := (&FormulaSyntaxPass{}).Apply(context.Background(), edit)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !changed || edit.Formula != "=CONCAT(A2,B2)" {
		t.Errorf("Formula = %q, changed = %v", edit.Formula, changed)
	}
}

func TestFormulaSyntaxPassRebuildsProse(t *testing.T) {
	edit := &types.EditInstruction{Kind: types.EditUpdateFormula, Cell: "B10", Formula: "the sum of the column"}
	changed, err := (&FormulaSyntaxPass{}).Apply(context.Background(), edit)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !changed || edit.Formula != "=SUM(B1:B9)" {
		t.Errorf("Formula = %q, changed = %v", edit.Formula, changed)
	}
}

func TestFormulaSyntaxPassKeepsValidFormula(t *testing.T) {
	edit := &types.EditInstruction{Kind: types.EditUpdateFormula, Cell: "A1", Formula: "=AVERAGE(B:B)"}
	changed, _ := (&FormulaSyntaxPass{}).Apply(context.Background(), edit)
	if changed {
		t.Errorf("valid formula rewritten to %q", edit.Formula)
	}
}

// ============================================================================
// Completeness
// ============================================================================

func TestCompletenessPassFillsDefaults(t *testing.T) {
	edit := &types.EditInstruction{Kind: types.EditReplace, FindText: "x", ReplaceText: "y"}
	changed, err := (&CompletenessPass{}).Apply(context.Background(), edit)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !changed {
		t.Fatal("missing metadata not filled")
	}
	if edit.Confidence != types.ConfidenceHigh {
		t.Errorf("Confidence = %q, want high default", edit.Confidence)
	}
	if edit.Reasoning == "" {
		t.Error("Reasoning left empty")
	}
}

func TestCompletenessPassNormalizesBogusConfidence(t *testing.T) {
	edit := &types.EditInstruction{Kind: types.EditReplace, FindText: "x", Confidence: "extreme", Reasoning: "set"}
	changed, _ := (&CompletenessPass{}).Apply(context.Background(), edit)
	if !changed || edit.Confidence != types.ConfidenceHigh {
		t.Errorf("Confidence = %q, changed = %v", edit.Confidence, changed)
	}
	if edit.Reasoning != "set" {
		t.Errorf("Reasoning overwritten: %q", edit.Reasoning)
	}
}

// ============================================================================
// Referee pass
// ============================================================================

type stubReferee struct {
	corrected *types.EditInstruction
	ok        bool
	err       error
}

func (s *stubReferee) Review(_ context.Context, _ *types.EditInstruction) (*types.EditInstruction, bool, error) {
	return s.corrected, s.ok, s.err
}

func TestRefereePassAdoptsCorrection(t *testing.T) {
	corrected := &types.EditInstruction{Kind: types.EditDelete, FindText: "the right target"}
	pass := NewRefereePass(&stubReferee{corrected: corrected, ok: false})

	edit := &types.EditInstruction{Kind: types.EditDelete, FindText: "wrong", Status: types.StatusPending}
	changed, err := pass.Apply(context.Background(), edit)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if !changed || edit.FindText != "the right target" {
		t.Errorf("edit = %+v, changed = %v", edit, changed)
	}
	if edit.Status != types.StatusPending {
		t.Errorf("Status = %q, lifecycle state must survive the replacement", edit.Status)
	}
}

func TestRefereePassFailsOpen(t *testing.T) {
	pass := NewRefereePass(&stubReferee{err: errors.New("timeout")})
	edit := &types.EditInstruction{Kind: types.EditDelete, FindText: "keep me"}

	changed, err := pass.Apply(context.Background(), edit)
	if err != nil {
		t.Fatalf("referee error must not propagate: %v", err)
	}
	if changed || edit.FindText != "keep me" {
		t.Errorf("edit changed on referee failure: %+v", edit)
	}
}

func TestRefereePassApproval(t *testing.T) {
	pass := NewRefereePass(&stubReferee{ok: true})
	edit := &types.EditInstruction{Kind: types.EditInsert, NewContent: "hello", Position: 1}
	changed, err := pass.Apply(context.Background(), edit)
	if err != nil || changed {
		t.Errorf("approval should be a no-op: changed = %v, err = %v", changed, err)
	}
}

// ============================================================================
// Pipeline composition
// ============================================================================

func TestDefaultPipelineEndToEnd(t *testing.T) {
	edit := &types.EditInstruction{
		Kind:   types.EditUpdateRange,
		Range:  "B5:B5",
		Values: [][]string{{"Total revenue across all quarters"}},
	}

	if err := Default().Run(context.Background(), edit); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if edit.Kind != types.EditUpdateFormula {
		t.Fatalf("Kind = %q", edit.Kind)
	}
	if !strings.HasPrefix(edit.Formula, "=") {
		t.Errorf("Formula = %q, want leading '='", edit.Formula)
	}
	if edit.Reasoning == "" {
		t.Error("Reasoning not defaulted")
	}
}
