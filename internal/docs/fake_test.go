package docs

import (
	"context"
	"errors"
	"testing"

	"docs-assistant/internal/types"
)

// ============================================================================
// Document batches
// ============================================================================

func TestFakeBackendAppliesReplaceBatch(t *testing.T) {
	f := NewFakeBackend()
	f.PutDocument("doc1", &Document{
		Title:   "Test",
		Content: []Paragraph{{Text: "Hello world"}, {Text: "Goodbye"}},
	})

	// Replace "world" (index 7, length 5) with "there".
	batch := []Request{
		{DeleteContentRange: &DeleteContentRange{StartIndex: 7, EndIndex: 12}},
		{InsertText: &InsertText{Index: 7, Text: "there"}},
	}
	if err := f.ApplyBatch(context.Background(), "doc1", batch); err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}

	doc, err := f.FetchDocument(context.Background(), "doc1")
	if err != nil {
		t.Fatalf("FetchDocument: %v", err)
	}
	if doc.Content[0].Text != "Hello there" {
		t.Errorf("paragraph 0 = %q", doc.Content[0].Text)
	}
	if doc.Content[1].Text != "Goodbye" {
		t.Errorf("paragraph 1 = %q", doc.Content[1].Text)
	}
}

func TestFakeBackendRejectsOutOfRangeDelete(t *testing.T) {
	f := NewFakeBackend()
	f.PutDocument("doc1", &Document{Content: []Paragraph{{Text: "short"}}})

	batch := []Request{
		{DeleteContentRange: &DeleteContentRange{StartIndex: 1, EndIndex: 100}},
	}
	err := f.ApplyBatch(context.Background(), "doc1", batch)
	if types.CodeOf(err) != types.ErrMutation {
		t.Errorf("code = %v, want MUTATION_FAILURE", types.CodeOf(err))
	}
}

func TestFakeBackendFailNextBatch(t *testing.T) {
	f := NewFakeBackend()
	f.PutDocument("doc1", &Document{Content: []Paragraph{{Text: "body"}}})
	f.FailNextBatch(errors.New("stale revision"))

	batch := []Request{{InsertText: &InsertText{Index: 1, Text: "x"}}}
	if err := f.ApplyBatch(context.Background(), "doc1", batch); err == nil {
		t.Fatal("forced failure did not surface")
	}
	// The failure is one-shot.
	if err := f.ApplyBatch(context.Background(), "doc1", batch); err != nil {
		t.Errorf("second batch failed: %v", err)
	}
}

func TestFakeBackendSnapshotsAreCopies(t *testing.T) {
	f := NewFakeBackend()
	f.PutDocument("doc1", &Document{Content: []Paragraph{{Text: "original"}}})

	doc, _ := f.FetchDocument(context.Background(), "doc1")
	doc.Content[0].Text = "mutated"

	again, _ := f.FetchDocument(context.Background(), "doc1")
	if again.Content[0].Text != "original" {
		t.Error("fetched snapshot shares state with the backend")
	}
}

// ============================================================================
// Spreadsheet batches
// ============================================================================

func testSheet(rows [][]string) *Spreadsheet {
	return &Spreadsheet{
		Title:       "Sheet",
		Sheets:      []SheetMetadata{{SheetID: 0, Title: "Sheet1"}},
		ActiveSheet: ActiveSheet{Rows: rows, Grid: GridProperties{RowCount: len(rows), ColumnCount: maxWidth(rows)}},
	}
}

func TestFakeBackendValuesUpdate(t *testing.T) {
	f := NewFakeBackend()
	f.PutSpreadsheet("sheet1", testSheet([][]string{{"a", "b"}, {"c", "d"}}))

	batch := []Request{
		{ValuesUpdate: &ValuesUpdate{Range: "B2", Values: [][]string{{"updated"}}}},
	}
	if err := f.ApplyBatch(context.Background(), "sheet1", batch); err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}

	sheet, _ := f.FetchSpreadsheet(context.Background(), "sheet1")
	if sheet.ActiveSheet.Rows[1][1] != "updated" {
		t.Errorf("B2 = %q", sheet.ActiveSheet.Rows[1][1])
	}
}

func TestFakeBackendValuesUpdateGrowsGrid(t *testing.T) {
	f := NewFakeBackend()
	f.PutSpreadsheet("sheet1", testSheet([][]string{{"a"}}))

	batch := []Request{
		{ValuesUpdate: &ValuesUpdate{Range: "C3", Values: [][]string{{"far"}}}},
	}
	if err := f.ApplyBatch(context.Background(), "sheet1", batch); err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}

	sheet, _ := f.FetchSpreadsheet(context.Background(), "sheet1")
	if sheet.ActiveSheet.Rows[2][2] != "far" {
		t.Errorf("C3 = %q", sheet.ActiveSheet.Rows[2][2])
	}
}

func TestFakeBackendInsertRowShiftsData(t *testing.T) {
	f := NewFakeBackend()
	f.PutSpreadsheet("sheet1", testSheet([][]string{{"r1"}, {"r2"}}))

	batch := []Request{
		{InsertDimension: &InsertDimension{Dimension: DimensionRows, Index: 2}},
	}
	if err := f.ApplyBatch(context.Background(), "sheet1", batch); err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}

	sheet, _ := f.FetchSpreadsheet(context.Background(), "sheet1")
	rows := sheet.ActiveSheet.Rows
	if len(rows) != 3 || rows[0][0] != "r1" || rows[2][0] != "r2" {
		t.Errorf("rows = %+v", rows)
	}
}

func TestFakeBackendDeleteColumn(t *testing.T) {
	f := NewFakeBackend()
	f.PutSpreadsheet("sheet1", testSheet([][]string{{"a", "b", "c"}}))

	batch := []Request{
		{DeleteDimension: &DeleteDimension{Dimension: DimensionColumns, Index: 2}},
	}
	if err := f.ApplyBatch(context.Background(), "sheet1", batch); err != nil {
		t.Fatalf("ApplyBatch: %v", err)
	}

	sheet, _ := f.FetchSpreadsheet(context.Background(), "sheet1")
	if got := sheet.ActiveSheet.Rows[0]; len(got) != 2 || got[1] != "c" {
		t.Errorf("row = %+v", got)
	}
}

func TestFakeBackendUnknownFile(t *testing.T) {
	f := NewFakeBackend()
	if _, err := f.FetchDocument(context.Background(), "missing"); err == nil {
		t.Error("fetch of unknown file succeeded")
	}
	if err := f.ApplyBatch(context.Background(), "missing", nil); err == nil {
		t.Error("batch against unknown file succeeded")
	}
}

// ============================================================================
// Index model
// ============================================================================

func TestDocumentEndIndex(t *testing.T) {
	tests := []struct {
		content []Paragraph
		want    int
	}{
		{nil, 1},
		{[]Paragraph{{Text: ""}}, 2},
		{[]Paragraph{{Text: "abc"}}, 5},
		{[]Paragraph{{Text: "abc"}, {Text: "de"}}, 8},
	}
	for _, tt := range tests {
		d := &Document{Content: tt.content}
		if got := d.EndIndex(); got != tt.want {
			t.Errorf("EndIndex(%v) = %d, want %d", tt.content, got, tt.want)
		}
	}
}
