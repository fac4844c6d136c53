package docs

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"docs-assistant/internal/schema"
	"docs-assistant/internal/types"
)

// FakeBackend is an in-memory Reader and Mutator. It applies batches against
// real document/spreadsheet state using the same index model as the live
// collaborator, which makes planner output verifiable without a network.
type FakeBackend struct {
	mu           sync.Mutex
	documents    map[string]*Document
	spreadsheets map[string]*Spreadsheet
	failNext     error
}

// NewFakeBackend creates an empty FakeBackend.
func NewFakeBackend() *FakeBackend {
	return &FakeBackend{
		documents:    make(map[string]*Document),
		spreadsheets: make(map[string]*Spreadsheet),
	}
}

// PutDocument stores a document snapshot under fileID.
func (f *FakeBackend) PutDocument(fileID string, doc *Document) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.documents[fileID] = doc
}

// PutSpreadsheet stores a spreadsheet snapshot under fileID.
func (f *FakeBackend) PutSpreadsheet(fileID string, sheet *Spreadsheet) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spreadsheets[fileID] = sheet
}

// FailNextBatch makes the next ApplyBatch call fail with err, simulating a
// rejected mutation (stale document, revoked permission).
func (f *FakeBackend) FailNextBatch(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failNext = err
}

// FetchDocument implements Reader.
func (f *FakeBackend) FetchDocument(_ context.Context, fileID string) (*Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, ok := f.documents[fileID]
	if !ok {
		return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput, "document not found", fileID, nil)
	}
	snapshot := &Document{Title: doc.Title, Content: append([]Paragraph(nil), doc.Content...)}
	return snapshot, nil
}

// FetchSpreadsheet implements Reader.
func (f *FakeBackend) FetchSpreadsheet(_ context.Context, fileID string) (*Spreadsheet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sheet, ok := f.spreadsheets[fileID]
	if !ok {
		return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput, "spreadsheet not found", fileID, nil)
	}
	rows := make([][]string, len(sheet.ActiveSheet.Rows))
	for i, row := range sheet.ActiveSheet.Rows {
		rows[i] = append([]string(nil), row...)
	}
	snapshot := &Spreadsheet{
		Title:       sheet.Title,
		Sheets:      append([]SheetMetadata(nil), sheet.Sheets...),
		ActiveSheet: ActiveSheet{Rows: rows, Grid: sheet.ActiveSheet.Grid},
	}
	return snapshot, nil
}

// ApplyBatch implements Mutator. The batch is atomic: it is applied to a
// scratch copy first and committed only if every request succeeds.
func (f *FakeBackend) ApplyBatch(_ context.Context, fileID string, batch []Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return types.NewAppError(types.ErrMutation, "mutation collaborator rejected batch", err)
	}

	if doc, ok := f.documents[fileID]; ok {
		body := flatten(doc)
		for _, req := range batch {
			var err error
			body, err = applyDocRequest(body, req)
			if err != nil {
				return types.NewAppError(types.ErrMutation, "batch rejected", err)
			}
		}
		doc.Content = split(body)
		return nil
	}

	if sheet, ok := f.spreadsheets[fileID]; ok {
		rows := sheet.ActiveSheet.Rows
		for _, req := range batch {
			var err error
			rows, err = applySheetRequest(rows, req)
			if err != nil {
				return types.NewAppError(types.ErrMutation, "batch rejected", err)
			}
		}
		sheet.ActiveSheet.Rows = rows
		sheet.ActiveSheet.Grid = GridProperties{RowCount: len(rows), ColumnCount: maxWidth(rows)}
		return nil
	}

	return types.NewAppErrorWithDetails(types.ErrInvalidInput, "file not found", fileID, nil)
}

// flatten renders a document as its body text: each paragraph followed by
// its implicit newline. Byte i-1 of the body corresponds to index i.
func flatten(doc *Document) string {
	var sb strings.Builder
	for _, p := range doc.Content {
		sb.WriteString(p.Text)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// split is the inverse of flatten.
func split(body string) []Paragraph {
	if body == "" {
		return nil
	}
	body = strings.TrimSuffix(body, "\n")
	var paragraphs []Paragraph
	for _, text := range strings.Split(body, "\n") {
		paragraphs = append(paragraphs, Paragraph{Text: text})
	}
	return paragraphs
}

func applyDocRequest(body string, req Request) (string, error) {
	switch {
	case req.DeleteContentRange != nil:
		r := req.DeleteContentRange
		if r.StartIndex < 1 || r.EndIndex <= r.StartIndex || r.EndIndex > len(body)+1 {
			return "", fmt.Errorf("invalid delete range [%d, %d) for body of extent %d",
				r.StartIndex, r.EndIndex, len(body)+1)
		}
		return body[:r.StartIndex-1] + body[r.EndIndex-1:], nil
	case req.InsertText != nil:
		r := req.InsertText
		if r.Index < 1 || r.Index > len(body)+1 {
			return "", fmt.Errorf("invalid insert index %d for body of extent %d", r.Index, len(body)+1)
		}
		return body[:r.Index-1] + r.Text + body[r.Index-1:], nil
	default:
		return "", fmt.Errorf("request is not a document operation")
	}
}

func applySheetRequest(rows [][]string, req Request) ([][]string, error) {
	switch {
	case req.ValuesUpdate != nil:
		return applyValuesUpdate(rows, req.ValuesUpdate)
	case req.InsertDimension != nil:
		return applyInsertDimension(rows, req.InsertDimension)
	case req.DeleteDimension != nil:
		return applyDeleteDimension(rows, req.DeleteDimension)
	default:
		return nil, fmt.Errorf("request is not a spreadsheet operation")
	}
}

func applyValuesUpdate(rows [][]string, upd *ValuesUpdate) ([][]string, error) {
	r, err := schema.ParseRange(upd.Range)
	if err != nil {
		return nil, err
	}
	for i, valueRow := range upd.Values {
		row := r.Start.Row + i
		for j, value := range valueRow {
			col := r.Start.Column + j
			rows = growTo(rows, row, col)
			rows[row-1][col-1] = value
		}
	}
	return rows, nil
}

func applyInsertDimension(rows [][]string, ins *InsertDimension) ([][]string, error) {
	if ins.Index < 1 {
		return nil, fmt.Errorf("invalid %s insert index %d", ins.Dimension, ins.Index)
	}
	if ins.Dimension == DimensionRows {
		if ins.Index > len(rows)+1 {
			return rows, nil
		}
		out := make([][]string, 0, len(rows)+1)
		out = append(out, rows[:ins.Index-1]...)
		out = append(out, make([]string, maxWidth(rows)))
		out = append(out, rows[ins.Index-1:]...)
		return out, nil
	}
	for i := range rows {
		row := rows[i]
		if ins.Index > len(row)+1 {
			continue
		}
		newRow := make([]string, 0, len(row)+1)
		newRow = append(newRow, row[:ins.Index-1]...)
		newRow = append(newRow, "")
		newRow = append(newRow, row[ins.Index-1:]...)
		rows[i] = newRow
	}
	return rows, nil
}

func applyDeleteDimension(rows [][]string, del *DeleteDimension) ([][]string, error) {
	if del.Index < 1 {
		return nil, fmt.Errorf("invalid %s delete index %d", del.Dimension, del.Index)
	}
	if del.Dimension == DimensionRows {
		if del.Index > len(rows) {
			return nil, fmt.Errorf("row %d out of range (%d rows)", del.Index, len(rows))
		}
		return append(rows[:del.Index-1], rows[del.Index:]...), nil
	}
	for i := range rows {
		if del.Index <= len(rows[i]) {
			rows[i] = append(rows[i][:del.Index-1], rows[i][del.Index:]...)
		}
	}
	return rows, nil
}

// growTo ensures the grid holds at least row rows and the target row holds
// at least col columns (both 1-based).
func growTo(rows [][]string, row, col int) [][]string {
	for len(rows) < row {
		rows = append(rows, nil)
	}
	for len(rows[row-1]) < col {
		rows[row-1] = append(rows[row-1], "")
	}
	return rows
}

func maxWidth(rows [][]string) int {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}
