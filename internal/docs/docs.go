// Package docs defines the read model and mutation contracts for the
// external Google Docs / Sheets collaborators. The pipeline only ever sees
// these shapes; transport, auth and API plumbing live outside this module.
package docs

import (
	"context"
)

// Paragraph is one text block of a document read model.
type Paragraph struct {
	Text string `json:"text"`
}

// Document is an immutable snapshot of a document as exposed by the
// document-read collaborator. A fresh snapshot is fetched after every
// accepted edit.
type Document struct {
	Title   string      `json:"title"`
	Content []Paragraph `json:"content"`
}

// EndIndex returns the document's maximum end index in the range model:
// index 0 is the implicit document root, body text starts at index 1, and
// every paragraph contributes its text plus one implicit newline.
func (d *Document) EndIndex() int {
	end := 1
	for _, p := range d.Content {
		end += len(p.Text) + 1
	}
	return end
}

// GridProperties describes the extent of a sheet grid.
type GridProperties struct {
	RowCount    int `json:"rowCount"`
	ColumnCount int `json:"columnCount"`
}

// SheetMetadata identifies one sheet of a spreadsheet.
type SheetMetadata struct {
	SheetID int    `json:"sheetId"`
	Title   string `json:"title"`
}

// ActiveSheet is the materialized grid of the sheet currently being edited.
type ActiveSheet struct {
	Rows [][]string     `json:"rows"`
	Grid GridProperties `json:"gridProperties"`
}

// Spreadsheet is an immutable snapshot of a spreadsheet read model.
type Spreadsheet struct {
	Title       string          `json:"title"`
	Sheets      []SheetMetadata `json:"sheets"`
	ActiveSheet ActiveSheet     `json:"activeSheet"`
}

// Dimension selects rows or columns for dimension operations.
type Dimension string

const (
	DimensionRows    Dimension = "ROWS"
	DimensionColumns Dimension = "COLUMNS"
)

// DeleteContentRange removes document text in [StartIndex, EndIndex).
type DeleteContentRange struct {
	StartIndex int `json:"startIndex"`
	EndIndex   int `json:"endIndex"`
}

// InsertText inserts text at a document index.
type InsertText struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// ValuesUpdate writes a grid of values over an A1 range.
type ValuesUpdate struct {
	Range  string     `json:"range"`
	Values [][]string `json:"values"`
}

// InsertDimension inserts a row or column at a 1-based index, shifting
// existing data.
type InsertDimension struct {
	Dimension Dimension `json:"dimension"`
	Index     int       `json:"index"`
}

// DeleteDimension removes a row or column at a 1-based index.
type DeleteDimension struct {
	Dimension Dimension `json:"dimension"`
	Index     int       `json:"index"`
}

// Request is one primitive range operation. Exactly one member is set.
type Request struct {
	DeleteContentRange *DeleteContentRange `json:"deleteContentRange,omitempty"`
	InsertText         *InsertText         `json:"insertText,omitempty"`
	ValuesUpdate       *ValuesUpdate       `json:"valuesUpdate,omitempty"`
	InsertDimension    *InsertDimension    `json:"insertDimension,omitempty"`
	DeleteDimension    *DeleteDimension    `json:"deleteDimension,omitempty"`
}

// Reader is the document-read collaborator.
type Reader interface {
	FetchDocument(ctx context.Context, fileID string) (*Document, error)
	FetchSpreadsheet(ctx context.Context, fileID string) (*Spreadsheet, error)
}

// Mutator is the document-mutation collaborator. ApplyBatch applies the
// ordered requests as a single atomic batch: either every request lands or
// none do.
type Mutator interface {
	ApplyBatch(ctx context.Context, fileID string, batch []Request) error
}
