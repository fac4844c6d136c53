// Package schema validates parsed model output against the known
// edit-operation shapes and normalizes it into an EditInstruction.
package schema

import (
	"fmt"
	"strconv"
	"strings"
)

// CellRef is a parsed A1-notation cell reference. Column and Row are 1-based.
type CellRef struct {
	Column int
	Row    int
}

// A1Range is a parsed A1-notation rectangle, optionally sheet-qualified.
type A1Range struct {
	Sheet string
	Start CellRef
	End   CellRef
}

// ColSpan returns the number of columns the range covers.
func (r *A1Range) ColSpan() int {
	return r.End.Column - r.Start.Column + 1
}

// RowSpan returns the number of rows the range covers.
func (r *A1Range) RowSpan() int {
	return r.End.Row - r.Start.Row + 1
}

// ParseCell parses a single A1 cell reference such as "B3".
func ParseCell(s string) (CellRef, error) {
	var ref CellRef

	i := 0
	col := 0
	for i < len(s) {
		c := s[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c < 'A' || c > 'Z' {
			break
		}
		col = col*26 + int(c-'A'+1)
		i++
	}
	if col == 0 {
		return ref, fmt.Errorf("invalid cell reference %q: missing column letters", s)
	}

	row, err := strconv.Atoi(s[i:])
	if err != nil || row < 1 {
		return ref, fmt.Errorf("invalid cell reference %q: bad row number", s)
	}

	ref.Column = col
	ref.Row = row
	return ref, nil
}

// ParseRange parses an A1 range such as "A1:C2" or "Sheet1!A1:C2". A bare
// cell reference is treated as a single-cell range.
func ParseRange(s string) (*A1Range, error) {
	r := &A1Range{}

	rest := s
	if bang := strings.LastIndexByte(s, '!'); bang >= 0 {
		r.Sheet = strings.Trim(s[:bang], "'")
		rest = s[bang+1:]
	}

	parts := strings.SplitN(rest, ":", 2)
	start, err := ParseCell(parts[0])
	if err != nil {
		return nil, err
	}
	r.Start = start

	if len(parts) == 1 {
		r.End = start
		return r, nil
	}

	end, err := ParseCell(parts[1])
	if err != nil {
		return nil, err
	}
	if end.Column < start.Column || end.Row < start.Row {
		return nil, fmt.Errorf("invalid range %q: end precedes start", s)
	}
	r.End = end
	return r, nil
}

// ColumnName converts a 1-based column number to its A1 letter form.
func ColumnName(col int) string {
	var sb strings.Builder
	for col > 0 {
		col--
		sb.WriteByte(byte('A' + col%26))
		col /= 26
	}
	// Reverse the accumulated letters.
	b := []byte(sb.String())
	for i, j := 0, len(b)-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return string(b)
}
