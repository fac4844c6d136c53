// Package parser provides input parsing and type identification for Drive
// file references supplied by the user.
package parser

import (
	"regexp"
	"strings"

	"docs-assistant/internal/logger"
	"docs-assistant/internal/types"
)

// FileKind classifies a parsed Drive reference.
type FileKind string

const (
	FileKindDocument    FileKind = "document"
	FileKindSpreadsheet FileKind = "spreadsheet"
	FileKindUnknown     FileKind = "unknown" // bare ID, kind resolved at fetch time
)

// FileRef is a parsed Drive file reference.
type FileRef struct {
	ID   string
	Kind FileKind
}

var (
	// Drive file IDs are opaque tokens of letters, digits, hyphens and
	// underscores, typically 25+ characters.
	fileIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{20,}$`)
	// URL forms: https://docs.google.com/document/d/<id>/... and the
	// spreadsheets equivalent.
	docsURLPattern   = regexp.MustCompile(`docs\.google\.com/document/d/([A-Za-z0-9_-]+)`)
	sheetsURLPattern = regexp.MustCompile(`docs\.google\.com/spreadsheets/d/([A-Za-z0-9_-]+)`)
)

// ParseInput analyzes a user-supplied file reference and extracts the file
// ID plus the kind implied by the reference form.
//
// Input type rules:
// - docs.google.com/document/d/<id> URL → document
// - docs.google.com/spreadsheets/d/<id> URL → spreadsheet
// - bare Drive file ID → unknown kind, resolved when the file is fetched
// - anything else → error (invalid input)
func ParseInput(input string) (*FileRef, error) {
	logger.Debug("parsing file reference", logger.String("input", input))

	input = strings.TrimSpace(input)
	if input == "" {
		logger.Warn("parse input failed: empty input")
		return nil, types.NewAppError(types.ErrInvalidInput, "file reference must not be empty", nil)
	}

	if m := docsURLPattern.FindStringSubmatch(input); m != nil {
		logger.Info("input identified as document URL", logger.String("fileID", m[1]))
		return &FileRef{ID: m[1], Kind: FileKindDocument}, nil
	}

	if m := sheetsURLPattern.FindStringSubmatch(input); m != nil {
		logger.Info("input identified as spreadsheet URL", logger.String("fileID", m[1]))
		return &FileRef{ID: m[1], Kind: FileKindSpreadsheet}, nil
	}

	if fileIDPattern.MatchString(input) {
		logger.Info("input identified as bare file ID", logger.String("fileID", input))
		return &FileRef{ID: input, Kind: FileKindUnknown}, nil
	}

	logger.Warn("invalid file reference format", logger.String("input", input))
	return nil, types.NewAppError(types.ErrInvalidInput, "unrecognized file reference format", nil)
}
