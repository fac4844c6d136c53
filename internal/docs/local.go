package docs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"docs-assistant/internal/types"
)

// localFile is the on-disk shape of one stored file. Exactly one member is
// set.
type localFile struct {
	Document    *Document    `json:"document,omitempty"`
	Spreadsheet *Spreadsheet `json:"spreadsheet,omitempty"`
}

// LocalStore is a Reader and Mutator backed by JSON snapshot files, one file
// per Drive file ID. It stands in for the live Docs and Sheets collaborators
// when working offline; mutation batches follow the same index model.
type LocalStore struct {
	dir string
	mu  sync.Mutex
}

// NewLocalStore creates a store rooted at dir, creating it if needed.
func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, types.NewAppError(types.ErrConfig, "failed to create snapshot directory", err)
	}
	return &LocalStore{dir: dir}, nil
}

func (s *LocalStore) path(fileID string) string {
	return filepath.Join(s.dir, fileID+".json")
}

func (s *LocalStore) read(fileID string) (*localFile, error) {
	data, err := os.ReadFile(s.path(fileID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput, "file not found", fileID, nil)
		}
		return nil, types.NewAppError(types.ErrInternal, "failed to read snapshot", err)
	}
	var lf localFile
	if err := json.Unmarshal(data, &lf); err != nil {
		return nil, types.NewAppError(types.ErrInternal, "snapshot is not valid JSON", err)
	}
	return &lf, nil
}

func (s *LocalStore) write(fileID string, lf *localFile) error {
	data, err := json.MarshalIndent(lf, "", "  ")
	if err != nil {
		return types.NewAppError(types.ErrInternal, "failed to marshal snapshot", err)
	}
	if err := os.WriteFile(s.path(fileID), data, 0644); err != nil {
		return types.NewAppError(types.ErrInternal, "failed to write snapshot", err)
	}
	return nil
}

// PutDocument stores a document snapshot under fileID.
func (s *LocalStore) PutDocument(fileID string, doc *Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(fileID, &localFile{Document: doc})
}

// PutSpreadsheet stores a spreadsheet snapshot under fileID.
func (s *LocalStore) PutSpreadsheet(fileID string, sheet *Spreadsheet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(fileID, &localFile{Spreadsheet: sheet})
}

// FetchDocument implements Reader.
func (s *LocalStore) FetchDocument(_ context.Context, fileID string) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lf, err := s.read(fileID)
	if err != nil {
		return nil, err
	}
	if lf.Document == nil {
		return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput, "file is not a document", fileID, nil)
	}
	return lf.Document, nil
}

// FetchSpreadsheet implements Reader.
func (s *LocalStore) FetchSpreadsheet(_ context.Context, fileID string) (*Spreadsheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lf, err := s.read(fileID)
	if err != nil {
		return nil, err
	}
	if lf.Spreadsheet == nil {
		return nil, types.NewAppErrorWithDetails(types.ErrInvalidInput, "file is not a spreadsheet", fileID, nil)
	}
	return lf.Spreadsheet, nil
}

// ApplyBatch implements Mutator. The batch is applied to the in-memory copy
// first; the snapshot file is only rewritten when every request succeeds.
func (s *LocalStore) ApplyBatch(_ context.Context, fileID string, batch []Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lf, err := s.read(fileID)
	if err != nil {
		return err
	}

	switch {
	case lf.Document != nil:
		body := flatten(lf.Document)
		for _, req := range batch {
			body, err = applyDocRequest(body, req)
			if err != nil {
				return types.NewAppError(types.ErrMutation, "batch rejected", err)
			}
		}
		lf.Document.Content = split(body)

	case lf.Spreadsheet != nil:
		rows := lf.Spreadsheet.ActiveSheet.Rows
		for _, req := range batch {
			rows, err = applySheetRequest(rows, req)
			if err != nil {
				return types.NewAppError(types.ErrMutation, "batch rejected", err)
			}
		}
		lf.Spreadsheet.ActiveSheet.Rows = rows
		lf.Spreadsheet.ActiveSheet.Grid = GridProperties{RowCount: len(rows), ColumnCount: maxWidth(rows)}

	default:
		return types.NewAppErrorWithDetails(types.ErrInternal,
			"snapshot holds neither document nor spreadsheet", fileID, nil)
	}

	return s.write(fileID, lf)
}
