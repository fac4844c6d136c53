// Package proposal tracks edit proposals through their approval lifecycle
// and persists them across sessions.
package proposal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"docs-assistant/internal/docs"
	"docs-assistant/internal/types"
)

// Record is one tracked edit proposal.
type Record struct {
	ID        string                `json:"id"`
	FileID    string                `json:"file_id"`
	FileKind  string                `json:"file_kind"` // "document" or "spreadsheet"
	Edit      types.EditInstruction `json:"edit"`
	Response  string                `json:"response"`
	Preview   string                `json:"preview,omitempty"`
	Status    types.ProposalStatus  `json:"status"`
	CreatedAt time.Time             `json:"created_at"`
	DecidedAt time.Time             `json:"decided_at,omitempty"`
	// FailureMsg holds the mutation error when an accepted proposal failed
	// to apply and was reverted to pending.
	FailureMsg string `json:"failure_msg,omitempty"`
	RetryCount int    `json:"retry_count"`
	// Batch is the planned primitive operations, stored so an accept can be
	// inspected after the fact.
	Batch []docs.Request `json:"batch,omitempty"`
}

// Manager stores proposal records, keyed by ID, with JSON persistence.
type Manager struct {
	baseDir   string
	mu        sync.RWMutex
	proposals map[string]*Record
}

// NewManager creates a proposal manager rooted at baseDir. An empty baseDir
// defaults to ~/.docs-assistant/proposals.
func NewManager(baseDir string) (*Manager, error) {
	if baseDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, ".docs-assistant", "proposals")
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create proposals directory: %w", err)
	}

	m := &Manager{
		baseDir:   baseDir,
		proposals: make(map[string]*Record),
	}

	if err := m.load(); err != nil {
		return nil, err
	}

	return m, nil
}

// Create registers a new pending proposal and returns its assigned ID.
func (m *Manager) Create(fileID, fileKind, response, preview string, edit types.EditInstruction) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	record := &Record{
		ID:        uuid.NewString(),
		FileID:    fileID,
		FileKind:  fileKind,
		Edit:      edit,
		Response:  response,
		Preview:   preview,
		Status:    types.StatusPending,
		CreatedAt: time.Now(),
	}
	record.Edit.Status = types.StatusPending

	m.proposals[record.ID] = record
	if err := m.save(); err != nil {
		return nil, err
	}

	recordCopy := *record
	return &recordCopy, nil
}

// Get returns a copy of the record with the given ID.
func (m *Manager) Get(id string) (*Record, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	record, ok := m.proposals[id]
	if !ok {
		return nil, false
	}
	recordCopy := *record
	return &recordCopy, true
}

// List returns copies of all records, newest first.
func (m *Manager) List() []*Record {
	m.mu.RLock()
	defer m.mu.RUnlock()

	records := make([]*Record, 0, len(m.proposals))
	for _, record := range m.proposals {
		recordCopy := *record
		records = append(records, &recordCopy)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records
}

// Pending returns copies of the records still awaiting a decision.
func (m *Manager) Pending() []*Record {
	records := m.List()
	pending := records[:0]
	for _, r := range records {
		if r.Status == types.StatusPending {
			pending = append(pending, r)
		}
	}
	return pending
}

// Accept marks a pending proposal accepted and stores the planned batch.
func (m *Manager) Accept(id string, batch []docs.Request) error {
	return m.decide(id, types.StatusAccepted, batch)
}

// Reject marks a pending proposal rejected.
func (m *Manager) Reject(id string) error {
	return m.decide(id, types.StatusRejected, nil)
}

func (m *Manager) decide(id string, status types.ProposalStatus, batch []docs.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.proposals[id]
	if !ok {
		return types.NewAppErrorWithDetails(types.ErrInvalidInput, "proposal not found", id, nil)
	}
	if record.Status != types.StatusPending {
		return types.NewAppErrorWithDetails(types.ErrInvalidInput,
			"proposal already decided", string(record.Status), nil)
	}

	record.Status = status
	record.Edit.Status = status
	record.DecidedAt = time.Now()
	record.FailureMsg = ""
	if batch != nil {
		record.Batch = batch
	}

	return m.save()
}

// MarkFailed reverts an accepted proposal to pending after its mutation
// batch failed, recording the failure so the user can retry or reject.
func (m *Manager) MarkFailed(id, failureMsg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	record, ok := m.proposals[id]
	if !ok {
		return types.NewAppErrorWithDetails(types.ErrInvalidInput, "proposal not found", id, nil)
	}

	record.Status = types.StatusPending
	record.Edit.Status = types.StatusPending
	record.FailureMsg = failureMsg
	record.RetryCount++
	record.DecidedAt = time.Time{}

	return m.save()
}

// Clear removes every record.
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.proposals = make(map[string]*Record)
	return m.save()
}

func (m *Manager) load() error {
	filePath := filepath.Join(m.baseDir, "proposals.json")

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read proposals file: %w", err)
	}

	var records []*Record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("failed to unmarshal proposals: %w", err)
	}

	for _, record := range records {
		m.proposals[record.ID] = record
	}

	return nil
}

func (m *Manager) save() error {
	records := make([]*Record, 0, len(m.proposals))
	for _, record := range m.proposals {
		records = append(records, record)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal proposals: %w", err)
	}

	filePath := filepath.Join(m.baseDir, "proposals.json")
	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write proposals file: %w", err)
	}

	return nil
}
