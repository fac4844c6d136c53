// Package types defines core data types and enums for the docs assistant application.
package types

// EditKind identifies the operation an edit instruction performs.
type EditKind string

const (
	EditReplace       EditKind = "replace"
	EditInsert        EditKind = "insert"
	EditDelete        EditKind = "delete"
	EditRewrite       EditKind = "rewrite"
	EditUpdateCell    EditKind = "updateCell"
	EditUpdateRange   EditKind = "updateRange"
	EditInsertRow     EditKind = "insertRow"
	EditInsertColumn  EditKind = "insertColumn"
	EditDeleteRow     EditKind = "deleteRow"
	EditDeleteColumn  EditKind = "deleteColumn"
	EditUpdateFormula EditKind = "updateFormula"
)

// KnownEditKinds lists every edit kind the pipeline accepts. Instructions
// carrying any other kind are rejected, never guessed at.
var KnownEditKinds = []EditKind{
	EditReplace, EditInsert, EditDelete, EditRewrite,
	EditUpdateCell, EditUpdateRange, EditInsertRow, EditInsertColumn,
	EditDeleteRow, EditDeleteColumn, EditUpdateFormula,
}

// IsKnownEditKind reports whether k is one of the recognized edit kinds.
func IsKnownEditKind(k EditKind) bool {
	for _, known := range KnownEditKinds {
		if k == known {
			return true
		}
	}
	return false
}

// IsDocumentKind reports whether k targets document text rather than a spreadsheet.
func IsDocumentKind(k EditKind) bool {
	switch k {
	case EditReplace, EditInsert, EditDelete, EditRewrite:
		return true
	}
	return false
}

// Confidence is the coarse certainty tier surfaced to the end user.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// IsValidConfidence reports whether c is one of the three confidence tiers.
func IsValidConfidence(c Confidence) bool {
	return c == ConfidenceHigh || c == ConfidenceMedium || c == ConfidenceLow
}

// ProposalStatus is the lifecycle state of an edit proposal.
type ProposalStatus string

const (
	StatusPending  ProposalStatus = "pending"
	StatusAccepted ProposalStatus = "accepted"
	StatusRejected ProposalStatus = "rejected"
)

// EditInstruction is the normalized result of the edit-proposal pipeline.
// Field presence is constrained by Kind; the schema package enforces the
// per-kind shape and the corrector fills Confidence/Reasoning defaults.
type EditInstruction struct {
	Kind EditKind `json:"type"`

	// Document text operations.
	FindText    string `json:"findText,omitempty"`
	ReplaceText string `json:"replaceText,omitempty"`
	NewContent  string `json:"newContent,omitempty"`
	Position    int    `json:"position,omitempty"`

	// Spreadsheet operations.
	Cell    string     `json:"cell,omitempty"`
	Range   string     `json:"range,omitempty"`
	Value   string     `json:"value,omitempty"`
	Values  [][]string `json:"values,omitempty"`
	Formula string     `json:"formula,omitempty"`
	Index   int        `json:"index,omitempty"`

	// Producer-reported metadata, defaulted by the corrector if absent.
	Confidence Confidence `json:"confidence,omitempty"`
	Reasoning  string     `json:"reasoning,omitempty"`

	// Status is owned by the UI layer, never mutated by the pipeline.
	Status ProposalStatus `json:"status,omitempty"`
}

// AssistantReply is the parsed shape of a model reply that carries an edit:
// a conversational response plus the embedded instruction.
type AssistantReply struct {
	Response string           `json:"response"`
	Edit     *EditInstruction `json:"edit"`
}

// ChatMessage is a single turn of the conversation sent to the model.
type ChatMessage struct {
	Role    string `json:"role"` // "user", "assistant" or "system"
	Content string `json:"content"`
}

// Config is the persisted application configuration.
type Config struct {
	OpenAIAPIKey  string `json:"openai_api_key"`
	OpenAIBaseURL string `json:"openai_base_url"`
	OpenAIModel   string `json:"openai_model"`

	// Referee settings control the optional second-model review pass.
	RefereeEnabled        bool   `json:"referee_enabled"`
	RefereeModel          string `json:"referee_model,omitempty"`
	RefereeTimeoutSeconds int    `json:"referee_timeout_seconds,omitempty"`

	// LastFileRef remembers the most recent file reference for convenience.
	LastFileRef string `json:"last_file_ref,omitempty"`
}

// ErrorCode classifies application errors for the UI layer.
type ErrorCode string

const (
	ErrNotAnEdit    ErrorCode = "NOT_AN_EDIT"
	ErrMalformed    ErrorCode = "MALFORMED_INSTRUCTION"
	ErrSchema       ErrorCode = "SCHEMA_VIOLATION"
	ErrUnlocatable  ErrorCode = "UNLOCATABLE"
	ErrMutation     ErrorCode = "MUTATION_FAILURE"
	ErrNetwork      ErrorCode = "NETWORK_ERROR"
	ErrAPICall      ErrorCode = "API_CALL_ERROR"
	ErrAPIRateLimit ErrorCode = "API_RATE_LIMIT"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrConfig       ErrorCode = "CONFIG_ERROR"
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
)

// AppError is the application error type carried across package boundaries.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
	Cause   error     `json:"-"`
}

// Error implements the error interface for AppError
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// Unwrap returns the underlying cause of the error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// NewAppError creates a new AppError with the given code, message, and optional cause
func NewAppError(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// NewAppErrorWithDetails creates a new AppError with details
func NewAppErrorWithDetails(code ErrorCode, message, details string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
		Cause:   cause,
	}
}

// CodeOf returns the ErrorCode carried by err, or ErrInternal for foreign errors.
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if appErr, ok := err.(*AppError); ok {
		return appErr.Code
	}
	return ErrInternal
}
