// Package errors provides standardized error handling for enrichment workers
// and their BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Credit ledger
	ErrCodeLedgerUnavailable ErrorCode = "LEDGER_UNAVAILABLE"

	// Enrichment requests
	ErrCodeInvalidEnrichmentInput ErrorCode = "INVALID_ENRICHMENT_INPUT"
	ErrCodeProviderNotFound       ErrorCode = "PROVIDER_NOT_FOUND"
	ErrCodeEnrichmentCancelled    ErrorCode = "ENRICHMENT_CANCELLED"

	// Reference data and scoring
	ErrCodeKnowledgeBaseInvalid ErrorCode = "KNOWLEDGE_BASE_INVALID"
	ErrCodeScoringFailed        ErrorCode = "SCORING_FAILED"

	// Infrastructure
	ErrCodeDatabaseConnectionFailed      ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeElasticsearchConnectionFailed ErrorCode = "ELASTICSEARCH_CONNECTION_FAILED"
	ErrCodeExternalService               ErrorCode = "EXTERNAL_SERVICE_ERROR"
	ErrCodeTimeout                       ErrorCode = "TIMEOUT_ERROR"
	ErrCodeInternal                      ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`

	cause error
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

// WithMetadata sets a metadata entry and returns the same error.
func (e *StandardError) WithMetadata(key string, value interface{}) *StandardError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// AsStandardError finds the first StandardError in err's chain.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// HasCode reports whether err carries a StandardError with the given code.
func HasCode(err error, code ErrorCode) bool {
	stdErr, ok := AsStandardError(err)
	return ok && stdErr.Code == code
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewLedgerUnavailableError wraps a failure of the credit ledger itself.
// It aborts the enrichment call and is retryable.
func NewLedgerUnavailableError(operation string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeLedgerUnavailable,
		Message:   "Credit ledger unavailable",
		Details:   fmt.Sprintf("operation: %s, error: %v", operation, err),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewInvalidEnrichmentInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidEnrichmentInput,
		Message:   "Invalid enrichment input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewProviderNotFoundError(name string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderNotFound,
		Message:   "Provider not registered",
		Details:   fmt.Sprintf("provider: %s", name),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewEnrichmentCancelledError reports a waterfall cut short by its context.
// Credits already charged stay charged.
func NewEnrichmentCancelledError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeEnrichmentCancelled,
		Message:   "Enrichment cancelled before completion",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewKnowledgeBaseInvalidError(details string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeKnowledgeBaseInvalid,
		Message:   "Provider knowledge base failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewScoringFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeScoringFailed,
		Message:   "Intelligence scoring failed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseConnectionFailedError creates a retryable database connection error.
func NewDatabaseConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseConnectionFailed,
		Message:   "Database connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// NewElasticsearchConnectionFailedError creates a retryable Elasticsearch connection error.
func NewElasticsearchConnectionFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeElasticsearchConnectionFailed,
		Message:   "Elasticsearch connection error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// Generic constructors

func NewExternalServiceError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeExternalService,
		Message:   fmt.Sprintf("External service '%s' error", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewTimeoutError(service string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeTimeout,
		Message:   fmt.Sprintf("Service '%s' timeout", service),
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// GetRetryCount returns the recommended retry count for a code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeLedgerUnavailable,
		ErrCodeDatabaseConnectionFailed,
		ErrCodeElasticsearchConnectionFailed,
		ErrCodeExternalService:
		return 3

	case ErrCodeTimeout,
		ErrCodeEnrichmentCancelled:
		return 2

	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
// BPMN error codes are the internal codes.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	for k, v := range stdErr.Metadata {
		vars[k] = v
	}

	return &BPMNError{
		Code:           string(stdErr.Code),
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "LEDGER"):
		return "BILLING"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "ELASTICSEARCH"):
		return "DATABASE"
	case strings.Contains(codeStr, "PROVIDER") || strings.Contains(codeStr, "ENRICHMENT"):
		return "ENRICHMENT"
	case strings.Contains(codeStr, "KNOWLEDGE") || strings.Contains(codeStr, "SCORING"):
		return "INTELLIGENCE"
	case strings.Contains(codeStr, "TIMEOUT") || strings.Contains(codeStr, "EXTERNAL"):
		return "EXTERNAL"
	default:
		return "OTHER"
	}
}
