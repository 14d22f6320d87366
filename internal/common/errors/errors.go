package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

type ErrorCode string

const (
	// Backend unreachable or non-success status.
	ErrCodeTransport ErrorCode = "TRANSPORT_ERROR"
	// Missing or malformed input, reported before any external call.
	ErrCodeValidation ErrorCode = "VALIDATION_ERROR"
	// One term's search failed; siblings are unaffected.
	ErrCodePartialEnrichment ErrorCode = "PARTIAL_ENRICHMENT_ERROR"
	// Read/write failure against the key-value store.
	ErrCodeStorage ErrorCode = "STORAGE_ERROR"
	// A response arrived after the analysis session was reset.
	ErrCodeSessionReset ErrorCode = "SESSION_RESET"
	// The requested profile does not exist.
	ErrCodeProfileNotFound ErrorCode = "PROFILE_NOT_FOUND"
	// Creating a profile whose id is already taken.
	ErrCodeProfileExists ErrorCode = "PROFILE_EXISTS"
)

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
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.cause
}

func newError(code ErrorCode, message string, cause error) *StandardError {
	e := &StandardError{
		Code:      code,
		Message:   message,
		Retryable: false,
		Timestamp: time.Now().UTC(),
		cause:     cause,
	}
	if cause != nil {
		e.Details = cause.Error()
	}
	return e
}

// NewTransportError reports a failed call to an external backend. The pipeline
// never retries on its own, so Retryable stays false.
func NewTransportError(service string, err error) *StandardError {
	e := newError(ErrCodeTransport, fmt.Sprintf("backend '%s' request failed", service), err)
	e.Metadata = map[string]interface{}{"service": service}
	return e
}

func NewValidationError(details string) *StandardError {
	e := newError(ErrCodeValidation, "invalid input", nil)
	e.Details = details
	return e
}

func NewPartialEnrichmentError(term string, err error) *StandardError {
	e := newError(ErrCodePartialEnrichment, "search failed for term", err)
	e.Metadata = map[string]interface{}{"term": term}
	return e
}

func NewStorageError(operation string, err error) *StandardError {
	e := newError(ErrCodeStorage, fmt.Sprintf("storage %s failed", operation), err)
	e.Metadata = map[string]interface{}{"operation": operation}
	return e
}

func NewSessionResetError() *StandardError {
	return newError(ErrCodeSessionReset, "analysis session was reset before the response arrived", nil)
}

func NewProfileNotFoundError(userID string) *StandardError {
	e := newError(ErrCodeProfileNotFound, "profile not found", nil)
	e.Details = fmt.Sprintf("userId: %s", userID)
	return e
}

func NewProfileExistsError(userID string) *StandardError {
	e := newError(ErrCodeProfileExists, "a profile with this user id already exists", nil)
	e.Details = fmt.Sprintf("userId: %s", userID)
	return e
}

// IsCode reports whether err, or anything it wraps, is a StandardError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code == code
	}
	return false
}

// CodeOf returns the code carried by err, or INTERNAL_ERROR.
func CodeOf(err error) ErrorCode {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr.Code
	}
	return "INTERNAL_ERROR"
}

// GetErrorCategory groups codes for log and metric labels.
func GetErrorCategory(code ErrorCode) string {
	switch code {
	case ErrCodeTransport:
		return "EXTERNAL"
	case ErrCodeValidation, ErrCodeProfileExists, ErrCodeProfileNotFound:
		return "INPUT"
	case ErrCodeStorage:
		return "STORAGE"
	case ErrCodePartialEnrichment:
		return "ENRICHMENT"
	case ErrCodeSessionReset:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}
