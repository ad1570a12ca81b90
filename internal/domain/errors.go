package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"

	// Normalization errors: the AI backend returns loosely-typed payloads,
	// each failure mode is reported separately so callers can recover.
	ErrMalformedPayload ErrorCode = "MALFORMED_PAYLOAD"
	ErrUnexpectedShape  ErrorCode = "UNEXPECTED_SHAPE"
	ErrNoValidQuestions ErrorCode = "NO_VALID_QUESTIONS"

	// Boundary errors
	ErrNetworkFailure     ErrorCode = "NETWORK_FAILURE"
	ErrPersistenceFailure ErrorCode = "PERSISTENCE_FAILURE"

	// Session errors
	ErrSessionNotFound     ErrorCode = "SESSION_NOT_FOUND"
	ErrInvalidTransition   ErrorCode = "INVALID_TRANSITION"
	ErrGenerationCancelled ErrorCode = "GENERATION_CANCELLED"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Cause   error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// Helper functions for common errors
func NewInternalError(message string, cause error) *DomainError {
	return NewError(ErrInternal, message, cause)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(ErrInvalidInput, message, nil)
}

func NewMalformedPayloadError(cause error) *DomainError {
	return NewError(ErrMalformedPayload, "Quiz payload could not be parsed", cause)
}

func NewUnexpectedShapeError(message string) *DomainError {
	return NewError(ErrUnexpectedShape, message, nil)
}

func NewNoValidQuestionsError() *DomainError {
	return NewError(ErrNoValidQuestions, "No valid questions could be extracted from the payload", nil)
}

func NewNetworkFailureError(message string, cause error) *DomainError {
	return NewError(ErrNetworkFailure, message, cause)
}

func NewPersistenceFailureError(message string, cause error) *DomainError {
	return NewError(ErrPersistenceFailure, message, cause)
}

func NewSessionNotFoundError(sessionID string) *DomainError {
	return NewError(ErrSessionNotFound, fmt.Sprintf("Session not found: %s", sessionID), nil)
}

func NewInvalidTransitionError(message string) *DomainError {
	return NewError(ErrInvalidTransition, message, nil)
}

func NewGenerationCancelledError() *DomainError {
	return NewError(ErrGenerationCancelled, "Quiz generation was cancelled", nil)
}
