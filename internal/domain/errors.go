package domain

import "fmt"

// DomainError represents a domain-specific error
type DomainError struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code and message,
// so wrapped copies of a sentinel still match it.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// NewDomainError creates a new DomainError
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     nil,
	}
}

// NewDomainErrorWithCause creates a new DomainError with an underlying cause
func NewDomainErrorWithCause(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain error codes
const (
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeAlreadyExists      = "ALREADY_EXISTS"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeConflict           = "CONFLICT"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeInvalidOperation   = "INVALID_OPERATION"
	ErrCodeProviderOverloaded = "PROVIDER_OVERLOADED"
	ErrCodeConfiguration      = "CONFIGURATION_ERROR"
)

// Validation errors
var (
	ErrInvalidCandidateStatus = NewDomainError(ErrCodeValidation, "invalid candidate status")
	ErrInvalidIndexJobStatus  = NewDomainError(ErrCodeValidation, "invalid index job status")
	ErrMissingRequiredField   = NewDomainError(ErrCodeValidation, "missing required field")
	ErrEmptyCV                = NewDomainError(ErrCodeValidation, "candidate has no CV text")
)

// Not found errors
var (
	ErrCandidateNotFound  = NewDomainError(ErrCodeNotFound, "candidate not found")
	ErrJobPostingNotFound = NewDomainError(ErrCodeNotFound, "job posting not found")
	ErrEvaluationNotFound = NewDomainError(ErrCodeNotFound, "evaluation not found")
	ErrChunksNotFound     = NewDomainError(ErrCodeNotFound, "chunk set not found")
	ErrIndexNotFound      = NewDomainError(ErrCodeNotFound, "vector index not found")
	ErrAPIKeyNotFound     = NewDomainError(ErrCodeNotFound, "api key not found")
	ErrArchiveNotFound    = NewDomainError(ErrCodeNotFound, "archived document not found")
)

// Authorization errors
var (
	ErrAPIKeyRevoked = NewDomainError(ErrCodeUnauthorized, "api key has been revoked")
	ErrInvalidAPIKey = NewDomainError(ErrCodeUnauthorized, "invalid api key")
)

// Evaluation errors
var (
	ErrEvaluationInProgress   = NewDomainError(ErrCodeConflict, "an evaluation for this candidate is already running")
	ErrProviderOverloaded     = NewDomainError(ErrCodeProviderOverloaded, "provider temporarily overloaded, try again later")
	ErrProviderNotConfigured  = NewDomainError(ErrCodeConfiguration, "language model provider is not configured")
	ErrEvaluationFailedPrefix = "failed to evaluate candidate"
)

// NewEvaluationFailedError wraps the last provider error after the retry budget is spent.
func NewEvaluationFailedError(cause error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeInternalError, ErrEvaluationFailedPrefix, cause)
}

// Storage errors
var (
	ErrArchiveNotConfigured = NewDomainError(ErrCodeConfiguration, "archive storage is not configured")
)
