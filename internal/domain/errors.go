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
	ErrCodeValidation  = "VALIDATION_ERROR"
	ErrCodeNotFound    = "NOT_FOUND"
	ErrCodeUnavailable = "UNAVAILABLE"
	ErrCodeTimeout     = "TIMEOUT"
	ErrCodeCancelled   = "CANCELLED"
	ErrCodeInternal    = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrEmptyQuestion    = NewDomainError(ErrCodeValidation, "question cannot be empty")
	ErrEmptyDocumentID  = NewDomainError(ErrCodeValidation, "document id is required")
	ErrInvalidThreshold = NewDomainError(ErrCodeValidation, "similarity threshold must be between -1 and 1")
)

// Not found errors
var (
	ErrDocumentNotFound = NewDomainError(ErrCodeNotFound, "document not found")
)

// Dependency failures. These surface to the caller as a distinct
// "temporarily unable to answer" condition, never as an empty answer.
var (
	ErrEmbeddingUnavailable = NewDomainError(ErrCodeUnavailable, "embedding service unavailable")
	ErrRetrievalUnavailable = NewDomainError(ErrCodeUnavailable, "vector index unavailable")
	ErrGenerationFailure    = NewDomainError(ErrCodeInternal, "language model request failed")
	ErrGenerationTimeout    = NewDomainError(ErrCodeTimeout, "language model request timed out")

	// ErrGenerationRejected marks a request the model API refused for a
	// reason a retry cannot change, such as an invalid model or an
	// oversized prompt. Rate limits and timeouts are not rejections.
	ErrGenerationRejected = NewDomainError(ErrCodeInternal, "language model rejected the request")
)

// ErrQueryCancelled is returned when the caller's deadline or
// cancellation propagates into the pipeline. No partial answer is kept.
var ErrQueryCancelled = NewDomainError(ErrCodeCancelled, "query cancelled by caller")
