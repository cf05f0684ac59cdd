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
	ErrCodeConfiguration        = "CONFIGURATION_ERROR"
	ErrCodeValidation           = "VALIDATION_ERROR"
	ErrCodeNotFound             = "NOT_FOUND"
	ErrCodeRetrievalUnavailable = "RETRIEVAL_UNAVAILABLE"
	ErrCodeGenerationFailure    = "GENERATION_FAILURE"
	ErrCodeInternalError        = "INTERNAL_ERROR"
)

// Validation errors
var (
	ErrMissingQuery         = NewDomainError(ErrCodeValidation, "query is required")
	ErrMissingSource        = NewDomainError(ErrCodeValidation, "document source is required")
	ErrEmptyDocument        = NewDomainError(ErrCodeValidation, "document text is empty")
	ErrInvalidIngestStatus  = NewDomainError(ErrCodeValidation, "invalid ingest job status")
	ErrMissingRequiredField = NewDomainError(ErrCodeValidation, "missing required field")
)

// Not found errors
var (
	ErrDocumentNotFound  = NewDomainError(ErrCodeNotFound, "document not found")
	ErrIngestJobNotFound = NewDomainError(ErrCodeNotFound, "ingest job not found")
)

// Collaborator errors
var (
	ErrRetrievalUnavailable = NewDomainError(ErrCodeRetrievalUnavailable, "similarity search is unavailable")
	ErrGenerationFailure    = NewDomainError(ErrCodeGenerationFailure, "answer generation failed")
	ErrEmptyGeneration      = NewDomainError(ErrCodeGenerationFailure, "generation returned empty text")
)

// NewRetrievalUnavailable wraps a collaborator failure in the retrieval
// error code so callers can surface it as a single stream error event.
func NewRetrievalUnavailable(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeRetrievalUnavailable, "similarity search is unavailable", err)
}

// NewGenerationFailure wraps a generation collaborator failure.
func NewGenerationFailure(err error) *DomainError {
	return NewDomainErrorWithCause(ErrCodeGenerationFailure, "answer generation failed", err)
}
