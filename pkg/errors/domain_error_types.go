package errors

import (
	stderrors "errors"
	"fmt"
)

// DomainErrorType represents the category of domain error
type DomainErrorType string

const (
	// DomainValidationError indicates input validation failure
	DomainValidationError DomainErrorType = "VALIDATION_ERROR"

	// DomainBusinessRuleError indicates a business rule violation
	DomainBusinessRuleError DomainErrorType = "BUSINESS_RULE_ERROR"

	// DomainNotFoundError indicates a resource was not found
	DomainNotFoundError DomainErrorType = "NOT_FOUND"

	// DomainConflictError indicates a conflict with existing state
	DomainConflictError DomainErrorType = "CONFLICT"

	// DomainRateLimitError indicates rate limit exceeded
	DomainRateLimitError DomainErrorType = "RATE_LIMIT_ERROR"
)

// DomainError represents a domain-specific error with rich context
type DomainError struct {
	Type       DomainErrorType        `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Retryable  bool                   `json:"retryable"`
	StatusCode int                    `json:"status_code"`
}

// NewDomainError creates a new domain error
func NewDomainError(errorType DomainErrorType, code string, message string) *DomainError {
	return &DomainError{
		Type:       errorType,
		Code:       code,
		Message:    message,
		Details:    make(map[string]interface{}),
		Retryable:  false,
		StatusCode: domainErrorTypeToStatusCode(errorType),
	}
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s:%s] %s: %v", e.Type, e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
}

// WithRetryable sets whether the error is retryable
func (e *DomainError) WithRetryable(retryable bool) *DomainError {
	e.Retryable = retryable
	return e
}

// Is checks if the error is of a specific type
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// Unwrap returns the underlying cause
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// domainErrorTypeToStatusCode maps error types to HTTP status codes
func domainErrorTypeToStatusCode(errorType DomainErrorType) int {
	switch errorType {
	case DomainValidationError:
		return 400 // Bad Request
	case DomainBusinessRuleError:
		return 422 // Unprocessable Entity
	case DomainNotFoundError:
		return 404 // Not Found
	case DomainConflictError:
		return 409 // Conflict
	case DomainRateLimitError:
		return 429 // Too Many Requests
	default:
		return 500 // Internal Server Error
	}
}

// Common domain errors - these are pre-defined errors that can be reused.
// Wrap them with fmt.Errorf("%w: ...") to add context; never mutate them.

var (
	// Journey errors
	ErrJourneyNotFound = NewDomainError(
		DomainNotFoundError,
		"JOURNEY_NOT_FOUND",
		"The requested journey does not exist",
	)

	ErrScenarioRequired = NewDomainError(
		DomainValidationError,
		"SCENARIO_REQUIRED",
		"Scenario text is required",
	)

	ErrScenarioTooLong = NewDomainError(
		DomainValidationError,
		"SCENARIO_TOO_LONG",
		"Scenario exceeds maximum length",
	)

	ErrTitleTooLong = NewDomainError(
		DomainValidationError,
		"TITLE_TOO_LONG",
		"Journey title exceeds maximum length",
	)

	ErrFieldTooLong = NewDomainError(
		DomainValidationError,
		"FIELD_TOO_LONG",
		"Field exceeds maximum length",
	)

	ErrEmptyUpdate = NewDomainError(
		DomainValidationError,
		"EMPTY_UPDATE",
		"At least one field must be provided",
	)

	// Node errors
	ErrNodeNotFound = NewDomainError(
		DomainNotFoundError,
		"NODE_NOT_FOUND",
		"The requested node does not exist",
	)

	ErrInvalidNodePosition = NewDomainError(
		DomainValidationError,
		"INVALID_NODE_POSITION",
		"Node position coordinates are invalid",
	)

	ErrInvalidEmotion = NewDomainError(
		DomainValidationError,
		"INVALID_EMOTION",
		"Emotion must be positive, neutral or negative",
	)

	// Edge errors
	ErrEdgeNotFound = NewDomainError(
		DomainNotFoundError,
		"EDGE_NOT_FOUND",
		"The requested edge does not exist",
	)

	ErrSelfReferentialEdge = NewDomainError(
		DomainBusinessRuleError,
		"SELF_REFERENTIAL_EDGE",
		"Cannot create an edge from a node to itself",
	)

	ErrDuplicateEdge = NewDomainError(
		DomainConflictError,
		"DUPLICATE_EDGE",
		"An edge between these nodes already exists",
	)

	ErrEdgeLimitExceeded = NewDomainError(
		DomainBusinessRuleError,
		"EDGE_LIMIT_EXCEEDED",
		"Maximum number of edges in journey exceeded",
	)

	// History errors
	ErrNothingToUndo = NewDomainError(
		DomainConflictError,
		"NOTHING_TO_UNDO",
		"There is no earlier version of this journey",
	)

	ErrNothingToRedo = NewDomainError(
		DomainConflictError,
		"NOTHING_TO_REDO",
		"There is no later version of this journey",
	)

	// Rate limiting errors
	ErrRateLimitExceeded = NewDomainError(
		DomainRateLimitError,
		"RATE_LIMIT_EXCEEDED",
		"Too many requests, please try again later",
	).WithRetryable(true)
)

// GetDomainError extracts a DomainError from an error chain
func GetDomainError(err error) *DomainError {
	var domainErr *DomainError
	if stderrors.As(err, &domainErr) {
		return domainErr
	}
	return nil
}

// IsDomainCode reports whether err carries a domain error with the given code
func IsDomainCode(err error, code string) bool {
	d := GetDomainError(err)
	return d != nil && d.Code == code
}
