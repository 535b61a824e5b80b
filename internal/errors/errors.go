// FilePath: internal/errors/errors.go
package errors

import (
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	// Error types
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeDatabase       ErrorType = "database"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeRateLimit      ErrorType = "rate_limit"
	ErrorTypeInvalidRange   ErrorType = "invalid_range"
	ErrorTypeRangeTooNarrow ErrorType = "range_too_narrow"
	ErrorTypeRangeTooWide   ErrorType = "range_too_wide"
	ErrorTypePoolClosed     ErrorType = "pool_unavailable"
	ErrorTypeInternal       ErrorType = "internal"
)

// APIError represents a structured API error
type APIError struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Code      int       `json:"code"`
	RequestID string    `json:"request_id,omitempty"`
	Details   any       `json:"details,omitempty"`
	err       error     // Internal error for logging
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the internal error for errors.Is/As chains
func (e *APIError) Unwrap() error {
	return e.err
}

// WithRequestID adds a request ID to the error
func (e *APIError) WithRequestID(id string) *APIError {
	e.RequestID = id
	return e
}

// WithDetails adds additional details to the error
func (e *APIError) WithDetails(details any) *APIError {
	e.Details = details
	return e
}

// NewValidationError creates a new validation error
func NewValidationError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeValidation,
		Message: msg,
		Code:    http.StatusBadRequest,
		err:     err,
	}
}

// NewDatabaseError creates a new database error
func NewDatabaseError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeDatabase,
		Message: msg,
		Code:    http.StatusInternalServerError,
		err:     err,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeNotFound,
		Message: msg,
		Code:    http.StatusNotFound,
		err:     err,
	}
}

// NewRateLimitError creates a new rate limit error
func NewRateLimitError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeRateLimit,
		Message: msg,
		Code:    http.StatusTooManyRequests,
		err:     err,
	}
}

// NewInvalidRangeError reports a date range whose start lies after its end
func NewInvalidRangeError(msg string) *APIError {
	return &APIError{
		Type:    ErrorTypeInvalidRange,
		Message: msg,
		Code:    http.StatusBadRequest,
	}
}

// NewRangeTooNarrowError reports a date range shorter than the minimum window
func NewRangeTooNarrowError(msg string) *APIError {
	return &APIError{
		Type:    ErrorTypeRangeTooNarrow,
		Message: msg,
		Code:    http.StatusBadRequest,
	}
}

// NewRangeTooWideError reports a date range longer than the maximum window
func NewRangeTooWideError(msg string) *APIError {
	return &APIError{
		Type:    ErrorTypeRangeTooWide,
		Message: msg,
		Code:    http.StatusBadRequest,
	}
}

// NewPoolClosedError reports a work submission after executor shutdown began
func NewPoolClosedError(msg string) *APIError {
	return &APIError{
		Type:    ErrorTypePoolClosed,
		Message: msg,
		Code:    http.StatusServiceUnavailable,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(msg string, err error) *APIError {
	return &APIError{
		Type:    ErrorTypeInternal,
		Message: msg,
		Code:    http.StatusInternalServerError,
		err:     err,
	}
}

// IsNotFound checks if an error is a NotFound error
func IsNotFound(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Type == ErrorTypeNotFound
	}
	return false
}

// IsValidation checks if an error is a Validation error
func IsValidation(err error) bool {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr.Type == ErrorTypeValidation
	}
	return false
}

// IsRangeError checks if an error is one of the date range policy errors
func IsRangeError(err error) bool {
	apiErr, ok := err.(*APIError)
	if !ok {
		return false
	}
	switch apiErr.Type {
	case ErrorTypeInvalidRange, ErrorTypeRangeTooNarrow, ErrorTypeRangeTooWide:
		return true
	}
	return false
}

// AsAPIError returns the APIError for err, wrapping unknown errors as internal
func AsAPIError(err error) *APIError {
	if apiErr, ok := err.(*APIError); ok {
		return apiErr
	}
	return NewInternalError("unexpected error", err)
}
