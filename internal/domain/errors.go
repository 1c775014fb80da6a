package domain

import (
	"fmt"
	"time"
)

// Error codes for API-facing failure scenarios
const (
	ErrCodeInvalidInput   = "INVALID_INPUT"
	ErrCodeCatalog        = "CATALOG_ERROR"
	ErrCodeSynthesis      = "SYNTHESIS_ERROR"
	ErrCodeDatabase       = "DATABASE_ERROR"
	ErrCodeRateLimit      = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternalServer = "INTERNAL_SERVER_ERROR"
)

// APIError is a standardized error response envelope for the HTTP surface.
type APIError struct {
	Code      string    `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewAPIError creates a new APIError with timestamp.
func NewAPIError(code, message, details, requestID string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// CatalogError wraps a configuration-time catalog fault. It is fatal: the
// engine must not start with an invalid catalog since every downstream
// guarantee depends on it.
type CatalogError struct {
	Code   string // analyte code, when known
	Source string // "builtin" or a file path
	Err    error
}

// Error implements the error interface.
func (e *CatalogError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("catalog entry %s (%s): %v", e.Code, e.Source, e.Err)
	}
	return fmt.Sprintf("catalog (%s): %v", e.Source, e.Err)
}

// Unwrap exposes the underlying validation error.
func (e *CatalogError) Unwrap() error {
	return e.Err
}

// ValidationError represents input validation errors on the API boundary.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value"`
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Value:   value,
	}
}
