package sessions

import (
	"errors"
	"fmt"
	"strings"
)

// Error types for session data operations

// ValidationError represents a rejected submission. The write is never
// attempted when validation fails.
type ValidationError struct {
	Field   string
	Bands   []string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if len(e.Bands) > 0 {
		return fmt.Sprintf("validation failed: %s (invalid bands: %s)", e.Message, strings.Join(e.Bands, ", "))
	}
	if e.Cause != nil {
		return fmt.Sprintf("validation failed for field '%s': %s (caused by: %v)", e.Field, e.Message, e.Cause)
	}
	return fmt.Sprintf("validation failed for field '%s': %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a validation error for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// NewMeasurementValidationError creates a validation error enumerating every
// offending band by name.
func NewMeasurementValidationError(bands []string) *ValidationError {
	return &ValidationError{
		Field:   "bands",
		Bands:   bands,
		Message: "z-score, frequency and brodmann area must be numeric, frequency must be non-negative and brodmann area must be between 1 and 52",
	}
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Storage error types
const (
	StorageErrorTypeQueryFailed       = "query_failed"
	StorageErrorTypeTransactionFailed = "transaction_failed"
)

// StorageError represents a failed storage operation.
type StorageError struct {
	Type      string
	Operation string
	Message   string
	Cause     error
}

func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("storage error [%s] during %s: %s (caused by: %v)", e.Type, e.Operation, e.Message, e.Cause)
	}
	return fmt.Sprintf("storage error [%s] during %s: %s", e.Type, e.Operation, e.Message)
}

func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageQueryError creates an error for storage query failures.
func NewStorageQueryError(operation string, cause error) *StorageError {
	return &StorageError{
		Type:      StorageErrorTypeQueryFailed,
		Operation: operation,
		Message:   "storage query failed",
		Cause:     cause,
	}
}

// NewStorageTransactionError creates an error for failed replace transactions.
func NewStorageTransactionError(operation string, cause error) *StorageError {
	return &StorageError{
		Type:      StorageErrorTypeTransactionFailed,
		Operation: operation,
		Message:   "storage transaction failed",
		Cause:     cause,
	}
}
