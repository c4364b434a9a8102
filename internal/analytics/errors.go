package analytics

import (
	"errors"
	"fmt"
)

// DataUnavailableError signals that the upstream session source could not be
// read. Status and Message carry the upstream labels verbatim so callers can
// surface them without rewriting. Recoverable: retry or show a transient
// error state.
type DataUnavailableError struct {
	Status  string
	Message string
	Cause   error
}

func (e *DataUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("data unavailable [%s]: %s (caused by: %v)", e.Status, e.Message, e.Cause)
	}
	return fmt.Sprintf("data unavailable [%s]: %s", e.Status, e.Message)
}

func (e *DataUnavailableError) Unwrap() error {
	return e.Cause
}

// NewDataUnavailableError creates a data unavailable error carrying the
// upstream status label and message.
func NewDataUnavailableError(status, message string, cause error) *DataUnavailableError {
	return &DataUnavailableError{
		Status:  status,
		Message: message,
		Cause:   cause,
	}
}

// IsDataUnavailable reports whether err is (or wraps) a DataUnavailableError.
func IsDataUnavailable(err error) bool {
	var due *DataUnavailableError
	return errors.As(err, &due)
}

// NoMatchingDataError is a reportable state, not a system fault: an active
// filter selects nothing, or a proportion computation has no frequency mass
// to divide by. Consumers should render a "no data" state rather than an
// empty chart.
type NoMatchingDataError struct {
	Reason string
}

func (e *NoMatchingDataError) Error() string {
	return fmt.Sprintf("no matching data: %s", e.Reason)
}

// NewNoMatchingDataError creates a no matching data signal.
func NewNoMatchingDataError(reason string) *NoMatchingDataError {
	return &NoMatchingDataError{Reason: reason}
}

// IsNoMatchingData reports whether err is (or wraps) a NoMatchingDataError.
func IsNoMatchingData(err error) bool {
	var nmd *NoMatchingDataError
	return errors.As(err, &nmd)
}
