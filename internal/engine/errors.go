package engine

import (
	"errors"
	"fmt"
)

// PipelineErrorCode categorizes batch pipeline failures.
type PipelineErrorCode string

const (
	// ErrCodeStoreWrite indicates a report could not be persisted.
	ErrCodeStoreWrite PipelineErrorCode = "STORE_WRITE"

	// ErrCodeFingerprint indicates a unit could not be fingerprinted.
	ErrCodeFingerprint PipelineErrorCode = "FINGERPRINT"
)

// PipelineError is a failure of the batch machinery, as opposed to a unit
// failing validation. It aborts the batch.
type PipelineError struct {
	Code  PipelineErrorCode
	Unit  string
	RunID string
	Err   error
}

// Error implements the error interface.
func (e *PipelineError) Error() string {
	if e.RunID != "" {
		return fmt.Sprintf("%s: unit %s (run=%s): %v", e.Code, e.Unit, e.RunID, e.Err)
	}
	return fmt.Sprintf("%s: unit %s: %v", e.Code, e.Unit, e.Err)
}

// Unwrap returns the underlying error.
func (e *PipelineError) Unwrap() error { return e.Err }

// IsStoreError reports whether err is a store write failure.
// Uses errors.As to handle wrapped errors.
func IsStoreError(err error) bool {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code == ErrCodeStoreWrite
	}
	return false
}
