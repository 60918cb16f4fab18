// Package errors defines the typed error taxonomy spec.md §7 describes:
// transient/ignorable, local-recovery, data-consistency, fatal, and
// best-effort failures. No failure is signaled by panicking; everything is
// either a returned value or a logged side effect, so callers can match on
// Type without losing the invariant that core state stays consistent.
package errors

import (
	"fmt"
	"time"

	"github.com/codegraph/xrefd/internal/types"
)

// ErrorType classifies a ProjectError along the taxonomy in spec.md §7.
type ErrorType string

const (
	// ErrorTypeTransient covers stale completions and similar events that
	// are logged and dropped without mutating state.
	ErrorTypeTransient ErrorType = "transient"
	// ErrorTypeLocalRecovery covers a job finishing without Complete: its
	// visited fileIds are released and nothing else changes.
	ErrorTypeLocalRecovery ErrorType = "local_recovery"
	// ErrorTypeDataConsistency covers files that vanished from disk between
	// load and the initial dirty sweep.
	ErrorTypeDataConsistency ErrorType = "data_consistency"
	// ErrorTypeFatal covers failures that prevent a project from loading.
	ErrorTypeFatal ErrorType = "fatal"
	// ErrorTypeBestEffort covers retried-with-backoff operations such as
	// persisting the file-id registry.
	ErrorTypeBestEffort ErrorType = "best_effort"
)

// ProjectError is the project-core error wrapper; FileID/Operation carry
// context about which source/file was involved, Recoverable mirrors the
// "local recovery" vs. "fatal" distinction in spec.md §7.
type ProjectError struct {
	Type        ErrorType
	FileID      types.FileID
	FilePath    string
	Operation   string
	Underlying  error
	Timestamp   time.Time
	Recoverable bool
}

// NewProjectError creates a ProjectError with the given classification.
func NewProjectError(t ErrorType, op string, err error) *ProjectError {
	return &ProjectError{
		Type:       t,
		Operation:  op,
		Underlying: err,
		Timestamp:  time.Now(),
	}
}

// WithFile adds file information to the error.
func (e *ProjectError) WithFile(fileID types.FileID, path string) *ProjectError {
	e.FileID = fileID
	e.FilePath = path
	return e
}

// WithRecoverable marks the error as recoverable.
func (e *ProjectError) WithRecoverable(recoverable bool) *ProjectError {
	e.Recoverable = recoverable
	return e
}

func (e *ProjectError) Error() string {
	if e.FilePath != "" {
		return fmt.Sprintf("%s %s failed for %s: %v", e.Type, e.Operation, e.FilePath, e.Underlying)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Type, e.Operation, e.Underlying)
}

func (e *ProjectError) Unwrap() error { return e.Underlying }

// IsRecoverable reports whether the caller may retry.
func (e *ProjectError) IsRecoverable() bool { return e.Recoverable }

// ConfigError represents a malformed configuration value.
type ConfigError struct {
	Field      string
	Value      string
	Underlying error
	Timestamp  time.Time
}

func NewConfigError(field, value string, err error) *ConfigError {
	return &ConfigError{Field: field, Value: value, Underlying: err, Timestamp: time.Now()}
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error for field %s (value %s): %v", e.Field, e.Value, e.Underlying)
}

func (e *ConfigError) Unwrap() error { return e.Underlying }

// MultiError aggregates independent failures, e.g. from a batch remove().
type MultiError struct {
	Errors []error
}

func NewMultiError(errs []error) *MultiError {
	filtered := make([]error, 0, len(errs))
	for _, err := range errs {
		if err != nil {
			filtered = append(filtered, err)
		}
	}
	if len(filtered) == 0 {
		return nil
	}
	return &MultiError{Errors: filtered}
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("%d errors: %v", len(e.Errors), e.Errors)
}

func (e *MultiError) Unwrap() []error { return e.Errors }
