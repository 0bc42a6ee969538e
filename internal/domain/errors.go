package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrMalformedMarkup     = errors.New("malformed markup")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrWorkerFailure       = errors.New("worker failure")
	ErrOutputWrite         = errors.New("output write failed")
	ErrValidation          = errors.New("validation error")
	ErrSystemicFailure     = errors.New("every input file failed")
)

// MalformedMarkupError is a per-file failure: the file could not be
// tokenized at all. It never aborts a run.
type MalformedMarkupError struct {
	Path string
	Err  error
}

func (e *MalformedMarkupError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed markup: %v", e.Err)
	}
	return fmt.Sprintf("malformed markup in %s: %v", e.Path, e.Err)
}

func (e *MalformedMarkupError) Unwrap() []error { return []error{ErrMalformedMarkup, e.Err} }

// UnsupportedLanguageError reports a language code missing from the lookup table.
// It is raised while resolving configuration, before any file is touched.
type UnsupportedLanguageError struct {
	Field string
	Code  string
}

func (e *UnsupportedLanguageError) Error() string {
	return fmt.Sprintf("unsupported language %q for %s", e.Code, e.Field)
}

func (e *UnsupportedLanguageError) Unwrap() error { return ErrUnsupportedLanguage }

// WorkerFailure is fatal for the run. It is kept distinct from per-file
// errors so callers never mistake a crashed worker for a skipped file.
type WorkerFailure struct {
	Batch int
	Cause error
}

func (e *WorkerFailure) Error() string {
	return fmt.Sprintf("worker failed on batch %d: %v", e.Batch, e.Cause)
}

func (e *WorkerFailure) Unwrap() []error { return []error{ErrWorkerFailure, e.Cause} }

// OutputWriteError carries the output path the run attempted to produce.
type OutputWriteError struct {
	Path string
	Err  error
}

func (e *OutputWriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *OutputWriteError) Unwrap() []error { return []error{ErrOutputWrite, e.Err} }

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	msg := fmt.Sprintf("validation: %d errors", len(e.Errors))
	for _, fe := range e.Errors {
		msg += fmt.Sprintf("; %s: %s", fe.Field, fe.Message)
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}
