package engine

import "errors"

// Error kinds for classifying engine failures at stage boundaries.

// ValidationError indicates a malformed input document.
type ValidationError struct {
	err error
}

func (e *ValidationError) Error() string { return e.err.Error() }

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error { return e.err }

// NewValidationError wraps an error as a document validation failure.
func NewValidationError(err error) error {
	return &ValidationError{err: err}
}

// CompilationError indicates a stylesheet that could not be compiled.
type CompilationError struct {
	err error
}

func (e *CompilationError) Error() string { return e.err.Error() }

// Unwrap returns the underlying error.
func (e *CompilationError) Unwrap() error { return e.err }

// NewCompilationError wraps an error as a stylesheet compilation failure.
func NewCompilationError(err error) error {
	return &CompilationError{err: err}
}

// ExecutionError indicates the engine ran but produced no usable output.
type ExecutionError struct {
	err error
}

func (e *ExecutionError) Error() string { return e.err.Error() }

// Unwrap returns the underlying error.
func (e *ExecutionError) Unwrap() error { return e.err }

// NewExecutionError wraps an error as a transformation execution failure.
func NewExecutionError(err error) error {
	return &ExecutionError{err: err}
}

// IsValidation returns true if the error is a document validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsCompilation returns true if the error is a compilation failure.
func IsCompilation(err error) bool {
	var ce *CompilationError
	return errors.As(err, &ce)
}

// IsExecution returns true if the error is an execution failure.
func IsExecution(err error) bool {
	var ee *ExecutionError
	return errors.As(err, &ee)
}
