// Package errors defines the error taxonomy for the reconciliation engine.
//
// Errors carry a category and code so callers can distinguish fatal
// configuration problems from the non-fatal per-reference, per-value and
// export failures that the engine logs and recovers from. The CLI maps
// categories to exit codes.
package errors

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorCategory groups errors by the stage of the run that produced them.
type ErrorCategory string

const (
	CategoryFile           ErrorCategory = "file"
	CategoryParse          ErrorCategory = "parse"
	CategoryValidation     ErrorCategory = "validation"
	CategoryConfiguration  ErrorCategory = "configuration"
	CategoryReconciliation ErrorCategory = "reconciliation"
	CategoryExport         ErrorCategory = "export"
)

// ErrorCode identifies a specific failure within a category.
type ErrorCode string

const (
	// File errors
	CodeFileNotFound  ErrorCode = "file_not_found"
	CodeFileCorrupted ErrorCode = "file_corrupted"

	// Parse errors
	CodeInvalidFormat ErrorCode = "invalid_format"
	CodeMissingColumn ErrorCode = "missing_column"
	CodeInvalidData   ErrorCode = "invalid_data"

	// Validation errors
	CodeInvalidAmount ErrorCode = "invalid_amount"
	CodeInvalidDate   ErrorCode = "invalid_date"
	CodeMissingField  ErrorCode = "missing_field"

	// Configuration errors
	CodeInvalidConfig ErrorCode = "invalid_config"
	CodeMissingConfig ErrorCode = "missing_config"

	// Reconciliation errors
	CodeReferenceSkipped ErrorCode = "reference_skipped"
	CodeProcessingError  ErrorCode = "processing_error"

	// Export errors
	CodeWriteFailed ErrorCode = "write_failed"
)

// ReconcilerError is the error type for all engine errors.
type ReconcilerError struct {
	Category   ErrorCategory
	Code       ErrorCode
	Message    string
	Suggestion string
	Context    Context
	Cause      error
	StackTrace errors.StackTrace
}

// Context provides additional structured information about the error.
type Context map[string]interface{}

// Error implements the error interface.
func (e *ReconcilerError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *ReconcilerError) Unwrap() error {
	return e.Cause
}

// IsFatal reports whether this error must abort the run. Only configuration
// errors are fatal; everything else is logged and the run continues.
func (e *ReconcilerError) IsFatal() bool {
	return e.Category == CategoryConfiguration
}

// GetExitCode maps the error category to a process exit code.
func (e *ReconcilerError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryParse, CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryReconciliation:
		return 5
	case CategoryExport:
		return 6
	default:
		return 1
	}
}

// WithContext attaches a key-value pair to the error.
func (e *ReconcilerError) WithContext(key string, value interface{}) *ReconcilerError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion attaches a remediation hint to the error.
func (e *ReconcilerError) WithSuggestion(suggestion string) *ReconcilerError {
	e.Suggestion = suggestion
	return e
}

// stackTracer extracts stack traces from pkg/errors values.
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// New creates a new ReconcilerError.
func New(category ErrorCategory, code ErrorCode, message string) *ReconcilerError {
	return &ReconcilerError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with engine error context.
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *ReconcilerError {
	if err == nil {
		return nil
	}
	return &ReconcilerError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// ConfigurationError creates a fatal configuration error.
func ConfigurationError(code ErrorCode, detail string) *ReconcilerError {
	return New(CategoryConfiguration, code, fmt.Sprintf("configuration error: %s", detail))
}

// MissingColumnError reports a column absent from a table.
func MissingColumnError(table, column string) *ReconcilerError {
	return New(CategoryParse, CodeMissingColumn,
		fmt.Sprintf("column %q not found in %s", column, table)).
		WithContext("table", table).
		WithContext("column", column)
}

// ReferenceError reports a non-fatal failure while processing one reference.
func ReferenceError(refName string, err error) *ReconcilerError {
	return Wrap(err, CategoryReconciliation, CodeReferenceSkipped,
		fmt.Sprintf("reference %s skipped: %v", refName, err)).
		WithContext("reference", refName)
}

// ExportError reports a failure to produce the output artifact.
func ExportError(path string, err error) *ReconcilerError {
	return Wrap(err, CategoryExport, CodeWriteFailed,
		fmt.Sprintf("failed to write %s: %v", path, err)).
		WithContext("path", path).
		WithSuggestion("check that the output directory is writable")
}

// FileError reports a failure to read an input file.
func FileError(path string, err error) *ReconcilerError {
	return Wrap(err, CategoryFile, CodeFileNotFound,
		fmt.Sprintf("failed to read %s: %v", path, err)).
		WithContext("path", path)
}

// GetCategory returns the category of an error, or empty if it is not a
// ReconcilerError.
func GetCategory(err error) ErrorCategory {
	var re *ReconcilerError
	if errors.As(err, &re) {
		return re.Category
	}
	return ""
}

// IsFatal reports whether err should abort the run.
func IsFatal(err error) bool {
	var re *ReconcilerError
	if errors.As(err, &re) {
		return re.IsFatal()
	}
	return true
}
