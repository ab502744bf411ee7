package legis

import (
	"errors"
	"fmt"
)

// Error is the pipeline error taxonomy.
//
// Scope by code:
//   - SourceNotFound, UnsafeArchiveEntry: fatal for the affected input
//   - MissingRequiredTable: excluded by discovery, never reaches aggregation
//   - TableParse, Aggregation: the dataset is skipped, the run continues
//   - NoValidDatasets: fatal for the run
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Path is the file, directory, or archive entry involved.
	Path string

	// Err is the underlying cause, if any.
	Err error
}

// ErrorCode categorizes pipeline errors.
type ErrorCode string

const (
	// CodeSourceNotFound indicates neither an archive nor a directory exists.
	CodeSourceNotFound ErrorCode = "SOURCE_NOT_FOUND"

	// CodeUnsafeArchiveEntry indicates an entry resolves outside the destination.
	CodeUnsafeArchiveEntry ErrorCode = "UNSAFE_ARCHIVE_ENTRY"

	// CodeMissingRequiredTable indicates a directory lacks one of RequiredTables.
	CodeMissingRequiredTable ErrorCode = "MISSING_REQUIRED_TABLE"

	// CodeTableParse indicates a table file is missing, malformed, or lacks a
	// required column.
	CodeTableParse ErrorCode = "TABLE_PARSE_ERROR"

	// CodeAggregation indicates a failure while computing a dataset's aggregates.
	CodeAggregation ErrorCode = "AGGREGATION_FAILURE"

	// CodeNoValidDatasets indicates zero datasets were found across all inputs.
	CodeNoValidDatasets ErrorCode = "NO_VALID_DATASETS"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Path != "" {
		msg = fmt.Sprintf("%s (path=%s)", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error target carrying the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// IsCode reports whether err, or any error it wraps, is an *Error with code.
// Joined errors are searched in full.
func IsCode(err error, code ErrorCode) bool {
	return errors.Is(err, &Error{Code: code})
}

// NewError creates an Error without an underlying cause.
func NewError(code ErrorCode, path, message string) *Error {
	return &Error{Code: code, Path: path, Message: message}
}

// WrapError creates an Error around an underlying cause.
func WrapError(code ErrorCode, path, message string, err error) *Error {
	return &Error{Code: code, Path: path, Message: message, Err: err}
}
