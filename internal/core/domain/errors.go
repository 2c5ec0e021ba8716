package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied indicates the entity exists but the credential cannot access it.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown provider or file type.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// Run-level errors. These abort a run before any row is processed.

	// ErrConfiguration indicates a missing or invalid credential or API key.
	ErrConfiguration = errors.New("configuration error")

	// ErrSourceAccess indicates the input table could not be loaded, parsed, or is empty.
	ErrSourceAccess = errors.New("source access error")

	// ErrEmptyTable indicates a table with no header or no data rows.
	ErrEmptyTable = errors.New("table is empty")

	// ErrColumnNotFound indicates the subject column is not part of the table.
	ErrColumnNotFound = errors.New("column not found")

	// Row-level errors. These are recovered at the row boundary.

	// ErrSearch indicates a search provider call failed for one row.
	ErrSearch = errors.New("search failed")

	// ErrExtraction indicates a language model call failed for one row.
	ErrExtraction = errors.New("extraction failed")

	// Output errors.

	// ErrWriteBack indicates appending results to the source tab failed.
	ErrWriteBack = errors.New("write-back failed")

	// ErrRowCountMismatch indicates results do not align 1:1 with the source rows.
	ErrRowCountMismatch = errors.New("row count mismatch")
)

// Stage identifies the step of the row pipeline that failed.
type Stage string

// Pipeline stages that can fail for a single row.
const (
	StageSearch  Stage = "search"
	StageExtract Stage = "extract"
)

// RowError records a recoverable failure for one input row.
type RowError struct {
	// Index is the zero-based row position in the input table.
	Index int

	// Value is the subject value of the row.
	Value string

	// Stage is the pipeline step that failed.
	Stage Stage

	// Err is the underlying cause.
	Err error
}

// Error returns a message naming the row, its subject value and the cause.
func (e RowError) Error() string {
	return fmt.Sprintf("row %d (%q): %s: %v", e.Index+1, e.Value, e.Stage, e.Err)
}

// Unwrap returns the underlying cause.
func (e RowError) Unwrap() error {
	return e.Err
}
