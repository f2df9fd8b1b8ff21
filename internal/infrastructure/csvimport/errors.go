package csvimport

import (
	"errors"
	"fmt"
)

// Row error codes
const (
	CodeRequired        = "REQUIRED"
	CodeInvalidType     = "INVALID_TYPE"
	CodeInvalidLength   = "INVALID_LENGTH"
	CodeOutOfRange      = "OUT_OF_RANGE"
	CodeDuplicateInFile = "DUPLICATE_IN_FILE"
	CodeAlreadyExists   = "ALREADY_EXISTS"
	CodeNotFound        = "REFERENCE_NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeRejected        = "REJECTED"
)

// File-level errors
var (
	ErrEmptyFile       = errors.New("csv file is empty")
	ErrInvalidEncoding = errors.New("csv file is not valid UTF-8")
	ErrMissingHeader   = errors.New("csv file has no header row")
	ErrTooManyRows     = errors.New("csv file has too many rows")
)

// RowError locates a problem in the uploaded file
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column %q: %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// Errors collects row errors up to a limit while still counting the rest
type Errors struct {
	items []RowError
	rows  map[int]struct{}
	limit int
	total int
}

// NewErrors creates a collection keeping at most limit errors
func NewErrors(limit int) *Errors {
	if limit <= 0 {
		limit = 100
	}
	return &Errors{limit: limit, rows: make(map[int]struct{})}
}

// Add records an error
func (e *Errors) Add(err RowError) {
	e.total++
	e.rows[err.Row] = struct{}{}
	if len(e.items) < e.limit {
		e.items = append(e.items, err)
	}
}

// Addf records an error with a formatted message
func (e *Errors) Addf(row int, column, code, format string, args ...any) {
	e.Add(RowError{Row: row, Column: column, Code: code, Message: fmt.Sprintf(format, args...)})
}

// Items returns the kept errors
func (e *Errors) Items() []RowError {
	return e.items
}

// Total counts every error added, including dropped ones
func (e *Errors) Total() int {
	return e.total
}

// Truncated reports whether errors were dropped
func (e *Errors) Truncated() bool {
	return e.total > len(e.items)
}

// HasRow reports whether any error points at row
func (e *Errors) HasRow(row int) bool {
	_, ok := e.rows[row]
	return ok
}

// Rows counts the distinct rows with errors
func (e *Errors) Rows() int {
	return len(e.rows)
}

// Empty reports whether nothing was added
func (e *Errors) Empty() bool {
	return e.total == 0
}
