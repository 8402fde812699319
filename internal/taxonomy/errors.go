package taxonomy

import (
	"errors"
	"fmt"
)

// PipelineError represents a fatal error in one of the pipeline stages.
//
// Pipeline errors include:
//   - Input not found: the input path does not resolve to a readable file
//   - Schema: a required column is missing from the header row
//   - Data type: a cell cannot be parsed as its required type
//   - Write: an output file could not be written
//   - Render: the chart cannot be rendered (empty summary)
//
// PipelineError includes structured fields identifying the offending
// file, row, and column for diagnostics.
type PipelineError struct {
	// Code identifies the error category.
	Code PipelineErrorCode

	// Message is a human-readable description.
	Message string

	// Path is the file the error refers to, if any.
	Path string

	// Row is the 1-based data row (header excluded), 0 when not row-scoped.
	Row int

	// Column names the offending column, if any.
	Column string

	// Err is the underlying error, if any.
	Err error
}

// PipelineErrorCode categorizes pipeline errors.
type PipelineErrorCode string

const (
	// ErrCodeInputNotFound indicates the input path is not a readable file.
	ErrCodeInputNotFound PipelineErrorCode = "INPUT_NOT_FOUND"

	// ErrCodeSchema indicates a required column is missing from the header.
	ErrCodeSchema PipelineErrorCode = "SCHEMA"

	// ErrCodeDataType indicates a cell failed checked conversion.
	ErrCodeDataType PipelineErrorCode = "DATA_TYPE"

	// ErrCodeWrite indicates an output file could not be written.
	ErrCodeWrite PipelineErrorCode = "WRITE"

	// ErrCodeRender indicates the chart could not be rendered.
	ErrCodeRender PipelineErrorCode = "RENDER"
)

// Error implements the error interface.
func (e *PipelineError) Error() string {
	msg := e.Message
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	switch {
	case e.Path != "" && e.Row > 0 && e.Column != "":
		return fmt.Sprintf("%s: %s (file=%s, row=%d, column=%s)", e.Code, msg, e.Path, e.Row, e.Column)
	case e.Path != "" && e.Column != "":
		return fmt.Sprintf("%s: %s (file=%s, column=%s)", e.Code, msg, e.Path, e.Column)
	case e.Path != "":
		return fmt.Sprintf("%s: %s (file=%s)", e.Code, msg, e.Path)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying error.
func (e *PipelineError) Unwrap() error {
	return e.Err
}

// CodeOf extracts the pipeline error code from an error.
// Returns the empty code if the error is not a PipelineError.
// Uses errors.As to handle wrapped errors.
func CodeOf(err error) PipelineErrorCode {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsSchemaError returns true if the error is a missing-column error.
func IsSchemaError(err error) bool {
	return CodeOf(err) == ErrCodeSchema
}

// IsDataTypeError returns true if the error is a cell conversion error.
func IsDataTypeError(err error) bool {
	return CodeOf(err) == ErrCodeDataType
}

// IsRenderError returns true if the error is a chart render error.
func IsRenderError(err error) bool {
	return CodeOf(err) == ErrCodeRender
}

// NewInputNotFoundError creates a PipelineError for an unreadable input path.
func NewInputNotFoundError(path string, err error) *PipelineError {
	return &PipelineError{
		Code:    ErrCodeInputNotFound,
		Message: "input file not found or not readable",
		Path:    path,
		Err:     err,
	}
}

// NewSchemaError creates a PipelineError for a missing required column.
func NewSchemaError(path, column string) *PipelineError {
	return &PipelineError{
		Code:    ErrCodeSchema,
		Message: fmt.Sprintf("required column %q missing from header", column),
		Path:    path,
		Column:  column,
	}
}

// NewDataTypeError creates a PipelineError for a cell that failed conversion.
func NewDataTypeError(path string, row int, column, message string) *PipelineError {
	return &PipelineError{
		Code:    ErrCodeDataType,
		Message: message,
		Path:    path,
		Row:     row,
		Column:  column,
	}
}

// NewWriteError creates a PipelineError for a failed output write.
func NewWriteError(path string, err error) *PipelineError {
	return &PipelineError{
		Code:    ErrCodeWrite,
		Message: "failed to write output file",
		Path:    path,
		Err:     err,
	}
}

// NewRenderError creates a PipelineError for a chart that cannot be drawn.
func NewRenderError(message string) *PipelineError {
	return &PipelineError{
		Code:    ErrCodeRender,
		Message: message,
	}
}
