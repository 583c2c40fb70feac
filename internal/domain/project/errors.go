package project

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrProjectNotFound indicates the project doesn't exist.
	ErrProjectNotFound = errors.New("project not found")
	// ErrInvalidInput indicates invalid project input.
	ErrInvalidInput = errors.New("invalid project input")
	// ErrUnknownStatus indicates a status id outside the catalog.
	ErrUnknownStatus = errors.New("unknown project status")
	// ErrUnknownPriority indicates a priority outside low/medium/high/critical.
	ErrUnknownPriority = errors.New("unknown project priority")
	// ErrLoad indicates persisted data was present but could not be read.
	ErrLoad = errors.New("failed to load projects")
	// ErrSave indicates the collection could not be written to storage.
	ErrSave = errors.New("failed to save projects")
)

// Validation codes.
const (
	CodeRequired   = "REQUIRED"
	CodeOutOfRange = "OUT_OF_RANGE"
	CodeInvalid    = "INVALID"
)

// FieldError describes one rejected form field.
type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation.
// It matches ErrInvalidInput with errors.Is.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return "invalid project input: " + strings.Join(parts, "; ")
}

// Is lets callers test against ErrInvalidInput.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

func (e *ValidationError) add(field, code, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Code: code, Message: message})
}

func (e *ValidationError) orNil() error {
	if e == nil || len(e.Fields) == 0 {
		return nil
	}
	return e
}
