package codec

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMalformed indicates the payload is not valid JSON.
	ErrMalformed = errors.New("malformed project JSON")
	// ErrNotArray indicates the top-level JSON value is not an array.
	ErrNotArray = errors.New("project data must be a JSON array")
	// ErrInvalidRecords indicates one or more records failed validation.
	ErrInvalidRecords = errors.New("invalid project records")
)

// RecordFailure describes why a single record was rejected.
type RecordFailure struct {
	Index   int    `json:"index"`
	ID      string `json:"id,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// DecodeError lists every record failure found in a payload.
type DecodeError struct {
	Failures []RecordFailure `json:"failures"`
}

func (e *DecodeError) Error() string {
	const maxShown = 5
	parts := make([]string, 0, maxShown)
	for i, f := range e.Failures {
		if i == maxShown {
			parts = append(parts, fmt.Sprintf("and %d more", len(e.Failures)-maxShown))
			break
		}
		parts = append(parts, fmt.Sprintf("record %d %s: %s", f.Index, f.Field, f.Message))
	}
	return fmt.Sprintf("%s: %s", ErrInvalidRecords, strings.Join(parts, "; "))
}

// Is lets callers test against ErrInvalidRecords.
func (e *DecodeError) Is(target error) bool {
	return target == ErrInvalidRecords
}

func (e *DecodeError) add(index int, id, field, message string) {
	e.Failures = append(e.Failures, RecordFailure{Index: index, ID: id, Field: field, Message: message})
}
