package mcp

import (
	"errors"
	"fmt"

	"github.com/kcalabs/kca-projects/internal/backup"
	"github.com/kcalabs/kca-projects/internal/codec"
	"github.com/kcalabs/kca-projects/internal/domain/activity"
	"github.com/kcalabs/kca-projects/internal/domain/project"
)

// Error codes returned to clients.
const (
	CodeMethodNotFound  = "METHOD_NOT_FOUND"
	CodeInvalidParams   = "INVALID_PARAMS"
	CodeProjectNotFound = "PROJECT_NOT_FOUND"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeUnknownStatus   = "UNKNOWN_STATUS"
	CodeInvalidBackup   = "INVALID_BACKUP"
	CodeNotJSON         = "NOT_JSON"
	CodeSaveFailed      = "SAVE_FAILED"
	CodeLoadFailed      = "LOAD_FAILED"
)

// APIError represents an MCP error response.
type APIError struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *APIError) CodeValue() string {
	return e.Code
}

func (e *APIError) MessageValue() string {
	return e.Message
}

func (e *APIError) DetailsValue() any {
	return e.Details
}

func (e *APIError) RecoveryHintValue() string {
	return e.RecoveryHint
}

// MapError maps domain errors to MCP error codes.
func MapError(err error) *APIError {
	if err == nil {
		return nil
	}
	var apiErr *APIError
	var verr *project.ValidationError
	var derr *codec.DecodeError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, project.ErrProjectNotFound):
		return &APIError{Code: CodeProjectNotFound, Message: err.Error(), RecoveryHint: "Call list_projects for valid ids"}
	case errors.As(err, &verr):
		return &APIError{Code: CodeInvalidInput, Message: verr.Error(), Details: verr.Fields, RecoveryHint: "Fix the listed fields"}
	case errors.Is(err, project.ErrUnknownStatus):
		return &APIError{Code: CodeUnknownStatus, Message: err.Error(), RecoveryHint: "Call list_catalog for valid status ids"}
	case errors.Is(err, project.ErrInvalidInput), errors.Is(err, activity.ErrInvalidInput):
		return &APIError{Code: CodeInvalidInput, Message: err.Error()}
	case errors.As(err, &derr):
		return &APIError{Code: CodeInvalidBackup, Message: derr.Error(), Details: derr.Failures, RecoveryHint: "Nothing was imported; fix the listed records"}
	case errors.Is(err, codec.ErrNotArray), errors.Is(err, codec.ErrMalformed):
		return &APIError{Code: CodeInvalidBackup, Message: err.Error(), RecoveryHint: "Nothing was imported"}
	case errors.Is(err, backup.ErrNotJSON), errors.Is(err, backup.ErrTooLarge):
		return &APIError{Code: CodeNotJSON, Message: err.Error(), RecoveryHint: "Provide a JSON backup"}
	case errors.Is(err, project.ErrSave):
		return &APIError{Code: CodeSaveFailed, Message: err.Error(), RecoveryHint: "The change is kept in memory; retry to persist it"}
	case errors.Is(err, project.ErrLoad):
		return &APIError{Code: CodeLoadFailed, Message: err.Error()}
	default:
		return nil
	}
}

func mapError(err error) error {
	if apiErr := MapError(err); apiErr != nil {
		return apiErr
	}
	return err
}

func invalidParams(format string, args ...any) *APIError {
	return &APIError{Code: CodeInvalidParams, Message: fmt.Sprintf(format, args...)}
}
