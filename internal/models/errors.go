// Package models contains data structures for the application's domain models.
package models

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error codes used across the service. The ledger/saga codes form the
// operation error taxonomy; the rest cover the HTTP edge.
const (
	CodeNotFound           = "NOT_FOUND"
	CodeInsufficientFunds  = "INSUFFICIENT_FUNDS"
	CodeSelfAction         = "SELF_ACTION"
	CodeDuplicateAction    = "DUPLICATE_ACTION"
	CodeParentNotFound     = "PARENT_NOT_FOUND"
	CodePersistenceFailure = "PERSISTENCE_FAILURE"
	CodeCompensationFailed = "COMPENSATION_FAILED"
	CodeValidationError    = "VALIDATION_ERROR"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// ErrorResponse represents a standardized API error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// AppError represents a custom application error
type AppError struct {
	Code    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// CodeOf returns the AppError code carried by err, or CodeInternalError when
// err is not an AppError.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternalError
}

// IsCode reports whether err carries the given AppError code.
func IsCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// Predefined error constructors
func NewNotFoundError(resource string, id interface{}) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %v not found", resource, id),
	}
}

func NewInsufficientFundsError(required int64) *AppError {
	return &AppError{
		Code:    CodeInsufficientFunds,
		Message: fmt.Sprintf("Not enough pennies (%d required)", required),
	}
}

func NewSelfActionError(message string) *AppError {
	return &AppError{
		Code:    CodeSelfAction,
		Message: message,
	}
}

func NewDuplicateActionError(message string) *AppError {
	return &AppError{
		Code:    CodeDuplicateAction,
		Message: message,
	}
}

func NewParentNotFoundError(parentID uint) *AppError {
	return &AppError{
		Code:    CodeParentNotFound,
		Message: fmt.Sprintf("Parent content with ID %d not found", parentID),
	}
}

func NewPersistenceError(err error) *AppError {
	return &AppError{
		Code:    CodePersistenceFailure,
		Message: "Storage operation failed",
		Err:     err,
	}
}

// NewCompensationFailedError marks an operation whose rollback could not be
// completed. State was partially mutated and needs manual reconciliation;
// callers must not treat this as a normal failure.
func NewCompensationFailedError(operation string, err error) *AppError {
	return &AppError{
		Code:    CodeCompensationFailed,
		Message: fmt.Sprintf("Operation %q failed and could not be fully reversed", operation),
		Err:     err,
	}
}

func NewValidationError(message string) *AppError {
	return &AppError{
		Code:    CodeValidationError,
		Message: message,
	}
}

func NewUnauthorizedError(message string) *AppError {
	return &AppError{
		Code:    CodeUnauthorized,
		Message: message,
	}
}

func NewInternalError(err error) *AppError {
	return &AppError{
		Code:    CodeInternalError,
		Message: "Internal server error",
		Err:     err,
	}
}

// RespondWithError creates a standardized error response
func RespondWithError(c *fiber.Ctx, status int, err error) error {
	var response ErrorResponse

	var appErr *AppError
	if errors.As(err, &appErr) {
		response = ErrorResponse{
			Error: appErr.Message,
			Code:  appErr.Code,
		}
		if appErr.Err != nil {
			response.Details = appErr.Err.Error()
		}
	} else {
		response = ErrorResponse{
			Error: err.Error(),
		}
	}

	return c.Status(status).JSON(response)
}
