// Package utils provides shared helpers for the Legend Sansar API.
package utils

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Common error values for reuse.
var (
	ErrBadRequest          = NewError(fiber.StatusBadRequest, "Invalid request")
	ErrUnauthorized        = NewError(fiber.StatusUnauthorized, "Unauthorized")
	ErrForbidden           = NewError(fiber.StatusForbidden, "Forbidden")
	ErrNotFound            = NewError(fiber.StatusNotFound, "Resource not found")
	ErrConflict            = NewError(fiber.StatusConflict, "Conflict")
	ErrInternalServerError = NewError(fiber.StatusInternalServerError, "Server error")
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// CustomError is a structured error carrying the HTTP status it maps to.
type CustomError struct {
	Code    int          `json:"-"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
}

// NewError creates a CustomError with a status code and message.
func NewError(code int, message string, errs ...FieldError) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Errors:  errs,
	}
}

// Error implements the error interface.
func (e *CustomError) Error() string {
	return fmt.Sprintf("status %d: %s", e.Code, e.Message)
}

// WithField attaches a field-level detail to the error.
func (e *CustomError) WithField(field, message string) *CustomError {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
	return e
}

// WrapError wraps an existing error with a status and message, keeping the
// cause as a field-level detail.
func WrapError(err error, code int, message string) *CustomError {
	e := NewError(code, message)
	if err != nil {
		e.Errors = append(e.Errors, FieldError{Field: "server", Message: err.Error()})
	}
	return e
}

// HandleError converts any error to the `{message, errors?}` JSON body at the
// handler boundary. Non-CustomError values become opaque 500 responses.
func HandleError(c *fiber.Ctx, err error) error {
	if appErr, ok := err.(*CustomError); ok {
		return c.Status(appErr.Code).JSON(appErr)
	}
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"message": "Server error",
	})
}
