// Package apperrors defines the operational error type surfaced to clients.
// Errors carrying a status code are considered safe to show verbatim; anything
// else is treated as an internal error by the central handler.
package apperrors

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// AppError is an operational error with an HTTP status code and a message
// safe to return to the client.
type AppError struct {
	Code    int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// New creates an AppError with an arbitrary status code.
func New(code int, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// BadRequest is a 400 validation or input error.
func BadRequest(message string) *AppError {
	return New(fiber.StatusBadRequest, message)
}

// Unauthorized is a 401 authentication failure.
func Unauthorized(message string) *AppError {
	return New(fiber.StatusUnauthorized, message)
}

// Forbidden is a 403 authorization failure.
func Forbidden(message string) *AppError {
	return New(fiber.StatusForbidden, message)
}

// NotFound is a 404 for identifiers that do not resolve.
func NotFound(message string) *AppError {
	return New(fiber.StatusNotFound, message)
}

// Internal is an unclassified 500.
func Internal(message string) *AppError {
	return New(fiber.StatusInternalServerError, message)
}

// StatusWord maps a status code onto the response envelope's status field:
// "fail" for client errors, "error" otherwise.
func StatusWord(code int) string {
	if code >= 400 && code < 500 {
		return "fail"
	}
	return "error"
}

// IsDuplicate reports whether err stems from a unique-constraint violation.
// GORM normalizes this for most dialects; the string checks cover drivers
// that surface the raw database error instead.
func IsDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique failed")
}
