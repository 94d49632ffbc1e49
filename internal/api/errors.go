// errors.go - Structured error handling for API responses
package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/layout"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/session"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/settings"
	"github.com/hjdarnel/zigzag-layout-bank-tag-tabs/internal/storage"
	"github.com/labstack/echo/v4"
)

// APIError represents a structured API error response
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error constructors for consistent error handling

// NewBadRequestError creates a 400 Bad Request error
func NewBadRequestError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
	if cause != nil {
		err.Details = cause.Error()
	}
	return err
}

// NewValidationError creates a 400 validation error for a specific field
func NewValidationError(field string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: fmt.Sprintf("validation failed for field: %s", field),
	}
}

// NewNotFoundError creates a 404 Not Found error
func NewNotFoundError(resource string, id string) *APIError {
	return &APIError{
		Status:  http.StatusNotFound,
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// NewConflictError creates a 409 Conflict error
func NewConflictError(message string) *APIError {
	return &APIError{
		Status:  http.StatusConflict,
		Code:    "CONFLICT",
		Message: message,
	}
}

// NewUnprocessableError creates a 422 error for requests that are well formed
// but cannot be acted on
func NewUnprocessableError(code, message string) *APIError {
	return &APIError{
		Status:  http.StatusUnprocessableEntity,
		Code:    code,
		Message: message,
	}
}

// NewInternalError creates a 500 Internal Server Error
func NewInternalError(message string, cause error) *APIError {
	err := &APIError{
		Status:  http.StatusInternalServerError,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
	if cause != nil && showErrorDetails {
		err.Details = cause.Error()
	}
	return err
}

// mapError translates errors from the session layer into API errors.
// resource and id name the thing the request addressed.
func mapError(err error, resource, id string) *APIError {
	var apiErr *APIError
	var numErr *strconv.NumError

	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, session.ErrViewNotFound):
		return NewNotFoundError(resource, id)
	case errors.Is(err, storage.ErrInvalidTag):
		return NewBadRequestError("invalid tag name", err)
	case errors.Is(err, session.ErrInvalidIndex):
		return NewBadRequestError("invalid slot index", err)
	case errors.Is(err, layout.ErrMalformedEntry), errors.As(err, &numErr):
		return NewBadRequestError("invalid layout string", err)
	case errors.Is(err, layout.ErrEmptySlot):
		return NewConflictError(err.Error())
	case errors.Is(err, settings.ErrInvalidSettings):
		return NewBadRequestError("invalid settings", err)
	case errors.Is(err, session.ErrNoItems):
		return NewUnprocessableError("NO_ITEMS", "no items equipped or in the inventory")
	default:
		logger.Errorf("%s %s: %v", resource, id, err)
		return NewInternalError(fmt.Sprintf("failed to process %s", resource), err)
	}
}

// showErrorDetails controls whether unexpected errors expose their message
var showErrorDetails = true

// SetShowErrorDetails toggles error details in 500 responses
func SetShowErrorDetails(show bool) {
	showErrorDetails = show
}

// ErrorHandler middleware for Echo
// Usage: e.HTTPErrorHandler = api.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError

	switch e := err.(type) {
	case *APIError:
		apiErr = e
	case *echo.HTTPError:
		apiErr = &APIError{
			Status:  e.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", e.Message),
		}
	default:
		apiErr = &APIError{
			Status:  http.StatusInternalServerError,
			Code:    "UNKNOWN_ERROR",
			Message: "An unexpected error occurred",
		}
		if showErrorDetails {
			apiErr.Details = err.Error()
		}
	}

	if c.Request().Method == http.MethodHead {
		c.NoContent(apiErr.Status)
		return
	}
	c.JSON(apiErr.Status, apiErr)
}

// RespondWithError is a helper to respond with an APIError
func RespondWithError(c echo.Context, err *APIError) error {
	return c.JSON(err.Status, err)
}
