// Package server provides the web UI and HTTP API for triggering pipeline runs.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/jonathan/aeroleads/internal/db"
	"github.com/jonathan/aeroleads/internal/pipeline"
)

// ErrInvalidCredentials indicates a failed operator login
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid password"
}

// ErrLoginDisabled indicates no operator password is configured
type ErrLoginDisabled struct{}

func (e *ErrLoginDisabled) Error() string {
	return "login is not enabled on this server"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// newValidationError converts the first validator failure into an ErrValidation.
func newValidationError(err error) *ErrValidation {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		ve := validationErrors[0]
		return &ErrValidation{Field: ve.Field(), Message: ve.Tag()}
	}
	return &ErrValidation{Field: "body", Message: err.Error()}
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		validationErr *ErrValidation
		credsErr      *ErrInvalidCredentials
		disabledErr   *ErrLoginDisabled
	)
	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest
	case errors.As(err, &credsErr):
		return http.StatusUnauthorized
	case errors.As(err, &disabledErr):
		return http.StatusNotFound
	case errors.Is(err, db.ErrRunNotFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrNotConfigured):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
