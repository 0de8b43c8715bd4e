package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonathan/aeroleads/internal/db"
	"github.com/jonathan/aeroleads/internal/pipeline"
	"github.com/jonathan/aeroleads/internal/types"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "validation", err: &ErrValidation{Field: "Count", Message: "min"}, expected: http.StatusBadRequest},
		{name: "credentials", err: &ErrInvalidCredentials{}, expected: http.StatusUnauthorized},
		{name: "login disabled", err: &ErrLoginDisabled{}, expected: http.StatusNotFound},
		{name: "run not found wrapped", err: fmt.Errorf("lookup: %w", db.ErrRunNotFound), expected: http.StatusNotFound},
		{name: "pipeline not configured", err: fmt.Errorf("calls: %w", pipeline.ErrNotConfigured), expected: http.StatusServiceUnavailable},
		{name: "other", err: errors.New("boom"), expected: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestNewValidationError(t *testing.T) {
	req := &types.ProfilesRunRequest{URLs: []string{"https://example.com/in/a"}}
	verr := newValidationError(req.Validate())
	assert.Equal(t, "Count", verr.Field)
	assert.Equal(t, "required", verr.Message)
	assert.Equal(t, "validation error: Count - required", verr.Error())

	plain := newValidationError(errors.New("unexpected EOF"))
	assert.Equal(t, "body", plain.Field)
}
