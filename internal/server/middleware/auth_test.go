package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubValidator accepts only the tokens it was given.
type stubValidator struct {
	sessions map[string]uuid.UUID
}

func (v *stubValidator) ValidateToken(tokenString string) (SessionIDGetter, error) {
	sessionID, ok := v.sessions[tokenString]
	if !ok {
		return nil, fmt.Errorf("invalid token")
	}
	return stubClaims(sessionID), nil
}

type stubClaims uuid.UUID

func (c stubClaims) GetSessionID() uuid.UUID { return uuid.UUID(c) }

func serve(t *testing.T, authHeader string, v TokenValidator) (*httptest.ResponseRecorder, uuid.UUID, bool) {
	t.Helper()
	var (
		called    bool
		sessionID uuid.UUID
	)
	handler := AuthMiddleware(v)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		id, err := GetSessionID(r)
		require.NoError(t, err)
		sessionID = id
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/runs/calls", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	return w, sessionID, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	sessionID := uuid.New()
	v := &stubValidator{sessions: map[string]uuid.UUID{"good-token": sessionID}}

	for _, header := range []string{"Bearer good-token", "bearer good-token", "BeArEr   good-token"} {
		w, got, called := serve(t, header, v)
		assert.True(t, called, header)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, sessionID, got)
	}
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	v := &stubValidator{sessions: map[string]uuid.UUID{"good-token": uuid.New()}}

	tests := map[string]string{
		"missing header":  "",
		"no scheme":       "good-token",
		"only scheme":     "Bearer",
		"wrong scheme":    "Basic good-token",
		"unknown token":   "Bearer forged.token.value",
		"extra fields":    "Bearer good-token extra",
		"empty after tab": "Bearer \t",
	}

	for name, header := range tests {
		t.Run(name, func(t *testing.T) {
			w, _, called := serve(t, header, v)
			assert.False(t, called)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "Unauthorized")
		})
	}
}

func TestGetSessionID(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/runs", nil)
	_, err := GetSessionID(req)
	assert.ErrorContains(t, err, "session ID not found")

	wrongType := req.WithContext(context.WithValue(req.Context(), sessionIDKey, "not-a-uuid"))
	id, err := GetSessionID(wrongType)
	assert.Error(t, err)
	assert.Equal(t, uuid.Nil, id)
}
