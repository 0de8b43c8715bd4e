package server

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/jonathan/aeroleads/internal/config"
	"github.com/jonathan/aeroleads/internal/types"
)

// maxLoginBody bounds the login request body.
const maxLoginBody = 4 << 10

// AuthHandler handles operator login for the web UI.
type AuthHandler struct {
	passwords  *config.PasswordConfig
	jwtService *JWTService
	validator  *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(passwords *config.PasswordConfig, jwtService *JWTService) *AuthHandler {
	return &AuthHandler{
		passwords:  passwords,
		jwtService: jwtService,
		validator:  validator.New(),
	}
}

// Authenticate checks the password and issues a session token.
func (h *AuthHandler) Authenticate(req *types.LoginRequest) (*types.LoginResponse, error) {
	if err := h.validator.Struct(req); err != nil {
		return nil, newValidationError(err)
	}
	if !h.passwords.LoginEnabled() {
		return nil, &ErrLoginDisabled{}
	}
	if !h.passwords.VerifyUIPassword(req.Password) {
		return nil, &ErrInvalidCredentials{}
	}

	token, expiresAt, err := h.jwtService.GenerateToken(uuid.New())
	if err != nil {
		return nil, err
	}
	return &types.LoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req types.LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxLoginBody)).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	resp, err := h.Authenticate(&req)
	if err != nil {
		status := HTTPStatus(err)
		if status == http.StatusUnauthorized {
			log.Printf("[AUTH] Failed login from %s", r.RemoteAddr)
		} else if status == http.StatusInternalServerError {
			log.Printf("[AUTH] Failed to issue token: %v", err)
			writeJSONError(w, status, "Failed to generate token")
			return
		}
		writeJSONError(w, status, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		log.Printf("[AUTH] Error encoding login response: %v", err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message}) //nolint:errcheck
}
