package types

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// LoginRequest represents the web UI login request.
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the bearer token issued after a successful login.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ProfilesRunRequest triggers the profile collector from the web UI.
type ProfilesRunRequest struct {
	URLs      []string `json:"urls" validate:"required_without=SearchURL,max=500"`
	SearchURL string   `json:"search_url,omitempty" validate:"omitempty,url"`
	Count     int      `json:"count" validate:"required,min=1,max=500"`
	Output    string   `json:"output,omitempty"`
}

// CallsRunRequest triggers the call dispatcher from the web UI.
type CallsRunRequest struct {
	Numbers []string `json:"numbers" validate:"required,min=1,max=1000"`
	Message string   `json:"message,omitempty" validate:"max=1000"`
}

// ArticlesRunRequest triggers the article generator from the web UI.
type ArticlesRunRequest struct {
	Topics    []string `json:"topics" validate:"required,min=1,max=50,dive,required,max=200"`
	OutputDir string   `json:"output_dir,omitempty"`
}

// Validate validates the LoginRequest using the validator.
func (r *LoginRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ProfilesRunRequest using the validator.
func (r *ProfilesRunRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the CallsRunRequest using the validator.
func (r *CallsRunRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the ArticlesRunRequest using the validator.
func (r *ArticlesRunRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
