// Package config provides credential loading from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Environment variable names for provider credentials.
const (
	EnvGeminiAPIKey     = "GEMINI_API_KEY"
	EnvTwilioAccountSID = "TWILIO_ACCOUNT_SID"
	EnvTwilioAuthToken  = "TWILIO_AUTH_TOKEN"
	EnvTwilioFromNumber = "TWILIO_FROM_NUMBER"
	EnvTwilioBaseURL    = "TWILIO_BASE_URL"
	EnvSiteEmail        = "LINKEDIN_EMAIL"
	EnvSitePassword     = "LINKEDIN_PASSWORD"
	EnvDatabaseURL      = "DATABASE_URL"
)

// MissingCredentialError indicates a required environment variable is not set.
type MissingCredentialError struct {
	Names []string
}

func (e *MissingCredentialError) Error() string {
	return fmt.Sprintf("missing credentials: set %s", strings.Join(e.Names, ", "))
}

// Credentials is the loaded credential set. It is the only process-wide state
// shared between commands and is never printed in plaintext.
type Credentials struct {
	GeminiAPIKey     string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	TwilioBaseURL    string
	SiteEmail        string
	SitePassword     string
	DatabaseURL      string
}

// LoadCredentials reads credentials from environment variables.
// Call godotenv.Load before this to pick up a local .env file.
func LoadCredentials() *Credentials {
	return &Credentials{
		GeminiAPIKey:     strings.TrimSpace(os.Getenv(EnvGeminiAPIKey)),
		TwilioAccountSID: strings.TrimSpace(os.Getenv(EnvTwilioAccountSID)),
		TwilioAuthToken:  strings.TrimSpace(os.Getenv(EnvTwilioAuthToken)),
		TwilioFromNumber: strings.TrimSpace(os.Getenv(EnvTwilioFromNumber)),
		TwilioBaseURL:    strings.TrimSpace(os.Getenv(EnvTwilioBaseURL)),
		SiteEmail:        strings.TrimSpace(os.Getenv(EnvSiteEmail)),
		SitePassword:     os.Getenv(EnvSitePassword),
		DatabaseURL:      strings.TrimSpace(os.Getenv(EnvDatabaseURL)),
	}
}

// RequireGemini checks that the generative-text API key is present.
func (c *Credentials) RequireGemini() error {
	if c.GeminiAPIKey == "" {
		return &MissingCredentialError{Names: []string{EnvGeminiAPIKey}}
	}
	return nil
}

// RequireTelephony checks that all telephony provider credentials are present.
func (c *Credentials) RequireTelephony() error {
	var missing []string
	if c.TwilioAccountSID == "" {
		missing = append(missing, EnvTwilioAccountSID)
	}
	if c.TwilioAuthToken == "" {
		missing = append(missing, EnvTwilioAuthToken)
	}
	if c.TwilioFromNumber == "" {
		missing = append(missing, EnvTwilioFromNumber)
	}
	if len(missing) > 0 {
		return &MissingCredentialError{Names: missing}
	}
	return nil
}

// RequireSiteLogin checks that login credentials for the scraped site are present.
func (c *Credentials) RequireSiteLogin() error {
	var missing []string
	if c.SiteEmail == "" {
		missing = append(missing, EnvSiteEmail)
	}
	if c.SitePassword == "" {
		missing = append(missing, EnvSitePassword)
	}
	if len(missing) > 0 {
		return &MissingCredentialError{Names: missing}
	}
	return nil
}

// String returns a redacted description, so credentials are safe to pass to log calls.
func (c *Credentials) String() string {
	return fmt.Sprintf("Credentials{gemini=%s twilio_sid=%s twilio_token=%s from=%s site_email=%s site_password=%s database=%s}",
		Redact(c.GeminiAPIKey),
		Redact(c.TwilioAccountSID),
		Redact(c.TwilioAuthToken),
		Redact(c.TwilioFromNumber),
		Redact(c.SiteEmail),
		Redact(c.SitePassword),
		Redact(c.DatabaseURL),
	)
}

// Redact masks a secret for display. Values of 12 or more characters keep
// their first and last two characters; shorter ones are fully masked.
func Redact(secret string) string {
	switch {
	case secret == "":
		return "(unset)"
	case len(secret) < 12:
		return "****"
	default:
		return secret[:2] + "****" + secret[len(secret)-2:]
	}
}
