package telephony

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jonathan/aeroleads/internal/types"
)

// DefaultBaseURL is the production Twilio REST endpoint.
const DefaultBaseURL = "https://api.twilio.com"

// DefaultVoice is the text-to-speech voice used in generated TwiML.
const DefaultVoice = "alice"

// Config holds the provider credentials and endpoint.
type Config struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	BaseURL    string
	Timeout    time.Duration
}

// Client places outbound calls.
type Client struct {
	http *resty.Client
	cfg  Config
}

// CallParams is one outbound call request.
// Exactly one of Twiml or URL should be set.
type CallParams struct {
	To    string
	From  string
	Twiml string
	URL   string
}

// Call is the provider's representation of a created call.
type Call struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
	To     string `json:"to"`
	From   string `json:"from"`
}

// NewClient creates a telephony client. Credentials are required.
func NewClient(cfg Config) (*Client, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, fmt.Errorf("telephony account SID and auth token are required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	client := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetBasicAuth(cfg.AccountSID, cfg.AuthToken).
		SetHeader("Accept", "application/json")

	return &Client{http: client, cfg: cfg}, nil
}

// FromNumber returns the configured caller ID.
func (c *Client) FromNumber() string {
	return c.cfg.FromNumber
}

// CreateCall requests one outbound call and returns the provider's call record.
func (c *Client) CreateCall(ctx context.Context, params CallParams) (*Call, error) {
	from := params.From
	if from == "" {
		from = c.cfg.FromNumber
	}

	form := map[string]string{
		"To":   params.To,
		"From": from,
	}
	if params.URL != "" {
		form["Url"] = params.URL
	} else {
		form["Twiml"] = params.Twiml
	}

	var call Call
	var apiErr APIError
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("sid", c.cfg.AccountSID).
		SetFormData(form).
		SetResult(&call).
		SetError(&apiErr).
		Post("/2010-04-01/Accounts/{sid}/Calls.json")
	if err != nil {
		return nil, &RequestError{Message: "create call failed", Cause: err}
	}

	if resp.IsError() {
		apiErr.StatusCode = resp.StatusCode()
		if apiErr.Message == "" {
			apiErr.Message = strings.TrimSpace(resp.Status())
		}
		return nil, &apiErr
	}

	if call.SID == "" {
		return nil, &RequestError{Message: fmt.Sprintf("unexpected response (HTTP %d): missing call sid", resp.StatusCode())}
	}

	return &call, nil
}

// MapStatus converts a provider call status into a CallStatus.
func MapStatus(providerStatus string) types.CallStatus {
	switch strings.ToLower(strings.TrimSpace(providerStatus)) {
	case "queued", "initiated", "ringing":
		return types.CallQueued
	case "in-progress":
		return types.CallInProgress
	case "completed":
		return types.CallCompleted
	default:
		return types.CallFailed
	}
}

// SayTwiML renders a message as a TwiML document that reads it aloud.
func SayTwiML(message, voice string) string {
	if voice == "" {
		voice = DefaultVoice
	}
	var buf bytes.Buffer
	buf.WriteString(`<Response><Say voice="`)
	_ = xml.EscapeText(&buf, []byte(voice))
	buf.WriteString(`">`)
	_ = xml.EscapeText(&buf, []byte(message))
	buf.WriteString(`</Say></Response>`)
	return buf.String()
}
