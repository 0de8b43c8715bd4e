// Package telephony is a small client for a Twilio-compatible outbound Calls REST API.
package telephony

import "fmt"

// APIError is an error response from the telephony provider.
type APIError struct {
	StatusCode int    `json:"status"`
	Code       int    `json:"code"`
	Message    string `json:"message"`
	MoreInfo   string `json:"more_info,omitempty"`
}

func (e *APIError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("telephony API error %d (HTTP %d): %s", e.Code, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("telephony API error (HTTP %d): %s", e.StatusCode, e.Message)
}

// RequestError wraps a transport failure talking to the provider.
type RequestError struct {
	Message string
	Cause   error
}

func (e *RequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("telephony request error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("telephony request error: %s", e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}
