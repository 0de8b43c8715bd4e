package types

// CallStatus is the normalized status of an outbound call.
type CallStatus string

const (
	// CallQueued means the provider accepted the call and has not connected it yet
	CallQueued CallStatus = "queued"
	// CallInProgress means the call is connected
	CallInProgress CallStatus = "in-progress"
	// CallCompleted means the call finished normally
	CallCompleted CallStatus = "completed"
	// CallFailed means the call was rejected locally or by the provider
	CallFailed CallStatus = "failed"
)

// CallRequest describes one outbound call to place.
type CallRequest struct {
	ToNumber   string `json:"to_number"`
	FromNumber string `json:"from_number"`
	Message    string `json:"message,omitempty"`
}

// CallResult is created once per CallRequest after the provider returns.
type CallResult struct {
	ToNumber string     `json:"number"`
	CallID   string     `json:"call_id,omitempty"`
	Status   CallStatus `json:"status"`
	Error    string     `json:"error,omitempty"`
}

// Failed reports whether the call could not be placed.
func (r CallResult) Failed() bool {
	return r.Status == CallFailed
}
