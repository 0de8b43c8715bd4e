package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/jonathan/aeroleads/internal/types"
)

// SSE event names
const (
	eventStep     = "step"
	eventError    = "error"
	eventComplete = "complete"
)

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(runID, message string) {
	s.WriteEvent(eventError, map[string]string{ //nolint:errcheck
		"run_id": runID,
		"error":  message,
	})
}

// WriteComplete sends the final summary of a run
func (s *SSEWriter) WriteComplete(runID string, summary *types.RunSummary) {
	s.WriteEvent(eventComplete, map[string]any{ //nolint:errcheck
		"run_id":  runID,
		"status":  types.RunCompleted,
		"summary": summary,
	})
}
