// Package profiles collects public profile records from rendered pages into a CSV table.
package profiles

import (
	"fmt"
	"strings"
)

// ExtractionError represents a profile page that could not be turned into a complete record.
type ExtractionError struct {
	URL     string
	Missing []string // Fields that were blank on the page
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	msg := e.Message
	if len(e.Missing) > 0 {
		msg = fmt.Sprintf("missing fields: %s", strings.Join(e.Missing, ", "))
	}
	if e.Cause != nil {
		return fmt.Sprintf("extraction error for %s: %s: %v", e.URL, msg, e.Cause)
	}
	return fmt.Sprintf("extraction error for %s: %s", e.URL, msg)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// LinkHarvestError represents a failure in collecting profile links from a search page
type LinkHarvestError struct {
	Message string
	Cause   error
}

func (e *LinkHarvestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("link harvest error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("link harvest error: %s", e.Message)
}

func (e *LinkHarvestError) Unwrap() error {
	return e.Cause
}
