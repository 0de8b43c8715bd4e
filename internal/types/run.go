package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JobKind identifies which pipeline a run executes.
type JobKind string

const (
	// JobProfiles is the profile collector
	JobProfiles JobKind = "profiles"
	// JobCalls is the call dispatcher
	JobCalls JobKind = "calls"
	// JobArticles is the article generator
	JobArticles JobKind = "articles"
)

// ParseJobKind converts a string into a JobKind.
func ParseJobKind(s string) (JobKind, error) {
	switch JobKind(s) {
	case JobProfiles, JobCalls, JobArticles:
		return JobKind(s), nil
	default:
		return "", fmt.Errorf("unknown job kind: %q", s)
	}
}

// ItemStatus is the only state a pipeline keeps per input item.
type ItemStatus string

const (
	ItemPending    ItemStatus = "pending"
	ItemInProgress ItemStatus = "in-progress"
	ItemDone       ItemStatus = "done"
	ItemSkipped    ItemStatus = "skipped"
)

// ItemOutcome records what happened to one input item.
type ItemOutcome struct {
	Index  int        `json:"index"`
	Key    string     `json:"key"`              // URL, phone number or topic
	Status ItemStatus `json:"status"`           // done or skipped
	Detail string     `json:"detail,omitempty"` // Output location, call ID, etc.
	Error  string     `json:"error,omitempty"`
}

// RunSummary is the final report of one pipeline run.
type RunSummary struct {
	Kind      JobKind       `json:"kind"`
	Requested int           `json:"requested"`
	Succeeded int           `json:"succeeded"`
	Skipped   int           `json:"skipped"`
	Items     []ItemOutcome `json:"items"`
}

// NewRunSummary creates an empty summary for a run of the given kind.
func NewRunSummary(kind JobKind, requested int) *RunSummary {
	return &RunSummary{
		Kind:      kind,
		Requested: requested,
		Items:     make([]ItemOutcome, 0, requested),
	}
}

// Record appends an outcome and updates the counters.
func (s *RunSummary) Record(outcome ItemOutcome) {
	switch outcome.Status {
	case ItemDone:
		s.Succeeded++
	case ItemSkipped:
		s.Skipped++
	}
	s.Items = append(s.Items, outcome)
}

// RunStatus is the lifecycle status of a run started from the web UI.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Run is one pipeline execution tracked by the web UI.
type Run struct {
	ID          uuid.UUID   `json:"id"`
	Kind        JobKind     `json:"kind"`
	Status      RunStatus   `json:"status"`
	Summary     *RunSummary `json:"summary,omitempty"`
	Error       string      `json:"error,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}
