// Package pipeline runs the automation pipelines on behalf of the web UI and
// reports per-item progress as events.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/jonathan/aeroleads/internal/articles"
	"github.com/jonathan/aeroleads/internal/dialer"
	"github.com/jonathan/aeroleads/internal/fetch"
	"github.com/jonathan/aeroleads/internal/llm"
	"github.com/jonathan/aeroleads/internal/profiles"
	"github.com/jonathan/aeroleads/internal/types"
)

// Event steps emitted by Run.
const (
	StepStart    = "start"
	StepItem     = "item"
	StepComplete = "complete"
	StepError    = "error"
)

// ProgressEvent represents a progress update during pipeline execution
type ProgressEvent struct {
	Step     string `json:"step"`
	Category string `json:"category"`
	Message  string `json:"message"`
	RunID    string `json:"run_id,omitempty"`
	Content  any    `json:"content,omitempty"`
}

// ProgressCallback is called when pipeline progress occurs
type ProgressCallback func(event ProgressEvent)

// ErrNotConfigured is returned when a pipeline's provider credentials are absent.
var ErrNotConfigured = errors.New("pipeline is not configured")

// Dependencies are the external clients a Runner hands to each pipeline.
// A nil client disables the pipeline that needs it.
type Dependencies struct {
	OpenBrowser profiles.BrowserOpener
	Session     *fetch.SessionOptions
	Login       *fetch.LoginForm
	Delay       time.Duration // Pause between profile page visits
	Jitter      time.Duration

	Caller   dialer.Caller
	From     string
	TwimlURL string

	LLM llm.Client

	OutputRoot string // Web runs write only beneath this directory
}

// RunOptions holds per-run settings
type RunOptions struct {
	RunID      string
	Verbose    bool
	OnProgress ProgressCallback
}

// Request is a decoded trigger payload for one pipeline.
type Request interface {
	Validate() error
}

// NewRequest returns an empty request value for kind, ready to be decoded into.
func NewRequest(kind types.JobKind) (Request, error) {
	switch kind {
	case types.JobProfiles:
		return &types.ProfilesRunRequest{}, nil
	case types.JobCalls:
		return &types.CallsRunRequest{}, nil
	case types.JobArticles:
		return &types.ArticlesRunRequest{}, nil
	default:
		return nil, fmt.Errorf("unknown job kind: %q", kind)
	}
}

// Runner executes pipeline runs against a fixed set of dependencies.
type Runner struct {
	deps Dependencies
}

// NewRunner creates a runner.
func NewRunner(deps Dependencies) *Runner {
	if deps.OpenBrowser == nil {
		deps.OpenBrowser = profiles.ChromeOpener
	}
	if deps.OutputRoot == "" {
		deps.OutputRoot = "output"
	}
	return &Runner{deps: deps}
}

// Enabled reports whether the pipeline for kind has what it needs to run.
func (r *Runner) Enabled(kind types.JobKind) bool {
	switch kind {
	case types.JobProfiles:
		return true
	case types.JobCalls:
		return r.deps.Caller != nil
	case types.JobArticles:
		return r.deps.LLM != nil
	default:
		return false
	}
}

// emitProgress calls the progress callback if configured
func emitProgress(opts *RunOptions, step string, kind types.JobKind, message string, content any) {
	if opts.OnProgress != nil {
		opts.OnProgress(ProgressEvent{
			Step:     step,
			Category: string(kind),
			Message:  message,
			RunID:    opts.RunID,
			Content:  content,
		})
	}
}

// itemReporter adapts ItemOutcome callbacks into progress events.
func itemReporter(opts *RunOptions, kind types.JobKind) func(types.ItemOutcome) {
	return func(o types.ItemOutcome) {
		message := fmt.Sprintf("%s: %s", o.Key, o.Status)
		if o.Error != "" {
			message += " (" + o.Error + ")"
		}
		emitProgress(opts, StepItem, kind, message, o)
	}
}

// Run validates req and executes the matching pipeline synchronously.
// Per-item failures are part of the returned summary; an error means the run
// could not start or was aborted.
func (r *Runner) Run(ctx context.Context, kind types.JobKind, req Request, opts RunOptions) (*types.RunSummary, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s request: %w", kind, err)
	}
	if !r.Enabled(kind) {
		return nil, fmt.Errorf("%s: %w", kind, ErrNotConfigured)
	}

	var (
		summary *types.RunSummary
		err     error
	)
	switch payload := req.(type) {
	case *types.ProfilesRunRequest:
		summary, err = r.runProfiles(ctx, payload, &opts)
	case *types.CallsRunRequest:
		summary, err = r.runCalls(ctx, payload, &opts)
	case *types.ArticlesRunRequest:
		summary, err = r.runArticles(ctx, payload, &opts)
	default:
		return nil, fmt.Errorf("unsupported request type %T", req)
	}
	if err != nil {
		emitProgress(&opts, StepError, kind, err.Error(), nil)
		return summary, err
	}

	emitProgress(&opts, StepComplete, kind,
		fmt.Sprintf("%d succeeded, %d skipped", summary.Succeeded, summary.Skipped), summary)
	return summary, nil
}

func (r *Runner) runProfiles(ctx context.Context, req *types.ProfilesRunRequest, opts *RunOptions) (*types.RunSummary, error) {
	output := r.confine(req.Output, "profiles.csv")
	emitProgress(opts, StepStart, types.JobProfiles,
		fmt.Sprintf("Collecting up to %d profiles into %s", req.Count, output), nil)

	job := profiles.Job{
		URLs:      req.URLs,
		SearchURL: req.SearchURL,
		Output:    output,
		Session:   r.deps.Session,
		Login:     r.deps.Login,
		Options: profiles.Options{
			Count:   req.Count,
			Delay:   r.deps.Delay,
			Jitter:  r.deps.Jitter,
			Verbose: opts.Verbose,
			OnItem:  itemReporter(opts, types.JobProfiles),
		},
	}
	return profiles.RunJob(ctx, job, r.deps.OpenBrowser)
}

func (r *Runner) runCalls(ctx context.Context, req *types.CallsRunRequest, opts *RunOptions) (*types.RunSummary, error) {
	emitProgress(opts, StepStart, types.JobCalls, fmt.Sprintf("Placing %d calls", len(req.Numbers)), nil)

	d := dialer.NewDispatcher(r.deps.Caller, dialer.Options{
		From:     r.deps.From,
		Message:  req.Message,
		TwimlURL: r.deps.TwimlURL,
		OnItem:   itemReporter(opts, types.JobCalls),
	})
	_, summary, err := d.Dispatch(ctx, req.Numbers)
	return summary, err
}

func (r *Runner) runArticles(ctx context.Context, req *types.ArticlesRunRequest, opts *RunOptions) (*types.RunSummary, error) {
	dir := r.confine(req.OutputDir, "articles")
	emitProgress(opts, StepStart, types.JobArticles,
		fmt.Sprintf("Generating %d articles into %s", len(req.Topics), dir), nil)

	g := articles.NewGenerator(r.deps.LLM, articles.Options{
		OutputDir: dir,
		Verbose:   opts.Verbose,
		OnItem:    itemReporter(opts, types.JobArticles),
	})
	_, summary, err := g.Generate(ctx, articles.SpecsFromTopics(req.Topics))
	return summary, err
}

// confine maps a client-supplied name to a path directly under OutputRoot.
func (r *Runner) confine(name, fallback string) string {
	base := filepath.Base(filepath.Clean("/" + name))
	if base == "/" || base == "." {
		base = fallback
	}
	return filepath.Join(r.deps.OutputRoot, base)
}

// logProgress is a ProgressCallback that writes events to the standard logger.
func logProgress(event ProgressEvent) {
	log.Printf("[RUN %s] %s: %s", event.RunID, event.Step, event.Message)
}

// Chain returns a callback that forwards each event to every non-nil callback,
// always logging it first.
func Chain(callbacks ...ProgressCallback) ProgressCallback {
	return func(event ProgressEvent) {
		logProgress(event)
		for _, cb := range callbacks {
			if cb != nil {
				cb(event)
			}
		}
	}
}
