package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/aeroleads/internal/db"
	"github.com/jonathan/aeroleads/internal/pipeline"
	"github.com/jonathan/aeroleads/internal/types"
)

//go:embed static
var staticFiles embed.FS

// maxRunBody bounds trigger payloads; a thousand phone numbers fits easily.
const maxRunBody = 1 << 20

// RunResponse represents the response for POST /runs/{kind}
type RunResponse struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

// HealthResponse represents the response for GET /health
type HealthResponse struct {
	Status    string          `json:"status"`
	Auth      bool            `json:"auth"`
	Pipelines map[string]bool `json:"pipelines"`
}

// handleHealth reports liveness and which pipelines are configured.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	pipelines := make(map[string]bool, 3)
	for _, kind := range []types.JobKind{types.JobProfiles, types.JobCalls, types.JobArticles} {
		pipelines[string(kind)] = s.runner.Enabled(kind)
	}
	s.jsonResponse(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Auth:      s.authHandler != nil,
		Pipelines: pipelines,
	})
}

// handleIndex serves the single-page UI.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := fs.ReadFile(staticFiles, "static/index.html")
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "UI not available")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(page) //nolint:errcheck
}

// handleLogin delegates to the auth handler, or reports that login is off.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.authHandler == nil {
		s.errorResponse(w, HTTPStatus(&ErrLoginDisabled{}), (&ErrLoginDisabled{}).Error())
		return
	}
	s.authHandler.Login(w, r)
}

// decodeRun parses the job kind from the path and the trigger payload from the body.
func (s *Server) decodeRun(w http.ResponseWriter, r *http.Request) (types.JobKind, pipeline.Request, error) {
	kind, err := types.ParseJobKind(r.PathValue("kind"))
	if err != nil {
		return "", nil, &ErrValidation{Field: "kind", Message: err.Error()}
	}
	if !s.runner.Enabled(kind) {
		return "", nil, fmt.Errorf("%s: %w", kind, pipeline.ErrNotConfigured)
	}

	req, err := pipeline.NewRequest(kind)
	if err != nil {
		return "", nil, &ErrValidation{Field: "kind", Message: err.Error()}
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRunBody)).Decode(req); err != nil {
		return "", nil, &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	if err := req.Validate(); err != nil {
		return "", nil, newValidationError(err)
	}
	return kind, req, nil
}

// execute runs one pipeline to completion, recording each item outcome and the
// final summary in the store. forward receives every progress event.
func (s *Server) execute(ctx context.Context, run *types.Run, req pipeline.Request, forward pipeline.ProgressCallback) (*types.RunSummary, error) {
	record := func(event pipeline.ProgressEvent) {
		item, ok := event.Content.(types.ItemOutcome)
		if event.Step != pipeline.StepItem || !ok {
			return
		}
		if err := s.store.AppendItem(context.WithoutCancel(ctx), run.ID, item); err != nil {
			log.Printf("[RUN %s] Failed to record item %d: %v", run.ID, item.Index, err)
		}
	}

	summary, runErr := s.runner.Run(ctx, run.Kind, req, pipeline.RunOptions{
		RunID:      run.ID.String(),
		Verbose:    s.verbose,
		OnProgress: pipeline.Chain(record, forward),
	})

	// The run may have been cancelled; its outcome is still persisted.
	if err := s.store.CompleteRun(context.WithoutCancel(ctx), run.ID, summary, runErr); err != nil {
		log.Printf("[RUN %s] Failed to complete run: %v", run.ID, err)
	}
	return summary, runErr
}

// handleStartRun starts a pipeline in the background and returns its run ID.
func (s *Server) handleStartRun(w http.ResponseWriter, r *http.Request) {
	kind, req, err := s.decodeRun(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	run, err := s.store.CreateRun(r.Context(), kind)
	if err != nil {
		log.Printf("[SERVER] Failed to create run: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to create run")
		return
	}

	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		if _, err := s.execute(s.runCtx, run, req, nil); err != nil {
			log.Printf("[RUN %s] %s run failed: %v", run.ID, kind, err)
		}
	}()

	s.jsonResponse(w, http.StatusAccepted, RunResponse{
		RunID:  run.ID.String(),
		Status: string(types.RunRunning),
	})
}

// handleRunStream starts a pipeline and streams progress via SSE until it finishes.
// Disconnecting the client cancels the run.
func (s *Server) handleRunStream(w http.ResponseWriter, r *http.Request) {
	kind, req, err := s.decodeRun(w, r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	run, err := s.store.CreateRun(r.Context(), kind)
	if err != nil {
		log.Printf("[SERVER] Failed to create run: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to create run")
		return
	}

	// A run of many profiles outlives the server's write timeout.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		log.Printf("[SERVER] Could not clear write deadline: %v", err)
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	runID := run.ID.String()
	log.Printf("[RUN %s] Starting streaming %s run", runID, kind)

	summary, err := s.execute(r.Context(), run, req, func(event pipeline.ProgressEvent) {
		if event.Step == pipeline.StepError || event.Step == pipeline.StepComplete {
			return
		}
		if err := sse.WriteEvent(eventStep, event); err != nil {
			log.Printf("[RUN %s] Error writing SSE event: %v", runID, err)
		}
	})
	if err != nil {
		sse.WriteError(runID, err.Error())
		return
	}

	sse.WriteComplete(runID, summary)
}

// handleListRuns lists recent runs, optionally filtered by kind and status.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	var filters db.RunFilters

	q := r.URL.Query()
	if k := q.Get("kind"); k != "" {
		kind, err := types.ParseJobKind(k)
		if err != nil {
			s.errorResponse(w, http.StatusBadRequest, err.Error())
			return
		}
		filters.Kind = kind
	}
	if st := q.Get("status"); st != "" {
		switch status := types.RunStatus(st); status {
		case types.RunRunning, types.RunCompleted, types.RunFailed:
			filters.Status = status
		default:
			s.errorResponse(w, http.StatusBadRequest, fmt.Sprintf("unknown status: %q", st))
			return
		}
	}
	if l := q.Get("limit"); l != "" {
		limit, err := strconv.Atoi(l)
		if err != nil || limit < 1 {
			s.errorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		filters.Limit = limit
	}

	runs, err := s.store.ListRuns(r.Context(), filters)
	if err != nil {
		log.Printf("[SERVER] Failed to list runs: %v", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to list runs")
		return
	}
	if runs == nil {
		runs = []types.Run{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleGetRun returns one run with its per-item outcomes.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid run ID")
		return
	}

	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		status := HTTPStatus(err)
		if status == http.StatusInternalServerError {
			log.Printf("[SERVER] Failed to get run %s: %v", id, err)
		}
		s.errorResponse(w, status, err.Error())
		return
	}
	s.jsonResponse(w, http.StatusOK, run)
}
