package server

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/aeroleads/internal/db"
	"github.com/jonathan/aeroleads/internal/types"
)

// RunStore persists web UI run history. *db.DB implements it for PostgreSQL.
type RunStore interface {
	CreateRun(ctx context.Context, kind types.JobKind) (*types.Run, error)
	AppendItem(ctx context.Context, runID uuid.UUID, item types.ItemOutcome) error
	CompleteRun(ctx context.Context, runID uuid.UUID, summary *types.RunSummary, runErr error) error
	GetRun(ctx context.Context, runID uuid.UUID) (*types.Run, error)
	ListRuns(ctx context.Context, filters db.RunFilters) ([]types.Run, error)
}

var _ RunStore = (*db.DB)(nil)

// MemoryStore keeps run history in process memory. It is lost on restart.
type MemoryStore struct {
	mu   sync.Mutex
	runs map[uuid.UUID]*types.Run
	now  func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[uuid.UUID]*types.Run), now: time.Now}
}

// CreateRun implements RunStore.
func (m *MemoryStore) CreateRun(_ context.Context, kind types.JobKind) (*types.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run := &types.Run{
		ID:        uuid.New(),
		Kind:      kind,
		Status:    types.RunRunning,
		Summary:   types.NewRunSummary(kind, 0),
		CreatedAt: m.now().UTC(),
	}
	m.runs[run.ID] = run
	return copyRun(run), nil
}

// AppendItem implements RunStore.
func (m *MemoryStore) AppendItem(_ context.Context, runID uuid.UUID, item types.ItemOutcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", db.ErrRunNotFound, runID)
	}
	run.Summary.Requested++
	run.Summary.Record(item)
	return nil
}

// CompleteRun implements RunStore.
func (m *MemoryStore) CompleteRun(_ context.Context, runID uuid.UUID, summary *types.RunSummary, runErr error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", db.ErrRunNotFound, runID)
	}

	now := m.now().UTC()
	run.CompletedAt = &now
	run.Status = types.RunCompleted
	if runErr != nil {
		run.Status = types.RunFailed
		run.Error = runErr.Error()
	}
	if summary != nil {
		run.Summary = copySummary(summary)
	}
	return nil
}

// GetRun implements RunStore.
func (m *MemoryStore) GetRun(_ context.Context, runID uuid.UUID) (*types.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	run, ok := m.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", db.ErrRunNotFound, runID)
	}
	return copyRun(run), nil
}

// ListRuns implements RunStore, newest first.
func (m *MemoryStore) ListRuns(_ context.Context, filters db.RunFilters) ([]types.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	limit := filters.Limit
	if limit <= 0 {
		limit = db.DefaultListLimit
	}

	runs := make([]types.Run, 0, len(m.runs))
	for _, run := range m.runs {
		if filters.Kind != "" && run.Kind != filters.Kind {
			continue
		}
		if filters.Status != "" && run.Status != filters.Status {
			continue
		}
		runs = append(runs, *copyRun(run))
	}
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func copyRun(run *types.Run) *types.Run {
	c := *run
	if run.Summary != nil {
		c.Summary = copySummary(run.Summary)
	}
	if run.CompletedAt != nil {
		t := *run.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}

func copySummary(s *types.RunSummary) *types.RunSummary {
	c := *s
	c.Items = append([]types.ItemOutcome(nil), s.Items...)
	return &c
}
