// Package db provides PostgreSQL storage for web UI run history.
package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/aeroleads/internal/types"
)

//go:embed schema.sql
var schemaSQL string

// DefaultListLimit caps ListRuns when no limit is given
const DefaultListLimit = 50

// ErrRunNotFound is returned when a run ID does not exist
var ErrRunNotFound = errors.New("run not found")

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Migrate creates the run history tables if they do not exist
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// CreateRun inserts a running run of the given kind
func (db *DB) CreateRun(ctx context.Context, kind types.JobKind) (*types.Run, error) {
	run := types.Run{Kind: kind, Status: types.RunRunning}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO pipeline_runs (kind, status)
		 VALUES ($1, $2)
		 RETURNING id, created_at`,
		string(kind), string(types.RunRunning),
	).Scan(&run.ID, &run.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return &run, nil
}

// AppendItem records one item outcome for a run
func (db *DB) AppendItem(ctx context.Context, runID uuid.UUID, item types.ItemOutcome) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO run_items (run_id, item_index, item_key, status, detail, error_message)
		 VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''))
		 ON CONFLICT (run_id, item_index) DO UPDATE
		 SET status = $4, detail = NULLIF($5, ''), error_message = NULLIF($6, '')`,
		runID, item.Index, item.Key, string(item.Status), item.Detail, item.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to save item %d: %w", item.Index, err)
	}
	return nil
}

// CompleteRun stores the final summary and marks the run completed, or failed when runErr is set
func (db *DB) CompleteRun(ctx context.Context, runID uuid.UUID, summary *types.RunSummary, runErr error) error {
	status, message := completionStatus(runErr)

	var summaryJSON []byte
	if summary != nil {
		var err error
		summaryJSON, err = json.Marshal(summary)
		if err != nil {
			return fmt.Errorf("failed to marshal summary: %w", err)
		}
	}

	result, err := db.pool.Exec(ctx,
		`UPDATE pipeline_runs
		 SET status = $1, summary = $2, error_message = NULLIF($3, ''), completed_at = NOW()
		 WHERE id = $4`,
		string(status), summaryJSON, message, runID,
	)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// GetRun retrieves a run by ID. While a run is in progress its summary is
// rebuilt from the recorded items.
func (db *DB) GetRun(ctx context.Context, runID uuid.UUID) (*types.Run, error) {
	run, err := scanRun(db.pool.QueryRow(ctx,
		`SELECT id, kind, status, summary, error_message, created_at, completed_at
		 FROM pipeline_runs WHERE id = $1`,
		runID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	if run.Summary == nil {
		items, err := db.ListItems(ctx, runID)
		if err != nil {
			return nil, err
		}
		run.Summary = types.NewRunSummary(run.Kind, len(items))
		for _, item := range items {
			run.Summary.Record(item)
		}
	}
	return run, nil
}

// ListItems returns a run's item outcomes in input order
func (db *DB) ListItems(ctx context.Context, runID uuid.UUID) ([]types.ItemOutcome, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT item_index, item_key, status, COALESCE(detail, ''), COALESCE(error_message, '')
		 FROM run_items WHERE run_id = $1 ORDER BY item_index ASC`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	var items []types.ItemOutcome
	for rows.Next() {
		var item types.ItemOutcome
		var status string
		if err := rows.Scan(&item.Index, &item.Key, &status, &item.Detail, &item.Error); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		item.Status = types.ItemStatus(status)
		items = append(items, item)
	}
	return items, rows.Err()
}

// RunFilters holds optional filters for listing runs
type RunFilters struct {
	Kind   types.JobKind
	Status types.RunStatus
	Limit  int
}

// ListRuns retrieves recent runs, newest first
func (db *DB) ListRuns(ctx context.Context, filters RunFilters) ([]types.Run, error) {
	query, args := listRunsQuery(filters)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// DeleteRun deletes a run and its items (via cascade)
func (db *DB) DeleteRun(ctx context.Context, runID uuid.UUID) error {
	result, err := db.pool.Exec(ctx, `DELETE FROM pipeline_runs WHERE id = $1`, runID)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

func listRunsQuery(filters RunFilters) (string, []any) {
	if filters.Limit <= 0 {
		filters.Limit = DefaultListLimit
	}

	query := `SELECT id, kind, status, summary, error_message, created_at, completed_at
		FROM pipeline_runs WHERE 1=1`
	args := []any{}
	argNum := 1

	if filters.Kind != "" {
		query += fmt.Sprintf(" AND kind = $%d", argNum)
		args = append(args, string(filters.Kind))
		argNum++
	}
	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(filters.Status))
		argNum++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", argNum)
	args = append(args, filters.Limit)
	return query, args
}

func completionStatus(runErr error) (types.RunStatus, string) {
	if runErr != nil {
		return types.RunFailed, runErr.Error()
	}
	return types.RunCompleted, ""
}

func scanRun(row pgx.Row) (*types.Run, error) {
	var (
		run         types.Run
		kind        string
		status      string
		summaryJSON []byte
		errMessage  *string
		completedAt *time.Time
	)
	if err := row.Scan(&run.ID, &kind, &status, &summaryJSON, &errMessage, &run.CreatedAt, &completedAt); err != nil {
		return nil, err
	}
	run.Kind = types.JobKind(kind)
	run.Status = types.RunStatus(status)
	run.CompletedAt = completedAt
	if errMessage != nil {
		run.Error = *errMessage
	}
	if len(summaryJSON) > 0 {
		var summary types.RunSummary
		if err := json.Unmarshal(summaryJSON, &summary); err != nil {
			return nil, fmt.Errorf("failed to decode summary: %w", err)
		}
		run.Summary = &summary
	}
	return &run, nil
}
