// Package store archives run snapshots in PostgreSQL. Snapshots are stored
// whole as JSON and are never queried by content.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/solarsec-cli/internal/reporting"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("assessment run not found")

const defaultListLimit = 20

// DBPool is an interface that abstracts the pgxpool.Pool to allow for mocking in tests.
type DBPool interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RunSummary identifies an archived run.
type RunSummary struct {
	ID         uuid.UUID `json:"id" yaml:"id"`
	SystemName string    `json:"system_name" yaml:"system_name"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
}

// Run is an archived run with its snapshot.
type Run struct {
	RunSummary
	Bundle *reporting.Bundle
}

// Store provides a PostgreSQL archive of assessment runs.
type Store struct {
	pool DBPool
	log  *zap.Logger
}

// New creates a new store instance and verifies the connection.
func New(ctx context.Context, pool DBPool, logger *zap.Logger) (*Store, error) {
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		pool: pool,
		log:  logger.Named("store"),
	}, nil
}

const sqlCreateRuns = `
        CREATE TABLE IF NOT EXISTS assessment_runs (
            id          UUID PRIMARY KEY,
            system_name TEXT NOT NULL,
            created_at  TIMESTAMPTZ NOT NULL,
            payload     JSONB NOT NULL
        );
    `

// EnsureSchema creates the assessment_runs table when it is missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, sqlCreateRuns); err != nil {
		return fmt.Errorf("failed to create assessment_runs table: %w", err)
	}
	return nil
}

const sqlInsertRun = `
        INSERT INTO assessment_runs (id, system_name, created_at, payload)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (id) DO UPDATE SET
            system_name = EXCLUDED.system_name,
            payload = EXCLUDED.payload;
    `

// SaveRun archives the bundle under its run id. Saving the same run again
// replaces its snapshot.
func (s *Store) SaveRun(ctx context.Context, b *reporting.Bundle) error {
	id, err := uuid.Parse(b.RunID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", b.RunID, err)
	}
	payload, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to encode run snapshot: %w", err)
	}

	// Ensure the timestamp is in UTC before insertion to prevent ambiguity.
	if _, err := s.pool.Exec(ctx, sqlInsertRun, id, b.System.Name, b.GeneratedAt.UTC(), payload); err != nil {
		return fmt.Errorf("failed to insert run %s: %w", id, err)
	}
	s.log.Info("Archived assessment run.", zap.String("run_id", id.String()), zap.Int("bytes", len(payload)))
	return nil
}

const sqlSelectRun = `
        SELECT system_name, created_at, payload
        FROM assessment_runs
        WHERE id = $1;
    `

// GetRun loads an archived run.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (*Run, error) {
	var (
		run     = Run{RunSummary: RunSummary{ID: id}}
		payload []byte
	)
	err := s.pool.QueryRow(ctx, sqlSelectRun, id).Scan(&run.SystemName, &run.CreatedAt, &payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run %s: %w", id, err)
	}

	var b reporting.Bundle
	if err := json.Unmarshal(payload, &b); err != nil {
		return nil, fmt.Errorf("failed to decode run snapshot %s: %w", id, err)
	}
	b.Restore()
	run.Bundle = &b
	return &run, nil
}

const sqlListRuns = `
        SELECT id, system_name, created_at
        FROM assessment_runs
        ORDER BY created_at DESC
        LIMIT $1;
    `

// ListRuns returns the most recent runs first. A non-positive limit means 20.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := s.pool.Query(ctx, sqlListRuns, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []RunSummary{}
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.SystemName, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}
	return runs, nil
}
