package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xkilldash9x/solarsec-cli/internal/config"
	"github.com/xkilldash9x/solarsec-cli/internal/observability"
	"github.com/xkilldash9x/solarsec-cli/internal/reporting"
	"github.com/xkilldash9x/solarsec-cli/internal/store"
)

// runStore is the part of the archive the commands use.
type runStore interface {
	SaveRun(ctx context.Context, b *reporting.Bundle) error
	GetRun(ctx context.Context, id uuid.UUID) (*store.Run, error)
	ListRuns(ctx context.Context, limit int) ([]store.RunSummary, error)
}

// storeProvider opens the run archive. The returned func releases it.
type storeProvider interface {
	Open(ctx context.Context, cfg config.Interface) (runStore, func(), error)
}

// errNoDatabase is returned when an archive operation runs without
// database.url.
var errNoDatabase = errors.New("database.url is not configured (set SOLARSEC_DATABASE_URL)")

type pgStoreProvider struct{}

// NewStoreProvider returns the PostgreSQL-backed archive provider.
func NewStoreProvider() storeProvider { return pgStoreProvider{} }

func (pgStoreProvider) Open(ctx context.Context, cfg config.Interface) (runStore, func(), error) {
	url := cfg.Database().URL
	if url == "" {
		return nil, nil, errNoDatabase
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create database pool: %w", err)
	}
	s, err := store.New(ctx, pool, observability.GetLogger())
	if err != nil {
		pool.Close()
		return nil, nil, err
	}
	if err := s.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	return s, pool.Close, nil
}
