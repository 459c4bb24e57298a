// File: cmd/helpers_test.go
package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"slices"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/xkilldash9x/solarsec-cli/internal/config"
	"github.com/xkilldash9x/solarsec-cli/internal/reporting"
	"github.com/xkilldash9x/solarsec-cli/internal/store"
)

// memStore is an in-memory runStore.
type memStore struct {
	mu    sync.Mutex
	order []uuid.UUID
	runs  map[uuid.UUID]*reporting.Bundle
}

func newMemStore() *memStore {
	return &memStore{runs: make(map[uuid.UUID]*reporting.Bundle)}
}

func (m *memStore) SaveRun(_ context.Context, b *reporting.Bundle) error {
	id, err := uuid.Parse(b.RunID)
	if err != nil {
		return fmt.Errorf("invalid run id %q: %w", b.RunID, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.runs[id]; !ok {
		m.order = append(m.order, id)
	}
	m.runs[id] = b
	return nil
}

func (m *memStore) GetRun(_ context.Context, id uuid.UUID) (*store.Run, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.runs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrRunNotFound, id)
	}
	return &store.Run{
		RunSummary: store.RunSummary{ID: id, SystemName: b.System.Name, CreatedAt: b.GeneratedAt},
		Bundle:     b,
	}, nil
}

func (m *memStore) ListRuns(_ context.Context, limit int) ([]store.RunSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []store.RunSummary{}
	for _, id := range slices.Backward(m.order) {
		if len(out) == limit {
			break
		}
		b := m.runs[id]
		out = append(out, store.RunSummary{ID: id, SystemName: b.System.Name, CreatedAt: b.GeneratedAt})
	}
	return out, nil
}

// memProvider hands out a shared memStore and counts releases.
type memProvider struct {
	store    *memStore
	err      error
	released int
}

func (p *memProvider) Open(context.Context, config.Interface) (runStore, func(), error) {
	if p.err != nil {
		return nil, nil, p.err
	}
	return p.store, func() { p.released++ }, nil
}

// execute runs the command tree with args and returns what it printed.
func execute(t *testing.T, provider storeProvider, args ...string) (string, error) {
	t.Helper()
	root := newRootCommand(provider)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}
