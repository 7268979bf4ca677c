// Package store persists game registry snapshots. A snapshot is the full
// list of analyzed areas; the registry itself decides what goes in it.
package store

import (
	"context"
	"errors"
	"sync"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

// ErrNoSnapshot is returned by Load when nothing has been saved yet.
var ErrNoSnapshot = errors.New("no snapshot stored")

// SnapshotStore saves and restores registry snapshots.
type SnapshotStore interface {
	// Save replaces the stored snapshot.
	Save(ctx context.Context, areas []model.AnalyzedArea) error
	// Load returns the stored snapshot, or ErrNoSnapshot.
	Load(ctx context.Context) ([]model.AnalyzedArea, error)
}

// MemoryStore keeps the snapshot in process memory. Used as the default
// store and in tests.
type MemoryStore struct {
	mu    sync.Mutex
	areas []model.AnalyzedArea
	saved bool
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore { return &MemoryStore{} }

// Save replaces the stored snapshot.
func (s *MemoryStore) Save(_ context.Context, areas []model.AnalyzedArea) error {
	cp := make([]model.AnalyzedArea, len(areas))
	copy(cp, areas)
	s.mu.Lock()
	s.areas = cp
	s.saved = true
	s.mu.Unlock()
	return nil
}

// Load returns the stored snapshot, or ErrNoSnapshot.
func (s *MemoryStore) Load(context.Context) ([]model.AnalyzedArea, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.saved {
		return nil, ErrNoSnapshot
	}
	cp := make([]model.AnalyzedArea, len(s.areas))
	copy(cp, s.areas)
	return cp, nil
}
