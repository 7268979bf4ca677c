package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

// snapshotFile is the on-disk JSON shape.
type snapshotFile struct {
	SavedAt time.Time            `json:"saved_at"`
	Areas   []model.AnalyzedArea `json:"areas"`
}

// FileStore writes the snapshot to a single JSON file. Writes go through a
// temp file plus rename so a crash mid-save never corrupts the snapshot.
type FileStore struct {
	path string

	// Now stamps saved_at; overridable in tests.
	Now func() time.Time
}

// NewFileStore returns a store backed by the given path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path, Now: time.Now}
}

// Save replaces the snapshot file.
func (s *FileStore) Save(_ context.Context, areas []model.AnalyzedArea) error {
	raw, err := json.MarshalIndent(snapshotFile{
		SavedAt: s.Now().UTC(),
		Areas:   areas,
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot file, returning ErrNoSnapshot when it does not
// exist yet.
func (s *FileStore) Load(context.Context) ([]model.AnalyzedArea, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNoSnapshot
		}
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var f snapshotFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode snapshot %q: %w", s.path, err)
	}
	return f.Areas, nil
}
