package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

func sampleAreas() []model.AnalyzedArea {
	return []model.AnalyzedArea{
		{
			Key: "36.5000,-120.0000",
			Polygon: model.Polygon{
				{Latitude: 36.51, Longitude: -120.01},
				{Latitude: 36.51, Longitude: -119.99},
				{Latitude: 36.49, Longitude: -119.99},
				{Latitude: 36.49, Longitude: -120.01},
			},
			Centroid:          model.GeoPoint{Latitude: 36.5, Longitude: -120.0},
			AreaHectares:      312.7,
			IsCorrectDecision: true,
			IsSpecialZone:     true,
			Mission:           model.MissionFertilizer,
			RecordedAt:        time.Date(2026, time.July, 10, 9, 0, 0, 0, time.UTC),
		},
		{
			Key:        "40.7500,-73.9800",
			Centroid:   model.GeoPoint{Latitude: 40.75, Longitude: -73.98},
			Mission:    model.MissionIrrigation,
			RecordedAt: time.Date(2026, time.July, 11, 9, 0, 0, 0, time.UTC),
		},
	}
}

func TestMemoryStoreRoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, ErrNoSnapshot)

	require.NoError(t, s.Save(ctx, sampleAreas()))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, sampleAreas(), got)

	// An explicitly saved empty snapshot is not "no snapshot".
	require.NoError(t, s.Save(ctx, nil))
	got, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestMemoryStoreLoadReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, sampleAreas()))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	got[0].Key = "mutated"

	again, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "36.5000,-120.0000", again[0].Key)
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	s := NewFileStore(path)
	s.Now = func() time.Time { return time.Date(2026, time.July, 15, 12, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	_, err := s.Load(ctx)
	require.ErrorIs(t, err, ErrNoSnapshot)

	require.NoError(t, s.Save(ctx, sampleAreas()))
	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, sampleAreas(), got)
	assert.True(t, got[0].RecordedAt.Equal(sampleAreas()[0].RecordedAt))
}

func TestFileStoreSaveReplacesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	s := NewFileStore(path)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, sampleAreas()))
	require.NoError(t, s.Save(ctx, sampleAreas()[:1]))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// The temp file from the atomic write must not linger.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStoreLoadRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshot.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path).Load(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoSnapshot)
}
