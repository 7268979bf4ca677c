package core

import (
	"errors"
	"testing"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

var corners = model.Polygon{
	{Latitude: 40.7590, Longitude: -73.9850},
	{Latitude: 40.7600, Longitude: -73.9850},
	{Latitude: 40.7600, Longitude: -73.9800},
	{Latitude: 40.7590, Longitude: -73.9800},
}

func draftAll(t *testing.T, m *SelectionMachine) {
	t.Helper()
	if err := m.Begin(corners[0]); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	for _, p := range corners[1:] {
		if err := m.AddPoint(p); err != nil {
			t.Fatalf("AddPoint(%+v): %v", p, err)
		}
	}
}

func TestSelectionHappyPathPreservesOrder(t *testing.T) {
	surface := NewRecordingSurface()
	m := NewSelectionMachine(surface, nil)

	draftAll(t, m)
	if got := m.State(); got != SelectionComplete {
		t.Fatalf("state after 4 corners = %v, want complete", got)
	}

	poly, err := m.Confirm()
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if len(poly) != 4 {
		t.Fatalf("confirmed polygon has %d corners, want 4", len(poly))
	}
	for i := range corners {
		if poly[i] != corners[i] {
			t.Fatalf("corner %d = %+v, want %+v (placement order must be preserved)", i, poly[i], corners[i])
		}
	}
	if got := m.State(); got != SelectionIdle {
		t.Fatalf("state after confirm = %v, want idle", got)
	}
	if layers := surface.Layers(); len(layers) != 0 {
		t.Fatalf("confirm left %d artifacts on the surface, want 0", len(layers))
	}
}

func TestSelectionFourthCornerDoesNotAutoFinalize(t *testing.T) {
	m := NewSelectionMachine(NewRecordingSurface(), nil)
	draftAll(t, m)

	// Still holding the draft: the 4th click must not have confirmed.
	if got := m.DraftPoints(); len(got) != 4 {
		t.Fatalf("draft has %d corners after 4th click, want 4", len(got))
	}
	if err := m.AddPoint(corners[0]); !errors.Is(err, ErrDraftFull) {
		t.Fatalf("AddPoint on complete draft = %v, want ErrDraftFull", err)
	}
}

func TestSelectionEarlyConfirmRejected(t *testing.T) {
	m := NewSelectionMachine(NewRecordingSurface(), nil)
	if err := m.Begin(corners[0]); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := m.AddPoint(corners[1]); err != nil {
		t.Fatalf("AddPoint: %v", err)
	}

	if _, err := m.Confirm(); !errors.Is(err, ErrNotComplete) {
		t.Fatalf("Confirm with 2 corners = %v, want ErrNotComplete", err)
	}
	// The draft must be untouched by the failed confirm.
	if got := m.DraftPoints(); len(got) != 2 {
		t.Fatalf("draft has %d corners after rejected confirm, want 2", len(got))
	}
	if got := m.State(); got != SelectionDrafting {
		t.Fatalf("state = %v, want drafting", got)
	}
}

func TestSelectionCancelIsIdempotent(t *testing.T) {
	surface := NewRecordingSurface()
	m := NewSelectionMachine(surface, nil)
	draftAll(t, m)

	m.Cancel()
	if got := m.State(); got != SelectionIdle {
		t.Fatalf("state after cancel = %v, want idle", got)
	}
	if layers := surface.Layers(); len(layers) != 0 {
		t.Fatalf("cancel left %d artifacts, want 0", len(layers))
	}

	// Cancelling again, and cancelling idle, are no-ops.
	m.Cancel()
	m.Cancel()
	if got := m.State(); got != SelectionIdle {
		t.Fatalf("state after repeated cancel = %v, want idle", got)
	}

	// A fresh draft works after cancel.
	if err := m.Begin(corners[0]); err != nil {
		t.Fatalf("Begin after cancel: %v", err)
	}
}

func TestSelectionBeginWhileActive(t *testing.T) {
	m := NewSelectionMachine(NewRecordingSurface(), nil)
	if err := m.Begin(corners[0]); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if err := m.Begin(corners[1]); !errors.Is(err, ErrSelectionActive) {
		t.Fatalf("second Begin = %v, want ErrSelectionActive", err)
	}
}

func TestSelectionAddPointWithoutDraft(t *testing.T) {
	m := NewSelectionMachine(NewRecordingSurface(), nil)
	if err := m.AddPoint(corners[0]); !errors.Is(err, ErrNoDraft) {
		t.Fatalf("AddPoint on idle machine = %v, want ErrNoDraft", err)
	}
}

func TestSelectionRejectsOutOfRangePoint(t *testing.T) {
	m := NewSelectionMachine(NewRecordingSurface(), nil)
	if err := m.Begin(model.GeoPoint{Latitude: 91, Longitude: 0}); !errors.Is(err, ErrBadPoint) {
		t.Fatalf("Begin out of range = %v, want ErrBadPoint", err)
	}
	if got := m.State(); got != SelectionIdle {
		t.Fatalf("state = %v, want idle after rejected Begin", got)
	}
}

func TestSelectionPreviewNeverCommitted(t *testing.T) {
	surface := NewRecordingSurface()
	m := NewSelectionMachine(surface, nil)

	if err := m.Begin(corners[0]); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	hover := model.GeoPoint{Latitude: 50, Longitude: 50}
	if err := m.UpdatePreview(hover); err != nil {
		t.Fatalf("UpdatePreview: %v", err)
	}

	// Preview renders as a line (committed corner + speculative vertex).
	lines := surface.LayersOfKind("preview_line")
	if len(lines) != 1 {
		t.Fatalf("preview lines = %d, want 1", len(lines))
	}

	for _, p := range corners[1:] {
		if err := m.AddPoint(p); err != nil {
			t.Fatalf("AddPoint: %v", err)
		}
	}
	poly, err := m.Confirm()
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	for _, p := range poly {
		if p == hover {
			t.Fatal("preview point leaked into the confirmed polygon")
		}
	}
}

func TestSelectionPreviewRequiresDraft(t *testing.T) {
	m := NewSelectionMachine(NewRecordingSurface(), nil)
	if err := m.UpdatePreview(corners[0]); !errors.Is(err, ErrNoDraft) {
		t.Fatalf("UpdatePreview on idle = %v, want ErrNoDraft", err)
	}

	draftAll(t, m)
	if err := m.UpdatePreview(corners[0]); !errors.Is(err, ErrNoDraft) {
		t.Fatalf("UpdatePreview on complete = %v, want ErrNoDraft", err)
	}
}

func TestPointerAdapterFlow(t *testing.T) {
	surface := NewRecordingSurface()
	m := NewSelectionMachine(surface, nil)

	var confirmed model.Polygon
	var lastErr error
	adapter := &PointerAdapter{
		Machine:     m,
		OnConfirmed: func(p model.Polygon) { confirmed = p },
		OnError:     func(err error) { lastErr = err },
	}

	for _, p := range corners {
		adapter.OnPointerDown(p)
	}
	adapter.OnPointerMove(model.GeoPoint{Latitude: 1, Longitude: 1}) // ignored when complete
	adapter.OnKey("Enter")

	if lastErr != nil {
		t.Fatalf("adapter reported error: %v", lastErr)
	}
	if len(confirmed) != 4 {
		t.Fatalf("confirmed polygon has %d corners, want 4", len(confirmed))
	}

	// Escape on the next draft cancels it.
	adapter.OnPointerDown(corners[0])
	adapter.OnKey("Escape")
	if got := m.State(); got != SelectionIdle {
		t.Fatalf("state after Escape = %v, want idle", got)
	}
}
