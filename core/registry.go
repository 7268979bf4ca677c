package core

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

// AreaEventType indicates what kind of change happened in the registry.
type AreaEventType int

const (
	// AreaRecorded fires when a new area is inserted.
	AreaRecorded AreaEventType = iota
	// AreaUpdated fires when an existing key's outcome is overwritten.
	AreaUpdated
	// RegistryCleared fires on a full reset.
	RegistryCleared
)

// AreaEvent is emitted to subscribers when the registry changes.
type AreaEvent struct {
	Type AreaEventType
	Area *model.AnalyzedArea // nil for RegistryCleared
}

// Statistics is a pure aggregation over the current registry entries.
type Statistics struct {
	Total                      int     `json:"total"`
	Correct                    int     `json:"correct"`
	AccuracyPercent            float64 `json:"accuracy_percent"`
	SpecialZoneTotal           int     `json:"special_zone_total"`
	SpecialZoneCorrect         int     `json:"special_zone_correct"`
	SpecialZoneAccuracyPercent float64 `json:"special_zone_accuracy_percent"`
}

// keyPrecision is the dedup rounding granularity: 4 decimal places is
// roughly 11 m at the equator. Two analyses whose centroids round to the
// same pair are "the same area" even if the drawn polygons differ. This
// silently merges genuinely distinct plots with near-identical centroids;
// that is a known, accepted simplification of the game, not a bug, and
// several behaviors depend on this exact granularity.
const keyPrecision = "%.4f,%.4f"

// KeyForCentroid derives the registry identity string from a centroid.
func KeyForCentroid(c model.GeoPoint) string {
	return fmt.Sprintf(keyPrecision, c.Latitude, c.Longitude)
}

// renderedArea tracks the surface artifacts currently drawn for one entry.
type renderedArea struct {
	marker  LayerHandle
	overlay LayerHandle
}

// AreaRegistry is the keyed store of previously analyzed farm boundaries.
// It is the single source of truth for rendering: exactly one marker and
// one non-interactive boundary overlay exist per entry, and updates always
// remove the stale artifacts before drawing fresh ones.
//
// The registry is concurrency-safe via an internal RWMutex so it can be
// shared between the UI flow and HTTP/WebSocket consumers.
type AreaRegistry struct {
	mu sync.RWMutex

	surface  MapSurface
	entries  map[string]*model.AnalyzedArea
	rendered map[string]renderedArea
	subs     []func(AreaEvent)

	// Now is the timestamp source; overridable in tests.
	Now func() time.Time
}

// NewAreaRegistry constructs an empty registry rendering onto surface.
func NewAreaRegistry(surface MapSurface) *AreaRegistry {
	return &AreaRegistry{
		surface:  surface,
		entries:  make(map[string]*model.AnalyzedArea),
		rendered: make(map[string]renderedArea),
		Now:      time.Now,
	}
}

// Subscribe registers a callback invoked after every registry change.
// Callbacks run synchronously under no lock; they must not call back into
// the registry's write methods.
func (r *AreaRegistry) Subscribe(fn func(AreaEvent)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subs = append(r.subs, fn)
}

// RecordOutcome stores the scored result for a completed boundary. The
// decision outcome is a required input computed by the scoring flow before
// this call; the registry never infers correctness.
//
// If the polygon's rounded centroid matches an existing key, the entry is
// overwritten in place (outcome, mission, polygon, timestamp) and its
// marker and overlay are removed and redrawn so no stale visuals remain.
//
// The returned area and the areas carried by events are detached copies;
// a later overwrite of the same key never mutates them. Consumers hold
// weak references only: re-read via Get to observe the current outcome.
func (r *AreaRegistry) RecordOutcome(polygon model.Polygon, isCorrect, isSpecialZone bool, mission model.MissionType) *model.AnalyzedArea {
	centroid := PolygonCentroid(polygon)
	key := KeyForCentroid(centroid)

	r.mu.Lock()
	area, existed := r.entries[key]
	if !existed {
		area = &model.AnalyzedArea{Key: key}
		r.entries[key] = area
	}
	area.Polygon = polygon.Clone()
	area.Centroid = centroid
	area.AreaHectares = PolygonAreaHectares(polygon)
	area.IsCorrectDecision = isCorrect
	area.IsSpecialZone = isSpecialZone
	area.Mission = mission
	area.RecordedAt = r.Now()
	r.renderLocked(area)

	evt := AreaEvent{Type: AreaRecorded, Area: detach(area)}
	if existed {
		evt.Type = AreaUpdated
	}
	out := detach(area)
	subs := append([]func(AreaEvent){}, r.subs...)
	r.mu.Unlock()

	for _, fn := range subs {
		fn(evt)
	}
	return out
}

// Get returns a copy of the entry for a key, or nil if unseen.
func (r *AreaRegistry) Get(key string) *model.AnalyzedArea {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.entries[key]
	if !ok {
		return nil
	}
	return detach(a)
}

// List returns copies of all entries ordered by key.
func (r *AreaRegistry) List() []*model.AnalyzedArea {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.AnalyzedArea, 0, len(r.entries))
	for _, a := range r.entries {
		out = append(out, detach(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// detach deep-copies an entry so callers never alias registry state.
// Caller holds at least the read lock.
func detach(a *model.AnalyzedArea) *model.AnalyzedArea {
	cp := *a
	cp.Polygon = a.Polygon.Clone()
	return &cp
}

// Len returns the number of distinct analyzed areas.
func (r *AreaRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// ClearAll removes every entry and every associated marker and overlay.
// Used for a full progress reset.
func (r *AreaRegistry) ClearAll() {
	r.mu.Lock()
	for key, handles := range r.rendered {
		r.removeLocked(handles)
		delete(r.rendered, key)
	}
	r.entries = make(map[string]*model.AnalyzedArea)
	subs := append([]func(AreaEvent){}, r.subs...)
	r.mu.Unlock()

	for _, fn := range subs {
		fn(AreaEvent{Type: RegistryCleared})
	}
}

// Statistics aggregates outcome tallies over the current entries.
func (r *AreaRegistry) Statistics() Statistics {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var s Statistics
	for _, a := range r.entries {
		s.Total++
		if a.IsCorrectDecision {
			s.Correct++
		}
		if a.IsSpecialZone {
			s.SpecialZoneTotal++
			if a.IsCorrectDecision {
				s.SpecialZoneCorrect++
			}
		}
	}
	if s.Total > 0 {
		s.AccuracyPercent = 100 * float64(s.Correct) / float64(s.Total)
	}
	if s.SpecialZoneTotal > 0 {
		s.SpecialZoneAccuracyPercent = 100 * float64(s.SpecialZoneCorrect) / float64(s.SpecialZoneTotal)
	}
	return s
}

// Snapshot returns a JSON-serializable copy of the registry contents.
// Persistence timing (autosave interval, storage keys) is the caller's
// concern.
func (r *AreaRegistry) Snapshot() []model.AnalyzedArea {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.AnalyzedArea, 0, len(r.entries))
	for _, a := range r.entries {
		cp := *a
		cp.Polygon = a.Polygon.Clone()
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// Restore replaces the registry contents with a previously taken snapshot
// and redraws every marker and overlay. Entries with an empty key are
// re-keyed from their centroid.
func (r *AreaRegistry) Restore(areas []model.AnalyzedArea) {
	r.mu.Lock()
	for key, handles := range r.rendered {
		r.removeLocked(handles)
		delete(r.rendered, key)
	}
	r.entries = make(map[string]*model.AnalyzedArea, len(areas))
	for _, a := range areas {
		cp := a
		cp.Polygon = a.Polygon.Clone()
		if cp.Key == "" {
			cp.Key = KeyForCentroid(cp.Centroid)
		}
		r.entries[cp.Key] = &cp
		r.renderLocked(&cp)
	}
	r.mu.Unlock()
}

// renderLocked draws the marker and boundary overlay for an entry,
// removing any stale artifacts first. Caller holds the write lock.
func (r *AreaRegistry) renderLocked(area *model.AnalyzedArea) {
	if r.surface == nil {
		return
	}
	if old, ok := r.rendered[area.Key]; ok {
		r.removeLocked(old)
	}

	style := MarkerIncorrect
	switch {
	case area.IsCorrectDecision && area.IsSpecialZone:
		style = MarkerSpecialCorrect
	case area.IsCorrectDecision:
		style = MarkerCorrect
	}

	handles := renderedArea{
		marker: r.surface.DrawMarker(area.Centroid, style),
	}
	if outline := overlayOutline(area); len(outline) >= 3 {
		// Registry overlays are never interactive: they must not block
		// pointer events meant for the base map.
		handles.overlay = r.surface.DrawFinalPolygon(outline, OverlayStyle{
			Color:       string(style),
			Interactive: false,
		})
	}
	r.rendered[area.Key] = handles
}

// overlayOutline traces the originally drawn polygon when available and
// falls back to the axis-aligned bounding rectangle otherwise.
func overlayOutline(area *model.AnalyzedArea) model.Polygon {
	if len(area.Polygon) >= 3 {
		return area.Polygon.Clone()
	}
	if len(area.Polygon) == 0 {
		return nil
	}
	rect := area.Polygon.BoundingRect()
	return model.Polygon{
		{Latitude: rect.North, Longitude: rect.West},
		{Latitude: rect.North, Longitude: rect.East},
		{Latitude: rect.South, Longitude: rect.East},
		{Latitude: rect.South, Longitude: rect.West},
	}
}

func (r *AreaRegistry) removeLocked(h renderedArea) {
	if r.surface == nil {
		return
	}
	if h.marker != 0 {
		r.surface.RemoveLayer(h.marker)
	}
	if h.overlay != 0 {
		r.surface.RemoveLayer(h.overlay)
	}
}
