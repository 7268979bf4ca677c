package core

import (
	"sync"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

// LayerHandle identifies a drawn artifact on a MapSurface so it can later
// be removed. Handles are opaque to the core; the zero value means
// "nothing drawn".
type LayerHandle int64

// MarkerStyle selects the icon/colour a marker is rendered with. The style
// encodes the decision outcome, so updated outcomes must redraw markers.
type MarkerStyle string

const (
	MarkerCorrect        MarkerStyle = "correct"
	MarkerIncorrect      MarkerStyle = "incorrect"
	MarkerSpecialCorrect MarkerStyle = "special_correct"
	MarkerDraftCorner    MarkerStyle = "draft_corner"
)

// OverlayStyle configures a committed boundary overlay. Interactive is
// always false for registry overlays: they must never intercept pointer
// events intended for the base map, or they would block future selections.
type OverlayStyle struct {
	Color       string
	Interactive bool
}

// MapSurface is the boundary contract with the host rendering surface
// (tile map, game canvas, headless recorder). The core never performs
// pixel math: all coordinates crossing this interface are geographic.
//
// Drawing primitives may be asynchronous inside the host, but from the
// core's perspective each call completes synchronously and returns a
// handle usable for removal.
type MapSurface interface {
	DrawPoint(p model.GeoPoint, style MarkerStyle) LayerHandle
	DrawPreviewLine(points model.Polygon) LayerHandle
	DrawPreviewPolygon(points model.Polygon) LayerHandle
	DrawFinalPolygon(points model.Polygon, style OverlayStyle) LayerHandle
	DrawMarker(p model.GeoPoint, style MarkerStyle) LayerHandle
	RemoveLayer(h LayerHandle)
}

// RecordedLayer is one artifact currently present on a RecordingSurface.
type RecordedLayer struct {
	Handle LayerHandle
	Kind   string // point | preview_line | preview_polygon | polygon | marker
	Points model.Polygon
	Marker MarkerStyle
	Style  OverlayStyle
}

// RecordingSurface is an in-memory MapSurface used by tests and headless
// runs. It tracks live layers so assertions can check exactly what would
// be visible.
type RecordingSurface struct {
	mu     sync.Mutex
	next   LayerHandle
	layers map[LayerHandle]RecordedLayer
}

// NewRecordingSurface returns an empty recording surface.
func NewRecordingSurface() *RecordingSurface {
	return &RecordingSurface{layers: make(map[LayerHandle]RecordedLayer)}
}

func (s *RecordingSurface) add(l RecordedLayer) LayerHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	l.Handle = s.next
	s.layers[s.next] = l
	return s.next
}

func (s *RecordingSurface) DrawPoint(p model.GeoPoint, style MarkerStyle) LayerHandle {
	return s.add(RecordedLayer{Kind: "point", Points: model.Polygon{p}, Marker: style})
}

func (s *RecordingSurface) DrawPreviewLine(points model.Polygon) LayerHandle {
	return s.add(RecordedLayer{Kind: "preview_line", Points: points.Clone()})
}

func (s *RecordingSurface) DrawPreviewPolygon(points model.Polygon) LayerHandle {
	return s.add(RecordedLayer{Kind: "preview_polygon", Points: points.Clone()})
}

func (s *RecordingSurface) DrawFinalPolygon(points model.Polygon, style OverlayStyle) LayerHandle {
	return s.add(RecordedLayer{Kind: "polygon", Points: points.Clone(), Style: style})
}

func (s *RecordingSurface) DrawMarker(p model.GeoPoint, style MarkerStyle) LayerHandle {
	return s.add(RecordedLayer{Kind: "marker", Points: model.Polygon{p}, Marker: style})
}

func (s *RecordingSurface) RemoveLayer(h LayerHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.layers, h)
}

// Layers returns the live artifacts, in no particular order.
func (s *RecordingSurface) Layers() []RecordedLayer {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedLayer, 0, len(s.layers))
	for _, l := range s.layers {
		out = append(out, l)
	}
	return out
}

// LayersOfKind returns live artifacts of one kind.
func (s *RecordingSurface) LayersOfKind(kind string) []RecordedLayer {
	var out []RecordedLayer
	for _, l := range s.Layers() {
		if l.Kind == kind {
			out = append(out, l)
		}
	}
	return out
}
