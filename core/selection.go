package core

import (
	"errors"
	"fmt"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

var (
	// ErrSelectionActive is returned by Begin when a draft is already in
	// progress or a completed selection awaits confirmation.
	ErrSelectionActive = errors.New("selection already in progress")
	// ErrNoDraft is returned when an operation requires an active draft.
	ErrNoDraft = errors.New("no selection draft in progress")
	// ErrDraftFull is returned by AddPoint once all corners are placed.
	ErrDraftFull = errors.New("all corners already placed")
	// ErrNotComplete is returned by Confirm before all corners are placed.
	// Confirming early must never silently finalize a short polygon.
	ErrNotComplete = errors.New("selection is not complete")
	// ErrBadPoint is returned for coordinates outside valid geographic range.
	ErrBadPoint = errors.New("point outside valid coordinate range")
)

// SelectionState is the drawing interaction's lifecycle state.
type SelectionState int

const (
	// SelectionIdle means no draft exists.
	SelectionIdle SelectionState = iota
	// SelectionDrafting means 1–3 corners are committed.
	SelectionDrafting
	// SelectionComplete means all 4 corners are committed and the machine
	// is waiting for an explicit Confirm. The extra confirmation step lets
	// the player review the boundary before it is analyzed; the 4th click
	// never auto-finalizes.
	SelectionComplete
)

func (s SelectionState) String() string {
	switch s {
	case SelectionIdle:
		return "idle"
	case SelectionDrafting:
		return "drafting"
	case SelectionComplete:
		return "complete"
	default:
		return fmt.Sprintf("SelectionState(%d)", int(s))
	}
}

// SelectionMachine drives the point-by-point farm boundary drawing
// interaction. It owns the draft exclusively: committed points never
// escape except as clones, and the speculative preview point is never
// part of the finalized polygon.
//
// All methods run to completion synchronously within a single UI event;
// the machine must not be reentered from inside a surface draw callback.
type SelectionMachine struct {
	surface MapSurface
	prompt  func(string)

	state         SelectionState
	points        model.Polygon
	preview       *model.GeoPoint
	cornerHandles []LayerHandle
	previewHandle LayerHandle
}

// NewSelectionMachine constructs an idle machine drawing on surface.
// prompt receives user-facing guidance text and may be nil.
func NewSelectionMachine(surface MapSurface, prompt func(string)) *SelectionMachine {
	if prompt == nil {
		prompt = func(string) {}
	}
	return &SelectionMachine{surface: surface, prompt: prompt}
}

// State returns the current lifecycle state.
func (m *SelectionMachine) State() SelectionState { return m.state }

// DraftPoints returns a copy of the committed corners, in placement order.
func (m *SelectionMachine) DraftPoints() model.Polygon { return m.points.Clone() }

// Begin starts a new draft with the first corner. Valid only from idle.
func (m *SelectionMachine) Begin(first model.GeoPoint) error {
	if m.state != SelectionIdle {
		return ErrSelectionActive
	}
	if !first.InRange() {
		return ErrBadPoint
	}
	m.state = SelectionDrafting
	m.points = model.Polygon{first}
	m.cornerHandles = append(m.cornerHandles, m.surface.DrawPoint(first, MarkerDraftCorner))
	m.prompt(m.cornerPrompt())
	return nil
}

// AddPoint commits the next corner. Valid only while drafting with fewer
// than 4 corners. Placing the 4th corner transitions to complete and emits
// the confirm affordance instead of finalizing.
func (m *SelectionMachine) AddPoint(p model.GeoPoint) error {
	switch m.state {
	case SelectionIdle:
		return ErrNoDraft
	case SelectionComplete:
		return ErrDraftFull
	}
	if !p.InRange() {
		return ErrBadPoint
	}

	m.points = append(m.points, p)
	m.cornerHandles = append(m.cornerHandles, m.surface.DrawPoint(p, MarkerDraftCorner))
	m.preview = nil
	m.redrawPreview()

	if len(m.points) == model.FarmBoundaryVertices {
		m.state = SelectionComplete
		m.prompt("All 4 corners placed. Confirm the selection to analyze, or cancel.")
	} else {
		m.prompt(m.cornerPrompt())
	}
	return nil
}

// UpdatePreview replaces the speculative extra vertex used only for live
// rendering. It never affects committed points and is discarded before
// finalization. Valid only while drafting.
func (m *SelectionMachine) UpdatePreview(p model.GeoPoint) error {
	if m.state != SelectionDrafting {
		return ErrNoDraft
	}
	if !p.IsFinite() {
		return ErrBadPoint
	}
	pt := p
	m.preview = &pt
	m.redrawPreview()
	return nil
}

// Confirm finalizes the selection. Valid only from complete; confirming
// early is rejected with ErrNotComplete and leaves the draft untouched.
// On success the draft and all preview artifacts are cleared, the machine
// returns to idle, and the caller receives an owned copy of the polygon.
func (m *SelectionMachine) Confirm() (model.Polygon, error) {
	if m.state != SelectionComplete {
		return nil, ErrNotComplete
	}
	final := m.points.Clone()
	m.clearArtifacts()
	m.state = SelectionIdle
	m.points = nil
	m.preview = nil
	return final, nil
}

// Cancel discards the draft and all preview artifacts. Cancelling an idle
// machine is a no-op, and repeated cancels stay no-ops.
func (m *SelectionMachine) Cancel() {
	if m.state == SelectionIdle {
		return
	}
	m.clearArtifacts()
	m.state = SelectionIdle
	m.points = nil
	m.preview = nil
}

// cornerPrompt names the next corner to place, counting from 1.
func (m *SelectionMachine) cornerPrompt() string {
	return fmt.Sprintf("Place corner %d of %d", len(m.points)+1, model.FarmBoundaryVertices)
}

// redrawPreview replaces the live preview shape: a line for 2 effective
// vertices, a polygon outline for 3 or more. The preview point, when
// present, is appended for rendering only.
func (m *SelectionMachine) redrawPreview() {
	if m.previewHandle != 0 {
		m.surface.RemoveLayer(m.previewHandle)
		m.previewHandle = 0
	}

	shape := m.points.Clone()
	if m.preview != nil {
		shape = append(shape, *m.preview)
	}
	switch {
	case len(shape) < 2:
		// A single corner is already visible as a point marker.
	case len(shape) == 2:
		m.previewHandle = m.surface.DrawPreviewLine(shape)
	default:
		m.previewHandle = m.surface.DrawPreviewPolygon(shape)
	}
}

func (m *SelectionMachine) clearArtifacts() {
	for _, h := range m.cornerHandles {
		m.surface.RemoveLayer(h)
	}
	m.cornerHandles = nil
	if m.previewHandle != 0 {
		m.surface.RemoveLayer(m.previewHandle)
		m.previewHandle = 0
	}
}

// PointerAdapter translates host input events into explicit machine calls,
// keeping the machine itself free of event-system dependencies. The host
// is responsible for converting pixels to geocoordinates before calling in.
type PointerAdapter struct {
	Machine *SelectionMachine
	// OnConfirmed receives the finalized polygon when the player confirms.
	OnConfirmed func(model.Polygon)
	// OnError receives rejected-transition errors, for UI feedback.
	OnError func(error)
}

// OnPointerDown commits a corner, starting a draft if none is active.
func (a *PointerAdapter) OnPointerDown(p model.GeoPoint) {
	var err error
	if a.Machine.State() == SelectionIdle {
		err = a.Machine.Begin(p)
	} else {
		err = a.Machine.AddPoint(p)
	}
	a.report(err)
}

// OnPointerMove updates the live preview while drafting.
func (a *PointerAdapter) OnPointerMove(p model.GeoPoint) {
	if a.Machine.State() != SelectionDrafting {
		return
	}
	a.report(a.Machine.UpdatePreview(p))
}

// OnKey handles the keyboard affordances: Escape cancels, Enter confirms.
func (a *PointerAdapter) OnKey(key string) {
	switch key {
	case "Escape":
		a.Machine.Cancel()
	case "Enter":
		poly, err := a.Machine.Confirm()
		if err != nil {
			a.report(err)
			return
		}
		if a.OnConfirmed != nil {
			a.OnConfirmed(poly)
		}
	}
}

func (a *PointerAdapter) report(err error) {
	if err != nil && a.OnError != nil {
		a.OnError(err)
	}
}
