package core

import (
	"context"
	"errors"

	"github.com/agrodata-labs/farmgame-simulator/internal/logging"
	"github.com/agrodata-labs/farmgame-simulator/model"
)

// ErrIncompleteBoundary is returned when analysis is requested for a
// polygon that is not a completed 4-corner farm boundary.
var ErrIncompleteBoundary = errors.New("polygon is not a completed farm boundary")

// Analyzer produces the full analysis bundle for a confirmed boundary.
// The synthetic data services and advisors implement this; the engine
// only orchestrates.
type Analyzer interface {
	Analyze(ctx context.Context, polygon model.Polygon) (*model.FarmAnalysis, error)
}

// Engine is one game session: the selection machine, the completed-area
// registry, the zone classifier, and the analysis collaborator, wired
// together as an explicitly constructed, caller-owned instance. Nothing
// here is a global; the application wiring layer may hold a single shared
// Engine if it wants one.
type Engine struct {
	Selection  *SelectionMachine
	Registry   *AreaRegistry
	Classifier *ZoneClassifier

	analyzer Analyzer
	log      logging.Logger
}

// EngineConfig collects the engine's collaborators.
type EngineConfig struct {
	Surface    MapSurface
	Zone       model.ZoneRegion
	Analyzer   Analyzer
	Logger     logging.Logger
	Prompt     func(string)
}

// NewEngine wires a session. Logger defaults to a no-op.
func NewEngine(cfg EngineConfig) *Engine {
	log := cfg.Logger
	if log == nil {
		log = logging.Noop()
	}
	return &Engine{
		Selection:  NewSelectionMachine(cfg.Surface, cfg.Prompt),
		Registry:   NewAreaRegistry(cfg.Surface),
		Classifier: NewZoneClassifier(cfg.Zone),
		analyzer:   cfg.Analyzer,
		log:        log,
	}
}

// AnalyzeBoundary runs the analysis collaborator for a confirmed boundary.
func (e *Engine) AnalyzeBoundary(ctx context.Context, polygon model.Polygon) (*model.FarmAnalysis, error) {
	if !polygon.IsComplete() {
		return nil, ErrIncompleteBoundary
	}
	analysis, err := e.analyzer.Analyze(ctx, polygon)
	if err != nil {
		return nil, err
	}
	e.log.Info(ctx, "boundary analyzed",
		logging.String("analysis_id", analysis.ID),
		logging.Any("centroid", analysis.Centroid),
		logging.Any("area_hectares", analysis.AreaHectares),
	)
	return analysis, nil
}

// ScoreAndRecord scores the player's decision against the canned
// recommendation and records the outcome. The correctness determination
// completes strictly before RecordOutcome is called; the registry never
// infers it.
//
// For a fertilizer mission the player's choice is "apply fertilizer?";
// for an irrigation mission it is "irrigate?".
func (e *Engine) ScoreAndRecord(ctx context.Context, analysis *model.FarmAnalysis, mission model.MissionType, playerApplies bool) (*model.AnalyzedArea, bool) {
	var recommended bool
	switch mission {
	case model.MissionIrrigation:
		recommended = analysis.Irrigation.NeedsIrrigation
	default:
		recommended = analysis.Fertilizer.NeedsFertilizer
	}
	correct := playerApplies == recommended
	special := e.Classifier.Classify(analysis.Centroid)

	area := e.Registry.RecordOutcome(analysis.Polygon, correct, special, mission)
	e.log.Info(ctx, "outcome recorded",
		logging.String("key", area.Key),
		logging.String("mission", string(mission)),
		logging.Any("correct", correct),
		logging.Any("special_zone", special),
	)
	return area, correct
}

// ConfirmAndAnalyze finalizes the current selection and immediately
// analyzes it. The selection must be in the complete state.
func (e *Engine) ConfirmAndAnalyze(ctx context.Context) (*model.FarmAnalysis, error) {
	polygon, err := e.Selection.Confirm()
	if err != nil {
		return nil, err
	}
	return e.AnalyzeBoundary(ctx, polygon)
}
