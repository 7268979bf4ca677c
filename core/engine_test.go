package core

import (
	"context"
	"errors"
	"testing"

	"github.com/agrodata-labs/farmgame-simulator/model"
)

// stubAnalyzer returns a fixed recommendation pair.
type stubAnalyzer struct {
	fertilize bool
	irrigate  bool
}

func (a stubAnalyzer) Analyze(_ context.Context, polygon model.Polygon) (*model.FarmAnalysis, error) {
	return &model.FarmAnalysis{
		ID:           "test-analysis",
		Polygon:      polygon.Clone(),
		Centroid:     PolygonCentroid(polygon),
		AreaHectares: PolygonAreaHectares(polygon),
		Fertilizer:   model.FertilizerAdvice{NeedsFertilizer: a.fertilize},
		Irrigation:   model.IrrigationAdvice{NeedsIrrigation: a.irrigate},
	}, nil
}

func newTestEngine(t *testing.T, analyzer Analyzer) *Engine {
	t.Helper()
	return NewEngine(EngineConfig{
		Surface:  NewRecordingSurface(),
		Zone:     model.ZoneRegion{North: 41, South: 40, East: -73, West: -74},
		Analyzer: analyzer,
	})
}

func TestEngineEndToEndDrawAnalyzeScore(t *testing.T) {
	engine := newTestEngine(t, stubAnalyzer{fertilize: true})
	ctx := context.Background()

	// Midtown Manhattan block, roughly 300 ha.
	boundary := model.Polygon{
		{Latitude: 40.7590, Longitude: -73.9850},
		{Latitude: 40.7590, Longitude: -73.9650},
		{Latitude: 40.7750, Longitude: -73.9650},
		{Latitude: 40.7750, Longitude: -73.9850},
	}
	if err := engine.Selection.Begin(boundary[0]); err != nil {
		t.Fatalf("Begin: %v", err)
	}
	for _, p := range boundary[1:] {
		if err := engine.Selection.AddPoint(p); err != nil {
			t.Fatalf("AddPoint: %v", err)
		}
	}

	analysis, err := engine.ConfirmAndAnalyze(ctx)
	if err != nil {
		t.Fatalf("ConfirmAndAnalyze: %v", err)
	}
	if analysis.AreaHectares < 100 || analysis.AreaHectares > 1000 {
		t.Fatalf("AreaHectares = %v, want a few hundred hectares", analysis.AreaHectares)
	}

	// Player agrees with the recommendation: correct, and inside the zone.
	area, correct := engine.ScoreAndRecord(ctx, analysis, model.MissionFertilizer, true)
	if !correct {
		t.Fatal("agreeing with the recommendation must score correct")
	}
	if !area.IsSpecialZone {
		t.Fatalf("centroid %+v should be inside the special zone", analysis.Centroid)
	}
	if got := engine.Registry.Len(); got != 1 {
		t.Fatalf("registry Len = %d, want 1", got)
	}
}

func TestEngineScoringDisagreementIsIncorrect(t *testing.T) {
	engine := newTestEngine(t, stubAnalyzer{fertilize: true, irrigate: false})
	ctx := context.Background()

	poly := squareAround(10, 10, 0.01)
	analysis, err := engine.AnalyzeBoundary(ctx, poly)
	if err != nil {
		t.Fatalf("AnalyzeBoundary: %v", err)
	}

	// Recommendation says fertilize; player declines.
	area, correct := engine.ScoreAndRecord(ctx, analysis, model.MissionFertilizer, false)
	if correct || area.IsCorrectDecision {
		t.Fatal("declining a needed application must score incorrect")
	}

	// Irrigation mission scores against the irrigation recommendation.
	_, correct = engine.ScoreAndRecord(ctx, analysis, model.MissionIrrigation, false)
	if !correct {
		t.Fatal("declining unneeded irrigation must score correct")
	}
}

func TestEngineRejectsIncompleteBoundary(t *testing.T) {
	engine := newTestEngine(t, stubAnalyzer{})
	_, err := engine.AnalyzeBoundary(context.Background(), squareAround(1, 1, 0.01)[:3])
	if !errors.Is(err, ErrIncompleteBoundary) {
		t.Fatalf("AnalyzeBoundary with 3 corners = %v, want ErrIncompleteBoundary", err)
	}
}
