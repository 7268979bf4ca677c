// Package analysis composes the synthetic data generators and the
// advisors into the single analysis collaborator the game engine calls
// when a farm boundary is confirmed.
package analysis

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/agrodata-labs/farmgame-simulator/advisor"
	"github.com/agrodata-labs/farmgame-simulator/core"
	"github.com/agrodata-labs/farmgame-simulator/internal/logging"
	"github.com/agrodata-labs/farmgame-simulator/model"
	"github.com/agrodata-labs/farmgame-simulator/synth"
)

// DefaultAnalysisDays is the observation window length.
const DefaultAnalysisDays = 30

// Service implements core.Analyzer. It owns the generator seeds, so one
// Service produces a reproducible stream of analyses.
type Service struct {
	weather   *synth.WeatherGenerator
	satellite *synth.SatelliteGenerator
	lai       *synth.LAICalculator
	soil      *synth.SoilEstimator
	fert      *advisor.FertilizerAdvisor
	water     *advisor.WaterStressAdvisor

	log logging.Logger

	// Days is the observation window; defaults to DefaultAnalysisDays.
	Days int
	// Now is the end of the observation window; overridable in tests.
	Now func() time.Time
}

// Config carries optional service settings.
type Config struct {
	Seed   int64
	Days   int
	Logger logging.Logger
	// ImagingTLE1/2 select the simulated acquisition orbit; empty lines
	// disable overpass gating and every day is a candidate.
	ImagingTLE1 string
	ImagingTLE2 string
}

// NewService builds a fully wired analysis service.
func NewService(cfg Config) *Service {
	log := cfg.Logger
	if log == nil {
		log = logging.Noop()
	}
	days := cfg.Days
	if days <= 0 {
		days = DefaultAnalysisDays
	}

	sat := synth.NewSatelliteGenerator(cfg.Seed + 1)
	if cfg.ImagingTLE1 != "" && cfg.ImagingTLE2 != "" {
		sat.Overpasses = synth.NewOverpassPredictor(cfg.ImagingTLE1, cfg.ImagingTLE2)
	}

	return &Service{
		weather:   synth.NewWeatherGenerator(cfg.Seed),
		satellite: sat,
		lai:       synth.NewLAICalculator(),
		soil:      synth.NewSoilEstimator(cfg.Seed + 2),
		fert:      advisor.NewFertilizerAdvisor(),
		water:     advisor.NewWaterStressAdvisor(),
		log:       log,
		Days:      days,
		Now:       time.Now,
	}
}

// Analyze produces the full analysis bundle for a confirmed boundary.
func (s *Service) Analyze(ctx context.Context, polygon model.Polygon) (*model.FarmAnalysis, error) {
	if !polygon.IsComplete() {
		return nil, core.ErrIncompleteBoundary
	}

	centroid := core.PolygonCentroid(polygon)
	end := s.Now().UTC()
	start := end.AddDate(0, 0, -(s.Days - 1))

	weather := s.weather.DailySeries(centroid.Latitude, centroid.Longitude, s.Days, end)
	satellite := s.satellite.Series(centroid, start, end)
	lai := s.lai.Timeseries(satellite)
	soil := s.soil.Estimate(weather, satellite)

	a := &model.FarmAnalysis{
		ID:           uuid.NewString(),
		Polygon:      polygon.Clone(),
		Centroid:     centroid,
		AreaHectares: core.PolygonAreaHectares(polygon),
		AnalyzedAt:   end,
		Weather:      weather,
		Satellite:    satellite,
		LAI:          lai,
		Soil:         soil,
		Fertilizer:   s.fert.Recommend(lai, weather, soil),
		Irrigation:   s.water.Recommend(weather, soil),
	}

	s.log.Debug(ctx, "analysis generated",
		logging.String("analysis_id", a.ID),
		logging.Int("satellite_samples", len(satellite)),
		logging.Int("weather_days", len(weather)),
	)
	return a, nil
}
