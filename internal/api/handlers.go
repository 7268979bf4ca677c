package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/agrodata-labs/farmgame-simulator/advisor"
	"github.com/agrodata-labs/farmgame-simulator/chatbot"
	"github.com/agrodata-labs/farmgame-simulator/core"
	"github.com/agrodata-labs/farmgame-simulator/internal/logging"
	"github.com/agrodata-labs/farmgame-simulator/model"
	"github.com/agrodata-labs/farmgame-simulator/synth"
)

// maxBodyBytes caps request body reads.
const maxBodyBytes = 1 << 20

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"service":   "farmgame-simulator",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

type pointJSON struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type analyzeRequest struct {
	Polygon []pointJSON `json:"polygon"`
	Bounds  *struct {
		North float64 `json:"north"`
		South float64 `json:"south"`
		East  float64 `json:"east"`
		West  float64 `json:"west"`
	} `json:"bounds"`
	Mission string `json:"mission"`
}

// handleAnalyze runs the full analysis for a farm boundary given either as
// a 4-corner polygon or as a bounding box.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "unable to read request body")
		return
	}
	if err := validateAnalyzeBody(raw); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req analyzeRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed JSON body")
		return
	}

	var polygon model.Polygon
	switch {
	case len(req.Polygon) > 0:
		for _, p := range req.Polygon {
			polygon = append(polygon, model.GeoPoint{Latitude: p.Lat, Longitude: p.Lng})
		}
		if err := validatePolygon(polygon); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	default:
		bounds := model.ZoneRegion{
			North: req.Bounds.North,
			South: req.Bounds.South,
			East:  req.Bounds.East,
			West:  req.Bounds.West,
		}
		if err := validateBounds(bounds); err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		polygon = boundsPolygon(bounds)
	}

	start := time.Now()
	analysis, err := s.engine.AnalyzeBoundary(ctx, polygon)
	if err != nil {
		if errors.Is(err, core.ErrIncompleteBoundary) {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.log.Error(ctx, "analysis failed", logging.Err(err))
		s.writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}
	if s.pipeline != nil {
		s.pipeline.ObserveAnalysis(time.Since(start))
	}
	s.rememberAnalysis(analysis)

	s.writeJSON(w, http.StatusOK, analysis)
}

type decisionRequest struct {
	AnalysisID string `json:"analysis_id"`
	Mission    string `json:"mission"`
	Apply      bool   `json:"apply"`
}

type decisionResponse struct {
	Area        *model.AnalyzedArea `json:"area"`
	Correct     bool                `json:"correct"`
	SpecialZone bool                `json:"special_zone"`
	Statistics  core.Statistics     `json:"statistics"`
}

// handleDecision scores the player's decision for a previously returned
// analysis and records the outcome.
func (s *Server) handleDecision(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req decisionRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	mission := model.MissionType(req.Mission)
	switch mission {
	case model.MissionFertilizer, model.MissionIrrigation:
	case "":
		mission = model.MissionFertilizer
	default:
		s.writeError(w, http.StatusBadRequest, "unknown mission: "+req.Mission)
		return
	}

	analysis := s.takeAnalysis(req.AnalysisID)
	if analysis == nil {
		s.writeError(w, http.StatusNotFound, "unknown or already decided analysis_id")
		return
	}

	area, correct := s.engine.ScoreAndRecord(ctx, analysis, mission, req.Apply)
	s.writeJSON(w, http.StatusOK, decisionResponse{
		Area:        area,
		Correct:     correct,
		SpecialZone: area.IsSpecialZone,
		Statistics:  s.engine.Registry.Statistics(),
	})
}

// handleWeather returns a synthetic daily weather series for a location.
func (s *Server) handleWeather(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := s.latLonQuery(w, r)
	if !ok {
		return
	}
	days := intQuery(r, "days", 30)
	if days < 1 || days > 365 {
		s.writeError(w, http.StatusBadRequest, "days must be between 1 and 365")
		return
	}

	series := s.weather.DailySeries(lat, lon, days, time.Now().UTC())
	s.writeJSON(w, http.StatusOK, map[string]any{
		"location":     map[string]float64{"lat": lat, "lon": lon},
		"days":         days,
		"weather_data": series,
	})
}

// handleSatelliteImagery returns synthetic NDVI/EVI samples for a location.
func (s *Server) handleSatelliteImagery(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := s.latLonQuery(w, r)
	if !ok {
		return
	}
	days := intQuery(r, "days", 30)
	if days < 1 || days > 365 {
		s.writeError(w, http.StatusBadRequest, "days must be between 1 and 365")
		return
	}

	end := time.Now().UTC()
	start := end.AddDate(0, 0, -(days - 1))
	samples := s.satellite.Series(model.GeoPoint{Latitude: lat, Longitude: lon}, start, end)

	ndvi := make([]float64, 0, len(samples))
	for _, sample := range samples {
		ndvi = append(ndvi, sample.NDVI)
	}
	status, score := synth.VegetationHealth(ndvi)

	s.writeJSON(w, http.StatusOK, map[string]any{
		"location":          map[string]float64{"lat": lat, "lon": lon},
		"satellite_data":    samples,
		"vegetation_status": status,
		"vegetation_score":  score,
	})
}

type laiCalculateRequest struct {
	Satellite []model.SatelliteSample `json:"satellite_data"`
	Method    string                  `json:"method"`
}

// handleLAICalculate derives LAI estimates from supplied satellite samples.
func (s *Server) handleLAICalculate(w http.ResponseWriter, r *http.Request) {
	var req laiCalculateRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Satellite) == 0 {
		s.writeError(w, http.StatusBadRequest, "satellite_data is required")
		return
	}

	calc := s.lai
	if req.Method != "" {
		calc = &synth.LAICalculator{Method: synth.LAIMethod(req.Method)}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"lai_data": calc.Timeseries(req.Satellite),
	})
}

type recommendRequest struct {
	LAI     []model.LAISample  `json:"lai_data"`
	Weather []model.WeatherDay `json:"weather_data"`
	Soil    model.SoilEstimate `json:"soil_data"`
}

// handleFertilizerRecommend runs the fertilizer advisor over supplied data.
func (s *Server) handleFertilizerRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"recommendation": s.fert.Recommend(req.LAI, req.Weather, req.Soil),
	})
}

// handleIrrigationRecommend runs the water-stress advisor over supplied data.
func (s *Server) handleIrrigationRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Weather) == 0 {
		s.writeError(w, http.StatusBadRequest, "weather_data is required")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"irrigation": s.water.Recommend(req.Weather, req.Soil),
	})
}

type smartIrrigationRequest struct {
	Crop    string             `json:"crop_type"`
	Soil    string             `json:"soil_type"`
	System  string             `json:"irrigation_system"`
	Weather []model.WeatherDay `json:"weather_data"`
	LAI     []model.LAISample  `json:"lai_data"`
	SoilEst model.SoilEstimate `json:"soil_data"`
}

// handleSmartIrrigation runs the hydrological irrigation planner for one
// crop/soil/system combination. Omitted names fall back to the defaults
// the planner was tuned for.
func (s *Server) handleSmartIrrigation(w http.ResponseWriter, r *http.Request) {
	var req smartIrrigationRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Weather) == 0 {
		s.writeError(w, http.StatusBadRequest, "weather_data is required")
		return
	}
	if req.Crop == "" {
		req.Crop = "asparagus"
	}
	if req.Soil == "" {
		req.Soil = "loamy"
	}
	if req.System == "" {
		req.System = "drip"
	}

	report, err := s.smart.Analyze(advisor.SmartIrrigationInput{
		Crop:     req.Crop,
		Soil:     req.Soil,
		System:   req.System,
		Weather:  req.Weather,
		LAI:      req.LAI,
		Snapshot: req.SoilEst,
	})
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"smart_irrigation": report,
	})
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

// handleChat answers a free-text question, using the most recent analysis
// as context when one exists.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Message == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	var chatCtx *chatbot.AnalysisContext
	if a := s.lastAnalysis(); a != nil {
		chatCtx = analysisChatContext(a)
	}
	reply := s.assistant.Respond(req.ConversationID, req.Message, chatCtx)
	if s.pipeline != nil {
		s.pipeline.IncChatMessages()
	}
	s.writeJSON(w, http.StatusOK, reply)
}

// handleProgress returns the registry contents and aggregate statistics.
func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"areas":      s.engine.Registry.List(),
		"statistics": s.engine.Registry.Statistics(),
	})
}

// handleProgressReset clears the registry.
func (s *Server) handleProgressReset(w http.ResponseWriter, r *http.Request) {
	s.engine.Registry.ClearAll()
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":     "reset",
		"statistics": s.engine.Registry.Statistics(),
	})
}

// analysisChatContext flattens an analysis into the assistant's view.
func analysisChatContext(a *model.FarmAnalysis) *chatbot.AnalysisContext {
	ctx := &chatbot.AnalysisContext{
		AreaHectares:    a.AreaHectares,
		NeedsFertilizer: a.Fertilizer.NeedsFertilizer,
		FertilizerConf:  a.Fertilizer.Confidence,
		Reasoning:       a.Fertilizer.Reasoning,
		FertilizerType:  a.Fertilizer.FertilizerType,
		Timing:          a.Fertilizer.Timing,
		LAITrend:        "stable",
	}
	if n := len(a.LAI); n > 0 {
		ctx.CurrentLAI = a.LAI[n-1].LAI
		if n >= 3 {
			slope := (a.LAI[n-1].LAI - a.LAI[n-3].LAI) / 2
			switch {
			case slope > 0.1:
				ctx.LAITrend = "increasing"
			case slope < -0.1:
				ctx.LAITrend = "decreasing"
			}
		}
	}
	for _, d := range a.Weather {
		ctx.RecentRainfall += d.Rainfall
	}
	if len(a.Weather) > 7 {
		ctx.RecentRainfall = 0
		for _, d := range a.Weather[len(a.Weather)-7:] {
			ctx.RecentRainfall += d.Rainfall
		}
	}
	return ctx
}

func (s *Server) latLonQuery(w http.ResponseWriter, r *http.Request) (lat, lon float64, ok bool) {
	var err error
	lat, err = strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "lat query parameter is required")
		return 0, 0, false
	}
	lon, err = strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "lon query parameter is required")
		return 0, 0, false
	}
	pt := model.GeoPoint{Latitude: lat, Longitude: lon}
	if !pt.IsFinite() || !pt.InRange() {
		s.writeError(w, http.StatusBadRequest, "lat/lon out of range")
		return 0, 0, false
	}
	return lat, lon, true
}

func intQuery(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errors.New("malformed JSON body")
	}
	return nil
}
