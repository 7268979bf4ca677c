// Package api exposes the game over HTTP: analysis, standalone data
// endpoints, the decision/scoring flow, progress, chat, and a websocket
// progress feed.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/mux"

	"github.com/agrodata-labs/farmgame-simulator/advisor"
	"github.com/agrodata-labs/farmgame-simulator/chatbot"
	"github.com/agrodata-labs/farmgame-simulator/core"
	"github.com/agrodata-labs/farmgame-simulator/internal/logging"
	"github.com/agrodata-labs/farmgame-simulator/internal/observability"
	"github.com/agrodata-labs/farmgame-simulator/model"
	"github.com/agrodata-labs/farmgame-simulator/synth"
)

// maxPendingAnalyses bounds the in-memory analyses awaiting a decision.
const maxPendingAnalyses = 128

// Server routes the game HTTP API.
type Server struct {
	log       logging.Logger
	engine    *core.Engine
	assistant *chatbot.Assistant

	weather   *synth.WeatherGenerator
	satellite *synth.SatelliteGenerator
	lai       *synth.LAICalculator
	fert      *advisor.FertilizerAdvisor
	water     *advisor.WaterStressAdvisor
	smart     *advisor.SmartIrrigationAdvisor

	collector *observability.APICollector
	pipeline  *observability.AnalysisCollector
	hub       *progressHub
	router    *mux.Router

	mu       sync.Mutex
	pending  map[string]*model.FarmAnalysis
	order    []string
	lastSeen *model.FarmAnalysis
}

// Config collects the server's collaborators. Engine and Logger are
// required; nil metrics collectors disable their recording.
type Config struct {
	Engine    *core.Engine
	Logger    logging.Logger
	Assistant *chatbot.Assistant
	Collector *observability.APICollector
	Pipeline  *observability.AnalysisCollector
	// Seed drives the standalone data endpoints' generators.
	Seed int64
}

// NewServer wires routes and subscribes the progress feed to the registry.
func NewServer(cfg Config) *Server {
	log := cfg.Logger
	if log == nil {
		log = logging.Noop()
	}
	assistant := cfg.Assistant
	if assistant == nil {
		assistant = chatbot.NewAssistant()
	}

	s := &Server{
		log:       log,
		engine:    cfg.Engine,
		assistant: assistant,
		weather:   synth.NewWeatherGenerator(cfg.Seed + 101),
		satellite: synth.NewSatelliteGenerator(cfg.Seed + 102),
		lai:       synth.NewLAICalculator(),
		fert:      advisor.NewFertilizerAdvisor(),
		water:     advisor.NewWaterStressAdvisor(),
		smart:     advisor.NewSmartIrrigationAdvisor(),
		collector: cfg.Collector,
		pipeline:  cfg.Pipeline,
		pending:   make(map[string]*model.FarmAnalysis),
	}
	s.hub = newProgressHub(log, func(delta int) {
		if s.collector != nil {
			s.collector.AddProgressSubscribers(delta)
		}
	})

	s.engine.Registry.Subscribe(func(evt core.AreaEvent) {
		s.publishProgress(evt)
	})

	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	if s.collector != nil {
		r.Use(s.collector.Middleware())
		r.Handle("/metrics", s.collector.Handler()).Methods(http.MethodGet)
	}
	r.Use(s.requestLogMiddleware)

	r.HandleFunc("/api/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/analyze", s.handleAnalyze).Methods(http.MethodPost)
	r.HandleFunc("/api/decision", s.handleDecision).Methods(http.MethodPost)
	r.HandleFunc("/api/weather", s.handleWeather).Methods(http.MethodGet)
	r.HandleFunc("/api/satellite/imagery", s.handleSatelliteImagery).Methods(http.MethodGet)
	r.HandleFunc("/api/lai/calculate", s.handleLAICalculate).Methods(http.MethodPost)
	r.HandleFunc("/api/fertilizer/recommend", s.handleFertilizerRecommend).Methods(http.MethodPost)
	r.HandleFunc("/api/irrigation/recommend", s.handleIrrigationRecommend).Methods(http.MethodPost)
	r.HandleFunc("/api/smart-irrigation/analyze", s.handleSmartIrrigation).Methods(http.MethodPost)
	r.HandleFunc("/api/chat", s.handleChat).Methods(http.MethodPost)
	r.HandleFunc("/api/progress", s.handleProgress).Methods(http.MethodGet)
	r.HandleFunc("/api/progress/reset", s.handleProgressReset).Methods(http.MethodPost)
	r.HandleFunc("/ws/progress", s.hub.serve).Methods(http.MethodGet)
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close disconnects websocket clients.
func (s *Server) Close() {
	s.hub.closeAll()
}

// publishProgress forwards one registry change to websocket clients and
// refreshes the game gauges.
func (s *Server) publishProgress(evt core.AreaEvent) {
	stats := s.engine.Registry.Statistics()
	if s.collector != nil {
		s.collector.SetGameCounts(stats.Total, stats.SpecialZoneTotal, stats.AccuracyPercent)
	}

	out := progressEvent{Statistics: stats, Area: evt.Area}
	switch evt.Type {
	case core.AreaRecorded:
		out.Type = "area_recorded"
	case core.AreaUpdated:
		out.Type = "area_updated"
	case core.RegistryCleared:
		out.Type = "registry_cleared"
	}
	s.hub.broadcast(out)
}

// rememberAnalysis parks an analysis until the player's decision arrives,
// evicting the oldest entry past the cap.
func (s *Server) rememberAnalysis(a *model.FarmAnalysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[a.ID] = a
	s.order = append(s.order, a.ID)
	s.lastSeen = a
	for len(s.order) > maxPendingAnalyses {
		delete(s.pending, s.order[0])
		s.order = s.order[1:]
	}
}

// takeAnalysis removes and returns a pending analysis.
func (s *Server) takeAnalysis(id string) *model.FarmAnalysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	a := s.pending[id]
	if a != nil {
		delete(s.pending, id)
		for i, key := range s.order {
			if key == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
	return a
}

// lastAnalysis returns the most recent analysis, for chat context.
func (s *Server) lastAnalysis() *model.FarmAnalysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Server) requestLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx, _ := logging.EnsureRequestID(r.Context())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn(context.Background(), "encode response failed", logging.Err(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, code int, msg string) {
	s.writeJSON(w, code, map[string]string{"error": msg})
}
