package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// APICollector bundles Prometheus metrics for the HTTP API surface and the
// game registry, with helpers to wire them into mux routers.
type APICollector struct {
	gatherer prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec

	AnalyzedAreas      prometheus.Gauge
	SpecialZoneAreas   prometheus.Gauge
	DecisionAccuracy   prometheus.Gauge
	ProgressSubscriber prometheus.Gauge
}

// NewAPICollector registers the API Prometheus metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewAPICollector(reg prometheus.Registerer) (*APICollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "api_requests_total",
		Help: "Total number of handled HTTP requests, labeled by route, method, and status code.",
	}, []string{"route", "method", "code"})
	requests, err := registerCounterVec(reg, requests, "api_requests_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "api_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"route", "method"})
	durations, err = registerHistogramVec(reg, durations, "api_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	analyzed, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "game_analyzed_areas",
		Help: "Current number of recorded analyzed areas.",
	}), "game_analyzed_areas")
	if err != nil {
		return nil, err
	}
	special, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "game_special_zone_areas",
		Help: "Current number of recorded areas inside the special zone.",
	}), "game_special_zone_areas")
	if err != nil {
		return nil, err
	}
	accuracy, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "game_decision_accuracy_percent",
		Help: "Share of recorded decisions that matched the recommendation.",
	}), "game_decision_accuracy_percent")
	if err != nil {
		return nil, err
	}
	subscribers, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "progress_subscribers",
		Help: "Connected progress websocket clients.",
	}), "progress_subscribers")
	if err != nil {
		return nil, err
	}

	return &APICollector{
		gatherer:           gatherer,
		HTTPRequests:       requests,
		HTTPDurations:      durations,
		AnalyzedAreas:      analyzed,
		SpecialZoneAreas:   special,
		DecisionAccuracy:   accuracy,
		ProgressSubscriber: subscribers,
	}, nil
}

// Middleware records request counts and durations for every routed request.
func (c *APICollector) Middleware() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, code: http.StatusOK}
			next.ServeHTTP(sw, r)

			if c == nil {
				return
			}
			route := routeTemplate(r)
			if c.HTTPRequests != nil {
				c.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(sw.code)).Inc()
			}
			if c.HTTPDurations != nil {
				c.HTTPDurations.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
			}
		})
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *APICollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetGameCounts satisfies the registry's metrics recorder hook so gauge
// values follow the registry's mutators.
func (c *APICollector) SetGameCounts(total, specialZone int, accuracyPercent float64) {
	if c == nil {
		return
	}
	if c.AnalyzedAreas != nil {
		c.AnalyzedAreas.Set(float64(total))
	}
	if c.SpecialZoneAreas != nil {
		c.SpecialZoneAreas.Set(float64(specialZone))
	}
	if c.DecisionAccuracy != nil {
		c.DecisionAccuracy.Set(accuracyPercent)
	}
}

// AddProgressSubscribers tracks websocket client churn; delta may be negative.
func (c *APICollector) AddProgressSubscribers(delta int) {
	if c == nil || c.ProgressSubscriber == nil {
		return
	}
	c.ProgressSubscriber.Add(float64(delta))
}

// routeTemplate resolves the mux route template, falling back to the raw
// path so unrouted requests still get a label.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil && tpl != "" {
			return tpl
		}
	}
	if r.URL != nil && r.URL.Path != "" {
		return r.URL.Path
	}
	return "unknown"
}

type statusWriter struct {
	http.ResponseWriter
	code int
}

func (w *statusWriter) WriteHeader(code int) {
	w.code = code
	w.ResponseWriter.WriteHeader(code)
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
