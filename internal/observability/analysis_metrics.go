package observability

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AnalysisCollector exposes metrics for the analysis pipeline.
type AnalysisCollector struct {
	gatherer prometheus.Gatherer

	AnalysisDuration prometheus.Histogram
	AnalysesTotal    prometheus.Counter
	ChatMessages     prometheus.Counter
	SnapshotAgeSecs  prometheus.Gauge
}

// NewAnalysisCollector registers pipeline metrics against the provided registerer.
func NewAnalysisCollector(reg prometheus.Registerer) (*AnalysisCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "analysis_duration_seconds",
		Help:    "Duration of full farm analyses, from confirmed boundary to recommendation bundle.",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	})
	duration, err := registerHistogram(reg, duration, "analysis_duration_seconds")
	if err != nil {
		return nil, err
	}

	analyses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "analyses_total",
		Help: "Cumulative number of farm analyses performed.",
	})
	analyses, err = registerCounter(reg, analyses, "analyses_total")
	if err != nil {
		return nil, err
	}

	chat := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chatbot_messages_total",
		Help: "Cumulative number of chatbot messages handled.",
	})
	chat, err = registerCounter(reg, chat, "chatbot_messages_total")
	if err != nil {
		return nil, err
	}

	snapshotAge := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "snapshot_age_seconds",
		Help: "Age of the most recent persisted game snapshot.",
	})
	snapshotAge, err = registerGauge(reg, snapshotAge, "snapshot_age_seconds")
	if err != nil {
		return nil, err
	}

	return &AnalysisCollector{
		gatherer:         gatherer,
		AnalysisDuration: duration,
		AnalysesTotal:    analyses,
		ChatMessages:     chat,
		SnapshotAgeSecs:  snapshotAge,
	}, nil
}

// Gatherer returns the Prometheus gatherer associated with the collector.
func (c *AnalysisCollector) Gatherer() prometheus.Gatherer {
	if c == nil {
		return nil
	}
	return c.gatherer
}

// ObserveAnalysis records one completed analysis and its duration.
func (c *AnalysisCollector) ObserveAnalysis(d time.Duration) {
	if c == nil {
		return
	}
	if c.AnalysisDuration != nil {
		c.AnalysisDuration.Observe(d.Seconds())
	}
	if c.AnalysesTotal != nil {
		c.AnalysesTotal.Inc()
	}
}

// IncChatMessages increments the chatbot message counter.
func (c *AnalysisCollector) IncChatMessages() {
	if c == nil || c.ChatMessages == nil {
		return
	}
	c.ChatMessages.Inc()
}

// SetSnapshotAge updates the snapshot age gauge.
func (c *AnalysisCollector) SetSnapshotAge(age time.Duration) {
	if c == nil || c.SnapshotAgeSecs == nil {
		return
	}
	if age < 0 {
		age = 0
	}
	c.SnapshotAgeSecs.Set(age.Seconds())
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerCounter(reg prometheus.Registerer, counter prometheus.Counter, name string) (prometheus.Counter, error) {
	if err := reg.Register(counter); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Counter); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return counter, nil
}
