package observability

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/guidepost/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records tour activity.
type Metrics struct {
	toursStarted  prometheus.Counter
	toursEnded    *prometheus.CounterVec
	toursActive   prometheus.Gauge
	stepEnters    *prometheus.CounterVec
	highlights    *prometheus.CounterVec
	actions       *prometheus.CounterVec
	autoAdvances  *prometheus.CounterVec
	stepDurations *prometheus.HistogramVec

	mu      sync.Mutex
	entered map[string]time.Time // run id -> current step entry time
}

// NewMetrics creates the collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		toursStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "guidepost_tours_started_total",
			Help: "Total number of tours started",
		}),
		toursEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guidepost_tours_ended_total",
			Help: "Total number of tours ended, by reason",
		}, []string{"reason"}),
		toursActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "guidepost_tours_active",
			Help: "Number of tours currently running or paused",
		}),
		stepEnters: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guidepost_step_enters_total",
			Help: "Total number of step entries",
		}, []string{"step_id"}),
		highlights: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guidepost_highlights_total",
			Help: "Total number of highlights attached",
		}, []string{"step_id"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guidepost_actions_total",
			Help: "Automated secondary actions, by outcome",
		}, []string{"step_id", "outcome"}),
		autoAdvances: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guidepost_auto_advances_total",
			Help: "Total number of autopilot advances",
		}, []string{"step_id"}),
		stepDurations: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "guidepost_step_duration_seconds",
			Help:    "Time spent on a step, from entry to exit",
			Buckets: []float64{0.5, 1, 2, 4, 8, 15, 30, 60, 120},
		}, []string{"step_id"}),
		entered: make(map[string]time.Time),
	}
	reg.MustRegister(
		m.toursStarted, m.toursEnded, m.toursActive, m.stepEnters,
		m.highlights, m.actions, m.autoAdvances, m.stepDurations,
	)
	return m
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTourStart: func(_ context.Context, e *domain.TourEvent) {
			m.toursStarted.Inc()
			m.toursActive.Inc()
		},
		OnTourEnd: func(_ context.Context, e *domain.TourEvent) {
			m.toursEnded.WithLabelValues(e.Reason).Inc()
			m.toursActive.Dec()
		},
		OnStepEnter: func(_ context.Context, e *domain.StepEvent) {
			m.stepEnters.WithLabelValues(e.StepID).Inc()
			m.mu.Lock()
			m.entered[e.RunID] = e.Timestamp
			m.mu.Unlock()
		},
		OnStepLeave: func(_ context.Context, e *domain.StepEvent) {
			m.mu.Lock()
			at, ok := m.entered[e.RunID]
			delete(m.entered, e.RunID)
			m.mu.Unlock()
			if ok {
				m.stepDurations.WithLabelValues(e.StepID).Observe(e.Timestamp.Sub(at).Seconds())
			}
		},
		OnHighlight: func(_ context.Context, e *domain.StepEvent) {
			m.highlights.WithLabelValues(e.StepID).Inc()
		},
		OnActionFired: func(_ context.Context, e *domain.StepEvent) {
			m.actions.WithLabelValues(e.StepID, "fired").Inc()
		},
		OnActionSkipped: func(_ context.Context, e *domain.StepEvent) {
			m.actions.WithLabelValues(e.StepID, "skipped").Inc()
		},
		OnAutoAdvance: func(_ context.Context, e *domain.StepEvent) {
			m.autoAdvances.WithLabelValues(e.StepID).Inc()
		},
	}
}

// ToursStarted exposes the started counter.
func (m *Metrics) ToursStarted() prometheus.Counter { return m.toursStarted }

// ToursActive exposes the active gauge.
func (m *Metrics) ToursActive() prometheus.Gauge { return m.toursActive }

// StepDurations exposes the step duration histogram.
func (m *Metrics) StepDurations() *prometheus.HistogramVec { return m.stepDurations }
