// Package metrics exposes prometheus collectors for the simulation service.
// All collectors live on a dedicated registry so tests and embedders never
// collide with the global one. A nil *Sink is a valid no-op.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cheatbot1234/thrust-vector-forge/internal/model"
)

type Sink struct {
	registry *prometheus.Registry

	simulationsTotal      *prometheus.CounterVec
	simulationErrorsTotal *prometheus.CounterVec
	fallbacksTotal        prometheus.Counter
	trialsTotal           *prometheus.CounterVec
	simulationDuration    prometheus.Histogram

	lastThrust       prometheus.Gauge
	lastImpulse      prometheus.Gauge
	lastChamberTemp  prometheus.Gauge
	studyBestScore   *prometheus.GaugeVec
	studiesRunning   prometheus.Gauge
	studyTrialsTotal *prometheus.GaugeVec
}

// New builds a sink with every collector registered.
func New() *Sink {
	s := &Sink{
		registry: prometheus.NewRegistry(),
		simulationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forge_simulations_total",
				Help: "Completed steady-state simulations by performance model",
			},
			[]string{"model"},
		),
		simulationErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forge_simulation_errors_total",
				Help: "Failed simulations by error kind",
			},
			[]string{"kind"},
		),
		fallbacksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "forge_fallbacks_total",
			Help: "Advanced-model requests served by the core model instead",
		}),
		trialsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forge_trials_total",
				Help: "Finished optimization trials by study",
			},
			[]string{"study"},
		),
		simulationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "forge_simulation_duration_seconds",
			Help:    "Wall time of one simulation",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}),
		lastThrust:      prometheus.NewGauge(prometheus.GaugeOpts{Name: "forge_last_thrust_newtons"}),
		lastImpulse:     prometheus.NewGauge(prometheus.GaugeOpts{Name: "forge_last_specific_impulse_seconds"}),
		lastChamberTemp: prometheus.NewGauge(prometheus.GaugeOpts{Name: "forge_last_chamber_temperature_kelvin"}),
		studyBestScore: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "forge_study_best_score",
				Help: "Best scalarized score observed so far per study",
			},
			[]string{"study"},
		),
		studiesRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "forge_studies_running",
			Help: "Studies currently executing",
		}),
		studyTrialsTotal: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "forge_study_trials_completed",
				Help: "Trials completed so far per study",
			},
			[]string{"study"},
		),
	}
	s.registry.MustRegister(
		s.simulationsTotal, s.simulationErrorsTotal, s.fallbacksTotal,
		s.trialsTotal, s.simulationDuration,
		s.lastThrust, s.lastImpulse, s.lastChamberTemp,
		s.studyBestScore, s.studiesRunning, s.studyTrialsTotal,
	)
	return s
}

// Handler serves the sink's registry. A nil sink serves an empty registry.
func (s *Sink) Handler() http.Handler {
	if s == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// ObserveSimulation records one successful compute.
func (s *Sink) ObserveSimulation(modelName string, elapsed time.Duration, result model.PerformanceResult) {
	if s == nil {
		return
	}
	s.simulationsTotal.WithLabelValues(modelName).Inc()
	s.simulationDuration.Observe(elapsed.Seconds())
	s.lastThrust.Set(result.Thrust)
	s.lastImpulse.Set(result.SpecificImpulse)
	s.lastChamberTemp.Set(result.ChamberTemperature)
}

// SimulationError counts one failed compute by kind
// ("validation", "computation", "unavailable", "internal").
func (s *Sink) SimulationError(kind string) {
	if s == nil {
		return
	}
	s.simulationErrorsTotal.WithLabelValues(kind).Inc()
}

// Fallback counts one auto-mode request that fell back to the core model.
func (s *Sink) Fallback() {
	if s == nil {
		return
	}
	s.fallbacksTotal.Inc()
}

// TrialFinished records optimizer progress for one study.
func (s *Sink) TrialFinished(studyID string, completed int, bestScore float64) {
	if s == nil {
		return
	}
	s.trialsTotal.WithLabelValues(studyID).Inc()
	s.studyTrialsTotal.WithLabelValues(studyID).Set(float64(completed))
	s.studyBestScore.WithLabelValues(studyID).Set(bestScore)
}

// StudyStarted and StudyFinished bracket a running study.
func (s *Sink) StudyStarted() {
	if s == nil {
		return
	}
	s.studiesRunning.Inc()
}

func (s *Sink) StudyFinished() {
	if s == nil {
		return
	}
	s.studiesRunning.Dec()
}
