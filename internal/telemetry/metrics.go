package telemetry

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Имена событий, на которые реагирует Metrics. Совпадают с
// orchestrator.EventKind; telemetry не импортирует orchestrator.
const (
	kindRunStarted    = "run-started"
	kindStageStarted  = "stage-started"
	kindStageComplete = "stage-complete"
	kindStageFailed   = "stage-failed"
	kindRunComplete   = "run-complete"
	kindRunFailed     = "run-failed"
)

// Metrics — Prometheus метрики запусков сценариев.
type Metrics struct {
	runs          *prometheus.CounterVec
	stages        *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	activeRuns    prometheus.Gauge

	mu      sync.Mutex
	started map[string]time.Time // "<run_id>/<stage>" → время старта
}

// NewMetrics создаёт и регистрирует метрики в reg.
// nil reg — prometheus.DefaultRegisterer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chaosflow",
			Name:      "runs_total",
			Help:      "Finished scenario runs by status.",
		}, []string{"scenario", "status"}),
		stages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chaosflow",
			Name:      "stages_total",
			Help:      "Finished stages by status.",
		}, []string{"stage", "status"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "chaosflow",
			Name:      "stage_duration_seconds",
			Help:      "Stage execution time.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"stage"}),
		activeRuns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "chaosflow",
			Name:      "active_runs",
			Help:      "Runs currently executing.",
		}),
		started: make(map[string]time.Time),
	}

	reg.MustRegister(m.runs, m.stages, m.stageDuration, m.activeRuns)
	return m
}

// RunStarted отмечает начало run.
func (m *Metrics) RunStarted() {
	m.activeRuns.Inc()
}

// StageStarted запоминает время старта stage.
func (m *Metrics) StageStarted(runID, stage string, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started[runID+"/"+stage] = at
}

// StageFinished учитывает завершение stage со статусом status.
func (m *Metrics) StageFinished(runID, stage, status string, at time.Time) {
	m.stages.WithLabelValues(stage, status).Inc()

	key := runID + "/" + stage
	m.mu.Lock()
	startedAt, ok := m.started[key]
	delete(m.started, key)
	m.mu.Unlock()

	if ok {
		m.stageDuration.WithLabelValues(stage).Observe(at.Sub(startedAt).Seconds())
	}
}

// RunFinished учитывает завершение run.
func (m *Metrics) RunFinished(scenario, status string) {
	m.activeRuns.Dec()
	m.runs.WithLabelValues(scenario, status).Inc()
}

// Record обновляет метрики по событию; kind — строковое имя типа события.
func (m *Metrics) Record(kind, runID, scenario, stage string, at time.Time) {
	switch kind {
	case kindRunStarted:
		m.RunStarted()
	case kindStageStarted:
		m.StageStarted(runID, stage, at)
	case kindStageComplete:
		m.StageFinished(runID, stage, "complete", at)
	case kindStageFailed:
		m.StageFinished(runID, stage, "failed", at)
	case kindRunComplete:
		m.RunFinished(scenario, "complete")
	case kindRunFailed:
		m.RunFinished(scenario, "failed")
	}
}
