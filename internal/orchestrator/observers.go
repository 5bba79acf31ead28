package orchestrator

import (
	"github.com/shaiso/Chaosflow/internal/telemetry"
)

// MetricsObserver возвращает Observer, обновляющий Prometheus метрики.
func MetricsObserver(m *telemetry.Metrics, scenario string) Observer {
	return func(ev Event) {
		m.Record(string(ev.Kind), ev.RunID.String(), scenario, ev.Stage, ev.At)
	}
}

// Collect возвращает Observer, добавляющий события в *events.
func Collect(events *[]Event) Observer {
	return func(ev Event) {
		*events = append(*events, ev)
	}
}
