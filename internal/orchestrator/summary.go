package orchestrator

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shaiso/Chaosflow/internal/domain"
)

// Summary — агрегаты потока событий.
type Summary struct {
	Attempts  int   `json:"attempts"`
	Failures  int   `json:"failures"`
	ElapsedMs int64 `json:"elapsed_ms"`
}

// SummarizeEvents сворачивает поток событий в счётчики.
//
// Attempts — число событий, Failures — stage-failed и run-failed,
// ElapsedMs — сумма разниц соседних меток времени после сортировки
// (события могли прийти не по порядку).
func SummarizeEvents(events []Event) Summary {
	summary := Summary{Attempts: len(events)}

	for _, ev := range events {
		if ev.Kind.IsFailure() {
			summary.Failures++
		}
	}

	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].At.Before(sorted[j].At)
	})

	for i := 1; i < len(sorted); i++ {
		summary.ElapsedMs += sorted[i].At.Sub(sorted[i-1].At).Milliseconds()
	}

	return summary
}

// CreateReportFromEvents восстанавливает отчёт по последнему событию потока.
//
// Возвращает ErrNoEvents для пустого потока и ErrNoSnapshot, если
// последнее событие не несёт отчёта (поток оборван до финального события).
func CreateReportFromEvents(events []Event) (*Report, error) {
	if len(events) == 0 {
		return nil, ErrNoEvents
	}

	last := events[len(events)-1]
	if last.Snapshot == nil {
		return nil, fmt.Errorf("%w: last event %s", ErrNoSnapshot, last.Kind)
	}

	report := *last.Snapshot
	if report.Status == "" {
		report.Status = last.Status
	}
	if report.Status != domain.RunStatusComplete && report.Status != domain.RunStatusFailed {
		return nil, errors.Join(ErrNoSnapshot, fmt.Errorf("snapshot status %q is not terminal", report.Status))
	}
	return &report, nil
}
