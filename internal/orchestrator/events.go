package orchestrator

import (
	"time"

	"github.com/shaiso/Chaosflow/internal/domain"
)

// EventKind — тип события run.
type EventKind string

// Типы событий.
const (
	EventRunStarted    EventKind = "run-started"
	EventStageStarted  EventKind = "stage-started"
	EventStageComplete EventKind = "stage-complete"
	EventStageFailed   EventKind = "stage-failed"
	EventRunComplete   EventKind = "run-complete"
	EventRunFailed     EventKind = "run-failed"
)

// IsTerminal возвращает true для run-complete и run-failed.
func (k EventKind) IsTerminal() bool {
	return k == EventRunComplete || k == EventRunFailed
}

// IsFailure возвращает true для stage-failed и run-failed.
func (k EventKind) IsFailure() bool {
	return k == EventStageFailed || k == EventRunFailed
}

// Event — событие run. События не изменяются после создания.
//
// Payload зависит от типа:
//   - stage-started  — вход stage
//   - stage-complete — выход stage
//   - stage-failed   — текст ошибки
//
// Status и Snapshot заполнены только у финальных событий.
type Event struct {
	Kind     EventKind        `json:"kind"`
	RunID    domain.RunID     `json:"run_id"`
	At       time.Time        `json:"at"`
	Stage    string           `json:"stage,omitempty"`
	Payload  any              `json:"payload,omitempty"`
	Status   domain.RunStatus `json:"status,omitempty"`
	Snapshot *Report          `json:"snapshot,omitempty"`
}

// Observer получает каждое событие сразу после его создания.
type Observer func(Event)
