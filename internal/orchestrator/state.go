package orchestrator

import (
	"slices"
	"time"

	"github.com/shaiso/Chaosflow/internal/domain"
)

// StageTrace — запись о попытке выполнения stage.
type StageTrace struct {
	Stage     string           `json:"stage"`
	StartedAt time.Time        `json:"started_at"`
	EndedAt   *time.Time       `json:"ended_at,omitempty"`
	Status    domain.RunStatus `json:"status"`
	Error     string           `json:"error,omitempty"`
}

// StepRecord — выход успешно завершённого stage.
type StepRecord struct {
	Output any       `json:"output"`
	At     time.Time `json:"at"`
}

// RunState — состояние одного run.
//
// Изменяется только своим Orchestrator'ом. Trace растёт только append'ом,
// кроме перевода записи активного stage в failed.
type RunState struct {
	RunID      domain.RunID       `json:"run_id"`
	Namespace  domain.NamespaceID `json:"namespace"`
	ScenarioID domain.ScenarioID  `json:"scenario_id"`
	Status     domain.RunStatus   `json:"status"`
	Progress   int                `json:"progress"`
	StartedAt  time.Time          `json:"started_at"`
	UpdatedAt  time.Time          `json:"updated_at"`
	Trace      []StageTrace       `json:"trace"`
}

// newRunState создаёт состояние в статусе arming.
func newRunState(runID domain.RunID, ns domain.NamespaceID, scenarioID domain.ScenarioID, now time.Time) *RunState {
	return &RunState{
		RunID:      runID,
		Namespace:  ns,
		ScenarioID: scenarioID,
		Status:     domain.RunStatusArming,
		StartedAt:  now,
		UpdatedAt:  now,
		Trace:      make([]StageTrace, 0),
	}
}

// startStage добавляет активную запись и возвращает её индекс.
func (s *RunState) startStage(stage string, now time.Time) int {
	s.Status = domain.RunStatusActive
	s.UpdatedAt = now
	s.Trace = append(s.Trace, StageTrace{
		Stage:     stage,
		StartedAt: now,
		Status:    domain.RunStatusActive,
	})
	return len(s.Trace) - 1
}

// verifyStage добавляет запись verified для stage, начатого записью idx.
func (s *RunState) verifyStage(idx int, progress int, now time.Time) {
	ended := now
	s.Status = domain.RunStatusVerified
	s.UpdatedAt = now
	s.Progress = max(s.Progress, progress)
	s.Trace = append(s.Trace, StageTrace{
		Stage:     s.Trace[idx].Stage,
		StartedAt: s.Trace[idx].StartedAt,
		EndedAt:   &ended,
		Status:    domain.RunStatusVerified,
	})
}

// failStage переводит запись idx в failed.
func (s *RunState) failStage(idx int, reason string, now time.Time) {
	ended := now
	s.Status = domain.RunStatusFailed
	s.UpdatedAt = now
	s.Trace[idx].EndedAt = &ended
	s.Trace[idx].Status = domain.RunStatusFailed
	s.Trace[idx].Error = reason
}

// Snapshot возвращает копию состояния.
func (s *RunState) Snapshot() RunState {
	cp := *s
	cp.Trace = slices.Clone(s.Trace)
	return cp
}
