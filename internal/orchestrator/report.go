package orchestrator

import (
	"maps"
	"slices"
	"time"

	"github.com/shaiso/Chaosflow/internal/domain"
)

// Report — итог run.
//
// Steps содержит только stages, успешно вернувшие выход; упавший stage
// есть в Trace, но не в Steps.
type Report struct {
	RunID      domain.RunID          `json:"run_id"`
	Namespace  domain.NamespaceID    `json:"namespace"`
	ScenarioID domain.ScenarioID     `json:"scenario_id"`
	Status     domain.RunStatus      `json:"status"`
	Progress   int                   `json:"progress"`
	Snapshot   domain.PipelineResult `json:"snapshot"`
	Trace      []StageTrace          `json:"trace"`
	Steps      map[string]StepRecord `json:"steps"`
	FinalAt    time.Time             `json:"final_at"`
}

// FailedStage возвращает имя упавшего stage и причину.
func (r *Report) FailedStage() (stage, reason string, ok bool) {
	for i := len(r.Trace) - 1; i >= 0; i-- {
		if r.Trace[i].Status == domain.RunStatusFailed {
			return r.Trace[i].Stage, r.Trace[i].Error, true
		}
	}
	return "", "", false
}

// BuildReport строит отчёт run. Чистая функция: trace и steps копируются.
func BuildReport(
	state *RunState,
	stages []domain.StageBoundary,
	steps map[string]StepRecord,
	trace []StageTrace,
	status domain.RunStatus,
) *Report {
	snapshot := domain.BuildPipelineResult(domain.PipelineDefinition{
		RunID:      state.RunID,
		Namespace:  state.Namespace,
		ScenarioID: state.ScenarioID,
		Stages:     stages,
		Completed:  len(steps),
	}, status)

	copiedSteps := maps.Clone(steps)
	if copiedSteps == nil {
		copiedSteps = make(map[string]StepRecord)
	}
	copiedTrace := slices.Clone(trace)
	if copiedTrace == nil {
		copiedTrace = make([]StageTrace, 0)
	}

	return &Report{
		RunID:      state.RunID,
		Namespace:  state.Namespace,
		ScenarioID: state.ScenarioID,
		Status:     status,
		Progress:   state.Progress,
		Snapshot:   snapshot,
		Trace:      copiedTrace,
		Steps:      copiedSteps,
		FinalAt:    state.UpdatedAt,
	}
}
