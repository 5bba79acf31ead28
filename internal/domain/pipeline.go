package domain

import (
	"math"
	"strings"
)

// MetricRatioSuffix — суффикс ключей метрик доли прохождения.
const MetricRatioSuffix = "::ratio"

// PipelineDefinition — описание запуска, по которому строится снимок.
type PipelineDefinition struct {
	RunID      RunID
	Namespace  NamespaceID
	ScenarioID ScenarioID
	Stages     []StageBoundary

	// Completed — количество успешно завершённых stages (с начала сценария).
	Completed int
}

// PipelineResult — снимок уровня сценария.
type PipelineResult struct {
	RunID      RunID              `json:"run_id"`
	Namespace  NamespaceID        `json:"namespace"`
	ScenarioID ScenarioID         `json:"scenario_id"`
	Status     RunStatus          `json:"status"`
	Progress   int                `json:"progress"`
	Metrics    map[string]float64 `json:"metrics"`
}

// BuildPipelineResult строит снимок сценария для заданного статуса.
//
// Метрики:
//   - "<stage>::ratio" — доля сценария, пройденная после этого stage
//     (0 для ещё не завершённых stages)
//   - "pipeline::ratio" — общая доля завершённых stages
func BuildPipelineResult(def PipelineDefinition, status RunStatus) PipelineResult {
	total := len(def.Stages)
	completed := min(max(def.Completed, 0), total)

	metrics := make(map[string]float64, total+1)
	for i, st := range def.Stages {
		key := MetricKey(st.Name)
		if i < completed {
			metrics[key] = float64(i+1) / float64(total)
		} else {
			metrics[key] = 0
		}
	}

	progress := ProgressPercent(completed, total)
	if total > 0 {
		metrics[MetricKey("pipeline")] = float64(completed) / float64(total)
	} else {
		metrics[MetricKey("pipeline")] = 1
	}

	return PipelineResult{
		RunID:      def.RunID,
		Namespace:  def.Namespace,
		ScenarioID: def.ScenarioID,
		Status:     status,
		Progress:   progress,
		Metrics:    metrics,
	}
}

// ProgressPercent возвращает округлённый процент завершённых stages.
// 100 только когда завершены все stages (или их нет): иначе не больше 99.
func ProgressPercent(completed, total int) int {
	if total <= 0 || completed >= total {
		return 100
	}
	if completed <= 0 {
		return 0
	}
	return min(int(math.Round(100*float64(completed)/float64(total))), 99)
}

// MetricKey возвращает ключ метрики доли для имени.
func MetricKey(name string) string {
	return name + MetricRatioSuffix
}

// TrimMetricKey возвращает имя из ключа метрики и признак успеха.
func TrimMetricKey(key string) (string, bool) {
	return strings.CutSuffix(key, MetricRatioSuffix)
}
