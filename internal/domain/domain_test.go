package domain

import (
	"testing"
)

func stagesOf(names ...string) []StageBoundary {
	stages := make([]StageBoundary, len(names))
	for i, n := range names {
		stages[i] = StageBoundary{Name: n}
	}
	return stages
}

func TestBuildPipelineResult(t *testing.T) {
	def := PipelineDefinition{
		RunID:      RunIDFrom("run-1"),
		Namespace:  NewNamespaceID("payments"),
		ScenarioID: NewScenarioID("drill"),
		Stages:     stagesOf("ingest", "inject", "verify", "report"),
		Completed:  2,
	}

	res := BuildPipelineResult(def, RunStatusFailed)

	if res.Status != RunStatusFailed {
		t.Errorf("expected failed, got %s", res.Status)
	}
	if res.Progress != 50 {
		t.Errorf("expected progress 50, got %d", res.Progress)
	}
	if res.Metrics["ingest::ratio"] != 0.25 {
		t.Errorf("ingest ratio = %v", res.Metrics["ingest::ratio"])
	}
	if res.Metrics["inject::ratio"] != 0.5 {
		t.Errorf("inject ratio = %v", res.Metrics["inject::ratio"])
	}
	if res.Metrics["verify::ratio"] != 0 {
		t.Errorf("verify ratio = %v", res.Metrics["verify::ratio"])
	}
	if res.Metrics["pipeline::ratio"] != 0.5 {
		t.Errorf("pipeline ratio = %v", res.Metrics["pipeline::ratio"])
	}
}

func TestBuildPipelineResult_Empty(t *testing.T) {
	res := BuildPipelineResult(PipelineDefinition{}, RunStatusComplete)
	if res.Progress != 100 {
		t.Errorf("expected progress 100 for empty pipeline, got %d", res.Progress)
	}
}

func TestBuildTopology(t *testing.T) {
	topo := BuildTopology(stagesOf("a", "b", "c"))

	if len(topo.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(topo.Entries))
	}
	if topo.Entries[0] != (TopologyEntry{From: "a", To: "b", Weight: 1}) {
		t.Errorf("unexpected first entry: %+v", topo.Entries[0])
	}
	if topo.Entries[1] != (TopologyEntry{From: "b", To: "c", Weight: 2}) {
		t.Errorf("unexpected second entry: %+v", topo.Entries[1])
	}

	roots := topo.Roots()
	if len(roots) != 1 || roots[0] != "a" {
		t.Errorf("expected root a, got %v", roots)
	}

	if len(BuildTopology(stagesOf("solo")).Entries) != 0 {
		t.Error("single stage should have no entries")
	}
}

func TestScenario_Immutable(t *testing.T) {
	stages := stagesOf("a", "b")
	sc := NewScenario("ns", "id", "title", 1, stages)

	stages[0].Name = "mutated"
	if sc.Stages()[0].Name != "a" {
		t.Error("scenario should copy stages on construction")
	}

	got := sc.Stages()
	got[1].Name = "mutated"
	if sc.StageNames()[1] != "b" {
		t.Error("Stages() should return a copy")
	}
}

func TestParseRunID(t *testing.T) {
	id := NewRunID()
	parsed, err := ParseRunID(id.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != id {
		t.Errorf("expected %s, got %s", id, parsed)
	}

	if _, err := ParseRunID("not-a-uuid"); err == nil {
		t.Error("expected error for invalid uuid")
	}
}

func TestRunStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   RunStatus
		terminal bool
	}{
		{RunStatusArming, false},
		{RunStatusActive, false},
		{RunStatusVerified, false},
		{RunStatusFailed, true},
		{RunStatusComplete, true},
	}

	for _, tt := range tests {
		if got := tt.status.IsTerminal(); got != tt.terminal {
			t.Errorf("%s.IsTerminal() = %v, want %v", tt.status, got, tt.terminal)
		}
	}
}

func TestProgressPercent(t *testing.T) {
	tests := []struct {
		completed, total int
		want             int
	}{
		{0, 0, 100},
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{199, 200, 99},
		{999, 1000, 99},
		{1000, 1000, 100},
		{-1, 4, 0},
		{5, 4, 100},
	}

	for _, tt := range tests {
		if got := ProgressPercent(tt.completed, tt.total); got != tt.want {
			t.Errorf("ProgressPercent(%d, %d) = %d, want %d", tt.completed, tt.total, got, tt.want)
		}
	}
}

func TestBuildPipelineResult_NotCompleteBelow100(t *testing.T) {
	names := make([]string, 200)
	for i := range names {
		names[i] = "s" + string(rune('a'+i%26)) + string(rune('a'+i/26))
	}

	res := BuildPipelineResult(PipelineDefinition{Stages: stagesOf(names...), Completed: 199}, RunStatusFailed)
	if res.Progress != 99 {
		t.Errorf("expected progress 99, got %d", res.Progress)
	}
}
