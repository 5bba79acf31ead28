package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shaiso/Chaosflow/internal/domain"
	"github.com/shaiso/Chaosflow/internal/plugin"
)

// --- helpers ---

// testClock возвращает часы, сдвигающиеся на 1ms при каждом вызове.
func testClock() func() time.Time {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var n int64
	return func() time.Time {
		return base.Add(time.Duration(atomic.AddInt64(&n, 1)) * time.Millisecond)
	}
}

func newScenario(names ...string) *domain.Scenario {
	stages := make([]domain.StageBoundary, len(names))
	for i, n := range names {
		stages[i] = domain.StageBoundary{
			Name:    n,
			Input:   map[string]any{"stage": n},
			Example: "example-" + n,
		}
	}
	return domain.NewScenario("payments", "drill", "Drill", 1, stages)
}

// spy — адаптер, считающий вызовы.
type spy struct {
	calls atomic.Int32
	fn    func(input any) plugin.Outcome
}

func (s *spy) Execute(_ context.Context, input any, _ plugin.RunContext) plugin.Outcome {
	s.calls.Add(1)
	if s.fn != nil {
		return s.fn(input)
	}
	return plugin.Success(input)
}

func kinds(events []Event) []EventKind {
	out := make([]EventKind, len(events))
	for i, ev := range events {
		out[i] = ev.Kind
	}
	return out
}

func startedStages(events []Event) []string {
	var out []string
	for _, ev := range events {
		if ev.Kind == EventStageStarted {
			out = append(out, ev.Stage)
		}
	}
	return out
}

func equalKinds(a, b []EventKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func opts() Options {
	return Options{Clock: testClock()}
}

// --- Run Tests ---

func TestRun_MissingPlugin(t *testing.T) {
	reg := plugin.NewRegistry()
	reg.Register("ingest", &spy{})
	reg.Register("verify", &spy{})

	events, report := StreamChaosScenario(context.Background(), "payments", newScenario("ingest", "inject", "verify"), reg, opts())

	want := []EventKind{
		EventRunStarted,
		EventStageStarted, EventStageComplete,
		EventStageStarted, EventStageFailed,
		EventRunFailed,
	}
	if !equalKinds(kinds(events), want) {
		t.Fatalf("unexpected events: %v", kinds(events))
	}

	failed := events[4]
	if failed.Stage != "inject" || failed.Payload != "missing plugin" {
		t.Errorf("unexpected stage-failed event: %+v", failed)
	}

	if report.Status != domain.RunStatusFailed {
		t.Errorf("expected failed, got %s", report.Status)
	}
	if len(report.Steps) != 1 {
		t.Errorf("expected 1 step, got %d", len(report.Steps))
	}
	if _, ok := report.Steps["ingest"]; !ok {
		t.Error("steps should contain ingest")
	}
	if len(report.Trace) != 3 {
		t.Errorf("expected trace length 3, got %d", len(report.Trace))
	}

	stage, reason, ok := report.FailedStage()
	if !ok || stage != "inject" || reason != "missing plugin" {
		t.Errorf("FailedStage() = %q, %q, %v", stage, reason, ok)
	}
}

func TestRun_AllStagesComplete(t *testing.T) {
	names := []string{"ingest", "inject-latency", "drain-node", "verify-recovery"}
	reg := plugin.NewRegistry()
	for _, n := range names {
		reg.Register(n, &spy{})
	}

	orch := New("payments", newScenario(names...), reg, opts())

	var progress []int
	var events []Event
	for ev := range orch.All(context.Background()) {
		events = append(events, ev)
		progress = append(progress, orch.State().Progress)
	}
	report := orch.Report()

	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Fatalf("progress decreased: %v", progress)
		}
	}
	if progress[len(progress)-1] != 100 {
		t.Errorf("expected final progress 100, got %v", progress)
	}

	if report.Status != domain.RunStatusComplete {
		t.Errorf("expected complete, got %s", report.Status)
	}
	if len(report.Steps) != len(names) {
		t.Errorf("expected %d steps, got %d", len(names), len(report.Steps))
	}
	if len(report.Trace) != 2*len(names) {
		t.Errorf("expected trace length %d, got %d", 2*len(names), len(report.Trace))
	}
	if report.Snapshot.Progress != 100 || report.Snapshot.Status != domain.RunStatusComplete {
		t.Errorf("unexpected snapshot: %+v", report.Snapshot)
	}

	got := startedStages(events)
	for i, n := range names {
		if got[i] != n {
			t.Errorf("stage %d: expected %s, got %s", i, n, got[i])
		}
	}

	last := events[len(events)-1]
	if last.Kind != EventRunComplete || last.Snapshot != report {
		t.Error("last event should be run-complete carrying the report")
	}
	if last.Status != domain.RunStatusComplete {
		t.Errorf("unexpected terminal status %s", last.Status)
	}
}

func TestRun_AdapterFailureStopsRun(t *testing.T) {
	verify := &spy{}
	reg := plugin.NewRegistry()
	reg.Register("ingest", &spy{})
	reg.Register("inject", &spy{fn: func(any) plugin.Outcome {
		return plugin.Failure(errors.New("boom"))
	}})
	reg.Register("verify", verify)

	events, report := StreamChaosScenario(context.Background(), "payments", newScenario("ingest", "inject", "verify"), reg, opts())

	if verify.calls.Load() != 0 {
		t.Error("verify should never be invoked after inject fails")
	}
	for _, s := range startedStages(events) {
		if s == "verify" {
			t.Error("verify should never be started")
		}
	}

	if report.Status != domain.RunStatusFailed {
		t.Errorf("expected failed, got %s", report.Status)
	}
	if _, ok := report.Steps["inject"]; ok {
		t.Error("failed stage should not be in steps")
	}
	if report.Progress != 33 {
		t.Errorf("expected progress 33, got %d", report.Progress)
	}

	_, reason, _ := report.FailedStage()
	if reason != "boom" {
		t.Errorf("expected reason boom, got %q", reason)
	}

	last := report.Trace[len(report.Trace)-1]
	if last.Status != domain.RunStatusFailed || last.EndedAt == nil {
		t.Errorf("last trace entry should be a finished failure: %+v", last)
	}
}

func TestRun_LongScenarioLastStageFails(t *testing.T) {
	const n = 200
	names := make([]string, n)
	reg := plugin.NewRegistry()
	for i := range names {
		names[i] = fmt.Sprintf("stage-%03d", i)
		reg.Register(names[i], &spy{})
	}
	reg.Register(names[n-1], &spy{fn: func(any) plugin.Outcome {
		return plugin.Failure(errors.New("boom"))
	}})

	orch := New("payments", newScenario(names...), reg, opts())
	for ev := range orch.All(context.Background()) {
		if !ev.Kind.IsTerminal() && orch.State().Progress >= 100 {
			t.Fatalf("progress reached 100 before the run finished (after %s %s)", ev.Kind, ev.Stage)
		}
	}

	report := orch.Report()
	if report.Status != domain.RunStatusFailed {
		t.Fatalf("expected failed, got %s", report.Status)
	}
	if report.Progress != 99 {
		t.Errorf("expected progress 99, got %d", report.Progress)
	}
	if report.Snapshot.Progress != 99 {
		t.Errorf("expected snapshot progress 99, got %d", report.Snapshot.Progress)
	}
}

func TestRun_TerminalEventIsUniqueAndLast(t *testing.T) {
	scenarios := []struct {
		name string
		reg  *plugin.Registry
	}{
		{"complete", plugin.FromBindings(
			plugin.Binding{Stage: domain.StageBoundary{Name: "a"}, Adapter: &spy{}},
			plugin.Binding{Stage: domain.StageBoundary{Name: "b"}, Adapter: &spy{}},
		)},
		{"missing", plugin.FromBindings(
			plugin.Binding{Stage: domain.StageBoundary{Name: "a"}, Adapter: &spy{}},
		)},
		{"empty registry", plugin.NewRegistry()},
	}

	for _, sc := range scenarios {
		t.Run(sc.name, func(t *testing.T) {
			events, _ := StreamChaosScenario(context.Background(), "ns", newScenario("a", "b"), sc.reg, opts())

			terminal := 0
			for _, ev := range events {
				if ev.Kind.IsTerminal() {
					terminal++
				}
			}
			if terminal != 1 {
				t.Errorf("expected exactly one terminal event, got %d", terminal)
			}
			if !events[len(events)-1].Kind.IsTerminal() {
				t.Error("terminal event should be last")
			}
		})
	}
}

func TestRun_DryRunNeverInvokesAdapters(t *testing.T) {
	a, b := &spy{}, &spy{}
	reg := plugin.NewRegistry()
	reg.Register("ingest", a)
	reg.Register("inject", b)

	scenario := newScenario("ingest", "inject")
	for i := 0; i < 2; i++ {
		report := RunChaosScenario(context.Background(), "payments", scenario, reg, Options{DryRun: true})

		if report.Status != domain.RunStatusComplete {
			t.Errorf("run %d: expected complete, got %s", i, report.Status)
		}
		if report.Steps["inject"].Output != "example-inject" {
			t.Errorf("run %d: expected example output, got %v", i, report.Steps["inject"].Output)
		}
	}

	if a.calls.Load() != 0 || b.calls.Load() != 0 {
		t.Error("adapters should not be invoked in dry-run")
	}
}

func TestRun_DryRunStillRequiresPlugin(t *testing.T) {
	report := RunChaosScenario(context.Background(), "ns", newScenario("ingest"), plugin.NewRegistry(), Options{DryRun: true})

	if report.Status != domain.RunStatusFailed {
		t.Errorf("expected failed, got %s", report.Status)
	}
}

func TestRun_CancelledBeforeAdapter(t *testing.T) {
	ingest := &spy{}
	reg := plugin.NewRegistry()
	reg.Register("ingest", ingest)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	events, report := StreamChaosScenario(ctx, "ns", newScenario("ingest"), reg, opts())

	if ingest.calls.Load() != 0 {
		t.Error("adapter should not run after cancellation")
	}
	if report.Status != domain.RunStatusFailed {
		t.Errorf("expected failed, got %s", report.Status)
	}

	// Отмена — обычный stage-failed, без отдельного типа события.
	want := []EventKind{EventRunStarted, EventStageStarted, EventStageFailed, EventRunFailed}
	if !equalKinds(kinds(events), want) {
		t.Fatalf("unexpected events: %v", kinds(events))
	}
	reason, _ := events[2].Payload.(string)
	if !strings.Contains(reason, ErrStageCancelled.Error()) || !strings.Contains(reason, context.Canceled.Error()) {
		t.Errorf("unexpected reason: %q", reason)
	}
}

func TestRun_CancelledWhileWaiting(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	reg := plugin.NewRegistry()
	reg.RegisterFunc("inject", func(context.Context, any, plugin.RunContext) plugin.Outcome {
		close(started)
		<-release // адаптер игнорирует ctx
		return plugin.Success(nil)
	})

	ctx, cancel := context.WithCancelCause(context.Background())
	go func() {
		<-started
		cancel(errors.New("operator abort"))
	}()

	done := make(chan *Report, 1)
	go func() {
		done <- RunChaosScenario(ctx, "ns", newScenario("inject"), reg, opts())
	}()

	select {
	case report := <-done:
		if report.Status != domain.RunStatusFailed {
			t.Errorf("expected failed, got %s", report.Status)
		}
		_, reason, _ := report.FailedStage()
		if !strings.Contains(reason, "operator abort") {
			t.Errorf("expected cancellation cause in reason, got %q", reason)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("run did not observe cancellation")
	}
}

func TestRun_AdapterPanic(t *testing.T) {
	reg := plugin.NewRegistry()
	reg.RegisterFunc("inject", func(context.Context, any, plugin.RunContext) plugin.Outcome {
		panic("kaboom")
	})

	report := RunChaosScenario(context.Background(), "ns", newScenario("inject"), reg, opts())

	_, reason, _ := report.FailedStage()
	if !strings.Contains(reason, ErrAdapterPanic.Error()) || !strings.Contains(reason, "kaboom") {
		t.Errorf("unexpected reason: %q", reason)
	}
}

func TestRun_NilOutcome(t *testing.T) {
	reg := plugin.NewRegistry()
	reg.RegisterFunc("inject", func(context.Context, any, plugin.RunContext) plugin.Outcome {
		return nil
	})

	report := RunChaosScenario(context.Background(), "ns", newScenario("inject"), reg, opts())

	_, reason, _ := report.FailedStage()
	if !strings.HasPrefix(reason, ErrUnknownOutcome.Error()) {
		t.Errorf("unexpected reason: %q", reason)
	}
}

func TestRun_RunContext(t *testing.T) {
	var got plugin.RunContext
	reg := plugin.NewRegistry()
	reg.RegisterFunc("inject", func(_ context.Context, _ any, rc plugin.RunContext) plugin.Outcome {
		got = rc
		return plugin.Success(nil)
	})

	o := opts()
	o.RunID = "run-7"
	o.Tags = []string{"staging"}
	o.PreferredActions = []string{"drain"}

	report := RunChaosScenario(context.Background(), "payments", newScenario("inject"), reg, o)

	if report.RunID != "run-7" {
		t.Errorf("expected run-7, got %s", report.RunID)
	}
	if got.RunID != "run-7" || got.Namespace != "payments" || got.ScenarioID != "drill" || got.Stage != "inject" {
		t.Errorf("unexpected run context: %+v", got)
	}
	if !got.Prefers("drain") || len(got.Tags) != 1 || got.Tags[0] != "staging" {
		t.Errorf("unexpected hints: %+v", got)
	}
}

func TestRun_EmptyScenario(t *testing.T) {
	events, report := StreamChaosScenario(context.Background(), "ns", newScenario(), nil, opts())

	want := []EventKind{EventRunStarted, EventRunComplete}
	if !equalKinds(kinds(events), want) {
		t.Fatalf("unexpected events: %v", kinds(events))
	}
	if report.Progress != 100 || report.Status != domain.RunStatusComplete {
		t.Errorf("unexpected report: %+v", report)
	}
}

func TestRun_StepsMatchCompleteEvents(t *testing.T) {
	reg := plugin.NewRegistry()
	reg.Register("a", &spy{})
	reg.Register("b", &spy{})
	reg.Register("c", &spy{fn: func(any) plugin.Outcome { return plugin.Failure(nil) }})

	events, report := StreamChaosScenario(context.Background(), "ns", newScenario("a", "b", "c", "d"), reg, opts())

	for _, ev := range events {
		_, inSteps := report.Steps[ev.Stage]
		switch ev.Kind {
		case EventStageComplete:
			if !inSteps {
				t.Errorf("completed stage %s missing from steps", ev.Stage)
			}
		case EventStageFailed:
			if inSteps {
				t.Errorf("failed stage %s present in steps", ev.Stage)
			}
		}
	}
	if len(report.Trace) > 2*4 {
		t.Errorf("trace too long: %d", len(report.Trace))
	}
}

// --- Stream Tests ---

func TestNext_ResumesAfterBreak(t *testing.T) {
	reg := plugin.NewRegistry()
	reg.Register("a", &spy{})
	orch := New("ns", newScenario("a"), reg, opts())

	count := 0
	for range orch.All(context.Background()) {
		count++
		if count == 2 {
			break
		}
	}
	if orch.Done() || orch.Report() != nil {
		t.Fatal("run should not be finished after break")
	}

	events, report := orch.Drain(context.Background())
	if len(events) != 2 {
		t.Errorf("expected 2 remaining events, got %d", len(events))
	}
	if report == nil || report.Status != domain.RunStatusComplete {
		t.Errorf("unexpected report: %+v", report)
	}

	if _, ok := orch.Next(context.Background()); ok {
		t.Error("Next after done should return false")
	}
}

func TestObservers(t *testing.T) {
	reg := plugin.NewRegistry()
	reg.Register("a", &spy{})

	var observed []Event
	o := opts()
	o.Observers = []Observer{Collect(&observed)}

	events, _ := StreamChaosScenario(context.Background(), "ns", newScenario("a"), reg, o)

	if !equalKinds(kinds(observed), kinds(events)) {
		t.Errorf("observer saw %v, stream returned %v", kinds(observed), kinds(events))
	}
	for _, ev := range observed {
		if ev.RunID == "" || ev.At.IsZero() {
			t.Errorf("event missing run id or time: %+v", ev)
		}
	}
}

func TestRun_ConcurrentOrchestratorsShareRegistry(t *testing.T) {
	reg := plugin.NewRegistry()
	reg.Register("a", &spy{})
	reg.Register("b", &spy{})
	scenario := newScenario("a", "b")

	const runs = 8
	results := make(chan *Report, runs)
	for i := 0; i < runs; i++ {
		go func() {
			results <- RunChaosScenario(context.Background(), "ns", scenario, reg, Options{})
		}()
	}

	seen := make(map[domain.RunID]bool)
	for i := 0; i < runs; i++ {
		r := <-results
		if r.Status != domain.RunStatusComplete {
			t.Errorf("expected complete, got %s", r.Status)
		}
		seen[r.RunID] = true
	}
	if len(seen) != runs {
		t.Errorf("expected %d distinct run ids, got %d", runs, len(seen))
	}
}
