package orchestrator

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"runtime"
	"slices"
	"time"

	"github.com/shaiso/Chaosflow/internal/domain"
	"github.com/shaiso/Chaosflow/internal/plugin"
	"github.com/shaiso/Chaosflow/internal/telemetry"
)

// Options — настройки одного run.
type Options struct {
	// DryRun — вместо вызова адаптера stage «успешно» возвращает свой Example.
	DryRun bool

	// Tags передаются адаптерам в RunContext.
	Tags []string

	// PreferredActions — подсказки адаптерам.
	PreferredActions []string

	// RunID — идентификатор run. Если пустой, генерируется.
	RunID domain.RunID

	// Observers вызываются для каждого события до его возврата из Next.
	Observers []Observer

	// Logger (default: slog.Default()).
	Logger *slog.Logger

	// Clock (default: time.Now).
	Clock func() time.Time
}

// phase — шаг конечного автомата потока.
type phase int

const (
	phaseStart phase = iota
	phaseStageStart
	phaseStageExec
	phaseTerminal
	phaseDone
)

// Orchestrator выполняет один run сценария.
type Orchestrator struct {
	scenario *domain.Scenario
	stages   []domain.StageBoundary
	registry *plugin.Registry
	opts     Options

	state *RunState
	steps map[string]StepRecord

	phase     phase
	index     int
	traceIdx  int
	completed int
	terminal  domain.RunStatus
	report    *Report

	logger *slog.Logger
	now    func() time.Time
}

// New создаёт Orchestrator в состоянии arming.
func New(namespace domain.NamespaceID, scenario *domain.Scenario, registry *plugin.Registry, opts Options) *Orchestrator {
	if registry == nil {
		registry = plugin.NewRegistry()
	}

	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	runID := opts.RunID
	if runID == "" {
		runID = domain.NewRunID()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = telemetry.WithScenarioID(telemetry.WithRunID(logger, runID.String()), scenario.ID.String())

	return &Orchestrator{
		scenario: scenario,
		stages:   scenario.Stages(),
		registry: registry,
		opts:     opts,
		state:    newRunState(runID, namespace, scenario.ID, now()),
		steps:    make(map[string]StepRecord),
		phase:    phaseStart,
		logger:   logger,
		now:      now,
	}
}

// Scenario возвращает выполняемый сценарий.
func (o *Orchestrator) Scenario() *domain.Scenario {
	return o.scenario
}

// RunID возвращает ID run.
func (o *Orchestrator) RunID() domain.RunID {
	return o.state.RunID
}

// State возвращает копию текущего состояния run.
func (o *Orchestrator) State() RunState {
	return o.state.Snapshot()
}

// Done возвращает true, когда финальное событие уже выдано.
func (o *Orchestrator) Done() bool {
	return o.phase == phaseDone
}

// Report возвращает итоговый отчёт. nil, пока run не завершён.
func (o *Orchestrator) Report() *Report {
	return o.report
}

// Next продвигает run до следующего события.
//
// Возвращает (event, true), пока поток не исчерпан; после финального
// события — (Event{}, false). ctx — токен отмены: он проверяется перед
// вызовом адаптера и во время ожидания его результата.
func (o *Orchestrator) Next(ctx context.Context) (Event, bool) {
	switch o.phase {
	case phaseStart:
		o.logger.Info("run started",
			"namespace", o.state.Namespace,
			"stages", len(o.stages),
			"dry_run", o.opts.DryRun,
		)
		o.advance()
		return o.emit(Event{Kind: EventRunStarted}), true

	case phaseStageStart:
		return o.startStage(), true

	case phaseStageExec:
		return o.execStage(ctx), true

	case phaseTerminal:
		return o.finish(), true

	default:
		return Event{}, false
	}
}

// All возвращает итератор по событиям run.
func (o *Orchestrator) All(ctx context.Context) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for {
			ev, ok := o.Next(ctx)
			if !ok || !yield(ev) {
				return
			}
		}
	}
}

// Drain выполняет run до конца и возвращает отчёт и все события.
func (o *Orchestrator) Drain(ctx context.Context) ([]Event, *Report) {
	events := make([]Event, 0, 2*len(o.stages)+2)
	for ev := range o.All(ctx) {
		events = append(events, ev)
	}
	return events, o.report
}

// advance переходит к следующему stage или к финалу.
func (o *Orchestrator) advance() {
	if o.index < len(o.stages) {
		o.phase = phaseStageStart
		return
	}
	o.terminal = domain.RunStatusComplete
	o.phase = phaseTerminal
}

func (o *Orchestrator) startStage() Event {
	stage := o.stages[o.index]
	o.traceIdx = o.state.startStage(stage.Name, o.now())
	o.phase = phaseStageExec

	o.logger.Debug("stage started", "stage", stage.Name, "index", o.index)

	return o.emit(Event{
		Kind:    EventStageStarted,
		Stage:   stage.Name,
		Payload: stage.Input,
	})
}

func (o *Orchestrator) execStage(ctx context.Context) Event {
	stage := o.stages[o.index]

	adapter, ok := o.registry.Lookup(stage.Name)
	if !ok {
		return o.failStage(stage, ErrMissingPlugin)
	}

	var outcome plugin.Outcome
	if o.opts.DryRun {
		outcome = plugin.Success(stage.Example)
	} else {
		outcome = o.invoke(ctx, adapter, stage)
	}

	switch oc := outcome.(type) {
	case plugin.Succeeded:
		return o.completeStage(stage, oc.Output)
	case plugin.Failed:
		return o.failStage(stage, oc)
	default:
		return o.failStage(stage, fmt.Errorf("%w: %T", ErrUnknownOutcome, outcome))
	}
}

// invoke вызывает адаптер и ждёт результат либо отмену ctx.
func (o *Orchestrator) invoke(ctx context.Context, adapter plugin.Adapter, stage domain.StageBoundary) plugin.Outcome {
	if err := schedulingPoint(ctx); err != nil {
		return plugin.Failure(err)
	}

	rc := plugin.RunContext{
		Namespace:        o.state.Namespace,
		ScenarioID:       o.state.ScenarioID,
		RunID:            o.state.RunID,
		Stage:            stage.Name,
		Tags:             slices.Clone(o.opts.Tags),
		PreferredActions: slices.Clone(o.opts.PreferredActions),
	}

	done := make(chan plugin.Outcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- plugin.Failure(fmt.Errorf("%w: %v", ErrAdapterPanic, r))
			}
		}()
		done <- adapter.Execute(telemetry.WithLogger(ctx, o.logger), stage.Input, rc)
	}()

	select {
	case <-ctx.Done():
		return plugin.Failure(cancelled(ctx))
	case outcome := <-done:
		return outcome
	}
}

func (o *Orchestrator) completeStage(stage domain.StageBoundary, output any) Event {
	now := o.now()
	o.completed++
	o.steps[stage.Name] = StepRecord{Output: output, At: now}
	o.state.verifyStage(o.traceIdx, progressOf(o.completed, len(o.stages)), now)
	o.index++
	o.advance()

	o.logger.Debug("stage complete", "stage", stage.Name, "progress", o.state.Progress)

	return o.emit(Event{
		Kind:    EventStageComplete,
		Stage:   stage.Name,
		Payload: output,
	})
}

func (o *Orchestrator) failStage(stage domain.StageBoundary, err error) Event {
	reason := err.Error()
	o.state.failStage(o.traceIdx, reason, o.now())
	o.terminal = domain.RunStatusFailed
	o.phase = phaseTerminal

	o.logger.Warn("stage failed", "stage", stage.Name, "error", reason)

	return o.emit(Event{
		Kind:    EventStageFailed,
		Stage:   stage.Name,
		Payload: reason,
	})
}

// finish строит отчёт и выдаёт финальное событие.
func (o *Orchestrator) finish() Event {
	status := o.terminal
	o.state.Status = status
	o.state.UpdatedAt = o.now()
	if status == domain.RunStatusComplete && len(o.stages) == 0 {
		o.state.Progress = 100
	}

	o.report = BuildReport(o.state, o.stages, o.steps, o.state.Trace, status)
	o.phase = phaseDone

	kind := EventRunComplete
	if status == domain.RunStatusFailed {
		kind = EventRunFailed
	}

	o.logger.Info("run finished",
		"status", status,
		"progress", o.state.Progress,
		"completed", o.completed,
	)

	return o.emit(Event{
		Kind:     kind,
		Status:   status,
		Snapshot: o.report,
	})
}

// emit проставляет RunID и время, уведомляет наблюдателей.
func (o *Orchestrator) emit(ev Event) Event {
	ev.RunID = o.state.RunID
	if ev.Snapshot != nil {
		ev.At = ev.Snapshot.FinalAt
	} else {
		ev.At = o.now()
	}
	for _, obs := range o.opts.Observers {
		obs(ev)
	}
	return ev
}

// schedulingPoint — минимальная точка переключения перед вызовом адаптера.
func schedulingPoint(ctx context.Context) error {
	runtime.Gosched()
	if ctx.Err() != nil {
		return cancelled(ctx)
	}
	return nil
}

func cancelled(ctx context.Context) error {
	return fmt.Errorf("%w: %w", ErrStageCancelled, context.Cause(ctx))
}

func progressOf(completed, total int) int {
	return domain.ProgressPercent(completed, total)
}

// RunChaosScenario выполняет сценарий и возвращает только отчёт.
func RunChaosScenario(ctx context.Context, namespace domain.NamespaceID, scenario *domain.Scenario, registry *plugin.Registry, opts Options) *Report {
	_, report := New(namespace, scenario, registry, opts).Drain(ctx)
	return report
}

// StreamChaosScenario выполняет сценарий, сохраняя все события.
func StreamChaosScenario(ctx context.Context, namespace domain.NamespaceID, scenario *domain.Scenario, registry *plugin.Registry, opts Options) ([]Event, *Report) {
	return New(namespace, scenario, registry, opts).Drain(ctx)
}
