// Package scope — ограниченные по времени ресурсы вокруг одного запуска.
//
// WithLogScope выдаёт функции LogScope (логгер с меткой + буфер событий)
// и освобождает оба на любом пути выхода: обычный возврат, ошибка, panic.
//
//	err := scope.WithLogScope(ctx, "nightly-drill", func(s *scope.LogScope) error {
//	    opts.Observers = append(opts.Observers, s.Observe)
//	    report := orchestrator.RunChaosScenario(ctx, ns, sc, reg, opts)
//	    ...
//	})
package scope

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/shaiso/Chaosflow/internal/orchestrator"
	"github.com/shaiso/Chaosflow/internal/telemetry"
)

// ErrDisposed — ресурс уже освобождён.
var ErrDisposed = errors.New("scope already disposed")

// EventBuffer — буфер событий run. Потокобезопасен.
type EventBuffer struct {
	mu       sync.Mutex
	events   []orchestrator.Event
	disposed bool
}

// NewEventBuffer создаёт пустой буфер.
func NewEventBuffer() *EventBuffer {
	return &EventBuffer{}
}

// Append добавляет событие. После Dispose возвращает ErrDisposed.
func (b *EventBuffer) Append(ev orchestrator.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.disposed {
		return ErrDisposed
	}
	b.events = append(b.events, ev)
	return nil
}

// Events возвращает копию накопленных событий.
func (b *EventBuffer) Events() []orchestrator.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]orchestrator.Event, len(b.events))
	copy(out, b.events)
	return out
}

// Len возвращает количество событий.
func (b *EventBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

// Dispose очищает буфер. Повторный вызов безопасен.
func (b *EventBuffer) Dispose() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.events = nil
	b.disposed = true
}

// Disposed возвращает true после Dispose.
func (b *EventBuffer) Disposed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.disposed
}

// LogScope — логгер с меткой и буфер событий одного запуска.
type LogScope struct {
	Label  string
	Logger *slog.Logger
	Buffer *EventBuffer

	once sync.Once
}

// Open создаёт LogScope. Вызывающий обязан вызвать Dispose.
func Open(ctx context.Context, label string) *LogScope {
	logger := telemetry.FromContext(ctx).With("scope", label)
	logger.Debug("scope opened")

	return &LogScope{
		Label:  label,
		Logger: logger,
		Buffer: NewEventBuffer(),
	}
}

// Observe пишет событие в буфер и в лог. Подходит как orchestrator.Observer.
func (s *LogScope) Observe(ev orchestrator.Event) {
	if err := s.Buffer.Append(ev); err != nil {
		s.Logger.Warn("event after scope closed", "kind", ev.Kind, "stage", ev.Stage)
		return
	}

	attrs := []any{"kind", ev.Kind, "run_id", ev.RunID}
	if ev.Stage != "" {
		attrs = append(attrs, "stage", ev.Stage)
	}
	if ev.Kind.IsFailure() {
		s.Logger.Warn("run event", append(attrs, "payload", ev.Payload)...)
		return
	}
	s.Logger.Debug("run event", attrs...)
}

// Summary возвращает сводку по накопленным событиям.
func (s *LogScope) Summary() orchestrator.Summary {
	return orchestrator.SummarizeEvents(s.Buffer.Events())
}

// Dispose пишет итог в лог и освобождает буфер. Повторный вызов — no-op.
func (s *LogScope) Dispose() {
	s.once.Do(func() {
		summary := s.Summary()
		s.Buffer.Dispose()

		s.Logger.Info("scope closed",
			"events", summary.Attempts,
			"failures", summary.Failures,
			"elapsed_ms", summary.ElapsedMs,
		)
	})
}

// Disposed возвращает true после Dispose.
func (s *LogScope) Disposed() bool {
	return s.Buffer.Disposed()
}

// WithLogScope открывает LogScope, вызывает fn и освобождает scope
// на любом пути выхода. panic в fn пробрасывается после освобождения.
func WithLogScope(ctx context.Context, label string, fn func(*LogScope) error) error {
	s := Open(ctx, label)
	defer s.Dispose()

	return fn(s)
}
