package orchestrator

import "errors"

// Ошибки оркестратора.
var (
	// ErrMissingPlugin — для stage не зарегистрирован адаптер.
	ErrMissingPlugin = errors.New("missing plugin")

	// ErrStageCancelled — run отменён в точке ожидания stage.
	ErrStageCancelled = errors.New("stage cancelled")

	// ErrAdapterPanic — адаптер запаниковал.
	ErrAdapterPanic = errors.New("adapter panicked")

	// ErrUnknownOutcome — адаптер вернул nil или чужую реализацию Outcome.
	ErrUnknownOutcome = errors.New("adapter returned unknown outcome")

	// ErrNoEvents — нет событий для восстановления отчёта.
	ErrNoEvents = errors.New("no events to reconstruct report from")

	// ErrNoSnapshot — последнее событие не содержит отчёта.
	ErrNoSnapshot = errors.New("terminal event has no snapshot")
)
