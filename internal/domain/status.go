package domain

// RunStatus — состояние выполнения run.
//
// Жизненный цикл:
//
//	ARMING → ACTIVE → VERIFIED → ACTIVE → ... → COMPLETE
//	               ↘ FAILED
//
// ARMING — run создан, ни один stage ещё не стартовал.
// ACTIVE — выполняется stage.
// VERIFIED — stage успешно завершён, следующий ещё не начат.
type RunStatus string

const (
	// RunStatusArming — начальное состояние до первого stage.
	RunStatusArming RunStatus = "arming"

	// RunStatusActive — stage в процессе выполнения.
	RunStatusActive RunStatus = "active"

	// RunStatusVerified — последний stage завершился успешно.
	RunStatusVerified RunStatus = "verified"

	// RunStatusFailed — run завершился с ошибкой (финальный).
	RunStatusFailed RunStatus = "failed"

	// RunStatusComplete — все stages завершены успешно (финальный).
	RunStatusComplete RunStatus = "complete"
)

// IsTerminal возвращает true, если статус финальный (run завершён).
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusFailed, RunStatusComplete:
		return true
	default:
		return false
	}
}

// String возвращает строковое представление RunStatus.
func (s RunStatus) String() string {
	return string(s)
}
