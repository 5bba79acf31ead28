package scenario

import "errors"

// Ошибки валидации сценария.
var (
	// ErrEmptyStages — сценарий не содержит stages.
	ErrEmptyStages = errors.New("scenario has no stages")

	// ErrEmptyID — у сценария нет id.
	ErrEmptyID = errors.New("scenario has empty id")

	// ErrEmptyStageName — stage без имени.
	ErrEmptyStageName = errors.New("stage has empty name")

	// ErrDuplicateStageName — несколько stages с одним именем.
	ErrDuplicateStageName = errors.New("duplicate stage name")

	// ErrUnknownKind — uses ссылается на неизвестный адаптер.
	ErrUnknownKind = errors.New("unknown adapter kind")

	// ErrUnsupportedFormat — расширение файла не поддерживается.
	ErrUnsupportedFormat = errors.New("unsupported scenario format")
)

// ValidationError — ошибка валидации с контекстом.
type ValidationError struct {
	Stage   string // имя stage, где произошла ошибка
	Field   string // поле, вызвавшее ошибку
	Message string // описание ошибки
	Err     error  // базовая ошибка
}

// Error реализует интерфейс error.
func (e *ValidationError) Error() string {
	if e.Stage != "" {
		return "stage " + e.Stage + ": " + e.Message
	}
	return e.Message
}

// Unwrap возвращает базовую ошибку.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(stage, field, message string, err error) *ValidationError {
	return &ValidationError{
		Stage:   stage,
		Field:   field,
		Message: message,
		Err:     err,
	}
}
