package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NamespaceID — идентификатор пространства имён (команда, окружение).
type NamespaceID string

// ScenarioID — идентификатор сценария внутри namespace.
type ScenarioID string

// RunID — идентификатор одного запуска сценария.
type RunID string

// NewNamespaceID создаёт NamespaceID из строки.
func NewNamespaceID(s string) NamespaceID {
	return NamespaceID(strings.TrimSpace(s))
}

// NewScenarioID создаёт ScenarioID из строки.
func NewScenarioID(s string) ScenarioID {
	return ScenarioID(strings.TrimSpace(s))
}

// NewRunID генерирует новый уникальный RunID.
func NewRunID() RunID {
	return RunID(uuid.NewString())
}

// RunIDFrom создаёт RunID из произвольной строки (например, из внешней системы).
func RunIDFrom(s string) RunID {
	return RunID(strings.TrimSpace(s))
}

// ParseRunID проверяет, что строка — валидный UUID, и возвращает RunID.
func ParseRunID(s string) (RunID, error) {
	id, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("parse run id %q: %w", s, err)
	}
	return RunID(id.String()), nil
}

func (id NamespaceID) String() string { return string(id) }
func (id ScenarioID) String() string  { return string(id) }
func (id RunID) String() string       { return string(id) }
