package domain

import (
	"slices"
	"time"
)

// StageBoundary — именованная единица работы сценария.
//
// Input передаётся адаптеру как есть. Example — объявленный пример
// выхода stage; используется в dry-run вместо вызова адаптера.
type StageBoundary struct {
	// Name — имя stage (например, "inject-latency", "drain-node").
	// По нему адаптер ищется в реестре.
	Name string `json:"name"`

	// Description — человекочитаемое описание.
	Description string `json:"description,omitempty"`

	// Input — входные данные адаптера.
	Input any `json:"input,omitempty"`

	// Example — пример выхода для dry-run.
	Example any `json:"example,omitempty"`
}

// Scenario — упорядоченный список stages, выполняемый оркестратором.
//
// Сценарий неизменяем после создания: NewScenario копирует stages,
// а Stages() отдаёт копию.
type Scenario struct {
	Namespace NamespaceID `json:"namespace"`
	ID        ScenarioID  `json:"id"`
	Title     string      `json:"title"`
	Version   int         `json:"version"`
	CreatedAt time.Time   `json:"created_at"`

	stages []StageBoundary
}

// NewScenario создаёт сценарий.
func NewScenario(namespace NamespaceID, id ScenarioID, title string, version int, stages []StageBoundary) *Scenario {
	return &Scenario{
		Namespace: namespace,
		ID:        id,
		Title:     title,
		Version:   version,
		CreatedAt: time.Now().UTC(),
		stages:    slices.Clone(stages),
	}
}

// Stages возвращает копию stages в порядке объявления.
func (s *Scenario) Stages() []StageBoundary {
	return slices.Clone(s.stages)
}

// Len возвращает количество stages.
func (s *Scenario) Len() int {
	return len(s.stages)
}

// StageNames возвращает имена stages в порядке объявления.
func (s *Scenario) StageNames() []string {
	names := make([]string, len(s.stages))
	for i, st := range s.stages {
		names[i] = st.Name
	}
	return names
}
