package mq

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Chaosflow/internal/domain"
	"github.com/shaiso/Chaosflow/internal/orchestrator"
)

// MessageType — тип сообщения.
type MessageType string

// MessageTypeRunEvent — событие run.
const MessageTypeRunEvent MessageType = "run.event"

// Message — конверт сообщения.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// EventPayload — payload сообщения run.event.
type EventPayload struct {
	Namespace  domain.NamespaceID `json:"namespace"`
	ScenarioID domain.ScenarioID  `json:"scenario_id"`
	Event      orchestrator.Event `json:"event"`
}

// NewEventMessage заворачивает событие в конверт.
func NewEventMessage(namespace domain.NamespaceID, scenario domain.ScenarioID, ev orchestrator.Event) *Message {
	return &Message{
		ID:   uuid.New().String(),
		Type: MessageTypeRunEvent,
		Payload: EventPayload{
			Namespace:  namespace,
			ScenarioID: scenario,
			Event:      ev,
		},
		Timestamp: ev.At,
	}
}

// EventRoutingKey возвращает ключ <scenario>.<kind>.
// Точки в id сценария заменяются на "_".
func EventRoutingKey(scenario domain.ScenarioID, kind orchestrator.EventKind) RoutingKey {
	id := strings.ReplaceAll(scenario.String(), ".", "_")
	if id == "" {
		id = "_"
	}
	return RoutingKey(id + "." + string(kind))
}

// ScenarioPattern возвращает шаблон для всех событий сценария.
func ScenarioPattern(scenario domain.ScenarioID) RoutingKey {
	if scenario == "" {
		return RoutingKeyAll
	}
	return RoutingKey(strings.ReplaceAll(scenario.String(), ".", "_") + ".*")
}

// ParsePayload парсит payload сообщения в указанный тип.
func ParsePayload[T any](msg *Message) (T, error) {
	var result T

	// Payload может быть уже распарсен как map или быть raw json
	data, err := json.Marshal(msg.Payload)
	if err != nil {
		return result, fmt.Errorf("marshal payload: %w", err)
	}

	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("unmarshal payload: %w", err)
	}

	return result, nil
}
