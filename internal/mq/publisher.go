package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/Chaosflow/internal/domain"
	"github.com/shaiso/Chaosflow/internal/orchestrator"
)

// Publisher публикует сообщения в RabbitMQ.
type Publisher struct {
	conn   *Connection
	logger *slog.Logger
}

// NewPublisher создаёт Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		conn:   conn,
		logger: logger,
	}
}

// Publish публикует сообщение в exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	return p.conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		err := ch.PublishWithContext(
			ctx,
			string(exchange),
			string(routingKey),
			false, // mandatory
			false, // immediate
			amqp.Publishing{
				ContentType:  "application/json",
				DeliveryMode: amqp.Persistent,
				MessageId:    msg.ID,
				Timestamp:    msg.Timestamp,
				Type:         string(msg.Type),
				Body:         body,
			},
		)
		if err != nil {
			return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
		}

		p.logger.Debug("published message",
			"exchange", exchange,
			"routing_key", routingKey,
			"message_id", msg.ID,
			"type", msg.Type,
		)
		return nil
	})
}

// Sender — то, во что EventSink отправляет сообщения.
type Sender interface {
	Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error
}

// EventSink публикует события одного сценария в ExchangeEvents.
type EventSink struct {
	sender    Sender
	namespace domain.NamespaceID
	scenario  domain.ScenarioID
	logger    *slog.Logger
}

// NewEventSink создаёт EventSink.
func NewEventSink(sender Sender, namespace domain.NamespaceID, scenario domain.ScenarioID, logger *slog.Logger) *EventSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &EventSink{
		sender:    sender,
		namespace: namespace,
		scenario:  scenario,
		logger:    logger,
	}
}

// PublishEvent публикует одно событие.
func (s *EventSink) PublishEvent(ctx context.Context, ev orchestrator.Event) error {
	msg := NewEventMessage(s.namespace, s.scenario, ev)
	return s.sender.Publish(ctx, ExchangeEvents, EventRoutingKey(s.scenario, ev.Kind), msg)
}

// Observer возвращает orchestrator.Observer, публикующий каждое событие.
// Ошибки публикации логируются и не прерывают run.
func (s *EventSink) Observer(ctx context.Context) orchestrator.Observer {
	return func(ev orchestrator.Event) {
		if err := s.PublishEvent(ctx, ev); err != nil {
			s.logger.Warn("publish event failed",
				"run_id", ev.RunID,
				"kind", ev.Kind,
				"error", err,
			)
		}
	}
}
