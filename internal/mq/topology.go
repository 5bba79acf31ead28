package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Exchange — имя обменника.
type Exchange string

// Queue — имя очереди.
type Queue string

// RoutingKey — ключ маршрутизации.
type RoutingKey string

// Exchanges.
const (
	ExchangeEvents Exchange = "chaosflow.events"
	ExchangeDLQ    Exchange = "chaosflow.dlq"
)

// Queues.
const (
	QueueEventsAudit Queue = "events.audit"
	QueueDLQEvents   Queue = "dlq.events"
)

// Routing keys.
const (
	RoutingKeyAll       RoutingKey = "#"
	RoutingKeyDLQEvents RoutingKey = "events"
)

// SetupTopology объявляет exchanges, queues и bindings. Идемпотентна.
func SetupTopology(ctx context.Context, conn *Connection) error {
	return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		if err := declareExchanges(ch); err != nil {
			return err
		}
		if err := declareQueues(ch); err != nil {
			return err
		}
		return bindQueues(ch)
	})
}

func declareExchanges(ch *amqp.Channel) error {
	exchanges := []struct {
		name Exchange
		kind string
	}{
		{ExchangeEvents, amqp.ExchangeTopic},
		{ExchangeDLQ, amqp.ExchangeDirect},
	}

	for _, ex := range exchanges {
		err := ch.ExchangeDeclare(
			string(ex.name), // name
			ex.kind,         // type
			true,            // durable
			false,           // auto-deleted
			false,           // internal
			false,           // no-wait
			nil,             // arguments
		)
		if err != nil {
			return fmt.Errorf("declare exchange %s: %w", ex.name, err)
		}
	}

	return nil
}

func declareQueues(ch *amqp.Channel) error {
	queues := []struct {
		name Queue
		args amqp.Table
	}{
		// events.audit — все события; битые сообщения уходят в DLQ
		{QueueEventsAudit, amqp.Table{
			"x-dead-letter-exchange":    string(ExchangeDLQ),
			"x-dead-letter-routing-key": string(RoutingKeyDLQEvents),
		}},
		{QueueDLQEvents, nil},
	}

	for _, q := range queues {
		_, err := ch.QueueDeclare(
			string(q.name), // name
			true,           // durable
			false,          // delete when unused
			false,          // exclusive
			false,          // no-wait
			q.args,         // arguments
		)
		if err != nil {
			return fmt.Errorf("declare queue %s: %w", q.name, err)
		}
	}

	return nil
}

func bindQueues(ch *amqp.Channel) error {
	bindings := []struct {
		queue      Queue
		routingKey RoutingKey
		exchange   Exchange
	}{
		{QueueEventsAudit, RoutingKeyAll, ExchangeEvents},
		{QueueDLQEvents, RoutingKeyDLQEvents, ExchangeDLQ},
	}

	for _, b := range bindings {
		if err := ch.QueueBind(string(b.queue), string(b.routingKey), string(b.exchange), false, nil); err != nil {
			return fmt.Errorf("bind queue %s to %s: %w", b.queue, b.exchange, err)
		}
	}

	return nil
}

// DeclareWatchQueue создаёт временную очередь (exclusive, auto-delete),
// привязанную к ExchangeEvents по pattern. Имя выдаёт брокер.
func DeclareWatchQueue(ctx context.Context, conn *Connection, pattern RoutingKey) (Queue, error) {
	if pattern == "" {
		pattern = RoutingKeyAll
	}

	var name Queue
	err := conn.WithChannel(ctx, func(ch *amqp.Channel) error {
		q, err := ch.QueueDeclare("", false, true, true, false, nil)
		if err != nil {
			return fmt.Errorf("declare watch queue: %w", err)
		}
		if err := ch.QueueBind(q.Name, string(pattern), string(ExchangeEvents), false, nil); err != nil {
			return fmt.Errorf("bind watch queue %s: %w", q.Name, err)
		}
		name = Queue(q.Name)
		return nil
	})

	return name, err
}

// TopologyInfo возвращает описание топологии для логирования.
func TopologyInfo() string {
	return `
  Chaosflow RabbitMQ Topology:

    chaosflow.events (topic)
    ├── events.audit [routing: #]
    │       DLQ: dlq.events
    └── <watch queue> [routing: pattern]
            Consumer: chaosctl watch

    chaosflow.dlq (direct)
    └── dlq.events [routing: events]
            Manual processing
  `
}
