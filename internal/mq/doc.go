// Package mq публикует события run в RabbitMQ и читает их обратно.
//
// Структура:
//   - connection.go — соединение с RabbitMQ (reconnect, graceful shutdown)
//   - topology.go   — exchanges, queues, bindings
//   - message.go    — конверт сообщения и routing keys
//   - publisher.go  — публикация событий, Observer для orchestrator
//   - consumer.go   — потребление событий (chaosctl watch)
//
// Exchanges:
//   - chaosflow.events — события run (topic, key <scenario>.<kind>)
//   - chaosflow.dlq    — dead letter queue
package mq
