// Package cli реализует команды chaosctl.
//
// # Команды
//
//   - run FILE       — выполнить сценарий, вывести trace и итог
//   - validate FILE  — проверить файл и наличие адаптеров
//   - topology FILE  — цепочка зависимостей stages
//   - schedule FILE  — запуск по cron/интервалу, /metrics и /healthz
//   - watch          — читать события run из RabbitMQ
//
// # Output
//
// Данные выводятся в stdout (таблица или JSON с --json), сообщения и
// события run — в stderr. Это позволяет использовать pipe:
//
//	chaosctl run drill.yaml --json | jq .status
//
// Команды создаются фабриками (NewRunCmd и т.д.), принимающими envFn —
// замыкание, создающее Env после разбора PersistentFlags.
package cli
