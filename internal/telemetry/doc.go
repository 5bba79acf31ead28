// Package telemetry обеспечивает наблюдаемость запусков.
//
// Включает:
//   - logging.go — structured logging через slog
//   - metrics.go — Prometheus метрики по событиям run
//
// Metrics подключается к оркестратору как Observer и считает
// runs/stages по статусам и длительность stages.
package telemetry
