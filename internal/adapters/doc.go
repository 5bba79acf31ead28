// Package adapters содержит встроенные адаптеры stages.
//
// Адаптеры выбираются по kind (поле uses в файле сценария):
//
//   - delay      — пауза с поддержкой отмены (inject-latency, soak)
//   - http-probe — HTTP проверка сервиса с ожидаемым статусом (verify-recovery)
//   - noop       — возвращает вход как выход
//
// Catalog сопоставляет kind с адаптером. Реестр plugin.Registry
// строится поверх каталога: каждому stage — адаптер его kind.
//
// # Delay
//
// Вход:
//
//	{"duration_ms": 500}   // или
//	{"duration_sec": 5}    // или
//	{"duration": "1.5s"}
//
// Выход:
//
//	{"duration_ms": 500}
//
// # HTTP probe
//
// Вход:
//
//	{
//	    "url": "http://svc/healthz",
//	    "method": "GET",
//	    "headers": {"Authorization": "Bearer xxx"},
//	    "expect_status": 200,
//	    "timeout_ms": 2000
//	}
//
// Выход:
//
//	{"status_code": 200, "latency_ms": 12, "body": "ok"}
//
// Статус, отличный от expect_status (по умолчанию — любой 2xx/3xx),
// возвращается как Failed с *ProbeError.
package adapters
