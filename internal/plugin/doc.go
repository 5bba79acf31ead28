// Package plugin описывает контракт адаптеров stages и реестр адаптеров.
//
// Адаптер — функция (ctx, input, RunContext) → Outcome. Outcome — сумма
// двух вариантов: Succeeded (выход stage) и Failed (ошибка stage).
// Ожидаемые ошибки адаптеров возвращаются как Failed, а не через panic.
//
// Registry сопоставляет имя stage с адаптером. Реестр строится один раз
// до запуска и только читается во время run, поэтому может разделяться
// между параллельными оркестраторами.
//
//	reg := plugin.NewRegistry()
//	reg.Register("inject-latency", adapters.Delay())
//	reg.Register("verify-recovery", plugin.Typed(verify))
package plugin
