// Package scheduler запускает сценарий по cron-выражению или интервалу.
//
// Структура:
//   - scheduler.go — Scheduler (Tick, Run)
//   - cron.go      — парсинг cron-выражений и вычисление следующего времени
//
// Использование:
//
//	sched, err := scheduler.New(scheduler.Config{
//	    Schedule: scheduler.Schedule{Name: "nightly", CronExpr: "0 3 * * *"},
//	    Run:      runFn,
//	    Logger:   logger,
//	})
//	err = sched.Run(ctx, time.Second)
package scheduler
