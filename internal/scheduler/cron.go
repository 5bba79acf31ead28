package scheduler

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrNoTrigger — у расписания нет ни cron, ни интервала.
var ErrNoTrigger = errors.New("schedule has neither cron expression nor interval")

// cronParser — стандартный 5-полевой формат плюс дескрипторы (@hourly, @every 5m).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Schedule — когда запускать сценарий.
type Schedule struct {
	// Name — имя расписания, входит в ключ идемпотентности.
	Name string

	// CronExpr — cron-выражение. Приоритетнее IntervalSec.
	CronExpr string

	// IntervalSec — интервал между запусками.
	IntervalSec int

	// Timezone — IANA timezone для cron (default: UTC).
	Timezone string
}

// IsCron возвращает true, если задано cron-выражение.
func (s Schedule) IsCron() bool {
	return s.CronExpr != ""
}

// IsInterval возвращает true, если задан интервал.
func (s Schedule) IsInterval() bool {
	return !s.IsCron() && s.IntervalSec > 0
}

// Validate проверяет расписание.
func (s Schedule) Validate() error {
	switch {
	case s.IsCron():
		return ValidateCronExpr(s.CronExpr)
	case s.IsInterval():
		return nil
	default:
		return ErrNoTrigger
	}
}

// NextDue вычисляет следующее время запуска после from (в UTC).
// Невалидная timezone заменяется на UTC.
func NextDue(s Schedule, from time.Time) (time.Time, error) {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		loc = time.UTC
	}
	from = from.In(loc)

	switch {
	case s.IsCron():
		sched, err := cronParser.Parse(s.CronExpr)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse cron expression %q: %w", s.CronExpr, err)
		}
		return sched.Next(from).UTC(), nil
	case s.IsInterval():
		return from.Add(time.Duration(s.IntervalSec) * time.Second).UTC(), nil
	default:
		return time.Time{}, ErrNoTrigger
	}
}

// ValidateCronExpr проверяет валидность cron-выражения.
func ValidateCronExpr(expr string) error {
	if _, err := cronParser.Parse(expr); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}
