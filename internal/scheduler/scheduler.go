package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/Chaosflow/internal/domain"
	"github.com/shaiso/Chaosflow/internal/orchestrator"
)

// errNoReport — RunFunc вернул (nil, nil).
var errNoReport = errors.New("run func returned no report")

// RunFunc выполняет один run с заданным ID. Без ошибки возвращает непустой отчёт.
type RunFunc func(ctx context.Context, runID domain.RunID) (*orchestrator.Report, error)

// Config — конфигурация Scheduler.
type Config struct {
	Schedule Schedule
	Run      RunFunc
	Logger   *slog.Logger

	// MaxRuns — после стольких запусков Run возвращается (0 — без ограничения).
	MaxRuns int

	// Clock (default: time.Now).
	Clock func() time.Time
}

// Scheduler периодически запускает сценарий по расписанию.
type Scheduler struct {
	schedule Schedule
	run      RunFunc
	logger   *slog.Logger
	maxRuns  int
	now      func() time.Time

	nextDue time.Time
	lastKey string
	runs    int
}

// New создаёт Scheduler и вычисляет первое время запуска.
func New(cfg Config) (*Scheduler, error) {
	if err := cfg.Schedule.Validate(); err != nil {
		return nil, err
	}
	if cfg.Run == nil {
		return nil, fmt.Errorf("scheduler: run func is required")
	}

	now := cfg.Clock
	if now == nil {
		now = time.Now
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	next, err := NextDue(cfg.Schedule, now())
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		schedule: cfg.Schedule,
		run:      cfg.Run,
		logger:   logger.With("schedule", cfg.Schedule.Name),
		maxRuns:  cfg.MaxRuns,
		now:      now,
		nextDue:  next,
	}, nil
}

// NextDue возвращает время следующего запуска.
func (s *Scheduler) NextDue() time.Time {
	return s.nextDue
}

// Runs возвращает количество выполненных запусков.
func (s *Scheduler) Runs() int {
	return s.runs
}

// Tick запускает run, если наступило время.
//
// Ключ идемпотентности "{name}_{due_unix}" гарантирует, что для одного
// времени запуска будет не больше одного run; RunID выводится из ключа.
// Ошибка run не останавливает расписание.
func (s *Scheduler) Tick(ctx context.Context) (bool, error) {
	now := s.now()
	if now.Before(s.nextDue) {
		return false, nil
	}

	due := s.nextDue
	next, err := NextDue(s.schedule, now)
	if err != nil {
		return false, fmt.Errorf("calculate next due: %w", err)
	}
	s.nextDue = next

	key := IdempotencyKey(s.schedule.Name, due)
	if key == s.lastKey {
		s.logger.Debug("run already started (idempotency)", "idempotency_key", key)
		return false, nil
	}
	s.lastKey = key

	runID := RunIDFor(key)
	s.runs++

	report, err := s.run(ctx, runID)
	if err == nil && report == nil {
		err = errNoReport
	}
	if err != nil {
		s.logger.Error("scheduled run failed to start",
			"run_id", runID,
			"due", due,
			"error", err,
		)
		return true, nil
	}

	s.logger.Info("scheduled run finished",
		"run_id", runID,
		"status", report.Status,
		"progress", report.Progress,
		"next_due", s.nextDue,
	)
	return true, nil
}

// Run вызывает Tick каждые interval до отмены ctx или MaxRuns запусков.
func (s *Scheduler) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}

	tk := time.NewTicker(interval)
	defer tk.Stop()

	s.logger.Info("scheduler started", "next_due", s.nextDue)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tk.C:
			if _, err := s.Tick(ctx); err != nil {
				s.logger.Error("scheduler tick failed", "error", err)
			}
			if s.maxRuns > 0 && s.runs >= s.maxRuns {
				s.logger.Info("scheduler reached max runs", "runs", s.runs)
				return nil
			}
		}
	}
}

// IdempotencyKey формирует ключ "{name}_{due_unix}".
func IdempotencyKey(name string, due time.Time) string {
	return fmt.Sprintf("%s_%d", name, due.Unix())
}

// RunIDFor выводит детерминированный RunID из ключа идемпотентности.
func RunIDFor(key string) domain.RunID {
	return domain.RunIDFrom(uuid.NewSHA1(uuid.NameSpaceURL, []byte("chaosflow:"+key)).String())
}
