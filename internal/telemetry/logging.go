package telemetry

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel определяет уровень логирования из переменной окружения.
// Возможные значения: DEBUG, INFO, WARN, ERROR
// По умолчанию: INFO
func LogLevel() slog.Level {
	return ParseLevel(os.Getenv("LOG_LEVEL"))
}

// ParseLevel разбирает имя уровня без учёта регистра.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// SetupLogger инициализирует глобальный логгер (вывод в stderr,
// stdout занят результатами CLI).
//
// Формат вывода определяется переменной LOG_FORMAT:
//   - "json" (по умолчанию) — JSON формат для production
//   - "text" — человекочитаемый формат для разработки
func SetupLogger() *slog.Logger {
	return setupLogger(os.Stderr, LogLevel(), LogFormat())
}

// LogFormat возвращает значение LOG_FORMAT.
func LogFormat() string {
	return os.Getenv("LOG_FORMAT")
}

// SetupLoggerTo — как SetupLogger, но с заданными writer и уровнем.
func SetupLoggerTo(w io.Writer, level slog.Level) *slog.Logger {
	return setupLogger(w, level, LogFormat())
}

// NewLogger создаёт логгер без установки глобального (для тестов и scope).
func NewLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	return slog.New(newHandler(w, level, format))
}

func setupLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	logger := NewLogger(w, level, format)
	slog.SetDefault(logger)
	return logger
}

func newHandler(w io.Writer, level slog.Level, format string) slog.Handler {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	if format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return handler
}

// Ключи контекста для передачи данных в логгер.
type ctxKey string

const (
	// CtxLogger — ключ для логгера в контексте.
	CtxLogger ctxKey = "logger"
)

// WithLogger добавляет логгер в контекст.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, CtxLogger, logger)
}

// FromContext извлекает логгер из контекста.
// Если логгер не найден, возвращает глобальный.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(CtxLogger).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// WithRunID возвращает логгер с добавленным run_id.
func WithRunID(logger *slog.Logger, runID string) *slog.Logger {
	return logger.With("run_id", runID)
}

// WithScenarioID возвращает логгер с добавленным scenario_id.
func WithScenarioID(logger *slog.Logger, scenarioID string) *slog.Logger {
	return logger.With("scenario_id", scenarioID)
}

// WithNamespace возвращает логгер с добавленным namespace.
func WithNamespace(logger *slog.Logger, namespace string) *slog.Logger {
	return logger.With("namespace", namespace)
}
