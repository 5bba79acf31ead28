package adapters

import (
	"context"
	"fmt"
	"time"

	"github.com/shaiso/Chaosflow/internal/plugin"
)

// KindDelay — kind адаптера задержки.
const KindDelay = "delay"

// Delay возвращает адаптер паузы.
//
// Пауза прерывается отменой ctx; причина отмены попадает в ошибку.
func Delay() plugin.Adapter {
	return plugin.AdapterFunc(executeDelay)
}

func executeDelay(ctx context.Context, input any, _ plugin.RunContext) plugin.Outcome {
	in, err := asObject(KindDelay, input)
	if err != nil {
		return plugin.Failure(err)
	}

	duration, err := parseDuration(in)
	if err != nil {
		return plugin.Failure(err)
	}

	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return plugin.Failure(fmt.Errorf("delay interrupted: %w", context.Cause(ctx)))
	case <-timer.C:
		return plugin.Success(map[string]any{
			"duration_ms": duration.Milliseconds(),
		})
	}
}

// parseDuration извлекает длительность: duration_sec, duration_ms или duration.
func parseDuration(in map[string]any) (time.Duration, error) {
	if sec := inputInt(in, "duration_sec"); sec > 0 {
		return time.Duration(sec) * time.Second, nil
	}
	if ms := inputInt(in, "duration_ms"); ms > 0 {
		return time.Duration(ms) * time.Millisecond, nil
	}
	if s := inputString(in, "duration"); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil || d <= 0 {
			return 0, fmt.Errorf("%w: %s: bad duration %q", ErrInvalidInput, KindDelay, s)
		}
		return d, nil
	}

	return 0, fmt.Errorf("%w: %s: duration_sec, duration_ms or duration required",
		ErrInvalidInput, KindDelay)
}
