package scope

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shaiso/Chaosflow/internal/domain"
	"github.com/shaiso/Chaosflow/internal/orchestrator"
	"github.com/shaiso/Chaosflow/internal/plugin"
	"github.com/shaiso/Chaosflow/internal/telemetry"
)

func testContext(buf *bytes.Buffer) context.Context {
	return telemetry.WithLogger(context.Background(), telemetry.NewLogger(buf, slog.LevelDebug, "text"))
}

func TestWithLogScope_DisposesOnReturn(t *testing.T) {
	var buf bytes.Buffer
	var captured *LogScope

	reg := plugin.NewRegistry()
	reg.Register("ingest", plugin.AdapterFunc(func(_ context.Context, in any, _ plugin.RunContext) plugin.Outcome {
		return plugin.Success(in)
	}))
	scenario := domain.NewScenario("ns", "drill", "Drill", 1, []domain.StageBoundary{{Name: "ingest"}})

	err := WithLogScope(testContext(&buf), "drill", func(s *LogScope) error {
		captured = s
		report := orchestrator.RunChaosScenario(context.Background(), "ns", scenario, reg, orchestrator.Options{
			Observers: []orchestrator.Observer{s.Observe},
		})
		require.Equal(t, domain.RunStatusComplete, report.Status)
		require.Equal(t, 4, s.Buffer.Len())
		return nil
	})

	require.NoError(t, err)
	assert.True(t, captured.Disposed())
	assert.True(t, captured.Buffer.Disposed())
	assert.Equal(t, 0, captured.Buffer.Len())
	assert.Contains(t, buf.String(), "scope closed")
	assert.Contains(t, buf.String(), "events=4")
}

func TestWithLogScope_DisposesOnError(t *testing.T) {
	var captured *LogScope
	boom := errors.New("boom")

	err := WithLogScope(context.Background(), "failing", func(s *LogScope) error {
		captured = s
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.True(t, captured.Disposed())
}

func TestWithLogScope_DisposesOnPanic(t *testing.T) {
	var captured *LogScope

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = WithLogScope(context.Background(), "panicking", func(s *LogScope) error {
			captured = s
			panic("kaboom")
		})
	})

	require.NotNil(t, captured)
	assert.True(t, captured.Disposed())
	assert.True(t, captured.Buffer.Disposed())
}

func TestLogScope_ObserveAfterDispose(t *testing.T) {
	var buf bytes.Buffer
	s := Open(testContext(&buf), "late")
	s.Dispose()
	s.Dispose()

	s.Observe(orchestrator.Event{Kind: orchestrator.EventRunStarted})

	assert.Equal(t, 0, s.Buffer.Len())
	assert.Contains(t, buf.String(), "event after scope closed")
}

func TestEventBuffer(t *testing.T) {
	b := NewEventBuffer()
	require.NoError(t, b.Append(orchestrator.Event{Kind: orchestrator.EventRunStarted}))

	events := b.Events()
	events[0].Kind = orchestrator.EventRunFailed
	assert.Equal(t, orchestrator.EventRunStarted, b.Events()[0].Kind)

	b.Dispose()
	assert.ErrorIs(t, b.Append(orchestrator.Event{}), ErrDisposed)
}

func TestLogScope_DisposedConcurrent(t *testing.T) {
	s := Open(context.Background(), "concurrent")

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.Dispose()
		}()
		go func() {
			defer wg.Done()
			_ = s.Disposed()
		}()
	}
	wg.Wait()

	assert.True(t, s.Disposed())
	assert.Equal(t, s.Buffer.Disposed(), s.Disposed())
}
