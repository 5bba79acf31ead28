package telemetry

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"DEBUG": slog.LevelDebug,
		"debug": slog.LevelDebug,
		"WARN":  slog.LevelWarn,
		"ERROR": slog.LevelError,
		"":      slog.LevelInfo,
		"bogus": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLogger_Text(t *testing.T) {
	var buf bytes.Buffer
	logger := WithRunID(NewLogger(&buf, slog.LevelInfo, "text"), "run-1")

	logger.Info("hello")

	if !strings.Contains(buf.String(), "run_id=run-1") {
		t.Errorf("expected run_id in output, got %q", buf.String())
	}
}

func TestFromContext(t *testing.T) {
	logger := NewLogger(&bytes.Buffer{}, slog.LevelInfo, "json")
	ctx := WithLogger(context.Background(), logger)

	if FromContext(ctx) != logger {
		t.Error("expected logger from context")
	}
	if FromContext(context.Background()) != slog.Default() {
		t.Error("expected default logger")
	}
}

func TestMetrics_Record(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	start := time.Now()
	m.Record("run-started", "r1", "drill", "", start)
	m.Record("stage-started", "r1", "drill", "ingest", start)
	m.Record("stage-complete", "r1", "drill", "ingest", start.Add(50*time.Millisecond))
	m.Record("stage-started", "r1", "drill", "inject", start)
	m.Record("stage-failed", "r1", "drill", "inject", start)

	if got := testutil.ToFloat64(m.activeRuns); got != 1 {
		t.Errorf("expected 1 active run, got %v", got)
	}

	m.Record("run-failed", "r1", "drill", "", start)

	if got := testutil.ToFloat64(m.stages.WithLabelValues("ingest", "complete")); got != 1 {
		t.Errorf("expected 1 complete ingest, got %v", got)
	}
	if got := testutil.ToFloat64(m.stages.WithLabelValues("inject", "failed")); got != 1 {
		t.Errorf("expected 1 failed inject, got %v", got)
	}
	if got := testutil.ToFloat64(m.runs.WithLabelValues("drill", "failed")); got != 1 {
		t.Errorf("expected 1 failed run, got %v", got)
	}
	if got := testutil.ToFloat64(m.activeRuns); got != 0 {
		t.Errorf("expected 0 active runs, got %v", got)
	}
	if got := testutil.CollectAndCount(m.stageDuration); got != 2 {
		t.Errorf("expected 2 duration series, got %d", got)
	}
}
