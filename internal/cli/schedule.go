package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/shaiso/Chaosflow/internal/domain"
	"github.com/shaiso/Chaosflow/internal/orchestrator"
	"github.com/shaiso/Chaosflow/internal/scenario"
	"github.com/shaiso/Chaosflow/internal/scheduler"
	"github.com/shaiso/Chaosflow/internal/telemetry"
)

// EnvMetricsPort — переменная окружения с портом /metrics.
const EnvMetricsPort = "CHAOSCTL_METRICS_PORT"

const defaultMetricsPort = "9464"

// NewScheduleCmd создаёт команду периодического запуска сценария.
func NewScheduleCmd(envFn func() *Env) *cobra.Command {
	var (
		cronExpr    string
		everySec    int
		timezone    string
		maxRuns     int
		metricsPort string
		dryRun      bool
		publish     bool
	)

	cmd := &cobra.Command{
		Use:   "schedule FILE",
		Short: "Run a scenario on a cron schedule and expose /metrics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFn()
			out := env.Output
			path := args[0]

			// файл проверяется сразу, но перечитывается на каждом запуске
			first, err := scenario.Load(path, env.Catalog)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			metrics := telemetry.NewMetrics(reg)

			var observers []orchestrator.Observer
			if publish {
				obs, closeFn, err := publishObserver(ctx, env, first.Scenario)
				if err != nil {
					return err
				}
				defer closeFn()
				observers = append(observers, obs)
			}

			runFn := func(ctx context.Context, runID domain.RunID) (*orchestrator.Report, error) {
				loaded, err := scenario.Load(path, env.Catalog)
				if err != nil {
					return nil, err
				}
				opts := orchestrator.Options{
					DryRun:           dryRun,
					Tags:             loaded.File.Tags,
					PreferredActions: loaded.File.PreferredActions,
					RunID:            runID,
					Logger:           env.Logger,
					Observers: append([]orchestrator.Observer{
						orchestrator.MetricsObserver(metrics, loaded.Scenario.ID.String()),
						out.Event,
					}, observers...),
				}
				return orchestrator.RunChaosScenario(ctx, loaded.Scenario.Namespace, loaded.Scenario, loaded.Registry, opts), nil
			}

			sched, err := scheduler.New(scheduler.Config{
				Schedule: scheduler.Schedule{
					Name:        first.Scenario.ID.String(),
					CronExpr:    cronExpr,
					IntervalSec: everySec,
					Timezone:    timezone,
				},
				Run:     runFn,
				Logger:  env.Logger,
				MaxRuns: maxRuns,
			})
			if err != nil {
				return err
			}

			if metricsPort == "" {
				metricsPort = os.Getenv(EnvMetricsPort)
			}
			if metricsPort == "" {
				metricsPort = defaultMetricsPort
			}

			srv := &http.Server{
				Addr:              net.JoinHostPort("", metricsPort),
				Handler:           metricsMux(reg),
				ReadHeaderTimeout: 5 * time.Second,
			}
			go func() {
				env.Logger.Info("metrics listening", "addr", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					env.Logger.Error("metrics server failed", "error", err)
				}
			}()
			defer func() {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				srv.Shutdown(shutdownCtx)
			}()

			out.Success(fmt.Sprintf("Scheduled %s, next run at %s", first.Scenario.ID, sched.NextDue().Format(time.RFC3339)))
			return sched.Run(ctx, time.Second)
		},
	}

	cmd.Flags().StringVar(&cronExpr, "cron", "", "Cron expression (5 fields or @every/@hourly descriptors)")
	cmd.Flags().IntVar(&everySec, "every", 0, "Interval between runs in seconds (used when --cron is empty)")
	cmd.Flags().StringVar(&timezone, "tz", "UTC", "IANA timezone for --cron")
	cmd.Flags().IntVar(&maxRuns, "max-runs", 0, "Stop after this many runs (0 = forever)")
	cmd.Flags().StringVar(&metricsPort, "metrics-port", "", "Port for /metrics and /healthz (default $"+EnvMetricsPort+" or "+defaultMetricsPort+")")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Do not call adapters, use stage examples as outputs")
	cmd.Flags().BoolVar(&publish, "publish", false, "Publish run events to RabbitMQ")

	return cmd
}

// metricsMux — /healthz + /metrics.
func metricsMux(reg *prometheus.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return mux
}
