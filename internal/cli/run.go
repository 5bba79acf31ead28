package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/Chaosflow/internal/domain"
	"github.com/shaiso/Chaosflow/internal/mq"
	"github.com/shaiso/Chaosflow/internal/orchestrator"
	"github.com/shaiso/Chaosflow/internal/scenario"
	"github.com/shaiso/Chaosflow/internal/scope"
)

// ErrRunFailed — run завершился со статусом failed.
var ErrRunFailed = errors.New("run failed")

// errRunTimeout — причина отмены по --timeout.
var errRunTimeout = errors.New("run timeout exceeded")

type runFlags struct {
	dryRun  bool
	tags    []string
	prefer  []string
	runID   string
	timeout time.Duration
	publish bool
	sets    []string
}

// NewRunCmd создаёт команду запуска сценария.
func NewRunCmd(envFn func() *Env) *cobra.Command {
	var f runFlags

	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Run a chaos scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFn()
			out := env.Output

			vars, err := parseVars(f.sets)
			if err != nil {
				return err
			}

			loaded, err := scenario.LoadWith(args[0], env.Catalog, vars)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			if f.timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeoutCause(ctx, f.timeout, errRunTimeout)
				defer cancel()
			}

			opts, closeFn, err := f.options(ctx, env, loaded)
			if err != nil {
				return err
			}
			defer closeFn()

			var report *orchestrator.Report
			label := "run " + loaded.Scenario.ID.String()
			scopeErr := scope.WithLogScope(ctx, label, func(s *scope.LogScope) error {
				opts.Observers = append(opts.Observers, s.Observe, out.Event)
				report = orchestrator.RunChaosScenario(ctx, loaded.Scenario.Namespace, loaded.Scenario, loaded.Registry, opts)
				return nil
			})
			if scopeErr != nil {
				return scopeErr
			}

			printReport(out, report)
			return reportError(report)
		},
	}

	cmd.Flags().BoolVar(&f.dryRun, "dry-run", false, "Do not call adapters, use stage examples as outputs")
	cmd.Flags().StringSliceVar(&f.tags, "tag", nil, "Run tag passed to adapters (repeatable)")
	cmd.Flags().StringSliceVar(&f.prefer, "prefer", nil, "Preferred action hint passed to adapters (repeatable)")
	cmd.Flags().StringVar(&f.runID, "run-id", "", "Run ID (generated if empty)")
	cmd.Flags().DurationVar(&f.timeout, "timeout", 0, "Cancel the run after this duration")
	cmd.Flags().StringSliceVar(&f.sets, "set", nil, "Scenario variable as KEY=VALUE (repeatable), overrides vars")
	cmd.Flags().BoolVar(&f.publish, "publish", false, "Publish run events to RabbitMQ ("+mq.EnvURL+")")

	return cmd
}

// parseVars разбирает значения --set KEY=VALUE.
func parseVars(sets []string) (map[string]any, error) {
	if len(sets) == 0 {
		return nil, nil
	}
	vars := make(map[string]any, len(sets))
	for _, kv := range sets {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set format %q, expected KEY=VALUE", kv)
		}
		vars[key] = value
	}
	return vars, nil
}

// options собирает orchestrator.Options. closeFn освобождает соединение с брокером.
func (f *runFlags) options(ctx context.Context, env *Env, loaded *scenario.Loaded) (orchestrator.Options, func(), error) {
	tags := f.tags
	if len(tags) == 0 {
		tags = loaded.File.Tags
	}
	prefer := f.prefer
	if len(prefer) == 0 {
		prefer = loaded.File.PreferredActions
	}

	opts := orchestrator.Options{
		DryRun:           f.dryRun,
		Tags:             tags,
		PreferredActions: prefer,
		RunID:            domain.RunIDFrom(f.runID),
		Logger:           env.Logger,
	}

	closeFn := func() {}
	if !f.publish {
		return opts, closeFn, nil
	}

	obs, closeFn, err := publishObserver(ctx, env, loaded.Scenario)
	if err != nil {
		return opts, func() {}, err
	}
	opts.Observers = append(opts.Observers, obs)
	return opts, closeFn, nil
}

// publishObserver подключается к RabbitMQ и возвращает Observer, публикующий события.
func publishObserver(ctx context.Context, env *Env, sc *domain.Scenario) (orchestrator.Observer, func(), error) {
	conn, err := mq.Dial(mq.URLFromEnv(), env.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to broker: %w", err)
	}
	if err := mq.SetupTopology(ctx, conn); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("setup topology: %w", err)
	}

	sink := mq.NewEventSink(mq.NewPublisher(conn, env.Logger), sc.Namespace, sc.ID, env.Logger)
	// события публикуются и после отмены run
	return sink.Observer(context.WithoutCancel(ctx)), func() { conn.Close() }, nil
}

func printReport(out *Output, report *orchestrator.Report) {
	if out.JSONMode() {
		out.JSON(report)
		return
	}

	headers := []string{"STAGE", "STATUS", "STARTED", "ENDED", "ERROR"}
	rows := make([][]string, len(report.Trace))
	for i, tr := range report.Trace {
		started := tr.StartedAt
		rows[i] = []string{tr.Stage, tr.Status.String(), formatTime(&started), formatTime(tr.EndedAt), orDash(tr.Error)}
	}
	out.Table(headers, rows)

	out.Success(fmt.Sprintf("Run %s: %s (progress %d%%)", report.RunID, report.Status, report.Progress))
}

func reportError(report *orchestrator.Report) error {
	if report.Status != domain.RunStatusFailed {
		return nil
	}
	if stage, reason, ok := report.FailedStage(); ok {
		return fmt.Errorf("%w: stage %s: %s", ErrRunFailed, stage, reason)
	}
	return ErrRunFailed
}
