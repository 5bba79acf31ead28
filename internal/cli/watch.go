package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaiso/Chaosflow/internal/domain"
	"github.com/shaiso/Chaosflow/internal/mq"
)

// NewWatchCmd создаёт команду чтения событий из RabbitMQ.
func NewWatchCmd(envFn func() *Env) *cobra.Command {
	var scenarioID string
	var limit int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream published run events from RabbitMQ",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env := envFn()
			out := env.Output

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx, cancel := context.WithCancel(ctx)
			defer cancel()

			conn, err := mq.Dial(mq.URLFromEnv(), env.Logger)
			if err != nil {
				return fmt.Errorf("connect to broker: %w", err)
			}
			defer conn.Close()

			if err := mq.SetupTopology(ctx, conn); err != nil {
				return fmt.Errorf("setup topology: %w", err)
			}

			queue, err := mq.DeclareWatchQueue(ctx, conn, mq.ScenarioPattern(domain.NewScenarioID(scenarioID)))
			if err != nil {
				return err
			}

			seen := 0
			consumer := mq.NewConsumer(conn, env.Logger, mq.ConsumerConfig{
				Queue:    queue,
				Prefetch: 16,
				Handler: func(_ context.Context, d *mq.Delivery) error {
					payload, err := d.DecodeEvent()
					if err != nil {
						// чужое сообщение: подтверждаем и пропускаем
						env.Logger.Warn("skip message", "message_id", d.Message.ID, "error", err)
						return nil
					}

					if out.JSONMode() {
						out.JSON(payload)
					} else {
						out.Event(payload.Event)
					}

					seen++
					if limit > 0 && seen >= limit {
						cancel()
					}
					return nil
				},
			})

			out.Success(fmt.Sprintf("Watching %s (queue %s)", mq.ExchangeEvents, queue))

			if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&scenarioID, "scenario", "", "Only events of this scenario")
	cmd.Flags().IntVar(&limit, "limit", 0, "Stop after this many events (0 = until interrupted)")

	return cmd
}
