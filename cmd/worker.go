package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"items-planning/core/queue"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// workerCmd consumes ItemChanged tasks from the queue.
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume queued reconciliations",
	Long: `Runs the queue worker. Retryable failures (remote errors, lock conflicts)
are redelivered with backoff, anything else is archived by the queue.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rt, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()

		if !rt.cfg.Queue.Enabled {
			return errors.New("queue is disabled, set QUEUE_ENABLED=true")
		}

		rt.logger.Info("Starting queue worker",
			zap.String("queue", rt.cfg.Queue.Name),
			zap.Int("concurrency", rt.cfg.Queue.Concurrency))
		return queue.NewWorker(rt.cfg.Queue, rt.engine, rt.logger).Run(ctx)
	},
}

func init() {
	RootCmd.AddCommand(workerCmd)
}
