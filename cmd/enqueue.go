package cmd

import (
	"context"
	"fmt"

	"items-planning/core/config"
	"items-planning/core/logger"
	"items-planning/core/queue"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// enqueueCmd publishes an ItemChanged event for the workers.
var enqueueCmd = &cobra.Command{
	Use:   "enqueue <id>",
	Short: "Queue a reconciliation for one item",
	Long:  `Publishes an item changed event to the task queue. Requires a reachable Redis; the queue does not need to be enabled for the API.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ev, err := itemEvent(args[0])
		if err != nil {
			return err
		}

		cfg, err := config.LoadConfig(".")
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		defer logg.Sync()

		publisher := queue.NewPublisher(cfg.Queue)
		defer publisher.Close()

		taskID, err := publisher.Publish(context.Background(), ev)
		if err != nil {
			return err
		}
		logg.Info("Reconciliation queued",
			zap.Int("item_id", ev.ItemID),
			zap.String("task_id", taskID),
			zap.String("queue", cfg.Queue.Name))
		return nil
	},
}

func init() {
	addItemEventFlags(enqueueCmd)
	RootCmd.AddCommand(enqueueCmd)
}
