package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"items-planning/core/loader"
	"items-planning/core/logger"
	"items-planning/core/middleware/auth"
	"items-planning/core/middleware/rayid"
	"items-planning/core/queue"
	"items-planning/feature/integrity"
	"items-planning/feature/planning"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	_ "items-planning/docs/swagger"
)

var withWorker bool

// @title Items Planning API
// @version 1.0
// @description API for reconciling item planning cases with the remote form service.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the items planning server",
	Long: `Starts the HTTP server and initializes all enabled features.
With the queue enabled, reconcile requests are enqueued and --worker also
consumes them in this process.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// 1. Configuration, logger, database and engine
		rt, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer rt.Close()
		logg := rt.logger
		cfg := rt.cfg

		// 2. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We log our own startup message
			ReadTimeout:           cfg.Server.ReadTimeout(),
			WriteTimeout:          cfg.Server.WriteTimeout(),
		})

		// 3. Register Features
		var planningOpts []planning.Option
		if cfg.Queue.Enabled {
			publisher := queue.NewPublisher(cfg.Queue)
			defer publisher.Close()
			planningOpts = append(planningOpts, planning.WithPublisher(publisher))
		}
		if rt.archiver != nil {
			planningOpts = append(planningOpts, planning.WithReports(rt.archiver))
		}

		mgr := loader.NewManager(logg)
		mgr.Register(planning.NewFeature(rt.store, rt.engine, logg, planningOpts...))
		mgr.Register(integrity.NewFeature(rt.storage, cfg.Storage, rt.db, rt.remote, logg))

		// 4. Middleware Registration
		// RayID must be first to trace everything
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		// Swagger Documentation (Public)
		app.Get("/swagger/*", swagger.HandlerDefault)

		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 5. Load Features
		if err := mgr.LoadAll(app); err != nil {
			return err
		}

		// 6. Optional embedded worker
		errCh := make(chan error, 2)
		if withWorker {
			if !cfg.Queue.Enabled {
				logg.Warn("Worker requested but the queue is disabled, skipping")
			} else {
				worker := queue.NewWorker(cfg.Queue, rt.engine, logg)
				go func() {
					logg.Info("Starting embedded queue worker", zap.String("queue", cfg.Queue.Name))
					errCh <- worker.Run(ctx)
				}()
			}
		}

		// 7. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(cfg.Server.Addr()); err != nil {
				errCh <- fmt.Errorf("server failed: %w", err)
			}
		}()

		// 8. Graceful Shutdown
		select {
		case <-ctx.Done():
		case err := <-errCh:
			if err != nil {
				logg.Error("Component stopped", zap.Error(err))
			}
			stop()
		}
		logg.Info("Shutting down server...")
		return app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
	startCmd.Flags().BoolVar(&withWorker, "worker", false, "Also consume queued reconciliations in this process")
}
