package main

import (
	"context"
	"errors"
	"os"

	"dues/internal/amqp"
	"dues/internal/backend"
	"dues/internal/cli"
	applog "dues/internal/log"
	"dues/internal/worker"
)

// dues-events tails the member change feed and logs each member's due status
// as recorded in the shared store.
func main() {
	cli.LoadEnvFile()
	cfg := cli.MustLoadConfig()
	logger := cli.SetupLogger(cfg).WithComponent(applog.ComponentEvents)

	if !cfg.EventsEnabled() {
		logger.Error("AMQP_URL is required for the event consumer")
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(context.Background())
	defer stop()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	// The consumer only reads the store; it opens its own broker connection.
	backendCfg.AMQPURL = ""
	result, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err)
		os.Exit(1)
	}
	defer result.Cleanup()

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	w := worker.NewEventWorker(result.Store, nil)
	logger.Info("Starting dues-events", "queue", cfg.AMQPQueue, "backend", cfg.DataBackend)

	if err := client.ConsumeWithRetry(ctx, w.HandleMemberEvent); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Event consumer stopped")
}
