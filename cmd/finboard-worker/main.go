package main

import (
	"context"
	"errors"
	"os"

	"finboard/internal/amqp"
	"finboard/internal/backend"
	"finboard/internal/cli"
	applog "finboard/internal/log"
	"finboard/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, logger, err := cli.LoadAndValidateConfig(applog.ComponentWorker, nil)
	if err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required to run the export worker")
		os.Exit(1)
	}

	ctx, cancel := cli.SignalContext(logger)
	defer cancel()

	backendConfig, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, backendConfig)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err)
		os.Exit(1)
	}
	defer res.Close()
	if res.Store == nil {
		logger.Error("The export worker needs a persistent backend", "backend", res.Type)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	w := worker.NewExportWorker(worker.StoreViews{Store: res.Store}, res.Writer, logger.Logger)
	logger.Info("Starting finboard export worker",
		"queue", cfg.AMQPQueue,
		"spreadsheet", cfg.SheetsEnabled())

	if err := client.ConsumeExportRequests(ctx, w.HandleExportRequest); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
