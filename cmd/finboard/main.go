package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"finboard/internal/amqp"
	"finboard/internal/backend"
	"finboard/internal/cli"
	"finboard/internal/dashboard"
	apphttp "finboard/internal/http"
	applog "finboard/internal/log"
	"finboard/internal/worker"
)

func main() {
	cli.LoadEnvFile()

	cfg, logger, err := cli.LoadAndValidateConfig(applog.ComponentApp, nil)
	if err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
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
		logger.Error("Failed to initialize backend", applog.FieldError, err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer res.Close()

	collab, err := cli.NewCollaborators(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize categorization", applog.FieldError, err)
		os.Exit(1)
	}
	defer collab.Caches.Stop()

	opts := dashboard.Options{
		Categorizer: collab.Categorizer,
		Narrator:    collab.Narrator,
		Logger:      logger,
	}
	if res.Store != nil {
		opts.Store = res.Store
	}
	svc := dashboard.NewService(opts)
	if err := svc.Restore(ctx); err != nil {
		logger.Error("Failed to restore workspaces", applog.FieldError, err)
		os.Exit(1)
	}

	serverOpts := apphttp.Options{
		Service:           svc,
		Logger:            logger,
		MaxUploadBytes:    cfg.MaxUploadBytes,
		ImportTimeout:     cfg.ImportTimeout,
		RequestsPerMinute: cfg.RateLimitPerMinute,
		Ready:             map[string]apphttp.ReadinessCheck{},
	}
	if res.Ping != nil {
		serverOpts.Ready[res.Type.String()] = res.Ping
	}
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", applog.FieldError, err)
			os.Exit(1)
		}
		defer client.Close()
		serverOpts.Publisher = client
		logger.Info("Sheets exports are queued", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
	} else {
		serverOpts.Exporter = worker.NewExportWorker(svc, res.Writer,
			logger.WithComponent(applog.ComponentWorker).Logger)
		logger.Info("Sheets exports run inline", "spreadsheet", cfg.SheetsEnabled())
	}

	srv := apphttp.NewServer(":"+cfg.Port, serverOpts)
	srv.MaxHeaderBytes = 1 << 16

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	}()

	logger.Info("Starting finboard server",
		"port", cfg.Port,
		"backend", cfg.DataBackend,
		"categorizer", cfg.CategorizerBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}
