package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"finanzaflow/internal/config"
	"finanzaflow/internal/events"
	"finanzaflow/internal/export"
	applog "finanzaflow/internal/log"
	"finanzaflow/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := applog.New(applog.DefaultConfig())
	applog.SetDefault(logger)

	logger.Info("Starting sync-worker")

	// Load configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the sync worker")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize the Google Sheets exporter
	exporter, err := export.NewFromEnv(ctx)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets exporter", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets exporter initialized",
		"spreadsheet_id", cfg.GoogleSpreadsheetID,
		"sheet", cfg.GoogleSheetName)

	// Initialize AMQP client for consuming ledger events
	client, err := events.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	exportWorker := worker.NewExportWorker(exporter)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		// Reconnect loop: a dropped channel ends Consume, so retry until
		// shutdown.
		for {
			err := client.Consume(ctx, func(e *events.LedgerEvent) error {
				return exportWorker.HandleEvent(ctx, e)
			})
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			logger.Error("Event consumption stopped, retrying",
				"error", err,
				"retry_in", cfg.ConsumeRetryInterval)

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(cfg.ConsumeRetryInterval):
			}
		}
	})

	if err := g.Wait(); err != nil {
		logger.Error("Worker error", "error", err)
		os.Exit(1)
	}

	logger.Info("Sync-worker stopped gracefully")
}
