package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"agrly-admin/internal/audit"
	"agrly-admin/internal/config"
	gsheet "agrly-admin/internal/export/google"
	"agrly-admin/internal/platform/agrly"
	"agrly-admin/internal/session"
	"agrly-admin/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting agrly-report")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	if cfg.GoogleSpreadsheetID == "" {
		logger.Error("GOOGLE_SPREADSHEET_ID is required for the report worker")
		os.Exit(1)
	}

	// The worker shares the session database with the dashboard, so it
	// reuses the admin's token and tracks its export cursor there.
	store, err := session.Open(cfg.SessionDBPath)
	if err != nil {
		logger.Error("Failed to open session store", "error", err, "path", cfg.SessionDBPath)
		os.Exit(1)
	}
	defer store.Close()

	sess := agrly.NewSession(store)
	if !sess.Authenticated() {
		logger.Warn("No session token found; exports will fail until an admin signs in",
			"session_db", cfg.SessionDBPath)
	}
	client := agrly.New(cfg.BaseURL, sess)

	exporter, err := gsheet.NewFromEnv(context.Background())
	if err != nil {
		logger.Error("Failed to initialize Google Sheets exporter", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets exporter initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	reportWorker := worker.NewReportWorker(client, exporter, store, cfg.ExportBatchSize)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Catch up on anything created while the worker was down.
	if err := reportWorker.ExportNewTransactions(ctx); err != nil {
		logger.Error("Startup export failed", "error", err)
		// Don't exit - the periodic tick will retry.
	}

	// Consume audit events when AMQP is configured; the periodic tick below
	// covers the no-AMQP deployment.
	if cfg.AMQPURL != "" {
		amqpClient, err := audit.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("Failed to initialize AMQP client", "error", err)
			os.Exit(1)
		}
		defer amqpClient.Close()

		go func() {
			if err := amqpClient.ConsumeEvents(ctx, reportWorker.HandleAuditEvent); err != nil {
				if err != context.Canceled {
					logger.Error("Audit event consumption failed", "error", err)
				}
				cancel()
			}
		}()
	} else {
		logger.Info("Audit event consumption disabled - no AMQP_URL provided")
	}

	ticker := time.NewTicker(cfg.ExportInterval)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := reportWorker.ExportNewTransactions(ctx); err != nil {
					logger.Error("Periodic export failed", "error", err)
				}
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	logger.Info("Worker stopped")
}
