package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/amqp"
	"fintrack/internal/config"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	// Setup structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting recurring-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	// AMQP client so materialized transactions flow into the export pipeline
	var events services.Events
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing in SQLite-only mode", "error", err)
		} else {
			defer amqpClient.Close()
			events = amqpClient
		}
	} else {
		logger.Info("AMQP disabled - materialized transactions will not sync")
	}

	recurring := services.NewRecurringService(repo, events)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Recurring scan configured",
		"interval", cfg.RecurringScanInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	ticker := time.NewTicker(cfg.RecurringScanInterval)
	defer ticker.Stop()

	// Run an initial pass on startup so nothing waits a full interval
	logger.Info("Running initial due-scan...")
	if result, err := recurring.ProcessDue(ctx, time.Now()); err != nil {
		logger.Error("Initial due-scan failed", "error", err)
	} else {
		logger.Info("Initial due-scan complete",
			"created", result.Created, "failed", len(result.FailedIDs))
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				logger.Info("Processing due recurring templates...")
				result, err := recurring.ProcessDue(ctx, now)
				if err != nil {
					logger.Error("Periodic due-scan failed", "error", err)
					continue
				}
				logger.Info("Periodic due-scan complete",
					"created", result.Created,
					"failed", len(result.FailedIDs),
					"next_check", now.Add(cfg.RecurringScanInterval).Format("15:04:05"))
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

	logger.Info("Shutting down recurring-worker...")
	cancel()
	logger.Info("Recurring-worker shutdown complete")
}
