package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"splitledger/internal/amqp"
	"splitledger/internal/config"
	"splitledger/internal/log"
	"splitledger/internal/services"
	"splitledger/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	log.Setup()

	slog.Info("Starting recurring-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	sqliteRepo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		slog.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer sqliteRepo.Close()

	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			slog.Warn("Failed to initialize AMQP client, continuing in SQLite-only mode", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
		}
	} else {
		slog.Info("AMQP disabled - generated occurrences will not be published")
	}

	processor := services.NewRecurringProcessor(sqliteRepo, amqpClient)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slog.Info("Recurring expense processor configured",
		"interval", cfg.RecurrenceInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	ticker := time.NewTicker(cfg.RecurrenceInterval)
	defer ticker.Stop()

	// Run once on startup so a restart never misses today's occurrences.
	slog.Info("Running initial recurring expense processing...")
	if count, err := processor.ProcessDueExpenses(ctx, time.Now()); err != nil {
		slog.Error("Initial processing failed", "error", err)
	} else {
		slog.Info("Initial processing complete", "occurrences_generated", count)
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				count, err := processor.ProcessDueExpenses(ctx, now)
				if err != nil {
					slog.Error("Periodic processing failed", "error", err)
					continue
				}
				slog.Info("Periodic processing complete",
					"occurrences_generated", count,
					"next_check", now.Add(cfg.RecurrenceInterval).Format("15:04:05"))
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		slog.Info("Context cancelled")
	}

	cancel()
	slog.Info("Recurring-worker shutdown complete")
}
