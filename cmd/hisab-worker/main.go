package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/rashidulhasanrafi/hisab/internal/amqp"
	"github.com/rashidulhasanrafi/hisab/internal/config"
	applog "github.com/rashidulhasanrafi/hisab/internal/log"
	"github.com/rashidulhasanrafi/hisab/internal/sheets"
	gsheet "github.com/rashidulhasanrafi/hisab/internal/sheets/google"
	sheetsmem "github.com/rashidulhasanrafi/hisab/internal/sheets/memory"
	"github.com/rashidulhasanrafi/hisab/internal/storage"
	"github.com/rashidulhasanrafi/hisab/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentWorker,
	})
	applog.SetDefault(logger)

	logger.Info("Starting hisab-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required for the mirror worker")
		os.Exit(1)
	}

	// The worker reads ledger state from the same SQLite file the server
	// writes to.
	kv, err := storage.NewSQLiteKV(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open SQLite store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer kv.Close()

	var mirror sheets.LedgerMirror
	if cfg.GoogleSpreadsheetID != "" {
		client, err := gsheet.NewFromEnv(context.Background())
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		mirror = client
		logger.Info("Google Sheets mirror initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	} else {
		// Dry-run sink: events are consumed and profiles are loaded, but
		// nothing leaves the process.
		mirror = sheetsmem.New()
		logger.Warn("No GOOGLE_SPREADSHEET_ID configured, mirroring to memory only")
	}

	w := worker.NewMirrorWorker(kv, mirror)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Catch up on anything missed while the worker was down.
	if err := w.MirrorAll(ctx); err != nil {
		logger.Error("Startup mirror pass failed", "error", err)
		// Keep running; event consumption may still succeed.
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqp.ConsumeForever(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, w.HandleLedgerEvent)
	})
	g.Go(func() error {
		return w.RunPeriodic(ctx, cfg.MirrorInterval)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
