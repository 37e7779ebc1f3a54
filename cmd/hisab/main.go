package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rashidulhasanrafi/hisab/internal/amqp"
	"github.com/rashidulhasanrafi/hisab/internal/config"
	apphttp "github.com/rashidulhasanrafi/hisab/internal/http"
	"github.com/rashidulhasanrafi/hisab/internal/insights"
	"github.com/rashidulhasanrafi/hisab/internal/ledger"
	applog "github.com/rashidulhasanrafi/hisab/internal/log"
	"github.com/rashidulhasanrafi/hisab/internal/storage"
	"github.com/rashidulhasanrafi/hisab/internal/storage/memory"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{
		Level:     slog.LevelInfo,
		Component: applog.ComponentApp,
	})
	applog.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	// Select the KV backend.
	var kv storage.KV
	switch cfg.DataBackend {
	case "sqlite":
		sq, err := storage.NewSQLiteKV(cfg.SQLiteDBPath)
		if err != nil {
			logger.Error("Failed to open SQLite store", "error", err, "path", cfg.SQLiteDBPath)
			os.Exit(1)
		}
		defer sq.Close()
		kv = sq
		logger.Info("Initialized SQLite backend", "path", cfg.SQLiteDBPath)
	default:
		kv = memory.New()
		logger.Info("Initialized memory backend")
	}

	// Ledger events feed the backup mirror; the server runs fine without a
	// broker, it just mirrors nothing.
	var events ledger.EventSink
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, ledger events disabled", "error", err)
		} else {
			defer client.Close()
			events = client
			logger.Info("AMQP publisher initialized", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	var tips apphttp.TipGenerator
	if cfg.InsightsEnabled() {
		advisor, err := insights.NewAdvisor(context.Background())
		if err != nil {
			logger.Warn("Insights unavailable, serving fallback tips", "error", err)
		} else {
			tips = advisor
			logger.Info("Gemini tip generator initialized")
		}
	}

	srv, err := apphttp.NewServer(context.Background(), apphttp.Options{
		Addr:   ":" + cfg.Port,
		KV:     kv,
		Events: events,
		Tips:   tips,
	})
	if err != nil {
		logger.Error("Failed to initialize server", "error", err)
		os.Exit(1)
	}

	srv.ReadTimeout = 10 * time.Second
	srv.WriteTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting hisab server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
