package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"calorie/internal/amqp"
	"calorie/internal/cli"
	"calorie/internal/log"
	"calorie/internal/sheets"
	"calorie/internal/sheets/google"
	"calorie/internal/storage"
	"calorie/internal/worker"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig()
	logger := cli.SetupLogger(cfg.LogLevel, log.ComponentWorker)

	logger.Info("Starting calorie-worker")

	if !cfg.AMQPEnabled() {
		logger.Error("AMQP_URL is required to run the worker")
		os.Exit(1)
	}

	journal, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite journal", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer journal.Close()

	var exporter sheets.JournalWriter
	if cfg.SheetsEnabled() {
		client, err := google.New(context.Background(), google.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsFile: cfg.GoogleServiceAccountFile,
			CredentialsJSON: cfg.GoogleServiceAccountJSON,
		})
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		exporter = client
		logger.Info("Google Sheets export enabled",
			"spreadsheet_id", cfg.GoogleSpreadsheetID,
			"sheet", cfg.GoogleSheetName)
	} else {
		logger.Info("Google Sheets export disabled - no GOOGLE_SPREADSHEET_ID provided")
	}

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	w := worker.NewJournalWorker(journal, exporter)
	ctx, done := cli.GracefulShutdown(logger, shutdownTimeout, nil)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeTrackerEvents(gctx, w.HandleEvent)
	})
	g.Go(func() error {
		return w.RunStats(gctx, cfg.StatsInterval)
	})

	logger.Info("Worker running",
		"queue", cfg.AMQPQueue,
		"stats_interval", cfg.StatsInterval)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Worker stopped gracefully")
}
