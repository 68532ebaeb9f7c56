package main

import (
	"context"
	"os"
	"time"

	appamqp "carteira/internal/amqp"
	"carteira/internal/cli"
	gsheet "carteira/internal/sheets/google"
	"carteira/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting carteira-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res := cli.InitStore(ctx, logger, cfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Store cleanup failed", "error", err)
		}
	}()

	// Google Sheets client is mandatory for the worker: it exists to export.
	if !cfg.SheetsConfigured() {
		logger.Error("Google Sheets not configured (set GOOGLE_SPREADSHEET_ID and service account credentials)")
		os.Exit(1)
	}
	sheetsClient, err := gsheet.NewFromEnv(ctx)
	if err != nil {
		logger.Error("Failed to initialize Google Sheets client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Sheets client initialized", "spreadsheet_id", cfg.GoogleSpreadsheetID)

	amqpClient, err := appamqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	syncWorker := worker.NewSyncWorker(res.Store, sheetsClient)

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- amqpClient.ConsumeEntrySync(ctx, func(msg *appamqp.EntrySyncMessage) error {
			return syncWorker.HandleSyncMessage(ctx, msg)
		})
	}()

	// Cancelling ctx stops the consumer, which then drains via consumeErr.
	sigCtx, done := cli.GracefulShutdown(logger, 30*time.Second, cancel)

	select {
	case err := <-consumeErr:
		if err != nil && err != context.Canceled {
			logger.Error("Message consumption failed", "error", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		<-done
	}
	logger.Info("Worker shutdown complete")
}
