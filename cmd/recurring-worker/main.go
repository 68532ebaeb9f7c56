package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/robfig/cron/v3"

	appamqp "carteira/internal/amqp"
	"carteira/internal/cli"
	"carteira/internal/services"
	"carteira/internal/store"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()

	logger.Info("Starting recurring-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res := cli.InitStore(ctx, logger, cfg)
	defer func() {
		if err := res.Cleanup(); err != nil {
			logger.Error("Store cleanup failed", "error", err)
		}
	}()

	// AMQP is optional: generated installments still land in the store,
	// they just will not be exported until the next manual sync.
	var amqpClient *appamqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = appamqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing in store-only mode", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized - new installments will sync via carteira-worker")
		}
	}

	entryService := services.NewEntryService(res.Store, amqpClient)
	defer entryService.Close()

	processor := services.NewRecurringProcessor(res.Store, entryService)

	runAll := func(now time.Time) {
		processAllUsers(ctx, res.Store, processor, now)
	}

	// Run once on startup so a crashed schedule never leaves a gap.
	logger.Info("Running initial recurring processing...")
	runAll(time.Now())

	c := cron.New()
	if _, err := c.AddFunc(cfg.RecurringSchedule, func() { runAll(time.Now()) }); err != nil {
		logger.Error("Invalid recurring schedule", "schedule", cfg.RecurringSchedule, "error", err)
		os.Exit(1)
	}
	c.Start()
	logger.Info("Recurring processor scheduled", "schedule", cfg.RecurringSchedule)

	sigCtx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		stopCtx := c.Stop()
		<-stopCtx.Done()
		cancel()
	})
	cli.WaitForShutdown(sigCtx, done)
	logger.Info("Recurring-worker shutdown complete")
}

// processAllUsers runs the processor for every user present in the store.
func processAllUsers(ctx context.Context, st store.Store, processor *services.RecurringProcessor, now time.Time) {
	users, err := st.Users(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list users", "error", err)
		return
	}

	total := 0
	for _, uid := range users {
		count, err := processor.ProcessUser(ctx, uid, now)
		if err != nil {
			slog.ErrorContext(ctx, "Processing failed", "uid", uid, "error", err)
			continue
		}
		total += count
	}

	slog.InfoContext(ctx, "Recurring processing pass complete",
		"users", len(users),
		"entries_touched", total)
}
