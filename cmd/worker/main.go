package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dvloznov/statement-ledger/internal/api"
	"github.com/dvloznov/statement-ledger/internal/app"
	"github.com/dvloznov/statement-ledger/internal/config"
	"github.com/dvloznov/statement-ledger/internal/jobs"
	"github.com/dvloznov/statement-ledger/internal/jobs/inmemory"
	"github.com/dvloznov/statement-ledger/internal/logger"
	"github.com/robfig/cron/v3"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log = logger.NewWithLevel(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build processor")
	}
	defer a.Close()

	// In production, this would be replaced with Cloud Tasks or Pub/Sub
	jobStore := inmemory.NewStore()
	jobQueue := inmemory.NewQueue(100, cfg.Worker.Concurrency, jobStore)

	log.Info().
		Str("schedule", cfg.Worker.Schedule).
		Int("concurrency", cfg.Worker.Concurrency).
		Msg("Starting worker service")

	if err := jobQueue.Start(ctx, newHandler(a.Processor)); err != nil {
		log.Fatal().Err(err).Msg("Failed to start job consumer")
	}

	scan := func() {
		res, err := jobs.Scan(ctx, a.Processor, jobQueue, jobStore, cfg.Worker.MaxRetries)
		if err != nil {
			log.Error().Err(err).Msg("Failed to scan inbox")
		}
		log.Info().
			Int("pending", res.Pending).
			Int("enqueued", res.Enqueued).
			Interface("jobs", jobStore.CountByStatus()).
			Msg("Inbox scanned")
	}

	cronLog := cron.PrintfLogger(&log)
	scheduler := cron.New(
		cron.WithLogger(cronLog),
		cron.WithChain(cron.SkipIfStillRunning(cronLog)),
	)
	if _, err := scheduler.AddFunc(cfg.Worker.Schedule, scan); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.Worker.Schedule).Msg("Invalid worker schedule")
	}

	scan()
	scheduler.Start()

	var server *http.Server
	if cfg.HTTP.Addr != "" {
		deps := api.Deps{
			Source:     a.Processor,
			Publisher:  jobQueue,
			JobStore:   jobStore,
			MaxRetries: cfg.Worker.MaxRetries,
			Extractor:  a.Processor.Extractor,
			Parser:     a.Processor.Parser,
			Token:      cfg.HTTP.Token,
		}
		if a.Runs != nil {
			deps.Transactions = a.Runs
		}
		server = api.NewServer(cfg.HTTP.Addr, api.NewHandler(deps, log))

		go func() {
			log.Info().Str("addr", cfg.HTTP.Addr).Msg("Starting API server")
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatal().Err(err).Msg("Failed to start server")
			}
		}()
	}

	log.Info().Msg("Worker service started, waiting for statements...")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down worker service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if server != nil {
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
	}

	<-scheduler.Stop().Done()
	cancel()

	if err := jobQueue.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during graceful shutdown")
	}

	if err := jobQueue.Close(); err != nil {
		log.Error().Err(err).Msg("Failed to close job queue")
	}

	log.Info().Msg("Worker service exited")
}
