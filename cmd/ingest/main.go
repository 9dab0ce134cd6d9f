package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dvloznov/statement-ledger/internal/app"
	"github.com/dvloznov/statement-ledger/internal/config"
	"github.com/dvloznov/statement-ledger/internal/logger"
)

func main() {
	timeout := flag.Duration("timeout", 30*time.Minute, "Maximum duration of the run")
	flag.Parse()

	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	log = logger.NewWithLevel(cfg.LogLevel)

	// Create context with timeout so a stuck API call doesn't hang the run
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	a, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build processor")
	}
	defer a.Close()

	log.Info().Str("inbox", cfg.InboxFolder()).Msg("Starting ingestion")

	summary, err := a.Processor.ProcessAccountStatements(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Ingestion failed")
	}

	fmt.Printf("Ingestion finished: %d processed, %d skipped, %d failed, %d transactions.\n",
		summary.Processed, summary.Skipped, summary.Failed, summary.Transactions)

	if summary.Failed > 0 {
		a.Close()
		os.Exit(1)
	}
}
