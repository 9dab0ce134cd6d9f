// Package app wires the configured document store, ledger backend and audit
// sink into a statement processor.
package app

import (
	"context"
	"fmt"

	gcs "cloud.google.com/go/storage"
	bq "cloud.google.com/go/bigquery"
	"github.com/dvloznov/statement-ledger/internal/config"
	"github.com/dvloznov/statement-ledger/internal/docstore"
	"github.com/dvloznov/statement-ledger/internal/gcsuploader"
	"github.com/dvloznov/statement-ledger/internal/gdrive"
	"github.com/dvloznov/statement-ledger/internal/googleauth"
	infra "github.com/dvloznov/statement-ledger/internal/infra/bigquery"
	"github.com/dvloznov/statement-ledger/internal/ledger"
	"github.com/dvloznov/statement-ledger/internal/localstore"
	"github.com/dvloznov/statement-ledger/internal/pdftext"
	"github.com/dvloznov/statement-ledger/internal/pipeline"
	"github.com/dvloznov/statement-ledger/internal/sheets"
	"github.com/dvloznov/statement-ledger/internal/statement"
	"github.com/rs/zerolog"
)

// App holds the processor and the clients it owns.
type App struct {
	Processor *pipeline.Processor
	Runs      *infra.Repository

	closers []func() error
}

// Close releases every client opened by Build.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Build creates the processor described by cfg.
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	a := &App{}

	store, err := a.documentStore(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	ledgers, err := a.ledgerResolver(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	var runs pipeline.RunRecorder
	if cfg.BigQuery.Enabled() {
		repo, err := infra.NewRepository(ctx, cfg.BigQuery.Project, cfg.BigQuery.Dataset,
			googleauth.ClientOptions(log, cfg.Google.CredentialsFile, bq.Scope)...)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("Build: %w", err)
		}
		a.Runs = repo
		a.closers = append(a.closers, repo.Close)
		runs = repo
	}

	parser := statement.NewParser(statement.DefaultMarkers(), log)
	a.Processor = pipeline.NewProcessor(store, pdftext.NewFitzExtractor(), ledgers, runs, parser,
		cfg.InboxFolder(), cfg.ArchiveFolder())

	log.Info().
		Str("document_store", cfg.Documents.Store).
		Bool("xlsx_ledger", cfg.Ledger.XLSXDir != "").
		Bool("bigquery", cfg.BigQuery.Enabled()).
		Msg("Processor ready")
	return a, nil
}

func (a *App) documentStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (docstore.Store, error) {
	switch cfg.Documents.Store {
	case config.StoreDrive:
		s, err := gdrive.New(ctx, googleauth.ClientOptions(log, cfg.Google.CredentialsFile, gdrive.Scope)...)
		if err != nil {
			return nil, fmt.Errorf("documentStore: %w", err)
		}
		return s, nil
	case config.StoreGCS:
		s, err := gcsuploader.NewGCSStore(ctx, cfg.Documents.GCSBucket,
			googleauth.ClientOptions(log, cfg.Google.CredentialsFile, gcs.ScopeReadWrite)...)
		if err != nil {
			return nil, fmt.Errorf("documentStore: %w", err)
		}
		a.closers = append(a.closers, s.Close)
		return s, nil
	case config.StoreLocal:
		return localstore.New(cfg.Documents.LocalRoot), nil
	default:
		return nil, fmt.Errorf("documentStore: unknown store %q", cfg.Documents.Store)
	}
}

func (a *App) ledgerResolver(ctx context.Context, cfg *config.Config, log zerolog.Logger) (pipeline.LedgerResolver, error) {
	if cfg.Ledger.XLSXDir != "" {
		return pipeline.LedgerResolverFunc(func(year int) (ledger.Store, error) {
			return ledger.NewXLSXStore(cfg.XLSXPathFor(year), cfg.Ledger.Worksheet), nil
		}), nil
	}

	svc, err := sheets.NewService(ctx, googleauth.ClientOptions(log, cfg.Google.CredentialsFile, sheets.Scope, gdrive.Scope)...)
	if err != nil {
		return nil, fmt.Errorf("ledgerResolver: %w", err)
	}
	return pipeline.LedgerResolverFunc(func(year int) (ledger.Store, error) {
		id, err := cfg.SpreadsheetFor(year)
		if err != nil {
			return nil, err
		}
		return sheets.New(svc, id, cfg.Ledger.Worksheet), nil
	}), nil
}
