// Package pipeline drives statements from the document store through the
// parser into the ledger.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/dvloznov/statement-ledger/internal/docstore"
	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/logger"
	"github.com/dvloznov/statement-ledger/internal/statement"
)

// Processor processes account statements found in the inbox folder.
// Create it with NewProcessor; it is safe for concurrent use.
type Processor struct {
	Store     docstore.Store
	Extractor TextExtractor
	Ledgers   LedgerResolver
	Runs      RunRecorder
	Parser    *statement.Parser
	Locks     *LedgerLocks
	Written   *WrittenStatements

	Inbox   string
	Archive string
}

// NewProcessor creates a Processor. A nil runs disables run recording.
func NewProcessor(store docstore.Store, extractor TextExtractor, ledgers LedgerResolver, runs RunRecorder, parser *statement.Parser, inbox, archive string) *Processor {
	if runs == nil {
		runs = NoopRecorder{}
	}
	return &Processor{
		Store:     store,
		Extractor: extractor,
		Ledgers:   ledgers,
		Runs:      runs,
		Parser:    parser,
		Locks:     NewLedgerLocks(),
		Written:   NewWrittenStatements(),
		Inbox:     inbox,
		Archive:   archive,
	}
}

// BatchSummary counts the outcome of one pass over the inbox.
type BatchSummary struct {
	Seen         int
	Skipped      int
	Processed    int
	Failed       int
	Transactions int
}

// Add folds the outcome of one statement into the summary.
func (b *BatchSummary) Add(state *PipelineState, err error) {
	b.Seen++
	switch {
	case err == nil:
		b.Processed++
		b.Transactions += state.Appended
	case errors.Is(err, ErrSkipStatement):
		b.Skipped++
	default:
		b.Failed++
	}
}

// NewStatementPipeline creates the standard pipeline for one statement.
func (p *Processor) NewStatementPipeline() *Pipeline {
	return NewPipeline(
		&ValidateNameStep{},
		&CheckProcessedStep{Store: p.Store},
		&ResolveYearStep{Ledgers: p.Ledgers},
		&StartRunStep{Runs: p.Runs},
		&FetchPDFStep{Store: p.Store},
		&ExtractLinesStep{Extractor: p.Extractor},
		&LocateBoundariesStep{Parser: p.Parser},
		&SegmentStep{Parser: p.Parser},
		&ClassifyStep{Parser: p.Parser},
		&AppendLedgerStep{Locks: p.Locks, Written: p.Written},
		&ArchiveStep{Store: p.Store, Written: p.Written},
		&MarkRunSucceededStep{Runs: p.Runs},
	)
}

// ProcessStatement runs one statement through the pipeline. A skipped
// statement returns an error wrapping ErrSkipStatement; a failed one is also
// recorded as a failed run when a run was started.
func (p *Processor) ProcessStatement(ctx context.Context, file domain.StatementFile) (*PipelineState, error) {
	log := logger.WithFields(logger.FromContext(ctx), map[string]interface{}{
		"file_id": file.ID,
		"file":    file.Name,
	})
	ctx = logger.WithContext(ctx, log)

	state := &PipelineState{File: file, Inbox: p.Inbox, Archive: p.Archive}
	err := p.NewStatementPipeline().Execute(ctx, state)
	switch {
	case err == nil:
		log.Info().
			Int("transactions", len(state.Transactions)).
			Int("skipped_records", state.Skipped).
			Msg("Statement processed")
	case errors.Is(err, ErrSkipStatement):
		log.Info().Err(err).Msg("Statement skipped")
	default:
		log.Error().Err(err).Msg("Statement failed")
		if state.ParsingRunID != "" {
			p.Runs.Fail(ctx, state.ParsingRunID, err)
		}
	}
	return state, err
}

// ListPending returns the files in the inbox folder, sorted by name.
func (p *Processor) ListPending(ctx context.Context) ([]domain.StatementFile, error) {
	files, err := p.Store.List(ctx, p.Inbox)
	if err != nil {
		return nil, fmt.Errorf("ListPending: %w", err)
	}
	return files, nil
}

// ProcessAccountStatements processes every file in the inbox in name order.
// A failing statement does not stop the batch; only a failed listing is
// returned as an error.
func (p *Processor) ProcessAccountStatements(ctx context.Context) (BatchSummary, error) {
	log := logger.FromContext(ctx)
	var summary BatchSummary

	files, err := p.ListPending(ctx)
	if err != nil {
		return summary, fmt.Errorf("ProcessAccountStatements: %w", err)
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return summary, fmt.Errorf("ProcessAccountStatements: %w", err)
		}
		state, err := p.ProcessStatement(ctx, file)
		summary.Add(state, err)
	}

	log.Info().
		Int("seen", summary.Seen).
		Int("processed", summary.Processed).
		Int("skipped", summary.Skipped).
		Int("failed", summary.Failed).
		Int("transactions", summary.Transactions).
		Msg("Batch finished")
	return summary, nil
}
