package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dvloznov/statement-ledger/internal/docstore"
	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/ledger"
	"github.com/dvloznov/statement-ledger/internal/logger"
	"github.com/dvloznov/statement-ledger/internal/statement"
	"github.com/dvloznov/statement-ledger/internal/statementfile"
)

// ErrSkipStatement stops a pipeline without counting the statement as failed.
var ErrSkipStatement = errors.New("statement skipped")

// PipelineStep represents a single step in the statement pipeline.
type PipelineStep interface {
	Execute(ctx context.Context, state *PipelineState) error
}

// PipelineState holds the shared state across all pipeline steps.
type PipelineState struct {
	File    domain.StatementFile
	Inbox   string
	Archive string

	StandardName string
	Year         int
	Ledger       ledger.Store
	ParsingRunID string

	PDFBytes     []byte
	Lines        []string
	Opening      domain.BalanceMarker
	Closing      domain.BalanceMarker
	Records      []domain.Record
	Transactions []domain.Transaction
	Skipped      int
	Appended     int
}

// ValidateNameStep skips files that are not account statement PDFs.
type ValidateNameStep struct{}

func (s *ValidateNameStep) Execute(ctx context.Context, state *PipelineState) error {
	if !statementfile.IsValidAccountFile(state.File.Name) {
		return fmt.Errorf("ValidateName: %q is not an account statement: %w", state.File.Name, ErrSkipStatement)
	}
	state.StandardName = statementfile.Standardize(state.File.Name)
	return nil
}

// CheckProcessedStep skips statements already present in the archive folder.
type CheckProcessedStep struct {
	Store docstore.Store
}

func (s *CheckProcessedStep) Execute(ctx context.Context, state *PipelineState) error {
	exists, err := s.Store.Exists(ctx, state.Archive, state.StandardName)
	if err != nil {
		return fmt.Errorf("CheckProcessed: %w", err)
	}
	if exists {
		return fmt.Errorf("CheckProcessed: %q already archived: %w", state.StandardName, ErrSkipStatement)
	}
	return nil
}

// ResolveYearStep reads the statement year from the file name and picks the ledger.
type ResolveYearStep struct {
	Ledgers LedgerResolver
}

func (s *ResolveYearStep) Execute(ctx context.Context, state *PipelineState) error {
	year, err := statementfile.YearFromName(state.File.Name)
	if err != nil {
		return fmt.Errorf("ResolveYear: %w", err)
	}
	store, err := s.Ledgers.Resolve(year)
	if err != nil {
		return fmt.Errorf("ResolveYear: %w", err)
	}
	state.Year = year
	state.Ledger = store
	return nil
}

// StartRunStep records the start of a parsing run.
type StartRunStep struct {
	Runs RunRecorder
}

func (s *StartRunStep) Execute(ctx context.Context, state *PipelineState) error {
	runID, err := s.Runs.Start(ctx, state.File, state.Ledger.Key())
	if err != nil {
		return fmt.Errorf("StartRun: %w", err)
	}
	state.ParsingRunID = runID
	return nil
}

// FetchPDFStep downloads the statement.
type FetchPDFStep struct {
	Store docstore.Store
}

func (s *FetchPDFStep) Execute(ctx context.Context, state *PipelineState) error {
	data, err := s.Store.Download(ctx, state.File)
	if err != nil {
		return fmt.Errorf("FetchPDF: %w", err)
	}
	state.PDFBytes = data
	return nil
}

// ExtractLinesStep renders the PDF into text lines.
type ExtractLinesStep struct {
	Extractor TextExtractor
}

func (s *ExtractLinesStep) Execute(ctx context.Context, state *PipelineState) error {
	lines, err := s.Extractor.Lines(ctx, state.PDFBytes)
	if err != nil {
		return fmt.Errorf("ExtractLines: %w", err)
	}
	state.Lines = lines
	state.PDFBytes = nil
	return nil
}

// LocateBoundariesStep finds the opening and closing balances. A missing
// marker halts the statement.
type LocateBoundariesStep struct {
	Parser *statement.Parser
}

func (s *LocateBoundariesStep) Execute(ctx context.Context, state *PipelineState) error {
	opening, closing, err := s.Parser.Balances(state.Lines)
	if err != nil {
		return fmt.Errorf("LocateBoundaries: %w", err)
	}
	state.Opening = opening
	state.Closing = closing
	return nil
}

// SegmentStep cuts the region between the balances into records. Invalid
// boundaries leave the statement with no records; the parser logs why.
type SegmentStep struct {
	Parser *statement.Parser
}

func (s *SegmentStep) Execute(ctx context.Context, state *PipelineState) error {
	// Segment logs its own errors and yields no records on failure.
	records, _ := s.Parser.Segment(state.Lines, state.Opening.LineIndex, state.Closing.LineIndex)
	state.Records = records
	return nil
}

// ClassifyStep turns records into transactions. Records with an invalid date
// are dropped.
type ClassifyStep struct {
	Parser *statement.Parser
}

func (s *ClassifyStep) Execute(ctx context.Context, state *PipelineState) error {
	year := strconv.Itoa(state.Year)
	txs := make([]domain.Transaction, 0, len(state.Records))
	for _, rec := range state.Records {
		tx, err := s.Parser.Extract(rec, year)
		if errors.Is(err, statement.ErrInvalidTransactionDate) {
			state.Skipped++
			continue
		}
		txs = append(txs, tx)
	}
	state.Transactions = txs
	return nil
}

// AppendLedgerStep appends the transactions to the ledger. The whole
// load-append-save cycle runs under the ledger's lock. A statement already
// written by an earlier attempt is not appended again.
type AppendLedgerStep struct {
	Locks   *LedgerLocks
	Written *WrittenStatements
}

func (s *AppendLedgerStep) Execute(ctx context.Context, state *PipelineState) error {
	log := logger.FromContext(ctx)

	if len(state.Transactions) == 0 {
		log.Warn().Str("file", state.File.Name).Msg("No transactions found, ledger left unchanged")
		return nil
	}

	if n, ok := s.Written.Lookup(state.File.ID); ok {
		state.Appended = n
		log.Warn().
			Str("file", state.File.Name).
			Str("ledger", state.Ledger.Key()).
			Int("appended", n).
			Msg("Ledger already updated for statement, retrying archive")
		return nil
	}

	unlock := s.Locks.Lock(state.Ledger.Key())
	defer unlock()

	table, err := state.Ledger.Load(ctx)
	if err != nil {
		return fmt.Errorf("AppendLedger: load: %w", err)
	}
	for _, tx := range state.Transactions {
		if tx.Direction == domain.DirectionUnknown {
			log.Warn().
				Str("file", state.File.Name).
				Str("name", tx.Name).
				Msg("Appending transaction with unknown direction")
		}
		table.AppendTransaction(tx)
	}
	if err := state.Ledger.Save(ctx, table); err != nil {
		return fmt.Errorf("AppendLedger: save: %w", err)
	}

	state.Appended = len(state.Transactions)
	s.Written.Mark(state.File.ID, state.Appended)
	log.Info().
		Str("file", state.File.Name).
		Str("ledger", state.Ledger.Key()).
		Int("appended", state.Appended).
		Int("rows", table.Len()).
		Msg("Ledger updated")
	return nil
}

// ArchiveStep moves the statement into the archive folder under its standardized name.
type ArchiveStep struct {
	Store   docstore.Store
	Written *WrittenStatements
}

func (s *ArchiveStep) Execute(ctx context.Context, state *PipelineState) error {
	if err := s.Store.Move(ctx, state.File, state.Inbox, state.Archive, state.StandardName); err != nil {
		return fmt.Errorf("Archive: %w", err)
	}
	s.Written.Forget(state.File.ID)
	return nil
}

// MarkRunSucceededStep mirrors the appended transactions and closes the run.
// A failed mirror is logged only, since the ledger is already written.
type MarkRunSucceededStep struct {
	Runs RunRecorder
}

func (s *MarkRunSucceededStep) Execute(ctx context.Context, state *PipelineState) error {
	if err := s.Runs.MirrorTransactions(ctx, state.ParsingRunID, state.File, state.Ledger.Key(), state.Transactions); err != nil {
		log := logger.FromContext(ctx)
		log.Error().
			Err(err).
			Str("parsing_run_id", state.ParsingRunID).
			Msg("Mirroring transactions failed")
	}
	if err := s.Runs.Succeed(ctx, state.ParsingRunID, len(state.Transactions)); err != nil {
		return fmt.Errorf("MarkRunSucceeded: %w", err)
	}
	return nil
}

// Pipeline executes a sequence of steps in order.
type Pipeline struct {
	steps []PipelineStep
}

// NewPipeline creates a new pipeline with the given steps.
func NewPipeline(steps ...PipelineStep) *Pipeline {
	return &Pipeline{steps: steps}
}

// Execute runs all steps in the pipeline sequentially.
func (p *Pipeline) Execute(ctx context.Context, state *PipelineState) error {
	for i, step := range p.steps {
		if err := step.Execute(ctx, state); err != nil {
			return fmt.Errorf("pipeline step %d failed: %w", i+1, err)
		}
	}
	return nil
}
