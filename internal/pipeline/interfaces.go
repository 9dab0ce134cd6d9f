package pipeline

import (
	"context"

	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/ledger"
)

// TextExtractor turns PDF bytes into statement text lines.
type TextExtractor interface {
	Lines(ctx context.Context, data []byte) ([]string, error)
}

// LedgerResolver picks the ledger a statement of the given year is appended to.
type LedgerResolver interface {
	Resolve(year int) (ledger.Store, error)
}

// LedgerResolverFunc adapts a function to LedgerResolver.
type LedgerResolverFunc func(year int) (ledger.Store, error)

// Resolve implements LedgerResolver.
func (f LedgerResolverFunc) Resolve(year int) (ledger.Store, error) {
	return f(year)
}

// RunRecorder keeps an audit trail of statement runs.
// This interface enables mocking and testing of the audit sink.
type RunRecorder interface {
	// Start records a new run and returns its ID.
	Start(ctx context.Context, file domain.StatementFile, ledgerKey string) (string, error)

	// Fail marks a run as failed. Implementations log their own errors.
	Fail(ctx context.Context, runID string, err error)

	// Succeed marks a run as successful.
	Succeed(ctx context.Context, runID string, transactions int) error

	// MirrorTransactions copies the appended transactions to the audit sink.
	MirrorTransactions(ctx context.Context, runID string, file domain.StatementFile, ledgerKey string, txs []domain.Transaction) error
}

// NoopRecorder is used when no audit sink is configured.
type NoopRecorder struct{}

// Start implements RunRecorder.
func (NoopRecorder) Start(ctx context.Context, file domain.StatementFile, ledgerKey string) (string, error) {
	return "", nil
}

// Fail implements RunRecorder.
func (NoopRecorder) Fail(ctx context.Context, runID string, err error) {}

// Succeed implements RunRecorder.
func (NoopRecorder) Succeed(ctx context.Context, runID string, transactions int) error {
	return nil
}

// MirrorTransactions implements RunRecorder.
func (NoopRecorder) MirrorTransactions(ctx context.Context, runID string, file domain.StatementFile, ledgerKey string, txs []domain.Transaction) error {
	return nil
}

var _ RunRecorder = NoopRecorder{}
