// Package bigquery records parsing runs and mirrors appended ledger rows into
// BigQuery so the ledger history can be queried outside the spreadsheet.
package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/statement-ledger/internal/domain"
	"google.golang.org/api/option"
)

// Repository holds a shared BigQuery client for one dataset.
type Repository struct {
	client    *bigquery.Client
	datasetID string
}

// NewRepository creates a repository for projectID.datasetID.
func NewRepository(ctx context.Context, projectID, datasetID string, opts ...option.ClientOption) (*Repository, error) {
	client, err := bigquery.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("NewRepository: creating client: %w", err)
	}
	return NewRepositoryWithClient(client, datasetID), nil
}

// NewRepositoryWithClient creates a repository with an existing client.
func NewRepositoryWithClient(client *bigquery.Client, datasetID string) *Repository {
	return &Repository{client: client, datasetID: datasetID}
}

// Close closes the BigQuery client connection.
func (r *Repository) Close() error {
	if r.client != nil {
		return r.client.Close()
	}
	return nil
}

// Start records a new RUNNING parsing run and returns its ID.
func (r *Repository) Start(ctx context.Context, file domain.StatementFile, spreadsheetID string) (string, error) {
	return StartParsingRunWithClient(ctx, r.client, r.datasetID, file, spreadsheetID)
}

// Fail marks a parsing run FAILED.
func (r *Repository) Fail(ctx context.Context, parsingRunID string, err error) {
	MarkParsingRunFailedWithClient(ctx, r.client, r.datasetID, parsingRunID, err)
}

// Succeed marks a parsing run SUCCESS.
func (r *Repository) Succeed(ctx context.Context, parsingRunID string, transactions int) error {
	return MarkParsingRunSucceededWithClient(ctx, r.client, r.datasetID, parsingRunID, transactions)
}

// MirrorTransactions copies appended transactions into ledger_transactions.
func (r *Repository) MirrorTransactions(ctx context.Context, parsingRunID string, file domain.StatementFile, spreadsheetID string, txs []domain.Transaction) error {
	rows := NewTransactionRows(parsingRunID, file, spreadsheetID, txs, time.Now())
	return InsertTransactionsWithClient(ctx, r.client, r.datasetID, rows)
}

// QueryTransactions returns mirrored transactions dated within [start, end].
func (r *Repository) QueryTransactions(ctx context.Context, start, end civil.Date) ([]*TransactionRow, error) {
	return QueryTransactionsByDateRangeWithClient(ctx, r.client, r.datasetID, start, end)
}
