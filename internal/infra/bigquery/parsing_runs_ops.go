package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/logger"
	"github.com/google/uuid"
)

const (
	parsingRunsTable = "parsing_runs"
	maxErrorLen      = 2000
)

// tableName returns the fully qualified, backquoted name of table.
func tableName(client *bigquery.Client, datasetID, table string) string {
	return fmt.Sprintf("`%s.%s.%s`", client.Project(), datasetID, table)
}

// runQuery runs a DML statement and waits for it to finish.
func runQuery(ctx context.Context, q *bigquery.Query) error {
	job, err := q.Run(ctx)
	if err != nil {
		return fmt.Errorf("running query: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("job error: %w", err)
	}
	return nil
}

// truncateError renders err for the error_message column.
func truncateError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	if len(msg) > maxErrorLen {
		msg = msg[:maxErrorLen]
	}
	return msg
}

// StartParsingRunWithClient inserts a new row into parsing_runs with status=RUNNING
// and returns the generated parsing_run_id.
func StartParsingRunWithClient(ctx context.Context, client *bigquery.Client, datasetID string, file domain.StatementFile, spreadsheetID string) (string, error) {
	parsingRunID := uuid.NewString()

	q := client.Query(fmt.Sprintf(`
		INSERT %s (
			parsing_run_id,
			file_id,
			file_name,
			spreadsheet_id,
			started_ts,
			parser_version,
			status
		)
		VALUES (
			@parsing_run_id,
			@file_id,
			@file_name,
			@spreadsheet_id,
			@started_ts,
			@parser_version,
			@status
		)
	`, tableName(client, datasetID, parsingRunsTable)))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "parsing_run_id", Value: parsingRunID},
		{Name: "file_id", Value: file.ID},
		{Name: "file_name", Value: file.Name},
		{Name: "spreadsheet_id", Value: spreadsheetID},
		{Name: "started_ts", Value: time.Now()},
		{Name: "parser_version", Value: ParserVersion},
		{Name: "status", Value: RunStatusRunning},
	}

	if err := runQuery(ctx, q); err != nil {
		return "", fmt.Errorf("StartParsingRun: %w", err)
	}
	return parsingRunID, nil
}

// MarkParsingRunFailedWithClient sets status=FAILED, finished_ts and error_message.
// Failures are logged, not returned, so they never mask the original error.
func MarkParsingRunFailedWithClient(ctx context.Context, client *bigquery.Client, datasetID, parsingRunID string, parseErr error) {
	log := logger.FromContext(ctx)

	q := client.Query(fmt.Sprintf(`
		UPDATE %s
		SET status = @status,
		    finished_ts = @finished_ts,
		    error_message = @error_message
		WHERE parsing_run_id = @parsing_run_id
	`, tableName(client, datasetID, parsingRunsTable)))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: RunStatusFailed},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "error_message", Value: truncateError(parseErr)},
		{Name: "parsing_run_id", Value: parsingRunID},
	}

	if err := runQuery(ctx, q); err != nil {
		log.Error().
			Err(err).
			Str("parsing_run_id", parsingRunID).
			Msg("MarkParsingRunFailed: update failed")
	}
}

// MarkParsingRunSucceededWithClient sets status=SUCCESS, finished_ts and the
// transaction count, and clears error_message.
func MarkParsingRunSucceededWithClient(ctx context.Context, client *bigquery.Client, datasetID, parsingRunID string, transactions int) error {
	q := client.Query(fmt.Sprintf(`
		UPDATE %s
		SET status = @status,
		    finished_ts = @finished_ts,
		    transaction_count = @transaction_count,
		    error_message = ""
		WHERE parsing_run_id = @parsing_run_id
	`, tableName(client, datasetID, parsingRunsTable)))

	q.Parameters = []bigquery.QueryParameter{
		{Name: "status", Value: RunStatusSuccess},
		{Name: "finished_ts", Value: time.Now()},
		{Name: "transaction_count", Value: int64(transactions)},
		{Name: "parsing_run_id", Value: parsingRunID},
	}

	if err := runQuery(ctx, q); err != nil {
		return fmt.Errorf("MarkParsingRunSucceeded: %w", err)
	}
	return nil
}
