package bigquery

import (
	"time"

	"cloud.google.com/go/bigquery"
)

// Parsing run statuses.
const (
	RunStatusRunning = "RUNNING"
	RunStatusSuccess = "SUCCESS"
	RunStatusFailed  = "FAILED"
)

// ParserVersion identifies the statement parser that produced a run.
const ParserVersion = "statement-v1"

type ParsingRunRow struct {
	ParsingRunID string `bigquery:"parsing_run_id"` // REQUIRED
	FileID       string `bigquery:"file_id"`        // REQUIRED
	FileName     string `bigquery:"file_name"`      // REQUIRED

	SpreadsheetID string `bigquery:"spreadsheet_id"` // NULLABLE

	StartedTS  time.Time              `bigquery:"started_ts"`  // REQUIRED
	FinishedTS bigquery.NullTimestamp `bigquery:"finished_ts"` // NULLABLE

	ParserVersion string `bigquery:"parser_version"` // NULLABLE

	Status       string `bigquery:"status"`        // NULLABLE
	ErrorMessage string `bigquery:"error_message"` // NULLABLE

	TransactionCount bigquery.NullInt64 `bigquery:"transaction_count"` // NULLABLE
}
