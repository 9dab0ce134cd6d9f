package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionRow mirrors one appended ledger row.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED
	ParsingRunID  string `bigquery:"parsing_run_id"` // REQUIRED

	FileName      string `bigquery:"file_name"`      // NULLABLE
	SpreadsheetID string `bigquery:"spreadsheet_id"` // NULLABLE

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED

	Amount    *big.Rat `bigquery:"amount"`    // REQUIRED NUMERIC
	Direction string   `bigquery:"direction"` // REQUIRED
	Name      string   `bigquery:"name"`      // REQUIRED

	CreatedTS time.Time `bigquery:"created_ts"` // REQUIRED
}

// NewTransactionRows converts parsed transactions into mirror rows. Amounts
// are rounded to cents before conversion to NUMERIC.
func NewTransactionRows(parsingRunID string, file domain.StatementFile, spreadsheetID string, txs []domain.Transaction, now time.Time) []*TransactionRow {
	rows := make([]*TransactionRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, &TransactionRow{
			TransactionID:   uuid.NewString(),
			ParsingRunID:    parsingRunID,
			FileName:        file.Name,
			SpreadsheetID:   spreadsheetID,
			TransactionDate: tx.Date,
			Amount:          decimal.NewFromFloat(tx.Amount).Round(2).Rat(),
			Direction:       string(tx.Direction),
			Name:            tx.Name,
			CreatedTS:       now,
		})
	}
	return rows
}

// Transaction converts the row back into a domain transaction.
func (r *TransactionRow) Transaction() domain.Transaction {
	amount := 0.0
	if r.Amount != nil {
		amount, _ = r.Amount.Float64()
	}
	return domain.Transaction{
		Name:      r.Name,
		Amount:    amount,
		Direction: domain.Direction(r.Direction),
		Date:      r.TransactionDate,
	}
}
