package statement

import (
	"errors"

	"github.com/dvloznov/statement-ledger/internal/domain"
)

// Result is everything recovered from one statement.
type Result struct {
	Opening      domain.BalanceMarker
	Closing      domain.BalanceMarker
	Records      []domain.Record
	Transactions []domain.Transaction
	Skipped      int // records dropped for an invalid date
}

// Parse runs the whole chain on one statement: balances, segmentation and
// extraction. The only error returned is a missing balance marker, since
// without both boundaries the transaction region cannot be delimited.
// Segmentation and per-record problems are logged and degrade the result.
func (p *Parser) Parse(lines []string, year string) (*Result, error) {
	opening, closing, err := p.Balances(lines)
	if err != nil {
		return &Result{Opening: opening, Closing: closing}, err
	}

	res := &Result{Opening: opening, Closing: closing}
	// Segment logs its own errors and yields no records on failure.
	res.Records, _ = p.Segment(lines, opening.LineIndex, closing.LineIndex)

	res.Transactions = make([]domain.Transaction, 0, len(res.Records))
	for _, rec := range res.Records {
		tx, err := p.Extract(rec, year)
		if errors.Is(err, ErrInvalidTransactionDate) {
			res.Skipped++
			continue
		}
		res.Transactions = append(res.Transactions, tx)
	}
	return res, nil
}
