package statement

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/statement-ledger/internal/domain"
)

const transactionDateLayout = "02.01.2006"

// Classify derives the direction from the last character of a start line.
func Classify(line string) domain.Direction {
	switch {
	case strings.HasSuffix(line, "S"):
		return domain.DirectionExpense
	case strings.HasSuffix(line, "H"):
		return domain.DirectionIncome
	default:
		return domain.DirectionUnknown
	}
}

// TransactionDate joins the leading "DD.MM." token of line with year and
// parses the result as a calendar date.
func TransactionDate(line, year string) (civil.Date, error) {
	token, _, _ := strings.Cut(line, " ")
	t, err := time.Parse(transactionDateLayout, token+year)
	if err != nil {
		return civil.Date{}, fmt.Errorf("TransactionDate: %q + %q: %w", token, year, ErrInvalidTransactionDate)
	}
	return civil.DateOf(t), nil
}

// Extract turns a segmented record into a transaction. year is the four-digit
// statement year. A malformed amount degrades to 0; an unparseable date fails
// the record with an error wrapping ErrInvalidTransactionDate.
func (p *Parser) Extract(rec domain.Record, year string) (domain.Transaction, error) {
	head := rec.Head()
	if len(rec) == 0 {
		p.log.Error().Msg("Empty record passed to Extract")
	}

	name := p.markers.CashFallbackName
	if detail, ok := rec.Detail(); ok {
		name = strings.TrimSpace(detail)
	}

	date, err := TransactionDate(head, year)
	if err != nil {
		p.log.Error().
			Err(err).
			Str("line", head).
			Msg("Skipping transaction with invalid date")
		return domain.Transaction{}, err
	}

	return domain.Transaction{
		Name:      name,
		Amount:    p.Amount(head),
		Direction: Classify(head),
		Date:      date,
	}, nil
}
