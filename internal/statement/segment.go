package statement

import (
	"fmt"
	"strings"

	"github.com/dvloznov/statement-ledger/internal/domain"
)

// Segment cuts lines[opening+1:closing] into one record per transaction.
//
// A record starts at every line beginning with a date pair or with the
// carry-forward marker. Carry-forward records are dropped, and records with
// more than two lines are collapsed to the start line plus the concatenated
// continuation text. Document order is preserved.
//
// Invalid input never panics: the result is empty and the returned error
// wraps ErrSegmentation or ErrInvalidBoundaries.
func (p *Parser) Segment(lines []string, opening, closing int) ([]domain.Record, error) {
	if lines == nil {
		err := fmt.Errorf("Segment: no lines: %w", ErrSegmentation)
		p.log.Error().Err(err).Msg("Error extracting transactions")
		return []domain.Record{}, err
	}
	if opening < 0 || closing <= opening || closing > len(lines) {
		err := fmt.Errorf("Segment: opening=%d closing=%d lines=%d: %w", opening, closing, len(lines), ErrInvalidBoundaries)
		p.log.Error().
			Err(err).
			Int("opening_index", opening).
			Int("closing_index", closing).
			Msg("Invalid balance indices")
		return []domain.Record{}, err
	}

	var records []domain.Record
	current := domain.Record{}
	for _, line := range lines[opening+1 : closing] {
		if p.carryForward.MatchString(line) || p.recordStart.MatchString(line) {
			records = append(records, current)
			current = domain.Record{}
		}
		current = append(current, line)
	}
	records = append(records, current)

	// The first record holds whatever preceded the first start line.
	records = records[1:]

	out := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		if p.carryForward.MatchString(rec.Head()) {
			continue
		}
		if len(rec) > 2 {
			rec = domain.Record{rec[0], strings.Join(rec[1:], "")}
		}
		out = append(out, rec)
	}

	p.log.Info().Int("transactions", len(out)).Msg("Extracted transactions")
	return out, nil
}
