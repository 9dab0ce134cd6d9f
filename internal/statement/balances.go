package statement

import (
	"fmt"
	"strings"

	"github.com/dvloznov/statement-ledger/internal/domain"
)

// Selection picks one marker out of all lines matching a sentinel.
type Selection int

const (
	// SelectFirst keeps the first match; the opening balance header is canonical.
	SelectFirst Selection = iota
	// SelectLast keeps the last match; earlier closing balance lines are running notes.
	SelectLast
)

// FindBalances returns a marker for every line containing sentinel, in line
// order. Lines with a malformed amount still match and carry a zero value.
func (p *Parser) FindBalances(lines []string, sentinel string) []domain.BalanceMarker {
	var found []domain.BalanceMarker
	for idx, line := range lines {
		if !strings.Contains(line, sentinel) {
			continue
		}
		found = append(found, domain.BalanceMarker{
			Value:     p.Amount(line),
			LineIndex: idx,
		})
	}
	return found
}

// LocateBalance selects one balance marker for sentinel. When no line matches
// it returns a marker with LineIndex -1 and an error wrapping ErrMarkerNotFound.
func (p *Parser) LocateBalance(lines []string, sentinel string, sel Selection) (domain.BalanceMarker, error) {
	found := p.FindBalances(lines, sentinel)
	if len(found) == 0 {
		err := fmt.Errorf("LocateBalance: %q: %w", sentinel, ErrMarkerNotFound)
		p.log.Error().
			Err(err).
			Str("sentinel", sentinel).
			Int("lines", len(lines)).
			Msg("Balance marker not found")
		return domain.BalanceMarker{LineIndex: -1}, err
	}

	if sel == SelectLast {
		return found[len(found)-1], nil
	}
	return found[0], nil
}

// Balances locates the opening (first match) and closing (last match) balance markers.
func (p *Parser) Balances(lines []string) (opening, closing domain.BalanceMarker, err error) {
	opening, openErr := p.LocateBalance(lines, p.markers.OpeningBalance, SelectFirst)
	closing, closeErr := p.LocateBalance(lines, p.markers.ClosingBalance, SelectLast)
	if openErr != nil {
		return opening, closing, openErr
	}
	if closeErr != nil {
		return opening, closing, closeErr
	}

	p.log.Info().
		Float64("opening_balance", opening.Value).
		Int("opening_index", opening.LineIndex).
		Float64("closing_balance", closing.Value).
		Int("closing_index", closing.LineIndex).
		Msg("Located balances")
	return opening, closing, nil
}

// LocateBoundaries returns the line indices of the opening and closing balance
// markers, or (-1, -1) when either is missing. Callers must check for -1
// before segmenting.
func (p *Parser) LocateBoundaries(lines []string) (int, int) {
	opening, closing, err := p.Balances(lines)
	if err != nil {
		return -1, -1
	}
	return opening.LineIndex, closing.LineIndex
}
