// Package statement recovers balances and transactions from the text lines of
// a rendered bank account statement.
package statement

import (
	"regexp"

	"github.com/rs/zerolog"
)

// recordStartPattern matches the value/booking date pair opening a transaction,
// e.g. "01.01. 02.01. Zahlung ...".
const recordStartPattern = `\d{2}\.\d{2}\. \d{2}\.\d{2}\.`

// Parser holds the statement markers and the logger that receives every
// recoverable parsing diagnostic. A Parser has no mutable state and may be
// shared between goroutines.
type Parser struct {
	markers      Markers
	recordStart  *regexp.Regexp
	carryForward *regexp.Regexp
	log          zerolog.Logger
}

// NewParser creates a Parser for the given markers.
func NewParser(markers Markers, log zerolog.Logger) *Parser {
	return &Parser{
		markers:      markers,
		recordStart:  regexp.MustCompile(`^` + recordStartPattern),
		carryForward: regexp.MustCompile(`^` + regexp.QuoteMeta(markers.CarryForward)),
		log:          log,
	}
}

// Markers returns the markers the parser was built with.
func (p *Parser) Markers() Markers {
	return p.markers
}

// Amount is NormalizeAmount with the degrade-to-zero policy applied: a
// malformed line is logged verbatim and yields 0.
func (p *Parser) Amount(line string) float64 {
	v, err := NormalizeAmount(line)
	if err != nil {
		p.log.Error().
			Err(err).
			Str("line", line).
			Msg("Could not extract amount, using 0")
		return 0
	}
	return v
}
