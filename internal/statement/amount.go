package statement

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountToken returns the second-to-last whitespace-delimited token of line.
// Statement lines end with "<amount> <suffix>", e.g. "... 1.234,56 EUR" or "... 50,00 S".
func AmountToken(line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", fmt.Errorf("AmountToken: %d field(s) in %q: %w", len(fields), line, ErrMalformedAmount)
	}
	return fields[len(fields)-2], nil
}

// ParseAmountToken converts a German formatted number ("1.234,56") to a decimal.
func ParseAmountToken(token string) (decimal.Decimal, error) {
	normalized := strings.ReplaceAll(token, ".", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("ParseAmountToken: %q: %w", token, ErrMalformedAmount)
	}
	return d, nil
}

// NormalizeAmount extracts the amount of a statement line. On failure it
// returns 0 together with an error wrapping ErrMalformedAmount.
func NormalizeAmount(line string) (float64, error) {
	token, err := AmountToken(line)
	if err != nil {
		return 0, err
	}
	d, err := ParseAmountToken(token)
	if err != nil {
		return 0, err
	}
	return d.InexactFloat64(), nil
}
