// Package statementfile validates and normalizes bank statement file names
// such as "Kontoauszug_2025_001_Girokonto_2025-02-03.pdf".
package statementfile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	accountMarker = "kontoauszug"
	pdfExt        = ".pdf"
	keptParts     = 4
)

// ErrNoYear is returned when a file name carries no year part.
var ErrNoYear = errors.New("statement file name has no year part")

// IsValidAccountFile reports whether name looks like an account statement PDF.
func IsValidAccountFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, accountMarker) && strings.HasSuffix(lower, pdfExt)
}

// Standardize keeps the first four underscore separated parts of name and
// makes sure the result ends in ".pdf".
func Standardize(name string) string {
	parts := strings.Split(name, "_")
	if len(parts) > keptParts {
		parts = parts[:keptParts]
	}
	out := strings.Join(parts, "_")
	if !strings.HasSuffix(strings.ToLower(out), pdfExt) {
		out += pdfExt
	}
	return out
}

// YearFromName returns the statement year, the second underscore separated part.
func YearFromName(name string) (int, error) {
	parts := strings.Split(name, "_")
	if len(parts) < 2 {
		return 0, fmt.Errorf("YearFromName: %q: %w", name, ErrNoYear)
	}
	raw := strings.TrimSuffix(strings.TrimSuffix(parts[1], pdfExt), strings.ToUpper(pdfExt))
	year, err := strconv.Atoi(raw)
	if err != nil || year < 1000 || year > 9999 {
		return 0, fmt.Errorf("YearFromName: %q: %w", name, ErrNoYear)
	}
	return year, nil
}
