package statementfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidAccountFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Kontoauszug_2025_001_Girokonto.pdf", true},
		{"KONTOAUSZUG_2025_001.PDF", true},
		{"kontoauszug.pdf", true},
		{"Rechnung_2025.pdf", false},
		{"Kontoauszug_2025_001.txt", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidAccountFile(tt.name))
		})
	}
}

func TestStandardize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Kontoauszug_2025_001_Girokonto_2025-02-03.pdf", "Kontoauszug_2025_001_Girokonto.pdf"},
		{"Kontoauszug_2025_001_Girokonto.pdf", "Kontoauszug_2025_001_Girokonto.pdf"},
		{"Kontoauszug_2025_001.pdf", "Kontoauszug_2025_001.pdf"},
		{"Kontoauszug_2025", "Kontoauszug_2025.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Standardize(tt.in))
		})
	}
}

func TestYearFromName(t *testing.T) {
	year, err := YearFromName("Kontoauszug_2025_001_Girokonto.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2025, year)

	year, err = YearFromName("Kontoauszug_2024.pdf")
	require.NoError(t, err)
	assert.Equal(t, 2024, year)

	_, err = YearFromName("Kontoauszug.pdf")
	assert.ErrorIs(t, err, ErrNoYear)

	_, err = YearFromName("Kontoauszug_Jan_001.pdf")
	assert.ErrorIs(t, err, ErrNoYear)
}
