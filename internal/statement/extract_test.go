package statement

import (
	"bytes"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/dvloznov/statement-ledger/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		line string
		want domain.Direction
	}{
		{"01.01. Einkauf 10,00 S", domain.DirectionExpense},
		{"01.01. Gehalt 2000,00 H", domain.DirectionIncome},
		{"01.01. Sonstiges", domain.DirectionUnknown},
		{"01.01. Einkauf 10,00 S ", domain.DirectionUnknown},
		{"", domain.DirectionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.line))
		})
	}
}

func TestParser_Extract(t *testing.T) {
	p := newTestParser()

	t.Run("with counterparty", func(t *testing.T) {
		tx, err := p.Extract(domain.Record{"01.01. 02.01. Einkauf 100,00 S", "  Supermarkt  "}, "2025")
		require.NoError(t, err)
		assert.Equal(t, "Supermarkt", tx.Name)
		assert.InDelta(t, 100.0, tx.Amount, 1e-9)
		assert.Equal(t, domain.DirectionExpense, tx.Direction)
		assert.Equal(t, civil.Date{Year: 2025, Month: 1, Day: 1}, tx.Date)
	})

	t.Run("without counterparty uses fallback", func(t *testing.T) {
		tx, err := p.Extract(domain.Record{"01.01. 02.01. Einkauf 100,00 S"}, "2025")
		require.NoError(t, err)
		assert.Equal(t, "Bareinzahlung", tx.Name)
		assert.InDelta(t, 100.0, tx.Amount, 1e-9)
		assert.Equal(t, domain.DirectionExpense, tx.Direction)
		assert.Equal(t, civil.Date{Year: 2025, Month: 1, Day: 1}, tx.Date)
	})

	t.Run("income", func(t *testing.T) {
		tx, err := p.Extract(domain.Record{"15.03. 16.03. Gehalt 2.000,00 H", "Arbeitgeber AG"}, "2024")
		require.NoError(t, err)
		assert.Equal(t, domain.DirectionIncome, tx.Direction)
		assert.InDelta(t, 2000.0, tx.Amount, 1e-9)
		assert.Equal(t, civil.Date{Year: 2024, Month: 3, Day: 15}, tx.Date)
	})

	t.Run("malformed amount degrades to zero", func(t *testing.T) {
		buf := &bytes.Buffer{}
		p := NewParser(DefaultMarkers(), logger.NewWithWriter(buf))
		tx, err := p.Extract(domain.Record{"01.01. 02.01. Einkauf ABC S"}, "2025")
		require.NoError(t, err)
		assert.Zero(t, tx.Amount)
		assert.Equal(t, domain.DirectionExpense, tx.Direction)
		assert.Contains(t, buf.String(), "Einkauf ABC S")
	})

	t.Run("unknown direction is kept", func(t *testing.T) {
		tx, err := p.Extract(domain.Record{"01.01. 02.01. Storno 5,00 X"}, "2025")
		require.NoError(t, err)
		assert.Equal(t, domain.DirectionUnknown, tx.Direction)
	})
}

func TestParser_ExtractInvalidDate(t *testing.T) {
	tests := []struct {
		name string
		rec  domain.Record
		year string
	}{
		{name: "no date prefix", rec: domain.Record{"Einkauf 100,00 S"}, year: "2025"},
		{name: "impossible day", rec: domain.Record{"31.02. 01.03. Einkauf 1,00 S"}, year: "2025"},
		{name: "bad year", rec: domain.Record{"01.01. 02.01. Einkauf 1,00 S"}, year: "25"},
		{name: "empty record", rec: domain.Record{}, year: "2025"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			p := NewParser(DefaultMarkers(), logger.NewWithWriter(buf))
			_, err := p.Extract(tt.rec, tt.year)
			assert.ErrorIs(t, err, ErrInvalidTransactionDate)
			assert.Contains(t, buf.String(), "invalid date")
		})
	}
}

func TestParser_SegmentThenExtractKeepsYear(t *testing.T) {
	p := newTestParser()
	records, err := p.Segment(scenarioLines, 0, 4)
	require.NoError(t, err)

	for _, rec := range records {
		tx, err := p.Extract(rec, "2025")
		require.NoError(t, err)
		assert.Equal(t, 2025, tx.Date.Year)
	}
}
