package statement

import (
	"testing"

	"github.com/dvloznov/statement-ledger/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_Parse(t *testing.T) {
	p := newTestParser()

	t.Run("scenario statement", func(t *testing.T) {
		res, err := p.Parse(scenarioLines, "2025")
		require.NoError(t, err)

		assert.Equal(t, 0, res.Opening.LineIndex)
		assert.Equal(t, 4, res.Closing.LineIndex)
		assert.InDelta(t, 2950.0, res.Closing.Value, 1e-9)
		require.Len(t, res.Transactions, 2)

		first := res.Transactions[0]
		assert.Equal(t, "weitere Details", first.Name)
		assert.InDelta(t, 50.0, first.Amount, 1e-9)
		assert.Equal(t, domain.DirectionExpense, first.Direction)

		second := res.Transactions[1]
		assert.Equal(t, "Bareinzahlung", second.Name)
		assert.InDelta(t, 2000.0, second.Amount, 1e-9)
		assert.Equal(t, domain.DirectionIncome, second.Direction)
	})

	t.Run("invalid dates are skipped, siblings kept", func(t *testing.T) {
		lines := []string{
			"alter Kontostand 1,00 EUR",
			"31.02. 31.02. Kaputt 1,00 S",
			"01.03. 01.03. Heil 2,00 H",
			"neuer Kontostand 1,00 EUR",
		}
		res, err := p.Parse(lines, "2025")
		require.NoError(t, err)
		assert.Equal(t, 1, res.Skipped)
		require.Len(t, res.Transactions, 1)
		assert.InDelta(t, 2.0, res.Transactions[0].Amount, 1e-9)
	})

	t.Run("empty statement", func(t *testing.T) {
		res, err := p.Parse([]string{}, "2025")
		assert.ErrorIs(t, err, ErrMarkerNotFound)
		assert.Empty(t, res.Transactions)
		assert.Equal(t, -1, res.Opening.LineIndex)
	})

	t.Run("closing before opening", func(t *testing.T) {
		lines := []string{
			"neuer Kontostand 1,00 EUR",
			"01.03. 01.03. Heil 2,00 H",
			"alter Kontostand 1,00 EUR",
		}
		res, err := p.Parse(lines, "2025")
		require.NoError(t, err)
		assert.Empty(t, res.Transactions)
	})
}
