package domain

import (
	"cloud.google.com/go/civil"
)

// Direction tells whether money left or entered the account.
// The values are the labels written to the ledger's direction column.
type Direction string

const (
	// DirectionExpense marks a debit (statement suffix "S").
	DirectionExpense Direction = "Ausgabe"
	// DirectionIncome marks a credit (statement suffix "H").
	DirectionIncome Direction = "Einnahme"
	// DirectionUnknown is used when the start line carries no known suffix.
	DirectionUnknown Direction = "Unbekannt"
)

// Transaction is one classified statement entry, ready to become a ledger row.
// Amount is always the non-negative magnitude; the sign lives in Direction.
type Transaction struct {
	Name      string     `json:"name"`      // counterparty, or the cash fallback label
	Amount    float64    `json:"amount"`    // parsed from the second-to-last token of the start line
	Direction Direction  `json:"direction"` // from the last character of the start line
	Date      civil.Date `json:"date"`      // DD.MM. from the start line plus the statement year
}
