package statement

// Markers are the literal strings of the statement layout the parser is built
// for. They must match the rendered PDF text exactly.
type Markers struct {
	// OpeningBalance is contained in the line declaring the balance at period start.
	OpeningBalance string
	// ClosingBalance is contained in the line declaring the balance at period end.
	ClosingBalance string
	// CarryForward starts the housekeeping line that repeats a balance across pages.
	CarryForward string
	// CashFallbackName names transactions that have no counterparty line.
	CashFallbackName string
}

// DefaultMarkers returns the markers of the German savings-bank statement layout.
func DefaultMarkers() Markers {
	return Markers{
		OpeningBalance:   "alter Kontostand",
		ClosingBalance:   "neuer Kontostand",
		CarryForward:     "Übertrag",
		CashFallbackName: "Bareinzahlung",
	}
}
